package domain

import (
	"fmt"
	"time"

	"github.com/tazhate/couplebot/internal/dates"
)

// AnniversaryItem is a derived, never persisted entry in the anniversary
// list or the calendar. Manual items come from events, the rest are
// generated from the profile.
type AnniversaryItem struct {
	Key           string
	Title         string
	Description   string
	Date          time.Time
	Category      Category
	Icon          Icon
	Color         string
	IsAuto        bool
	AutoTag       string // e.g. "자동·주년", blank for manual items
	SourceEventID *int64 // set for manual items only
}

// DaysUntil returns days from today to the item, negative if past
func (a *AnniversaryItem) DaysUntil(today time.Time) int {
	return dates.DaysBetween(today, a.Date)
}

// DDay renders the countdown badge: "D-DAY", "D-3" or "D+12"
func (a *AnniversaryItem) DDay(today time.Time) string {
	n := a.DaysUntil(today)
	switch {
	case n == 0:
		return "D-DAY"
	case n > 0:
		return fmt.Sprintf("D-%d", n)
	default:
		return fmt.Sprintf("D+%d", -n)
	}
}

// ResolvedColor returns the display colour of the item
func (a *AnniversaryItem) ResolvedColor() string {
	return ResolveColor(a.Color, a.Category)
}

// FilterTab selects a subset of the anniversary list
type FilterTab string

const (
	TabAll         FilterTab = "all"
	TabAnniversary FilterTab = "anniversary"
	TabBirthday    FilterTab = "birthday"
	TabDate        FilterTab = "date"
	TabImportant   FilterTab = "important"
	TabPast        FilterTab = "past"
)

// FilterTabs lists every tab in display order
var FilterTabs = []FilterTab{TabAll, TabAnniversary, TabBirthday, TabDate, TabImportant, TabPast}

// ParseFilterTab maps a tab name to a tab, unknown names become All
func ParseFilterTab(s string) FilterTab {
	switch t := FilterTab(s); t {
	case TabAll, TabAnniversary, TabBirthday, TabDate, TabImportant, TabPast:
		return t
	}
	return TabAll
}

// Category returns the category a tab matches on, false for All and Past
func (t FilterTab) Category() (Category, bool) {
	switch t {
	case TabAnniversary:
		return CategoryAnniversary, true
	case TabBirthday:
		return CategoryBirthday, true
	case TabDate:
		return CategoryDate, true
	case TabImportant:
		return CategoryImportant, true
	}
	return 0, false
}

// Label returns the Korean tab label
func (t FilterTab) Label() string {
	switch t {
	case TabAnniversary:
		return "기념일"
	case TabBirthday:
		return "생일"
	case TabDate:
		return "데이트"
	case TabImportant:
		return "중요한 날"
	case TabPast:
		return "지난 날"
	default:
		return "전체"
	}
}
