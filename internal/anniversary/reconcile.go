package anniversary

import (
	"fmt"
	"sort"
	"time"

	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
)

// DefaultManualTitle replaces a blank event title
const DefaultManualTitle = "기념일"

// ManualItem converts an anniversary event into a list item keyed by its id.
// Events whose start date does not parse are skipped.
func ManualItem(e *domain.Event) (domain.AnniversaryItem, bool) {
	if e == nil || !e.IsAnniversary {
		return domain.AnniversaryItem{}, false
	}
	start := e.StartDate()
	if start == nil {
		return domain.AnniversaryItem{}, false
	}
	title := e.Title
	if title == "" {
		title = DefaultManualTitle
	}
	id := e.ID
	return domain.AnniversaryItem{
		Key:           fmt.Sprintf("manual-%d", e.ID),
		Title:         title,
		Description:   e.Description,
		Date:          *start,
		Category:      domain.CategoryFromID(int(e.Category)),
		Icon:          domain.IconFromID(string(e.Icon)),
		Color:         e.Color,
		SourceEventID: &id,
	}, true
}

// ManualItems converts every anniversary event, keeping input order
func ManualItems(events []*domain.Event) []domain.AnniversaryItem {
	items := make([]domain.AnniversaryItem, 0, len(events))
	for _, e := range events {
		if item, ok := ManualItem(e); ok {
			items = append(items, item)
		}
	}
	return items
}

// Reconcile merges manual anniversaries with the generated ones. A generated
// item never lands on a date a manual one already holds. The result is
// sorted by date with ties in input order and holds each key once; items of
// unsaved events all share manual-0 and are kept side by side.
func Reconcile(events []*domain.Event, p *domain.Profile, today time.Time) []domain.AnniversaryItem {
	manual := ManualItems(events)

	taken := dates.NewSet()
	for _, m := range manual {
		taken.Add(m.Date)
	}
	auto := GenerateAutoAnniversaries(p, taken, today)

	combined := make([]domain.AnniversaryItem, 0, len(manual)+len(auto))
	combined = append(combined, manual...)
	combined = append(combined, auto...)
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Date.Before(combined[j].Date)
	})
	return dedupeByKey(combined)
}

func dedupeByKey(items []domain.AnniversaryItem) []domain.AnniversaryItem {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if unsaved(it) {
			out = append(out, it)
			continue
		}
		if _, ok := seen[it.Key]; ok {
			continue
		}
		seen[it.Key] = struct{}{}
		out = append(out, it)
	}
	return out
}

// unsaved reports whether it comes from an event without an id yet
func unsaved(it domain.AnniversaryItem) bool {
	return it.SourceEventID != nil && *it.SourceEventID == 0
}

// FilterByTab keeps the items a tab shows. Past compares against today,
// category tabs match on category and All keeps everything.
func FilterByTab(items []domain.AnniversaryItem, tab domain.FilterTab, today time.Time) []domain.AnniversaryItem {
	today = dates.Day(today)
	out := make([]domain.AnniversaryItem, 0, len(items))
	for _, it := range items {
		if matchesTab(it, tab, today) {
			out = append(out, it)
		}
	}
	return out
}

func matchesTab(it domain.AnniversaryItem, tab domain.FilterTab, today time.Time) bool {
	if tab == domain.TabPast {
		return it.Date.Before(today)
	}
	if c, ok := tab.Category(); ok {
		return it.Category == c
	}
	return true
}

// Upcoming returns up to limit items dated today or later. A limit <= 0
// returns them all.
func Upcoming(items []domain.AnniversaryItem, today time.Time, limit int) []domain.AnniversaryItem {
	today = dates.Day(today)
	var out []domain.AnniversaryItem
	for _, it := range items {
		if it.Date.Before(today) {
			continue
		}
		out = append(out, it)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
