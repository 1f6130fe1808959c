// Package anniversary derives the couple's anniversaries from the profile and
// the user's events, and projects them onto calendar days. Everything here is
// a pure function of its inputs; callers pass fresh snapshots on every query.
package anniversary

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
)

const (
	// HorizonYears bounds generation to today plus this many years
	HorizonYears = 2
	// MilestoneStep is the spacing of day-count milestones
	MilestoneStep = 100

	TagYearly   = "자동·주년"
	TagBirthday = "자동·생일"

	BirthdayTitle = "연인의 생일"
)

// Horizon returns the last date that generation may produce
func Horizon(today time.Time) time.Time {
	return dates.AddYears(dates.Day(today), HorizonYears)
}

// Input is everything the generator looks at
type Input struct {
	Start    *time.Time // relationship start; nil disables generation
	Birthday *time.Time
	Today    time.Time
	Horizon  time.Time // zero means Horizon(Today)
	Existing dates.Set // dates already taken by manual anniversaries
}

// GenerateAutoAnniversaries builds yearly anniversaries, 100-day milestones
// and the partner's birthdays up to two years from today. Dates present in
// existing are left to the manual entries.
func GenerateAutoAnniversaries(p *domain.Profile, existing dates.Set, today time.Time) []domain.AnniversaryItem {
	return Generate(Input{
		Start:    p.StartDate(),
		Birthday: p.BirthdayDate(),
		Today:    today,
		Existing: existing,
	})
}

// Generate is GenerateAutoAnniversaries with an explicit horizon
func Generate(in Input) []domain.AnniversaryItem {
	if in.Start == nil {
		return nil
	}
	start := dates.Day(*in.Start)
	today := dates.Day(in.Today)
	limit := in.Horizon
	if limit.IsZero() {
		limit = Horizon(today)
	}
	limit = dates.Day(limit)

	g := &generator{limit: limit, existing: in.Existing}
	g.yearly(start)
	g.milestones(start)
	if in.Birthday != nil {
		g.birthdays(start, *in.Birthday, today)
	}
	return g.items
}

type generator struct {
	limit    time.Time
	existing dates.Set
	items    []domain.AnniversaryItem
}

func (g *generator) add(item domain.AnniversaryItem) {
	if item.Date.After(g.limit) {
		return
	}
	if g.existing != nil && g.existing.Has(item.Date) {
		return
	}
	item.IsAuto = true
	item.Color = domain.ColorAuto
	g.items = append(g.items, item)
}

// yearly uses calendar-year addition so a Feb 29 start keeps its
// anniversary on Feb 28 in common years.
func (g *generator) yearly(start time.Time) {
	for n := 1; ; n++ {
		d := dates.AddYears(start, n)
		if d.After(g.limit) {
			return
		}
		g.add(domain.AnniversaryItem{
			Key:      fmt.Sprintf("auto-year-%d", n),
			Title:    fmt.Sprintf("%d주년", n),
			Date:     d,
			Category: domain.CategoryAnniversary,
			Icon:     domain.IconCake,
			AutoTag:  TagYearly,
		})
	}
}

func (g *generator) milestones(start time.Time) {
	if start.After(g.limit) {
		return
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: MilestoneStep,
		Dtstart:  start,
		Until:    g.limit,
	})
	if err != nil {
		return
	}
	for _, occ := range rule.All() {
		d := dates.Day(occ)
		n := dates.DaysBetween(start, d)
		if n == 0 {
			continue
		}
		g.add(domain.AnniversaryItem{
			Key:      fmt.Sprintf("auto-day-%d", n),
			Title:    fmt.Sprintf("%d일", n),
			Date:     d,
			Category: domain.CategoryAnniversary,
			Icon:     domain.IconBalloon,
			AutoTag:  fmt.Sprintf("자동·%d일", n),
		})
	}
}

// birthdays covers last year through the horizon year. The rule only yields
// real dates, so Feb 29 birthdays appear in leap years only.
func (g *generator) birthdays(start, birthday, today time.Time) {
	from := dates.Date(today.Year()-1, time.January, 1)
	if from.After(g.limit) {
		return
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:       rrule.YEARLY,
		Bymonth:    []int{int(birthday.Month())},
		Bymonthday: []int{birthday.Day()},
		Dtstart:    from,
		Until:      g.limit,
	})
	if err != nil {
		return
	}
	for _, occ := range rule.All() {
		d := dates.Day(occ)
		if d.Before(start) {
			continue
		}
		g.add(domain.AnniversaryItem{
			Key:      fmt.Sprintf("auto-birthday-%d", d.Year()),
			Title:    BirthdayTitle,
			Date:     d,
			Category: domain.CategoryBirthday,
			Icon:     domain.IconCake,
			AutoTag:  TagBirthday,
		})
	}
}
