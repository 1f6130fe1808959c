package anniversary

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
)

func d(s string) time.Time {
	t := dates.ParseDateOrNull(s)
	if t == nil {
		panic("bad test date " + s)
	}
	return *t
}

func findByKey(items []domain.AnniversaryItem, key string) (domain.AnniversaryItem, bool) {
	for _, it := range items {
		if it.Key == key {
			return it, true
		}
	}
	return domain.AnniversaryItem{}, false
}

func TestGenerateMilestoneScenario(t *testing.T) {
	p := &domain.Profile{RelationshipStartDate: "2024-01-01"}
	today := d("2024-04-15")

	items := GenerateAutoAnniversaries(p, nil, today)

	hundred, ok := findByKey(items, "auto-day-100")
	if !ok {
		t.Fatal("expected auto-day-100")
	}
	if dates.Format(hundred.Date) != "2024-04-10" || hundred.Title != "100일" {
		t.Errorf("got %s %q", dates.Format(hundred.Date), hundred.Title)
	}
	if hundred.Icon != domain.IconBalloon || hundred.AutoTag != "자동·100일" {
		t.Errorf("icon %q tag %q", hundred.Icon, hundred.AutoTag)
	}
	for _, it := range items {
		if it.Date.Before(d("2024-04-10")) {
			t.Errorf("unexpected item %s on %s", it.Key, dates.Format(it.Date))
		}
		if !it.IsAuto || it.Color != domain.ColorAuto {
			t.Errorf("%s: auto=%v color=%q", it.Key, it.IsAuto, it.Color)
		}
	}
}

func TestGenerateStreams(t *testing.T) {
	p := &domain.Profile{RelationshipStartDate: "2024-01-01"}
	items := GenerateAutoAnniversaries(p, nil, d("2024-04-15"))

	// horizon 2026-04-15: two yearly, eight milestones (100..800)
	var years, days []string
	for _, it := range items {
		switch {
		case strings.HasPrefix(it.Key, "auto-year-"):
			years = append(years, it.Title+"@"+dates.Format(it.Date))
		case strings.HasPrefix(it.Key, "auto-day-"):
			days = append(days, it.Title)
		}
	}
	wantYears := []string{"1주년@2025-01-01", "2주년@2026-01-01"}
	if !reflect.DeepEqual(years, wantYears) {
		t.Errorf("years = %v, want %v", years, wantYears)
	}
	wantDays := []string{"100일", "200일", "300일", "400일", "500일", "600일", "700일", "800일"}
	if !reflect.DeepEqual(days, wantDays) {
		t.Errorf("days = %v, want %v", days, wantDays)
	}
}

func TestGenerateWithoutStartDate(t *testing.T) {
	tests := []struct {
		name string
		p    *domain.Profile
	}{
		{"nil profile", nil},
		{"blank", &domain.Profile{Birthday: "1996-05-20"}},
		{"malformed", &domain.Profile{RelationshipStartDate: "2024/01/01", Birthday: "1996-05-20"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateAutoAnniversaries(tt.p, nil, d("2024-04-15")); len(got) != 0 {
				t.Errorf("got %d items, want none", len(got))
			}
		})
	}
}

func TestGenerateLeapBirthday(t *testing.T) {
	p := &domain.Profile{RelationshipStartDate: "2020-01-01", Birthday: "1996-02-29"}
	items := GenerateAutoAnniversaries(p, nil, d("2026-06-01"))

	if _, ok := findByKey(items, "auto-birthday-2025"); ok {
		t.Error("2025 is not a leap year, no birthday expected")
	}
	if _, ok := findByKey(items, "auto-birthday-2027"); ok {
		t.Error("2027 is not a leap year, no birthday expected")
	}
	bd, ok := findByKey(items, "auto-birthday-2028")
	if !ok {
		t.Fatal("expected birthday in 2028")
	}
	if dates.Format(bd.Date) != "2028-02-29" || bd.Category != domain.CategoryBirthday || bd.Title != BirthdayTitle {
		t.Errorf("got %s %v %q", dates.Format(bd.Date), bd.Category, bd.Title)
	}
}

func TestGenerateBirthdayWindow(t *testing.T) {
	p := &domain.Profile{RelationshipStartDate: "2024-03-01", Birthday: "1995-02-10"}
	items := GenerateAutoAnniversaries(p, nil, d("2024-04-15"))

	// 2023 and 2024 fall before the start date; 2026-02-10 is within the horizon.
	var got []string
	for _, it := range items {
		if it.Category == domain.CategoryBirthday {
			got = append(got, it.Key)
		}
	}
	want := []string{"auto-birthday-2025", "auto-birthday-2026"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("birthdays = %v, want %v", got, want)
	}
}

func TestGenerateHorizonBound(t *testing.T) {
	p := &domain.Profile{RelationshipStartDate: "2001-07-07", Birthday: "1990-12-31"}
	for _, today := range []string{"2024-02-29", "2024-12-31", "2025-01-01", "2001-07-07"} {
		td := d(today)
		limit := Horizon(td)
		for _, it := range GenerateAutoAnniversaries(p, nil, td) {
			if it.Date.After(limit) {
				t.Errorf("today %s: %s dated %s beyond %s", today, it.Key, dates.Format(it.Date), dates.Format(limit))
			}
		}
	}
}

func TestGenerateLeapStartClamps(t *testing.T) {
	p := &domain.Profile{RelationshipStartDate: "2020-02-29"}
	items := GenerateAutoAnniversaries(p, nil, d("2021-06-01"))
	first, ok := findByKey(items, "auto-year-1")
	if !ok || dates.Format(first.Date) != "2021-02-28" {
		t.Errorf("auto-year-1 = %s, %v", dates.Format(first.Date), ok)
	}
}

func TestReconcileSuppression(t *testing.T) {
	p := &domain.Profile{RelationshipStartDate: "2024-01-01"}
	events := []*domain.Event{
		{ID: 7, Title: "1주년 직접기록", Date: "2025-01-01", IsAnniversary: true},
		{ID: 8, Title: "그냥 일정", Date: "2024-04-10"},
	}
	items := Reconcile(events, p, d("2024-04-15"))

	if _, ok := findByKey(items, "auto-year-1"); ok {
		t.Error("auto 1주년 should be suppressed by the manual entry")
	}
	manual, ok := findByKey(items, "manual-7")
	if !ok || manual.Title != "1주년 직접기록" || manual.IsAuto {
		t.Errorf("manual item = %+v, %v", manual, ok)
	}
	if manual.SourceEventID == nil || *manual.SourceEventID != 7 {
		t.Error("manual item should carry its event id")
	}
	if _, ok := findByKey(items, "manual-8"); ok {
		t.Error("non-anniversary events are not listed")
	}
	if _, ok := findByKey(items, "auto-day-100"); !ok {
		t.Error("non-anniversary events do not suppress")
	}

	manualDates := dates.NewSet()
	for _, e := range events {
		if e.IsAnniversary {
			manualDates.Add(*e.StartDate())
		}
	}
	for _, it := range items {
		if it.IsAuto && manualDates.Has(it.Date) {
			t.Errorf("auto item %s collides with a manual date", it.Key)
		}
	}
}

func TestReconcileOrderAndIdempotence(t *testing.T) {
	p := &domain.Profile{RelationshipStartDate: "2024-01-01", Birthday: "1996-05-20"}
	events := []*domain.Event{
		{ID: 3, Title: "", Date: "2024-09-09", IsAnniversary: true, Category: domain.CategoryDate},
		{ID: 1, Title: "여행", Date: "2024-05-01", EndDate: "2024-05-03", IsAnniversary: true, Icon: "heart"},
		{ID: 2, Title: "broken", Date: "not-a-date", IsAnniversary: true},
	}
	today := d("2024-04-15")

	first := Reconcile(events, p, today)
	second := Reconcile(events, p, today)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("reconcile is not idempotent")
	}

	for i := 1; i < len(first); i++ {
		if first[i].Date.Before(first[i-1].Date) {
			t.Fatalf("not sorted at %d: %s before %s", i, dates.Format(first[i].Date), dates.Format(first[i-1].Date))
		}
	}

	seen := map[string]bool{}
	for _, it := range first {
		if seen[it.Key] {
			t.Errorf("duplicate key %s", it.Key)
		}
		seen[it.Key] = true
	}

	if _, ok := findByKey(first, "manual-2"); ok {
		t.Error("event with malformed date should be skipped")
	}
	untitled, ok := findByKey(first, "manual-3")
	if !ok || untitled.Title != DefaultManualTitle || untitled.Category != domain.CategoryDate {
		t.Errorf("manual-3 = %+v", untitled)
	}
	trip, _ := findByKey(first, "manual-1")
	if trip.Icon != domain.IconHeart {
		t.Errorf("icon = %q", trip.Icon)
	}
}

func TestReconcileUnknownCategoryAndIcon(t *testing.T) {
	events := []*domain.Event{{ID: 1, Date: "2024-05-01", IsAnniversary: true, Category: 42, Icon: "rocket"}}
	items := Reconcile(events, nil, d("2024-04-15"))
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].Category != domain.CategoryAnniversary || items[0].Icon != domain.IconCake {
		t.Errorf("got %v %q", items[0].Category, items[0].Icon)
	}
}

func TestFilterByTab(t *testing.T) {
	today := d("2024-06-01")
	items := []domain.AnniversaryItem{
		{Key: "a", Date: d("2024-05-01"), Category: domain.CategoryAnniversary},
		{Key: "b", Date: d("2024-06-01"), Category: domain.CategoryBirthday},
		{Key: "c", Date: d("2024-07-01"), Category: domain.CategoryDate},
		{Key: "e", Date: d("2024-08-01"), Category: domain.CategoryImportant},
	}
	keys := func(in []domain.AnniversaryItem) string {
		var ks []string
		for _, it := range in {
			ks = append(ks, it.Key)
		}
		return strings.Join(ks, ",")
	}
	tests := []struct {
		tab  domain.FilterTab
		want string
	}{
		{domain.TabAll, "a,b,c,e"},
		{domain.TabPast, "a"},
		{domain.TabAnniversary, "a"},
		{domain.TabBirthday, "b"},
		{domain.TabDate, "c"},
		{domain.TabImportant, "e"},
	}
	for _, tt := range tests {
		if got := keys(FilterByTab(items, tt.tab, today)); got != tt.want {
			t.Errorf("tab %s = %q, want %q", tt.tab, got, tt.want)
		}
	}
}

func TestUpcoming(t *testing.T) {
	items := []domain.AnniversaryItem{
		{Key: "a", Date: d("2024-05-01")},
		{Key: "b", Date: d("2024-06-01")},
		{Key: "c", Date: d("2024-07-01")},
		{Key: "e", Date: d("2024-08-01")},
	}
	got := Upcoming(items, d("2024-06-01"), 2)
	if len(got) != 2 || got[0].Key != "b" || got[1].Key != "c" {
		t.Errorf("got %+v", got)
	}
	if all := Upcoming(items, d("2024-06-01"), 0); len(all) != 3 {
		t.Errorf("unlimited = %d", len(all))
	}
}

func TestReconcileKeepsUnsavedEvents(t *testing.T) {
	events := []*domain.Event{
		{Title: "첫 데이트", Date: "2024-05-01", IsAnniversary: true},
		{Title: "첫 여행", Date: "2024-06-01", EndDate: "2024-06-03", IsAnniversary: true},
	}
	items := Reconcile(events, nil, d("2024-04-15"))
	if len(items) != 2 || items[0].Title != "첫 데이트" || items[1].Title != "첫 여행" {
		t.Fatalf("items = %+v", items)
	}

	proj := ProjectToCalendar(events, items)
	if got := proj.ItemsInRange(d("2024-05-01"), d("2024-06-30")); len(got) != 2 {
		t.Errorf("in range = %+v", got)
	}
	if got := proj.ItemsOnDate(d("2024-06-01")); len(got) != 1 || got[0].Title != "첫 여행" {
		t.Errorf("on 2024-06-01 = %+v", got)
	}
}
