package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
	"github.com/tazhate/couplebot/internal/service"
)

var errUsage = errors.New("usage")

// parseDateArg accepts YYYY-MM-DD, MM-DD in the current year, and the
// words today / 오늘 / tomorrow / 내일
func parseDateArg(s string, today time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "today", "오늘":
		return today, nil
	case "tomorrow", "내일":
		return today.AddDate(0, 0, 1), nil
	case "yesterday", "어제":
		return today.AddDate(0, 0, -1), nil
	}
	if d := dates.ParseDateOrNull(s); d != nil {
		return *d, nil
	}
	if d := dates.ParseDateOrNull(fmt.Sprintf("%d-%s", today.Year(), s)); d != nil {
		return *d, nil
	}
	return time.Time{}, fmt.Errorf("잘못된 날짜: %s", s)
}

// parseDateSpan parses "DATE" or "DATE~DATE"
func parseDateSpan(s string, today time.Time) (start, end time.Time, err error) {
	from, to, ok := strings.Cut(s, "~")
	start, err = parseDateArg(from, today)
	if err != nil || strings.TrimSpace(from) == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("잘못된 날짜: %s", s)
	}
	if !ok {
		return start, start, nil
	}
	end, err = parseDateArg(to, today)
	if err != nil || strings.TrimSpace(to) == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("잘못된 날짜: %s", s)
	}
	return start, end, nil
}

// parseMonthArg parses "YYYY-MM", blank means the current month
func parseMonthArg(s string, today time.Time) (int, time.Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return today.Year(), today.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("잘못된 월: %s", s)
	}
	return t.Year(), t.Month(), nil
}

// parseAddAnnivArgs parses "DATE[~DATE] title"
func parseAddAnnivArgs(args string, today time.Time) (service.EventInput, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return service.EventInput{}, errUsage
	}
	start, end, err := parseDateSpan(fields[0], today)
	if err != nil {
		return service.EventInput{}, err
	}
	return service.EventInput{
		Title:         strings.Join(fields[1:], " "),
		Date:          dates.Format(start),
		EndDate:       dates.Format(end),
		IsAnniversary: true,
		Category:      domain.CategoryAnniversary.ID(),
		Icon:          string(domain.IconHeart),
	}, nil
}

// parseAddEventArgs parses "DATE[~DATE] [HH:MM-HH:MM] title". A leading
// category word (데이트, 생일, 중요) picks the category, the default is date.
func parseAddEventArgs(args string, today time.Time) (service.EventInput, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return service.EventInput{}, errUsage
	}
	start, end, err := parseDateSpan(fields[0], today)
	if err != nil {
		return service.EventInput{}, err
	}
	rest := fields[1:]

	in := service.EventInput{
		Date:     dates.Format(start),
		EndDate:  dates.Format(end),
		Category: domain.CategoryDate.ID(),
	}
	if tr, ok := domain.ParseTimeRange(rest[0]); ok && strings.Contains(rest[0], ":") {
		in.Time = tr.String()
		rest = rest[1:]
	}
	if len(rest) > 1 {
		if c, ok := domain.ParseCategory(rest[0]); ok {
			in.Category = c.ID()
			rest = rest[1:]
		}
	}
	if len(rest) == 0 {
		return service.EventInput{}, errUsage
	}
	in.Title = strings.Join(rest, " ")
	return in, nil
}

// parseMemoryArgs parses "DATE title | description"
func parseMemoryArgs(args string, today time.Time) (service.MemoryInput, error) {
	dateStr, rest, ok := strings.Cut(strings.TrimSpace(args), " ")
	if !ok || strings.TrimSpace(rest) == "" {
		return service.MemoryInput{}, errUsage
	}
	d, err := parseDateArg(dateStr, today)
	if err != nil {
		return service.MemoryInput{}, err
	}
	title, desc, _ := strings.Cut(rest, "|")
	if strings.TrimSpace(title) == "" {
		return service.MemoryInput{}, errUsage
	}
	return service.MemoryInput{
		Date:        dates.Format(d),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(desc),
	}, nil
}

// parseFavoriteArgs parses "category title"
func parseFavoriteArgs(args string, dislike bool) (service.FavoriteInput, error) {
	cat, title, ok := strings.Cut(strings.TrimSpace(args), " ")
	if !ok || strings.TrimSpace(title) == "" {
		return service.FavoriteInput{}, errUsage
	}
	return service.FavoriteInput{
		Category:  string(domain.FavoriteCategoryFromID(cat)),
		Title:     strings.TrimSpace(title),
		IsDislike: dislike,
	}, nil
}
