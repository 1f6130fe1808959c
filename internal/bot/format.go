package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/tazhate/couplebot/internal/anniversary"
	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
)

var weekdays = [...]string{"일", "월", "화", "수", "목", "금", "토"}

func formatDay(d time.Time) string {
	return fmt.Sprintf("%s (%s)", dates.Format(d), weekdays[d.Weekday()])
}

func itemLine(it domain.AnniversaryItem, today time.Time) string {
	line := fmt.Sprintf("%s <b>%s</b> · %s · %s",
		it.Category.Emoji(), html.EscapeString(it.Title), formatDay(it.Date), it.DDay(today))
	if it.IsAuto {
		line += " <i>" + it.AutoTag + "</i>"
	} else if it.SourceEventID != nil {
		line += fmt.Sprintf(" #%d", *it.SourceEventID)
	}
	return line
}

func formatAnniversaryList(items []domain.AnniversaryItem, tab domain.FilterTab, today time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💝 <b>%s</b>\n\n", tab.Label()))
	if len(items) == 0 {
		sb.WriteString("표시할 기념일이 없어요")
		return sb.String()
	}

	const maxItems = 30
	for i, it := range items {
		if i == maxItems {
			sb.WriteString(fmt.Sprintf("… 외 %d개", len(items)-maxItems))
			break
		}
		sb.WriteString(itemLine(it, today))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatUpcoming(items []domain.AnniversaryItem, today time.Time) string {
	if len(items) == 0 {
		return "⏳ 다가오는 기념일이 없어요\n\n/setstart 로 사귄 날을 등록해 보세요"
	}
	var sb strings.Builder
	sb.WriteString("⏳ <b>다가오는 날</b>\n\n")
	for _, it := range items {
		sb.WriteString(itemLine(it, today))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatProfile(p *domain.Profile, today time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👤 <b>%s</b>\n", html.EscapeString(p.DisplayName())))
	if p.Name != "" {
		sb.WriteString(fmt.Sprintf("이름: %s\n", html.EscapeString(p.Name)))
	}
	if n, ok := p.DaysTogether(today); ok {
		sb.WriteString(fmt.Sprintf("💑 사귄 날: %s (%d일째)\n", p.RelationshipStartDate, n+1))
	} else {
		sb.WriteString("💑 사귄 날: 미등록 (/setstart)\n")
	}
	if age, ok := p.Age(today); ok {
		sb.WriteString(fmt.Sprintf("🎂 생일: %s (만 %d세)\n", p.Birthday, age))
	} else {
		sb.WriteString("🎂 생일: 미등록 (/setbirthday)\n")
	}
	if p.MBTI != "" {
		sb.WriteString("MBTI: " + html.EscapeString(p.MBTI) + "\n")
	}
	if p.Mood != "" {
		sb.WriteString("기분: " + html.EscapeString(p.Mood) + "\n")
	}
	if p.Note != "" {
		sb.WriteString("📝 " + html.EscapeString(p.Note) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatEvent(e *domain.Event) string {
	line := fmt.Sprintf("%s <b>%s</b> · %s", e.Category.Emoji(), html.EscapeString(e.Title), e.FormatDates())
	if e.Time != "" {
		line += " " + e.Time
	}
	return line + fmt.Sprintf(" #%d", e.ID)
}

func formatDayView(d time.Time, items []domain.AnniversaryItem, events []*domain.Event, memories []*domain.Memory, today time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 <b>%s</b>\n", formatDay(d)))

	if len(items) == 0 && len(events) == 0 && len(memories) == 0 {
		sb.WriteString("\n아무 일정도 없어요")
		return sb.String()
	}

	if len(items) > 0 {
		sb.WriteString("\n<b>기념일</b>\n")
		for _, it := range items {
			sb.WriteString(itemLine(it, today) + "\n")
		}
	}

	var plain []*domain.Event
	for _, e := range events {
		if !e.IsAnniversary {
			plain = append(plain, e)
		}
	}
	if len(plain) > 0 {
		sb.WriteString("\n<b>일정</b>\n")
		for _, e := range plain {
			sb.WriteString(formatEvent(e) + "\n")
		}
	}

	if len(memories) > 0 {
		sb.WriteString("\n<b>추억</b>\n")
		for _, m := range memories {
			sb.WriteString(formatMemory(m) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatMonth(year int, month time.Month, cells []anniversary.DayCell, today time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 <b>%d년 %d월</b>\n", year, month))

	empty := true
	for _, c := range cells {
		if !c.HasItems {
			continue
		}
		empty = false
		sb.WriteString(fmt.Sprintf("\n<b>%d일 (%s)</b>\n", c.Date.Day(), weekdays[c.Date.Weekday()]))
		for _, it := range c.Items {
			sb.WriteString(fmt.Sprintf("  %s %s\n", it.Category.Emoji(), html.EscapeString(it.Title)))
		}
	}
	if empty {
		sb.WriteString("\n이번 달에는 기념일이 없어요")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatMemory(m *domain.Memory) string {
	line := fmt.Sprintf("📔 %s <b>%s</b> #%d", m.Date, html.EscapeString(m.Title), m.ID)
	if m.Description != "" {
		line += "\n    " + html.EscapeString(truncate(m.Description, 80))
	}
	return line
}

func formatMemories(memories []*domain.Memory) string {
	if len(memories) == 0 {
		return "📔 아직 추억이 없어요\n\n/addmemory 날짜 제목 | 내용"
	}
	const maxItems = 10
	var sb strings.Builder
	sb.WriteString("📔 <b>추억</b>\n\n")
	for i, m := range memories {
		if i == maxItems {
			break
		}
		sb.WriteString(formatMemory(m) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatFavorites(favorites []*domain.Favorite) string {
	if len(favorites) == 0 {
		return "👍 등록된 취향이 없어요\n\n/like 카테고리 내용"
	}

	byCategory := make(map[domain.FavoriteCategory][]*domain.Favorite)
	for _, f := range favorites {
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}

	var sb strings.Builder
	sb.WriteString("👍 <b>취향</b>\n")
	for _, c := range domain.FavoriteCategories {
		list := byCategory[c]
		if len(list) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n<b>%s</b>\n", c.Label()))
		for _, f := range list {
			sb.WriteString(fmt.Sprintf("%s %s #%d\n", f.Emoji(), html.EscapeString(f.Title), f.ID))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}
