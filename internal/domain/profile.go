package domain

import (
	"time"

	"github.com/tazhate/couplebot/internal/dates"
)

// DefaultNickname is shown when the partner has no nickname or name yet
const DefaultNickname = "내사랑"

// Profile describes the partner and the relationship. There is only one.
type Profile struct {
	Name                  string
	Nickname              string
	RelationshipStartDate string // YYYY-MM-DD, blank if unknown
	Birthday              string // YYYY-MM-DD, blank if unknown
	PhoneNumber           string
	MBTI                  string
	PhotoURI              string
	Favorites             string // free text, e.g. "커피향, 강아지"
	Hobbies               string // emoji set
	Mood                  string // current mood emoji
	Note                  string // one-line memo
	UpdatedAt             time.Time
}

// StartDate returns the parsed relationship start date
func (p *Profile) StartDate() *time.Time {
	if p == nil {
		return nil
	}
	return dates.ParseDateOrNull(p.RelationshipStartDate)
}

// BirthdayDate returns the parsed birthday
func (p *Profile) BirthdayDate() *time.Time {
	if p == nil {
		return nil
	}
	return dates.ParseDateOrNull(p.Birthday)
}

// DaysTogether returns days elapsed since the start date, 0 on the start day.
func (p *Profile) DaysTogether(today time.Time) (int, bool) {
	start := p.StartDate()
	if start == nil {
		return 0, false
	}
	return dates.DaysBetween(*start, today), true
}

// DisplayName returns nickname, then name, then the default nickname
func (p *Profile) DisplayName() string {
	switch {
	case p == nil:
		return DefaultNickname
	case p.Nickname != "":
		return p.Nickname
	case p.Name != "":
		return p.Name
	default:
		return DefaultNickname
	}
}

// Age returns current age if the birthday is set
func (p *Profile) Age(today time.Time) (int, bool) {
	bd := p.BirthdayDate()
	if bd == nil {
		return 0, false
	}
	age := today.Year() - bd.Year()
	if today.Month() < bd.Month() || (today.Month() == bd.Month() && today.Day() < bd.Day()) {
		age--
	}
	return age, true
}
