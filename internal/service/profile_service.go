package service

import (
	"fmt"
	"strings"

	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
	"github.com/tazhate/couplebot/internal/storage"
)

type ProfileService struct {
	storage *storage.Storage
}

func NewProfileService(s *storage.Storage) *ProfileService {
	return &ProfileService{storage: s}
}

// ProfileInput is the editable part of the profile
type ProfileInput struct {
	Name                  string `json:"name" yaml:"name" validate:"max=50"`
	Nickname              string `json:"nickname" yaml:"nickname" validate:"max=50"`
	RelationshipStartDate string `json:"relationship_start_date" yaml:"relationship_start_date" validate:"omitempty,date"`
	Birthday              string `json:"birthday" yaml:"birthday" validate:"omitempty,date"`
	PhoneNumber           string `json:"phone_number" yaml:"phone_number" validate:"max=30"`
	MBTI                  string `json:"mbti" yaml:"mbti" validate:"omitempty,len=4,alpha"`
	PhotoURI              string `json:"photo_uri" yaml:"photo_uri"`
	Favorites             string `json:"favorites" yaml:"favorites" validate:"max=500"`
	Hobbies               string `json:"hobbies" yaml:"hobbies" validate:"max=200"`
	Mood                  string `json:"mood" yaml:"mood" validate:"max=20"`
	Note                  string `json:"note" yaml:"note" validate:"max=200"`
}

// Get returns the stored profile, or an empty one when nothing is saved
func (s *ProfileService) Get() (*domain.Profile, error) {
	p, err := s.storage.GetProfile()
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		p = &domain.Profile{}
	}
	return p, nil
}

// Save validates and replaces the profile
func (s *ProfileService) Save(in ProfileInput) (*domain.Profile, error) {
	in.RelationshipStartDate = normalizeDate(in.RelationshipStartDate)
	in.Birthday = normalizeDate(in.Birthday)
	in.MBTI = strings.ToUpper(strings.TrimSpace(in.MBTI))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	p := &domain.Profile{
		Name:                  strings.TrimSpace(in.Name),
		Nickname:              strings.TrimSpace(in.Nickname),
		RelationshipStartDate: in.RelationshipStartDate,
		Birthday:              in.Birthday,
		PhoneNumber:           strings.TrimSpace(in.PhoneNumber),
		MBTI:                  in.MBTI,
		PhotoURI:              in.PhotoURI,
		Favorites:             in.Favorites,
		Hobbies:               in.Hobbies,
		Mood:                  in.Mood,
		Note:                  in.Note,
	}
	if err := s.storage.SaveProfile(p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// SetStartDate updates only the relationship start date, blank clears it
func (s *ProfileService) SetStartDate(date string) (*domain.Profile, error) {
	return s.update(func(in *ProfileInput) { in.RelationshipStartDate = date })
}

// SetBirthday updates only the birthday, blank clears it
func (s *ProfileService) SetBirthday(date string) (*domain.Profile, error) {
	return s.update(func(in *ProfileInput) { in.Birthday = date })
}

// SetNickname updates only the nickname
func (s *ProfileService) SetNickname(nickname string) (*domain.Profile, error) {
	return s.update(func(in *ProfileInput) { in.Nickname = nickname })
}

func (s *ProfileService) update(fn func(in *ProfileInput)) (*domain.Profile, error) {
	p, err := s.Get()
	if err != nil {
		return nil, err
	}
	in := ProfileToInput(p)
	fn(&in)
	return s.Save(in)
}

// ProfileToInput copies the editable fields of a profile
func ProfileToInput(p *domain.Profile) ProfileInput {
	return ProfileInput{
		Name:                  p.Name,
		Nickname:              p.Nickname,
		RelationshipStartDate: p.RelationshipStartDate,
		Birthday:              p.Birthday,
		PhoneNumber:           p.PhoneNumber,
		MBTI:                  p.MBTI,
		PhotoURI:              p.PhotoURI,
		Favorites:             p.Favorites,
		Hobbies:               p.Hobbies,
		Mood:                  p.Mood,
		Note:                  p.Note,
	}
}

// normalizeDate rewrites a parseable date to YYYY-MM-DD and leaves anything
// else for the validator to reject
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if d := dates.ParseDateOrNull(s); d != nil {
		return dates.Format(*d)
	}
	return s
}
