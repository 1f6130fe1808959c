package service

import (
	"fmt"
	"strings"

	"github.com/tazhate/couplebot/internal/domain"
	"github.com/tazhate/couplebot/internal/storage"
)

type MemoryService struct {
	storage *storage.Storage
}

func NewMemoryService(s *storage.Storage) *MemoryService {
	return &MemoryService{storage: s}
}

type MemoryInput struct {
	Date        string `json:"date" yaml:"date" validate:"required,date"`
	Title       string `json:"title" yaml:"title" validate:"required,max=100"`
	Description string `json:"description" yaml:"description" validate:"max=2000"`
	PhotoURI    string `json:"photo_uri" yaml:"photo_uri"`
}

func (in *MemoryInput) normalize() {
	in.Date = normalizeDate(in.Date)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
}

// Create stores a new memory
func (s *MemoryService) Create(in MemoryInput) (*domain.Memory, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	m := &domain.Memory{
		Date:        in.Date,
		Title:       in.Title,
		Description: in.Description,
		PhotoURI:    in.PhotoURI,
	}
	if err := s.storage.CreateMemory(m); err != nil {
		return nil, fmt.Errorf("create memory: %w", err)
	}
	return m, nil
}

// Update replaces a memory's fields
func (s *MemoryService) Update(id int64, in MemoryInput) (*domain.Memory, error) {
	m, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	m.Date = in.Date
	m.Title = in.Title
	m.Description = in.Description
	m.PhotoURI = in.PhotoURI
	if err := s.storage.UpdateMemory(m); err != nil {
		return nil, fmt.Errorf("update memory: %w", err)
	}
	return m, nil
}

func (s *MemoryService) Get(id int64) (*domain.Memory, error) {
	m, err := s.storage.GetMemory(id)
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	if m == nil {
		return nil, ErrMemoryNotFound
	}
	return m, nil
}

func (s *MemoryService) Delete(id int64) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.storage.DeleteMemory(id)
}

// List returns memories newest first
func (s *MemoryService) List() ([]*domain.Memory, error) {
	return s.storage.ListMemories()
}

func (s *MemoryService) ListByDate(date string) ([]*domain.Memory, error) {
	d := normalizeDate(date)
	if err := validate.Var(d, "date"); err != nil {
		return nil, invalid("bad date %q", date)
	}
	return s.storage.ListMemoriesByDate(d)
}
