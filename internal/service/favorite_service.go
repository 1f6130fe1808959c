package service

import (
	"fmt"
	"strings"

	"github.com/tazhate/couplebot/internal/domain"
	"github.com/tazhate/couplebot/internal/storage"
)

type FavoriteService struct {
	storage *storage.Storage
}

func NewFavoriteService(s *storage.Storage) *FavoriteService {
	return &FavoriteService{storage: s}
}

type FavoriteInput struct {
	Category    string `json:"category" yaml:"category"`
	Title       string `json:"title" yaml:"title" validate:"required,max=100"`
	Description string `json:"description" yaml:"description" validate:"max=1000"`
	PhotoURI    string `json:"photo_uri" yaml:"photo_uri"`
	IsDislike   bool   `json:"is_dislike" yaml:"is_dislike"`
}

func (in FavoriteInput) build() (*domain.Favorite, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	return &domain.Favorite{
		Category:    domain.FavoriteCategoryFromID(strings.TrimSpace(in.Category)),
		Title:       in.Title,
		Description: in.Description,
		PhotoURI:    in.PhotoURI,
		IsDislike:   in.IsDislike,
	}, nil
}

// Create stores a like or dislike; unknown categories fall back to food
func (s *FavoriteService) Create(in FavoriteInput) (*domain.Favorite, error) {
	f, err := in.build()
	if err != nil {
		return nil, err
	}
	if err := s.storage.CreateFavorite(f); err != nil {
		return nil, fmt.Errorf("create favorite: %w", err)
	}
	return f, nil
}

func (s *FavoriteService) Update(id int64, in FavoriteInput) (*domain.Favorite, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	f, err := in.build()
	if err != nil {
		return nil, err
	}
	f.ID = existing.ID
	f.CreatedAt = existing.CreatedAt
	if err := s.storage.UpdateFavorite(f); err != nil {
		return nil, fmt.Errorf("update favorite: %w", err)
	}
	return f, nil
}

func (s *FavoriteService) Get(id int64) (*domain.Favorite, error) {
	f, err := s.storage.GetFavorite(id)
	if err != nil {
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	if f == nil {
		return nil, ErrFavoriteNotFound
	}
	return f, nil
}

func (s *FavoriteService) Delete(id int64) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.storage.DeleteFavorite(id)
}

func (s *FavoriteService) List() ([]*domain.Favorite, error) {
	return s.storage.ListFavorites()
}

// ListByCategory returns likes, or dislikes, of one category
func (s *FavoriteService) ListByCategory(category domain.FavoriteCategory, dislike bool) ([]*domain.Favorite, error) {
	return s.storage.ListFavoritesByCategory(category, dislike)
}
