package service

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/storage"
)

// ExportDocument is the YAML snapshot of everything stored plus the
// anniversaries derived from it
type ExportDocument struct {
	ExportedAt    time.Time           `yaml:"exported_at"`
	Today         string              `yaml:"today"`
	Profile       ProfileInput        `yaml:"profile"`
	Events        []ExportEvent       `yaml:"events"`
	Memories      []ExportMemory      `yaml:"memories"`
	Favorites     []ExportFavorite    `yaml:"favorites"`
	Anniversaries []ExportAnniversary `yaml:"anniversaries"`
}

type ExportEvent struct {
	ID         int64 `yaml:"id"`
	EventInput `yaml:",inline"`
}

type ExportMemory struct {
	ID          int64 `yaml:"id"`
	MemoryInput `yaml:",inline"`
}

type ExportFavorite struct {
	ID            int64 `yaml:"id"`
	FavoriteInput `yaml:",inline"`
}

type ExportAnniversary struct {
	Key      string `yaml:"key"`
	Title    string `yaml:"title"`
	Date     string `yaml:"date"`
	Category string `yaml:"category"`
	Color    string `yaml:"color"`
	Auto     bool   `yaml:"auto"`
	DDay     string `yaml:"d_day"`
}

type ExportService struct {
	storage       *storage.Storage
	anniversaries *AnniversaryService
}

func NewExportService(s *storage.Storage, a *AnniversaryService) *ExportService {
	return &ExportService{storage: s, anniversaries: a}
}

// Build collects the export document
func (s *ExportService) Build() (*ExportDocument, error) {
	snap, err := s.anniversaries.Snapshot()
	if err != nil {
		return nil, err
	}
	doc := &ExportDocument{
		ExportedAt: time.Now().UTC().Truncate(time.Second),
		Today:      dates.Format(snap.Today),
	}
	if snap.Profile != nil {
		doc.Profile = ProfileToInput(snap.Profile)
	}

	events, err := s.storage.ListEvents()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	for _, e := range events {
		doc.Events = append(doc.Events, ExportEvent{
			ID: e.ID,
			EventInput: EventInput{
				Title:         e.Title,
				Description:   e.Description,
				Date:          e.Date,
				EndDate:       e.EndDate,
				Time:          e.Time,
				IsAnniversary: e.IsAnniversary,
				NotifyEnabled: e.NotifyEnabled,
				Category:      e.Category.ID(),
				Icon:          string(e.Icon),
				Color:         e.Color,
			},
		})
	}

	memories, err := s.storage.ListMemories()
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	for _, m := range memories {
		doc.Memories = append(doc.Memories, ExportMemory{
			ID:          m.ID,
			MemoryInput: MemoryInput{Date: m.Date, Title: m.Title, Description: m.Description, PhotoURI: m.PhotoURI},
		})
	}

	favorites, err := s.storage.ListFavorites()
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	for _, f := range favorites {
		doc.Favorites = append(doc.Favorites, ExportFavorite{
			ID: f.ID,
			FavoriteInput: FavoriteInput{
				Category:    string(f.Category),
				Title:       f.Title,
				Description: f.Description,
				PhotoURI:    f.PhotoURI,
				IsDislike:   f.IsDislike,
			},
		})
	}

	for _, it := range snap.Combined {
		doc.Anniversaries = append(doc.Anniversaries, ExportAnniversary{
			Key:      it.Key,
			Title:    it.Title,
			Date:     dates.Format(it.Date),
			Category: it.Category.Label(),
			Color:    it.ResolvedColor(),
			Auto:     it.IsAuto,
			DDay:     it.DDay(snap.Today),
		})
	}
	return doc, nil
}

// Export writes the document as YAML
func (s *ExportService) Export(w io.Writer) error {
	doc, err := s.Build()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
