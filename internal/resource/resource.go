package resource

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/suPer8Hu/mindease/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("resource not found")
	ErrInvalid  = errors.New("title and a valid file url are required")
)

type Resource struct {
	ID          uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string                      `gorm:"type:varchar(200);not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description,omitempty"`
	FileURL     string                      `gorm:"type:varchar(1024);not null" json:"file_url"`
	UploadedBy  uint64                      `gorm:"not null;index" json:"-"`
	Category    string                      `gorm:"type:varchar(64);not null;default:General;index" json:"category"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	CreatedAt   time.Time                   `json:"created_at"`

	Uploader *models.User `gorm:"foreignKey:UploadedBy" json:"uploaded_by,omitempty"`
}

func (Resource) TableName() string { return "resources" }

type Input struct {
	Title       string
	Description string
	FileURL     string
	Category    string
	Tags        string // comma separated
}

// SplitTags turns "sleep, anxiety ,," into [sleep anxiety].
func SplitTags(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, uploader uint64, in Input) (*Resource, error) {
	title := strings.TrimSpace(in.Title)
	u, err := url.Parse(strings.TrimSpace(in.FileURL))
	if title == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ErrInvalid
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "General"
	}
	r := &Resource{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		FileURL:     u.String(),
		UploadedBy:  uploader,
		Category:    category,
		Tags:        SplitTags(in.Tags),
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// List returns resources newest first, optionally filtered by category.
func (s *Service) List(ctx context.Context, category string) ([]Resource, error) {
	q := s.db.WithContext(ctx).
		Preload("Uploader", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []Resource
	err := q.Find(&out).Error
	return out, err
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).Delete(&Resource{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
