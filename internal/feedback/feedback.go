package feedback

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("feedback not found")
	ErrEmpty    = errors.New("content is required")
)

// Feedback is anonymous: no submitter is stored.
type Feedback struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	SubmittedAt time.Time `gorm:"autoCreateTime;index" json:"submitted_at"`
	Responded   bool      `gorm:"not null;default:false" json:"responded"`
	Response    string    `gorm:"type:text" json:"response,omitempty"`
}

func (Feedback) TableName() string { return "feedback" }

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Submit(ctx context.Context, content string) (*Feedback, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmpty
	}
	f := &Feedback{Content: content}
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) List(ctx context.Context) ([]Feedback, error) {
	var out []Feedback
	err := s.db.WithContext(ctx).Order("submitted_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

func (s *Service) Respond(ctx context.Context, id uint64, response string) (*Feedback, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, ErrEmpty
	}
	var f Feedback
	if err := s.db.WithContext(ctx).First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	f.Response = response
	f.Responded = true
	if err := s.db.WithContext(ctx).Model(&f).
		Select("response", "responded").
		Updates(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}
