package screening

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, s *Screening) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// Latest returns the user's most recent screening, or nil when there is none.
func (r *Repo) Latest(ctx context.Context, userID uint64) (*Screening, error) {
	var s Screening
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUser returns the user's screenings newest first, without responses.
func (r *Repo) ListByUser(ctx context.Context, userID uint64) ([]Screening, error) {
	var out []Screening
	err := r.db.WithContext(ctx).
		Select("id", "user_id", "type", "score", "risk_level", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *Repo) ListByTier(ctx context.Context, tier Tier) ([]Screening, error) {
	var out []Screening
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("risk_level = ?", tier).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *Repo) Recent(ctx context.Context, limit int) ([]Screening, error) {
	var out []Screening
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Screening{}).Count(&n).Error
	return n, err
}
