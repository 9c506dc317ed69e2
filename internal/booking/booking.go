package booking

import (
	"context"
	"errors"
	"time"

	"github.com/suPer8Hu/mindease/internal/models"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return st, true
	}
	return "", false
}

var (
	ErrNotFound         = errors.New("booking not found")
	ErrInvalidCounselor = errors.New("invalid counselor selected")
	ErrForbidden        = errors.New("not allowed to change this booking")
)

type Booking struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID   uint64    `gorm:"not null;index" json:"student_id"`
	CounselorID uint64    `gorm:"not null;index" json:"counselor_id"`
	Datetime    time.Time `gorm:"not null;index" json:"datetime"`
	Status      Status    `gorm:"type:varchar(16);not null;default:Pending" json:"status"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Student   *models.User `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Counselor *models.User `gorm:"foreignKey:CounselorID" json:"counselor,omitempty"`
}

func (Booking) TableName() string { return "bookings" }

// CanSetStatus: only the counselor confirms or completes; either participant
// may cancel or return a booking to pending.
func (b *Booking) CanSetStatus(actor uint64, st Status) bool {
	switch st {
	case StatusConfirmed, StatusCompleted:
		return actor == b.CounselorID
	default:
		return actor == b.StudentID || actor == b.CounselorID
	}
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) withParties(ctx context.Context) *gorm.DB {
	pick := func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }
	return s.db.WithContext(ctx).Preload("Student", pick).Preload("Counselor", pick)
}

func (s *Service) get(ctx context.Context, id uint64) (*Booking, error) {
	var b Booking
	err := s.withParties(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Service) Create(ctx context.Context, studentID, counselorID uint64, at time.Time, notes string) (*Booking, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND role = ? AND is_active = ?", counselorID, models.RoleCounselor, true).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrInvalidCounselor
	}

	b := &Booking{
		StudentID:   studentID,
		CounselorID: counselorID,
		Datetime:    at.UTC(),
		Status:      StatusPending,
		Notes:       notes,
	}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return s.get(ctx, b.ID)
}

// Mine lists bookings where u is the counselor (for counselors) or the student.
func (s *Service) Mine(ctx context.Context, u *models.User) ([]Booking, error) {
	col := "student_id"
	if u.Role == models.RoleCounselor {
		col = "counselor_id"
	}
	var out []Booking
	err := s.withParties(ctx).
		Where(col+" = ?", u.ID).
		Order("datetime ASC").
		Find(&out).Error
	return out, err
}

func (s *Service) UpdateStatus(ctx context.Context, actor, id uint64, st Status) (*Booking, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.CanSetStatus(actor, st) {
		return nil, ErrForbidden
	}
	if err := s.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ?", id).
		Update("status", st).Error; err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *Service) All(ctx context.Context, offset, limit int) ([]Booking, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&Booking{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []Booking
	err := s.withParties(ctx).
		Order("datetime DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, total, err
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Booking, error) {
	out, _, err := s.All(ctx, 0, limit)
	return out, err
}
