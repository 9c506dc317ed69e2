package screening

import (
	"time"

	"github.com/suPer8Hu/mindease/internal/models"
	"gorm.io/datatypes"
)

// Screening is immutable once stored.
type Screening struct {
	ID        uint64                        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64                        `gorm:"not null;index:idx_screening_user_created,priority:1" json:"-"`
	Type      Instrument                    `gorm:"type:varchar(16);not null" json:"type"`
	Responses datatypes.JSONSlice[Response] `json:"responses,omitempty"`
	Score     int                           `gorm:"not null" json:"score"`
	RiskTier  Tier                          `gorm:"column:risk_level;type:varchar(16);index;not null" json:"risk_level"`
	CreatedAt time.Time                     `gorm:"index:idx_screening_user_created,priority:2" json:"created_at"`

	User *models.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Screening) TableName() string { return "screenings" }
