package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleCounselor Role = "counselor"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleStudent, RoleCounselor, RoleAdmin:
		return r, true
	case "":
		return RoleStudent, true
	default:
		return "", false
	}
}

type User struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string     `gorm:"type:varchar(50);not null" json:"name"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Phone        string     `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Age          *int       `json:"age,omitempty"`
	Gender       string     `gorm:"type:varchar(8)" json:"gender,omitempty"`
	Role         Role       `gorm:"type:varchar(16);index;not null;default:student" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`

	ProfileCompleteness int `gorm:"not null;default:0" json:"profile_completeness"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Completeness is 20 points for each of name, email, phone, age and gender.
func (u *User) Completeness() int {
	n := 0
	if u.Name != "" {
		n += 20
	}
	if u.Email != "" {
		n += 20
	}
	if u.Phone != "" {
		n += 20
	}
	if u.Age != nil && *u.Age > 0 {
		n += 20
	}
	if u.Gender != "" {
		n += 20
	}
	return n
}

// Identity is what alerts and logs show for a user.
func (u *User) Identity() string {
	if u == nil {
		return "Anonymous"
	}
	return u.Name + " <" + u.Email + ">"
}
