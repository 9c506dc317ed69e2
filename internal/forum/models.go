package forum

import (
	"time"

	"gorm.io/datatypes"
)

type Post struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;index"`
	Title     string `gorm:"type:varchar(200);not null"`
	Body      string `gorm:"type:text;not null"`
	Tags      datatypes.JSONSlice[string]
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Comments []Comment `gorm:"foreignKey:PostID"`
	Likes    []Like    `gorm:"foreignKey:PostID"`
}

func (Post) TableName() string { return "forum_posts" }

type Comment struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	PostID    uint64 `gorm:"not null;index"`
	UserID    uint64 `gorm:"not null"`
	Text      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (Comment) TableName() string { return "forum_comments" }

type Like struct {
	PostID    uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (Like) TableName() string { return "forum_likes" }

// CanDelete is the single authorization rule for forum deletions: the actor
// owns the resource, or owns the resource's parent (post owner moderating a
// comment). Pass parentOwner 0 when there is no parent.
func CanDelete(actor, resourceOwner, parentOwner uint64) bool {
	if actor == 0 {
		return false
	}
	return actor == resourceOwner || (parentOwner != 0 && actor == parentOwner)
}

func CanEdit(actor, owner uint64) bool {
	return actor != 0 && actor == owner
}
