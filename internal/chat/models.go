package chat

import (
	"strconv"
	"time"

	"github.com/suPer8Hu/mindease/internal/models"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Conversation is the persisted chat history of one owner.
type Conversation struct {
	ID           uint64       `gorm:"primaryKey;autoIncrement" json:"-"`
	PublicID     string       `gorm:"type:varchar(26);uniqueIndex;not null" json:"id"`
	OwnerKey     string       `gorm:"type:varchar(96);uniqueIndex;not null" json:"-"`
	UserID       *uint64      `gorm:"index" json:"-"`
	CrisisAlert  bool         `gorm:"not null;default:false;index" json:"crisis_alert"`
	CrisisReason string       `gorm:"type:varchar(255)" json:"crisis_reason,omitempty"`
	Version      int          `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	User         *models.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Turns        []Turn       `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (Conversation) TableName() string { return "conversations" }

type Turn struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"not null;index" json:"-"`
	Sender         string    `gorm:"type:varchar(8);not null" json:"sender"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	Timestamp      time.Time `gorm:"not null" json:"timestamp"`
}

func (Turn) TableName() string { return "conversation_turns" }

// Owner identifies who a conversation belongs to. Anonymous owners are keyed
// by their network address.
type Owner struct {
	UserID *uint64
	Anon   string
}

func UserOwner(id uint64) Owner { return Owner{UserID: &id} }

func AnonOwner(addr string) Owner {
	b := []byte(addr)
	for i, c := range b {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			b[i] = '_'
		}
	}
	return Owner{Anon: "anon_" + string(b)}
}

func (o Owner) Key() string {
	if o.UserID != nil {
		return "user_" + strconv.FormatUint(*o.UserID, 10)
	}
	return o.Anon
}
