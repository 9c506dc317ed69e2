package chat

import (
	"context"
	"errors"
	"time"

	"github.com/suPer8Hu/mindease/internal/common"
	"gorm.io/gorm"
)

var ErrVersionConflict = errors.New("conversation modified concurrently")

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) FindByOwner(ctx context.Context, o Owner) (*Conversation, error) {
	var c Conversation
	if err := r.db.WithContext(ctx).
		Where("owner_key = ?", o.Key()).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrCreate returns the owner's conversation, creating it on first use.
func (r *Repo) GetOrCreate(ctx context.Context, o Owner) (*Conversation, error) {
	c, err := r.FindByOwner(ctx, o)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pid, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	c = &Conversation{PublicID: pid, OwnerKey: o.Key(), UserID: o.UserID}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		// lost a creation race on owner_key
		if existing, getErr := r.FindByOwner(ctx, o); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return c, nil
}

type Flag struct {
	Reason string
}

// AppendTurns adds turns and, when flag is set, marks the conversation. The
// update is conditional on c.Version; ErrVersionConflict means reload and retry.
func (r *Repo) AppendTurns(ctx context.Context, c *Conversation, turns []Turn, flag *Flag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		}
		if flag != nil {
			updates["crisis_alert"] = true
			updates["crisis_reason"] = flag.Reason
		}
		res := tx.Model(&Conversation{}).
			Where("id = ? AND version = ?", c.ID, c.Version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}

		for i := range turns {
			turns[i].ConversationID = c.ID
		}
		if len(turns) > 0 {
			if err := tx.Create(&turns).Error; err != nil {
				return err
			}
		}
		c.Version++
		return nil
	})
}

func (r *Repo) ListTurns(ctx context.Context, conversationID uint64) ([]Turn, error) {
	var out []Turn
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *Repo) DeleteByOwner(ctx context.Context, o Owner) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c Conversation
		err := tx.Where("owner_key = ?", o.Key()).First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", c.ID).Delete(&Turn{}).Error; err != nil {
			return err
		}
		return tx.Delete(&c).Error
	})
}

// ListFlagged returns crisis-flagged conversations, most recently active first.
func (r *Repo) ListFlagged(ctx context.Context) ([]Conversation, error) {
	var out []Conversation
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Turns", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("crisis_alert = ?", true).
		Order("updated_at DESC").
		Find(&out).Error
	return out, err
}
