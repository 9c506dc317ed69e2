package forum

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("title and content are required")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) load(ctx context.Context, id uint64) (*Post, error) {
	var p Post
	err := s.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Likes").
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) List(ctx context.Context, viewer uint64) ([]PostView, error) {
	var posts []Post
	if err := s.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Likes").
		Order("created_at DESC").
		Order("id DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	out := make([]PostView, 0, len(posts))
	for i := range posts {
		out = append(out, View(&posts[i], viewer))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id, viewer uint64) (PostView, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return PostView{}, err
	}
	return View(p, viewer), nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) Create(ctx context.Context, author uint64, title, body string, tags []string) (PostView, error) {
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	if title == "" || body == "" {
		return PostView{}, ErrInvalid
	}
	p := &Post{UserID: author, Title: title, Body: body, Tags: cleanTags(tags)}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return PostView{}, err
	}
	return View(p, author), nil
}

type Update struct {
	Title *string
	Body  *string
	Tags  []string
}

func (s *Service) Update(ctx context.Context, actor, id uint64, u Update) (PostView, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return PostView{}, err
	}
	if !CanEdit(actor, p.UserID) {
		return PostView{}, ErrForbidden
	}
	if u.Title != nil {
		if strings.TrimSpace(*u.Title) == "" {
			return PostView{}, ErrInvalid
		}
		p.Title = strings.TrimSpace(*u.Title)
	}
	if u.Body != nil {
		if strings.TrimSpace(*u.Body) == "" {
			return PostView{}, ErrInvalid
		}
		p.Body = strings.TrimSpace(*u.Body)
	}
	if u.Tags != nil {
		p.Tags = cleanTags(u.Tags)
	}
	if err := s.db.WithContext(ctx).
		Model(p).
		Select("title", "body", "tags", "updated_at").
		Updates(p).Error; err != nil {
		return PostView{}, err
	}
	return View(p, actor), nil
}

func (s *Service) Delete(ctx context.Context, actor, id uint64) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !CanDelete(actor, p.UserID, 0) {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Post{}, id).Error
	})
}

func (s *Service) AddComment(ctx context.Context, actor, postID uint64, text string) (PostView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return PostView{}, ErrInvalid
	}
	if _, err := s.load(ctx, postID); err != nil {
		return PostView{}, err
	}
	if err := s.db.WithContext(ctx).Create(&Comment{PostID: postID, UserID: actor, Text: text}).Error; err != nil {
		return PostView{}, err
	}
	return s.Get(ctx, postID, actor)
}

func (s *Service) DeleteComment(ctx context.Context, actor, postID, commentID uint64) (PostView, error) {
	p, err := s.load(ctx, postID)
	if err != nil {
		return PostView{}, err
	}
	var target *Comment
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			target = &p.Comments[i]
			break
		}
	}
	if target == nil {
		return PostView{}, ErrNotFound
	}
	if !CanDelete(actor, target.UserID, p.UserID) {
		return PostView{}, ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(&Comment{}, commentID).Error; err != nil {
		return PostView{}, err
	}
	return s.Get(ctx, postID, actor)
}

// ToggleLike likes the post for actor, or removes an existing like.
func (s *Service) ToggleLike(ctx context.Context, actor, postID uint64) (PostView, error) {
	if _, err := s.load(ctx, postID); err != nil {
		return PostView{}, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, actor).Delete(&Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&Like{PostID: postID, UserID: actor}).Error
	})
	if err != nil {
		return PostView{}, err
	}
	return s.Get(ctx, postID, actor)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Post{}).Count(&n).Error
	return n, err
}

func (s *Service) Recent(ctx context.Context, limit int) ([]PostView, error) {
	var posts []Post
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	out := make([]PostView, 0, len(posts))
	for i := range posts {
		out = append(out, View(&posts[i], 0))
	}
	return out, nil
}
