package forum

import "time"

// PostView never carries author identity; the forum is anonymous.
type PostView struct {
	ID                   uint64        `json:"id"`
	Title                string        `json:"title"`
	Body                 string        `json:"body"`
	Tags                 []string      `json:"tags"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
	Comments             []CommentView `json:"comments"`
	CanEdit              bool          `json:"can_edit"`
	CanDelete            bool          `json:"can_delete"`
	LikesCount           int           `json:"likes_count"`
	CommentsCount        int           `json:"comments_count"`
	IsLikedByCurrentUser bool          `json:"is_liked_by_current_user"`
}

type CommentView struct {
	ID        uint64    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	CanDelete bool      `json:"can_delete"`
}

// View renders p for viewer (0 when anonymous).
func View(p *Post, viewer uint64) PostView {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	v := PostView{
		ID:            p.ID,
		Title:         p.Title,
		Body:          p.Body,
		Tags:          tags,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Comments:      make([]CommentView, 0, len(p.Comments)),
		CanEdit:       CanEdit(viewer, p.UserID),
		CanDelete:     CanDelete(viewer, p.UserID, 0),
		LikesCount:    len(p.Likes),
		CommentsCount: len(p.Comments),
	}
	for _, c := range p.Comments {
		v.Comments = append(v.Comments, CommentView{
			ID:        c.ID,
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
			CanDelete: CanDelete(viewer, c.UserID, p.UserID),
		})
	}
	if viewer != 0 {
		for _, l := range p.Likes {
			if l.UserID == viewer {
				v.IsLikedByCurrentUser = true
				break
			}
		}
	}
	return v
}
