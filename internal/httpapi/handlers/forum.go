package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mindease/internal/common"
	"github.com/suPer8Hu/mindease/internal/forum"
)

func forumErr(c *gin.Context, err error, invalidMsg string) {
	switch {
	case errors.Is(err, forum.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40403, "not found")
	case errors.Is(err, forum.ErrForbidden):
		common.Fail(c, http.StatusForbidden, 40304, "not authorized")
	case errors.Is(err, forum.ErrInvalid):
		common.Fail(c, http.StatusBadRequest, 10050, invalidMsg)
	default:
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
	}
}

// viewer is 0 for anonymous readers.
func viewer(c *gin.Context) uint64 {
	uid, _ := userIDFromContext(c)
	return uid
}

func (h *Handler) ListPosts(c *gin.Context) {
	out, err := h.Forum.List(c.Request.Context(), viewer(c))
	if err != nil {
		forumErr(c, err, "")
		return
	}
	common.OK(c, out)
}

func (h *Handler) GetPost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	out, err := h.Forum.Get(c.Request.Context(), id, viewer(c))
	if err != nil {
		forumErr(c, err, "")
		return
	}
	common.OK(c, out)
}

type postReq struct {
	Title *string  `json:"title"`
	Body  *string  `json:"body"`
	Tags  []string `json:"tags"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	out, err := h.Forum.Create(c.Request.Context(), viewer(c), deref(req.Title), deref(req.Body), req.Tags)
	if err != nil {
		forumErr(c, err, "title and body are required")
		return
	}
	common.Created(c, out)
}

func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	out, err := h.Forum.Update(c.Request.Context(), viewer(c), id, forum.Update{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		forumErr(c, err, "title and body cannot be empty")
		return
	}
	common.OK(c, out)
}

func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Forum.Delete(c.Request.Context(), viewer(c), id); err != nil {
		forumErr(c, err, "")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}

type commentReq struct {
	Text string `json:"text"`
}

func (h *Handler) AddComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	out, err := h.Forum.AddComment(c.Request.Context(), viewer(c), id, req.Text)
	if err != nil {
		forumErr(c, err, "comment text is required")
		return
	}
	common.Created(c, out)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	out, err := h.Forum.DeleteComment(c.Request.Context(), viewer(c), postID, commentID)
	if err != nil {
		forumErr(c, err, "")
		return
	}
	common.OK(c, out)
}

func (h *Handler) ToggleLike(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	out, err := h.Forum.ToggleLike(c.Request.Context(), viewer(c), id)
	if err != nil {
		forumErr(c, err, "")
		return
	}
	common.OK(c, out)
}
