package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mindease/internal/common"
	"github.com/suPer8Hu/mindease/internal/feedback"
)

type feedbackReq struct {
	Content string `json:"content"`
}

type respondReq struct {
	Response string `json:"response"`
}

func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req feedbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	f, err := h.Feedback.Submit(c.Request.Context(), req.Content)
	if err != nil {
		if errors.Is(err, feedback.ErrEmpty) {
			common.Fail(c, http.StatusBadRequest, 10070, "content is required")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.Created(c, f)
}

func (h *Handler) ListFeedback(c *gin.Context) {
	out, err := h.Feedback.List(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, out)
}

func (h *Handler) RespondFeedback(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req respondReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	f, err := h.Feedback.Respond(c.Request.Context(), id, req.Response)
	switch {
	case errors.Is(err, feedback.ErrEmpty):
		common.Fail(c, http.StatusBadRequest, 10070, "response is required")
	case errors.Is(err, feedback.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40405, "feedback not found")
	case err != nil:
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
	default:
		common.OK(c, f)
	}
}
