package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mindease/internal/chat"
	"github.com/suPer8Hu/mindease/internal/common"
	"github.com/suPer8Hu/mindease/internal/httpapi/middleware"
	"github.com/suPer8Hu/mindease/internal/notify"
)

const crisisSupportMessage = "I'm concerned about what you've shared. " +
	"Please reach out to a professional or crisis helpline if needed."

type chatReq struct {
	Message string `json:"message"`
}

type crisisAlertView struct {
	Detected bool   `json:"detected"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
}

type chatResp struct {
	Message         string           `json:"message"`
	Timestamp       time.Time        `json:"timestamp"`
	IsAuthenticated bool             `json:"is_authenticated"`
	CrisisAlert     *crisisAlertView `json:"crisis_alert,omitempty"`
}

func chatOwner(c *gin.Context) (chat.Owner, *uint64) {
	if uid, ok := userIDFromContext(c); ok {
		return chat.UserOwner(uid), &uid
	}
	return chat.AnonOwner(c.ClientIP()), nil
}

func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	owner, uid := chatOwner(c)
	v := middleware.Verdict(c)

	reply, err := h.ChatSvc.Reply(c.Request.Context(), owner, req.Message, v)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			common.Fail(c, http.StatusBadRequest, 10002, "message is required")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to process message")
		return
	}

	resp := chatResp{
		Message:         reply.Message,
		Timestamp:       reply.Timestamp,
		IsAuthenticated: uid != nil,
	}
	if v.Detected {
		resp.CrisisAlert = &crisisAlertView{Detected: true, Reason: v.Reason, Message: crisisSupportMessage}
		h.Notify.CrisisAlert(notify.Alert{
			User:    h.identity(c, uid),
			Reason:  v.Reason,
			Message: req.Message,
			Source:  c.ClientIP(),
			Origin:  "chat",
		})
	}
	common.OK(c, resp)
}

func (h *Handler) ClearChat(c *gin.Context) {
	owner, _ := chatOwner(c)
	if err := h.ChatSvc.Clear(c.Request.Context(), owner); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to clear conversation")
		return
	}
	common.OK(c, gin.H{"cleared": true})
}

func (h *Handler) ChatHistory(c *gin.Context) {
	owner, _ := chatOwner(c)
	turns, err := h.ChatSvc.History(c.Request.Context(), owner)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to get conversation history")
		return
	}
	common.OK(c, gin.H{"history": turns})
}
