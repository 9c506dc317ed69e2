package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mindease/internal/common"
	"github.com/suPer8Hu/mindease/internal/httpapi/middleware"
	"github.com/suPer8Hu/mindease/internal/notify"
	"github.com/suPer8Hu/mindease/internal/screening"
	"go.uber.org/zap"
)

type submitScreeningReq struct {
	Type      string               `json:"type"`
	Responses []screening.Response `json:"responses"`
}

// SubmitScreening runs behind CrisisEvaluation, so the verdict reflects the
// user's history before this submission.
func (h *Handler) SubmitScreening(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req submitScreeningReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	rec, err := h.Screenings.Submit(c.Request.Context(), u.ID, req.Type, req.Responses)
	if err != nil {
		if screening.IsValidationError(err) {
			common.Fail(c, http.StatusBadRequest, 10030, err.Error())
			return
		}
		h.Log.Error("screening save failed", zap.Uint64("user_id", u.ID), zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	// Alerts only follow a stored submission; rejected requests notify no one.
	if v := middleware.Verdict(c); v.Detected {
		h.Notify.CrisisAlert(notify.Alert{
			User:   u.Identity(),
			Reason: v.Reason,
			Source: c.ClientIP(),
			Origin: "screening " + string(rec.Type),
		})
	}
	if rec.RiskTier == screening.TierHigh {
		h.Notify.HighRiskScreening(u.Identity(), string(rec.Type), rec.Score)
	}

	common.Created(c, gin.H{"screening": rec})
}

func (h *Handler) ListScreenings(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	out, err := h.Screenings.History(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"screenings": out})
}
