package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mindease/internal/booking"
	"github.com/suPer8Hu/mindease/internal/common"
)

type createBookingReq struct {
	CounselorID uint64 `json:"counselor_id"`
	Datetime    string `json:"datetime"`
	Notes       string `json:"notes"`
}

func (h *Handler) bookingErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40402, "booking not found")
	case errors.Is(err, booking.ErrInvalidCounselor):
		common.Fail(c, http.StatusBadRequest, 10040, "invalid counselor selected")
	case errors.Is(err, booking.ErrForbidden):
		common.Fail(c, http.StatusForbidden, 40303, "not allowed to change this booking")
	default:
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
	}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.CounselorID == 0 {
		common.Fail(c, http.StatusBadRequest, 10002, "counselor_id required")
		return
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(req.Datetime))
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10002, "datetime must be RFC3339")
		return
	}

	b, err := h.Bookings.Create(c.Request.Context(), uid, req.CounselorID, at, strings.TrimSpace(req.Notes))
	if err != nil {
		h.bookingErr(c, err)
		return
	}
	common.Created(c, b)
}

func (h *Handler) MyBookings(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	out, err := h.Bookings.Mine(c.Request.Context(), u)
	if err != nil {
		h.bookingErr(c, err)
		return
	}
	common.OK(c, out)
}

type bookingStatusReq struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req bookingStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	st, valid := booking.ParseStatus(req.Status)
	if !valid {
		common.Fail(c, http.StatusBadRequest, 10041, "invalid status")
		return
	}

	b, err := h.Bookings.UpdateStatus(c.Request.Context(), uid, id, st)
	if err != nil {
		h.bookingErr(c, err)
		return
	}
	common.OK(c, b)
}

func (h *Handler) AllBookings(c *gin.Context) {
	page := common.PageFromQuery(c)
	out, total, err := h.Bookings.All(c.Request.Context(), page.Offset(), page.Limit)
	if err != nil {
		h.bookingErr(c, err)
		return
	}
	common.OK(c, gin.H{"bookings": out, "pagination": page.Result(total)})
}
