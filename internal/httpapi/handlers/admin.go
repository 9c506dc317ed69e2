package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mindease/internal/booking"
	"github.com/suPer8Hu/mindease/internal/common"
	"github.com/suPer8Hu/mindease/internal/forum"
	"github.com/suPer8Hu/mindease/internal/models"
	"github.com/suPer8Hu/mindease/internal/screening"
	"gorm.io/gorm"
)

const dashboardRecent = 5

func (h *Handler) Crises(c *gin.Context) {
	out, err := h.ChatSvc.Flagged(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"crises": out})
}

func (h *Handler) ScreeningAlerts(c *gin.Context) {
	out, err := h.Screenings.HighRisk(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"screenings": out})
}

type dashboard struct {
	UserCount        int64                 `json:"user_count"`
	StudentCount     int64                 `json:"student_count"`
	CounselorCount   int64                 `json:"counselor_count"`
	ScreeningsCount  int64                 `json:"screenings_count"`
	BookingsCount    int64                 `json:"bookings_count"`
	ForumPostsCount  int64                 `json:"forum_posts_count"`
	RecentScreenings []screening.Screening `json:"recent_screenings"`
	RecentBookings   []booking.Booking     `json:"recent_bookings"`
	RecentForumPosts []forum.PostView      `json:"recent_forum_posts"`
}

func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	var d dashboard
	users := func() *gorm.DB { return h.DB.WithContext(ctx).Model(&models.User{}) }

	if err := users().Count(&d.UserCount).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if err := users().Where("role = ?", models.RoleStudent).Count(&d.StudentCount).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if err := users().Where("role = ?", models.RoleCounselor).Count(&d.CounselorCount).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	var err error
	if d.ScreeningsCount, err = h.Screenings.Count(ctx); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if d.ForumPostsCount, err = h.Forum.Count(ctx); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if d.RecentScreenings, err = h.Screenings.Recent(ctx, dashboardRecent); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if d.RecentBookings, d.BookingsCount, err = h.Bookings.All(ctx, 0, dashboardRecent); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if d.RecentForumPosts, err = h.Forum.Recent(ctx, dashboardRecent); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, d)
}
