package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mindease/internal/ai"
	"github.com/suPer8Hu/mindease/internal/booking"
	"github.com/suPer8Hu/mindease/internal/chat"
	"github.com/suPer8Hu/mindease/internal/common"
	"github.com/suPer8Hu/mindease/internal/config"
	"github.com/suPer8Hu/mindease/internal/crisis"
	"github.com/suPer8Hu/mindease/internal/feedback"
	"github.com/suPer8Hu/mindease/internal/forum"
	"github.com/suPer8Hu/mindease/internal/models"
	"github.com/suPer8Hu/mindease/internal/notify"
	"github.com/suPer8Hu/mindease/internal/resource"
	"github.com/suPer8Hu/mindease/internal/screening"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the process-level collaborators built by cmd/server.
type Deps struct {
	Provider   ai.Provider
	Contexts   chat.ContextStore
	Dispatcher *notify.Dispatcher
	Log        *zap.Logger
}

type Handler struct {
	DB     *gorm.DB
	Cfg    config.Config
	Log    *zap.Logger
	Notify *notify.Dispatcher

	Pipeline   *crisis.Pipeline
	Screenings *screening.Service
	ChatSvc    *chat.Service
	Bookings   *booking.Service
	Forum      *forum.Service
	Resources  *resource.Service
	Feedback   *feedback.Service
}

func NewHandler(db *gorm.DB, cfg config.Config, d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	dispatcher := d.Dispatcher
	if dispatcher == nil {
		dispatcher = notify.NewDispatcher("", nil, log)
	}

	screenings := screening.NewService(screening.NewRepo(db))
	return &Handler{
		DB:     db,
		Cfg:    cfg,
		Log:    log,
		Notify: dispatcher,

		Pipeline:   crisis.NewPipeline(screenings, log.Named("crisis")),
		Screenings: screenings,
		ChatSvc:    chat.NewService(chat.NewRepo(db), d.Provider, d.Contexts, log.Named("chat")),
		Bookings:   booking.NewService(db),
		Forum:      forum.NewService(db),
		Resources:  resource.NewService(db),
		Feedback:   feedback.NewService(db),
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"status": "ok"})
}

// currentUser loads the authenticated user, failing the request when it is
// missing or deactivated.
func (h *Handler) currentUser(c *gin.Context) (*models.User, bool) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return nil, false
	}
	var u models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&u, uid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusUnauthorized, 40103, "user not found")
			return nil, false
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return nil, false
	}
	if !u.IsActive {
		common.Fail(c, http.StatusForbidden, 40302, "account is deactivated")
		return nil, false
	}
	return &u, true
}

// identity returns the alert identity of an optional user id.
func (h *Handler) identity(c *gin.Context, uid *uint64) string {
	if uid == nil {
		return ""
	}
	var u models.User
	if err := h.DB.WithContext(c.Request.Context()).Select("id", "name", "email").First(&u, *uid).Error; err != nil {
		return "user #" + strconv.FormatUint(*uid, 10)
	}
	return u.Identity()
}

func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid "+name)
		return 0, false
	}
	return id, true
}
