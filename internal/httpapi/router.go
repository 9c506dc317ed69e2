package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mindease/internal/common"
	"github.com/suPer8Hu/mindease/internal/config"
	"github.com/suPer8Hu/mindease/internal/httpapi/handlers"
	"github.com/suPer8Hu/mindease/internal/httpapi/middleware"
	"github.com/suPer8Hu/mindease/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, cfg config.Config, deps handlers.Deps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(log.Named("http")))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.SecureHeaders())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, deps)
	authed := middleware.AuthRequired(cfg.JWTSecret)
	optional := middleware.OptionalAuth(cfg.JWTSecret)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	crisisCheck := middleware.CrisisEvaluation(h.Pipeline)

	r.GET("/ping", h.Ping)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.GET("/me", authed, h.Me)

	users := api.Group("/users")
	users.GET("/counselors", h.ListCounselors)
	users.GET("/profile", authed, h.Me)
	users.PUT("/profile", authed, h.UpdateProfile)
	users.GET("", authed, adminOnly, h.ListUsers)
	users.PUT("/:id/status", authed, adminOnly, h.SetUserStatus)

	screenings := api.Group("/screenings", authed)
	screenings.POST("", crisisCheck, h.SubmitScreening)
	screenings.GET("", h.ListScreenings)

	chatbot := api.Group("/chatbot", optional)
	chatbot.POST("/chat", crisisCheck, h.Chat)
	chatbot.POST("/clear", h.ClearChat)
	chatbot.GET("/history", h.ChatHistory)

	bookings := api.Group("/bookings", authed)
	bookings.POST("", h.CreateBooking)
	bookings.GET("", h.MyBookings)
	bookings.PUT("/:id", h.UpdateBookingStatus)

	forum := api.Group("/forum")
	forum.GET("", optional, h.ListPosts)
	forum.GET("/:id", optional, h.GetPost)
	forum.POST("", authed, h.CreatePost)
	forum.PUT("/:id", authed, h.UpdatePost)
	forum.DELETE("/:id", authed, h.DeletePost)
	forum.POST("/:id/comment", authed, h.AddComment)
	forum.DELETE("/:id/comment/:commentId", authed, h.DeleteComment)
	forum.POST("/:id/like", authed, h.ToggleLike)

	resources := api.Group("/resources")
	resources.GET("", h.ListResources)
	resources.POST("", authed, adminOnly, h.CreateResource)
	resources.DELETE("/:id", authed, adminOnly, h.DeleteResource)

	feedback := api.Group("/feedback")
	feedback.POST("", h.SubmitFeedback)
	feedback.GET("", authed, adminOnly, h.ListFeedback)
	feedback.PUT("/:id", authed, adminOnly, h.RespondFeedback)

	admin := api.Group("/admin", authed, adminOnly)
	admin.GET("/crises", h.Crises)
	admin.GET("/screening-alerts", h.ScreeningAlerts)
	admin.GET("/dashboard", h.Dashboard)
	admin.GET("/bookings", h.AllBookings)

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
