package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mindease/internal/auth"
	"github.com/suPer8Hu/mindease/internal/common"
	"github.com/suPer8Hu/mindease/internal/httpapi/middleware"
	"github.com/suPer8Hu/mindease/internal/models"
	"github.com/suPer8Hu/mindease/internal/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func userIDFromContext(c *gin.Context) (uint64, bool) {
	return middleware.UserID(c)
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Age      *int   `json:"age"`
	Gender   string `json:"gender"`
}

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

func (h *Handler) authPayload(u *models.User) (gin.H, error) {
	token, err := auth.SignJWT(u.ID, string(u.Role), h.Cfg.JWTSecret, h.Cfg.JWTTTL)
	if err != nil {
		return nil, err
	}
	return gin.H{"token": token, "user": u}, nil
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "name is required")
		return
	}
	if !validEmail(req.Email) {
		common.Fail(c, http.StatusBadRequest, 10002, "please include a valid email")
		return
	}
	if len(req.Password) < 6 {
		common.Fail(c, http.StatusBadRequest, 10002, "password must be 6 or more characters")
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		common.Fail(c, http.StatusBadRequest, 10002, "invalid role")
		return
	}

	ctx := c.Request.Context()
	var n int64
	if err := h.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", req.Email).Count(&n).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if n > 0 {
		common.Fail(c, http.StatusBadRequest, 10003, "user already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20002, "failed to hash password")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(req.Phone),
		Age:          req.Age,
		Gender:       strings.TrimSpace(req.Gender),
		Role:         role,
		IsActive:     true,
	}
	user.ProfileCompleteness = user.Completeness()
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, 10003, "failed to create user (maybe email already exists)")
		return
	}

	payload, err := h.authPayload(&user)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}

	h.Notify.Dispatch(notify.Email{
		To:      user.Email,
		Subject: "Welcome to MindEase",
		Body: "Hello " + user.Name + ",\n\n" +
			"Welcome to MindEase. Your account has been created.\n\n" +
			"If you are ever in crisis, please contact your local emergency services or campus counselling.\n\n" +
			"MindEase\n",
	})

	common.Created(c, payload)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "email and password required")
		return
	}

	ctx := c.Request.Context()
	var user models.User
	if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusBadRequest, 10010, "invalid credentials")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		common.Fail(c, http.StatusBadRequest, 10010, "invalid credentials")
		return
	}
	if !user.IsActive {
		common.Fail(c, http.StatusForbidden, 40302, "account is deactivated")
		return
	}

	now := time.Now()
	user.LastLogin = &now
	if err := h.DB.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		h.Log.Warn("failed to record last login", zap.Uint64("user_id", user.ID), zap.Error(err))
	}

	payload, err := h.authPayload(&user)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}
	common.OK(c, payload)
}

func (h *Handler) Me(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	common.OK(c, u)
}

type profileReq struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Age    *int    `json:"age"`
	Gender *string `json:"gender"`
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req profileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > 50 {
			common.Fail(c, http.StatusBadRequest, 10002, "name must be 1-50 characters")
			return
		}
		u.Name = name
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Age != nil {
		if *req.Age < 13 || *req.Age > 120 {
			common.Fail(c, http.StatusBadRequest, 10002, "age must be between 13 and 120")
			return
		}
		u.Age = req.Age
	}
	if req.Gender != nil {
		u.Gender = strings.TrimSpace(*req.Gender)
	}
	u.ProfileCompleteness = u.Completeness()

	if err := h.DB.WithContext(c.Request.Context()).Model(u).
		Select("name", "phone", "age", "gender", "profile_completeness").
		Updates(u).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, u)
}

func (h *Handler) ListCounselors(c *gin.Context) {
	var out []models.User
	if err := h.DB.WithContext(c.Request.Context()).
		Select("id", "name", "email", "role").
		Where("role = ? AND is_active = ?", models.RoleCounselor, true).
		Order("name ASC").
		Find(&out).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, out)
}

func (h *Handler) ListUsers(c *gin.Context) {
	page := common.PageFromQuery(c)
	q := h.DB.WithContext(c.Request.Context()).Model(&models.User{})
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	var users []models.User
	if err := q.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"users": users, "pagination": page.Result(total)})
}

type statusReq struct {
	IsActive *bool `json:"is_active"`
}

func (h *Handler) SetUserStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		common.Fail(c, http.StatusBadRequest, 10002, "is_active required")
		return
	}
	ctx := c.Request.Context()
	var u models.User
	if err := h.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "user not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	// Update with a map so false is written.
	if err := h.DB.WithContext(ctx).Model(&u).Updates(map[string]any{"is_active": *req.IsActive}).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	u.IsActive = *req.IsActive
	common.OK(c, u)
}
