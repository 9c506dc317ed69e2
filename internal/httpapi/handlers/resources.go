package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mindease/internal/common"
	"github.com/suPer8Hu/mindease/internal/resource"
)

type resourceReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileURL     string `json:"file_url"`
	Category    string `json:"category"`
	Tags        string `json:"tags"`
}

func (h *Handler) ListResources(c *gin.Context) {
	out, err := h.Resources.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, out)
}

func (h *Handler) CreateResource(c *gin.Context) {
	uid, _ := userIDFromContext(c)
	var req resourceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	r, err := h.Resources.Create(c.Request.Context(), uid, resource.Input{
		Title:       req.Title,
		Description: req.Description,
		FileURL:     req.FileURL,
		Category:    req.Category,
		Tags:        req.Tags,
	})
	if err != nil {
		if errors.Is(err, resource.ErrInvalid) {
			common.Fail(c, http.StatusBadRequest, 10060, err.Error())
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.Created(c, r)
}

func (h *Handler) DeleteResource(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Resources.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40404, "resource not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}
