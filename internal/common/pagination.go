package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type Page struct {
	Page  int `json:"current_page"`
	Limit int `json:"limit"`
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// PageFromQuery reads ?page and ?limit, defaulting to 1 and 20 and capping limit at 100.
func PageFromQuery(c *gin.Context) Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return Page{Page: page, Limit: limit}
}

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	Total       int64 `json:"total"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

func (p Page) Result(total int64) Pagination {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		CurrentPage: p.Page,
		TotalPages:  pages,
		Total:       total,
		HasNext:     p.Page < pages,
		HasPrev:     p.Page > 1,
	}
}
