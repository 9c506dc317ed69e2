package common

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNewULID_Unique(t *testing.T) {
	a, err := NewULID()
	if err != nil {
		t.Fatalf("ulid: %v", err)
	}
	b, _ := NewULID()
	if len(a) != 26 || a == b {
		t.Fatalf("unexpected ulids %q %q", a, b)
	}
}

func TestPageFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/x?page=3&limit=500", nil)

	p := PageFromQuery(c)
	if p.Page != 3 || p.Limit != 100 || p.Offset() != 200 {
		t.Fatalf("unexpected page %+v offset=%d", p, p.Offset())
	}

	r := Page{Page: 2, Limit: 20}.Result(41)
	if r.TotalPages != 3 || !r.HasNext || !r.HasPrev {
		t.Fatalf("unexpected pagination %+v", r)
	}
}
