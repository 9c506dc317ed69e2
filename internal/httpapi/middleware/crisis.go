package middleware

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mindease/internal/crisis"
)

const CrisisKey = "crisis"

const maxScanBody = 64 << 10

// CrisisEvaluation runs the crisis pipeline before the handler and leaves
// the verdict on both the gin context and the request context. It never
// rejects a request.
func CrisisEvaluation(p *crisis.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := crisis.Input{SourceAddress: c.ClientIP()}
		if uid, ok := UserID(c); ok {
			in.UserID = &uid
		}
		in.Message = peekMessage(c)

		v := p.Evaluate(c.Request.Context(), in)
		c.Set(CrisisKey, v)
		c.Request = c.Request.WithContext(crisis.WithVerdict(c.Request.Context(), v))
		c.Next()
	}
}

// peekMessage reads the "message" field of a JSON body and restores the body
// for the handler.
func peekMessage(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	orig := c.Request.Body
	raw, err := io.ReadAll(io.LimitReader(orig, maxScanBody))
	c.Request.Body = readCloser{io.MultiReader(bytes.NewReader(raw), orig), orig}
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return body.Message
}

// Verdict returns the verdict left by CrisisEvaluation.
func Verdict(c *gin.Context) crisis.Verdict {
	if v, ok := c.Get(CrisisKey); ok {
		if vv, ok := v.(crisis.Verdict); ok {
			return vv
		}
	}
	v, _ := crisis.FromContext(c.Request.Context())
	return v
}

type readCloser struct {
	io.Reader
	io.Closer
}
