package crisis

import (
	"context"
	"fmt"

	"github.com/suPer8Hu/mindease/internal/screening"
	"go.uber.org/zap"
)

type Verdict struct {
	Detected bool   `json:"detected"`
	Reason   string `json:"reason,omitempty"`
}

type Input struct {
	UserID        *uint64
	Message       string
	SourceAddress string
}

// History supplies the latest screening for a user; (nil, nil) means none.
type History interface {
	LatestScreening(ctx context.Context, userID uint64) (*screening.Screening, error)
}

type Pipeline struct {
	history  History
	keywords []string
	log      *zap.Logger
}

func NewPipeline(history History, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{history: history, keywords: Keywords, log: log}
}

// Evaluate never fails. The screening check runs first; a keyword hit runs
// second and replaces its reason.
func (p *Pipeline) Evaluate(ctx context.Context, in Input) Verdict {
	var v Verdict

	if in.UserID != nil && p.history != nil {
		if s := p.latest(ctx, *in.UserID); s != nil && s.RiskTier == screening.TierHigh {
			v.Detected = true
			v.Reason = fmt.Sprintf("high-risk screening score (%d)", s.Score)
			p.log.Info("crisis detected from screening",
				zap.Uint64("user_id", *in.UserID), zap.Int("score", s.Score))
		}
	}

	if in.Message != "" {
		if kw, ok := ScanList(p.keywords, in.Message); ok {
			v.Detected = true
			v.Reason = "keyword: " + kw
			p.log.Info("crisis keyword detected",
				zap.String("keyword", kw), zap.String("source", in.SourceAddress))
		}
	}

	return v
}

func (p *Pipeline) latest(ctx context.Context, userID uint64) (s *screening.Screening) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("screening history lookup panicked",
				zap.Uint64("user_id", userID), zap.Any("panic", r))
			s = nil
		}
	}()
	s, err := p.history.LatestScreening(ctx, userID)
	if err != nil {
		p.log.Warn("screening history unavailable, skipping check",
			zap.Uint64("user_id", userID), zap.Error(err))
		return nil
	}
	return s
}
