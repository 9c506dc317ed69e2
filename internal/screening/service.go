package screening

import (
	"context"
)

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// Submit validates, scores and stores a questionnaire for userID.
// Validation failures are returned unwrapped so callers can use IsValidationError.
func (s *Service) Submit(ctx context.Context, userID uint64, instrument string, responses []Response) (*Screening, error) {
	inst, err := ParseInstrument(instrument)
	if err != nil {
		return nil, err
	}
	if err := Validate(inst, responses); err != nil {
		return nil, err
	}

	res := ScoreResponses(inst, responses)
	rec := &Screening{
		UserID:    userID,
		Type:      inst,
		Responses: responses,
		Score:     res.Score,
		RiskTier:  res.Tier,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) History(ctx context.Context, userID uint64) ([]Screening, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) HighRisk(ctx context.Context) ([]Screening, error) {
	return s.repo.ListByTier(ctx, TierHigh)
}

// LatestScreening satisfies crisis.History.
func (s *Service) LatestScreening(ctx context.Context, userID uint64) (*Screening, error) {
	return s.repo.Latest(ctx, userID)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Screening, error) {
	return s.repo.Recent(ctx, limit)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
