package screening

import (
	"errors"
	"fmt"
	"strings"
)

type Instrument string

const (
	PHQ9  Instrument = "PHQ-9"
	GAD7  Instrument = "GAD-7"
	GHQ12 Instrument = "GHQ-12"
)

type Tier string

const (
	TierLow      Tier = "Low"
	TierModerate Tier = "Moderate"
	TierHigh     Tier = "High"
	// TierUnscored marks results from instruments that have no threshold table.
	// It is not a low-risk assessment.
	TierUnscored Tier = "Unscored"
)

var (
	ErrUnknownInstrument = errors.New("unknown screening type")
	ErrNoResponses       = errors.New("responses must be a non-empty array")
	ErrTooManyResponses  = errors.New("too many responses for screening type")
	ErrAnswerOutOfRange  = errors.New("answer out of range")
)

type threshold struct {
	min  int
	tier Tier
}

type instrumentSpec struct {
	items     int
	maxAnswer int
	// highest band first
	bands []threshold
}

var instruments = map[Instrument]instrumentSpec{
	PHQ9: {items: 9, maxAnswer: 3, bands: []threshold{
		{min: 20, tier: TierHigh},
		{min: 10, tier: TierModerate},
		{min: 0, tier: TierLow},
	}},
	GAD7:  {items: 7, maxAnswer: 3},
	GHQ12: {items: 12, maxAnswer: 3},
}

func ParseInstrument(s string) (Instrument, error) {
	inst := Instrument(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := instruments[inst]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownInstrument, s)
	}
	return inst, nil
}

// Instruments lists the supported questionnaire types.
func Instruments() []Instrument {
	return []Instrument{PHQ9, GAD7, GHQ12}
}

type Response struct {
	Question string `json:"question"`
	Answer   int    `json:"answer"`
}

type Result struct {
	Score int  `json:"score"`
	Tier  Tier `json:"risk_level"`
}

// Score sums answers and classifies the total. It is pure and never fails.
func Score(inst Instrument, answers []int) Result {
	total := 0
	for _, a := range answers {
		total += a
	}
	return Result{Score: total, Tier: Classify(inst, total)}
}

func ScoreResponses(inst Instrument, responses []Response) Result {
	answers := make([]int, len(responses))
	for i, r := range responses {
		answers[i] = r.Answer
	}
	return Score(inst, answers)
}

// Classify maps a total score to a tier using the instrument's bands.
// Instruments without bands are Unscored regardless of score.
func Classify(inst Instrument, score int) Tier {
	def, ok := instruments[inst]
	if !ok || len(def.bands) == 0 {
		return TierUnscored
	}
	for _, b := range def.bands {
		if score >= b.min {
			return b.tier
		}
	}
	return TierLow
}

// Validate checks a submission before it is scored.
func Validate(inst Instrument, responses []Response) error {
	def, ok := instruments[inst]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownInstrument, inst)
	}
	if len(responses) == 0 {
		return ErrNoResponses
	}
	if len(responses) > def.items {
		return fmt.Errorf("%w: %s has %d items, got %d", ErrTooManyResponses, inst, def.items, len(responses))
	}
	for i, r := range responses {
		if r.Answer < 0 || r.Answer > def.maxAnswer {
			return fmt.Errorf("%w: response %d must be between 0 and %d", ErrAnswerOutOfRange, i+1, def.maxAnswer)
		}
	}
	return nil
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrUnknownInstrument) ||
		errors.Is(err, ErrNoResponses) ||
		errors.Is(err, ErrTooManyResponses) ||
		errors.Is(err, ErrAnswerOutOfRange)
}
