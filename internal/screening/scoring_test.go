package screening

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_SumsAnswers(t *testing.T) {
	cases := [][]int{
		nil,
		{0},
		{3, 3, 3},
		{1, 2, 3, 0, 1, 2, 3, 0, 1},
	}
	for _, inst := range Instruments() {
		for _, answers := range cases {
			want := 0
			for _, a := range answers {
				want += a
			}
			got := Score(inst, answers)
			assert.Equal(t, want, got.Score, "%s %v", inst, answers)
			assert.GreaterOrEqual(t, got.Score, 0)
		}
	}
}

func TestClassify_PHQ9Boundaries(t *testing.T) {
	cases := map[int]Tier{
		0:  TierLow,
		9:  TierLow,
		10: TierModerate,
		19: TierModerate,
		20: TierHigh,
		27: TierHigh,
	}
	for score, want := range cases {
		assert.Equal(t, want, Classify(PHQ9, score), "score=%d", score)
	}
}

func TestScore_EmptyPHQ9IsLow(t *testing.T) {
	res := Score(PHQ9, nil)
	assert.Equal(t, Result{Score: 0, Tier: TierLow}, res)
}

func TestClassify_UnbandedInstrumentsAreUnscored(t *testing.T) {
	for _, inst := range []Instrument{GAD7, GHQ12, Instrument("BDI-II")} {
		for _, score := range []int{0, 5, 15, 21, 36} {
			tier := Classify(inst, score)
			assert.Equal(t, TierUnscored, tier, "%s score=%d", inst, score)
			assert.NotEqual(t, TierHigh, tier)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	answers := []int{3, 3, 3, 3, 3, 3, 2, 0, 0}
	first := Score(PHQ9, answers)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(PHQ9, answers))
	}
	assert.Equal(t, Result{Score: 20, Tier: TierHigh}, first)
}

func TestParseInstrument(t *testing.T) {
	inst, err := ParseInstrument(" phq-9 ")
	require.NoError(t, err)
	assert.Equal(t, PHQ9, inst)

	_, err = ParseInstrument("MMPI")
	assert.ErrorIs(t, err, ErrUnknownInstrument)
}

func TestValidate(t *testing.T) {
	ok := []Response{{Question: "q1", Answer: 0}, {Question: "q2", Answer: 3}}
	require.NoError(t, Validate(PHQ9, ok))

	cases := []struct {
		name string
		inst Instrument
		in   []Response
		want error
	}{
		{"unknown", Instrument("X"), ok, ErrUnknownInstrument},
		{"empty", PHQ9, nil, ErrNoResponses},
		{"negative", PHQ9, []Response{{Answer: -1}}, ErrAnswerOutOfRange},
		{"too large", GAD7, []Response{{Answer: 4}}, ErrAnswerOutOfRange},
		{"too many", GAD7, make([]Response, 8), ErrTooManyResponses},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Validate(c.inst, c.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, c.want), "got %v", err)
			assert.True(t, IsValidationError(err))
		})
	}
}
