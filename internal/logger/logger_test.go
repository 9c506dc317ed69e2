package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"bogus": zapcore.InfoLevel,
	}
	for in, want := range cases {
		l, err := New(in, "console", "test")
		if err != nil {
			t.Fatalf("New(%q): %v", in, err)
		}
		if !l.Core().Enabled(want) {
			t.Fatalf("level %q: expected %s enabled", in, want)
		}
		if want > zapcore.DebugLevel && l.Core().Enabled(want-1) {
			t.Fatalf("level %q: expected %s disabled", in, want-1)
		}
	}
}
