package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Email
	err  error
	wait chan struct{}
}

func (s *recordingSender) Send(ctx context.Context, to, subject, body string) error {
	if s.wait != nil {
		<-s.wait
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Email{To: to, Subject: subject, Body: body})
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type panicSender struct{}

func (panicSender) Send(context.Context, string, string, string) error { panic("smtp client nil") }

func TestCrisisAlert_SendsExactlyOnce(t *testing.T) {
	s := &recordingSender{}
	d := NewDispatcher("ops@uni.edu", s, nil)

	d.CrisisAlert(Alert{User: "Ana <ana@uni.edu>", Reason: "keyword: hopeless", Message: "I feel hopeless", Source: "10.0.0.7"})
	d.Wait()

	require.Equal(t, 1, s.count())
	e := s.sent[0]
	assert.Equal(t, "ops@uni.edu", e.To)
	for _, want := range []string{"Ana <ana@uni.edu>", "keyword: hopeless", `"I feel hopeless"`, "10.0.0.7", "Timestamp: "} {
		assert.Contains(t, e.Body, want)
	}
}

func TestCrisisAlert_AnonymousUser(t *testing.T) {
	s := &recordingSender{}
	d := NewDispatcher("ops@uni.edu", s, nil)
	d.CrisisAlert(Alert{Reason: "keyword: kill me", Message: "kill me"})
	d.Wait()
	require.Equal(t, 1, s.count())
	assert.Contains(t, s.sent[0].Body, "User: Anonymous\n")
}

func TestDispatch_NoRecipientSkips(t *testing.T) {
	s := &recordingSender{}
	d := NewDispatcher("  ", s, nil)
	assert.False(t, d.Enabled())

	d.CrisisAlert(Alert{Reason: "keyword: suicide"})
	d.HighRiskScreening("x", "PHQ-9", 22)
	d.Wait()
	assert.Equal(t, 0, s.count())
}

func TestDispatch_FailureIsLoggedNotPropagated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := &recordingSender{err: errors.New("dial tcp: connection refused")}
	d := NewDispatcher("ops@uni.edu", s, zap.New(core))

	d.CrisisAlert(Alert{Reason: "keyword: worthless"})
	d.Wait()

	assert.Equal(t, 1, s.count(), "no retry")
	assert.Equal(t, 1, logs.FilterMessage("notification send failed").Len())
}

func TestDispatch_DoesNotBlockCaller(t *testing.T) {
	release := make(chan struct{})
	s := &recordingSender{wait: release, err: errors.New("timeout")}
	d := NewDispatcher("ops@uni.edu", s, nil)

	start := time.Now()
	d.CrisisAlert(Alert{Reason: "keyword: hopeless"})
	elapsed := time.Since(start)
	assert.Less(t, elapsed, 50*time.Millisecond)
	assert.Equal(t, 0, s.count())

	close(release)
	d.Wait()
	assert.Equal(t, 1, s.count())
}

func TestDispatch_SenderPanicIsContained(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	d := NewDispatcher("ops@uni.edu", panicSender{}, zap.New(core))
	d.CrisisAlert(Alert{Reason: "keyword: suicide"})
	d.Wait()
	assert.Equal(t, 1, logs.FilterMessage("notification sender panicked").Len())
}

func TestHighRiskScreening(t *testing.T) {
	s := &recordingSender{}
	d := NewDispatcher("ops@uni.edu", s, nil)
	d.HighRiskScreening("Ana <ana@uni.edu>", "PHQ-9", 23)
	d.Wait()
	require.Equal(t, 1, s.count())
	assert.True(t, strings.Contains(s.sent[0].Body, "Score: 23"))
	assert.Equal(t, "High-Risk Screening Alert", s.sent[0].Subject)
}

func TestNilSenderIsNop(t *testing.T) {
	d := NewDispatcher("ops@uni.edu", nil, nil)
	d.CrisisAlert(Alert{Reason: "keyword: suicide"})
	d.Wait()
}
