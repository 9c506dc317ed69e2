package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sender delivers one email. Implementations: email.Sender (SMTP) and
// rabbitmq.AlertPublisher (hands the email to cmd/worker).
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Alert describes a crisis verdict worth a human follow-up.
type Alert struct {
	User    string // empty means Anonymous
	Reason  string
	Message string
	Source  string
	Origin  string // "chat", "screening PHQ-9", ...
	At      time.Time
}

const sendTimeout = 30 * time.Second

type NopSender struct{}

func (NopSender) Send(context.Context, string, string, string) error { return nil }

// Dispatcher sends notifications off the request path. Each send is
// attempted once; failures are logged and dropped.
type Dispatcher struct {
	recipient string
	sender    Sender
	log       *zap.Logger
	now       func() time.Time

	wg sync.WaitGroup
}

func NewDispatcher(recipient string, sender Sender, log *zap.Logger) *Dispatcher {
	if sender == nil {
		sender = NopSender{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		recipient: strings.TrimSpace(recipient),
		sender:    sender,
		log:       log,
		now:       time.Now,
	}
}

func (d *Dispatcher) Enabled() bool { return d != nil && d.recipient != "" }

// CrisisAlert composes and dispatches the crisis email for a detected verdict.
func (d *Dispatcher) CrisisAlert(a Alert) {
	if !d.Enabled() {
		return
	}
	if a.At.IsZero() {
		a.At = d.now()
	}
	d.Dispatch(ComposeCrisis(d.recipient, a))
}

// HighRiskScreening notifies the administrator about a new High result.
func (d *Dispatcher) HighRiskScreening(user, instrument string, score int) {
	if !d.Enabled() {
		return
	}
	d.Dispatch(Email{
		To:      d.recipient,
		Subject: "High-Risk Screening Alert",
		Body: fmt.Sprintf("User: %s\nScreening: %s\nScore: %d\nRisk: High\nTimestamp: %s\n",
			orAnonymous(user), instrument, score, d.now().UTC().Format(time.RFC3339)),
	})
}

// Dispatch starts the send and returns immediately.
func (d *Dispatcher) Dispatch(e Email) {
	if e.To == "" {
		return
	}
	d.wg.Add(1)
	go d.deliver(e)
}

func (d *Dispatcher) deliver(e Email) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("notification sender panicked", zap.String("subject", e.Subject), zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	start := d.now()
	if err := d.sender.Send(ctx, e.To, e.Subject, e.Body); err != nil {
		d.log.Error("notification send failed",
			zap.String("to", e.To), zap.String("subject", e.Subject),
			zap.Duration("cost", time.Since(start)), zap.Error(err))
		return
	}
	d.log.Info("notification sent", zap.String("to", e.To), zap.String("subject", e.Subject))
}

// Wait blocks until in-flight sends finish. Only process shutdown calls it.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func ComposeCrisis(to string, a Alert) Email {
	var b strings.Builder
	b.WriteString("CRISIS ALERT DETECTED:\n\n")
	fmt.Fprintf(&b, "User: %s\n", orAnonymous(a.User))
	fmt.Fprintf(&b, "Reason: %s\n", a.Reason)
	if a.Origin != "" {
		fmt.Fprintf(&b, "Origin: %s\n", a.Origin)
	}
	fmt.Fprintf(&b, "Message: %q\n", a.Message)
	fmt.Fprintf(&b, "Timestamp: %s\n", a.At.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "IP Address: %s\n", a.Source)
	b.WriteString("\nPlease follow up immediately with appropriate mental health resources.\n")
	return Email{
		To:      to,
		Subject: "URGENT: Crisis Alert - Mental Health Support",
		Body:    b.String(),
	}
}

func orAnonymous(user string) string {
	if strings.TrimSpace(user) == "" {
		return "Anonymous"
	}
	return user
}
