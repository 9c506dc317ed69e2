package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/suPer8Hu/mindease/internal/ai"
	"github.com/suPer8Hu/mindease/internal/crisis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const FallbackReply = "I'm having trouble connecting right now. Could you try again?"

var ErrEmptyMessage = errors.New("message is required")

const appendAttempts = 3

type Service struct {
	repo     *Repo
	provider ai.Provider
	contexts ContextStore
	log      *zap.Logger
}

func NewService(repo *Repo, provider ai.Provider, contexts ContextStore, log *zap.Logger) *Service {
	if contexts == nil {
		contexts = NewMemoryContextStore(16, 2*time.Hour)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, provider: provider, contexts: contexts, log: log}
}

type Reply struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Degraded  bool      `json:"-"`
}

// Reply asks the companion model for an answer and records both turns.
// Provider and storage failures degrade the reply instead of failing it.
func (s *Service) Reply(ctx context.Context, o Owner, message string, v crisis.Verdict) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	key := o.Key()

	window, err := s.contexts.Window(ctx, key)
	if err != nil {
		s.log.Warn("chat context unavailable", zap.String("owner", key), zap.Error(err))
		window = nil
	}

	msgs := make([]ai.Message, 0, len(window)+2)
	msgs = append(msgs, ai.Message{Role: ai.RoleSystem, Content: ai.SystemPrompt})
	msgs = append(msgs, window...)
	userMsg := ai.Message{Role: ai.RoleUser, Content: message}
	msgs = append(msgs, userMsg)

	out := Reply{Timestamp: time.Now()}
	start := time.Now()
	text, err := s.provider.Chat(ctx, msgs)
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Error("companion provider failed",
			zap.String("owner", key), zap.Duration("cost", time.Since(start)), zap.Error(err))
		out.Message = FallbackReply
		out.Degraded = true
	} else {
		out.Message = text
		if err := s.contexts.Append(ctx, key, userMsg, ai.Message{Role: ai.RoleAssistant, Content: text}); err != nil {
			s.log.Warn("chat context append failed", zap.String("owner", key), zap.Error(err))
		}
	}

	if err := s.record(ctx, o, message, out, v); err != nil {
		s.log.Error("failed to save conversation", zap.String("owner", key), zap.Error(err))
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, o Owner, message string, r Reply, v crisis.Verdict) error {
	var flag *Flag
	if v.Detected {
		flag = &Flag{Reason: v.Reason}
	}

	var err error
	for attempt := 0; attempt < appendAttempts; attempt++ {
		var c *Conversation
		c, err = s.repo.GetOrCreate(ctx, o)
		if err != nil {
			return err
		}
		turns := []Turn{
			{Sender: SenderUser, Text: message, Timestamp: r.Timestamp},
			{Sender: SenderBot, Text: r.Message, Timestamp: time.Now()},
		}
		err = s.repo.AppendTurns(ctx, c, turns, flag)
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
	}
	return err
}

func (s *Service) History(ctx context.Context, o Owner) ([]Turn, error) {
	c, err := s.repo.FindByOwner(ctx, o)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []Turn{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.repo.ListTurns(ctx, c.ID)
}

// Clear drops both the model context and the stored conversation.
func (s *Service) Clear(ctx context.Context, o Owner) error {
	if err := s.contexts.Clear(ctx, o.Key()); err != nil {
		s.log.Warn("chat context clear failed", zap.String("owner", o.Key()), zap.Error(err))
	}
	return s.repo.DeleteByOwner(ctx, o)
}

func (s *Service) Flagged(ctx context.Context) ([]Conversation, error) {
	return s.repo.ListFlagged(ctx)
}
