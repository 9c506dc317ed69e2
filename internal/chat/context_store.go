package chat

import (
	"context"
	"sync"
	"time"

	"github.com/suPer8Hu/mindease/internal/ai"
)

// ContextStore holds the short model context per owner key: the last N
// user/assistant messages. The system prompt is never stored.
type ContextStore interface {
	Window(ctx context.Context, key string) ([]ai.Message, error)
	Append(ctx context.Context, key string, msgs ...ai.Message) error
	Clear(ctx context.Context, key string) error
}

type memoryEntry struct {
	msgs     []ai.Message
	lastUsed time.Time
}

// MemoryContextStore keeps windows in process. Entries idle for longer than
// ttl are dropped on the next sweep.
type MemoryContextStore struct {
	mu        sync.Mutex
	limit     int
	ttl       time.Duration
	entries   map[string]*memoryEntry
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryContextStore(limit int, ttl time.Duration) *MemoryContextStore {
	if limit <= 0 {
		limit = 16
	}
	return &MemoryContextStore{
		limit:   limit,
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryContextStore) Window(_ context.Context, key string) ([]ai.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || m.expired(e) {
		return nil, nil
	}
	return append([]ai.Message(nil), e.msgs...), nil
}

func (m *MemoryContextStore) Append(_ context.Context, key string, msgs ...ai.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || m.expired(e) {
		e = &memoryEntry{}
		m.entries[key] = e
	}
	e.msgs = append(e.msgs, msgs...)
	if n := len(e.msgs); n > m.limit {
		e.msgs = append([]ai.Message(nil), e.msgs[n-m.limit:]...)
	}
	e.lastUsed = now

	if m.ttl > 0 && now.Sub(m.lastSweep) > time.Minute {
		for k, v := range m.entries {
			if m.expired(v) {
				delete(m.entries, k)
			}
		}
		m.lastSweep = now
	}
	return nil
}

func (m *MemoryContextStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryContextStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryContextStore) expired(e *memoryEntry) bool {
	return m.ttl > 0 && m.now().Sub(e.lastUsed) > m.ttl
}
