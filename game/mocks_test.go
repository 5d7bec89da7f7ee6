package game

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// --- WordSource ---

type MockWordSource struct {
	mock.Mock
}

func (m *MockWordSource) RandomWords(count int, excluding map[string]struct{}) []string {
	args := m.Called(count, excluding)
	return args.Get(0).([]string)
}

// stubWordSource serves fixed batches in order, repeating the last one.
type stubWordSource struct {
	batches [][]string
	calls   int
}

func (s *stubWordSource) RandomWords(count int, excluding map[string]struct{}) []string {
	i := s.calls
	if i >= len(s.batches) {
		i = len(s.batches) - 1
	}
	s.calls++
	return s.batches[i]
}

// --- PubSub ---

// recordingPubSub captures everything published and serves real channels to
// subscribers.
type recordingPubSub struct {
	mu        sync.Mutex
	published []Event
	subs      map[string][]*recordedSub
}

type recordedSub struct {
	playerID string
	ch       chan Event
}

func newRecordingPubSub() *recordingPubSub {
	return &recordingPubSub{subs: make(map[string][]*recordedSub)}
}

func (ps *recordingPubSub) Publish(sessionID string, ev Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.published = append(ps.published, ev)
	for _, sub := range ps.subs[sessionID] {
		if ev.To != "" && ev.To != sub.playerID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

func (ps *recordingPubSub) Subscribe(sessionID, playerID string) (<-chan Event, func()) {
	sub := &recordedSub{playerID: playerID, ch: make(chan Event, 64)}
	ps.mu.Lock()
	ps.subs[sessionID] = append(ps.subs[sessionID], sub)
	ps.mu.Unlock()
	return sub.ch, func() {}
}

func (ps *recordingPubSub) events() []Event {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	out := make([]Event, len(ps.published))
	copy(out, ps.published)
	return out
}

func (ps *recordingPubSub) eventsOfType(t EventType) []Event {
	var out []Event
	for _, ev := range ps.events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// --- StateStore ---

type stubStore struct {
	mu       sync.Mutex
	sessions map[string]SessionSnapshot
	deleted  []string
	ops      []string // "put <id>" / "delete <id>" in arrival order
}

func newStubStore() *stubStore {
	return &stubStore{sessions: make(map[string]SessionSnapshot)}
}

func (s *stubStore) PutSession(ctx context.Context, id string, snap SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = snap
	s.ops = append(s.ops, "put "+id)
	return nil
}

func (s *stubStore) GetSession(ctx context.Context, id string) (SessionSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.sessions[id]
	return snap, ok, nil
}

func (s *stubStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	delete(s.sessions, id)
	s.ops = append(s.ops, "delete "+id)
	return nil
}

func (s *stubStore) opLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ops))
	copy(out, s.ops)
	return out
}

func (s *stubStore) deletedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.deleted))
	copy(out, s.deleted)
	return out
}

// --- TickerFactory ---

// manualTickerFactory hands every session the same plain channel so tests
// drive ticks by hand.
type manualTickerFactory struct {
	ch chan time.Time
}

func newManualTickerFactory() *manualTickerFactory {
	return &manualTickerFactory{ch: make(chan time.Time)}
}

func (f *manualTickerFactory) Create(d time.Duration) <-chan time.Time {
	return f.ch
}
