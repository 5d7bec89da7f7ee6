package game

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Directory owns the id -> session map. Sessions remove themselves through
// the onEmpty hook when their last player leaves.
type Directory struct {
	defaults Config
	words    WordSource
	pubsub   PubSub
	store    StateStore
	tickers  TickerFactory
	log      *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewDirectory(defaults Config, words WordSource, ps PubSub, store StateStore, tf TickerFactory, log *slog.Logger) *Directory {
	return &Directory{
		defaults: defaults,
		words:    words,
		pubsub:   ps,
		store:    store,
		tickers:  tf,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Create registers and starts a fresh session under a new id.
func (d *Directory) Create(cfg Config) *Session {
	return d.register(uuid.NewString(), cfg)
}

// GetOrCreate returns the live session under id, starting a new one when
// there is none. A session caught mid-teardown counts as gone and is
// replaced, never handed out.
func (d *Directory) GetOrCreate(id string) *Session {
	d.mu.RLock()
	s, ok := d.sessions[id]
	d.mu.RUnlock()
	if ok && !s.Closed() {
		return s
	}
	return d.register(id, d.defaults)
}

func (d *Directory) register(id string, cfg Config) *Session {
	d.mu.Lock()
	if existing, ok := d.sessions[id]; ok && !existing.Closed() {
		d.mu.Unlock()
		return existing
	}
	s := NewSession(id, cfg, d.words, d.pubsub, d.store, d.tickers, d.log, d.remove)
	d.sessions[id] = s
	d.mu.Unlock()
	s.Start()
	d.log.Info("session created", "session", id)
	return s
}

func (d *Directory) Get(id string) (*Session, error) {
	d.mu.RLock()
	s, ok := d.sessions[id]
	d.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}

// List describes every live session. Sessions racing their own teardown are
// skipped rather than reported half-dead.
func (d *Directory) List() []SessionSnapshot {
	d.mu.RLock()
	live := make([]*Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		live = append(live, s)
	}
	d.mu.RUnlock()

	out := make([]SessionSnapshot, 0, len(live))
	for _, s := range live {
		snap, err := s.Describe()
		if err != nil {
			continue
		}
		out = append(out, snap)
	}
	return out
}

// remove only drops the mapping if it still points at a torn-down session;
// an id reused by GetOrCreate in the meantime stays registered.
func (d *Directory) remove(id string) {
	d.mu.Lock()
	if s, ok := d.sessions[id]; ok && s.Closed() {
		delete(d.sessions, id)
		d.log.Info("session removed", "session", id)
	}
	d.mu.Unlock()
}
