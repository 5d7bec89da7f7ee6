package game

import (
	"context"
	"time"
)

// WordSource supplies candidate words for the drawer. Implementations must
// never starve: when fewer than count words remain outside the exclusion set,
// the exclusion set is ignored for that call.
type WordSource interface {
	RandomWords(count int, excluding map[string]struct{}) []string
}

// PubSub is the per-session broadcast channel. Publish must not block the
// caller; delivery is fire-and-forget from the session's point of view.
// Events with a non-empty To field are delivered only to that player's
// subscriptions.
type PubSub interface {
	Publish(sessionID string, ev Event)
	Subscribe(sessionID, playerID string) (<-chan Event, func())
}

// StateStore persists point-in-time session snapshots keyed by session id.
type StateStore interface {
	PutSession(ctx context.Context, id string, snap SessionSnapshot) error
	GetSession(ctx context.Context, id string) (SessionSnapshot, bool, error)
	DeleteSession(ctx context.Context, id string) error
}

// TickerFactory abstracts time.Tick so tests can drive sessions with a plain
// channel.
type TickerFactory interface {
	Create(d time.Duration) <-chan time.Time
}
