// Package pubsub fans session events out to websocket subscribers. One
// broker serves the whole process; channels are scoped per session id.
package pubsub

import (
	"sync"

	"github.com/TuneScotty/drawit-server/game"
)

type subscriber struct {
	playerID string
	ch       chan game.Event
}

// Broker implements game.PubSub with in-process channels. Publish never
// blocks: a subscriber that stops draining loses events rather than stalling
// the session goroutine.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[*subscriber]struct{})}
}

func (b *Broker) Publish(sessionID string, ev game.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs[sessionID] {
		if ev.To != "" && ev.To != sub.playerID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// Subscribe registers a buffered channel for the player on the session's
// stream. The returned cancel closes the channel; it is safe to call once
// from any goroutine.
func (b *Broker) Subscribe(sessionID, playerID string) (<-chan game.Event, func()) {
	sub := &subscriber{playerID: playerID, ch: make(chan game.Event, 64)}

	b.mu.Lock()
	set := b.subs[sessionID]
	if set == nil {
		set = make(map[*subscriber]struct{})
		b.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[sessionID]; ok {
			if _, live := set[sub]; live {
				delete(set, sub)
				close(sub.ch)
			}
			if len(set) == 0 {
				delete(b.subs, sessionID)
			}
		}
		b.mu.Unlock()
	}
	return sub.ch, cancel
}

// SubscriberCount reports live subscriptions for a session.
func (b *Broker) SubscriberCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[sessionID])
}
