package game

import (
	"sort"
	"time"
)

// Player is one roster seat. Slice order in the Roster is join order, which is
// also drawer rotation order.
type Player struct {
	ID               string
	Name             string
	Host             bool
	Connected        bool
	Score            int
	GuessedCorrectly bool
	DisconnectedAt   time.Time
}

// Roster is the live membership of a session. It is a plain data structure
// mutated only from the owning session's goroutine, so it carries no lock.
type Roster struct {
	players     []*Player
	drawerIndex int
}

func NewRoster() *Roster {
	return &Roster{}
}

func (r *Roster) Len() int { return len(r.players) }

func (r *Roster) Players() []*Player { return r.players }

func (r *Roster) Get(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Roster) Host() *Player {
	for _, p := range r.players {
		if p.Host {
			return p
		}
	}
	return nil
}

func (r *Roster) ConnectedCount() int {
	n := 0
	for _, p := range r.players {
		if p.Connected {
			n++
		}
	}
	return n
}

// Add appends a new player, or returns the existing one untouched (joins are
// idempotent while the session is waiting). The first player becomes host.
func (r *Roster) Add(id, name string) (*Player, bool) {
	if p := r.Get(id); p != nil {
		return p, false
	}
	p := &Player{ID: id, Name: name, Connected: true, Host: len(r.players) == 0}
	r.players = append(r.players, p)
	return p, true
}

// Remove drops the player and, if they were host, promotes the earliest
// remaining player by join order. Returns the removed player and the new host
// (nil when host did not change).
func (r *Roster) Remove(id string) (removed, newHost *Player) {
	idx := -1
	for i, p := range r.players {
		if p.ID == id {
			idx = i
			removed = p
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)

	// Keep the drawer index pointing at the same player where possible.
	if idx < r.drawerIndex {
		r.drawerIndex--
	}
	if r.drawerIndex >= len(r.players) {
		r.drawerIndex = 0
	}

	if removed.Host && len(r.players) > 0 {
		newHost = r.players[0]
		newHost.Host = true
	}
	return removed, newHost
}

func (r *Roster) MarkDisconnected(id string, now time.Time) *Player {
	p := r.Get(id)
	if p == nil {
		return nil
	}
	p.Connected = false
	p.DisconnectedAt = now
	return p
}

func (r *Roster) MarkReconnected(id string) *Player {
	p := r.Get(id)
	if p == nil {
		return nil
	}
	p.Connected = true
	p.DisconnectedAt = time.Time{}
	return p
}

// ExpiredDisconnects returns ids of players whose reconnection grace ran out.
func (r *Roster) ExpiredDisconnects(now time.Time, grace time.Duration) []string {
	var ids []string
	for _, p := range r.players {
		if !p.Connected && now.Sub(p.DisconnectedAt) > grace {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// CurrentDrawer resolves the drawer index to a player. Nil only on an empty
// roster; the index is re-clamped on every removal.
func (r *Roster) CurrentDrawer() *Player {
	if len(r.players) == 0 {
		return nil
	}
	return r.players[r.drawerIndex]
}

// ResetDrawer points the rotation back at the first joiner (round one).
func (r *Roster) ResetDrawer() {
	r.drawerIndex = 0
}

// RotateDrawer advances to the next player in join order, wrapping, skipping
// disconnected seats. Fails when fewer than two players are connected: a
// round cannot run with nobody left to guess.
func (r *Roster) RotateDrawer() (*Player, error) {
	if len(r.players) == 0 || r.ConnectedCount() < 2 {
		return nil, ErrNoEligibleDrawer
	}
	for i := 1; i <= len(r.players); i++ {
		idx := (r.drawerIndex + i) % len(r.players)
		if r.players[idx].Connected {
			r.drawerIndex = idx
			return r.players[idx], nil
		}
	}
	return nil, ErrNoEligibleDrawer
}

func (r *Roster) ResetGuesses() {
	for _, p := range r.players {
		p.GuessedCorrectly = false
	}
}

// AllEligibleGuessed reports whether every connected non-drawer has guessed
// correctly. False when there are no eligible guessers at all.
func (r *Roster) AllEligibleGuessed(drawerID string) bool {
	eligible, guessed := 0, 0
	for _, p := range r.players {
		if p.ID == drawerID || !p.Connected {
			continue
		}
		eligible++
		if p.GuessedCorrectly {
			guessed++
		}
	}
	return eligible > 0 && guessed == eligible
}

// Ranking returns players sorted by descending score, ties broken by earliest
// join order. The returned slice is a copy; the roster order is untouched.
func (r *Roster) Ranking() []*Player {
	ranked := make([]*Player, len(r.players))
	copy(ranked, r.players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
