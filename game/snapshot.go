package game

import "time"

// SessionSnapshot is the full reconstructable state of a session at one point
// in time: what a joining or reconnecting client needs to render the current
// screen, and what the store persists.
type SessionSnapshot struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	Phase       string          `json:"phase"`
	Round       int             `json:"round,omitempty"`
	TotalRounds int             `json:"totalRounds"`
	DrawerID    string          `json:"drawerId,omitempty"`
	Word        string          `json:"word,omitempty"`
	WordLength  int             `json:"wordLength,omitempty"`
	Choices     []string        `json:"choices,omitempty"`
	Deadline    time.Time       `json:"deadline,omitzero"`
	Players     []PlayerInfo    `json:"players"`
	Actions     []DrawingAction `json:"actions,omitempty"`
	TakenAt     time.Time       `json:"takenAt"`
}

// Redacted strips the word and the offered choices. Everything sent to a
// player other than the drawer goes through here.
func (s SessionSnapshot) Redacted() SessionSnapshot {
	s.Word = ""
	s.Choices = nil
	return s
}
