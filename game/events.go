package game

import "time"

// EventType tags the single outbound event union. Consumers subscribe to one
// stream per session and filter on Type.
type EventType string

const (
	EventRosterChanged        EventType = "roster_changed"
	EventHostChanged          EventType = "host_changed"
	EventRoundStarted         EventType = "round_started"
	EventWordSelectionStarted EventType = "word_selection_started"
	EventWordChoices          EventType = "word_choices" // drawer only
	EventDrawingStarted       EventType = "drawing_started"
	EventYourTurnToDraw       EventType = "your_turn_to_draw" // drawer only
	EventDrawingAction        EventType = "drawing_action"
	EventGuessSubmitted       EventType = "guess_submitted"
	EventChatMessage          EventType = "chat_message"
	EventRatingPhaseStarted   EventType = "rating_phase_started"
	EventRoundEnded           EventType = "round_ended"
	EventGameEnded            EventType = "game_ended"
	EventSessionDeleted       EventType = "session_deleted"
	EventSnapshot             EventType = "snapshot" // joiner/reconnector only
)

type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Host      bool   `json:"host"`
	Connected bool   `json:"connected"`
	Score     int    `json:"score"`
	Guessed   bool   `json:"guessed"`
}

type ScoreEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// Event is the outbound union published to the session's channel. To is a
// delivery constraint, not payload: empty means broadcast, otherwise only the
// named player's subscriptions receive it. The literal word travels only in
// drawer-targeted events until RoundEnded reveals it to everyone.
type Event struct {
	Type EventType `json:"type"`
	To   string    `json:"-"`

	Players    []PlayerInfo     `json:"players,omitempty"`
	HostID     string           `json:"hostId,omitempty"`
	Round      int              `json:"round,omitempty"`
	DrawerID   string           `json:"drawerId,omitempty"`
	Choices    []string         `json:"choices,omitempty"`
	Deadline   time.Time        `json:"deadline,omitzero"`
	WordLength int              `json:"wordLength,omitempty"`
	Word       string           `json:"word,omitempty"`
	Action     *DrawingAction   `json:"action,omitempty"`
	PlayerID   string           `json:"playerId,omitempty"`
	Text       string           `json:"text,omitempty"`
	Correct    bool             `json:"correct,omitempty"`
	Points     int              `json:"points,omitempty"`
	Scores     []ScoreEntry     `json:"scores,omitempty"`
	WinnerID   string           `json:"winnerId,omitempty"`
	Snapshot   *SessionSnapshot `json:"snapshot,omitempty"`
}

func playerInfos(r *Roster) []PlayerInfo {
	infos := make([]PlayerInfo, 0, r.Len())
	for _, p := range r.Players() {
		infos = append(infos, PlayerInfo{
			ID:        p.ID,
			Name:      p.Name,
			Host:      p.Host,
			Connected: p.Connected,
			Score:     p.Score,
			Guessed:   p.GuessedCorrectly,
		})
	}
	return infos
}

func scoreEntries(players []*Player) []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, ScoreEntry{PlayerID: p.ID, Name: p.Name, Score: p.Score})
	}
	return entries
}

func makeRosterChanged(r *Roster) Event {
	return Event{Type: EventRosterChanged, Players: playerInfos(r)}
}

func makeHostChanged(newHostID string) Event {
	return Event{Type: EventHostChanged, HostID: newHostID}
}

func makeRoundStarted(round int, drawerID string) Event {
	return Event{Type: EventRoundStarted, Round: round, DrawerID: drawerID}
}

func makeWordSelectionStarted(drawerID string, deadline time.Time) Event {
	return Event{Type: EventWordSelectionStarted, DrawerID: drawerID, Deadline: deadline}
}

func makeWordChoices(drawerID string, choices []string, deadline time.Time) Event {
	return Event{Type: EventWordChoices, To: drawerID, Choices: choices, Deadline: deadline}
}

func makeDrawingStarted(wordLength int, deadline time.Time) Event {
	return Event{Type: EventDrawingStarted, WordLength: wordLength, Deadline: deadline}
}

func makeYourTurnToDraw(drawerID, word string) Event {
	return Event{Type: EventYourTurnToDraw, To: drawerID, Word: word}
}

func makeDrawingAction(a DrawingAction) Event {
	return Event{Type: EventDrawingAction, Action: &a}
}

func makeGuessSubmitted(playerID, text string, correct bool, points int) Event {
	return Event{Type: EventGuessSubmitted, PlayerID: playerID, Text: text, Correct: correct, Points: points}
}

func makeChatMessage(to, from, text string) Event {
	return Event{Type: EventChatMessage, To: to, PlayerID: from, Text: text}
}

func makeRatingPhaseStarted(deadline time.Time) Event {
	return Event{Type: EventRatingPhaseStarted, Deadline: deadline}
}

func makeRoundEnded(round int, word string, scores []ScoreEntry) Event {
	return Event{Type: EventRoundEnded, Round: round, Word: word, Scores: scores}
}

func makeGameEnded(scores []ScoreEntry, winnerID string) Event {
	return Event{Type: EventGameEnded, Scores: scores, WinnerID: winnerID}
}

func makeSessionDeleted() Event {
	return Event{Type: EventSessionDeleted}
}

func makeSnapshot(to string, snap SessionSnapshot) Event {
	return Event{Type: EventSnapshot, To: to, Snapshot: &snap}
}
