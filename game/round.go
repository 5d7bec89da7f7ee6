package game

import (
	"slices"
	"strings"
	"time"
)

// DrawingAction is one canvas operation from the drawer. The payload is
// opaque to the server; it only guarantees ordering via Seq for replay.
type DrawingAction struct {
	DrawerID string    `json:"drawerId"`
	Kind     string    `json:"kind"` // stroke_start, stroke_point, stroke_end, clear, color, brush_size
	Payload  []byte    `json:"payload,omitempty"`
	Seq      int       `json:"seq"`
	At       time.Time `json:"at"`
}

// Guess is evaluated exactly once at submission; Correct never changes after.
type Guess struct {
	PlayerID string    `json:"playerId"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
	Correct  bool      `json:"correct"`
}

// Round is the live round's state, superseded wholesale on round advance.
type Round struct {
	Number         int
	DrawerID       string
	Word           string
	WordChoices    []string
	StartedAt      time.Time
	EndsAt         time.Time
	WordDeadline   time.Time
	RatingDeadline time.Time
	Actions        []DrawingAction
	Guesses        []Guess

	ratings       map[string]map[string]int // drawing owner -> rater -> stars
	lastGuessAt   map[string]time.Time      // per-player guess spacing, reset each round
	lastClientSeq map[string]int            // highest client stroke seq seen per drawer
}

// Engine is the round/turn state machine. It owns all phase logic: every
// operation validates against the current phase here and nowhere else.
// Handlers append outbound events to a pending slice which the session
// coordinator drains and publishes after each step.
type Engine struct {
	cfg      Config
	phase    Phase
	roster   *Roster
	words    WordSource
	round    *Round
	roundNum int
	used     map[string]struct{}
	pending  []Event
}

func NewEngine(cfg Config, roster *Roster, words WordSource) *Engine {
	return &Engine{
		cfg:    cfg,
		phase:  PhaseWaiting,
		roster: roster,
		words:  words,
		used:   make(map[string]struct{}),
	}
}

func (e *Engine) Phase() Phase { return e.phase }

func (e *Engine) Round() *Round { return e.round }

func (e *Engine) emit(ev Event) { e.pending = append(e.pending, ev) }

// Drain returns and clears the pending outbound events.
func (e *Engine) Drain() []Event {
	evs := e.pending
	e.pending = nil
	return evs
}

// StartGame moves Waiting -> WordSelection for round one with the first
// joiner as drawer.
func (e *Engine) StartGame(now time.Time) error {
	if e.phase != PhaseWaiting {
		return ErrSessionAlreadyStarted
	}
	if e.roster.Len() < 2 {
		return ErrInsufficientPlayers
	}
	e.roster.ResetDrawer()
	e.beginWordSelection(now)
	return nil
}

// beginWordSelection starts the next round with the roster's current drawer.
// Round numbers only ever move forward; past the configured total the game
// ends instead.
func (e *Engine) beginWordSelection(now time.Time) {
	e.roundNum++
	if e.roundNum > e.cfg.TotalRounds {
		e.endGame()
		return
	}
	drawer := e.roster.CurrentDrawer()
	if drawer == nil {
		e.endGame()
		return
	}
	e.roster.ResetGuesses()

	choices := e.words.RandomWords(e.cfg.WordChoiceCount, e.used)
	if len(choices) == 0 {
		// nothing left to offer, there is no round to play
		e.endGame()
		return
	}
	deadline := now.Add(e.cfg.WordSelectionDuration)
	e.round = &Round{
		Number:        e.roundNum,
		DrawerID:      drawer.ID,
		WordChoices:   choices,
		WordDeadline:  deadline,
		ratings:       make(map[string]map[string]int),
		lastGuessAt:   make(map[string]time.Time),
		lastClientSeq: make(map[string]int),
	}
	e.phase = PhaseWordSelection

	e.emit(makeRoundStarted(e.roundNum, drawer.ID))
	e.emit(makeWordSelectionStarted(drawer.ID, deadline))
	e.emit(makeWordChoices(drawer.ID, choices, deadline))
}

// SelectWord is the drawer's explicit pick; anyone else, any other phase, or
// a word outside the offered choices is rejected without side effects.
func (e *Engine) SelectWord(playerID, word string, now time.Time) error {
	if e.phase != PhaseWordSelection {
		return ErrWrongPhase
	}
	if playerID != e.round.DrawerID {
		return ErrNotCurrentDrawer
	}
	if !slices.Contains(e.round.WordChoices, word) {
		return ErrInvalidWordChoice
	}
	e.beginDrawing(word, now)
	return nil
}

func (e *Engine) beginDrawing(word string, now time.Time) {
	e.used[word] = struct{}{}
	e.round.Word = word
	e.round.StartedAt = now
	e.round.EndsAt = now.Add(e.cfg.RoundDuration)
	e.phase = PhaseDrawing

	e.emit(makeDrawingStarted(len(word), e.round.EndsAt))
	e.emit(makeYourTurnToDraw(e.round.DrawerID, word))
}

// SubmitDrawing appends a canvas action. Out-of-phase actions are dropped
// silently: late delivery after a round ends is expected, not an error. A
// positive clientSeq at or below one already recorded is a redelivery and is
// dropped the same way, so clients can resend over a flaky transport.
func (e *Engine) SubmitDrawing(playerID string, kind string, payload []byte, clientSeq int, now time.Time) error {
	if e.phase != PhaseDrawing {
		return nil
	}
	if playerID != e.round.DrawerID {
		return ErrNotCurrentDrawer
	}
	if clientSeq > 0 {
		if clientSeq <= e.round.lastClientSeq[playerID] {
			return nil
		}
		e.round.lastClientSeq[playerID] = clientSeq
	}
	action := DrawingAction{
		DrawerID: playerID,
		Kind:     kind,
		Payload:  payload,
		Seq:      len(e.round.Actions),
		At:       now,
	}
	e.round.Actions = append(e.round.Actions, action)
	e.emit(makeDrawingAction(action))
	return nil
}

// SubmitGuess evaluates one guess against the current word. A correct guess
// locks the player out of further scoring for the round; when the last
// eligible guesser gets it, the round ends early.
func (e *Engine) SubmitGuess(playerID, text string, now time.Time) error {
	if e.phase != PhaseDrawing {
		return ErrWrongPhase
	}
	p := e.roster.Get(playerID)
	if p == nil {
		return ErrNotInSession
	}
	if playerID == e.round.DrawerID {
		return ErrDrawerCannotGuess
	}
	if p.GuessedCorrectly {
		return ErrAlreadyGuessed
	}
	if last, ok := e.round.lastGuessAt[playerID]; ok && now.Sub(last) < e.cfg.GuessInterval {
		return ErrRateLimited
	}
	e.round.lastGuessAt[playerID] = now

	correct := guessMatches(text, e.round.Word)
	e.round.Guesses = append(e.round.Guesses, Guess{PlayerID: playerID, Text: text, At: now, Correct: correct})

	if !correct {
		e.emit(makeGuessSubmitted(playerID, text, false, 0))
		return nil
	}

	p.GuessedCorrectly = true
	points := e.cfg.BasePoints + remainingSeconds(e.round.EndsAt, now)
	p.Score += points
	if drawer := e.roster.Get(e.round.DrawerID); drawer != nil {
		drawer.Score += e.cfg.DrawerBonus
	}
	// The guessed text is the word itself, so it never goes out before
	// RoundEnded reveals it.
	e.emit(makeGuessSubmitted(playerID, "", true, points))

	if e.roster.AllEligibleGuessed(e.round.DrawerID) {
		e.beginRating(now)
	}
	return nil
}

func guessMatches(guess, word string) bool {
	return strings.EqualFold(strings.TrimSpace(guess), strings.TrimSpace(word))
}

func remainingSeconds(deadline, now time.Time) int {
	if now.After(deadline) {
		return 0
	}
	return int(deadline.Sub(now).Seconds())
}

// SubmitChat relays a non-guess message. During the drawing phase, players
// who already know the word only talk to each other and the drawer.
func (e *Engine) SubmitChat(playerID, text string) error {
	sender := e.roster.Get(playerID)
	if sender == nil {
		return ErrNotInSession
	}
	restricted := e.phase == PhaseDrawing && e.round != nil &&
		(sender.GuessedCorrectly || playerID == e.round.DrawerID)
	if !restricted {
		e.emit(makeChatMessage("", playerID, text))
		return nil
	}
	for _, p := range e.roster.Players() {
		if p.ID == playerID {
			continue
		}
		if p.GuessedCorrectly || p.ID == e.round.DrawerID {
			e.emit(makeChatMessage(p.ID, playerID, text))
		}
	}
	return nil
}

func (e *Engine) beginRating(now time.Time) {
	raters := e.roster.Len() - 1
	if raters < 1 {
		raters = 1
	}
	d := time.Duration(raters) * e.cfg.RatingDurationPerRater
	if d > e.cfg.MaxRatingDuration {
		d = e.cfg.MaxRatingDuration
	}
	e.round.RatingDeadline = now.Add(d)
	e.phase = PhaseRating
	e.emit(makeRatingPhaseStarted(e.round.RatingDeadline))
}

// SubmitRating records one star rating per (drawing owner, rater) pair.
// Resubmissions are rejected, not overwritten, so nobody can farm points by
// re-rating.
func (e *Engine) SubmitRating(raterID, ownerID string, stars int) error {
	if e.phase != PhaseRating {
		return ErrWrongPhase
	}
	if e.roster.Get(raterID) == nil || e.roster.Get(ownerID) == nil {
		return ErrNotInSession
	}
	if raterID == ownerID {
		return ErrCannotRateOwnDrawing
	}
	if stars < e.cfg.MinRating || stars > e.cfg.MaxRating {
		return ErrRatingOutOfRange
	}
	raters := e.round.ratings[ownerID]
	if raters == nil {
		raters = make(map[string]int)
		e.round.ratings[ownerID] = raters
	}
	if _, dup := raters[raterID]; dup {
		return ErrDuplicateRating
	}
	raters[raterID] = stars
	return nil
}

// CompleteRating is the explicit host-side end of the rating phase.
func (e *Engine) CompleteRating(now time.Time) error {
	if e.phase != PhaseRating {
		return ErrWrongPhase
	}
	e.finishRound(now)
	return nil
}

// finishRound converts ratings to points, reveals the word, and either
// rotates into the next round or ends the game. Rating points are applied
// here, all at once, so the final tally doesn't depend on submission order.
func (e *Engine) finishRound(now time.Time) {
	for ownerID, raters := range e.round.ratings {
		owner := e.roster.Get(ownerID)
		if owner == nil {
			continue
		}
		total := 0
		for _, stars := range raters {
			total += stars
		}
		owner.Score += total * e.cfg.PointsPerStar
	}
	e.emit(makeRoundEnded(e.round.Number, e.round.Word, scoreEntries(e.roster.Players())))

	if _, err := e.roster.RotateDrawer(); err != nil {
		e.endGame()
		return
	}
	e.beginWordSelection(now)
}

func (e *Engine) endGame() {
	if e.phase == PhaseEnded {
		return
	}
	e.phase = PhaseEnded
	ranking := e.roster.Ranking()
	winnerID := ""
	if len(ranking) > 0 {
		winnerID = ranking[0].ID
	}
	e.emit(makeGameEnded(scoreEntries(ranking), winnerID))
}

// Tick checks the current phase's deadline against now. Stale fires are
// no-ops by construction: a past transition moved the phase, and the new
// phase's deadline is in the future.
func (e *Engine) Tick(now time.Time) {
	switch e.phase {
	case PhaseWordSelection:
		if !now.Before(e.round.WordDeadline) {
			// drawer never picked; the first offered choice stands in
			e.beginDrawing(e.round.WordChoices[0], now)
		}
	case PhaseDrawing:
		if !now.Before(e.round.EndsAt) {
			e.beginRating(now)
		}
	case PhaseRating:
		if !now.Before(e.round.RatingDeadline) {
			e.finishRound(now)
		}
	}
}

// HandlePlayerGone reacts to a mid-game departure or disconnect after the
// roster has been updated. A gone drawer never stalls a round: selection
// skips ahead, drawing cuts straight to rating.
func (e *Engine) HandlePlayerGone(playerID string, now time.Time) {
	if e.phase == PhaseWaiting || e.phase == PhaseEnded || e.round == nil {
		return
	}
	if e.roster.ConnectedCount() < 2 {
		e.endGame()
		return
	}
	if e.round.DrawerID == playerID {
		switch e.phase {
		case PhaseWordSelection:
			e.advanceDrawer(now)
		case PhaseDrawing:
			e.beginRating(now)
		}
		return
	}
	if e.phase == PhaseDrawing && e.roster.AllEligibleGuessed(e.round.DrawerID) {
		e.beginRating(now)
	}
}

// advanceDrawer moves selection to the next available drawer. The roster may
// already point past a removed drawer; only rotate when it doesn't.
func (e *Engine) advanceDrawer(now time.Time) {
	cur := e.roster.CurrentDrawer()
	if cur == nil {
		e.endGame()
		return
	}
	if !cur.Connected || cur.ID == e.round.DrawerID {
		if _, err := e.roster.RotateDrawer(); err != nil {
			e.endGame()
			return
		}
	}
	e.beginWordSelection(now)
}

// Snapshot captures the full {roster, round} state. Callers sending it to
// non-drawers must redact it first.
func (e *Engine) Snapshot(id string, now time.Time) SessionSnapshot {
	snap := SessionSnapshot{
		ID:          id,
		Status:      statusFor(e.phase),
		Phase:       e.phase.String(),
		TotalRounds: e.cfg.TotalRounds,
		Players:     playerInfos(e.roster),
		TakenAt:     now,
	}
	if e.round != nil {
		snap.Round = e.round.Number
		snap.DrawerID = e.round.DrawerID
		snap.Word = e.round.Word
		snap.WordLength = len(e.round.Word)
		snap.Choices = e.round.WordChoices
		snap.Actions = e.round.Actions
		switch e.phase {
		case PhaseWordSelection:
			snap.Deadline = e.round.WordDeadline
		case PhaseDrawing:
			snap.Deadline = e.round.EndsAt
		case PhaseRating:
			snap.Deadline = e.round.RatingDeadline
		}
	}
	return snap
}

func statusFor(p Phase) string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseEnded:
		return "ended"
	default:
		return "active"
	}
}
