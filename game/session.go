package game

import (
	"context"
	"log/slog"
	"time"
)

type cmdKind int

const (
	cmdJoin cmdKind = iota
	cmdLeave
	cmdDisconnect
	cmdReconnect
	cmdStart
	cmdSelectWord
	cmdDraw
	cmdGuess
	cmdChat
	cmdRate
	cmdCompleteRating
	cmdSnapshot
	cmdDescribe
)

type command struct {
	kind cmdKind

	playerID   string
	name       string
	word       string
	text       string
	actionKind string
	payload    []byte
	seq        int
	ownerID    string
	stars      int

	reply chan cmdResult
}

type cmdResult struct {
	snap SessionSnapshot
	err  error
}

// Session is one live game session. A single goroutine owns the roster and
// the engine; everything else talks to it through the inbox. Replies carry an
// error (and a snapshot where the caller needs one), events go out through
// the pubsub after every handled command.
type Session struct {
	ID  string
	cfg Config

	roster *Roster
	engine *Engine
	pubsub PubSub
	store  StateStore
	log    *slog.Logger
	now    func() time.Time

	inbox   chan command
	ticks   <-chan time.Time
	persist chan SessionSnapshot
	done    chan struct{}

	onEmpty func(sessionID string)
	closed  bool
}

func NewSession(id string, cfg Config, words WordSource, ps PubSub, store StateStore, tf TickerFactory, log *slog.Logger, onEmpty func(sessionID string)) *Session {
	roster := NewRoster()
	return &Session{
		ID:      id,
		cfg:     cfg,
		roster:  roster,
		engine:  NewEngine(cfg, roster, words),
		pubsub:  ps,
		store:   store,
		log:     log.With("session", id),
		now:     time.Now,
		inbox:   make(chan command, 64),
		ticks:   tf.Create(cfg.TickInterval),
		persist: make(chan SessionSnapshot, 1),
		done:    make(chan struct{}),
		onEmpty: onEmpty,
	}
}

// Start launches the owning goroutine and the persister.
func (s *Session) Start() {
	go s.run()
	go s.persister()
}

func (s *Session) run() {
	for {
		select {
		case cmd := <-s.inbox:
			s.handle(cmd)
		case now := <-s.ticks:
			s.handleTick(now)
		case <-s.done:
			return
		}
	}
}

// do submits a command and waits for the owning goroutine's reply.
func (s *Session) do(cmd command) cmdResult {
	cmd.reply = make(chan cmdResult, 1)
	select {
	case s.inbox <- cmd:
	case <-s.done:
		return cmdResult{err: ErrSessionClosed}
	}
	select {
	case res := <-cmd.reply:
		return res
	case <-s.done:
		// the handler may have replied just before teardown
		select {
		case res := <-cmd.reply:
			return res
		default:
			return cmdResult{err: ErrSessionClosed}
		}
	}
}

// Join seats a player. Only possible while the session is waiting; rejoining
// a running game goes through MarkReconnected instead. The returned snapshot
// is what the joiner should render.
func (s *Session) Join(playerID, name string) (SessionSnapshot, error) {
	res := s.do(command{kind: cmdJoin, playerID: playerID, name: name})
	return res.snap, res.err
}

func (s *Session) Leave(playerID string) error {
	return s.do(command{kind: cmdLeave, playerID: playerID}).err
}

// MarkDisconnected records a dropped transport. During a running game the
// seat survives for the reconnect grace; in the waiting room it is a leave.
func (s *Session) MarkDisconnected(playerID string) error {
	return s.do(command{kind: cmdDisconnect, playerID: playerID}).err
}

func (s *Session) MarkReconnected(playerID string) (SessionSnapshot, error) {
	res := s.do(command{kind: cmdReconnect, playerID: playerID})
	return res.snap, res.err
}

// StartGame is host-only.
func (s *Session) StartGame(playerID string) error {
	return s.do(command{kind: cmdStart, playerID: playerID}).err
}

func (s *Session) SelectWord(playerID, word string) error {
	return s.do(command{kind: cmdSelectWord, playerID: playerID, word: word}).err
}

func (s *Session) SubmitDrawingAction(playerID, kind string, payload []byte, seq int) error {
	return s.do(command{kind: cmdDraw, playerID: playerID, actionKind: kind, payload: payload, seq: seq}).err
}

func (s *Session) SubmitGuess(playerID, text string) error {
	return s.do(command{kind: cmdGuess, playerID: playerID, text: text}).err
}

func (s *Session) SubmitChat(playerID, text string) error {
	return s.do(command{kind: cmdChat, playerID: playerID, text: text}).err
}

func (s *Session) SubmitRating(raterID, ownerID string, stars int) error {
	return s.do(command{kind: cmdRate, playerID: raterID, ownerID: ownerID, stars: stars}).err
}

// CompleteRating is the host cutting the rating phase short.
func (s *Session) CompleteRating(playerID string) error {
	return s.do(command{kind: cmdCompleteRating, playerID: playerID}).err
}

// Snapshot returns the session state as visible to the given player: only
// the current drawer sees the word.
func (s *Session) Snapshot(playerID string) (SessionSnapshot, error) {
	res := s.do(command{kind: cmdSnapshot, playerID: playerID})
	return res.snap, res.err
}

// Closed reports whether the session has torn down. Safe from any goroutine.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Describe returns the redacted state for anyone, member or not. Session
// listings are built from this.
func (s *Session) Describe() (SessionSnapshot, error) {
	res := s.do(command{kind: cmdDescribe})
	return res.snap, res.err
}

func (s *Session) handle(cmd command) {
	if s.closed {
		cmd.reply <- cmdResult{err: ErrSessionClosed}
		return
	}
	now := s.now()
	var res cmdResult

	switch cmd.kind {
	case cmdJoin:
		res = s.handleJoin(cmd, now)
	case cmdLeave:
		res.err = s.handleGone(cmd.playerID, now)
	case cmdDisconnect:
		res.err = s.handleDisconnect(cmd.playerID, now)
	case cmdReconnect:
		res = s.handleReconnect(cmd, now)
	case cmdStart:
		res.err = s.requireHost(cmd.playerID)
		if res.err == nil {
			res.err = s.engine.StartGame(now)
		}
	case cmdSelectWord:
		res.err = s.engine.SelectWord(cmd.playerID, cmd.word, now)
	case cmdDraw:
		res.err = s.engine.SubmitDrawing(cmd.playerID, cmd.actionKind, cmd.payload, cmd.seq, now)
	case cmdGuess:
		res.err = s.engine.SubmitGuess(cmd.playerID, cmd.text, now)
	case cmdChat:
		res.err = s.engine.SubmitChat(cmd.playerID, cmd.text)
	case cmdRate:
		res.err = s.engine.SubmitRating(cmd.playerID, cmd.ownerID, cmd.stars)
	case cmdCompleteRating:
		res.err = s.requireHost(cmd.playerID)
		if res.err == nil {
			res.err = s.engine.CompleteRating(now)
		}
	case cmdSnapshot:
		res.snap, res.err = s.snapshotFor(cmd.playerID, now)
	case cmdDescribe:
		res.snap = s.engine.Snapshot(s.ID, now).Redacted()
	}

	cmd.reply <- res
	s.afterStep(now)
}

func (s *Session) handleTick(now time.Time) {
	if s.closed {
		return
	}
	for _, id := range s.roster.ExpiredDisconnects(now, s.cfg.ReconnectGrace) {
		s.log.Info("reconnect grace expired", "player", id)
		s.removePlayer(id, now)
	}
	s.engine.Tick(now)
	s.afterStep(now)
}

// afterStep runs after every command and tick: publish what the engine
// produced, queue a persist, tear down on an empty roster.
func (s *Session) afterStep(now time.Time) {
	for _, ev := range s.engine.Drain() {
		s.pubsub.Publish(s.ID, ev)
	}
	if s.roster.Len() == 0 && !s.closed {
		s.teardown()
		return
	}
	s.queuePersist(now)
}

func (s *Session) handleJoin(cmd command, now time.Time) cmdResult {
	if p := s.roster.Get(cmd.playerID); p != nil {
		return cmdResult{snap: s.engine.Snapshot(s.ID, now).Redacted()}
	}
	if s.engine.Phase() != PhaseWaiting {
		return cmdResult{err: ErrSessionAlreadyStarted}
	}
	if s.roster.Len() >= s.cfg.MaxPlayers {
		return cmdResult{err: ErrSessionFull}
	}
	s.roster.Add(cmd.playerID, cmd.name)
	s.log.Info("player joined", "player", cmd.playerID, "name", cmd.name)
	s.engine.emit(makeRosterChanged(s.roster))
	snap := s.engine.Snapshot(s.ID, now).Redacted()
	s.engine.emit(makeSnapshot(cmd.playerID, snap))
	return cmdResult{snap: snap}
}

func (s *Session) handleGone(playerID string, now time.Time) error {
	if s.roster.Get(playerID) == nil {
		return ErrNotInSession
	}
	s.log.Info("player left", "player", playerID)
	s.removePlayer(playerID, now)
	return nil
}

func (s *Session) handleDisconnect(playerID string, now time.Time) error {
	if s.roster.Get(playerID) == nil {
		return ErrNotInSession
	}
	if s.engine.Phase() == PhaseWaiting {
		// no game to hold a seat for
		s.removePlayer(playerID, now)
		return nil
	}
	s.roster.MarkDisconnected(playerID, now)
	s.log.Info("player disconnected", "player", playerID)
	s.engine.emit(makeRosterChanged(s.roster))
	return nil
}

func (s *Session) handleReconnect(cmd command, now time.Time) cmdResult {
	p := s.roster.MarkReconnected(cmd.playerID)
	if p == nil {
		return cmdResult{err: ErrNotInSession}
	}
	s.log.Info("player reconnected", "player", cmd.playerID)
	s.engine.emit(makeRosterChanged(s.roster))
	snap, _ := s.snapshotFor(cmd.playerID, now)
	s.engine.emit(makeSnapshot(cmd.playerID, snap))
	return cmdResult{snap: snap}
}

// removePlayer drops the seat and lets the engine react. Host hand-off goes
// to the earliest remaining joiner.
func (s *Session) removePlayer(playerID string, now time.Time) {
	removed, newHost := s.roster.Remove(playerID)
	if removed == nil {
		return
	}
	if s.roster.Len() > 0 {
		s.engine.emit(makeRosterChanged(s.roster))
		if newHost != nil {
			s.engine.emit(makeHostChanged(newHost.ID))
		}
	}
	s.engine.HandlePlayerGone(playerID, now)
}

func (s *Session) requireHost(playerID string) error {
	if s.roster.Get(playerID) == nil {
		return ErrNotInSession
	}
	host := s.roster.Host()
	if host == nil || host.ID != playerID {
		return ErrNotHost
	}
	return nil
}

func (s *Session) snapshotFor(playerID string, now time.Time) (SessionSnapshot, error) {
	if s.roster.Get(playerID) == nil {
		return SessionSnapshot{}, ErrNotInSession
	}
	snap := s.engine.Snapshot(s.ID, now)
	if rd := s.engine.Round(); rd == nil || rd.DrawerID != playerID {
		snap = snap.Redacted()
	}
	return snap, nil
}

// teardown closes the session. The persisted row is deleted by the persister
// on its way out, never here, so a snapshot it is still writing can't land
// after the delete.
func (s *Session) teardown() {
	s.closed = true
	s.log.Info("session empty, tearing down")
	s.pubsub.Publish(s.ID, makeSessionDeleted())
	close(s.done)
	if s.onEmpty != nil {
		s.onEmpty(s.ID)
	}
}

// queuePersist hands the latest snapshot to the persister without ever
// blocking the session goroutine. A still-queued older snapshot is replaced.
func (s *Session) queuePersist(now time.Time) {
	snap := s.engine.Snapshot(s.ID, now)
	for {
		select {
		case s.persist <- snap:
			return
		default:
		}
		select {
		case <-s.persist:
		default:
		}
	}
}

func (s *Session) persister() {
	for {
		select {
		case snap := <-s.persist:
			if s.Closed() {
				// tearing down; a leftover snapshot is not worth writing
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.store.PutSession(ctx, s.ID, snap); err != nil {
				s.log.Error("persist session snapshot", "error", err)
			}
			cancel()
		case <-s.done:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.store.DeleteSession(ctx, s.ID); err != nil {
				s.log.Error("delete persisted session", "error", err)
			}
			cancel()
			return
		}
	}
}
