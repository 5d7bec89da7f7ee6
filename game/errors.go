package game

import "errors"

// All of these are recoverable and caller-visible: they go back to the
// requester through the command's reply channel and never tear down a session.
var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionAlreadyStarted = errors.New("session already started")
	ErrSessionFull           = errors.New("session full")
	ErrSessionClosed         = errors.New("session closed")
	ErrNotInSession          = errors.New("player not in session")
	ErrWrongPhase            = errors.New("operation not valid in current phase")
	ErrNotHost               = errors.New("player is not the host")
	ErrNotCurrentDrawer      = errors.New("player is not the current drawer")
	ErrInvalidWordChoice     = errors.New("word is not one of the offered choices")
	ErrDrawerCannotGuess     = errors.New("drawer cannot guess")
	ErrAlreadyGuessed        = errors.New("player already guessed correctly this round")
	ErrRateLimited           = errors.New("guessing too fast")
	ErrDuplicateRating       = errors.New("rating already submitted for this drawing")
	ErrRatingOutOfRange      = errors.New("rating out of range")
	ErrCannotRateOwnDrawing  = errors.New("cannot rate own drawing")
	ErrNoEligibleDrawer      = errors.New("no eligible drawer")
	ErrInsufficientPlayers   = errors.New("not enough players")
)
