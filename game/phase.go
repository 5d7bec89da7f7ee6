package game

// Phase is the round engine's state. Every phase check in the package goes
// through the engine's transition methods; nothing else is allowed to compare
// phases ad hoc.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseWordSelection
	PhaseDrawing
	PhaseRating
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseWordSelection:
		return "word_selection"
	case PhaseDrawing:
		return "drawing"
	case PhaseRating:
		return "rating"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}
