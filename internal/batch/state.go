package batch

// State is the batch lifecycle phase. Transitions run strictly
// forward: Idle, Validating, SelectingFormat, Converting, then one of
// the terminal states.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSelectingFormat
	StateConverting
	StateCompleted
	StateCancelled
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSelectingFormat:
		return "selecting-format"
	case StateConverting:
		return "converting"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the batch has finished in this state.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateAborted:
		return true
	}
	return false
}
