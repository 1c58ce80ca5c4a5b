package pipeline

// State is a step of a sub-run.
type State int

const (
	StateStart State = iota
	StateValidated
	StateConverted
	StateAligned
	StateChopped
	StateStatistics
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateValidated:
		return "VALIDATED"
	case StateConverted:
		return "CONVERTED"
	case StateAligned:
		return "ALIGNED"
	case StateChopped:
		return "CHOPPED"
	case StateStatistics:
		return "STATISTICS"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}
