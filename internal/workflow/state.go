package workflow

// State is a candidate's position in the screening pipeline.
type State string

const (
	StateDiscovered State = "discovered"
	StateExtracted  State = "extracted"
	StateScored     State = "scored"
	StateDecided    State = "decided"
	StateNotified   State = "notified"
	StateSkipped    State = "skipped"
)

// transitions is the full set of legal moves. A candidate can jump from
// discovered or extracted straight to decided when extraction fails or the
// confidence floor routes it to human review; skipped is reachable only from
// discovered (unsupported format, before any processing).
var transitions = map[State][]State{
	"":              {StateDiscovered},
	StateDiscovered: {StateExtracted, StateDecided, StateSkipped},
	StateExtracted:  {StateScored, StateDecided},
	StateScored:     {StateDecided},
	StateDecided:    {StateNotified},
}

// CanTransition reports whether moving from one state to another is legal.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
