package research

// Phase tracks how far a run has progressed. Transitions only move forward;
// any stage failure lands in PhaseFailed and the run stops there.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseFetching
	PhaseAnalyzing
	PhaseSynthesizing
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "INIT"
	case PhaseFetching:
		return "FETCHING"
	case PhaseAnalyzing:
		return "ANALYZING"
	case PhaseSynthesizing:
		return "SYNTHESIZING"
	case PhaseDone:
		return "DONE"
	case PhaseFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the run can make no further progress.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}
