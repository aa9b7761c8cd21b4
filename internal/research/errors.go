package research

import "fmt"

// Kind classifies where in the pipeline a run failed.
type Kind string

const (
	KindFetch     Kind = "fetch"
	KindAnalysis  Kind = "analysis"
	KindSynthesis Kind = "synthesis"
	KindTimeout   Kind = "timeout"
)

// RunError carries the failing stage alongside the underlying cause so the
// CLI can report where a run died without string matching.
type RunError struct {
	Kind   Kind
	Ticker string
	Err    error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Ticker, e.Kind, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func newRunError(kind Kind, ticker string, err error) *RunError {
	return &RunError{Kind: kind, Ticker: ticker, Err: err}
}
