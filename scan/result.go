// Package scan drives template discovery: it walks the paginated object
// listing, evaluates each candidate against the working set, and
// persists accepted templates. Per-candidate failures never abort the
// run; failures of the listing itself always do.
package scan

import "fmt"

// Outcome classifies the evaluation of one candidate object.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeDuplicate
	OutcomeSkippedNotPDF
	OutcomeSkippedExists
	OutcomeSkippedRetrieval
	OutcomeSkippedUnrenderable
	OutcomeSkippedPersist
)

// String names the outcome for progress reporting.
func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeSkippedNotPDF:
		return "not a pdf"
	case OutcomeSkippedExists:
		return "already downloaded"
	case OutcomeSkippedRetrieval:
		return "retrieval failed"
	case OutcomeSkippedUnrenderable:
		return "unrenderable"
	case OutcomeSkippedPersist:
		return "persist failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result records how one candidate was handled.
type Result struct {
	Key     string
	Outcome Outcome
	Err     error // set for the skip outcomes that carry a cause
}

// Reason is the driver's terminal state.
type Reason int

const (
	ReasonTargetReached Reason = iota
	ReasonSourceExhausted
	ReasonInterrupted
	ReasonFatalError
)

// String names the termination reason.
func (r Reason) String() string {
	switch r {
	case ReasonTargetReached:
		return "target reached"
	case ReasonSourceExhausted:
		return "source exhausted"
	case ReasonInterrupted:
		return "interrupted"
	case ReasonFatalError:
		return "fatal error"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Summary aggregates a run's per-candidate outcomes.
type Summary struct {
	Reason   Reason
	Listed   int // objects seen in the listing
	Counts   map[Outcome]int
	SetSize  int // working set size at termination, bootstrap entries included
	Capacity int
}

func newSummary(capacity int) Summary {
	return Summary{Counts: make(map[Outcome]int), Capacity: capacity}
}

func (s *Summary) record(r Result) {
	s.Counts[r.Outcome]++
}

// Accepted returns the number of templates accepted this run.
func (s Summary) Accepted() int {
	return s.Counts[OutcomeAccepted]
}
