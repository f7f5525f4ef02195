package types

// OutcomeStatus is the per-target outcome of a batch run.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeSkipped   OutcomeStatus = "skipped"
)

// OperationResult records one target's outcome. Detail carries the error
// text for failures or the skip reason.
type OperationResult struct {
	Target ResolvedTarget
	Status OutcomeStatus
	Detail string
}

// Summary aggregates a run's outcomes. It is always produced, including
// on partial failure, and returned by value rather than mutated through
// shared state.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int

	// Cancelled is set when the operator declined the confirmation gate;
	// the run is a clean no-op, not a failure.
	Cancelled bool

	Results []OperationResult
}

// Record appends a result and updates the counters.
func (s *Summary) Record(result OperationResult) {
	s.Results = append(s.Results, result)
	s.Total++
	switch result.Status {
	case OutcomeSucceeded:
		s.Succeeded++
	case OutcomeFailed:
		s.Failed++
	case OutcomeSkipped:
		s.Skipped++
	}
}

// ExitCode maps the summary onto the process exit status: non-zero
// whenever any target failed, so automated callers cannot mistake "ran to
// completion" for "fully succeeded". A cancelled run exits zero.
func (s Summary) ExitCode() int {
	if s.Failed > 0 {
		return 2
	}
	return 0
}
