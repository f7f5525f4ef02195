package types

// ResolutionPolicy declares how an operation treats per-entry resolution
// failures in an explicit target list.
type ResolutionPolicy string

const (
	// ResolutionStrict aborts the run on the first unresolvable entry.
	ResolutionStrict ResolutionPolicy = "strict"

	// ResolutionBestEffort reports unresolvable entries and proceeds with
	// the rest.
	ResolutionBestEffort ResolutionPolicy = "best-effort"
)

// FailurePolicy declares how an operation treats a per-target failure
// during batch execution.
type FailurePolicy string

const (
	// ContinueOnError records the failure and proceeds to the next target.
	ContinueOnError FailurePolicy = "continue"

	// StopOnError aborts after the first failure; remaining targets are
	// recorded as skipped, not failed.
	StopOnError FailurePolicy = "stop"
)
