package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/dsfleet/dsfleet/pkg/errors"
)

// Phase is one step of the selection+execution lifecycle. The machine is
// linear with no cycles: a fresh invocation starts a new context.
type Phase string

const (
	PhaseUnresolved Phase = "UNRESOLVED"
	PhaseResolving  Phase = "RESOLVING"
	PhaseResolved   Phase = "RESOLVED"
	PhaseExecuting  Phase = "EXECUTING"
	PhaseSummarized Phase = "SUMMARIZED"

	// PhaseFailed is the early exit out of RESOLVING on validation or
	// zero-match errors, before any mutation.
	PhaseFailed Phase = "FAILED"
)

var phaseTransitions = map[Phase][]Phase{
	PhaseUnresolved: {PhaseResolving},
	PhaseResolving:  {PhaseResolved, PhaseFailed},
	PhaseResolved:   {PhaseExecuting},
	PhaseExecuting:  {PhaseSummarized},
	PhaseSummarized: {},
	PhaseFailed:     {},
}

// ExecutionContext threads one invocation's state through the pipeline:
// the operation name, the run identifier used in logs and reports, the
// resolved selection and the lifecycle phase. It replaces process-wide
// mutable globals; results are aggregated in the Summary returned by the
// executor, not mutated in place here.
type ExecutionContext struct {
	Operation string
	RunID     string
	DryRun    bool
	StartTime time.Time
	EndTime   time.Time

	phase    Phase
	resolved []ResolvedTarget
}

// NewExecutionContext creates a context in the UNRESOLVED phase.
func NewExecutionContext(operation string, dryRun bool) *ExecutionContext {
	return &ExecutionContext{
		Operation: operation,
		RunID:     uuid.NewString(),
		DryRun:    dryRun,
		StartTime: time.Now(),
		phase:     PhaseUnresolved,
	}
}

// Phase returns the current lifecycle phase.
func (ec *ExecutionContext) Phase() Phase {
	return ec.phase
}

// Transition moves the machine to next, rejecting anything but the legal
// forward edges. There is no transition back to an earlier phase.
func (ec *ExecutionContext) Transition(next Phase) error {
	for _, allowed := range phaseTransitions[ec.phase] {
		if next == allowed {
			ec.phase = next
			if next == PhaseSummarized || next == PhaseFailed {
				ec.EndTime = time.Now()
			}
			return nil
		}
	}
	return errors.Newf(errors.ErrInternal,
		"illegal phase transition %s -> %s", ec.phase, next)
}

// SetResolved stores the resolved selection and advances to RESOLVED.
func (ec *ExecutionContext) SetResolved(targets []ResolvedTarget) error {
	if err := ec.Transition(PhaseResolved); err != nil {
		return err
	}
	ec.resolved = targets
	return nil
}

// Resolved returns the resolved selection in resolution order.
func (ec *ExecutionContext) Resolved() []ResolvedTarget {
	return ec.resolved
}

// Elapsed is the wall-clock duration of the run so far, or of the whole
// run once the machine reached a terminal phase.
func (ec *ExecutionContext) Elapsed() time.Duration {
	if ec.EndTime.IsZero() {
		return time.Since(ec.StartTime)
	}
	return ec.EndTime.Sub(ec.StartTime)
}
