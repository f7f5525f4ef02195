// Package batch executes a per-target action over a resolved selection.
// Execution is strictly sequential in resolution order, with no implicit
// parallelism, so API rate-limit behavior and log ordering stay
// deterministic and reproducible. A single target's failure never escapes
// the loop; it is folded into the Summary.
package batch

import (
	"context"

	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/logging"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// Phase is one sequential pass over the whole resolved list. Phases of an
// action never interleave: every target finishes phase N before any
// target enters phase N+1.
type Phase interface {
	Name() string

	// Run processes one target. With dryRun set it performs the same
	// read-only lookups and emits the same log cardinality as a real run,
	// but issues no mutating call, so a dry-run is an exact rehearsal.
	Run(ctx context.Context, target types.ResolvedTarget, dryRun bool) error
}

// Action is one fleet operation (move, refresh, tag-update, audit-start).
// The continue-vs-stop default is declared policy data on the action, not
// an incidental flag default.
type Action interface {
	Name() string
	FailurePolicy() types.FailurePolicy
	Phases() []Phase
}

type skipError struct{ reason string }

func (e *skipError) Error() string { return e.reason }

// Skip marks a target as skipped rather than failed; phases return it for
// work that is legitimately not applicable (e.g. audit collection already
// running).
func Skip(reason string) error {
	return &skipError{reason: reason}
}

// IsSkip reports whether err is a Skip marker.
func IsSkip(err error) bool {
	_, ok := err.(*skipError)
	return ok
}

// Executor runs actions over resolved selections.
type Executor struct {
	// PolicyOverride, when set, replaces the action's declared failure
	// policy for this run.
	PolicyOverride types.FailurePolicy
}

// Run executes the action over the context's resolved targets and returns
// the aggregated Summary. The Summary is always produced, including on
// partial failure; callers derive the process exit status from it.
func (e *Executor) Run(ctx context.Context, ec *types.ExecutionContext, action Action) (types.Summary, error) {
	log := logging.GetLogger("batch")

	if err := ec.Transition(types.PhaseExecuting); err != nil {
		return types.Summary{}, err
	}

	policy := action.FailurePolicy()
	if e.PolicyOverride != "" {
		policy = e.PolicyOverride
	}

	targets := ec.Resolved()
	log.Info().
		Str("runId", ec.RunID).
		Str("action", action.Name()).
		Int("targets", len(targets)).
		Bool("dryRun", ec.DryRun).
		Str("onError", string(policy)).
		Msg("Batch execution starting")

	// Per-target terminal state; empty means still in flight.
	status := make([]types.OutcomeStatus, len(targets))
	detail := make([]string, len(targets))
	stopped := false

	for _, phase := range action.Phases() {
		for i, target := range targets {
			if status[i] != "" {
				continue
			}
			if stopped {
				status[i] = types.OutcomeSkipped
				detail[i] = "not processed: stopped after earlier failure"
				continue
			}
			if err := ctx.Err(); err != nil {
				status[i] = types.OutcomeSkipped
				detail[i] = "not processed: run interrupted"
				continue
			}

			log.Info().
				Str("runId", ec.RunID).
				Str("phase", phase.Name()).
				Str("target", target.DisplayName).
				Str("ocid", target.ID).
				Bool("dryRun", ec.DryRun).
				Msg("Processing target")

			err := phase.Run(ctx, target, ec.DryRun)
			switch {
			case err == nil:
				// In flight until every phase has seen the target.
			case IsSkip(err):
				status[i] = types.OutcomeSkipped
				detail[i] = err.Error()
			default:
				log.Error().
					Str("runId", ec.RunID).
					Str("target", target.DisplayName).
					Err(err).
					Msg("Target failed")
				status[i] = types.OutcomeFailed
				detail[i] = err.Error()
				if policy == types.StopOnError {
					stopped = true
				}
			}
		}
	}

	var summary types.Summary
	for i, target := range targets {
		st := status[i]
		if st == "" {
			st = types.OutcomeSucceeded
		}
		summary.Record(types.OperationResult{Target: target, Status: st, Detail: detail[i]})
	}

	if err := ec.Transition(types.PhaseSummarized); err != nil {
		return summary, err
	}

	log.Info().
		Str("runId", ec.RunID).
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("Batch execution finished")

	return summary, nil
}

// PhaseFunc adapts a function to the Phase interface for single-phase
// actions.
type PhaseFunc struct {
	PhaseName string
	Fn        func(ctx context.Context, target types.ResolvedTarget, dryRun bool) error
}

// Name implements Phase.
func (p PhaseFunc) Name() string { return p.PhaseName }

// Run implements Phase.
func (p PhaseFunc) Run(ctx context.Context, target types.ResolvedTarget, dryRun bool) error {
	if p.Fn == nil {
		return errors.New(errors.ErrInternal, "phase has no implementation")
	}
	return p.Fn(ctx, target, dryRun)
}
