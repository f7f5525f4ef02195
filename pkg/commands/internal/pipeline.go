// Package internal holds the shared execution pipeline behind every
// mutating fleet command: resolve the selection, validate it, confirm
// with the operator, execute the batch, and report the outcome.
package internal

import (
	"context"
	"fmt"
	"io"

	"github.com/dsfleet/dsfleet/pkg/batch"
	"github.com/dsfleet/dsfleet/pkg/catalog"
	"github.com/dsfleet/dsfleet/pkg/compartments"
	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/logging"
	"github.com/dsfleet/dsfleet/pkg/report"
	"github.com/dsfleet/dsfleet/pkg/selector"
	"github.com/dsfleet/dsfleet/pkg/snapshot"
	"github.com/dsfleet/dsfleet/pkg/types"
	"github.com/dsfleet/dsfleet/pkg/ui"
)

// Deps carries the wired collaborators into a command run. Commands never
// construct clients themselves; the CLI layer builds one Deps per
// invocation, and tests substitute fakes.
type Deps struct {
	Catalog      catalog.Catalog
	Compartments *compartments.Resolver
	Validator    snapshot.Validator
	Confirmer    ui.Confirmer
	Out          io.Writer
}

// SelectionValidator is an optional action hook, run against the resolved
// selection before anything is confirmed or executed. The move action
// uses it for the source-differs-from-destination check.
type SelectionValidator interface {
	ValidateSelection(ctx context.Context, res selector.Resolution) error
}

// Confirmable actions gate an apply run behind an explicit confirmation
// showing the blast radius. Dry-runs and --force skip the gate.
type Confirmable interface {
	ImpactPreview(res selector.Resolution) string
}

// RunOptions are the per-invocation knobs shared by every command.
type RunOptions struct {
	Criteria types.SelectionCriteria

	DryRun     bool
	Force      bool
	AllowStale bool

	// BestEffort relaxes explicit-list resolution so unresolved entries
	// are reported instead of aborting the run.
	BestEffort bool

	// PolicyOverride, when non-empty, replaces the action's declared
	// continue-vs-stop failure policy.
	PolicyOverride types.FailurePolicy

	Output report.Format
}

// RunResult is the pipeline outcome the CLI layer turns into an exit
// status: 0 for full success (including cancelled and zero-match runs),
// 2 for partial failure. Fatal errors surface as a returned error and
// exit 1 instead.
type RunResult struct {
	Summary  types.Summary
	ExitCode int
}

// Run drives one command through the lifecycle. Any error before
// execution begins leaves the fleet untouched.
func Run(ctx context.Context, deps Deps, action batch.Action, opts RunOptions) (*RunResult, error) {
	log := logging.GetLogger("commands")

	ec := types.NewExecutionContext(action.Name(), opts.DryRun)
	log.Info().
		Str("runId", ec.RunID).
		Str("operation", ec.Operation).
		Bool("dryRun", ec.DryRun).
		Msg("Run starting")

	if err := ec.Transition(types.PhaseResolving); err != nil {
		return nil, err
	}

	policy := types.ResolutionStrict
	if opts.BestEffort {
		policy = types.ResolutionBestEffort
	}

	sel := selector.New(deps.Catalog, deps.Compartments, deps.Validator)
	res, err := sel.Resolve(ctx, opts.Criteria, selector.Options{
		Policy:     policy,
		DryRun:     opts.DryRun,
		AllowStale: opts.AllowStale,
	})
	if err != nil {
		_ = ec.Transition(types.PhaseFailed)
		return nil, err
	}

	// Selection-level invariants are still part of resolution; a
	// violation fails the run before anything is mutated.
	if sv, ok := action.(SelectionValidator); ok {
		if err := sv.ValidateSelection(ctx, res); err != nil {
			_ = ec.Transition(types.PhaseFailed)
			return nil, err
		}
	}

	if len(res.Targets) == 0 {
		_ = ec.Transition(types.PhaseFailed)
		log.Warn().Str("runId", ec.RunID).Msg("Selection resolved zero targets")
		summary := types.Summary{}
		switch opts.Output {
		case report.FormatJSON, report.FormatYAML:
			if err := report.Write(deps.Out, opts.Output, summary); err != nil {
				return nil, err
			}
		default:
			fmt.Fprintln(deps.Out, "No targets matched the selection; nothing to do.")
		}
		return &RunResult{Summary: summary, ExitCode: 0}, nil
	}

	if err := ec.SetResolved(res.Targets); err != nil {
		return nil, err
	}

	if c, ok := action.(Confirmable); ok && !opts.DryRun && !opts.Force {
		confirmed, err := deps.Confirmer.Confirm(c.ImpactPreview(res))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal,
				"reading the confirmation answer failed")
		}
		if !confirmed {
			log.Info().Str("runId", ec.RunID).Msg("Run cancelled at confirmation")
			summary := types.Summary{Cancelled: true}
			if err := writeSummary(deps.Out, ec, opts.Output, summary); err != nil {
				return nil, err
			}
			return &RunResult{Summary: summary, ExitCode: 0}, nil
		}
	}

	exec := &batch.Executor{PolicyOverride: opts.PolicyOverride}
	summary, err := exec.Run(ctx, ec, action)
	if err != nil {
		return nil, err
	}

	if err := writeSummary(deps.Out, ec, opts.Output, summary); err != nil {
		return nil, err
	}

	log.Info().
		Str("runId", ec.RunID).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Dur("elapsed", ec.Elapsed()).
		Msg("Run finished")

	return &RunResult{Summary: summary, ExitCode: summary.ExitCode()}, nil
}

// writeSummary renders for terminals on the text format and defers to the
// structured encoders otherwise.
func writeSummary(w io.Writer, ec *types.ExecutionContext, format report.Format, summary types.Summary) error {
	switch format {
	case report.FormatJSON, report.FormatYAML:
		return report.Write(w, format, summary)
	default:
		if _, err := fmt.Fprintln(w, ui.RenderSummary(ec.Operation, summary)); err != nil {
			return err
		}
		if ec.DryRun {
			_, err := fmt.Fprintln(w, "\nDRY RUN - no changes were made")
			return err
		}
		return nil
	}
}
