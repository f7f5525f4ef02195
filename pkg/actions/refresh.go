package actions

import (
	"context"

	"github.com/dsfleet/dsfleet/pkg/batch"
	"github.com/dsfleet/dsfleet/pkg/catalog"
	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/logging"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// Refresher re-reads each target's connection metadata from the database
// it registers.
type Refresher struct {
	Catalog catalog.Catalog
}

// Name implements batch.Action.
func (r *Refresher) Name() string { return "refresh" }

// FailurePolicy implements batch.Action.
func (r *Refresher) FailurePolicy() types.FailurePolicy { return types.ContinueOnError }

// Phases implements batch.Action.
func (r *Refresher) Phases() []batch.Phase {
	return []batch.Phase{batch.PhaseFunc{PhaseName: "refresh", Fn: r.run}}
}

func (r *Refresher) run(ctx context.Context, target types.ResolvedTarget, dryRun bool) error {
	log := logging.GetLogger("actions.refresh")

	log.Info().
		Str("target", target.DisplayName).
		Str("ocid", target.ID).
		Bool("dryRun", dryRun).
		Msg("Refreshing target metadata")
	if dryRun {
		return nil
	}

	if err := r.Catalog.RefreshTarget(ctx, target.ID); err != nil {
		return errors.Wrapf(err, errors.ErrTargetOp,
			"refreshing target %s failed", target.DisplayName)
	}
	return nil
}
