package actions

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/dsfleet/dsfleet/pkg/batch"
	"github.com/dsfleet/dsfleet/pkg/catalog"
	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/logging"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// AuditStarter starts audit collection on every audit trail of each
// target, from a given point in time. Trails already collecting are
// skipped, not failed; a target with no trails at all is skipped so the
// operator can tell it apart from one whose trails all started.
type AuditStarter struct {
	Catalog catalog.Catalog

	// StartTime is the collection start; the command layer defaults it.
	StartTime time.Time
}

// Name implements batch.Action.
func (a *AuditStarter) Name() string { return "audit-start" }

// FailurePolicy implements batch.Action. Starting collection fleet-wide
// on a bad premise is better stopped early than pushed through.
func (a *AuditStarter) FailurePolicy() types.FailurePolicy { return types.StopOnError }

// Phases implements batch.Action.
func (a *AuditStarter) Phases() []batch.Phase {
	return []batch.Phase{batch.PhaseFunc{PhaseName: "start-audit", Fn: a.run}}
}

func (a *AuditStarter) run(ctx context.Context, target types.ResolvedTarget, dryRun bool) error {
	log := logging.GetLogger("actions.audit")

	current, err := a.Catalog.GetTarget(ctx, target.ID)
	if err != nil {
		return errors.Wrapf(err, errors.ErrTargetOp,
			"cannot read target %s", target.DisplayName)
	}

	trails, err := a.Catalog.ListDependents(ctx, types.KindAuditTrail, current.CompartmentID, target.ID)
	if err != nil {
		return errors.Wrapf(err, errors.ErrTargetOp,
			"listing audit trails of %s failed", target.DisplayName)
	}
	if len(trails) == 0 {
		return batch.Skip("no audit trails registered")
	}

	started := 0
	alreadyRunning := 0
	for _, trail := range trails {
		log.Info().
			Str("trail", trail.DisplayName).
			Str("target", target.DisplayName).
			Time("from", a.StartTime).
			Bool("dryRun", dryRun).
			Msg("Starting audit collection")
		if dryRun {
			started++
			continue
		}

		switch err := a.Catalog.StartAuditTrail(ctx, trail.ID, a.StartTime); {
		case err == nil:
			started++
		case stderrors.Is(err, catalog.ErrAlreadyStarted):
			log.Debug().Str("trail", trail.DisplayName).Msg("Audit collection already running")
			alreadyRunning++
		default:
			return errors.Wrapf(err, errors.ErrTargetOp,
				"starting audit trail %s failed", trail.DisplayName)
		}
	}

	if started == 0 && alreadyRunning > 0 {
		return batch.Skip("audit collection already running on all trails")
	}
	return nil
}
