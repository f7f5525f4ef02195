// Package actions implements the per-target operations executed by the
// batch executor: move, refresh, retag and audit-start. Each action
// declares its own failure policy and exposes a side-effect-free preview
// path, so a dry-run is an exact rehearsal of an apply run.
package actions

import (
	"context"
	"fmt"

	"github.com/dsfleet/dsfleet/pkg/batch"
	"github.com/dsfleet/dsfleet/pkg/catalog"
	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/logging"
	"github.com/dsfleet/dsfleet/pkg/selector"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// Mover relocates targets and their dependent resources to a destination
// compartment. It runs in two phases that never interleave: every
// selected target's dependents move first, while the targets are still
// discoverable in their original compartments for enumeration, then the
// targets themselves move.
type Mover struct {
	Catalog catalog.Catalog

	// DestinationID is the resolved destination compartment.
	DestinationID string

	// DestinationDesc is the human-readable destination used in previews.
	DestinationDesc string

	// IncludeDependents relocates audit trails, security assessments and
	// security policies along with each target. On by default; the
	// command layer clears it for --targets-only runs.
	IncludeDependents bool
}

// Name implements batch.Action.
func (m *Mover) Name() string { return "move" }

// FailurePolicy implements batch.Action. Moves are destructive, so the
// declared default keeps going and reports the failures at the end.
func (m *Mover) FailurePolicy() types.FailurePolicy { return types.ContinueOnError }

// Phases implements batch.Action.
func (m *Mover) Phases() []batch.Phase {
	if !m.IncludeDependents {
		return []batch.Phase{&targetPhase{mover: m}}
	}
	return []batch.Phase{&dependentsPhase{mover: m}, &targetPhase{mover: m}}
}

// ValidateSelection enforces the move invariant once, against the single
// resolved source scope: even when a subtree scan draws targets from
// several sub-compartments, all are redirected to one destination, and
// that destination must differ from the source scope.
func (m *Mover) ValidateSelection(_ context.Context, res selector.Resolution) error {
	if res.Scope.ID == m.DestinationID {
		return errors.New(errors.ErrValidation,
			"source and destination compartments are the same").
			WithHint("supply a destination compartment different from the selection scope")
	}
	return nil
}

// ImpactPreview implements commands.Confirmable.
func (m *Mover) ImpactPreview(res selector.Resolution) string {
	dependents := "dependent resources included (audit trails, security assessments, security policies)"
	if !m.IncludeDependents {
		dependents = "dependent resources NOT included"
	}
	return fmt.Sprintf(
		"Move %d target(s)\n  from: %s\n  to:   %s\n  %s",
		len(res.Targets), res.Scope.Name+" ("+res.Scope.ID+")", m.DestinationDesc, dependents)
}

// dependentsPhase relocates every dependent of every selected target.
// Enumeration is live per target and per kind, addressed by the target's
// current compartment, so re-running after a partial failure only picks
// up resources that still sit in the stale compartment.
type dependentsPhase struct {
	mover *Mover
}

func (p *dependentsPhase) Name() string { return "relocate-dependents" }

func (p *dependentsPhase) Run(ctx context.Context, target types.ResolvedTarget, dryRun bool) error {
	log := logging.GetLogger("actions.move")
	m := p.mover

	current, err := m.Catalog.GetTarget(ctx, target.ID)
	if err != nil {
		return errors.Wrapf(err, errors.ErrTargetOp,
			"cannot read target %s before moving its dependents", target.DisplayName)
	}

	var failed int
	for _, kind := range types.DependencyKinds {
		dependents, err := m.Catalog.ListDependents(ctx, kind, current.CompartmentID, target.ID)
		if err != nil {
			return errors.Wrapf(err, errors.ErrTargetOp,
				"listing %s dependents of %s failed", kind, target.DisplayName)
		}

		for _, dep := range dependents {
			log.Info().
				Str("kind", string(kind)).
				Str("dependent", dep.DisplayName).
				Str("target", target.DisplayName).
				Str("destination", m.DestinationID).
				Bool("dryRun", dryRun).
				Msg("Relocating dependent")
			if dryRun {
				continue
			}
			if err := m.Catalog.MoveDependent(ctx, kind, dep.ID, m.DestinationID); err != nil {
				log.Error().Str("dependent", dep.DisplayName).Err(err).Msg("Dependent relocate failed")
				failed++
			}
		}
	}

	if failed > 0 {
		return errors.Newf(errors.ErrTargetOp,
			"%d dependent(s) of %s failed to relocate", failed, target.DisplayName)
	}
	return nil
}

// targetPhase relocates the target objects themselves, after every
// target's dependents have been processed.
type targetPhase struct {
	mover *Mover
}

func (p *targetPhase) Name() string { return "relocate-targets" }

func (p *targetPhase) Run(ctx context.Context, target types.ResolvedTarget, dryRun bool) error {
	log := logging.GetLogger("actions.move")
	m := p.mover

	log.Info().
		Str("target", target.DisplayName).
		Str("destination", m.DestinationID).
		Bool("dryRun", dryRun).
		Msg("Relocating target")
	if dryRun {
		return nil
	}

	if err := m.Catalog.MoveTarget(ctx, target.ID, m.DestinationID); err != nil {
		return errors.Wrapf(err, errors.ErrTargetOp,
			"relocating target %s failed", target.DisplayName)
	}
	return nil
}
