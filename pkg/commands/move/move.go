// Package move implements the MoveTargets command: relocate selected
// targets, and by default their dependent resources, to a destination
// compartment in two non-interleaving phases.
package move

import (
	"context"

	"github.com/dsfleet/dsfleet/pkg/actions"
	"github.com/dsfleet/dsfleet/pkg/commands/internal"
	"github.com/dsfleet/dsfleet/pkg/errors"
)

// MoveTargetsOptions configures a move run.
type MoveTargetsOptions struct {
	internal.RunOptions

	// Destination is the destination compartment, by name or OCID.
	Destination string

	// TargetsOnly leaves audit trails, security assessments and security
	// policies where they are.
	TargetsOnly bool
}

// MoveTargets resolves the destination, then hands the move action to the
// shared pipeline.
func MoveTargets(ctx context.Context, deps internal.Deps, opts MoveTargetsOptions) (*internal.RunResult, error) {
	if opts.Destination == "" {
		return nil, errors.New(errors.ErrValidation, "a destination compartment is required").
			WithHint("pass --destination with a compartment name or OCID")
	}

	dest, err := deps.Compartments.Resolve(ctx, opts.Destination)
	if err != nil {
		return nil, err
	}

	mover := &actions.Mover{
		Catalog:           deps.Catalog,
		DestinationID:     dest.ID,
		DestinationDesc:   dest.Name + " (" + dest.ID + ")",
		IncludeDependents: !opts.TargetsOnly,
	}

	return internal.Run(ctx, deps, mover, opts.RunOptions)
}
