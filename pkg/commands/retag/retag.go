// Package retag implements the RetagTargets command: write the
// environment tag on each selected target, derived from the display name
// unless an explicit environment is given.
package retag

import (
	"context"

	"github.com/dsfleet/dsfleet/pkg/actions"
	"github.com/dsfleet/dsfleet/pkg/commands/internal"
)

// RetagTargetsOptions configures a retag run.
type RetagTargetsOptions struct {
	internal.RunOptions

	// Environment overrides derivation with one value for the whole
	// selection.
	Environment string

	// TagKey defaults to the fleet's Environment tag.
	TagKey string
}

// RetagTargets runs the retag action over the resolved selection.
func RetagTargets(ctx context.Context, deps internal.Deps, opts RetagTargetsOptions) (*internal.RunResult, error) {
	retagger := &actions.Retagger{
		Catalog:     deps.Catalog,
		Environment: opts.Environment,
		TagKey:      opts.TagKey,
	}
	return internal.Run(ctx, deps, retagger, opts.RunOptions)
}
