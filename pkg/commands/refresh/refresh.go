// Package refresh implements the RefreshTargets command: re-sync each
// selected target's registered metadata from the live database.
package refresh

import (
	"context"

	"github.com/dsfleet/dsfleet/pkg/actions"
	"github.com/dsfleet/dsfleet/pkg/commands/internal"
)

// RefreshTargetsOptions configures a refresh run.
type RefreshTargetsOptions struct {
	internal.RunOptions
}

// RefreshTargets runs the refresh action over the resolved selection.
func RefreshTargets(ctx context.Context, deps internal.Deps, opts RefreshTargetsOptions) (*internal.RunResult, error) {
	return internal.Run(ctx, deps, &actions.Refresher{Catalog: deps.Catalog}, opts.RunOptions)
}
