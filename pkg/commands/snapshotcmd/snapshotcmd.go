// Package snapshotcmd implements the snapshot subcommands: capture a
// compartment scan to a file for later replay, and show a snapshot's
// contents and age.
package snapshotcmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dsfleet/dsfleet/pkg/commands/internal"
	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/logging"
	"github.com/dsfleet/dsfleet/pkg/selector"
	"github.com/dsfleet/dsfleet/pkg/snapshot"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// CaptureSnapshotOptions configures a capture.
type CaptureSnapshotOptions struct {
	Criteria types.SelectionCriteria

	// Path is the snapshot file to write.
	Path string
}

// CaptureSnapshot scans the scope and persists the result atomically.
func CaptureSnapshot(ctx context.Context, deps internal.Deps, opts CaptureSnapshotOptions) error {
	log := logging.GetLogger("commands.snapshot")

	if opts.Path == "" {
		return errors.New(errors.ErrValidation, "a snapshot path is required").
			WithHint("pass the file to write as an argument")
	}

	sel := selector.New(deps.Catalog, deps.Compartments, deps.Validator)
	matched, scope, err := sel.Scan(ctx, opts.Criteria)
	if err != nil {
		return err
	}

	snap := snapshot.Capture(matched, time.Now().UTC())
	if err := snapshot.Write(opts.Path, snap); err != nil {
		return err
	}

	log.Info().Int("targets", len(matched)).Str("path", opts.Path).Msg("Snapshot captured")
	_, err = fmt.Fprintf(deps.Out, "Captured %d target(s) from %s to %s\n",
		len(matched), scope.Name, opts.Path)
	return err
}

// ShowSnapshotOptions configures a show.
type ShowSnapshotOptions struct {
	Path string
}

// ShowSnapshot prints a snapshot's capture time, age and targets.
func ShowSnapshot(_ context.Context, deps internal.Deps, opts ShowSnapshotOptions) error {
	snap, err := snapshot.Read(opts.Path)
	if err != nil {
		return err
	}

	age := snap.Age(time.Now().UTC()).Round(time.Second)
	if _, err := fmt.Fprintf(deps.Out, "Captured: %s (%s ago)\n",
		snap.CapturedAt.Format(time.RFC3339), age); err != nil {
		return err
	}
	for _, d := range snap.Targets {
		line := fmt.Sprintf("  %s (%s)", d.DisplayName, d.Identifier)
		if d.LifecycleState != "" {
			line += " " + string(d.LifecycleState)
		}
		if _, err := fmt.Fprintln(deps.Out, line); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(deps.Out, "%d target(s)\n", len(snap.Targets))
	return err
}
