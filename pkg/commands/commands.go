// Package commands provides the high-level command implementations for
// dsfleet.
//
// This package is the orchestration layer between the CLI and the
// selection/execution machinery. Each command lives in its own
// subdirectory:
//   - move/        - MoveTargets command
//   - refresh/     - RefreshTargets command
//   - retag/       - RetagTargets command
//   - auditstart/  - StartAudit command
//   - targets/     - ListTargets command
//   - snapshotcmd/ - CaptureSnapshot and ShowSnapshot commands
//   - internal/    - the shared resolve/confirm/execute/report pipeline
//
// This file re-exports the command functions and their option types so
// the CLI layer imports one package.
package commands

import (
	"context"

	"github.com/dsfleet/dsfleet/pkg/commands/auditstart"
	"github.com/dsfleet/dsfleet/pkg/commands/internal"
	"github.com/dsfleet/dsfleet/pkg/commands/move"
	"github.com/dsfleet/dsfleet/pkg/commands/refresh"
	"github.com/dsfleet/dsfleet/pkg/commands/retag"
	"github.com/dsfleet/dsfleet/pkg/commands/snapshotcmd"
	"github.com/dsfleet/dsfleet/pkg/commands/targets"
)

// Deps carries the wired collaborators into every command.
type Deps = internal.Deps

// RunOptions are the per-invocation knobs shared by the mutating commands.
type RunOptions = internal.RunOptions

// RunResult is what the CLI layer turns into an exit status.
type RunResult = internal.RunResult

// MoveTargets relocates targets and their dependents to a destination
// compartment.
type MoveTargetsOptions = move.MoveTargetsOptions

func MoveTargets(ctx context.Context, deps Deps, opts MoveTargetsOptions) (*RunResult, error) {
	return move.MoveTargets(ctx, deps, opts)
}

// RefreshTargets re-syncs each target's registered metadata.
type RefreshTargetsOptions = refresh.RefreshTargetsOptions

func RefreshTargets(ctx context.Context, deps Deps, opts RefreshTargetsOptions) (*RunResult, error) {
	return refresh.RefreshTargets(ctx, deps, opts)
}

// RetagTargets writes the environment tag on each target.
type RetagTargetsOptions = retag.RetagTargetsOptions

func RetagTargets(ctx context.Context, deps Deps, opts RetagTargetsOptions) (*RunResult, error) {
	return retag.RetagTargets(ctx, deps, opts)
}

// StartAudit begins audit collection on each target's trails.
type StartAuditOptions = auditstart.StartAuditOptions

func StartAudit(ctx context.Context, deps Deps, opts StartAuditOptions) (*RunResult, error) {
	return auditstart.StartAudit(ctx, deps, opts)
}

// ListTargets prints a read-only compartment scan.
type ListTargetsOptions = targets.ListTargetsOptions

func ListTargets(ctx context.Context, deps Deps, opts ListTargetsOptions) error {
	return targets.ListTargets(ctx, deps, opts)
}

// CaptureSnapshot persists a compartment scan for later replay.
type CaptureSnapshotOptions = snapshotcmd.CaptureSnapshotOptions

func CaptureSnapshot(ctx context.Context, deps Deps, opts CaptureSnapshotOptions) error {
	return snapshotcmd.CaptureSnapshot(ctx, deps, opts)
}

// ShowSnapshot prints a snapshot's contents and age.
type ShowSnapshotOptions = snapshotcmd.ShowSnapshotOptions

func ShowSnapshot(ctx context.Context, deps Deps, opts ShowSnapshotOptions) error {
	return snapshotcmd.ShowSnapshot(ctx, deps, opts)
}
