package dsfleet

import (
	"github.com/spf13/cobra"

	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// selectionFlags are the selection knobs shared by every command that
// resolves targets. Criteria conflicts (explicit list vs scan filters vs
// snapshot) are rejected by the criteria validation, not here.
type selectionFlags struct {
	targets      []string
	compartment  string
	states       []string
	filter       string
	snapshotPath string
}

func addSelectionFlags(cmd *cobra.Command, f *selectionFlags, withSnapshot bool) {
	cmd.Flags().StringSliceVarP(&f.targets, "targets", "t", nil, MsgFlagTargets)
	cmd.Flags().StringVarP(&f.compartment, "compartment", "c", "", MsgFlagScope)
	cmd.Flags().StringSliceVar(&f.states, "state", nil, MsgFlagStates)
	cmd.Flags().StringVar(&f.filter, "filter", "", MsgFlagFilter)
	if withSnapshot {
		cmd.Flags().StringVar(&f.snapshotPath, "from-snapshot", "", MsgFlagSnapshot)
	}
}

// criteria builds the SelectionCriteria from the parsed flags.
func (f *selectionFlags) criteria() (types.SelectionCriteria, error) {
	states, bad, ok := types.ParseLifecycleStates(f.states)
	if !ok {
		return types.SelectionCriteria{}, errors.Newf(errors.ErrValidation,
			"unknown lifecycle state %q", bad).
			WithHint("known states: CREATING, UPDATING, ACTIVE, INACTIVE, DELETING, DELETED, NEEDS_ATTENTION, FAILED")
	}
	return types.SelectionCriteria{
		Targets:         f.targets,
		Compartment:     f.compartment,
		LifecycleStates: states,
		NameFilter:      f.filter,
		SnapshotPath:    f.snapshotPath,
	}, nil
}

// runFlags are the execution knobs shared by the mutating commands.
type runFlags struct {
	allowStale bool
	bestEffort bool
	onError    string
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().BoolVar(&f.allowStale, "allow-stale-selection", false, MsgFlagAllowStale)
	cmd.Flags().BoolVar(&f.bestEffort, "best-effort", false, MsgFlagBestEffort)
	cmd.Flags().StringVar(&f.onError, "on-error", "", MsgFlagOnError)
}

// policyOverride maps --on-error, or falls back to the configured
// per-operation override.
func (f *runFlags) policyOverride(configured types.FailurePolicy) (types.FailurePolicy, error) {
	switch f.onError {
	case "":
		return configured, nil
	case "continue":
		return types.ContinueOnError, nil
	case "stop":
		return types.StopOnError, nil
	default:
		return "", errors.Newf(errors.ErrValidation,
			"--on-error must be \"continue\" or \"stop\", got %q", f.onError)
	}
}
