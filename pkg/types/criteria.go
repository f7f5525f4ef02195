package types

import (
	"strings"

	"github.com/dsfleet/dsfleet/pkg/errors"
)

// SelectionSource identifies which of the mutually exclusive selection
// paths a SelectionCriteria uses.
type SelectionSource string

const (
	SourceExplicit SelectionSource = "explicit"
	SourceScan     SelectionSource = "scan"
	SourceSnapshot SelectionSource = "snapshot"
)

// SelectionCriteria captures the operator's target selection. Exactly one
// source must be populated: an explicit list of names/identifiers, a
// compartment scan with filters, or a snapshot file for replay.
type SelectionCriteria struct {
	// Explicit entries: identifiers (recognized by OCID shape) or display
	// names resolved within the compartment scope.
	Targets []string

	// Compartment is the scope: the scan root for compartment scans, and
	// the resolution scope for display names in an explicit list. A name
	// or OCID; empty means the configured default root.
	Compartment string

	// Scan filters: lifecycle-state set (OR semantics) and an optional
	// name-filter pattern matched against display names.
	LifecycleStates []LifecycleState
	NameFilter      string

	// Snapshot replay.
	SnapshotPath string
}

// Source returns the selection path the criteria uses. Call Validate
// first; Source on invalid criteria returns the first populated path.
func (c SelectionCriteria) Source() SelectionSource {
	switch {
	case len(c.Targets) > 0:
		return SourceExplicit
	case c.SnapshotPath != "":
		return SourceSnapshot
	default:
		return SourceScan
	}
}

// Validate enforces source exclusivity and per-source well-formedness.
// It runs before any external call.
func (c SelectionCriteria) Validate() error {
	// The compartment doubles as the name-resolution scope for explicit
	// lists, so it conflicts with nothing; scan filters and the snapshot
	// path do.
	scanFilters := len(c.LifecycleStates) > 0 || c.NameFilter != ""
	conflict := (len(c.Targets) > 0 && c.SnapshotPath != "") ||
		(len(c.Targets) > 0 && scanFilters) ||
		(c.SnapshotPath != "" && (c.Compartment != "" || scanFilters))
	if conflict {
		return errors.New(errors.ErrValidation,
			"conflicting selection sources").
			WithHint("supply exactly one of --targets, --compartment/--lifecycle-state/--name-filter, or --from-snapshot")
	}

	if len(c.Targets) > 0 && len(TrimEntries(c.Targets)) == 0 {
		return errors.New(errors.ErrEmptySelection,
			"explicit target list is empty").
			WithHint("pass at least one target name or OCID to --targets")
	}

	return nil
}

// TrimEntries splits comma-joined entries, trims whitespace and drops
// empties, preserving order. Operators routinely paste "a, b ,c".
func TrimEntries(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
