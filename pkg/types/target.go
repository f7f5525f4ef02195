package types

import "strings"

// LifecycleState is a target's provisioning/operational status tag,
// used as a filter dimension in compartment scans.
type LifecycleState string

const (
	StateCreating       LifecycleState = "CREATING"
	StateUpdating       LifecycleState = "UPDATING"
	StateActive         LifecycleState = "ACTIVE"
	StateInactive       LifecycleState = "INACTIVE"
	StateDeleting       LifecycleState = "DELETING"
	StateDeleted        LifecycleState = "DELETED"
	StateNeedsAttention LifecycleState = "NEEDS_ATTENTION"
	StateFailed         LifecycleState = "FAILED"
)

// AllLifecycleStates lists every state the service reports, in the order
// the service documents them.
var AllLifecycleStates = []LifecycleState{
	StateCreating,
	StateUpdating,
	StateActive,
	StateInactive,
	StateDeleting,
	StateDeleted,
	StateNeedsAttention,
	StateFailed,
}

// ParseLifecycleStates converts operator-supplied state names into
// LifecycleState values. Names are case-insensitive; unknown names return
// ok=false along with the offending name.
func ParseLifecycleStates(names []string) ([]LifecycleState, string, bool) {
	states := make([]LifecycleState, 0, len(names))
	for _, name := range names {
		candidate := LifecycleState(strings.ToUpper(strings.TrimSpace(name)))
		if candidate == "" {
			continue
		}
		known := false
		for _, s := range AllLifecycleStates {
			if candidate == s {
				known = true
				break
			}
		}
		if !known {
			return nil, string(candidate), false
		}
		states = append(states, candidate)
	}
	return states, "", true
}

// OCID structural prefixes. Identifiers are opaque but format-recognizable:
// anything carrying the target prefix is treated as an identifier rather
// than a display name during explicit-list resolution.
const (
	TargetIDPrefix      = "ocid1.datasafetargetdatabase."
	CompartmentIDPrefix = "ocid1.compartment."
	TenancyIDPrefix     = "ocid1.tenancy."
)

// IsTargetID reports whether s is structurally a target identifier.
func IsTargetID(s string) bool {
	return strings.HasPrefix(s, TargetIDPrefix)
}

// IsCompartmentID reports whether s is structurally a compartment or
// tenancy identifier. The tenancy root is a valid compartment scope.
func IsCompartmentID(s string) bool {
	return strings.HasPrefix(s, CompartmentIDPrefix) || strings.HasPrefix(s, TenancyIDPrefix)
}

// Target is a registered database connection tracked by the security
// service. Targets are created and destroyed externally; this subsystem
// only reads them and, for the move operation, updates their compartment
// reference.
type Target struct {
	ID             string
	DisplayName    string
	LifecycleState LifecycleState
	CompartmentID  string
}

// ResolvedTarget is one entry of a resolved selection: the identifier the
// batch executor addresses plus the display name used for log lines.
type ResolvedTarget struct {
	ID          string
	DisplayName string
}

// DedupeResolved removes identifier-level duplicates while preserving the
// first occurrence's position.
func DedupeResolved(targets []ResolvedTarget) []ResolvedTarget {
	seen := make(map[string]struct{}, len(targets))
	out := targets[:0]
	for _, t := range targets {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
