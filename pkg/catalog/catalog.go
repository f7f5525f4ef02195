// Package catalog defines the contract with the cloud security service's
// target and dependency inventory. The subsystem consumes this interface;
// the production implementation lives in catalog/oci and tests use the
// in-memory fake in catalog/catalogtest.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/dsfleet/dsfleet/pkg/types"
)

// ErrAlreadyStarted is returned by StartAuditTrail when collection is
// already running on the trail. Callers treat it as a skip, not a failure.
var ErrAlreadyStarted = errors.New("audit collection already started")

// Catalog is the Target/Dependency Catalog API. Every call is blocking;
// retry and timeout behavior belong to the implementation, not to callers.
type Catalog interface {
	// ListTargets lists targets in a compartment, optionally including its
	// sub-tree, filtered by lifecycle states with OR semantics. An empty
	// state set means no lifecycle filtering.
	ListTargets(ctx context.Context, compartmentID string, states []types.LifecycleState, subtree bool) ([]types.Target, error)

	// GetTarget fetches one target by identifier.
	GetTarget(ctx context.Context, id string) (types.Target, error)

	// MoveTarget relocates the target itself to the destination compartment.
	MoveTarget(ctx context.Context, id, destCompartmentID string) error

	// RefreshTarget re-reads the target's connection metadata from the
	// database it registers.
	RefreshTarget(ctx context.Context, id string) error

	// UpdateTargetTags merges the given freeform tags onto the target.
	UpdateTargetTags(ctx context.Context, id string, freeformTags map[string]string) error

	// ListDependents enumerates one dependency kind owned by targetID in
	// the given compartment. Enumeration is always live; results are never
	// cached between calls.
	ListDependents(ctx context.Context, kind types.DependencyKind, compartmentID, targetID string) ([]types.DependencyResource, error)

	// MoveDependent relocates a single dependent resource by identifier.
	MoveDependent(ctx context.Context, kind types.DependencyKind, id, destCompartmentID string) error

	// StartAuditTrail starts audit collection on a trail from the given
	// point in time.
	StartAuditTrail(ctx context.Context, trailID string, startTime time.Time) error
}
