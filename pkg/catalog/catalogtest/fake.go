// Package catalogtest provides an in-memory Catalog for tests. It records
// every call in order so tests can assert call cardinality and phase
// ordering, and it applies moves to its own store so idempotency
// scenarios behave like the live service.
package catalogtest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dsfleet/dsfleet/pkg/catalog"
	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// Fake is an in-memory Catalog.
type Fake struct {
	Targets    map[string]*types.Target
	Dependents map[string]*types.DependencyResource

	// FailMove maps resource identifiers (targets or dependents) to the
	// error their relocate call should return.
	FailMove map[string]error

	// FailRefresh maps target identifiers to refresh errors.
	FailRefresh map[string]error

	// StartedTrails records trails whose audit collection already runs;
	// starting one again returns ErrAlreadyStarted.
	StartedTrails map[string]bool

	// Subtree maps a parent compartment to its descendant compartments so
	// subtree scans can be exercised without a real hierarchy.
	Subtree map[string][]string

	// Calls records every invocation as "op id[->dest]" in order.
	Calls []string

	// order preserves deterministic listing order by insertion.
	targetOrder    []string
	dependentOrder []string
}

// New returns an empty fake.
func New() *Fake {
	return &Fake{
		Targets:       make(map[string]*types.Target),
		Dependents:    make(map[string]*types.DependencyResource),
		FailMove:      make(map[string]error),
		FailRefresh:   make(map[string]error),
		StartedTrails: make(map[string]bool),
		Subtree:       make(map[string][]string),
	}
}

// AddTarget registers a target.
func (f *Fake) AddTarget(t types.Target) {
	copied := t
	f.Targets[t.ID] = &copied
	f.targetOrder = append(f.targetOrder, t.ID)
}

// AddDependent registers a dependent resource.
func (f *Fake) AddDependent(d types.DependencyResource) {
	copied := d
	f.Dependents[d.ID] = &copied
	f.dependentOrder = append(f.dependentOrder, d.ID)
}

func (f *Fake) record(format string, args ...interface{}) {
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

// CallsMatching returns the recorded calls whose operation name matches
// the given prefix, preserving order.
func (f *Fake) CallsMatching(prefix string) []string {
	var out []string
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// ListTargets implements catalog.Catalog.
func (f *Fake) ListTargets(_ context.Context, compartmentID string, states []types.LifecycleState, subtree bool) ([]types.Target, error) {
	f.record("list-targets %s subtree=%v", compartmentID, subtree)
	var out []types.Target
	for _, id := range f.targetOrder {
		t := f.Targets[id]
		if !f.inScope(t.CompartmentID, compartmentID, subtree) {
			continue
		}
		if !matchesState(t.LifecycleState, states) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *Fake) inScope(resourceCompartment, scope string, subtree bool) bool {
	if resourceCompartment == scope {
		return true
	}
	if !subtree {
		return false
	}
	for _, child := range f.Subtree[scope] {
		if resourceCompartment == child {
			return true
		}
	}
	return false
}

func matchesState(state types.LifecycleState, states []types.LifecycleState) bool {
	if len(states) == 0 {
		return true
	}
	for _, s := range states {
		if state == s {
			return true
		}
	}
	return false
}

// GetTarget implements catalog.Catalog.
func (f *Fake) GetTarget(_ context.Context, id string) (types.Target, error) {
	f.record("get-target %s", id)
	t, ok := f.Targets[id]
	if !ok {
		return types.Target{}, errors.Newf(errors.ErrNotFound, "target %s not found", id)
	}
	return *t, nil
}

// MoveTarget implements catalog.Catalog.
func (f *Fake) MoveTarget(_ context.Context, id, destCompartmentID string) error {
	f.record("move-target %s->%s", id, destCompartmentID)
	if err := f.FailMove[id]; err != nil {
		return err
	}
	t, ok := f.Targets[id]
	if !ok {
		return errors.Newf(errors.ErrNotFound, "target %s not found", id)
	}
	t.CompartmentID = destCompartmentID
	return nil
}

// RefreshTarget implements catalog.Catalog.
func (f *Fake) RefreshTarget(_ context.Context, id string) error {
	f.record("refresh-target %s", id)
	if err := f.FailRefresh[id]; err != nil {
		return err
	}
	if _, ok := f.Targets[id]; !ok {
		return errors.Newf(errors.ErrNotFound, "target %s not found", id)
	}
	return nil
}

// UpdateTargetTags implements catalog.Catalog.
func (f *Fake) UpdateTargetTags(_ context.Context, id string, freeformTags map[string]string) error {
	keys := make([]string, 0, len(freeformTags))
	for k := range freeformTags {
		keys = append(keys, k)
	}
	f.record("update-tags %s %v", id, keys)
	if _, ok := f.Targets[id]; !ok {
		return errors.Newf(errors.ErrNotFound, "target %s not found", id)
	}
	return nil
}

// ListDependents implements catalog.Catalog.
func (f *Fake) ListDependents(_ context.Context, kind types.DependencyKind, compartmentID, targetID string) ([]types.DependencyResource, error) {
	f.record("list-dependents %s %s in %s", kind, targetID, compartmentID)
	var out []types.DependencyResource
	for _, id := range f.dependentOrder {
		d := f.Dependents[id]
		if d.Kind != kind || d.TargetID != targetID || d.CompartmentID != compartmentID {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

// MoveDependent implements catalog.Catalog.
func (f *Fake) MoveDependent(_ context.Context, kind types.DependencyKind, id, destCompartmentID string) error {
	f.record("move-dependent %s %s->%s", kind, id, destCompartmentID)
	if err := f.FailMove[id]; err != nil {
		return err
	}
	d, ok := f.Dependents[id]
	if !ok {
		return errors.Newf(errors.ErrNotFound, "%s %s not found", kind, id)
	}
	d.CompartmentID = destCompartmentID
	return nil
}

// StartAuditTrail implements catalog.Catalog.
func (f *Fake) StartAuditTrail(_ context.Context, trailID string, startTime time.Time) error {
	f.record("start-trail %s from %s", trailID, startTime.UTC().Format(time.RFC3339))
	if f.StartedTrails[trailID] {
		return catalog.ErrAlreadyStarted
	}
	f.StartedTrails[trailID] = true
	return nil
}
