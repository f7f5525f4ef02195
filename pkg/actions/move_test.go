package actions_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsfleet/dsfleet/pkg/actions"
	"github.com/dsfleet/dsfleet/pkg/batch"
	"github.com/dsfleet/dsfleet/pkg/catalog/catalogtest"
	"github.com/dsfleet/dsfleet/pkg/compartments"
	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/selector"
	"github.com/dsfleet/dsfleet/pkg/types"
)

const (
	srcID  = "ocid1.compartment.oc1..src"
	destID = "ocid1.compartment.oc1..dest"
)

func tid(suffix string) string {
	return types.TargetIDPrefix + "oc1.." + suffix
}

func did(suffix string) string {
	return "ocid1.datasafedependent.oc1.." + suffix
}

// fixture: one target with three dependents across kinds, one with none.
func moveFixture() *catalogtest.Fake {
	cat := catalogtest.New()
	cat.AddTarget(types.Target{ID: tid("fin"), DisplayName: "finance-prod", LifecycleState: types.StateActive, CompartmentID: srcID})
	cat.AddTarget(types.Target{ID: tid("hr"), DisplayName: "hr-prod", LifecycleState: types.StateActive, CompartmentID: srcID})
	cat.AddDependent(types.DependencyResource{Kind: types.KindAuditTrail, ID: did("trail1"), DisplayName: "fin-trail", TargetID: tid("fin"), CompartmentID: srcID})
	cat.AddDependent(types.DependencyResource{Kind: types.KindSecurityAssessment, ID: did("sa1"), DisplayName: "fin-sa", TargetID: tid("fin"), CompartmentID: srcID})
	cat.AddDependent(types.DependencyResource{Kind: types.KindSecurityPolicy, ID: did("sp1"), DisplayName: "fin-sp", TargetID: tid("fin"), CompartmentID: srcID})
	return cat
}

func runMove(t *testing.T, cat *catalogtest.Fake, mover *actions.Mover, dryRun bool, targets ...types.ResolvedTarget) types.Summary {
	t.Helper()
	ec := types.NewExecutionContext("move", dryRun)
	require.NoError(t, ec.Transition(types.PhaseResolving))
	require.NoError(t, ec.SetResolved(targets))
	summary, err := (&batch.Executor{}).Run(context.Background(), ec, mover)
	require.NoError(t, err)
	return summary
}

func TestMoverIssuesNPlusOneRelocates(t *testing.T) {
	cat := moveFixture()
	mover := &actions.Mover{Catalog: cat, DestinationID: destID, IncludeDependents: true}

	summary := runMove(t, cat, mover, false,
		types.ResolvedTarget{ID: tid("fin"), DisplayName: "finance-prod"})

	assert.Equal(t, 1, summary.Succeeded)

	moves := cat.CallsMatching("move-")
	require.Len(t, moves, 4, "N dependents + 1 target")

	// All N dependent relocations complete before the target's own.
	assert.Equal(t, "move-target "+tid("fin")+"->"+destID, moves[len(moves)-1])
	for _, call := range moves[:3] {
		assert.True(t, strings.HasPrefix(call, "move-dependent"), call)
	}
}

func TestMoverPhasesDoNotInterleaveAcrossTargets(t *testing.T) {
	cat := moveFixture()
	cat.AddDependent(types.DependencyResource{Kind: types.KindAuditTrail, ID: did("trail2"), DisplayName: "hr-trail", TargetID: tid("hr"), CompartmentID: srcID})
	mover := &actions.Mover{Catalog: cat, DestinationID: destID, IncludeDependents: true}

	runMove(t, cat, mover, false,
		types.ResolvedTarget{ID: tid("fin"), DisplayName: "finance-prod"},
		types.ResolvedTarget{ID: tid("hr"), DisplayName: "hr-prod"})

	moves := cat.CallsMatching("move-")
	require.Len(t, moves, 6)
	// Every dependent move, for both targets, precedes every target move.
	assert.True(t, strings.HasPrefix(moves[0], "move-dependent"))
	assert.True(t, strings.HasPrefix(moves[3], "move-dependent"))
	assert.True(t, strings.HasPrefix(moves[4], "move-target"))
	assert.True(t, strings.HasPrefix(moves[5], "move-target"))
}

func TestMoverDryRunIssuesNoMutations(t *testing.T) {
	cat := moveFixture()
	mover := &actions.Mover{Catalog: cat, DestinationID: destID, IncludeDependents: true}

	summary := runMove(t, cat, mover, true,
		types.ResolvedTarget{ID: tid("fin"), DisplayName: "finance-prod"})

	assert.Equal(t, 1, summary.Succeeded)
	assert.Empty(t, cat.CallsMatching("move-"), "no relocate calls in dry-run")
	// Read-only lookups still happen, same as a real run.
	assert.NotEmpty(t, cat.CallsMatching("get-target"))
	assert.Len(t, cat.CallsMatching("list-dependents"), 3)
	// Nothing moved.
	assert.Equal(t, srcID, cat.Targets[tid("fin")].CompartmentID)
}

func TestMoverDryRunParityWithApply(t *testing.T) {
	target := types.ResolvedTarget{ID: tid("fin"), DisplayName: "finance-prod"}

	dryCat := moveFixture()
	drySummary := runMove(t, dryCat, &actions.Mover{Catalog: dryCat, DestinationID: destID, IncludeDependents: true}, true, target)

	wetCat := moveFixture()
	wetSummary := runMove(t, wetCat, &actions.Mover{Catalog: wetCat, DestinationID: destID, IncludeDependents: true}, false, target)

	assert.Equal(t, wetSummary.Total, drySummary.Total)
	assert.Equal(t, wetSummary.Succeeded, drySummary.Succeeded)
	assert.Equal(t, wetSummary.Failed, drySummary.Failed)
	assert.Equal(t, wetSummary.Skipped, drySummary.Skipped)
	// Identical read-only call ordering; the wet run only adds mutations.
	assert.Equal(t, dryCat.CallsMatching("get-target"), wetCat.CallsMatching("get-target"))
	assert.Equal(t, dryCat.CallsMatching("list-dependents"), wetCat.CallsMatching("list-dependents"))
}

func TestMoverTargetsOnly(t *testing.T) {
	cat := moveFixture()
	mover := &actions.Mover{Catalog: cat, DestinationID: destID, IncludeDependents: false}

	runMove(t, cat, mover, false,
		types.ResolvedTarget{ID: tid("fin"), DisplayName: "finance-prod"})

	moves := cat.CallsMatching("move-")
	require.Len(t, moves, 1)
	assert.True(t, strings.HasPrefix(moves[0], "move-target"))
	assert.Equal(t, srcID, cat.Dependents[did("trail1")].CompartmentID, "dependents left in place")
}

func TestMoverRerunAfterPartialFailureIsIdempotent(t *testing.T) {
	cat := moveFixture()
	cat.FailMove[did("sa1")] = fmt.Errorf("service unavailable")
	mover := &actions.Mover{Catalog: cat, DestinationID: destID, IncludeDependents: true}
	target := types.ResolvedTarget{ID: tid("fin"), DisplayName: "finance-prod"}

	first := runMove(t, cat, mover, false, target)
	assert.Equal(t, 1, first.Failed)
	// The trail and policy moved; the assessment did not; the target was
	// not relocated because its dependents phase failed.
	assert.Equal(t, destID, cat.Dependents[did("trail1")].CompartmentID)
	assert.Equal(t, srcID, cat.Dependents[did("sa1")].CompartmentID)
	assert.Equal(t, srcID, cat.Targets[tid("fin")].CompartmentID)

	// Second run: the failure is gone. Already-moved resources are no
	// longer found in the stale compartment, so only the assessment and
	// the target are relocated.
	delete(cat.FailMove, did("sa1"))
	cat.Calls = nil
	second := runMove(t, cat, mover, false, target)

	assert.Equal(t, 1, second.Succeeded)
	moves := cat.CallsMatching("move-")
	require.Len(t, moves, 2)
	assert.Contains(t, moves[0], did("sa1"))
	assert.True(t, strings.HasPrefix(moves[1], "move-target"))
	assert.Equal(t, destID, cat.Targets[tid("fin")].CompartmentID)
}

func TestMoverValidateSelectionRejectsSameCompartment(t *testing.T) {
	mover := &actions.Mover{DestinationID: srcID}
	err := mover.ValidateSelection(context.Background(), selector.Resolution{
		Scope: compartments.Compartment{ID: srcID, Name: "team-dba"},
	})
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
	assert.Contains(t, errors.Hint(err), "destination compartment")

	mover.DestinationID = destID
	assert.NoError(t, mover.ValidateSelection(context.Background(), selector.Resolution{
		Scope: compartments.Compartment{ID: srcID, Name: "team-dba"},
	}))
}

func TestMoverImpactPreview(t *testing.T) {
	mover := &actions.Mover{DestinationID: destID, DestinationDesc: "team-archive (" + destID + ")", IncludeDependents: true}
	preview := mover.ImpactPreview(selector.Resolution{
		Scope: compartments.Compartment{ID: srcID, Name: "team-dba"},
		Targets: []types.ResolvedTarget{
			{ID: tid("fin"), DisplayName: "finance-prod"},
			{ID: tid("hr"), DisplayName: "hr-prod"},
		},
	})

	assert.Contains(t, preview, "2 target(s)")
	assert.Contains(t, preview, "team-dba")
	assert.Contains(t, preview, "team-archive")
	assert.Contains(t, preview, "dependent resources included")
}
