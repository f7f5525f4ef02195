package actions_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsfleet/dsfleet/pkg/actions"
	"github.com/dsfleet/dsfleet/pkg/batch"
	"github.com/dsfleet/dsfleet/pkg/catalog/catalogtest"
	"github.com/dsfleet/dsfleet/pkg/types"
)

func runAction(t *testing.T, action batch.Action, dryRun bool, targets ...types.ResolvedTarget) types.Summary {
	t.Helper()
	ec := types.NewExecutionContext(action.Name(), dryRun)
	require.NoError(t, ec.Transition(types.PhaseResolving))
	require.NoError(t, ec.SetResolved(targets))
	summary, err := (&batch.Executor{}).Run(context.Background(), ec, action)
	require.NoError(t, err)
	return summary
}

func TestRefresherHappyAndFailing(t *testing.T) {
	cat := catalogtest.New()
	cat.AddTarget(types.Target{ID: tid("a"), DisplayName: "a-prod", CompartmentID: srcID})
	cat.AddTarget(types.Target{ID: tid("b"), DisplayName: "b-prod", CompartmentID: srcID})
	cat.FailRefresh[tid("b")] = fmt.Errorf("listener unreachable")

	summary := runAction(t, &actions.Refresher{Catalog: cat}, false,
		types.ResolvedTarget{ID: tid("a"), DisplayName: "a-prod"},
		types.ResolvedTarget{ID: tid("b"), DisplayName: "b-prod"})

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, summary.Results[1].Detail, "listener unreachable")
	assert.Len(t, cat.CallsMatching("refresh-target"), 2)
}

func TestRefresherDryRun(t *testing.T) {
	cat := catalogtest.New()
	cat.AddTarget(types.Target{ID: tid("a"), DisplayName: "a-prod", CompartmentID: srcID})

	summary := runAction(t, &actions.Refresher{Catalog: cat}, true,
		types.ResolvedTarget{ID: tid("a"), DisplayName: "a-prod"})

	assert.Equal(t, 1, summary.Succeeded)
	assert.Empty(t, cat.Calls)
}

func TestDeriveEnvironment(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "finance-prod", want: "PROD"},
		{name: "billing-dev", want: "DEV"},
		{name: "hr-db-staging", want: "STAGING"},
		{name: "warehouse", want: "WAREHOUSE"},
		{name: "trailing-", want: "TRAILING-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, actions.DeriveEnvironment(tt.name), tt.name)
	}
}

func TestRetaggerDerivedAndExplicit(t *testing.T) {
	cat := catalogtest.New()
	cat.AddTarget(types.Target{ID: tid("a"), DisplayName: "finance-prod", CompartmentID: srcID})

	summary := runAction(t, &actions.Retagger{Catalog: cat}, false,
		types.ResolvedTarget{ID: tid("a"), DisplayName: "finance-prod"})
	assert.Equal(t, 1, summary.Succeeded)
	require.Len(t, cat.CallsMatching("update-tags"), 1)
	assert.Contains(t, cat.Calls[0], "Environment")

	cat.Calls = nil
	summary = runAction(t, &actions.Retagger{Catalog: cat, Environment: "SANDBOX", TagKey: "env"}, false,
		types.ResolvedTarget{ID: tid("a"), DisplayName: "finance-prod"})
	assert.Equal(t, 1, summary.Succeeded)
	assert.Contains(t, cat.Calls[0], "env")
}

func TestRetaggerDryRun(t *testing.T) {
	cat := catalogtest.New()
	cat.AddTarget(types.Target{ID: tid("a"), DisplayName: "finance-prod", CompartmentID: srcID})

	runAction(t, &actions.Retagger{Catalog: cat}, true,
		types.ResolvedTarget{ID: tid("a"), DisplayName: "finance-prod"})
	assert.Empty(t, cat.Calls)
}

func TestAuditStarterStartsAllTrails(t *testing.T) {
	cat := catalogtest.New()
	cat.AddTarget(types.Target{ID: tid("a"), DisplayName: "finance-prod", CompartmentID: srcID})
	cat.AddDependent(types.DependencyResource{Kind: types.KindAuditTrail, ID: did("t1"), DisplayName: "unified", TargetID: tid("a"), CompartmentID: srcID})
	cat.AddDependent(types.DependencyResource{Kind: types.KindAuditTrail, ID: did("t2"), DisplayName: "fga", TargetID: tid("a"), CompartmentID: srcID})

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	summary := runAction(t, &actions.AuditStarter{Catalog: cat, StartTime: start}, false,
		types.ResolvedTarget{ID: tid("a"), DisplayName: "finance-prod"})

	assert.Equal(t, 1, summary.Succeeded)
	assert.Len(t, cat.CallsMatching("start-trail"), 2)
	assert.True(t, cat.StartedTrails[did("t1")])
	assert.True(t, cat.StartedTrails[did("t2")])
}

func TestAuditStarterAlreadyRunningIsSkip(t *testing.T) {
	cat := catalogtest.New()
	cat.AddTarget(types.Target{ID: tid("a"), DisplayName: "finance-prod", CompartmentID: srcID})
	cat.AddDependent(types.DependencyResource{Kind: types.KindAuditTrail, ID: did("t1"), DisplayName: "unified", TargetID: tid("a"), CompartmentID: srcID})
	cat.StartedTrails[did("t1")] = true

	summary := runAction(t, &actions.AuditStarter{Catalog: cat, StartTime: time.Now()}, false,
		types.ResolvedTarget{ID: tid("a"), DisplayName: "finance-prod"})

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Contains(t, summary.Results[0].Detail, "already running")
}

func TestAuditStarterNoTrailsIsSkip(t *testing.T) {
	cat := catalogtest.New()
	cat.AddTarget(types.Target{ID: tid("a"), DisplayName: "finance-prod", CompartmentID: srcID})

	summary := runAction(t, &actions.AuditStarter{Catalog: cat, StartTime: time.Now()}, false,
		types.ResolvedTarget{ID: tid("a"), DisplayName: "finance-prod"})

	assert.Equal(t, 1, summary.Skipped)
	assert.Contains(t, summary.Results[0].Detail, "no audit trails")
}

func TestAuditStarterDryRunListsButDoesNotStart(t *testing.T) {
	cat := catalogtest.New()
	cat.AddTarget(types.Target{ID: tid("a"), DisplayName: "finance-prod", CompartmentID: srcID})
	cat.AddDependent(types.DependencyResource{Kind: types.KindAuditTrail, ID: did("t1"), DisplayName: "unified", TargetID: tid("a"), CompartmentID: srcID})

	summary := runAction(t, &actions.AuditStarter{Catalog: cat, StartTime: time.Now()}, true,
		types.ResolvedTarget{ID: tid("a"), DisplayName: "finance-prod"})

	assert.Equal(t, 1, summary.Succeeded)
	assert.NotEmpty(t, cat.CallsMatching("list-dependents"))
	assert.Empty(t, cat.CallsMatching("start-trail"))
	assert.False(t, cat.StartedTrails[did("t1")])
}

func TestDeclaredPolicies(t *testing.T) {
	assert.Equal(t, types.ContinueOnError, (&actions.Mover{}).FailurePolicy())
	assert.Equal(t, types.ContinueOnError, (&actions.Refresher{}).FailurePolicy())
	assert.Equal(t, types.ContinueOnError, (&actions.Retagger{}).FailurePolicy())
	assert.Equal(t, types.StopOnError, (&actions.AuditStarter{}).FailurePolicy())
}
