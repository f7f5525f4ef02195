package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/types"
)

func TestSelectionCriteriaValidate(t *testing.T) {
	tests := []struct {
		name     string
		criteria types.SelectionCriteria
		wantCode errors.ErrorCode
	}{
		{
			name:     "explicit list only",
			criteria: types.SelectionCriteria{Targets: []string{"finance-prod"}},
		},
		{
			name:     "scan only",
			criteria: types.SelectionCriteria{Compartment: "team-dba", LifecycleStates: []types.LifecycleState{types.StateActive}},
		},
		{
			name:     "snapshot only",
			criteria: types.SelectionCriteria{SnapshotPath: "/tmp/selection.json"},
		},
		{
			name:     "empty criteria means default-scope scan",
			criteria: types.SelectionCriteria{},
		},
		{
			name:     "explicit list with compartment scope is allowed",
			criteria: types.SelectionCriteria{Targets: []string{"finance-prod"}, Compartment: "team-dba"},
		},
		{
			name:     "explicit plus snapshot conflicts",
			criteria: types.SelectionCriteria{Targets: []string{"a"}, SnapshotPath: "sel.json"},
			wantCode: errors.ErrValidation,
		},
		{
			name:     "explicit plus scan filter conflicts",
			criteria: types.SelectionCriteria{Targets: []string{"a"}, NameFilter: "prod"},
			wantCode: errors.ErrValidation,
		},
		{
			name:     "snapshot plus compartment conflicts",
			criteria: types.SelectionCriteria{SnapshotPath: "sel.json", Compartment: "team-dba"},
			wantCode: errors.ErrValidation,
		},
		{
			name:     "explicit list of separators only is empty",
			criteria: types.SelectionCriteria{Targets: []string{" , ", ","}},
			wantCode: errors.ErrEmptySelection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.IsErrorCode(err, tt.wantCode),
				"want code %s, got %v", tt.wantCode, err)
		})
	}
}

func TestSelectionCriteriaSource(t *testing.T) {
	assert.Equal(t, types.SourceExplicit, types.SelectionCriteria{Targets: []string{"a"}}.Source())
	assert.Equal(t, types.SourceSnapshot, types.SelectionCriteria{SnapshotPath: "s.json"}.Source())
	assert.Equal(t, types.SourceScan, types.SelectionCriteria{Compartment: "team-dba"}.Source())
	assert.Equal(t, types.SourceScan, types.SelectionCriteria{}.Source())
}

func TestTrimEntries(t *testing.T) {
	got := types.TrimEntries([]string{"a, b ", "", " c", "d,,e"})
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, got)
}

func TestParseLifecycleStates(t *testing.T) {
	states, bad, ok := types.ParseLifecycleStates([]string{"active", "Needs_Attention"})
	assert.True(t, ok)
	assert.Empty(t, bad)
	assert.Equal(t, []types.LifecycleState{types.StateActive, types.StateNeedsAttention}, states)

	_, bad, ok = types.ParseLifecycleStates([]string{"ACTIVE", "BROKEN"})
	assert.False(t, ok)
	assert.Equal(t, "BROKEN", bad)
}
