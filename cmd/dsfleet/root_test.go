package dsfleet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersAllCommands(t *testing.T) {
	exitCode := 0
	rootCmd := NewRootCmd(&exitCode)

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{
		"move", "refresh", "retag", "audit-start",
		"targets", "snapshot", "config", "guide",
		"version", "completion", "man",
	} {
		assert.True(t, names[want], "command %q not registered", want)
	}
}

func TestRootWithoutSubcommandFails(t *testing.T) {
	exitCode := 0
	rootCmd := NewRootCmd(&exitCode)
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{})

	err := rootCmd.Execute()
	require.Error(t, err)
}

func TestMoveRequiresDestination(t *testing.T) {
	exitCode := 0
	rootCmd := NewRootCmd(&exitCode)
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"move", "-t", "finance-prod"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination")
}

func TestSelectionFlagsBuildCriteria(t *testing.T) {
	f := &selectionFlags{
		targets:     []string{"finance-prod", "hr-prod"},
		compartment: "team-dba",
		states:      []string{"active", "needs_attention"},
	}
	criteria, err := f.criteria()
	require.NoError(t, err)
	assert.Len(t, criteria.LifecycleStates, 2)
	assert.Equal(t, "team-dba", criteria.Compartment)
}

func TestSelectionFlagsRejectUnknownState(t *testing.T) {
	f := &selectionFlags{states: []string{"hibernating"}}
	_, err := f.criteria()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hibernating")
}

func TestRunFlagsPolicyOverride(t *testing.T) {
	f := &runFlags{onError: "stop"}
	policy, err := f.policyOverride("")
	require.NoError(t, err)
	assert.Equal(t, "stop", string(policy))

	f = &runFlags{}
	policy, err = f.policyOverride("continue")
	require.NoError(t, err)
	assert.Equal(t, "continue", string(policy))

	f = &runFlags{onError: "explode"}
	_, err = f.policyOverride("")
	require.Error(t, err)
}
