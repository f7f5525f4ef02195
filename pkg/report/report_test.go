package report_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/report"
	"github.com/dsfleet/dsfleet/pkg/types"
)

func sampleSummary() types.Summary {
	var s types.Summary
	s.Record(types.OperationResult{
		Target: types.ResolvedTarget{ID: types.TargetIDPrefix + "oc1..a", DisplayName: "finance-prod"},
		Status: types.OutcomeSucceeded,
	})
	s.Record(types.OperationResult{
		Target: types.ResolvedTarget{ID: types.TargetIDPrefix + "oc1..b", DisplayName: "hr-prod"},
		Status: types.OutcomeFailed,
		Detail: "relocate failed",
	})
	return s
}

func TestParseFormat(t *testing.T) {
	for _, ok := range []string{"", "text", "JSON", "yaml"} {
		_, err := report.ParseFormat(ok)
		assert.NoError(t, err, ok)
	}
	_, err := report.ParseFormat("xml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf, sampleSummary()))

	var outcomes []report.Outcome
	require.NoError(t, json.Unmarshal(buf.Bytes(), &outcomes))
	require.Len(t, outcomes, 2)
	assert.Equal(t, "finance-prod", outcomes[0].DisplayName)
	assert.Equal(t, "succeeded", outcomes[0].Status)
	assert.Empty(t, outcomes[0].Detail)
	assert.Equal(t, "failed", outcomes[1].Status)
	assert.Equal(t, "relocate failed", outcomes[1].Detail)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteYAML(&buf, sampleSummary()))

	var outcomes []report.Outcome
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &outcomes))
	require.Len(t, outcomes, 2)
	assert.Equal(t, types.TargetIDPrefix+"oc1..b", outcomes[1].Identifier)
}

func TestWriteTextStatesFailureCount(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf, sampleSummary()))

	out := buf.String()
	assert.Contains(t, out, "2 total: 1 succeeded, 1 failed, 0 skipped")
	assert.Contains(t, out, "WARNING: 1 target(s) failed")
	assert.Contains(t, out, "relocate failed")
}

func TestWriteTextCancelled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf, types.Summary{Cancelled: true}))
	assert.Contains(t, buf.String(), "Run cancelled")
}
