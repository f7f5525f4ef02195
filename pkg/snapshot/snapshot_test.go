package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/snapshot"
	"github.com/dsfleet/dsfleet/pkg/types"
)

func sampleTargets() []types.Target {
	return []types.Target{
		{ID: "ocid1.datasafetargetdatabase.oc1..a", DisplayName: "finance-prod", LifecycleState: types.StateActive, CompartmentID: "ocid1.compartment.oc1..dba"},
		{ID: "ocid1.datasafetargetdatabase.oc1..b", DisplayName: "hr-prod", LifecycleState: types.StateNeedsAttention, CompartmentID: "ocid1.compartment.oc1..dba"},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "selection.json")
	captured := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	snap := snapshot.Capture(sampleTargets(), captured)
	require.NoError(t, snapshot.Write(path, snap))

	got, err := snapshot.Read(path)
	require.NoError(t, err)
	assert.True(t, got.CapturedAt.Equal(captured))
	require.Len(t, got.Targets, 2)
	assert.Equal(t, "finance-prod", got.Targets[0].DisplayName)

	resolved := got.Resolved()
	require.Len(t, resolved, 2)
	assert.Equal(t, "ocid1.datasafetargetdatabase.oc1..a", resolved[0].ID)
	assert.Equal(t, "hr-prod", resolved[1].DisplayName)
}

func TestWriteLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selection.json")
	require.NoError(t, snapshot.Write(path, snapshot.Capture(sampleTargets(), time.Now())))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "selection.json", entries[0].Name())
}

func TestReadMissingFile(t *testing.T) {
	_, err := snapshot.Read(filepath.Join(t.TempDir(), "absent.json"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrSnapshotRead))
	assert.Contains(t, errors.Hint(err), "snapshot capture")
}

func TestReadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := snapshot.Read(path)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSnapshotRead))
}

func TestParseMaxAge(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "900", want: 900 * time.Second},
		{in: "30s", want: 30 * time.Second},
		{in: "15m", want: 15 * time.Minute},
		{in: "12h", want: 12 * time.Hour},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "disable", want: snapshot.MaxAgeDisabled},
		{in: "DISABLE", want: snapshot.MaxAgeDisabled},
		{in: "", want: snapshot.DefaultMaxAge},
		{in: "soon", wantErr: true},
		{in: "-5m", wantErr: true},
		{in: "5w", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := snapshot.ParseMaxAge(tt.in)
			if tt.wantErr {
				assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatorCheck(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	fresh := snapshot.Snapshot{CapturedAt: now.Add(-time.Hour)}
	stale := snapshot.Snapshot{CapturedAt: now.Add(-48 * time.Hour)}
	unstamped := snapshot.Snapshot{}

	v := snapshot.Validator{MaxAge: 24 * time.Hour, Now: func() time.Time { return now }}

	assert.NoError(t, v.Check(fresh, false, false))
	assert.NoError(t, v.Check(stale, true, false), "dry-run always passes")
	assert.NoError(t, v.Check(stale, false, true), "explicit override passes")

	err := v.Check(stale, false, false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSnapshotStale))
	assert.Contains(t, errors.Hint(err), "--allow-stale-selection")

	err = v.Check(unstamped, false, false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSnapshotStale), "fails closed without a timestamp")

	disabled := snapshot.Validator{MaxAge: snapshot.MaxAgeDisabled, Now: func() time.Time { return now }}
	assert.NoError(t, disabled.Check(stale, false, false))
}
