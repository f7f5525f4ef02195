// Package snapshot persists and replays target selections. A snapshot is
// a single JSON object holding a capture timestamp and the captured
// target descriptors, read and written atomically as a whole.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// Descriptor is one captured target.
type Descriptor struct {
	Identifier     string               `json:"identifier"`
	DisplayName    string               `json:"display_name"`
	LifecycleState types.LifecycleState `json:"lifecycle_state,omitempty"`
	CompartmentID  string               `json:"compartment_id,omitempty"`
}

// Snapshot is the persisted selection.
type Snapshot struct {
	CapturedAt time.Time    `json:"captured_at"`
	Targets    []Descriptor `json:"targets"`
}

// Capture builds a snapshot of the given targets stamped with now.
func Capture(targets []types.Target, now time.Time) Snapshot {
	descriptors := make([]Descriptor, len(targets))
	for i, t := range targets {
		descriptors[i] = Descriptor{
			Identifier:     t.ID,
			DisplayName:    t.DisplayName,
			LifecycleState: t.LifecycleState,
			CompartmentID:  t.CompartmentID,
		}
	}
	return Snapshot{CapturedAt: now, Targets: descriptors}
}

// Resolved converts the snapshot's descriptors into the selector's
// resolved form, verbatim and in captured order.
func (s Snapshot) Resolved() []types.ResolvedTarget {
	out := make([]types.ResolvedTarget, len(s.Targets))
	for i, d := range s.Targets {
		out[i] = types.ResolvedTarget{ID: d.Identifier, DisplayName: d.DisplayName}
	}
	return out
}

// Age returns how old the snapshot is at the given instant.
func (s Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.CapturedAt)
}

// Read loads a snapshot file whole.
func Read(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, errors.Wrapf(err, errors.ErrSnapshotRead,
			"cannot read snapshot %s", path).
			WithHint("capture one first with 'dsfleet snapshot capture'")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, errors.Wrapf(err, errors.ErrSnapshotRead,
			"snapshot %s is not valid JSON", path)
	}
	return snap, nil
}

// Write persists the snapshot atomically: the file either holds the
// previous selection or the new one, never a partial write.
func Write(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrSnapshotWrite, "cannot encode snapshot")
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrSnapshotWrite,
			"cannot create snapshot directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return errors.Wrap(err, errors.ErrSnapshotWrite, "cannot create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrSnapshotWrite, "cannot write snapshot")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrSnapshotWrite, "cannot close snapshot")
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrSnapshotWrite,
			"cannot replace snapshot %s", path)
	}
	return nil
}
