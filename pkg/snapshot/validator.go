package snapshot

import (
	"strconv"
	"strings"
	"time"

	"github.com/dsfleet/dsfleet/pkg/errors"
)

// MaxAgeDisabled turns the freshness check off entirely.
const MaxAgeDisabled = time.Duration(-1)

// DefaultMaxAge is the freshness window applied when the operator
// configures nothing.
const DefaultMaxAge = 24 * time.Hour

// ParseMaxAge parses the max-age grammar: bare seconds ("900"), a
// suffixed duration ("30s", "15m", "12h", "7d"), or the literal
// "disable".
func ParseMaxAge(value string) (time.Duration, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return DefaultMaxAge, nil
	}
	if value == "disable" {
		return MaxAgeDisabled, nil
	}

	unit := time.Second
	number := value
	switch {
	case strings.HasSuffix(value, "d"):
		unit = 24 * time.Hour
		number = strings.TrimSuffix(value, "d")
	case strings.HasSuffix(value, "h"):
		unit = time.Hour
		number = strings.TrimSuffix(value, "h")
	case strings.HasSuffix(value, "m"):
		unit = time.Minute
		number = strings.TrimSuffix(value, "m")
	case strings.HasSuffix(value, "s"):
		number = strings.TrimSuffix(value, "s")
	}

	n, err := strconv.Atoi(number)
	if err != nil || n < 0 {
		return 0, errors.Newf(errors.ErrValidation,
			"invalid max snapshot age %q", value).
			WithHint("use bare seconds, a number suffixed with s/m/h/d, or 'disable'")
	}
	return time.Duration(n) * unit, nil
}

// Validator decides whether a persisted selection is fresh enough to
// drive a run.
type Validator struct {
	MaxAge time.Duration

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

// Check accepts or rejects a snapshot. Dry-run always passes since no
// mutation is possible; apply mode fails closed on a stale or unstamped
// snapshot unless the operator set the explicit stale-selection override.
func (v Validator) Check(snap Snapshot, dryRun, allowStale bool) error {
	if dryRun || allowStale || v.MaxAge == MaxAgeDisabled {
		return nil
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}

	if snap.CapturedAt.IsZero() {
		return errors.New(errors.ErrSnapshotStale,
			"snapshot has no capture timestamp").
			WithHint("re-capture the selection, or pass --allow-stale-selection to override")
	}

	age := snap.Age(now())
	if age > v.MaxAge {
		return errors.Newf(errors.ErrSnapshotStale,
			"snapshot is %s old, older than the configured maximum %s",
			age.Round(time.Second), v.MaxAge).
			WithHint("re-capture the selection, or pass --allow-stale-selection to override")
	}
	return nil
}
