package actions

import (
	"context"
	"strings"

	"github.com/dsfleet/dsfleet/pkg/batch"
	"github.com/dsfleet/dsfleet/pkg/catalog"
	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/logging"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// DefaultEnvironmentTagKey is the freeform tag the retag operation writes.
const DefaultEnvironmentTagKey = "Environment"

// Retagger applies an environment tag to each target. The environment is
// either given explicitly or derived from the fleet's naming convention:
// the segment after the last dash of the display name, upper-cased
// ("finance-prod" tags as PROD).
type Retagger struct {
	Catalog catalog.Catalog

	// Environment forces one value for the whole selection; empty means
	// derive per target.
	Environment string

	// TagKey defaults to DefaultEnvironmentTagKey.
	TagKey string
}

// Name implements batch.Action.
func (r *Retagger) Name() string { return "retag" }

// FailurePolicy implements batch.Action.
func (r *Retagger) FailurePolicy() types.FailurePolicy { return types.ContinueOnError }

// Phases implements batch.Action.
func (r *Retagger) Phases() []batch.Phase {
	return []batch.Phase{batch.PhaseFunc{PhaseName: "retag", Fn: r.run}}
}

// DeriveEnvironment extracts the environment from a display name. Names
// without a dash yield the whole name upper-cased.
func DeriveEnvironment(displayName string) string {
	segment := displayName
	if idx := strings.LastIndex(displayName, "-"); idx >= 0 && idx < len(displayName)-1 {
		segment = displayName[idx+1:]
	}
	return strings.ToUpper(segment)
}

func (r *Retagger) run(ctx context.Context, target types.ResolvedTarget, dryRun bool) error {
	log := logging.GetLogger("actions.retag")

	env := r.Environment
	if env == "" {
		env = DeriveEnvironment(target.DisplayName)
	}
	key := r.TagKey
	if key == "" {
		key = DefaultEnvironmentTagKey
	}

	log.Info().
		Str("target", target.DisplayName).
		Str("tag", key+"="+env).
		Bool("dryRun", dryRun).
		Msg("Tagging target")
	if dryRun {
		return nil
	}

	if err := r.Catalog.UpdateTargetTags(ctx, target.ID, map[string]string{key: env}); err != nil {
		return errors.Wrapf(err, errors.ErrTargetOp,
			"tagging target %s failed", target.DisplayName)
	}
	return nil
}
