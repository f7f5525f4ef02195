// Package auditstart implements the StartAudit command: begin audit
// collection on every audit trail of each selected target.
package auditstart

import (
	"context"
	"time"

	"github.com/dsfleet/dsfleet/pkg/actions"
	"github.com/dsfleet/dsfleet/pkg/commands/internal"
	"github.com/dsfleet/dsfleet/pkg/errors"
)

// StartAuditOptions configures an audit-start run.
type StartAuditOptions struct {
	internal.RunOptions

	// Since is the collection start time as RFC 3339; empty means now.
	Since string
}

// StartAudit runs the audit-start action over the resolved selection.
func StartAudit(ctx context.Context, deps internal.Deps, opts StartAuditOptions) (*internal.RunResult, error) {
	start := time.Now().UTC()
	if opts.Since != "" {
		parsed, err := time.Parse(time.RFC3339, opts.Since)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrValidation,
				"invalid --since value %q", opts.Since).
				WithHint("use RFC 3339, e.g. 2026-08-01T00:00:00Z")
		}
		start = parsed
	}

	starter := &actions.AuditStarter{Catalog: deps.Catalog, StartTime: start}
	return internal.Run(ctx, deps, starter, opts.RunOptions)
}
