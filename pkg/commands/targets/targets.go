// Package targets implements the ListTargets command: a read-only
// compartment scan printed as a table or encoded for machines.
package targets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dsfleet/dsfleet/pkg/commands/internal"
	"github.com/dsfleet/dsfleet/pkg/report"
	"github.com/dsfleet/dsfleet/pkg/selector"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// ListTargetsOptions configures a listing.
type ListTargetsOptions struct {
	Criteria types.SelectionCriteria
	Output   report.Format
}

// Row is one listed target.
type Row struct {
	Identifier     string `json:"identifier" yaml:"identifier"`
	DisplayName    string `json:"display_name" yaml:"display_name"`
	LifecycleState string `json:"lifecycle_state" yaml:"lifecycle_state"`
	CompartmentID  string `json:"compartment_id" yaml:"compartment_id"`
}

// ListTargets scans the scope and writes the result to deps.Out.
func ListTargets(ctx context.Context, deps internal.Deps, opts ListTargetsOptions) error {
	sel := selector.New(deps.Catalog, deps.Compartments, deps.Validator)
	matched, scope, err := sel.Scan(ctx, opts.Criteria)
	if err != nil {
		return err
	}

	rows := make([]Row, len(matched))
	for i, t := range matched {
		rows[i] = Row{
			Identifier:     t.ID,
			DisplayName:    t.DisplayName,
			LifecycleState: string(t.LifecycleState),
			CompartmentID:  t.CompartmentID,
		}
	}

	switch opts.Output {
	case report.FormatJSON:
		enc := json.NewEncoder(deps.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case report.FormatYAML:
		enc := yaml.NewEncoder(deps.Out)
		defer enc.Close()
		return enc.Encode(rows)
	default:
		return writeTable(deps.Out, scope.Name, rows)
	}
}

func writeTable(w io.Writer, scopeName string, rows []Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "No targets in %s.\n", scopeName)
		return err
	}

	width := len("NAME")
	for _, r := range rows {
		if len(r.DisplayName) > width {
			width = len(r.DisplayName)
		}
	}

	if _, err := fmt.Fprintf(w, "%-*s  %-15s  %s\n", width, "NAME", "STATE", "IDENTIFIER"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%-*s  %-15s  %s\n", width, r.DisplayName, r.LifecycleState, r.Identifier); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d target(s) in %s\n", len(rows), scopeName)
	return err
}
