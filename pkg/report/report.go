// Package report renders run outcomes for downstream consumption: a JSON
// array of per-target outcomes for machines, YAML as an alternative, and
// a textual summary for terminals and logs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// Format selects the output rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an --output value.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", errors.Newf(errors.ErrValidation, "unknown output format %q", value).
			WithHint("use one of: text, json, yaml")
	}
}

// Outcome is one target's reported result.
type Outcome struct {
	Identifier  string `json:"identifier" yaml:"identifier"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Status      string `json:"status" yaml:"status"`
	Detail      string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Outcomes flattens a summary into the reported array, preserving
// execution order.
func Outcomes(summary types.Summary) []Outcome {
	out := make([]Outcome, len(summary.Results))
	for i, r := range summary.Results {
		out[i] = Outcome{
			Identifier:  r.Target.ID,
			DisplayName: r.Target.DisplayName,
			Status:      string(r.Status),
			Detail:      r.Detail,
		}
	}
	return out
}

// WriteJSON emits the outcome array as indented JSON.
func WriteJSON(w io.Writer, summary types.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Outcomes(summary))
}

// WriteYAML emits the outcome array as YAML.
func WriteYAML(w io.Writer, summary types.Summary) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(Outcomes(summary))
}

// WriteText emits the plain textual summary. Partial failure is stated in
// the text itself, not only via the exit code, so operators reading logs
// see it too.
func WriteText(w io.Writer, summary types.Summary) error {
	if summary.Cancelled {
		_, err := fmt.Fprintln(w, "Run cancelled: no changes were made.")
		return err
	}

	for _, r := range summary.Results {
		line := fmt.Sprintf("%-9s %s (%s)", strings.ToUpper(string(r.Status)), r.Target.DisplayName, r.Target.ID)
		if r.Detail != "" {
			line += ": " + r.Detail
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n%d total: %d succeeded, %d failed, %d skipped\n",
		summary.Total, summary.Succeeded, summary.Failed, summary.Skipped)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		_, err = fmt.Fprintf(w, "WARNING: %d target(s) failed; see details above.\n", summary.Failed)
	}
	return err
}

// Write dispatches on format.
func Write(w io.Writer, format Format, summary types.Summary) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, summary)
	case FormatYAML:
		return WriteYAML(w, summary)
	default:
		return WriteText(w, summary)
	}
}
