package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/dsfleet/dsfleet/pkg/types"
)

var (
	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true)
)

// IsInteractive reports whether stdout is a real terminal. Styled output
// and confirmation prompts degrade to plain text otherwise.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// colorEnabled also honors NO_COLOR and dumb terminals.
func colorEnabled() bool {
	return IsInteractive() && termenv.ColorProfile() != termenv.Ascii
}

// RenderPreview wraps an impact preview in a bordered box on capable
// terminals.
func RenderPreview(preview string) string {
	if !colorEnabled() {
		return preview
	}
	return previewStyle.Render(preview)
}

// RenderSummary renders the run summary block for terminal consumption.
// The failure count is stated in the text itself, never only in the exit
// code.
func RenderSummary(operation string, summary types.Summary) string {
	var b strings.Builder

	title := fmt.Sprintf("%s: %d total, %d succeeded, %d failed, %d skipped",
		operation, summary.Total, summary.Succeeded, summary.Failed, summary.Skipped)
	if summary.Cancelled {
		title = operation + ": cancelled, no changes were made"
	}
	if colorEnabled() {
		b.WriteString(headerStyle.Render(title))
	} else {
		b.WriteString(title)
	}
	b.WriteString("\n")

	for _, r := range summary.Results {
		line := r.Target.DisplayName
		if r.Detail != "" {
			line += ": " + r.Detail
		}
		b.WriteString(renderResult(r.Status, line))
		b.WriteString("\n")
	}

	if summary.Failed > 0 {
		warn := fmt.Sprintf("%d target(s) failed; the exit status is non-zero.", summary.Failed)
		if colorEnabled() {
			warn = pterm.Warning.Sprint(warn)
		}
		b.WriteString(warn)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderResult(status types.OutcomeStatus, line string) string {
	if !colorEnabled() {
		return "[" + strings.ToUpper(string(status)) + "] " + line
	}
	switch status {
	case types.OutcomeSucceeded:
		return pterm.Success.Sprint(line)
	case types.OutcomeFailed:
		return pterm.Error.Sprint(line)
	default:
		return pterm.Warning.Sprint(line)
	}
}
