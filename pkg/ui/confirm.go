// Package ui handles operator-facing terminal interaction: confirmation
// prompts, the styled impact preview, and the run summary block.
package ui

import (
	"fmt"
	"io"
	"strings"
)

// Confirmer presents an impact preview and collects an explicit
// affirmative answer before a destructive run begins.
type Confirmer interface {
	Confirm(preview string) (bool, error)
}

// ConsoleConfirmer prompts on the terminal. The default answer is "no".
type ConsoleConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm implements Confirmer.
func (c *ConsoleConfirmer) Confirm(preview string) (bool, error) {
	fmt.Fprintln(c.Out)
	fmt.Fprintln(c.Out, RenderPreview(preview))
	fmt.Fprint(c.Out, "\nProceed? [y/N]: ")

	var response string
	if _, err := fmt.Fscanln(c.In, &response); err != nil && err.Error() != "unexpected newline" {
		if err == io.EOF {
			// Non-interactive input without --force: treat as declined.
			return false, nil
		}
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}

// AutoApprove answers yes without prompting; it backs --force.
type AutoApprove struct{}

// Confirm implements Confirmer.
func (AutoApprove) Confirm(string) (bool, error) { return true, nil }
