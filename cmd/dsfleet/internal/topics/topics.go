// Package topics serves the built-in guides: markdown documents embedded
// in the binary, rendered with glamour on capable terminals and printed
// plain everywhere else.
package topics

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

//go:embed docs/*.md
var docsFS embed.FS

// Names returns the available guide names, sorted.
func Names() []string {
	entries, err := fs.ReadDir(docsFS, "docs")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names
}

// Content returns a guide's raw markdown.
func Content(name string) (string, bool) {
	data, err := docsFS.ReadFile("docs/" + name + ".md")
	if err != nil {
		return "", false
	}
	return string(data), true
}

// render converts markdown for terminal output, degrading to the raw text
// when glamour cannot run or stdout is not a terminal.
func render(content string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return content
	}
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// NewGuideCmd builds the `guide [topic]` command.
func NewGuideCmd(short string) *cobra.Command {
	return &cobra.Command{
		Use:       "guide [topic]",
		Short:     short,
		GroupID:   "misc",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Println("Available guides:")
				for _, name := range Names() {
					fmt.Printf("  %s\n", name)
				}
				fmt.Println("\nRun `dsfleet guide <topic>` to read one.")
				return nil
			}
			content, ok := Content(args[0])
			if !ok {
				return fmt.Errorf("no guide named %q (available: %s)",
					args[0], strings.Join(Names(), ", "))
			}
			fmt.Print(render(content))
			return nil
		},
	}
}
