// Package dsfleet assembles the command-line interface: flag parsing,
// configuration and client wiring, and exit-status mapping. Command
// semantics live in pkg/commands.
package dsfleet

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/dsfleet/dsfleet/cmd/dsfleet/internal/topics"
	"github.com/dsfleet/dsfleet/internal/version"
	"github.com/dsfleet/dsfleet/pkg/logging"
)

// exit statuses: 0 full success (including cancelled and zero-match
// runs), 1 fatal error, 2 partial failure.
const (
	ExitOK             = 0
	ExitFatal          = 1
	ExitPartialFailure = 2
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	verbosity  int
	dryRun     bool
	force      bool
	configPath string
	profile    string
	output     string
	maxAge     string
}

// NewRootCmd creates and returns the root command. Partial-failure exit
// codes propagate through *exitCode because cobra's RunE only carries an
// error.
func NewRootCmd(exitCode *int) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "dsfleet",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().BoolVar(&flags.force, "force", false, MsgFlagForce)
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&flags.profile, "profile", "", MsgFlagProfile)
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "", MsgFlagOutput)
	rootCmd.PersistentFlags().StringVar(&flags.maxAge, "max-snapshot-age", "", MsgFlagMaxAge)

	rootCmd.AddGroup(&cobra.Group{ID: "fleet", Title: "FLEET OPERATIONS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "selection", Title: "SELECTION:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	rootCmd.AddCommand(newMoveCmd(flags, exitCode))
	rootCmd.AddCommand(newRefreshCmd(flags, exitCode))
	rootCmd.AddCommand(newRetagCmd(flags, exitCode))
	rootCmd.AddCommand(newAuditStartCmd(flags, exitCode))
	rootCmd.AddCommand(newTargetsCmd(flags))
	rootCmd.AddCommand(newSnapshotCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))
	rootCmd.AddCommand(topics.NewGuideCmd(MsgGuideShort))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// Main runs the CLI and returns the process exit status. SIGINT and
// SIGTERM cancel the command context; in-flight batch runs record the
// remaining targets as skipped and still print a summary.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exitCode := ExitOK
	rootCmd := NewRootCmd(&exitCode)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitFatal
	}
	return exitCode
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dsfleet version %s\n", version.Version)
			fmt.Printf("  commit: %s\n", version.Commit)
			fmt.Printf("  built:  %s\n", version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     MsgCompletionShort,
		GroupID:   "misc",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man [directory]",
		Short:   MsgManShort,
		GroupID: "misc",
		Hidden:  true,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "man"
			if len(args) == 1 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			header := &doc.GenManHeader{Title: "DSFLEET", Section: "1"}
			return doc.GenManTree(cmd.Root(), header, dir)
		},
	}
}
