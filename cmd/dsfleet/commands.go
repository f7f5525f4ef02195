package dsfleet

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dsfleet/dsfleet/pkg/actions"
	"github.com/dsfleet/dsfleet/pkg/commands"
	"github.com/dsfleet/dsfleet/pkg/config"
)

func newMoveCmd(flags *globalFlags, exitCode *int) *cobra.Command {
	sel := &selectionFlags{}
	run := &runFlags{}
	var (
		destination string
		targetsOnly bool
	)

	cmd := &cobra.Command{
		Use:     "move",
		Short:   MsgMoveShort,
		Long:    MsgMoveLong,
		GroupID: "fleet",
		Example: `  # Preview moving every ACTIVE finance target to team-dba
  dsfleet move -c finance --state ACTIVE --filter '^finance-' -d team-dba --dry-run

  # Move two targets by name, leaving their dependents in place
  dsfleet move -t finance-prod,hr-prod -d team-dba --targets-only

  # Replay a captured selection
  dsfleet move --from-snapshot fleet.json -d team-dba`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(flags)
			if err != nil {
				return err
			}
			opts, err := s.runOptions(flags, sel, run, "move")
			if err != nil {
				return err
			}
			result, err := commands.MoveTargets(cmd.Context(), s.deps, commands.MoveTargetsOptions{
				RunOptions:  opts,
				Destination: destination,
				TargetsOnly: targetsOnly,
			})
			if err != nil {
				return err
			}
			*exitCode = result.ExitCode
			return nil
		},
	}

	addSelectionFlags(cmd, sel, true)
	addRunFlags(cmd, run)
	cmd.Flags().StringVarP(&destination, "destination", "d", "", "Destination compartment, by name or OCID")
	cmd.Flags().BoolVar(&targetsOnly, "targets-only", false, "Do not move dependent resources")
	_ = cmd.MarkFlagRequired("destination")

	return cmd
}

func newRefreshCmd(flags *globalFlags, exitCode *int) *cobra.Command {
	sel := &selectionFlags{}
	run := &runFlags{}

	cmd := &cobra.Command{
		Use:     "refresh",
		Short:   MsgRefreshShort,
		GroupID: "fleet",
		Example: `  # Refresh every target in the dba compartment
  dsfleet refresh -c team-dba

  # Refresh two targets, tolerating entries that no longer resolve
  dsfleet refresh -t finance-prod,decommissioned-db --best-effort`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(flags)
			if err != nil {
				return err
			}
			opts, err := s.runOptions(flags, sel, run, "refresh")
			if err != nil {
				return err
			}
			result, err := commands.RefreshTargets(cmd.Context(), s.deps, commands.RefreshTargetsOptions{
				RunOptions: opts,
			})
			if err != nil {
				return err
			}
			*exitCode = result.ExitCode
			return nil
		},
	}

	addSelectionFlags(cmd, sel, true)
	addRunFlags(cmd, run)

	return cmd
}

func newRetagCmd(flags *globalFlags, exitCode *int) *cobra.Command {
	sel := &selectionFlags{}
	run := &runFlags{}
	var (
		environment string
		tagKey      string
	)

	cmd := &cobra.Command{
		Use:     "retag",
		Short:   MsgRetagShort,
		GroupID: "fleet",
		Example: `  # Tag every target by the environment derived from its name
  dsfleet retag -c team-dba

  # Force one environment value for the whole selection
  dsfleet retag -c team-dba --filter '-prod$' --environment PROD`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(flags)
			if err != nil {
				return err
			}
			opts, err := s.runOptions(flags, sel, run, "retag")
			if err != nil {
				return err
			}
			result, err := commands.RetagTargets(cmd.Context(), s.deps, commands.RetagTargetsOptions{
				RunOptions:  opts,
				Environment: environment,
				TagKey:      tagKey,
			})
			if err != nil {
				return err
			}
			*exitCode = result.ExitCode
			return nil
		},
	}

	addSelectionFlags(cmd, sel, true)
	addRunFlags(cmd, run)
	cmd.Flags().StringVar(&environment, "environment", "", "Environment value to tag; empty derives it from the display name")
	cmd.Flags().StringVar(&tagKey, "tag-key", actions.DefaultEnvironmentTagKey, "Freeform tag key to write")

	return cmd
}

func newAuditStartCmd(flags *globalFlags, exitCode *int) *cobra.Command {
	sel := &selectionFlags{}
	run := &runFlags{}
	var since string

	cmd := &cobra.Command{
		Use:     "audit-start",
		Short:   MsgAuditStartShort,
		Long:    MsgAuditStartLong,
		GroupID: "fleet",
		Example: `  # Start collection on every ACTIVE target, from now
  dsfleet audit-start -c team-dba --state ACTIVE

  # Collect from the start of the month
  dsfleet audit-start -t finance-prod --since 2026-08-01T00:00:00Z`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(flags)
			if err != nil {
				return err
			}
			opts, err := s.runOptions(flags, sel, run, "audit-start")
			if err != nil {
				return err
			}
			result, err := commands.StartAudit(cmd.Context(), s.deps, commands.StartAuditOptions{
				RunOptions: opts,
				Since:      since,
			})
			if err != nil {
				return err
			}
			*exitCode = result.ExitCode
			return nil
		},
	}

	addSelectionFlags(cmd, sel, true)
	addRunFlags(cmd, run)
	cmd.Flags().StringVar(&since, "since", "", "Audit collection start time, RFC 3339; empty means now")

	return cmd
}

func newTargetsCmd(flags *globalFlags) *cobra.Command {
	sel := &selectionFlags{}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: MsgTargetsShort,
		Example: `  # Every target under the configured root
  dsfleet targets list

  # ACTIVE prod targets in one compartment
  dsfleet targets list -c team-dba --state ACTIVE --filter '-prod$'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(flags)
			if err != nil {
				return err
			}
			criteria, err := sel.criteria()
			if err != nil {
				return err
			}
			format, err := s.outputFormat()
			if err != nil {
				return err
			}
			return commands.ListTargets(cmd.Context(), s.deps, commands.ListTargetsOptions{
				Criteria: criteria,
				Output:   format,
			})
		},
	}
	addSelectionFlags(listCmd, sel, false)

	cmd := &cobra.Command{
		Use:     "targets",
		Short:   MsgTargetsShort,
		GroupID: "selection",
	}
	cmd.AddCommand(listCmd)
	return cmd
}

func newSnapshotCmd(flags *globalFlags) *cobra.Command {
	sel := &selectionFlags{}

	captureCmd := &cobra.Command{
		Use:   "capture <path>",
		Short: MsgCaptureShort,
		Args:  cobra.ExactArgs(1),
		Example: `  # Capture the ACTIVE finance fleet for a change window
  dsfleet snapshot capture fleet.json -c finance --state ACTIVE`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(flags)
			if err != nil {
				return err
			}
			criteria, err := sel.criteria()
			if err != nil {
				return err
			}
			return commands.CaptureSnapshot(cmd.Context(), s.deps, commands.CaptureSnapshotOptions{
				Criteria: criteria,
				Path:     args[0],
			})
		},
	}
	addSelectionFlags(captureCmd, sel, false)

	showCmd := &cobra.Command{
		Use:   "show <path>",
		Short: MsgShowShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Reading a local file needs no API clients.
			return commands.ShowSnapshot(cmd.Context(), commands.Deps{Out: os.Stdout}, commands.ShowSnapshotOptions{
				Path: args[0],
			})
		},
	}

	cmd := &cobra.Command{
		Use:     "snapshot",
		Short:   MsgSnapshotShort,
		GroupID: "selection",
	}
	cmd.AddCommand(captureCmd)
	cmd.AddCommand(showCmd)
	return cmd
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a commented config file seeded from the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			content, err := config.Generate(cfg)
			if err != nil {
				return err
			}
			fmt.Println(content)
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.DefaultPath())
		},
	}

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
	}
	cmd.AddCommand(generateCmd)
	cmd.AddCommand(pathCmd)
	return cmd
}
