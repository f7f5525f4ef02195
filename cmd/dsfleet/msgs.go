package dsfleet

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Fleet administration for database security registrations"
	MsgMoveShort       = "Move targets (and their dependents) to another compartment"
	MsgRefreshShort    = "Refresh the registered metadata of targets"
	MsgRetagShort      = "Write the environment tag on targets"
	MsgAuditStartShort = "Start audit collection on targets' audit trails"
	MsgTargetsShort    = "List registered targets"
	MsgSnapshotShort   = "Capture and inspect selection snapshots"
	MsgCaptureShort    = "Capture a compartment scan to a snapshot file"
	MsgShowShort       = "Show a snapshot's targets and age"
	MsgConfigShort     = "Inspect and generate configuration"
	MsgGuideShort      = "Display built-in guides"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun     = "Rehearse the run without issuing any mutating call"
	MsgFlagForce      = "Skip the confirmation prompt"
	MsgFlagConfig     = "Config file (default is $XDG_CONFIG_HOME/dsfleet/config.toml)"
	MsgFlagProfile    = "OCI config profile to authenticate with"
	MsgFlagOutput     = "Report format: text, json or yaml"
	MsgFlagTargets    = "Comma-separated target names and/or OCIDs (repeatable)"
	MsgFlagScope      = "Compartment scope, by name or OCID"
	MsgFlagStates     = "Lifecycle states to scan for (repeatable; default all)"
	MsgFlagFilter     = "Regular expression matched against display names during a scan"
	MsgFlagSnapshot   = "Replay a selection snapshot instead of resolving live"
	MsgFlagAllowStale = "Accept a snapshot older than the freshness bound"
	MsgFlagBestEffort = "Proceed with the entries that resolved; report the rest"
	MsgFlagOnError    = "Partial-failure policy: continue or stop"
	MsgFlagMaxAge     = "Snapshot freshness bound (seconds, or s/m/h/d suffix, or \"disable\")"
)

// Long messages
const (
	MsgRootLong = `dsfleet performs batch operations over fleets of registered database
targets: moving them between compartments together with their dependent
security resources, refreshing their metadata, tagging them by
environment, and starting audit collection.

Selections come from an explicit list, a filtered compartment scan, or a
previously captured snapshot. Every mutating command supports --dry-run
as an exact rehearsal of the apply run.`

	MsgMoveLong = `Move relocates each selected target to the destination compartment. By
default the target's dependent resources (audit trails, security
assessments, security policies) move first, in a separate pass over the
whole selection, then the targets themselves; the two passes never
interleave. Use --targets-only to leave dependents in place.`

	MsgAuditStartLong = `Audit-start begins audit collection on every audit trail of each
selected target. Trails already collecting are skipped; a target with no
trails is reported as skipped, not failed. The default collection start
is now; use --since for a point in the past.`
)
