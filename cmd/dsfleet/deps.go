package dsfleet

import (
	"os"

	"github.com/dsfleet/dsfleet/pkg/catalog/oci"
	"github.com/dsfleet/dsfleet/pkg/commands"
	"github.com/dsfleet/dsfleet/pkg/compartments"
	"github.com/dsfleet/dsfleet/pkg/config"
	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/report"
	"github.com/dsfleet/dsfleet/pkg/snapshot"
	"github.com/dsfleet/dsfleet/pkg/ui"
)

// session bundles the loaded configuration and the wired collaborators
// for one invocation.
type session struct {
	cfg  *config.Config
	deps commands.Deps
}

// loadConfig resolves the layered configuration with flag overrides on
// top.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	overrides := map[string]interface{}{}
	if flags.profile != "" {
		overrides["oci.profile"] = flags.profile
	}
	if flags.output != "" {
		overrides["output.format"] = flags.output
	}
	if flags.maxAge != "" {
		overrides["selection.max_snapshot_age"] = flags.maxAge
	}
	return config.Load(flags.configPath, overrides)
}

// newSession builds the real OCI-backed collaborators. Commands that only
// read local files (snapshot show, config) skip it.
func newSession(flags *globalFlags) (*session, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	provider := oci.ConfigurationProvider(oci.Options{
		Profile:    cfg.OCI.Profile,
		ConfigFile: cfg.OCI.ConfigFile,
	})

	cat, err := oci.NewDataSafeCatalog(provider)
	if err != nil {
		return nil, err
	}
	ident, err := oci.NewIdentityAdapter(provider)
	if err != nil {
		return nil, err
	}

	rootScope := cfg.Fleet.RootCompartment
	if rootScope == "" {
		rootScope, err = provider.TenancyOCID()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad,
				"no fleet.root_compartment configured and the tenancy could not be read from the OCI config")
		}
	}

	maxAge, err := cfg.MaxSnapshotAge()
	if err != nil {
		return nil, err
	}

	var confirmer ui.Confirmer = &ui.ConsoleConfirmer{In: os.Stdin, Out: os.Stdout}
	if flags.force {
		confirmer = ui.AutoApprove{}
	}

	return &session{
		cfg: cfg,
		deps: commands.Deps{
			Catalog:      cat,
			Compartments: compartments.NewResolver(ident, rootScope),
			Validator:    snapshot.Validator{MaxAge: maxAge},
			Confirmer:    confirmer,
			Out:          os.Stdout,
		},
	}, nil
}

// runOptions assembles the shared pipeline options for a mutating
// command.
func (s *session) runOptions(flags *globalFlags, sel *selectionFlags, run *runFlags, operation string) (commands.RunOptions, error) {
	criteria, err := sel.criteria()
	if err != nil {
		return commands.RunOptions{}, err
	}

	configured, err := s.cfg.PolicyFor(operation)
	if err != nil {
		return commands.RunOptions{}, err
	}
	policy, err := run.policyOverride(configured)
	if err != nil {
		return commands.RunOptions{}, err
	}

	format, err := report.ParseFormat(s.cfg.Output.Format)
	if err != nil {
		return commands.RunOptions{}, err
	}

	return commands.RunOptions{
		Criteria:       criteria,
		DryRun:         flags.dryRun,
		Force:          flags.force,
		AllowStale:     run.allowStale,
		BestEffort:     run.bestEffort,
		PolicyOverride: policy,
		Output:         format,
	}, nil
}

// outputFormat resolves the report format for the read-only commands.
func (s *session) outputFormat() (report.Format, error) {
	return report.ParseFormat(s.cfg.Output.Format)
}
