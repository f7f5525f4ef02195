// Package selector turns an operator's selection criteria into an
// ordered, deduplicated list of target identifiers. Exactly one
// resolution path is taken per invocation: an explicit list of names and
// identifiers, a compartment scan with filters, or a snapshot replay.
package selector

import (
	"context"
	"regexp"
	"strings"

	"github.com/dsfleet/dsfleet/pkg/catalog"
	"github.com/dsfleet/dsfleet/pkg/compartments"
	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/logging"
	"github.com/dsfleet/dsfleet/pkg/snapshot"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// Failure is one explicit-list entry that could not be resolved. Failures
// are surfaced, never silently dropped; whether they abort the run is the
// operation's declared ResolutionPolicy.
type Failure struct {
	Entry string
	Err   error
}

// Resolution is the outcome of resolving a SelectionCriteria.
type Resolution struct {
	Source types.SelectionSource

	// Scope is the single resolved source compartment: the scan root, or
	// the name-resolution scope for explicit lists. Move uses it for the
	// source-differs-from-destination check.
	Scope compartments.Compartment

	// Targets is ordered by resolution order with identifier-level
	// duplicates removed.
	Targets []types.ResolvedTarget

	// Failures holds per-entry resolution failures kept under the
	// best-effort policy.
	Failures []Failure
}

// Options tune a single resolution.
type Options struct {
	Policy types.ResolutionPolicy

	// DryRun and AllowStale feed the snapshot freshness check.
	DryRun     bool
	AllowStale bool
}

// Selector resolves selections against the live catalog and compartment
// hierarchy, or against a persisted snapshot.
type Selector struct {
	catalog      catalog.Catalog
	compartments *compartments.Resolver
	validator    snapshot.Validator
}

// New creates a Selector.
func New(cat catalog.Catalog, comp *compartments.Resolver, validator snapshot.Validator) *Selector {
	return &Selector{catalog: cat, compartments: comp, validator: validator}
}

// Resolve validates the criteria and takes exactly one resolution path.
func (s *Selector) Resolve(ctx context.Context, criteria types.SelectionCriteria, opts Options) (Resolution, error) {
	if err := criteria.Validate(); err != nil {
		return Resolution{}, err
	}
	if opts.Policy == "" {
		opts.Policy = types.ResolutionStrict
	}

	switch criteria.Source() {
	case types.SourceExplicit:
		return s.resolveExplicit(ctx, criteria, opts)
	case types.SourceSnapshot:
		return s.resolveSnapshot(ctx, criteria, opts)
	default:
		return s.resolveScan(ctx, criteria)
	}
}

// resolveExplicit handles a list of names and identifiers. Identifiers
// are recognized by their structural prefix and verified with a read-only
// get; names are matched case-insensitively against the scope's live
// population, with ambiguity treated as an error rather than
// first-match-wins.
func (s *Selector) resolveExplicit(ctx context.Context, criteria types.SelectionCriteria, opts Options) (Resolution, error) {
	log := logging.GetLogger("selector")

	scope, err := s.compartments.Resolve(ctx, criteria.Compartment)
	if err != nil {
		return Resolution{}, err
	}

	entries := types.TrimEntries(criteria.Targets)
	res := Resolution{Source: types.SourceExplicit, Scope: scope}

	// One live listing serves every name lookup in this resolution.
	var population []types.Target
	var populationLoaded bool

	for _, entry := range entries {
		if types.IsTargetID(entry) {
			target, err := s.catalog.GetTarget(ctx, entry)
			if err != nil {
				res.Failures = append(res.Failures, Failure{
					Entry: entry,
					Err: errors.Wrapf(err, errors.ErrResolution,
						"target %s not found", entry).
						WithHint("check the OCID, or select by display name instead"),
				})
				continue
			}
			res.Targets = append(res.Targets, types.ResolvedTarget{ID: target.ID, DisplayName: target.DisplayName})
			continue
		}

		if !populationLoaded {
			population, err = s.catalog.ListTargets(ctx, scope.ID, nil, true)
			if err != nil {
				return Resolution{}, errors.Wrap(err, errors.ErrCatalogCall,
					"listing targets for name resolution failed")
			}
			populationLoaded = true
		}

		var matches []types.Target
		for _, t := range population {
			if strings.EqualFold(t.DisplayName, entry) {
				matches = append(matches, t)
			}
		}

		switch len(matches) {
		case 0:
			res.Failures = append(res.Failures, Failure{
				Entry: entry,
				Err: errors.Newf(errors.ErrResolution,
					"no target named %q in %s", entry, scope.Name).
					WithHint("check the name, or pass the target OCID directly"),
			})
		case 1:
			res.Targets = append(res.Targets, types.ResolvedTarget{
				ID: matches[0].ID, DisplayName: matches[0].DisplayName,
			})
		default:
			res.Failures = append(res.Failures, Failure{
				Entry: entry,
				Err: errors.Newf(errors.ErrAmbiguousName,
					"%d targets named %q in %s", len(matches), entry, scope.Name).
					WithHint("disambiguate by passing the target OCID"),
			})
		}
	}

	res.Targets = types.DedupeResolved(res.Targets)

	for _, f := range res.Failures {
		log.Warn().Str("entry", f.Entry).Err(f.Err).Msg("Entry did not resolve")
	}
	if len(res.Failures) > 0 && opts.Policy == types.ResolutionStrict {
		return Resolution{}, errors.Newf(errors.ErrResolution,
			"%d of %d entries did not resolve (first: %v)",
			len(res.Failures), len(entries), res.Failures[0].Err).
			WithHint("fix the unresolved entries, or run with --best-effort to proceed with the rest")
	}

	return res, nil
}

// Scan lists the scope subtree filtered by lifecycle states, then applies
// the optional name filter, returning the full target records. The
// execution pipeline only needs identifiers, but the list and
// snapshot-capture commands use the complete descriptors. An empty
// compartment is a legitimate zero-target result; a filter that matches
// nothing out of a non-empty population is a distinguishable error so the
// operator adjusts the pattern rather than assuming an empty fleet.
func (s *Selector) Scan(ctx context.Context, criteria types.SelectionCriteria) ([]types.Target, compartments.Compartment, error) {
	log := logging.GetLogger("selector")

	var filter *regexp.Regexp
	if criteria.NameFilter != "" {
		var err error
		filter, err = regexp.Compile(criteria.NameFilter)
		if err != nil {
			return nil, compartments.Compartment{}, errors.Wrapf(err, errors.ErrValidation,
				"invalid name filter %q", criteria.NameFilter).
				WithHint("the filter is a regular expression matched against display names")
		}
	}

	scope, err := s.compartments.Resolve(ctx, criteria.Compartment)
	if err != nil {
		return nil, compartments.Compartment{}, err
	}

	population, err := s.catalog.ListTargets(ctx, scope.ID, criteria.LifecycleStates, true)
	if err != nil {
		return nil, scope, errors.Wrap(err, errors.ErrCatalogCall,
			"listing targets failed")
	}

	if len(population) == 0 {
		log.Warn().Str("compartment", scope.Name).Msg("No targets matched the compartment scan")
		return nil, scope, nil
	}

	var matched []types.Target
	for _, t := range population {
		if filter != nil && !filter.MatchString(t.DisplayName) {
			continue
		}
		matched = append(matched, t)
	}

	if filter != nil && len(matched) == 0 {
		return nil, scope, errors.Newf(errors.ErrNoFilterMatch,
			"filter %q matched none of the %d targets in %s",
			criteria.NameFilter, len(population), scope.Name).
			WithHint("adjust the filter pattern; the compartment is not empty")
	}

	return matched, scope, nil
}

func (s *Selector) resolveScan(ctx context.Context, criteria types.SelectionCriteria) (Resolution, error) {
	log := logging.GetLogger("selector")

	matched, scope, err := s.Scan(ctx, criteria)
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{Source: types.SourceScan, Scope: scope}
	for _, t := range matched {
		res.Targets = append(res.Targets, types.ResolvedTarget{ID: t.ID, DisplayName: t.DisplayName})
	}

	res.Targets = types.DedupeResolved(res.Targets)
	log.Info().Int("targets", len(res.Targets)).Str("compartment", scope.Name).Msg("Compartment scan resolved")
	return res, nil
}

// resolveSnapshot replays a persisted selection verbatim, bypassing live
// discovery, after the freshness check.
func (s *Selector) resolveSnapshot(ctx context.Context, criteria types.SelectionCriteria, opts Options) (Resolution, error) {
	log := logging.GetLogger("selector")

	snap, err := snapshot.Read(criteria.SnapshotPath)
	if err != nil {
		return Resolution{}, err
	}
	if err := s.validator.Check(snap, opts.DryRun, opts.AllowStale); err != nil {
		return Resolution{}, err
	}

	scope, err := s.compartments.Resolve(ctx, "")
	if err != nil {
		return Resolution{}, err
	}

	targets := types.DedupeResolved(snap.Resolved())
	log.Info().Int("targets", len(targets)).Str("path", criteria.SnapshotPath).
		Time("capturedAt", snap.CapturedAt).Msg("Snapshot replayed")

	return Resolution{Source: types.SourceSnapshot, Scope: scope, Targets: targets}, nil
}
