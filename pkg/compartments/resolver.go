// Package compartments resolves compartment names and identifiers within
// the tenancy hierarchy and supplies the default root scope when the
// operator gives none.
package compartments

import (
	"context"
	"strings"
	"sync"

	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/logging"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// Compartment is one node of the tenancy's isolation hierarchy.
type Compartment struct {
	ID       string
	Name     string
	ParentID string
}

// IdentityAPI is the slice of the cloud identity service this package
// consumes. The production implementation lives in catalog/oci.
type IdentityAPI interface {
	// ListCompartments lists every active compartment in the subtree
	// rooted at rootID, the root itself excluded.
	ListCompartments(ctx context.Context, rootID string) ([]Compartment, error)

	// GetCompartment fetches one compartment by identifier.
	GetCompartment(ctx context.Context, id string) (Compartment, error)
}

// Resolver maps compartment names to canonical identifiers and back.
// Lookups against the identity service are cached per Resolver instance;
// a fresh invocation builds a fresh Resolver.
type Resolver struct {
	api         IdentityAPI
	defaultRoot string

	mu      sync.Mutex
	byID    map[string]Compartment
	subtree map[string][]Compartment
}

// NewResolver creates a resolver rooted at defaultRoot, the scope used
// when the operator supplies none.
func NewResolver(api IdentityAPI, defaultRoot string) *Resolver {
	return &Resolver{
		api:         api,
		defaultRoot: defaultRoot,
		byID:        make(map[string]Compartment),
		subtree:     make(map[string][]Compartment),
	}
}

// DefaultRoot returns the configured default scope identifier.
func (r *Resolver) DefaultRoot() string {
	return r.defaultRoot
}

// Resolve maps a compartment name or identifier to the canonical
// compartment. An empty input resolves to the default root. Names are
// matched case-insensitively across the default root's subtree; an
// ambiguous name is an error rather than first-match-wins.
func (r *Resolver) Resolve(ctx context.Context, nameOrID string) (Compartment, error) {
	log := logging.GetLogger("compartments")

	nameOrID = strings.TrimSpace(nameOrID)
	if nameOrID == "" {
		nameOrID = r.defaultRoot
	}

	if types.IsCompartmentID(nameOrID) {
		return r.getByID(ctx, nameOrID)
	}

	members, err := r.listSubtree(ctx, r.defaultRoot)
	if err != nil {
		return Compartment{}, err
	}

	var matches []Compartment
	for _, c := range members {
		if strings.EqualFold(c.Name, nameOrID) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return Compartment{}, errors.Newf(errors.ErrResolution,
			"no compartment named %q under the root scope", nameOrID).
			WithHint("check the name, or pass the compartment OCID directly")
	case 1:
		log.Debug().Str("name", nameOrID).Str("ocid", matches[0].ID).Msg("Resolved compartment name")
		return matches[0], nil
	default:
		return Compartment{}, errors.Newf(errors.ErrAmbiguousName,
			"%d compartments named %q under the root scope", len(matches), nameOrID).
			WithHint("disambiguate by passing the compartment OCID")
	}
}

// Describe returns a human-readable "name (ocid)" string for log lines
// and impact previews. It degrades to the bare identifier when the
// identity lookup fails.
func (r *Resolver) Describe(ctx context.Context, id string) string {
	c, err := r.getByID(ctx, id)
	if err != nil {
		return id
	}
	return c.Name + " (" + c.ID + ")"
}

// SubtreeIDs returns the identifiers of rootID and every compartment
// beneath it, root first.
func (r *Resolver) SubtreeIDs(ctx context.Context, rootID string) ([]string, error) {
	members, err := r.listSubtree(ctx, rootID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members)+1)
	ids = append(ids, rootID)
	for _, c := range members {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (r *Resolver) getByID(ctx context.Context, id string) (Compartment, error) {
	r.mu.Lock()
	cached, ok := r.byID[id]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	c, err := r.api.GetCompartment(ctx, id)
	if err != nil {
		return Compartment{}, errors.Wrapf(err, errors.ErrResolution,
			"compartment %s not found", id)
	}

	r.mu.Lock()
	r.byID[id] = c
	r.mu.Unlock()
	return c, nil
}

func (r *Resolver) listSubtree(ctx context.Context, rootID string) ([]Compartment, error) {
	r.mu.Lock()
	cached, ok := r.subtree[rootID]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	members, err := r.api.ListCompartments(ctx, rootID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCatalogCall,
			"listing compartments failed")
	}

	r.mu.Lock()
	r.subtree[rootID] = members
	for _, c := range members {
		r.byID[c.ID] = c
	}
	r.mu.Unlock()
	return members, nil
}
