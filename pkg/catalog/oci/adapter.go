// Package oci adapts the OCI Data Safe and Identity SDK clients to the
// narrow interfaces the rest of dsfleet consumes. Everything
// service-specific (pagination, request envelopes, enum mapping, retry
// policy) stays behind this boundary.
package oci

import (
	"context"
	"strings"
	"time"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/datasafe"

	"github.com/dsfleet/dsfleet/pkg/catalog"
	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/logging"
	"github.com/dsfleet/dsfleet/pkg/types"
)

// Options configure client construction.
type Options struct {
	// Profile is the profile in the OCI config file; empty means DEFAULT.
	Profile string

	// ConfigFile overrides the SDK's default ~/.oci/config location.
	ConfigFile string
}

// ConfigurationProvider builds the SDK credential provider for the given
// options.
func ConfigurationProvider(opts Options) common.ConfigurationProvider {
	if opts.ConfigFile != "" || (opts.Profile != "" && opts.Profile != "DEFAULT") {
		return common.CustomProfileConfigProvider(opts.ConfigFile, opts.Profile)
	}
	return common.DefaultConfigProvider()
}

// dataSafeAPI is the slice of datasafe.DataSafeClient the adapter calls.
// Tests substitute a scripted implementation.
type dataSafeAPI interface {
	ListTargetDatabases(ctx context.Context, request datasafe.ListTargetDatabasesRequest) (datasafe.ListTargetDatabasesResponse, error)
	GetTargetDatabase(ctx context.Context, request datasafe.GetTargetDatabaseRequest) (datasafe.GetTargetDatabaseResponse, error)
	ChangeTargetDatabaseCompartment(ctx context.Context, request datasafe.ChangeTargetDatabaseCompartmentRequest) (datasafe.ChangeTargetDatabaseCompartmentResponse, error)
	RefreshTargetDatabase(ctx context.Context, request datasafe.RefreshTargetDatabaseRequest) (datasafe.RefreshTargetDatabaseResponse, error)
	UpdateTargetDatabase(ctx context.Context, request datasafe.UpdateTargetDatabaseRequest) (datasafe.UpdateTargetDatabaseResponse, error)
	ListAuditTrails(ctx context.Context, request datasafe.ListAuditTrailsRequest) (datasafe.ListAuditTrailsResponse, error)
	GetAuditTrail(ctx context.Context, request datasafe.GetAuditTrailRequest) (datasafe.GetAuditTrailResponse, error)
	GetAuditProfile(ctx context.Context, request datasafe.GetAuditProfileRequest) (datasafe.GetAuditProfileResponse, error)
	ChangeAuditProfileCompartment(ctx context.Context, request datasafe.ChangeAuditProfileCompartmentRequest) (datasafe.ChangeAuditProfileCompartmentResponse, error)
	ListSecurityAssessments(ctx context.Context, request datasafe.ListSecurityAssessmentsRequest) (datasafe.ListSecurityAssessmentsResponse, error)
	ChangeSecurityAssessmentCompartment(ctx context.Context, request datasafe.ChangeSecurityAssessmentCompartmentRequest) (datasafe.ChangeSecurityAssessmentCompartmentResponse, error)
	ListSecurityPolicies(ctx context.Context, request datasafe.ListSecurityPoliciesRequest) (datasafe.ListSecurityPoliciesResponse, error)
	ChangeSecurityPolicyCompartment(ctx context.Context, request datasafe.ChangeSecurityPolicyCompartmentRequest) (datasafe.ChangeSecurityPolicyCompartmentResponse, error)
	StartAuditTrail(ctx context.Context, request datasafe.StartAuditTrailRequest) (datasafe.StartAuditTrailResponse, error)
}

// DataSafeCatalog implements catalog.Catalog against the Data Safe API.
type DataSafeCatalog struct {
	client dataSafeAPI
	retry  common.RetryPolicy
}

// NewDataSafeCatalog builds a catalog backed by a real Data Safe client.
func NewDataSafeCatalog(provider common.ConfigurationProvider) (*DataSafeCatalog, error) {
	client, err := datasafe.NewDataSafeClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "building Data Safe client failed").
			WithHint("check the OCI config file and profile")
	}
	return &DataSafeCatalog{
		client: client,
		retry:  common.DefaultRetryPolicy(),
	}, nil
}

func (c *DataSafeCatalog) metadata() common.RequestMetadata {
	return common.RequestMetadata{RetryPolicy: &c.retry}
}

// ListTargets implements catalog.Catalog. The service filters by a single
// lifecycle state per call, so multi-state filtering happens client-side
// over one unfiltered listing.
func (c *DataSafeCatalog) ListTargets(ctx context.Context, compartmentID string, states []types.LifecycleState, subtree bool) ([]types.Target, error) {
	log := logging.GetLogger("oci.datasafe")

	var out []types.Target
	var page *string
	for {
		resp, err := c.client.ListTargetDatabases(ctx, datasafe.ListTargetDatabasesRequest{
			CompartmentId:          common.String(compartmentID),
			CompartmentIdInSubtree: common.Bool(subtree),
			Page:                   page,
			RequestMetadata:        c.metadata(),
		})
		if err != nil {
			return nil, wrapServiceError(err, "listing target databases failed")
		}

		for _, item := range resp.Items {
			t := types.Target{
				ID:             deref(item.Id),
				DisplayName:    deref(item.DisplayName),
				LifecycleState: types.LifecycleState(item.LifecycleState),
				CompartmentID:  deref(item.CompartmentId),
			}
			if !matchesState(t.LifecycleState, states) {
				continue
			}
			out = append(out, t)
		}

		if resp.OpcNextPage == nil {
			break
		}
		page = resp.OpcNextPage
	}

	log.Debug().Str("compartment", compartmentID).Int("targets", len(out)).Msg("Listed target databases")
	return out, nil
}

func matchesState(state types.LifecycleState, states []types.LifecycleState) bool {
	if len(states) == 0 {
		return true
	}
	for _, s := range states {
		if state == s {
			return true
		}
	}
	return false
}

// GetTarget implements catalog.Catalog.
func (c *DataSafeCatalog) GetTarget(ctx context.Context, id string) (types.Target, error) {
	resp, err := c.client.GetTargetDatabase(ctx, datasafe.GetTargetDatabaseRequest{
		TargetDatabaseId: common.String(id),
		RequestMetadata:  c.metadata(),
	})
	if err != nil {
		return types.Target{}, wrapServiceError(err, "reading target database failed")
	}
	return types.Target{
		ID:             deref(resp.Id),
		DisplayName:    deref(resp.DisplayName),
		LifecycleState: types.LifecycleState(resp.LifecycleState),
		CompartmentID:  deref(resp.CompartmentId),
	}, nil
}

// MoveTarget implements catalog.Catalog.
func (c *DataSafeCatalog) MoveTarget(ctx context.Context, id, destCompartmentID string) error {
	_, err := c.client.ChangeTargetDatabaseCompartment(ctx, datasafe.ChangeTargetDatabaseCompartmentRequest{
		TargetDatabaseId: common.String(id),
		ChangeTargetDatabaseCompartmentDetails: datasafe.ChangeTargetDatabaseCompartmentDetails{
			CompartmentId: common.String(destCompartmentID),
		},
		RequestMetadata: c.metadata(),
	})
	if err != nil {
		return wrapServiceError(err, "moving target database failed")
	}
	return nil
}

// RefreshTarget implements catalog.Catalog.
func (c *DataSafeCatalog) RefreshTarget(ctx context.Context, id string) error {
	_, err := c.client.RefreshTargetDatabase(ctx, datasafe.RefreshTargetDatabaseRequest{
		TargetDatabaseId: common.String(id),
		RequestMetadata:  c.metadata(),
	})
	if err != nil {
		return wrapServiceError(err, "refreshing target database failed")
	}
	return nil
}

// UpdateTargetTags implements catalog.Catalog. Tags merge into the
// existing freeform set; the update would otherwise drop tags it omits.
func (c *DataSafeCatalog) UpdateTargetTags(ctx context.Context, id string, freeformTags map[string]string) error {
	resp, err := c.client.GetTargetDatabase(ctx, datasafe.GetTargetDatabaseRequest{
		TargetDatabaseId: common.String(id),
		RequestMetadata:  c.metadata(),
	})
	if err != nil {
		return wrapServiceError(err, "reading target database before tagging failed")
	}

	merged := make(map[string]string, len(resp.FreeformTags)+len(freeformTags))
	for k, v := range resp.FreeformTags {
		merged[k] = v
	}
	for k, v := range freeformTags {
		merged[k] = v
	}

	_, err = c.client.UpdateTargetDatabase(ctx, datasafe.UpdateTargetDatabaseRequest{
		TargetDatabaseId: common.String(id),
		UpdateTargetDatabaseDetails: datasafe.UpdateTargetDatabaseDetails{
			FreeformTags: merged,
		},
		RequestMetadata: c.metadata(),
	})
	if err != nil {
		return wrapServiceError(err, "updating target database tags failed")
	}
	return nil
}

// ListDependents implements catalog.Catalog.
func (c *DataSafeCatalog) ListDependents(ctx context.Context, kind types.DependencyKind, compartmentID, targetID string) ([]types.DependencyResource, error) {
	switch kind {
	case types.KindAuditTrail:
		return c.listAuditTrails(ctx, compartmentID, targetID)
	case types.KindSecurityAssessment:
		return c.listSecurityAssessments(ctx, compartmentID, targetID)
	case types.KindSecurityPolicy:
		return c.listSecurityPolicies(ctx, compartmentID, targetID)
	default:
		return nil, errors.Newf(errors.ErrInternal, "unknown dependency kind %q", kind)
	}
}

func (c *DataSafeCatalog) listAuditTrails(ctx context.Context, compartmentID, targetID string) ([]types.DependencyResource, error) {
	var out []types.DependencyResource
	var page *string
	for {
		resp, err := c.client.ListAuditTrails(ctx, datasafe.ListAuditTrailsRequest{
			CompartmentId:   common.String(compartmentID),
			TargetId:        common.String(targetID),
			Page:            page,
			RequestMetadata: c.metadata(),
		})
		if err != nil {
			return nil, wrapServiceError(err, "listing audit trails failed")
		}
		for _, item := range resp.Items {
			out = append(out, types.DependencyResource{
				ID:            deref(item.Id),
				DisplayName:   deref(item.DisplayName),
				Kind:          types.KindAuditTrail,
				TargetID:      deref(item.TargetId),
				CompartmentID: deref(item.CompartmentId),
			})
		}
		if resp.OpcNextPage == nil {
			break
		}
		page = resp.OpcNextPage
	}
	return out, nil
}

func (c *DataSafeCatalog) listSecurityAssessments(ctx context.Context, compartmentID, targetID string) ([]types.DependencyResource, error) {
	var out []types.DependencyResource
	var page *string
	for {
		resp, err := c.client.ListSecurityAssessments(ctx, datasafe.ListSecurityAssessmentsRequest{
			CompartmentId:   common.String(compartmentID),
			TargetId:        common.String(targetID),
			Page:            page,
			RequestMetadata: c.metadata(),
		})
		if err != nil {
			return nil, wrapServiceError(err, "listing security assessments failed")
		}
		for _, item := range resp.Items {
			out = append(out, types.DependencyResource{
				ID:            deref(item.Id),
				DisplayName:   deref(item.DisplayName),
				Kind:          types.KindSecurityAssessment,
				TargetID:      targetID,
				CompartmentID: deref(item.CompartmentId),
			})
		}
		if resp.OpcNextPage == nil {
			break
		}
		page = resp.OpcNextPage
	}
	return out, nil
}

func (c *DataSafeCatalog) listSecurityPolicies(ctx context.Context, compartmentID, targetID string) ([]types.DependencyResource, error) {
	var out []types.DependencyResource
	var page *string
	for {
		resp, err := c.client.ListSecurityPolicies(ctx, datasafe.ListSecurityPoliciesRequest{
			CompartmentId:   common.String(compartmentID),
			Page:            page,
			RequestMetadata: c.metadata(),
		})
		if err != nil {
			return nil, wrapServiceError(err, "listing security policies failed")
		}
		for _, item := range resp.Items {
			out = append(out, types.DependencyResource{
				ID:            deref(item.Id),
				DisplayName:   deref(item.DisplayName),
				Kind:          types.KindSecurityPolicy,
				TargetID:      targetID,
				CompartmentID: deref(item.CompartmentId),
			})
		}
		if resp.OpcNextPage == nil {
			break
		}
		page = resp.OpcNextPage
	}
	return out, nil
}

// MoveDependent implements catalog.Catalog.
func (c *DataSafeCatalog) MoveDependent(ctx context.Context, kind types.DependencyKind, id, destCompartmentID string) error {
	var err error
	switch kind {
	case types.KindAuditTrail:
		return c.moveAuditCollection(ctx, id, destCompartmentID)
	case types.KindSecurityAssessment:
		_, err = c.client.ChangeSecurityAssessmentCompartment(ctx, datasafe.ChangeSecurityAssessmentCompartmentRequest{
			SecurityAssessmentId: common.String(id),
			ChangeSecurityAssessmentCompartmentDetails: datasafe.ChangeSecurityAssessmentCompartmentDetails{
				CompartmentId: common.String(destCompartmentID),
			},
			RequestMetadata: c.metadata(),
		})
	case types.KindSecurityPolicy:
		_, err = c.client.ChangeSecurityPolicyCompartment(ctx, datasafe.ChangeSecurityPolicyCompartmentRequest{
			SecurityPolicyId: common.String(id),
			ChangeSecurityPolicyCompartmentDetails: datasafe.ChangeSecurityPolicyCompartmentDetails{
				CompartmentId: common.String(destCompartmentID),
			},
			RequestMetadata: c.metadata(),
		})
	default:
		return errors.Newf(errors.ErrInternal, "unknown dependency kind %q", kind)
	}
	if err != nil {
		return wrapServiceError(err, "moving dependent resource failed")
	}
	return nil
}

// moveAuditCollection relocates the audit profile that owns the trail.
// The service has no per-trail compartment move: collection follows the
// profile, so when several trails share one profile the repeat calls
// short-circuit on the compartment check.
func (c *DataSafeCatalog) moveAuditCollection(ctx context.Context, trailID, destCompartmentID string) error {
	trail, err := c.client.GetAuditTrail(ctx, datasafe.GetAuditTrailRequest{
		AuditTrailId:    common.String(trailID),
		RequestMetadata: c.metadata(),
	})
	if err != nil {
		return wrapServiceError(err, "reading audit trail failed")
	}
	profileID := deref(trail.AuditProfileId)
	if profileID == "" {
		return errors.Newf(errors.ErrCatalogCall,
			"audit trail %s has no owning audit profile", trailID)
	}

	profile, err := c.client.GetAuditProfile(ctx, datasafe.GetAuditProfileRequest{
		AuditProfileId:  common.String(profileID),
		RequestMetadata: c.metadata(),
	})
	if err != nil {
		return wrapServiceError(err, "reading audit profile failed")
	}
	if deref(profile.CompartmentId) == destCompartmentID {
		return nil
	}

	_, err = c.client.ChangeAuditProfileCompartment(ctx, datasafe.ChangeAuditProfileCompartmentRequest{
		AuditProfileId: common.String(profileID),
		ChangeAuditProfileCompartmentDetails: datasafe.ChangeAuditProfileCompartmentDetails{
			CompartmentId: common.String(destCompartmentID),
		},
		RequestMetadata: c.metadata(),
	})
	if err != nil {
		return wrapServiceError(err, "moving audit profile failed")
	}
	return nil
}

// StartAuditTrail implements catalog.Catalog. A trail already collecting
// surfaces as catalog.ErrAlreadyStarted so callers can skip instead of
// fail.
func (c *DataSafeCatalog) StartAuditTrail(ctx context.Context, trailID string, startTime time.Time) error {
	_, err := c.client.StartAuditTrail(ctx, datasafe.StartAuditTrailRequest{
		AuditTrailId: common.String(trailID),
		StartAuditTrailDetails: datasafe.StartAuditTrailDetails{
			AuditCollectionStartTime: &common.SDKTime{Time: startTime},
		},
		RequestMetadata: c.metadata(),
	})
	if err != nil {
		if isAlreadyStarted(err) {
			return catalog.ErrAlreadyStarted
		}
		return wrapServiceError(err, "starting audit trail failed")
	}
	return nil
}

// isAlreadyStarted recognizes the conflict the service raises when a
// trail is already collecting.
func isAlreadyStarted(err error) bool {
	if svcErr, ok := common.IsServiceError(err); ok && svcErr.GetHTTPStatusCode() == 409 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already") && strings.Contains(msg, "start")
}

// wrapServiceError classifies SDK failures: 404s become ErrNotFound,
// everything else ErrCatalogCall.
func wrapServiceError(err error, msg string) error {
	if svcErr, ok := common.IsServiceError(err); ok && svcErr.GetHTTPStatusCode() == 404 {
		return errors.Wrap(err, errors.ErrNotFound, msg)
	}
	return errors.Wrap(err, errors.ErrCatalogCall, msg)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
