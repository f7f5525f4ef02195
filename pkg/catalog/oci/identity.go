package oci

import (
	"context"
	"strings"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/identity"

	"github.com/dsfleet/dsfleet/pkg/compartments"
	"github.com/dsfleet/dsfleet/pkg/errors"
	"github.com/dsfleet/dsfleet/pkg/types"
)

func isTenancyID(id string) bool {
	return strings.HasPrefix(id, types.TenancyIDPrefix)
}

// IdentityAdapter implements compartments.IdentityAPI against the OCI
// Identity service.
type IdentityAdapter struct {
	client identity.IdentityClient
	retry  common.RetryPolicy
}

// NewIdentityAdapter builds the adapter from the same provider the Data
// Safe client uses.
func NewIdentityAdapter(provider common.ConfigurationProvider) (*IdentityAdapter, error) {
	client, err := identity.NewIdentityClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "building Identity client failed").
			WithHint("check the OCI config file and profile")
	}
	return &IdentityAdapter{
		client: client,
		retry:  common.DefaultRetryPolicy(),
	}, nil
}

// ListCompartments implements compartments.IdentityAPI: every active
// compartment in the subtree under rootID, rootID excluded.
func (a *IdentityAdapter) ListCompartments(ctx context.Context, rootID string) ([]compartments.Compartment, error) {
	var out []compartments.Compartment
	var page *string
	for {
		resp, err := a.client.ListCompartments(ctx, identity.ListCompartmentsRequest{
			CompartmentId:          common.String(rootID),
			CompartmentIdInSubtree: common.Bool(true),
			LifecycleState:         identity.CompartmentLifecycleStateActive,
			Page:                   page,
			RequestMetadata:        common.RequestMetadata{RetryPolicy: &a.retry},
		})
		if err != nil {
			return nil, wrapServiceError(err, "listing compartments failed")
		}
		for _, item := range resp.Items {
			out = append(out, compartments.Compartment{
				ID:       deref(item.Id),
				Name:     deref(item.Name),
				ParentID: deref(item.CompartmentId),
			})
		}
		if resp.OpcNextPage == nil {
			break
		}
		page = resp.OpcNextPage
	}
	return out, nil
}

// GetCompartment implements compartments.IdentityAPI. Tenancy roots are
// valid scopes but live behind a different read.
func (a *IdentityAdapter) GetCompartment(ctx context.Context, id string) (compartments.Compartment, error) {
	meta := common.RequestMetadata{RetryPolicy: &a.retry}

	if isTenancyID(id) {
		resp, err := a.client.GetTenancy(ctx, identity.GetTenancyRequest{
			TenancyId:       common.String(id),
			RequestMetadata: meta,
		})
		if err != nil {
			return compartments.Compartment{}, wrapServiceError(err, "reading tenancy failed")
		}
		return compartments.Compartment{
			ID:   deref(resp.Id),
			Name: deref(resp.Name),
		}, nil
	}

	resp, err := a.client.GetCompartment(ctx, identity.GetCompartmentRequest{
		CompartmentId:   common.String(id),
		RequestMetadata: meta,
	})
	if err != nil {
		return compartments.Compartment{}, wrapServiceError(err, "reading compartment failed")
	}
	return compartments.Compartment{
		ID:       deref(resp.Id),
		Name:     deref(resp.Name),
		ParentID: deref(resp.CompartmentId),
	}, nil
}
