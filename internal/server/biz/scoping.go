package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/objects"
	"github.com/looplj/tenanthub/internal/tenancy"
)

type ScopingServiceParams struct {
	fx.In

	OrganizationService *OrganizationService
	MembershipService   *MembershipService
	ProjectService      *ProjectService
}

func NewScopingService(params ScopingServiceParams) *ScopingService {
	return &ScopingService{
		OrganizationService: params.OrganizationService,
		MembershipService:   params.MembershipService,
		ProjectService:      params.ProjectService,
	}
}

// ScopingService exposes tenancy diagnostics: the entity classification
// summary and per-tenant record counts.
type ScopingService struct {
	OrganizationService *OrganizationService
	MembershipService   *MembershipService
	ProjectService      *ProjectService
}

// Summary returns the registered entities per classification.
func (s *ScopingService) Summary() tenancy.Summary {
	return tenancy.DefaultRegistry().Summary()
}

// TenantStats is the per-organization record count report.
type TenantStats struct {
	OrganizationID int64  `json:"organizationID"`
	Slug           string `json:"slug"`
	Memberships    int    `json:"memberships"`
	Projects       int    `json:"projects"`
}

// CollectTenantStats counts the tenant-scoped records of every organization
// by iterating the tenants, one scoped count per entity per tenant.
func (s *ScopingService) CollectTenantStats(ctx context.Context) ([]TenantStats, error) {
	var stats []TenantStats

	err := tenancy.ForEachTenant(ctx, s.OrganizationService.EnumerateOrganizations, "tenant-stats", func(tenantCtx context.Context, org objects.Organization) error {
		memberships, err := s.MembershipService.CountScoped(tenantCtx)
		if err != nil {
			return err
		}

		projects, err := s.ProjectService.CountScoped(tenantCtx)
		if err != nil {
			return err
		}

		stats = append(stats, TenantStats{
			OrganizationID: org.ID,
			Slug:           org.Slug,
			Memberships:    memberships,
			Projects:       projects,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// Totals is the cross-tenant record count report.
type Totals struct {
	Organizations int `json:"organizations"`
	Memberships   int `json:"memberships"`
	Projects      int `json:"projects"`
}

// CollectTotals counts all records across tenants under a readonly bypass.
func (s *ScopingService) CollectTotals(ctx context.Context) (Totals, error) {
	return tenancy.RunUnscopedReadonly(ctx, "scoping-totals", func(bypassCtx context.Context) (Totals, error) {
		orgs, err := s.OrganizationService.EnumerateOrganizations(bypassCtx)
		if err != nil {
			return Totals{}, err
		}

		memberships, err := s.MembershipService.CountAll(bypassCtx)
		if err != nil {
			return Totals{}, err
		}

		projects, err := s.ProjectService.CountAll(bypassCtx)
		if err != nil {
			return Totals{}, err
		}

		return Totals{
			Organizations: len(orgs),
			Memberships:   memberships,
			Projects:      projects,
		}, nil
	})
}
