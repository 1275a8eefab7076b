package biz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/log"
	"github.com/looplj/tenanthub/internal/objects"
	"github.com/looplj/tenanthub/internal/server/db"
	"github.com/looplj/tenanthub/internal/tenancy"
)

type OrganizationServiceParams struct {
	fx.In

	DB                *db.DB
	RoleService       *RoleService
	MembershipService *MembershipService
}

func NewOrganizationService(params OrganizationServiceParams) *OrganizationService {
	return &OrganizationService{
		AbstractService:   &AbstractService{db: params.DB},
		RoleService:       params.RoleService,
		MembershipService: params.MembershipService,
	}
}

// OrganizationService manages the tenant entities themselves. The
// organizations table is system-scoped: it is the parent of all tenant-scoped
// data and cannot be filtered by itself.
type OrganizationService struct {
	*AbstractService

	RoleService       *RoleService
	MembershipService *MembershipService
}

type CreateOrganizationInput struct {
	Name        string
	Slug        string
	OwnerUserID int64
}

// CreateOrganization creates the organization and its owner membership. The
// membership insert runs under the new tenant so the foreign key is assigned
// from the ambient tenant, same as any other tenant-scoped write.
func (s *OrganizationService) CreateOrganization(ctx context.Context, input CreateOrganizationInput) (*objects.Organization, error) {
	if existing, err := s.GetOrganizationBySlug(ctx, input.Slug); err == nil && existing != nil {
		return nil, ErrSlugTaken
	}

	ownerRole, err := s.RoleService.GetRoleByCode(ctx, "owner")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owner role: %w", err)
	}

	query := fmt.Sprintf(
		`INSERT INTO organizations (name, slug) VALUES (%s, %s)`,
		s.db.Ph(1), s.db.Ph(2),
	)

	id, err := s.insertReturningID(ctx, query, input.Name, input.Slug)
	if err != nil {
		log.Error(ctx, "failed to create organization", log.Cause(err))
		return nil, ErrInternal
	}

	_, err = tenancy.RunAsTenant(ctx, id, "organization-bootstrap", func(tenantCtx context.Context) (*objects.Membership, error) {
		return s.MembershipService.CreateMembership(tenantCtx, CreateMembershipInput{
			UserID: input.OwnerUserID,
			RoleID: ownerRole.ID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	log.Info(ctx, "organization created",
		log.Int64("organization_id", id),
		log.String("slug", input.Slug),
	)

	return s.GetOrganization(ctx, id)
}

func (s *OrganizationService) GetOrganization(ctx context.Context, id int64) (*objects.Organization, error) {
	query := fmt.Sprintf(`%s WHERE id = %s`, selectOrganization, s.db.Ph(1))

	return s.scanOrganization(s.db.QueryRowContext(ctx, query, id))
}

func (s *OrganizationService) GetOrganizationBySlug(ctx context.Context, slug string) (*objects.Organization, error) {
	query := fmt.Sprintf(`%s WHERE slug = %s`, selectOrganization, s.db.Ph(1))

	return s.scanOrganization(s.db.QueryRowContext(ctx, query, slug))
}

type UpdateOrganizationInput struct {
	Name *string
}

func (s *OrganizationService) UpdateOrganization(ctx context.Context, id int64, input UpdateOrganizationInput) (*objects.Organization, error) {
	if input.Name != nil {
		query := fmt.Sprintf(
			`UPDATE organizations SET name = %s, updated_at = CURRENT_TIMESTAMP WHERE id = %s`,
			s.db.Ph(1), s.db.Ph(2),
		)

		if _, err := s.db.ExecContext(ctx, query, *input.Name, id); err != nil {
			log.Error(ctx, "failed to update organization", log.Cause(err))
			return nil, ErrInternal
		}
	}

	return s.GetOrganization(ctx, id)
}

// ListOrganizationsForUser returns the organizations the user is a member of,
// with the role of each membership. Listing crosses tenants: this is the one
// read a signed-in user performs before any tenant is selected, so it runs
// under a system bypass.
func (s *OrganizationService) ListOrganizationsForUser(ctx context.Context, userID int64) ([]*objects.MembershipInfo, error) {
	return tenancy.RunWithSystemBypass(ctx, "user-organizations", func(bypassCtx context.Context) ([]*objects.MembershipInfo, error) {
		query := fmt.Sprintf(`
			SELECT m.id, m.organization_id, o.name, m.user_id, u.email, r.code
			FROM memberships m
			JOIN organizations o ON o.id = m.organization_id
			JOIN users u ON u.id = m.user_id
			JOIN roles r ON r.id = m.role_id
			WHERE m.user_id = %s AND o.is_active
			ORDER BY m.id`, s.db.Ph(1))

		rows, err := s.db.QueryContext(bypassCtx, query, userID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var infos []*objects.MembershipInfo

		for rows.Next() {
			var info objects.MembershipInfo

			err := rows.Scan(
				&info.ID, &info.OrganizationID, &info.OrganizationName,
				&info.UserID, &info.UserEmail, &info.RoleCode,
			)
			if err != nil {
				return nil, err
			}

			infos = append(infos, &info)
		}

		return infos, rows.Err()
	})
}

// EnumerateOrganizations returns every active organization. It backs
// ForEachTenant iterations and the organization resolver.
func (s *OrganizationService) EnumerateOrganizations(ctx context.Context) ([]objects.Organization, error) {
	rows, err := s.db.QueryContext(ctx, selectOrganization+` WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []objects.Organization

	for rows.Next() {
		org, err := s.scanOrganization(rows)
		if err != nil {
			return nil, err
		}

		orgs = append(orgs, *org)
	}

	return orgs, rows.Err()
}

// Lookup resolves one organization by id. Wired into the tenancy resolver.
func (s *OrganizationService) Lookup(ctx context.Context, id int64) (*objects.Organization, error) {
	org, err := s.GetOrganization(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}

	return org, err
}

const selectOrganization = `SELECT id, name, slug, is_active, created_at, updated_at FROM organizations`

func (s *OrganizationService) scanOrganization(row rowScanner) (*objects.Organization, error) {
	var org objects.Organization

	err := row.Scan(&org.ID, &org.Name, &org.Slug, &org.IsActive, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &org, nil
}
