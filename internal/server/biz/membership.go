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

type MembershipServiceParams struct {
	fx.In

	DB     *db.DB
	Guards *Guards
}

func NewMembershipService(params MembershipServiceParams) *MembershipService {
	return &MembershipService{
		AbstractService: &AbstractService{db: params.DB},
		guard:           params.Guards.Memberships,
	}
}

// MembershipService manages the tenant-scoped link between users and
// organizations. Every read is filtered through the scoping guard and every
// write assigns the ambient tenant.
type MembershipService struct {
	*AbstractService

	guard *tenancy.Guard
}

type CreateMembershipInput struct {
	UserID int64
	RoleID int64

	// OrganizationID overrides the ambient tenant. Only bypassed callers
	// provide it.
	OrganizationID *int64
}

func (s *MembershipService) CreateMembership(ctx context.Context, input CreateMembershipInput) (*objects.Membership, error) {
	if err := s.guard.CheckMutable(ctx); err != nil {
		return nil, err
	}

	organizationID, err := s.guard.CreateTenantID(ctx, input.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCurrentOrganization, err)
	}

	query := fmt.Sprintf(
		`INSERT INTO memberships (organization_id, user_id, role_id) VALUES (%s, %s, %s)`,
		s.db.Ph(1), s.db.Ph(2), s.db.Ph(3),
	)

	id, err := s.insertReturningID(ctx, query, organizationID, input.UserID, input.RoleID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}

		log.Error(ctx, "failed to create membership", log.Cause(err))

		return nil, ErrInternal
	}

	log.Info(ctx, "membership created",
		log.Int64("membership_id", id),
		log.Int64("organization_id", organizationID),
		log.Int64("user_id", input.UserID),
	)

	return s.getMembershipUnscoped(ctx, id)
}

func (s *MembershipService) GetMembership(ctx context.Context, id int64) (*objects.Membership, error) {
	scope := s.guard.Scope(ctx, 2)

	query := fmt.Sprintf(`%s WHERE id = %s AND %s`, selectMembership, s.db.Ph(1), scope.Expr)

	args := append([]any{id}, scope.Args...)

	return s.scanMembership(s.db.QueryRowContext(ctx, query, args...))
}

func (s *MembershipService) ListMemberships(ctx context.Context) ([]*objects.Membership, error) {
	scope := s.guard.Scope(ctx, 1)

	query := fmt.Sprintf(`%s WHERE %s ORDER BY id`, selectMembership, scope.Expr)

	rows, err := s.db.QueryContext(ctx, query, scope.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*objects.Membership

	for rows.Next() {
		membership, err := s.scanMembership(rows)
		if err != nil {
			return nil, err
		}

		memberships = append(memberships, membership)
	}

	return memberships, rows.Err()
}

// ListMembershipInfos returns the scoped memberships with the joined user and
// role, for transport.
func (s *MembershipService) ListMembershipInfos(ctx context.Context) ([]*objects.MembershipInfo, error) {
	scope := s.guard.Scope(ctx, 1)

	query := fmt.Sprintf(`
		SELECT m.id, m.organization_id, o.name, m.user_id, u.email, r.code
		FROM memberships m
		JOIN organizations o ON o.id = m.organization_id
		JOIN users u ON u.id = m.user_id
		JOIN roles r ON r.id = m.role_id
		WHERE %s
		ORDER BY m.id`, scope.Expr)

	rows, err := s.db.QueryContext(ctx, query, scope.Args...)
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
}

// UpdateMembershipRole changes the role of an existing membership. The
// organization of a membership is immutable; only the role can move.
func (s *MembershipService) UpdateMembershipRole(ctx context.Context, id, roleID int64) (*objects.Membership, error) {
	if err := s.guard.CheckMutable(ctx); err != nil {
		return nil, err
	}

	existing, err := s.GetMembership(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.guard.RequireAccess(ctx, existing.OrganizationID); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`UPDATE memberships SET role_id = %s, updated_at = CURRENT_TIMESTAMP WHERE id = %s`,
		s.db.Ph(1), s.db.Ph(2),
	)

	if _, err := s.db.ExecContext(ctx, query, roleID, id); err != nil {
		log.Error(ctx, "failed to update membership", log.Cause(err))
		return nil, ErrInternal
	}

	return s.GetMembership(ctx, id)
}

func (s *MembershipService) DeleteMembership(ctx context.Context, id int64) error {
	if err := s.guard.CheckMutable(ctx); err != nil {
		return err
	}

	existing, err := s.GetMembership(ctx, id)
	if err != nil {
		return err
	}

	if err := s.guard.RequireAccess(ctx, existing.OrganizationID); err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM memberships WHERE id = %s`, s.db.Ph(1))

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		log.Error(ctx, "failed to delete membership", log.Cause(err))
		return ErrInternal
	}

	log.Info(ctx, "membership deleted", log.Int64("membership_id", id))

	return nil
}

// GetMembershipForUser checks whether the user belongs to the organization.
// It backs tenant selection, which happens before any ambient tenant exists,
// so the lookup runs under a system bypass.
func (s *MembershipService) GetMembershipForUser(ctx context.Context, organizationID, userID int64) (*objects.Membership, error) {
	return tenancy.RunWithSystemBypass(ctx, "membership-check", func(bypassCtx context.Context) (*objects.Membership, error) {
		query := fmt.Sprintf(
			`%s WHERE organization_id = %s AND user_id = %s`,
			selectMembership, s.db.Ph(1), s.db.Ph(2),
		)

		membership, err := s.scanMembership(s.db.QueryRowContext(bypassCtx, query, organizationID, userID))
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotOrganizationMember
		}

		return membership, err
	})
}

// CountAll counts memberships across every tenant, for diagnostics. It
// refuses outside an active bypass.
func (s *MembershipService) CountAll(ctx context.Context) (int, error) {
	if err := s.guard.RequireBypass(ctx); err != nil {
		return 0, err
	}

	var count int

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memberships`).Scan(&count)

	return count, err
}

// CountScoped counts the memberships visible under the current context.
func (s *MembershipService) CountScoped(ctx context.Context) (int, error) {
	scope := s.guard.Scope(ctx, 1)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM memberships WHERE %s`, scope.Expr)

	var count int

	err := s.db.QueryRowContext(ctx, query, scope.Args...).Scan(&count)

	return count, err
}

// getMembershipUnscoped reads by primary key without the scope filter. Only
// used right after an insert, where the id is trusted.
func (s *MembershipService) getMembershipUnscoped(ctx context.Context, id int64) (*objects.Membership, error) {
	query := fmt.Sprintf(`%s WHERE id = %s`, selectMembership, s.db.Ph(1))

	return s.scanMembership(s.db.QueryRowContext(ctx, query, id))
}

const selectMembership = `SELECT id, organization_id, user_id, role_id, created_at, updated_at FROM memberships`

func (s *MembershipService) scanMembership(row rowScanner) (*objects.Membership, error) {
	var membership objects.Membership

	err := row.Scan(
		&membership.ID, &membership.OrganizationID, &membership.UserID,
		&membership.RoleID, &membership.CreatedAt, &membership.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &membership, nil
}
