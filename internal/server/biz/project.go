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

type ProjectServiceParams struct {
	fx.In

	DB     *db.DB
	Guards *Guards
}

func NewProjectService(params ProjectServiceParams) *ProjectService {
	return &ProjectService{
		AbstractService: &AbstractService{db: params.DB},
		guard:           params.Guards.Projects,
	}
}

// ProjectService manages the tenant-scoped project entities.
type ProjectService struct {
	*AbstractService

	guard *tenancy.Guard
}

type CreateProjectInput struct {
	Name        string
	Description string

	// OrganizationID overrides the ambient tenant. Only bypassed callers
	// provide it.
	OrganizationID *int64
}

func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*objects.Project, error) {
	if err := s.guard.CheckMutable(ctx); err != nil {
		return nil, err
	}

	organizationID, err := s.guard.CreateTenantID(ctx, input.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCurrentOrganization, err)
	}

	query := fmt.Sprintf(
		`INSERT INTO projects (organization_id, name, description) VALUES (%s, %s, %s)`,
		s.db.Ph(1), s.db.Ph(2), s.db.Ph(3),
	)

	id, err := s.insertReturningID(ctx, query, organizationID, input.Name, input.Description)
	if err != nil {
		log.Error(ctx, "failed to create project", log.Cause(err))
		return nil, ErrInternal
	}

	log.Info(ctx, "project created",
		log.Int64("project_id", id),
		log.Int64("organization_id", organizationID),
	)

	return s.getProjectUnscoped(ctx, id)
}

func (s *ProjectService) GetProject(ctx context.Context, id int64) (*objects.Project, error) {
	scope := s.guard.Scope(ctx, 2)

	query := fmt.Sprintf(`%s WHERE id = %s AND %s`, selectProject, s.db.Ph(1), scope.Expr)

	args := append([]any{id}, scope.Args...)

	return s.scanProject(s.db.QueryRowContext(ctx, query, args...))
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]*objects.Project, error) {
	scope := s.guard.Scope(ctx, 1)

	query := fmt.Sprintf(`%s WHERE %s ORDER BY id`, selectProject, scope.Expr)

	rows, err := s.db.QueryContext(ctx, query, scope.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*objects.Project

	for rows.Next() {
		project, err := s.scanProject(rows)
		if err != nil {
			return nil, err
		}

		projects = append(projects, project)
	}

	return projects, rows.Err()
}

type UpdateProjectInput struct {
	Name        *string
	Description *string

	// OrganizationID is rejected when it differs from the record's: the
	// tenant of a record is immutable.
	OrganizationID *int64
}

func (s *ProjectService) UpdateProject(ctx context.Context, id int64, input UpdateProjectInput) (*objects.Project, error) {
	if err := s.guard.CheckMutable(ctx); err != nil {
		return nil, err
	}

	existing, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.guard.RequireAccess(ctx, existing.OrganizationID); err != nil {
		return nil, err
	}

	if input.OrganizationID != nil {
		if err := s.guard.CheckImmutable(existing.OrganizationID, *input.OrganizationID); err != nil {
			return nil, ErrOrganizationImmutable
		}
	}

	name := existing.Name
	if input.Name != nil {
		name = *input.Name
	}

	description := existing.Description
	if input.Description != nil {
		description = *input.Description
	}

	query := fmt.Sprintf(
		`UPDATE projects SET name = %s, description = %s, updated_at = CURRENT_TIMESTAMP WHERE id = %s`,
		s.db.Ph(1), s.db.Ph(2), s.db.Ph(3),
	)

	if _, err := s.db.ExecContext(ctx, query, name, description, id); err != nil {
		log.Error(ctx, "failed to update project", log.Cause(err))
		return nil, ErrInternal
	}

	return s.GetProject(ctx, id)
}

func (s *ProjectService) DeleteProject(ctx context.Context, id int64) error {
	if err := s.guard.CheckMutable(ctx); err != nil {
		return err
	}

	existing, err := s.GetProject(ctx, id)
	if err != nil {
		return err
	}

	if err := s.guard.RequireAccess(ctx, existing.OrganizationID); err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM projects WHERE id = %s`, s.db.Ph(1))

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		log.Error(ctx, "failed to delete project", log.Cause(err))
		return ErrInternal
	}

	log.Info(ctx, "project deleted", log.Int64("project_id", id))

	return nil
}

// CountAll counts projects across every tenant, for diagnostics. It refuses
// outside an active bypass.
func (s *ProjectService) CountAll(ctx context.Context) (int, error) {
	if err := s.guard.RequireBypass(ctx); err != nil {
		return 0, err
	}

	var count int

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count)

	return count, err
}

// CountScoped counts the projects visible under the current context.
func (s *ProjectService) CountScoped(ctx context.Context) (int, error) {
	scope := s.guard.Scope(ctx, 1)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM projects WHERE %s`, scope.Expr)

	var count int

	err := s.db.QueryRowContext(ctx, query, scope.Args...).Scan(&count)

	return count, err
}

func (s *ProjectService) getProjectUnscoped(ctx context.Context, id int64) (*objects.Project, error) {
	query := fmt.Sprintf(`%s WHERE id = %s`, selectProject, s.db.Ph(1))

	return s.scanProject(s.db.QueryRowContext(ctx, query, id))
}

const selectProject = `SELECT id, organization_id, name, description, created_at, updated_at FROM projects`

func (s *ProjectService) scanProject(row rowScanner) (*objects.Project, error) {
	var project objects.Project

	err := row.Scan(
		&project.ID, &project.OrganizationID, &project.Name,
		&project.Description, &project.CreatedAt, &project.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &project, nil
}
