package biz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/objects"
	"github.com/looplj/tenanthub/internal/server/db"
)

type RoleServiceParams struct {
	fx.In

	DB *db.DB
}

func NewRoleService(params RoleServiceParams) *RoleService {
	return &RoleService{
		AbstractService: &AbstractService{db: params.DB},
	}
}

// RoleService reads the role catalog. Roles are system-scoped reference data
// shared by all organizations and seeded by migration.
type RoleService struct {
	*AbstractService
}

func (s *RoleService) GetRoleByID(ctx context.Context, id int64) (*objects.Role, error) {
	query := fmt.Sprintf(`%s WHERE id = %s`, selectRole, s.db.Ph(1))

	return s.scanRole(s.db.QueryRowContext(ctx, query, id))
}

func (s *RoleService) GetRoleByCode(ctx context.Context, code string) (*objects.Role, error) {
	query := fmt.Sprintf(`%s WHERE code = %s`, selectRole, s.db.Ph(1))

	return s.scanRole(s.db.QueryRowContext(ctx, query, code))
}

func (s *RoleService) ListRoles(ctx context.Context) ([]*objects.Role, error) {
	rows, err := s.db.QueryContext(ctx, selectRole+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*objects.Role

	for rows.Next() {
		role, err := s.scanRole(rows)
		if err != nil {
			return nil, err
		}

		roles = append(roles, role)
	}

	return roles, rows.Err()
}

const selectRole = `SELECT id, code, name, scopes FROM roles`

func (s *RoleService) scanRole(row rowScanner) (*objects.Role, error) {
	var (
		role       objects.Role
		scopesJSON string
	)

	err := row.Scan(&role.ID, &role.Code, &role.Name, &scopesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(scopesJSON), &role.Scopes); err != nil {
		return nil, fmt.Errorf("failed to decode scopes of role %d: %w", role.ID, err)
	}

	return &role, nil
}
