package biz

import (
	"context"

	"github.com/looplj/tenanthub/internal/server/db"
	"github.com/looplj/tenanthub/internal/tenancy"
)

// Guards holds one scoping guard per persisted entity. Constructed once at
// boot; Validate must pass before the server accepts traffic.
type Guards struct {
	Organizations *tenancy.Guard
	Users         *tenancy.Guard
	Roles         *tenancy.Guard
	Memberships   *tenancy.Guard
	Projects      *tenancy.Guard
}

func NewGuards(database *db.DB) *Guards {
	return &Guards{
		Organizations: tenancy.NewGuard(database.DB, database.Dialect, "organizations", tenancy.SystemScopedEntity()),
		Users:         tenancy.NewGuard(database.DB, database.Dialect, "users", tenancy.SystemScopedEntity()),
		Roles:         tenancy.NewGuard(database.DB, database.Dialect, "roles", tenancy.SystemScopedEntity()),
		Memberships:   tenancy.NewGuard(database.DB, database.Dialect, "memberships"),
		Projects:      tenancy.NewGuard(database.DB, database.Dialect, "projects"),
	}
}

// Validate checks every guarded entity against the live schema and registers
// it. Any error here must halt application boot.
func (g *Guards) Validate(ctx context.Context) error {
	for _, guard := range []*tenancy.Guard{
		g.Organizations,
		g.Users,
		g.Roles,
		g.Memberships,
		g.Projects,
	} {
		if err := guard.ValidateCompatibility(ctx); err != nil {
			return err
		}
	}

	return nil
}
