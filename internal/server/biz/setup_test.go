package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/looplj/tenanthub/internal/server/db"
	"github.com/looplj/tenanthub/internal/tenancy"
)

type testServices struct {
	DB            *db.DB
	Guards        *Guards
	Auth          *AuthService
	Users         *UserService
	Roles         *RoleService
	Organizations *OrganizationService
	Memberships   *MembershipService
	Projects      *ProjectService
	Scoping       *ScopingService
}

func setupServices(t *testing.T) *testServices {
	t.Helper()

	tenancy.Configure(tenancy.Config{Environment: tenancy.EnvTest})

	database, err := db.Open(db.Config{Dialect: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})

	require.NoError(t, database.Migrate(context.Background()))

	guards := NewGuards(database)
	require.NoError(t, guards.Validate(context.Background()))

	users := NewUserService(UserServiceParams{DB: database})
	roles := NewRoleService(RoleServiceParams{DB: database})
	memberships := NewMembershipService(MembershipServiceParams{DB: database, Guards: guards})
	projects := NewProjectService(ProjectServiceParams{DB: database, Guards: guards})
	organizations := NewOrganizationService(OrganizationServiceParams{
		DB:                database,
		RoleService:       roles,
		MembershipService: memberships,
	})
	scoping := NewScopingService(ScopingServiceParams{
		OrganizationService: organizations,
		MembershipService:   memberships,
		ProjectService:      projects,
	})

	auth, err := NewAuthService(AuthServiceParams{
		Config:      AuthConfig{},
		DB:          database,
		UserService: users,
	})
	require.NoError(t, err)

	return &testServices{
		DB:            database,
		Guards:        guards,
		Auth:          auth,
		Users:         users,
		Roles:         roles,
		Organizations: organizations,
		Memberships:   memberships,
		Projects:      projects,
		Scoping:       scoping,
	}
}
