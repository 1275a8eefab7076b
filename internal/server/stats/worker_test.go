package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/looplj/tenanthub/internal/authz"
	"github.com/looplj/tenanthub/internal/server/biz"
	"github.com/looplj/tenanthub/internal/server/db"
	"github.com/looplj/tenanthub/internal/tenancy"
)

func setupScoping(t *testing.T) *biz.ScopingService {
	t.Helper()

	tenancy.Configure(tenancy.Config{Environment: tenancy.EnvTest})

	database, err := db.Open(db.Config{Dialect: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})

	require.NoError(t, database.Migrate(context.Background()))

	guards := biz.NewGuards(database)
	require.NoError(t, guards.Validate(context.Background()))

	users := biz.NewUserService(biz.UserServiceParams{DB: database})
	roles := biz.NewRoleService(biz.RoleServiceParams{DB: database})
	memberships := biz.NewMembershipService(biz.MembershipServiceParams{DB: database, Guards: guards})
	organizations := biz.NewOrganizationService(biz.OrganizationServiceParams{
		DB:                database,
		RoleService:       roles,
		MembershipService: memberships,
	})
	projects := biz.NewProjectService(biz.ProjectServiceParams{DB: database, Guards: guards})

	user, err := users.CreateUser(context.Background(), biz.CreateUserInput{
		Email:    "alice@example.com",
		Password: "password-123",
	})
	require.NoError(t, err)

	_, err = organizations.CreateOrganization(context.Background(), biz.CreateOrganizationInput{
		Name: "Acme", Slug: "acme", OwnerUserID: user.ID,
	})
	require.NoError(t, err)

	return biz.NewScopingService(biz.ScopingServiceParams{
		OrganizationService: organizations,
		MembershipService:   memberships,
		ProjectService:      projects,
	})
}

func TestWorkerCollect(t *testing.T) {
	scoping := setupScoping(t)

	worker := NewWorker(Params{
		Config:         Config{Enabled: true, CRON: "0 * * * * *"},
		ScopingService: scoping,
	})
	t.Cleanup(func() {
		_ = worker.Stop(context.Background())
	})

	// The sweep runs under a system principal and must not error even
	// though no request scope exists.
	worker.collect(authz.NewSystemContext(context.Background()))
}

func TestWorkerDisabled(t *testing.T) {
	scoping := setupScoping(t)

	worker := NewWorker(Params{
		Config:         Config{Enabled: false},
		ScopingService: scoping,
	})

	require.NoError(t, worker.Start(context.Background()))
	require.Nil(t, worker.CancelFunc)
	require.NoError(t, worker.Stop(context.Background()))
}
