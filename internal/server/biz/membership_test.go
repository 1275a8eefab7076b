package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/tenanthub/internal/objects"
	"github.com/looplj/tenanthub/internal/tenancy"
)

// setupTwoOrgs creates two organizations with one extra member each.
func setupTwoOrgs(t *testing.T, svc *testServices) (acme, globex *objects.Organization) {
	t.Helper()

	alice := createTestUser(t, svc, "alice@example.com")
	bob := createTestUser(t, svc, "bob@example.com")

	var err error

	acme, err = svc.Organizations.CreateOrganization(context.Background(), CreateOrganizationInput{
		Name: "Acme", Slug: "acme", OwnerUserID: alice.ID,
	})
	require.NoError(t, err)

	globex, err = svc.Organizations.CreateOrganization(context.Background(), CreateOrganizationInput{
		Name: "Globex", Slug: "globex", OwnerUserID: bob.ID,
	})
	require.NoError(t, err)

	return acme, globex
}

func TestCreateMembership_AssignsAmbientTenant(t *testing.T) {
	svc := setupServices(t)
	acme, _ := setupTwoOrgs(t, svc)

	carol := createTestUser(t, svc, "carol@example.com")

	memberRole, err := svc.Roles.GetRoleByCode(context.Background(), "member")
	require.NoError(t, err)

	membership, err := tenancy.RunWithTenant(context.Background(), acme.ID, func(ctx context.Context) (*objects.Membership, error) {
		return svc.Memberships.CreateMembership(ctx, CreateMembershipInput{
			UserID: carol.ID,
			RoleID: memberRole.ID,
		})
	})
	require.NoError(t, err)
	assert.Equal(t, acme.ID, membership.OrganizationID)

	// Without an ambient tenant the create fails.
	_, err = svc.Memberships.CreateMembership(context.Background(), CreateMembershipInput{
		UserID: carol.ID,
		RoleID: memberRole.ID,
	})
	assert.ErrorIs(t, err, ErrNoCurrentOrganization)

	// Joining twice is rejected.
	_, err = tenancy.RunWithTenant(context.Background(), acme.ID, func(ctx context.Context) (*objects.Membership, error) {
		return svc.Memberships.CreateMembership(ctx, CreateMembershipInput{
			UserID: carol.ID,
			RoleID: memberRole.ID,
		})
	})
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestListMemberships_Scoped(t *testing.T) {
	svc := setupServices(t)
	acme, globex := setupTwoOrgs(t, svc)

	acmeMemberships, err := tenancy.RunWithTenant(context.Background(), acme.ID, func(ctx context.Context) ([]*objects.Membership, error) {
		return svc.Memberships.ListMemberships(ctx)
	})
	require.NoError(t, err)
	require.Len(t, acmeMemberships, 1)
	assert.Equal(t, acme.ID, acmeMemberships[0].OrganizationID)

	globexMemberships, err := tenancy.RunWithTenant(context.Background(), globex.ID, func(ctx context.Context) ([]*objects.Membership, error) {
		return svc.Memberships.ListMemberships(ctx)
	})
	require.NoError(t, err)
	require.Len(t, globexMemberships, 1)
	assert.Equal(t, globex.ID, globexMemberships[0].OrganizationID)

	// No ambient tenant reads the empty set.
	none, err := svc.Memberships.ListMemberships(context.Background())
	require.NoError(t, err)
	assert.Empty(t, none)

	// A bypass reads across tenants.
	all, err := tenancy.RunUnscoped(context.Background(), "membership-report", func(ctx context.Context) ([]*objects.Membership, error) {
		return svc.Memberships.ListMemberships(ctx)
	})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetMembership_CrossTenantInvisible(t *testing.T) {
	svc := setupServices(t)
	acme, globex := setupTwoOrgs(t, svc)

	globexMemberships, err := tenancy.RunWithTenant(context.Background(), globex.ID, func(ctx context.Context) ([]*objects.Membership, error) {
		return svc.Memberships.ListMemberships(ctx)
	})
	require.NoError(t, err)
	require.Len(t, globexMemberships, 1)

	// The globex membership is invisible from the acme tenant.
	_, err = tenancy.RunWithTenant(context.Background(), acme.ID, func(ctx context.Context) (*objects.Membership, error) {
		return svc.Memberships.GetMembership(ctx, globexMemberships[0].ID)
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMembershipRole(t *testing.T) {
	svc := setupServices(t)
	acme, _ := setupTwoOrgs(t, svc)

	adminRole, err := svc.Roles.GetRoleByCode(context.Background(), "admin")
	require.NoError(t, err)

	memberships, err := tenancy.RunWithTenant(context.Background(), acme.ID, func(ctx context.Context) ([]*objects.Membership, error) {
		return svc.Memberships.ListMemberships(ctx)
	})
	require.NoError(t, err)
	require.Len(t, memberships, 1)

	updated, err := tenancy.RunWithTenant(context.Background(), acme.ID, func(ctx context.Context) (*objects.Membership, error) {
		return svc.Memberships.UpdateMembershipRole(ctx, memberships[0].ID, adminRole.ID)
	})
	require.NoError(t, err)
	assert.Equal(t, adminRole.ID, updated.RoleID)
}

func TestDeleteMembership(t *testing.T) {
	svc := setupServices(t)
	acme, _ := setupTwoOrgs(t, svc)

	memberships, err := tenancy.RunWithTenant(context.Background(), acme.ID, func(ctx context.Context) ([]*objects.Membership, error) {
		return svc.Memberships.ListMemberships(ctx)
	})
	require.NoError(t, err)
	require.Len(t, memberships, 1)

	_, err = tenancy.RunWithTenant(context.Background(), acme.ID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, svc.Memberships.DeleteMembership(ctx, memberships[0].ID)
	})
	require.NoError(t, err)

	remaining, err := tenancy.RunWithTenant(context.Background(), acme.ID, func(ctx context.Context) ([]*objects.Membership, error) {
		return svc.Memberships.ListMemberships(ctx)
	})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestGetMembershipForUser(t *testing.T) {
	svc := setupServices(t)
	acme, globex := setupTwoOrgs(t, svc)

	alice, err := svc.Users.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)

	membership, err := svc.Memberships.GetMembershipForUser(context.Background(), acme.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, acme.ID, membership.OrganizationID)

	_, err = svc.Memberships.GetMembershipForUser(context.Background(), globex.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotOrganizationMember)
}
