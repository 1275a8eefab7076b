package contexts

import (
	"context"

	"github.com/looplj/tenanthub/internal/objects"
)

// WithTenantID stores the current tenant id in the context.
// Changing the id drops the cached organization entity.
func WithTenantID(ctx context.Context, tenantID int64) context.Context {
	container := getContainer(ctx)

	container.mu.Lock()
	if container.TenantID == nil || *container.TenantID != tenantID {
		container.Organization = nil
	}

	container.TenantID = &tenantID
	container.mu.Unlock()

	return withContainer(ctx, container)
}

// WithoutTenant clears the current tenant id and the cached organization.
func WithoutTenant(ctx context.Context) context.Context {
	container := getContainer(ctx)

	container.mu.Lock()
	container.TenantID = nil
	container.Organization = nil
	container.mu.Unlock()

	return withContainer(ctx, container)
}

// GetTenantID retrieves the current tenant id from the context.
func GetTenantID(ctx context.Context) (int64, bool) {
	container := getContainer(ctx)

	container.mu.RLock()
	defer container.mu.RUnlock()

	if container.TenantID != nil {
		return *container.TenantID, true
	}

	return 0, false
}

// WithOrganization stores the organization entity in the context and sets the
// tenant id to its id.
func WithOrganization(ctx context.Context, org *objects.Organization) context.Context {
	container := getContainer(ctx)

	container.mu.Lock()
	container.Organization = org
	if org != nil {
		id := org.ID
		container.TenantID = &id
	}
	container.mu.Unlock()

	return withContainer(ctx, container)
}

// GetOrganization retrieves the cached organization entity from the context.
// The cache is only valid for the current tenant id; resolution lives in the
// tenancy package.
func GetOrganization(ctx context.Context) (*objects.Organization, bool) {
	container := getContainer(ctx)

	container.mu.RLock()
	defer container.mu.RUnlock()

	return container.Organization, container.Organization != nil
}

// CacheOrganization stores the resolved organization without touching the
// tenant id. It is a no-op if the id has moved on since resolution started.
func CacheOrganization(ctx context.Context, org *objects.Organization) {
	if org == nil {
		return
	}

	container := getContainer(ctx)

	container.mu.Lock()
	if container.TenantID != nil && *container.TenantID == org.ID {
		container.Organization = org
	}
	container.mu.Unlock()
}

// TenantState snapshots the tenant id and cached organization for later
// restoration by scoped-execution blocks.
func TenantState(ctx context.Context) (*int64, *objects.Organization) {
	container := getContainer(ctx)

	container.mu.RLock()
	defer container.mu.RUnlock()

	return container.TenantID, container.Organization
}

// RestoreTenantState restores a snapshot taken with TenantState.
func RestoreTenantState(ctx context.Context, tenantID *int64, org *objects.Organization) context.Context {
	container := getContainer(ctx)

	container.mu.Lock()
	container.TenantID = tenantID
	container.Organization = org
	container.mu.Unlock()

	return withContainer(ctx, container)
}
