package contexts

import (
	"context"
	"testing"

	"github.com/looplj/tenanthub/internal/objects"
)

func TestWithTenantID(t *testing.T) {
	ctx := context.Background()

	newCtx := WithTenantID(ctx, 42)
	if newCtx == ctx {
		t.Error("WithTenantID should return a new context")
	}

	id, ok := GetTenantID(newCtx)
	if !ok {
		t.Error("GetTenantID should return true after WithTenantID")
	}

	if id != 42 {
		t.Errorf("expected tenant id 42, got %d", id)
	}
}

func TestGetTenantID_Empty(t *testing.T) {
	id, ok := GetTenantID(context.Background())
	if ok {
		t.Error("GetTenantID should return false for empty context")
	}

	if id != 0 {
		t.Errorf("expected zero tenant id, got %d", id)
	}
}

func TestWithTenantID_MutatesInstalledContainer(t *testing.T) {
	// Once a container is installed, later writes are visible through the
	// original context. This is what lets scoped-execution blocks restore
	// ambient state for the rest of the execution unit.
	ctx := WithTenantID(context.Background(), 1)

	WithTenantID(ctx, 2)

	id, ok := GetTenantID(ctx)
	if !ok || id != 2 {
		t.Errorf("expected tenant id 2 visible through original context, got %d (ok=%v)", id, ok)
	}
}

func TestWithTenantID_DropsCachedOrganization(t *testing.T) {
	ctx := WithOrganization(context.Background(), &objects.Organization{ID: 1, Name: "acme"})

	if _, ok := GetOrganization(ctx); !ok {
		t.Fatal("organization should be cached after WithOrganization")
	}

	ctx = WithTenantID(ctx, 2)

	if _, ok := GetOrganization(ctx); ok {
		t.Error("changing the tenant id should drop the cached organization")
	}

	// Setting the same id again must keep the cache.
	ctx = WithOrganization(ctx, &objects.Organization{ID: 2, Name: "globex"})
	ctx = WithTenantID(ctx, 2)

	if _, ok := GetOrganization(ctx); !ok {
		t.Error("setting the same tenant id should keep the cached organization")
	}
}

func TestWithoutTenant(t *testing.T) {
	ctx := WithOrganization(context.Background(), &objects.Organization{ID: 7, Name: "acme"})
	ctx = WithoutTenant(ctx)

	if _, ok := GetTenantID(ctx); ok {
		t.Error("GetTenantID should return false after WithoutTenant")
	}

	if _, ok := GetOrganization(ctx); ok {
		t.Error("GetOrganization should return false after WithoutTenant")
	}
}

func TestCacheOrganization(t *testing.T) {
	ctx := WithTenantID(context.Background(), 5)

	CacheOrganization(ctx, &objects.Organization{ID: 5, Name: "acme"})

	org, ok := GetOrganization(ctx)
	if !ok {
		t.Fatal("organization should be cached for the current tenant id")
	}

	if org.Name != "acme" {
		t.Errorf("expected name acme, got %s", org.Name)
	}

	// A stale resolution for another tenant id must not be cached.
	CacheOrganization(ctx, &objects.Organization{ID: 6, Name: "globex"})

	org, _ = GetOrganization(ctx)
	if org.ID != 5 {
		t.Errorf("stale organization should not replace the cache, got id %d", org.ID)
	}
}

func TestTenantState_Restore(t *testing.T) {
	ctx := WithTenantID(context.Background(), 1)

	id, org := TenantState(ctx)

	WithTenantID(ctx, 2)
	RestoreTenantState(ctx, id, org)

	got, ok := GetTenantID(ctx)
	if !ok || got != 1 {
		t.Errorf("expected restored tenant id 1, got %d (ok=%v)", got, ok)
	}
}

func TestWithUser(t *testing.T) {
	user := &objects.User{ID: 123, Email: "test@example.com"}

	ctx := WithUser(context.Background(), user)

	retrieved, ok := GetUser(ctx)
	if !ok {
		t.Error("GetUser should return true for existing user")
	}

	if retrieved.ID != user.ID {
		t.Errorf("expected ID %d, got %d", user.ID, retrieved.ID)
	}

	if retrieved.Email != user.Email {
		t.Errorf("expected Email %s, got %s", user.Email, retrieved.Email)
	}
}

func TestGetUser_Empty(t *testing.T) {
	user, ok := GetUser(context.Background())
	if ok {
		t.Error("GetUser should return false for empty context")
	}

	if user != nil {
		t.Error("GetUser should return nil for empty context")
	}
}

func TestWithTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "th-trace-1")

	traceID, ok := GetTraceID(ctx)
	if !ok {
		t.Error("GetTraceID should return true after WithTraceID")
	}

	if traceID != "th-trace-1" {
		t.Errorf("expected trace id th-trace-1, got %s", traceID)
	}
}

func TestAppendError(t *testing.T) {
	ctx := WithTenantID(context.Background(), 1)

	AppendError(ctx, context.Canceled)
	AppendError(ctx, context.DeadlineExceeded)

	errs := GetErrors(ctx)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
}
