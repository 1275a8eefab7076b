package authz

import (
	"context"
	"testing"

	"github.com/looplj/tenanthub/internal/contexts"
	"github.com/looplj/tenanthub/internal/objects"
	"github.com/looplj/tenanthub/internal/scopes"
)

func TestHasScope(t *testing.T) {
	// No principal holds no scope.
	if HasScope(context.Background(), scopes.ScopeReadProjects) {
		t.Error("expected no scope without principal")
	}

	// System and Test principals hold every scope.
	if !HasScope(NewSystemContext(context.Background()), scopes.ScopeWriteUsers) {
		t.Error("expected system principal to hold every scope")
	}

	if !HasScope(NewTestContext(context.Background()), scopes.ScopeWriteUsers) {
		t.Error("expected test principal to hold every scope")
	}

	// A user holds only granted scopes.
	ctx := NewUserContext(context.Background(), 1)
	ctx = contexts.WithUser(ctx, &objects.User{
		ID:     1,
		Scopes: []string{"read_projects"},
	})

	if !HasScope(ctx, scopes.ScopeReadProjects) {
		t.Error("expected granted scope to pass")
	}

	if HasScope(ctx, scopes.ScopeWriteProjects) {
		t.Error("expected ungranted scope to fail")
	}

	// Owners hold every scope.
	ownerCtx := NewUserContext(context.Background(), 2)
	ownerCtx = contexts.WithUser(ownerCtx, &objects.User{ID: 2, IsOwner: true})

	if !HasScope(ownerCtx, scopes.ScopeWriteUsers) {
		t.Error("expected owner to hold every scope")
	}

	// A user principal without the user entity loaded holds nothing.
	if HasScope(NewUserContext(context.Background(), 3), scopes.ScopeReadProjects) {
		t.Error("expected no scope without the user entity")
	}
}

func TestRequireScope(t *testing.T) {
	ctx := NewUserContext(context.Background(), 1)
	ctx = contexts.WithUser(ctx, &objects.User{ID: 1, Scopes: []string{"read_projects"}})

	if err := RequireScope(ctx, scopes.ScopeReadProjects); err != nil {
		t.Errorf("expected granted scope to pass: %v", err)
	}

	if err := RequireScope(ctx, scopes.ScopeWriteProjects); err == nil {
		t.Error("expected error for ungranted scope")
	}
}
