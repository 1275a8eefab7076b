package authz

import (
	"context"
	"fmt"
	"slices"

	"github.com/looplj/tenanthub/internal/contexts"
	"github.com/looplj/tenanthub/internal/scopes"
)

// HasScope reports whether the current principal carries the required
// permission scope. System and Test principals implicitly hold every scope;
// users hold the scopes granted directly or through their organization role.
func HasScope(ctx context.Context, requiredScope scopes.ScopeSlug) bool {
	p, ok := GetPrincipal(ctx)
	if !ok {
		return false
	}

	switch p.Type {
	case PrincipalTypeSystem, PrincipalTypeTest:
		return true
	case PrincipalTypeUser:
		return userHasScope(ctx, requiredScope)
	default:
		return false
	}
}

// RequireScope returns an error when the current principal lacks the scope.
func RequireScope(ctx context.Context, requiredScope scopes.ScopeSlug) error {
	if !HasScope(ctx, requiredScope) {
		p, _ := GetPrincipal(ctx)
		return fmt.Errorf("authz: principal %s does not have required scope %s", p.String(), requiredScope)
	}

	return nil
}

func userHasScope(ctx context.Context, requiredScope scopes.ScopeSlug) bool {
	user, ok := contexts.GetUser(ctx)
	if !ok || user == nil {
		return false
	}

	if user.IsOwner {
		return true
	}

	return slices.Contains(user.Scopes, string(requiredScope))
}
