package authz

import (
	"context"
	"fmt"
)

// NewSystemContext creates context with System principal (for background tasks).
func NewSystemContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, principalKey{}, Principal{Type: PrincipalTypeSystem})
}

// RequireSystemPrincipal checks if current principal is System, otherwise returns error.
// Used to protect sensitive background operations.
func RequireSystemPrincipal(ctx context.Context) error {
	p, ok := GetPrincipal(ctx)
	if !ok {
		return fmt.Errorf("authz: no principal in context")
	}

	if !p.IsSystem() {
		return fmt.Errorf("authz: operation requires system principal, got %s", p.String())
	}

	return nil
}
