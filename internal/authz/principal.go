package authz

import (
	"context"
	"fmt"
)

// PrincipalType defines authorization principal types.
type PrincipalType int

const (
	// PrincipalTypeUnknown unknown principal type.
	PrincipalTypeUnknown PrincipalType = iota
	// PrincipalTypeSystem system principal (background tasks, internal operations).
	PrincipalTypeSystem
	// PrincipalTypeUser user principal.
	PrincipalTypeUser
	// PrincipalTypeTest test principal (only for test environment).
	PrincipalTypeTest
)

// String returns string representation of PrincipalType.
func (p PrincipalType) String() string {
	switch p {
	case PrincipalTypeSystem:
		return "system"
	case PrincipalTypeUser:
		return "user"
	case PrincipalTypeTest:
		return "test"
	default:
		return "unknown"
	}
}

// Principal represents authorization principal.
// Each request can only have one Principal, guaranteed by WithPrincipal's set-once semantics.
type Principal struct {
	Type   PrincipalType
	UserID *int64
}

// IsSystem checks if it is a system principal.
func (p Principal) IsSystem() bool {
	return p.Type == PrincipalTypeSystem
}

// IsUser checks if it is a user principal.
func (p Principal) IsUser() bool {
	return p.Type == PrincipalTypeUser
}

// IsTest checks if it is a test principal.
func (p Principal) IsTest() bool {
	return p.Type == PrincipalTypeTest
}

// String returns string representation of Principal (for audit logs).
func (p Principal) String() string {
	switch p.Type {
	case PrincipalTypeSystem:
		return "system"
	case PrincipalTypeUser:
		if p.UserID != nil {
			return fmt.Sprintf("user:%d", *p.UserID)
		}

		return "user:unknown"
	case PrincipalTypeTest:
		return "test"
	default:
		return "unknown"
	}
}

// principalKey is an unexported key type to prevent external forgery.
type principalKey struct{}

// WithPrincipal sets Principal, returns error if already exists.
// Ensures each context can only set Principal once, preventing principal mixing.
func WithPrincipal(ctx context.Context, p Principal) (context.Context, error) {
	if existing, ok := GetPrincipal(ctx); ok {
		if !principalEqual(existing, p) {
			return ctx, fmt.Errorf("authz: principal conflict: existing=%s, new=%s", existing.String(), p.String())
		}

		return ctx, nil // Same principal, idempotent
	}

	return context.WithValue(ctx, principalKey{}, p), nil
}

// principalEqual compares if two Principals are equal.
func principalEqual(a, b Principal) bool {
	if a.Type != b.Type {
		return false
	}

	if a.UserID == nil && b.UserID == nil {
		return true
	}

	if a.UserID == nil || b.UserID == nil {
		return false
	}

	return *a.UserID == *b.UserID
}

// GetPrincipal reads Principal.
func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// MustGetPrincipal reads Principal, panics if not exists (used in chains where principal is confirmed).
func MustGetPrincipal(ctx context.Context) Principal {
	p, ok := GetPrincipal(ctx)
	if !ok {
		panic("authz: no principal in context")
	}

	return p
}

// NewUserContext creates context with User principal.
func NewUserContext(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, principalKey{}, Principal{
		Type:   PrincipalTypeUser,
		UserID: &userID,
	})
}

// RequirePrincipal checks if a principal exists, otherwise returns error.
func RequirePrincipal(ctx context.Context) error {
	_, ok := GetPrincipal(ctx)
	if !ok {
		return fmt.Errorf("authz: no principal in context")
	}

	return nil
}
