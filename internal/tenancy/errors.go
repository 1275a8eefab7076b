package tenancy

import "fmt"

// MissingColumnError reports an entity that lacks the tenant foreign key and
// is not exempted from scoping. Fatal at registration time.
type MissingColumnError struct {
	Entity string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf(
		"tenancy: entity %q has no %q column; add a migration for the column, mark the entity system-scoped, or add it to tenancy.excluded_entities",
		e.Entity, e.Column,
	)
}

// IncompatibilityError reports an entity that fails compatibility validation
// for a structural reason other than the missing tenant column.
type IncompatibilityError struct {
	Entity string
	Reason string
}

func (e *IncompatibilityError) Error() string {
	return fmt.Sprintf("tenancy: entity %q is incompatible with scoping: %s", e.Entity, e.Reason)
}

// ScopingDisabledError reports a bypass attempted while bypasses are
// globally disabled. Never retried automatically.
type ScopingDisabledError struct {
	Operation string
}

func (e *ScopingDisabledError) Error() string {
	return fmt.Sprintf("tenancy: %s rejected: bypasses are disabled by configuration (tenancy.disable_bypasses)", e.Operation)
}

// AdminAuthorizationError reports an admin-gated bypass attempted without
// passing the authorization check.
type AdminAuthorizationError struct {
	Operation string
	Principal string
}

func (e *AdminAuthorizationError) Error() string {
	return fmt.Sprintf("tenancy: %s rejected: principal %s failed the admin check", e.Operation, e.Principal)
}

// CrossTenantAccessError reports an attempt to assert access to a record
// outside the current tenant without a sanctioned bypass.
type CrossTenantAccessError struct {
	Entity         string
	RecordTenantID int64
	TenantID       int64
}

func (e *CrossTenantAccessError) Error() string {
	return fmt.Sprintf(
		"tenancy: record of %q belongs to organization %d, not current organization %d; use a bypass operation for cross-tenant access",
		e.Entity, e.RecordTenantID, e.TenantID,
	)
}
