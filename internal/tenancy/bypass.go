package tenancy

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/looplj/tenanthub/internal/authz"
	"github.com/looplj/tenanthub/internal/log"
	"github.com/looplj/tenanthub/internal/objects"
)

// bypassKey is an unexported key type to prevent external forgery.
type bypassKey struct{}

// readonlyKey marks a context whose mutations must be rejected.
type readonlyKey struct{}

// BypassInfo stores bypass metadata for audit and debugging.
type BypassInfo struct {
	Operation string
	Reason    string
	Caller    string
	Timestamp time.Time
	Principal authz.Principal
}

// IsBypassActive checks if the current context is in bypass state.
func IsBypassActive(ctx context.Context) bool {
	_, ok := ctx.Value(bypassKey{}).(BypassInfo)
	return ok
}

// GetBypassInfo retrieves current bypass information.
func GetBypassInfo(ctx context.Context) (BypassInfo, bool) {
	info, ok := ctx.Value(bypassKey{}).(BypassInfo)
	return info, ok
}

// IsReadonly checks if the current context rejects mutations.
func IsReadonly(ctx context.Context) bool {
	active, ok := ctx.Value(readonlyKey{}).(bool)
	return ok && active
}

// maskBypass shadows an inherited bypass so tenant-pinned filtering is in
// force inside a tenant-switched body. The readonly marker is not lifted:
// switching tenants under a readonly bypass must not re-enable writes.
func maskBypass(ctx context.Context) context.Context {
	if IsBypassActive(ctx) {
		return context.WithValue(ctx, bypassKey{}, nil)
	}

	return ctx
}

// AdminCheck authorizes an admin-gated bypass for the current principal.
type AdminCheck func(ctx context.Context) bool

// TenantEnumerator supplies all known organizations for ForEachTenant.
type TenantEnumerator func(ctx context.Context) ([]objects.Organization, error)

// AuditRecord is one bypass audit entry.
type AuditRecord struct {
	Timestamp time.Time
	Principal string
	Operation string
	Reason    string
	Caller    string
	Outcome   string
}

// auditSink receives bypass audit records. Can be customized via SetAuditSink.
var auditSink func(ctx context.Context, record AuditRecord)

// SetAuditSink sets a custom audit sink. If not set, records go to the
// structured log.
func SetAuditSink(fn func(ctx context.Context, record AuditRecord)) {
	auditSink = fn
}

func recordAudit(ctx context.Context, info BypassInfo, outcome string) {
	p := info.Principal

	record := AuditRecord{
		Timestamp: info.Timestamp,
		Principal: p.String(),
		Operation: info.Operation,
		Reason:    info.Reason,
		Caller:    info.Caller,
		Outcome:   outcome,
	}

	if auditSink != nil {
		auditSink(ctx, record)
		return
	}

	fields := []log.Field{
		log.String("principal", record.Principal),
		log.String("operation", record.Operation),
		log.String("reason", record.Reason),
		log.String("caller", record.Caller),
		log.String("outcome", record.Outcome),
	}

	// Denials and production bypasses are always loud.
	if outcome != auditOutcomeAllowed || CurrentConfig().IsProduction() {
		log.Warn(ctx, "tenancy: scoping bypass", fields...)
		return
	}

	log.Debug(ctx, "tenancy: scoping bypass", fields...)
}

const (
	auditOutcomeAllowed = "allowed"
	auditOutcomeDenied  = "denied"
)

// newBypassInfo captures the metadata of a bypass attempt. The caller
// location skips the exported runner frames.
func newBypassInfo(ctx context.Context, operation, reason string) BypassInfo {
	p, _ := authz.GetPrincipal(ctx)

	return BypassInfo{
		Operation: operation,
		Reason:    reason,
		Caller:    callerLocation(3),
		Timestamp: time.Now(),
		Principal: p,
	}
}

// gate rejects the bypass when bypasses are globally disabled. The denial is
// the only side effect.
func gate(ctx context.Context, info BypassInfo) error {
	if CurrentConfig().DisableBypasses {
		recordAudit(ctx, info, auditOutcomeDenied)
		return &ScopingDisabledError{Operation: info.Operation}
	}

	return nil
}

// RunUnscoped executes fn against the unfiltered relations. The bypass is
// confined to the closure and audited.
//
// Example usage:
//
//	count, err := tenancy.RunUnscoped(ctx, "membership-total-count", func(ctx context.Context) (int, error) {
//	    return store.CountAll(ctx)
//	})
func RunUnscoped[T any](ctx context.Context, reason string, fn func(ctx context.Context) (T, error)) (T, error) {
	info := newBypassInfo(ctx, "without_scoping", reason)

	if err := gate(ctx, info); err != nil {
		var zero T
		return zero, err
	}

	recordAudit(ctx, info, auditOutcomeAllowed)

	return fn(context.WithValue(ctx, bypassKey{}, info))
}

// RunUnscopedReadonly is RunUnscoped with mutations rejected for the
// duration of the closure.
func RunUnscopedReadonly[T any](ctx context.Context, reason string, fn func(ctx context.Context) (T, error)) (T, error) {
	info := newBypassInfo(ctx, "without_scoping_readonly", reason)

	if err := gate(ctx, info); err != nil {
		var zero T
		return zero, err
	}

	recordAudit(ctx, info, auditOutcomeAllowed)

	ctx = context.WithValue(ctx, bypassKey{}, info)
	ctx = context.WithValue(ctx, readonlyKey{}, true)

	return fn(ctx)
}

// RunAsTenant executes fn with the ambient tenant switched to tenantID,
// restoring the prior tenant state on every exit path. fn runs scoped to
// that tenant even when the caller holds an active bypass.
func RunAsTenant[T any](ctx context.Context, tenantID int64, reason string, fn func(ctx context.Context) (T, error)) (T, error) {
	info := newBypassInfo(ctx, "with_tenant_bypass", reason)

	if err := gate(ctx, info); err != nil {
		var zero T
		return zero, err
	}

	recordAudit(ctx, info, auditOutcomeAllowed)

	return RunWithTenant(maskBypass(ctx), tenantID, fn)
}

// RunWithAdminBypass executes fn against the unfiltered relations after the
// admin check passes. The attempt is audited regardless of outcome.
func RunWithAdminBypass[T any](ctx context.Context, check AdminCheck, reason string, fn func(ctx context.Context) (T, error)) (T, error) {
	info := newBypassInfo(ctx, "with_admin_bypass", reason)

	if err := gate(ctx, info); err != nil {
		var zero T
		return zero, err
	}

	if check == nil || !check(ctx) {
		recordAudit(ctx, info, auditOutcomeDenied)

		var zero T

		return zero, &AdminAuthorizationError{
			Operation: info.Operation,
			Principal: info.Principal.String(),
		}
	}

	recordAudit(ctx, info, auditOutcomeAllowed)

	return fn(context.WithValue(ctx, bypassKey{}, info))
}

// RunWithSystemBypass executes fn as the system principal against the
// unfiltered relations. It is intended for background jobs and startup
// tasks that have no user principal of their own.
func RunWithSystemBypass[T any](ctx context.Context, reason string, fn func(ctx context.Context) (T, error)) (T, error) {
	if _, ok := authz.GetPrincipal(ctx); !ok {
		ctx = authz.NewSystemContext(ctx)
	}

	return RunUnscoped(ctx, reason, fn)
}

// ForEachTenant invokes fn once per known organization with the ambient
// tenant set to that organization, restoring the prior context afterwards.
// Each invocation is scoped to its organization, even when the iteration
// was entered from a bypassed context. Iteration stops at the first error.
func ForEachTenant(ctx context.Context, enumerate TenantEnumerator, reason string, fn func(ctx context.Context, org objects.Organization) error) error {
	info := newBypassInfo(ctx, "for_each_tenant", reason)

	if err := gate(ctx, info); err != nil {
		return err
	}

	recordAudit(ctx, info, auditOutcomeAllowed)

	orgs, err := enumerate(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate organizations: %w", err)
	}

	tenantCtx := maskBypass(ctx)

	for _, org := range orgs {
		_, err := RunWithTenant(tenantCtx, org.ID, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, fn(ctx, org)
		})
		if err != nil {
			return fmt.Errorf("organization %s: %w", lo.Ternary(org.Slug != "", org.Slug, fmt.Sprintf("#%d", org.ID)), err)
		}
	}

	return nil
}
