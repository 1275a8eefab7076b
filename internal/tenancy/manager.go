package tenancy

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/looplj/tenanthub/internal/contexts"
	"github.com/looplj/tenanthub/internal/log"
)

// CurrentTenantID returns the ambient tenant id, if any.
func CurrentTenantID(ctx context.Context) (int64, bool) {
	return contexts.GetTenantID(ctx)
}

// RunWithTenant executes fn with the ambient tenant id set to tenantID and
// restores the prior tenant state on every exit path, including panics.
// Nested calls restore in LIFO order.
func RunWithTenant[T any](ctx context.Context, tenantID int64, fn func(ctx context.Context) (T, error)) (T, error) {
	prevID, prevOrg := contexts.TenantState(ctx)
	ctx = contexts.WithTenantID(ctx, tenantID)

	defer func() {
		contexts.RestoreTenantState(ctx, prevID, prevOrg)
	}()

	return fn(ctx)
}

// RunWithoutTenant executes fn with no ambient tenant id and restores the
// prior tenant state on every exit path.
func RunWithoutTenant[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	prevID, prevOrg := contexts.TenantState(ctx)
	ctx = contexts.WithoutTenant(ctx)

	defer func() {
		contexts.RestoreTenantState(ctx, prevID, prevOrg)
	}()

	return fn(ctx)
}

// ClearTenant unconditionally clears the ambient tenant state. The clear is
// logged with the caller location for the audit trail; logging failures never
// propagate.
func ClearTenant(ctx context.Context) context.Context {
	ctx = contexts.WithoutTenant(ctx)

	func() {
		defer func() {
			_ = recover()
		}()

		log.Warn(ctx, "tenancy: tenant context cleared",
			log.String("caller", callerLocation(3)),
		)
	}()

	return ctx
}

// callerLocation formats the file:line of the caller skip frames up.
func callerLocation(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}

	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
