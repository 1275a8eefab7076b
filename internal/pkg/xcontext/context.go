package xcontext

import (
	"context"
	"time"
)

// DetachWithTimeout severs the cancellation chain of ctx while keeping its
// values, then bounds the result. Background work scheduled from a request
// or scheduler context uses this to outlive its trigger.
func DetachWithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, cancel
}
