package contexts

import (
	"context"

	"github.com/looplj/tenanthub/internal/objects"
)

// ContextKey defines the context key type.
type ContextKey string

const (
	// containerContextKey is used to store the context container in the context.
	containerContextKey ContextKey = "context_container"
)

// WithUser stores the user entity in the context.
func WithUser(ctx context.Context, user *objects.User) context.Context {
	container := getContainer(ctx)

	container.mu.Lock()
	container.User = user
	container.mu.Unlock()

	return withContainer(ctx, container)
}

// GetUser retrieves the user entity from the context.
func GetUser(ctx context.Context) (*objects.User, bool) {
	container := getContainer(ctx)

	container.mu.RLock()
	defer container.mu.RUnlock()

	return container.User, container.User != nil
}

// WithTraceID stores the trace id in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	container := getContainer(ctx)

	container.mu.Lock()
	container.TraceID = &traceID
	container.mu.Unlock()

	return withContainer(ctx, container)
}

// GetTraceID retrieves the trace id from the context.
func GetTraceID(ctx context.Context) (string, bool) {
	container := getContainer(ctx)

	container.mu.RLock()
	defer container.mu.RUnlock()

	if container.TraceID != nil {
		return *container.TraceID, true
	}

	return "", false
}

// WithRequestID stores the request id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	container := getContainer(ctx)

	container.mu.Lock()
	container.RequestID = &requestID
	container.mu.Unlock()

	return withContainer(ctx, container)
}

// GetRequestID retrieves the request id from the context.
func GetRequestID(ctx context.Context) (string, bool) {
	container := getContainer(ctx)

	container.mu.RLock()
	defer container.mu.RUnlock()

	if container.RequestID != nil {
		return *container.RequestID, true
	}

	return "", false
}

// WithOperationName stores the operation name in the context.
func WithOperationName(ctx context.Context, name string) context.Context {
	container := getContainer(ctx)

	container.mu.Lock()
	container.OperationName = &name
	container.mu.Unlock()

	return withContainer(ctx, container)
}

// GetOperationName retrieves the operation name from the context.
func GetOperationName(ctx context.Context) (string, bool) {
	container := getContainer(ctx)

	container.mu.RLock()
	defer container.mu.RUnlock()

	if container.OperationName != nil {
		return *container.OperationName, true
	}

	return "", false
}

// AppendError records an error on the context for access logging.
func AppendError(ctx context.Context, err error) context.Context {
	container := getContainer(ctx)

	container.mu.Lock()
	container.Errors = append(container.Errors, err)
	container.mu.Unlock()

	return withContainer(ctx, container)
}

// GetErrors retrieves all errors recorded on the context.
func GetErrors(ctx context.Context) []error {
	container := getContainer(ctx)

	container.mu.RLock()
	defer container.mu.RUnlock()

	errs := make([]error, len(container.Errors))
	copy(errs, container.Errors)

	return errs
}
