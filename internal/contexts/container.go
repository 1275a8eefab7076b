package contexts

import (
	"context"
	"sync"

	"github.com/looplj/tenanthub/internal/objects"
)

// contextContainer contains all values in the context.
//
// The container is installed once per execution unit (request, job) and
// mutated in place afterwards, so tenant switches made deeper in the call
// chain are visible to the rest of the unit and can be restored.
type contextContainer struct {
	mu sync.RWMutex

	TenantID      *int64
	Organization  *objects.Organization
	User          *objects.User
	TraceID       *string
	RequestID     *string
	OperationName *string
	Errors        []error
}

// getContainer retrieves the existing container from context, or creates a new one
// and stores it in the context if it doesn't exist.
func getContainer(ctx context.Context) *contextContainer {
	if container, ok := ctx.Value(containerContextKey).(*contextContainer); ok {
		return container
	}

	return &contextContainer{}
}

// withContainer stores the container in the context (if not already stored).
func withContainer(ctx context.Context, container *contextContainer) context.Context {
	if ctx.Value(containerContextKey) == nil {
		return context.WithValue(ctx, containerContextKey, container)
	}

	return ctx
}
