package tenancy

import (
	"context"
	"strings"
	"sync"

	"github.com/looplj/tenanthub/internal/log"
)

// Classification of a guarded entity. Every entity has exactly one.
type Classification int

const (
	ClassificationUnknown Classification = iota

	// TenantScoped entities carry the tenant foreign key and are filtered by it.
	TenantScoped

	// SystemScoped entities are global and deliberately unfiltered.
	SystemScoped

	// Excluded entities were exempted through tenancy.excluded_entities.
	Excluded
)

func (c Classification) String() string {
	switch c {
	case TenantScoped:
		return "tenant-scoped"
	case SystemScoped:
		return "system-scoped"
	case Excluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// descriptor is the per-entity metadata kept by the registry.
type descriptor struct {
	Name   string
	Class  Classification
	Column string
}

// Registry is the process-wide, append-only record of guarded entities.
// Mutated only at guard-construction time, read-many afterwards.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]descriptor
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]descriptor)}
}

// register appends a descriptor. Registering the same entity with the same
// classification is a no-op; a conflicting classification is an error.
func (r *Registry) register(desc descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[desc.Name]; ok {
		if existing.Class != desc.Class {
			return &IncompatibilityError{
				Entity: desc.Name,
				Reason: "already registered as " + existing.Class.String() + ", cannot re-register as " + desc.Class.String(),
			}
		}

		return nil
	}

	r.entries[desc.Name] = desc
	r.order = append(r.order, desc.Name)

	return nil
}

// IsRegistered reports whether the entity is known to the registry.
func (r *Registry) IsRegistered(entity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[entity]

	return ok
}

// Classification returns the recorded classification of the entity.
func (r *Registry) Classification(entity string) Classification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.entries[entity].Class
}

// Summary is a read-only snapshot of the registry for diagnostics.
type Summary struct {
	TenantScoped []string `json:"tenantScoped"`
	SystemScoped []string `json:"systemScoped"`
	Excluded     []string `json:"excluded"`
	Total        int      `json:"total"`
}

// Summary returns the entities per classification, in registration order.
func (r *Registry) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := Summary{
		TenantScoped: []string{},
		SystemScoped: []string{},
		Excluded:     []string{},
	}

	for _, name := range r.order {
		switch r.entries[name].Class {
		case TenantScoped:
			summary.TenantScoped = append(summary.TenantScoped, name)
		case SystemScoped:
			summary.SystemScoped = append(summary.SystemScoped, name)
		case Excluded:
			summary.Excluded = append(summary.Excluded, name)
		}
	}

	summary.Total = len(r.order)

	return summary
}

// PrintSummary renders the registry through the logger, one line per
// classification.
func (r *Registry) PrintSummary(ctx context.Context) {
	summary := r.Summary()

	log.Info(ctx, "tenancy: scoping summary",
		log.Int("total", summary.Total),
		log.String("tenant_scoped", strings.Join(summary.TenantScoped, ", ")),
		log.String("system_scoped", strings.Join(summary.SystemScoped, ", ")),
		log.String("excluded", strings.Join(summary.Excluded, ", ")),
	)
}

// defaultRegistry is the process-wide registry used by guards unless a test
// supplies its own.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
