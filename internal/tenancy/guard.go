package tenancy

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/looplj/tenanthub/internal/contexts"
	"github.com/looplj/tenanthub/internal/log"
)

// Dialects the guard can introspect.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Condition is a rendered SQL predicate with its positional arguments.
type Condition struct {
	Expr string
	Args []any
}

// Guard attaches tenant scoping to one entity type (table). Constructed once
// at boot; ValidateCompatibility must pass before the guard is used.
type Guard struct {
	entity   string
	column   string
	class    Classification
	db       *sql.DB
	dialect  string
	registry *Registry
}

type GuardOption func(*Guard)

// WithColumn overrides the tenant foreign key column for this entity.
func WithColumn(column string) GuardOption {
	return func(g *Guard) {
		g.column = column
	}
}

// SystemScopedEntity marks the entity as deliberately global: no filtering
// is installed and the tenant column is not required.
func SystemScopedEntity() GuardOption {
	return func(g *Guard) {
		g.class = SystemScoped
	}
}

// WithGuardRegistry registers the entity with the given registry instead of
// the process-wide one. Used by tests.
func WithGuardRegistry(registry *Registry) GuardOption {
	return func(g *Guard) {
		g.registry = registry
	}
}

func NewGuard(db *sql.DB, dialect, entity string, opts ...GuardOption) *Guard {
	g := &Guard{
		entity:   entity,
		column:   CurrentConfig().TenantColumn,
		class:    TenantScoped,
		db:       db,
		dialect:  dialect,
		registry: defaultRegistry,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Entity returns the guarded table name.
func (g *Guard) Entity() string {
	return g.entity
}

// Column returns the tenant foreign key column.
func (g *Guard) Column() string {
	return g.column
}

// ValidateCompatibility checks the entity schema and registers it.
//
// Exempted entities (system-scoped marker or the configured exclusion list)
// skip the column check entirely. Everything else must carry the tenant
// foreign key; a missing column is fatal and should halt application boot.
func (g *Guard) ValidateCompatibility(ctx context.Context) error {
	excluded := slices.Contains(CurrentConfig().ExcludedEntities, g.entity)

	if excluded && g.class == SystemScoped {
		return &IncompatibilityError{
			Entity: g.entity,
			Reason: "marked system-scoped and listed in tenancy.excluded_entities; pick one",
		}
	}

	if excluded {
		g.class = Excluded
		return g.registry.register(descriptor{Name: g.entity, Class: Excluded, Column: g.column})
	}

	if g.class == SystemScoped {
		return g.registry.register(descriptor{Name: g.entity, Class: SystemScoped, Column: g.column})
	}

	columns, err := g.columns(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect schema of %q: %w", g.entity, err)
	}

	if !slices.Contains(columns, g.column) {
		return &MissingColumnError{Entity: g.entity, Column: g.column}
	}

	err = g.registry.register(descriptor{Name: g.entity, Class: TenantScoped, Column: g.column})
	if err != nil {
		return err
	}

	log.Debug(ctx, "tenancy: entity registered",
		log.String("entity", g.entity),
		log.String("column", g.column),
	)

	return nil
}

// columns enumerates the declared columns of the guarded table.
func (g *Guard) columns(ctx context.Context) ([]string, error) {
	var (
		query string
		args  []any
	)

	switch g.dialect {
	case DialectPostgres:
		query = `SELECT column_name FROM information_schema.columns WHERE table_name = $1`
		args = []any{g.entity}
	case DialectSQLite:
		query = `SELECT name FROM pragma_table_info(?)`
		args = []any{g.entity}
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", g.dialect)
	}

	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		columns = append(columns, name)
	}

	return columns, rows.Err()
}

// Scope renders the default read filter for the current context. next is the
// first free positional argument index (postgres placeholders are numbered).
//
// With an ambient tenant the filter pins the tenant foreign key; with none it
// is the impossible predicate, so an unscoped context reads an empty set in
// every environment. Bypassed contexts and unscoped classifications get a
// pass-through predicate.
func (g *Guard) Scope(ctx context.Context, next int) Condition {
	if g.class != TenantScoped || IsBypassActive(ctx) {
		return Condition{Expr: "1 = 1"}
	}

	tenantID, ok := contexts.GetTenantID(ctx)
	if !ok {
		return Condition{Expr: "1 = 0"}
	}

	return Condition{
		Expr: fmt.Sprintf("%s = %s", g.column, g.placeholder(next)),
		Args: []any{tenantID},
	}
}

func (g *Guard) placeholder(n int) string {
	if g.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}

	return "?"
}

// CreateTenantID resolves the tenant foreign key for a new record: an
// explicit value wins, otherwise the ambient tenant is assigned. With
// neither, the write must fail through the store's normal validation channel.
func (g *Guard) CreateTenantID(ctx context.Context, explicit *int64) (int64, error) {
	if explicit != nil {
		return *explicit, nil
	}

	if tenantID, ok := contexts.GetTenantID(ctx); ok {
		return tenantID, nil
	}

	return 0, fmt.Errorf("%s is required on %q and no current organization is set", g.column, g.entity)
}

// CheckImmutable rejects changes to the tenant foreign key of an existing
// record.
func (g *Guard) CheckImmutable(existing, next int64) error {
	if existing != next {
		return fmt.Errorf("organization cannot be changed after creation")
	}

	return nil
}

// CheckMutable rejects mutations under a readonly bypass.
func (g *Guard) CheckMutable(ctx context.Context) error {
	if IsReadonly(ctx) {
		return fmt.Errorf("%q is read-only inside a readonly bypass", g.entity)
	}

	return nil
}

// RequireBypass rejects deliberately cross-tenant reads reached outside an
// active bypass. Stores gate their unfiltered queries on it so isolation
// does not rest on call-site discipline.
func (g *Guard) RequireBypass(ctx context.Context) error {
	if !IsBypassActive(ctx) {
		return fmt.Errorf("cross-tenant read on %q requires an active bypass", g.entity)
	}

	return nil
}

// BelongsToCurrentTenant compares the record's tenant foreign key to the
// ambient tenant id.
func (g *Guard) BelongsToCurrentTenant(ctx context.Context, recordTenantID int64) bool {
	tenantID, ok := contexts.GetTenantID(ctx)
	return ok && tenantID == recordTenantID
}

// CanBeAccessedBy compares the record's tenant foreign key to the given
// tenant id, independent of ambient context.
func (g *Guard) CanBeAccessedBy(recordTenantID, tenantID int64) bool {
	return recordTenantID == tenantID
}

// RequireAccess asserts the record belongs to the current tenant, unless a
// bypass is active.
func (g *Guard) RequireAccess(ctx context.Context, recordTenantID int64) error {
	if g.class != TenantScoped || IsBypassActive(ctx) {
		return nil
	}

	tenantID, _ := contexts.GetTenantID(ctx)
	if tenantID == recordTenantID {
		return nil
	}

	return &CrossTenantAccessError{
		Entity:         g.entity,
		RecordTenantID: recordTenantID,
		TenantID:       tenantID,
	}
}
