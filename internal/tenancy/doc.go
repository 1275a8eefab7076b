// Package tenancy implements per-request tenant isolation over the
// relational stores, providing the ambient tenant context, automatic query
// scoping and a controlled, audited bypass mechanism.
//
// Core concepts:
//
//   - Tenant context: the current organization id for an execution unit.
//     Set per request by the server middleware, or temporarily through
//     RunWithTenant / RunWithoutTenant closures which always restore the
//     prior context, even on error or panic.
//
//   - Guard: attached to an entity type (table) at construction time.
//     ValidateCompatibility checks the schema for the tenant foreign key and
//     registers the entity; Scope renders the default read filter every
//     store query must carry. With no ambient tenant the filter is the
//     impossible predicate, never the unfiltered set.
//
//   - Bypass: controlled scoping suspension via RunUnscoped,
//     RunUnscopedReadonly, RunAsTenant, RunWithAdminBypass and
//     ForEachTenant. All bypass operations are audited and gated by the
//     disable_bypasses config switch.
//
//   - Registry: process-wide record of every guarded entity and its
//     classification (tenant-scoped, system-scoped or excluded), used for
//     diagnostics.
//
// Usage rules:
//
//  1. Stores never query a tenant-scoped table without the guard's Scope.
//  2. Prefer the closure runners to limit how far a bypass spreads.
//  3. All bypass reasons must be stable strings for audit aggregation.
//  4. Background tasks must declare a System principal via authz.NewSystemContext.
package tenancy
