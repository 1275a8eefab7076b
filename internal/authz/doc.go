// Package authz provides the single-principal authorization model used by
// the tenancy guard and the HTTP layer.
//
// Core concepts:
//
//   - Principal: A single authorization identity per request (System/User/Test).
//     Set via NewSystemContext, NewUserContext, NewTestContext, or WithPrincipal.
//
//   - Scope checks: HasScope / RequireScope evaluate the scopes carried by the
//     current user against the catalog in the scopes package.
//
// Usage rules:
//
//  1. Each context carries at most one principal; WithPrincipal is set-once.
//  2. Background tasks must declare a System principal via NewSystemContext.
//  3. The Test principal exists only for the test environment.
package authz
