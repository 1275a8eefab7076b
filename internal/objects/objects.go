// Package objects contains the entity and transport objects shared by the
// context, tenancy and biz layers. They live here to avoid circular
// dependencies between those packages.
package objects
