package biz

import (
	"errors"
	"strings"
)

var (
	ErrInvalidJWT            = errors.New("invalid jwt token")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrNotFound              = errors.New("not found")
	ErrEmailTaken            = errors.New("email already registered")
	ErrSlugTaken             = errors.New("slug already taken")
	ErrAlreadyMember         = errors.New("user is already a member of the organization")
	ErrOrganizationImmutable = errors.New("organization cannot be changed after creation")
	ErrNoCurrentOrganization = errors.New("no current organization is set")
	ErrNotOrganizationMember = errors.New("user is not a member of the organization")
	ErrInternal              = errors.New("server internal error, please try again later")
)

// isUniqueViolation matches unique constraint errors across the supported
// drivers without importing their error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
