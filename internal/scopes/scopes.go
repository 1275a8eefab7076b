package scopes

import "slices"

// ScopeSlug represents a permission scope to view or manage the data of the system.
// Every user can view and manage their own data, and manage data of other users if they have the appropriate scopes.
type ScopeSlug string

// Available scopes in the system.
const (
	// ScopeReadOrganizations read the organizations of the system.
	ScopeReadOrganizations ScopeSlug = "read_organizations"
	// ScopeWriteOrganizations manage the organizations of the system.
	ScopeWriteOrganizations ScopeSlug = "write_organizations"

	// ScopeReadMemberships read the memberships of the organization.
	ScopeReadMemberships ScopeSlug = "read_memberships"
	// ScopeWriteMemberships manage the memberships of the organization.
	ScopeWriteMemberships ScopeSlug = "write_memberships"

	// ScopeReadProjects read the projects of the organization.
	ScopeReadProjects ScopeSlug = "read_projects"
	// ScopeWriteProjects manage the projects of the organization.
	ScopeWriteProjects ScopeSlug = "write_projects"

	// ScopeReadRoles read the roles of the system.
	ScopeReadRoles ScopeSlug = "read_roles"
	// ScopeWriteRoles manage the roles of the system.
	ScopeWriteRoles ScopeSlug = "write_roles"

	// ScopeReadUsers read the users of the system.
	ScopeReadUsers ScopeSlug = "read_users"
	// ScopeWriteUsers manage the users of the system.
	ScopeWriteUsers ScopeSlug = "write_users"

	// ScopeReadScoping read the tenancy scoping diagnostics of the system.
	ScopeReadScoping ScopeSlug = "read_scoping"
)

type ScopeLevel string

const (
	// ScopeLevelSystem is the scope level for system-wide operations.
	// If a user has a scope with ScopeLevelSystem, they can perform operations on the entire system.
	ScopeLevelSystem ScopeLevel = "system"

	// ScopeLevelOrganization is the scope level for organization-specific operations.
	// If a user has a scope with ScopeLevelOrganization, they can perform operations on
	// the organizations they are a member of.
	ScopeLevelOrganization ScopeLevel = "organization"
)

type Scope struct {
	Slug        ScopeSlug
	Description string
	Levels      []ScopeLevel
}

// scopeConfigs defines all available scopes with their configurations.
var scopeConfigs = []Scope{
	{
		Slug:        ScopeReadOrganizations,
		Description: "View organizations",
		Levels:      []ScopeLevel{ScopeLevelSystem, ScopeLevelOrganization},
	},
	{
		Slug:        ScopeWriteOrganizations,
		Description: "Manage organizations (create, edit, delete)",
		Levels:      []ScopeLevel{ScopeLevelSystem},
	},
	{
		Slug:        ScopeReadMemberships,
		Description: "View organization memberships",
		Levels:      []ScopeLevel{ScopeLevelSystem, ScopeLevelOrganization},
	},
	{
		Slug:        ScopeWriteMemberships,
		Description: "Manage organization memberships (invite, change role, remove)",
		Levels:      []ScopeLevel{ScopeLevelSystem, ScopeLevelOrganization},
	},
	{
		Slug:        ScopeReadProjects,
		Description: "View projects",
		Levels:      []ScopeLevel{ScopeLevelSystem, ScopeLevelOrganization},
	},
	{
		Slug:        ScopeWriteProjects,
		Description: "Manage projects (create, edit, delete)",
		Levels:      []ScopeLevel{ScopeLevelSystem, ScopeLevelOrganization},
	},
	{
		Slug:        ScopeReadRoles,
		Description: "View role information",
		Levels:      []ScopeLevel{ScopeLevelSystem, ScopeLevelOrganization},
	},
	{
		Slug:        ScopeWriteRoles,
		Description: "Manage roles (create, edit, delete)",
		Levels:      []ScopeLevel{ScopeLevelSystem},
	},
	{
		Slug:        ScopeReadUsers,
		Description: "View user information",
		Levels:      []ScopeLevel{ScopeLevelSystem, ScopeLevelOrganization},
	},
	{
		Slug:        ScopeWriteUsers,
		Description: "Manage users (create, edit, delete)",
		Levels:      []ScopeLevel{ScopeLevelSystem},
	},
	{
		Slug:        ScopeReadScoping,
		Description: "View tenancy scoping diagnostics",
		Levels:      []ScopeLevel{ScopeLevelSystem},
	},
}

// AllScopes returns all available scopes, optionally filtered by level.
func AllScopes(level *ScopeLevel) []Scope {
	if level == nil {
		return scopeConfigs
	}

	filtered := make([]Scope, 0)

	for _, scope := range scopeConfigs {
		if slices.Contains(scope.Levels, *level) {
			filtered = append(filtered, scope)
		}
	}

	return filtered
}

// AllScopesAsStrings returns all available scopes as strings.
func AllScopesAsStrings() []string {
	scopes := AllScopes(nil)

	result := make([]string, len(scopes))
	for i, scope := range scopes {
		result[i] = string(scope.Slug)
	}

	return result
}

// IsValidScope checks if a scope is valid.
func IsValidScope(scope string) bool {
	for _, validScope := range AllScopes(nil) {
		if string(validScope.Slug) == scope {
			return true
		}
	}

	return false
}
