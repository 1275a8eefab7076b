package objects

import "time"

// User is a system-scoped entity: accounts are global and join organizations
// through memberships.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	HashedPassword string    `json:"-"`
	IsOwner        bool      `json:"isOwner"`
	Scopes         []string  `json:"scopes"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Role is system-scoped reference data shared by all organizations.
type Role struct {
	ID     int64    `json:"id"`
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Scopes []string `json:"scopes"`
}

// UserInfo is the transport shape of a user with resolved memberships.
type UserInfo struct {
	ID            int64            `json:"id"`
	Email         string           `json:"email"`
	FirstName     string           `json:"firstName"`
	LastName      string           `json:"lastName"`
	IsOwner       bool             `json:"isOwner"`
	Scopes        []string         `json:"scopes"`
	Organizations []MembershipInfo `json:"organizations"`
}

// MembershipInfo is the transport shape of a membership with the joined
// organization and role.
type MembershipInfo struct {
	ID               int64  `json:"id"`
	OrganizationID   int64  `json:"organizationID"`
	OrganizationName string `json:"organizationName"`
	UserID           int64  `json:"userID"`
	UserEmail        string `json:"userEmail"`
	RoleCode         string `json:"roleCode"`
}
