package objects

import "time"

// Organization is the tenant entity. Every tenant-scoped record carries its id
// as the organization_id foreign key.
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Membership links a user to an organization with a role.
// It is tenant-scoped: the organization_id is assigned from the ambient
// tenant at creation and is immutable afterwards.
type Membership struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organizationID"`
	UserID         int64     `json:"userID"`
	RoleID         int64     `json:"roleID"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Project is a sample tenant-scoped domain entity.
type Project struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organizationID"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
