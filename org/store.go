package org

import "context"

// Store defines persistence operations for the organizational directory.
// ListUsers and ListBusinessUnits are the bulk scans the owner tree provider
// rebuilds from; any write to organizational relations outside this store
// must be followed by a tree invalidation (documented external contract).
type Store interface {
	// CreateUser persists a new user with its associations.
	CreateUser(ctx context.Context, u *User) error

	// GetUser retrieves a user by id.
	GetUser(ctx context.Context, userID string) (*User, error)

	// UpdateUser persists changes to a user.
	UpdateUser(ctx context.Context, u *User) error

	// DeleteUser removes a user by id.
	DeleteUser(ctx context.Context, userID string) error

	// ListUsers returns all users with their associations.
	ListUsers(ctx context.Context) ([]*User, error)

	// CreateBusinessUnit persists a new business unit.
	CreateBusinessUnit(ctx context.Context, bu *BusinessUnit) error

	// GetBusinessUnit retrieves a business unit by id.
	GetBusinessUnit(ctx context.Context, buID string) (*BusinessUnit, error)

	// UpdateBusinessUnit persists changes to a business unit.
	UpdateBusinessUnit(ctx context.Context, bu *BusinessUnit) error

	// DeleteBusinessUnit removes a business unit by id.
	DeleteBusinessUnit(ctx context.Context, buID string) error

	// ListBusinessUnits returns all business units.
	ListBusinessUnits(ctx context.Context) ([]*BusinessUnit, error)

	// CreateOrganization persists a new organization.
	CreateOrganization(ctx context.Context, o *Organization) error

	// GetOrganization retrieves an organization by id.
	GetOrganization(ctx context.Context, orgID string) (*Organization, error)

	// ListOrganizations returns all organizations.
	ListOrganizations(ctx context.Context) ([]*Organization, error)
}
