// Package org defines the organizational directory entities the owner tree
// is built from: users, business units, and organizations. Their ids belong
// to the host application and are plain strings.
package org

import "time"

// User is a directory user with its organizational associations.
type User struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	// OwnerID references the user's owning (manager) user, empty when the
	// user has no manager. The manager chain is acyclic by convention.
	OwnerID string `json:"owner_id,omitempty" db:"owner_id"`

	// OrganizationIDs lists the organizations the user belongs to.
	OrganizationIDs []string `json:"organization_ids,omitempty" db:"-"`

	// BusinessUnitIDs lists the business units the user is directly
	// assigned to, across all its organizations.
	BusinessUnitIDs []string `json:"business_unit_ids,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BusinessUnit is one node of the subordinate-unit forest inside an
// organization.
type BusinessUnit struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	// OrganizationID references the unit's organization. A unit without an
	// organization is skipped when the owner tree is built.
	OrganizationID string `json:"organization_id,omitempty" db:"organization_id"`

	// OwnerID references the owning (parent) business unit, empty for
	// top-level units.
	OwnerID string `json:"owner_id,omitempty" db:"owner_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Organization is one tenant of the application.
type Organization struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Enabled bool   `json:"enabled" db:"enabled"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
