// Package permission defines the Permission entity, its store interface, and
// the manager that caches the name/id maps the mask layout depends on.
package permission

import (
	"time"

	"github.com/xraph/rowguard/id"
)

// Permission represents a named operation rows of protected entity types can
// be checked against (VIEW, EDIT, custom actions).
type Permission struct {
	ID          id.PermissionID `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Label       string          `json:"label,omitempty" db:"label"`
	Description string          `json:"description,omitempty" db:"description"`

	// ApplyToAll makes the permission applicable to every protected type
	// regardless of group membership.
	ApplyToAll bool `json:"apply_to_all" db:"apply_to_all"`

	// GroupNames lists the permission groups the permission belongs to.
	// Glob patterns with a trailing '*' are allowed.
	GroupNames []string `json:"group_names,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing permissions.
type ListFilter struct {
	Group  string `json:"group,omitempty"`
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}
