// Package ace defines the access control entries and security identities the
// granting strategy evaluates: who (identity) may do what (permission mask)
// to which rows (object- or class-scoped entries).
package ace

import (
	"time"

	"github.com/xraph/rowguard/id"
)

// IdentityKind classifies a security identity.
type IdentityKind string

const (
	// IdentityUser identifies a single user.
	IdentityUser IdentityKind = "user"

	// IdentityRole identifies every holder of a role.
	IdentityRole IdentityKind = "role"
)

// SecurityIdentity is a subject access control entries are granted to.
// Name is unique per kind; "user:<id>" and "role:<name>" are the canonical
// spellings.
type SecurityIdentity struct {
	ID        id.IdentityID `json:"id" db:"id"`
	Kind      IdentityKind  `json:"kind" db:"kind"`
	Name      string        `json:"name" db:"name"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// QualifiedName returns the canonical "kind:name" spelling of the identity.
func (s *SecurityIdentity) QualifiedName() string {
	return string(s.Kind) + ":" + s.Name
}

// Entry is one access control entry. An entry with an empty ObjectID is
// class-scoped and applies to every row of ObjectType; otherwise it is
// object-scoped and applies to that row only.
type Entry struct {
	ID         id.EntryID    `json:"id" db:"id"`
	IdentityID id.IdentityID `json:"identity_id" db:"identity_id"`
	ObjectType string        `json:"object_type" db:"object_type"`
	ObjectID   string        `json:"object_id,omitempty" db:"object_id"`

	// Mask encodes the granted (or denied) permission bits.
	Mask uint32 `json:"mask" db:"mask"`

	// Granting distinguishes allow entries from deny entries.
	Granting bool `json:"granting" db:"granting"`

	// AuditSuccess and AuditFailure request an audit record when this entry
	// decides a check with the corresponding outcome.
	AuditSuccess bool `json:"audit_success" db:"audit_success"`
	AuditFailure bool `json:"audit_failure" db:"audit_failure"`

	// Order positions the entry among its siblings; lower evaluates first.
	Order int `json:"order" db:"sort_order"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsClassScoped reports whether the entry applies to the whole type.
func (e *Entry) IsClassScoped() bool { return e.ObjectID == "" }

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}

// ListFilter narrows entry listings.
type ListFilter struct {
	IdentityID *id.IdentityID `json:"identity_id,omitempty"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Limit      int            `json:"limit,omitempty"`
	Offset     int            `json:"offset,omitempty"`
}
