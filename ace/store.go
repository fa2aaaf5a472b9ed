package ace

import (
	"context"

	"github.com/xraph/rowguard/id"
)

// Store defines persistence operations for security identities and access
// control entries.
type Store interface {
	// CreateIdentity persists a new security identity.
	CreateIdentity(ctx context.Context, sid *SecurityIdentity) error

	// GetIdentity retrieves a security identity by ID.
	GetIdentity(ctx context.Context, sidID id.IdentityID) (*SecurityIdentity, error)

	// GetIdentityByName retrieves a security identity by kind and name.
	GetIdentityByName(ctx context.Context, kind IdentityKind, name string) (*SecurityIdentity, error)

	// UpdateIdentity persists changes to a security identity.
	UpdateIdentity(ctx context.Context, sid *SecurityIdentity) error

	// DeleteIdentity removes a security identity and all its entries.
	DeleteIdentity(ctx context.Context, sidID id.IdentityID) error

	// CreateEntry persists a new access control entry.
	CreateEntry(ctx context.Context, e *Entry) error

	// GetEntry retrieves an access control entry by ID.
	GetEntry(ctx context.Context, entryID id.EntryID) (*Entry, error)

	// UpdateEntry persists changes to an access control entry.
	UpdateEntry(ctx context.Context, e *Entry) error

	// DeleteEntry removes an access control entry by ID.
	DeleteEntry(ctx context.Context, entryID id.EntryID) error

	// ListEntriesForIdentity returns the identity's entries for an object
	// type, ordered by Order. An empty objectID restricts the result to
	// class-scoped entries; otherwise both the object-scoped entries for
	// objectID and the class-scoped entries are returned.
	ListEntriesForIdentity(ctx context.Context, sidID id.IdentityID, objectType, objectID string) ([]*Entry, error)

	// ListEntries returns entries matching the filter.
	ListEntries(ctx context.Context, filter *ListFilter) ([]*Entry, error)
}
