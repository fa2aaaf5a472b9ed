// Package rowguard provides hierarchical row-level access control for Go.
//
// Rowguard resolves WHO may touch WHICH rows of an entity type through an
// organizational hierarchy (organization → business unit → user). A check
// resolves to an access level (NONE, BASIC, LOCAL, DEEP, GLOBAL, SYSTEM)
// from access control entries, then decides against the concrete row's
// ownership; the same machinery compiles into query conditions so lists only
// ever fetch visible rows. It integrates with the Forge ecosystem and ships
// memory, SQLite, and Postgres stores.
//
//	eng, err := rowguard.NewEngine(
//	    rowguard.WithStore(memStore),
//	    rowguard.WithOwnershipProvider(ownerMeta),
//	)
//	res, err := eng.IsGranted(ctx, token, "VIEW", document)
package rowguard

import "strings"

// Token carries the authenticated subject of a check: the user and the
// organization the user is currently acting in. An empty OrganizationID
// means no organization context; checks below SYSTEM level then deny for
// organization-aware entity types.
type Token struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id,omitempty"`
}

// ObjectIdentity names the target of a check when no concrete row is at
// hand: a whole entity type ("entity" root) or a non-entity action.
type ObjectIdentity struct {
	// ID is the identity discriminator: "entity" for entity-root identities,
	// "action" for action identities, or a row id for instance identities.
	ID string `json:"id"`

	// Type is the entity type or action name.
	Type string `json:"type"`
}

// IsRoot reports whether the identity addresses a whole class of objects
// rather than a single row.
func (o ObjectIdentity) IsRoot() bool {
	id := strings.ToLower(o.ID)
	return id == RootEntity || id == RootAction
}

const (
	// RootEntity is the ObjectIdentity.ID of entity-root identities.
	RootEntity = "entity"

	// RootAction is the ObjectIdentity.ID of action identities.
	RootAction = "action"
)

// ParseDescriptor converts a textual object descriptor into an
// ObjectIdentity. "entity:Document" and "action:export" describe roots;
// "Document:doc_42" describes the single row doc_42.
func ParseDescriptor(descriptor string) (ObjectIdentity, error) {
	head, tail, ok := strings.Cut(descriptor, ":")
	if !ok || head == "" || tail == "" {
		return ObjectIdentity{}, &InvalidDescriptorError{Descriptor: descriptor}
	}
	if id := strings.ToLower(head); id == RootEntity || id == RootAction {
		return ObjectIdentity{ID: id, Type: tail}, nil
	}
	return ObjectIdentity{ID: tail, Type: head}, nil
}

// FieldVote targets a single field of an object in a check. The voter
// unwraps it and resolves extensions against the underlying object.
type FieldVote struct {
	Object any    `json:"object"`
	Field  string `json:"field"`
}

// Entity is implemented by domain objects that expose their entity type and
// row id to the voter.
type Entity interface {
	EntityType() string
	EntityID() string
}

// Owned is implemented by domain objects that expose their owner reference.
// The meaning of the id (user, business unit, or organization) follows the
// type's ownership metadata.
type Owned interface {
	OwnerIdentifier() string
}

// OrganizationOwned is implemented by domain objects that carry an
// organization reference alongside the owner.
type OrganizationOwned interface {
	OrganizationIdentifier() string
}

// Decision is the outcome of a vote.
type Decision string

const (
	// DecisionGrant means the permission is granted.
	DecisionGrant Decision = "grant"

	// DecisionDeny means the permission is denied.
	DecisionDeny Decision = "deny"

	// DecisionAbstain means no applicable entry or extension was found; the
	// caller treats it per its own default (the engine denies).
	DecisionAbstain Decision = "abstain"
)
