package rowguard

// ConditionKind classifies what a compiled condition means for a query.
type ConditionKind int

const (
	// ConditionDenied means no row is visible; the query should return
	// nothing. This is the zero value, so an empty Condition fails closed.
	ConditionDenied ConditionKind = iota

	// ConditionUnrestricted means every row is visible; no predicate is
	// needed.
	ConditionUnrestricted

	// ConditionFilter means visibility narrows to the rows matching the
	// owner and organization predicates.
	ConditionFilter
)

// ValueKind tells how the owner predicate relates to the row.
type ValueKind int

const (
	// ValueOwnerAssociation compares the row's owner reference column.
	ValueOwnerAssociation ValueKind = iota

	// ValueSelfID compares the row's own primary key; used when the entity
	// type is itself a hierarchy anchor (the users table owned by "id").
	ValueSelfID
)

// Condition is the compiled visibility predicate for one entity type,
// permission, and subject. The caller renders it into its query dialect:
// OwnerColumn IN OwnerIDs (or = OwnerID) AND OrganizationColumn =
// OrganizationID, each part only when present.
type Condition struct {
	kind ConditionKind

	// OwnerColumn is the column the owner predicate applies to.
	OwnerColumn string `json:"owner_column,omitempty"`

	// OwnerID holds the single-value owner predicate. Mutually exclusive
	// with OwnerIDs.
	OwnerID string `json:"owner_id,omitempty"`

	// OwnerIDs holds the set-valued owner predicate. Mutually exclusive
	// with OwnerID.
	OwnerIDs []string `json:"owner_ids,omitempty"`

	// ValueKind tells whether the owner predicate targets the owner
	// association or the row's own id.
	ValueKind ValueKind `json:"value_kind,omitempty"`

	// OrganizationColumn and OrganizationID express the organization
	// predicate, empty when none applies.
	OrganizationColumn string `json:"organization_column,omitempty"`
	OrganizationID     string `json:"organization_id,omitempty"`
}

// UnrestrictedCondition returns the condition that keeps every row.
func UnrestrictedCondition() Condition {
	return Condition{kind: ConditionUnrestricted}
}

// DeniedCondition returns the condition that keeps no row.
func DeniedCondition() Condition {
	return Condition{kind: ConditionDenied}
}

// Kind returns the condition's classification.
func (c Condition) Kind() ConditionKind { return c.kind }

// IsUnrestricted reports whether every row is visible.
func (c Condition) IsUnrestricted() bool { return c.kind == ConditionUnrestricted }

// IsDenied reports whether no row is visible.
func (c Condition) IsDenied() bool { return c.kind == ConditionDenied }

// HasOwnerPredicate reports whether the condition constrains the owner.
func (c Condition) HasOwnerPredicate() bool {
	return c.kind == ConditionFilter && c.OwnerColumn != ""
}

// HasOrganizationPredicate reports whether the condition constrains the
// organization.
func (c Condition) HasOrganizationPredicate() bool {
	return c.kind == ConditionFilter && c.OrganizationColumn != ""
}
