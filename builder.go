package rowguard

import (
	"context"
	"log/slog"

	"github.com/xraph/rowguard/accesslevel"
	"github.com/xraph/rowguard/ownership"
	"github.com/xraph/rowguard/ownertree"
	"github.com/xraph/rowguard/secmeta"
)

// ConditionBuilder compiles the subject's access into query conditions, so
// list queries fetch only visible rows instead of filtering after the fact.
// The builder reuses the voter to resolve the access level, which keeps
// single-row checks and list filtering consistent by construction.
type ConditionBuilder struct {
	voter     *Voter
	ownership ownership.Provider
	secmeta   secmeta.Provider
	tree      *ownertree.Provider
	logger    *slog.Logger
}

// NewConditionBuilder creates a condition builder. logger may be nil.
func NewConditionBuilder(
	voter *Voter,
	ownershipProvider ownership.Provider,
	secProvider secmeta.Provider,
	treeProvider *ownertree.Provider,
	logger *slog.Logger,
) *ConditionBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConditionBuilder{
		voter:     voter,
		ownership: ownershipProvider,
		secmeta:   secProvider,
		tree:      treeProvider,
		logger:    logger.With("component", "condition_builder"),
	}
}

// ConditionData compiles the visibility condition for rows of entityType
// under the given permission ("VIEW" when empty). The result is always safe
// to apply: an unresolvable or denied access compiles to the denied
// condition, never to an open query.
func (b *ConditionBuilder) ConditionData(ctx context.Context, token Token, entityType, perm string) (Condition, error) {
	if perm == "" {
		perm = "VIEW"
	}

	// Rows outside access control are never filtered: no voter, an
	// anonymous subject, or a type the security metadata does not protect.
	if b.voter == nil || token.UserID == "" {
		return UnrestrictedCondition(), nil
	}
	if b.secmeta != nil && !b.secmeta.IsProtected(ctx, entityType) {
		return UnrestrictedCondition(), nil
	}

	level := accesslevel.None
	res, err := b.voter.Vote(ctx, token,
		ObjectIdentity{ID: RootEntity, Type: entityType},
		[]string{perm},
		func(l accesslevel.Level) { level = l },
	)
	if err != nil {
		return DeniedCondition(), err
	}
	if !res.Granted() {
		return DeniedCondition(), nil
	}

	if level == accesslevel.System {
		return UnrestrictedCondition(), nil
	}
	var meta ownership.Metadata
	if b.ownership != nil {
		meta = b.ownership.Metadata(entityType)
	}
	if !meta.HasOwner() {
		// The organization table itself is visible through the user's
		// memberships; other unowned types are unrestricted.
		if b.ownership != nil && entityType == b.ownership.OrganizationType() {
			return b.organizationSelfCondition(ctx, token)
		}
		return UnrestrictedCondition(), nil
	}

	switch meta.OwnerType() {
	case ownership.OwnerOrganization:
		return b.organizationOwnedCondition(token, meta, level), nil
	case ownership.OwnerBusinessUnit:
		return b.businessUnitOwnedCondition(ctx, token, meta, level)
	case ownership.OwnerUser:
		return b.userOwnedCondition(ctx, token, meta, level)
	default:
		return DeniedCondition(), nil
	}
}

// organizationSelfCondition restricts rows of the organization type to the
// organizations the user is a member of. The table is keyed by its own id.
func (b *ConditionBuilder) organizationSelfCondition(ctx context.Context, token Token) (Condition, error) {
	tree, err := b.tree.Tree(ctx)
	if err != nil {
		return DeniedCondition(), err
	}
	ids := tree.UserOrganizationIDs(token.UserID)
	if len(ids) == 0 {
		return DeniedCondition(), nil
	}
	c := Condition{kind: ConditionFilter, OwnerColumn: "id", ValueKind: ValueSelfID}
	if len(ids) == 1 {
		c.OwnerID = ids[0]
	} else {
		c.OwnerIDs = ids
	}
	return c, nil
}

func (b *ConditionBuilder) organizationOwnedCondition(token Token, meta ownership.Metadata, level accesslevel.Level) Condition {
	// The owner is the organization itself, so anything below GLOBAL has no
	// reachable owner set.
	if level < accesslevel.Global || token.OrganizationID == "" {
		return DeniedCondition()
	}
	return b.filter(meta, Condition{
		OwnerColumn: meta.OwnerColumnName(),
		OwnerID:     token.OrganizationID,
	}, token, false)
}

func (b *ConditionBuilder) businessUnitOwnedCondition(
	ctx context.Context,
	token Token,
	meta ownership.Metadata,
	level accesslevel.Level,
) (Condition, error) {
	if token.OrganizationID == "" {
		return DeniedCondition(), nil
	}
	tree, err := b.tree.Tree(ctx)
	if err != nil {
		return DeniedCondition(), err
	}

	switch level {
	case accesslevel.Global:
		// Organization-wide access needs no owner predicate; the
		// organization column alone scopes the rows, and a type without one
		// has nothing left to scope by.
		if meta.OrganizationColumnName() != "" {
			return b.filter(meta, Condition{}, token, true), nil
		}
		return UnrestrictedCondition(), nil
	case accesslevel.Deep:
		return b.ownerSet(meta, b.reachableBusinessUnits(tree, token, true), token), nil
	case accesslevel.Local:
		return b.ownerSet(meta, b.reachableBusinessUnits(tree, token, false), token), nil
	default:
		return DeniedCondition(), nil
	}
}

func (b *ConditionBuilder) userOwnedCondition(
	ctx context.Context,
	token Token,
	meta ownership.Metadata,
	level accesslevel.Level,
) (Condition, error) {
	if level == accesslevel.Basic {
		return b.filter(meta, Condition{
			OwnerColumn: meta.OwnerColumnName(),
			OwnerID:     token.UserID,
		}, token, false), nil
	}
	if token.OrganizationID == "" {
		return DeniedCondition(), nil
	}
	tree, err := b.tree.Tree(ctx)
	if err != nil {
		return DeniedCondition(), err
	}

	switch level {
	case accesslevel.Global:
		if meta.OrganizationColumnName() != "" {
			return b.filter(meta, Condition{}, token, true), nil
		}
		return UnrestrictedCondition(), nil
	case accesslevel.Deep:
		units := b.reachableBusinessUnits(tree, token, true)
		return b.ownerSet(meta, b.businessUnitUserIDs(tree, token, units), token), nil
	case accesslevel.Local:
		units := b.reachableBusinessUnits(tree, token, false)
		return b.ownerSet(meta, b.businessUnitUserIDs(tree, token, units), token), nil
	default:
		return DeniedCondition(), nil
	}
}

// reachableBusinessUnits returns the token user's business units in the
// current organization, extended to subordinate units when deep is set.
func (b *ConditionBuilder) reachableBusinessUnits(tree *ownertree.Tree, token Token, deep bool) []string {
	units := tree.UserBusinessUnitIDs(token.UserID, token.OrganizationID)
	if !deep {
		return units
	}
	seen := make(map[string]struct{}, len(units))
	result := make([]string, 0, len(units))
	for _, bu := range units {
		if _, ok := seen[bu]; ok {
			continue
		}
		seen[bu] = struct{}{}
		result = append(result, bu)
	}
	for _, bu := range units {
		for _, sub := range tree.SubordinateBusinessUnitIDs(bu) {
			if _, ok := seen[sub]; ok {
				continue
			}
			seen[sub] = struct{}{}
			result = append(result, sub)
		}
	}
	return result
}

// businessUnitUserIDs returns the users assigned to any of the units. The
// token's user is always part of its own visibility set.
func (b *ConditionBuilder) businessUnitUserIDs(tree *ownertree.Tree, token Token, units []string) []string {
	seen := map[string]struct{}{token.UserID: {}}
	result := []string{token.UserID}
	for _, bu := range units {
		for _, userID := range tree.UsersAssignedToBusinessUnit(bu) {
			if _, ok := seen[userID]; ok {
				continue
			}
			seen[userID] = struct{}{}
			result = append(result, userID)
		}
	}
	return result
}

// ownerSet builds a set-valued owner filter; an empty set compiles to the
// denied condition.
func (b *ConditionBuilder) ownerSet(meta ownership.Metadata, ids []string, token Token) Condition {
	if len(ids) == 0 {
		return DeniedCondition()
	}
	c := Condition{OwnerColumn: meta.OwnerColumnName()}
	if len(ids) == 1 {
		c.OwnerID = ids[0]
	} else {
		c.OwnerIDs = ids
	}
	return b.filter(meta, c, token, false)
}

// filter finalizes a filter condition: it marks self-id predicates, and
// attaches the organization predicate when the type carries an organization
// column. orgOnly conditions scope purely by organization.
func (b *ConditionBuilder) filter(meta ownership.Metadata, c Condition, token Token, orgOnly bool) Condition {
	c.kind = ConditionFilter
	if c.OwnerColumn != "" && c.OwnerColumn == "id" {
		c.ValueKind = ValueSelfID
	}
	orgCol := meta.OrganizationColumnName()
	if orgCol != "" && token.OrganizationID != "" && (orgOnly || !meta.IsOrganizationOwned()) {
		c.OrganizationColumn = orgCol
		c.OrganizationID = token.OrganizationID
	}
	return c
}
