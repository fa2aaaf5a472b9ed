package rowguard

import (
	"context"
	"strings"

	"github.com/xraph/rowguard/accesslevel"
	"github.com/xraph/rowguard/ownership"
	"github.com/xraph/rowguard/ownertree"
	"github.com/xraph/rowguard/permission"
	"github.com/xraph/rowguard/secmeta"
)

// EntityExtension decides checks against rows of protected entity types
// through their ownership: the triggered access level widens the set of
// owners the token's user reaches through the organizational hierarchy, and
// the concrete row's owner must fall inside that set.
type EntityExtension struct {
	secmeta   secmeta.Provider
	ownership ownership.Provider
	tree      *ownertree.Provider
	perms     *permission.Manager
	field     Extension
}

var _ Extension = (*EntityExtension)(nil)

// NewEntityExtension creates the entity extension. perms may be nil; the
// default permission order is then used for every type.
func NewEntityExtension(
	secProvider secmeta.Provider,
	ownershipProvider ownership.Provider,
	treeProvider *ownertree.Provider,
	perms *permission.Manager,
) *EntityExtension {
	e := &EntityExtension{
		secmeta:   secProvider,
		ownership: ownershipProvider,
		tree:      treeProvider,
		perms:     perms,
	}
	e.field = &fieldExtension{entity: e}
	return e
}

// Key implements Extension.
func (e *EntityExtension) Key() string { return RootEntity }

// Supports implements Extension. The extension handles the entity root
// identity and every type the security metadata registry protects.
func (e *EntityExtension) Supports(ctx context.Context, objectType, objectID string) bool {
	if strings.ToLower(objectID) == RootEntity {
		return true
	}
	if e.secmeta == nil {
		return false
	}
	return e.secmeta.IsProtected(ctx, objectType)
}

// ObjectIdentity implements Extension.
func (e *EntityExtension) ObjectIdentity(_ context.Context, object any) (ObjectIdentity, error) {
	return objectIdentityOf(object)
}

// DefaultPermission implements Extension.
func (e *EntityExtension) DefaultPermission() string { return "VIEW" }

// MaskBuilder implements Extension. The mask layout follows the permissions
// applicable to the type, so types in different permission groups get
// independent layouts.
func (e *EntityExtension) MaskBuilder(ctx context.Context, objectType string) (*MaskBuilder, error) {
	if e.perms == nil || objectType == "" {
		return NewMaskBuilder()
	}
	perms, err := e.perms.PermissionsForEntity(ctx, objectType)
	if err != nil {
		return nil, err
	}
	if len(perms) == 0 {
		return NewMaskBuilder()
	}
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = p.Name
	}
	return NewMaskBuilder(names...)
}

// MaxAccessLevel implements Extension.
func (e *EntityExtension) MaxAccessLevel(_ context.Context, level accesslevel.Level, objectType string) accesslevel.Level {
	if e.ownership == nil {
		return level
	}
	return e.ownership.MaxAccessLevel(level, objectType)
}

// FieldExtension implements Extension.
func (e *EntityExtension) FieldExtension() (Extension, bool) { return e.field, true }

// DecideIsGranting implements Extension. triggeredMask is the window of the
// matched permission; the level it encodes bounds how far from the token's
// user the row's owner may sit in the hierarchy.
func (e *EntityExtension) DecideIsGranting(ctx context.Context, triggeredMask Bitmask, token Token, object any) (bool, error) {
	oid, err := e.ObjectIdentity(ctx, object)
	if err != nil {
		return false, err
	}
	if oid.IsRoot() {
		return true, nil
	}

	var meta ownership.Metadata
	if e.ownership != nil {
		meta = e.ownership.Metadata(oid.Type)
	}
	if !meta.HasOwner() {
		return true, nil
	}

	owned, ok := object.(Owned)
	if !ok {
		// Without the concrete row's owner there is nothing to compare
		// against; the level alone already granted the permission bit.
		return true, nil
	}

	b, err := e.MaskBuilder(ctx, oid.Type)
	if err != nil {
		return false, err
	}
	level := e.MaxAccessLevel(ctx, b.AccessLevel(triggeredMask, ""), oid.Type)

	objectOrg := ""
	if orgOwned, ok := object.(OrganizationOwned); ok {
		objectOrg = orgOwned.OrganizationIdentifier()
	}
	if meta.IsOrganizationOwned() && objectOrg == "" {
		objectOrg = owned.OwnerIdentifier()
	}

	switch level {
	case accesslevel.System:
		return true, nil
	case accesslevel.Global:
		return objectOrg != "" && objectOrg == token.OrganizationID, nil
	case accesslevel.Deep:
		return e.ownerWithinBusinessUnits(ctx, token, meta, owned.OwnerIdentifier(), objectOrg, true)
	case accesslevel.Local:
		return e.ownerWithinBusinessUnits(ctx, token, meta, owned.OwnerIdentifier(), objectOrg, false)
	case accesslevel.Basic:
		if !meta.IsUserOwned() {
			return false, nil
		}
		return owned.OwnerIdentifier() == token.UserID && e.sameOrganization(objectOrg, token), nil
	default:
		return false, nil
	}
}

// ownerWithinBusinessUnits reports whether the row's owner falls inside the
// token user's business units of the current organization, extended to
// subordinate units when deep is set. Organization-owned rows never grant
// below GLOBAL.
func (e *EntityExtension) ownerWithinBusinessUnits(
	ctx context.Context,
	token Token,
	meta ownership.Metadata,
	ownerID, objectOrg string,
	deep bool,
) (bool, error) {
	if meta.IsOrganizationOwned() {
		return false, nil
	}
	if !e.sameOrganization(objectOrg, token) {
		return false, nil
	}

	tree, err := e.tree.Tree(ctx)
	if err != nil {
		return false, err
	}

	units := tree.UserBusinessUnitIDs(token.UserID, token.OrganizationID)
	unitSet := make(map[string]struct{}, len(units))
	for _, bu := range units {
		unitSet[bu] = struct{}{}
	}
	if deep {
		for _, bu := range units {
			for _, sub := range tree.SubordinateBusinessUnitIDs(bu) {
				unitSet[sub] = struct{}{}
			}
		}
	}

	if meta.IsBusinessUnitOwned() {
		_, ok := unitSet[ownerID]
		return ok, nil
	}

	// User-owned: the owning user must be assigned to one of the reachable
	// units within the token's organization.
	for _, bu := range tree.UserBusinessUnitIDs(ownerID, token.OrganizationID) {
		if _, ok := unitSet[bu]; ok {
			return true, nil
		}
	}
	return false, nil
}

// sameOrganization treats rows without an organization reference as
// belonging to the current one; types that carry the reference must match.
func (e *EntityExtension) sameOrganization(objectOrg string, token Token) bool {
	return objectOrg == "" || objectOrg == token.OrganizationID
}

// fieldExtension decides field-level checks. Field access follows the row:
// a field is visible exactly when its row is, so the decision delegates to
// the entity extension against the unwrapped object.
type fieldExtension struct {
	entity *EntityExtension
}

var _ Extension = (*fieldExtension)(nil)

func (f *fieldExtension) Key() string { return RootEntity }

func (f *fieldExtension) Supports(ctx context.Context, objectType, objectID string) bool {
	return f.entity.Supports(ctx, objectType, objectID)
}

func (f *fieldExtension) ObjectIdentity(ctx context.Context, object any) (ObjectIdentity, error) {
	return f.entity.ObjectIdentity(ctx, object)
}

func (f *fieldExtension) DefaultPermission() string { return f.entity.DefaultPermission() }

func (f *fieldExtension) MaskBuilder(ctx context.Context, objectType string) (*MaskBuilder, error) {
	return f.entity.MaskBuilder(ctx, objectType)
}

func (f *fieldExtension) MaxAccessLevel(ctx context.Context, level accesslevel.Level, objectType string) accesslevel.Level {
	return f.entity.MaxAccessLevel(ctx, level, objectType)
}

func (f *fieldExtension) DecideIsGranting(ctx context.Context, triggeredMask Bitmask, token Token, object any) (bool, error) {
	return f.entity.DecideIsGranting(ctx, triggeredMask, token, object)
}

func (f *fieldExtension) FieldExtension() (Extension, bool) { return nil, false }
