package rowguard

import (
	"context"
	"strings"

	"github.com/xraph/rowguard/accesslevel"
)

// PermissionExecute is the single permission action checks resolve against.
const PermissionExecute = "EXECUTE"

// ActionExtension decides checks against non-entity capabilities (exports,
// merges, configuration switches). Actions have no rows and no ownership;
// an entry with the EXECUTE bit grants unconditionally.
type ActionExtension struct {
	actions map[string]struct{}
}

var _ Extension = (*ActionExtension)(nil)

// NewActionExtension creates the action extension over the known action
// names. An empty list accepts any action.
func NewActionExtension(actions ...string) *ActionExtension {
	var known map[string]struct{}
	if len(actions) > 0 {
		known = make(map[string]struct{}, len(actions))
		for _, a := range actions {
			known[a] = struct{}{}
		}
	}
	return &ActionExtension{actions: known}
}

// Key implements Extension.
func (e *ActionExtension) Key() string { return RootAction }

// Supports implements Extension. Only the action root identity is handled;
// actions never have instance identities.
func (e *ActionExtension) Supports(_ context.Context, objectType, objectID string) bool {
	if strings.ToLower(objectID) != RootAction {
		return false
	}
	if e.actions == nil {
		return true
	}
	_, ok := e.actions[objectType]
	return ok
}

// ObjectIdentity implements Extension.
func (e *ActionExtension) ObjectIdentity(_ context.Context, object any) (ObjectIdentity, error) {
	return objectIdentityOf(object)
}

// DefaultPermission implements Extension.
func (e *ActionExtension) DefaultPermission() string { return PermissionExecute }

// MaskBuilder implements Extension.
func (e *ActionExtension) MaskBuilder(context.Context, string) (*MaskBuilder, error) {
	return NewMaskBuilder(PermissionExecute)
}

// MaxAccessLevel implements Extension. Actions are not owned, so no level
// reduction applies.
func (e *ActionExtension) MaxAccessLevel(_ context.Context, level accesslevel.Level, _ string) accesslevel.Level {
	return level
}

// DecideIsGranting implements Extension.
func (e *ActionExtension) DecideIsGranting(context.Context, Bitmask, Token, any) (bool, error) {
	return true, nil
}

// FieldExtension implements Extension.
func (e *ActionExtension) FieldExtension() (Extension, bool) { return nil, false }
