package rowguard

import (
	"context"
	"fmt"

	"github.com/xraph/rowguard/accesslevel"
)

// Extension adapts one class of securable objects (entities, actions) to
// the voter: it recognizes its objects, owns their mask layout, and decides
// whether a triggered entry actually grants access to a concrete row.
type Extension interface {
	// Key identifies the extension ("entity", "action"). Entries and
	// identities are partitioned by it.
	Key() string

	// Supports reports whether the extension handles objects with the given
	// type and identity discriminator.
	Supports(ctx context.Context, objectType, objectID string) bool

	// ObjectIdentity resolves a checked object (descriptor string,
	// ObjectIdentity, or domain value) into the identity entries are looked
	// up under.
	ObjectIdentity(ctx context.Context, object any) (ObjectIdentity, error)

	// DefaultPermission is substituted when a check names no permission.
	DefaultPermission() string

	// MaskBuilder returns the mask layout for an object type.
	MaskBuilder(ctx context.Context, objectType string) (*MaskBuilder, error)

	// MaxAccessLevel caps a resolved level for an object type.
	MaxAccessLevel(ctx context.Context, level accesslevel.Level, objectType string) accesslevel.Level

	// DecideIsGranting decides whether an entry that matched the permission
	// bit actually grants access to the concrete object, given the access
	// level encoded in the triggered mask. Root identities always grant.
	DecideIsGranting(ctx context.Context, triggeredMask Bitmask, token Token, object any) (bool, error)

	// FieldExtension returns the extension deciding field-level checks, or
	// false when the extension has none.
	FieldExtension() (Extension, bool)
}

// NullExtension supports every object and always grants once a permission
// bit matches. It is the fallback for installations that opt out of
// ownership-based decisions.
type NullExtension struct {
	ExtensionKey string
}

var _ Extension = (*NullExtension)(nil)

// Key implements Extension.
func (e *NullExtension) Key() string {
	if e.ExtensionKey == "" {
		return RootEntity
	}
	return e.ExtensionKey
}

// Supports implements Extension.
func (e *NullExtension) Supports(context.Context, string, string) bool { return true }

// ObjectIdentity implements Extension.
func (e *NullExtension) ObjectIdentity(_ context.Context, object any) (ObjectIdentity, error) {
	return objectIdentityOf(object)
}

// DefaultPermission implements Extension.
func (e *NullExtension) DefaultPermission() string { return "VIEW" }

// MaskBuilder implements Extension.
func (e *NullExtension) MaskBuilder(context.Context, string) (*MaskBuilder, error) {
	return NewMaskBuilder()
}

// MaxAccessLevel implements Extension.
func (e *NullExtension) MaxAccessLevel(_ context.Context, level accesslevel.Level, _ string) accesslevel.Level {
	return level
}

// DecideIsGranting implements Extension.
func (e *NullExtension) DecideIsGranting(context.Context, Bitmask, Token, any) (bool, error) {
	return true, nil
}

// FieldExtension implements Extension.
func (e *NullExtension) FieldExtension() (Extension, bool) { return nil, false }

// objectIdentityOf resolves the common object spellings shared by
// extensions: descriptor strings, ObjectIdentity values, and Entity
// implementations.
func objectIdentityOf(object any) (ObjectIdentity, error) {
	switch v := object.(type) {
	case ObjectIdentity:
		return v, nil
	case *ObjectIdentity:
		return *v, nil
	case string:
		return ParseDescriptor(v)
	case Entity:
		return ObjectIdentity{ID: v.EntityID(), Type: v.EntityType()}, nil
	default:
		return ObjectIdentity{}, &InvalidDescriptorError{Descriptor: typeName(object)}
	}
}

func typeName(object any) string {
	if object == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", object)
}
