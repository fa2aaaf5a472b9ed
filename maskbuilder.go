package rowguard

import (
	"fmt"
	"strings"

	"github.com/xraph/rowguard/accesslevel"
)

// Bitmask encodes granted permission/level pairs. Each permission owns a
// window of five consecutive bits, one per access level BASIC..SYSTEM, in
// the permission order of the MaskBuilder that produced the mask.
type Bitmask uint32

// levelBits is the window width per permission: one bit for each access
// level above NONE.
const levelBits = 5

// DefaultPermissions is the built-in permission order used when no explicit
// permission set is configured for an entity type.
var DefaultPermissions = []string{"VIEW", "CREATE", "EDIT", "DELETE", "ASSIGN", "SHARE"}

// MaskBuilder translates between (permission, access level) pairs and the
// compact bitmask stored on access control entries. A builder is bound to a
// fixed permission order; masks from different orders are not comparable.
type MaskBuilder struct {
	permissions []string
	index       map[string]int
}

// NewMaskBuilder creates a builder over the given permission order, or over
// DefaultPermissions when none is given. At most six permissions fit a
// 32-bit mask.
func NewMaskBuilder(permissions ...string) (*MaskBuilder, error) {
	if len(permissions) == 0 {
		permissions = DefaultPermissions
	}
	if len(permissions)*levelBits > 32 {
		return nil, fmt.Errorf("%w: %d permissions exceed the mask width", ErrInvalidArgument, len(permissions))
	}
	index := make(map[string]int, len(permissions))
	for i, name := range permissions {
		name = strings.ToUpper(name)
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate permission %q", ErrInvalidArgument, name)
		}
		index[name] = i
	}
	return &MaskBuilder{permissions: permissions, index: index}, nil
}

// Permissions returns the permission order the builder is bound to.
func (b *MaskBuilder) Permissions() []string {
	return append([]string(nil), b.permissions...)
}

// Supports reports whether the permission participates in this mask layout.
func (b *MaskBuilder) Supports(permission string) bool {
	_, ok := b.index[strings.ToUpper(permission)]
	return ok
}

// Bit returns the mask with only the (permission, level) bit set. Unknown
// permissions and NONE yield the zero mask.
func (b *MaskBuilder) Bit(permission string, level accesslevel.Level) Bitmask {
	i, ok := b.index[strings.ToUpper(permission)]
	if !ok || level <= accesslevel.None || level > accesslevel.System {
		return 0
	}
	return 1 << (i*levelBits + int(level) - 1)
}

// Add returns mask with the (permission, level) bit set.
func (b *MaskBuilder) Add(mask Bitmask, permission string, level accesslevel.Level) Bitmask {
	return mask | b.Bit(permission, level)
}

// PermissionMask narrows mask to the window of one permission.
func (b *MaskBuilder) PermissionMask(mask Bitmask, permission string) Bitmask {
	i, ok := b.index[strings.ToUpper(permission)]
	if !ok {
		return 0
	}
	window := Bitmask((1<<levelBits)-1) << (i * levelBits)
	return mask & window
}

// AccessLevel returns the highest access level set anywhere in the mask, or,
// when a permission is given, within that permission's window. An empty mask
// resolves to NONE.
func (b *MaskBuilder) AccessLevel(mask Bitmask, permission string) accesslevel.Level {
	if permission != "" {
		mask = b.PermissionMask(mask, permission)
	}
	highest := accesslevel.None
	for i := range b.permissions {
		window := mask >> (i * levelBits) & ((1 << levelBits) - 1)
		for level := accesslevel.System; level > highest; level-- {
			if window&(1<<(int(level)-1)) != 0 {
				highest = level
				break
			}
		}
	}
	return highest
}

// Format renders the mask in the "(PERM:LEVEL, ...)" form used in logs and
// error messages.
func (b *MaskBuilder) Format(mask Bitmask) string {
	var parts []string
	for i, name := range b.permissions {
		window := mask >> (i * levelBits) & ((1 << levelBits) - 1)
		for level := accesslevel.Basic; level <= accesslevel.System; level++ {
			if window&(1<<(int(level)-1)) != 0 {
				parts = append(parts, name+":"+level.String())
			}
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
