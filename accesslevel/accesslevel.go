// Package accesslevel defines the ordered access level enumeration used
// throughout rowguard. An access level describes the breadth of rows a
// permission grant allows access to, from None (no rows) to System
// (every row regardless of ownership).
package accesslevel

import "fmt"

// Level is the breadth of a permission grant. Levels form a total order:
// None < Basic < Local < Deep < Global < System.
type Level int

const (
	// None grants access to no rows.
	None Level = iota

	// Basic grants access to rows owned by the user.
	Basic

	// Local grants access to rows owned by the user's business units.
	Local

	// Deep grants access to rows owned by the user's business units and
	// all their subordinate units.
	Deep

	// Global grants access to all rows within the user's organization.
	Global

	// System grants access to all rows regardless of organization.
	System
)

// names are the canonical wire/UI names, matching the configuration format.
var names = [...]string{"NONE", "BASIC", "LOCAL", "DEEP", "GLOBAL", "SYSTEM"}

// String returns the canonical upper-case name of the level.
func (l Level) String() string {
	if l < None || l > System {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return names[l]
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool { return l >= None && l <= System }

// Parse converts a canonical level name ("NONE" .. "SYSTEM") into a Level.
func Parse(s string) (Level, error) {
	for i, name := range names {
		if name == s {
			return Level(i), nil
		}
	}
	return None, fmt.Errorf("accesslevel: unknown level %q", s)
}

// All returns every defined level in ascending order.
func All() []Level {
	return []Level{None, Basic, Local, Deep, Global, System}
}
