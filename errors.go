package rowguard

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied is returned when a required permission is not granted.
	ErrAccessDenied = errors.New("rowguard: access denied")

	// ErrInvalidArgument is returned when an argument is malformed, such as
	// renaming a security identity to the name it already has.
	ErrInvalidArgument = errors.New("rowguard: invalid argument")

	// ErrIdentityNotFound is returned when a security identity cannot be found.
	ErrIdentityNotFound = errors.New("rowguard: security identity not found")

	// ErrEntryNotFound is returned when an access control entry cannot be found.
	ErrEntryNotFound = errors.New("rowguard: access control entry not found")

	// ErrPermissionNotFound is returned when a permission name is unknown.
	ErrPermissionNotFound = errors.New("rowguard: permission not found")

	// ErrExtensionNotFound is returned when no registered extension supports
	// a checked object. Selection failures carry the attempted type and id in
	// an ExtensionNotFoundError wrapping this sentinel.
	ErrExtensionNotFound = errors.New("rowguard: extension not found")
)

// ExtensionNotFoundError is returned when no registered extension supports
// the checked object.
type ExtensionNotFoundError struct {
	ObjectType string
	ObjectID   string
}

func (e *ExtensionNotFoundError) Error() string {
	return fmt.Sprintf("rowguard: no extension supports object %s:%s", e.ObjectType, e.ObjectID)
}

func (e *ExtensionNotFoundError) Unwrap() error { return ErrExtensionNotFound }

// InvalidDescriptorError is returned when a textual object descriptor
// cannot be parsed.
type InvalidDescriptorError struct {
	Descriptor string
}

func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("rowguard: invalid object descriptor %q", e.Descriptor)
}
