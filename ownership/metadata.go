// Package ownership describes how entity types relate to the organizational
// hierarchy: whether rows of a type are owned by a user, a business unit, an
// organization, or nobody, and which fields/columns express that ownership.
package ownership

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned when ownership metadata for an entity
// type is malformed. It is fatal at configuration build time.
var ErrInvalidConfiguration = errors.New("ownership: invalid configuration")

// ErrNoSupportedProvider is returned by a chain when no metadata provider is
// willing to serve the current security context.
var ErrNoSupportedProvider = errors.New("ownership: no supported metadata provider")

// OwnerType classifies which entity type owns a record.
type OwnerType int

const (
	// OwnerNone means records of the type have no owner.
	OwnerNone OwnerType = iota

	// OwnerUser means records are owned by a user.
	OwnerUser

	// OwnerBusinessUnit means records are owned by a business unit.
	OwnerBusinessUnit

	// OwnerOrganization means records are owned by an organization.
	OwnerOrganization
)

var ownerTypeNames = [...]string{"NONE", "USER", "BUSINESS_UNIT", "ORGANIZATION"}

// String returns the canonical configuration name of the owner type.
func (t OwnerType) String() string {
	if t < OwnerNone || t > OwnerOrganization {
		return fmt.Sprintf("OwnerType(%d)", int(t))
	}
	return ownerTypeNames[t]
}

// ParseOwnerType converts a configuration name into an OwnerType.
func ParseOwnerType(s string) (OwnerType, error) {
	for i, name := range ownerTypeNames {
		if name == s {
			return OwnerType(i), nil
		}
	}
	return OwnerNone, fmt.Errorf("%w: unknown owner type %q", ErrInvalidConfiguration, s)
}

// Metadata is the immutable per-entity-type ownership descriptor.
// The zero value describes a type with no owner concept.
type Metadata struct {
	ownerType  OwnerType
	ownerField string
	ownerCol   string
	orgField   string
	orgCol     string
}

// NewMetadata builds validated ownership metadata for one entity type.
//
// An owner type other than NONE requires owner field and column names.
// Organization-owned types fall back to the owner field/column for the
// organization reference when none is given, since the owner *is* the
// organization.
func NewMetadata(ownerType OwnerType, ownerField, ownerCol, orgField, orgCol string) (Metadata, error) {
	if ownerType == OwnerNone {
		if ownerField != "" || ownerCol != "" {
			return Metadata{}, fmt.Errorf(
				"%w: owner field/column set without an owner type", ErrInvalidConfiguration)
		}
		return Metadata{orgField: orgField, orgCol: orgCol}, nil
	}

	if ownerField == "" {
		return Metadata{}, fmt.Errorf(
			"%w: owner type %s requires an owner field name", ErrInvalidConfiguration, ownerType)
	}
	if ownerCol == "" {
		return Metadata{}, fmt.Errorf(
			"%w: owner type %s requires an owner column name", ErrInvalidConfiguration, ownerType)
	}

	if orgField == "" && ownerType == OwnerOrganization {
		orgField = ownerField
		orgCol = ownerCol
	}

	return Metadata{
		ownerType:  ownerType,
		ownerField: ownerField,
		ownerCol:   ownerCol,
		orgField:   orgField,
		orgCol:     orgCol,
	}, nil
}

// OwnerType returns the classification of the record owner.
func (m Metadata) OwnerType() OwnerType { return m.ownerType }

// HasOwner reports whether records of the type have an owner at all.
func (m Metadata) HasOwner() bool { return m.ownerType != OwnerNone }

// IsUserOwned reports whether records are owned by a user.
func (m Metadata) IsUserOwned() bool { return m.ownerType == OwnerUser }

// IsBusinessUnitOwned reports whether records are owned by a business unit.
func (m Metadata) IsBusinessUnitOwned() bool { return m.ownerType == OwnerBusinessUnit }

// IsOrganizationOwned reports whether records are owned by an organization.
func (m Metadata) IsOrganizationOwned() bool { return m.ownerType == OwnerOrganization }

// OwnerFieldName returns the struct/model field holding the owner reference.
func (m Metadata) OwnerFieldName() string { return m.ownerField }

// OwnerColumnName returns the table column holding the owner reference.
func (m Metadata) OwnerColumnName() string { return m.ownerCol }

// OrganizationFieldName returns the field holding the organization reference,
// empty when the type carries none.
func (m Metadata) OrganizationFieldName() string { return m.orgField }

// OrganizationColumnName returns the column holding the organization
// reference, empty when the type carries none.
func (m Metadata) OrganizationColumnName() string { return m.orgCol }
