package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/rowguard/ace"
	"github.com/xraph/rowguard/auditlog"
	"github.com/xraph/rowguard/id"
	"github.com/xraph/rowguard/org"
	"github.com/xraph/rowguard/permission"
)

// ──────────────────────────────────────────────────
// User model
// ──────────────────────────────────────────────────

type userModel struct {
	grove.BaseModel `grove:"table:rowguard_users"`
	ID              string    `grove:"id,pk"`
	Name            string    `grove:"name,notnull"`
	OwnerID         string    `grove:"owner_id"`
	OrganizationIDs string    `grove:"organization_ids"` // JSON text
	BusinessUnitIDs string    `grove:"business_unit_ids"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func userToModel(u *org.User) (*userModel, error) {
	orgIDs, err := json.Marshal(u.OrganizationIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal user organization ids: %w", err)
	}
	buIDs, err := json.Marshal(u.BusinessUnitIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal user business unit ids: %w", err)
	}
	return &userModel{
		ID:              u.ID,
		Name:            u.Name,
		OwnerID:         u.OwnerID,
		OrganizationIDs: string(orgIDs),
		BusinessUnitIDs: string(buIDs),
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}, nil
}

func userFromModel(m *userModel) (*org.User, error) {
	var orgIDs, buIDs []string
	if m.OrganizationIDs != "" {
		if err := json.Unmarshal([]byte(m.OrganizationIDs), &orgIDs); err != nil {
			return nil, fmt.Errorf("unmarshal user organization ids: %w", err)
		}
	}
	if m.BusinessUnitIDs != "" {
		if err := json.Unmarshal([]byte(m.BusinessUnitIDs), &buIDs); err != nil {
			return nil, fmt.Errorf("unmarshal user business unit ids: %w", err)
		}
	}
	return &org.User{
		ID:              m.ID,
		Name:            m.Name,
		OwnerID:         m.OwnerID,
		OrganizationIDs: orgIDs,
		BusinessUnitIDs: buIDs,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

// ──────────────────────────────────────────────────
// Business unit model
// ──────────────────────────────────────────────────

type businessUnitModel struct {
	grove.BaseModel `grove:"table:rowguard_business_units"`
	ID              string    `grove:"id,pk"`
	Name            string    `grove:"name,notnull"`
	OrganizationID  string    `grove:"organization_id"`
	OwnerID         string    `grove:"owner_id"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func businessUnitToModel(bu *org.BusinessUnit) *businessUnitModel {
	return &businessUnitModel{
		ID:             bu.ID,
		Name:           bu.Name,
		OrganizationID: bu.OrganizationID,
		OwnerID:        bu.OwnerID,
		CreatedAt:      bu.CreatedAt,
		UpdatedAt:      bu.UpdatedAt,
	}
}

func businessUnitFromModel(m *businessUnitModel) *org.BusinessUnit {
	return &org.BusinessUnit{
		ID:             m.ID,
		Name:           m.Name,
		OrganizationID: m.OrganizationID,
		OwnerID:        m.OwnerID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Organization model
// ──────────────────────────────────────────────────

type organizationModel struct {
	grove.BaseModel `grove:"table:rowguard_organizations"`
	ID              string    `grove:"id,pk"`
	Name            string    `grove:"name,notnull"`
	Enabled         bool      `grove:"enabled,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func organizationToModel(o *org.Organization) *organizationModel {
	return &organizationModel{
		ID:        o.ID,
		Name:      o.Name,
		Enabled:   o.Enabled,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func organizationFromModel(m *organizationModel) *org.Organization {
	return &org.Organization{
		ID:        m.ID,
		Name:      m.Name,
		Enabled:   m.Enabled,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Security identity model
// ──────────────────────────────────────────────────

type identityModel struct {
	grove.BaseModel `grove:"table:rowguard_identities"`
	ID              string    `grove:"id,pk"`
	Kind            string    `grove:"kind,notnull"`
	Name            string    `grove:"name,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func identityToModel(sid *ace.SecurityIdentity) *identityModel {
	return &identityModel{
		ID:        sid.ID.String(),
		Kind:      string(sid.Kind),
		Name:      sid.Name,
		CreatedAt: sid.CreatedAt,
		UpdatedAt: sid.UpdatedAt,
	}
}

func identityFromModel(m *identityModel) *ace.SecurityIdentity {
	sidID, _ := id.ParseIdentityID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &ace.SecurityIdentity{
		ID:        sidID,
		Kind:      ace.IdentityKind(m.Kind),
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Access control entry model
// ──────────────────────────────────────────────────

type entryModel struct {
	grove.BaseModel `grove:"table:rowguard_entries"`
	ID              string    `grove:"id,pk"`
	IdentityID      string    `grove:"identity_id,notnull"`
	ObjectType      string    `grove:"object_type,notnull"`
	ObjectID        string    `grove:"object_id"`
	Mask            int64     `grove:"mask,notnull"`
	Granting        bool      `grove:"granting,notnull"`
	AuditSuccess    bool      `grove:"audit_success,notnull"`
	AuditFailure    bool      `grove:"audit_failure,notnull"`
	SortOrder       int       `grove:"sort_order,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func entryToModel(e *ace.Entry) *entryModel {
	return &entryModel{
		ID:           e.ID.String(),
		IdentityID:   e.IdentityID.String(),
		ObjectType:   e.ObjectType,
		ObjectID:     e.ObjectID,
		Mask:         int64(e.Mask),
		Granting:     e.Granting,
		AuditSuccess: e.AuditSuccess,
		AuditFailure: e.AuditFailure,
		SortOrder:    e.Order,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func entryFromModel(m *entryModel) *ace.Entry {
	entryID, _ := id.ParseEntryID(m.ID)       //nolint:errcheck // stored IDs are always valid
	sidID, _ := id.ParseIdentityID(m.IdentityID) //nolint:errcheck // stored IDs are always valid
	return &ace.Entry{
		ID:           entryID,
		IdentityID:   sidID,
		ObjectType:   m.ObjectType,
		ObjectID:     m.ObjectID,
		Mask:         uint32(m.Mask),
		Granting:     m.Granting,
		AuditSuccess: m.AuditSuccess,
		AuditFailure: m.AuditFailure,
		Order:        m.SortOrder,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Permission model
// ──────────────────────────────────────────────────

type permissionModel struct {
	grove.BaseModel `grove:"table:rowguard_permissions"`
	ID              string    `grove:"id,pk"`
	Name            string    `grove:"name,notnull"`
	Label           string    `grove:"label"`
	Description     string    `grove:"description"`
	ApplyToAll      bool      `grove:"apply_to_all,notnull"`
	GroupNames      string    `grove:"group_names"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func permissionToModel(p *permission.Permission) (*permissionModel, error) {
	groups, err := json.Marshal(p.GroupNames)
	if err != nil {
		return nil, fmt.Errorf("marshal permission groups: %w", err)
	}
	return &permissionModel{
		ID:          p.ID.String(),
		Name:        p.Name,
		Label:       p.Label,
		Description: p.Description,
		ApplyToAll:  p.ApplyToAll,
		GroupNames:  string(groups),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func permissionFromModel(m *permissionModel) (*permission.Permission, error) {
	permID, _ := id.ParsePermissionID(m.ID) //nolint:errcheck // stored IDs are always valid
	var groups []string
	if m.GroupNames != "" {
		if err := json.Unmarshal([]byte(m.GroupNames), &groups); err != nil {
			return nil, fmt.Errorf("unmarshal permission groups: %w", err)
		}
	}
	return &permission.Permission{
		ID:          permID,
		Name:        m.Name,
		Label:       m.Label,
		Description: m.Description,
		ApplyToAll:  m.ApplyToAll,
		GroupNames:  groups,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// ──────────────────────────────────────────────────
// Audit record model
// ──────────────────────────────────────────────────

type auditRecordModel struct {
	grove.BaseModel `grove:"table:rowguard_audit_records"`
	ID              string    `grove:"id,pk"`
	UserID          string    `grove:"user_id,notnull"`
	OrganizationID  string    `grove:"organization_id"`
	ObjectType      string    `grove:"object_type,notnull"`
	ObjectID        string    `grove:"object_id"`
	Permission      string    `grove:"permission,notnull"`
	Decision        string    `grove:"decision,notnull"`
	AccessLevel     string    `grove:"access_level"`
	TriggeredMask   int64     `grove:"triggered_mask,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func auditRecordToModel(r *auditlog.Record) *auditRecordModel {
	return &auditRecordModel{
		ID:             r.ID.String(),
		UserID:         r.UserID,
		OrganizationID: r.OrganizationID,
		ObjectType:     r.ObjectType,
		ObjectID:       r.ObjectID,
		Permission:     r.Permission,
		Decision:       r.Decision,
		AccessLevel:    r.AccessLevel,
		TriggeredMask:  int64(r.TriggeredMask),
		CreatedAt:      r.CreatedAt,
	}
}

func auditRecordFromModel(m *auditRecordModel) *auditlog.Record {
	recordID, _ := id.ParseAuditID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &auditlog.Record{
		ID:             recordID,
		UserID:         m.UserID,
		OrganizationID: m.OrganizationID,
		ObjectType:     m.ObjectType,
		ObjectID:       m.ObjectID,
		Permission:     m.Permission,
		Decision:       m.Decision,
		AccessLevel:    m.AccessLevel,
		TriggeredMask:  uint32(m.TriggeredMask),
		CreatedAt:      m.CreatedAt,
	}
}
