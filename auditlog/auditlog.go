// Package auditlog defines the access decision audit Record entity. Records
// are written when the entry that decided a check carries the matching audit
// flag.
package auditlog

import (
	"time"

	"github.com/xraph/rowguard/id"
)

// Record is a single audited access decision.
type Record struct {
	ID             id.AuditID `json:"id" db:"id"`
	UserID         string     `json:"user_id" db:"user_id"`
	OrganizationID string     `json:"organization_id,omitempty" db:"organization_id"`
	ObjectType     string     `json:"object_type" db:"object_type"`
	ObjectID       string     `json:"object_id,omitempty" db:"object_id"`
	Permission     string     `json:"permission" db:"permission"`
	Decision       string     `json:"decision" db:"decision"`
	AccessLevel    string     `json:"access_level,omitempty" db:"access_level"`
	TriggeredMask  uint32     `json:"triggered_mask" db:"triggered_mask"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying audit records.
type QueryFilter struct {
	UserID         string     `json:"user_id,omitempty"`
	OrganizationID string     `json:"organization_id,omitempty"`
	ObjectType     string     `json:"object_type,omitempty"`
	ObjectID       string     `json:"object_id,omitempty"`
	Permission     string     `json:"permission,omitempty"`
	Decision       string     `json:"decision,omitempty"`
	After          *time.Time `json:"after,omitempty"`
	Before         *time.Time `json:"before,omitempty"`
	Limit          int        `json:"limit,omitempty"`
	Offset         int        `json:"offset,omitempty"`
}
