package auditlog

import (
	"context"
	"time"

	"github.com/xraph/rowguard/id"
)

// Store defines persistence operations for access decision audit records.
type Store interface {
	// CreateRecord persists a new audit record.
	CreateRecord(ctx context.Context, r *Record) error

	// GetRecord retrieves an audit record by ID.
	GetRecord(ctx context.Context, recordID id.AuditID) (*Record, error)

	// ListRecords returns audit records matching the filter.
	ListRecords(ctx context.Context, filter *QueryFilter) ([]*Record, error)

	// CountRecords returns the number of records matching the filter.
	CountRecords(ctx context.Context, filter *QueryFilter) (int64, error)

	// PurgeRecords removes audit records older than the given time.
	PurgeRecords(ctx context.Context, before time.Time) (int64, error)
}
