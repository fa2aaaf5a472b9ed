// Package postgres provides a PostgreSQL implementation of the rowguard
// composite store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/rowguard"
	"github.com/xraph/rowguard/ace"
	"github.com/xraph/rowguard/auditlog"
	"github.com/xraph/rowguard/id"
	"github.com/xraph/rowguard/org"
	"github.com/xraph/rowguard/permission"
	"github.com/xraph/rowguard/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// errNotFound is the sentinel for missing directory entities.
var errNotFound = fmt.Errorf("not found")

// Store is a PostgreSQL implementation of the composite rowguard store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("rowguard/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("rowguard/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// ──────────────────────────────────────────────────
// Directory operations
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *org.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.pgdb.NewInsert(userToModel(u)).Exec(ctx); err != nil {
		return fmt.Errorf("rowguard: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (*org.User, error) {
	m := new(userModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("user %s: %w", userID, errNotFound)
		}
		return nil, fmt.Errorf("rowguard: get user: %w", err)
	}
	return userFromModel(m), nil
}

func (s *Store) UpdateUser(ctx context.Context, u *org.User) error {
	u.UpdatedAt = time.Now().UTC()
	if _, err := s.pgdb.NewUpdate(userToModel(u)).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("rowguard: update user: %w", err)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	_, err := s.pgdb.NewDelete((*userModel)(nil)).
		Where("id = ?", userID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rowguard: delete user: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*org.User, error) {
	var models []userModel
	err := s.pgdb.NewSelect(&models).OrderExpr("id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rowguard: list users: %w", err)
	}
	result := make([]*org.User, len(models))
	for i := range models {
		result[i] = userFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CreateBusinessUnit(ctx context.Context, bu *org.BusinessUnit) error {
	now := time.Now().UTC()
	bu.CreatedAt = now
	bu.UpdatedAt = now
	if _, err := s.pgdb.NewInsert(businessUnitToModel(bu)).Exec(ctx); err != nil {
		return fmt.Errorf("rowguard: create business unit: %w", err)
	}
	return nil
}

func (s *Store) GetBusinessUnit(ctx context.Context, buID string) (*org.BusinessUnit, error) {
	m := new(businessUnitModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", buID).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("business unit %s: %w", buID, errNotFound)
		}
		return nil, fmt.Errorf("rowguard: get business unit: %w", err)
	}
	return businessUnitFromModel(m), nil
}

func (s *Store) UpdateBusinessUnit(ctx context.Context, bu *org.BusinessUnit) error {
	bu.UpdatedAt = time.Now().UTC()
	if _, err := s.pgdb.NewUpdate(businessUnitToModel(bu)).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("rowguard: update business unit: %w", err)
	}
	return nil
}

func (s *Store) DeleteBusinessUnit(ctx context.Context, buID string) error {
	_, err := s.pgdb.NewDelete((*businessUnitModel)(nil)).
		Where("id = ?", buID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rowguard: delete business unit: %w", err)
	}
	return nil
}

func (s *Store) ListBusinessUnits(ctx context.Context) ([]*org.BusinessUnit, error) {
	var models []businessUnitModel
	err := s.pgdb.NewSelect(&models).OrderExpr("id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rowguard: list business units: %w", err)
	}
	result := make([]*org.BusinessUnit, len(models))
	for i := range models {
		result[i] = businessUnitFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CreateOrganization(ctx context.Context, o *org.Organization) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if _, err := s.pgdb.NewInsert(organizationToModel(o)).Exec(ctx); err != nil {
		return fmt.Errorf("rowguard: create organization: %w", err)
	}
	return nil
}

func (s *Store) GetOrganization(ctx context.Context, orgID string) (*org.Organization, error) {
	m := new(organizationModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", orgID).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("organization %s: %w", orgID, errNotFound)
		}
		return nil, fmt.Errorf("rowguard: get organization: %w", err)
	}
	return organizationFromModel(m), nil
}

func (s *Store) ListOrganizations(ctx context.Context) ([]*org.Organization, error) {
	var models []organizationModel
	err := s.pgdb.NewSelect(&models).OrderExpr("id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rowguard: list organizations: %w", err)
	}
	result := make([]*org.Organization, len(models))
	for i := range models {
		result[i] = organizationFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Security identity operations
// ──────────────────────────────────────────────────

func (s *Store) CreateIdentity(ctx context.Context, sid *ace.SecurityIdentity) error {
	if _, err := s.pgdb.NewInsert(identityToModel(sid)).Exec(ctx); err != nil {
		return fmt.Errorf("rowguard: create identity: %w", err)
	}
	return nil
}

func (s *Store) GetIdentity(ctx context.Context, sidID id.IdentityID) (*ace.SecurityIdentity, error) {
	m := new(identityModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", sidID.String()).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("identity %s: %w", sidID, rowguard.ErrIdentityNotFound)
		}
		return nil, fmt.Errorf("rowguard: get identity: %w", err)
	}
	return identityFromModel(m), nil
}

func (s *Store) GetIdentityByName(ctx context.Context, kind ace.IdentityKind, name string) (*ace.SecurityIdentity, error) {
	m := new(identityModel)
	err := s.pgdb.NewSelect(m).
		Where("kind = ?", string(kind)).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("identity %s:%s: %w", kind, name, rowguard.ErrIdentityNotFound)
		}
		return nil, fmt.Errorf("rowguard: get identity by name: %w", err)
	}
	return identityFromModel(m), nil
}

func (s *Store) UpdateIdentity(ctx context.Context, sid *ace.SecurityIdentity) error {
	if _, err := s.pgdb.NewUpdate(identityToModel(sid)).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("rowguard: update identity: %w", err)
	}
	return nil
}

func (s *Store) DeleteIdentity(ctx context.Context, sidID id.IdentityID) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("rowguard: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	_, err = tx.NewDelete((*entryModel)(nil)).
		Where("identity_id = ?", sidID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rowguard: delete identity entries: %w", err)
	}
	_, err = tx.NewDelete((*identityModel)(nil)).
		Where("id = ?", sidID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rowguard: delete identity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("rowguard: commit tx: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Access control entry operations
// ──────────────────────────────────────────────────

func (s *Store) CreateEntry(ctx context.Context, e *ace.Entry) error {
	if _, err := s.pgdb.NewInsert(entryToModel(e)).Exec(ctx); err != nil {
		return fmt.Errorf("rowguard: create entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, entryID id.EntryID) (*ace.Entry, error) {
	m := new(entryModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", entryID.String()).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("entry %s: %w", entryID, rowguard.ErrEntryNotFound)
		}
		return nil, fmt.Errorf("rowguard: get entry: %w", err)
	}
	return entryFromModel(m), nil
}

func (s *Store) UpdateEntry(ctx context.Context, e *ace.Entry) error {
	if _, err := s.pgdb.NewUpdate(entryToModel(e)).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("rowguard: update entry: %w", err)
	}
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, entryID id.EntryID) error {
	_, err := s.pgdb.NewDelete((*entryModel)(nil)).
		Where("id = ?", entryID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rowguard: delete entry: %w", err)
	}
	return nil
}

func (s *Store) ListEntriesForIdentity(ctx context.Context, sidID id.IdentityID, objectType, objectID string) ([]*ace.Entry, error) {
	var models []entryModel
	q := s.pgdb.NewSelect(&models).
		Where("identity_id = ?", sidID.String()).
		Where("object_type = ?", objectType)
	if objectID == "" {
		q = q.Where("object_id = ''")
	} else {
		q = q.Where("(object_id = ? OR object_id = '')", objectID)
	}
	if err := q.OrderExpr("sort_order ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("rowguard: list entries for identity: %w", err)
	}
	result := make([]*ace.Entry, len(models))
	for i := range models {
		result[i] = entryFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListEntries(ctx context.Context, filter *ace.ListFilter) ([]*ace.Entry, error) {
	var models []entryModel
	q := s.pgdb.NewSelect(&models).OrderExpr("sort_order ASC")
	if filter != nil {
		if filter.IdentityID != nil {
			q = q.Where("identity_id = ?", filter.IdentityID.String())
		}
		if filter.ObjectType != "" {
			q = q.Where("object_type = ?", filter.ObjectType)
		}
		if filter.ObjectID != "" {
			q = q.Where("object_id = ?", filter.ObjectID)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rowguard: list entries: %w", err)
	}
	result := make([]*ace.Entry, len(models))
	for i := range models {
		result[i] = entryFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Permission operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(ctx context.Context, p *permission.Permission) error {
	if _, err := s.pgdb.NewInsert(permissionToModel(p)).Exec(ctx); err != nil {
		return fmt.Errorf("rowguard: create permission: %w", err)
	}
	return nil
}

func (s *Store) GetPermission(ctx context.Context, permID id.PermissionID) (*permission.Permission, error) {
	m := new(permissionModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", permID.String()).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("permission %s: %w", permID, rowguard.ErrPermissionNotFound)
		}
		return nil, fmt.Errorf("rowguard: get permission: %w", err)
	}
	return permissionFromModel(m), nil
}

func (s *Store) GetPermissionByName(ctx context.Context, name string) (*permission.Permission, error) {
	m := new(permissionModel)
	err := s.pgdb.NewSelect(m).Where("name = ?", name).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("permission %q: %w", name, rowguard.ErrPermissionNotFound)
		}
		return nil, fmt.Errorf("rowguard: get permission by name: %w", err)
	}
	return permissionFromModel(m), nil
}

func (s *Store) UpdatePermission(ctx context.Context, p *permission.Permission) error {
	p.UpdatedAt = time.Now().UTC()
	if _, err := s.pgdb.NewUpdate(permissionToModel(p)).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("rowguard: update permission: %w", err)
	}
	return nil
}

func (s *Store) DeletePermission(ctx context.Context, permID id.PermissionID) error {
	_, err := s.pgdb.NewDelete((*permissionModel)(nil)).
		Where("id = ?", permID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("rowguard: delete permission: %w", err)
	}
	return nil
}

func (s *Store) ListPermissions(ctx context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	var models []permissionModel
	q := s.pgdb.NewSelect(&models).OrderExpr("name ASC")
	if filter != nil {
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rowguard: list permissions: %w", err)
	}
	result := make([]*permission.Permission, 0, len(models))
	for i := range models {
		p := permissionFromModel(&models[i])
		// Group globs cannot be matched in SQL; filter after decoding.
		if filter != nil && filter.Group != "" && !permissionInGroup(p, filter.Group) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// permissionInGroup reports whether the permission applies to the group,
// honoring ApplyToAll and trailing-'*' glob group names.
func permissionInGroup(p *permission.Permission, group string) bool {
	if p.ApplyToAll {
		return true
	}
	for _, g := range p.GroupNames {
		if g == group {
			return true
		}
		if n := len(g); n > 0 && g[n-1] == '*' && len(group) >= n-1 && group[:n-1] == g[:n-1] {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────────
// Audit log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRecord(ctx context.Context, r *auditlog.Record) error {
	if _, err := s.pgdb.NewInsert(auditRecordToModel(r)).Exec(ctx); err != nil {
		return fmt.Errorf("rowguard: create audit record: %w", err)
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, recordID id.AuditID) (*auditlog.Record, error) {
	m := new(auditRecordModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", recordID.String()).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("audit record %s: %w", recordID, errNotFound)
		}
		return nil, fmt.Errorf("rowguard: get audit record: %w", err)
	}
	return auditRecordFromModel(m), nil
}

func (s *Store) ListRecords(ctx context.Context, filter *auditlog.QueryFilter) ([]*auditlog.Record, error) {
	var models []auditRecordModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.OrganizationID != "" {
			q = q.Where("organization_id = ?", filter.OrganizationID)
		}
		if filter.ObjectType != "" {
			q = q.Where("object_type = ?", filter.ObjectType)
		}
		if filter.ObjectID != "" {
			q = q.Where("object_id = ?", filter.ObjectID)
		}
		if filter.Permission != "" {
			q = q.Where("permission = ?", filter.Permission)
		}
		if filter.Decision != "" {
			q = q.Where("decision = ?", filter.Decision)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", filter.After.UTC())
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", filter.Before.UTC())
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("rowguard: list audit records: %w", err)
	}
	result := make([]*auditlog.Record, len(models))
	for i := range models {
		result[i] = auditRecordFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountRecords(ctx context.Context, filter *auditlog.QueryFilter) (int64, error) {
	q := s.pgdb.NewSelect((*auditRecordModel)(nil))
	if filter != nil {
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.OrganizationID != "" {
			q = q.Where("organization_id = ?", filter.OrganizationID)
		}
		if filter.ObjectType != "" {
			q = q.Where("object_type = ?", filter.ObjectType)
		}
		if filter.ObjectID != "" {
			q = q.Where("object_id = ?", filter.ObjectID)
		}
		if filter.Permission != "" {
			q = q.Where("permission = ?", filter.Permission)
		}
		if filter.Decision != "" {
			q = q.Where("decision = ?", filter.Decision)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", filter.After.UTC())
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", filter.Before.UTC())
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("rowguard: count audit records: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeRecords(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.pgdb.NewDelete((*auditRecordModel)(nil)).
		Where("created_at < ?", before.UTC()).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("rowguard: purge audit records: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rowguard: purge audit records: %w", err)
	}
	return affected, nil
}
