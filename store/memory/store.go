// Package memory provides an in-memory implementation of the rowguard
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xraph/rowguard"
	"github.com/xraph/rowguard/ace"
	"github.com/xraph/rowguard/auditlog"
	"github.com/xraph/rowguard/id"
	"github.com/xraph/rowguard/org"
	"github.com/xraph/rowguard/permission"
)

// Compile-time interface checks.
var (
	_ org.Store        = (*Store)(nil)
	_ ace.Store        = (*Store)(nil)
	_ permission.Store = (*Store)(nil)
	_ auditlog.Store   = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all rowguard entities.
type Store struct {
	mu sync.RWMutex

	users         map[string]*org.User
	businessUnits map[string]*org.BusinessUnit
	organizations map[string]*org.Organization
	identities    map[string]*ace.SecurityIdentity
	entries       map[string]*ace.Entry
	permissions   map[string]*permission.Permission
	auditRecords  map[string]*auditlog.Record
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		users:         make(map[string]*org.User),
		businessUnits: make(map[string]*org.BusinessUnit),
		organizations: make(map[string]*org.Organization),
		identities:    make(map[string]*ace.SecurityIdentity),
		entries:       make(map[string]*ace.Entry),
		permissions:   make(map[string]*permission.Permission),
		auditRecords:  make(map[string]*auditlog.Record),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Org Store
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(_ context.Context, u *org.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (*org.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, errNotFound)
	}
	return copyUser(u), nil
}

func (s *Store) UpdateUser(_ context.Context, u *org.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return fmt.Errorf("user %s: %w", u.ID, errNotFound)
	}
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *Store) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]*org.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*org.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, copyUser(u))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) CreateBusinessUnit(_ context.Context, bu *org.BusinessUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.businessUnits[bu.ID] = copyBusinessUnit(bu)
	return nil
}

func (s *Store) GetBusinessUnit(_ context.Context, buID string) (*org.BusinessUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bu, ok := s.businessUnits[buID]
	if !ok {
		return nil, fmt.Errorf("business unit %s: %w", buID, errNotFound)
	}
	return copyBusinessUnit(bu), nil
}

func (s *Store) UpdateBusinessUnit(_ context.Context, bu *org.BusinessUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.businessUnits[bu.ID]; !ok {
		return fmt.Errorf("business unit %s: %w", bu.ID, errNotFound)
	}
	s.businessUnits[bu.ID] = copyBusinessUnit(bu)
	return nil
}

func (s *Store) DeleteBusinessUnit(_ context.Context, buID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.businessUnits, buID)
	return nil
}

func (s *Store) ListBusinessUnits(_ context.Context) ([]*org.BusinessUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*org.BusinessUnit, 0, len(s.businessUnits))
	for _, bu := range s.businessUnits {
		result = append(result, copyBusinessUnit(bu))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) CreateOrganization(_ context.Context, o *org.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations[o.ID] = copyOrganization(o)
	return nil
}

func (s *Store) GetOrganization(_ context.Context, orgID string) (*org.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.organizations[orgID]
	if !ok {
		return nil, fmt.Errorf("organization %s: %w", orgID, errNotFound)
	}
	return copyOrganization(o), nil
}

func (s *Store) ListOrganizations(_ context.Context) ([]*org.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*org.Organization, 0, len(s.organizations))
	for _, o := range s.organizations {
		result = append(result, copyOrganization(o))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ──────────────────────────────────────────────────
// ACE Store
// ──────────────────────────────────────────────────

func (s *Store) CreateIdentity(_ context.Context, sid *ace.SecurityIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[sid.ID.String()] = copyIdentity(sid)
	return nil
}

func (s *Store) GetIdentity(_ context.Context, sidID id.IdentityID) (*ace.SecurityIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sid, ok := s.identities[sidID.String()]
	if !ok {
		return nil, fmt.Errorf("identity %s: %w", sidID, rowguard.ErrIdentityNotFound)
	}
	return copyIdentity(sid), nil
}

func (s *Store) GetIdentityByName(_ context.Context, kind ace.IdentityKind, name string) (*ace.SecurityIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sid := range s.identities {
		if sid.Kind == kind && sid.Name == name {
			return copyIdentity(sid), nil
		}
	}
	return nil, fmt.Errorf("identity %s:%s: %w", kind, name, rowguard.ErrIdentityNotFound)
}

func (s *Store) UpdateIdentity(_ context.Context, sid *ace.SecurityIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[sid.ID.String()]; !ok {
		return fmt.Errorf("identity %s: %w", sid.ID, rowguard.ErrIdentityNotFound)
	}
	s.identities[sid.ID.String()] = copyIdentity(sid)
	return nil
}

func (s *Store) DeleteIdentity(_ context.Context, sidID id.IdentityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk := sidID.String()
	delete(s.identities, sk)
	for k, e := range s.entries {
		if e.IdentityID.String() == sk {
			delete(s.entries, k)
		}
	}
	return nil
}

func (s *Store) CreateEntry(_ context.Context, e *ace.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID.String()] = e.Clone()
	return nil
}

func (s *Store) GetEntry(_ context.Context, entryID id.EntryID) (*ace.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryID.String()]
	if !ok {
		return nil, fmt.Errorf("entry %s: %w", entryID, rowguard.ErrEntryNotFound)
	}
	return e.Clone(), nil
}

func (s *Store) UpdateEntry(_ context.Context, e *ace.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID.String()]; !ok {
		return fmt.Errorf("entry %s: %w", e.ID, rowguard.ErrEntryNotFound)
	}
	s.entries[e.ID.String()] = e.Clone()
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, entryID id.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, entryID.String())
	return nil
}

func (s *Store) ListEntriesForIdentity(_ context.Context, sidID id.IdentityID, objectType, objectID string) ([]*ace.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sk := sidID.String()
	var result []*ace.Entry
	for _, e := range s.entries {
		if e.IdentityID.String() != sk || e.ObjectType != objectType {
			continue
		}
		if objectID == "" {
			if !e.IsClassScoped() {
				continue
			}
		} else if !e.IsClassScoped() && e.ObjectID != objectID {
			continue
		}
		result = append(result, e.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Order < result[j].Order })
	return result, nil
}

func (s *Store) ListEntries(_ context.Context, filter *ace.ListFilter) ([]*ace.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*ace.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if filter != nil {
			if filter.IdentityID != nil && e.IdentityID.String() != filter.IdentityID.String() {
				continue
			}
			if filter.ObjectType != "" && e.ObjectType != filter.ObjectType {
				continue
			}
			if filter.ObjectID != "" && e.ObjectID != filter.ObjectID {
				continue
			}
		}
		result = append(result, e.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Order < result[j].Order })
	return applyPagination(result, paginationOptsEntry(filter)), nil
}

// ──────────────────────────────────────────────────
// Permission Store
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(_ context.Context, p *permission.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions[p.ID.String()] = copyPermission(p)
	return nil
}

func (s *Store) GetPermission(_ context.Context, permID id.PermissionID) (*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.permissions[permID.String()]
	if !ok {
		return nil, fmt.Errorf("permission %s: %w", permID, rowguard.ErrPermissionNotFound)
	}
	return copyPermission(p), nil
}

func (s *Store) GetPermissionByName(_ context.Context, name string) (*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.permissions {
		if p.Name == name {
			return copyPermission(p), nil
		}
	}
	return nil, fmt.Errorf("permission %q: %w", name, rowguard.ErrPermissionNotFound)
}

func (s *Store) UpdatePermission(_ context.Context, p *permission.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permissions[p.ID.String()]; !ok {
		return fmt.Errorf("permission %s: %w", p.ID, rowguard.ErrPermissionNotFound)
	}
	s.permissions[p.ID.String()] = copyPermission(p)
	return nil
}

func (s *Store) DeletePermission(_ context.Context, permID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.permissions, permID.String())
	return nil
}

func (s *Store) ListPermissions(_ context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*permission.Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		if filter != nil {
			if filter.Group != "" && !hasGroup(p, filter.Group) {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyPermission(p))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return applyPagination(result, paginationOptsPerm(filter)), nil
}

// ──────────────────────────────────────────────────
// Audit Log Store
// ──────────────────────────────────────────────────

func (s *Store) CreateRecord(_ context.Context, r *auditlog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditRecords[r.ID.String()] = copyRecord(r)
	return nil
}

func (s *Store) GetRecord(_ context.Context, recordID id.AuditID) (*auditlog.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.auditRecords[recordID.String()]
	if !ok {
		return nil, fmt.Errorf("audit record %s: %w", recordID, errNotFound)
	}
	return copyRecord(r), nil
}

func (s *Store) ListRecords(_ context.Context, filter *auditlog.QueryFilter) ([]*auditlog.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*auditlog.Record, 0, len(s.auditRecords))
	for _, r := range s.auditRecords {
		if filter != nil {
			if filter.UserID != "" && r.UserID != filter.UserID {
				continue
			}
			if filter.OrganizationID != "" && r.OrganizationID != filter.OrganizationID {
				continue
			}
			if filter.ObjectType != "" && r.ObjectType != filter.ObjectType {
				continue
			}
			if filter.ObjectID != "" && r.ObjectID != filter.ObjectID {
				continue
			}
			if filter.Permission != "" && r.Permission != filter.Permission {
				continue
			}
			if filter.Decision != "" && r.Decision != filter.Decision {
				continue
			}
			if filter.After != nil && r.CreatedAt.Before(*filter.After) {
				continue
			}
			if filter.Before != nil && r.CreatedAt.After(*filter.Before) {
				continue
			}
		}
		result = append(result, copyRecord(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return applyPagination(result, paginationOptsAudit(filter)), nil
}

func (s *Store) CountRecords(ctx context.Context, filter *auditlog.QueryFilter) (int64, error) {
	list, err := s.ListRecords(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) PurgeRecords(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for k, r := range s.auditRecords {
		if r.CreatedAt.Before(before) {
			delete(s.auditRecords, k)
			count++
		}
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

var errNotFound = fmt.Errorf("not found")

func copyUser(u *org.User) *org.User {
	c := *u
	if u.OrganizationIDs != nil {
		c.OrganizationIDs = make([]string, len(u.OrganizationIDs))
		copy(c.OrganizationIDs, u.OrganizationIDs)
	}
	if u.BusinessUnitIDs != nil {
		c.BusinessUnitIDs = make([]string, len(u.BusinessUnitIDs))
		copy(c.BusinessUnitIDs, u.BusinessUnitIDs)
	}
	return &c
}

func copyBusinessUnit(bu *org.BusinessUnit) *org.BusinessUnit {
	c := *bu
	return &c
}

func copyOrganization(o *org.Organization) *org.Organization {
	c := *o
	return &c
}

func copyIdentity(sid *ace.SecurityIdentity) *ace.SecurityIdentity {
	c := *sid
	return &c
}

func copyPermission(p *permission.Permission) *permission.Permission {
	c := *p
	if p.GroupNames != nil {
		c.GroupNames = make([]string, len(p.GroupNames))
		copy(c.GroupNames, p.GroupNames)
	}
	return &c
}

func copyRecord(r *auditlog.Record) *auditlog.Record {
	c := *r
	return &c
}

func hasGroup(p *permission.Permission, group string) bool {
	for _, g := range p.GroupNames {
		if g == group {
			return true
		}
	}
	return false
}

// Pagination helpers.
type pagOpts struct{ limit, offset int }

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 && p.offset < len(items) {
		items = items[p.offset:]
	} else if p.offset > 0 && p.offset >= len(items) {
		return nil
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}

func paginationOptsEntry(f *ace.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsPerm(f *permission.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsAudit(f *auditlog.QueryFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}
