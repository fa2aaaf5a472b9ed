package permission

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xraph/rowguard/id"
	"github.com/xraph/rowguard/secmeta"
)

// Cache persists the built permission maps between processes. Satisfied by
// rowguard's cache providers; nil keeps the maps in-process only.
type Cache interface {
	Fetch(ctx context.Context, key string) (any, bool)
	Save(ctx context.Context, key string, value any)
	Delete(ctx context.Context, key string)
}

const (
	cacheKeyPermissions = "rowguard.permissions"
	cacheKeyGroups      = "rowguard.permission_groups"
)

// Manager resolves permission names and ids and answers which permissions
// apply to a protected entity type. The name/id maps are built once from the
// store and invalidated on every permission write; the mask layout depends
// on their stability within a build.
type Manager struct {
	store   Store
	secmeta secmeta.Provider
	cache   Cache

	mu      sync.RWMutex
	byName  map[string]*Permission
	byGroup map[string][]string
}

// NewManager creates a permission manager. secProvider and cache may be nil.
func NewManager(store Store, secProvider secmeta.Provider, cache Cache) *Manager {
	return &Manager{
		store:   store,
		secmeta: secProvider,
		cache:   cache,
	}
}

// Permission returns the permission with the given name, or nil when the
// name is unknown.
func (m *Manager) Permission(ctx context.Context, name string) (*Permission, error) {
	byName, _, err := m.maps(ctx)
	if err != nil {
		return nil, err
	}
	return byName[name], nil
}

// PermissionNames returns the names of all known permissions, in store
// listing order.
func (m *Manager) PermissionNames(ctx context.Context) ([]string, error) {
	perms, err := m.store.ListPermissions(ctx, &ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = p.Name
	}
	return names, nil
}

// GroupPermissionNames returns the names of the permissions applicable to a
// permission group, including ApplyToAll permissions.
func (m *Manager) GroupPermissionNames(ctx context.Context, group string) ([]string, error) {
	_, byGroup, err := m.maps(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), byGroup[group]...), nil
}

// PermissionsForEntity returns the permissions applicable to a protected
// entity type: the type's group permissions, narrowed by the type's own
// permission list when it declares one. Unprotected types get nothing.
func (m *Manager) PermissionsForEntity(ctx context.Context, entityType string) ([]*Permission, error) {
	if m.secmeta == nil {
		return nil, nil
	}
	meta, ok := m.secmeta.Metadata(ctx, entityType)
	if !ok {
		return nil, nil
	}

	byName, byGroup, err := m.maps(ctx)
	if err != nil {
		return nil, err
	}

	var allowed map[string]struct{}
	if len(meta.Permissions) > 0 {
		allowed = make(map[string]struct{}, len(meta.Permissions))
		for _, name := range meta.Permissions {
			allowed[name] = struct{}{}
		}
	}

	var result []*Permission
	for _, name := range byGroup[meta.Group] {
		if allowed != nil {
			if _, ok := allowed[name]; !ok {
				continue
			}
		}
		if p := byName[name]; p != nil {
			result = append(result, p)
		}
	}
	return result, nil
}

// Create persists a new permission and invalidates the cached maps.
func (m *Manager) Create(ctx context.Context, p *Permission) error {
	if p.ID.IsNil() {
		p.ID = id.NewPermissionID()
	}
	if err := m.store.CreatePermission(ctx, p); err != nil {
		return fmt.Errorf("create permission: %w", err)
	}
	m.Invalidate(ctx)
	return nil
}

// Update persists changes to a permission and invalidates the cached maps.
func (m *Manager) Update(ctx context.Context, p *Permission) error {
	if err := m.store.UpdatePermission(ctx, p); err != nil {
		return fmt.Errorf("update permission: %w", err)
	}
	m.Invalidate(ctx)
	return nil
}

// Invalidate drops the cached name and group maps; the next lookup rebuilds
// them from the store.
func (m *Manager) Invalidate(ctx context.Context) {
	m.mu.Lock()
	m.byName = nil
	m.byGroup = nil
	m.mu.Unlock()
	if m.cache != nil {
		m.cache.Delete(ctx, cacheKeyPermissions)
		m.cache.Delete(ctx, cacheKeyGroups)
	}
}

func (m *Manager) maps(ctx context.Context) (map[string]*Permission, map[string][]string, error) {
	m.mu.RLock()
	byName, byGroup := m.byName, m.byGroup
	m.mu.RUnlock()
	if byName != nil {
		return byName, byGroup, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byName != nil {
		return m.byName, m.byGroup, nil
	}

	perms, err := m.store.ListPermissions(ctx, &ListFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("list permissions: %w", err)
	}

	byName = make(map[string]*Permission, len(perms))
	groups := map[string]struct{}{secmeta.DefaultGroup: {}}
	for _, p := range perms {
		byName[p.Name] = p
		for _, g := range p.GroupNames {
			if !strings.ContainsRune(g, '*') {
				groups[g] = struct{}{}
			}
		}
	}

	byGroup = make(map[string][]string, len(groups))
	for group := range groups {
		for _, p := range perms {
			if appliesToGroup(p, group) {
				byGroup[group] = append(byGroup[group], p.Name)
			}
		}
	}

	m.byName = byName
	m.byGroup = byGroup
	if m.cache != nil {
		m.cache.Save(ctx, cacheKeyPermissions, byName)
		m.cache.Save(ctx, cacheKeyGroups, byGroup)
	}
	return byName, byGroup, nil
}

func appliesToGroup(p *Permission, group string) bool {
	if p.ApplyToAll {
		return true
	}
	for _, pattern := range p.GroupNames {
		if matchGroup(pattern, group) {
			return true
		}
	}
	return false
}

// matchGroup checks if a group pattern matches a group name with simple glob
// support: a trailing '*' matches any suffix.
func matchGroup(pattern, group string) bool {
	if pattern == "*" {
		return true
	}
	if pattern == group {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(group, strings.TrimSuffix(pattern, "*"))
	}
	return false
}
