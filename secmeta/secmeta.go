// Package secmeta is the registry of security-protected entity types: which
// types participate in access control at all, how they group in the
// permission model, and which permissions apply to each.
package secmeta

import (
	"context"
	"sort"
	"sync"
)

// DefaultGroup is the permission group types belong to when registered
// without one.
const DefaultGroup = "default"

// Metadata describes one protected entity type.
type Metadata struct {
	// Type is the entity type name, unique within the registry.
	Type string `json:"type"`

	// Group names the permission group the type belongs to.
	Group string `json:"group"`

	// Label is a human-readable name for configuration UIs.
	Label string `json:"label,omitempty"`

	// Permissions lists the permission names applicable to the type.
	// Empty means every permission of the group applies.
	Permissions []string `json:"permissions,omitempty"`
}

// Provider answers which entity types are protected and with what metadata.
type Provider interface {
	// IsProtected reports whether the entity type participates in access
	// control.
	IsProtected(ctx context.Context, entityType string) bool

	// Metadata returns the metadata of a protected type. The second result
	// is false for unprotected types.
	Metadata(ctx context.Context, entityType string) (Metadata, bool)

	// Types returns the metadata of all protected types in a group, sorted
	// by type name. An empty group means all groups.
	Types(ctx context.Context, group string) []Metadata
}

// Registry is an in-memory Provider filled from application configuration at
// startup.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Metadata
}

var _ Provider = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Metadata)}
}

// Register adds or replaces the metadata of an entity type. A metadata with
// an empty group lands in DefaultGroup.
func (r *Registry) Register(m Metadata) {
	if m.Group == "" {
		m.Group = DefaultGroup
	}
	if len(m.Permissions) > 0 {
		m.Permissions = append([]string(nil), m.Permissions...)
	}
	r.mu.Lock()
	r.types[m.Type] = m
	r.mu.Unlock()
}

// IsProtected implements Provider.
func (r *Registry) IsProtected(_ context.Context, entityType string) bool {
	r.mu.RLock()
	_, ok := r.types[entityType]
	r.mu.RUnlock()
	return ok
}

// Metadata implements Provider.
func (r *Registry) Metadata(_ context.Context, entityType string) (Metadata, bool) {
	r.mu.RLock()
	m, ok := r.types[entityType]
	r.mu.RUnlock()
	return m, ok
}

// Types implements Provider.
func (r *Registry) Types(_ context.Context, group string) []Metadata {
	r.mu.RLock()
	result := make([]Metadata, 0, len(r.types))
	for _, m := range r.types {
		if group == "" || m.Group == group {
			result = append(result, m)
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}
