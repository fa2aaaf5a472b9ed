package ownertree

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/xraph/rowguard/org"
)

// Source supplies the organizational directory records the tree is built
// from. It is satisfied by the org store.
type Source interface {
	ListUsers(ctx context.Context) ([]*org.User, error)
	ListBusinessUnits(ctx context.Context) ([]*org.BusinessUnit, error)
}

// Cache persists the built tree between processes. Satisfied by rowguard's
// cache providers; nil means rebuild-only.
type Cache interface {
	Fetch(ctx context.Context, key string) (any, bool)
	Save(ctx context.Context, key string, value any)
	Delete(ctx context.Context, key string)
}

// cacheKey is the cache slot holding the built tree snapshot.
const cacheKey = "rowguard.owner_tree"

// Provider builds the owner tree from a Source and hands out immutable
// snapshots. Rebuilds replace the whole snapshot atomically, so readers
// never observe a partially filled tree.
type Provider struct {
	source   Source
	cache    Cache
	logger   *slog.Logger
	maxDepth int
	current  atomic.Pointer[Tree]
}

// Option configures a Provider.
type Option func(*Provider)

// WithMaxDepth bounds the subordinate-unit traversal of built trees. Zero
// leaves it unbounded.
func WithMaxDepth(depth int) Option {
	return func(p *Provider) { p.maxDepth = depth }
}

// NewProvider creates a tree provider over the given source. cache and
// logger may be nil.
func NewProvider(source Source, cache Cache, logger *slog.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		source: source,
		cache:  cache,
		logger: logger.With("component", "ownertree"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tree returns the current snapshot, building one on first use. The
// returned tree must be treated as read-only.
func (p *Provider) Tree(ctx context.Context) (*Tree, error) {
	if t := p.current.Load(); t != nil {
		return t, nil
	}
	if p.cache != nil {
		if v, ok := p.cache.Fetch(ctx, cacheKey); ok {
			if t, ok := v.(*Tree); ok && t != nil {
				p.current.Store(t)
				return t, nil
			}
		}
	}
	return p.Rebuild(ctx)
}

// Rebuild scans the full directory and swaps in a fresh snapshot.
func (p *Provider) Rebuild(ctx context.Context) (*Tree, error) {
	units, err := p.source.ListBusinessUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("list business units: %w", err)
	}
	users, err := p.source.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	t := New()
	t.maxDepth = p.maxDepth

	for _, bu := range units {
		if bu.OrganizationID == "" {
			// An unassigned unit cannot participate in any organization's
			// hierarchy; it simply does not appear in the tree.
			continue
		}
		t.AddBusinessUnit(bu.ID, bu.OrganizationID)
		if bu.OwnerID != "" {
			t.AddBusinessUnitRelation(bu.ID, bu.OwnerID)
		}
	}

	for _, u := range users {
		t.AddUser(u.ID, u.OwnerID)
		for _, orgID := range u.OrganizationIDs {
			t.AddUserOrganization(u.ID, orgID)
		}
		for _, buID := range u.BusinessUnitIDs {
			buOrg, ok := t.BusinessUnitOrganizationID(buID)
			if !ok {
				continue
			}
			if !contains(u.OrganizationIDs, buOrg) {
				// An assignment to a unit of an organization the user does
				// not belong to grants nothing.
				continue
			}
			t.AddUserBusinessUnit(u.ID, buOrg, buID)
		}
	}

	p.current.Store(t)
	if p.cache != nil {
		p.cache.Save(ctx, cacheKey, t)
	}
	p.logger.DebugContext(ctx, "owner tree rebuilt",
		"users", len(users),
		"business_units", len(units),
	)
	return t, nil
}

// Clear drops the in-memory and cached snapshots; the next Tree call
// rebuilds from the source. Call it after any write to organizational
// relations.
func (p *Provider) Clear(ctx context.Context) {
	p.current.Store(nil)
	if p.cache != nil {
		p.cache.Delete(ctx, cacheKey)
	}
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
