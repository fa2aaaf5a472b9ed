package ownership

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/rowguard/accesslevel"
)

// Provider gives access to the ownership metadata of entity types and
// resolves the three well-known access level anchor types.
type Provider interface {
	// Metadata returns the ownership metadata for an entity type.
	// Unknown types yield the zero Metadata (no owner concept), not an error.
	Metadata(entityType string) Metadata

	// UserType returns the entity type that represents users
	// (the BASIC access level anchor).
	UserType() string

	// BusinessUnitType returns the entity type that represents business
	// units (the LOCAL access level anchor).
	BusinessUnitType() string

	// OrganizationType returns the entity type that represents
	// organizations (the GLOBAL access level anchor).
	OrganizationType() string

	// MaxAccessLevel caps a level for the given entity type. SYSTEM is
	// reduced to GLOBAL for any owned type: system-wide access is never
	// broader than organization-wide for owned entities.
	MaxAccessLevel(level accesslevel.Level, entityType string) accesslevel.Level
}

// EntityConfig is the raw per-type ownership configuration.
type EntityConfig struct {
	OwnerType          string `json:"owner_type" yaml:"owner_type"`
	OwnerField         string `json:"owner_field_name" yaml:"owner_field_name"`
	OwnerColumn        string `json:"owner_column_name" yaml:"owner_column_name"`
	OrganizationField  string `json:"organization_field_name" yaml:"organization_field_name"`
	OrganizationColumn string `json:"organization_column_name" yaml:"organization_column_name"`
}

// Config is the full ownership configuration of an application.
type Config struct {
	// UserType, BusinessUnitType and OrganizationType name the three anchor
	// entity types of the hierarchy. All three are required.
	UserType         string `json:"user_type" yaml:"user_type"`
	BusinessUnitType string `json:"business_unit_type" yaml:"business_unit_type"`
	OrganizationType string `json:"organization_type" yaml:"organization_type"`

	// Entities maps entity type names to their ownership configuration.
	// Types absent from the map have no owner concept.
	Entities map[string]EntityConfig `json:"entities" yaml:"entities"`
}

// Cache persists built metadata between processes. It is satisfied by
// rowguard's cache providers; callers may pass nil for a build-only provider.
type Cache interface {
	Fetch(ctx context.Context, key string) (any, bool)
	Save(ctx context.Context, key string, value any)
	Delete(ctx context.Context, key string)
}

// cacheKey is the cache slot holding the built metadata map.
const cacheKey = "rowguard.ownership_metadata"

// ConfigProvider is a Provider backed by static configuration. All metadata
// is validated eagerly at construction so malformed configuration fails
// fast with the offending type name.
type ConfigProvider struct {
	userType string
	buType   string
	orgType  string
	metadata map[string]Metadata
	cache    Cache
}

var _ Provider = (*ConfigProvider)(nil)

// NewConfigProvider validates cfg and builds a provider from it.
func NewConfigProvider(cfg Config, cache Cache) (*ConfigProvider, error) {
	if cfg.UserType == "" || cfg.BusinessUnitType == "" || cfg.OrganizationType == "" {
		return nil, fmt.Errorf(
			"%w: user, business unit and organization types are required", ErrInvalidConfiguration)
	}

	metadata := make(map[string]Metadata, len(cfg.Entities))
	for entityType, ec := range cfg.Entities {
		ownerType, err := ParseOwnerType(ec.OwnerType)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", entityType, err)
		}
		m, err := NewMetadata(ownerType, ec.OwnerField, ec.OwnerColumn, ec.OrganizationField, ec.OrganizationColumn)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", entityType, err)
		}
		metadata[entityType] = m
	}

	p := &ConfigProvider{
		userType: cfg.UserType,
		buType:   cfg.BusinessUnitType,
		orgType:  cfg.OrganizationType,
		metadata: metadata,
		cache:    cache,
	}
	if cache != nil {
		cache.Save(context.Background(), cacheKey, metadata)
	}
	return p, nil
}

// Metadata implements Provider.
func (p *ConfigProvider) Metadata(entityType string) Metadata {
	return p.metadata[entityType]
}

// UserType implements Provider.
func (p *ConfigProvider) UserType() string { return p.userType }

// BusinessUnitType implements Provider.
func (p *ConfigProvider) BusinessUnitType() string { return p.buType }

// OrganizationType implements Provider.
func (p *ConfigProvider) OrganizationType() string { return p.orgType }

// MaxAccessLevel implements Provider.
func (p *ConfigProvider) MaxAccessLevel(level accesslevel.Level, entityType string) accesslevel.Level {
	if level != accesslevel.System || entityType == "" {
		return level
	}
	if p.Metadata(entityType).HasOwner() {
		return accesslevel.Global
	}
	return level
}

// Invalidate drops the cached metadata map.
func (p *ConfigProvider) Invalidate(ctx context.Context) {
	if p.cache != nil {
		p.cache.Delete(ctx, cacheKey)
	}
}

// ChainEntry is a Provider that can also tell whether it serves the current
// security context (e.g., only when a platform user is authenticated).
type ChainEntry interface {
	Provider

	// Supports reports whether this provider serves the current context.
	Supports() bool
}

// ChainProvider walks an ordered list of providers and delegates to the
// first one that supports the current context. The selected provider is
// remembered until Reset is called.
type ChainProvider struct {
	mu        sync.Mutex
	providers []ChainEntry
	selected  ChainEntry
}

// NewChainProvider creates a chain over the given providers, consulted in
// order.
func NewChainProvider(providers ...ChainEntry) *ChainProvider {
	return &ChainProvider{providers: providers}
}

// Supported returns the first provider whose Supports reports true, or
// ErrNoSupportedProvider when none does.
func (c *ChainProvider) Supported() (Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != nil {
		return c.selected, nil
	}
	for _, p := range c.providers {
		if p.Supports() {
			c.selected = p
			return p, nil
		}
	}
	return nil, ErrNoSupportedProvider
}

// Reset forgets the remembered provider so the next call re-evaluates the
// chain (the security context may have changed).
func (c *ChainProvider) Reset() {
	c.mu.Lock()
	c.selected = nil
	c.mu.Unlock()
}
