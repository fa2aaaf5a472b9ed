package rowguard

// Config holds configuration for the rowguard engine.
type Config struct {
	// MaxTreeDepth bounds the business unit hierarchy traversal. Zero means
	// the default of 32. The tree walk also keeps a visited set, so the
	// bound matters only for pathological hierarchies.
	MaxTreeDepth int `json:"max_tree_depth,omitempty"`

	// EnableAudit enables audit record writes for entries that carry audit
	// flags. Defaults to true.
	EnableAudit *bool `json:"enable_audit,omitempty"`

	// EnableOrgCheck enables the organization context check for levels
	// below SYSTEM. Defaults to true.
	EnableOrgCheck *bool `json:"enable_org_check,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	t := true
	return Config{
		MaxTreeDepth:   32,
		EnableAudit:    &t,
		EnableOrgCheck: &t,
	}
}

func (c Config) auditEnabled() bool    { return c.EnableAudit == nil || *c.EnableAudit }
func (c Config) orgCheckEnabled() bool { return c.EnableOrgCheck == nil || *c.EnableOrgCheck }

func (c Config) maxTreeDepth() int {
	if c.MaxTreeDepth > 0 {
		return c.MaxTreeDepth
	}
	return 32
}
