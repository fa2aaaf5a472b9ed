package extension

import "time"

// Config holds the rowguard extension configuration.
// Fields can be set programmatically via option functions or loaded from
// YAML configuration files (under "extensions.rowguard" or "rowguard" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// DisableTreeWarmup prevents the owner tree from being built eagerly on
	// start; the first check builds it instead.
	DisableTreeWarmup bool `json:"disable_tree_warmup" mapstructure:"disable_tree_warmup" yaml:"disable_tree_warmup"`

	// CacheTTL is the time-to-live of the default in-memory cache the
	// extension provides to the engine. Zero means entries never expire.
	CacheTTL time.Duration `json:"cache_ttl" mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{}
}
