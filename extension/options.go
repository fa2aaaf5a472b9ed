package extension

import (
	"log/slog"
	"time"

	"github.com/xraph/rowguard"
	"github.com/xraph/rowguard/plugin"
	"github.com/xraph/rowguard/store"
)

// ExtOption configures the rowguard Forge extension.
type ExtOption func(*Extension)

// WithStore sets the persistence backend.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.engOpts = append(e.engOpts, rowguard.WithStore(s))
	}
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithEngineOptions adds engine-level options.
func WithEngineOptions(opts ...rowguard.Option) ExtOption {
	return func(e *Extension) {
		e.engOpts = append(e.engOpts, opts...)
	}
}

// WithPlugin registers a lifecycle hook plugin.
func WithPlugin(x plugin.Plugin) ExtOption {
	return func(e *Extension) {
		e.plugins = append(e.plugins, x)
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}

// WithDisableTreeWarmup disables eager owner tree construction on start.
func WithDisableTreeWarmup() ExtOption {
	return func(e *Extension) {
		e.config.DisableTreeWarmup = true
	}
}

// WithCacheTTL sets the time-to-live of the default in-memory cache.
func WithCacheTTL(ttl time.Duration) ExtOption {
	return func(e *Extension) {
		e.config.CacheTTL = ttl
	}
}
