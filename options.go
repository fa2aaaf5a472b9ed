package rowguard

import (
	"log/slog"

	"github.com/xraph/rowguard/ownership"
	"github.com/xraph/rowguard/plugin"
	"github.com/xraph/rowguard/secmeta"
	"github.com/xraph/rowguard/store"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithStore sets the composite store.
func WithStore(s store.Store) Option { return func(e *Engine) { e.store = s } }

// WithCache sets the shared cache provider.
func WithCache(c CacheProvider) Option { return func(e *Engine) { e.cache = c } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }

// WithOwnershipProvider sets the ownership metadata provider. Without one,
// every grant decides on the permission bits alone.
func WithOwnershipProvider(p ownership.Provider) Option {
	return func(e *Engine) { e.ownership = p }
}

// WithSecurityMetadata sets the protected-type registry.
func WithSecurityMetadata(p secmeta.Provider) Option {
	return func(e *Engine) { e.secmeta = p }
}

// WithGroupProvider sets the permission group provider for "group@Type"
// checks.
func WithGroupProvider(g GroupProvider) Option { return func(e *Engine) { e.group = g } }

// WithGrantingStrategy replaces the default entry-backed strategy.
func WithGrantingStrategy(s GrantingStrategy) Option { return func(e *Engine) { e.strategy = s } }

// WithActions declares the known action names for the action extension.
// Without it any action name is accepted.
func WithActions(actions ...string) Option {
	return func(e *Engine) { e.actions = append(e.actions, actions...) }
}

// WithExtension registers an additional extension, consulted after the
// built-in entity and action extensions.
func WithExtension(x Extension) Option {
	return func(e *Engine) { e.extraExtensions = append(e.extraExtensions, x) }
}

// WithPlugin registers a plugin with the engine.
func WithPlugin(x plugin.Plugin) Option {
	return func(e *Engine) {
		if e.plugins == nil {
			e.plugins = plugin.NewRegistry(e.logger)
		}
		e.plugins.Register(x)
	}
}
