// Package extension provides a Forge extension entry point for rowguard.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/rowguard"
	"github.com/xraph/rowguard/cache"
	"github.com/xraph/rowguard/plugin"
	"github.com/xraph/rowguard/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "rowguard"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Hierarchical row-level access control engine (owner tree, ACL entries, query conditions)"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts rowguard as a Forge extension.
type Extension struct {
	config  Config
	eng     *rowguard.Engine
	logger  *slog.Logger
	engOpts []rowguard.Option
	plugins []plugin.Plugin
}

// New creates a rowguard Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Engine returns the underlying rowguard engine.
func (e *Extension) Engine() *rowguard.Engine { return e.eng }

// Register implements [forge.Extension]. It initializes the engine and
// registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	if err := vessel.Provide(fapp.Container(), func() (*rowguard.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("rowguard: register engine in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := make([]rowguard.Option, 0, len(e.engOpts)+len(e.plugins)+3)
	opts = append(opts, rowguard.WithLogger(logger))
	opts = append(opts, rowguard.WithCache(cache.NewMemory(cache.WithTTL(e.config.CacheTTL))))

	// Try to resolve the store from the DI container, fall back to an
	// option-provided store.
	if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
		opts = append(opts, rowguard.WithStore(s))
	}

	// Append user-provided options (may override the store and cache).
	opts = append(opts, e.engOpts...)

	for _, x := range e.plugins {
		opts = append(opts, rowguard.WithPlugin(x))
	}

	eng, err := rowguard.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("rowguard: create engine: %w", err)
	}
	e.eng = eng

	return nil
}

// Start runs migrations, warms the owner tree, and starts the engine.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("rowguard: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if s := e.eng.Store(); s != nil {
			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("rowguard: migration failed: %w", err)
			}
		}
	}

	if !e.config.DisableTreeWarmup {
		if err := e.eng.RebuildTree(ctx); err != nil {
			return fmt.Errorf("rowguard: owner tree warmup failed: %w", err)
		}
	}

	return e.eng.Start(ctx)
}

// Stop gracefully shuts down the rowguard engine.
func (e *Extension) Stop(ctx context.Context) error {
	if e.eng == nil {
		return nil
	}
	return e.eng.Stop(ctx)
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("rowguard: extension not initialized")
	}
	s := e.eng.Store()
	if s == nil {
		return errors.New("rowguard: no store configured")
	}
	return s.Ping(ctx)
}
