// Package plugin defines the plugin system for rowguard.
// Plugins are notified of lifecycle events (check performed, entry written,
// owner tree rebuilt, etc.) and can react — logging, metrics, tracing, etc.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/rowguard/ace"
	"github.com/xraph/rowguard/id"
	"github.com/xraph/rowguard/permission"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Check lifecycle hooks
// ──────────────────────────────────────────────────

// BeforeCheck is called before an access check is evaluated.
// The req parameter is *rowguard.CheckRequest (passed as any to avoid import cycle).
type BeforeCheck interface {
	OnBeforeCheck(ctx context.Context, req any) error
}

// AfterCheck is called after an access check completes.
// The req parameter is *rowguard.CheckRequest; result is *rowguard.Result.
type AfterCheck interface {
	OnAfterCheck(ctx context.Context, req, result any) error
}

// ConditionBuilt is called after a query condition is compiled.
// The cond parameter is rowguard.Condition (passed as any to avoid import cycle).
type ConditionBuilt interface {
	OnConditionBuilt(ctx context.Context, entityType, perm string, cond any) error
}

// ──────────────────────────────────────────────────
// Entry lifecycle hooks
// ──────────────────────────────────────────────────

// EntryWritten is called after an access control entry is created or updated.
type EntryWritten interface {
	OnEntryWritten(ctx context.Context, e *ace.Entry) error
}

// EntryDeleted is called after an access control entry is deleted.
type EntryDeleted interface {
	OnEntryDeleted(ctx context.Context, entryID id.EntryID) error
}

// IdentityRenamed is called after a security identity changes its name.
type IdentityRenamed interface {
	OnIdentityRenamed(ctx context.Context, sid *ace.SecurityIdentity, oldName string) error
}

// IdentityDeleted is called after a security identity is deleted.
type IdentityDeleted interface {
	OnIdentityDeleted(ctx context.Context, sidID id.IdentityID) error
}

// ──────────────────────────────────────────────────
// Permission lifecycle hooks
// ──────────────────────────────────────────────────

// PermissionCreated is called after a permission is created.
type PermissionCreated interface {
	OnPermissionCreated(ctx context.Context, p *permission.Permission) error
}

// PermissionDeleted is called after a permission is deleted.
type PermissionDeleted interface {
	OnPermissionDeleted(ctx context.Context, permID id.PermissionID) error
}

// ──────────────────────────────────────────────────
// Owner tree hooks
// ──────────────────────────────────────────────────

// TreeRebuilt is called after the owner tree is rebuilt from the directory.
type TreeRebuilt interface {
	OnTreeRebuilt(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
