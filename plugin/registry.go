package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/rowguard/ace"
	"github.com/xraph/rowguard/id"
	"github.com/xraph/rowguard/permission"
)

// Named entry types pair a hook with the plugin name for logging.

type beforeCheckEntry struct {
	name string
	hook BeforeCheck
}
type afterCheckEntry struct {
	name string
	hook AfterCheck
}
type conditionBuiltEntry struct {
	name string
	hook ConditionBuilt
}
type entryWrittenEntry struct {
	name string
	hook EntryWritten
}
type entryDeletedEntry struct {
	name string
	hook EntryDeleted
}
type identityRenamedEntry struct {
	name string
	hook IdentityRenamed
}
type identityDeletedEntry struct {
	name string
	hook IdentityDeleted
}
type permissionCreatedEntry struct {
	name string
	hook PermissionCreated
}
type permissionDeletedEntry struct {
	name string
	hook PermissionDeleted
}
type treeRebuiltEntry struct {
	name string
	hook TreeRebuilt
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeCheck       []beforeCheckEntry
	afterCheck        []afterCheckEntry
	conditionBuilt    []conditionBuiltEntry
	entryWritten      []entryWrittenEntry
	entryDeleted      []entryDeletedEntry
	identityRenamed   []identityRenamedEntry
	identityDeleted   []identityDeletedEntry
	permissionCreated []permissionCreatedEntry
	permissionDeleted []permissionDeletedEntry
	treeRebuilt       []treeRebuiltEntry
	shutdown          []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeCheck); ok {
		r.beforeCheck = append(r.beforeCheck, beforeCheckEntry{name, h})
	}
	if h, ok := p.(AfterCheck); ok {
		r.afterCheck = append(r.afterCheck, afterCheckEntry{name, h})
	}
	if h, ok := p.(ConditionBuilt); ok {
		r.conditionBuilt = append(r.conditionBuilt, conditionBuiltEntry{name, h})
	}
	if h, ok := p.(EntryWritten); ok {
		r.entryWritten = append(r.entryWritten, entryWrittenEntry{name, h})
	}
	if h, ok := p.(EntryDeleted); ok {
		r.entryDeleted = append(r.entryDeleted, entryDeletedEntry{name, h})
	}
	if h, ok := p.(IdentityRenamed); ok {
		r.identityRenamed = append(r.identityRenamed, identityRenamedEntry{name, h})
	}
	if h, ok := p.(IdentityDeleted); ok {
		r.identityDeleted = append(r.identityDeleted, identityDeletedEntry{name, h})
	}
	if h, ok := p.(PermissionCreated); ok {
		r.permissionCreated = append(r.permissionCreated, permissionCreatedEntry{name, h})
	}
	if h, ok := p.(PermissionDeleted); ok {
		r.permissionDeleted = append(r.permissionDeleted, permissionDeletedEntry{name, h})
	}
	if h, ok := p.(TreeRebuilt); ok {
		r.treeRebuilt = append(r.treeRebuilt, treeRebuiltEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Check event emitters
// ──────────────────────────────────────────────────

// EmitBeforeCheck notifies all plugins that implement BeforeCheck.
func (r *Registry) EmitBeforeCheck(ctx context.Context, req any) {
	for _, e := range r.beforeCheck {
		if err := e.hook.OnBeforeCheck(ctx, req); err != nil {
			r.logHookError("OnBeforeCheck", e.name, err)
		}
	}
}

// EmitAfterCheck notifies all plugins that implement AfterCheck.
func (r *Registry) EmitAfterCheck(ctx context.Context, req, result any) {
	for _, e := range r.afterCheck {
		if err := e.hook.OnAfterCheck(ctx, req, result); err != nil {
			r.logHookError("OnAfterCheck", e.name, err)
		}
	}
}

// EmitConditionBuilt notifies all plugins that implement ConditionBuilt.
func (r *Registry) EmitConditionBuilt(ctx context.Context, entityType, perm string, cond any) {
	for _, e := range r.conditionBuilt {
		if err := e.hook.OnConditionBuilt(ctx, entityType, perm, cond); err != nil {
			r.logHookError("OnConditionBuilt", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Entry event emitters
// ──────────────────────────────────────────────────

// EmitEntryWritten notifies all plugins that implement EntryWritten.
func (r *Registry) EmitEntryWritten(ctx context.Context, entry *ace.Entry) {
	for _, e := range r.entryWritten {
		if err := e.hook.OnEntryWritten(ctx, entry); err != nil {
			r.logHookError("OnEntryWritten", e.name, err)
		}
	}
}

// EmitEntryDeleted notifies all plugins that implement EntryDeleted.
func (r *Registry) EmitEntryDeleted(ctx context.Context, entryID id.EntryID) {
	for _, e := range r.entryDeleted {
		if err := e.hook.OnEntryDeleted(ctx, entryID); err != nil {
			r.logHookError("OnEntryDeleted", e.name, err)
		}
	}
}

// EmitIdentityRenamed notifies all plugins that implement IdentityRenamed.
func (r *Registry) EmitIdentityRenamed(ctx context.Context, sid *ace.SecurityIdentity, oldName string) {
	for _, e := range r.identityRenamed {
		if err := e.hook.OnIdentityRenamed(ctx, sid, oldName); err != nil {
			r.logHookError("OnIdentityRenamed", e.name, err)
		}
	}
}

// EmitIdentityDeleted notifies all plugins that implement IdentityDeleted.
func (r *Registry) EmitIdentityDeleted(ctx context.Context, sidID id.IdentityID) {
	for _, e := range r.identityDeleted {
		if err := e.hook.OnIdentityDeleted(ctx, sidID); err != nil {
			r.logHookError("OnIdentityDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Permission event emitters
// ──────────────────────────────────────────────────

// EmitPermissionCreated notifies all plugins that implement PermissionCreated.
func (r *Registry) EmitPermissionCreated(ctx context.Context, p *permission.Permission) {
	for _, e := range r.permissionCreated {
		if err := e.hook.OnPermissionCreated(ctx, p); err != nil {
			r.logHookError("OnPermissionCreated", e.name, err)
		}
	}
}

// EmitPermissionDeleted notifies all plugins that implement PermissionDeleted.
func (r *Registry) EmitPermissionDeleted(ctx context.Context, permID id.PermissionID) {
	for _, e := range r.permissionDeleted {
		if err := e.hook.OnPermissionDeleted(ctx, permID); err != nil {
			r.logHookError("OnPermissionDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Owner tree emitters
// ──────────────────────────────────────────────────

// EmitTreeRebuilt notifies all plugins that implement TreeRebuilt.
func (r *Registry) EmitTreeRebuilt(ctx context.Context) {
	for _, e := range r.treeRebuilt {
		if err := e.hook.OnTreeRebuilt(ctx); err != nil {
			r.logHookError("OnTreeRebuilt", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Shutdown emitter
// ──────────────────────────────────────────────────

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
