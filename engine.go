package rowguard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/rowguard/ace"
	"github.com/xraph/rowguard/auditlog"
	"github.com/xraph/rowguard/id"
	"github.com/xraph/rowguard/ownership"
	"github.com/xraph/rowguard/ownertree"
	"github.com/xraph/rowguard/permission"
	"github.com/xraph/rowguard/plugin"
	"github.com/xraph/rowguard/secmeta"
	"github.com/xraph/rowguard/store"
)

// CheckRequest is the input to an access check.
type CheckRequest struct {
	Token       Token    `json:"token"`
	Object      any      `json:"object"`
	Permissions []string `json:"permissions,omitempty"`
}

// Engine is the central access control engine. It wires the extensions,
// voter, and condition builder over one store, manages the owner tree, and
// fires plugin hooks.
type Engine struct {
	store    store.Store
	cache    CacheProvider
	plugins  *plugin.Registry
	logger   *slog.Logger
	config   Config
	group    GroupProvider
	strategy GrantingStrategy

	ownership       ownership.Provider
	secmeta         secmeta.Provider
	actions         []string
	extraExtensions []Extension

	tree     *ownertree.Provider
	perms    *permission.Manager
	selector *ExtensionSelector
	voter    *Voter
	builder  *ConditionBuilder
}

// NewEngine creates a new rowguard engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("rowguard: store is required")
	}
	if e.secmeta == nil {
		e.secmeta = secmeta.NewRegistry()
	}

	e.tree = ownertree.NewProvider(e.store, e.cache, e.logger,
		ownertree.WithMaxDepth(e.config.maxTreeDepth()))
	e.perms = permission.NewManager(e.store, e.secmeta, e.cache)

	extensions := []Extension{
		NewEntityExtension(e.secmeta, e.ownership, e.tree, e.perms),
		NewActionExtension(e.actions...),
	}
	extensions = append(extensions, e.extraExtensions...)
	e.selector = NewExtensionSelector(extensions...)

	if e.strategy == nil {
		e.strategy = NewEntryGrantingStrategy(e.store, e.logger)
	}
	e.voter = NewVoter(e.selector, e.strategy, e.group, e.ownership, e.secmeta, e.config, e.logger)
	e.builder = NewConditionBuilder(e.voter, e.ownership, e.secmeta, e.tree, e.logger)
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Permissions returns the permission manager.
func (e *Engine) Permissions() *permission.Manager { return e.perms }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// Check performs an access check. This is the hot path.
func (e *Engine) Check(ctx context.Context, req *CheckRequest) (*Result, error) {
	start := time.Now()
	token := resolveToken(ctx, req.Token)

	if e.plugins != nil {
		e.plugins.EmitBeforeCheck(ctx, req)
	}

	res, err := e.voter.Vote(ctx, token, req.Object, req.Permissions)
	if err != nil {
		return nil, fmt.Errorf("rowguard check: %w", err)
	}
	res.EvalTimeNs = time.Since(start).Nanoseconds()

	if err := e.writeAudit(ctx, token, req, res); err != nil {
		// Audit failures must not flip the decision; they are logged and
		// the check result stands.
		e.logger.ErrorContext(ctx, "audit record write failed", "error", err)
	}

	if e.plugins != nil {
		e.plugins.EmitAfterCheck(ctx, req, res)
	}
	return res, nil
}

// IsGranted is a shorthand for a single-permission check.
func (e *Engine) IsGranted(ctx context.Context, token Token, perm string, object any) (bool, error) {
	var permissions []string
	if perm != "" {
		permissions = []string{perm}
	}
	res, err := e.Check(ctx, &CheckRequest{Token: token, Object: object, Permissions: permissions})
	if err != nil {
		return false, err
	}
	return res.Granted(), nil
}

// Enforce returns an error if the access check does not grant.
func (e *Engine) Enforce(ctx context.Context, req *CheckRequest) error {
	res, err := e.Check(ctx, req)
	if err != nil {
		return err
	}
	if !res.Granted() {
		return fmt.Errorf("%w: %s — %s", ErrAccessDenied, res.Decision, res.Reason)
	}
	return nil
}

// ConditionData compiles the visibility condition for list queries over
// entityType under the given permission.
func (e *Engine) ConditionData(ctx context.Context, token Token, entityType, perm string) (Condition, error) {
	token = resolveToken(ctx, token)
	cond, err := e.builder.ConditionData(ctx, token, entityType, perm)
	if err != nil {
		return cond, err
	}
	if e.plugins != nil {
		e.plugins.EmitConditionBuilt(ctx, entityType, perm, cond)
	}
	return cond, nil
}

// RebuildTree rescans the directory and swaps in a fresh owner tree. Call
// it after writes to users, business units, or their assignments.
func (e *Engine) RebuildTree(ctx context.Context) error {
	if _, err := e.tree.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuild owner tree: %w", err)
	}
	if e.plugins != nil {
		e.plugins.EmitTreeRebuilt(ctx)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Administration
// ──────────────────────────────────────────────────

// CreateIdentity persists a new security identity.
func (e *Engine) CreateIdentity(ctx context.Context, kind ace.IdentityKind, name string) (*ace.SecurityIdentity, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: identity name is empty", ErrInvalidArgument)
	}
	now := time.Now().UTC()
	sid := &ace.SecurityIdentity{
		ID:        id.NewIdentityID(),
		Kind:      kind,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.CreateIdentity(ctx, sid); err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}
	return sid, nil
}

// RenameIdentity changes an identity's name, keeping its entries attached.
// Renaming to the name the identity already has is rejected with
// ErrInvalidArgument so callers notice no-op migrations.
func (e *Engine) RenameIdentity(ctx context.Context, sidID id.IdentityID, newName string) (*ace.SecurityIdentity, error) {
	if newName == "" {
		return nil, fmt.Errorf("%w: identity name is empty", ErrInvalidArgument)
	}
	sid, err := e.store.GetIdentity(ctx, sidID)
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	if sid.Name == newName {
		return nil, fmt.Errorf("%w: identity %s already has name %q", ErrInvalidArgument, sidID, newName)
	}
	oldName := sid.Name
	sid.Name = newName
	sid.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateIdentity(ctx, sid); err != nil {
		return nil, fmt.Errorf("rename identity: %w", err)
	}
	if e.plugins != nil {
		e.plugins.EmitIdentityRenamed(ctx, sid, oldName)
	}
	return sid, nil
}

// DeleteIdentity removes an identity and all its entries.
func (e *Engine) DeleteIdentity(ctx context.Context, sidID id.IdentityID) error {
	if err := e.store.DeleteIdentity(ctx, sidID); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if e.plugins != nil {
		e.plugins.EmitIdentityDeleted(ctx, sidID)
	}
	return nil
}

// WriteEntry creates the entry when its ID is nil and updates it otherwise.
func (e *Engine) WriteEntry(ctx context.Context, entry *ace.Entry) error {
	now := time.Now().UTC()
	entry.UpdatedAt = now
	if entry.ID.IsNil() {
		entry.ID = id.NewEntryID()
		entry.CreatedAt = now
		if err := e.store.CreateEntry(ctx, entry); err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
	} else {
		if err := e.store.UpdateEntry(ctx, entry); err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
	}
	if e.plugins != nil {
		e.plugins.EmitEntryWritten(ctx, entry)
	}
	return nil
}

// DeleteEntry removes an access control entry.
func (e *Engine) DeleteEntry(ctx context.Context, entryID id.EntryID) error {
	if err := e.store.DeleteEntry(ctx, entryID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if e.plugins != nil {
		e.plugins.EmitEntryDeleted(ctx, entryID)
	}
	return nil
}

// writeAudit persists an audit record when the deciding entry asks for one.
func (e *Engine) writeAudit(ctx context.Context, token Token, req *CheckRequest, res *Result) error {
	if !e.config.auditEnabled() || res.Entry == nil {
		return nil
	}
	granted := res.Granted()
	if granted && !res.Entry.AuditSuccess {
		return nil
	}
	if !granted && !res.Entry.AuditFailure {
		return nil
	}
	return e.store.CreateRecord(ctx, &auditlog.Record{
		ID:             id.NewAuditID(),
		UserID:         token.UserID,
		OrganizationID: token.OrganizationID,
		ObjectType:     res.Entry.ObjectType,
		ObjectID:       res.Entry.ObjectID,
		Permission:     res.Permission,
		Decision:       string(res.Decision),
		AccessLevel:    res.AccessLevel.String(),
		TriggeredMask:  uint32(res.TriggeredMask),
		CreatedAt:      time.Now().UTC(),
	})
}
