package rowguard

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/xraph/rowguard/accesslevel"
	"github.com/xraph/rowguard/ownership"
	"github.com/xraph/rowguard/secmeta"
)

// GroupProvider names the permission group the application is currently
// voting in. Checks against identities of another group deny without
// consulting any entries.
type GroupProvider interface {
	Group(ctx context.Context) string
}

// Voter runs one access check end to end: extension selection, permission
// defaulting, strategy decision, and organization context validation. A
// voter is stateless across calls; each vote builds its own VoteContext.
type Voter struct {
	selector  *ExtensionSelector
	strategy  GrantingStrategy
	group     GroupProvider
	ownership ownership.Provider
	secmeta   secmeta.Provider
	config    Config
	logger    *slog.Logger
}

// NewVoter creates a voter. group, ownershipProvider, secProvider, and
// logger may be nil.
func NewVoter(
	selector *ExtensionSelector,
	strategy GrantingStrategy,
	group GroupProvider,
	ownershipProvider ownership.Provider,
	secProvider secmeta.Provider,
	config Config,
	logger *slog.Logger,
) *Voter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Voter{
		selector:  selector,
		strategy:  strategy,
		group:     group,
		ownership: ownershipProvider,
		secmeta:   secProvider,
		config:    config,
		logger:    logger.With("component", "voter"),
	}
}

// Vote decides whether the token holds any of the permissions on the
// object. Observers run once with the resolved access level, whatever the
// decision; use them to capture the level a query condition should be built
// for.
func (v *Voter) Vote(
	ctx context.Context,
	token Token,
	object any,
	permissions []string,
	observers ...func(accesslevel.Level),
) (*Result, error) {
	res, err := v.vote(ctx, token, object, permissions)
	if err != nil {
		return nil, err
	}
	for _, observe := range observers {
		observe(res.AccessLevel)
	}
	return res, nil
}

func (v *Voter) vote(ctx context.Context, token Token, object any, permissions []string) (*Result, error) {
	decisionObject := object
	if fv, ok := object.(FieldVote); ok {
		decisionObject = fv.Object
	}

	ext, err := v.selector.Select(ctx, object)
	if err != nil {
		var notFound *ExtensionNotFoundError
		if errors.As(err, &notFound) {
			return &Result{Decision: DecisionAbstain, Reason: "unsupported object"}, nil
		}
		return nil, err
	}

	oid, err := ext.ObjectIdentity(ctx, decisionObject)
	if err != nil {
		return nil, err
	}

	// A "group@Type" spelling pins the check to one permission group; types
	// spelled without the qualifier carry the group of their security
	// metadata. A vote from another group denies without touching any
	// entries.
	group, typeName, qualified := splitGroup(oid.Type)
	if qualified {
		oid.Type = typeName
	}
	if v.group != nil {
		if !qualified && v.secmeta != nil {
			if m, ok := v.secmeta.Metadata(ctx, oid.Type); ok {
				group = m.Group
			}
		}
		if group != "" && group != v.group.Group(ctx) {
			return &Result{Decision: DecisionDeny, Reason: "permission group mismatch"}, nil
		}
	}

	if len(permissions) == 0 {
		permissions = []string{ext.DefaultPermission()}
	}

	builder, err := ext.MaskBuilder(ctx, oid.Type)
	if err != nil {
		return nil, err
	}

	vc := &VoteContext{
		Token:          token,
		Extension:      ext,
		ObjectIdentity: oid,
		Object:         decisionObject,
		Builder:        builder,
		Permissions:    permissions,
	}
	res, err := v.strategy.Decide(ctx, vc)
	if err != nil {
		return nil, err
	}

	// Only concrete rows are scoped to an organization; class-level and
	// abstract identities carry no row to scope.
	concrete := oid.ID != "" && !oid.IsRoot()
	if concrete && res.Granted() && v.config.orgCheckEnabled() && token.OrganizationID == "" {
		if v.requiresOrganization(oid.Type, res.AccessLevel) {
			v.logger.DebugContext(ctx, "vote denied without organization context",
				"object_type", oid.Type,
				"user_id", token.UserID,
			)
			return &Result{Decision: DecisionDeny, Reason: "no organization context"}, nil
		}
	}
	return res, nil
}

// requiresOrganization reports whether a grant at the given level is only
// meaningful inside an organization. Every level below SYSTEM scopes to the
// current organization; SYSTEM still needs one for user- and business
// unit-owned types, whose ownership sets are per-organization.
func (v *Voter) requiresOrganization(entityType string, level accesslevel.Level) bool {
	if v.ownership == nil {
		return false
	}
	meta := v.ownership.Metadata(entityType)
	if !meta.HasOwner() {
		return false
	}
	if level < accesslevel.System {
		return true
	}
	return meta.IsUserOwned() || meta.IsBusinessUnitOwned()
}

func splitGroup(objectType string) (group, typeName string, ok bool) {
	group, typeName, ok = strings.Cut(objectType, "@")
	if !ok {
		return "", objectType, false
	}
	return group, typeName, true
}
