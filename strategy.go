package rowguard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xraph/rowguard/ace"
	"github.com/xraph/rowguard/accesslevel"
)

// GrantingStrategy turns the stored access control entries into a decision
// for one vote. The default strategy walks the subject's entries; custom
// strategies can source grants elsewhere (e.g., static role tables).
type GrantingStrategy interface {
	Decide(ctx context.Context, vc *VoteContext) (*Result, error)
}

// VoteContext carries everything one vote needs. A fresh value is built per
// call, so concurrent votes never share mutable state.
type VoteContext struct {
	Token          Token
	Extension      Extension
	ObjectIdentity ObjectIdentity
	Object         any
	Builder        *MaskBuilder
	Permissions    []string
}

// Result is the outcome of a vote.
type Result struct {
	Decision Decision `json:"decision"`
	Reason   string   `json:"reason,omitempty"`

	// Permission is the permission that decided the vote.
	Permission string `json:"permission,omitempty"`

	// AccessLevel is the level encoded in the triggered entry, after the
	// extension's per-type cap. NONE when no entry triggered.
	AccessLevel accesslevel.Level `json:"access_level"`

	// TriggeredMask is the permission window of the entry that decided.
	TriggeredMask Bitmask `json:"triggered_mask,omitempty"`

	// Entry is the access control entry that decided, nil on abstain.
	Entry *ace.Entry `json:"entry,omitempty"`

	// EvalTimeNs is the check evaluation time, filled by the engine.
	EvalTimeNs int64 `json:"eval_time_ns,omitempty"`
}

// Granted reports whether the vote granted access.
func (r *Result) Granted() bool { return r != nil && r.Decision == DecisionGrant }

// EntryGrantingStrategy is the default strategy: it loads the user's
// security identity and walks its entries, object-scoped before
// class-scoped. The first entry carrying a required permission bit decides;
// deny entries deny outright, granting entries additionally consult the
// extension's ownership decision and fall through when the concrete row is
// out of reach.
type EntryGrantingStrategy struct {
	store  ace.Store
	logger *slog.Logger
}

var _ GrantingStrategy = (*EntryGrantingStrategy)(nil)

// NewEntryGrantingStrategy creates the default strategy. logger may be nil.
func NewEntryGrantingStrategy(store ace.Store, logger *slog.Logger) *EntryGrantingStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntryGrantingStrategy{
		store:  store,
		logger: logger.With("component", "granting_strategy"),
	}
}

// Decide implements GrantingStrategy.
func (s *EntryGrantingStrategy) Decide(ctx context.Context, vc *VoteContext) (*Result, error) {
	sid, err := s.store.GetIdentityByName(ctx, ace.IdentityUser, vc.Token.UserID)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return &Result{Decision: DecisionAbstain, Reason: "no security identity"}, nil
		}
		return nil, fmt.Errorf("load security identity: %w", err)
	}

	objectID := vc.ObjectIdentity.ID
	if vc.ObjectIdentity.IsRoot() {
		objectID = ""
	}
	entries, err := s.store.ListEntriesForIdentity(ctx, sid.ID, vc.ObjectIdentity.Type, objectID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	// Object-scoped entries override class-scoped ones.
	ordered := make([]*ace.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.IsClassScoped() {
			ordered = append(ordered, e)
		}
	}
	for _, e := range entries {
		if e.IsClassScoped() {
			ordered = append(ordered, e)
		}
	}

	for _, perm := range vc.Permissions {
		if !vc.Builder.Supports(perm) {
			continue
		}
		for _, entry := range ordered {
			window := vc.Builder.PermissionMask(Bitmask(entry.Mask), perm)
			if window == 0 {
				continue
			}
			if !entry.Granting {
				return &Result{
					Decision:      DecisionDeny,
					Reason:        "deny entry",
					Permission:    perm,
					AccessLevel:   vc.Extension.MaxAccessLevel(ctx, vc.Builder.AccessLevel(window, ""), vc.ObjectIdentity.Type),
					TriggeredMask: window,
					Entry:         entry,
				}, nil
			}

			granting, err := vc.Extension.DecideIsGranting(ctx, window, vc.Token, vc.Object)
			if err != nil {
				return nil, err
			}
			if !granting {
				// The bit matched but the row is outside the reachable
				// ownership set; a later entry may still grant.
				continue
			}
			return &Result{
				Decision:      DecisionGrant,
				Reason:        "granting entry",
				Permission:    perm,
				AccessLevel:   vc.Extension.MaxAccessLevel(ctx, vc.Builder.AccessLevel(window, ""), vc.ObjectIdentity.Type),
				TriggeredMask: window,
				Entry:         entry,
			}, nil
		}
	}

	return &Result{Decision: DecisionAbstain, Reason: "no applicable entry"}, nil
}
