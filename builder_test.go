package rowguard_test

import (
	"context"
	"sort"
	"testing"

	"github.com/xraph/rowguard"
	"github.com/xraph/rowguard/accesslevel"
	"github.com/xraph/rowguard/ace"
)

func grantView(t *testing.T, eng *rowguard.Engine, userID, entityType string, level accesslevel.Level) {
	t.Helper()
	sid := userIdentity(t, eng, userID)
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: entityType,
		Mask:       viewMask(t, level),
		Granting:   true,
	})
}

func TestConditionAnonymousSubjectUnrestricted(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	// A token without a user is outside access control; nothing restricts
	// the query.
	cond, err := eng.ConditionData(ctx, rowguard.Token{}, "Document", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if !cond.IsUnrestricted() {
		t.Fatalf("expected unrestricted condition, got %+v", cond)
	}
}

func TestConditionUnprotectedTypeUnrestricted(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Ledger", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if !cond.IsUnrestricted() {
		t.Fatalf("expected unrestricted condition for an unprotected type, got %+v", cond)
	}
}

func TestConditionDeniedWithoutGrant(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Document", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if !cond.IsDenied() {
		t.Fatalf("expected denied condition, got %+v", cond)
	}
}

func TestConditionZeroValueFailsClosed(t *testing.T) {
	var cond rowguard.Condition
	if !cond.IsDenied() {
		t.Fatal("zero condition must deny")
	}
}

func TestConditionBasicOwnerFilter(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "Document", accesslevel.Basic)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Document", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if !cond.HasOwnerPredicate() {
		t.Fatalf("expected owner predicate, got %+v", cond)
	}
	if cond.OwnerColumn != "owner_id" || cond.OwnerID != "u_bob" {
		t.Fatalf("owner predicate = %s/%s", cond.OwnerColumn, cond.OwnerID)
	}
	if cond.ValueKind != rowguard.ValueOwnerAssociation {
		t.Fatalf("value kind = %v, want owner association", cond.ValueKind)
	}
	if cond.OrganizationColumn != "organization_id" || cond.OrganizationID != "org_1" {
		t.Fatalf("organization predicate = %s/%s", cond.OrganizationColumn, cond.OrganizationID)
	}
}

func TestConditionLocalOwnerSet(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "Document", accesslevel.Local)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Document", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	got := append([]string(nil), cond.OwnerIDs...)
	sort.Strings(got)
	if len(got) != 2 || got[0] != "u_ben" || got[1] != "u_bob" {
		t.Fatalf("owner set = %v, want bob and ben", cond.OwnerIDs)
	}
}

func TestConditionDeepOwnerSet(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "Document", accesslevel.Deep)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Document", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	got := append([]string(nil), cond.OwnerIDs...)
	sort.Strings(got)
	want := []string{"u_ben", "u_bob", "u_carol"}
	if len(got) != len(want) {
		t.Fatalf("owner set = %v, want %v", cond.OwnerIDs, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("owner set = %v, want %v", cond.OwnerIDs, want)
		}
	}
}

func TestConditionGlobalOrganizationOnly(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "Document", accesslevel.Global)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Document", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	// Types with an organization column scope GLOBAL by organization alone.
	if cond.HasOwnerPredicate() {
		t.Fatalf("expected no owner predicate, got %+v", cond)
	}
	if !cond.HasOrganizationPredicate() || cond.OrganizationID != "org_1" {
		t.Fatalf("expected organization predicate, got %+v", cond)
	}
}

func TestConditionBusinessUnitOwned(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "Project", accesslevel.Local)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Project", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if cond.OwnerColumn != "business_unit_id" || cond.OwnerID != "bu_sales" {
		t.Fatalf("owner predicate = %s/%s", cond.OwnerColumn, cond.OwnerID)
	}
	// Project carries no organization column.
	if cond.HasOrganizationPredicate() {
		t.Fatalf("unexpected organization predicate: %+v", cond)
	}
}

func TestConditionBusinessUnitOwnedGlobal(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "Project", accesslevel.Global)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Project", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	// GLOBAL emits no owner predicate; a type without an organization
	// column has nothing left to scope by.
	if !cond.IsUnrestricted() {
		t.Fatalf("expected unrestricted condition, got %+v", cond)
	}
}

func TestConditionEmptyOwnerSetDenies(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	// Dave belongs to org_2 but is assigned to no unit there.
	grantView(t, eng, "u_dave", "Project", accesslevel.Local)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_dave", OrganizationID: "org_2"}, "Project", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if !cond.IsDenied() {
		t.Fatalf("expected denied condition for an empty owner set, got %+v", cond)
	}
}

func TestConditionOrganizationOwned(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "Account", accesslevel.Global)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Account", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if cond.OwnerColumn != "organization_id" || cond.OwnerID != "org_1" {
		t.Fatalf("owner predicate = %s/%s", cond.OwnerColumn, cond.OwnerID)
	}
}

func TestConditionOrganizationOwnedBelowGlobalDenies(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "Account", accesslevel.Local)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Account", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	// An organization-owned type has no reachable owner set below GLOBAL.
	if !cond.IsDenied() {
		t.Fatalf("expected denied condition, got %+v", cond)
	}
}

func TestConditionOrganizationMembershipFilter(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "Organization", accesslevel.Global)

	// The organization table itself narrows to the user's memberships,
	// keyed by its own id.
	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Organization", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if cond.OwnerColumn != "id" || cond.OwnerID != "org_1" {
		t.Fatalf("owner predicate = %s/%s", cond.OwnerColumn, cond.OwnerID)
	}
	if cond.ValueKind != rowguard.ValueSelfID {
		t.Fatalf("value kind = %v, want self id", cond.ValueKind)
	}
}

func TestConditionOrganizationMembershipSystemUnrestricted(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "Organization", accesslevel.System)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Organization", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if !cond.IsUnrestricted() {
		t.Fatalf("expected unrestricted condition at SYSTEM, got %+v", cond)
	}
}

func TestConditionUnownedTypeUnrestricted(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "Note", accesslevel.System)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Note", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if !cond.IsUnrestricted() {
		t.Fatalf("expected unrestricted condition, got %+v", cond)
	}
}

func TestConditionSelfID(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "User", accesslevel.Basic)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "User", "VIEW")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	// The users table is owned by its own primary key.
	if cond.OwnerColumn != "id" || cond.OwnerID != "u_bob" {
		t.Fatalf("owner predicate = %s/%s", cond.OwnerColumn, cond.OwnerID)
	}
	if cond.ValueKind != rowguard.ValueSelfID {
		t.Fatalf("value kind = %v, want self id", cond.ValueKind)
	}
}

func TestConditionDefaultsToView(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "Document", accesslevel.Basic)

	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Document", "")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if !cond.HasOwnerPredicate() {
		t.Fatalf("expected the VIEW condition, got %+v", cond)
	}
}

func TestConditionPermissionIsolation(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	grantView(t, eng, "u_bob", "Document", accesslevel.Global)

	// The grant covers VIEW only; EDIT stays denied.
	cond, err := eng.ConditionData(ctx, rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}, "Document", "EDIT")
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if !cond.IsDenied() {
		t.Fatalf("expected denied EDIT condition, got %+v", cond)
	}
}
