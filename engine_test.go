package rowguard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/rowguard"
	"github.com/xraph/rowguard/accesslevel"
	"github.com/xraph/rowguard/ace"
	"github.com/xraph/rowguard/auditlog"
	"github.com/xraph/rowguard/org"
	"github.com/xraph/rowguard/ownership"
	"github.com/xraph/rowguard/secmeta"
	"github.com/xraph/rowguard/store/memory"
)

// document is a protected test entity: user-owned with an organization
// reference.
type document struct {
	id    string
	owner string
	orgID string
}

func (d document) EntityType() string             { return "Document" }
func (d document) EntityID() string               { return d.id }
func (d document) OwnerIdentifier() string        { return d.owner }
func (d document) OrganizationIdentifier() string { return d.orgID }

// newTestEngine builds an engine over a seeded in-memory directory:
// org_1 holds bu_hq → bu_sales → bu_west; alice sits in bu_hq, bob and ben
// in bu_sales, carol in bu_west; dave belongs to org_2 with no unit.
func newTestEngine(t *testing.T, opts ...rowguard.Option) (*rowguard.Engine, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	_ = s.CreateOrganization(ctx, &org.Organization{ID: "org_1", Name: "Acme", Enabled: true})
	_ = s.CreateOrganization(ctx, &org.Organization{ID: "org_2", Name: "Globex", Enabled: true})
	_ = s.CreateBusinessUnit(ctx, &org.BusinessUnit{ID: "bu_hq", Name: "HQ", OrganizationID: "org_1"})
	_ = s.CreateBusinessUnit(ctx, &org.BusinessUnit{ID: "bu_sales", Name: "Sales", OrganizationID: "org_1", OwnerID: "bu_hq"})
	_ = s.CreateBusinessUnit(ctx, &org.BusinessUnit{ID: "bu_west", Name: "Sales West", OrganizationID: "org_1", OwnerID: "bu_sales"})
	_ = s.CreateUser(ctx, &org.User{ID: "u_alice", Name: "Alice", OrganizationIDs: []string{"org_1"}, BusinessUnitIDs: []string{"bu_hq"}})
	_ = s.CreateUser(ctx, &org.User{ID: "u_bob", Name: "Bob", OrganizationIDs: []string{"org_1"}, BusinessUnitIDs: []string{"bu_sales"}})
	_ = s.CreateUser(ctx, &org.User{ID: "u_ben", Name: "Ben", OrganizationIDs: []string{"org_1"}, BusinessUnitIDs: []string{"bu_sales"}})
	_ = s.CreateUser(ctx, &org.User{ID: "u_carol", Name: "Carol", OrganizationIDs: []string{"org_1"}, BusinessUnitIDs: []string{"bu_west"}})
	_ = s.CreateUser(ctx, &org.User{ID: "u_dave", Name: "Dave", OrganizationIDs: []string{"org_2"}})

	ownershipProvider, err := ownership.NewConfigProvider(ownership.Config{
		UserType:         "User",
		BusinessUnitType: "BusinessUnit",
		OrganizationType: "Organization",
		Entities: map[string]ownership.EntityConfig{
			"Document": {
				OwnerType:          "USER",
				OwnerField:         "Owner",
				OwnerColumn:        "owner_id",
				OrganizationField:  "Organization",
				OrganizationColumn: "organization_id",
			},
			"Project": {
				OwnerType:   "BUSINESS_UNIT",
				OwnerField:  "Unit",
				OwnerColumn: "business_unit_id",
			},
			"Account": {
				OwnerType:   "ORGANIZATION",
				OwnerField:  "Organization",
				OwnerColumn: "organization_id",
			},
			"User": {
				OwnerType:   "USER",
				OwnerField:  "ID",
				OwnerColumn: "id",
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("ownership provider: %v", err)
	}

	reg := secmeta.NewRegistry()
	for _, entityType := range []string{"Document", "Project", "Account", "User", "Organization", "Note"} {
		reg.Register(secmeta.Metadata{Type: entityType})
	}

	eng, err := rowguard.NewEngine(append([]rowguard.Option{
		rowguard.WithStore(s),
		rowguard.WithOwnershipProvider(ownershipProvider),
		rowguard.WithSecurityMetadata(reg),
		rowguard.WithActions("export"),
	}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng, s
}

func userIdentity(t *testing.T, eng *rowguard.Engine, userID string) *ace.SecurityIdentity {
	t.Helper()
	sid, err := eng.CreateIdentity(context.Background(), ace.IdentityUser, userID)
	if err != nil {
		t.Fatalf("create identity: %v", err)
	}
	return sid
}

func writeEntry(t *testing.T, eng *rowguard.Engine, e *ace.Entry) *ace.Entry {
	t.Helper()
	if err := eng.WriteEntry(context.Background(), e); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	return e
}

func viewMask(t *testing.T, level accesslevel.Level) uint32 {
	t.Helper()
	mb, err := rowguard.NewMaskBuilder()
	if err != nil {
		t.Fatalf("mask builder: %v", err)
	}
	return uint32(mb.Add(0, "VIEW", level))
}

func TestNewEngine_RequiresStore(t *testing.T) {
	if _, err := rowguard.NewEngine(); err == nil {
		t.Fatal("expected error without a store")
	}
}

func TestBasicLevelGrantsOwnRowOnly(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	sid := userIdentity(t, eng, "u_alice")
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Basic),
		Granting:   true,
	})
	token := rowguard.Token{UserID: "u_alice", OrganizationID: "org_1"}

	own := document{id: "doc_1", owner: "u_alice", orgID: "org_1"}
	res, err := eng.Check(ctx, &rowguard.CheckRequest{Token: token, Object: own, Permissions: []string{"VIEW"}})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Granted() {
		t.Fatalf("expected grant, got %s: %s", res.Decision, res.Reason)
	}
	if res.AccessLevel != accesslevel.Basic {
		t.Fatalf("access level = %s, want BASIC", res.AccessLevel)
	}

	foreign := document{id: "doc_2", owner: "u_bob", orgID: "org_1"}
	res, err = eng.Check(ctx, &rowguard.CheckRequest{Token: token, Object: foreign, Permissions: []string{"VIEW"}})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Granted() {
		t.Fatal("expected no grant for a foreign row")
	}
}

func TestLocalLevelCoversOwnUnit(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	sid := userIdentity(t, eng, "u_bob")
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Local),
		Granting:   true,
	})
	token := rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}

	// Ben shares bu_sales with Bob.
	peer := document{id: "doc_1", owner: "u_ben", orgID: "org_1"}
	granted, err := eng.IsGranted(ctx, token, "VIEW", peer)
	if err != nil {
		t.Fatalf("is granted: %v", err)
	}
	if !granted {
		t.Fatal("expected grant for a peer-owned row")
	}

	// Carol sits in the subordinate unit; LOCAL does not reach it.
	below := document{id: "doc_2", owner: "u_carol", orgID: "org_1"}
	granted, err = eng.IsGranted(ctx, token, "VIEW", below)
	if err != nil {
		t.Fatalf("is granted: %v", err)
	}
	if granted {
		t.Fatal("expected no grant below the user's unit at LOCAL")
	}
}

func TestDeepLevelCoversSubordinateUnits(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	sid := userIdentity(t, eng, "u_bob")
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Deep),
		Granting:   true,
	})
	token := rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}

	below := document{id: "doc_1", owner: "u_carol", orgID: "org_1"}
	granted, err := eng.IsGranted(ctx, token, "VIEW", below)
	if err != nil {
		t.Fatalf("is granted: %v", err)
	}
	if !granted {
		t.Fatal("expected grant inside the subordinate unit at DEEP")
	}

	// Alice sits above Bob; DEEP never climbs up.
	above := document{id: "doc_2", owner: "u_alice", orgID: "org_1"}
	granted, err = eng.IsGranted(ctx, token, "VIEW", above)
	if err != nil {
		t.Fatalf("is granted: %v", err)
	}
	if granted {
		t.Fatal("expected no grant above the user's unit at DEEP")
	}
}

func TestGlobalLevelScopesToOrganization(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	sid := userIdentity(t, eng, "u_bob")
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Global),
		Granting:   true,
	})
	token := rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}

	inside := document{id: "doc_1", owner: "u_alice", orgID: "org_1"}
	granted, err := eng.IsGranted(ctx, token, "VIEW", inside)
	if err != nil {
		t.Fatalf("is granted: %v", err)
	}
	if !granted {
		t.Fatal("expected grant inside the organization at GLOBAL")
	}

	outside := document{id: "doc_2", owner: "u_dave", orgID: "org_2"}
	granted, err = eng.IsGranted(ctx, token, "VIEW", outside)
	if err != nil {
		t.Fatalf("is granted: %v", err)
	}
	if granted {
		t.Fatal("expected no grant outside the organization at GLOBAL")
	}
}

func TestSystemLevelCappedForOwnedTypes(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	sid := userIdentity(t, eng, "u_bob")
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.System),
		Granting:   true,
	})
	token := rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}

	outside := document{id: "doc_1", owner: "u_dave", orgID: "org_2"}
	res, err := eng.Check(ctx, &rowguard.CheckRequest{Token: token, Object: outside, Permissions: []string{"VIEW"}})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Granted() {
		t.Fatal("SYSTEM on an owned type must not cross organizations")
	}

	inside := document{id: "doc_2", owner: "u_dave", orgID: "org_1"}
	res, err = eng.Check(ctx, &rowguard.CheckRequest{Token: token, Object: inside, Permissions: []string{"VIEW"}})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Granted() {
		t.Fatalf("expected grant, got %s: %s", res.Decision, res.Reason)
	}
	if res.AccessLevel != accesslevel.Global {
		t.Fatalf("access level = %s, want GLOBAL cap", res.AccessLevel)
	}
}

func TestObjectScopedDenyOverridesClassGrant(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	sid := userIdentity(t, eng, "u_bob")
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Global),
		Granting:   true,
	})
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		ObjectID:   "doc_secret",
		Mask:       viewMask(t, accesslevel.Global),
		Granting:   false,
	})
	token := rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}

	res, err := eng.Check(ctx, &rowguard.CheckRequest{
		Token:       token,
		Object:      document{id: "doc_secret", owner: "u_alice", orgID: "org_1"},
		Permissions: []string{"VIEW"},
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Decision != rowguard.DecisionDeny {
		t.Fatalf("expected deny, got %s: %s", res.Decision, res.Reason)
	}

	// Other rows still grant through the class-scoped entry.
	granted, err := eng.IsGranted(ctx, token, "VIEW", document{id: "doc_other", owner: "u_alice", orgID: "org_1"})
	if err != nil {
		t.Fatalf("is granted: %v", err)
	}
	if !granted {
		t.Fatal("expected grant for an undenied row")
	}
}

func TestLaterEntryGrantsAfterFallThrough(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	sid := userIdentity(t, eng, "u_bob")
	// The BASIC entry matches the permission bit but cannot reach Alice's
	// row; the later GLOBAL entry still grants.
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Basic),
		Granting:   true,
		Order:      0,
	})
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Global),
		Granting:   true,
		Order:      1,
	})
	token := rowguard.Token{UserID: "u_bob", OrganizationID: "org_1"}

	res, err := eng.Check(ctx, &rowguard.CheckRequest{
		Token:       token,
		Object:      document{id: "doc_1", owner: "u_alice", orgID: "org_1"},
		Permissions: []string{"VIEW"},
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Granted() {
		t.Fatalf("expected grant, got %s: %s", res.Decision, res.Reason)
	}
	if res.AccessLevel != accesslevel.Global {
		t.Fatalf("access level = %s, want GLOBAL", res.AccessLevel)
	}
}

func TestNoOrganizationContextDenies(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	sid := userIdentity(t, eng, "u_bob")
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Basic),
		Granting:   true,
	})

	// The entry grants Bob's own row, but a concrete row cannot be scoped
	// without an organization in the token.
	res, err := eng.Check(ctx, &rowguard.CheckRequest{
		Token:       rowguard.Token{UserID: "u_bob"},
		Object:      document{id: "doc_1", owner: "u_bob"},
		Permissions: []string{"VIEW"},
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Decision != rowguard.DecisionDeny {
		t.Fatalf("expected deny without organization context, got %s: %s", res.Decision, res.Reason)
	}
}

func TestClassLevelCheckSkipsOrganizationContext(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	sid := userIdentity(t, eng, "u_bob")
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Global),
		Granting:   true,
	})

	// A class-level check carries no row to scope; the missing organization
	// context only matters for concrete rows.
	res, err := eng.Check(ctx, &rowguard.CheckRequest{
		Token:       rowguard.Token{UserID: "u_bob"},
		Object:      "entity:Document",
		Permissions: []string{"VIEW"},
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.Granted() {
		t.Fatalf("expected grant for a class-level check, got %s: %s", res.Decision, res.Reason)
	}
}

func TestDefaultDeny(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	granted, err := eng.IsGranted(ctx,
		rowguard.Token{UserID: "u_nobody", OrganizationID: "org_1"},
		"VIEW", document{id: "doc_1", owner: "u_alice", orgID: "org_1"})
	if err != nil {
		t.Fatalf("is granted: %v", err)
	}
	if granted {
		t.Fatal("expected default deny for a subject without identity")
	}
}

func TestEnforce(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	sid := userIdentity(t, eng, "u_alice")
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Basic),
		Granting:   true,
	})
	token := rowguard.Token{UserID: "u_alice", OrganizationID: "org_1"}

	if err := eng.Enforce(ctx, &rowguard.CheckRequest{
		Token:       token,
		Object:      document{id: "doc_1", owner: "u_alice", orgID: "org_1"},
		Permissions: []string{"VIEW"},
	}); err != nil {
		t.Fatalf("enforce granted check: %v", err)
	}

	err := eng.Enforce(ctx, &rowguard.CheckRequest{
		Token:       token,
		Object:      document{id: "doc_2", owner: "u_bob", orgID: "org_1"},
		Permissions: []string{"VIEW"},
	})
	if !errors.Is(err, rowguard.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestCheckEvalTime(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	res, err := eng.Check(ctx, &rowguard.CheckRequest{
		Token:       rowguard.Token{UserID: "u_alice", OrganizationID: "org_1"},
		Object:      "entity:Document",
		Permissions: []string{"VIEW"},
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.EvalTimeNs <= 0 {
		t.Fatalf("eval time = %d, want > 0", res.EvalTimeNs)
	}
}

func TestActionCheck(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	sid := userIdentity(t, eng, "u_alice")

	mb, err := rowguard.NewMaskBuilder(rowguard.PermissionExecute)
	if err != nil {
		t.Fatalf("mask builder: %v", err)
	}
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "export",
		Mask:       uint32(mb.Add(0, rowguard.PermissionExecute, accesslevel.System)),
		Granting:   true,
	})

	// Actions have no ownership, so the check grants even without an
	// organization context.
	granted, err := eng.IsGranted(ctx, rowguard.Token{UserID: "u_alice"}, "", "action:export")
	if err != nil {
		t.Fatalf("is granted: %v", err)
	}
	if !granted {
		t.Fatal("expected EXECUTE grant for the export action")
	}

	granted, err = eng.IsGranted(ctx, rowguard.Token{UserID: "u_bob"}, "", "action:export")
	if err != nil {
		t.Fatalf("is granted: %v", err)
	}
	if granted {
		t.Fatal("expected no grant without an entry")
	}
}

func TestAuditRecordWritten(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	sid := userIdentity(t, eng, "u_alice")
	writeEntry(t, eng, &ace.Entry{
		IdentityID:   sid.ID,
		ObjectType:   "Document",
		Mask:         viewMask(t, accesslevel.Basic),
		Granting:     true,
		AuditSuccess: true,
	})
	token := rowguard.Token{UserID: "u_alice", OrganizationID: "org_1"}

	if _, err := eng.Check(ctx, &rowguard.CheckRequest{
		Token:       token,
		Object:      document{id: "doc_1", owner: "u_alice", orgID: "org_1"},
		Permissions: []string{"VIEW"},
	}); err != nil {
		t.Fatalf("check: %v", err)
	}

	records, err := s.ListRecords(ctx, &auditlog.QueryFilter{UserID: "u_alice"})
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	r := records[0]
	if r.Decision != string(rowguard.DecisionGrant) || r.Permission != "VIEW" || r.ObjectType != "Document" {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestAuditSkippedWithoutFlag(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	sid := userIdentity(t, eng, "u_alice")
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Basic),
		Granting:   true,
	})

	if _, err := eng.Check(ctx, &rowguard.CheckRequest{
		Token:       rowguard.Token{UserID: "u_alice", OrganizationID: "org_1"},
		Object:      document{id: "doc_1", owner: "u_alice", orgID: "org_1"},
		Permissions: []string{"VIEW"},
	}); err != nil {
		t.Fatalf("check: %v", err)
	}

	count, err := s.CountRecords(ctx, nil)
	if err != nil {
		t.Fatalf("count records: %v", err)
	}
	if count != 0 {
		t.Fatalf("records = %d, want 0", count)
	}
}

func TestRenameIdentity(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	sid := userIdentity(t, eng, "u_old")

	renamed, err := eng.RenameIdentity(ctx, sid.ID, "u_new")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "u_new" {
		t.Fatalf("name = %s, want u_new", renamed.Name)
	}

	// Renaming to the current name is a no-op migration and is rejected.
	if _, err := eng.RenameIdentity(ctx, sid.ID, "u_new"); !errors.Is(err, rowguard.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := eng.RenameIdentity(ctx, sid.ID, ""); !errors.Is(err, rowguard.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty name, got %v", err)
	}
}

func TestDeleteIdentityRemovesEntries(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	sid := userIdentity(t, eng, "u_alice")
	entry := writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Basic),
		Granting:   true,
	})

	if err := eng.DeleteIdentity(ctx, sid.ID); err != nil {
		t.Fatalf("delete identity: %v", err)
	}
	if _, err := s.GetEntry(ctx, entry.ID); !errors.Is(err, rowguard.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestCreateIdentityRequiresName(t *testing.T) {
	eng, _ := newTestEngine(t)
	if _, err := eng.CreateIdentity(context.Background(), ace.IdentityUser, ""); !errors.Is(err, rowguard.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestWriteEntryUpdates(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	sid := userIdentity(t, eng, "u_alice")
	entry := writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Basic),
		Granting:   true,
	})

	entry.Mask = viewMask(t, accesslevel.Global)
	writeEntry(t, eng, entry)

	stored, err := s.GetEntry(ctx, entry.ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if stored.Mask != viewMask(t, accesslevel.Global) {
		t.Fatalf("mask = %d, want updated mask", stored.Mask)
	}
}

func TestSubjectFromContext(t *testing.T) {
	eng, _ := newTestEngine(t)
	sid := userIdentity(t, eng, "u_alice")
	writeEntry(t, eng, &ace.Entry{
		IdentityID: sid.ID,
		ObjectType: "Document",
		Mask:       viewMask(t, accesslevel.Basic),
		Granting:   true,
	})

	// An empty token falls back to the subject carried by the context.
	ctx := rowguard.WithSubject(context.Background(), "u_alice", "org_1")
	granted, err := eng.IsGranted(ctx, rowguard.Token{}, "VIEW",
		document{id: "doc_1", owner: "u_alice", orgID: "org_1"})
	if err != nil {
		t.Fatalf("is granted: %v", err)
	}
	if !granted {
		t.Fatal("expected grant via context subject")
	}
}
