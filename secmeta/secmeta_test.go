package secmeta

import (
	"context"
	"testing"
)

func TestRegisterAndLookup(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	r.Register(Metadata{Type: "Document", Group: "commerce", Label: "Documents"})

	if !r.IsProtected(ctx, "Document") {
		t.Fatal("expected Document to be protected")
	}
	if r.IsProtected(ctx, "Unregistered") {
		t.Fatal("expected Unregistered to be unprotected")
	}

	m, ok := r.Metadata(ctx, "Document")
	if !ok || m.Group != "commerce" || m.Label != "Documents" {
		t.Fatalf("metadata = %+v, %v", m, ok)
	}
	if _, ok := r.Metadata(ctx, "Unregistered"); ok {
		t.Fatal("expected no metadata for unprotected type")
	}
}

func TestRegisterDefaultsGroup(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	r.Register(Metadata{Type: "Note"})

	m, _ := r.Metadata(ctx, "Note")
	if m.Group != DefaultGroup {
		t.Fatalf("group = %s, want %s", m.Group, DefaultGroup)
	}
}

func TestRegisterReplaces(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	r.Register(Metadata{Type: "Note", Group: "a"})
	r.Register(Metadata{Type: "Note", Group: "b"})

	m, _ := r.Metadata(ctx, "Note")
	if m.Group != "b" {
		t.Fatalf("group = %s, want b", m.Group)
	}
}

func TestRegisterCopiesPermissions(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	perms := []string{"VIEW"}
	r.Register(Metadata{Type: "Note", Permissions: perms})
	perms[0] = "mutated"

	m, _ := r.Metadata(ctx, "Note")
	if m.Permissions[0] != "VIEW" {
		t.Fatal("registered permissions alias caller slice")
	}
}

func TestTypesSortedAndFiltered(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	r.Register(Metadata{Type: "Zebra", Group: "zoo"})
	r.Register(Metadata{Type: "Antelope", Group: "zoo"})
	r.Register(Metadata{Type: "Invoice", Group: "commerce"})

	all := r.Types(ctx, "")
	if len(all) != 3 {
		t.Fatalf("all types = %d, want 3", len(all))
	}
	if all[0].Type != "Antelope" || all[2].Type != "Zebra" {
		t.Fatalf("types not sorted: %v", all)
	}

	zoo := r.Types(ctx, "zoo")
	if len(zoo) != 2 || zoo[0].Type != "Antelope" || zoo[1].Type != "Zebra" {
		t.Fatalf("zoo types = %v", zoo)
	}
	if got := r.Types(ctx, "missing"); len(got) != 0 {
		t.Fatalf("missing group types = %v", got)
	}
}
