package rowguard

import (
	"errors"
	"strings"
	"testing"

	"github.com/xraph/rowguard/accesslevel"
)

func TestMaskBuilderBitLayout(t *testing.T) {
	b, err := NewMaskBuilder()
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}

	// VIEW is the first permission: its window occupies the lowest five bits.
	if got := b.Bit("VIEW", accesslevel.Basic); got != 1 {
		t.Fatalf("VIEW:BASIC bit = %b, want 1", got)
	}
	if got := b.Bit("VIEW", accesslevel.System); got != 1<<4 {
		t.Fatalf("VIEW:SYSTEM bit = %b, want %b", got, 1<<4)
	}
	// CREATE is the second permission: its window starts at bit 5.
	if got := b.Bit("CREATE", accesslevel.Basic); got != 1<<5 {
		t.Fatalf("CREATE:BASIC bit = %b, want %b", got, 1<<5)
	}
}

func TestMaskBuilderUnknownPermission(t *testing.T) {
	b, _ := NewMaskBuilder()
	if got := b.Bit("EXPORT", accesslevel.Global); got != 0 {
		t.Fatalf("unknown permission bit = %b, want 0", got)
	}
	if b.Supports("EXPORT") {
		t.Fatal("expected EXPORT to be unsupported")
	}
	if got := b.Bit("VIEW", accesslevel.None); got != 0 {
		t.Fatalf("NONE bit = %b, want 0", got)
	}
}

func TestMaskBuilderCaseInsensitive(t *testing.T) {
	b, _ := NewMaskBuilder()
	if !b.Supports("view") {
		t.Fatal("expected lower-case permission to be supported")
	}
	if b.Bit("view", accesslevel.Local) != b.Bit("VIEW", accesslevel.Local) {
		t.Fatal("expected case-insensitive bit resolution")
	}
}

func TestMaskBuilderTooManyPermissions(t *testing.T) {
	_, err := NewMaskBuilder("A", "B", "C", "D", "E", "F", "G")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestMaskBuilderDuplicatePermission(t *testing.T) {
	_, err := NewMaskBuilder("VIEW", "view")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestMaskBuilderPermissionMask(t *testing.T) {
	b, _ := NewMaskBuilder()
	mask := b.Add(0, "VIEW", accesslevel.Global)
	mask = b.Add(mask, "EDIT", accesslevel.Basic)

	window := b.PermissionMask(mask, "VIEW")
	if window != b.Bit("VIEW", accesslevel.Global) {
		t.Fatalf("VIEW window = %b, want %b", window, b.Bit("VIEW", accesslevel.Global))
	}
	if b.PermissionMask(mask, "DELETE") != 0 {
		t.Fatal("expected empty window for DELETE")
	}
}

func TestMaskBuilderAccessLevel(t *testing.T) {
	b, _ := NewMaskBuilder()
	mask := b.Add(0, "VIEW", accesslevel.Local)
	mask = b.Add(mask, "VIEW", accesslevel.Deep)
	mask = b.Add(mask, "EDIT", accesslevel.Basic)

	if got := b.AccessLevel(mask, "VIEW"); got != accesslevel.Deep {
		t.Fatalf("VIEW level = %s, want DEEP", got)
	}
	if got := b.AccessLevel(mask, "EDIT"); got != accesslevel.Basic {
		t.Fatalf("EDIT level = %s, want BASIC", got)
	}
	// Without a permission the highest level anywhere in the mask wins.
	if got := b.AccessLevel(mask, ""); got != accesslevel.Deep {
		t.Fatalf("overall level = %s, want DEEP", got)
	}
	if got := b.AccessLevel(0, ""); got != accesslevel.None {
		t.Fatalf("empty mask level = %s, want NONE", got)
	}
}

func TestMaskBuilderFormat(t *testing.T) {
	b, _ := NewMaskBuilder()
	mask := b.Add(0, "VIEW", accesslevel.Global)
	mask = b.Add(mask, "DELETE", accesslevel.Basic)

	got := b.Format(mask)
	if !strings.Contains(got, "VIEW:GLOBAL") || !strings.Contains(got, "DELETE:BASIC") {
		t.Fatalf("unexpected format: %s", got)
	}
	if b.Format(0) != "()" {
		t.Fatalf("empty mask format = %s, want ()", b.Format(0))
	}
}

func TestMaskBuilderCustomOrder(t *testing.T) {
	b, err := NewMaskBuilder("EXECUTE")
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	if got := b.Bit("EXECUTE", accesslevel.System); got != 1<<4 {
		t.Fatalf("EXECUTE:SYSTEM bit = %b, want %b", got, 1<<4)
	}
	perms := b.Permissions()
	if len(perms) != 1 || perms[0] != "EXECUTE" {
		t.Fatalf("unexpected permission order: %v", perms)
	}
}
