package accesslevel

import "testing"

func TestOrdering(t *testing.T) {
	ordered := []Level{None, Basic, Local, Deep, Global, System}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] >= ordered[i] {
			t.Fatalf("expected %s < %s", ordered[i-1], ordered[i])
		}
	}
}

func TestStringParseRoundTrip(t *testing.T) {
	for _, level := range All() {
		parsed, err := Parse(level.String())
		if err != nil {
			t.Fatalf("parse %s: %v", level, err)
		}
		if parsed != level {
			t.Fatalf("round trip %s: got %s", level, parsed)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	if _, err := Parse("EVERYTHING"); err == nil {
		t.Fatal("expected error for unknown level name")
	}
	if _, err := Parse("basic"); err == nil {
		t.Fatal("expected error for lower-case level name")
	}
}

func TestValid(t *testing.T) {
	for _, level := range All() {
		if !level.Valid() {
			t.Fatalf("expected %s to be valid", level)
		}
	}
	if Level(-1).Valid() {
		t.Fatal("expected Level(-1) to be invalid")
	}
	if Level(6).Valid() {
		t.Fatal("expected Level(6) to be invalid")
	}
}

func TestStringOutOfRange(t *testing.T) {
	if got := Level(42).String(); got != "Level(42)" {
		t.Fatalf("expected Level(42), got %s", got)
	}
}
