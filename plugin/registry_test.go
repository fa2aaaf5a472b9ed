package plugin

import (
	"context"
	"log/slog"
	"testing"

	"github.com/xraph/rowguard/ace"
	"github.com/xraph/rowguard/id"
)

// testPlugin implements Plugin + EntryWritten + AfterCheck.
type testPlugin struct {
	entryWrittenCalled bool
	afterCheckCalled   bool
}

func (t *testPlugin) Name() string { return "test-plugin" }

func (t *testPlugin) OnEntryWritten(_ context.Context, _ *ace.Entry) error {
	t.entryWrittenCalled = true
	return nil
}

func (t *testPlugin) OnAfterCheck(_ context.Context, _, _ any) error {
	t.afterCheckCalled = true
	return nil
}

// minimalPlugin only implements Plugin (no hooks).
type minimalPlugin struct{}

func (m *minimalPlugin) Name() string { return "minimal" }

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	tp := &testPlugin{}
	reg.Register(tp)
	reg.Register(&minimalPlugin{})

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(reg.Plugins()))
	}

	// Should dispatch EntryWritten to testPlugin only.
	reg.EmitEntryWritten(ctx, &ace.Entry{ID: id.NewEntryID(), ObjectType: "document"})
	if !tp.entryWrittenCalled {
		t.Fatal("OnEntryWritten was not called")
	}

	// Should dispatch AfterCheck.
	reg.EmitAfterCheck(ctx, nil, nil)
	if !tp.afterCheckCalled {
		t.Fatal("OnAfterCheck was not called")
	}

	// Should not panic on hooks with no listeners.
	reg.EmitBeforeCheck(ctx, nil)
	reg.EmitEntryDeleted(ctx, id.NewEntryID())
	reg.EmitShutdown(ctx)
}
