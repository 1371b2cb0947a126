package canvas

import (
	"context"
	"testing"

	"corkboard-cli/internal/model"
)

func TestRename_CommitPersistsChangedName(t *testing.T) {
	e, fs := newTestEngine(t, ownerGrant(),
		boardItem("item-a", model.ItemKindFile, "old", 100, 100, "user-a"),
	)
	ctx := context.Background()

	if err := e.BeginRename("item-a"); err != nil {
		t.Fatalf("begin rename: %v", err)
	}
	if e.Mode() != ModeRenaming || e.Rename().Original != "old" {
		t.Fatalf("expected a rename session for item-a")
	}
	if err := e.CommitRename(ctx, "  new name  "); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if e.Mode() != ModeIdle {
		t.Fatalf("commit should end the session")
	}
	if e.item("item-a").Name != "new name" {
		t.Fatalf("optimistic rename missing; got %q", e.item("item-a").Name)
	}
	calls := fs.mutationCalls()
	if len(calls) != 1 || calls[0] != "renameItem:item-a:new name" {
		t.Fatalf("expected one renameItem call; got %v", calls)
	}
}

func TestRename_UnchangedValueMakesNoStoreCall(t *testing.T) {
	e, fs := newTestEngine(t, ownerGrant(),
		boardItem("item-a", model.ItemKindFile, "same", 100, 100, "user-a"),
	)
	ctx := context.Background()

	_ = e.BeginRename("item-a")
	if err := e.CommitRename(ctx, "same"); err != nil {
		t.Fatalf("unchanged commit should be a quiet no-op; got %v", err)
	}
	if calls := fs.mutationCalls(); len(calls) != 0 {
		t.Fatalf("unchanged name must not hit the store; got %v", calls)
	}
}

func TestRename_EmptyValueRevertsWithNotice(t *testing.T) {
	e, fs := newTestEngine(t, ownerGrant(),
		boardItem("item-a", model.ItemKindFile, "keep", 100, 100, "user-a"),
	)
	ctx := context.Background()

	_ = e.BeginRename("item-a")
	if err := e.CommitRename(ctx, "   "); err == nil {
		t.Fatalf("empty name should be rejected")
	}
	if e.item("item-a").Name != "keep" {
		t.Fatalf("prior name must survive; got %q", e.item("item-a").Name)
	}
	if calls := fs.mutationCalls(); len(calls) != 0 {
		t.Fatalf("expected zero store calls; got %v", calls)
	}
	if len(drainNotices(e)) == 0 {
		t.Fatalf("expected a warning notice")
	}
}

func TestRename_CancelRevertsWithoutStoreCall(t *testing.T) {
	e, fs := newTestEngine(t, ownerGrant(),
		boardItem("item-a", model.ItemKindFile, "keep", 100, 100, "user-a"),
	)

	_ = e.BeginRename("item-a")
	e.CancelRename()
	if e.Mode() != ModeIdle || e.Rename() != nil {
		t.Fatalf("cancel should end the session")
	}
	if e.item("item-a").Name != "keep" {
		t.Fatalf("cancel must revert to the prior name")
	}
	if calls := fs.mutationCalls(); len(calls) != 0 {
		t.Fatalf("cancel must not hit the store; got %v", calls)
	}
}

func TestRename_PointerDownElsewhereAborts(t *testing.T) {
	e, _ := newTestEngine(t, ownerGrant(),
		boardItem("item-a", model.ItemKindFile, "keep", 100, 100, "user-a"),
	)

	_ = e.BeginRename("item-a")
	e.PointerDown(PointerEvent{X: 900, Y: 500})
	if e.Mode() != ModeSelecting {
		t.Fatalf("pointer-down should abort the rename and start a selection; mode=%v", e.Mode())
	}
	if e.Rename() != nil {
		t.Fatalf("rename session should be gone")
	}
}
