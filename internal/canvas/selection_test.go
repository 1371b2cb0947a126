package canvas

import (
	"context"
	"testing"

	"corkboard-cli/internal/model"
)

func TestRectangleSelection_SelectsExactlyIntersectingItems(t *testing.T) {
	// Default icon box is 96x72. The rectangle [50,50]-[500,250] must catch
	// a and b (b only partially) and miss c and d, regardless of the
	// store's iteration order (the fake store returns map order).
	e, _ := newTestEngine(t, ownerGrant(),
		boardItem("item-a", model.ItemKindFile, "a", 100, 100, "user-a"),
		boardItem("item-b", model.ItemKindFolder, "b", 450, 200, "user-a"),
		boardItem("item-c", model.ItemKindFile, "c", 700, 100, "user-a"),
		boardItem("item-d", model.ItemKindDocument, "d", 100, 400, "user-a"),
	)
	ctx := context.Background()

	e.PointerDown(PointerEvent{X: 50, Y: 50})
	if e.Mode() != ModeSelecting {
		t.Fatalf("pointer-down on empty canvas should begin selecting; mode=%v", e.Mode())
	}
	e.PointerMove(PointerEvent{X: 500, Y: 250})

	// Selection updates continuously, before release.
	if got := e.Selection(); len(got) != 2 {
		t.Fatalf("live selection should already hold a and b; got %v", got)
	}

	e.PointerUp(ctx, PointerEvent{X: 500, Y: 250})
	if e.Mode() != ModeIdle {
		t.Fatalf("pointer-up should end the selection session")
	}
	if !e.Selected("item-a") || !e.Selected("item-b") {
		t.Fatalf("expected a and b selected; got %v", e.Selection())
	}
	if e.Selected("item-c") || e.Selected("item-d") {
		t.Fatalf("c and d must not be selected; got %v", e.Selection())
	}
}

func TestRectangleSelection_ReverseDragNormalizes(t *testing.T) {
	e, _ := newTestEngine(t, ownerGrant(),
		boardItem("item-a", model.ItemKindFile, "a", 100, 100, "user-a"),
	)
	ctx := context.Background()

	// Drag from bottom-right to top-left.
	e.PointerDown(PointerEvent{X: 500, Y: 300})
	e.PointerMove(PointerEvent{X: 50, Y: 50})
	e.PointerUp(ctx, PointerEvent{X: 50, Y: 50})
	if !e.Selected("item-a") {
		t.Fatalf("reverse rectangle should still select item-a")
	}
}

func TestRectangleSelection_TinyDragIsAPlainClick(t *testing.T) {
	e, _ := newTestEngine(t, ownerGrant(),
		boardItem("item-a", model.ItemKindFile, "a", 100, 100, "user-a"),
	)
	ctx := context.Background()

	// Select a first with a genuine rectangle drag.
	e.PointerDown(PointerEvent{X: 50, Y: 50})
	e.PointerMove(PointerEvent{X: 300, Y: 300})
	e.PointerUp(ctx, PointerEvent{X: 300, Y: 300})
	if !e.Selected("item-a") {
		t.Fatalf("setup: rectangle should select item-a")
	}

	// An additive micro-drag (2 units, below the threshold) on empty
	// canvas is a plain click: it must not overwrite the selection with a
	// rectangle result.
	mods := Modifiers{Ctrl: true}
	e.PointerDown(PointerEvent{X: 900, Y: 500, Modifiers: mods})
	e.PointerMove(PointerEvent{X: 902, Y: 501, Modifiers: mods})
	e.PointerUp(ctx, PointerEvent{X: 902, Y: 501, Modifiers: mods})
	if !e.Selected("item-a") {
		t.Fatalf("sub-threshold drag must not clobber the existing selection")
	}
}

func TestRectangleSelection_AdditiveKeepsBase(t *testing.T) {
	e, _ := newTestEngine(t, ownerGrant(),
		boardItem("item-a", model.ItemKindFile, "a", 100, 100, "user-a"),
		boardItem("item-b", model.ItemKindFile, "b", 900, 500, "user-a"),
	)
	ctx := context.Background()

	e.PointerDown(PointerEvent{X: 110, Y: 110})
	e.PointerUp(ctx, PointerEvent{X: 110, Y: 110})

	mods := Modifiers{Ctrl: true}
	e.PointerDown(PointerEvent{X: 850, Y: 450, Modifiers: mods})
	e.PointerMove(PointerEvent{X: 1050, Y: 620, Modifiers: mods})
	e.PointerUp(ctx, PointerEvent{X: 1050, Y: 620, Modifiers: mods})

	if !e.Selected("item-a") || !e.Selected("item-b") {
		t.Fatalf("additive rectangle should union with the prior selection; got %v", e.Selection())
	}
}

func TestRectangleSelection_IgnoresFiledItems(t *testing.T) {
	filed := boardItem("item-filed", model.ItemKindFile, "filed", 100, 100, "user-a")
	filed.ParentFolderID = strPtr("item-folder")
	e, _ := newTestEngine(t, ownerGrant(),
		boardItem("item-folder", model.ItemKindFolder, "f", 800, 500, "user-a"),
		filed,
	)
	ctx := context.Background()

	e.PointerDown(PointerEvent{X: 50, Y: 50})
	e.PointerMove(PointerEvent{X: 300, Y: 300})
	e.PointerUp(ctx, PointerEvent{X: 300, Y: 300})
	if e.Selected("item-filed") {
		t.Fatalf("items inside folders are not on the board and must not be rectangle-selected")
	}
}
