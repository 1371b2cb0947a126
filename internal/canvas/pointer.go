package canvas

import (
	"context"

	"corkboard-cli/internal/access"
	"corkboard-cli/internal/model"
)

// PointerDown starts an interaction. On empty canvas it begins a rectangle
// selection (clearing the current selection first unless the additive
// modifier is held); on an item it arms a potential click or drag.
func (e *Engine) PointerDown(ev PointerEvent) {
	if ev.Button != ButtonPrimary {
		return
	}
	if e.mode == ModeRenaming {
		// Clicking away aborts the rename; the prior name stays.
		e.CancelRename()
	}
	if e.mode != ModeIdle {
		return
	}

	hit := e.hitTest(ev.X, ev.Y)
	if hit == nil {
		base := map[string]bool{}
		if ev.Modifiers.Additive() {
			for id := range e.selection {
				base[id] = true
			}
		} else {
			e.selection = map[string]bool{}
		}
		e.sel = &selectState{origin: ev.pos(), current: ev.pos(), base: base}
		e.mode = ModeSelecting
		return
	}

	e.press = &pressState{
		itemID:   hit.ID,
		at:       ev.pos(),
		offset:   model.Position{X: hit.Position.X - ev.X, Y: hit.Position.Y - ev.Y},
		additive: ev.Modifiers.Additive(),
	}
}

// BeginWindowDrag arms a drag for a file row inside the open folder
// window. The front end owns the window's screen layout, so it tells the
// engine which child was grabbed; subsequent PointerMove/PointerUp calls
// drive the drag like any other.
func (e *Engine) BeginWindowDrag(itemID string, ev PointerEvent) error {
	if e.mode != ModeIdle || e.window == nil {
		return ValidationError{Reason: "no folder window drag possible now"}
	}
	it := e.item(itemID)
	if it == nil {
		return NotFoundError{ItemID: itemID}
	}
	if !it.InFolder() || *it.ParentFolderID != e.window.FolderID {
		return ValidationError{Reason: "item is not in the open folder"}
	}
	if !e.canMutate(access.ActionMoveItem, it) {
		return PermissionDeniedError{Action: access.ActionMoveItem, Role: e.grant.Role}
	}
	e.press = &pressState{itemID: itemID, at: ev.pos(), fromWindow: true}
	e.startDrag(ev)
	return nil
}

// PointerMove advances the current interaction: it live-updates a
// rectangle selection, promotes an armed press into a drag once the
// movement threshold is exceeded, and retargets an active drag.
func (e *Engine) PointerMove(ev PointerEvent) {
	switch e.mode {
	case ModeSelecting:
		e.sel.current = ev.pos()
		if dist(e.sel.origin, e.sel.current) > e.cfg.MoveThreshold {
			e.sel.moved = true
		}
		e.recomputeRectSelection()

	case ModeIdle:
		if e.press == nil {
			return
		}
		if dist(e.press.at, ev.pos()) <= e.cfg.MoveThreshold {
			return
		}
		it := e.item(e.press.itemID)
		if it == nil {
			e.press = nil
			return
		}
		// Callers without move rights never enter a drag session at all.
		if !e.canMutate(access.ActionMoveItem, it) {
			return
		}
		e.startDrag(ev)

	case ModeDragging:
		e.drag.Current = model.Position{X: ev.X + e.drag.Offset.X, Y: ev.Y + e.drag.Offset.Y}
		e.drag.Target = e.dropTargetAt(ev)
	}
}

func (e *Engine) startDrag(ev PointerEvent) {
	p := e.press
	e.drag = &DragSession{
		ItemID:     p.itemID,
		Offset:     p.offset,
		Current:    model.Position{X: ev.X + p.offset.X, Y: ev.Y + p.offset.Y},
		FromWindow: p.fromWindow,
		Target:     DropTarget{Kind: DropRoot},
	}
	e.mode = ModeDragging
}

func (e *Engine) dropTargetAt(ev PointerEvent) DropTarget {
	hit := e.hitTest(ev.X, ev.Y)
	if hit != nil && hit.Kind == model.ItemKindFolder && hit.ID != e.drag.ItemID {
		return DropTarget{Kind: DropFolder, FolderID: hit.ID}
	}
	return DropTarget{Kind: DropRoot}
}

// recomputeRectSelection re-evaluates every root item against the live
// rectangle. O(n) per move; fine at board item counts.
func (e *Engine) recomputeRectSelection() {
	x1, y1, x2, y2, ok := e.SelectionRect()
	if !ok {
		return
	}
	next := map[string]bool{}
	for id := range e.sel.base {
		next[id] = true
	}
	if e.sel.moved {
		for i := range e.items {
			it := &e.items[i]
			if it.InFolder() {
				continue
			}
			if e.intersects(it, x1, y1, x2, y2) {
				next[it.ID] = true
			}
		}
	}
	e.selection = next
}

// PointerUp completes the current interaction: it finishes a rectangle
// selection, resolves an item click (including double-click dispatch), or
// drops a drag session.
func (e *Engine) PointerUp(ctx context.Context, ev PointerEvent) {
	switch e.mode {
	case ModeSelecting:
		e.sel.current = ev.pos()
		if e.sel.moved {
			e.recomputeRectSelection()
		} else {
			// A sub-threshold session is a plain click, not a drag-select:
			// keep whatever PointerDown already decided.
			e.selection = e.sel.base
		}
		e.sel = nil
		e.mode = ModeIdle

	case ModeDragging:
		e.drop(ctx, ev)
		e.drag = nil
		e.press = nil
		e.mode = ModeIdle

	case ModeIdle:
		if e.press == nil {
			return
		}
		e.clickItem(e.press.itemID, e.press.additive)
		e.press = nil
	}
}

func (e *Engine) clickItem(itemID string, additive bool) {
	it := e.item(itemID)
	if it == nil {
		return
	}
	now := e.now()
	isDouble := e.lastClickID == itemID && now.Sub(e.lastClickAt) <= e.cfg.DoubleClickWindow
	e.lastClickID = itemID
	e.lastClickAt = now

	if isDouble && !additive {
		e.lastClickID = ""
		e.Open(itemID)
		return
	}
	if additive {
		if e.selection[itemID] {
			delete(e.selection, itemID)
		} else {
			e.selection[itemID] = true
		}
		return
	}
	e.selection = map[string]bool{itemID: true}
}

// drop resolves a released drag session: move-into-folder, extract from an
// open folder window, or reposition. Validation and permission checks run
// before any optimistic change.
func (e *Engine) drop(ctx context.Context, ev PointerEvent) {
	it := e.item(e.drag.ItemID)
	if it == nil {
		return
	}

	if e.drag.Target.Kind == DropFolder {
		e.dropIntoFolder(ctx, it, e.drag.Target.FolderID)
		return
	}

	x := ev.X + e.drag.Offset.X
	y := ev.Y + e.drag.Offset.Y
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	if e.drag.FromWindow {
		e.extractToBoard(ctx, it, x, y)
		return
	}
	e.reposition(it, x, y)
}

func (e *Engine) dropIntoFolder(ctx context.Context, it *model.Item, folderID string) {
	if it.Kind != model.ItemKindFile {
		msg := "Folders cannot be placed inside other folders"
		if it.Kind == model.ItemKindDocument {
			msg = "Documents stay on the board until they are finalized into a file"
		}
		e.notice(NoticeWarn, msg, ValidationError{Reason: msg})
		return
	}
	folder := e.item(folderID)
	if folder == nil || folder.Kind != model.ItemKindFolder {
		return
	}
	if it.InFolder() && *it.ParentFolderID == folder.ID {
		// Already filed there; nothing to move.
		delete(e.selection, it.ID)
		return
	}

	// Optimistic: file it locally, persist in the background. A drag that
	// started in a folder window re-files the item, so the old parent
	// gives up the child.
	if it.InFolder() {
		if old := e.item(*it.ParentFolderID); old != nil && old.ChildCount > 0 {
			old.ChildCount--
		}
	}
	id := folder.ID
	it.ParentFolderID = &id
	folder.ChildCount++
	delete(e.selection, it.ID)

	itemID := it.ID
	e.runAsync(func() {
		if err := e.store.MoveFileToFolder(ctx, itemID, &id); err != nil {
			e.storeFailure("moveFileToFolder", itemID, err)
		}
	})
}

func (e *Engine) extractToBoard(ctx context.Context, it *model.Item, x, y float64) {
	if e.grant.IsGuest {
		// Guests only ever see shared folders, but the drop point must
		// stay on the shared side too.
		if !access.CanPlace(e.grant, y, y, e.ws) {
			e.notice(NoticeWarn, "Guests cannot place items in the private zone",
				PermissionDeniedError{Action: access.ActionMoveItem, Role: e.grant.Role})
			return
		}
	}
	it.ParentFolderID = nil
	it.Position = model.Position{X: x, Y: y}
	if e.window != nil {
		if folder := e.item(e.window.FolderID); folder != nil && folder.ChildCount > 0 {
			folder.ChildCount--
		}
	}

	itemID := it.ID
	e.runAsync(func() {
		if err := e.store.MoveFileToFolder(ctx, itemID, nil); err != nil {
			e.storeFailure("moveFileToFolder", itemID, err)
		}
	})
	e.sched.Schedule(itemID, model.Position{X: x, Y: y})
}

func (e *Engine) reposition(it *model.Item, x, y float64) {
	from := it.Position.Y
	if !access.CanPlace(e.grant, from, y, e.ws) {
		e.notice(NoticeWarn, "Guests cannot move items across the zone boundary",
			PermissionDeniedError{Action: access.ActionMoveItem, Role: e.grant.Role})
		return
	}

	fromZone := e.zoneAt(from)
	toZone := e.zoneAt(y)

	it.Position = model.Position{X: x, Y: y}
	e.sched.Schedule(it.ID, it.Position)

	if fromZone != toZone {
		// Advisory only; crossing is permitted for members.
		if toZone == model.ZonePrivate {
			e.notice(NoticeInfo, "\""+it.Name+"\" is now in the private zone: only members can see it", nil)
		} else {
			e.notice(NoticeInfo, "\""+it.Name+"\" is now in the shared zone: guests can see it", nil)
		}
	}
}

func (e *Engine) storeFailure(op, itemID string, err error) {
	level := NoticeError
	msg := "Could not save changes for " + itemID
	e.notice(level, msg, PersistenceFailureError{Op: op, Err: err})
}
