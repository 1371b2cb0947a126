package canvas

import (
	"context"
	"sort"
	"strings"

	"corkboard-cli/internal/access"
	"corkboard-cli/internal/model"
	"corkboard-cli/internal/zone"
)

// ContextMenu returns the action set for a right-click, filtered by item
// kind and the caller's grant. Empty-canvas clicks offer only
// auto-arrange, scoped to the zone the click's y falls in.
func (e *Engine) ContextMenu(ev PointerEvent) []MenuItem {
	hit := e.hitTest(ev.X, ev.Y)
	if hit == nil {
		z := e.zoneAt(ev.Y)
		if e.grant.Role != model.RoleOwner {
			return nil
		}
		label := "Arrange shared zone"
		if z == model.ZonePrivate {
			label = "Arrange private zone"
		}
		return []MenuItem{{Action: MenuAutoArrange, Label: label, Zone: z}}
	}

	var out []MenuItem
	switch hit.Kind {
	case model.ItemKindFolder:
		out = append(out, MenuItem{Action: MenuOpenFolder, Label: "Open", ItemID: hit.ID})
	case model.ItemKindDocument:
		out = append(out, MenuItem{Action: MenuEditDocument, Label: "Edit document", ItemID: hit.ID})
	case model.ItemKindFile:
		out = append(out, MenuItem{Action: MenuPreviewFile, Label: "Preview", ItemID: hit.ID})
	}
	if e.canMutate(access.ActionRenameItem, hit) {
		out = append(out, MenuItem{Action: MenuRename, Label: "Rename", ItemID: hit.ID})
	}
	if e.canMutate(access.ActionDeleteItem, hit) {
		out = append(out, MenuItem{Action: MenuDelete, Label: "Delete", ItemID: hit.ID})
	}
	return out
}

// Open dispatches the double-click/open action by item kind: folders open
// the ephemeral folder window, documents and files hand an id to the host
// (external editor, full preview).
func (e *Engine) Open(itemID string) {
	it := e.item(itemID)
	if it == nil {
		return
	}
	switch it.Kind {
	case model.ItemKindFolder:
		e.window = &FolderWindow{FolderID: it.ID, Anchor: it.Position}
	case model.ItemKindDocument:
		e.emit(Event{Kind: EventOpenDocumentEditor, ItemID: it.ID})
	case model.ItemKindFile:
		e.emit(Event{Kind: EventOpenFilePreview, ItemID: it.ID})
	}
}

func (e *Engine) CloseFolderWindow() { e.window = nil }

// WindowChildren lists the open folder's children, name-sorted.
func (e *Engine) WindowChildren() []model.Item {
	if e.window == nil {
		return nil
	}
	var out []model.Item
	for _, it := range e.items {
		if it.InFolder() && *it.ParentFolderID == e.window.FolderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// BeginRename enters the inline rename state. Denied callers never enter
// the session: the check happens here, not at commit.
func (e *Engine) BeginRename(itemID string) error {
	if e.mode != ModeIdle {
		return ValidationError{Reason: "busy: " + e.mode.String()}
	}
	it := e.item(itemID)
	if it == nil {
		return NotFoundError{ItemID: itemID}
	}
	if !e.canMutate(access.ActionRenameItem, it) {
		return PermissionDeniedError{Action: access.ActionRenameItem, Role: e.grant.Role}
	}
	e.rename = &RenameSession{ItemID: itemID, Original: it.Name}
	e.mode = ModeRenaming
	return nil
}

// CommitRename applies the edited name. Empty or unchanged values close
// the session without a store call (empty additionally warns).
func (e *Engine) CommitRename(ctx context.Context, name string) error {
	if e.mode != ModeRenaming || e.rename == nil {
		return nil
	}
	session := e.rename
	e.rename = nil
	e.mode = ModeIdle

	name = strings.TrimSpace(name)
	if name == "" {
		e.notice(NoticeWarn, "Name cannot be empty", ValidationError{Reason: "empty name"})
		return ValidationError{Reason: "empty name"}
	}
	if name == session.Original {
		return nil
	}
	it := e.item(session.ItemID)
	if it == nil {
		return NotFoundError{ItemID: session.ItemID}
	}

	it.Name = name
	itemID := it.ID
	e.runAsync(func() {
		if err := e.store.RenameItem(ctx, itemID, name); err != nil {
			e.storeFailure("renameItem", itemID, err)
		}
	})
	return nil
}

// CancelRename aborts the session; the prior name stays, no store call.
func (e *Engine) CancelRename() {
	if e.mode != ModeRenaming {
		return
	}
	e.rename = nil
	e.mode = ModeIdle
}

// Delete removes an item (optimistically; the store write runs in the
// background).
func (e *Engine) Delete(ctx context.Context, itemID string) error {
	it := e.item(itemID)
	if it == nil {
		return NotFoundError{ItemID: itemID}
	}
	if !e.canMutate(access.ActionDeleteItem, it) {
		return PermissionDeniedError{Action: access.ActionDeleteItem, Role: e.grant.Role}
	}

	if e.window != nil && e.window.FolderID == itemID {
		e.window = nil
	}
	delete(e.selection, itemID)
	kept := e.items[:0]
	for _, other := range e.items {
		if other.ID == itemID {
			continue
		}
		if other.InFolder() && *other.ParentFolderID == itemID {
			// The store re-roots children at the folder position; mirror
			// that locally instead of waiting for the reconcile fetch.
			other.ParentFolderID = nil
			other.Position = it.Position
		}
		kept = append(kept, other)
	}
	e.items = kept

	e.runAsync(func() {
		if err := e.store.DeleteItem(ctx, itemID); err != nil {
			e.storeFailure("deleteItem", itemID, err)
		}
	})
	return nil
}

// CreateFolder places a new folder at (x, y). Synchronous: the store
// assigns the id.
func (e *Engine) CreateFolder(ctx context.Context, name string, x, y float64) (*model.Item, error) {
	if !access.Authorize(access.ActionCreateFolder, e.grant, true) {
		return nil, PermissionDeniedError{Action: access.ActionCreateFolder, Role: e.grant.Role}
	}
	if !access.CanPlace(e.grant, y, y, e.ws) {
		return nil, PermissionDeniedError{Action: access.ActionCreateFolder, Role: e.grant.Role}
	}
	it, err := e.store.CreateFolder(ctx, e.ws.ID, name, x, y, e.caller)
	if err != nil {
		return nil, err
	}
	e.items = append(e.items, *it)
	return it, nil
}

// AutoArrange packs the zone under y into the reference grid. The
// placements flow through the same optimistic + debounced persistence
// path as manual drags, batched as one logical operation.
func (e *Engine) AutoArrange(ctx context.Context, y float64) error {
	if e.grant.Role != model.RoleOwner {
		// Arranging repositions other members' items wholesale; editors
		// and viewers don't get the menu entry either.
		return PermissionDeniedError{Action: access.ActionMoveItem, Role: e.grant.Role}
	}
	z := e.zoneAt(y)
	placements := zone.Arrange(e.items, z, e.ws, e.cfg.Grid)
	if len(placements) == 0 {
		return nil
	}

	batch := make(map[string]model.Position, len(placements))
	for _, p := range placements {
		if it := e.item(p.ItemID); it != nil {
			it.Position = p.Position
		}
		batch[p.ItemID] = p.Position
	}
	e.sched.ScheduleAll(batch)
	return nil
}

// FlushPositions forces all pending debounced writes out immediately.
// Views call it on teardown so pending writes are not lost.
func (e *Engine) FlushPositions() { e.sched.Flush() }
