package canvas

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"corkboard-cli/internal/model"
)

// fakeStore is an in-memory ItemStore recording every mutating call.
type fakeStore struct {
	mu     sync.Mutex
	items  map[string]*model.Item
	calls  []string
	errOn  string // op name that should fail
	nextID int
}

func newFakeStore(items ...model.Item) *fakeStore {
	fs := &fakeStore{items: map[string]*model.Item{}}
	for i := range items {
		it := items[i]
		fs.items[it.ID] = &it
	}
	return fs
}

func (f *fakeStore) record(op string) error {
	f.calls = append(f.calls, op)
	if f.errOn != "" && len(op) >= len(f.errOn) && op[:len(f.errOn)] == f.errOn {
		return fmt.Errorf("%s failed", f.errOn)
	}
	return nil
}

func (f *fakeStore) CreateFolder(_ context.Context, workspaceID, name string, x, y float64, ownerID string) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("createFolder:" + name); err != nil {
		return nil, err
	}
	f.nextID++
	owner := ownerID
	it := &model.Item{
		ID: fmt.Sprintf("item-new%d", f.nextID), WorkspaceID: workspaceID,
		Kind: model.ItemKindFolder, Name: name,
		Position: model.Position{X: x, Y: y}, OwnerID: &owner,
	}
	f.items[it.ID] = it
	return it, nil
}

func (f *fakeStore) UpdateItemPosition(_ context.Context, itemID string, x, y float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(fmt.Sprintf("updateItemPosition:%s:%v:%v", itemID, x, y)); err != nil {
		return err
	}
	if it, ok := f.items[itemID]; ok {
		it.Position = model.Position{X: x, Y: y}
	}
	return nil
}

func (f *fakeStore) MoveFileToFolder(_ context.Context, fileID string, folderID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target := "root"
	if folderID != nil {
		target = *folderID
	}
	if err := f.record("moveFileToFolder:" + fileID + ":" + target); err != nil {
		return err
	}
	if it, ok := f.items[fileID]; ok {
		if folderID == nil {
			it.ParentFolderID = nil
		} else {
			id := *folderID
			it.ParentFolderID = &id
		}
	}
	return nil
}

func (f *fakeStore) RenameItem(_ context.Context, itemID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("renameItem:" + itemID + ":" + name); err != nil {
		return err
	}
	if it, ok := f.items[itemID]; ok {
		it.Name = name
	}
	return nil
}

func (f *fakeStore) DeleteItem(_ context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("deleteItem:" + itemID); err != nil {
		return err
	}
	delete(f.items, itemID)
	return nil
}

func (f *fakeStore) ListItemsByWorkspace(_ context.Context, workspaceID string) ([]model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Item, 0, len(f.items))
	// Insertion-order independence is part of the selection contract, so
	// deliberately return in map order.
	for _, it := range f.items {
		if it.WorkspaceID == workspaceID || it.WorkspaceID == "" {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeStore) mutationCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func strPtr(s string) *string { return &s }

func testWorkspace() *model.Workspace {
	return &model.Workspace{ID: "ws-1", Name: "board", Width: 1600, Height: 1000, ZoneThreshold: 0.6}
}

func boardItem(id string, kind model.ItemKind, name string, x, y float64, owner string) model.Item {
	it := model.Item{
		ID: id, WorkspaceID: "ws-1", Kind: kind, Name: name,
		Position: model.Position{X: x, Y: y},
	}
	if owner != "" {
		it.OwnerID = &owner
	}
	return it
}

// newTestEngine builds an engine over a fake store with synchronous
// effects and a controllable clock.
func newTestEngine(t *testing.T, grant model.AccessGrant, items ...model.Item) (*Engine, *fakeStore) {
	t.Helper()
	fs := newFakeStore(items...)
	e, err := New(Config{
		Workspace:     testWorkspace(),
		CallerID:      "user-a",
		Grant:         grant,
		Store:         fs,
		DebounceDelay: time.Hour, // tests flush explicitly
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	e.runAsync = func(fn func()) { fn() }
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return e, fs
}

func ownerGrant() model.AccessGrant  { return model.AccessGrant{Role: model.RoleOwner} }
func editorGrant() model.AccessGrant { return model.AccessGrant{Role: model.RoleEditor} }
func viewerGrant() model.AccessGrant { return model.AccessGrant{Role: model.RoleViewer} }
func guestGrant() model.AccessGrant {
	return model.AccessGrant{Role: model.RoleViewer, IsGuest: true}
}

func drainNotices(e *Engine) []Notice {
	var out []Notice
	for {
		select {
		case n := <-e.Notices():
			out = append(out, n)
		default:
			return out
		}
	}
}

func drainEvents(e *Engine) []Event {
	var out []Event
	for {
		select {
		case ev := <-e.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestClick_ReplacesSelection(t *testing.T) {
	e, _ := newTestEngine(t, ownerGrant(),
		boardItem("item-a", model.ItemKindFile, "a", 100, 100, "user-a"),
		boardItem("item-b", model.ItemKindFile, "b", 400, 100, "user-a"),
	)
	ctx := context.Background()

	e.PointerDown(PointerEvent{X: 110, Y: 110})
	e.PointerUp(ctx, PointerEvent{X: 110, Y: 110})
	if got := e.Selection(); len(got) != 1 || got[0] != "item-a" {
		t.Fatalf("expected selection [item-a]; got %v", got)
	}

	e.PointerDown(PointerEvent{X: 410, Y: 110})
	e.PointerUp(ctx, PointerEvent{X: 410, Y: 110})
	if got := e.Selection(); len(got) != 1 || got[0] != "item-b" {
		t.Fatalf("plain click should replace the selection; got %v", got)
	}
}

func TestModifierClick_TogglesMembership(t *testing.T) {
	e, _ := newTestEngine(t, ownerGrant(),
		boardItem("item-a", model.ItemKindFile, "a", 100, 100, "user-a"),
		boardItem("item-b", model.ItemKindFile, "b", 400, 100, "user-a"),
	)
	ctx := context.Background()
	mods := Modifiers{Ctrl: true}

	e.PointerDown(PointerEvent{X: 110, Y: 110})
	e.PointerUp(ctx, PointerEvent{X: 110, Y: 110})
	e.PointerDown(PointerEvent{X: 410, Y: 110, Modifiers: mods})
	e.PointerUp(ctx, PointerEvent{X: 410, Y: 110, Modifiers: mods})
	if got := e.Selection(); len(got) != 2 {
		t.Fatalf("modifier click should add without clearing; got %v", got)
	}

	// Toggling off leaves the rest untouched.
	e.PointerDown(PointerEvent{X: 110, Y: 110, Modifiers: mods})
	e.PointerUp(ctx, PointerEvent{X: 110, Y: 110, Modifiers: mods})
	if got := e.Selection(); len(got) != 1 || got[0] != "item-b" {
		t.Fatalf("modifier click should toggle membership; got %v", got)
	}
}

func TestEmptyClick_ClearsSelection(t *testing.T) {
	e, _ := newTestEngine(t, ownerGrant(),
		boardItem("item-a", model.ItemKindFile, "a", 100, 100, "user-a"),
	)
	ctx := context.Background()

	e.PointerDown(PointerEvent{X: 110, Y: 110})
	e.PointerUp(ctx, PointerEvent{X: 110, Y: 110})
	e.PointerDown(PointerEvent{X: 900, Y: 300})
	e.PointerUp(ctx, PointerEvent{X: 900, Y: 300})
	if got := e.Selection(); len(got) != 0 {
		t.Fatalf("empty-canvas click should clear the selection; got %v", got)
	}
}

func TestDoubleClick_DispatchesByKind(t *testing.T) {
	e, _ := newTestEngine(t, ownerGrant(),
		boardItem("item-f", model.ItemKindFolder, "inbox", 100, 100, "user-a"),
		boardItem("item-d", model.ItemKindDocument, "draft", 400, 100, "user-a"),
		boardItem("item-p", model.ItemKindFile, "scan.pdf", 700, 100, "user-a"),
	)
	ctx := context.Background()
	clock := time.Unix(1000, 0)
	e.now = func() time.Time { return clock }

	doubleClick := func(x, y float64) {
		e.PointerDown(PointerEvent{X: x, Y: y})
		e.PointerUp(ctx, PointerEvent{X: x, Y: y})
		clock = clock.Add(100 * time.Millisecond)
		e.PointerDown(PointerEvent{X: x, Y: y})
		e.PointerUp(ctx, PointerEvent{X: x, Y: y})
		clock = clock.Add(time.Second)
	}

	doubleClick(110, 110)
	if e.Window() == nil || e.Window().FolderID != "item-f" {
		t.Fatalf("double-click on a folder should open its window")
	}
	if e.Window().Anchor.X != 100 {
		t.Fatalf("folder window should anchor at the folder position; got %+v", e.Window().Anchor)
	}

	doubleClick(410, 110)
	doubleClick(710, 110)
	events := drainEvents(e)
	if len(events) != 2 {
		t.Fatalf("expected 2 navigational events; got %+v", events)
	}
	if events[0].Kind != EventOpenDocumentEditor || events[0].ItemID != "item-d" {
		t.Fatalf("document double-click should emit the editor event; got %+v", events[0])
	}
	if events[1].Kind != EventOpenFilePreview || events[1].ItemID != "item-p" {
		t.Fatalf("file double-click should emit the preview event; got %+v", events[1])
	}
}

func TestSlowSecondClick_IsNotADoubleClick(t *testing.T) {
	e, _ := newTestEngine(t, ownerGrant(),
		boardItem("item-f", model.ItemKindFolder, "inbox", 100, 100, "user-a"),
	)
	ctx := context.Background()
	clock := time.Unix(1000, 0)
	e.now = func() time.Time { return clock }

	e.PointerDown(PointerEvent{X: 110, Y: 110})
	e.PointerUp(ctx, PointerEvent{X: 110, Y: 110})
	clock = clock.Add(2 * time.Second)
	e.PointerDown(PointerEvent{X: 110, Y: 110})
	e.PointerUp(ctx, PointerEvent{X: 110, Y: 110})

	if e.Window() != nil {
		t.Fatalf("a slow second click must not open the folder window")
	}
}

func TestViewer_MutationsSuppressedWithZeroStoreCalls(t *testing.T) {
	e, fs := newTestEngine(t, viewerGrant(),
		boardItem("item-a", model.ItemKindFile, "a", 100, 100, "user-a"),
	)
	ctx := context.Background()

	// Drag never starts.
	e.PointerDown(PointerEvent{X: 110, Y: 110})
	e.PointerMove(PointerEvent{X: 300, Y: 300})
	if e.Mode() != ModeIdle || e.Drag() != nil {
		t.Fatalf("viewer drag session must be suppressed before initiation")
	}
	e.PointerUp(ctx, PointerEvent{X: 300, Y: 300})

	// Rename never starts.
	if err := e.BeginRename("item-a"); err == nil {
		t.Fatalf("viewer rename must be rejected")
	} else if _, ok := err.(PermissionDeniedError); !ok {
		t.Fatalf("expected PermissionDeniedError; got %T", err)
	}
	if e.Mode() != ModeIdle {
		t.Fatalf("rejected rename must not enter edit mode")
	}

	if err := e.Delete(ctx, "item-a"); err == nil {
		t.Fatalf("viewer delete must be rejected")
	}
	if _, err := e.CreateFolder(ctx, "new", 10, 10); err == nil {
		t.Fatalf("viewer createFolder must be rejected")
	}
	if err := e.AutoArrange(ctx, 100); err == nil {
		t.Fatalf("viewer arrange must be rejected")
	}

	e.FlushPositions()
	if calls := fs.mutationCalls(); len(calls) != 0 {
		t.Fatalf("suppressed mutations must produce zero store calls; got %v", calls)
	}
}

func TestEditor_MayOnlyTouchOwnItems(t *testing.T) {
	e, fs := newTestEngine(t, editorGrant(),
		boardItem("item-own", model.ItemKindFile, "mine", 100, 100, "user-a"),
		boardItem("item-other", model.ItemKindFile, "theirs", 400, 100, "user-b"),
	)
	ctx := context.Background()

	if err := e.BeginRename("item-other"); err == nil {
		t.Fatalf("editor rename of someone else's item must be rejected")
	}
	if err := e.Delete(ctx, "item-other"); err == nil {
		t.Fatalf("editor delete of someone else's item must be rejected")
	}
	if calls := fs.mutationCalls(); len(calls) != 0 {
		t.Fatalf("expected zero store calls; got %v", calls)
	}

	if err := e.BeginRename("item-own"); err != nil {
		t.Fatalf("editor rename of own item: %v", err)
	}
	if err := e.CommitRename(ctx, "renamed"); err != nil {
		t.Fatalf("commit rename: %v", err)
	}
	calls := fs.mutationCalls()
	if len(calls) != 1 || calls[0] != "renameItem:item-own:renamed" {
		t.Fatalf("expected exactly the own-item rename; got %v", calls)
	}
}

func TestGuestLoad_FiltersPrivateItems(t *testing.T) {
	items := make([]model.Item, 0, 10)
	for i := 0; i < 7; i++ {
		items = append(items, boardItem(fmt.Sprintf("item-s%d", i), model.ItemKindFile, fmt.Sprintf("s%d", i), 50, float64(i*60), "user-b"))
	}
	for i := 0; i < 3; i++ {
		items = append(items, boardItem(fmt.Sprintf("item-p%d", i), model.ItemKindFile, fmt.Sprintf("p%d", i), 50, float64(620+i*80), "user-b"))
	}
	e, _ := newTestEngine(t, guestGrant(), items...)

	if got := len(e.Items()); got != 7 {
		t.Fatalf("guest item set: expected 7; got %d", got)
	}
	for _, it := range e.Items() {
		if it.Position.Y >= 600 {
			t.Fatalf("guest engine holds a private item: %s", it.ID)
		}
	}
}

func TestContextMenu_FiltersByKindAndGrant(t *testing.T) {
	e, _ := newTestEngine(t, editorGrant(),
		boardItem("item-own", model.ItemKindDocument, "mine", 100, 100, "user-a"),
		boardItem("item-other", model.ItemKindFile, "theirs", 400, 100, "user-b"),
	)

	menu := e.ContextMenu(PointerEvent{X: 110, Y: 110})
	if len(menu) != 3 {
		t.Fatalf("own document: expected open/rename/delete; got %+v", menu)
	}
	if menu[0].Action != MenuEditDocument {
		t.Fatalf("document open action should target the editor; got %+v", menu[0])
	}

	menu = e.ContextMenu(PointerEvent{X: 410, Y: 110})
	if len(menu) != 1 || menu[0].Action != MenuPreviewFile {
		t.Fatalf("someone else's file should only offer preview; got %+v", menu)
	}

	// Empty canvas: arrange is owner-only, so the editor gets nothing.
	if menu := e.ContextMenu(PointerEvent{X: 900, Y: 900}); menu != nil {
		t.Fatalf("editor empty-canvas menu should be empty; got %+v", menu)
	}
}

func TestContextMenu_ArrangeScopedToClickZone(t *testing.T) {
	e, _ := newTestEngine(t, ownerGrant())

	menu := e.ContextMenu(PointerEvent{X: 10, Y: 300})
	if len(menu) != 1 || menu[0].Action != MenuAutoArrange || menu[0].Zone != model.ZoneShared {
		t.Fatalf("expected shared-zone arrange entry; got %+v", menu)
	}
	menu = e.ContextMenu(PointerEvent{X: 10, Y: 700})
	if len(menu) != 1 || menu[0].Zone != model.ZonePrivate {
		t.Fatalf("expected private-zone arrange entry; got %+v", menu)
	}
}
