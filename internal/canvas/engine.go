// Package canvas is the spatial canvas interaction engine: a state
// machine over normalized pointer events driving selection, drag & drop,
// inline rename, context actions and auto-arrange, with optimistic local
// state written through the item store.
//
// The engine is deliberately toolkit-agnostic. It must be driven from a
// single goroutine (the TUI's bubbletea loop, or a test); asynchronous
// store writes and feed notifications only ever touch channels.
package canvas

import (
	"context"
	"math"
	"time"

	"corkboard-cli/internal/access"
	"corkboard-cli/internal/model"
	"corkboard-cli/internal/persist"
	"corkboard-cli/internal/zone"
)

// ItemStore is the slice of the authoritative store the engine consumes.
// *store.DB satisfies it; tests plug in fakes.
type ItemStore interface {
	CreateFolder(ctx context.Context, workspaceID, name string, x, y float64, ownerID string) (*model.Item, error)
	UpdateItemPosition(ctx context.Context, itemID string, x, y float64) error
	MoveFileToFolder(ctx context.Context, fileID string, folderID *string) error
	RenameItem(ctx context.Context, itemID, name string) error
	DeleteItem(ctx context.Context, itemID string) error
	ListItemsByWorkspace(ctx context.Context, workspaceID string) ([]model.Item, error)
}

// Feed is the realtime change feed the engine subscribes to.
type Feed interface {
	Subscribe(workspaceID string, fn func(model.Change)) (func(), error)
}

type Config struct {
	Workspace *model.Workspace
	CallerID  string
	Grant     model.AccessGrant
	Store     ItemStore
	// Feed is optional; without it the engine only reconciles on demand.
	Feed Feed

	// Grid defaults to zone.DefaultGrid().
	Grid zone.Grid
	// ItemWidth/ItemHeight are the hit-box extents of an item icon in
	// board units. Zero means the defaults (96 x 72).
	ItemWidth  float64
	ItemHeight float64
	// MoveThreshold separates a click from a drag (default 3 board units).
	MoveThreshold float64
	// DoubleClickWindow defaults to 400ms.
	DoubleClickWindow time.Duration
	// DebounceDelay is the position-persistence debounce (default 500ms).
	DebounceDelay time.Duration
}

type pressState struct {
	itemID     string
	at         model.Position
	offset     model.Position
	additive   bool
	fromWindow bool
}

type selectState struct {
	origin  model.Position
	current model.Position
	base    map[string]bool
	moved   bool
}

type Engine struct {
	cfg    Config
	ws     *model.Workspace
	caller string
	grant  model.AccessGrant
	store  ItemStore
	sched  *persist.Scheduler

	items     []model.Item
	selection map[string]bool

	mode   Mode
	press  *pressState
	sel    *selectState
	drag   *DragSession
	rename *RenameSession
	window *FolderWindow

	lastClickID string
	lastClickAt time.Time

	notices chan Notice
	events  chan Event
	changes chan model.Change
	unsub   func()

	// Test seams; production values are set in New.
	now      func() time.Time
	runAsync func(fn func())
}

func New(cfg Config) (*Engine, error) {
	if cfg.Workspace == nil || cfg.Store == nil {
		return nil, ValidationError{Reason: "workspace and store are required"}
	}
	if cfg.Grid.PerRow == 0 {
		cfg.Grid = zone.DefaultGrid()
	}
	if cfg.ItemWidth <= 0 {
		cfg.ItemWidth = 96
	}
	if cfg.ItemHeight <= 0 {
		cfg.ItemHeight = 72
	}
	if cfg.MoveThreshold <= 0 {
		cfg.MoveThreshold = 3
	}
	if cfg.DoubleClickWindow <= 0 {
		cfg.DoubleClickWindow = 400 * time.Millisecond
	}

	e := &Engine{
		cfg:       cfg,
		ws:        cfg.Workspace,
		caller:    cfg.CallerID,
		grant:     cfg.Grant,
		store:     cfg.Store,
		selection: map[string]bool{},
		notices:   make(chan Notice, 32),
		events:    make(chan Event, 16),
		changes:   make(chan model.Change, 1),
		now:       time.Now,
		runAsync:  func(fn func()) { go fn() },
	}
	e.sched = persist.NewScheduler(cfg.Store, cfg.DebounceDelay, func(itemID string, err error) {
		e.notice(NoticeError, "Could not save position for "+itemID, PersistenceFailureError{Op: "updateItemPosition", Err: err})
	})

	if cfg.Feed != nil {
		unsub, err := cfg.Feed.Subscribe(cfg.Workspace.ID, func(c model.Change) {
			// Coalesce bursts: one pending reconcile trigger is enough, the
			// fetch is a full refetch anyway.
			select {
			case e.changes <- c:
			default:
			}
		})
		if err != nil {
			return nil, err
		}
		e.unsub = unsub
	}
	return e, nil
}

// Load performs the initial item fetch.
func (e *Engine) Load(ctx context.Context) error {
	return e.Reconcile(ctx)
}

// Close flushes pending position writes and detaches from the feed.
// Pending debounce timers are not discarded: unflushed coordinates would
// otherwise be silently lost.
func (e *Engine) Close() {
	if e.unsub != nil {
		e.unsub()
		e.unsub = nil
	}
	e.sched.Flush()
}

// Notices delivers non-blocking user-facing messages.
func (e *Engine) Notices() <-chan Notice { return e.notices }

// Events delivers navigational triggers (document editor, file preview).
func (e *Engine) Events() <-chan Event { return e.events }

// ChangeSignals delivers feed notifications. The owner of the event loop
// reads them and calls Reconcile.
func (e *Engine) ChangeSignals() <-chan model.Change { return e.changes }

func (e *Engine) Mode() Mode                  { return e.mode }
func (e *Engine) Workspace() *model.Workspace { return e.ws }
func (e *Engine) Grant() model.AccessGrant    { return e.grant }
func (e *Engine) Drag() *DragSession          { return e.drag }
func (e *Engine) Rename() *RenameSession      { return e.rename }
func (e *Engine) Window() *FolderWindow       { return e.window }

// Items returns the engine's current (guest-filtered) item set.
func (e *Engine) Items() []model.Item { return e.items }

// Selection returns the selected item ids.
func (e *Engine) Selection() []string {
	out := make([]string, 0, len(e.selection))
	for _, it := range e.items {
		if e.selection[it.ID] {
			out = append(out, it.ID)
		}
	}
	return out
}

func (e *Engine) Selected(itemID string) bool { return e.selection[itemID] }

// SelectionRect returns the live rubber-band rectangle (normalized
// corners) while a rectangle selection is in progress.
func (e *Engine) SelectionRect() (x1, y1, x2, y2 float64, ok bool) {
	if e.mode != ModeSelecting || e.sel == nil {
		return 0, 0, 0, 0, false
	}
	x1, x2 = e.sel.origin.X, e.sel.current.X
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	y1, y2 = e.sel.origin.Y, e.sel.current.Y
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return x1, y1, x2, y2, true
}

func (e *Engine) item(id string) *model.Item {
	for i := range e.items {
		if e.items[i].ID == id {
			return &e.items[i]
		}
	}
	return nil
}

// hitTest returns the topmost root item whose icon box contains (x, y).
// Items parked inside folders are not on the board and never hit.
func (e *Engine) hitTest(x, y float64) *model.Item {
	for i := len(e.items) - 1; i >= 0; i-- {
		it := &e.items[i]
		if it.InFolder() {
			continue
		}
		if x >= it.Position.X && x < it.Position.X+e.cfg.ItemWidth &&
			y >= it.Position.Y && y < it.Position.Y+e.cfg.ItemHeight {
			return it
		}
	}
	return nil
}

func (e *Engine) intersects(it *model.Item, x1, y1, x2, y2 float64) bool {
	bx1, by1 := it.Position.X, it.Position.Y
	bx2, by2 := bx1+e.cfg.ItemWidth, by1+e.cfg.ItemHeight
	return x1 <= bx2 && x2 >= bx1 && y1 <= by2 && y2 >= by1
}

func dist(a, b model.Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func (e *Engine) notice(level NoticeLevel, msg string, err error) {
	n := Notice{Level: level, Message: msg, Err: err}
	select {
	case e.notices <- n:
	default:
		// A stalled consumer drops advisories rather than blocking the
		// interaction loop.
	}
}

func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
	}
}

func (e *Engine) canMutate(action access.Action, it *model.Item) bool {
	return access.CanMutate(action, e.grant, it, e.caller)
}

func (e *Engine) zoneAt(y float64) model.Zone {
	return zone.Of(y, e.ws.Height, e.ws.ZoneThreshold)
}

// Reconcile refetches the full workspace item set and replaces the local
// copy. A deliberate robustness-over-efficiency choice: no incremental
// patching, whatever landed last in the store wins. May race with an
// unflushed debounce timer, in which case a just-moved item can briefly
// snap back until the caller's own write lands.
func (e *Engine) Reconcile(ctx context.Context) error {
	items, err := e.store.ListItemsByWorkspace(ctx, e.ws.ID)
	if err != nil {
		e.notice(NoticeError, "Could not refresh the board", err)
		return err
	}
	items = access.VisibleItems(items, e.grant, e.ws)

	present := make(map[string]bool, len(items))
	for _, it := range items {
		present[it.ID] = true
	}

	if e.window != nil && !present[e.window.FolderID] {
		id := e.window.FolderID
		e.window = nil
		e.notice(NoticeWarn, "The open folder was removed elsewhere", ConflictStaleError{ItemID: id})
	}
	if e.mode == ModeRenaming && e.rename != nil && !present[e.rename.ItemID] {
		id := e.rename.ItemID
		e.rename = nil
		e.mode = ModeIdle
		e.notice(NoticeWarn, "The item being renamed was removed elsewhere", ConflictStaleError{ItemID: id})
	}
	if e.mode == ModeDragging && e.drag != nil && !present[e.drag.ItemID] {
		id := e.drag.ItemID
		e.drag = nil
		e.press = nil
		e.mode = ModeIdle
		e.notice(NoticeWarn, "The dragged item was removed elsewhere", ConflictStaleError{ItemID: id})
	}
	for id := range e.selection {
		if !present[id] {
			delete(e.selection, id)
		}
	}

	e.items = items
	return nil
}
