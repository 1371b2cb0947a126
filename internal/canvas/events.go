package canvas

import "corkboard-cli/internal/model"

// PointerButton identifies the pressed button of a normalized pointer
// event. The engine never sees toolkit-specific event types; front ends
// (the TUI's mouse handling, tests) translate into this port.
type PointerButton int

const (
	ButtonPrimary PointerButton = iota
	ButtonSecondary
)

type Modifiers struct {
	Ctrl  bool
	Alt   bool
	Shift bool
}

// Additive is the multi-select modifier (ctrl, or cmd mapped to ctrl by
// the front end).
func (m Modifiers) Additive() bool { return m.Ctrl }

// PointerEvent is a normalized pointer sample in board coordinates.
type PointerEvent struct {
	X, Y      float64
	Button    PointerButton
	Modifiers Modifiers
}

func (ev PointerEvent) pos() model.Position { return model.Position{X: ev.X, Y: ev.Y} }

// Mode is the engine's interaction state. Transitions:
// idle -> selecting -> idle, idle -> dragging -> idle, idle -> renaming -> idle.
type Mode int

const (
	ModeIdle Mode = iota
	ModeSelecting
	ModeDragging
	ModeRenaming
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeSelecting:
		return "selecting"
	case ModeDragging:
		return "dragging"
	case ModeRenaming:
		return "renaming"
	}
	return "unknown"
}

// DropTargetKind is the current candidate target of a drag session.
type DropTargetKind int

const (
	DropRoot DropTargetKind = iota
	DropFolder
)

type DropTarget struct {
	Kind     DropTargetKind
	FolderID string
}

// DragSession is the ephemeral state between drag start and drop.
type DragSession struct {
	ItemID     string
	Offset     model.Position
	Current    model.Position
	FromWindow bool
	Target     DropTarget
}

// FolderWindow is the ephemeral overlay listing an open folder's children,
// anchored near the folder's board position.
type FolderWindow struct {
	FolderID string
	Anchor   model.Position
}

// RenameSession is an in-progress inline rename.
type RenameSession struct {
	ItemID   string
	Original string
}

type EventKind string

const (
	// EventOpenDocumentEditor asks the host to navigate to the external
	// document editor; the engine only hands over the id.
	EventOpenDocumentEditor EventKind = "openDocumentEditor"
	// EventOpenFilePreview asks the host to open the full file preview.
	EventOpenFilePreview EventKind = "openFilePreview"
)

type Event struct {
	Kind   EventKind
	ItemID string
}

type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
	NoticeError
)

// Notice is a non-blocking user-facing message (advisories, rejected
// drops, persistence failures). Nothing here is fatal.
type Notice struct {
	Level   NoticeLevel
	Message string
	Err     error
}

type MenuAction string

const (
	MenuOpenFolder   MenuAction = "openFolder"
	MenuEditDocument MenuAction = "editDocument"
	MenuPreviewFile  MenuAction = "previewFile"
	MenuRename       MenuAction = "rename"
	MenuDelete       MenuAction = "delete"
	MenuAutoArrange  MenuAction = "autoArrange"
)

// MenuItem is one entry of a context action menu, already filtered by item
// kind and the caller's grant.
type MenuItem struct {
	Action MenuAction
	Label  string
	ItemID string
	Zone   model.Zone
}
