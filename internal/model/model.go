package model

import "time"

type ItemKind string

const (
	ItemKindFolder   ItemKind = "folder"
	ItemKindFile     ItemKind = "file"
	ItemKindDocument ItemKind = "document"
)

func (k ItemKind) Valid() bool {
	switch k {
	case ItemKindFolder, ItemKindFile, ItemKindDocument:
		return true
	}
	return false
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Zone is the visibility class of a board position. It is never stored:
// it is always derived from an item's y coordinate (see internal/zone).
type Zone string

const (
	ZoneShared  Zone = "shared"
	ZonePrivate Zone = "private"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Item is one thing placed on a board: a folder, an uploaded file, or a
// draft document. Files may live inside a folder (ParentFolderID set), in
// which case their own position is meaningless until they are extracted
// back onto the board.
type Item struct {
	ID          string   `json:"id"`
	WorkspaceID string   `json:"workspaceId"`
	Kind        ItemKind `json:"kind"`
	Name        string   `json:"name"`
	Position    Position `json:"position"`

	// ParentFolderID is only ever set for file items. Folders and documents
	// are pinned to the board root.
	ParentFolderID *string `json:"parentFolderId,omitempty"`

	// OwnerID is the uploader/creator. Nil for legacy rows.
	OwnerID *string `json:"ownerId,omitempty"`

	FileSize *int64  `json:"fileSize,omitempty"`
	MimeType *string `json:"mimeType,omitempty"`

	// ChildCount is derived at load time for folders; not persisted.
	ChildCount int `json:"childCount,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (it *Item) InFolder() bool {
	return it != nil && it.ParentFolderID != nil && *it.ParentFolderID != ""
}

func (it *Item) OwnedBy(userID string) bool {
	return it != nil && it.OwnerID != nil && userID != "" && *it.OwnerID == userID
}

// Workspace is one board: a bounded canvas plus its settings. ZoneThreshold
// is the fraction of the board height at or below which positions turn
// private (reference value 0.6).
type Workspace struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Width         float64   `json:"width"`
	Height        float64   `json:"height"`
	ZoneThreshold float64   `json:"zoneThreshold"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AccessGrant is the resolved capability of one caller on one workspace.
// Unknown callers resolve to {viewer, guest}.
type AccessGrant struct {
	Role    Role `json:"role"`
	IsGuest bool `json:"isGuest"`
}

type Member struct {
	WorkspaceID string    `json:"workspaceId"`
	UserID      string    `json:"userId"`
	Role        Role      `json:"role"`
	IsGuest     bool      `json:"isGuest"`
	AddedAt     time.Time `json:"addedAt"`
}

type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Change is one store-level change notification. Consumers treat it as a
// trigger for a full reconciliation fetch, not as an incremental patch, so
// it intentionally carries no item payload.
type Change struct {
	WorkspaceID string     `json:"workspaceId"`
	Kind        ChangeKind `json:"kind"`
	ItemID      string     `json:"itemId"`
	At          time.Time  `json:"at"`
}
