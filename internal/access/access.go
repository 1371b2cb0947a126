// Package access centralizes role and guest checks for board mutations.
//
// Every mutation path (TUI, CLI, sync server) must go through Authorize;
// the rules live nowhere else. The predicates are pure so they can be
// tested without a store or a UI.
package access

import (
	"corkboard-cli/internal/model"
	"corkboard-cli/internal/zone"
)

type Action string

const (
	ActionCreateFolder Action = "createFolder"
	ActionMoveItem     Action = "moveItem"
	ActionRenameItem   Action = "renameItem"
	ActionDeleteItem   Action = "deleteItem"
)

// Authorize reports whether a caller with the given grant may perform an
// action. isItemOwner is whether the target item's OwnerID matches the
// caller (pass true for createFolder: the caller owns what it creates).
//
// Rules:
//   - owner: always allowed, any item.
//   - editor: allowed only on items the editor itself owns.
//   - viewer (including the default guest grant): never allowed.
func Authorize(action Action, grant model.AccessGrant, isItemOwner bool) bool {
	switch action {
	case ActionCreateFolder, ActionMoveItem, ActionRenameItem, ActionDeleteItem:
	default:
		return false
	}
	switch grant.Role {
	case model.RoleOwner:
		return true
	case model.RoleEditor:
		return isItemOwner
	default:
		return false
	}
}

// CanMutate reports whether the caller may mutate a specific existing item.
func CanMutate(action Action, grant model.AccessGrant, it *model.Item, callerID string) bool {
	if it == nil {
		return false
	}
	return Authorize(action, grant, it.OwnedBy(callerID))
}

// VisibleItems filters a listing for a caller. Guests never receive items
// whose zone is private; members see everything. Filed items (inside a
// folder) inherit visibility from their parent's position: a guest must
// not see the contents of a folder parked in the private zone.
func VisibleItems(items []model.Item, grant model.AccessGrant, ws *model.Workspace) []model.Item {
	if !grant.IsGuest {
		return items
	}
	byID := make(map[string]*model.Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		pos := it.Position
		if it.InFolder() {
			if parent, ok := byID[*it.ParentFolderID]; ok {
				pos = parent.Position
			}
		}
		if zone.Of(pos.Y, ws.Height, ws.ZoneThreshold) == model.ZonePrivate {
			continue
		}
		out = append(out, it)
	}
	return out
}

// CanPlace reports whether the caller may put an item at the destination y.
// Guests are confined to the shared zone outright: they may neither move
// an item into the private zone nor pull one out of it (they never see
// private items in the first place).
func CanPlace(grant model.AccessGrant, fromY, toY float64, ws *model.Workspace) bool {
	if !grant.IsGuest {
		return true
	}
	from := zone.Of(fromY, ws.Height, ws.ZoneThreshold)
	to := zone.Of(toY, ws.Height, ws.ZoneThreshold)
	return from == model.ZoneShared && to == model.ZoneShared
}
