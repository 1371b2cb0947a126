package cli

import (
	"context"
	"fmt"

	"corkboard-cli/internal/access"
	"corkboard-cli/internal/model"
	"corkboard-cli/internal/store"
	"corkboard-cli/internal/zone"
)

type deniedError struct {
	reason string
}

func (e deniedError) Error() string {
	return "permission denied: " + e.reason
}

func permissionError(reason string) error {
	return deniedError{reason: reason}
}

// authorizeItem loads an item and applies the same role matrix the canvas
// enforces: owners mutate anything, editors only their own items, viewers
// nothing.
func authorizeItem(ctx context.Context, db *store.DB, app *App, action access.Action, itemID string) (*model.Item, *model.Workspace, model.AccessGrant, error) {
	var none model.AccessGrant
	actorID, err := currentActorID(app)
	if err != nil {
		return nil, nil, none, err
	}
	it, err := db.Item(ctx, itemID)
	if err != nil {
		return nil, nil, none, err
	}
	ws, err := db.Workspace(ctx, it.WorkspaceID)
	if err != nil {
		return nil, nil, none, err
	}
	grant, err := db.ResolveAccess(ctx, actorID, it.WorkspaceID)
	if err != nil {
		return nil, nil, none, err
	}
	if grant.IsGuest && zone.OfItem(it, ws) == model.ZonePrivate {
		// Guests never see private items; report them as absent.
		return nil, nil, none, store.NotFoundError{Kind: "item", ID: it.ID}
	}
	if !access.CanMutate(action, grant, it, actorID) {
		return nil, nil, none, permissionError(fmt.Sprintf("%s not permitted for role %s on %s", action, grant.Role, it.ID))
	}
	return it, ws, grant, nil
}

// requirePlacement checks both the action permission and guest zone
// confinement for creating something at the given y.
func requirePlacement(ctx context.Context, db *store.DB, app *App, ws *model.Workspace, action access.Action, y float64) error {
	actorID, err := currentActorID(app)
	if err != nil {
		return err
	}
	grant, err := db.ResolveAccess(ctx, actorID, ws.ID)
	if err != nil {
		return err
	}
	if !access.Authorize(action, grant, true) {
		return permissionError(fmt.Sprintf("%s not permitted for role %s", action, grant.Role))
	}
	if !access.CanPlace(grant, y, y, ws) {
		return permissionError("guests cannot place items in the private zone")
	}
	return nil
}
