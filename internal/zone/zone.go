// Package zone derives visibility classes from board positions.
//
// Of is the single source of truth for zone membership: visibility
// filtering, drop legality and auto-arrange scoping all go through it.
// No other code may special-case the shared/private split.
package zone

import "corkboard-cli/internal/model"

// DefaultThreshold is the fraction of the board height at which the
// private zone begins when a workspace does not configure its own.
const DefaultThreshold = 0.6

// Of classifies a y coordinate on a board of the given height.
// Positions at or below threshold*height are private.
func Of(y, height, threshold float64) model.Zone {
	if height <= 0 {
		return model.ZoneShared
	}
	if threshold <= 0 {
		return model.ZonePrivate
	}
	if y >= threshold*height {
		return model.ZonePrivate
	}
	return model.ZoneShared
}

// OfItem classifies an item by its stored position.
func OfItem(it *model.Item, ws *model.Workspace) model.Zone {
	if it == nil || ws == nil {
		return model.ZoneShared
	}
	return Of(it.Position.Y, ws.Height, ws.ZoneThreshold)
}

// Boundary returns the y coordinate where the private zone starts.
func Boundary(ws *model.Workspace) float64 {
	if ws == nil {
		return 0
	}
	return ws.ZoneThreshold * ws.Height
}
