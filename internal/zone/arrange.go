package zone

import (
	"sort"

	"corkboard-cli/internal/model"
)

// Grid describes the auto-arrange layout: items are packed row-major from
// a fixed origin inside the target zone, wrapping after PerRow columns.
type Grid struct {
	OriginX  float64
	OriginY  float64
	SpacingX float64
	SpacingY float64
	PerRow   int
}

func DefaultGrid() Grid {
	return Grid{
		OriginX:  32,
		OriginY:  32,
		SpacingX: 112,
		SpacingY: 96,
		PerRow:   6,
	}
}

// Placement is one arranged position, keyed by item id.
type Placement struct {
	ItemID   string
	Position model.Position
}

// Arrange lays out the items of one zone deterministically. Items outside
// the target zone, items parked inside a folder, and nil inputs are left
// untouched. The result is stable for an unchanged item set: items are
// ordered by name (ties broken by id) before packing, so invoking Arrange
// twice in a row yields identical placements.
func Arrange(items []model.Item, target model.Zone, ws *model.Workspace, g Grid) []Placement {
	if ws == nil || g.PerRow <= 0 {
		return nil
	}

	scoped := make([]model.Item, 0, len(items))
	for _, it := range items {
		if it.InFolder() {
			continue
		}
		if Of(it.Position.Y, ws.Height, ws.ZoneThreshold) != target {
			continue
		}
		scoped = append(scoped, it)
	}
	sort.Slice(scoped, func(i, j int) bool {
		if scoped[i].Name != scoped[j].Name {
			return scoped[i].Name < scoped[j].Name
		}
		return scoped[i].ID < scoped[j].ID
	})

	top := 0.0
	if target == model.ZonePrivate {
		top = Boundary(ws)
	}

	out := make([]Placement, 0, len(scoped))
	for i, it := range scoped {
		col := i % g.PerRow
		row := i / g.PerRow
		out = append(out, Placement{
			ItemID: it.ID,
			Position: model.Position{
				X: g.OriginX + float64(col)*g.SpacingX,
				Y: top + g.OriginY + float64(row)*g.SpacingY,
			},
		})
	}
	return out
}
