package cli

import (
	"context"

	"github.com/spf13/cobra"

	"corkboard-cli/internal/model"
	"corkboard-cli/internal/zone"
)

func newBoardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the board and its zone layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			db, _, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			ws, err := resolveWorkspace(ctx, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			items, err := db.ListItemsByWorkspace(ctx, ws.ID)
			if err != nil {
				return writeErr(cmd, err)
			}

			counts := map[string]int{}
			for i := range items {
				it := &items[i]
				if it.InFolder() {
					counts["filed"]++
					continue
				}
				counts[string(zone.OfItem(it, ws))]++
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"workspace": ws,
					"boundaryY": zone.Boundary(ws),
					"counts":    counts,
				},
			})
		},
	}
	return cmd
}

func newArrangeCmd(app *App) *cobra.Command {
	var zoneName string
	var atY float64
	cmd := &cobra.Command{
		Use:   "arrange",
		Short: "Pack a zone's items into the reading-order grid (owner only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			actorID, err := currentActorID(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			db, _, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			ws, err := resolveWorkspace(ctx, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			grant, err := db.ResolveAccess(ctx, actorID, ws.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if grant.Role != model.RoleOwner {
				return writeErr(cmd, permissionError("auto-arrange is owner only"))
			}

			target := model.ZoneShared
			if zoneName == "private" {
				target = model.ZonePrivate
			}
			if cmd.Flags().Changed("at-y") {
				target = zone.Of(atY, ws.Height, ws.ZoneThreshold)
			}
			items, err := db.ListItemsByWorkspace(ctx, ws.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			placements := zone.Arrange(items, target, ws, zone.DefaultGrid())
			for _, p := range placements {
				if err := db.UpdateItemPosition(ctx, p.ItemID, p.Position.X, p.Position.Y); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"zone": target, "moved": len(placements)}})
		},
	}
	cmd.Flags().StringVar(&zoneName, "zone", "shared", "Zone to arrange (shared|private)")
	cmd.Flags().Float64Var(&atY, "at-y", 0, "Arrange the zone containing this board y coordinate")
	return cmd
}
