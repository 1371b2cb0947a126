package cli

import (
	"context"

	"github.com/spf13/cobra"

	"corkboard-cli/internal/access"
	"corkboard-cli/internal/model"
	"corkboard-cli/internal/store"
	"corkboard-cli/internal/zone"
)

func newFoldersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Create folders and inspect their contents",
	}
	cmd.AddCommand(newFoldersCreateCmd(app))
	cmd.AddCommand(newFoldersShowCmd(app))
	return cmd
}

func newFoldersCreateCmd(app *App) *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder on the board",
		Args:  cobra.ExactArgs(1),
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
			if err := requirePlacement(ctx, db, app, ws, access.ActionCreateFolder, y); err != nil {
				return writeErr(cmd, err)
			}
			it, err := db.CreateFolder(ctx, ws.ID, args[0], x, y, actorID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": it})
		},
	}
	cmd.Flags().Float64Var(&x, "x", 100, "Board x position")
	cmd.Flags().Float64Var(&y, "y", 100, "Board y position")
	return cmd
}

func newFoldersShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <folder-id>",
		Short: "Show a folder and the files inside it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			db, _, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			folder, err := db.Item(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ws, err := db.Workspace(ctx, folder.WorkspaceID)
			if err != nil {
				return writeErr(cmd, err)
			}
			grant, err := db.ResolveAccess(ctx, app.ActorID, ws.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if grant.IsGuest && zone.OfItem(folder, ws) == model.ZonePrivate {
				// Guests never see private items; report them as absent.
				return writeErr(cmd, store.NotFoundError{Kind: "item", ID: folder.ID})
			}
			items, err := db.ListItemsByWorkspace(ctx, folder.WorkspaceID)
			if err != nil {
				return writeErr(cmd, err)
			}
			items = access.VisibleItems(items, grant, ws)
			var children []model.Item
			for _, it := range items {
				if it.ParentFolderID != nil && *it.ParentFolderID == folder.ID {
					children = append(children, it)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"folder": folder, "children": children}})
		},
	}
	return cmd
}
