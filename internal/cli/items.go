package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"corkboard-cli/internal/access"
	"corkboard-cli/internal/model"
	"corkboard-cli/internal/store"
	"corkboard-cli/internal/zone"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List and mutate board items",
	}
	cmd.AddCommand(newItemsListCmd(app))
	cmd.AddCommand(newItemsAddCmd(app))
	cmd.AddCommand(newItemsMoveCmd(app))
	cmd.AddCommand(newItemsRenameCmd(app))
	cmd.AddCommand(newItemsRmCmd(app))
	cmd.AddCommand(newItemsFileCmd(app))
	return cmd
}

// itemRow is the list output shape: the stored item plus its derived zone.
type itemRow struct {
	model.Item
	Zone model.Zone `json:"zone"`
}

func newItemsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the items visible to the actor",
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
			grant, err := db.ResolveAccess(ctx, app.ActorID, ws.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			items, err := db.ListItemsByWorkspace(ctx, ws.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			items = access.VisibleItems(items, grant, ws)

			rows := make([]itemRow, 0, len(items))
			for _, it := range items {
				rows = append(rows, itemRow{Item: it, Zone: zone.OfItem(&it, ws)})
			}
			return writeOut(cmd, app, map[string]any{"data": rows, "grant": grant})
		},
	}
	return cmd
}

func newItemsAddCmd(app *App) *cobra.Command {
	var (
		kind string
		x    float64
		y    float64
		size int64
		mime string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a document or file record to the board",
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

			var it *model.Item
			switch model.ItemKind(strings.TrimSpace(kind)) {
			case model.ItemKindDocument:
				it, err = db.CreateDocument(ctx, ws.ID, args[0], x, y, actorID)
			case model.ItemKindFile:
				it, err = db.CreateFile(ctx, ws.ID, args[0], x, y, actorID, size, mime)
			default:
				return writeErr(cmd, store.InvalidInputError{Reason: "kind must be document or file (use `corkboard folders create` for folders)"})
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": it})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "document", "Item kind (document|file)")
	cmd.Flags().Float64Var(&x, "x", 100, "Board x position")
	cmd.Flags().Float64Var(&y, "y", 100, "Board y position")
	cmd.Flags().Int64Var(&size, "size", 0, "File size in bytes (kind=file)")
	cmd.Flags().StringVar(&mime, "mime", "", "MIME type (kind=file)")
	return cmd
}

func newItemsMoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <item-id> <x> <y>",
		Short: "Reposition an item on the board",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return writeErr(cmd, store.InvalidInputError{Reason: "x must be a number"})
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return writeErr(cmd, store.InvalidInputError{Reason: "y must be a number"})
			}

			ctx := context.Background()
			db, _, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			it, ws, grant, err := authorizeItem(ctx, db, app, access.ActionMoveItem, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !access.CanPlace(grant, it.Position.Y, y, ws) {
				return writeErr(cmd, permissionError("guests cannot move items across the zone boundary"))
			}
			if err := db.UpdateItemPosition(ctx, it.ID, x, y); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": it.ID, "x": x, "y": y, "zone": zone.Of(y, ws.Height, ws.ZoneThreshold)}})
		},
	}
	return cmd
}

func newItemsRenameCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <item-id> <name>",
		Short: "Rename an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			db, _, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			it, _, _, err := authorizeItem(ctx, db, app, access.ActionRenameItem, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := db.RenameItem(ctx, it.ID, args[1]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"id": it.ID, "name": strings.TrimSpace(args[1])}})
		},
	}
	return cmd
}

func newItemsRmCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Delete an item (folder children return to the board)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			db, _, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			it, _, _, err := authorizeItem(ctx, db, app, access.ActionDeleteItem, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := db.DeleteItem(ctx, it.ID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"deleted": it.ID}})
		},
	}
	return cmd
}

func newItemsFileCmd(app *App) *cobra.Command {
	var (
		into    string
		extract bool
	)
	cmd := &cobra.Command{
		Use:   "file <item-id>",
		Short: "Move a file into a folder, or extract it back to the board",
		Example: strings.TrimSpace(`
corkboard items file item-ab3k9f2x --into item-f0ldr123
corkboard items file item-ab3k9f2x --extract
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			db, _, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			it, _, _, err := authorizeItem(ctx, db, app, access.ActionMoveItem, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			var folderID *string
			switch {
			case extract:
				folderID = nil
			case strings.TrimSpace(into) != "":
				v := strings.TrimSpace(into)
				folderID = &v
			default:
				return writeErr(cmd, store.InvalidInputError{Reason: "pass --into <folder-id> or --extract"})
			}
			if err := db.MoveFileToFolder(ctx, it.ID, folderID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": it.ID, "parentFolderId": folderID}})
		},
	}
	cmd.Flags().StringVar(&into, "into", "", "Destination folder id")
	cmd.Flags().BoolVar(&extract, "extract", false, "Extract the file back onto the board")
	return cmd
}
