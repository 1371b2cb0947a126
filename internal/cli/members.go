package cli

import (
	"context"

	"github.com/spf13/cobra"

	"corkboard-cli/internal/model"
	"corkboard-cli/internal/store"
)

func newMembersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage who can see and edit the board",
	}
	cmd.AddCommand(newMembersAddCmd(app))
	cmd.AddCommand(newMembersListCmd(app))
	return cmd
}

func newMembersAddCmd(app *App) *cobra.Command {
	var (
		role  string
		guest bool
	)
	cmd := &cobra.Command{
		Use:   "add <user-id>",
		Short: "Add or update a board member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := model.Role(role)
			if !r.Valid() {
				return writeErr(cmd, store.InvalidInputError{Reason: "role must be owner, editor, or viewer"})
			}

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
				return writeErr(cmd, permissionError("only the owner manages membership"))
			}
			if err := db.AddMember(ctx, ws.ID, args[0], r, guest); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"userId": args[0], "role": r, "isGuest": guest}})
		},
	}
	cmd.Flags().StringVar(&role, "role", "viewer", "Member role (owner|editor|viewer)")
	cmd.Flags().BoolVar(&guest, "guest", false, "Mark the member as a guest (shared zone only)")
	return cmd
}

func newMembersListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List board members",
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
			members, err := db.ListMembers(ctx, ws.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": members})
		},
	}
	return cmd
}
