package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"corkboard-cli/internal/model"
	"corkboard-cli/internal/store"
	"corkboard-cli/internal/zone"
)

func newInitCmd(app *App) *cobra.Command {
	var (
		name      string
		width     float64
		height    float64
		threshold float64
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize local storage and create the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := currentActorID(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := context.Background()
			db, s, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			ws, err := db.DefaultWorkspace(ctx)
			if store.IsNotFound(err) {
				ws, err = db.CreateWorkspace(ctx, name, width, height, threshold)
			}
			if err != nil {
				return writeErr(cmd, err)
			}

			// The initializing actor owns the board.
			if err := db.AddMember(ctx, ws.ID, actorID, model.RoleOwner, false); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":        s.Dir,
					"sqlitePath": filepath.Join(s.Dir, "board.sqlite"),
					"workspace":  ws,
					"owner":      actorID,
				},
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "corkboard", "Board name")
	cmd.Flags().Float64Var(&width, "width", 1600, "Board width in board units")
	cmd.Flags().Float64Var(&height, "height", 1000, "Board height in board units")
	cmd.Flags().Float64Var(&threshold, "threshold", zone.DefaultThreshold, "Fraction of height where the private zone begins")
	return cmd
}
