package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"corkboard-cli/internal/format"
	"corkboard-cli/internal/model"
	"corkboard-cli/internal/store"
	"corkboard-cli/internal/tui"
)

type App struct {
	Dir        string
	ActorID    string
	Remote     string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "corkboard",
		Short:        "Corkboard spatial canvas CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  corkboard

  # Scriptable commands
  corkboard items list
  corkboard items move item-ab3k9f2x 350 250

  # Run a sync server so multiple boards stay live
  corkboard serve --addr 127.0.0.1:7464
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("CORKBOARD_DIR", ""), "Path to the store dir (default: walk up for .corkboard)")
	cmd.PersistentFlags().StringVar(&app.ActorID, "actor", envOr("CORKBOARD_ACTOR", ""), "Caller user id; controls role and zone visibility")
	cmd.PersistentFlags().StringVar(&app.Remote, "remote", envOr("CORKBOARD_REMOTE", ""), "Base URL of a sync server to follow for live changes")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newFoldersCmd(app))
	cmd.AddCommand(newArrangeCmd(app))
	cmd.AddCommand(newMembersCmd(app))
	cmd.AddCommand(newServeCmd(app))
	return cmd
}

func runTUI(app *App) error {
	db, _, err := openDB(app)
	if err != nil {
		return err
	}
	defer db.Close()
	ws, err := db.DefaultWorkspace(context.Background())
	if err != nil {
		return err
	}
	return tui.Run(db, tui.Options{
		Workspace: ws,
		CallerID:  app.ActorID,
		Remote:    app.Remote,
	})
}

// openDB resolves the store dir (--dir, then upward discovery, then the
// home default) and opens the database.
func openDB(app *App) (*store.DB, store.Store, error) {
	dir := strings.TrimSpace(app.Dir)
	if dir == "" {
		if cwd, err := os.Getwd(); err == nil {
			if d, ok := store.DiscoverDir(cwd); ok {
				dir = d
			}
		}
	}
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, store.Store{}, err
		}
		dir = d
	}
	app.Dir = dir

	s := store.Store{Dir: dir}
	db, err := s.Open(context.Background())
	if err != nil {
		return nil, s, err
	}
	return db, s, nil
}

func currentActorID(app *App) (string, error) {
	if strings.TrimSpace(app.ActorID) != "" {
		return strings.TrimSpace(app.ActorID), nil
	}
	return "", errors.New("no actor set; pass --actor <user-id> or set CORKBOARD_ACTOR")
}

// resolveWorkspace loads the board every command operates on. Single-board
// stores are the common case, so the first workspace is the default.
func resolveWorkspace(ctx context.Context, db *store.DB) (*model.Workspace, error) {
	return db.DefaultWorkspace(ctx)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
