package cli

import (
	"github.com/spf13/cobra"

	"corkboard-cli/internal/web"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sync server (JSON API + websocket change feed)",
		Long: `Serves the board over HTTP so multiple clients stay in sync:
a JSON API for item operations and a websocket feed of change frames.
Attach a TUI with --remote pointing at this server's base URL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()
			srv := web.NewServer(web.ServerConfig{Addr: addr}, db)
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7464", "Listen address")
	return cmd
}
