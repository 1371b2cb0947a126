package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"corkboard-cli/internal/canvas"
	"corkboard-cli/internal/feed"
	"corkboard-cli/internal/model"
	"corkboard-cli/internal/store"
)

type Options struct {
	Workspace *model.Workspace
	CallerID  string
	// Remote is the base URL of a sync server. When set, change frames
	// arrive over its websocket; when empty, only this process's own
	// mutations trigger reconciliation.
	Remote string
}

func Run(db *store.DB, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()

	ctx := context.Background()

	grant, err := db.ResolveAccess(ctx, opts.CallerID, opts.Workspace.ID)
	if err != nil {
		return err
	}

	var fd canvas.Feed
	if opts.Remote != "" {
		remote, err := feed.DialRemote(opts.Remote, opts.Workspace.ID)
		if err != nil {
			return err
		}
		defer remote.Close()
		fd = remote
	} else {
		bc := feed.NewBroadcaster()
		db.SetChangeHook(bc.Publish)
		fd = bc
	}

	eng, err := canvas.New(canvas.Config{
		Workspace: opts.Workspace,
		CallerID:  opts.CallerID,
		Grant:     grant,
		Store:     db,
		Feed:      fd,
	})
	if err != nil {
		return err
	}
	defer eng.Close()
	if err := eng.Load(ctx); err != nil {
		return err
	}

	m := newAppModel(eng)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
