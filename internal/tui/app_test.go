package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"corkboard-cli/internal/canvas"
	"corkboard-cli/internal/model"
	"corkboard-cli/internal/store"
)

func newTestApp(t *testing.T) (appModel, *store.DB, *model.Workspace) {
	t.Helper()
	s := store.Store{Dir: t.TempDir()}
	db, err := s.Open(context.Background())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ws, err := db.CreateWorkspace(context.Background(), "board", 1600, 1000, 0.6)
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	eng, err := canvas.New(canvas.Config{
		Workspace: ws,
		CallerID:  "user-a",
		Grant:     model.AccessGrant{Role: model.RoleOwner},
		Store:     db,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(eng.Close)

	m := newAppModel(eng)
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 27})
	return resized.(appModel), db, ws
}

func reload(t *testing.T, m appModel) appModel {
	t.Helper()
	if err := m.eng.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	return m
}

func TestClickSelectsItem(t *testing.T) {
	m, db, ws := newTestApp(t)
	it, err := db.CreateDocument(context.Background(), ws.ID, "notes", 200, 80, "user-a")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	m = reload(t, m)

	// (200,80) board units sit on cell (10,2); click its glyph.
	press := tea.MouseMsg{X: 10, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	release := tea.MouseMsg{X: 10, Y: 3, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
	next, _ := m.Update(press)
	m = next.(appModel)
	next, _ = m.Update(release)
	m = next.(appModel)

	if !m.eng.Selected(it.ID) {
		t.Fatalf("expected item selected after click, selection = %v", m.eng.Selection())
	}
}

func TestBoardViewPlacesItemAndBoundary(t *testing.T) {
	m, db, ws := newTestApp(t)
	if _, err := db.CreateDocument(context.Background(), ws.ID, "notes", 200, 80, "user-a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	m = reload(t, m)

	l := newLayout(m.width, m.height, ws)
	plain := m.drawBoard(l).plain()

	if !strings.Contains(plain[2], "▢ notes") {
		t.Fatalf("expected document label on row 2, got %q", plain[2])
	}
	if !strings.Contains(plain[15], "private") {
		t.Fatalf("expected zone separator label on row 15, got %q", plain[15])
	}
}

func TestRightClickOpensFilteredMenu(t *testing.T) {
	m, db, ws := newTestApp(t)
	if _, err := db.CreateDocument(context.Background(), ws.ID, "notes", 200, 80, "user-a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	m = reload(t, m)

	next, _ := m.Update(tea.MouseMsg{X: 10, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	m = next.(appModel)

	if len(m.menu) == 0 {
		t.Fatalf("expected a context menu after right-click")
	}
	var actions []canvas.MenuAction
	for _, mi := range m.menu {
		actions = append(actions, mi.Action)
	}
	if actions[0] != canvas.MenuEditDocument {
		t.Fatalf("expected document open entry first, got %v", actions)
	}
	for _, a := range actions {
		if a == canvas.MenuOpenFolder || a == canvas.MenuPreviewFile {
			t.Fatalf("kind-foreign menu entry leaked through: %v", actions)
		}
	}

	// The menu renders at the clicked cell.
	l := newLayout(m.width, m.height, ws)
	plain := m.drawBoard(l).plain()
	if !strings.Contains(strings.Join(plain, "\n"), m.menu[0].Label) {
		t.Fatalf("menu label %q not rendered", m.menu[0].Label)
	}
}

func TestEscapeClosesFolderWindow(t *testing.T) {
	m, db, ws := newTestApp(t)
	folder, err := db.CreateFolder(context.Background(), ws.ID, "reports", 400, 200, "user-a")
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	m = reload(t, m)

	m.eng.Open(folder.ID)
	if m.eng.Window() == nil {
		t.Fatalf("expected folder window after open")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(appModel)
	if m.eng.Window() != nil {
		t.Fatalf("expected esc to close the folder window")
	}
}

func TestRenamePromptCommitsThroughMinibuffer(t *testing.T) {
	m, db, ws := newTestApp(t)
	it, err := db.CreateDocument(context.Background(), ws.ID, "draft", 200, 80, "user-a")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	m = reload(t, m)

	next, _ := m.beginRename(it.ID)
	m = next.(appModel)
	if m.prompt != promptRename {
		t.Fatalf("expected rename prompt, got %v", m.prompt)
	}
	if m.input.Value() != "draft" {
		t.Fatalf("expected input seeded with current name, got %q", m.input.Value())
	}

	m.input.SetValue("final draft")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(appModel)
	if m.prompt != promptNone {
		t.Fatalf("expected prompt closed after commit")
	}

	// The engine applies the rename optimistically.
	for _, cur := range m.eng.Items() {
		if cur.ID == it.ID && cur.Name != "final draft" {
			t.Fatalf("expected optimistic rename, got %q", cur.Name)
		}
	}
}
