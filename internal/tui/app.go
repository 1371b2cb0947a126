package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"corkboard-cli/internal/canvas"
	"corkboard-cli/internal/model"
	"corkboard-cli/internal/zone"
)

// prompt identifies what the minibuffer input is for.
type prompt int

const (
	promptNone prompt = iota
	promptRename
	promptNewFolder
)

type appModel struct {
	eng *canvas.Engine

	width  int
	height int

	// Minibuffer input (rename, new folder). Inline editing on a cell
	// grid is unreadable at board scale, so text entry happens at the
	// bottom of the screen, emacs style.
	prompt      prompt
	promptForID string
	input       textinput.Model

	// Context menu state. Anchored to the cell that was right-clicked.
	menu    []canvas.MenuItem
	menuCol int
	menuRow int
	menuIdx int

	// Folder window row selection, for keyboard navigation.
	windowIdx int

	// Full-screen preview (file details or document body placeholder),
	// rendered through glamour.
	preview string

	status      string
	statusLevel canvas.NoticeLevel
	statusAt    time.Time
}

type noticeMsg canvas.Notice
type eventMsg canvas.Event
type changeMsg model.Change
type statusFadeMsg struct{ at time.Time }

const statusFadeDelay = 4 * time.Second

func newAppModel(eng *canvas.Engine) appModel {
	in := textinput.New()
	in.CharLimit = 120
	in.Prompt = ""
	return appModel{eng: eng, input: in}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.waitNotice(), m.waitEvent(), m.waitChange())
}

func (m appModel) waitNotice() tea.Cmd {
	ch := m.eng.Notices()
	return func() tea.Msg { return noticeMsg(<-ch) }
}

func (m appModel) waitEvent() tea.Cmd {
	ch := m.eng.Events()
	return func() tea.Msg { return eventMsg(<-ch) }
}

func (m appModel) waitChange() tea.Cmd {
	ch := m.eng.ChangeSignals()
	return func() tea.Msg { return changeMsg(<-ch) }
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case noticeMsg:
		m.status = msg.Message
		m.statusLevel = msg.Level
		m.statusAt = time.Now()
		at := m.statusAt
		fade := tea.Tick(statusFadeDelay, func(time.Time) tea.Msg { return statusFadeMsg{at: at} })
		return m, tea.Batch(m.waitNotice(), fade)

	case statusFadeMsg:
		// Newer notices restart the fade; only the latest one clears.
		if msg.at.Equal(m.statusAt) {
			m.status = ""
		}
		return m, nil

	case eventMsg:
		m.preview = m.renderPreview(canvas.Event(msg))
		return m, m.waitEvent()

	case changeMsg:
		// Change frames are triggers, not patches: refetch and reconcile.
		_ = m.eng.Reconcile(context.Background())
		return m, m.waitChange()
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Minibuffer input swallows everything except enter/esc.
	if m.prompt != promptNone {
		switch msg.String() {
		case "enter":
			return m.commitPrompt()
		case "esc":
			if m.prompt == promptRename {
				m.eng.CancelRename()
			}
			m.prompt = promptNone
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if len(m.menu) > 0 {
		switch msg.String() {
		case "up", "k":
			if m.menuIdx > 0 {
				m.menuIdx--
			}
			return m, nil
		case "down", "j":
			if m.menuIdx < len(m.menu)-1 {
				m.menuIdx++
			}
			return m, nil
		case "enter":
			return m.runMenuEntry(m.menu[m.menuIdx])
		case "esc":
			m.closeMenu()
			return m, nil
		}
		return m, nil
	}

	if m.preview != "" {
		switch msg.String() {
		case "esc", "q", "enter":
			m.preview = ""
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.eng.FlushPositions()
		return m, tea.Quit

	case "esc":
		if m.eng.Window() != nil {
			m.eng.CloseFolderWindow()
			m.windowIdx = 0
		}
		return m, nil

	case "n":
		m.prompt = promptNewFolder
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "r":
		ids := m.eng.Selection()
		if len(ids) != 1 {
			return m, nil
		}
		return m.beginRename(ids[0])

	case "d", "delete", "backspace":
		for _, id := range m.eng.Selection() {
			_ = m.eng.Delete(context.Background(), id)
		}
		return m, nil

	case "a":
		_ = m.eng.AutoArrange(context.Background(), 0)
		return m, nil

	case "A":
		_ = m.eng.AutoArrange(context.Background(), zone.Boundary(m.eng.Workspace()))
		return m, nil

	case "enter", "o":
		ids := m.eng.Selection()
		if len(ids) == 1 {
			m.eng.Open(ids[0])
		}
		return m, nil

	case "up", "k":
		if m.eng.Window() != nil && m.windowIdx > 0 {
			m.windowIdx--
		}
		return m, nil

	case "down", "j":
		if w := m.eng.Window(); w != nil {
			if m.windowIdx < len(m.eng.WindowChildren())-1 {
				m.windowIdx++
			}
		}
		return m, nil
	}
	return m, nil
}

func (m appModel) beginRename(itemID string) (tea.Model, tea.Cmd) {
	if err := m.eng.BeginRename(itemID); err != nil {
		return m, nil
	}
	m.prompt = promptRename
	m.promptForID = itemID
	m.input.SetValue(m.eng.Rename().Original)
	m.input.CursorEnd()
	m.input.Focus()
	return m, textinput.Blink
}

func (m appModel) commitPrompt() (tea.Model, tea.Cmd) {
	switch m.prompt {
	case promptRename:
		_ = m.eng.CommitRename(context.Background(), m.input.Value())
	case promptNewFolder:
		ws := m.eng.Workspace()
		// New folders land mid-shared-zone; auto-arrange tidies later.
		x := ws.Width / 2
		y := zone.Boundary(ws) / 2
		_, _ = m.eng.CreateFolder(context.Background(), m.input.Value(), x, y)
	}
	m.prompt = promptNone
	m.promptForID = ""
	m.input.Blur()
	return m, nil
}

func (m *appModel) closeMenu() {
	m.menu = nil
	m.menuIdx = 0
}

func (m appModel) runMenuEntry(mi canvas.MenuItem) (tea.Model, tea.Cmd) {
	m.closeMenu()
	switch mi.Action {
	case canvas.MenuOpenFolder, canvas.MenuEditDocument, canvas.MenuPreviewFile:
		m.eng.Open(mi.ItemID)
	case canvas.MenuRename:
		return m.beginRename(mi.ItemID)
	case canvas.MenuDelete:
		_ = m.eng.Delete(context.Background(), mi.ItemID)
	case canvas.MenuAutoArrange:
		y := 0.0
		if mi.Zone == model.ZonePrivate {
			y = zone.Boundary(m.eng.Workspace())
		}
		_ = m.eng.AutoArrange(context.Background(), y)
	}
	return m, nil
}
