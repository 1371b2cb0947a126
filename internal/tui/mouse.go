package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"corkboard-cli/internal/canvas"
)

func (m appModel) pointerEvent(msg tea.MouseMsg) canvas.PointerEvent {
	l := newLayout(m.width, m.height, m.eng.Workspace())
	x, y := l.boardPos(msg.X, msg.Y)
	btn := canvas.ButtonPrimary
	if msg.Button == tea.MouseButtonRight {
		btn = canvas.ButtonSecondary
	}
	return canvas.PointerEvent{
		X:      x,
		Y:      y,
		Button: btn,
		Modifiers: canvas.Modifiers{
			Ctrl:  msg.Ctrl,
			Alt:   msg.Alt,
			Shift: msg.Shift,
		},
	}
}

func (m appModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	l := newLayout(m.width, m.height, m.eng.Workspace())
	ev := m.pointerEvent(msg)

	// An open context menu captures the next press: a click on an entry
	// runs it, anywhere else dismisses.
	if len(m.menu) > 0 {
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		if idx, ok := m.menuHit(msg.X, msg.Y); ok {
			return m.runMenuEntry(m.menu[idx])
		}
		m.closeMenu()
		return m, nil
	}

	if m.preview != "" {
		if msg.Action == tea.MouseActionPress {
			m.preview = ""
		}
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			if !l.inContent(msg.Y, m.height) {
				return m, nil
			}
			// A press on a folder window row starts a window drag; the
			// engine handles extraction on release outside the window.
			if childID, ok := m.windowRowHit(msg.X, msg.Y); ok {
				_ = m.eng.BeginWindowDrag(childID, ev)
				return m, nil
			}
			m.eng.PointerDown(ev)
			return m, nil
		case tea.MouseButtonRight:
			if !l.inContent(msg.Y, m.height) {
				return m, nil
			}
			m.menu = m.eng.ContextMenu(ev)
			m.menuCol = msg.X
			m.menuRow = msg.Y - l.top
			m.menuIdx = 0
			return m, nil
		}
		return m, nil

	case tea.MouseActionMotion:
		m.eng.PointerMove(ev)
		return m, nil

	case tea.MouseActionRelease:
		if msg.Button == tea.MouseButtonLeft || msg.Button == tea.MouseButtonNone {
			m.eng.PointerUp(context.Background(), ev)
		}
		return m, nil
	}
	return m, nil
}

// menuHit maps a terminal cell to a context menu entry index.
func (m appModel) menuHit(col, row int) (int, bool) {
	l := newLayout(m.width, m.height, m.eng.Workspace())
	mc, mr, mw := m.menuBox(l)
	idx := row - l.top - mr
	if col < mc || col >= mc+mw || idx < 0 || idx >= len(m.menu) {
		return 0, false
	}
	return idx, true
}

// windowRowHit maps a terminal cell to a folder window child row.
func (m appModel) windowRowHit(col, row int) (string, bool) {
	w := m.eng.Window()
	if w == nil {
		return "", false
	}
	l := newLayout(m.width, m.height, m.eng.Workspace())
	children := m.eng.WindowChildren()
	wc, wr, ww := m.windowBox(l, len(children))
	idx := row - l.top - wr - 2 // frame + title rows
	if col < wc || col >= wc+ww || idx < 0 || idx >= len(children) {
		return "", false
	}
	return children[idx].ID, true
}
