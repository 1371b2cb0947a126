package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"corkboard-cli/internal/canvas"
	"corkboard-cli/internal/model"
	"corkboard-cli/internal/zone"
)

func (m appModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading board..."
	}
	if m.preview != "" {
		return m.preview
	}

	l := newLayout(m.width, m.height, m.eng.Workspace())
	g := m.drawBoard(l)

	var b strings.Builder
	b.WriteString(m.titleBar())
	b.WriteString("\n")
	for _, row := range g.render() {
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString(m.statusBar())
	return b.String()
}

func (m appModel) titleBar() string {
	ws := m.eng.Workspace()
	grant := m.eng.Grant()
	role := string(grant.Role)
	if grant.IsGuest {
		role += " (guest)"
	}
	left := titleStyle.Render(ws.Name) + "  " + roleStyle.Render(role)
	right := mutedStyle.Render(m.eng.Mode().String())
	pad := m.width - xansi.StringWidth(left) - xansi.StringWidth(right)
	if pad < 1 {
		pad = 1
	}
	line := left + strings.Repeat(" ", pad) + right
	if xansi.StringWidth(line) > m.width {
		line = xansi.Cut(line, 0, m.width) + "\x1b[0m"
	}
	return line
}

func (m appModel) statusBar() string {
	if m.prompt != promptNone {
		label := "rename: "
		if m.prompt == promptNewFolder {
			label = "new folder: "
		}
		return promptStyle.Render(label) + m.input.View()
	}
	if m.status != "" {
		st := mutedStyle
		switch m.statusLevel {
		case canvas.NoticeWarn:
			st = warnStyle
		case canvas.NoticeError:
			st = errorStyle
		}
		return st.Render(truncate(m.status, m.width))
	}
	hint := "click: select  drag: move  right-click: menu  n: new folder  r: rename  d: delete  a/A: arrange  q: quit"
	return faintIfDark(mutedStyle).Render(truncate(hint, m.width))
}

// drawBoard renders the whole content area into a cell buffer: zone
// separator first, then items, then the transient layers on top.
func (m appModel) drawBoard(l layout) *grid {
	g := newGrid(l.cols, l.rows)
	ws := m.eng.Workspace()

	br := l.boundaryRow()
	g.hline(0, br, l.cols, '┄', cellBoundary)
	g.text(1, br, "┄ private ", cellBoundary)

	drag := m.eng.Drag()
	for i := range m.eng.Items() {
		it := &m.eng.Items()[i]
		if it.InFolder() {
			continue
		}
		if drag != nil && drag.ItemID == it.ID {
			continue // drawn as the drag ghost below
		}
		st := cellItem
		if zone.OfItem(it, ws) == model.ZonePrivate {
			st = cellItemPrivate
		}
		if m.eng.Selected(it.ID) {
			st = cellSelected
		}
		g.text(l.col(it.Position.X), l.row(it.Position.Y), itemLabel(it), st)
	}

	if x1, y1, x2, y2, ok := m.eng.SelectionRect(); ok {
		m.drawRect(g, l, x1, y1, x2, y2)
	}

	if drag != nil {
		m.drawDragGhost(g, l, drag)
	}

	if w := m.eng.Window(); w != nil {
		m.drawWindow(g, l, w)
	}

	if len(m.menu) > 0 {
		m.drawMenu(g, l)
	}
	return g
}

func (m appModel) drawRect(g *grid, l layout, x1, y1, x2, y2 float64) {
	c1, r1 := l.col(x1), l.row(y1)
	c2, r2 := l.col(x2), l.row(y2)
	for c := c1; c <= c2; c++ {
		g.set(c, r1, '·', cellRect)
		g.set(c, r2, '·', cellRect)
	}
	for r := r1; r <= r2; r++ {
		g.set(c1, r, '·', cellRect)
		g.set(c2, r, '·', cellRect)
	}
}

func (m appModel) drawDragGhost(g *grid, l layout, drag *canvas.DragSession) {
	it := m.itemByID(drag.ItemID)
	if it == nil {
		return
	}
	x := drag.Current.X - drag.Offset.X
	y := drag.Current.Y - drag.Offset.Y
	label := itemLabel(it)
	if drag.Target.Kind == canvas.DropFolder {
		label += " → ▣"
	}
	g.text(l.col(x), l.row(y), label, cellDrag)
}

// windowBox computes the folder window geometry: anchored at the folder's
// cell, clamped to the content area.
func (m appModel) windowBox(l layout, childCount int) (col, row, width int) {
	w := m.eng.Window()
	width = 26
	col = l.col(w.Anchor.X)
	row = l.row(w.Anchor.Y) + 1
	if col+width > l.cols {
		col = l.cols - width
	}
	if col < 0 {
		col = 0
	}
	height := childCount + 3
	if row+height > l.rows {
		row = l.rows - height
	}
	if row < 0 {
		row = 0
	}
	return col, row, width
}

func (m appModel) drawWindow(g *grid, l layout, w *canvas.FolderWindow) {
	folder := m.itemByID(w.FolderID)
	if folder == nil {
		return
	}
	children := m.eng.WindowChildren()
	col, row, width := m.windowBox(l, len(children))
	height := len(children) + 3

	for r := 0; r < height; r++ {
		g.hline(col, row+r, width, ' ', cellWindowRow)
	}
	g.set(col, row, '┌', cellWindowFrame)
	g.set(col+width-1, row, '┐', cellWindowFrame)
	g.set(col, row+height-1, '└', cellWindowFrame)
	g.set(col+width-1, row+height-1, '┘', cellWindowFrame)
	for c := col + 1; c < col+width-1; c++ {
		g.set(c, row, '─', cellWindowFrame)
		g.set(c, row+height-1, '─', cellWindowFrame)
	}
	for r := row + 1; r < row+height-1; r++ {
		g.set(col, r, '│', cellWindowFrame)
		g.set(col+width-1, r, '│', cellWindowFrame)
	}

	title := truncate("▣ "+folder.Name, width-4)
	g.text(col+2, row+1, title, cellWindowTitle)

	if len(children) == 0 {
		g.text(col+2, row+2, "(empty)", cellWindowRow)
		return
	}
	for i := range children {
		st := cellWindowRow
		if i == m.windowIdx {
			st = cellWindowRowSel
		}
		label := truncate(kindGlyph(children[i].Kind)+" "+children[i].Name, width-4)
		g.text(col+2, row+2+i, label, st)
	}
}

// menuBox computes the context menu geometry, clamped to the content area.
func (m appModel) menuBox(l layout) (col, row, width int) {
	width = 4
	for _, mi := range m.menu {
		if w := xansi.StringWidth(mi.Label) + 2; w > width {
			width = w
		}
	}
	col, row = m.menuCol, m.menuRow
	if col+width > l.cols {
		col = l.cols - width
	}
	if row+len(m.menu) > l.rows {
		row = l.rows - len(m.menu)
	}
	if col < 0 {
		col = 0
	}
	if row < 0 {
		row = 0
	}
	return col, row, width
}

func (m appModel) drawMenu(g *grid, l layout) {
	col, row, width := m.menuBox(l)
	for i, mi := range m.menu {
		st := cellMenuRow
		if i == m.menuIdx {
			st = cellMenuRowSel
		}
		g.hline(col, row+i, width, ' ', st)
		g.text(col+1, row+i, mi.Label, st)
	}
}

func (m appModel) itemByID(id string) *model.Item {
	items := m.eng.Items()
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

// renderPreview builds the full-screen preview shown when a document or
// file is opened from the board.
func (m appModel) renderPreview(ev canvas.Event) string {
	it := m.itemByID(ev.ItemID)
	if it == nil {
		return ""
	}
	var md strings.Builder
	switch ev.Kind {
	case canvas.EventOpenFilePreview:
		mime := "unknown type"
		if it.MimeType != nil {
			mime = *it.MimeType
		}
		fmt.Fprintf(&md, "# %s\n\n", it.Name)
		fmt.Fprintf(&md, "- **Kind:** file\n- **Type:** %s\n- **Size:** %s\n", mime, fileSizeLabel(it.FileSize))
		fmt.Fprintf(&md, "- **Uploaded:** %s\n", it.CreatedAt.Format("2006-01-02 15:04"))
		md.WriteString("\nFile contents open in your viewer of choice; this board only tracks placement.\n")
	case canvas.EventOpenDocumentEditor:
		fmt.Fprintf(&md, "# %s\n\n", it.Name)
		md.WriteString("*Draft document.* Editing the body happens in the web editor; here you can move, rename, and arrange it.\n\n")
		fmt.Fprintf(&md, "- **Created:** %s\n- **Updated:** %s\n",
			it.CreatedAt.Format("2006-01-02 15:04"), it.UpdatedAt.Format("2006-01-02 15:04"))
	default:
		return ""
	}

	body := renderMarkdown(md.String(), min(m.width-4, 80))
	footer := faintIfDark(mutedStyle).Render("esc to close")
	content := body + "\n\n" + footer
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
