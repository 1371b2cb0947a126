package tui

import (
	"strings"

	"corkboard-cli/internal/model"
	"corkboard-cli/internal/zone"
)

// layout maps between terminal cells and board coordinates. The board
// always fills the content area (everything between the title bar and the
// status bar), so the horizontal and vertical scales differ.
type layout struct {
	cols int // content columns
	rows int // content rows
	top  int // rows of chrome above the content area
	ws   *model.Workspace
}

func newLayout(width, height int, ws *model.Workspace) layout {
	cols := width
	rows := height - 2 // title bar + status bar
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return layout{cols: cols, rows: rows, top: 1, ws: ws}
}

func (l layout) cellW() float64 { return l.ws.Width / float64(l.cols) }
func (l layout) cellH() float64 { return l.ws.Height / float64(l.rows) }

// boardPos converts a terminal cell to board coordinates, using the cell
// center so clicks land inside the cell they visually cover.
func (l layout) boardPos(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * l.cellW(), (float64(row-l.top) + 0.5) * l.cellH()
}

func (l layout) col(x float64) int {
	c := int(x / l.cellW())
	if c < 0 {
		c = 0
	}
	if c >= l.cols {
		c = l.cols - 1
	}
	return c
}

func (l layout) row(y float64) int {
	r := int(y / l.cellH())
	if r < 0 {
		r = 0
	}
	if r >= l.rows {
		r = l.rows - 1
	}
	return r
}

// boundaryRow is the content row on which the shared/private separator is
// drawn.
func (l layout) boundaryRow() int {
	return l.row(zone.Boundary(l.ws))
}

// inContent reports whether a terminal row falls inside the board area.
func (l layout) inContent(termRow, height int) bool {
	return termRow >= l.top && termRow < l.top+l.rows && termRow < height-1
}

type screenCell struct {
	r  rune
	st cellStyle
}

// grid is the board draw buffer. Overlays draw over earlier content by
// plain overwrite, so draw order is z order.
type grid struct {
	w, h  int
	cells [][]screenCell
}

func newGrid(w, h int) *grid {
	cells := make([][]screenCell, h)
	for i := range cells {
		row := make([]screenCell, w)
		for j := range row {
			row[j] = screenCell{r: ' ', st: cellBlank}
		}
		cells[i] = row
	}
	return &grid{w: w, h: h, cells: cells}
}

func (g *grid) set(col, row int, r rune, st cellStyle) {
	if row < 0 || row >= g.h || col < 0 || col >= g.w {
		return
	}
	g.cells[row][col] = screenCell{r: r, st: st}
}

func (g *grid) text(col, row int, s string, st cellStyle) {
	for _, r := range s {
		g.set(col, row, r, st)
		col++
	}
}

func (g *grid) hline(col, row, width int, r rune, st cellStyle) {
	for i := 0; i < width; i++ {
		g.set(col+i, row, r, st)
	}
}

// render flattens the buffer into styled terminal rows, grouping runs of
// equal style to keep the escape-sequence volume down.
func (g *grid) render() []string {
	out := make([]string, g.h)
	var b strings.Builder
	var run strings.Builder
	for row := 0; row < g.h; row++ {
		b.Reset()
		run.Reset()
		cur := g.cells[row][0].st
		for col := 0; col < g.w; col++ {
			c := g.cells[row][col]
			if c.st != cur {
				b.WriteString(styleFor(cur).Render(run.String()))
				run.Reset()
				cur = c.st
			}
			run.WriteRune(c.r)
		}
		b.WriteString(styleFor(cur).Render(run.String()))
		out[row] = b.String()
	}
	return out
}

// plain returns the unstyled buffer contents, one string per row. Used by
// tests to assert placement without parsing escape sequences.
func (g *grid) plain() []string {
	out := make([]string, g.h)
	for row := 0; row < g.h; row++ {
		var b strings.Builder
		for col := 0; col < g.w; col++ {
			b.WriteRune(g.cells[row][col].r)
		}
		out[row] = b.String()
	}
	return out
}
