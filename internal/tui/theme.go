package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal backgrounds,
// so everything routes through lipgloss.AdaptiveColor. "Faint" styling is
// only applied on dark backgrounds; faint text on light terminals often
// becomes illegible.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted    lipgloss.TerminalColor = ac("240", "243")
	colorAccent   lipgloss.TerminalColor = ac("27", "62") // blue
	colorAccentFg lipgloss.TerminalColor = ac("255", "235")

	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")

	colorPrivateFg  lipgloss.TerminalColor = ac("94", "179") // warm tint for the private zone
	colorBoundaryFg lipgloss.TerminalColor = ac("246", "240")

	colorWarnFg  lipgloss.TerminalColor = ac("130", "214")
	colorErrorFg lipgloss.TerminalColor = ac("160", "203")

	colorWindowBorder lipgloss.TerminalColor = ac("238", "250")
)

// cellStyle indexes the per-cell render styles of the board buffer. Rows
// are rendered as runs of equal style, see renderGrid.
type cellStyle uint8

const (
	cellBlank cellStyle = iota
	cellBoundary
	cellItem
	cellItemPrivate
	cellSelected
	cellDrag
	cellRect
	cellWindowFrame
	cellWindowTitle
	cellWindowRow
	cellWindowRowSel
	cellMenuRow
	cellMenuRowSel
)

func styleFor(st cellStyle) lipgloss.Style {
	switch st {
	case cellBoundary:
		return faintIfDark(lipgloss.NewStyle().Foreground(colorBoundaryFg))
	case cellItem:
		return lipgloss.NewStyle()
	case cellItemPrivate:
		return lipgloss.NewStyle().Foreground(colorPrivateFg)
	case cellSelected:
		return lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg).Bold(true)
	case cellDrag:
		return lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	case cellRect:
		return lipgloss.NewStyle().Foreground(colorAccent)
	case cellWindowFrame:
		return lipgloss.NewStyle().Foreground(colorWindowBorder)
	case cellWindowTitle:
		return lipgloss.NewStyle().Bold(true)
	case cellWindowRow:
		return lipgloss.NewStyle()
	case cellWindowRowSel, cellMenuRowSel:
		return lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg)
	case cellMenuRow:
		return lipgloss.NewStyle()
	default:
		return lipgloss.NewStyle()
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	roleStyle   = lipgloss.NewStyle().Foreground(colorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarnFg)
	errorStyle  = lipgloss.NewStyle().Foreground(colorErrorFg)
	promptStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
)
