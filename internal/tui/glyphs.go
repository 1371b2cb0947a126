package tui

import (
	"fmt"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"corkboard-cli/internal/model"
)

const labelMaxWidth = 14

func kindGlyph(k model.ItemKind) string {
	switch k {
	case model.ItemKindFolder:
		return "▣"
	case model.ItemKindFile:
		return "▤"
	case model.ItemKindDocument:
		return "▢"
	}
	return "•"
}

// itemLabel is the board representation of an item: glyph, name, and a
// child count badge on non-empty folders.
func itemLabel(it *model.Item) string {
	name := strings.TrimSpace(it.Name)
	if name == "" {
		name = "(unnamed)"
	}
	label := kindGlyph(it.Kind) + " " + name
	if it.Kind == model.ItemKindFolder && it.ChildCount > 0 {
		label += fmt.Sprintf(" (%d)", it.ChildCount)
	}
	return truncate(label, labelMaxWidth)
}

func truncate(s string, width int) string {
	if xansi.StringWidth(s) <= width {
		return s
	}
	return xansi.Cut(s, 0, width-1) + "…"
}

func fileSizeLabel(size *int64) string {
	if size == nil {
		return "unknown size"
	}
	n := *size
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
