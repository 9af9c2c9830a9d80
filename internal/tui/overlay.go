package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// renderModal centers the already-styled card over base. Without a known
// terminal size the card is appended below base.
func renderModal(base, card string, width, height int) string {
	if width <= 0 || height <= 0 {
		return base + "\n\n" + card
	}
	canvas := fitCanvas(base, width, height)
	lines := splitToLines(card, 0)
	w := maxLineWidth(lines)
	h := len(lines)
	if w <= 0 || h <= 0 {
		return canvas
	}
	x := max(0, (width-w)/2)
	y := max(0, (height-h)/2)
	return overlayAt(canvas, lines, w, x, y, width, height)
}

func overlayAt(base string, card []string, cardWidth, x, y, width, height int) string {
	baseLines := splitToLines(base, height)
	for i, line := range card {
		row := y + i
		if row < 0 || row >= len(baseLines) {
			continue
		}
		target := padRightANSI(baseLines[row], width)
		left := ansi.Truncate(target, x, "")
		if lw := ansi.StringWidth(left); lw < x {
			left += strings.Repeat(" ", x-lw)
		}
		line = padRightANSI(line, cardWidth)
		right := dropColumns(target, x+cardWidth)
		baseLines[row] = left + line + right
	}
	return strings.Join(baseLines, "\n")
}

func fitCanvas(s string, width, height int) string {
	lines := splitToLines(s, height)
	for i := range lines {
		lines[i] = padRightANSI(lines[i], width)
	}
	return strings.Join(lines, "\n")
}

func splitToLines(s string, height int) []string {
	lines := strings.Split(s, "\n")
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	for height > 0 && len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

func maxLineWidth(lines []string) int {
	w := 0
	for _, l := range lines {
		w = max(w, lipgloss.Width(l))
	}
	return w
}

func dropColumns(s string, cols int) string {
	if cols <= 0 {
		return s
	}
	return strings.TrimPrefix(s, ansi.Truncate(s, cols, ""))
}

func padRightANSI(s string, width int) string {
	s = ansi.Truncate(s, width, "")
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func truncate(s string, width int) string {
	return ansi.Truncate(s, width, "…")
}
