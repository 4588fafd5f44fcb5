package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"roseglass/internal/catalog"
)

const iconCellWidth = 20

// renderIconGrid lays the app icons out in rows sized to the terminal
// width. cursor selects the focused cell; -1 focuses nothing.
func renderIconGrid(apps []catalog.App, cursor, width int, st styleSet) string {
	if len(apps) == 0 {
		return st.hint.Render("No apps match.")
	}
	cols := width / iconCellWidth
	if cols < 1 {
		cols = 1
	}
	var rows []string
	for start := 0; start < len(apps); start += cols {
		end := start + cols
		if end > len(apps) {
			end = len(apps)
		}
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			label := iconLabel(apps[i])
			if i == cursor {
				cells = append(cells, st.iconFocus.Render(label))
			} else {
				cells = append(cells, st.iconCell.Render(label))
			}
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

// iconLabel pads icon and name to a fixed cell so rows align regardless of
// emoji and CJK widths.
func iconLabel(app catalog.App) string {
	text := app.Icon + " " + app.Name
	inner := iconCellWidth - 2
	if runewidth.StringWidth(text) > inner {
		text = runewidth.Truncate(text, inner, "…")
	}
	return runewidth.FillRight(text, inner)
}
