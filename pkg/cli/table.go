package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Headers and success marks
	Dim     lipgloss.Color // Separators and info marks
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Warning: lipgloss.Color("#f0c000"),
	Error:   lipgloss.Color("#ff5f5f"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Rule   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Cell:   lipgloss.NewStyle(),
		Rule:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Table is tabular output, rendered for FormatTable.
type Table struct {
	Header []string
	Rows   [][]string

	// MaxCellWidth truncates wider cells. Zero means no limit.
	MaxCellWidth int
}

// Tabler is implemented by results that have a table form.
type Tabler interface {
	Table() Table
}

// Render renders the table with two spaces between columns.
func (t Table) Render(s Styles) string {
	cols := len(t.Header)
	for _, r := range t.Rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return ""
	}

	cell := func(row []string, i int) string {
		if i >= len(row) {
			return ""
		}
		text := row[i]
		if t.MaxCellWidth > 1 && lipgloss.Width(text) > t.MaxCellWidth {
			text = truncateString(text, t.MaxCellWidth-1) + "…"
		}
		return text
	}

	widths := make([]int, cols)
	for i := range cols {
		widths[i] = lipgloss.Width(cell(t.Header, i))
		for _, r := range t.Rows {
			widths[i] = max(widths[i], lipgloss.Width(cell(r, i)))
		}
	}

	line := func(row []string, st lipgloss.Style) string {
		parts := make([]string, cols)
		for i := range cols {
			text := cell(row, i)
			pad := ""
			if i < cols-1 {
				pad = strings.Repeat(" ", widths[i]-lipgloss.Width(text))
			}
			parts[i] = st.Render(text) + pad
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	var lines []string
	if len(t.Header) > 0 {
		lines = append(lines, line(t.Header, s.Header))
		total := 2 * (cols - 1)
		for _, w := range widths {
			total += w
		}
		lines = append(lines, s.Rule.Render(strings.Repeat("─", total)))
	}
	for _, r := range t.Rows {
		lines = append(lines, line(r, s.Cell))
	}
	return strings.Join(lines, "\n") + "\n"
}

// truncateString safely truncates a string to the given width,
// handling multi-byte characters correctly.
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	currentWidth := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if currentWidth+w > width {
			return string(runes[:i])
		}
		currentWidth += w
	}
	return s
}
