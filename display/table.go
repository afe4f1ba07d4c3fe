// Package display renders workflow progress for humans: Markdown tables,
// styled terminal sections and tool-call transcripts.
package display

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// MarkdownTable renders rows as a GitHub-flavoured Markdown table.
// Rows shorter than headers are padded with empty cells.
func MarkdownTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	padded := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) < len(headers) {
			r := make([]string, len(headers))
			copy(r, row)
			row = r
		}
		padded[i] = row[:len(headers)]
	}

	t := table.New().
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
		Border(lipgloss.MarkdownBorder()).
		BorderTop(false).
		BorderBottom(false).
		Headers(headers...).
		Rows(padded...)
	return t.String()
}
