package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/custctl/internal/formatter"
	"github.com/desertthunder/custctl/internal/models"
)

// columnWeights splits the available width between [formatter.Headers].
var columnWeights = []int{4, 5, 3, 6, 4, 2}

const minColumnWidth = 6

func customerColumns(width int) []table.Column {
	total := 0
	for _, w := range columnWeights {
		total += w
	}
	if width <= 0 {
		width = 100
	}
	// two cells of padding per column
	usable := max(width-2*len(columnWeights), minColumnWidth*len(columnWeights))

	cols := make([]table.Column, len(formatter.Headers))
	for i, title := range formatter.Headers {
		cols[i] = table.Column{Title: title, Width: max(usable*columnWeights[i]/total, minColumnWidth)}
	}
	return cols
}

func customerRows(customers []models.Customer) []table.Row {
	rows := make([]table.Row, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, table.Row(formatter.CustomerRow(c)))
	}
	return rows
}

func newCustomerTable() table.Model {
	t := table.New(
		table.WithColumns(customerColumns(0)),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#7D56F4")).
		Bold(false)
	t.SetStyles(s)
	return t
}
