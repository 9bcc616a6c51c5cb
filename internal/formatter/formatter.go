// package formatter renders customer pages for the terminal and exports them to CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/custctl/internal/models"
	"github.com/desertthunder/custctl/internal/shared"
)

// EmptyMessage fills the single placeholder row of an empty listing.
const EmptyMessage = "There is no data"

// Headers are the listing columns, in display order.
var Headers = []string{"Name", "Email", "Phone", "Address", "Notes", "Active"}

// Format names accepted by [Export].
const (
	FormatTable    = "table"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	emptyStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#626262"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Padding(0, 1)
	inactiveText = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Padding(0, 1)
)

// CustomerRow is the display row for c.
func CustomerRow(c models.Customer) []string {
	return []string{c.Name, c.Email, c.Phone, c.Address.String(), c.Notes, c.ActiveLabel()}
}

// CustomerRows is one row per customer, or a single placeholder row when there are none.
func CustomerRows(customers []models.Customer) [][]string {
	if len(customers) == 0 {
		return [][]string{{EmptyMessage}}
	}

	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, CustomerRow(c))
	}
	return rows
}

// RenderTable draws the customers as a bordered table. An empty list renders the header and
// [EmptyMessage] centered across the full table width.
func RenderTable(customers []models.Customer) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(Headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == len(Headers)-1 && row >= 0 && row < len(customers):
				if customers[row].IsActive {
					return activeStyle
				}
				return inactiveText
			default:
				return cellStyle
			}
		})

	if len(customers) == 0 {
		rendered := t.String()
		width := lipgloss.Width(rendered)
		return rendered + "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, emptyStyle.Render(EmptyMessage))
	}

	for _, row := range CustomerRows(customers) {
		t.Row(row...)
	}
	return t.String()
}

// PageSummary is the footer under the table, e.g. "Page 2 of 5 · 2024-01-05 → 2024-01-06".
func PageSummary(page, totalPages int, start, end string) string {
	summary := fmt.Sprintf("Page %d of %d", page, totalPages)
	if start == "" && end == "" {
		return summary + " · all dates"
	}
	if start == "" {
		start = "…"
	}
	if end == "" {
		end = "…"
	}
	return fmt.Sprintf("%s · %s → %s", summary, start, end)
}

// ExportToCSV converts customers to CSV format with the listing's columns plus the ID
func ExportToCSV(customers []models.Customer) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(append([]string{"ID"}, Headers...)); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, c := range customers {
		if err := writer.Write(append([]string{c.ID}, CustomerRow(c)...)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// CountCSVRows counts the data records of the CSV file at path, not counting the header row.
func CountCSVRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records := 0
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read CSV: %w", err)
		}
		records++
	}
	return max(records-1, 0), nil
}

// ExportToMarkdown converts customers to a Markdown table
func ExportToMarkdown(customers []models.Customer) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Customers\n\n")
	buf.WriteString("| " + strings.Join(Headers, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(Headers)) + "\n")

	if len(customers) == 0 {
		buf.WriteString(fmt.Sprintf("| %s |%s\n", EmptyMessage, strings.Repeat(" |", len(Headers)-1)))
		return buf.Bytes(), nil
	}

	for _, c := range customers {
		cells := CustomerRow(c)
		for i, cell := range cells {
			cells[i] = strings.ReplaceAll(cell, "|", `\|`)
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts customers to plain text format
func ExportToText(customers []models.Customer) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Customers: %d\n\n", len(customers)))
	if len(customers) == 0 {
		buf.WriteString(EmptyMessage + "\n")
		return buf.Bytes(), nil
	}

	for i, c := range customers {
		buf.WriteString(fmt.Sprintf("%d. %s <%s> %s [active: %s]\n", i+1, c.Name, c.Email, c.Phone, c.ActiveLabel()))
		if addr := c.Address.String(); addr != "" {
			buf.WriteString(fmt.Sprintf("   %s\n", addr))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts the page to indented JSON
func ExportToJSON(page *models.CustomerPage) ([]byte, error) {
	return shared.MarshalJSON(page, true)
}

// Export renders page in format. The table format is meant for a terminal, the others for files.
func Export(page *models.CustomerPage, format string) ([]byte, error) {
	switch format {
	case "", FormatTable:
		return []byte(RenderTable(page.Customers) + "\n"), nil
	case FormatCSV:
		return ExportToCSV(page.Customers)
	case FormatMarkdown, "md":
		return ExportToMarkdown(page.Customers)
	case FormatText, "text":
		return ExportToText(page.Customers)
	case FormatJSON:
		return ExportToJSON(page)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport renders page in format and writes it to path.
func WriteExport(page *models.CustomerPage, format, path string) error {
	data, err := Export(page, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
