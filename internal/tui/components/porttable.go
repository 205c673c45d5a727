package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"

	"github.com/allbin/serterm/internal/tui/styles"
)

const (
	columnPort        = "port"
	columnType        = "type"
	columnDescription = "description"
	columnUSB         = "usb"
)

// PortRow is one line of the port listing.
type PortRow struct {
	Path        string
	Type        string
	Description string
	USB         string // vendor:product, empty for non-USB ports
}

// RenderPortTable draws a static table of ports for the list command.
func RenderPortTable(rows []PortRow) string {
	columns := []table.Column{
		table.NewColumn(columnPort, "Port", 16),
		table.NewColumn(columnType, "Type", 18),
		table.NewColumn(columnDescription, "Description", 36),
		table.NewColumn(columnUSB, "USB ID", 11),
	}

	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.NewRow(table.RowData{
			columnPort:        r.Path,
			columnType:        r.Type,
			columnDescription: r.Description,
			columnUSB:         r.USB,
		}))
	}

	return table.New(columns).
		WithRows(tableRows).
		WithBaseStyle(lipgloss.NewStyle().
			BorderForeground(styles.Surface2).
			Foreground(styles.Text).
			Align(lipgloss.Left)).
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(styles.Mauve)).
		View()
}
