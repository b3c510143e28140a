package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by results that can be shown as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// PrintTable writes data as a borderless, left-aligned table.
func PrintTable(w io.Writer, data TableRenderer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(data.Headers())
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(data.Rows())
	table.Render()
	return nil
}

// Field is one named value of a result.
type Field struct {
	Name  string
	Value string
}

// Fields renders an ordered list of name/value pairs as a two-column table.
type Fields []Field

// Add appends a field and returns the extended list.
func (f Fields) Add(name, value string) Fields {
	return append(f, Field{Name: name, Value: value})
}

func (f Fields) Headers() []string {
	return []string{"Field", "Value"}
}

func (f Fields) Rows() [][]string {
	rows := make([][]string, len(f))
	for i, field := range f {
		rows[i] = []string{field.Name, field.Value}
	}
	return rows
}
