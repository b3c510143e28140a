package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "EmptyIsTable", input: "", want: FormatTable},
		{name: "Table", input: "table", want: FormatTable},
		{name: "JSONUppercase", input: "JSON", want: FormatJSON},
		{name: "YAML", input: "yaml", want: FormatYAML},
		{name: "YMLAlias", input: " yml ", want: FormatYAML},
		{name: "Invalid", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type probeRow struct {
	Dialect string `json:"dialect" yaml:"dialect"`
	Signing bool   `json:"signing" yaml:"signing"`
}

func (r probeRow) Headers() []string { return []string{"Dialect", "Signing"} }
func (r probeRow) Rows() [][]string  { return [][]string{{r.Dialect, "no"}} }

func TestPrinterFormats(t *testing.T) {
	row := probeRow{Dialect: "3.0.2"}

	t.Run("Table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(row))
		out := buf.String()
		assert.Contains(t, out, "DIALECT")
		assert.Contains(t, out, "3.0.2")
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatJSON, false).Print(row))
		assert.Contains(t, buf.String(), `"dialect": "3.0.2"`)
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatYAML, false).Print(row))
		assert.Contains(t, buf.String(), "dialect: 3.0.2")
	})

	t.Run("TableFallsBackToYAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(map[string]int{"port": 445}))
		assert.Equal(t, "port: 445\n", buf.String())
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, NewPrinter(&buf, Format("xml"), false).Print(row))
	})
}

func TestFieldsTable(t *testing.T) {
	f := Fields{}.Add("GUID", "00112233-4455-6677-8899-aabbccddeeff").Add("Wire", "33221100")

	assert.Equal(t, []string{"Field", "Value"}, f.Headers())
	assert.Equal(t, [][]string{
		{"GUID", "00112233-4455-6677-8899-aabbccddeeff"},
		{"Wire", "33221100"},
	}, f.Rows())

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, f))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "FIELD"))
	assert.True(t, strings.HasPrefix(lines[2], "Wire"))
}

func TestStatusLines(t *testing.T) {
	var plain, colored bytes.Buffer
	NewPrinter(&plain, FormatTable, false).Success("done")
	NewPrinter(&colored, FormatTable, true).Warning("careful")

	assert.Equal(t, "done\n", plain.String())
	assert.Equal(t, "\033[33mcareful\033[0m\n", colored.String())
}
