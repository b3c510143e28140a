package cmdutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/smbwire/internal/cli/output"
	"github.com/marmos91/smbwire/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommaSeparatedList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "Empty", input: "", want: nil},
		{name: "Single", input: "2.1", want: []string{"2.1"}},
		{name: "Spaces", input: "2.0.2, 2.1 , 3.0", want: []string{"2.0.2", "2.1", "3.0"}},
		{name: "BlankItems", input: "3.0,, ,3.0.2,", want: []string{"3.0", "3.0.2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommaSeparatedList(tt.input))
		})
	}
}

func TestBoolToYesNo(t *testing.T) {
	assert.Equal(t, "yes", BoolToYesNo(true))
	assert.Equal(t, "no", BoolToYesNo(false))
}

func TestPrinter(t *testing.T) {
	t.Cleanup(func() { Flags.Output = "" })

	Flags.Output = "json"
	p, err := Printer(&bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, output.FormatJSON, p.Format())

	Flags.Output = "csv"
	_, err = Printer(&bytes.Buffer{})
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Cleanup(func() { Flags.ConfigFile = "" })

	dir := t.TempDir()
	logPath := filepath.Join(dir, "smbwire.log")
	path := filepath.Join(dir, "config.yaml")
	data := "logging:\n  level: debug\n  output: " + logPath + "\nprobe:\n  timeout: 3s\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	Flags.ConfigFile = path
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "3s", cfg.Probe.Timeout.String())

	require.NoError(t, InitLogger(&config.Config{Logging: config.LoggingConfig{Level: "INFO", Format: "text", Output: "stderr"}}))
}
