package config

import (
	"fmt"
	"os"
	"time"

	"github.com/marmos91/smbwire/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the smbwire configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  smbwire config validate
  smbwire config validate --config /etc/smbwire/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configPath()
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("configuration file not found: %s\n\n"+
			"Create one with:\n"+
			"  smbwire config init --config %s", path, path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", path)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if warnings := configWarnings(cfg); len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)
	_, _ = fmt.Fprintf(out, "  Probe port:      %d\n", cfg.Probe.Port)
	_, _ = fmt.Fprintf(out, "  Probe timeout:   %s\n", cfg.Probe.Timeout)
	_, _ = fmt.Fprintf(out, "  Dialects:        %v\n", cfg.Probe.Dialects)
	return nil
}

// configWarnings reports settings that are valid but probably unintended.
func configWarnings(cfg *config.Config) []string {
	var warnings []string
	if cfg.Telemetry.Enabled && cfg.Telemetry.SampleRate == 0 {
		warnings = append(warnings, "telemetry is enabled but sample_rate is 0; no traces will be exported")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Port < 1024 {
		warnings = append(warnings, fmt.Sprintf("metrics port %d is privileged", cfg.Metrics.Port))
	}
	if cfg.Probe.Timeout > time.Minute {
		warnings = append(warnings, fmt.Sprintf("probe timeout %s is unusually long", cfg.Probe.Timeout))
	}
	return warnings
}
