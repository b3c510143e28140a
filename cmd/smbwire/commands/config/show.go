package config

import (
	"github.com/marmos91/smbwire/cmd/smbwire/cmdutil"
	"github.com/marmos91/smbwire/pkg/config"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the configuration after file, environment and defaults are merged.

YAML is printed unless --output json is given.

Examples:
  smbwire config show
  SMBWIRE_PROBE_TIMEOUT=2s smbwire config show --output json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmdutil.Flags.ConfigFile)
	if err != nil {
		return err
	}

	printer, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return printer.Print(cfg)
}
