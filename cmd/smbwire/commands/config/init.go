package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/marmos91/smbwire/cmd/smbwire/cmdutil"
	"github.com/marmos91/smbwire/internal/cli/prompt"
	"github.com/marmos91/smbwire/internal/logger"
	"github.com/marmos91/smbwire/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Long: `Write a configuration file populated with the default values.

By default, the file is created at $XDG_CONFIG_HOME/smbwire/config.yaml.
Use --config to choose another path. An existing file is only replaced
after confirmation, or with --force.

Examples:
  smbwire config init
  smbwire config init --config ./smbwire.yaml --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file without asking")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); err == nil && !initForce {
		if !logger.IsTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
		ok, err := prompt.Confirm(fmt.Sprintf("Overwrite %s?", path), false)
		if errors.Is(err, prompt.ErrAborted) || (err == nil && !ok) {
			return fmt.Errorf("configuration file left unchanged: %s", path)
		}
		if err != nil {
			return err
		}
	}

	if err := config.SaveConfig(config.GetDefaultConfig(), path); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	printer, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	printer.Success(fmt.Sprintf("Configuration file created at: %s", path))
	return nil
}
