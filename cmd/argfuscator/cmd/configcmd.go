package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ticofookfook/argfuscator/internal/config"
)

var forceOverwrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

// configInitCmd writes the default configuration.
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration to a YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		path := config.DefaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !forceOverwrite {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
		return config.SaveConfig(path)
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceOverwrite, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
