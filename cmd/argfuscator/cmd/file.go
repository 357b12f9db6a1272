package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ticofookfook/argfuscator/internal/obfuscator"
)

// fileCmd represents the obfuscate file command
var fileCmd = &cobra.Command{
	Use:   "file <commands_file>",
	Short: "Obfuscate every command listed in a file",
	Long: `Reads a file holding one command per line, skipping blank lines and lines
starting with '#', and generates variants for each command independently.
A failing command is reported and skipped unless --abort-on-error is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		cmd.SilenceUsage = true

		octx, err := obfuscator.NewObfuscationContext(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize obfuscation context: %w", err)
		}
		items, err := octx.ProcessFile(args[0])
		if err != nil {
			return err
		}
		return writeBatch(cmd, items)
	},
}

func init() {
	obfuscateCmd.AddCommand(fileCmd)
}
