package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ticofookfook/argfuscator/internal/config"
	"github.com/ticofookfook/argfuscator/internal/obfuscator"
)

// whatisCmd represents the whatis command
var whatisCmd = &cobra.Command{
	Use:   "whatis <technique_id>",
	Short: "Describes a single technique",
	Long: `Looks up a technique by id or alias and prints its scope, the platforms
and token kinds it applies to, and a description of the transformation.`,
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
		info, err := octx.Describe(args[0])
		if err != nil {
			return err
		}
		if cfg.OutputFormat == "" || cfg.OutputFormat == config.OutputPlain {
			obfuscator.WriteTechnique(cmd.OutOrStdout(), info)
			return nil
		}
		return obfuscator.WriteTechniques(cmd.OutOrStdout(), cfg.OutputFormat, []obfuscator.TechniqueInfo{info})
	},
}

func init() {
	rootCmd.AddCommand(whatisCmd)
}
