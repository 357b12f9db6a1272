package cmd

import (
	"github.com/spf13/cobra"
)

// listCmd prints the technique catalogue.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"techniques"},
	Short:   "List the available techniques",
	Long: `Prints every technique in registration order with its scope, supported
platforms and description. Use --format json or yaml for machine readable output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return printTechniques(cmd)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
