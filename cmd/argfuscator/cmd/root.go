// Package cmd implements the command line interface for the application.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ticofookfook/argfuscator/internal/config"
	"github.com/ticofookfook/argfuscator/internal/obfuscator"
	"github.com/ticofookfook/argfuscator/internal/parser"
	"github.com/ticofookfook/argfuscator/internal/selector"
)

// Process exit codes.
const (
	exitOK                  = 0
	exitError               = 1
	exitParseError          = 2
	exitUnknownTechnique    = 3
	exitUnsupportedPlatform = 4
)

var (
	cfgFile string         // Variable to hold the config file path from the flag
	cfg     *config.Config // Global variable to hold the loaded configuration

	// Flag variables mapped to config fields for override
	silentMode     bool   // -> cfg.Silent
	debugMode      bool   // -> cfg.DebugMode
	abortOnError   bool   // -> cfg.AbortOnError
	platformFlag   string // -> cfg.Platform
	dialectFlag    string // -> cfg.Dialect
	outputFormat   string // -> cfg.OutputFormat
	listTechniques bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "argfuscator",
	Short: "Generate equivalent, obfuscated variants of a command line",
	Long: `argfuscator rewrites a command line into variants that the target program
still interprets the same way: alternative option prefixes, case changes,
confusable characters, inserted quotes, path detours, reordered options and more.

Example:
  argfuscator obfuscate -n 5 "taskkill /f /im notepad.exe"
  argfuscator obfuscate file commands.txt --format json
  argfuscator --list-techniques`,
	SilenceErrors: true,
	// PersistentPreRunE runs before any subcommand's RunE.
	// Use this to load configuration early.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadedCfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}
		cfg = loadedCfg

		// Apply command-line flag overrides *after* loading config file
		applyFlagOverrides(cfg, cmd)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}
		config.UseLogging(cfg)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if listTechniques {
			cmd.SilenceUsage = true
			return printTechniques(cmd)
		}
		return cmd.Help()
	},
}

// applyFlagOverrides applies command-line flag values to the config struct.
// Only overrides if the flag was explicitly set by the user via cmd.Flags().Changed().
func applyFlagOverrides(cfg *config.Config, cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("silent") {
		cfg.Silent = silentMode
	}
	if flags.Changed("debug") {
		cfg.DebugMode = debugMode
	}
	if flags.Changed("abort-on-error") {
		cfg.AbortOnError = abortOnError
	}
	if flags.Changed("platform") {
		cfg.Platform = platformFlag
	}
	if flags.Changed("dialect") {
		cfg.Dialect = dialectFlag
	}
	if flags.Changed("format") {
		cfg.OutputFormat = outputFormat
	}
	applyObfuscateOverrides(cfg, cmd)
}

func printTechniques(cmd *cobra.Command) error {
	octx, err := obfuscator.NewObfuscationContext(cfg)
	if err != nil {
		return err
	}
	return obfuscator.WriteTechniques(cmd.OutOrStdout(), cfg.OutputFormat, octx.Techniques())
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var perr *parser.ParseError
	var uerr *selector.UnknownTechniqueError
	var serr *selector.UnsupportedPlatformError
	switch {
	case errors.As(err, &perr):
		return exitParseError
	case errors.As(err, &uerr):
		return exitUnknownTechnique
	case errors.As(err, &serr):
		return exitUnsupportedPlatform
	}
	return exitError
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./argfuscator.yaml)")

	// Add flags for common config options
	rootCmd.PersistentFlags().BoolVarP(&silentMode, "silent", "s", false, "Suppress informational output (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Print debug output (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&abortOnError, "abort-on-error", false, "Stop a batch on the first failing command (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&platformFlag, "platform", "p", "", "Target platform: auto, windows or posix (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dialectFlag, "dialect", "", "Command line dialect: windows-argv, windows-cmd or posix-sh (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "", "Output format: plain, json or yaml (overrides config)")
	rootCmd.Flags().BoolVarP(&listTechniques, "list-techniques", "l", false, "List the available techniques and exit")
}
