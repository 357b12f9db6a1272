package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ticofookfook/argfuscator/internal/config"
	"github.com/ticofookfook/argfuscator/internal/diag"
	"github.com/ticofookfook/argfuscator/internal/obfuscator"
)

var (
	count      int      // -> cfg.Count
	seed       int64    // -> cfg.Seed
	maxRetries int      // -> cfg.MaxRetries
	techniques []string // -> cfg.Techniques
	literals   []string // appended to cfg.Literals.Values
	verify     bool     // -> cfg.Verify
	inputFile  string
	outputFile string
)

// obfuscateCmd obfuscates a single command given as arguments, or one
// command per line read from --input.
var obfuscateCmd = &cobra.Command{
	Use:   "obfuscate [command line]",
	Short: "Generate obfuscated variants of a command line",
	Long: `Parses the command line, selects the techniques that apply to each token
and prints the requested number of distinct variants, one per line.

Quote the command line as a single argument, or pass it after "--".
Arguments after "--" are joined with single spaces, so quotes your shell
removed are lost: pass a command whose quoting matters as one quoted
argument, e.g. 'reg add "HKLM\Software\a b" /f'.
Use --input to read one command per line from a file ("-" for stdin).

Example:
  argfuscator obfuscate -n 3 "taskkill /f /im notepad.exe"
  argfuscator obfuscate -t OptionPrefixSubstitution,RandomCase -- certutil -urlcache -f http://x/a a
  argfuscator obfuscate --input commands.txt --format json -o variants.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		cmd.SilenceUsage = true

		octx, err := obfuscator.NewObfuscationContext(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize obfuscation context: %w", err)
		}

		switch {
		case inputFile != "":
			if len(args) > 0 {
				return fmt.Errorf("a command line and --input cannot be combined")
			}
			var items []obfuscator.BatchItem
			if inputFile == "-" {
				items, err = octx.ProcessReader(cmd.InOrStdin())
			} else {
				items, err = octx.ProcessFile(inputFile)
			}
			if err != nil {
				return err
			}
			return writeBatch(cmd, items)
		case len(args) == 0:
			return fmt.Errorf("no command line given (pass one or use --input)")
		}

		// the shell already removed the caller's quotes from args
		res, err := octx.ProcessCommand(strings.Join(args, " "))
		if err != nil {
			return err
		}
		return writeResults(cmd, []*obfuscator.Result{res})
	},
}

// applyObfuscateOverrides copies generation flags into the configuration.
func applyObfuscateOverrides(cfg *config.Config, cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Lookup("count") == nil {
		return
	}
	if flags.Changed("count") {
		cfg.Count = count
	}
	if flags.Changed("seed") {
		s := seed
		cfg.Seed = &s
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = maxRetries
	}
	if flags.Changed("techniques") {
		cfg.Techniques = techniques
	}
	if flags.Changed("literal") {
		cfg.Literals.Values = append(cfg.Literals.Values, literals...)
	}
	if flags.Changed("verify") {
		cfg.Verify = verify
	}
}

func writeBatch(cmd *cobra.Command, items []obfuscator.BatchItem) error {
	if err := writeResults(cmd, obfuscator.Results(items)); err != nil {
		return err
	}
	if err := obfuscator.FirstError(items); err != nil {
		failed := 0
		for _, it := range items {
			if it.Err != nil {
				failed++
			}
		}
		return fmt.Errorf("%d of %d commands failed, first: %w", failed, len(items), err)
	}
	return nil
}

func writeResults(cmd *cobra.Command, results []*obfuscator.Result) error {
	for _, r := range results {
		if cfg.Seed == nil {
			config.PrintInfo("Info: seed %d used for '%s'\n", r.Seed, r.Input)
		}
		if !cfg.Silent {
			for _, w := range r.Warnings {
				if w.Code == diag.SkippedTechnique {
					config.PrintDebug("%s\n", w)
					continue
				}
				config.PrintWarning("%s\n", w)
			}
		}
	}

	var out io.Writer = cmd.OutOrStdout()
	if outputFile != "" {
		if dir := filepath.Dir(outputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("error creating output directory %s: %w", dir, err)
			}
		}
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("error creating output file %s: %w", outputFile, err)
		}
		defer f.Close()
		out = f
		config.PrintInfo("Info: Writing output to file: %s\n", outputFile)
	}
	if err := obfuscator.WriteResults(out, cfg.OutputFormat, results); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(obfuscateCmd)

	flags := obfuscateCmd.PersistentFlags()
	flags.IntVarP(&count, "count", "n", 1, "Number of variants to generate per command")
	flags.Int64Var(&seed, "seed", 0, "Random seed for reproducible output (default: random)")
	flags.IntVar(&maxRetries, "max-retries", 32, "Consecutive duplicate attempts before giving up")
	flags.StringSliceVarP(&techniques, "techniques", "t", nil, "Comma separated technique ids, or \"all\" (default: all)")
	flags.StringArrayVar(&literals, "literal", nil, "Token text that must never be modified (repeatable)")
	flags.BoolVar(&verify, "verify", false, "Reject variants the equivalence model reads differently")
	flags.StringVarP(&outputFile, "output", "o", "", "Output file path (default: stdout)")
	obfuscateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read one command per line from a file, \"-\" for stdin")
}
