// Package api provides the public API for using the command line obfuscator
// as a library.
//
// The API exposes the same operations as the command-line interface: generate
// obfuscated variants of a command, process a batch of commands, and inspect
// the technique catalogue.
//
// Basic usage example:
//
//	obf, err := api.NewObfuscator(api.Options{Count: 5})
//	if err != nil {
//	    log.Fatalf("Failed to create obfuscator: %v", err)
//	}
//
//	variants, err := obf.Obfuscate("taskkill /f /im notepad.exe")
//	if err != nil {
//	    log.Fatalf("Failed to obfuscate command: %v", err)
//	}
//
//	for _, v := range variants {
//	    fmt.Println(v)
//	}
package api

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ticofookfook/argfuscator/internal/config"
	"github.com/ticofookfook/argfuscator/internal/diag"
	"github.com/ticofookfook/argfuscator/internal/obfuscator"
	"github.com/ticofookfook/argfuscator/internal/parser"
	"github.com/ticofookfook/argfuscator/internal/selector"
)

// Re-exported result and error types.
type (
	Result                   = obfuscator.Result
	TechniqueInfo            = obfuscator.TechniqueInfo
	Warning                  = diag.Warning
	ParseError               = parser.ParseError
	UnknownTechniqueError    = selector.UnknownTechniqueError
	UnsupportedPlatformError = selector.UnsupportedPlatformError
)

// PrintInfo prints formatted information, respecting the Testing flag.
// This function forwards to the internal config.PrintInfo function.
func PrintInfo(format string, args ...interface{}) {
	config.PrintInfo(format, args...)
}

// Obfuscator is the main obfuscation engine. It encapsulates the
// configuration and context shared by every command it processes.
type Obfuscator struct {
	// Context holds the catalogue, profiles and configuration
	Context *obfuscator.ObfuscationContext
	// Config holds the effective configuration
	Config *config.Config
}

// Options represents configuration options for creating a new Obfuscator instance.
// Zero values leave the loaded configuration untouched.
type Options struct {
	// ConfigPath is the path to a YAML configuration file
	// If empty, argfuscator.yaml in the working directory is used when present
	ConfigPath string

	// Silent suppresses informational messages
	Silent bool

	// Platform forces "windows" or "posix" instead of inferring it
	Platform string

	// Techniques restricts generation to the given technique ids
	Techniques []string

	// Count is the number of variants to generate per command
	Count int

	// Seed makes generation reproducible
	Seed *int64

	// Verify rejects variants the equivalence model reads differently
	Verify bool

	// Literals lists token texts that must never be modified
	Literals []string
}

// NewObfuscator creates a new Obfuscator instance using the provided options.
//
// Returns an error if the configuration cannot be loaded or is invalid.
func NewObfuscator(options Options) (*Obfuscator, error) {
	cfg, err := config.LoadConfig(options.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if options.Silent {
		cfg.Silent = true
	}
	if options.Platform != "" {
		cfg.Platform = options.Platform
	}
	if len(options.Techniques) > 0 {
		cfg.Techniques = options.Techniques
	}
	if options.Count > 0 {
		cfg.Count = options.Count
	}
	if options.Seed != nil {
		cfg.Seed = options.Seed
	}
	if options.Verify {
		cfg.Verify = true
	}
	cfg.Literals.Values = append(cfg.Literals.Values, options.Literals...)

	ctx, err := obfuscator.NewObfuscationContext(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create obfuscation context: %w", err)
	}

	return &Obfuscator{
		Context: ctx,
		Config:  cfg,
	}, nil
}

// Obfuscate returns the variant texts for a single command.
func (o *Obfuscator) Obfuscate(command string) ([]string, error) {
	res, err := o.ObfuscateCommand(command)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(res.Variants))
	for i, v := range res.Variants {
		out[i] = v.Text
	}
	return out, nil
}

// ObfuscateCommand returns the full result for a single command, including
// technique traces, the seed used and any warnings.
func (o *Obfuscator) ObfuscateCommand(command string) (*Result, error) {
	return o.Context.ProcessCommand(command)
}

// ObfuscateFile processes a file holding one command per line and returns the
// successful results. With abort_on_error set, the first failure is returned.
func (o *Obfuscator) ObfuscateFile(filePath string) ([]*Result, error) {
	items, err := o.Context.ProcessFile(filePath)
	if err != nil {
		return obfuscator.Results(items), fmt.Errorf("failed to obfuscate file %s: %w", filePath, err)
	}
	return obfuscator.Results(items), nil
}

// ObfuscateFileToFile processes a command file and writes the variants to
// another file in the configured output format.
func (o *Obfuscator) ObfuscateFileToFile(inputPath, outputPath string) error {
	results, err := o.ObfuscateFile(inputPath)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := obfuscator.WriteResults(&buf, o.Config.OutputFormat, results); err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write to output file %s: %w", outputPath, err)
	}
	PrintInfo("Processed: %s -> %s\n", inputPath, outputPath)
	return nil
}

// ListTechniques returns the technique catalogue in registration order.
func (o *Obfuscator) ListTechniques() []TechniqueInfo {
	return o.Context.Techniques()
}

// DescribeTechnique looks up a technique by id or alias.
func (o *Obfuscator) DescribeTechnique(id string) (TechniqueInfo, error) {
	return o.Context.Describe(id)
}
