package obfuscator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ticofookfook/argfuscator/internal/config"
	"github.com/ticofookfook/argfuscator/internal/diag"
)

// Record is the structured form of one variant.
type Record struct {
	VariantIndex      int      `json:"variant_index" yaml:"variant_index"`
	TechniquesApplied []string `json:"techniques_applied" yaml:"techniques_applied"`
	Text              string   `json:"text" yaml:"text"`
}

// Report is the structured form of one command's result.
type Report struct {
	Input    string         `json:"input" yaml:"input"`
	Platform string         `json:"platform" yaml:"platform"`
	Dialect  string         `json:"dialect" yaml:"dialect"`
	Seed     int64          `json:"seed" yaml:"seed"`
	Variants []Record       `json:"variants" yaml:"variants"`
	Warnings []diag.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Report converts the result for structured output.
func (r *Result) Report() Report {
	rep := Report{
		Input:    r.Input,
		Platform: string(r.Platform),
		Dialect:  r.Dialect,
		Seed:     r.Seed,
		Variants: make([]Record, len(r.Variants)),
		Warnings: r.Warnings,
	}
	for i, v := range r.Variants {
		rep.Variants[i] = Record{VariantIndex: v.Index, TechniquesApplied: v.TechniqueIDs(), Text: v.Text}
	}
	return rep
}

// WriteResults writes variants in the given format. Plain output is one
// variant per line; json and yaml emit one report per command.
func WriteResults(w io.Writer, format string, results []*Result) error {
	switch format {
	case config.OutputPlain, "":
		for _, r := range results {
			for _, v := range r.Variants {
				if _, err := fmt.Fprintln(w, v.Text); err != nil {
					return err
				}
			}
		}
		return nil
	case config.OutputJSON:
		reports := make([]Report, len(results))
		for i, r := range results {
			reports[i] = r.Report()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(reports)
	case config.OutputYAML:
		reports := make([]Report, len(results))
		for i, r := range results {
			reports[i] = r.Report()
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("invalid output format '%s' (valid: plain, json, yaml)", format)
}

// WriteTechniques writes a catalogue listing in the given format.
func WriteTechniques(w io.Writer, format string, infos []TechniqueInfo) error {
	switch format {
	case config.OutputPlain, "":
		for _, t := range infos {
			fmt.Fprintf(w, "%-26s %-10s %-14s %s\n", t.ID, t.Scope, strings.Join(t.Platforms, ","), t.Description)
		}
		return nil
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(infos); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("invalid output format '%s' (valid: plain, json, yaml)", format)
}

// WriteTechnique writes the details of a single technique as plain text.
func WriteTechnique(w io.Writer, t TechniqueInfo) {
	fmt.Fprintf(w, "%s (%s)\n", t.ID, t.Name)
	fmt.Fprintf(w, "  Scope:       %s\n", t.Scope)
	fmt.Fprintf(w, "  Platforms:   %s\n", strings.Join(t.Platforms, ", "))
	if len(t.Kinds) > 0 {
		fmt.Fprintf(w, "  Token kinds: %s\n", strings.Join(t.Kinds, ", "))
	}
	if len(t.Aliases) > 0 {
		fmt.Fprintf(w, "  Aliases:     %s\n", strings.Join(t.Aliases, ", "))
	}
	fmt.Fprintf(w, "  %s\n", t.Description)
}
