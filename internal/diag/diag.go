// Package diag carries the non-fatal conditions reported alongside results.
package diag

import "fmt"

// Code identifies the kind of a warning.
type Code string

const (
	// NoApplicableTechnique: a token or the whole command had no technique to apply.
	NoApplicableTechnique Code = "NoApplicableTechniqueWarning"
	// InsufficientVariants: fewer distinct variants than requested were produced.
	InsufficientVariants Code = "InsufficientVariantsWarning"
	// SkippedTechnique: a technique was left out for the command's platform.
	SkippedTechnique Code = "SkippedTechnique"
)

// Warning is a non-fatal condition. TokenIndex is -1 for command-level warnings.
type Warning struct {
	Code        Code   `json:"code" yaml:"code"`
	TokenIndex  int    `json:"token_index" yaml:"token_index"`
	TechniqueID string `json:"technique_id,omitempty" yaml:"technique_id,omitempty"`
	Message     string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	if w.TokenIndex >= 0 {
		return fmt.Sprintf("%s (token %d): %s", w.Code, w.TokenIndex, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Has reports whether ws contains a warning with the given code.
func Has(ws []Warning, code Code) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}
