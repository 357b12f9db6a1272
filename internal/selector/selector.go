// Package selector decides which techniques apply to which tokens of a command.
package selector

import (
	"fmt"
	"strings"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
	"github.com/ticofookfook/argfuscator/internal/config"
	"github.com/ticofookfook/argfuscator/internal/diag"
	"github.com/ticofookfook/argfuscator/internal/technique"
)

// All requests every applicable technique.
const All = "all"

// UnknownTechniqueError reports requested ids missing from the catalogue.
type UnknownTechniqueError struct {
	IDs   []string
	Valid []string
}

func (e *UnknownTechniqueError) Error() string {
	return fmt.Sprintf("unknown technique '%s' (valid: %s)", strings.Join(e.IDs, "', '"), strings.Join(e.Valid, ", "))
}

// UnsupportedPlatformError reports an explicitly requested technique that is
// not valid for the command's platform.
type UnsupportedPlatformError struct {
	ID       string
	Platform cmdline.Platform
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("technique '%s' does not support platform %s", e.ID, e.Platform)
}

// Selection maps token positions to the token-local techniques applicable to
// them, in registration order, and lists applicable structural techniques.
type Selection struct {
	Tokens     map[int][]*technique.Technique
	Structural []*technique.Technique
	Warnings   []diag.Warning
}

// Empty reports whether nothing at all can be applied.
func (s *Selection) Empty() bool {
	for _, ts := range s.Tokens {
		if len(ts) > 0 {
			return false
		}
	}
	return len(s.Structural) == 0
}

// Resolve turns requested ids into catalogue techniques in registration
// order. An empty request or "all" selects the whole catalogue.
func Resolve(cat *technique.Catalogue, requested []string) ([]*technique.Technique, bool, error) {
	if isAll(requested) {
		return cat.All(), true, nil
	}
	want := make(map[string]bool)
	var unknown []string
	for _, id := range requested {
		t, ok := cat.Lookup(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		want[t.ID] = true
	}
	if len(unknown) > 0 {
		return nil, false, &UnknownTechniqueError{IDs: unknown, Valid: cat.IDs()}
	}
	var out []*technique.Technique
	for _, t := range cat.All() {
		if want[t.ID] {
			out = append(out, t)
		}
	}
	return out, false, nil
}

// Select filters the requested techniques by platform, kind and
// precondition for every token of cmd.
func Select(cat *technique.Catalogue, env *technique.Env, cmd *cmdline.Command, requested []string) (*Selection, error) {
	techs, all, err := Resolve(cat, requested)
	if err != nil {
		return nil, err
	}

	sel := &Selection{Tokens: make(map[int][]*technique.Technique)}
	var usable []*technique.Technique
	for _, t := range techs {
		if t.SupportsPlatform(env.Platform) {
			usable = append(usable, t)
			continue
		}
		if !all {
			return nil, &UnsupportedPlatformError{ID: t.ID, Platform: env.Platform}
		}
		config.PrintDebug("skipping %s: not available on %s\n", t.ID, env.Platform)
		sel.Warnings = append(sel.Warnings, diag.Warning{
			Code:        diag.SkippedTechnique,
			TokenIndex:  -1,
			TechniqueID: t.ID,
			Message:     fmt.Sprintf("%s is not available on %s", t.ID, env.Platform),
		})
	}

	for i := range cmd.Tokens {
		tok := &cmd.Tokens[i]
		for _, t := range usable {
			if !t.Structural() && t.AppliesTo(env, cmd, tok) {
				sel.Tokens[i] = append(sel.Tokens[i], t)
			}
		}
		if len(sel.Tokens[i]) == 0 {
			sel.Warnings = append(sel.Warnings, diag.Warning{
				Code:       diag.NoApplicableTechnique,
				TokenIndex: tok.Index,
				Message:    fmt.Sprintf("%s token %q passes through unmodified", tok.Kind, tok.Text()),
			})
		}
	}
	for _, t := range usable {
		if t.Structural() && t.AppliesToCommand(env, cmd) {
			sel.Structural = append(sel.Structural, t)
		}
	}
	if sel.Empty() {
		sel.Warnings = append(sel.Warnings, diag.Warning{
			Code:       diag.NoApplicableTechnique,
			TokenIndex: -1,
			Message:    "no technique applies to this command",
		})
	}
	return sel, nil
}

func isAll(requested []string) bool {
	if len(requested) == 0 {
		return true
	}
	for _, id := range requested {
		if strings.EqualFold(strings.TrimSpace(id), All) {
			return true
		}
	}
	return false
}
