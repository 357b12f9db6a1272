package technique

import (
	"math/rand"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

func optionSeparatorInsertion() Technique {
	return Technique{
		ID:          "OptionSeparatorInsertion",
		Name:        "Option Separator Insertion",
		Description: "Splits an attached value from its option, e.g. --output=x becomes --output x.",
		Aliases:     []string{"SeparatorInsertion"},
		Scope:       ScopeCommand,
		Platforms:   []cmdline.Platform{cmdline.PlatformPosix},
		Applicable: func(env *Env, cmd *cmdline.Command) bool {
			return len(detachable(env, cmd)) > 0
		},
		Restructure: func(env *Env, cmd *cmdline.Command, rng *rand.Rand) {
			pos := detachable(env, cmd)
			for _, k := range pick(rng, len(pos)) {
				t := &cmd.Tokens[pos[k]]
				t.Attached, t.Separator, t.Leading = false, "", " "
			}
		},
	}
}

func optionSeparatorDeletion() Technique {
	return Technique{
		ID:          "OptionSeparatorDeletion",
		Name:        "Option Separator Deletion",
		Description: "Joins a value to its option, e.g. --output x becomes --output=x and -o x becomes -ox.",
		Aliases:     []string{"SeparatorRemoval"},
		Scope:       ScopeCommand,
		Platforms:   []cmdline.Platform{cmdline.PlatformPosix},
		Applicable: func(env *Env, cmd *cmdline.Command) bool {
			return len(attachable(env, cmd)) > 0
		},
		Restructure: func(env *Env, cmd *cmdline.Command, rng *rand.Rand) {
			pos := attachable(env, cmd)
			for _, k := range pick(rng, len(pos)) {
				i := pos[k]
				t := &cmd.Tokens[i]
				sep, _ := joinSeparator(cmd.Tokens[i-1])
				t.Attached, t.Separator = true, sep
			}
		},
	}
}

// detachable lists attached values whose option is declared to take one.
func detachable(env *Env, cmd *cmdline.Command) []int {
	var out []int
	for i := range cmd.Tokens {
		t := cmd.Tokens[i]
		if t.Kind != cmdline.KindOptionValue || !t.Attached {
			continue
		}
		if o := cmd.OptionFor(i); o >= 0 && env.profile().TakesValue(cmd.Tokens[o].Name) {
			out = append(out, i)
		}
	}
	return out
}

// attachable lists detached, non-empty values whose option is declared to
// take one and has a form that accepts a joined value.
func attachable(env *Env, cmd *cmdline.Command) []int {
	var out []int
	for i := range cmd.Tokens {
		t := cmd.Tokens[i]
		if t.Kind != cmdline.KindOptionValue || t.Attached || t.Raw == "" {
			continue
		}
		o := cmd.OptionFor(i)
		if o < 0 || !env.profile().TakesValue(cmd.Tokens[o].Name) {
			continue
		}
		if _, ok := joinSeparator(cmd.Tokens[o]); ok {
			out = append(out, i)
		}
	}
	return out
}

// joinSeparator returns the separator used to attach a value to opt.
func joinSeparator(opt cmdline.Token) (string, bool) {
	switch {
	case opt.Prefix == "--":
		return "=", true
	case opt.Prefix == "-" && len([]rune(opt.Name)) == 1:
		return "", true
	}
	return "", false
}
