package technique

import (
	"math/rand"
	"strings"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

func optionStacking() Technique {
	return Technique{
		ID:          "OptionStacking",
		Name:        "Option Stacking",
		Description: "Merges adjacent single-letter flags into one word, e.g. -s -L becomes -sL.",
		Scope:       ScopeCommand,
		Platforms:   []cmdline.Platform{cmdline.PlatformPosix},
		Applicable: func(env *Env, cmd *cmdline.Command) bool {
			return len(stackPairs(env, cmd)) > 0
		},
		Restructure: func(env *Env, cmd *cmdline.Command, rng *rand.Rand) {
			pairs := stackPairs(env, cmd)
			if len(pairs) == 0 {
				return
			}
			for _, k := range pick(rng, len(pairs)) {
				t := &cmd.Tokens[pairs[k]+1]
				t.Raw = t.Raw[1:]
				t.Attached = true
				t.Separator = ""
			}
		},
	}
}

// stackPairs returns positions i where the flags at i and i+1 can be merged.
func stackPairs(env *Env, cmd *cmdline.Command) []int {
	var out []int
	for i := 1; i+1 < len(cmd.Tokens); i++ {
		if stackable(env, cmd, i) && stackable(env, cmd, i+1) && !cmd.Tokens[i+1].Attached {
			out = append(out, i)
		}
	}
	return out
}

func stackable(env *Env, cmd *cmdline.Command, i int) bool {
	t := cmd.Tokens[i]
	if t.Kind != cmdline.KindOption || t.Prefix != "-" || len([]rune(t.Name)) != 1 {
		return false
	}
	if !strings.HasPrefix(t.Raw, "-") || strings.HasPrefix(t.Raw, "--") {
		return false
	}
	return env.profile().IsStackable(t.Name) && cmd.ValueOf(i) < 0
}
