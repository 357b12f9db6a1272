package technique

import (
	"math/rand"
	"strings"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

func characterSubstitution() Technique {
	return Technique{
		ID:          "CharacterSubstitution",
		Name:        "Character Substitution",
		Description: "Replaces letters with Unicode look-alikes that the program folds back to ASCII.",
		Scope:       ScopeToken,
		Platforms:   cmdline.AllPlatforms,
		Kinds:       []cmdline.Kind{cmdline.KindOption, cmdline.KindOptionValue, cmdline.KindPositional},
		Precondition: func(env *Env, _ *cmdline.Command, tok *cmdline.Token) bool {
			if env.Platform != cmdline.PlatformWindows && !env.profile().UnicodeFolding {
				return false
			}
			// addresses, opaque data and percent escapes are matched byte for byte
			switch tok.ValueType {
			case cmdline.ValueURL, cmdline.ValueIP, cmdline.ValueText:
				return false
			}
			if strings.Contains(tok.Raw, "%") {
				return false
			}
			return len(substitutable(tok, env.Tables.substitutions())) > 0
		},
		Transform: func(env *Env, tok cmdline.Token, rng *rand.Rand) cmdline.Token {
			subs := env.Tables.substitutions()
			pos := substitutable(&tok, subs)
			if len(pos) == 0 {
				return tok
			}
			r := []rune(tok.Raw)
			out := make([]string, len(r))
			for i, c := range r {
				out[i] = string(c)
			}
			for _, k := range pick(rng, len(pos)) {
				alts := subs[r[pos[k]]]
				out[pos[k]] = alts[rng.Intn(len(alts))]
			}
			tok.Raw = strings.Join(out, "")
			return tok
		},
	}
}

// substitutable returns rune positions with a known look-alike. Option
// prefixes are never touched.
func substitutable(tok *cmdline.Token, subs map[rune][]string) []int {
	r := []rune(tok.Raw)
	from := 0
	if tok.Kind == cmdline.KindOption {
		prefix, _ := splitOption(tok.Raw)
		from = len([]rune(prefix))
	}
	var out []int
	for i := from; i < len(r); i++ {
		if _, ok := subs[r[i]]; ok {
			out = append(out, i)
		}
	}
	return out
}
