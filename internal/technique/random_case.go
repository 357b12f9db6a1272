package technique

import (
	"math/rand"
	"unicode"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

func randomCase() Technique {
	return Technique{
		ID:          "RandomCase",
		Name:        "Random Case",
		Description: "Flips the case of letters in the program name and option names of case-insensitive programs.",
		Scope:       ScopeToken,
		Platforms:   []cmdline.Platform{cmdline.PlatformWindows},
		Kinds:       []cmdline.Kind{cmdline.KindExecutable, cmdline.KindOption},
		Precondition: func(env *Env, _ *cmdline.Command, tok *cmdline.Token) bool {
			return !env.profile().CaseSensitive && len(casedPositions(tok)) > 0
		},
		Transform: func(_ *Env, tok cmdline.Token, rng *rand.Rand) cmdline.Token {
			pos := casedPositions(&tok)
			if len(pos) == 0 {
				return tok
			}
			r := []rune(tok.Raw)
			for _, k := range pick(rng, len(pos)) {
				r[pos[k]] = flipCase(r[pos[k]])
			}
			tok.Raw = string(r)
			return tok
		},
	}
}

func casedPositions(tok *cmdline.Token) []int {
	var out []int
	for i, r := range []rune(tok.Raw) {
		if isASCIILetter(r) {
			out = append(out, i)
		}
	}
	return out
}

func flipCase(r rune) rune {
	if unicode.IsUpper(r) {
		return unicode.ToLower(r)
	}
	return unicode.ToUpper(r)
}
