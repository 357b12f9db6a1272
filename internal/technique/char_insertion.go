package technique

import (
	"math/rand"
	"strings"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

func characterInsertion() Technique {
	return Technique{
		ID:          "CharacterInsertion",
		Name:        "Character Insertion",
		Description: "Inserts zero-width characters that the program discards into option names.",
		Scope:       ScopeToken,
		Platforms:   []cmdline.Platform{cmdline.PlatformWindows},
		Kinds:       []cmdline.Kind{cmdline.KindOption, cmdline.KindOptionValue, cmdline.KindPositional},
		Precondition: func(env *Env, _ *cmdline.Command, tok *cmdline.Token) bool {
			if len(env.Tables.InsertionChars) == 0 {
				return false
			}
			if tok.Kind == cmdline.KindOption {
				_, name := splitOption(tok.Raw)
				return name != ""
			}
			// values are only safe when the program strips the characters
			return env.profile().StripsInsertedChars && tok.Raw != ""
		},
		Transform: func(env *Env, tok cmdline.Token, rng *rand.Rand) cmdline.Token {
			chars := env.Tables.InsertionChars
			if len(chars) == 0 {
				return tok
			}
			prefix, body := "", tok.Raw
			if tok.Kind == cmdline.KindOption {
				prefix, body = splitOption(tok.Raw)
			}
			parts := make([]string, 0, len(body)+2)
			for _, c := range body {
				parts = append(parts, string(c))
			}
			for n := 1 + rng.Intn(2); n > 0; n-- {
				at := rng.Intn(len(parts) + 1)
				ch := chars[rng.Intn(len(chars))]
				parts = append(parts[:at], append([]string{ch}, parts[at:]...)...)
			}
			tok.Raw = prefix + strings.Join(parts, "")
			return tok
		},
	}
}
