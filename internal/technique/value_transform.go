package technique

import (
	"math/rand"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

func valueTransformation() Technique {
	return Technique{
		ID:          "ValueTransformation",
		Name:        "Value Transformation",
		Description: "Re-encodes typed values: IPv4 addresses as integers, URL paths percent-encoded, path separators rewritten.",
		Scope:       ScopeToken,
		Platforms:   cmdline.AllPlatforms,
		Kinds:       []cmdline.Kind{cmdline.KindOptionValue, cmdline.KindPositional},
		Precondition: func(env *Env, _ *cmdline.Command, tok *cmdline.Token) bool {
			enc, ok := env.Encoders.Lookup(tok.ValueType)
			return ok && enc.CanEncode(tok.Raw, env.Platform)
		},
		Transform: func(env *Env, tok cmdline.Token, rng *rand.Rand) cmdline.Token {
			enc, ok := env.Encoders.Lookup(tok.ValueType)
			if !ok || !enc.CanEncode(tok.Raw, env.Platform) {
				return tok
			}
			tok.Raw = enc.Encode(tok.Raw, env.Platform, rng)
			return tok
		},
	}
}
