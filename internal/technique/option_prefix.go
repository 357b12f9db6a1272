package technique

import (
	"math/rand"
	"strings"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

func optionPrefixSubstitution() Technique {
	return Technique{
		ID:          "OptionPrefixSubstitution",
		Name:        "Option Prefix Substitution",
		Description: "Replaces the option prefix with another prefix the program accepts, e.g. /f becomes -f.",
		Aliases:     []string{"OptionCharacterSubstitution"},
		Scope:       ScopeToken,
		Platforms:   []cmdline.Platform{cmdline.PlatformWindows},
		Kinds:       []cmdline.Kind{cmdline.KindOption},
		Precondition: func(env *Env, _ *cmdline.Command, tok *cmdline.Token) bool {
			return strings.HasPrefix(tok.Raw, tok.Prefix) && len(prefixAlternatives(env.prefixSet(), tok.Prefix)) > 0
		},
		Transform: func(env *Env, tok cmdline.Token, rng *rand.Rand) cmdline.Token {
			alts := prefixAlternatives(env.prefixSet(), tok.Prefix)
			if len(alts) == 0 || !strings.HasPrefix(tok.Raw, tok.Prefix) {
				return tok
			}
			tok.Raw = alts[rng.Intn(len(alts))] + tok.Raw[len(tok.Prefix):]
			return tok
		},
	}
}

// prefixSet is the option prefix equivalence set for the current program.
func (e *Env) prefixSet() []string {
	set := e.profile().PrefixSet(e.Tables.OptionChars)
	if len(set) == 0 {
		return DefaultTables().OptionChars
	}
	return set
}

// prefixAlternatives returns the members of set other than prefix, or nil
// when prefix is not in the set.
func prefixAlternatives(set []string, prefix string) []string {
	found := false
	var alts []string
	for _, p := range set {
		if p == prefix {
			found = true
			continue
		}
		if p != "" && !contains(alts, p) {
			alts = append(alts, p)
		}
	}
	if !found {
		return nil
	}
	return alts
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
