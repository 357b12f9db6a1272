package technique

import (
	"math/rand"
	"strings"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

const maxQuoteSpans = 2

func quoteInsertion() Technique {
	return Technique{
		ID:          "QuoteInsertion",
		Name:        "Quote Insertion",
		Description: "Wraps parts of a token in quotes that the shell or argument parser removes.",
		Scope:       ScopeToken,
		Platforms:   cmdline.AllPlatforms,
		Kinds:       cmdline.AllKinds,
		Precondition: func(env *Env, _ *cmdline.Command, tok *cmdline.Token) bool {
			return len(quoteStarts(tok, env.Platform, nil)) > 0
		},
		Transform: func(env *Env, tok cmdline.Token, rng *rand.Rand) cmdline.Token {
			r := []rune(tok.Raw)
			taken := make(map[int]bool)
			type span struct {
				start, end int
				quote      rune
			}
			var spans []span
			for n := 1 + rng.Intn(maxQuoteSpans); n > 0; n-- {
				starts := quoteStarts(&tok, env.Platform, taken)
				if len(starts) == 0 {
					break
				}
				start := starts[rng.Intn(len(starts))]
				run := 0
				for i := start; i < len(r) && safeQuoteRune(r[i]) && !taken[i] && run < 4; i++ {
					run++
				}
				end := start + 1 + rng.Intn(run)
				// the span and its neighbours are off limits so quotes never touch
				for i := start - 1; i <= end; i++ {
					taken[i] = true
				}
				q := '"'
				if env.Platform == cmdline.PlatformPosix && rng.Intn(2) == 0 {
					q = '\''
				}
				spans = append(spans, span{start, end, q})
			}
			if len(spans) == 0 {
				return tok
			}
			var sb strings.Builder
			for i, c := range r {
				for _, s := range spans {
					if s.start == i {
						sb.WriteRune(s.quote)
					}
				}
				sb.WriteRune(c)
				for _, s := range spans {
					if s.end == i+1 {
						sb.WriteRune(s.quote)
					}
				}
			}
			tok.Raw = sb.String()
			return tok
		},
	}
}

// quoteStarts lists rune positions where a quoted span may begin.
func quoteStarts(tok *cmdline.Token, p cmdline.Platform, taken map[int]bool) []int {
	if tok.Quoted || tok.Raw == "" || strings.ContainsAny(tok.Raw, `"'`) {
		return nil
	}
	if p == cmdline.PlatformWindows && strings.ContainsAny(tok.Raw, "%^") {
		return nil
	}
	if p == cmdline.PlatformPosix && strings.ContainsAny(tok.Raw, "$`{~") {
		return nil
	}
	r := []rune(tok.Raw)
	var out []int
	for i, c := range r {
		if !safeQuoteRune(c) || taken[i] {
			continue
		}
		if i > 0 && r[i-1] == '\\' {
			continue
		}
		out = append(out, i)
	}
	return out
}

func safeQuoteRune(r rune) bool {
	if isASCIILetter(r) || (r >= '0' && r <= '9') {
		return true
	}
	return strings.ContainsRune("-_.,:/@+=", r)
}
