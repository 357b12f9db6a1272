package technique

import (
	"math/rand"
	"strings"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

func characterRemoval() Technique {
	return Technique{
		ID:          "CharacterRemoval",
		Name:        "Character Removal",
		Description: "Removes characters the shell and the program ignore: repeated slashes and ./ segments in paths, and empty quote pairs.",
		Scope:       ScopeToken,
		Platforms:   []cmdline.Platform{cmdline.PlatformPosix},
		Kinds:       []cmdline.Kind{cmdline.KindExecutable, cmdline.KindOptionValue, cmdline.KindPositional},
		Precondition: func(_ *Env, _ *cmdline.Command, tok *cmdline.Token) bool {
			return len(removable(tok.Raw, tok.Quoted, tok.ValueType == cmdline.ValuePath)) > 0
		},
		Transform: func(_ *Env, tok cmdline.Token, rng *rand.Rand) cmdline.Token {
			spans := removable(tok.Raw, tok.Quoted, tok.ValueType == cmdline.ValuePath)
			if len(spans) == 0 {
				return tok
			}
			drop := make([]bool, len(tok.Raw))
			for _, k := range pick(rng, len(spans)) {
				for i := spans[k][0]; i < spans[k][1]; i++ {
					drop[i] = true
				}
			}
			var sb strings.Builder
			for i := 0; i < len(tok.Raw); i++ {
				if !drop[i] {
					sb.WriteByte(tok.Raw[i])
				}
			}
			out := sb.String()
			// a leading "//" is implementation defined in POSIX paths
			if out == "" || (strings.HasPrefix(out, "//") && !strings.HasPrefix(tok.Raw, "//")) {
				return tok
			}
			tok.Raw = out
			return tok
		},
	}
}

// removable returns the byte ranges of raw that can be dropped without
// changing the word the shell passes on. Redundant slashes and "./"
// segments only count in filesystem paths.
func removable(raw string, quoted, path bool) [][2]int {
	var spans [][2]int
	for i := 1; path && i < len(raw); i++ {
		switch {
		case raw[i] == '/' && raw[i-1] == '/' && i > 1 && raw[i-2] != ':':
			spans = append(spans, [2]int{i, i + 1})
		case raw[i] == '.' && raw[i-1] == '/' && i+1 < len(raw) && raw[i+1] == '/':
			spans = append(spans, [2]int{i, i + 2})
		}
	}
	if quoted {
		return spans
	}
	inSingle, inDouble := false, false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case inSingle:
			if c == '\'' {
				inSingle = false
			}
		case inDouble:
			if c == '\\' {
				i++
			} else if c == '"' {
				inDouble = false
			}
		case c == '\\':
			i++
		case c == '\'' || c == '"':
			if i+1 < len(raw) && raw[i+1] == c {
				spans = append(spans, [2]int{i, i + 2})
				i++
			} else if c == '\'' {
				inSingle = true
			} else {
				inDouble = true
			}
		}
	}
	return spans
}
