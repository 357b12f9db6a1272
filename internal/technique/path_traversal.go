package technique

import (
	"math/rand"
	"strings"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

func pathTraversal() Technique {
	return Technique{
		ID:          "PathTraversal",
		Name:        "Path Traversal",
		Description: "Inserts a redundant dir/../dir detour into a path that resolves to the same location.",
		Scope:       ScopeToken,
		Platforms:   cmdline.AllPlatforms,
		Kinds:       []cmdline.Kind{cmdline.KindOptionValue, cmdline.KindPositional},
		Precondition: func(env *Env, _ *cmdline.Command, tok *cmdline.Token) bool {
			return tok.ValueType == cmdline.ValuePath && len(traversalPoints(tok.Raw, env.Platform)) > 0
		},
		Transform: func(env *Env, tok cmdline.Token, rng *rand.Rand) cmdline.Token {
			points := traversalPoints(tok.Raw, env.Platform)
			if len(points) == 0 {
				return tok
			}
			pt := points[rng.Intn(len(points))]
			detour := string(pt.sep) + ".." + string(pt.sep) + tok.Raw[pt.start:pt.end]
			tok.Raw = tok.Raw[:pt.end] + detour + tok.Raw[pt.end:]
			return tok
		},
	}
}

type traversalPoint struct {
	start, end int // the directory component
	sep        byte
}

// traversalPoints lists directory components that have a following component
// and can be left and re-entered.
func traversalPoints(raw string, p cmdline.Platform) []traversalPoint {
	if strings.HasPrefix(raw, `\\`) || strings.HasPrefix(raw, "//") || strings.ContainsAny(raw, "\"'~$`%*?") {
		return nil
	}
	isSep := func(c byte) bool { return c == '/' || (p == cmdline.PlatformWindows && c == '\\') }

	var points []traversalPoint
	start := 0
	for i := 0; i < len(raw); i++ {
		if !isSep(raw[i]) {
			continue
		}
		comp := raw[start:i]
		hasNext := i+1 < len(raw) && !isSep(raw[i+1])
		if hasNext && comp != "" && comp != "." && comp != ".." && !isDrive(comp) {
			points = append(points, traversalPoint{start: start, end: i, sep: raw[i]})
		}
		start = i + 1
	}
	return points
}

func isDrive(comp string) bool {
	return len(comp) == 2 && comp[1] == ':' && isASCIILetter(rune(comp[0]))
}
