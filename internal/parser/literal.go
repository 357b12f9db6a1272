package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultLiteralMinLength is the shortest token the base64 heuristic accepts.
const DefaultLiteralMinLength = 24

var base64Shape = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// LiteralPolicy decides which tokens must be kept byte-for-byte.
type LiteralPolicy struct {
	// Values are exact token texts the user marked as literal.
	Values []string
	// Heuristic enables base64 payload detection.
	Heuristic bool
	MinLength int
}

// IsLiteral reports whether text must survive every variant unchanged.
func (p LiteralPolicy) IsLiteral(text string) bool {
	for _, v := range p.Values {
		if v == text {
			return true
		}
	}
	if !p.Heuristic {
		return false
	}
	return LooksLikeBase64(text, p.MinLength)
}

// LooksLikeBase64 reports whether text is a plausible base64 blob of at least
// minLen characters. A non-positive minLen selects the default. Absolute paths
// and single-case words are rejected.
func LooksLikeBase64(text string, minLen int) bool {
	if minLen <= 0 {
		minLen = DefaultLiteralMinLength
	}
	if len(text) < minLen || len(text)%4 != 0 {
		return false
	}
	if text[0] == '/' || !base64Shape.MatchString(text) {
		return false
	}
	return strings.IndexFunc(text, unicode.IsUpper) >= 0 && strings.IndexFunc(text, unicode.IsLower) >= 0
}
