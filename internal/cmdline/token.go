// Package cmdline holds the typed token model of a parsed command line.
package cmdline

import "fmt"

// Platform selects the technique subset and dialect used for a command.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformPosix   Platform = "posix"
)

// AllPlatforms lists every supported platform.
var AllPlatforms = []Platform{PlatformWindows, PlatformPosix}

// ParsePlatform converts a string to its Platform constant.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformWindows, PlatformPosix:
		return Platform(s), nil
	}
	return "", fmt.Errorf("invalid platform specified: '%s'", s)
}

// Kind is the semantic role of a token. It is assigned once at parse time.
type Kind int

const (
	KindExecutable Kind = iota
	KindOption
	KindOptionValue
	KindPositional
)

// AllKinds lists every token kind in declaration order.
var AllKinds = []Kind{KindExecutable, KindOption, KindOptionValue, KindPositional}

func (k Kind) String() string {
	switch k {
	case KindExecutable:
		return "executable"
	case KindOption:
		return "option"
	case KindOptionValue:
		return "option_value"
	case KindPositional:
		return "positional"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ValueType is the declared semantic type of an option value or positional.
type ValueType string

const (
	ValueNone     ValueType = ""
	ValueIP       ValueType = "ip"
	ValueURL      ValueType = "url"
	ValuePath     ValueType = "path"
	ValueRegistry ValueType = "registry"
	ValueText     ValueType = "text" // opaque data, never re-encoded or guessed
)

// Token is one semantic unit of a command line.
//
// Raw holds the token text as written, without the surrounding quotes when
// Quoted is set. Techniques may only change Raw and Quoted; structural
// techniques may additionally change Attached, Separator and Leading.
type Token struct {
	Index     int // position in the canonical parsed command
	Kind      Kind
	Raw       string
	Quoted    bool
	QuoteChar byte
	Leading   string // whitespace preceding the token in the input

	// Attached tokens are written directly after the previous token,
	// joined by Separator instead of whitespace ("--key=value", "-ab").
	Attached  bool
	Separator string

	// Option tokens only.
	Prefix string
	Name   string

	Literal   bool
	ValueType ValueType
}

// Text returns the token as it appears on the command line.
func (t Token) Text() string {
	if !t.Quoted {
		return t.Raw
	}
	q := t.QuoteChar
	if q == 0 {
		q = '"'
	}
	return string(q) + t.Raw + string(q)
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text())
}
