// Package equiv models how a target program sees a command line. Two lines
// are equivalent when they normalise to the same canonical invocation.
package equiv

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
	"github.com/ticofookfook/argfuscator/internal/dialect"
	"github.com/ticofookfook/argfuscator/internal/parser"
	"github.com/ticofookfook/argfuscator/internal/profile"
	"github.com/ticofookfook/argfuscator/internal/technique"
)

// Option is one canonical option with its value.
type Option struct {
	Name     string
	Value    string
	HasValue bool
}

// Invocation is the canonical form of a command line.
type Invocation struct {
	Executable  string
	Options     []Option
	Positionals []string
}

func (inv Invocation) String() string {
	var sb strings.Builder
	sb.WriteString(inv.Executable)
	for _, o := range inv.Options {
		sb.WriteString(" [" + o.Name)
		if o.HasValue {
			sb.WriteString("=" + o.Value)
		}
		sb.WriteString("]")
	}
	for _, p := range inv.Positionals {
		fmt.Fprintf(&sb, " %q", p)
	}
	return sb.String()
}

// Model normalises command lines for one platform and dialect.
type Model struct {
	Platform cmdline.Platform
	Dialect  dialect.Dialect
	Profiles *profile.Set
	// Strip lists characters the program discards before parsing.
	Strip []string
	// Prefixes is the default option prefix equivalence set.
	Prefixes []string
}

// NewModel builds a model. A nil dialect selects the platform default.
func NewModel(p cmdline.Platform, d dialect.Dialect, profiles *profile.Set, tables technique.Tables) *Model {
	if d == nil {
		d = dialect.ForPlatform(p)
	}
	tables = tables.WithDefaults()
	return &Model{Platform: p, Dialect: d, Profiles: profiles, Strip: tables.InsertionChars, Prefixes: tables.OptionChars}
}

// Normalize reparses line and returns its canonical invocation.
func (m *Model) Normalize(line string) (Invocation, error) {
	argv, err := m.Dialect.Argv(line)
	if err != nil {
		return Invocation{}, err
	}
	if len(argv) == 0 {
		return Invocation{}, fmt.Errorf("empty command")
	}
	windows := m.Platform == cmdline.PlatformWindows
	exe := argv[0]
	if windows {
		exe = m.fold(exe, true, true)
	}
	prof := m.Profiles.Resolve(exe, m.Platform)

	words := make([]dialect.Word, len(argv))
	for i, a := range argv {
		words[i] = dialect.Word{Text: m.fold(a, windows || prof.StripsInsertedChars, windows || prof.UnicodeFolding)}
	}
	cmd := parser.Classify(words, parser.Options{Platform: m.Platform, Profiles: m.Profiles})
	return m.canonical(cmd, prof), nil
}

// Equivalent reports whether a and b normalise to the same invocation.
func (m *Model) Equivalent(a, b string) (bool, error) {
	na, err := m.Normalize(a)
	if err != nil {
		return false, err
	}
	nb, err := m.Normalize(b)
	if err != nil {
		return false, err
	}
	return reflect.DeepEqual(na, nb), nil
}

func (m *Model) fold(s string, strip, nfkc bool) string {
	if strip {
		for _, c := range m.Strip {
			if c != "" {
				s = strings.ReplaceAll(s, c, "")
			}
		}
	}
	if nfkc {
		s = norm.NFKC.String(s)
	}
	return s
}

func (m *Model) canonical(cmd *cmdline.Command, prof *profile.Profile) Invocation {
	inv := Invocation{Executable: m.value(cmd.Tokens[0])}
	if m.Platform == cmdline.PlatformWindows {
		inv.Executable = strings.ToLower(inv.Executable)
	}
	for i := 1; i < len(cmd.Tokens); i++ {
		t := cmd.Tokens[i]
		switch t.Kind {
		case cmdline.KindOption:
			var value *string
			if v := cmd.ValueOf(i); v >= 0 {
				s := m.value(cmd.Tokens[v])
				value = &s
				i = v
			}
			inv.Options = append(inv.Options, m.options(t, value, prof)...)
		default:
			inv.Positionals = append(inv.Positionals, m.value(t))
		}
	}
	if prof.OrderInsensitive {
		sort.SliceStable(inv.Options, func(a, b int) bool {
			oa, ob := inv.Options[a], inv.Options[b]
			if oa.Name != ob.Name {
				return oa.Name < ob.Name
			}
			return oa.Value < ob.Value
		})
	}
	return inv
}

// options canonicalises one option token, expanding POSIX flag stacks.
func (m *Model) options(t cmdline.Token, value *string, prof *profile.Profile) []Option {
	prefix := t.Prefix
	name := t.Name
	if m.Platform == cmdline.PlatformWindows {
		for _, p := range prof.PrefixSet(m.Prefixes) {
			if p == prefix {
				prefix = prof.PrefixSet(m.Prefixes)[0]
				break
			}
		}
	}
	if m.Platform == cmdline.PlatformWindows || !prof.CaseSensitive {
		name = strings.ToLower(name)
	}
	if m.Platform == cmdline.PlatformPosix && prefix == "-" && len(name) > 1 && isStack(name, value != nil, prof) {
		out := make([]Option, 0, len(name))
		for i, c := range name {
			o := Option{Name: "-" + string(c)}
			if value != nil && i == len(name)-1 {
				o.Value, o.HasValue = *value, true
			}
			out = append(out, o)
		}
		return out
	}
	o := Option{Name: prefix + name}
	if value != nil {
		o.Value, o.HasValue = *value, true
	}
	return []Option{o}
}

func isStack(name string, hasValue bool, prof *profile.Profile) bool {
	for i, c := range name {
		last := i == len(name)-1
		if last && hasValue {
			return prof.TakesValue(string(c))
		}
		if !prof.IsFlag(string(c)) {
			return false
		}
	}
	return true
}

// value decodes the re-encodings a program resolves on its own, by the type
// the classifier gave the token: percent escapes in URL paths, integer IPv4
// addresses and redundant path segments. Untyped values compare verbatim.
func (m *Model) value(t cmdline.Token) string {
	switch t.ValueType {
	case cmdline.ValueURL:
		return technique.URLEncoder{}.Decode(t.Raw, m.Platform)
	case cmdline.ValueIP:
		return technique.DecodeIPv4(t.Raw)
	case cmdline.ValuePath:
		return technique.CleanPath(t.Raw, m.Platform)
	}
	return t.Raw
}
