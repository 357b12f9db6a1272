// Package profile describes how individual target executables parse their
// arguments. Techniques consult a profile to decide whether a transformation
// keeps the command line equivalent for that program.
package profile

import (
	"path"
	"strings"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

// Profile holds the argument parsing rules of one executable.
type Profile struct {
	Names    []string `mapstructure:"names" yaml:"names"`
	Platform string   `mapstructure:"platform" yaml:"platform"`

	// Prefixes is the option prefix equivalence set, e.g. ["/", "-"].
	Prefixes []string `mapstructure:"prefixes" yaml:"prefixes,omitempty"`

	ValueOptions   []string `mapstructure:"value_options" yaml:"value_options,omitempty"`
	FlagOptions    []string `mapstructure:"flag_options" yaml:"flag_options,omitempty"`
	StackableFlags []string `mapstructure:"stackable_flags" yaml:"stackable_flags,omitempty"`
	LiteralOptions []string `mapstructure:"literal_options" yaml:"literal_options,omitempty"`

	// ValueTypes maps option names to the semantic type of their value.
	ValueTypes map[string]string `mapstructure:"value_types" yaml:"value_types,omitempty"`

	OrderInsensitive    bool `mapstructure:"order_insensitive" yaml:"order_insensitive"`
	CaseSensitive       bool `mapstructure:"case_sensitive" yaml:"case_sensitive"`
	StripsInsertedChars bool `mapstructure:"strips_inserted_chars" yaml:"strips_inserted_chars"`
	UnicodeFolding      bool `mapstructure:"unicode_folding" yaml:"unicode_folding"`
}

// Key normalises an executable token to the name used for lookups:
// base name, lower case, without quotes and without a ".exe" suffix.
func Key(exe string) string {
	s := strings.NewReplacer(`"`, "", `'`, "").Replace(exe)
	s = strings.ReplaceAll(s, `\`, "/")
	s = strings.ToLower(path.Base(s))
	return strings.TrimSuffix(s, ".exe")
}

func (p *Profile) foldName(name string) string {
	if p.CaseSensitive {
		return name
	}
	return strings.ToLower(name)
}

func (p *Profile) contains(list []string, name string) bool {
	name = p.foldName(name)
	for _, n := range list {
		if p.foldName(n) == name {
			return true
		}
	}
	return false
}

// Declared reports whether the profile lists any options at all.
func (p *Profile) Declared() bool {
	return len(p.ValueOptions)+len(p.FlagOptions)+len(p.StackableFlags) > 0
}

// TakesValue reports whether the option is declared to consume a value.
func (p *Profile) TakesValue(name string) bool { return p.contains(p.ValueOptions, name) }

// IsFlag reports whether the option is declared to take no value.
func (p *Profile) IsFlag(name string) bool {
	return p.contains(p.FlagOptions, name) || p.contains(p.StackableFlags, name)
}

// IsStackable reports whether a single-character flag may be merged with others.
// Stacking is always case-sensitive.
func (p *Profile) IsStackable(name string) bool {
	for _, n := range p.StackableFlags {
		if n == name {
			return true
		}
	}
	return false
}

// IsLiteralOption reports whether the option's value must be kept verbatim.
func (p *Profile) IsLiteralOption(name string) bool { return p.contains(p.LiteralOptions, name) }

// ValueTypeOf returns the declared value type of an option, if any.
func (p *Profile) ValueTypeOf(name string) cmdline.ValueType {
	for k, v := range p.ValueTypes {
		if p.foldName(k) == p.foldName(name) {
			return cmdline.ValueType(v)
		}
	}
	return cmdline.ValueNone
}

// PrefixSet returns the option prefix equivalence set, falling back to def.
func (p *Profile) PrefixSet(def []string) []string {
	if len(p.Prefixes) > 0 {
		return p.Prefixes
	}
	return def
}

// Set is an ordered collection of profiles with lookup by executable name.
type Set struct {
	profiles []Profile
	byName   map[string]int
}

// NewSet builds a set. Later profiles replace earlier ones sharing a name.
func NewSet(profiles ...[]Profile) *Set {
	s := &Set{byName: make(map[string]int)}
	for _, list := range profiles {
		for _, p := range list {
			s.add(p)
		}
	}
	return s
}

func (s *Set) add(p Profile) {
	for _, n := range p.Names {
		if idx, ok := s.byName[Key(n)]; ok {
			s.profiles[idx] = p
			for _, m := range p.Names {
				s.byName[Key(m)] = idx
			}
			return
		}
	}
	s.profiles = append(s.profiles, p)
	for _, n := range p.Names {
		s.byName[Key(n)] = len(s.profiles) - 1
	}
}

// Lookup returns the profile of exe, or nil if none is registered.
func (s *Set) Lookup(exe string) *Profile {
	if s == nil {
		return nil
	}
	if idx, ok := s.byName[Key(exe)]; ok {
		p := s.profiles[idx]
		return &p
	}
	return nil
}

// Resolve is like Lookup but returns an empty profile for unknown executables.
func (s *Set) Resolve(exe string, platform cmdline.Platform) *Profile {
	if p := s.Lookup(exe); p != nil {
		return p
	}
	return &Profile{Platform: string(platform)}
}

// All returns the profiles in registration order.
func (s *Set) All() []Profile {
	out := make([]Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}
