package technique

// Substitution maps one character to its look-alike replacements.
type Substitution struct {
	From string   `mapstructure:"from" yaml:"from"`
	To   []string `mapstructure:"to" yaml:"to"`
}

// Tables are the configurable character sets used by the techniques.
type Tables struct {
	CharSubstitutions []Substitution `mapstructure:"char_substitutions" yaml:"char_substitutions"`
	InsertionChars    []string       `mapstructure:"insertion_chars" yaml:"insertion_chars"`
	// OptionChars is the default option prefix equivalence set.
	OptionChars []string `mapstructure:"option_chars" yaml:"option_chars"`
}

// DefaultTables returns the built-in tables. Every substitution folds back to
// its source letter under NFKC.
func DefaultTables() Tables {
	return Tables{
		CharSubstitutions: []Substitution{
			{"a", []string{"ᵃ", "ª"}}, {"b", []string{"ᵇ"}}, {"c", []string{"ᶜ"}},
			{"d", []string{"ᵈ"}}, {"e", []string{"ᵉ"}}, {"f", []string{"ᶠ"}},
			{"g", []string{"ᵍ"}}, {"h", []string{"ʰ"}}, {"i", []string{"ⁱ"}},
			{"j", []string{"ʲ"}}, {"k", []string{"ᵏ"}}, {"l", []string{"ˡ"}},
			{"m", []string{"ᵐ"}}, {"n", []string{"ⁿ"}}, {"o", []string{"ᵒ", "º"}},
			{"p", []string{"ᵖ"}}, {"r", []string{"ʳ"}}, {"s", []string{"ˢ"}},
			{"t", []string{"ᵗ"}}, {"u", []string{"ᵘ"}}, {"v", []string{"ᵛ"}},
			{"w", []string{"ʷ"}}, {"x", []string{"ˣ"}}, {"y", []string{"ʸ"}},
			{"z", []string{"ᶻ"}},
			{"A", []string{"ᴬ"}}, {"B", []string{"ᴮ"}}, {"D", []string{"ᴰ"}},
			{"E", []string{"ᴱ"}}, {"G", []string{"ᴳ"}}, {"H", []string{"ᴴ"}},
			{"I", []string{"ᴵ"}}, {"J", []string{"ᴶ"}}, {"K", []string{"ᴷ"}},
			{"L", []string{"ᴸ"}}, {"M", []string{"ᴹ"}}, {"N", []string{"ᴺ"}},
			{"O", []string{"ᴼ"}}, {"P", []string{"ᴾ"}}, {"R", []string{"ᴿ"}},
			{"T", []string{"ᵀ"}}, {"U", []string{"ᵁ"}}, {"W", []string{"ᵂ"}},
		},
		InsertionChars: []string{
			"\u200b", // zero width space
			"\u200c", // zero width non-joiner
			"\u200d", // zero width joiner
			"\u2060", // word joiner
			"\u00ad", // soft hyphen
			"\u034f", // combining grapheme joiner
		},
		OptionChars: []string{"/", "-"},
	}
}

// substitutions indexes CharSubstitutions by source rune. Entries whose From
// is not a single rune are ignored.
func (t Tables) substitutions() map[rune][]string {
	m := make(map[rune][]string, len(t.CharSubstitutions))
	for _, s := range t.CharSubstitutions {
		r := []rune(s.From)
		if len(r) != 1 || len(s.To) == 0 {
			continue
		}
		m[r[0]] = append(m[r[0]], s.To...)
	}
	return m
}

// WithDefaults fills empty tables from DefaultTables.
func (t Tables) WithDefaults() Tables {
	def := DefaultTables()
	if len(t.CharSubstitutions) == 0 {
		t.CharSubstitutions = def.CharSubstitutions
	}
	if len(t.InsertionChars) == 0 {
		t.InsertionChars = def.InsertionChars
	}
	if len(t.OptionChars) == 0 {
		t.OptionChars = def.OptionChars
	}
	return t
}
