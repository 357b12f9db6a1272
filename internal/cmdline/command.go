package cmdline

import "strings"

// Command is an ordered sequence of tokens. The first token is always the
// executable.
type Command struct {
	Platform Platform
	Tokens   []Token
}

// Clone returns a deep copy. Variants always branch from a clone of the
// canonical command so no state is shared between them.
func (c *Command) Clone() *Command {
	out := &Command{Platform: c.Platform, Tokens: make([]Token, len(c.Tokens))}
	copy(out.Tokens, c.Tokens)
	return out
}

// Executable returns the executable token, or the zero token for an empty command.
func (c *Command) Executable() Token {
	if len(c.Tokens) == 0 {
		return Token{}
	}
	return c.Tokens[0]
}

// String serializes the command back into a single line.
func (c *Command) String() string {
	var sb strings.Builder
	for i, t := range c.Tokens {
		switch {
		case i > 0 && t.Attached:
			sb.WriteString(t.Separator)
		case t.Leading != "":
			sb.WriteString(t.Leading)
		case i > 0:
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text())
	}
	return sb.String()
}

// Position returns the current slice position of the token with the given
// canonical index, or -1.
func (c *Command) Position(index int) int {
	for i, t := range c.Tokens {
		if t.Index == index {
			return i
		}
	}
	return -1
}

// Unit is an option together with its value, if any, as slice positions.
type Unit struct {
	Option int
	Value  int // -1 when the option has no value
}

// Len returns the number of tokens covered by the unit.
func (u Unit) Len() int {
	if u.Value < 0 {
		return 1
	}
	return 2
}

// Units pairs every option token with the value token following it.
func (c *Command) Units() []Unit {
	var units []Unit
	for i := 0; i < len(c.Tokens); i++ {
		if c.Tokens[i].Kind != KindOption {
			continue
		}
		u := Unit{Option: i, Value: -1}
		if i+1 < len(c.Tokens) && c.Tokens[i+1].Kind == KindOptionValue {
			u.Value = i + 1
			i++
		}
		units = append(units, u)
	}
	return units
}

// ValueOf returns the position of the value token belonging to the option at
// position i, or -1.
func (c *Command) ValueOf(i int) int {
	if i+1 < len(c.Tokens) && c.Tokens[i].Kind == KindOption && c.Tokens[i+1].Kind == KindOptionValue {
		return i + 1
	}
	return -1
}

// OptionFor returns the position of the option owning the value at position i,
// or -1.
func (c *Command) OptionFor(i int) int {
	if i > 0 && c.Tokens[i].Kind == KindOptionValue && c.Tokens[i-1].Kind == KindOption {
		return i - 1
	}
	return -1
}
