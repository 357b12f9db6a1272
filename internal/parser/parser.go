// Package parser turns a raw command line into the typed token model.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
	"github.com/ticofookfook/argfuscator/internal/dialect"
	"github.com/ticofookfook/argfuscator/internal/profile"
)

// ParseError reports an input that cannot be tokenized. It is fatal for that
// input only.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("parse error: %s", e.Msg)
}

// Options controls classification.
type Options struct {
	Platform cmdline.Platform
	Dialect  dialect.Dialect
	Profiles *profile.Set
	Literals LiteralPolicy
}

// Parse splits raw with the configured dialect and classifies the words.
func Parse(raw string, opts Options) (*cmdline.Command, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Input: raw, Pos: -1, Msg: "empty command"}
	}
	d := opts.Dialect
	if d == nil {
		d = dialect.ForPlatform(opts.Platform)
	}
	words, err := d.Split(raw)
	if err != nil {
		var serr *dialect.SyntaxError
		if errors.As(err, &serr) {
			return nil, &ParseError{Input: raw, Pos: serr.Pos, Msg: serr.Msg}
		}
		return nil, &ParseError{Input: raw, Pos: -1, Msg: err.Error()}
	}
	if len(words) == 0 {
		return nil, &ParseError{Input: raw, Pos: -1, Msg: "empty command"}
	}
	return Classify(words, opts), nil
}

// Classify assigns a kind to every word. The first word is the executable;
// options are recognised by prefix shape; the word after an option that takes
// a value becomes its option value; everything else is positional.
func Classify(words []dialect.Word, opts Options) *cmdline.Command {
	cmd := &cmdline.Command{Platform: opts.Platform}
	if len(words) == 0 {
		return cmd
	}
	prof := opts.Profiles.Resolve(words[0].Text, opts.Platform)

	add := func(t cmdline.Token) {
		t.Index = len(cmd.Tokens)
		cmd.Tokens = append(cmd.Tokens, t)
	}
	add(cmdline.Token{
		Kind:      cmdline.KindExecutable,
		Raw:       words[0].Text,
		Quoted:    words[0].Quoted,
		QuoteChar: words[0].QuoteChar,
		Leading:   words[0].Leading,
		ValueType: executableType(words[0].Text, opts.Platform),
	})

	var pending *cmdline.Token // option waiting for its value
	endOfOptions := false
	for _, w := range words[1:] {
		isOpt := !endOfOptions && !w.Quoted && looksLikeOption(w.Text, opts.Platform)
		if pending != nil && !isOpt {
			add(valueToken(w, pending, prof, opts))
			pending = nil
			continue
		}
		pending = nil
		if !endOfOptions && !w.Quoted && w.Text == "--" && opts.Platform == cmdline.PlatformPosix {
			endOfOptions = true
			add(cmdline.Token{Kind: cmdline.KindPositional, Raw: w.Text, Leading: w.Leading})
			continue
		}
		if !isOpt {
			add(positionalToken(w, opts))
			continue
		}

		prefix, rest := splitPrefix(w.Text)
		name, sep, value, hasValue := splitAttached(prefix, rest, opts.Platform, prof)
		opt := cmdline.Token{
			Kind:    cmdline.KindOption,
			Raw:     prefix + name,
			Prefix:  prefix,
			Name:    name,
			Leading: w.Leading,
		}
		add(opt)
		if hasValue {
			vw := dialect.Word{Text: value}
			if q, inner, ok := wholeQuoted(value, opts.Platform); ok {
				vw.Text, vw.Quoted, vw.QuoteChar = inner, true, q
			}
			v := valueToken(vw, &opt, prof, opts)
			v.Attached, v.Separator, v.Leading = true, sep, ""
			add(v)
			continue
		}
		if takesValue(prefix, name, opts.Platform, prof) {
			last := cmd.Tokens[len(cmd.Tokens)-1]
			pending = &last
		}
	}
	return cmd
}

func valueToken(w dialect.Word, opt *cmdline.Token, prof *profile.Profile, opts Options) cmdline.Token {
	t := cmdline.Token{
		Kind:      cmdline.KindOptionValue,
		Raw:       w.Text,
		Quoted:    w.Quoted,
		QuoteChar: w.QuoteChar,
		Leading:   w.Leading,
	}
	t.ValueType = prof.ValueTypeOf(opt.Name)
	if t.ValueType == cmdline.ValueNone {
		t.ValueType = DetectValueType(w.Text, opts.Platform)
	}
	t.Literal = prof.IsLiteralOption(opt.Name) || opts.Literals.IsLiteral(w.Text)
	return t
}

func positionalToken(w dialect.Word, opts Options) cmdline.Token {
	return cmdline.Token{
		Kind:      cmdline.KindPositional,
		Raw:       w.Text,
		Quoted:    w.Quoted,
		QuoteChar: w.QuoteChar,
		Leading:   w.Leading,
		ValueType: DetectValueType(w.Text, opts.Platform),
		Literal:   opts.Literals.IsLiteral(w.Text),
	}
}

// executableType marks an executable written as a path so that only
// path-safe rewrites touch its separators.
func executableType(text string, p cmdline.Platform) cmdline.ValueType {
	if isPath(text, p) {
		return cmdline.ValuePath
	}
	return cmdline.ValueNone
}

func looksLikeOption(text string, p cmdline.Platform) bool {
	if len(text) < 2 {
		return false
	}
	switch p {
	case cmdline.PlatformWindows:
		if text[0] != '/' && text[0] != '-' {
			return false
		}
		r := []rune(strings.TrimLeft(text, "-/"))
		return len(r) > 0 && (unicode.IsLetter(r[0]) || unicode.IsDigit(r[0]) || r[0] == '?')
	default:
		return text[0] == '-' && text != "--"
	}
}

func splitPrefix(text string) (prefix, rest string) {
	if strings.HasPrefix(text, "--") {
		return "--", text[2:]
	}
	return text[:1], text[1:]
}

// splitAttached separates "--key=value", "/key:value" and, for options
// declared to take a value, "-ovalue".
func splitAttached(prefix, rest string, p cmdline.Platform, prof *profile.Profile) (name, sep, value string, ok bool) {
	switch {
	case p == cmdline.PlatformWindows:
		if i := strings.IndexAny(rest, ":="); i > 0 && !prof.IsFlag(rest) {
			return rest[:i], rest[i : i+1], rest[i+1:], true
		}
	case prefix == "--":
		if i := strings.IndexByte(rest, '='); i > 0 {
			return rest[:i], "=", rest[i+1:], true
		}
	default:
		if len(rest) > 1 && prof.TakesValue(rest[:1]) && !prof.TakesValue(rest) && !prof.IsFlag(rest) {
			return rest[:1], "", rest[1:], true
		}
	}
	return rest, "", "", false
}

// takesValue decides whether the next non-option word belongs to the option.
// Declared profiles win; otherwise single-letter posix flags are assumed to
// take no value and everything else is assumed to take one.
func takesValue(prefix, name string, p cmdline.Platform, prof *profile.Profile) bool {
	if prof.TakesValue(name) {
		return true
	}
	if prof.IsFlag(name) {
		return false
	}
	if p == cmdline.PlatformPosix && prefix == "-" {
		// "-lvp 4444": a stack whose last flag takes a value
		if n := len(name); n > 1 && prof.TakesValue(name[n-1:]) {
			for _, c := range name[:n-1] {
				if !prof.IsFlag(string(c)) {
					return false
				}
			}
			return true
		}
		return len([]rune(name)) > 1 && !prof.Declared()
	}
	return !prof.Declared()
}

func wholeQuoted(s string, p cmdline.Platform) (byte, string, bool) {
	if len(s) < 2 {
		return 0, "", false
	}
	q := s[0]
	if q == '\'' && p == cmdline.PlatformWindows {
		return 0, "", false
	}
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return 0, "", false
	}
	inner := s[1 : len(s)-1]
	if strings.IndexByte(inner, q) >= 0 {
		return 0, "", false
	}
	return q, inner, true
}
