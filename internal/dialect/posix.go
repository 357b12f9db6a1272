package dialect

import (
	"errors"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

// PosixShell lexes lines the way a POSIX/bash shell would, using mvdan.cc/sh.
// Only a single simple command is accepted.
type PosixShell struct{}

func (PosixShell) Name() string               { return NamePosixShell }
func (PosixShell) Platform() cmdline.Platform { return cmdline.PlatformPosix }

func (PosixShell) Split(line string) ([]Word, error) {
	call, err := parseSimpleCommand(line)
	if err != nil {
		return nil, err
	}
	words := make([]Word, 0, len(call.Args))
	prev := 0
	for _, w := range call.Args {
		start, end := int(w.Pos().Offset()), int(w.End().Offset())
		words = append(words, posixWord(line[prev:start], line[start:end], start, w))
		prev = end
	}
	return words, nil
}

func (PosixShell) Argv(line string) ([]string, error) {
	call, err := parseSimpleCommand(line)
	if err != nil {
		return nil, err
	}
	cfg := &expand.Config{Env: expand.ListEnviron()}
	args := make([]string, 0, len(call.Args))
	for _, w := range call.Args {
		s, err := expand.Literal(cfg, w)
		if err != nil {
			return nil, &SyntaxError{Pos: int(w.Pos().Offset()), Msg: err.Error()}
		}
		args = append(args, s)
	}
	return args, nil
}

func parseSimpleCommand(line string) (*syntax.CallExpr, error) {
	p := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	f, err := p.Parse(strings.NewReader(line), "")
	if err != nil {
		var perr syntax.ParseError
		if errors.As(err, &perr) {
			return nil, &SyntaxError{Pos: int(perr.Pos.Offset()), Msg: perr.Text}
		}
		return nil, &SyntaxError{Pos: -1, Msg: err.Error()}
	}
	if len(f.Stmts) == 0 {
		return nil, &SyntaxError{Pos: -1, Msg: "empty command"}
	}
	if len(f.Stmts) > 1 {
		return nil, &SyntaxError{Pos: int(f.Stmts[1].Pos().Offset()), Msg: "only a single command is supported"}
	}
	st := f.Stmts[0]
	call, ok := st.Cmd.(*syntax.CallExpr)
	if !ok || st.Negated || st.Background || st.Coprocess || len(st.Redirs) > 0 || len(call.Assigns) > 0 || len(call.Args) == 0 {
		return nil, &SyntaxError{Pos: int(st.Pos().Offset()), Msg: "unsupported shell construct"}
	}
	return call, nil
}

func posixWord(lead, text string, offset int, w *syntax.Word) Word {
	word := Word{Text: text, Leading: lead, Offset: offset}
	if len(w.Parts) != 1 || len(text) < 2 {
		return word
	}
	switch p := w.Parts[0].(type) {
	case *syntax.SglQuoted:
		if !p.Dollar {
			word.Text, word.Quoted, word.QuoteChar = text[1:len(text)-1], true, '\''
		}
	case *syntax.DblQuoted:
		if !p.Dollar {
			word.Text, word.Quoted, word.QuoteChar = text[1:len(text)-1], true, '"'
		}
	}
	return word
}
