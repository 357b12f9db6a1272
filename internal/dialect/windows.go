package dialect

import (
	"strings"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

// WindowsArgv follows the MSVCRT / CommandLineToArgvW splitting rules used by
// most Windows programs.
type WindowsArgv struct{}

func (WindowsArgv) Name() string               { return NameWindowsArgv }
func (WindowsArgv) Platform() cmdline.Platform { return cmdline.PlatformWindows }

func (WindowsArgv) Split(line string) ([]Word, error) { return splitWindows(line, false) }
func (WindowsArgv) Argv(line string) ([]string, error) {
	if _, err := splitWindows(line, false); err != nil {
		return nil, err
	}
	return argvWindows(line, false), nil
}

// WindowsCmd is WindowsArgv preceded by cmd.exe caret unescaping.
type WindowsCmd struct{}

func (WindowsCmd) Name() string               { return NameWindowsCmd }
func (WindowsCmd) Platform() cmdline.Platform { return cmdline.PlatformWindows }

func (WindowsCmd) Split(line string) ([]Word, error) { return splitWindows(line, true) }
func (WindowsCmd) Argv(line string) ([]string, error) {
	if _, err := splitWindows(line, true); err != nil {
		return nil, err
	}
	return argvWindows(line, true), nil
}

func splitWindows(line string, caret bool) ([]Word, error) {
	var words []Word
	n := len(line)
	i := 0
	for i < n {
		start := i
		for i < n && isBlank(line[i]) {
			i++
		}
		if i >= n {
			break
		}
		lead := line[start:i]
		wstart := i
		inQuote := false
		opened := -1
		for i < n {
			c := line[i]
			if caret && !inQuote && c == '^' {
				i += 2
				continue
			}
			if c == '\\' {
				j := i
				for j < n && line[j] == '\\' {
					j++
				}
				if j < n && line[j] == '"' && (j-i)%2 == 1 {
					i = j + 1 // escaped quote
					continue
				}
				i = j
				continue
			}
			if c == '"' {
				if inQuote && i+1 < n && line[i+1] == '"' {
					i += 2
					continue
				}
				inQuote = !inQuote
				if inQuote {
					opened = i
				}
				i++
				continue
			}
			if !inQuote && isBlank(c) {
				break
			}
			i++
		}
		if i > n {
			i = n
		}
		if inQuote {
			return nil, &SyntaxError{Pos: opened, Msg: "unbalanced double quote"}
		}
		words = append(words, windowsWord(lead, line[wstart:i], wstart))
	}
	return words, nil
}

func windowsWord(lead, text string, offset int) Word {
	w := Word{Text: text, Leading: lead, Offset: offset}
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		inner := text[1 : len(text)-1]
		if !strings.ContainsRune(inner, '"') && !strings.HasSuffix(inner, `\`) {
			w.Text = inner
			w.Quoted = true
			w.QuoteChar = '"'
		}
	}
	return w
}

func argvWindows(line string, caret bool) []string {
	var args []string
	var b strings.Builder
	inArg, inQuote := false, false
	n := len(line)
	for i := 0; i < n; {
		c := line[i]
		switch {
		case caret && !inQuote && c == '^':
			if i+1 < n {
				b.WriteByte(line[i+1])
				inArg = true
			}
			i += 2
		case c == '\\':
			j := i
			for j < n && line[j] == '\\' {
				j++
			}
			count := j - i
			if j < n && line[j] == '"' {
				b.WriteString(strings.Repeat(`\`, count/2))
				if count%2 == 1 {
					b.WriteByte('"')
					j++
				}
			} else {
				b.WriteString(strings.Repeat(`\`, count))
			}
			inArg = true
			i = j
		case c == '"':
			inArg = true
			if inQuote && i+1 < n && line[i+1] == '"' {
				b.WriteByte('"')
				i += 2
				continue
			}
			inQuote = !inQuote
			i++
		case !inQuote && isBlank(c):
			if inArg {
				args = append(args, b.String())
				b.Reset()
				inArg = false
			}
			i++
		default:
			b.WriteByte(c)
			inArg = true
			i++
		}
	}
	if inArg {
		args = append(args, b.String())
	}
	return args
}
