// Package dialect isolates the quoting and escaping rules of the shells and
// argument parsers a command line can target. The technique catalogue never
// looks at quoting rules directly; it only sees words produced here.
package dialect

import (
	"fmt"
	"sort"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

// Word is one whitespace-delimited word of a command line.
type Word struct {
	Text      string // as written; without the outer quotes when Quoted
	Quoted    bool   // the whole word is a single quoted segment
	QuoteChar byte
	Leading   string // whitespace before the word
	Offset    int    // byte offset of the word in the line
}

// Dialect splits a command line into words and reparses it into the argument
// vector the target program would receive.
type Dialect interface {
	Name() string
	Platform() cmdline.Platform
	// Split lexes the line, keeping every word as written.
	Split(line string) ([]Word, error)
	// Argv returns the arguments after quote and escape removal.
	Argv(line string) ([]string, error)
}

// SyntaxError reports a line that cannot be lexed.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	if e.Pos < 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Pos)
}

const (
	NamePosixShell  = "posix-sh"
	NameWindowsArgv = "windows-argv"
	NameWindowsCmd  = "windows-cmd"
)

var registry = map[string]Dialect{
	NamePosixShell:  PosixShell{},
	NameWindowsArgv: WindowsArgv{},
	NameWindowsCmd:  WindowsCmd{},
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, error) {
	if d, ok := registry[name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("unknown dialect '%s' (valid: %v)", name, Names())
}

// Names lists the registered dialect names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ForPlatform returns the default dialect of a platform.
func ForPlatform(p cmdline.Platform) Dialect {
	if p == cmdline.PlatformPosix {
		return PosixShell{}
	}
	return WindowsArgv{}
}

// Resolve picks the named dialect, or the platform default when name is empty.
// A dialect that targets another platform is rejected.
func Resolve(name string, p cmdline.Platform) (Dialect, error) {
	if name == "" {
		return ForPlatform(p), nil
	}
	d, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if d.Platform() != p {
		return nil, fmt.Errorf("dialect '%s' targets %s, not %s", name, d.Platform(), p)
	}
	return d, nil
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}
