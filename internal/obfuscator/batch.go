package obfuscator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ticofookfook/argfuscator/internal/config"
)

// maxLineSize bounds a single command read from a batch input.
const maxLineSize = 1 << 20

// BatchItem is the outcome of one line of a batch input.
type BatchItem struct {
	Line   int
	Result *Result
	Err    error
}

// ProcessReader obfuscates one command per line. Blank lines and lines
// starting with '#' are skipped. A failing command is reported and skipped
// unless abort_on_error is set, in which case processing stops with that error.
func (octx *ObfuscationContext) ProcessReader(r io.Reader) ([]BatchItem, error) {
	var items []BatchItem
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		res, err := octx.ProcessCommand(line)
		if err != nil {
			if octx.Config.AbortOnError {
				return items, fmt.Errorf("line %d: %w", n, err)
			}
			config.PrintWarning("line %d: %v\n", n, err)
		}
		items = append(items, BatchItem{Line: n, Result: res, Err: err})
	}
	if err := sc.Err(); err != nil {
		return items, fmt.Errorf("failed to read input: %w", err)
	}
	config.PrintDebug("processed %d commands\n", len(items))
	return items, nil
}

// ProcessFile is ProcessReader over the named file.
func (octx *ObfuscationContext) ProcessFile(filePath string) ([]BatchItem, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %w", filePath, err)
	}
	defer f.Close()
	return octx.ProcessReader(f)
}

// Results returns the successful results of a batch in input order.
func Results(items []BatchItem) []*Result {
	out := make([]*Result, 0, len(items))
	for _, it := range items {
		if it.Err == nil && it.Result != nil {
			out = append(out, it.Result)
		}
	}
	return out
}

// FirstError returns the first failure of a batch, if any.
func FirstError(items []BatchItem) error {
	for _, it := range items {
		if it.Err != nil {
			return fmt.Errorf("line %d: %w", it.Line, it.Err)
		}
	}
	return nil
}
