// Package composer turns a selection of techniques into distinct obfuscated
// variants of a command.
package composer

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
	"github.com/ticofookfook/argfuscator/internal/config"
	"github.com/ticofookfook/argfuscator/internal/diag"
	"github.com/ticofookfook/argfuscator/internal/selector"
	"github.com/ticofookfook/argfuscator/internal/technique"
)

// DefaultMaxRetries bounds consecutive duplicate or rejected attempts.
const DefaultMaxRetries = 32

// Step records one technique application. TokenIndex is -1 for structural
// techniques.
type Step struct {
	TechniqueID string `json:"technique_id" yaml:"technique_id"`
	TokenIndex  int    `json:"token_index" yaml:"token_index"`
}

// Variant is one obfuscated rendering of the command.
type Variant struct {
	Index int    `json:"variant_index" yaml:"variant_index"`
	Text  string `json:"text" yaml:"text"`
	Trace []Step `json:"trace" yaml:"trace"`
}

// TechniqueIDs returns the distinct technique ids of the trace in order of
// first use.
func (v Variant) TechniqueIDs() []string {
	seen := make(map[string]bool)
	ids := []string{}
	for _, s := range v.Trace {
		if !seen[s.TechniqueID] {
			seen[s.TechniqueID] = true
			ids = append(ids, s.TechniqueID)
		}
	}
	return ids
}

// Options controls generation.
type Options struct {
	Count      int
	Seed       int64
	MaxRetries int
	// Accept, when set, rejects variants; rejections count as retries.
	Accept func(text string) bool
}

// Result holds the generated variants and any non-fatal conditions.
type Result struct {
	Variants []Variant
	Seed     int64
	Warnings []diag.Warning
}

// NewSeed derives a seed from system entropy.
func NewSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]) & (1<<63 - 1))
}

// Generate produces up to opts.Count pairwise distinct variants. Every
// variant branches from a clone of cmd, so cmd itself is never modified.
// Generation stops after MaxRetries consecutive duplicates or rejections.
func Generate(env *technique.Env, cmd *cmdline.Command, sel *selector.Selection, opts Options) *Result {
	count := opts.Count
	if count < 1 {
		count = 1
	}
	res := &Result{Seed: opts.Seed}
	rng := rand.New(rand.NewSource(opts.Seed))
	seen := make(map[string]bool)
	misses := 0

	for len(res.Variants) < count {
		text, trace := compose(env, cmd, sel, rng)
		if seen[text] || (opts.Accept != nil && !opts.Accept(text)) {
			seen[text] = true
			misses++
			if misses > opts.MaxRetries {
				break
			}
			continue
		}
		seen[text] = true
		misses = 0
		res.Variants = append(res.Variants, Variant{Index: len(res.Variants), Text: text, Trace: trace})
	}

	if len(res.Variants) < count {
		res.Warnings = append(res.Warnings, diag.Warning{
			Code:       diag.InsufficientVariants,
			TokenIndex: -1,
			Message: fmt.Sprintf("produced %d of %d requested variants; no new variant after %d retries",
				len(res.Variants), count, opts.MaxRetries),
		})
	}
	config.PrintDebug("generated %d variants with seed %d\n", len(res.Variants), opts.Seed)
	return res
}

// compose builds one variant: a random non-empty subset of each token's
// techniques applied in registration order, then at most one structural
// technique.
func compose(env *technique.Env, cmd *cmdline.Command, sel *selector.Selection, rng *rand.Rand) (string, []Step) {
	out := cmd.Clone()
	trace := []Step{}

	for i := range out.Tokens {
		techs := sel.Tokens[i]
		if len(techs) == 0 {
			continue
		}
		mask := rng.Intn(1<<len(techs)-1) + 1
		for j, t := range techs {
			if mask&(1<<j) == 0 {
				continue
			}
			// an earlier technique may have invalidated this one
			if !t.AppliesTo(env, out, &out.Tokens[i]) {
				continue
			}
			out.Tokens[i] = t.Apply(env, out.Tokens[i], rng)
			trace = append(trace, Step{TechniqueID: t.ID, TokenIndex: out.Tokens[i].Index})
		}
	}

	if n := len(sel.Structural); n > 0 {
		if k := rng.Intn(n + 1); k < n {
			t := sel.Structural[k]
			if t.AppliesToCommand(env, out) {
				t.ApplyCommand(env, out, rng)
				trace = append(trace, Step{TechniqueID: t.ID, TokenIndex: -1})
			}
		}
	}
	return out.String(), trace
}
