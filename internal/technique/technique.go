// Package technique holds the catalogue of obfuscation techniques.
//
// A technique is either token-local, rewriting the text of a single token, or
// structural, rearranging option tokens and separators across the whole
// command. Every technique declares the platforms and token kinds it is valid
// for plus a precondition; selection filters on those declarations and
// composition only ever calls the transform of an applicable technique.
package technique

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
	"github.com/ticofookfook/argfuscator/internal/profile"
)

// Scope tells whether a technique rewrites one token or the whole command.
type Scope int

const (
	ScopeToken Scope = iota
	ScopeCommand
)

func (s Scope) String() string {
	if s == ScopeCommand {
		return "structural"
	}
	return "token"
}

// Env is the read-only context a technique runs in.
type Env struct {
	Platform cmdline.Platform
	Profile  *profile.Profile
	Tables   Tables
	Encoders *EncoderRegistry
}

// NewEnv returns an Env with the default tables and encoders. A nil profile
// is replaced by an empty one.
func NewEnv(p cmdline.Platform, prof *profile.Profile) *Env {
	if prof == nil {
		prof = &profile.Profile{Platform: string(p)}
	}
	return &Env{Platform: p, Profile: prof, Tables: DefaultTables(), Encoders: DefaultEncoders()}
}

func (e *Env) profile() *profile.Profile {
	if e.Profile == nil {
		return &profile.Profile{Platform: string(e.Platform)}
	}
	return e.Profile
}

// Technique is one registered transformation. Values are copied into the
// catalogue on registration and never changed afterwards.
type Technique struct {
	ID          string
	Name        string
	Description string
	Aliases     []string
	Scope       Scope
	Platforms   []cmdline.Platform
	Kinds       []cmdline.Kind

	// Token-local techniques set Precondition and Transform.
	Precondition func(env *Env, cmd *cmdline.Command, tok *cmdline.Token) bool
	Transform    func(env *Env, tok cmdline.Token, rng *rand.Rand) cmdline.Token

	// Structural techniques set Applicable and Restructure. Restructure
	// rewrites cmd in place; callers pass a clone.
	Applicable  func(env *Env, cmd *cmdline.Command) bool
	Restructure func(env *Env, cmd *cmdline.Command, rng *rand.Rand)
}

func (t *Technique) validate() error {
	if t.ID == "" {
		return fmt.Errorf("technique has no id")
	}
	if len(t.Platforms) == 0 {
		return fmt.Errorf("technique %s declares no platform", t.ID)
	}
	switch t.Scope {
	case ScopeToken:
		if t.Transform == nil || len(t.Kinds) == 0 {
			return fmt.Errorf("token technique %s needs kinds and a transform", t.ID)
		}
	case ScopeCommand:
		if t.Restructure == nil {
			return fmt.Errorf("structural technique %s needs a restructure function", t.ID)
		}
	default:
		return fmt.Errorf("technique %s has invalid scope %d", t.ID, t.Scope)
	}
	return nil
}

// SupportsPlatform reports whether the technique is valid on p.
func (t *Technique) SupportsPlatform(p cmdline.Platform) bool {
	for _, q := range t.Platforms {
		if q == p {
			return true
		}
	}
	return false
}

// HandlesKind reports whether the technique declares k as applicable.
func (t *Technique) HandlesKind(k cmdline.Kind) bool {
	for _, q := range t.Kinds {
		if q == k {
			return true
		}
	}
	return false
}

// Structural reports whether the technique works on the whole command.
func (t *Technique) Structural() bool { return t.Scope == ScopeCommand }

// AppliesTo reports whether a token-local technique may rewrite tok.
// Literal tokens never qualify.
func (t *Technique) AppliesTo(env *Env, cmd *cmdline.Command, tok *cmdline.Token) bool {
	if t.Scope != ScopeToken || tok.Literal {
		return false
	}
	if !t.SupportsPlatform(env.Platform) || !t.HandlesKind(tok.Kind) {
		return false
	}
	return t.Precondition == nil || t.Precondition(env, cmd, tok)
}

// AppliesToCommand reports whether a structural technique can rearrange cmd.
func (t *Technique) AppliesToCommand(env *Env, cmd *cmdline.Command) bool {
	if t.Scope != ScopeCommand || !t.SupportsPlatform(env.Platform) {
		return false
	}
	return t.Applicable == nil || t.Applicable(env, cmd)
}

// Apply runs the transform and returns the rewritten token. Only the text
// and quoting of the token are taken from the transform's result.
func (t *Technique) Apply(env *Env, tok cmdline.Token, rng *rand.Rand) cmdline.Token {
	res := t.Transform(env, tok, rng)
	out := tok
	out.Raw, out.Quoted, out.QuoteChar = res.Raw, res.Quoted, res.QuoteChar
	return out
}

// ApplyCommand runs a structural technique on cmd in place.
func (t *Technique) ApplyCommand(env *Env, cmd *cmdline.Command, rng *rand.Rand) {
	t.Restructure(env, cmd, rng)
}

// PlatformNames returns the declared platforms as strings.
func (t *Technique) PlatformNames() []string {
	out := make([]string, len(t.Platforms))
	for i, p := range t.Platforms {
		out[i] = string(p)
	}
	return out
}

// KindNames returns the declared token kinds as strings.
func (t *Technique) KindNames() []string {
	out := make([]string, len(t.Kinds))
	for i, k := range t.Kinds {
		out[i] = k.String()
	}
	return out
}

func (t *Technique) String() string {
	return fmt.Sprintf("%s [%s] (%s)", t.ID, strings.Join(t.PlatformNames(), ","), t.Scope)
}
