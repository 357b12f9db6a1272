// Package obfuscator orchestrates the overall process and holds shared context.
package obfuscator

import (
	"fmt"
	"strings"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
	"github.com/ticofookfook/argfuscator/internal/composer"
	"github.com/ticofookfook/argfuscator/internal/config"
	"github.com/ticofookfook/argfuscator/internal/diag"
	"github.com/ticofookfook/argfuscator/internal/dialect"
	"github.com/ticofookfook/argfuscator/internal/equiv"
	"github.com/ticofookfook/argfuscator/internal/parser"
	"github.com/ticofookfook/argfuscator/internal/profile"
	"github.com/ticofookfook/argfuscator/internal/selector"
	"github.com/ticofookfook/argfuscator/internal/technique"
)

// ObfuscationContext holds the state shared by every command processed in a
// run: the configuration, the technique catalogue and the merged profiles.
type ObfuscationContext struct {
	Config    *config.Config
	Catalogue *technique.Catalogue
	Profiles  *profile.Set
	Silent    bool // Inherited from config for convenience
}

// Result is the outcome of obfuscating one command.
type Result struct {
	Input    string
	Platform cmdline.Platform
	Dialect  string
	Seed     int64
	Variants []composer.Variant
	Warnings []diag.Warning
}

// NewObfuscationContext validates cfg and builds the catalogue and profile set.
func NewObfuscationContext(cfg *config.Config) (*ObfuscationContext, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	config.UseLogging(cfg)

	return &ObfuscationContext{
		Config:    cfg,
		Catalogue: technique.NewCatalogue(),
		Profiles:  profile.NewSet(profile.Builtin(), cfg.Profiles),
		Silent:    cfg.Silent,
	}, nil
}

// GetConfig returns the configuration from the context.
func (octx *ObfuscationContext) GetConfig() *config.Config {
	return octx.Config
}

// InferPlatform decides the target platform of a command from its
// executable. An explicit platform in the configuration always wins.
func (octx *ObfuscationContext) InferPlatform(line string) cmdline.Platform {
	switch octx.Config.Platform {
	case config.PlatformWindows:
		return cmdline.PlatformWindows
	case config.PlatformPosix:
		return cmdline.PlatformPosix
	}

	exe := firstWord(line)
	key := profile.Key(exe)
	for _, name := range octx.Config.WindowsPrograms {
		if profile.Key(name) == key {
			return cmdline.PlatformWindows
		}
	}
	for _, name := range octx.Config.UnixPrograms {
		if profile.Key(name) == key {
			return cmdline.PlatformPosix
		}
	}
	if prof := octx.Profiles.Lookup(exe); prof != nil {
		if p, err := cmdline.ParsePlatform(prof.Platform); err == nil {
			return p
		}
	}

	lower := strings.ToLower(strings.Trim(exe, `"'`))
	switch {
	case strings.HasSuffix(lower, ".exe"), strings.Contains(lower, `\`), hasDrive(lower):
		return cmdline.PlatformWindows
	case strings.HasPrefix(lower, "/"), strings.HasPrefix(lower, "./"), strings.HasPrefix(lower, "~/"):
		return cmdline.PlatformPosix
	}
	config.PrintDebug("platform of '%s' is unknown, using %s\n", exe, octx.Config.DefaultPlatform)
	return cmdline.Platform(octx.Config.DefaultPlatform)
}

// firstWord returns the executable text with surrounding quotes kept. It is
// only used for platform inference, before a dialect is chosen.
func firstWord(line string) string {
	line = strings.TrimLeft(line, " \t")
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ' ' || c == '\t':
			return line[:i]
		}
	}
	return line
}

func hasDrive(s string) bool {
	return len(s) >= 3 && s[1] == ':' && (s[2] == '\\' || s[2] == '/') && s[0] >= 'a' && s[0] <= 'z'
}

func (octx *ObfuscationContext) literalPolicy() parser.LiteralPolicy {
	l := octx.Config.Literals
	return parser.LiteralPolicy{Values: l.Values, Heuristic: l.Heuristic, MinLength: l.MinLength}
}

// ProcessCommand parses, selects and composes variants for a single command
// line. Errors are fatal for this command only.
func (octx *ObfuscationContext) ProcessCommand(line string) (*Result, error) {
	cfg := octx.Config
	platform := octx.InferPlatform(line)
	d, err := dialect.Resolve(cfg.Dialect, platform)
	if err != nil {
		return nil, err
	}

	cmd, err := parser.Parse(line, parser.Options{
		Platform: platform,
		Dialect:  d,
		Profiles: octx.Profiles,
		Literals: octx.literalPolicy(),
	})
	if err != nil {
		return nil, err
	}

	env := technique.NewEnv(platform, octx.Profiles.Resolve(cmd.Executable().Raw, platform))
	env.Tables = cfg.Tables.WithDefaults()

	sel, err := selector.Select(octx.Catalogue, env, cmd, cfg.Techniques)
	if err != nil {
		return nil, err
	}

	seed := composer.NewSeed()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	opts := composer.Options{Count: cfg.Count, Seed: seed, MaxRetries: cfg.MaxRetries}
	if cfg.Verify {
		opts.Accept = octx.verifier(platform, d, env.Tables, line)
	}

	gen := composer.Generate(env, cmd, sel, opts)
	res := &Result{
		Input:    line,
		Platform: platform,
		Dialect:  d.Name(),
		Seed:     gen.Seed,
		Variants: gen.Variants,
	}
	res.Warnings = append(res.Warnings, sel.Warnings...)
	res.Warnings = append(res.Warnings, gen.Warnings...)
	return res, nil
}

// verifier rejects variants that the equivalence model reads differently
// from the original line.
func (octx *ObfuscationContext) verifier(p cmdline.Platform, d dialect.Dialect, tables technique.Tables, line string) func(string) bool {
	model := equiv.NewModel(p, d, octx.Profiles, tables)
	return func(text string) bool {
		ok, err := model.Equivalent(line, text)
		if err != nil {
			config.PrintDebug("verify: %v\n", err)
			return false
		}
		if !ok {
			config.PrintDebug("verify: rejected %s\n", text)
		}
		return ok
	}
}
