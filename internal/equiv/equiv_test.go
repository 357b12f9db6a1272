package equiv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
	"github.com/ticofookfook/argfuscator/internal/profile"
	"github.com/ticofookfook/argfuscator/internal/technique"
)

var profiles = profile.NewSet(profile.Builtin())

func TestNormalizeWindows(t *testing.T) {
	m := NewModel(cmdline.PlatformWindows, nil, profiles, technique.Tables{})

	inv, err := m.Normalize(`TaskKill -IM x.exe /F`)
	require.NoError(t, err)
	assert.Equal(t, "taskkill", inv.Executable)
	assert.Equal(t, []Option{
		{Name: "/f"},
		{Name: "/im", Value: "x.exe", HasValue: true},
	}, inv.Options)
	assert.Empty(t, inv.Positionals)
	assert.Equal(t, "taskkill [/f] [/im=x.exe]", inv.String())
}

func TestEquivalent(t *testing.T) {
	testCases := []struct {
		name     string
		platform cmdline.Platform
		a, b     string
		want     bool
	}{
		{"prefix and case", cmdline.PlatformWindows,
			"taskkill /f /im x.exe", "TASKKILL -F -iM x.exe", true},
		{"order insensitive", cmdline.PlatformWindows,
			"taskkill /f /im x.exe", "taskkill /im x.exe /f", true},
		{"inner quotes", cmdline.PlatformWindows,
			"taskkill /f /im x.exe", `"task"kill /"f" /im "x".exe`, true},
		{"unicode folding and stripping", cmdline.PlatformWindows,
			"taskkill /f /im x.exe", "taskkill /\u1da0 /i\u200bm x.exe", true},
		{"different value", cmdline.PlatformWindows,
			"taskkill /f /im x.exe", "taskkill /f /im y.exe", false},
		{"order sensitive program", cmdline.PlatformWindows,
			`reg export HKLM\SAM out.reg`, `reg export out.reg HKLM\SAM`, false},
		{"integer address", cmdline.PlatformWindows,
			"ping -n 1 10.0.0.1", "ping /n 1 167772161", true},
		{"mixed separators", cmdline.PlatformWindows,
			`certutil -f C:\Users\Public\a.txt`, `certutil -f C:/users\Public/../Public\a.txt`, true},
		{"stacked flags", cmdline.PlatformPosix,
			"curl -s -L https://example.com/", "curl -sL https://example.com/", true},
		{"attached short value", cmdline.PlatformPosix,
			"curl -o /tmp/out.html https://example.com/", "curl -o/tmp/out.html https://example.com/", true},
		{"percent encoded path", cmdline.PlatformPosix,
			"curl https://example.com/index.html", "curl https://example.com/%69ndex.html", true},
		{"shell quoting", cmdline.PlatformPosix,
			"curl -s https://example.com/", `cu"r"l -'s' 'https://example.com/'`, true},
		{"case sensitive options", cmdline.PlatformPosix,
			"curl -s https://example.com/", "curl -S https://example.com/", false},
		{"long option separator", cmdline.PlatformPosix,
			"wget --output-document /tmp/a http://h/a", "wget --output-document=/tmp/a http://h/a", true},
		{"path traversal", cmdline.PlatformPosix,
			"cat /etc/passwd", "cat /etc/../etc/./passwd", true},
		{"different path", cmdline.PlatformPosix,
			"cat /etc/passwd", "cat /etc/shadow", false},
		{"no stripping on posix", cmdline.PlatformPosix,
			"cat /etc/passwd", "cat /etc/pa\u200bsswd", false},
		{"relative path", cmdline.PlatformPosix,
			"cat docs/readme.txt", "cat ./docs/../docs/readme.txt", true},
		{"header is data", cmdline.PlatformPosix,
			`curl -H "Accept: text/html" http://example.com`, `curl -H "Accept: text/./html" http://example.com`, false},
		{"header traversal", cmdline.PlatformPosix,
			`curl -H "Accept: text/html" http://example.com`, `curl -H "./Accept: text/../Accept: text/html" http://example.com`, false},
		{"sed script", cmdline.PlatformPosix,
			"sed s/a// file.txt", "sed s/a/ file.txt", false},
		{"shell body", cmdline.PlatformPosix,
			`bash -c "cat /etc/passwd"`, `bash -c "./cat /etc/passwd"`, false},
		{"registry data", cmdline.PlatformWindows,
			`reg add HKLM\Software\X /v InstallDir /d C:\tools\bin /f`, `reg add HKLM\Software\X /v InstallDir /d C:\tools\..\tools\bin /f`, false},
		{"registry data separators", cmdline.PlatformWindows,
			`reg add HKLM\Software\X /v InstallDir /d C:\tools\bin /f`, `reg add HKLM\Software\X /v InstallDir /d C:/tools/bin /f`, false},
		{"small numbers are not addresses", cmdline.PlatformWindows,
			"ping -n 1 10.0.0.1", "ping -n 0x1 10.0.0.1", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewModel(tc.platform, nil, profiles, technique.Tables{})
			got, err := m.Equivalent(tc.a, tc.b)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEquivalentParseError(t *testing.T) {
	m := NewModel(cmdline.PlatformPosix, nil, profiles, technique.Tables{})
	_, err := m.Equivalent("echo ok", `echo 'broken`)
	assert.Error(t, err)

	_, err = m.Normalize("   ")
	assert.Error(t, err)
}
