package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

func TestWindowsSplit(t *testing.T) {
	words, err := WindowsArgv{}.Split(`taskkill  /f /im "security process.exe"`)
	require.NoError(t, err)
	require.Len(t, words, 4)

	assert.Equal(t, "taskkill", words[0].Text)
	assert.Equal(t, "  ", words[1].Leading)
	assert.Equal(t, "/im", words[2].Text)
	assert.True(t, words[3].Quoted)
	assert.Equal(t, "security process.exe", words[3].Text)
	assert.Equal(t, byte('"'), words[3].QuoteChar)
}

func TestWindowsSplitInnerQuotes(t *testing.T) {
	words, err := WindowsArgv{}.Split(`"task"kill /"i"m x`)
	require.NoError(t, err)
	require.Len(t, words, 4)
	assert.False(t, words[0].Quoted, "a partially quoted word is kept as written")
	assert.Equal(t, `"task"kill`, words[0].Text)
}

func TestWindowsSplitUnbalanced(t *testing.T) {
	_, err := WindowsArgv{}.Split(`cmd /c "echo hi`)
	require.Error(t, err)
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 7, serr.Pos)
}

func TestWindowsArgv(t *testing.T) {
	testCases := []struct {
		name string
		line string
		want []string
	}{
		{"plain", `a b  c`, []string{"a", "b", "c"}},
		{"quoted space", `a "b c" d`, []string{"a", "b c", "d"}},
		{"inner quotes", `"task"kill /"i"m`, []string{"taskkill", "/im"}},
		{"escaped quote", `a \"b\"`, []string{"a", `"b"`}},
		{"backslashes before quote", `a "c:\dir\\" b`, []string{"a", `c:\dir\`, "b"}},
		{"backslashes kept", `a c:\dir\file`, []string{"a", `c:\dir\file`}},
		{"doubled quote in quotes", `a "x""y"`, []string{"a", `x"y`}},
		{"empty quoted", `a ""`, []string{"a", ""}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := WindowsArgv{}.Argv(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWindowsCmdCaret(t *testing.T) {
	got, err := WindowsCmd{}.Argv(`ta^sk^kill /f "a^b"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"taskkill", "/f", "a^b"}, got)

	words, err := WindowsCmd{}.Split(`echo ^"x`)
	require.NoError(t, err, "an escaped quote does not open a quoted section")
	assert.Len(t, words, 2)
}

func TestPosixSplit(t *testing.T) {
	words, err := PosixShell{}.Split(`curl -s 'http://a b' "x y" cu"r"l`)
	require.NoError(t, err)
	require.Len(t, words, 5)

	assert.Equal(t, "curl", words[0].Text)
	assert.True(t, words[2].Quoted)
	assert.Equal(t, byte('\''), words[2].QuoteChar)
	assert.Equal(t, "http://a b", words[2].Text)
	assert.True(t, words[3].Quoted)
	assert.Equal(t, byte('"'), words[3].QuoteChar)
	assert.False(t, words[4].Quoted)
	assert.Equal(t, `cu"r"l`, words[4].Text)
	assert.Equal(t, " ", words[1].Leading)
}

func TestPosixSplitErrors(t *testing.T) {
	testCases := []struct {
		name string
		line string
	}{
		{"unbalanced single quote", `echo 'abc`},
		{"unbalanced double quote", `echo "abc`},
		{"pipeline", `cat a | grep b`},
		{"list", `a; b`},
		{"redirect", `echo a > out`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PosixShell{}.Split(tc.line)
			var serr *SyntaxError
			assert.ErrorAs(t, err, &serr)
		})
	}
}

func TestPosixArgv(t *testing.T) {
	got, err := PosixShell{}.Argv(`cu"r"l -'o' "a b" x\ y ''`)
	require.NoError(t, err)
	assert.Equal(t, []string{"curl", "-o", "a b", "x y", ""}, got)
}

func TestResolve(t *testing.T) {
	d, err := Resolve("", cmdline.PlatformPosix)
	require.NoError(t, err)
	assert.Equal(t, NamePosixShell, d.Name())

	d, err = Resolve(NameWindowsCmd, cmdline.PlatformWindows)
	require.NoError(t, err)
	assert.Equal(t, NameWindowsCmd, d.Name())

	_, err = Resolve(NamePosixShell, cmdline.PlatformWindows)
	assert.Error(t, err)

	_, err = Resolve("fish", cmdline.PlatformPosix)
	assert.Error(t, err)
}
