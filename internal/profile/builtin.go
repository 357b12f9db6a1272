package profile

// Builtin returns the profiles shipped with the tool. Configuration files may
// add to or replace them by name.
func Builtin() []Profile {
	return []Profile{
		{
			Names:            []string{"taskkill"},
			Platform:         "windows",
			Prefixes:         []string{"/", "-"},
			ValueOptions:     []string{"im", "pid", "s", "u", "p", "fi"},
			FlagOptions:      []string{"f", "t"},
			OrderInsensitive: true,
		},
		{
			Names:        []string{"reg"},
			Platform:     "windows",
			Prefixes:     []string{"/", "-"},
			ValueOptions: []string{"v", "t", "d", "s", "se"},
			FlagOptions:  []string{"f", "y", "ve", "reg:32", "reg:64"},
			ValueTypes:   map[string]string{"v": "text", "d": "text"},
		},
		{
			Names:          []string{"powershell", "pwsh"},
			Platform:       "windows",
			Prefixes:       []string{"-", "/"},
			ValueOptions:   []string{"command", "c", "file", "executionpolicy", "ep", "exec", "windowstyle", "w", "encodedcommand", "enc", "e", "ec"},
			FlagOptions:    []string{"noprofile", "nop", "noninteractive", "noni", "nologo", "sta", "mta"},
			LiteralOptions: []string{"encodedcommand", "enc", "e", "ec"},
			ValueTypes:     map[string]string{"file": "path", "command": "text", "c": "text"},
		},
		{
			Names:            []string{"certutil"},
			Platform:         "windows",
			Prefixes:         []string{"-", "/"},
			FlagOptions:      []string{"urlcache", "split", "f", "decode", "encode", "decodehex", "verifyctl"},
			OrderInsensitive: true,
		},
		{
			Names:            []string{"ping"},
			Platform:         "windows",
			Prefixes:         []string{"-", "/"},
			ValueOptions:     []string{"n", "l", "w", "i", "s", "k", "j"},
			FlagOptions:      []string{"t", "a", "4", "6", "r"},
			OrderInsensitive: true,
		},
		{
			Names:        []string{"bitsadmin"},
			Platform:     "windows",
			Prefixes:     []string{"/", "-"},
			ValueOptions: []string{"transfer", "create", "addfile", "priority"},
			FlagOptions:  []string{"download", "upload", "resume", "complete"},
		},
		{
			Names:          []string{"curl"},
			Platform:       "posix",
			ValueOptions:   []string{"o", "output", "X", "request", "d", "data", "H", "header", "u", "user", "A", "user-agent", "e", "referer", "x", "proxy"},
			FlagOptions:    []string{"silent", "location", "insecure", "fail", "include", "verbose", "remote-name"},
			StackableFlags: []string{"s", "S", "L", "k", "f", "i", "v", "O"},
			ValueTypes: map[string]string{
				"o": "path", "output": "path",
				"x": "url", "proxy": "url", "e": "url", "referer": "url",
				"H": "text", "header": "text", "d": "text", "data": "text",
				"A": "text", "user-agent": "text", "u": "text", "user": "text",
			},
			OrderInsensitive: true,
			CaseSensitive:    true,
		},
		{
			Names:          []string{"wget"},
			Platform:       "posix",
			ValueOptions:   []string{"O", "output-document", "U", "user-agent", "P", "directory-prefix"},
			FlagOptions:    []string{"quiet", "continue", "timestamping", "no-check-certificate"},
			StackableFlags: []string{"q", "c", "N", "v"},
			ValueTypes: map[string]string{
				"O": "path", "output-document": "path", "P": "path", "directory-prefix": "path",
				"U": "text", "user-agent": "text",
			},
			OrderInsensitive: true,
			CaseSensitive:    true,
		},
		{
			Names:            []string{"nc", "ncat", "netcat"},
			Platform:         "posix",
			ValueOptions:     []string{"p", "e", "s", "w"},
			StackableFlags:   []string{"l", "v", "n", "z", "u"},
			ValueTypes:       map[string]string{"e": "path", "s": "ip"},
			OrderInsensitive: true,
			CaseSensitive:    true,
		},
		{
			Names:            []string{"ssh"},
			Platform:         "posix",
			ValueOptions:     []string{"p", "i", "l", "o", "L", "R", "D"},
			StackableFlags:   []string{"N", "f", "T", "v", "q", "4", "6"},
			ValueTypes:       map[string]string{"i": "path"},
			OrderInsensitive: true,
			CaseSensitive:    true,
		},
	}
}
