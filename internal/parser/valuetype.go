package parser

import (
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

var registryRoots = []string{
	"hklm", "hkcu", "hkcr", "hku", "hkcc",
	"hkey_local_machine", "hkey_current_user", "hkey_classes_root", "hkey_users", "hkey_current_config",
}

// DetectValueType guesses the semantic type of an undeclared value.
func DetectValueType(text string, p cmdline.Platform) cmdline.ValueType {
	if text == "" {
		return cmdline.ValueNone
	}
	if isRegistryPath(text) {
		return cmdline.ValueRegistry
	}
	if u, err := url.Parse(text); err == nil && u.Scheme != "" && u.Host != "" && strings.Contains(text, "://") {
		return cmdline.ValueURL
	}
	if addr, err := netip.ParseAddr(text); err == nil && addr.Is4() {
		return cmdline.ValueIP
	}
	if isIntegerIPv4(text) {
		return cmdline.ValueIP
	}
	if isPath(text, p) {
		return cmdline.ValuePath
	}
	return cmdline.ValueNone
}

func isRegistryPath(text string) bool {
	lower := strings.ToLower(text)
	for _, root := range registryRoots {
		if lower == root || strings.HasPrefix(lower, root+`\`) {
			return true
		}
	}
	return false
}

// isIntegerIPv4 matches the decimal and 0x forms of an address whose first
// octet is not zero. Smaller numbers are counts, ports or ids.
func isIntegerIPv4(text string) bool {
	if text == "" || (text[0] == '0' && !strings.HasPrefix(strings.ToLower(text), "0x")) {
		return false
	}
	n, err := strconv.ParseUint(text, 0, 32)
	return err == nil && n >= 1<<24
}

// isPath accepts anchored paths ("/etc/x", "./x", "C:\x", "\\srv\share")
// and relative paths of plain file name segments ending in a name with an
// extension ("docs/readme.txt"). Anything with whitespace, shell
// metacharacters, empty segments or a colon after the drive is data.
func isPath(text string, p cmdline.Platform) bool {
	if strings.IndexFunc(text, unicode.IsSpace) >= 0 || strings.ContainsAny(text, "\"'`$*?<>|;&=") {
		return false
	}
	windows := p == cmdline.PlatformWindows
	isSep := func(r rune) bool { return r == '/' || (windows && r == '\\') }
	if strings.IndexFunc(text, isSep) < 0 {
		return false
	}
	rest := text
	if windows && hasDrive(text) {
		rest = text[2:]
		if rest == "" || !isSep(rune(rest[0])) {
			return false
		}
		return !strings.Contains(rest, ":")
	}
	if strings.Contains(rest, ":") {
		return false
	}
	if isSep(rune(rest[0])) {
		return true
	}
	for _, anchor := range []string{"./", "../", "~/"} {
		if strings.HasPrefix(rest, anchor) || (windows && strings.HasPrefix(rest, strings.ReplaceAll(anchor, "/", `\`))) {
			return true
		}
	}
	segs := strings.FieldsFunc(rest, isSep)
	if len(segs) < 2 || strings.Count(rest, "/")+strings.Count(rest, `\`) != len(segs)-1 {
		return false
	}
	for _, seg := range segs {
		if strings.IndexFunc(seg, notNameRune) >= 0 {
			return false
		}
	}
	last := segs[len(segs)-1]
	dot := strings.LastIndexByte(last, '.')
	return dot > 0 && dot < len(last)-1
}

func hasDrive(text string) bool {
	return len(text) >= 2 && text[1] == ':' && isASCIILetter(text[0])
}

func notNameRune(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("._-+@,", r))
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
