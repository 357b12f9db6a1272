package technique

import (
	"fmt"
	"math/rand"
	"net/netip"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

// Encoder re-encodes values of one semantic type without changing what they
// denote. Decode maps any encoding produced by Encode back to a canonical form.
type Encoder interface {
	CanEncode(value string, p cmdline.Platform) bool
	Encode(value string, p cmdline.Platform, rng *rand.Rand) string
	Decode(value string, p cmdline.Platform) string
}

// EncoderRegistry maps value types to their encoder.
type EncoderRegistry struct {
	encoders map[cmdline.ValueType]Encoder
}

// DefaultEncoders registers the ip, url and path encoders.
func DefaultEncoders() *EncoderRegistry {
	r := &EncoderRegistry{encoders: make(map[cmdline.ValueType]Encoder)}
	r.Register(cmdline.ValueIP, IPEncoder{})
	r.Register(cmdline.ValueURL, URLEncoder{})
	r.Register(cmdline.ValuePath, PathEncoder{})
	return r
}

// Register sets the encoder of vt, replacing any previous one.
func (r *EncoderRegistry) Register(vt cmdline.ValueType, e Encoder) {
	if r.encoders == nil {
		r.encoders = make(map[cmdline.ValueType]Encoder)
	}
	r.encoders[vt] = e
}

// Lookup returns the encoder of vt.
func (r *EncoderRegistry) Lookup(vt cmdline.ValueType) (Encoder, bool) {
	if r == nil || vt == cmdline.ValueNone {
		return nil, false
	}
	e, ok := r.encoders[vt]
	return e, ok
}

// IPEncoder writes dotted-quad IPv4 addresses as a single decimal or
// hexadecimal integer, both accepted by inet_aton.
type IPEncoder struct{}

func (IPEncoder) CanEncode(value string, _ cmdline.Platform) bool {
	addr, err := netip.ParseAddr(value)
	return err == nil && addr.Is4()
}

func (IPEncoder) Encode(value string, _ cmdline.Platform, rng *rand.Rand) string {
	addr, err := netip.ParseAddr(value)
	if err != nil || !addr.Is4() {
		return value
	}
	b := addr.As4()
	n := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	if rng.Intn(2) == 0 {
		return strconv.FormatUint(uint64(n), 10)
	}
	return fmt.Sprintf("0x%X", n)
}

func (IPEncoder) Decode(value string, _ cmdline.Platform) string {
	return DecodeIPv4(value)
}

// DecodeIPv4 turns a decimal, hex or octal integer into a dotted quad. Other
// values are returned unchanged.
func DecodeIPv4(value string) string {
	if strings.Contains(value, ".") {
		return value
	}
	n, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return value
	}
	return fmt.Sprintf("%d.%d.%d.%d", n>>24, (n>>16)&0xff, (n>>8)&0xff, n&0xff)
}

// URLEncoder percent-encodes letters in the path of a URL.
type URLEncoder struct{}

func (URLEncoder) CanEncode(value string, _ cmdline.Platform) bool {
	_, pth, ok := splitURL(value)
	return ok && strings.IndexFunc(pathPart(pth), isASCIILetter) >= 0
}

// pathPart drops the query and fragment.
func pathPart(rest string) string {
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		return rest[:i]
	}
	return rest
}

func (URLEncoder) Encode(value string, _ cmdline.Platform, rng *rand.Rand) string {
	base, pth, ok := splitURL(value)
	if !ok {
		return value
	}
	var letters []int
	for i, r := range pathPart(pth) {
		if isASCIILetter(r) {
			letters = append(letters, i)
		}
	}
	if len(letters) == 0 {
		return value
	}
	chosen := make(map[int]bool)
	for _, k := range pick(rng, len(letters)) {
		chosen[letters[k]] = true
	}
	var sb strings.Builder
	sb.WriteString(base)
	for i := 0; i < len(pth); i++ {
		if chosen[i] {
			fmt.Fprintf(&sb, "%%%02X", pth[i])
			continue
		}
		sb.WriteByte(pth[i])
	}
	return sb.String()
}

func (URLEncoder) Decode(value string, _ cmdline.Platform) string {
	base, pth, ok := splitURL(value)
	if !ok {
		return value
	}
	if dec, err := url.PathUnescape(pth); err == nil {
		return base + dec
	}
	return value
}

// splitURL cuts an absolute URL into "scheme://host" and the rest.
func splitURL(value string) (base, rest string, ok bool) {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", "", false
	}
	i := strings.Index(value, "://")
	if i < 0 {
		return "", "", false
	}
	j := strings.IndexAny(value[i+3:], "/?#")
	if j < 0 {
		return value, "", true
	}
	cut := i + 3 + j
	return value[:cut], value[cut:], true
}

// PathEncoder rewrites path separators. On Windows a subset of backslashes
// becomes forward slashes; on POSIX a "./" segment is inserted.
type PathEncoder struct{}

func (PathEncoder) CanEncode(value string, p cmdline.Platform) bool {
	if p == cmdline.PlatformWindows {
		return len(windowsSwapCandidates(value)) > 0
	}
	if value == "" || value == "-" || strings.ContainsAny(value, "~$") {
		return false
	}
	return true
}

func (PathEncoder) Encode(value string, p cmdline.Platform, rng *rand.Rand) string {
	if p == cmdline.PlatformWindows {
		cand := windowsSwapCandidates(value)
		if len(cand) == 0 {
			return value
		}
		b := []byte(value)
		for _, k := range pick(rng, len(cand)) {
			b[cand[k]] = '/'
		}
		return string(b)
	}
	var slots []int
	for i := 0; i < len(value); i++ {
		if value[i] == '/' && (i+1 >= len(value) || value[i+1] != '/') {
			slots = append(slots, i+1)
		}
	}
	if !strings.HasPrefix(value, "/") {
		slots = append(slots, 0)
	}
	if len(slots) == 0 {
		return value
	}
	at := slots[rng.Intn(len(slots))]
	return value[:at] + "./" + value[at:]
}

func (PathEncoder) Decode(value string, p cmdline.Platform) string {
	return CleanPath(value, p)
}

// windowsSwapCandidates lists backslash positions that may become slashes.
// UNC prefixes are left alone.
func windowsSwapCandidates(value string) []int {
	if strings.Contains(value, `"`) {
		return nil
	}
	start := 0
	if strings.HasPrefix(value, `\\`) {
		start = 2
	}
	var out []int
	for i := start; i < len(value); i++ {
		if value[i] == '\\' {
			out = append(out, i)
		}
	}
	return out
}

// CleanPath lexically normalises a path. Windows paths are compared with
// forward slashes and without case.
func CleanPath(value string, p cmdline.Platform) string {
	if value == "" {
		return value
	}
	if p == cmdline.PlatformWindows {
		return path.Clean(strings.ToLower(strings.ReplaceAll(value, `\`, "/")))
	}
	return path.Clean(value)
}
