package technique

import "math/rand"

// pick returns a random non-empty subset of [0, n) in ascending order.
func pick(rng *rand.Rand, n int) []int {
	if n <= 0 {
		return nil
	}
	var out []int
	for i := 0; i < n; i++ {
		if rng.Intn(2) == 0 {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		out = append(out, rng.Intn(n))
	}
	return out
}

// splitOption separates the leading run of prefix characters from the rest
// of an option's text.
func splitOption(raw string) (prefix, rest string) {
	i := 0
	for i < len(raw) && (raw[i] == '-' || raw[i] == '/') {
		i++
	}
	return raw[:i], raw[i:]
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
