package sanitizer

import "strings"

const (
	escByte       = 0x1b
	csiIntroducer = '['
	// CSI final bytes occupy '@' through '~'
	csiFinalMin = 0x40
	csiFinalMax = 0x7e
)

// StripANSI removes every terminated CSI escape sequence (ESC '[' ... final byte) from s.
// A sequence that is still open at the end of input is copied through unchanged.
func StripANSI(s string) string {
	i := strings.IndexByte(s, escByte)
	if i < 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	sb.WriteString(s[:i])

	for i < len(s) {
		c := s[i]
		if c != escByte || i+1 >= len(s) || s[i+1] != csiIntroducer {
			sb.WriteByte(c)
			i++
			continue
		}

		// Scan for the terminator
		j := i + 2
		for j < len(s) && (s[j] < csiFinalMin || s[j] > csiFinalMax) {
			j++
		}
		if j >= len(s) {
			// Unterminated, pass the remainder through
			sb.WriteString(s[i:])
			break
		}
		i = j + 1
	}
	return sb.String()
}

// ContainsANSI reports whether s holds at least one complete CSI escape sequence
func ContainsANSI(s string) bool {
	return StripANSI(s) != s
}
