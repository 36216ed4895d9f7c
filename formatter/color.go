package formatter

import "strings"

// ANSI SGR sequences
const (
	Reset = "\x1b[0m"
	Bold  = "\x1b[1m"

	Black   = "\x1b[30m"
	Red     = "\x1b[31m"
	Green   = "\x1b[32m"
	Yellow  = "\x1b[33m"
	Blue    = "\x1b[34m"
	Magenta = "\x1b[35m"
	Cyan    = "\x1b[36m"
	White   = "\x1b[37m"

	OnBlack = "\x1b[40m"
	OnRed   = "\x1b[41m"
	OnBlue  = "\x1b[44m"
	OnWhite = "\x1b[47m"
)

// LevelColor returns the console color sequence for a level
func LevelColor(level int64) string {
	switch {
	case level <= -8:
		return Bold + Cyan
	case level <= -4:
		return Bold + Blue
	case level <= 0:
		return Bold + Green
	case level <= 4:
		return Bold + Yellow + OnBlack
	case level <= 8:
		return Bold + Red + OnWhite
	default:
		return Bold + White + OnRed
	}
}

// Colorize wraps text in the given sequences followed by a reset
func Colorize(text string, codes ...string) string {
	if len(codes) == 0 {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text) + len(Reset) + 8*len(codes))
	for _, c := range codes {
		sb.WriteString(c)
	}
	sb.WriteString(text)
	sb.WriteString(Reset)
	return sb.String()
}
