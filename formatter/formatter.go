// Package formatter renders log records through a pattern template, either
// colorized for terminals or stripped of escape sequences for durable files.
package formatter

import (
	"fmt"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/lixenwraith/dailylog/sanitizer"
)

// Mode selects how color is treated during rendering
type Mode int

const (
	// ModeColorize wraps the %^..%$ range in the level color and keeps embedded sequences
	ModeColorize Mode = iota
	// ModeStrip adds no color and removes every escape sequence from the rendered line
	ModeStrip
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeColorize:
		return "colorize"
	case ModeStrip:
		return "strip"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Default patterns
const (
	DefaultConsolePattern = "%^[%Y-%m-%d %H:%M:%S.%e] [%l]%$ %v"
	DefaultFilePattern    = "[%Y-%m-%d %H:%M:%S.%e] [%l] [%t] %v"
)

// Formatter renders records for one destination style.
// Render is safe for concurrent use: the compiled engine and its buffer are
// guarded by a per-instance mutex.
type Formatter struct {
	mu        sync.Mutex
	pattern   string
	mode      Mode
	sanitizer *sanitizer.Sanitizer
	eng       *engine
	builds    uint64
}

// New creates a formatter with the provided sanitizer. Without one, strip mode
// uses the txt policy and colorize mode passes text through.
func New(mode Mode, s ...*sanitizer.Sanitizer) *Formatter {
	var san *sanitizer.Sanitizer
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	} else if mode == ModeStrip {
		san = sanitizer.New().Policy(sanitizer.PolicyTxt)
	} else {
		san = sanitizer.New()
	}

	pattern := DefaultConsolePattern
	if mode == ModeStrip {
		pattern = DefaultFilePattern
	}

	return &Formatter{
		pattern:   pattern,
		mode:      mode,
		sanitizer: san,
	}
}

// Pattern sets the template; the engine is rebuilt on the next render
func (f *Formatter) Pattern(pattern string) *Formatter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pattern != "" && pattern != f.pattern {
		f.pattern = pattern
		f.eng = nil
	}
	return f
}

// Mode returns the rendering mode
func (f *Formatter) Mode() Mode {
	return f.mode
}

// EngineBuilds returns how many times the engine has been compiled
func (f *Formatter) EngineBuilds() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.builds
}

// Render formats one record. The returned slice is owned by the caller.
func (f *Formatter) Render(ts time.Time, level int64, producer uint64, msg string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.eng == nil {
		f.eng = compile(f.pattern)
		f.builds++
	}

	line := f.eng.render(ts, level, producer, msg, f.mode == ModeColorize)

	var text string
	if f.mode == ModeStrip {
		text = f.sanitizer.Sanitize(sanitizer.StripANSI(string(line)))
	} else {
		text = f.sanitizer.Sanitize(string(line))
	}

	out := make([]byte, 0, len(text)+1)
	out = append(out, text...)
	out = append(out, '\n')
	return out
}

// LevelToString converts integer level values to string
func LevelToString(level int64) string {
	switch level {
	case -8:
		return "TRACE"
	case -4:
		return "DEBUG"
	case 0:
		return "INFO"
	case 4:
		return "WARN"
	case 8:
		return "ERROR"
	case 12:
		return "CRITICAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", level)
	}
}

// Join turns producer arguments into a message, space separated, strings unquoted
func Join(args ...any) string {
	if len(args) == 1 {
		if s, ok := args[0].(string); ok {
			return s
		}
	}
	buf := make([]byte, 0, 64)
	serializer := sanitizer.NewSerializer(nil)
	for i, arg := range args {
		convertValue(&buf, arg, serializer, i > 0)
	}
	return string(buf)
}

// convertValue provides unified type conversion
func convertValue(buf *[]byte, v any, serializer *sanitizer.Serializer, needsSpace bool) {
	if needsSpace && len(*buf) > 0 {
		*buf = append(*buf, ' ')
	}

	switch val := v.(type) {
	case string:
		serializer.WriteString(buf, val)

	case []byte:
		serializer.WriteString(buf, string(val))

	case rune:
		var runeStr [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeStr[:], val)
		serializer.WriteString(buf, string(runeStr[:n]))

	case int:
		serializer.WriteNumber(buf, strconv.FormatInt(int64(val), 10))

	case int64:
		serializer.WriteNumber(buf, strconv.FormatInt(val, 10))

	case uint:
		serializer.WriteNumber(buf, strconv.FormatUint(uint64(val), 10))

	case uint64:
		serializer.WriteNumber(buf, strconv.FormatUint(val, 10))

	case float32:
		serializer.WriteNumber(buf, strconv.FormatFloat(float64(val), 'f', -1, 32))

	case float64:
		serializer.WriteNumber(buf, strconv.FormatFloat(val, 'f', -1, 64))

	case bool:
		serializer.WriteBool(buf, val)

	case nil:
		serializer.WriteNil(buf)

	case time.Time:
		serializer.WriteString(buf, val.Format(time.RFC3339Nano))

	case time.Duration:
		serializer.WriteString(buf, val.String())

	case error:
		serializer.WriteString(buf, val.Error())

	case fmt.Stringer:
		serializer.WriteString(buf, val.String())

	default:
		serializer.WriteComplex(buf, val)
	}
}
