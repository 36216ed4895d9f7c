package formatter

import (
	"strconv"
	"time"
)

type tokenKind uint8

const (
	tokLiteral tokenKind = iota
	tokYear
	tokMonth
	tokDay
	tokHour
	tokMinute
	tokSecond
	tokMillis
	tokLevel
	tokProducer
	tokMessage
	tokColorStart
	tokColorEnd
)

type token struct {
	kind tokenKind
	lit  string
}

// engine is a compiled pattern with a reusable output buffer
type engine struct {
	tokens []token
	buf    []byte
}

// compile parses a pattern into tokens; unknown directives are kept verbatim
func compile(pattern string) *engine {
	e := &engine{buf: make([]byte, 0, 256)}
	lit := make([]byte, 0, len(pattern))

	flush := func() {
		if len(lit) > 0 {
			e.tokens = append(e.tokens, token{kind: tokLiteral, lit: string(lit)})
			lit = lit[:0]
		}
	}
	emit := func(k tokenKind) {
		flush()
		e.tokens = append(e.tokens, token{kind: k})
	}

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' || i+1 >= len(pattern) {
			lit = append(lit, c)
			continue
		}
		i++
		switch pattern[i] {
		case 'Y':
			emit(tokYear)
		case 'm':
			emit(tokMonth)
		case 'd':
			emit(tokDay)
		case 'H':
			emit(tokHour)
		case 'M':
			emit(tokMinute)
		case 'S':
			emit(tokSecond)
		case 'e':
			emit(tokMillis)
		case 'l':
			emit(tokLevel)
		case 't':
			emit(tokProducer)
		case 'v':
			emit(tokMessage)
		case '^':
			emit(tokColorStart)
		case '$':
			emit(tokColorEnd)
		case '%':
			lit = append(lit, '%')
		default:
			lit = append(lit, '%', pattern[i])
		}
	}
	flush()
	return e
}

// render writes one line into the engine buffer and returns it
func (e *engine) render(ts time.Time, level int64, producer uint64, msg string, colorize bool) []byte {
	e.buf = e.buf[:0]
	colorOpen := false

	for _, tk := range e.tokens {
		switch tk.kind {
		case tokLiteral:
			e.buf = append(e.buf, tk.lit...)
		case tokYear:
			e.buf = appendPadded(e.buf, ts.Year(), 4)
		case tokMonth:
			e.buf = appendPadded(e.buf, int(ts.Month()), 2)
		case tokDay:
			e.buf = appendPadded(e.buf, ts.Day(), 2)
		case tokHour:
			e.buf = appendPadded(e.buf, ts.Hour(), 2)
		case tokMinute:
			e.buf = appendPadded(e.buf, ts.Minute(), 2)
		case tokSecond:
			e.buf = appendPadded(e.buf, ts.Second(), 2)
		case tokMillis:
			e.buf = appendPadded(e.buf, ts.Nanosecond()/int(time.Millisecond), 3)
		case tokLevel:
			e.buf = append(e.buf, LevelToString(level)...)
		case tokProducer:
			e.buf = strconv.AppendUint(e.buf, producer, 10)
		case tokMessage:
			e.buf = append(e.buf, msg...)
		case tokColorStart:
			if colorize && !colorOpen {
				e.buf = append(e.buf, LevelColor(level)...)
				colorOpen = true
			}
		case tokColorEnd:
			if colorOpen {
				e.buf = append(e.buf, Reset...)
				colorOpen = false
			}
		}
	}
	if colorOpen {
		e.buf = append(e.buf, Reset...)
	}
	return e.buf
}

// appendPadded appends v in decimal, left padded with zeros to width
func appendPadded(buf []byte, v, width int) []byte {
	var tmp [20]byte
	digits := strconv.AppendInt(tmp[:0], int64(v), 10)
	for i := len(digits); i < width; i++ {
		buf = append(buf, '0')
	}
	return append(buf, digits...)
}
