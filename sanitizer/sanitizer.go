// Package sanitizer cleans log text before it reaches a destination:
// terminal escape removal plus rune-level rules built from filter and
// transform flags.
package sanitizer

import (
	"bytes"
	"encoding/hex"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"
)

// Filter flags select the runes a rule applies to
const (
	FilterNonPrintable uint64 = 1 << iota // !strconv.IsPrint
	FilterControl                         // unicode.IsControl
	FilterWhitespace                      // unicode.IsSpace
)

// Transform flags choose what happens to a selected rune
const (
	TransformStrip     uint64 = 1 << iota // drop it
	TransformHexEncode                    // "<XXYY>" of its UTF-8 bytes
	TransformEscape                       // backslash notation, \n or \u0001
)

// PolicyPreset names a ready-made rule set
type PolicyPreset string

const (
	PolicyRaw     PolicyPreset = "raw"     // passthrough, console keeps its colors
	PolicyTxt     PolicyPreset = "txt"     // file text: escapes stripped, non-printables hex encoded
	PolicyEscaped PolicyPreset = "escaped" // single line: escapes stripped, control characters escaped
)

type rule struct {
	filter    uint64
	transform uint64
}

func (r rule) matches(c rune) bool {
	switch {
	case r.filter&FilterNonPrintable != 0 && !strconv.IsPrint(c):
		return true
	case r.filter&FilterControl != 0 && unicode.IsControl(c):
		return true
	case r.filter&FilterWhitespace != 0 && unicode.IsSpace(c):
		return true
	}
	return false
}

func (r rule) apply(buf []byte, c rune) []byte {
	switch {
	case r.transform&TransformStrip != 0:
		return buf
	case r.transform&TransformHexEncode != 0:
		var enc [utf8.UTFMax]byte
		n := utf8.EncodeRune(enc[:], c)
		buf = append(buf, '<')
		buf = hex.AppendEncode(buf, enc[:n])
		return append(buf, '>')
	case r.transform&TransformEscape != 0:
		return appendEscaped(buf, c)
	}
	return utf8.AppendRune(buf, c)
}

func appendEscaped(buf []byte, c rune) []byte {
	switch c {
	case '\n':
		return append(buf, '\\', 'n')
	case '\r':
		return append(buf, '\\', 'r')
	case '\t':
		return append(buf, '\\', 't')
	case '\b':
		return append(buf, '\\', 'b')
	case '\f':
		return append(buf, '\\', 'f')
	}
	if c < 0x20 || c == 0x7f {
		buf = append(buf, '\\', 'u')
		for shift := 12; shift >= 0; shift -= 4 {
			buf = append(buf, "0123456789abcdef"[(c>>shift)&0xf])
		}
		return buf
	}
	return utf8.AppendRune(buf, c)
}

// Sanitizer applies its rules in order; the first matching rule wins.
// It reuses an internal buffer and is not safe for concurrent use.
type Sanitizer struct {
	rules        []rule
	stripEscapes bool
	buf          []byte
}

// New creates a passthrough Sanitizer
func New() *Sanitizer {
	return &Sanitizer{buf: make([]byte, 0, 256)}
}

// Rule appends a custom rule
func (s *Sanitizer) Rule(filter, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy appends the rules of a preset
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	switch preset {
	case PolicyTxt:
		s.stripEscapes = true
		return s.Rule(FilterNonPrintable, TransformHexEncode)
	case PolicyEscaped:
		s.stripEscapes = true
		return s.Rule(FilterControl, TransformEscape)
	}
	return s
}

// StripEscapes toggles removal of ANSI escape sequences ahead of the rules
func (s *Sanitizer) StripEscapes(enable bool) *Sanitizer {
	s.stripEscapes = enable
	return s
}

// Sanitize returns data with escapes stripped (when enabled) and all rules applied
func (s *Sanitizer) Sanitize(data string) string {
	if s.stripEscapes {
		data = StripANSI(data)
	}
	if len(s.rules) == 0 {
		return data
	}

	s.buf = s.buf[:0]
next:
	for _, c := range data {
		for _, r := range s.rules {
			if r.matches(c) {
				s.buf = r.apply(s.buf, c)
				continue next
			}
		}
		s.buf = utf8.AppendRune(s.buf, c)
	}
	return string(s.buf)
}

// Serializer turns producer arguments into message text
type Serializer struct {
	sanitizer *Sanitizer
}

// NewSerializer creates a serializer; a nil sanitizer passes text through
func NewSerializer(san *Sanitizer) *Serializer {
	if san == nil {
		san = New()
	}
	return &Serializer{sanitizer: san}
}

// WriteString writes a sanitized string
func (se *Serializer) WriteString(buf *[]byte, s string) {
	*buf = append(*buf, se.sanitizer.Sanitize(s)...)
}

// WriteNumber writes a number already formatted by the caller
func (se *Serializer) WriteNumber(buf *[]byte, n string) {
	*buf = append(*buf, n...)
}

func (se *Serializer) WriteBool(buf *[]byte, b bool) {
	*buf = strconv.AppendBool(*buf, b)
}

func (se *Serializer) WriteNil(buf *[]byte) {
	*buf = append(*buf, "nil"...)
}

// WriteComplex dumps maps, slices and structs with spew, folded onto one line
func (se *Serializer) WriteComplex(buf *[]byte, v any) {
	var b bytes.Buffer
	dumper := &spew.ConfigState{
		Indent:                  " ",
		MaxDepth:                10,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	dumper.Fdump(&b, v)
	dump := bytes.Join(bytes.Fields(b.Bytes()), []byte{' '})
	*buf = append(*buf, se.sanitizer.Sanitize(string(dump))...)
}
