package mutf8

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/gregtech/nativeutil"
	"github.com/gregtech/nativeutil/errors"
)

// Name identifies the encoding in errors and logs.
const Name = "mutf8"

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
	lowSurrMin   = 0xDC00
	maxBMP       = 0xFFFF
)

// Codec adapts the package functions to nativeutil.Codec.
type Codec struct{}

var _ nativeutil.Codec = Codec{}

func (Codec) Name() string                       { return Name }
func (Codec) Decode(data []byte) (string, error) { return Decode(data) }
func (Codec) Encode(s string) ([]byte, error)    { return Encode(s) }

// Decode converts modified UTF-8 bytes into a Go string.
//
// Surrogate pairs are joined into a single rune. An unpaired surrogate is
// kept as its 3-byte form so that Encode reproduces the original bytes.
func Decode(data []byte) (string, error) {
	if isPlainASCII(data) {
		return string(data), nil
	}

	buf := make([]byte, 0, len(data))
	if off, msg := scan(data, &buf); msg != "" {
		return "", errors.InvalidEncoding(errors.PhaseDecode, Name, data, off, msg)
	}
	return string(buf), nil
}

// Valid reports whether data is well-formed modified UTF-8.
func Valid(data []byte) bool {
	if isPlainASCII(data) {
		return true
	}
	_, msg := scan(data, nil)
	return msg == ""
}

// Encode converts a Go string into modified UTF-8 bytes.
func Encode(s string) ([]byte, error) {
	buf := make([]byte, 0, len(s)+len(s)/8)

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == 0:
			buf = append(buf, 0xC0, 0x80)
			i++
		case c < utf8.RuneSelf:
			buf = append(buf, c)
			i++
		case isSurrogateForm(s, i):
			buf = append(buf, s[i:i+3]...)
			i += 3
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				return nil, errors.InvalidEncoding(errors.PhaseEncode, Name, []byte(s), i, "invalid UTF-8 in source string")
			}
			if r > maxBMP {
				hi, lo := utf16.EncodeRune(r)
				buf = appendUnit(buf, hi)
				buf = appendUnit(buf, lo)
			} else {
				buf = append(buf, s[i:i+size]...)
			}
			i += size
		}
	}
	return buf, nil
}

// EncodedLen returns the number of bytes Encode produces for s, or -1 if
// s cannot be encoded.
func EncodedLen(s string) int {
	n := 0
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == 0:
			n += 2
			i++
		case c < utf8.RuneSelf:
			n++
			i++
		case isSurrogateForm(s, i):
			n += 3
			i += 3
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				return -1
			}
			if r > maxBMP {
				n += 6
			} else {
				n += size
			}
			i += size
		}
	}
	return n
}

// scan walks data and appends the decoded bytes to buf when buf is non-nil.
// On failure it returns the offending offset and a description.
func scan(data []byte, buf *[]byte) (int, string) {
	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == 0:
			return i, "raw NUL byte"

		case c < utf8.RuneSelf:
			if buf != nil {
				*buf = append(*buf, c)
			}
			i++

		case c&0xE0 == 0xC0:
			if i+1 >= len(data) {
				return i, "truncated 2-byte sequence"
			}
			if !isCont(data[i+1]) {
				return i, "bad continuation byte"
			}
			r := rune(c&0x1F)<<6 | rune(data[i+1]&0x3F)
			if r != 0 && r < utf8.RuneSelf {
				return i, "overlong 2-byte sequence"
			}
			if buf != nil {
				*buf = utf8.AppendRune(*buf, r)
			}
			i += 2

		case c&0xF0 == 0xE0:
			r, ok := unit3(data, i)
			if !ok {
				if i+2 >= len(data) {
					return i, "truncated 3-byte sequence"
				}
				return i, "bad continuation byte"
			}
			if r < 0x800 {
				return i, "overlong 3-byte sequence"
			}
			if r < surrogateMin || r > surrogateMax {
				if buf != nil {
					*buf = utf8.AppendRune(*buf, r)
				}
				i += 3
				continue
			}
			if r < lowSurrMin {
				if lo, ok := unit3(data, i+3); ok && lo >= lowSurrMin && lo <= surrogateMax {
					if buf != nil {
						*buf = utf8.AppendRune(*buf, utf16.DecodeRune(r, lo))
					}
					i += 6
					continue
				}
			}
			if buf != nil {
				*buf = append(*buf, data[i:i+3]...)
			}
			i += 3

		default:
			return i, "invalid lead byte"
		}
	}
	return 0, ""
}

// unit3 decodes the 3-byte sequence at i without range checks on the value.
func unit3(data []byte, i int) (rune, bool) {
	if i+2 >= len(data) || data[i]&0xF0 != 0xE0 || !isCont(data[i+1]) || !isCont(data[i+2]) {
		return 0, false
	}
	return rune(data[i]&0x0F)<<12 | rune(data[i+1]&0x3F)<<6 | rune(data[i+2]&0x3F), true
}

func appendUnit(buf []byte, r rune) []byte {
	return append(buf,
		0xE0|byte(r>>12),
		0x80|byte(r>>6)&0x3F,
		0x80|byte(r)&0x3F,
	)
}

func isCont(b byte) bool {
	return b&0xC0 == 0x80
}

// isSurrogateForm reports whether s[i:] starts with a 3-byte encoded surrogate.
func isSurrogateForm(s string, i int) bool {
	return i+2 < len(s) && s[i] == 0xED && s[i+1] >= 0xA0 && s[i+1] <= 0xBF && isCont(s[i+2])
}

func isPlainASCII(data []byte) bool {
	for _, c := range data {
		if c == 0 || c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
