package bridge

import (
	"unicode/utf8"

	"github.com/gregtech/nativeutil"
	"github.com/gregtech/nativeutil/errors"
)

// UTF8 is a strict UTF-8 codec for hosts whose strings are plain UTF-8.
var UTF8 nativeutil.Codec = utf8Codec{}

type utf8Codec struct{}

func (utf8Codec) Name() string { return "utf8" }

func (utf8Codec) Decode(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.InvalidEncoding(errors.PhaseDecode, "utf8", data, invalidOffset(data), "invalid UTF-8")
	}
	return string(data), nil
}

func (utf8Codec) Encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		data := []byte(s)
		return nil, errors.InvalidEncoding(errors.PhaseEncode, "utf8", data, invalidOffset(data), "invalid UTF-8")
	}
	return []byte(s), nil
}

func invalidOffset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(data)
}
