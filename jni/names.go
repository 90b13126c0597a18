package jni

import (
	"strings"
	"unicode/utf16"
)

// JNI symbol mangling for native method lookup.
// Each UTF-16 unit of the class or method name maps to:
//   - ASCII letters and digits unchanged
//   - '/' and '.' (package separators) to "_"
//   - '_' to "_1", ';' to "_2", '[' to "_3"
//   - anything else to "_0xxxx" (lowercase hex)

const symbolPrefix = "Java_"

// MangleName returns the short native symbol for class.method, for example
// "Java_gregtech_api_util_RustUtility_hello". class is the binary name with
// either '/' or '.' separators.
func MangleName(class, method string) string {
	var b strings.Builder
	b.Grow(len(symbolPrefix) + len(class) + len(method) + 1)
	b.WriteString(symbolPrefix)
	mangleInto(&b, class, true)
	b.WriteByte('_')
	mangleInto(&b, method, false)
	return b.String()
}

// MangleLongName returns the overloaded native symbol, which appends "__"
// and the mangled argument types of descriptor.
func MangleLongName(class, method, descriptor string) (string, error) {
	args, err := argumentSignature(descriptor)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(MangleName(class, method))
	b.WriteString("__")
	mangleInto(&b, args, true)
	return b.String(), nil
}

// Mangle escapes a single name component. Separators are escaped too.
func Mangle(name string) string {
	var b strings.Builder
	mangleInto(&b, name, false)
	return b.String()
}

func mangleInto(b *strings.Builder, s string, separators bool) {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case separators && (r == '/' || r == '.'):
			b.WriteByte('_')
		case r == '_':
			b.WriteString("_1")
		case r == ';':
			b.WriteString("_2")
		case r == '[':
			b.WriteString("_3")
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			writeUnit(b, uint16(hi))
			writeUnit(b, uint16(lo))
		default:
			writeUnit(b, uint16(r))
		}
	}
}

const hexDigits = "0123456789abcdef"

func writeUnit(b *strings.Builder, u uint16) {
	b.WriteString("_0")
	b.WriteByte(hexDigits[u>>12&0xF])
	b.WriteByte(hexDigits[u>>8&0xF])
	b.WriteByte(hexDigits[u>>4&0xF])
	b.WriteByte(hexDigits[u&0xF])
}
