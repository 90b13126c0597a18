// Package mutf8 implements the modified UTF-8 encoding used by the JVM for
// JNI string functions such as GetStringUTFChars and NewStringUTF.
//
// Modified UTF-8 differs from standard UTF-8 in two ways:
//
//	U+0000            C0 80 instead of 00
//	U+10000..U+10FFFF two 3-byte UTF-16 surrogates instead of one 4-byte sequence
//
// Decoding is strict: raw NUL bytes, 4-byte sequences, truncated sequences
// and overlong forms are rejected with the byte offset of the failure.
//
// Java strings may contain unpaired surrogates. These have no UTF-8 form,
// so Decode keeps their 3-byte encoding verbatim inside the Go string and
// Encode writes it back unchanged:
//
//	s, _ := mutf8.Decode([]byte{0xED, 0xA0, 0xBD}) // "\xed\xa0\xbd"
//	b, _ := mutf8.Encode(s)                        // ED A0 BD
package mutf8
