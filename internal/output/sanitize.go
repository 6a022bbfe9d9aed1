package output

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// SanitizeTerminal replaces control characters and invalid UTF-8 bytes with
// visible escapes so a process command line cannot drive the terminal.
// Tabs and newlines also become escapes since a table row is one line.
//
//	"hi\x1b[31m" -> `hi\x1b[31m`
//	"a\tb"       -> `a\x09b`
//	"bad\xff"    -> `bad\xff`
func SanitizeTerminal(s string) string {
	idx := 0
	for idx < len(s) {
		r, size := utf8.DecodeRuneInString(s[idx:])
		if (r == utf8.RuneError && size == 1) || unicode.IsControl(r) {
			break
		}
		idx += size
	}
	if idx == len(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	b.WriteString(s[:idx])

	for idx < len(s) {
		r, size := utf8.DecodeRuneInString(s[idx:])
		switch {
		case r == utf8.RuneError && size == 1:
			appendEscapedByte(&b, s[idx])
		case unicode.IsControl(r):
			appendEscapedRune(&b, r)
		default:
			b.WriteString(s[idx : idx+size])
		}
		idx += size
	}
	return b.String()
}

func appendEscapedByte(b *strings.Builder, c byte) {
	b.WriteString(`\x`)
	b.WriteByte(hexDigits[c>>4])
	b.WriteByte(hexDigits[c&0x0f])
}

// appendEscapedRune writes \xHH, \uHHHH or \UHHHHHHHH depending on r's size.
func appendEscapedRune(b *strings.Builder, r rune) {
	switch {
	case r <= 0xff:
		appendEscapedByte(b, byte(r))
	case r <= 0xffff:
		b.WriteString(`\u`)
		writeHex(b, uint32(r), 4)
	default:
		b.WriteString(`\U`)
		writeHex(b, uint32(r), 8)
	}
}

func writeHex(b *strings.Builder, v uint32, digits int) {
	for shift := (digits - 1) * 4; shift >= 0; shift -= 4 {
		b.WriteByte(hexDigits[(v>>uint(shift))&0x0f])
	}
}
