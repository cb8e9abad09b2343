package compiler

import "strings"

// ---------------------------------------------------------------------------
// Escaper: percent-encoding for cell payloads
// ---------------------------------------------------------------------------
//
// The host engine stores each cell as a quoted string value, so three
// characters must never appear literally in a payload: '%' (the escape
// introducer), '"' (the value delimiter) and '\n' (the line terminator).
// The host's sp_sc_cvar_unescape command reverses the mapping at load time.

var escaper = strings.NewReplacer(
	"%", "%25",
	"\"", "%22",
	"\n", "%0A",
)

// Escape percent-encodes the three reserved characters. Replacement is a
// single pass, so an encoded sequence is never re-encoded.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape is the exact inverse of Escape. "%25" is decoded last so that
// a decoded percent sign cannot combine with following text into a
// spurious escape sequence.
func Unescape(s string) string {
	s = strings.ReplaceAll(s, "%0A", "\n")
	s = strings.ReplaceAll(s, "%22", "\"")
	s = strings.ReplaceAll(s, "%25", "%")
	return s
}

// EscapedLen returns len(Escape(s)) without building the escaped string.
// The packer measures candidates far more often than it materializes them.
func EscapedLen(s string) int {
	n := len(s)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '"', '\n':
			n += 2
		}
	}
	return n
}
