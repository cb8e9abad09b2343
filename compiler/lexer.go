package compiler

import (
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Lexing: comment stripping (script) and tag/text tokenization (markup)
// ---------------------------------------------------------------------------

// commentStripper matches either a quoted span (kept) or a // comment
// (dropped). Matching the quoted span first keeps "//" inside string
// literals intact.
var commentStripper = regexp.MustCompile(`(".*?")|(//.*)`)

// StripComment removes a // line comment from a single source line,
// preserving comment-like text inside double-quoted strings, and trims
// surrounding whitespace.
func StripComment(line string) string {
	return strings.TrimSpace(commentStripper.ReplaceAllString(line, "$1"))
}

// wrapper tags delimiting the content region of a markup document.
const (
	wrapperOpen  = "<stm>"
	wrapperClose = "</stm>"
)

// TokenizeMarkup splits a markup document into alternating tag and text
// tokens.
//
// Tag boundaries are quote-aware: a '>' inside an open double quote does
// not close the tag. A tag truncated by end of input is still emitted up
// to end of string.
//
// The case-insensitive <stm>...</stm> wrapper pair delimits the content
// region: the wrapper tags themselves are never emitted, and tokens
// outside the region are discarded. When the document contains no wrapper
// at all, the whole document is treated as content. Additional wrapper
// pairs after the first are a warning, not an error; their content is
// still emitted region by region.
func TokenizeMarkup(content string) ([]Token, []string) {
	var tokens []Token
	var warnings []string

	hasWrapper := strings.Contains(strings.ToLower(content), wrapperOpen)
	insideWrapper := false
	regions := 0

	n := len(content)
	i := 0
	for i < n {
		if content[i] == '<' {
			j := i + 1
			inQuote := false
			for j < n {
				c := content[j]
				if c == '"' {
					inQuote = !inQuote
				}
				if c == '>' && !inQuote {
					j++
					break
				}
				j++
			}
			tag := content[i:j]
			switch strings.ToLower(strings.TrimSpace(tag)) {
			case wrapperOpen:
				insideWrapper = true
				regions++
				if regions == 2 {
					warnings = append(warnings, "multiple <stm> wrapper regions in one document; region order is preserved as written")
				}
			case wrapperClose:
				insideWrapper = false
			default:
				if insideWrapper || !hasWrapper {
					tokens = append(tokens, Token{Type: TokenTag, Raw: tag})
				}
			}
			i = j
		} else {
			j := i
			for j < n && content[j] != '<' {
				j++
			}
			if text := content[i:j]; text != "" && (insideWrapper || !hasWrapper) {
				tokens = append(tokens, Token{Type: TokenText, Raw: text})
			}
			i = j
		}
	}
	return tokens, warnings
}
