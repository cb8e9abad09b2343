package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Tokens for the markup tokenizer
// ---------------------------------------------------------------------------

// TokenType represents the type of a markup token.
type TokenType int

const (
	// TokenTag is a whole <...> tag. Tags are atomic: the packer never
	// splits one across cells.
	TokenTag TokenType = iota

	// TokenText is a free-text run between tags. Text may be split at any
	// byte boundary.
	TokenText
)

var tokenNames = map[TokenType]string{
	TokenTag:  "TAG",
	TokenText: "TEXT",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents one tag or text run in document order.
type Token struct {
	Type TokenType
	Raw  string // raw source text, tag delimiters included
}

func (t Token) String() string {
	if len(t.Raw) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Raw[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Raw)
}
