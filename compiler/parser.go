package compiler

import (
	"fmt"
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Parser: block parser for the script language
// ---------------------------------------------------------------------------
//
// The parser walks a fixed line list with a cursor. A line that is only
// partially consumed (text after a block's opening or closing brace) is
// carried in an overlay slot for the current position rather than written
// back into the list, so the input is never mutated while iterated.

const (
	keywordFunction = "function"
	keywordIf       = "sp_sc_flow_if"
	keywordWhile    = "sp_sc_flow_while"
	keywordElse     = "else"
)

func hasKeywordPrefix(s, keyword string) bool {
	return strings.HasPrefix(s, keyword)
}

// isBlockHeader reports whether a line opens a function or control block.
func isBlockHeader(line string) bool {
	return hasKeywordPrefix(line, keywordFunction+" ") ||
		hasKeywordPrefix(line, keywordIf) ||
		hasKeywordPrefix(line, keywordWhile)
}

var functionNameRe = regexp.MustCompile(`function\s+([A-Za-z0-9_]+)`)

// functionName extracts the identifier from a function header line.
// Returns "" for an anonymous function.
func functionName(header string) string {
	m := functionNameRe.FindStringSubmatch(header)
	if m == nil {
		return ""
	}
	return m[1]
}

// Parser parses comment-stripped script lines into an AST.
type Parser struct {
	lines    []string
	pos      int
	carry    string // overlay for a partially consumed line at pos
	hasCarry bool
	warnings []string
}

// ParseScript strips comments from the source and parses it into a
// top-level node list. Warnings (unmatched brace, dangling else) are
// returned alongside; they never abort parsing.
func ParseScript(source string) ([]Node, []string) {
	raw := strings.Split(source, "\n")
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = StripComment(line)
	}
	p := &Parser{lines: lines}
	nodes := p.parseNodes()
	return nodes, p.warnings
}

func (p *Parser) done() bool {
	return p.pos >= len(p.lines)
}

func (p *Parser) current() string {
	if p.hasCarry {
		return p.carry
	}
	return p.lines[p.pos]
}

// setCurrent overlays the line at the cursor with its unconsumed remainder.
func (p *Parser) setCurrent(s string) {
	p.carry = s
	p.hasCarry = true
}

func (p *Parser) advance() {
	p.pos++
	p.hasCarry = false
}

func (p *Parser) warnf(format string, args ...interface{}) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

// parseSub parses a collected block body with a fresh cursor, folding any
// warnings from the nested parse into this parser.
func (p *Parser) parseSub(lines []string) []Node {
	sub := &Parser{lines: lines}
	nodes := sub.parseNodes()
	p.warnings = append(p.warnings, sub.warnings...)
	return nodes
}

func (p *Parser) parseNodes() []Node {
	var nodes []Node

	for !p.done() {
		line := strings.TrimSpace(p.current())
		if line == "" {
			p.advance()
			continue
		}

		if !isBlockHeader(line) {
			nodes = append(nodes, &Command{Text: line})
			p.advance()
			continue
		}

		header := line
		isFunc := hasKeywordPrefix(line, keywordFunction+" ")

		// Locate the opening brace: same line, or strictly the next
		// nonblank line. With no brace at all the header degrades to a
		// bare command.
		if idx := strings.IndexByte(line, '{'); idx >= 0 {
			header = strings.TrimSpace(line[:idx])
			p.setCurrent(strings.TrimSpace(line[idx+1:]))
		} else {
			p.advance()
			if p.done() || strings.TrimSpace(p.current()) != "{" {
				nodes = append(nodes, &Command{Text: header})
				continue
			}
			p.advance()
		}

		body := p.collectBody(header)
		bodyNodes := p.parseSub(body)

		if isFunc {
			nodes = append(nodes, &FunctionDef{
				Header: header,
				Name:   functionName(header),
				Body:   bodyNodes,
			})
			continue
		}

		blk := &ControlBlock{Header: header, TrueBody: bodyNodes}
		if blk.IsIf() && !p.done() {
			if rest := strings.TrimSpace(p.current()); hasKeywordPrefix(rest, keywordElse) {
				if elseLines, ok := p.collectElse(); ok {
					blk.FalseBody = p.parseSub(elseLines)
				}
			}
		}
		nodes = append(nodes, blk)
	}

	return nodes
}

// collectBody accumulates body lines while tracking brace depth. Depth
// counts every '{' and '}' in a line, so nested same-line braces work.
// When depth returns to zero, text before the final closing brace joins
// the body and text after it is left at the cursor for the caller.
func (p *Parser) collectBody(header string) []string {
	var body []string
	depth := 1

	for !p.done() {
		cur := p.current()
		depth += strings.Count(cur, "{") - strings.Count(cur, "}")

		if depth == 0 {
			idx := strings.LastIndexByte(cur, '}')
			body = append(body, strings.TrimSpace(cur[:idx]))
			rest := strings.TrimSpace(cur[idx+1:])
			p.setCurrent(rest)
			if rest == "" {
				p.advance()
			}
			return body
		}

		body = append(body, cur)
		p.advance()
	}

	p.warnf("unmatched opening brace for block: %s", header)
	return body
}

// collectElse consumes an else branch. The cursor is on the line whose
// remainder starts with "else". Returns ok=false when the else has no
// following brace block; the else is then discarded with a warning.
func (p *Parser) collectElse() ([]string, bool) {
	line := strings.TrimSpace(p.current())
	line = strings.TrimSpace(line[len(keywordElse):])

	if strings.HasPrefix(line, "{") {
		p.setCurrent(strings.TrimSpace(line[1:]))
	} else {
		p.advance()
		if p.done() || !strings.HasPrefix(strings.TrimSpace(p.current()), "{") {
			p.warnf("'else' without a following '{' block; else branch discarded")
			return nil, false
		}
		next := strings.TrimSpace(p.current())
		p.setCurrent(strings.TrimSpace(next[1:]))
	}

	return p.collectBody(keywordElse), true
}
