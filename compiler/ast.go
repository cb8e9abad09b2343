package compiler

// ---------------------------------------------------------------------------
// AST: node tree for the script language
// ---------------------------------------------------------------------------
//
// A script document is a flat sequence of top-level nodes. Only FunctionDef
// nodes are packed into cells; stray top-level commands are tolerated but
// produce no output.

// Node is the interface implemented by all script AST nodes.
type Node interface {
	node() // marker method
}

// Command is a single non-block source line.
type Command struct {
	Text string
}

func (n *Command) node() {}

// ControlBlock is an if/while construct. Header holds the raw condition
// text (e.g. "sp_sc_flow_if cvar x = 1"). FalseBody is nil when there is
// no else branch; an empty non-nil FalseBody is never produced.
type ControlBlock struct {
	Header    string
	TrueBody  []Node
	FalseBody []Node
}

func (n *ControlBlock) node() {}

// IsIf reports whether the block is an if (as opposed to a while).
// Only if blocks may carry an else branch.
func (n *ControlBlock) IsIf() bool {
	return hasKeywordPrefix(n.Header, keywordIf)
}

// FunctionDef is a top-level function definition. Header is the full
// header line ("function name ..."); Name is the extracted identifier,
// or "" when the function is anonymous.
type FunctionDef struct {
	Header string
	Name   string
	Body   []Node
}

func (n *FunctionDef) node() {}
