package compiler

// ---------------------------------------------------------------------------
// Cells: fixed-capacity named storage records
// ---------------------------------------------------------------------------

// Host console commands emitted into cell content and rendered output.
const (
	execKeyword     = "sp_sc_exec_cvar"      // run a cell's commands
	loadKeyword     = "sp_sc_func_load_cvar" // load a function entry point
	unescapeKeyword = "sp_sc_cvar_unescape"  // decode a stored cell in place
	includeKeyword  = "includecvar"          // markup chain reference tag
)

// Cell is a single storage record in the host's string-variable store.
// Content is already escaped. Cells of one owner form a singly linked
// chain; the last cell has no outgoing link.
type Cell struct {
	Name    string
	Content string
	HasLink bool
}

// SetLine renders the host assignment line that persists the cell.
func (c Cell) SetLine() string {
	return "set " + c.Name + " \"" + c.Content + "\""
}

// setOverhead is the length of `set NAME ""` — the fixed cost of storing a
// cell under the given name before any payload is added.
func setOverhead(name string) int {
	return len(`set  ""`) + len(name)
}
