package compiler

import "strings"

// ---------------------------------------------------------------------------
// Codegen: node tree to cell content
// ---------------------------------------------------------------------------
//
// Two renderers consume the same node tree. The block form is a straight
// structural reprint used when a whole function fits one cell. The chain
// form flattens to semicolon-joined atomic commands, promoting oversized
// control branches into separately packed helper chains.

// inlineMargin is subtracted from the cell capacity when sizing a single
// atomic command: it accounts for the set/quoting overhead of whatever
// cell ends up holding the command.
const inlineMargin = 80

// generator compiles one function's node tree. The autogen counter and
// the helper accumulation list are scoped to the generator, so every
// function starts from helper index zero.
type generator struct {
	maxCellSize int
	ownerBase   string
	autogen     int
	helpers     []Cell
}

// chainUnits flattens nodes into atomic chain commands. Each control
// block becomes a single `header "true-cmds" "false-cmds"` command; both
// branch bodies are flattened recursively first.
func (g *generator) chainUnits(nodes []Node) ([]Unit, error) {
	var units []Unit
	for _, n := range nodes {
		switch node := n.(type) {
		case *Command:
			if node.Text != "" {
				units = append(units, Unit{Raw: node.Text})
			}
		case *ControlBlock:
			cmd, err := g.controlCommand(node)
			if err != nil {
				return nil, err
			}
			units = append(units, Unit{Raw: cmd})
		case *FunctionDef:
			// A function nested in a body is malformed input; compile it
			// like a control block over its body.
			cmd, err := g.controlCommand(&ControlBlock{Header: node.Header, TrueBody: node.Body})
			if err != nil {
				return nil, err
			}
			units = append(units, Unit{Raw: cmd})
		}
	}
	return units, nil
}

// joinUnits renders a unit list as one semicolon-joined command string.
func joinUnits(units []Unit) string {
	parts := make([]string, 0, len(units))
	for _, u := range units {
		parts = append(parts, u.Raw)
	}
	return strings.Join(parts, "; ")
}

// controlCommand compiles one control block into a single atomic command,
// extracting branch bodies into helper chains when the inlined form would
// not fit the per-command threshold. The larger branch goes first; the
// second follows only if the command is still too large. A command that
// cannot be shrunk below the threshold even with both branches extracted
// is a structural failure.
func (g *generator) controlCommand(blk *ControlBlock) (string, error) {
	threshold := g.maxCellSize - inlineMargin

	trueUnits, err := g.chainUnits(blk.TrueBody)
	if err != nil {
		return "", err
	}
	trueCmd := joinUnits(trueUnits)

	var falseUnits []Unit
	falseCmd := ""
	if len(blk.FalseBody) > 0 {
		if falseUnits, err = g.chainUnits(blk.FalseBody); err != nil {
			return "", err
		}
		falseCmd = joinUnits(falseUnits)
	}

	trueExtracted, falseExtracted := false, false

	if EscapedLen(inlinedControl(blk.Header, trueCmd, falseCmd)) > threshold {
		if EscapedLen(trueCmd) >= EscapedLen(falseCmd) {
			if trueCmd, err = g.extractHelper(trueUnits); err != nil {
				return "", err
			}
			trueExtracted = true
		} else {
			if falseCmd, err = g.extractHelper(falseUnits); err != nil {
				return "", err
			}
			falseExtracted = true
		}
	}

	if EscapedLen(inlinedControl(blk.Header, trueCmd, falseCmd)) > threshold {
		if !trueExtracted {
			if trueCmd, err = g.extractHelper(trueUnits); err != nil {
				return "", err
			}
		}
		if !falseExtracted && falseCmd != "" {
			if falseCmd, err = g.extractHelper(falseUnits); err != nil {
				return "", err
			}
		}
	}

	cmd := blk.Header + " \"" + trueCmd + "\""
	if falseCmd != "" {
		cmd += " \"" + falseCmd + "\""
	}
	if size := EscapedLen(cmd); size > threshold {
		return "", fatalf(FatalOversizedCommand, cmd, size, threshold)
	}
	return cmd, nil
}

// inlinedControl is the candidate form measured against the threshold.
// Both branch slots are present during measurement even when the false
// branch is empty, matching the worst case the final form can take.
func inlinedControl(header, trueCmd, falseCmd string) string {
	return header + " \"" + trueCmd + "\" \"" + falseCmd + "\""
}

// extractHelper packs a branch body into its own helper chain and returns
// the command that invokes it. An empty branch needs no helper.
func (g *generator) extractHelper(units []Unit) (string, error) {
	if len(units) == 0 {
		return "", nil
	}
	base := HelperBase(g.ownerBase, g.autogen)
	g.autogen++
	cells, err := Pack(units, base, ScriptLayout(), g.maxCellSize)
	if err != nil {
		return "", err
	}
	g.helpers = append(g.helpers, cells...)
	return execKeyword + " " + cells[0].Name, nil
}

// renderBlock reprints nodes in the indented brace-delimited source form.
// It performs no helper extraction: callers use it only for content that
// fits a single cell whole.
func renderBlock(nodes []Node, indent int) string {
	var out []string
	pad := strings.Repeat("  ", indent)
	for _, n := range nodes {
		switch node := n.(type) {
		case *Command:
			if node.Text != "" {
				out = append(out, pad+node.Text)
			}
		case *ControlBlock:
			out = append(out, pad+node.Header, pad+"{", renderBlock(node.TrueBody, indent+1), pad+"}")
			if len(node.FalseBody) > 0 {
				out = append(out, pad+"else", pad+"{", renderBlock(node.FalseBody, indent+1), pad+"}")
			}
		case *FunctionDef:
			out = append(out, pad+node.Header, pad+"{", renderBlock(node.Body, indent+1), pad+"}")
		}
	}
	return strings.Join(out, "\n")
}

// packFunction compiles one function definition into its cell chain under
// the given base name. Small functions inline their body in block form in
// a single cell; larger ones get a shell cell that invokes a packed body
// chain. Helper chains extracted from oversized branches follow the
// owner's cells.
func packFunction(fn *FunctionDef, base string, maxCellSize int) ([]Cell, error) {
	mainName := CellName(base, 0)
	overhead := setOverhead(mainName)

	if len(fn.Body) == 0 {
		content := Escape(fn.Header + "\n{\n}")
		if line := len(content) + overhead; line > maxCellSize {
			return nil, fatalf(FatalOversizedShell, fn.Header, line, maxCellSize)
		}
		return []Cell{{Name: mainName, Content: content}}, nil
	}

	g := &generator{maxCellSize: maxCellSize, ownerBase: base}
	units, err := g.chainUnits(fn.Body)
	if err != nil {
		return nil, err
	}

	shellPrefix := Escape(fn.Header + "\n{\n")
	shellSuffix := Escape("\n}")
	available := maxCellSize - overhead - len(shellPrefix) - len(shellSuffix)

	var cells []Cell
	blockBody := Escape(renderBlock(fn.Body, 1))
	if len(blockBody) <= available {
		cells = append(cells, Cell{Name: mainName, Content: shellPrefix + blockBody + shellSuffix})
	} else {
		bodyCells, err := Pack(units, BodyBase(base), ScriptLayout(), maxCellSize)
		if err != nil {
			return nil, err
		}
		if len(bodyCells) == 0 {
			return nil, fatalf(FatalOversizedShell, fn.Header, overhead+len(shellPrefix)+len(shellSuffix), maxCellSize)
		}
		execCmd := Escape("  " + execKeyword + " " + bodyCells[0].Name + "\n")
		shell := shellPrefix + execCmd + shellSuffix
		if line := len(shell) + overhead; line > maxCellSize {
			return nil, fatalf(FatalOversizedShell, fn.Header, line, maxCellSize)
		}
		cells = append(cells, Cell{Name: mainName, Content: shell})
		cells = append(cells, bodyCells...)
	}

	cells = append(cells, g.helpers...)
	return cells, nil
}
