package compiler

// ---------------------------------------------------------------------------
// Capacity packer: greedy chunker with merge-back correction
// ---------------------------------------------------------------------------
//
// The packer splits an ordered unit sequence into the fewest cells a
// greedy left-to-right scan produces, never splitting an indivisible
// unit. Each cell reserves space for an outgoing chain reference sized
// for a generously padded placeholder index; a merge-back pass afterwards
// undoes the over-split this pessimism causes at chain tails. Cells stay
// in source order; the packer never reorders units to save a cell.

// placeholderIndex sizes the link reservation for chain indexes of up to
// three digits. The merge pass reclaims the reserved bytes at the tail.
const placeholderIndex = 999

// Unit is one atomic item of packable content. Indivisible units must fit
// a cell whole; divisible units (text runs) may split at any byte.
type Unit struct {
	Raw       string
	Divisible bool
}

// Layout describes how one owner's units are joined inside a cell and how
// a cell references the next cell of its chain.
type Layout struct {
	Separator string                   // raw text between units in one cell
	Link      func(next string) string // raw chain reference to the next cell

	// OversizeKind is the fatal kind reported when a single indivisible
	// unit cannot fit an empty cell.
	OversizeKind FatalKind
}

// ScriptLayout joins atomic commands with "; " and chains cells through
// an exec command.
func ScriptLayout() Layout {
	return Layout{
		Separator:    "; ",
		Link:         func(next string) string { return "; " + execKeyword + " " + next },
		OversizeKind: FatalOversizedCommand,
	}
}

// MarkupLayout concatenates tokens directly and chains cells through an
// include tag.
func MarkupLayout() Layout {
	return Layout{
		Separator:    "",
		Link:         func(next string) string { return "<" + includeKeyword + " " + next + ">\n" },
		OversizeKind: FatalOversizedTag,
	}
}

// join places sep between two raw fragments, omitting it when either side
// is empty.
func join(cur, sep, next string) string {
	if cur == "" {
		return next
	}
	return cur + sep + next
}

// Pack splits units into a chain of cells under base, each rendered set
// line fitting maxCellSize. The returned cells carry escaped content with
// real chain references resolved; the final cell has no outgoing link.
func Pack(units []Unit, base string, layout Layout, maxCellSize int) ([]Cell, error) {
	placeholder := CellName(base, placeholderIndex)
	linkOverhead := EscapedLen(layout.Link(placeholder))
	maxWithLink := maxCellSize - setOverhead(placeholder) - linkOverhead
	if maxWithLink <= 0 {
		return nil, fatalf(FatalNoCapacity, base, setOverhead(placeholder)+linkOverhead, maxCellSize)
	}

	chunks, err := chunkUnits(units, layout, maxWithLink)
	if err != nil {
		return nil, err
	}
	chunks = mergeTail(chunks, base, layout, maxCellSize)

	cells := make([]Cell, 0, len(chunks))
	for i, chunk := range chunks {
		name := CellName(base, i)
		raw := chunk
		hasLink := i < len(chunks)-1
		if hasLink {
			raw += layout.Link(CellName(base, i+1))
		}
		content := Escape(raw)
		if line := len(content) + setOverhead(name); line > maxCellSize {
			return nil, fatalf(FatalPostcondition, name, line, maxCellSize)
		}
		cells = append(cells, Cell{Name: name, Content: content, HasLink: hasLink})
	}
	return cells, nil
}

// chunkUnits runs the greedy pass, producing raw (unescaped) chunks that
// each fit a cell with the pessimistic link reservation applied.
func chunkUnits(units []Unit, layout Layout, maxWithLink int) ([]string, error) {
	var chunks []string
	cur := ""

	flush := func() {
		if cur != "" {
			chunks = append(chunks, cur)
			cur = ""
		}
	}

	for _, u := range units {
		if u.Raw == "" {
			continue
		}

		if !u.Divisible {
			if candidate := join(cur, layout.Separator, u.Raw); EscapedLen(candidate) <= maxWithLink {
				cur = candidate
				continue
			}
			flush()
			if size := EscapedLen(u.Raw); size > maxWithLink {
				return nil, fatalf(layout.OversizeKind, u.Raw, size, maxWithLink)
			}
			cur = u.Raw
			continue
		}

		remaining := u.Raw
		for remaining != "" {
			n := fitPrefix(cur, layout.Separator, remaining, maxWithLink)
			if n > 0 {
				cur = join(cur, layout.Separator, remaining[:n])
				remaining = remaining[n:]
				continue
			}
			if cur == "" {
				// Even one character does not fit an empty cell.
				return nil, fatalf(FatalNoCapacity, remaining, EscapedLen(remaining[:1]), maxWithLink)
			}
			flush()
		}
	}

	flush()
	return chunks, nil
}

// fitPrefix returns the length of the longest prefix of text that still
// fits the current chunk under the given budget, measured on the escaped
// form. Binary search: escaped length is monotonic in prefix length.
func fitPrefix(cur, sep, text string, maxWithLink int) int {
	if EscapedLen(join(cur, sep, text)) <= maxWithLink {
		return len(text)
	}
	lo, hi, best := 1, len(text), 0
	for lo <= hi {
		mid := (lo + hi) / 2
		if EscapedLen(join(cur, sep, text[:mid])) <= maxWithLink {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}

// mergeTail undoes the systematic over-split at chain tails. The greedy
// pass reserves worst-case link space in every cell, but a chain's final
// cell carries no link at all, so the last two chunks may in fact fit
// together under the exact overhead of the merged cell's real name. Only
// the last two chunks are considered; the merge never cascades.
func mergeTail(chunks []string, base string, layout Layout, maxCellSize int) []string {
	if len(chunks) < 2 {
		return chunks
	}
	last := len(chunks) - 1
	mergedName := CellName(base, last-1)
	merged := join(chunks[last-1], layout.Separator, chunks[last])
	if EscapedLen(merged)+setOverhead(mergedName) <= maxCellSize {
		chunks[last-1] = merged
		chunks = chunks[:last]
	}
	return chunks
}
