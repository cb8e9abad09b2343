// Package compiler re-encodes script and markup sources as chains of
// fixed-capacity named storage records ("cells") that a game engine's
// console-variable store can load and replay in sequence.
//
// The pipeline is pure and synchronous: tokenize, parse, generate, pack,
// render. Callers supply source text and receive a Result or a
// *FatalError; no I/O happens here.
package compiler

// DefaultMaxCellSize is the host's ceiling on a rendered `set NAME
// "VALUE"` line.
const DefaultMaxCellSize = 255

// Options configure one compile call.
type Options struct {
	// MaxCellSize overrides the capacity ceiling. Zero means
	// DefaultMaxCellSize.
	MaxCellSize int

	// HashLen overrides the label-hash length used in generated base
	// names. Zero means DefaultHashLen.
	HashLen int
}

func (o Options) withDefaults() Options {
	if o.MaxCellSize == 0 {
		o.MaxCellSize = DefaultMaxCellSize
	}
	if o.HashLen == 0 {
		o.HashLen = DefaultHashLen
	}
	return o
}

// ResultKind distinguishes the two source variants.
type ResultKind int

const (
	KindScript ResultKind = iota
	KindMarkup
)

func (k ResultKind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindMarkup:
		return "markup"
	}
	return "unknown"
}

// Result is the output of a successful compile: the ordered cell list,
// the entry-point cells (first cell of every top-level owner), and any
// recoverable diagnostics raised along the way.
type Result struct {
	Kind        ResultKind
	Cells       []Cell
	EntryPoints []string
	Warnings    []string
}

// CompileScript compiles block-structured script source into cells. Each
// top-level function becomes its own cell chain; stray top-level commands
// are tolerated but produce no cells. The label seeds names for anonymous
// functions.
//
// Warnings (unmatched brace, dangling else) ride on the Result. A
// returned error is always fatal and yields no partial output.
func CompileScript(source, label string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	nodes, warnings := ParseScript(source)
	namer := NewNamer(label, opts.HashLen)

	res := &Result{Kind: KindScript, Warnings: warnings}
	for _, n := range nodes {
		fn, ok := n.(*FunctionDef)
		if !ok {
			continue
		}
		base := namer.FunctionBase(fn.Name)
		cells, err := packFunction(fn, base, opts.MaxCellSize)
		if err != nil {
			return nil, err
		}
		if len(cells) > 0 {
			res.EntryPoints = append(res.EntryPoints, cells[0].Name)
		}
		res.Cells = append(res.Cells, cells...)
	}

	res.Cells = dedupeCells(res.Cells)
	res.EntryPoints = dedupeNames(res.EntryPoints)
	return res, nil
}

// CompileMarkup compiles a markup document into a single cell chain. The
// label seeds the deterministic document base name.
func CompileMarkup(source, label string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	tokens, warnings := TokenizeMarkup(source)
	namer := NewNamer(label, opts.HashLen)

	units := make([]Unit, 0, len(tokens))
	for _, t := range tokens {
		units = append(units, Unit{Raw: t.Raw, Divisible: t.Type == TokenText})
	}

	cells, err := Pack(units, namer.DocumentBase(), MarkupLayout(), opts.MaxCellSize)
	if err != nil {
		return nil, err
	}

	res := &Result{Kind: KindMarkup, Cells: cells, Warnings: warnings}
	if len(cells) > 0 {
		res.EntryPoints = append(res.EntryPoints, cells[0].Name)
	}
	return res, nil
}

// dedupeCells drops duplicate cell names, first occurrence wins. Duplicates
// arise when a source defines the same function twice; the host's store
// would keep only one value anyway.
func dedupeCells(cells []Cell) []Cell {
	seen := make(map[string]bool, len(cells))
	out := cells[:0]
	for _, c := range cells {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	return out
}

// dedupeNames applies the same first-occurrence rule to the entry-point
// list, so a duplicated function is loaded once.
func dedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
