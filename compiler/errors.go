package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Fatal errors
// ---------------------------------------------------------------------------
//
// A fatal error aborts the whole compile and returns no partial output.
// Recoverable conditions (unmatched brace, dangling else) are surfaced as
// warnings on the Result instead and never abort sibling constructs.

// FatalKind identifies which construct could not be packed.
type FatalKind int

const (
	// FatalOversizedCommand: a single atomic command exceeds the capacity
	// of an empty cell even after helper extraction.
	FatalOversizedCommand FatalKind = iota

	// FatalOversizedTag: a single markup tag exceeds the capacity of an
	// empty cell.
	FatalOversizedTag

	// FatalOversizedShell: a function's header/closer framing does not fit
	// a cell even with just the body invocation inside.
	FatalOversizedShell

	// FatalNoCapacity: the capacity ceiling is below the fixed overhead of
	// any cell, so no content at all can be stored.
	FatalNoCapacity

	// FatalPostcondition: a rendered set line exceeded the capacity
	// ceiling after packing. This indicates a packer logic defect and is
	// never silently emitted.
	FatalPostcondition
)

var fatalKindNames = map[FatalKind]string{
	FatalOversizedCommand: "oversized atomic command",
	FatalOversizedTag:     "oversized tag",
	FatalOversizedShell:   "oversized function shell",
	FatalNoCapacity:       "insufficient capacity",
	FatalPostcondition:    "packer postcondition violation",
}

func (k FatalKind) String() string {
	if name, ok := fatalKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FatalKind(%d)", int(k))
}

// FatalError is the structured failure returned when a construct cannot be
// packed. Subject is a preview of the offending construct (a command, tag,
// or cell name), truncated to keep messages readable.
type FatalError struct {
	Kind    FatalKind
	Subject string
	Size    int // escaped size that was measured, 0 when not applicable
	Limit   int // budget it was measured against, 0 when not applicable
}

func (e *FatalError) Error() string {
	if e.Size > 0 {
		return fmt.Sprintf("%s: %q (%d > %d)", e.Kind, e.Subject, e.Size, e.Limit)
	}
	return fmt.Sprintf("%s: %q", e.Kind, e.Subject)
}

// fatalf builds a FatalError with a truncated subject preview.
func fatalf(kind FatalKind, subject string, size, limit int) *FatalError {
	const previewLen = 80
	if len(subject) > previewLen {
		subject = subject[:previewLen] + "..."
	}
	return &FatalError{Kind: kind, Subject: subject, Size: size, Limit: limit}
}
