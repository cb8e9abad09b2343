package compiler

import (
	"errors"
	"strings"
	"testing"
)

// resolveChain strips chain references from packed cells and rejoins the
// raw payloads, reconstructing the packed content independently of where
// the cell boundaries fell.
func resolveChain(t *testing.T, cells []Cell, layout Layout) string {
	t.Helper()
	parts := make([]string, 0, len(cells))
	for i, c := range cells {
		raw := Unescape(c.Content)
		if c.HasLink {
			link := layout.Link(cells[i+1].Name)
			if !strings.HasSuffix(raw, link) {
				t.Fatalf("cell %s does not end with link to %s: %q", c.Name, cells[i+1].Name, raw)
			}
			raw = strings.TrimSuffix(raw, link)
		}
		parts = append(parts, raw)
	}
	return strings.Join(parts, layout.Separator)
}

// checkCapacity asserts the packer postcondition on every cell.
func checkCapacity(t *testing.T, cells []Cell, maxCellSize int) {
	t.Helper()
	for _, c := range cells {
		if n := len(c.SetLine()); n > maxCellSize {
			t.Errorf("cell %s rendered line is %d bytes, over %d", c.Name, n, maxCellSize)
		}
	}
}

func TestPackSingleCell(t *testing.T) {
	units := []Unit{{Raw: "alpha"}, {Raw: "beta"}}
	cells, err := Pack(units, "t", ScriptLayout(), DefaultMaxCellSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 1 {
		t.Fatalf("got %d cells, want 1", len(cells))
	}
	if cells[0].Name != "t_0" || cells[0].Content != "alpha; beta" || cells[0].HasLink {
		t.Errorf("cell = %+v, want t_0 / alpha; beta / no link", cells[0])
	}
}

func TestPackEmpty(t *testing.T) {
	cells, err := Pack(nil, "t", ScriptLayout(), DefaultMaxCellSize)
	if err != nil || len(cells) != 0 {
		t.Errorf("Pack(nil) = %v, %v, want empty and no error", cells, err)
	}
}

func TestPackChainIntegrity(t *testing.T) {
	// Enough 40-byte commands to force several cells at the default size.
	var units []Unit
	for i := 0; i < 30; i++ {
		units = append(units, Unit{Raw: "cmd_" + strings.Repeat("x", 34) + string(rune('a'+i))})
	}
	cells, err := Pack(units, "t", ScriptLayout(), DefaultMaxCellSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) < 3 {
		t.Fatalf("got %d cells, want a multi-cell chain", len(cells))
	}
	checkCapacity(t, cells, DefaultMaxCellSize)

	for i, c := range cells {
		wantLink := i < len(cells)-1
		if c.HasLink != wantLink {
			t.Errorf("cell %s HasLink = %v, want %v", c.Name, c.HasLink, wantLink)
		}
	}

	// Following the chain visits every unit exactly once, in order.
	got := resolveChain(t, cells, ScriptLayout())
	if want := joinUnits(units); got != want {
		t.Errorf("chain reconstruction mismatch:\ngot  %q\nwant %q", got, want)
	}
}

func TestPackAtomicityOfIndivisibleUnits(t *testing.T) {
	var units []Unit
	for i := 0; i < 12; i++ {
		units = append(units, Unit{Raw: strings.Repeat(string(rune('a'+i)), 60)})
	}
	cells, err := Pack(units, "t", ScriptLayout(), DefaultMaxCellSize)
	if err != nil {
		t.Fatal(err)
	}
	for _, u := range units {
		found := 0
		for _, c := range cells {
			if strings.Contains(c.Content, u.Raw) {
				found++
			}
		}
		if found != 1 {
			t.Errorf("unit %q found whole in %d cells, want exactly 1 (never split)", u.Raw[:8], found)
		}
	}
}

func TestPackDivisibleTextSplitsAtBoundary(t *testing.T) {
	text := strings.Repeat("a", 600)
	cells, err := Pack([]Unit{{Raw: text, Divisible: true}}, "m_t", MarkupLayout(), DefaultMaxCellSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) < 2 {
		t.Fatalf("got %d cells, want a split", len(cells))
	}
	checkCapacity(t, cells, DefaultMaxCellSize)

	if got := resolveChain(t, cells, MarkupLayout()); got != text {
		t.Errorf("reconstructed %d bytes, want the original %d", len(got), len(text))
	}

	// The split point is the longest prefix that fits under the
	// pessimistic link reservation: every non-final unmerged cell is
	// filled to exactly the reserved budget (pure ASCII, so escaped
	// length equals raw length).
	layout := MarkupLayout()
	placeholder := CellName("m_t", placeholderIndex)
	maxWithLink := DefaultMaxCellSize - setOverhead(placeholder) - EscapedLen(layout.Link(placeholder))
	raw := Unescape(cells[0].Content)
	raw = strings.TrimSuffix(raw, layout.Link(cells[1].Name))
	if len(raw) != maxWithLink {
		t.Errorf("first chunk is %d bytes, want the full budget %d", len(raw), maxWithLink)
	}
}

func TestPackMergeBack(t *testing.T) {
	layout := ScriptLayout()
	placeholder := CellName("t", placeholderIndex)
	maxWithLink := DefaultMaxCellSize - setOverhead(placeholder) - EscapedLen(layout.Link(placeholder))

	// Two units that overflow the reserved budget together but fit a
	// final (link-free) cell once merged.
	a := strings.Repeat("a", maxWithLink-100)
	b := strings.Repeat("b", 100) // a + "; " + b == maxWithLink + 2
	cells, err := Pack([]Unit{{Raw: a}, {Raw: b}}, "t", layout, DefaultMaxCellSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 1 {
		t.Fatalf("got %d cells, want the tail merged into 1", len(cells))
	}
	if want := a + "; " + b; cells[0].Content != want {
		t.Errorf("merged content = %q, want %q", cells[0].Content, want)
	}
	checkCapacity(t, cells, DefaultMaxCellSize)
}

func TestPackMergeBackDeclined(t *testing.T) {
	layout := ScriptLayout()
	placeholder := CellName("t", placeholderIndex)
	maxWithLink := DefaultMaxCellSize - setOverhead(placeholder) - EscapedLen(layout.Link(placeholder))

	// Merged size exceeds even a link-free cell: the split must stand.
	a := strings.Repeat("a", maxWithLink)
	b := strings.Repeat("b", maxWithLink)
	cells, err := Pack([]Unit{{Raw: a}, {Raw: b}}, "t", layout, DefaultMaxCellSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}
	if !cells[0].HasLink || cells[1].HasLink {
		t.Errorf("links = %v/%v, want first linked, last not", cells[0].HasLink, cells[1].HasLink)
	}
	checkCapacity(t, cells, DefaultMaxCellSize)
}

func TestPackMergeIdempotence(t *testing.T) {
	// Merging only moves cell boundaries: chain resolution yields the
	// same content with and without the merge pass running.
	layout := ScriptLayout()
	var units []Unit
	for i := 0; i < 9; i++ {
		units = append(units, Unit{Raw: strings.Repeat(string(rune('a'+i)), 55)})
	}
	cells, err := Pack(units, "t", layout, DefaultMaxCellSize)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := resolveChain(t, cells, layout), joinUnits(units); got != want {
		t.Errorf("chain resolution changed content:\ngot  %q\nwant %q", got, want)
	}
}

func TestPackOversizedIndivisibleUnitFatal(t *testing.T) {
	big := strings.Repeat("x", 300)
	_, err := Pack([]Unit{{Raw: big}}, "t", ScriptLayout(), DefaultMaxCellSize)
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("err = %v, want *FatalError", err)
	}
	if fatal.Kind != FatalOversizedCommand {
		t.Errorf("kind = %v, want oversized atomic command", fatal.Kind)
	}
	if !strings.HasPrefix(big, strings.TrimSuffix(fatal.Subject, "...")) {
		t.Errorf("subject %q does not identify the offending unit", fatal.Subject)
	}
}

func TestPackOversizedTagFatal(t *testing.T) {
	tag := "<" + strings.Repeat("y", 300) + ">"
	_, err := Pack([]Unit{{Raw: tag}}, "m_t", MarkupLayout(), DefaultMaxCellSize)
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("err = %v, want *FatalError", err)
	}
	if fatal.Kind != FatalOversizedTag {
		t.Errorf("kind = %v, want oversized tag", fatal.Kind)
	}
}

func TestPackNoCapacityFatal(t *testing.T) {
	_, err := Pack([]Unit{{Raw: "<a>"}}, "m_t", MarkupLayout(), 30)
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("err = %v, want *FatalError", err)
	}
	if fatal.Kind != FatalNoCapacity {
		t.Errorf("kind = %v, want insufficient capacity", fatal.Kind)
	}
}

func TestPackEscapedContentCounted(t *testing.T) {
	// Payload full of characters that triple when escaped; the budget
	// must be measured on the escaped form.
	text := strings.Repeat("\"%\n", 200)
	cells, err := Pack([]Unit{{Raw: text, Divisible: true}}, "m_t", MarkupLayout(), DefaultMaxCellSize)
	if err != nil {
		t.Fatal(err)
	}
	checkCapacity(t, cells, DefaultMaxCellSize)
	if got := resolveChain(t, cells, MarkupLayout()); got != text {
		t.Errorf("reconstruction mismatch for escaped-heavy text")
	}
}
