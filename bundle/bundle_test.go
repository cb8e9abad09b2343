package bundle

import (
	"bytes"
	"testing"

	"github.com/sofplus/cvarpack/compiler"
)

func sampleResult() *compiler.Result {
	return &compiler.Result{
		Kind: compiler.KindScript,
		Cells: []compiler.Cell{
			{Name: "f_demo_0", Content: "function demo%0A{%0A  do_thing%0A}"},
		},
		EntryPoints: []string{"f_demo_0"},
	}
}

func TestBundleRoundTrip(t *testing.T) {
	src := "function demo\n{\n  do_thing\n}\n"
	b := New(src, "demo", sampleResult(), compiler.Options{})

	data, err := Marshal(b)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Kind != KindScript {
		t.Errorf("kind = %d, want script", got.Kind)
	}
	if got.Label != "demo" {
		t.Errorf("label = %q, want demo", got.Label)
	}
	if got.MaxCellSize != compiler.DefaultMaxCellSize {
		t.Errorf("max cell size = %d, want %d", got.MaxCellSize, compiler.DefaultMaxCellSize)
	}
	if len(got.Cells) != 1 || got.Cells[0].Name != "f_demo_0" {
		t.Errorf("cells = %+v, want the single demo cell", got.Cells)
	}
	if err := got.Verify(src); err != nil {
		t.Errorf("Verify failed on original source: %v", err)
	}
}

func TestBundleVerifyRejectsModifiedSource(t *testing.T) {
	b := New("original", "x", sampleResult(), compiler.Options{})
	if err := b.Verify("modified"); err == nil {
		t.Error("Verify accepted a different source")
	}
}

func TestBundleMatches(t *testing.T) {
	src := "function demo\n{\n  do_thing\n}\n"
	b := New(src, "demo", sampleResult(), compiler.Options{})

	if !b.Matches(src, "demo", compiler.Options{}) {
		t.Error("Matches rejected the bundle's own source, label and options")
	}
	if b.Matches(src, "other", compiler.Options{}) {
		t.Error("Matches accepted a different label")
	}
	if b.Matches("modified", "demo", compiler.Options{}) {
		t.Error("Matches accepted modified source")
	}
	if b.Matches(src, "demo", compiler.Options{MaxCellSize: 128}) {
		t.Error("Matches accepted a different cell size")
	}
	if b.Matches(src, "demo", compiler.Options{HashLen: 8}) {
		t.Error("Matches accepted a different hash length")
	}
}

func TestBundleResultReconstruction(t *testing.T) {
	res, err := compiler.CompileMarkup("<stm>\n<window>\n<rect 0 0 640 480>\n</window>\n</stm>\n", "menu", compiler.Options{})
	if err != nil {
		t.Fatalf("CompileMarkup failed: %v", err)
	}

	b := New("src", "menu", res, compiler.Options{})
	back := b.Result()

	if back.Kind != compiler.KindMarkup {
		t.Errorf("kind = %v, want markup", back.Kind)
	}
	if len(back.Cells) != len(res.Cells) {
		t.Fatalf("cells = %d, want %d", len(back.Cells), len(res.Cells))
	}
	for i := range res.Cells {
		if back.Cells[i] != res.Cells[i] {
			t.Errorf("cell %d = %+v, want %+v", i, back.Cells[i], res.Cells[i])
		}
	}
	if len(back.EntryPoints) != 1 || back.EntryPoints[0] != res.EntryPoints[0] {
		t.Errorf("entry points = %v, want %v", back.EntryPoints, res.EntryPoints)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	b := New("src", "demo", sampleResult(), compiler.Options{})

	first, err := Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("canonical encoding produced different bytes for the same bundle")
	}
}
