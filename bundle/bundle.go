// Package bundle implements the cached build artifact format. A compiled
// source file is packaged as a content-hashed bundle and stored as CBOR
// bytes, so later builds can skip recompiling unchanged sources.
package bundle

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/sofplus/cvarpack/compiler"
)

// SourceKind identifies the variant a bundle was compiled from.
type SourceKind uint8

const (
	KindScript SourceKind = 1
	KindMarkup SourceKind = 2
)

// CellRecord is one compiled cell as stored in a bundle.
type CellRecord struct {
	Name    string `cbor:"1,keyasint"`
	Content string `cbor:"2,keyasint"`
	HasLink bool   `cbor:"3,keyasint,omitempty"`
}

// Bundle is a compiled source file packaged for caching. Hash covers the
// original source text, so a bundle can be looked up by source content
// alone.
type Bundle struct {
	Hash        [32]byte     `cbor:"1,keyasint"`
	Kind        SourceKind   `cbor:"2,keyasint"`
	Label       string       `cbor:"3,keyasint"`
	Cells       []CellRecord `cbor:"4,keyasint"`
	EntryPoints []string     `cbor:"5,keyasint,omitempty"`
	MaxCellSize int          `cbor:"6,keyasint"`
	HashLen     int          `cbor:"7,keyasint"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bundle: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// SourceHash returns the content hash used to key bundles.
func SourceHash(source string) [32]byte {
	return sha256.Sum256([]byte(source))
}

// New packages a compilation result for the given source text. Label and
// the pack options are recorded because generated cell names depend on
// them as much as on the source bytes.
func New(source, label string, res *compiler.Result, opts compiler.Options) *Bundle {
	if opts.MaxCellSize == 0 {
		opts.MaxCellSize = compiler.DefaultMaxCellSize
	}
	if opts.HashLen == 0 {
		opts.HashLen = compiler.DefaultHashLen
	}
	b := &Bundle{
		Hash:        SourceHash(source),
		Label:       label,
		EntryPoints: append([]string(nil), res.EntryPoints...),
		MaxCellSize: opts.MaxCellSize,
		HashLen:     opts.HashLen,
	}
	switch res.Kind {
	case compiler.KindMarkup:
		b.Kind = KindMarkup
	default:
		b.Kind = KindScript
	}
	b.Cells = make([]CellRecord, len(res.Cells))
	for i, c := range res.Cells {
		b.Cells[i] = CellRecord{Name: c.Name, Content: c.Content, HasLink: c.HasLink}
	}
	return b
}

// Result reconstructs the compilation result a bundle was built from.
func (b *Bundle) Result() *compiler.Result {
	res := &compiler.Result{
		EntryPoints: append([]string(nil), b.EntryPoints...),
	}
	if b.Kind == KindMarkup {
		res.Kind = compiler.KindMarkup
	} else {
		res.Kind = compiler.KindScript
	}
	res.Cells = make([]compiler.Cell, len(b.Cells))
	for i, c := range b.Cells {
		res.Cells[i] = compiler.Cell{Name: c.Name, Content: c.Content, HasLink: c.HasLink}
	}
	return res
}

// Marshal serializes a Bundle to CBOR bytes.
func Marshal(b *Bundle) ([]byte, error) {
	return cborEncMode.Marshal(b)
}

// Unmarshal deserializes a Bundle from CBOR bytes.
func Unmarshal(data []byte) (*Bundle, error) {
	var b Bundle
	if err := cbor.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("bundle: unmarshal: %w", err)
	}
	return &b, nil
}

// Verify checks that a bundle's declared hash matches the given source
// text. A mismatch means the cache entry is stale.
func (b *Bundle) Verify(source string) error {
	computed := SourceHash(source)
	if computed != b.Hash {
		return fmt.Errorf("bundle: hash mismatch: declared %x, computed %x", b.Hash, computed)
	}
	return nil
}

// Matches reports whether a cached bundle can stand in for compiling the
// given source under the given label and options. Identical sources
// compiled under different labels produce different cell names, so a
// source hash match alone is not enough.
func (b *Bundle) Matches(source, label string, opts compiler.Options) bool {
	maxCellSize := opts.MaxCellSize
	if maxCellSize == 0 {
		maxCellSize = compiler.DefaultMaxCellSize
	}
	hashLen := opts.HashLen
	if hashLen == 0 {
		hashLen = compiler.DefaultHashLen
	}
	return b.Label == label &&
		b.MaxCellSize == maxCellSize &&
		b.HashLen == hashLen &&
		b.Verify(source) == nil
}
