package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ---------------------------------------------------------------------------
// Cell naming
// ---------------------------------------------------------------------------
//
// All names are deterministic: the same source and label always produce
// the same cell names. Script owners are named after their function
// ("f_open_doors"); markup documents are named after a short hash of the
// caller-supplied label ("m_9f2a") since a document has no intrinsic name.

// DefaultHashLen is the number of hex digits taken from the label hash.
const DefaultHashLen = 4

// ShortHash returns the first n hex characters of the SHA-256 of label.
func ShortHash(label string, n int) string {
	sum := sha256.Sum256([]byte(label))
	digest := hex.EncodeToString(sum[:])
	if n <= 0 || n > len(digest) {
		n = DefaultHashLen
	}
	return digest[:n]
}

// Namer produces collision-free base names for one compile call.
// Anonymous functions draw sequential indexes, so two of them in one
// document never collide.
type Namer struct {
	labelHash string
	anon      int
}

// NewNamer creates a namer seeded by the caller-supplied label.
func NewNamer(label string, hashLen int) *Namer {
	return &Namer{labelHash: ShortHash(label, hashLen)}
}

// FunctionBase returns the cell base name for a function owner.
func (n *Namer) FunctionBase(name string) string {
	if name == "" {
		name = fmt.Sprintf("%s_anon%d", n.labelHash, n.anon)
		n.anon++
	}
	return "f_" + name
}

// DocumentBase returns the cell base name for a markup document owner.
func (n *Namer) DocumentBase() string {
	return "m_" + n.labelHash
}

// HelperBase returns the base name for the index-th extracted helper
// chain of the given owner. The "autogen" infix marks the cells as
// internal, so they are excluded from entry-point listings.
func HelperBase(ownerBase string, index int) string {
	return fmt.Sprintf("%s_autogen_%d", ownerBase, index)
}

// BodyBase returns the base name for an owner's packed body chain.
func BodyBase(ownerBase string) string {
	return ownerBase + "_body"
}

// CellName returns the name of the index-th cell under a base name.
func CellName(base string, index int) string {
	return fmt.Sprintf("%s_%d", base, index)
}
