// Copyright (c) 2025, The Fealcrack Authors.
// See LICENSE for licensing information.

// Package corpus holds the known plaintext/ciphertext pairs the attack
// works from: loading them from the text pair-file format, generating
// fresh corpora under a chosen key, and serving them read-only to the
// search.
package corpus

import (
	"encoding/binary"

	"github.com/AeonDave/fealcrack/internal/feal"
)

// Pair is one known plaintext/ciphertext pair, stored as big-endian
// 32-bit block halves. PL/PR are the plaintext halves L0/R0, CL/CR the
// ciphertext halves L4/R4. Pairs are immutable once loaded.
type Pair struct {
	PL, PR, CL, CR uint32
}

// PlainBlock reassembles the 8-byte plaintext block.
func (p Pair) PlainBlock() [feal.BlockSize]byte {
	var b [feal.BlockSize]byte
	binary.BigEndian.PutUint32(b[0:4], p.PL)
	binary.BigEndian.PutUint32(b[4:8], p.PR)
	return b
}

// CipherBlock reassembles the 8-byte ciphertext block.
func (p Pair) CipherBlock() [feal.BlockSize]byte {
	var b [feal.BlockSize]byte
	binary.BigEndian.PutUint32(b[0:4], p.CL)
	binary.BigEndian.PutUint32(b[4:8], p.CR)
	return b
}

// Corpus is an ordered, read-only collection of pairs. The zero value
// is an empty corpus.
type Corpus struct {
	pairs []Pair
}

// New builds a corpus from pairs. The slice is not copied; callers
// hand over ownership.
func New(pairs []Pair) *Corpus {
	return &Corpus{pairs: pairs}
}

// Len reports the number of pairs.
func (c *Corpus) Len() int {
	return len(c.pairs)
}

// Pair returns pair i. The search only ever asks for indices in
// [0, Len()); anything else panics like any slice access.
func (c *Corpus) Pair(i int) Pair {
	return c.pairs[i]
}
