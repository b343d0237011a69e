// Copyright (c) 2025, The Fealcrack Authors.
// See LICENSE for licensing information.

// Package attack recovers the six FEAL-4 round subkeys from known
// plaintext/ciphertext pairs by cascaded linear cryptanalysis: the
// rounds K0..K3 are searched one after another, each filtered by a
// pair of linear approximations, and K4/K5 then follow algebraically.
package attack

import (
	"github.com/AeonDave/fealcrack/internal/corpus"
	"github.com/AeonDave/fealcrack/internal/feal"
)

// Bit positions follow the cryptanalysis literature's S-notation:
// position s names bit 31-s, so s=0 is the most significant bit.

func bit(v uint32, s int) int {
	return int(v>>(31-s)) & 1
}

func bit3(v uint32, s1, s2, s3 int) int {
	return bit(v, s1) ^ bit(v, s2) ^ bit(v, s3)
}

func bit4(v uint32, s1, s2, s3, s4 int) int {
	return bit(v, s1) ^ bit(v, s2) ^ bit(v, s3) ^ bit(v, s4)
}

// approx is one linear approximation: the predicted parity bit for
// pair p under the key guesses in k. k[0..level] hold the confirmed
// prefix plus, in the level's own slot, the candidate under test.
// Approximations are pure; the consistency filter relies on that.
type approx func(p corpus.Pair, k *[4]uint32) int

// levels pairs each search depth with its inner- and outer-byte
// approximations, replacing four copies of the same loop shape with
// one table-driven recursion.
var levels = [4]struct {
	inner, outer approx
}{
	{approxK0Inner, approxK0Outer},
	{approxK1Inner, approxK1Outer},
	{approxK2Inner, approxK2Outer},
	{approxK3Inner, approxK3Outer},
}

// S5,13,21(L0^R0^L4) ^ S15(L0^L4^R4) ^ S15(F(L0^R0^K0))
func approxK0Inner(p corpus.Pair, k *[4]uint32) int {
	return bit3(p.PL^p.PR^p.CL, 5, 13, 21) ^
		bit(p.PL^p.CL^p.CR, 15) ^
		bit(feal.F(p.PL^p.PR^k[0]), 15)
}

// S13(L0^R0^L4) ^ S7,15,23,31(L0^L4^R4) ^ S7,15,23,31(F(L0^R0^K0))
func approxK0Outer(p corpus.Pair, k *[4]uint32) int {
	return bit(p.PL^p.PR^p.CL, 13) ^
		bit4(p.PL^p.CL^p.CR, 7, 15, 23, 31) ^
		bit4(feal.F(p.PL^p.PR^k[0]), 7, 15, 23, 31)
}

// S5,13,21(L0^L4^R4) ^ S15(F(L0^Y0^K1))
func approxK1Inner(p corpus.Pair, k *[4]uint32) int {
	y0 := feal.F(p.PL ^ p.PR ^ k[0])
	return bit3(p.PL^p.CL^p.CR, 5, 13, 21) ^
		bit(feal.F(p.PL^y0^k[1]), 15)
}

// S13(L0^L4^R4) ^ S7,15,23,31(F(L0^Y0^K1))
func approxK1Outer(p corpus.Pair, k *[4]uint32) int {
	y0 := feal.F(p.PL ^ p.PR ^ k[0])
	y1 := feal.F(p.PL ^ y0 ^ k[1])
	return bit(p.PL^p.CL^p.CR, 13) ^
		bit4(y1, 7, 15, 23, 31)
}

// S5,13,21(L0^R0^L4) ^ S15(F(L0^R0^Y1^K2))
func approxK2Inner(p corpus.Pair, k *[4]uint32) int {
	y0 := feal.F(p.PL ^ p.PR ^ k[0])
	y1 := feal.F(p.PL ^ y0 ^ k[1])
	return bit3(p.PL^p.PR^p.CL, 5, 13, 21) ^
		bit(feal.F(p.PL^p.PR^y1^k[2]), 15)
}

// S13(L0^R0^L4) ^ S7,15,23,31(F(L0^R0^Y1^K2))
func approxK2Outer(p corpus.Pair, k *[4]uint32) int {
	y0 := feal.F(p.PL ^ p.PR ^ k[0])
	y1 := feal.F(p.PL ^ y0 ^ k[1])
	y2 := feal.F(p.PL ^ p.PR ^ y1 ^ k[2])
	return bit(p.PL^p.PR^p.CL, 13) ^
		bit4(y2, 7, 15, 23, 31)
}

// S5,13,21(L0^L4^R4) ^ S15(L0^R0^L4) ^ S15(F(L0^Y0^Y2^K3))
func approxK3Inner(p corpus.Pair, k *[4]uint32) int {
	y0 := feal.F(p.PL ^ p.PR ^ k[0])
	y1 := feal.F(p.PL ^ y0 ^ k[1])
	y2 := feal.F(p.PL ^ p.PR ^ y1 ^ k[2])
	return bit3(p.PL^p.CL^p.CR, 5, 13, 21) ^
		bit(p.PL^p.PR^p.CL, 15) ^
		bit(feal.F(p.PL^y0^y2^k[3]), 15)
}

// S13(L0^L4^R4) ^ S7,15,23,31(L0^R0^L4) ^ S7,15,23,31(F(L0^Y0^Y2^K3))
func approxK3Outer(p corpus.Pair, k *[4]uint32) int {
	y0 := feal.F(p.PL ^ p.PR ^ k[0])
	y1 := feal.F(p.PL ^ y0 ^ k[1])
	y2 := feal.F(p.PL ^ p.PR ^ y1 ^ k[2])
	y3 := feal.F(p.PL ^ y0 ^ y2 ^ k[3])
	return bit(p.PL^p.CL^p.CR, 13) ^
		bit4(p.PL^p.PR^p.CL, 7, 15, 23, 31) ^
		bit4(y3, 7, 15, 23, 31)
}
