// Copyright (c) 2025, The Fealcrack Authors.
// See LICENSE for licensing information.

package attack

import (
	"math/rand"
	"testing"

	"github.com/go-quicktest/qt"
)

func TestInnerKeyVectors(t *testing.T) {
	qt.Assert(t, qt.Equals(InnerKey(0), uint32(0x00000000)))
	qt.Assert(t, qt.Equals(InnerKey(0xfff), uint32(0x003f3f00)))
	// Counters map the high six bits to b1 and the low six to b2.
	qt.Assert(t, qt.Equals(InnerKey(1), uint32(0x00000100)))
	qt.Assert(t, qt.Equals(InnerKey(1<<6), uint32(0x00010000)))
}

func TestInnerKeyShape(t *testing.T) {
	for c := 0; c < InnerKeySpace; c++ {
		k := InnerKey(c)
		if k&0xff0000ff != 0 {
			t.Fatalf("InnerKey(%#x) = %#08x touches the outer bytes", c, k)
		}
		if k&0x00c0c000 != 0 {
			t.Fatalf("InnerKey(%#x) = %#08x sets masked high bits", c, k)
		}
	}
}

func TestOuterKeyVectors(t *testing.T) {
	qt.Assert(t, qt.Equals(OuterKey(0, 0), uint32(0x00000000)))
}

func TestOuterKeyLaws(t *testing.T) {
	// By construction b1 = b0 ^ a0 and b2 = b3 ^ a1, where a0/a1 are
	// the inner bytes extended with the counter's two high-bit pairs.
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 10000; i++ {
		o := rng.Intn(OuterKeySpace)
		inner := InnerKey(rng.Intn(InnerKeySpace))
		k := OuterKey(o, inner)

		b0 := k >> 24 & 0xff
		b1 := k >> 16 & 0xff
		b2 := k >> 8 & 0xff
		b3 := k & 0xff

		a0 := uint32(((o&0xf)>>2)<<6) + (inner >> 16 & 0xff)
		a1 := uint32((o&0x3)<<6) + (inner >> 8 & 0xff)

		if b1^b0 != a0 {
			t.Fatalf("OuterKey(%#x, %#08x) = %#08x: b1^b0 = %#02x, want %#02x", o, inner, k, b1^b0, a0)
		}
		if b2^b3 != a1 {
			t.Fatalf("OuterKey(%#x, %#08x) = %#08x: b2^b3 = %#02x, want %#02x", o, inner, k, b2^b3, a1)
		}
		if b0 != uint32(o>>12&0xff) || b3 != uint32(o>>4&0xff) {
			t.Fatalf("OuterKey(%#x, %#08x) = %#08x: end bytes do not follow the counter", o, inner, k)
		}
	}
}
