// Copyright (c) 2025, The Fealcrack Authors.
// See LICENSE for licensing information.

package attack

import (
	"context"
	"sync"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/AeonDave/fealcrack/internal/corpus"
	"github.com/AeonDave/fealcrack/internal/feal"
)

func TestDeriveTailIdentity(t *testing.T) {
	c := testCorpus(t, testKey, 32, 19)

	// With the true K0..K3, pair 0 pins down K4 and K5 exactly.
	got := DeriveTail(c.Pair(0), [4]uint32{testKey[0], testKey[1], testKey[2], testKey[3]})
	qt.Assert(t, qt.Equals(got, testKey))

	// And the derived tuple decrypts every pair, not just pair 0.
	s := &Search{Corpus: c}
	qt.Assert(t, qt.IsTrue(s.validate(got)))
}

func TestValidateRejectsWrongKey(t *testing.T) {
	c := testCorpus(t, testKey, 16, 23)
	s := &Search{Corpus: c}

	qt.Assert(t, qt.IsTrue(s.validate(testKey)))

	for i := range testKey {
		bad := testKey
		bad[i] ^= 1 << uint(i)
		qt.Assert(t, qt.IsFalse(s.validate(bad)), qt.Commentf("perturbed k%d", i))
	}
}

func TestConsistentShortCircuits(t *testing.T) {
	c := testCorpus(t, testKey, 40, 29)
	s := &Search{Corpus: c}

	var keys [4]uint32
	copy(keys[:], testKey[:4])
	qt.Assert(t, qt.IsTrue(s.consistent(levels[0].outer, &keys)))

	// A predicate that alternates per pair must stop the scan at the
	// first disagreement regardless of corpus size.
	calls := 0
	alternating := func(corpus.Pair, *[4]uint32) int {
		calls++
		return calls & 1
	}
	qt.Assert(t, qt.IsFalse(s.consistent(alternating, &keys)))
	qt.Assert(t, qt.Equals(calls, 2))
}

func TestReporterCap(t *testing.T) {
	var emitted []feal.Key
	rep := &reporter{max: 2, emit: func(k feal.Key) { emitted = append(emitted, k) }}

	qt.Assert(t, qt.IsNil(rep.accept(feal.Key{1})))
	// The accept that fills the cap still emits, then signals the cap.
	qt.Assert(t, qt.ErrorIs(rep.accept(feal.Key{2}), errKeyCap))
	// Past the cap nothing is emitted.
	qt.Assert(t, qt.ErrorIs(rep.accept(feal.Key{3}), errKeyCap))

	qt.Assert(t, qt.Equals(rep.count(), 2))
	qt.Assert(t, qt.DeepEquals(emitted, []feal.Key{{1}, {2}}))
}

func TestFinishRejectsFalsePositive(t *testing.T) {
	c := testCorpus(t, testKey, 16, 31)
	s := &Search{Corpus: c}
	rep := &reporter{max: 1}

	// A wrong prefix derives a tail that decrypts pair 0 by
	// construction but must fail trial decryption of the rest.
	wrong := [4]uint32{testKey[0] ^ 0x40, testKey[1], testKey[2], testKey[3]}
	qt.Assert(t, qt.IsNil(s.finish(rep, wrong)))
	qt.Assert(t, qt.Equals(rep.count(), 0))

	qt.Assert(t, qt.ErrorIs(s.finish(rep, [4]uint32{testKey[0], testKey[1], testKey[2], testKey[3]}), errKeyCap))
	qt.Assert(t, qt.Equals(rep.count(), 1))
}

// TestSearchRecoversKey runs the whole cascade against a generated
// corpus. It covers the same ground as the CLI on a corpus from
// `fealcrack gen` and takes minutes, so -short skips it.
func TestSearchRecoversKey(t *testing.T) {
	if testing.Short() {
		t.Skip("full key search in -short mode")
	}

	c := testCorpus(t, testKey, 24, 37)

	var mu sync.Mutex
	var found []feal.Key
	s := &Search{
		Corpus: c,
		Report: func(k feal.Key) {
			mu.Lock()
			found = append(found, k)
			mu.Unlock()
		},
	}

	n, capped, err := s.Run(context.Background())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(capped))
	qt.Assert(t, qt.Equals(n, len(found)))

	for _, k := range found {
		// Every reported tuple must decrypt the corpus...
		qt.Assert(t, qt.IsTrue(s.validate(k)))
	}
	// ...and the true key must be among them.
	for _, k := range found {
		if k == testKey {
			return
		}
	}
	t.Fatalf("true key %08x not among %d recovered tuples", testKey, len(found))
}

func TestSearchHonorsCancellation(t *testing.T) {
	c := testCorpus(t, testKey, 8, 41)
	s := &Search{Corpus: c, Workers: 2}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := s.Run(ctx)
	qt.Assert(t, qt.ErrorIs(err, context.Canceled))
}
