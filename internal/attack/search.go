// Copyright (c) 2025, The Fealcrack Authors.
// See LICENSE for licensing information.

package attack

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AeonDave/fealcrack/internal/corpus"
	"github.com/AeonDave/fealcrack/internal/feal"
)

// MaxValidKeys is the default cap on accepted key tuples. FEAL-4's
// linear trails admit equivalent-key families, so a run can surface
// many tuples that all decrypt the corpus correctly.
const MaxValidKeys = 256

// errKeyCap unwinds the recursion once the cap is reached. It never
// escapes Run.
var errKeyCap = errors.New("key cap reached")

// Search drives the cascaded subkey recovery over a read-only corpus.
type Search struct {
	// Corpus is the known-pair store. At least one pair is required;
	// around twenty are needed before the filters bite.
	Corpus *corpus.Corpus

	// Workers bounds the goroutines sweeping the K0 outer space.
	// Zero means GOMAXPROCS; one reproduces the sequential candidate
	// order of a plain nested-loop search.
	Workers int

	// MaxKeys caps accepted tuples; zero means MaxValidKeys.
	MaxKeys int

	// Report receives each accepted tuple. Calls are serialized.
	Report func(feal.Key)
}

// Run executes the attack until the K0 space is exhausted, the cap is
// reached, or ctx is cancelled. It reports the number of accepted
// tuples and whether the cap cut the search short.
func (s *Search) Run(ctx context.Context) (found int, capped bool, err error) {
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rep := &reporter{max: s.MaxKeys, emit: s.Report}
	if rep.max <= 0 {
		rep.max = MaxValidKeys
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// Level 0 is where all the time goes, so only its outer sweep is
	// fanned out; each task owns a slice of the 2^20 outer space and
	// runs the rest of the cascade sequentially. Deeper levels are
	// reached so rarely that parallelizing them buys nothing.
	chunk := (OuterKeySpace + workers - 1) / workers
	for c := 0; c < InnerKeySpace; c++ {
		keys := [4]uint32{InnerKey(c)}
		if !s.consistent(levels[0].inner, &keys) {
			continue
		}
		innerKey := keys[0]
		for lo := 0; lo < OuterKeySpace; lo += chunk {
			lo, hi := lo, min(lo+chunk, OuterKeySpace)
			g.Go(func() error {
				return s.sweepK0(gctx, rep, innerKey, lo, hi)
			})
		}
	}

	err = g.Wait()
	if errors.Is(err, errKeyCap) {
		return rep.count(), true, nil
	}
	return rep.count(), false, err
}

// sweepK0 scans K0 outer candidates in [lo, hi) and descends the
// remaining levels for every survivor.
func (s *Search) sweepK0(ctx context.Context, rep *reporter, innerKey uint32, lo, hi int) error {
	var keys [4]uint32
	for o := lo; o < hi; o++ {
		if o&0x3ff == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		keys[0] = OuterKey(o, innerKey)
		if !s.consistent(levels[0].outer, &keys) {
			continue
		}
		if err := s.searchLevel(ctx, rep, 1, keys); err != nil {
			return err
		}
	}
	return nil
}

// searchLevel recovers subkey `level` given the confirmed prefix in
// keys[:level]: inner candidates first, each survivor extended across
// the outer space, each full survivor recursed on. Past the last
// level the tail keys are derived and the tuple validated.
func (s *Search) searchLevel(ctx context.Context, rep *reporter, level int, keys [4]uint32) error {
	if level == len(levels) {
		return s.finish(rep, keys)
	}

	lv := levels[level]
	for c := 0; c < InnerKeySpace; c++ {
		keys[level] = InnerKey(c)
		if !s.consistent(lv.inner, &keys) {
			continue
		}
		innerKey := keys[level]
		for o := 0; o < OuterKeySpace; o++ {
			if o&0x3ff == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			keys[level] = OuterKey(o, innerKey)
			if !s.consistent(lv.outer, &keys) {
				continue
			}
			if err := s.searchLevel(ctx, rep, level+1, keys); err != nil {
				return err
			}
		}
	}
	return nil
}

// consistent reports whether f predicts the same parity bit for every
// pair in the corpus. The parity itself does not matter, only the
// agreement; the first disagreeing pair ends the scan.
func (s *Search) consistent(f approx, keys *[4]uint32) bool {
	want := f(s.Corpus.Pair(0), keys)
	for i := 1; i < s.Corpus.Len(); i++ {
		if f(s.Corpus.Pair(i), keys) != want {
			return false
		}
	}
	return true
}

// finish derives K4/K5 for a surviving K0..K3 prefix and accepts the
// tuple if it trial-decrypts the whole corpus.
func (s *Search) finish(rep *reporter, keys [4]uint32) error {
	key := DeriveTail(s.Corpus.Pair(0), keys)
	if !s.validate(key) {
		return nil
	}
	return rep.accept(key)
}

// DeriveTail completes a four-subkey prefix into a full key using one
// pair: with K0..K3 fixed, the FEAL-4 cipher equations give K4 and K5
// directly from the round outputs.
func DeriveTail(p corpus.Pair, k [4]uint32) feal.Key {
	y0 := feal.F(p.PL ^ p.PR ^ k[0])
	y1 := feal.F(p.PL ^ y0 ^ k[1])
	y2 := feal.F(p.PL ^ p.PR ^ y1 ^ k[2])
	y3 := feal.F(p.PL ^ y0 ^ y2 ^ k[3])

	k4 := p.PL ^ p.PR ^ y1 ^ y3 ^ p.CL
	k5 := p.PR ^ y1 ^ y3 ^ y0 ^ y2 ^ p.CR
	return feal.Key{k[0], k[1], k[2], k[3], k4, k5}
}

// validate trial-decrypts every ciphertext and compares against the
// stored plaintext.
func (s *Search) validate(key feal.Key) bool {
	for i := 0; i < s.Corpus.Len(); i++ {
		p := s.Corpus.Pair(i)
		block := p.CipherBlock()
		feal.Decrypt(block[:], key)
		if block != p.PlainBlock() {
			return false
		}
	}
	return true
}

// reporter serializes accepted tuples across workers and enforces the
// cap. It is the only shared mutable state in the search.
type reporter struct {
	mu    sync.Mutex
	found int
	max   int
	emit  func(feal.Key)
}

func (r *reporter) accept(key feal.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.found >= r.max {
		return errKeyCap
	}
	if r.emit != nil {
		r.emit(key)
	}
	r.found++
	if r.found >= r.max {
		return errKeyCap
	}
	return nil
}

func (r *reporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.found
}
