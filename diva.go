// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

// Package diva implements DIVA, an approximate range filter over u64
// keys. DIVA answers "could any key in [lo, hi] be a member of the
// indexed set?" with no false negatives and a bounded false-positive
// rate, using a two-level architecture: a sparse boundary index over
// sample keys, and a dense per-bracket Infix Store (a succinct
// rank-and-select quotient filter) between consecutive samples.
package diva

import (
	"fmt"
	"sort"
)

// Diva is a constructed range filter over a fixed key set.
type Diva struct {
	boundary boundaryIndex
	stores   []*infixStore
	config   Config
}

// Len returns the number of keys the filter was built from.
func (d *Diva) Len() int {
	n := d.boundary.sampleCount()
	for _, s := range d.stores {
		n += s.elemCount
	}
	return n
}

// SampleCount reports the number of boundary samples (one more than the
// number of brackets).
func (d *Diva) SampleCount() int {
	return d.boundary.sampleCount()
}

// BracketCount reports the number of Infix Stores.
func (d *Diva) BracketCount() int {
	return len(d.stores)
}

// Build constructs a Diva over keys. keys need not be sorted or unique;
// Build sorts and deduplicates them. Build panics if fewer than two
// distinct keys are supplied, since a single sample cannot bound a
// bracket.
func Build(keys []uint64, cfg Config) *Diva {
	cfg = cfg.withDefaults()

	sorted := append([]uint64(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	sorted = dedupSorted(sorted)

	if len(sorted) < 2 {
		panic(fmt.Sprintf("diva: Build requires at least 2 distinct keys, got %d", len(sorted)))
	}

	samples, stores := buildBrackets(sorted, cfg)

	return &Diva{
		boundary: newBoundaryIndex(samples),
		stores:   stores,
		config:   cfg,
	}
}

// dedupSorted removes adjacent duplicates from an already-sorted slice.
func dedupSorted(sorted []uint64) []uint64 {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, k := range sorted[1:] {
		if k != out[len(out)-1] {
			out = append(out, k)
		}
	}
	return out
}

// buildBrackets picks sample boundaries every cfg.TargetBracket keys and
// builds one Infix Store per bracket from the keys strictly between a
// pair of consecutive samples.
func buildBrackets(sorted []uint64, cfg Config) ([]uint64, []*infixStore) {
	n := len(sorted)

	step := cfg.TargetBracket
	if step < 1 {
		step = 1
	}

	var sampleIdx []int
	for i := 0; i < n; i += step {
		sampleIdx = append(sampleIdx, i)
	}
	if sampleIdx[len(sampleIdx)-1] != n-1 {
		sampleIdx = append(sampleIdx, n-1)
	}
	if len(sampleIdx) < 2 {
		// Every key landed on a single sample slot (a tiny key set);
		// fall back to first/last so at least one bracket exists.
		sampleIdx = []int{0, n - 1}
	}

	samples := make([]uint64, len(sampleIdx))
	for i, idx := range sampleIdx {
		samples[i] = sorted[idx]
	}

	stores := make([]*infixStore, len(samples)-1)
	for b := 0; b < len(samples)-1; b++ {
		lo := sampleIdx[b]
		hi := sampleIdx[b+1]
		p, s := samples[b], samples[b+1]

		interior := sorted[lo+1 : hi]
		infixes := make([]uint64, len(interior))
		for i, k := range interior {
			infixes[i] = extractInfix(k, p, s, cfg.QuotientBits, cfg.RemainderBits)
		}
		stores[b] = newInfixStore(infixes, cfg.RemainderBits)
	}

	return samples, stores
}

// PointQuery reports whether k could be a member of the indexed set.
// A false result is a firm guarantee of absence; a true result may be a
// false positive.
func (d *Diva) PointQuery(k uint64) bool {
	if d.boundary.isSample(k) {
		return true
	}
	p, s, idx, ok := d.boundary.locate(k)
	if !ok {
		return false
	}
	infix := extractInfix(k, p, s, d.config.QuotientBits, d.config.RemainderBits)
	return d.stores[idx].pointQuery(infix)
}

// RangeQuery reports whether any key in [lo, hi] could be a member of
// the indexed set. Requires lo <= hi.
func (d *Diva) RangeQuery(lo, hi uint64) bool {
	if lo > hi {
		panic("diva: RangeQuery requires lo <= hi")
	}

	if d.boundary.sampleCount() == 0 {
		return false
	}
	if hi < d.boundary.min() || lo > d.boundary.max() {
		return false
	}

	_, _, loIdx, loOK := d.boundary.locate(lo)
	_, _, hiIdx, hiOK := d.boundary.locate(hi)

	if !loOK {
		loIdx = 0
	}
	if !hiOK {
		hiIdx = len(d.stores) - 1
	}

	for idx := loIdx; idx <= hiIdx; idx++ {
		p := d.boundary.samples[idx]
		s := d.boundary.samples[idx+1]

		if p >= lo && p <= hi {
			return true
		}
		if s >= lo && s <= hi {
			return true
		}

		// Neither endpoint sample is itself in range, so the query
		// interval is strictly interior to (p, s); clamp to the
		// bracket and check its store.
		rangeLo := lo
		if rangeLo < p {
			rangeLo = p
		}
		rangeHi := hi
		if rangeHi > s {
			rangeHi = s
		}
		infixLo := extractInfix(rangeLo, p, s, d.config.QuotientBits, d.config.RemainderBits)
		infixHi := extractInfix(rangeHi, p, s, d.config.QuotientBits, d.config.RemainderBits)
		if d.stores[idx].rangeQuery(infixLo, infixHi) {
			return true
		}
	}
	return false
}

// InsertInBracket adds k to the bracket it already falls within. It
// panics with an OutOfBoundsInsertion-style message if k lies outside
// every bracket (callers must Build with a key set whose sample span
// covers future insertions). It returns false if the bracket's Infix
// Store is already saturated at maximum size_grade.
func (d *Diva) InsertInBracket(k uint64) bool {
	p, s, idx, ok := d.boundary.locate(k)
	if !ok {
		panic(fmt.Sprintf("diva: attempt to insert out-of-bounds key %d (samples span [%d, %d])",
			k, d.boundary.min(), d.boundary.max()))
	}
	infix := extractInfix(k, p, s, d.config.QuotientBits, d.config.RemainderBits)
	return d.stores[idx].insert(infix)
}

// Delete removes k from its bracket. It returns false if k was not
// present (NotFound), including when k lies outside every bracket.
func (d *Diva) Delete(k uint64) bool {
	p, s, idx, ok := d.boundary.locate(k)
	if !ok {
		return false
	}
	infix := extractInfix(k, p, s, d.config.QuotientBits, d.config.RemainderBits)
	return d.stores[idx].delete(infix)
}

// Explain prints a summary of the filter's layout: key/bracket/sample
// counts followed by the resolved configuration.
func (d *Diva) Explain() {
	fmt.Printf("diva filter: %d keys across %d brackets (%d samples)\n", d.Len(), d.BracketCount(), d.SampleCount())
	d.config.Explain()
}
