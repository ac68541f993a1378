// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package diva

import "sort"

// boundaryIndex locates the bracket containing a query key. Per spec, a
// plain binary search over the sorted sample array is recommended over
// the x-fast/y-fast trie sketch found in the source material: the
// sample array is small (about len(keys)/targetBracket), so
// O(log n_samples) is as good in practice as O(log log U) and avoids
// the cyclic sibling-reference ownership problem of a trie entirely.
type boundaryIndex struct {
	samples []uint64
}

func newBoundaryIndex(samples []uint64) boundaryIndex {
	return boundaryIndex{samples: samples}
}

// locate returns the bracket (p, s, storeIdx) such that
// p <= k <= s, p = samples[storeIdx], s = samples[storeIdx+1]. ok is
// false when k falls outside [samples[0], samples[len-1]].
func (b boundaryIndex) locate(k uint64) (p, s uint64, storeIdx int, ok bool) {
	n := len(b.samples)
	if n < 2 || k < b.samples[0] || k > b.samples[n-1] {
		return 0, 0, 0, false
	}

	// sort.Search finds the first sample strictly greater than k; the
	// bracket's upper bound is that sample (or the last sample, if k
	// equals it exactly).
	i := sort.Search(n, func(i int) bool { return b.samples[i] > k })
	if i == n {
		// k == samples[n-1]; the last bracket covers it.
		i = n - 1
	}
	if i == 0 {
		// k == samples[0]; the first bracket covers it.
		i = 1
	}
	storeIdx = i - 1
	return b.samples[storeIdx], b.samples[i], storeIdx, true
}

// isSample reports whether k is exactly one of the sample keys.
func (b boundaryIndex) isSample(k uint64) bool {
	n := len(b.samples)
	i := sort.Search(n, func(i int) bool { return b.samples[i] >= k })
	return i < n && b.samples[i] == k
}

// sampleCount reports the number of sample keys.
func (b boundaryIndex) sampleCount() int {
	return len(b.samples)
}

// min and max report the lowest and highest sample keys. Callers must
// ensure sampleCount() > 0.
func (b boundaryIndex) min() uint64 { return b.samples[0] }
func (b boundaryIndex) max() uint64 { return b.samples[len(b.samples)-1] }
