// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

// Package refs wraps reference filter implementations used to
// cross-check DIVA's observed false-positive rate and timings in
// benchmarks and the diva CLI's bench subcommand. It is a comparison
// collaborator, not part of DIVA's own query path.
package refs

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bloom/v3"
)

// BloomRef is a standard Bloom filter over u64 keys, used as the
// external baseline for DIVA's point-query false-positive rate.
type BloomRef struct {
	filter *bloom.BloomFilter
	n      uint
}

// NewBloomRef builds a Bloom filter sized for n expected keys at the
// given target false-positive rate.
func NewBloomRef(n uint, fpr float64) *BloomRef {
	return &BloomRef{
		filter: bloom.NewWithEstimates(n, fpr),
		n:      n,
	}
}

// Add inserts a key.
func (b *BloomRef) Add(key uint64) {
	b.filter.Add(encodeKey(key))
}

// Test reports whether key may be a member, with the same
// no-false-negative / bounded-false-positive contract as a quotient
// filter point query.
func (b *BloomRef) Test(key uint64) bool {
	return b.filter.Test(encodeKey(key))
}

// ApproximatedSize reports the approximate number of items inserted,
// as estimated from the filter's bit population.
func (b *BloomRef) ApproximatedSize() uint32 {
	return b.filter.ApproximatedSize()
}

func encodeKey(key uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], key)
	return buf[:]
}
