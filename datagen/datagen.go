// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

// Package datagen generates synthetic u64 key sets for exercising and
// benchmarking a Diva filter: a uniform spread and a "smooth"
// distribution that clusters keys so that brackets see realistically
// uneven density instead of a perfectly even one.
package datagen

import (
	murmur "github.com/aviddiviner/go-murmur"
)

// Uniform generates n pseudo-random, distinct u64 keys spread evenly
// over the full key space, seeded deterministically from seed so runs
// are reproducible.
func Uniform(n int, seed uint32) []uint64 {
	out := make([]uint64, 0, n)
	seen := make(map[uint64]struct{}, n)
	var buf [8]byte
	counter := uint64(0)
	for len(out) < n {
		putUint64(buf[:], counter)
		h := murmur.MurmurHash64A(buf[:], seed)
		counter++
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

// Smooth generates n distinct u64 keys clustered into a smaller number
// of dense neighborhoods, rather than spread uniformly: each key is a
// cluster center (derived by hashing a low-cardinality cluster index)
// jittered by a small hashed offset. This approximates a real-world
// key distribution where brackets see uneven density instead of a
// perfectly even one.
func Smooth(n int, seed uint32) []uint64 {
	if n <= 0 {
		return nil
	}

	const keysPerCluster = 32
	clusterCount := n/keysPerCluster + 1

	out := make([]uint64, 0, n)
	seen := make(map[uint64]struct{}, n)
	var buf [8]byte

	cluster := uint64(0)
	jitter := uint64(0)
	for len(out) < n {
		clusterIdx := cluster % uint64(clusterCount)
		putUint64(buf[:], clusterIdx)
		center := murmur.MurmurHash64A(buf[:], seed) >> 20 << 20 // clear low 20 bits: a wide, coarse neighborhood

		putUint64(buf[:], jitter)
		offset := murmur.MurmurHash64A(buf[:], seed+1) & (1<<20 - 1)

		key := center + offset
		jitter++
		if jitter%keysPerCluster == 0 {
			cluster++
		}

		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func putUint64(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * uint(i)))
	}
}
