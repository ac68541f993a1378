// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package diva

import "math/bits"

// Bit vector primitives shared by the Infix Store. All functions operate
// on a slice view into a larger, single contiguous word array (see the
// Memory layout note on infixStore) rather than an owned bitset type, so
// that occupieds/runends/slots can each be addressed as sub-slices of one
// allocation without copying.

// wordBits is the number of bits in a uint64 word.
const wordBits = 64

// bmSet sets the bit at position pos.
func bmSet(data []uint64, pos int) {
	data[pos/wordBits] |= 1 << uint(pos%wordBits)
}

// bmClear clears the bit at position pos.
func bmClear(data []uint64, pos int) {
	data[pos/wordBits] &^= 1 << uint(pos%wordBits)
}

// bmGet reports whether the bit at position pos is set.
func bmGet(data []uint64, pos int) bool {
	return data[pos/wordBits]&(1<<uint(pos%wordBits)) != 0
}

// bmSetTo sets or clears the bit at pos according to on.
func bmSetTo(data []uint64, pos int, on bool) {
	if on {
		bmSet(data, pos)
	} else {
		bmClear(data, pos)
	}
}

// rank returns the number of set bits in data over positions [0, pos).
func rank(data []uint64, pos int) int {
	wordIndex := pos / wordBits
	bitIndex := pos % wordBits

	count := 0
	for i := 0; i < wordIndex; i++ {
		count += bits.OnesCount64(data[i])
	}
	if bitIndex > 0 {
		mask := uint64(1)<<uint(bitIndex) - 1
		count += bits.OnesCount64(data[wordIndex] & mask)
	}
	return count
}

// selectBit returns the position of the (r+1)-th set bit in data, or -1 if
// fewer than r+1 bits are set.
func selectBit(data []uint64, r int) int {
	target := r + 1
	count := 0
	for wordIndex, word := range data {
		ones := bits.OnesCount64(word)
		if count+ones >= target {
			remaining := target - count
			pos := selectInWord(word, remaining-1)
			if pos < 0 {
				return -1
			}
			return wordIndex*wordBits + pos
		}
		count += ones
	}
	return -1
}

// selectInWord returns the bit position of the (r+1)-th set bit within a
// single word, or -1 if it has no such bit. Clears the lowest set bit on
// each iteration rather than scanning every position.
func selectInWord(word uint64, r int) int {
	for i := 0; i < r; i++ {
		word &= word - 1
		if word == 0 {
			return -1
		}
	}
	if word == 0 {
		return -1
	}
	return bits.TrailingZeros64(word)
}

// rankCached is rank, accelerated with a popcount cached at halfPos.
func rankCached(data []uint64, pos, halfPos, cachedPopcount int) int {
	if pos <= halfPos {
		return rank(data, pos)
	}
	wordOffset := halfPos / wordBits
	remaining := rank(data[wordOffset:], pos-halfPos)
	return cachedPopcount + remaining
}

// selectCached is selectBit, accelerated with a popcount cached at halfPos.
func selectCached(data []uint64, r, halfPos, cachedPopcount int) int {
	if r < cachedPopcount {
		return selectBit(data, r)
	}
	wordOffset := halfPos / wordBits
	remainingRank := r - cachedPopcount
	pos := selectBit(data[wordOffset:], remainingRank)
	if pos < 0 {
		return -1
	}
	return pos + wordOffset*wordBits
}

// hasBitsInRange reports whether any bit in [lo, hi) is set.
func hasBitsInRange(data []uint64, lo, hi int) bool {
	if lo >= hi {
		return false
	}

	startWord := lo / wordBits
	endWord := (hi - 1) / wordBits

	if startWord == endWord {
		startBit := lo % wordBits
		endBit := hi % wordBits
		var mask uint64
		if endBit == 0 {
			mask = ^(uint64(1)<<uint(startBit) - 1)
		} else {
			mask = (uint64(1)<<uint(endBit) - 1) &^ (uint64(1)<<uint(startBit) - 1)
		}
		if startWord < len(data) {
			return data[startWord]&mask != 0
		}
		return false
	}

	if startWord < len(data) {
		startBit := lo % wordBits
		startMask := ^(uint64(1)<<uint(startBit) - 1)
		if data[startWord]&startMask != 0 {
			return true
		}
	}

	last := endWord
	if last > len(data) {
		last = len(data)
	}
	for w := startWord + 1; w < last; w++ {
		if data[w] != 0 {
			return true
		}
	}

	if endWord < len(data) {
		endBit := hi % wordBits
		var endMask uint64
		if endBit == 0 {
			endMask = ^uint64(0)
		} else {
			endMask = uint64(1)<<uint(endBit) - 1
		}
		if data[endWord]&endMask != 0 {
			return true
		}
	}

	return false
}

// wordsForBits returns the number of uint64 words needed to hold n bits.
func wordsForBits(n int) int {
	return (n + wordBits - 1) / wordBits
}
