// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package diva

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testRemainderSize = uint(8)

func mkInfix(quotient, remainder uint64) uint64 {
	return joinInfix(quotient, remainder, testRemainderSize)
}

func TestNewInfixStoreEmpty(t *testing.T) {
	s := newInfixStore(nil, testRemainderSize)
	assert.Equal(t, 0, s.elemCount)
	assert.False(t, s.pointQuery(mkInfix(5, 5)))
}

func TestNewInfixStoreBuildAndPointQuery(t *testing.T) {
	infixes := []uint64{
		mkInfix(5, 10),
		mkInfix(5, 30),
		mkInfix(7, 1),
		mkInfix(100, 255),
	}
	s := newInfixStore(infixes, testRemainderSize)
	assert.Equal(t, len(infixes), s.elemCount)

	for _, infix := range infixes {
		assert.True(t, s.pointQuery(infix))
	}
	assert.False(t, s.pointQuery(mkInfix(5, 20)))
	assert.False(t, s.pointQuery(mkInfix(6, 0)))
}

func TestInsertIntoMiddleOfRun(t *testing.T) {
	s := newInfixStore([]uint64{mkInfix(100, 10), mkInfix(100, 30)}, testRemainderSize)
	assert.True(t, s.insert(mkInfix(100, 20)))

	assert.Equal(t, uint64(10), s.readSlot(0))
	assert.Equal(t, uint64(20), s.readSlot(1))
	assert.Equal(t, uint64(30), s.readSlot(2))
	assert.True(t, s.isRunend(2))
	assert.False(t, s.isRunend(1))
	assert.False(t, s.isRunend(0))
}

func TestInsertAtEndOfRun(t *testing.T) {
	s := newInfixStore([]uint64{mkInfix(100, 10), mkInfix(100, 20)}, testRemainderSize)
	assert.True(t, s.insert(mkInfix(100, 30)))

	assert.Equal(t, uint64(10), s.readSlot(0))
	assert.Equal(t, uint64(20), s.readSlot(1))
	assert.Equal(t, uint64(30), s.readSlot(2))
	assert.True(t, s.isRunend(2))
	assert.False(t, s.isRunend(1))
}

func TestInsertAtBeginningOfRun(t *testing.T) {
	s := newInfixStore([]uint64{mkInfix(100, 20), mkInfix(100, 30)}, testRemainderSize)
	assert.True(t, s.insert(mkInfix(100, 10)))

	assert.Equal(t, uint64(10), s.readSlot(0))
	assert.Equal(t, uint64(20), s.readSlot(1))
	assert.Equal(t, uint64(30), s.readSlot(2))
	assert.True(t, s.isRunend(2))
}

func TestInsertNewQuotientBetweenExistingRuns(t *testing.T) {
	s := newInfixStore([]uint64{mkInfix(10, 1), mkInfix(50, 1)}, testRemainderSize)
	assert.True(t, s.insert(mkInfix(30, 9)))

	assert.True(t, s.isOccupied(30))
	start, end, ok := s.runBounds(30)
	assert.True(t, ok)
	assert.Equal(t, start, end)
	assert.Equal(t, uint64(9), s.readSlot(start))

	// the runs for 10 and 50 must still be intact and ordered.
	assert.True(t, s.pointQuery(mkInfix(10, 1)))
	assert.True(t, s.pointQuery(mkInfix(50, 1)))
}

func TestInsertNewQuotientAtStart(t *testing.T) {
	s := newInfixStore([]uint64{mkInfix(50, 1)}, testRemainderSize)
	assert.True(t, s.insert(mkInfix(10, 5)))
	assert.Equal(t, uint64(5), s.readSlot(0))
	assert.Equal(t, uint64(1), s.readSlot(1))
}

func TestInsertDuplicateIsNoop(t *testing.T) {
	s := newInfixStore([]uint64{mkInfix(5, 7)}, testRemainderSize)
	before := s.elemCount
	assert.True(t, s.insert(mkInfix(5, 7)))
	assert.Equal(t, before, s.elemCount)
}

func TestInsertTripleRunDoesNotDoubleMarkRunend(t *testing.T) {
	// Regression test: inserting exactly at the old run end (not
	// appending past it) must not leave two runend bits set for the
	// same quotient's run.
	s := newInfixStore([]uint64{mkInfix(100, 10), mkInfix(100, 20), mkInfix(100, 40)}, testRemainderSize)
	assert.True(t, s.insert(mkInfix(100, 30)))

	start, end, ok := s.runBounds(100)
	assert.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 3, end)

	runendCount := 0
	for i := 0; i <= end; i++ {
		if s.isRunend(i) {
			runendCount++
		}
	}
	assert.Equal(t, 1, runendCount, "exactly one runend bit must remain for a single occupied quotient")

	assert.Equal(t, []uint64{10, 20, 30, 40}, []uint64{s.readSlot(0), s.readSlot(1), s.readSlot(2), s.readSlot(3)})
}

func TestDeleteOnlyElementOfRunClearsOccupied(t *testing.T) {
	s := newInfixStore([]uint64{mkInfix(5, 1), mkInfix(9, 1)}, testRemainderSize)
	assert.True(t, s.delete(mkInfix(5, 1)))
	assert.False(t, s.isOccupied(5))
	assert.True(t, s.isOccupied(9))
	assert.False(t, s.pointQuery(mkInfix(5, 1)))
	assert.True(t, s.pointQuery(mkInfix(9, 1)))
}

func TestDeleteLastElementOfRunMovesRunend(t *testing.T) {
	s := newInfixStore([]uint64{mkInfix(5, 1), mkInfix(5, 2), mkInfix(5, 3)}, testRemainderSize)
	assert.True(t, s.delete(mkInfix(5, 3)))

	start, end, ok := s.runBounds(5)
	assert.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, end)
	assert.True(t, s.pointQuery(mkInfix(5, 1)))
	assert.True(t, s.pointQuery(mkInfix(5, 2)))
	assert.False(t, s.pointQuery(mkInfix(5, 3)))
}

func TestDeleteMiddleElementOfRunShiftsLeft(t *testing.T) {
	s := newInfixStore([]uint64{mkInfix(5, 1), mkInfix(5, 2), mkInfix(5, 3)}, testRemainderSize)
	assert.True(t, s.delete(mkInfix(5, 2)))

	assert.True(t, s.pointQuery(mkInfix(5, 1)))
	assert.False(t, s.pointQuery(mkInfix(5, 2)))
	assert.True(t, s.pointQuery(mkInfix(5, 3)))
	_, end, ok := s.runBounds(5)
	assert.True(t, ok)
	assert.Equal(t, 1, end)
}

func TestDeleteAbsentReturnsFalse(t *testing.T) {
	s := newInfixStore([]uint64{mkInfix(5, 1)}, testRemainderSize)
	assert.False(t, s.delete(mkInfix(5, 9)))
	assert.False(t, s.delete(mkInfix(6, 0)))
}

func TestInsertForcesResizeUp(t *testing.T) {
	s := newInfixStore(nil, testRemainderSize)
	n := scaledSizes[0] + 1
	for i := 0; i < n; i++ {
		q := uint64(i % (1 << defaultQuotientBits))
		r := uint64(i) & 0xff
		s.insert(mkInfix(q, r))
	}
	assert.Greater(t, s.numSlots(), scaledSizes[0])
}

func TestDeleteTriggersResizeDown(t *testing.T) {
	infixes := make([]uint64, 0, scaledSizes[5])
	for i := 0; i < scaledSizes[5]; i++ {
		q := uint64(i % (1 << defaultQuotientBits))
		r := uint64(i) & 0xff
		infixes = append(infixes, mkInfix(q, r))
	}
	sort.Slice(infixes, func(i, j int) bool { return infixes[i] < infixes[j] })
	s := newInfixStore(infixes, testRemainderSize)
	startGrade := s.sizeGrade

	for i := 0; i < len(infixes)*9/10; i++ {
		s.delete(infixes[i])
	}
	assert.Less(t, s.sizeGrade, startGrade)
}

func TestRangeQuerySameQuotient(t *testing.T) {
	s := newInfixStore([]uint64{mkInfix(5, 10), mkInfix(5, 50), mkInfix(5, 90)}, testRemainderSize)
	assert.True(t, s.rangeQuery(mkInfix(5, 40), mkInfix(5, 60)))
	assert.False(t, s.rangeQuery(mkInfix(5, 60), mkInfix(5, 80)))
}

func TestRangeQueryAcrossQuotients(t *testing.T) {
	s := newInfixStore([]uint64{mkInfix(5, 200), mkInfix(50, 10)}, testRemainderSize)
	// no quotient strictly between 5 and 50 is occupied, so the hit comes
	// from quotient 5's run holding a remainder >= the low bound; a range
	// whose endpoint and interior quotients are all unoccupied is a miss.
	assert.True(t, s.rangeQuery(mkInfix(5, 0), mkInfix(50, 255)))
	assert.False(t, s.rangeQuery(mkInfix(6, 0), mkInfix(49, 255)))
}

func TestRangeQueryLowAndHighEdges(t *testing.T) {
	s := newInfixStore([]uint64{mkInfix(5, 200)}, testRemainderSize)
	assert.True(t, s.rangeQuery(mkInfix(5, 150), mkInfix(6, 0)))
	assert.True(t, s.rangeQuery(mkInfix(4, 0), mkInfix(5, 210)))
	assert.False(t, s.rangeQuery(mkInfix(4, 0), mkInfix(5, 100)))
}

func TestInsertDeleteRandomizedRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1234))
	s := newInfixStore(nil, testRemainderSize)

	present := map[uint64]bool{}
	for i := 0; i < 2000; i++ {
		q := uint64(r.Intn(1 << defaultQuotientBits))
		rem := uint64(r.Intn(256))
		infix := mkInfix(q, rem)

		if r.Intn(3) == 0 && len(present) > 0 {
			for k := range present {
				s.delete(k)
				delete(present, k)
				break
			}
			continue
		}

		s.insert(infix)
		present[infix] = true
	}

	for infix := range present {
		assert.True(t, s.pointQuery(infix), "expected infix %d to be present", infix)
	}
}
