// Copyright (c) Facebook, Inc. and its affiliates. All Rights Reserved

package diva

import (
	"fmt"
	"math"
)

// defaultTargetBracket is the number of keys per bracket used when a
// Config leaves TargetBracket unset.
const defaultTargetBracket = 1024

// defaultFPR is the per-bracket false-positive rate target used when a
// Config leaves FPR unset.
const defaultFPR = 0.01

// Config controls how Build lays out the boundary index and sizes each
// bracket's Infix Store.
type Config struct {
	// TargetBracket is the approximate number of keys per sample
	// interval; smaller values grow the boundary index and shrink each
	// Infix Store, larger values do the reverse.
	TargetBracket int
	// FPR is the maximum tolerable per-bracket false-positive rate.
	// RemainderBits is derived from it unless RemainderBits is set
	// explicitly.
	FPR float64
	// RemainderBits, when non-zero, overrides the FPR-derived value.
	RemainderBits uint
	// QuotientBits is Q, the number of quotient bits carved out of
	// every bracket's discriminating suffix.
	QuotientBits uint
}

// withDefaults returns a copy of c with zero fields filled in.
func (c Config) withDefaults() Config {
	if c.TargetBracket <= 0 {
		c.TargetBracket = defaultTargetBracket
	}
	if c.FPR <= 0 {
		c.FPR = defaultFPR
	}
	if c.QuotientBits == 0 {
		c.QuotientBits = defaultQuotientBits
	}
	if c.RemainderBits == 0 {
		c.RemainderBits = remainderBitsForFPR(c.FPR)
	}
	return c
}

// remainderBitsForFPR derives R from a target per-bracket false-positive
// rate. A point query against an occupied quotient returns a false
// positive only when a stored R-bit remainder collides with the query's
// remainder; remainders are the low bits of a discriminating suffix and
// behave as uniform over [0, 2^R), giving collision probability 2^-R per
// occupied quotient. R = ceil(log2(1/epsilon)) is the smallest width
// that keeps that probability at or under epsilon, satisfying the
// per-bracket FPR requirement with no wasted bits.
func remainderBitsForFPR(fpr float64) uint {
	if fpr <= 0 || fpr >= 1 {
		return defaultQuotientBits * 2
	}
	r := math.Ceil(math.Log2(1 / fpr))
	if r < 1 {
		r = 1
	}
	return uint(r)
}

// BytesPerBracket estimates the steady-state memory footprint of one
// Infix Store at its neutral size_grade, for capacity planning.
func (c Config) BytesPerBracket() uint {
	cfg := c.withDefaults()
	numSlots := targetSize
	bitsTotal := 64 /* popcount header */ + targetSize /* occupieds */ +
		numSlots /* runends */ + numSlots*int(cfg.RemainderBits)
	return uint(wordsForBits(bitsTotal)) * 8
}

// ExplainIndent prints an indented summary of the resolved configuration.
func (c Config) ExplainIndent(indent string) {
	cfg := c.withDefaults()
	fmt.Printf("%s%6d keys targeted per bracket\n", indent, cfg.TargetBracket)
	fmt.Printf("%s%6.4f target per-bracket false-positive rate\n", indent, cfg.FPR)
	fmt.Printf("%s%6d bits of quotient per bracket (%d buckets)\n", indent, cfg.QuotientBits, 1<<cfg.QuotientBits)
	fmt.Printf("%s%6d bits of remainder per slot\n", indent, cfg.RemainderBits)
	fmt.Printf("%s%6s estimated size per bracket at neutral grade\n", indent, humanBytes(cfg.BytesPerBracket()))
}

// Explain prints a summary of the resolved configuration to stdout.
func (c Config) Explain() {
	c.ExplainIndent("")
}

func humanBytes(bytes uint) string {
	v := float64(bytes)
	suffix := "bytes"
	if v > 1024 {
		v /= 1024.
		suffix = "KB"
		if v > 1024. {
			suffix = "MB"
			v /= 1024.0
			if v > 1024. {
				suffix = "GB"
				v /= 1024.
			}
		}
	}
	if v < 10 {
		return fmt.Sprintf("%0.2f %s", v, suffix)
	} else if v < 100 {
		return fmt.Sprintf("%0.1f %s", v, suffix)
	}
	return fmt.Sprintf("%0.0f %s", v, suffix)
}
