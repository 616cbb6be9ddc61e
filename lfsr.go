// Copyright (C) 2018. See AUTHORS.

// Package lfsr implements a 16 bit Fibonacci linear feedback shift register
// that cycles through every non-zero 16 bit value before repeating.
//
// It is not a cryptographically secure generator. It produces exactly one
// sequence shape: width 16, taps at bits 0, 2, 3 and 5, period 65535.
package lfsr

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
)

// Period is the number of values the generator produces before it repeats.
const Period = math.MaxUint16

// Source supplies seeds for generators constructed without an explicit one.
// Only the low 16 bits of each value are used.
type Source interface {
	Uint32() uint32
}

// runtimeSource reads from the process wide math/rand/v2 generator.
type runtimeSource struct{}

func (runtimeSource) Uint32() uint32 { return rand.Uint32() }

// RuntimeSource returns the Source used by NewRandom.
func RuntimeSource() Source { return runtimeSource{} }

// Generator is a 16 bit maximal length LFSR. The zero value is a generator
// seeded with zero, which is a fixed point: it produces zero forever.
//
// A Generator is not safe for concurrent use.
type Generator struct {
	lfsr uint16
}

// New returns a generator whose register starts at seed. The seed is not
// validated. A zero seed yields zero forever.
func New(seed uint16) *Generator {
	return &Generator{lfsr: seed}
}

// NewFromSource returns a generator seeded with the low 16 bits of the next
// value from src.
func NewFromSource(src Source) *Generator {
	return New(uint16(src.Uint32()))
}

// NonZeroSeed draws from src until the low 16 bits of a value are non-zero
// and returns them.
func NonZeroSeed(src Source) uint16 {
	for {
		if s := uint16(src.Uint32()); s != 0 {
			return s
		}
	}
}

// NewRandom calls NewFromSource with the math/rand/v2 global source.
func NewRandom() *Generator {
	return NewFromSource(runtimeSource{})
}

// Next advances the register one step and returns its new value.
func (g *Generator) Next() uint16 {
	l := g.lfsr
	bit := (l ^ l>>2 ^ l>>3 ^ l>>5) & 1
	g.lfsr = l>>1 | bit<<15
	return g.lfsr
}

// All returns a sequence of the next Period values. Ranging over it calls
// Next on g, so it is not restartable: a second range continues from where
// the first one stopped.
func (g *Generator) All() iter.Seq[uint16] {
	return func(yield func(uint16) bool) {
		for i := 0; i < Period; i++ {
			if !yield(g.Next()) {
				return
			}
		}
	}
}

// Fill advances the generator once for every element of dst, storing the
// values in order. It returns len(dst).
func (g *Generator) Fill(dst []uint16) int {
	for i := range dst {
		dst[i] = g.Next()
	}
	return len(dst)
}

// State returns the current register value without advancing.
func (g *Generator) State() uint16 { return g.lfsr }

// Seed sets the register of the generator.
func (g *Generator) Seed(seed uint16) { g.lfsr = seed }

// MarshalBinary encodes the register as two big endian bytes.
func (g *Generator) MarshalBinary() ([]byte, error) {
	return binary.BigEndian.AppendUint16(nil, g.lfsr), nil
}

// UnmarshalBinary restores a register written by MarshalBinary.
func (g *Generator) UnmarshalBinary(data []byte) error {
	if len(data) != 2 {
		return fmt.Errorf("lfsr: bad state length: %d", len(data))
	}
	g.lfsr = binary.BigEndian.Uint16(data)
	return nil
}
