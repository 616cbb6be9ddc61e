// Copyright (C) 2015 Space Monkey, Inc.

package lfsr

// pcgMul is the multiplier of the underlying 64 bit LCG step.
const pcgMul = 6364136223846793005

// PCG is a permuted congruential generator from pcg-random.org. It satisfies
// Source and is used to derive reproducible seeds for generators. The zero
// value is the same as NewPCG(0, 0).
type PCG struct {
	state uint64
	inc   uint64
}

// NewPCG constructs a PCG with the given state and stream. Different
// streams give unrelated sequences for the same state.
func NewPCG(state, stream uint64) *PCG {
	p := newPCG(state, stream)
	return &p
}

func newPCG(state, stream uint64) PCG {
	// this code is equiv to initializing a pcg with a 0 state and the updated
	// inc and running
	//
	//    p.Uint32()
	//    p.state += state
	//    p.Uint32()
	//
	// to get the generator started

	inc := stream<<1 | 1
	return PCG{
		state: (inc+state)*pcgMul + inc,
		inc:   inc,
	}
}

// Uint32 returns a random uint32.
func (p *PCG) Uint32() uint32 {
	// the inc is always odd once initialized, so a zero inc means this is the
	// zero value.
	if p.inc == 0 {
		*p = newPCG(0, 0)
	}

	oldstate := p.state
	p.state = oldstate*pcgMul + p.inc

	// apply the output permutation to the old state
	xorshifted := uint32(((oldstate >> 18) ^ oldstate) >> 27)
	rot := uint32(oldstate >> 59)
	return xorshifted>>rot | (xorshifted << ((-rot) & 31))
}

// Intn returns an int uniformly in [0, n).
func (p *PCG) Intn(n int) int {
	return fastMod(p.Uint32(), n)
}

// fastMod computes n % m assuming that n is a random number in the full
// uint32 range.
func fastMod(n uint32, m int) int {
	return int((uint64(n) * uint64(m)) >> 32)
}
