// Copyright (C) 2018. See AUTHORS.

package lfsr

// Coin turns generator output into single bits, advancing the generator
// once per 16 tosses.
type Coin struct {
	gen  *Generator
	val  uint16
	bits int
}

// NewCoin returns a Coin that draws from g. The coin shares g's state.
func NewCoin(g *Generator) *Coin {
	return &Coin{gen: g}
}

// Toss returns the next bit as a bool.
func (c *Coin) Toss() (val bool) {
	if c.bits == 0 {
		c.val = c.gen.Next()
		c.bits = 16
	}
	c.bits--
	val = c.val&1 > 0
	c.val >>= 1
	return val
}
