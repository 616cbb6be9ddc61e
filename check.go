// Copyright (C) 2018. See AUTHORS.

package lfsr

import (
	"errors"
	"fmt"
)

// ErrIncorrectPeriod is returned by the checks when the generator does not
// cycle through exactly Period values. It means the taps or the register
// width are wrong and is not recoverable.
var ErrIncorrectPeriod = errors.New("lfsr: incorrect period")

// MeasurePeriod advances g once to capture a first value and then counts
// the advances until that value comes back. It gives up after Period+1
// steps, so a generator stuck in a cycle that never revisits its first
// value reports Period+1.
func MeasurePeriod(g *Generator) int {
	first := g.Next()
	period := 0
	for period <= Period {
		period++
		if g.Next() == first {
			break
		}
	}
	return period
}

// Check constructs a generator with NewRandom and verifies it has a period
// of exactly Period. A random seed of zero fails the check.
func Check() error {
	return CheckSource(runtimeSource{})
}

// CheckSource is Check with the seed drawn from src.
func CheckSource(src Source) error {
	return CheckSeed(uint16(src.Uint32()))
}

// CheckSeed is Check with an explicit seed.
func CheckSeed(seed uint16) error {
	if period := MeasurePeriod(New(seed)); period != Period {
		return fmt.Errorf("%w: seed:%d period:%d want:%d",
			ErrIncorrectPeriod, seed, period, Period)
	}
	return nil
}
