// Copyright (C) 2018. See AUTHORS.

package lfsr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource hands out the same value forever.
type fixedSource uint32

func (f fixedSource) Uint32() uint32 { return uint32(f) }

func TestNext_SeedOne(t *testing.T) {
	g := New(1)
	assert.Equal(t, uint16(0x8000), g.Next())
	assert.Equal(t, uint16(0x4000), g.Next())
	assert.Equal(t, uint16(0x4000), g.State())
}

func TestNext_Taps(t *testing.T) {
	// bits 0 and 2 cancel, so the feedback bit is zero.
	g := New(0x0005)
	assert.Equal(t, uint16(0x0002), g.Next())

	// bits 3 and 5 cancel, bit 15 is just shifted down.
	g = New(0x8028)
	assert.Equal(t, uint16(0x4014), g.Next())

	// only bit 5 is set, so the feedback bit is one.
	g = New(0x0020)
	assert.Equal(t, uint16(0x8010), g.Next())
}

func TestNext_ZeroSeed(t *testing.T) {
	g := New(0)
	for i := 0; i < 1000; i++ {
		require.Equal(t, uint16(0), g.Next())
	}

	var zero Generator
	assert.Equal(t, uint16(0), zero.Next())
}

func TestNext_MaximalPeriod(t *testing.T) {
	for _, seed := range []uint16{1, 2, 0xace1, 0x8000, 0xffff} {
		g := New(seed)
		first := g.Next()
		for i := 1; i < Period; i++ {
			require.NotEqual(t, first, g.Next(), "seed:%d step:%d", seed, i)
		}
		require.Equal(t, first, g.Next(), "seed:%d", seed)
	}
}

func TestNext_Bijection(t *testing.T) {
	var seen [1 << 16]bool
	g := New(0xace1)
	for i := 0; i < Period; i++ {
		v := g.Next()
		require.False(t, seen[v], "value %d repeated at step %d", v, i)
		seen[v] = true
	}
	assert.False(t, seen[0])
	for v := 1; v < len(seen); v++ {
		require.True(t, seen[v], "value %d never produced", v)
	}
}

func TestNext_Deterministic(t *testing.T) {
	a, b := New(12345), New(12345)
	for i := 0; i < 10000; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestNewFromSource(t *testing.T) {
	g := NewFromSource(fixedSource(0xdead0001))
	assert.Equal(t, uint16(1), g.State())
	assert.Equal(t, uint16(0x8000), g.Next())

	g = NewFromSource(fixedSource(0x10000))
	assert.Equal(t, uint16(0), g.State())
}

func TestNonZeroSeed(t *testing.T) {
	src := &sliceSource{vals: []uint32{0, 0x10000, 0x20007}}
	assert.Equal(t, uint16(7), NonZeroSeed(src))
	assert.Empty(t, src.vals)
}

type sliceSource struct{ vals []uint32 }

func (s *sliceSource) Uint32() (v uint32) {
	v, s.vals = s.vals[0], s.vals[1:]
	return v
}

func TestAll_Length(t *testing.T) {
	g := New(1)
	count := 0
	for range g.All() {
		count++
	}
	assert.Equal(t, Period, count)
	// a full period brings the register back to its seed.
	assert.Equal(t, uint16(1), g.State())
}

func TestAll_SharesState(t *testing.T) {
	g, ref := New(99), New(99)
	g.Next()
	ref.Next()

	for v := range g.All() {
		require.Equal(t, ref.Next(), v)
		if v == 0x8000 {
			break
		}
	}
	assert.Equal(t, ref.Next(), g.Next())
}

func TestAll_NotRestartable(t *testing.T) {
	g, ref := New(7), New(7)
	stop := 0
	for range g.All() {
		if stop++; stop == 10 {
			break
		}
	}
	for i := 0; i < 10; i++ {
		ref.Next()
	}

	// the second enumeration continues the permutation.
	for v := range g.All() {
		assert.Equal(t, ref.Next(), v)
		break
	}
}

func TestFill(t *testing.T) {
	g, ref := New(42), New(42)
	buf := make([]uint16, 64)
	require.Equal(t, 64, g.Fill(buf))
	for _, v := range buf {
		require.Equal(t, ref.Next(), v)
	}
	assert.Equal(t, 0, g.Fill(nil))
}

func TestSeed(t *testing.T) {
	g := New(1)
	g.Next()
	g.Seed(1)
	assert.Equal(t, uint16(0x8000), g.Next())
}

func TestBinary(t *testing.T) {
	g := New(0xbeef)
	data, err := g.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xbe, 0xef}, data)

	var h Generator
	require.NoError(t, h.UnmarshalBinary(data))
	assert.Equal(t, g.Next(), h.Next())

	assert.Error(t, h.UnmarshalBinary([]byte{1}))
	assert.Error(t, h.UnmarshalBinary([]byte{1, 2, 3}))
}

//
// benchmarks
//

func BenchmarkNext(b *testing.B) {
	g := New(1)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		g.Next()
	}
}

func BenchmarkAll(b *testing.B) {
	g := New(1)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for range g.All() {
		}
	}
}
