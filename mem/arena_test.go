// Copyright 2026 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package mem

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZeroes(t *testing.T) {
	a := NewArena()
	for i := 0; i < 100; i++ {
		p := New[[64]uint32](a)
		for _, v := range p {
			require.Zero(t, v)
		}
		// Dirty the memory so a later reuse of the slab has something to clear.
		for j := range p {
			p[j] = 0xdeadbeef
		}
	}
	a.Reset()
	p := New[[64]uint32](a)
	for _, v := range p {
		require.Zero(t, v)
	}
}

func TestResetReusesSlabs(t *testing.T) {
	a := NewArena()
	p1 := New[uint64](a)
	a.Reset()
	p2 := New[uint64](a)
	assert.Same(t, p1, p2)
}

func TestOversizedAllocations(t *testing.T) {
	a := NewArena()
	// Requests larger than one slab get a slab sized for them.
	s := NewSlice[[]byte](a, 3*slabSize/2, 3*slabSize/2)
	for i := range s {
		s[i] = 0xff
	}

	type big struct {
		p   *int
		pad [slabSize]byte
	}
	pb := New[big](a)
	require.Nil(t, pb.p)
	pb.pad[slabSize-1] = 1

	a.Reset()
	s2 := NewSlice[[]byte](a, 3*slabSize/2, 3*slabSize/2)
	assert.Same(t, &s[0], &s2[0])
	for i, v := range s2 {
		if v != 0 {
			t.Fatalf("reused slab not zeroed at offset %d", i)
		}
	}
	pb2 := New[big](a)
	require.Zero(t, pb2.pad[slabSize-1])
}

func TestMakeSlice(t *testing.T) {
	a := NewArena()
	s := MakeSlice(a, []int32{1, 2, 3})
	require.Equal(t, []int32{1, 2, 3}, s)

	s = Append(a, s, 4, 5)
	assert.Equal(t, []int32{1, 2, 3, 4, 5}, s)

	s = Grow(a, s, 100)
	assert.GreaterOrEqual(t, cap(s), 105)
	assert.Equal(t, []int32{1, 2, 3, 4, 5}, s)
}

func TestVarargs(t *testing.T) {
	a := NewArena()
	s := Varargs(a, "x", "y")
	assert.Equal(t, []string{"x", "y"}, s)
}

func TestTypedSlabsKeepPointersAlive(t *testing.T) {
	type node struct {
		p *int
		v int
	}
	a := NewArena()
	var nodes []*node
	for i := 0; i < 64; i++ {
		n := New[node](a)
		n.p = new(int)
		*n.p = i
		n.v = i
		nodes = append(nodes, n)
	}
	runtime.GC()
	for i, n := range nodes {
		require.NotNil(t, n.p)
		require.Equal(t, i, *n.p)
		require.Equal(t, i, n.v)
	}
}

func TestAlignedAllocations(t *testing.T) {
	a := NewArena()
	New[byte](a)
	p := New[uint64](a)
	assert.Zero(t, uintptr(unsafe.Pointer(p))%8)
}
