// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package bitvec defines a fixed-length bit vector type
// useful for tracking small sets of indexed resources
// (e.g., which frame slots have work outstanding).
package bitvec

import (
	"iter"
	"math/bits"
	"unsafe"
)

// Uint represents the granularity of a bit vector.
type Uint interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// V is a bit vector with custom granularity.
// Its length is set on creation and changes only through
// Resize. The zero value is an empty vector.
type V[T Uint] struct {
	s   []T
	n   int
	set int
}

// New creates a vector of n unset bits.
func New[T Uint](n int) *V[T] {
	v := new(V[T])
	v.Resize(n)
	return v
}

// nbit returns the number of bits in T.
func (*V[T]) nbit() int { return int(unsafe.Sizeof(T(0))) * 8 }

// Len returns the number of bits in the vector.
func (v *V[_]) Len() int { return v.n }

// Count returns the number of set bits in the vector.
func (v *V[_]) Count() int { return v.set }

// Resize changes the length of the vector to n bits and
// unsets every bit.
func (v *V[T]) Resize(n int) {
	if n < 0 {
		panic("bitvec: negative length")
	}
	nb := v.nbit()
	m := (n + nb - 1) / nb
	if cap(v.s) >= m {
		v.s = v.s[:m]
		clear(v.s)
	} else {
		v.s = make([]T, m)
	}
	v.n = n
	v.set = 0
}

func (v *V[T]) locate(index int) (int, T) {
	if index < 0 || index >= v.n {
		panic("bitvec: index out of range")
	}
	n := v.nbit()
	return index / n, T(1) << (index & (n - 1))
}

// Set sets a given bit.
func (v *V[T]) Set(index int) {
	i, b := v.locate(index)
	if v.s[i]&b == 0 {
		v.s[i] |= b
		v.set++
	}
}

// Unset unsets a given bit.
func (v *V[T]) Unset(index int) {
	i, b := v.locate(index)
	if v.s[i]&b != 0 {
		v.s[i] &^= b
		v.set--
	}
}

// IsSet checks whether a given bit is set.
func (v *V[T]) IsSet(index int) bool {
	i, b := v.locate(index)
	return v.s[i]&b != 0
}

// Clear unsets every bit in the vector.
func (v *V[T]) Clear() {
	if v.set == 0 {
		return
	}
	clear(v.s)
	v.set = 0
}

// Ones returns an iterator over the indices of set bits,
// in increasing order.
func (v *V[T]) Ones() iter.Seq[int] {
	return func(yield func(int) bool) {
		n := v.nbit()
		for i, x := range v.s {
			for x != 0 {
				b := bits.TrailingZeros64(uint64(x))
				if !yield(i*n + b) {
					return
				}
				x &^= T(1) << b
			}
		}
	}
}
