// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package bitvec

import (
	"slices"
	"testing"
	"unsafe"
)

func TestNbit(t *testing.T) {
	for _, x := range [...][2]int{
		{int(unsafe.Sizeof(uint8(0))) * 8, (&V[uint8]{}).nbit()},
		{int(unsafe.Sizeof(uint16(0))) * 8, (&V[uint16]{}).nbit()},
		{int(unsafe.Sizeof(uint32(0))) * 8, (&V[uint32]{}).nbit()},
		{int(unsafe.Sizeof(uint64(0))) * 8, (&V[uint64]{}).nbit()},
	} {
		if x[0] != x[1] {
			t.Fatalf("V[T].nbit:\nhave %d\nwant %d", x[0], x[1])
		}
	}
}

func TestZero(t *testing.T) {
	var v16 V[uint16]
	if n := v16.Len(); n != 0 {
		t.Fatalf("v16.Len:\nhave %d\nwant 0", n)
	}
	if n := v16.Count(); n != 0 {
		t.Fatalf("v16.Count:\nhave %d\nwant 0", n)
	}
	for range v16.Ones() {
		t.Fatal("v16.Ones: unexpected element")
	}
}

func TestSetUnset(t *testing.T) {
	v := New[uint8](20)
	if n := len(v.s); n != 3 {
		t.Fatalf("len(v.s):\nhave %d\nwant 3", n)
	}
	for _, i := range [...]int{0, 7, 8, 19, 7} {
		v.Set(i)
	}
	if n := v.Count(); n != 4 {
		t.Fatalf("v.Count:\nhave %d\nwant 4", n)
	}
	for _, x := range [...]struct {
		i   int
		set bool
	}{
		{0, true}, {1, false}, {7, true}, {8, true}, {9, false}, {19, true},
	} {
		if s := v.IsSet(x.i); s != x.set {
			t.Fatalf("v.IsSet(%d):\nhave %t\nwant %t", x.i, s, x.set)
		}
	}
	if s := slices.Collect(v.Ones()); !slices.Equal(s, []int{0, 7, 8, 19}) {
		t.Fatalf("v.Ones:\nhave %v\nwant [0 7 8 19]", s)
	}
	v.Unset(8)
	v.Unset(8)
	v.Unset(1)
	if n := v.Count(); n != 3 {
		t.Fatalf("v.Count:\nhave %d\nwant 3", n)
	}
	v.Clear()
	if n := v.Count(); n != 0 {
		t.Fatalf("v.Clear: Count:\nhave %d\nwant 0", n)
	}
}

func TestResize(t *testing.T) {
	v := New[uint64](2)
	v.Set(1)
	v.Resize(130)
	if n := v.Len(); n != 130 {
		t.Fatalf("v.Resize: Len:\nhave %d\nwant 130", n)
	}
	if v.Count() != 0 || v.IsSet(1) {
		t.Fatal("v.Resize: bits not cleared")
	}
	v.Set(129)
	if s := slices.Collect(v.Ones()); !slices.Equal(s, []int{129}) {
		t.Fatalf("v.Ones:\nhave %v\nwant [129]", s)
	}
	v.Resize(1)
	if n := len(v.s); n != 1 {
		t.Fatalf("len(v.s):\nhave %d\nwant 1", n)
	}
}

func TestOutOfRange(t *testing.T) {
	v := New[uint32](4)
	for _, i := range [...]int{-1, 4, 32} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("v.Set(%d): expected panic", i)
				}
			}()
			v.Set(i)
		}()
	}
}
