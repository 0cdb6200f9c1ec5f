// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package bitm

import (
	"testing"
	"unsafe"
)

func TestNbit(t *testing.T) {
	for _, x := range [...][2]int{
		{int(unsafe.Sizeof(uint(0))) * 8, (&Bitm[uint]{}).nbit()},
		{int(unsafe.Sizeof(uint8(0))) * 8, (&Bitm[uint8]{}).nbit()},
		{int(unsafe.Sizeof(uint16(0))) * 8, (&Bitm[uint16]{}).nbit()},
		{int(unsafe.Sizeof(uint32(0))) * 8, (&Bitm[uint32]{}).nbit()},
		{int(unsafe.Sizeof(uint64(0))) * 8, (&Bitm[uint64]{}).nbit()},
		{int(unsafe.Sizeof(uintptr(0))) * 8, (&Bitm[uintptr]{}).nbit()},
	} {
		if x[0] != x[1] {
			t.Fatalf("Bitm[T].nbit:\nhave %v\nwant %v", x[0], x[1])
		}
	}
}

func TestZero(t *testing.T) {
	var bitm16 Bitm[uint16]
	if bitm16.m != nil {
		t.Fatalf("bitm16.m:\nhave %v\nwant nil", bitm16.m)
	}
	if bitm16.rem != 0 {
		t.Fatalf("bitm16.rem:\nhave %v\nwant 0", bitm16.rem)
	}
	if n := bitm16.Len(); n != 0 {
		t.Fatalf("bitm16.Len:\nhave %v\nwant 0", n)
	}
	if n := bitm16.Cap(); n != 0 {
		t.Fatalf("bitm16.Cap:\nhave %v\nwant 0", n)
	}
}

func TestGrow(t *testing.T) {
	var m Bitm[uint32]
	if idx := m.Grow(2); idx != 0 {
		t.Fatalf("m.Grow:\nhave %v\nwant 0", idx)
	}
	if n := m.Cap(); n != 64 {
		t.Fatalf("m.Cap:\nhave %v\nwant 64", n)
	}
	if n := m.Rem(); n != 64 {
		t.Fatalf("m.Rem:\nhave %v\nwant 64", n)
	}
	if idx := m.Grow(1); idx != 64 {
		t.Fatalf("m.Grow:\nhave %v\nwant 64", idx)
	}
	if n := m.Len(); n != 0 {
		t.Fatalf("m.Len:\nhave %v\nwant 0", n)
	}
}

func TestSetSearch(t *testing.T) {
	var m Bitm[uint8]
	if _, ok := m.Search(); ok {
		t.Fatal("m.Search:\nhave true\nwant false")
	}
	m.Grow(2)
	for i := 0; i < 9; i++ {
		idx, ok := m.Search()
		if !ok || idx != i {
			t.Fatalf("m.Search:\nhave %v, %v\nwant %v, true", idx, ok, i)
		}
		m.Set(idx)
		if !m.IsSet(idx) {
			t.Fatalf("m.IsSet(%d):\nhave false\nwant true", idx)
		}
	}
	if n := m.Len(); n != 9 {
		t.Fatalf("m.Len:\nhave %v\nwant 9", n)
	}
	m.Set(3)
	if n := m.Len(); n != 9 {
		t.Fatalf("m.Len after double Set:\nhave %v\nwant 9", n)
	}
	m.Unset(3)
	m.Unset(3)
	if n := m.Rem(); n != 8 {
		t.Fatalf("m.Rem:\nhave %v\nwant 8", n)
	}
	if idx, ok := m.Search(); !ok || idx != 3 {
		t.Fatalf("m.Search:\nhave %v, %v\nwant 3, true", idx, ok)
	}
	for i := 0; i < m.Cap(); i++ {
		m.Set(i)
	}
	if _, ok := m.Search(); ok {
		t.Fatal("m.Search on full map:\nhave true\nwant false")
	}
}
