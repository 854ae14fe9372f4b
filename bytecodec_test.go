// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package abc

import (
	"reflect"
	"testing"
)

func TestReadULEB128(t *testing.T) {
	tests := []struct {
		in  []byte
		out uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7F}, 0x7F},
		{[]byte{0x80, 0x01}, 0x80},
		{[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, 0xFFFFFFFF},
	}
	for _, tt := range tests {
		r := newReader(tt.in, false)
		got, err := r.readULEB128()
		if err != nil {
			t.Fatalf("readULEB128(%v): %v", tt.in, err)
		}
		if got != tt.out {
			t.Errorf("readULEB128(%v) = %#x, want %#x", tt.in, got, tt.out)
		}
	}
}

// S2: a 5-group ULEB128 clamps in non-strict mode instead of erroring, and
// the byte after the fifth group is left unconsumed.
func TestReadULEB128ClampsAtFiveGroups(t *testing.T) {
	in := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	r := newReader(in, false)
	v, err := r.readULEB128()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0xFFFFFFFF {
		t.Errorf("got %#x, want 0xFFFFFFFF", v)
	}
	if r.remaining() != 1 {
		t.Errorf("expected one unconsumed byte, remaining=%d", r.remaining())
	}
}

func TestReadULEB128StrictErrorsPastFiveGroups(t *testing.T) {
	in := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	r := newReader(in, true)
	if _, err := r.readULEB128(); err == nil {
		t.Fatal("expected an error in strict mode")
	}
}

// S3: -1 round-trips as 0xFF 0xFF 0xFF 0xFF 0x0F under the wrap+ULEB128
// encoding, not as the single-byte canonical form.
func TestSLEB128WrapRoundTrip(t *testing.T) {
	in := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}
	r := newReader(in, false)
	v, err := r.readSLEB128_32()
	if err != nil {
		t.Fatalf("readSLEB128_32: %v", err)
	}
	if v != -1 {
		t.Fatalf("got %d, want -1", v)
	}

	w := newWriter()
	w.writeSLEB128_32(v)
	if !reflect.DeepEqual(w.bytes(), in) {
		t.Errorf("writeSLEB128_32(-1) = %v, want %v", w.bytes(), in)
	}
}

func TestSLEB128CanonicalIsShorterForNegativeOne(t *testing.T) {
	w := newWriter()
	w.writeSLEB128_32Canonical(-1)
	want := []byte{0x7F}
	if !reflect.DeepEqual(w.bytes(), want) {
		t.Errorf("writeSLEB128_32Canonical(-1) = %v, want %v", w.bytes(), want)
	}
}

func TestReadS24SignExtends(t *testing.T) {
	tests := []struct {
		in  []byte
		out int32
	}{
		{[]byte{0x01, 0x00, 0x00}, 1},
		{[]byte{0xFF, 0xFF, 0xFF}, -1},
		{[]byte{0x00, 0x00, 0x80}, -8388608},
	}
	for _, tt := range tests {
		r := newReader(tt.in, false)
		v, err := r.readS24()
		if err != nil {
			t.Fatalf("readS24(%v): %v", tt.in, err)
		}
		if v != tt.out {
			t.Errorf("readS24(%v) = %d, want %d", tt.in, v, tt.out)
		}
		w := newWriter()
		w.writeS24(v)
		if !reflect.DeepEqual(w.bytes(), tt.in) {
			t.Errorf("writeS24(%d) = %v, want %v", v, w.bytes(), tt.in)
		}
	}
}

func TestReadStringRejectsInvalidUTF8(t *testing.T) {
	in := []byte{0x02, 0xFF, 0xFE}
	r := newReader(in, false)
	if _, err := r.readString(); err == nil {
		t.Fatal("expected a BadEncoding error")
	}
}

func TestReadCStringConsumesTerminator(t *testing.T) {
	in := []byte{'h', 'i', 0x00, 'X'}
	r := newReader(in, false)
	s, err := r.readCString()
	if err != nil {
		t.Fatalf("readCString: %v", err)
	}
	if s != "hi" {
		t.Errorf("got %q, want %q", s, "hi")
	}
	if r.remaining() != 1 {
		t.Errorf("expected one byte left, got %d", r.remaining())
	}
}

func TestTruncatedRead(t *testing.T) {
	r := newReader([]byte{0x01}, false)
	if _, err := r.readU32(); err == nil {
		t.Fatal("expected a Truncated error")
	}
}
