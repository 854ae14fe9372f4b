// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package abc

import (
	"reflect"
	"testing"
)

func TestMethodBodyRoundTrip(t *testing.T) {
	b := MethodBody{
		MethodIndex: 1,
		MaxStack:    4,
		LocalCount:  2,
		InitScope:   0,
		MaxScope:    1,
		Code:        []byte{0x02, 0x47}, // nop; returnvoid
		Exceptions: []ExceptionEntry{
			{From: 0, To: 1, Target: 1, ExcType: 0, VarName: 0},
		},
		Traits: []Trait{
			{NameIndex: 1, Kind: TraitKindSlot, Payload: SlotTrait{SlotID: 1, TypeName: 0, VIndex: 0}},
		},
	}

	w := newWriter()
	writeMethodBody(w, b, true)

	got, err := readMethodBody(newReader(w.bytes(), false))
	if err != nil {
		t.Fatalf("readMethodBody: %v", err)
	}
	if !reflect.DeepEqual(b, got) {
		t.Errorf("round-trip mismatch:\n%+v\n%+v", b, got)
	}
}

func TestMethodBodyCodeIsOwnedCopy(t *testing.T) {
	src := []byte{0x01, 0x02, 0x03}
	w := newWriter()
	w.writeULEB128(0)
	w.writeULEB128(0)
	w.writeULEB128(0)
	w.writeULEB128(0)
	w.writeULEB128(0)
	w.writeULEB128(uint32(len(src)))
	w.writeBytes(src)
	w.writeULEB128(0) // exception count
	w.writeULEB128(0) // trait count

	buf := w.bytes()
	b, err := readMethodBody(newReader(buf, false))
	if err != nil {
		t.Fatalf("readMethodBody: %v", err)
	}

	buf[len(buf)-5] = 0xFF // mutate the shared backing array after decode
	if b.Code[0] == 0xFF {
		t.Error("MethodBody.Code aliases the decoder's input buffer")
	}
}
