// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package abc

import (
	"reflect"
	"testing"
)

// An ordinary s24 branch (jump) resolves relative to the position right
// after its own 3-byte displacement field.
func TestDisassembleJumpTarget(t *testing.T) {
	// jump +2 at address 0: opcode(1) + s24(3) = 4 bytes consumed, so the
	// post-displacement position is 4, target = 4+2 = 6.
	code := []byte{0x10, 0x02, 0x00, 0x00, 0x02, 0x47}
	stream, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if len(stream.Instructions) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(stream.Instructions))
	}
	jmp := stream.Instructions[0]
	if jmp.Mnemonic != "jump" {
		t.Fatalf("expected jump, got %s", jmp.Mnemonic)
	}
	if len(jmp.Targets) != 1 || jmp.Targets[0] != 6 {
		t.Errorf("jump target = %v, want [6]", jmp.Targets)
	}
}

// S5: lookupswitch's default and case-array s24 fields are anchored to the
// opcode byte's own position, not to the position after each displacement.
func TestDisassembleLookupswitchOpOffAnchoring(t *testing.T) {
	// At address 0: lookupswitch(1) default_offset=s24(3) case_count=uleb(1)
	// case[0]=s24(3). default displacement = 10 -> target 0+10=10.
	// case displacement = 11 -> target 0+11=11.
	code := []byte{
		0x1b,             // lookupswitch
		0x0a, 0x00, 0x00, // default_offset = 10
		0x00,             // case_count = 0 (1 actual case)
		0x0b, 0x00, 0x00, // case[0] = 11
	}
	stream, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	ls := stream.Instructions[0]
	if ls.Mnemonic != "lookupswitch" {
		t.Fatalf("expected lookupswitch, got %s", ls.Mnemonic)
	}
	want := []int{10, 11}
	if !reflect.DeepEqual(ls.Targets, want) {
		t.Errorf("lookupswitch targets = %v, want %v", ls.Targets, want)
	}
}

func TestAssembleIsDisassembleInverse(t *testing.T) {
	code := []byte{
		0x1b,
		0x0a, 0x00, 0x00,
		0x00,
		0x0b, 0x00, 0x00,
		0x02, // nop
		0x47, // returnvoid
	}
	stream, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	out, err := Assemble(stream, false)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !reflect.DeepEqual(code, out) {
		t.Errorf("Assemble(Disassemble(code)) = %v, want %v", out, code)
	}
}

func TestDisassembleUnknownOpcode(t *testing.T) {
	code := []byte{0xFE} // unused byte in the opcode table
	if _, err := Disassemble(code); err == nil {
		t.Fatal("expected UnknownOpcode error")
	}
}

func TestDisassembleMultiArgOpcode(t *testing.T) {
	// debug: u8 kind, u30 name, u8 reg, u30 extra — all zero.
	code := []byte{0xEF, 0x00, 0x00, 0x00, 0x00}
	stream, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if len(stream.Instructions[0].Args) != 4 {
		t.Errorf("expected 4 args for debug, got %d", len(stream.Instructions[0].Args))
	}
}
