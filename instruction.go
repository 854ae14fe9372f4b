// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package abc

// Instruction is one decoded AVM2 opcode: its mnemonic, the byte offset it
// starts at within the owning MethodBody's Code, its raw operand values in
// wire order, and (for branch/switch opcodes only) the absolute code offsets
// those operands resolve to.
type Instruction struct {
	Mnemonic string
	Opcode   byte
	Address  int
	Args     []int64
	Targets  []int
}

// InstructionStream is the ordered disassembly of a MethodBody's Code.
type InstructionStream struct {
	Instructions []Instruction
}

// Disassemble walks code byte by byte, decoding one instruction per opcode
// byte according to opcodeTable, and resolves every branch displacement to
// an absolute target offset.
//
// Two distinct anchoring rules apply (spec.md §4.F), and conflating them is
// the single easiest mistake in this package:
//
//   - An ordinary s24 (the if*/jump family) resolves relative to the
//     position immediately after the 3-byte displacement field itself:
//     target = posAfterDisplacement + displacement.
//   - lookupswitch's default s24 and every s24 in its case array instead
//     resolve relative to the position of the instruction's opcode byte
//     (op-off anchoring), not the position after each individual
//     displacement. Both figures are computed once, before either
//     displacement field is read, and reused for all of them.
func Disassemble(code []byte) (InstructionStream, error) {
	r := newReader(code, false)
	var stream InstructionStream
	for r.remaining() > 0 {
		opAddr := r.pos
		opByte, err := r.readU8()
		if err != nil {
			return stream, err
		}
		row, ok := lookupOpcode(opByte)
		if !ok {
			return stream, &UnknownOpcode{Byte: opByte, Address: opAddr}
		}
		inst := Instruction{Mnemonic: row.Mnemonic, Opcode: opByte, Address: opAddr}
		for _, kind := range row.Args {
			switch kind {
			case ArgU8:
				v, err := r.readU8()
				if err != nil {
					return stream, err
				}
				inst.Args = append(inst.Args, int64(v))
			case ArgU16:
				v, err := r.readU16()
				if err != nil {
					return stream, err
				}
				inst.Args = append(inst.Args, int64(v))
			case ArgU32, ArgU30:
				v, err := r.readULEB128()
				if err != nil {
					return stream, err
				}
				inst.Args = append(inst.Args, int64(v))
			case ArgS32:
				v, err := r.readSLEB128_32()
				if err != nil {
					return stream, err
				}
				inst.Args = append(inst.Args, int64(v))
			case ArgS24:
				v, err := r.readS24()
				if err != nil {
					return stream, err
				}
				inst.Args = append(inst.Args, int64(v))
				if row.Mnemonic == "lookupswitch" {
					inst.Targets = append(inst.Targets, opAddr+int(v))
				} else {
					inst.Targets = append(inst.Targets, r.pos+int(v))
				}
			case ArgS24Arr:
				count, err := r.readULEB128()
				if err != nil {
					return stream, err
				}
				n := int(count) + 1
				inst.Args = append(inst.Args, int64(count))
				for i := 0; i < n; i++ {
					v, err := r.readS24()
					if err != nil {
						return stream, err
					}
					inst.Args = append(inst.Args, int64(v))
					inst.Targets = append(inst.Targets, opAddr+int(v))
				}
			}
		}
		stream.Instructions = append(stream.Instructions, inst)
	}
	return stream, nil
}

// Assemble is Disassemble's exact inverse: it reconstructs bytecode purely
// from each Instruction's Mnemonic and Args, never consulting Targets, so
// that re-encoding a stream whose Targets were edited by hand to match
// edited Args round-trips correctly. canonicalSLEB128 selects which encoding
// ArgS32 operands use (Options.CanonicalSLEB128, spec.md §9).
func Assemble(stream InstructionStream, canonicalSLEB128 bool) ([]byte, error) {
	w := newWriter()
	for _, inst := range stream.Instructions {
		row, ok := lookupMnemonic(inst.Mnemonic)
		if !ok {
			return nil, &UnknownOpcode{Byte: inst.Opcode, Address: inst.Address}
		}
		w.writeU8(row.Byte)
		ai := 0
		for _, kind := range row.Args {
			switch kind {
			case ArgU8:
				w.writeU8(uint8(inst.Args[ai]))
				ai++
			case ArgU16:
				w.writeU16(uint16(inst.Args[ai]))
				ai++
			case ArgU32, ArgU30:
				w.writeULEB128(uint32(inst.Args[ai]))
				ai++
			case ArgS32:
				if canonicalSLEB128 {
					w.writeSLEB128_32Canonical(int32(inst.Args[ai]))
				} else {
					w.writeSLEB128_32(int32(inst.Args[ai]))
				}
				ai++
			case ArgS24:
				w.writeS24(int32(inst.Args[ai]))
				ai++
			case ArgS24Arr:
				count := inst.Args[ai]
				w.writeULEB128(uint32(count))
				ai++
				n := int(count) + 1
				for i := 0; i < n; i++ {
					w.writeS24(int32(inst.Args[ai]))
					ai++
				}
			}
		}
	}
	return w.bytes(), nil
}
