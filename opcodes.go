// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package abc

// ArgKind tags the wire shape of one instruction operand.
type ArgKind uint8

// The closed set of operand shapes an AVM2 instruction can declare
// (spec.md §4.E).
const (
	// ArgU8 is a raw byte.
	ArgU8 ArgKind = iota
	// ArgU16 is a little-endian 16-bit value.
	ArgU16
	// ArgU32 is an unsigned LEB128 value, read and written like ArgU30.
	ArgU32
	// ArgU30 is unsigned LEB128, guaranteed < 2^30 by the format.
	ArgU30
	// ArgS24 is a little-endian signed 24-bit branch displacement.
	ArgS24
	// ArgS32 is signed LEB128 (32-bit).
	ArgS32
	// ArgS24Arr is a lookupswitch tail: a uleb128 case count (interpreted
	// as count+1 actual cases) followed by that many s24 displacements.
	ArgS24Arr
)

// OpcodeInfo is one row of the static opcode table: a mnemonic, its wire
// byte, and the ordered operand shapes that follow it.
type OpcodeInfo struct {
	Mnemonic string
	Byte     byte
	Args     []ArgKind
}

// opcodeTable is the static, complete AVM2 opcode table driving both the
// disassembler and the assembler (spec.md §4.E). Transcribed from the
// Opcode enum of the original decoder this module replaces; mnemonics are
// plain lowercase strings, including in and not.
var opcodeTable = []OpcodeInfo{
	{"add", 0xa0, nil},
	{"add_d", 0x9B, nil},
	{"add_i", 0xC5, nil},
	{"applytype", 0x53, []ArgKind{ArgU30}},
	{"astype", 0x86, []ArgKind{ArgU30}},
	{"astypelate", 0x87, nil},
	{"bitand", 0xa8, nil},
	{"bitnot", 0x97, nil},
	{"bitor", 0xa9, nil},
	{"bitxor", 0xAA, nil},
	{"bkpt", 0x01, nil},
	{"bkptline", 0xF2, []ArgKind{ArgU30}},
	{"call", 0x41, []ArgKind{ArgU30}},
	{"callinterface", 0x4D, []ArgKind{ArgU30}},
	{"callmethod", 0x43, []ArgKind{ArgU30, ArgU30}},
	{"callproperty", 0x46, []ArgKind{ArgU30, ArgU30}},
	{"callproplex", 0x4C, []ArgKind{ArgU30, ArgU30}},
	{"callpropvoid", 0x4f, []ArgKind{ArgU30, ArgU30}},
	{"callstatic", 0x44, []ArgKind{ArgU30, ArgU30}},
	{"callsuper", 0x45, []ArgKind{ArgU30, ArgU30}},
	{"callsuperid", 0x4B, nil},
	{"callsupervoid", 0x4e, []ArgKind{ArgU30, ArgU30}},
	{"checkfilter", 0x78, nil},
	{"coerce", 0x80, []ArgKind{ArgU30}},
	{"coerce_a", 0x82, nil},
	{"coerce_b", 0x81, nil},
	{"coerce_d", 0x84, nil},
	{"coerce_i", 0x83, nil},
	{"coerce_o", 0x89, nil},
	{"coerce_s", 0x85, nil},
	{"coerce_u", 0x88, nil},
	{"concat", 0x9A, nil},
	{"construct", 0x42, []ArgKind{ArgU30}},
	{"constructprop", 0x4a, []ArgKind{ArgU30, ArgU30}},
	{"constructsuper", 0x49, []ArgKind{ArgU30}},
	{"convert_b", 0x76, nil},
	{"convert_d", 0x75, nil},
	{"convert_i", 0x73, nil},
	{"convert_o", 0x77, nil},
	{"convert_s", 0x70, nil},
	{"convert_u", 0x74, nil},
	{"debug", 0xEF, []ArgKind{ArgU8, ArgU30, ArgU8, ArgU30}},
	{"debugfile", 0xF1, []ArgKind{ArgU30}},
	{"debugline", 0xF0, []ArgKind{ArgU30}},
	{"declocal", 0x94, []ArgKind{ArgU30}},
	{"declocal_i", 0xC3, []ArgKind{ArgU30}},
	{"decrement", 0x93, nil},
	{"decrement_i", 0xc1, nil},
	{"deleteproperty", 0x6a, []ArgKind{ArgU30}},
	{"deletepropertylate", 0x6B, nil},
	{"divide", 0xa3, nil},
	{"dup", 0x2a, nil},
	{"dxns", 0x06, []ArgKind{ArgU30}},
	{"dxnslate", 0x07, nil},
	{"equals", 0xab, nil},
	{"esc_xattr", 0x72, nil},
	{"esc_xelem", 0x71, nil},
	{"finddef", 0x5F, []ArgKind{ArgU30}},
	{"findproperty", 0x5e, []ArgKind{ArgU30}},
	{"findpropglobal", 0x5c, []ArgKind{ArgU30}},
	{"findpropglobalstrict", 0x5b, []ArgKind{ArgU30}},
	{"findpropstrict", 0x5d, []ArgKind{ArgU30}},
	{"getdescendants", 0x59, []ArgKind{ArgU30}},
	{"getglobalscope", 0x64, nil},
	{"getglobalslot", 0x6E, []ArgKind{ArgU30}},
	{"getlex", 0x60, []ArgKind{ArgU30}},
	{"getlocal", 0x62, []ArgKind{ArgU30}},
	{"getlocal_0", 0xd0, nil},
	{"getlocal_1", 0xd1, nil},
	{"getlocal_2", 0xd2, nil},
	{"getlocal_3", 0xd3, nil},
	{"getouterscope", 0x67, []ArgKind{ArgU30}},
	{"getproperty", 0x66, []ArgKind{ArgU30}},
	{"getscopeobject", 0x65, []ArgKind{ArgU8}},
	{"getslot", 0x6c, []ArgKind{ArgU30}},
	{"getsuper", 0x04, []ArgKind{ArgU30}},
	{"greaterequals", 0xb0, nil},
	{"greaterthan", 0xaf, nil},
	{"hasnext", 0x1F, nil},
	{"hasnext2", 0x32, []ArgKind{ArgU30, ArgU30}},
	{"ifeq", 0x13, []ArgKind{ArgS24}},
	{"iffalse", 0x12, []ArgKind{ArgS24}},
	{"ifge", 0x18, []ArgKind{ArgS24}},
	{"ifgt", 0x17, []ArgKind{ArgS24}},
	{"ifle", 0x16, []ArgKind{ArgS24}},
	{"iflt", 0x15, []ArgKind{ArgS24}},
	{"ifne", 0x14, []ArgKind{ArgS24}},
	{"ifnge", 0x0f, []ArgKind{ArgS24}},
	{"ifngt", 0x0e, []ArgKind{ArgS24}},
	{"ifnle", 0x0d, []ArgKind{ArgS24}},
	{"ifnlt", 0x0c, []ArgKind{ArgS24}},
	{"ifstricteq", 0x19, []ArgKind{ArgS24}},
	{"ifstrictne", 0x1a, []ArgKind{ArgS24}},
	{"iftrue", 0x11, []ArgKind{ArgS24}},
	{"in", 0xb4, nil},
	{"inclocal", 0x92, []ArgKind{ArgU30}},
	{"inclocal_i", 0xc2, []ArgKind{ArgU30}},
	{"increment", 0x91, nil},
	{"increment_i", 0xc0, nil},
	{"initproperty", 0x68, []ArgKind{ArgU30}},
	{"instance_of", 0xB1, nil},
	{"istype", 0xB2, []ArgKind{ArgU30}},
	{"istypelate", 0xb3, nil},
	{"jump", 0x10, []ArgKind{ArgS24}},
	{"kill", 0x08, []ArgKind{ArgU30}},
	{"label", 0x09, nil},
	{"lessequals", 0xae, nil},
	{"lessthan", 0xad, nil},
	{"lf32", 0x38, nil},
	{"lf64", 0x39, nil},
	{"li16", 0x36, nil},
	{"li32", 0x37, nil},
	{"li8", 0x35, nil},
	{"lookupswitch", 0x1b, []ArgKind{ArgS24, ArgS24Arr}},
	{"lshift", 0xa5, nil},
	{"modulo", 0xa4, nil},
	{"multiply", 0xa2, nil},
	{"multiply_i", 0xC7, nil},
	{"negate", 0x90, nil},
	{"negate_i", 0xC4, nil},
	{"newactivation", 0x57, nil},
	{"newarray", 0x56, []ArgKind{ArgU30}},
	{"newcatch", 0x5a, []ArgKind{ArgU30}},
	{"newclass", 0x58, []ArgKind{ArgU30}},
	{"newfunction", 0x40, []ArgKind{ArgU30}},
	{"newobject", 0x55, []ArgKind{ArgU30}},
	{"nextname", 0x1e, nil},
	{"nextvalue", 0x23, nil},
	{"nop", 0x02, nil},
	{"not", 0x96, nil},
	{"pop", 0x29, nil},
	{"popscope", 0x1d, nil},
	{"pushbyte", 0x24, []ArgKind{ArgU8}},
	{"pushconstant", 0x22, []ArgKind{ArgU30}},
	{"pushdecimal", 0x33, []ArgKind{ArgU30}},
	{"pushdnan", 0x34, nil},
	{"pushdouble", 0x2f, []ArgKind{ArgU30}},
	{"pushfalse", 0x27, nil},
	{"pushint", 0x2d, []ArgKind{ArgU30}},
	{"pushnamespace", 0x31, []ArgKind{ArgU30}},
	{"pushnan", 0x28, nil},
	{"pushnull", 0x20, nil},
	{"pushscope", 0x30, nil},
	{"pushshort", 0x25, []ArgKind{ArgS32}},
	{"pushstring", 0x2c, []ArgKind{ArgU30}},
	{"pushtrue", 0x26, nil},
	{"pushuint", 0x2E, []ArgKind{ArgU30}},
	{"pushundefined", 0x21, nil},
	{"pushwith", 0x1c, nil},
	{"returnvalue", 0x48, nil},
	{"returnvoid", 0x47, nil},
	{"rshift", 0xa6, nil},
	{"setglobalslot", 0x6F, []ArgKind{ArgU30}},
	{"setlocal", 0x63, []ArgKind{ArgU30}},
	{"setlocal_0", 0xD4, nil},
	{"setlocal_1", 0xD5, nil},
	{"setlocal_2", 0xD6, nil},
	{"setlocal_3", 0xD7, nil},
	{"setproperty", 0x61, []ArgKind{ArgU30}},
	{"setpropertylate", 0x69, nil},
	{"setslot", 0x6d, []ArgKind{ArgU30}},
	{"setsuper", 0x05, []ArgKind{ArgU30}},
	{"sf32", 0x3d, nil},
	{"sf64", 0x3e, nil},
	{"si16", 0x3b, nil},
	{"si32", 0x3c, nil},
	{"si8", 0x3a, nil},
	{"strictequals", 0xac, nil},
	{"subtract", 0xa1, nil},
	{"subtract_i", 0xC6, nil},
	{"swap", 0x2b, nil},
	{"sxi1", 0x50, nil},
	{"sxi16", 0x52, nil},
	{"sxi8", 0x51, nil},
	{"throw", 0x03, nil},
	{"typeof", 0x95, nil},
	{"urshift", 0xa7, nil},
	{"unknown_7d", 0x7d, nil},
}

var (
	opcodeByByte     = make(map[byte]*OpcodeInfo, len(opcodeTable))
	opcodeByMnemonic = make(map[string]*OpcodeInfo, len(opcodeTable))
)

func init() {
	for i := range opcodeTable {
		row := &opcodeTable[i]
		opcodeByByte[row.Byte] = row
		opcodeByMnemonic[row.Mnemonic] = row
	}
}

// lookupOpcode maps a wire byte to its table row in constant time.
func lookupOpcode(b byte) (*OpcodeInfo, bool) {
	row, ok := opcodeByByte[b]
	return row, ok
}

// lookupMnemonic maps a mnemonic to its table row in constant time.
func lookupMnemonic(name string) (*OpcodeInfo, bool) {
	row, ok := opcodeByMnemonic[name]
	return row, ok
}
