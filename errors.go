// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package abc

import "fmt"

// Truncated is returned when a read would consume bytes past the end of the
// buffer.
type Truncated struct {
	// Offset is the cursor position at the point of failure.
	Offset int
	// Want is the number of bytes the read needed.
	Want int
	// Have is the number of bytes actually remaining.
	Have int
}

func (e *Truncated) Error() string {
	return fmt.Sprintf("abc: truncated at offset %d: need %d bytes, have %d", e.Offset, e.Want, e.Have)
}

// BadEncoding is returned when a string slot does not decode as UTF-8.
type BadEncoding struct {
	Offset int
}

func (e *BadEncoding) Error() string {
	return fmt.Sprintf("abc: invalid UTF-8 string at offset %d", e.Offset)
}

// BadMultiname is returned when a multiname-pool entry carries an unknown
// kind tag.
type BadMultiname struct {
	Kind uint8
}

func (e *BadMultiname) Error() string {
	return fmt.Sprintf("abc: unknown multiname kind 0x%02x", e.Kind)
}

// BadTrait is returned when a trait record carries an unknown kind tag.
type BadTrait struct {
	Kind uint8
}

func (e *BadTrait) Error() string {
	return fmt.Sprintf("abc: unknown trait kind 0x%02x", e.Kind&0x0F)
}

// UnknownOpcode is returned when an instruction stream contains a byte not
// present in the opcode table.
type UnknownOpcode struct {
	Byte    byte
	Address int
}

func (e *UnknownOpcode) Error() string {
	return fmt.Sprintf("abc: unknown opcode 0x%02x at address %d", e.Byte, e.Address)
}

// BadArgKind is returned when the opcode table lists an argument kind the
// instruction codec does not know how to read or write. This indicates a
// bug in the opcode table itself, not malformed input.
type BadArgKind struct {
	Tag string
}

func (e *BadArgKind) Error() string {
	return fmt.Sprintf("abc: opcode table lists unknown arg kind %q", e.Tag)
}

// IndexOutOfRange is returned by consistency checks that find a stored index
// exceeding the length of the pool it is supposed to reference.
type IndexOutOfRange struct {
	Pool  string
	Index uint32
	Len   int
}

func (e *IndexOutOfRange) Error() string {
	return fmt.Sprintf("abc: index %d out of range for %s (len %d)", e.Index, e.Pool, e.Len)
}
