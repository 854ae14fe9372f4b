// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package abc

// ExceptionEntry describes one exception-handler range within a
// MethodBody's code: the [From, To) byte range it guards, the Target
// handler offset, and the exception type/variable it binds.
type ExceptionEntry struct {
	From, To, Target uint32 // byte offsets into the owning MethodBody.code
	ExcType          uint32 // into multiname_pool
	VarName          uint32 // into multiname_pool
}

// MethodBody is a method's executable body: the raw bytecode plus the
// frame sizing, exception table, and body-level traits (activation slots)
// it needs. The disassembled view lives in InstructionStream, produced on
// demand from Code by Disassemble.
type MethodBody struct {
	MethodIndex uint32 // into method_info
	MaxStack    uint32
	LocalCount  uint32
	InitScope   uint32
	MaxScope    uint32
	Code        []byte
	Exceptions  []ExceptionEntry
	Traits      []Trait
}

func readMethodBody(r *reader) (MethodBody, error) {
	var b MethodBody
	methodIdx, err := r.readULEB128()
	if err != nil {
		return b, err
	}
	maxStack, err := r.readULEB128()
	if err != nil {
		return b, err
	}
	localCount, err := r.readULEB128()
	if err != nil {
		return b, err
	}
	initScope, err := r.readULEB128()
	if err != nil {
		return b, err
	}
	maxScope, err := r.readULEB128()
	if err != nil {
		return b, err
	}
	codeLen, err := r.readULEB128()
	if err != nil {
		return b, err
	}
	code, err := r.readBytes(int(codeLen))
	if err != nil {
		return b, err
	}
	// Copy: readBytes hands back a slice into the decoder's input buffer,
	// and a MethodBody must own its code independently of that buffer.
	b.Code = append([]byte(nil), code...)

	b.MethodIndex, b.MaxStack, b.LocalCount, b.InitScope, b.MaxScope =
		methodIdx, maxStack, localCount, initScope, maxScope

	exCount, err := r.readULEB128()
	if err != nil {
		return b, err
	}
	b.Exceptions = make([]ExceptionEntry, exCount)
	for i := range b.Exceptions {
		from, err := r.readULEB128()
		if err != nil {
			return b, err
		}
		to, err := r.readULEB128()
		if err != nil {
			return b, err
		}
		target, err := r.readULEB128()
		if err != nil {
			return b, err
		}
		excType, err := r.readULEB128()
		if err != nil {
			return b, err
		}
		varName, err := r.readULEB128()
		if err != nil {
			return b, err
		}
		b.Exceptions[i] = ExceptionEntry{From: from, To: to, Target: target, ExcType: excType, VarName: varName}
	}

	traits, err := readTraits(r)
	if err != nil {
		return b, err
	}
	b.Traits = traits
	return b, nil
}

func writeMethodBody(w *writer, b MethodBody, preserveMetadata bool) {
	w.writeULEB128(b.MethodIndex)
	w.writeULEB128(b.MaxStack)
	w.writeULEB128(b.LocalCount)
	w.writeULEB128(b.InitScope)
	w.writeULEB128(b.MaxScope)
	w.writeULEB128(uint32(len(b.Code)))
	w.writeBytes(b.Code)

	w.writeULEB128(uint32(len(b.Exceptions)))
	for _, e := range b.Exceptions {
		w.writeULEB128(e.From)
		w.writeULEB128(e.To)
		w.writeULEB128(e.Target)
		w.writeULEB128(e.ExcType)
		w.writeULEB128(e.VarName)
	}

	writeTraits(w, b.Traits, preserveMetadata)
}
