// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package abc

// Multiname kind tags, as they appear on the wire (spec.md §6).
const (
	ConstantQName      uint8 = 0x07
	ConstantQNameA     uint8 = 0x0D
	ConstantRTQName    uint8 = 0x0F
	ConstantRTQNameA   uint8 = 0x10
	ConstantRTQNameL   uint8 = 0x11
	ConstantRTQNameLA  uint8 = 0x12
	ConstantMultiname  uint8 = 0x09
	ConstantMultinameA uint8 = 0x0E
	ConstantMultinameL uint8 = 0x1B
	ConstantMultinameLA uint8 = 0x1C
	ConstantTypeName   uint8 = 0x1D
)

// Namespace is an entry in the namespace_pool: a namespace kind plus the
// string_pool index of its name.
type Namespace struct {
	Kind      uint8
	NameIndex uint32
}

// NSSet is an entry in the ns_set_pool: an ordered list of namespace_pool
// indices.
type NSSet struct {
	Namespaces []uint32
}

// MultinamePayload is the tagged-variant payload of a Multiname entry. Each
// concrete type below implements it; which one is valid is determined by
// Multiname.Kind (spec.md §3).
type MultinamePayload interface {
	isMultinamePayload()
}

// QName is the CONSTANT_QName / CONSTANT_QNameA payload: a namespace and a
// name, both resolved at compile time.
type QName struct {
	NSIndex   uint32 // into namespace_pool
	NameIndex uint32 // into string_pool
}

func (QName) isMultinamePayload() {}

// RTQName is the CONSTANT_RTQName / CONSTANT_RTQNameA payload: a name
// resolved at compile time, namespace resolved at runtime off the operand
// stack.
type RTQName struct {
	NameIndex uint32 // into string_pool
}

func (RTQName) isMultinamePayload() {}

// RTQNameL is the CONSTANT_RTQNameL / CONSTANT_RTQNameLA payload: both name
// and namespace resolved at runtime. Carries no wire payload.
type RTQNameL struct{}

func (RTQNameL) isMultinamePayload() {}

// RTMultiname is the CONSTANT_Multiname / CONSTANT_MultinameA payload: a
// compile-time name resolved against a runtime-selected namespace set.
type RTMultiname struct {
	NameIndex  uint32 // into string_pool
	NSSetIndex uint32 // into ns_set_pool
}

func (RTMultiname) isMultinamePayload() {}

// RTMultinameL is the CONSTANT_MultinameL / CONSTANT_MultinameLA payload: a
// runtime name matched against a compile-time namespace set.
type RTMultinameL struct {
	NSSetIndex uint32 // into ns_set_pool
}

func (RTMultinameL) isMultinamePayload() {}

// TypeNameRef is the CONSTANT_TypeName payload: a parameterized type, e.g.
// Vector.<int>. NameIndex and every entry of ParamTypes point back into
// multiname_pool, not string_pool.
type TypeNameRef struct {
	NameIndex  uint32   // into multiname_pool
	ParamTypes []uint32 // into multiname_pool
}

func (TypeNameRef) isMultinamePayload() {}

// Multiname is an entry in the multiname_pool: a kind tag plus the payload
// shape that kind selects.
type Multiname struct {
	Kind    uint8
	Payload MultinamePayload
}

// ConstantPool holds the seven pools every ABC unit carries. Index 0 in every
// pool is a reserved sentinel (spec.md §3, invariant 1).
type ConstantPool struct {
	Ints       []int32
	Uints      []uint32
	Doubles    []float64
	Strings    []string
	Namespaces []Namespace
	NSSets     []NSSet
	Multinames []Multiname

	// stringIndex and multinameIndex accelerate ensure_* interning; they are
	// populated during decode and kept in sync by the Unit's intern helpers.
	stringIndex    map[string]uint32
	multinameIndex map[qnameKey]uint32
}

// qnameKey is the interning key for QName multinames: spec.md §4.B notes
// the multiname_index map is keyed only by (name_index, ns_index), i.e. the
// QName shape — other shapes are never interned for reuse.
type qnameKey struct {
	nameIndex uint32
	nsIndex   uint32
}

// newConstantPool returns a pool pre-populated with every sentinel entry
// (spec.md §3 lifecycle: "created empty-with-sentinel when an ABC unit is
// constructed").
func newConstantPool() *ConstantPool {
	return &ConstantPool{
		Ints:           []int32{0},
		Uints:          []uint32{0},
		Doubles:        []float64{0.0},
		Strings:        []string{""},
		Namespaces:     []Namespace{{Kind: 0, NameIndex: 0}},
		NSSets:         []NSSet{{}},
		Multinames:     []Multiname{{Kind: ConstantQName, Payload: QName{NSIndex: 0, NameIndex: 0}}},
		stringIndex:    map[string]uint32{"": 0},
		multinameIndex: map[qnameKey]uint32{{0, 0}: 0},
	}
}

func (p *ConstantPool) read(r *reader) error {
	intCount, err := r.readULEB128()
	if err != nil {
		return err
	}
	for i := uint32(1); i < orOne(intCount); i++ {
		v, err := r.readSLEB128_32()
		if err != nil {
			return err
		}
		p.Ints = append(p.Ints, v)
	}

	uintCount, err := r.readULEB128()
	if err != nil {
		return err
	}
	for i := uint32(1); i < orOne(uintCount); i++ {
		v, err := r.readULEB128()
		if err != nil {
			return err
		}
		p.Uints = append(p.Uints, v)
	}

	doubleCount, err := r.readULEB128()
	if err != nil {
		return err
	}
	for i := uint32(1); i < orOne(doubleCount); i++ {
		v, err := r.readF64()
		if err != nil {
			return err
		}
		p.Doubles = append(p.Doubles, v)
	}

	stringCount, err := r.readULEB128()
	if err != nil {
		return err
	}
	for i := uint32(1); i < orOne(stringCount); i++ {
		s, err := r.readString()
		if err != nil {
			return err
		}
		p.stringIndex[s] = uint32(len(p.Strings))
		p.Strings = append(p.Strings, s)
	}

	nsCount, err := r.readULEB128()
	if err != nil {
		return err
	}
	for i := uint32(1); i < orOne(nsCount); i++ {
		kind, err := r.readU8()
		if err != nil {
			return err
		}
		nameIdx, err := r.readULEB128()
		if err != nil {
			return err
		}
		p.Namespaces = append(p.Namespaces, Namespace{Kind: kind, NameIndex: nameIdx})
	}

	nsSetCount, err := r.readULEB128()
	if err != nil {
		return err
	}
	for i := uint32(1); i < orOne(nsSetCount); i++ {
		count, err := r.readULEB128()
		if err != nil {
			return err
		}
		indices := make([]uint32, count)
		for j := range indices {
			v, err := r.readULEB128()
			if err != nil {
				return err
			}
			indices[j] = v
		}
		p.NSSets = append(p.NSSets, NSSet{Namespaces: indices})
	}

	multinameCount, err := r.readULEB128()
	if err != nil {
		return err
	}
	for i := uint32(1); i < orOne(multinameCount); i++ {
		kind, err := r.readU8()
		if err != nil {
			return err
		}
		mn := Multiname{Kind: kind}
		switch kind {
		case ConstantQName, ConstantQNameA:
			ns, err := r.readULEB128()
			if err != nil {
				return err
			}
			name, err := r.readULEB128()
			if err != nil {
				return err
			}
			mn.Payload = QName{NSIndex: ns, NameIndex: name}
			key := qnameKey{nameIndex: name, nsIndex: ns}
			if _, ok := p.multinameIndex[key]; !ok {
				p.multinameIndex[key] = uint32(len(p.Multinames))
			}
		case ConstantRTQName, ConstantRTQNameA:
			name, err := r.readULEB128()
			if err != nil {
				return err
			}
			mn.Payload = RTQName{NameIndex: name}
		case ConstantRTQNameL, ConstantRTQNameLA:
			mn.Payload = RTQNameL{}
		case ConstantMultiname, ConstantMultinameA:
			name, err := r.readULEB128()
			if err != nil {
				return err
			}
			nsSet, err := r.readULEB128()
			if err != nil {
				return err
			}
			mn.Payload = RTMultiname{NameIndex: name, NSSetIndex: nsSet}
		case ConstantMultinameL, ConstantMultinameLA:
			nsSet, err := r.readULEB128()
			if err != nil {
				return err
			}
			mn.Payload = RTMultinameL{NSSetIndex: nsSet}
		case ConstantTypeName:
			name, err := r.readULEB128()
			if err != nil {
				return err
			}
			paramCount, err := r.readULEB128()
			if err != nil {
				return err
			}
			params := make([]uint32, paramCount)
			for j := range params {
				v, err := r.readULEB128()
				if err != nil {
					return err
				}
				params[j] = v
			}
			mn.Payload = TypeNameRef{NameIndex: name, ParamTypes: params}
		default:
			return &BadMultiname{Kind: kind}
		}
		p.Multinames = append(p.Multinames, mn)
	}

	return nil
}

// orOne treats a decoded pool count of 0 the same as 1: "if count == 0 the
// pool is treated as length 1 (sentinel only)" (spec.md §4.B).
func orOne(count uint32) uint32 {
	if count == 0 {
		return 1
	}
	return count
}

// write serialises the pool. canonicalSLEB128 selects which encoding is used
// for the signed int_pool entries (Options.CanonicalSLEB128, spec.md §9's
// SLEB128 Open Question).
func (p *ConstantPool) write(w *writer, canonicalSLEB128 bool) {
	w.writeULEB128(uint32(len(p.Ints)))
	for _, v := range p.Ints[1:] {
		if canonicalSLEB128 {
			w.writeSLEB128_32Canonical(v)
		} else {
			w.writeSLEB128_32(v)
		}
	}

	w.writeULEB128(uint32(len(p.Uints)))
	for _, v := range p.Uints[1:] {
		w.writeULEB128(v)
	}

	w.writeULEB128(uint32(len(p.Doubles)))
	for _, v := range p.Doubles[1:] {
		w.writeF64(v)
	}

	w.writeULEB128(uint32(len(p.Strings)))
	for _, s := range p.Strings[1:] {
		w.writeString(s)
	}

	w.writeULEB128(uint32(len(p.Namespaces)))
	for _, ns := range p.Namespaces[1:] {
		w.writeU8(ns.Kind)
		w.writeULEB128(ns.NameIndex)
	}

	w.writeULEB128(uint32(len(p.NSSets)))
	for _, set := range p.NSSets[1:] {
		w.writeULEB128(uint32(len(set.Namespaces)))
		for _, idx := range set.Namespaces {
			w.writeULEB128(idx)
		}
	}

	w.writeULEB128(uint32(len(p.Multinames)))
	for _, mn := range p.Multinames[1:] {
		w.writeU8(mn.Kind)
		switch payload := mn.Payload.(type) {
		case QName:
			w.writeULEB128(payload.NSIndex)
			w.writeULEB128(payload.NameIndex)
		case RTQName:
			w.writeULEB128(payload.NameIndex)
		case RTQNameL:
			// no additional data
		case RTMultiname:
			w.writeULEB128(payload.NameIndex)
			w.writeULEB128(payload.NSSetIndex)
		case RTMultinameL:
			w.writeULEB128(payload.NSSetIndex)
		case TypeNameRef:
			w.writeULEB128(payload.NameIndex)
			w.writeULEB128(uint32(len(payload.ParamTypes)))
			for _, p := range payload.ParamTypes {
				w.writeULEB128(p)
			}
		}
	}
}

// ensureString appends s to the string pool if missing, returning its
// index either way.
func (p *ConstantPool) ensureString(s string) uint32 {
	if idx, ok := p.stringIndex[s]; ok {
		return idx
	}
	idx := uint32(len(p.Strings))
	p.Strings = append(p.Strings, s)
	p.stringIndex[s] = idx
	return idx
}

// ensureNamespace interns a namespace of kind Namespace (0x08) with the
// given name, returning the index of an existing match or appending one.
func (p *ConstantPool) ensureNamespace(name string) uint32 {
	const namespaceKind uint8 = 0x08
	nameIdx := p.ensureString(name)
	for i, ns := range p.Namespaces {
		if ns.Kind == namespaceKind && ns.NameIndex == nameIdx {
			return uint32(i)
		}
	}
	idx := uint32(len(p.Namespaces))
	p.Namespaces = append(p.Namespaces, Namespace{Kind: namespaceKind, NameIndex: nameIdx})
	return idx
}

// ensureMultiname interns a QName keyed on (nameIndex, nsIndex).
func (p *ConstantPool) ensureMultiname(nameIndex, nsIndex uint32) uint32 {
	key := qnameKey{nameIndex: nameIndex, nsIndex: nsIndex}
	if idx, ok := p.multinameIndex[key]; ok {
		return idx
	}
	idx := uint32(len(p.Multinames))
	p.Multinames = append(p.Multinames, Multiname{Kind: ConstantQName, Payload: QName{NSIndex: nsIndex, NameIndex: nameIndex}})
	p.multinameIndex[key] = idx
	return idx
}

// findMultiname searches for a QName whose name matches propName and whose
// namespace matches namespace (the empty string matches the public
// namespace sentinel at index 0). Returns the index and true on success.
func (p *ConstantPool) findMultiname(propName, namespace string) (uint32, bool) {
	for i, mn := range p.Multinames {
		qn, ok := mn.Payload.(QName)
		if !ok {
			continue
		}
		if int(qn.NameIndex) >= len(p.Strings) || p.Strings[qn.NameIndex] != propName {
			continue
		}
		if int(qn.NSIndex) >= len(p.Namespaces) {
			continue
		}
		nsName := ""
		if ni := p.Namespaces[qn.NSIndex].NameIndex; int(ni) < len(p.Strings) {
			nsName = p.Strings[ni]
		}
		if nsName == namespace {
			return uint32(i), true
		}
	}
	return 0, false
}
