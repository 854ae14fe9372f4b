// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package abc

// MethodInfo flag bits (spec.md §6).
const (
	// NeedArguments indicates the method should receive an "arguments"
	// object.
	NeedArguments uint8 = 0x01
	// NeedActivation indicates the method needs an activation object.
	NeedActivation uint8 = 0x02
	// NeedRest indicates the method's last parameter should receive the
	// remaining arguments as an array (the "..." rest parameter).
	NeedRest uint8 = 0x04
	// HasOptional indicates optional_params follows the fixed parameter
	// list.
	HasOptional uint8 = 0x08
	// SetsDXNS indicates the method contains a dxns/dxnslate instruction.
	SetsDXNS uint8 = 0x40
	// HasParamNames indicates the wire format carries a parameter-name
	// index per parameter. AVM2 never uses these names; the decoder
	// consumes and discards them, then strips this bit (spec.md §4.C,
	// invariant 4).
	HasParamNames uint8 = 0x80
)

// OptionalParam is one entry of MethodInfo.OptionalParams: a constant-pool
// value plus the kind tag identifying which pool it lives in.
type OptionalParam struct {
	Value uint32
	Kind  uint8
}

// MethodInfo describes a method's signature: its parameter and return
// types, name, and default-argument metadata.
type MethodInfo struct {
	Name           uint32 // into string_pool
	Params         []uint32 // into multiname_pool
	ReturnType     uint32 // into multiname_pool
	Flags          uint8
	OptionalParams []OptionalParam // present iff Flags&HasOptional != 0
}

func readMethodInfo(r *reader, pool *ConstantPool) (MethodInfo, error) {
	var m MethodInfo
	paramCount, err := r.readULEB128()
	if err != nil {
		return m, err
	}
	returnType, err := r.readULEB128()
	if err != nil {
		return m, err
	}
	m.ReturnType = returnType

	m.Params = make([]uint32, paramCount)
	for i := range m.Params {
		v, err := r.readULEB128()
		if err != nil {
			return m, err
		}
		m.Params[i] = v
	}

	name, err := r.readULEB128()
	if err != nil {
		return m, err
	}
	m.Name = name

	flags, err := r.readU8()
	if err != nil {
		return m, err
	}

	if flags&HasOptional != 0 {
		optCount, err := r.readULEB128()
		if err != nil {
			return m, err
		}
		m.OptionalParams = make([]OptionalParam, optCount)
		for i := range m.OptionalParams {
			value, err := r.readULEB128()
			if err != nil {
				return m, err
			}
			kind, err := r.readU8()
			if err != nil {
				return m, err
			}
			m.OptionalParams[i] = OptionalParam{Value: value, Kind: kind}
		}
	}

	if flags&HasParamNames != 0 {
		for i := uint32(0); i < paramCount; i++ {
			if _, err := r.readULEB128(); err != nil {
				return m, err
			}
		}
		flags &^= HasParamNames
	}
	m.Flags = flags

	return m, nil
}

func writeMethodInfo(w *writer, m MethodInfo) {
	w.writeULEB128(uint32(len(m.Params)))
	w.writeULEB128(m.ReturnType)
	for _, p := range m.Params {
		w.writeULEB128(p)
	}
	w.writeULEB128(m.Name)
	// Parameter names are never written, so their flag bit is never emitted.
	w.writeU8(m.Flags &^ HasParamNames)
	if m.Flags&HasOptional != 0 {
		w.writeULEB128(uint32(len(m.OptionalParams)))
		for _, opt := range m.OptionalParams {
			w.writeULEB128(opt.Value)
			w.writeU8(opt.Kind)
		}
	}
}

// Metadata is a name/value-pairs record attached to traits via
// Trait.MetadataIndices.
type Metadata struct {
	Name    uint32 // into string_pool
	Entries []MetadataEntry
}

// MetadataEntry is a single key/value pair of a Metadata record, resolved
// against string_pool. Duplicate keys keep only the last writer (spec.md
// §4.C).
type MetadataEntry struct {
	Key   string
	Value string
}

func readMetadata(r *reader, pool *ConstantPool) (Metadata, error) {
	var md Metadata
	nameIdx, err := r.readULEB128()
	if err != nil {
		return md, err
	}
	md.Name = nameIdx

	itemCount, err := r.readULEB128()
	if err != nil {
		return md, err
	}

	seen := make(map[string]int, itemCount)
	for i := uint32(0); i < itemCount; i++ {
		keyIdx, err := r.readULEB128()
		if err != nil {
			return md, err
		}
		valIdx, err := r.readULEB128()
		if err != nil {
			return md, err
		}
		key, err := poolString(pool, keyIdx)
		if err != nil {
			return md, err
		}
		val, err := poolString(pool, valIdx)
		if err != nil {
			return md, err
		}
		if j, ok := seen[key]; ok {
			md.Entries[j].Value = val
			continue
		}
		seen[key] = len(md.Entries)
		md.Entries = append(md.Entries, MetadataEntry{Key: key, Value: val})
	}
	return md, nil
}

// poolString resolves idx against pool's string_pool, raising
// IndexOutOfRange rather than silently substituting a placeholder (spec.md
// §7 invariant: every stored index must be < len of its pool).
func poolString(pool *ConstantPool, idx uint32) (string, error) {
	if int(idx) >= len(pool.Strings) {
		return "", &IndexOutOfRange{Pool: "strings", Index: idx, Len: len(pool.Strings)}
	}
	return pool.Strings[idx], nil
}

// Trait is a named slot on a class, instance, script, or method body: a
// field, method, getter, setter, class, function, or constant (spec.md
// §3). Payload carries the kind-specific fields as a tagged variant.
type Trait struct {
	NameIndex       uint32 // into multiname_pool
	Kind            uint8  // raw kind byte: low nibble selects Payload, high nibble carries flags
	Payload         TraitPayload
	MetadataIndices []uint32 // present iff (Kind>>4)&0x04 != 0; nil otherwise
}

// Trait kind tags (low nibble of Trait.Kind), spec.md §6.
const (
	TraitKindSlot     uint8 = 0
	TraitKindMethod   uint8 = 1
	TraitKindGetter   uint8 = 2
	TraitKindSetter   uint8 = 3
	TraitKindClass    uint8 = 4
	TraitKindFunction uint8 = 5
	TraitKindConst    uint8 = 6
)

// traitMetadataFlag is the high-nibble bit indicating metadata indices
// follow the trait's kind-specific payload.
const traitMetadataFlag uint8 = 0x04

// TraitPayload is the tagged-variant payload of a Trait; concrete type is
// selected by Trait.Kind & 0x0F.
type TraitPayload interface {
	isTraitPayload()
}

// SlotTrait is the payload for TraitKindSlot and TraitKindConst: a storage
// slot with an optional constant initializer.
type SlotTrait struct {
	SlotID   uint32
	TypeName uint32 // into multiname_pool
	VIndex   uint32 // into the pool VKind selects; 0 means "no initial value"
	VKind    uint8  // present iff VIndex != 0
}

func (SlotTrait) isTraitPayload() {}

// DispatchTrait is the payload for TraitKindMethod, TraitKindGetter,
// TraitKindSetter, TraitKindClass, and TraitKindFunction: a vtable dispatch
// id plus an index into method_info (Method/Getter/Setter/Function) or the
// class table (Class).
type DispatchTrait struct {
	DispID uint32
	Index  uint32
}

func (DispatchTrait) isTraitPayload() {}

func readTrait(r *reader) (Trait, error) {
	var t Trait
	nameIdx, err := r.readULEB128()
	if err != nil {
		return t, err
	}
	t.NameIndex = nameIdx

	kind, err := r.readU8()
	if err != nil {
		return t, err
	}
	t.Kind = kind

	switch kind & 0x0F {
	case TraitKindSlot, TraitKindConst:
		slotID, err := r.readULEB128()
		if err != nil {
			return t, err
		}
		typeName, err := r.readULEB128()
		if err != nil {
			return t, err
		}
		vindex, err := r.readULEB128()
		if err != nil {
			return t, err
		}
		var vkind uint8
		if vindex != 0 {
			vkind, err = r.readU8()
			if err != nil {
				return t, err
			}
		}
		t.Payload = SlotTrait{SlotID: slotID, TypeName: typeName, VIndex: vindex, VKind: vkind}
	case TraitKindMethod, TraitKindGetter, TraitKindSetter, TraitKindClass, TraitKindFunction:
		dispID, err := r.readULEB128()
		if err != nil {
			return t, err
		}
		index, err := r.readULEB128()
		if err != nil {
			return t, err
		}
		t.Payload = DispatchTrait{DispID: dispID, Index: index}
	default:
		return t, &BadTrait{Kind: kind}
	}

	if kind>>4&traitMetadataFlag != 0 {
		metaCount, err := r.readULEB128()
		if err != nil {
			return t, err
		}
		t.MetadataIndices = make([]uint32, metaCount)
		for i := range t.MetadataIndices {
			v, err := r.readULEB128()
			if err != nil {
				return t, err
			}
			t.MetadataIndices[i] = v
		}
	}

	return t, nil
}

func readTraits(r *reader) ([]Trait, error) {
	count, err := r.readULEB128()
	if err != nil {
		return nil, err
	}
	traits := make([]Trait, count)
	for i := range traits {
		t, err := readTrait(r)
		if err != nil {
			return nil, err
		}
		traits[i] = t
	}
	return traits, nil
}

// writeTrait serialises t. When preserveMetadata is false, any attached
// metadata is dropped and the high-nibble flag bit cleared, matching the
// source writer's lossy behaviour (spec.md §4.C, §9).
func writeTrait(w *writer, t Trait, preserveMetadata bool) {
	w.writeULEB128(t.NameIndex)

	kind := t.Kind
	hasMetadata := kind>>4&traitMetadataFlag != 0 && len(t.MetadataIndices) > 0 && preserveMetadata
	if !hasMetadata {
		kind &^= traitMetadataFlag << 4
	}
	w.writeU8(kind)

	switch p := t.Payload.(type) {
	case SlotTrait:
		w.writeULEB128(p.SlotID)
		w.writeULEB128(p.TypeName)
		w.writeULEB128(p.VIndex)
		if p.VIndex != 0 {
			w.writeU8(p.VKind)
		}
	case DispatchTrait:
		w.writeULEB128(p.DispID)
		w.writeULEB128(p.Index)
	}

	if hasMetadata {
		w.writeULEB128(uint32(len(t.MetadataIndices)))
		for _, idx := range t.MetadataIndices {
			w.writeULEB128(idx)
		}
	}
}

func writeTraits(w *writer, traits []Trait, preserveMetadata bool) {
	w.writeULEB128(uint32(len(traits)))
	for _, t := range traits {
		writeTrait(w, t, preserveMetadata)
	}
}

// InstanceInfo describes the instance side of a class: its name, base
// class, interfaces, instance initializer, and instance traits.
type InstanceInfo struct {
	Name         uint32 // into multiname_pool
	Super        uint32 // into multiname_pool
	Flags        uint8
	ProtectedNS  *uint32 // into namespace_pool; present iff Flags&0x08 != 0
	Interfaces   []uint32 // into multiname_pool
	IInit        uint32   // into method_info
	Traits       []Trait
}

// ProtectedNSFlag marks that InstanceInfo.ProtectedNS is present.
const ProtectedNSFlag uint8 = 0x08

func readInstanceInfo(r *reader) (InstanceInfo, error) {
	var inst InstanceInfo
	name, err := r.readULEB128()
	if err != nil {
		return inst, err
	}
	super, err := r.readULEB128()
	if err != nil {
		return inst, err
	}
	flags, err := r.readU8()
	if err != nil {
		return inst, err
	}
	inst.Name, inst.Super, inst.Flags = name, super, flags

	if flags&ProtectedNSFlag != 0 {
		ns, err := r.readULEB128()
		if err != nil {
			return inst, err
		}
		inst.ProtectedNS = &ns
	}

	intfCount, err := r.readULEB128()
	if err != nil {
		return inst, err
	}
	inst.Interfaces = make([]uint32, intfCount)
	for i := range inst.Interfaces {
		v, err := r.readULEB128()
		if err != nil {
			return inst, err
		}
		inst.Interfaces[i] = v
	}

	iinit, err := r.readULEB128()
	if err != nil {
		return inst, err
	}
	inst.IInit = iinit

	traits, err := readTraits(r)
	if err != nil {
		return inst, err
	}
	inst.Traits = traits
	return inst, nil
}

func writeInstanceInfo(w *writer, inst InstanceInfo, preserveMetadata bool) {
	w.writeULEB128(inst.Name)
	w.writeULEB128(inst.Super)
	w.writeU8(inst.Flags)
	if inst.ProtectedNS != nil {
		w.writeULEB128(*inst.ProtectedNS)
	}
	w.writeULEB128(uint32(len(inst.Interfaces)))
	for _, i := range inst.Interfaces {
		w.writeULEB128(i)
	}
	w.writeULEB128(inst.IInit)
	writeTraits(w, inst.Traits, preserveMetadata)
}

// ClassInfo is the static side of a class. class_pool and instance_pool are
// parallel arrays: ClassInfo at index i is the static side of InstanceInfo
// at index i (spec.md §3, invariant 3).
type ClassInfo struct {
	CInit  uint32 // into method_info
	Traits []Trait
}

func readClassInfo(r *reader) (ClassInfo, error) {
	var c ClassInfo
	cinit, err := r.readULEB128()
	if err != nil {
		return c, err
	}
	c.CInit = cinit
	traits, err := readTraits(r)
	if err != nil {
		return c, err
	}
	c.Traits = traits
	return c, nil
}

func writeClassInfo(w *writer, c ClassInfo, preserveMetadata bool) {
	w.writeULEB128(c.CInit)
	writeTraits(w, c.Traits, preserveMetadata)
}

// ScriptInfo is a top-level script record: an initializer method plus the
// traits it exposes globally.
type ScriptInfo struct {
	Init   uint32 // into method_info
	Traits []Trait
}

func readScriptInfo(r *reader) (ScriptInfo, error) {
	var s ScriptInfo
	init, err := r.readULEB128()
	if err != nil {
		return s, err
	}
	s.Init = init
	traits, err := readTraits(r)
	if err != nil {
		return s, err
	}
	s.Traits = traits
	return s, nil
}

func writeScriptInfo(w *writer, s ScriptInfo, preserveMetadata bool) {
	w.writeULEB128(s.Init)
	writeTraits(w, s.Traits, preserveMetadata)
}
