// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package abc

import (
	"strconv"

	"github.com/hashicorp/go-version"

	"github.com/saferwall/swfabc/log"
)

// Options controls decode/encode behaviour for a Unit where the wire format
// is ambiguous or where this package diverges from the source decoder on
// purpose (spec.md §9, Open Questions).
type Options struct {
	// StrictLEB128 turns a ULEB128 continuation sequence longer than five
	// groups into a Truncated error instead of silently clamping to 35 bits.
	StrictLEB128 bool
	// PreserveMetadata keeps trait metadata indices on write. When false
	// (the default, matching the source writer), metadata is dropped and
	// the high-nibble flag bit on the trait's kind byte is cleared.
	PreserveMetadata bool
	// CanonicalSLEB128 switches Write to the canonical sign-extended LEB128
	// encoding for signed 32-bit values instead of the default wrap-to-u32
	// form. Only useful for interop with tools that expect canonical LEB128;
	// the default matches the normative wire behaviour this package targets.
	CanonicalSLEB128 bool

	// Logger receives decode/encode diagnostics; nil disables logging.
	Logger log.Logger
}

// Unit is a fully decoded ABC file: one version pair, one constant pool, and
// the six parallel/indexed tables hanging off it (spec.md §3).
type Unit struct {
	MinorVersion uint16
	MajorVersion uint16

	Pool *ConstantPool

	Methods   []MethodInfo
	Metadata  []Metadata
	Instances []InstanceInfo
	Classes   []ClassInfo
	Scripts   []ScriptInfo
	Bodies    []MethodBody

	opts Options
}

// NewUnit returns an empty Unit ready for incremental construction: an
// empty-with-sentinel constant pool and zero-length tables.
func NewUnit(opts Options) *Unit {
	return &Unit{Pool: newConstantPool(), opts: opts}
}

// Read decodes data as a complete ABC file body (spec.md §6): the version
// pair, the constant pool, then the method_info, metadata, instance/class,
// script, and method_body tables in that fixed order.
func Read(data []byte, opts Options) (*Unit, error) {
	if opts.Logger != nil {
		opts.Logger.Debugf("abc: decoding %d bytes", len(data))
	}
	r := newReader(data, opts.StrictLEB128)
	u := &Unit{Pool: newConstantPool(), opts: opts}

	minor, err := r.readU16()
	if err != nil {
		return nil, err
	}
	major, err := r.readU16()
	if err != nil {
		return nil, err
	}
	u.MinorVersion, u.MajorVersion = minor, major

	if err := u.Pool.read(r); err != nil {
		return nil, err
	}

	methodCount, err := r.readULEB128()
	if err != nil {
		return nil, err
	}
	u.Methods = make([]MethodInfo, methodCount)
	for i := range u.Methods {
		m, err := readMethodInfo(r, u.Pool)
		if err != nil {
			return nil, err
		}
		u.Methods[i] = m
	}

	metaCount, err := r.readULEB128()
	if err != nil {
		return nil, err
	}
	u.Metadata = make([]Metadata, metaCount)
	for i := range u.Metadata {
		md, err := readMetadata(r, u.Pool)
		if err != nil {
			return nil, err
		}
		u.Metadata[i] = md
	}

	classCount, err := r.readULEB128()
	if err != nil {
		return nil, err
	}
	u.Instances = make([]InstanceInfo, classCount)
	for i := range u.Instances {
		inst, err := readInstanceInfo(r)
		if err != nil {
			return nil, err
		}
		u.Instances[i] = inst
	}
	u.Classes = make([]ClassInfo, classCount)
	for i := range u.Classes {
		c, err := readClassInfo(r)
		if err != nil {
			return nil, err
		}
		u.Classes[i] = c
	}

	scriptCount, err := r.readULEB128()
	if err != nil {
		return nil, err
	}
	u.Scripts = make([]ScriptInfo, scriptCount)
	for i := range u.Scripts {
		s, err := readScriptInfo(r)
		if err != nil {
			return nil, err
		}
		u.Scripts[i] = s
	}

	bodyCount, err := r.readULEB128()
	if err != nil {
		return nil, err
	}
	u.Bodies = make([]MethodBody, bodyCount)
	for i := range u.Bodies {
		b, err := readMethodBody(r)
		if err != nil {
			return nil, err
		}
		u.Bodies[i] = b
	}

	return u, nil
}

// Write re-encodes u in the same fixed order Read expects.
func (u *Unit) Write() []byte {
	w := newWriter()
	w.writeU16(u.MinorVersion)
	w.writeU16(u.MajorVersion)

	// Metadata entries reference strings by value, not by pool index, so any
	// key/value this unit hasn't interned yet must be resolved before the
	// string pool itself is serialised below — otherwise the index handed
	// out here would point past what Pool.write already wrote.
	var metaKeyIdx, metaValIdx [][]uint32
	if u.opts.PreserveMetadata {
		metaKeyIdx = make([][]uint32, len(u.Metadata))
		metaValIdx = make([][]uint32, len(u.Metadata))
		for i, md := range u.Metadata {
			keys := make([]uint32, len(md.Entries))
			vals := make([]uint32, len(md.Entries))
			for j, e := range md.Entries {
				keys[j] = u.Pool.ensureString(e.Key)
				vals[j] = u.Pool.ensureString(e.Value)
			}
			metaKeyIdx[i], metaValIdx[i] = keys, vals
		}
	}

	u.Pool.write(w, u.opts.CanonicalSLEB128)

	w.writeULEB128(uint32(len(u.Methods)))
	for _, m := range u.Methods {
		writeMethodInfo(w, m)
	}

	// spec.md §4.G / §9: the unit-level metadata table is lossy by default
	// (uleb128(0), metadata discarded); PreserveMetadata opts into retaining
	// it instead.
	if u.opts.PreserveMetadata {
		w.writeULEB128(uint32(len(u.Metadata)))
		for i, md := range u.Metadata {
			w.writeULEB128(md.Name)
			w.writeULEB128(uint32(len(md.Entries)))
			for j := range md.Entries {
				w.writeULEB128(metaKeyIdx[i][j])
				w.writeULEB128(metaValIdx[i][j])
			}
		}
	} else {
		w.writeULEB128(0)
	}

	w.writeULEB128(uint32(len(u.Instances)))
	for _, inst := range u.Instances {
		writeInstanceInfo(w, inst, u.opts.PreserveMetadata)
	}
	for _, c := range u.Classes {
		writeClassInfo(w, c, u.opts.PreserveMetadata)
	}

	w.writeULEB128(uint32(len(u.Scripts)))
	for _, s := range u.Scripts {
		writeScriptInfo(w, s, u.opts.PreserveMetadata)
	}

	w.writeULEB128(uint32(len(u.Bodies)))
	for _, b := range u.Bodies {
		writeMethodBody(w, b, u.opts.PreserveMetadata)
	}

	return w.bytes()
}

// EnsureString interns s into the unit's string pool.
func (u *Unit) EnsureString(s string) uint32 { return u.Pool.ensureString(s) }

// EnsureNamespace interns a public namespace named name into the unit's
// namespace pool.
func (u *Unit) EnsureNamespace(name string) uint32 { return u.Pool.ensureNamespace(name) }

// EnsureMultiname interns a QName multiname referencing the given string and
// namespace pool indices.
func (u *Unit) EnsureMultiname(nameIndex, nsIndex uint32) uint32 {
	return u.Pool.ensureMultiname(nameIndex, nsIndex)
}

// FindMultiname looks up an existing QName multiname by its resolved name
// and namespace strings.
func (u *Unit) FindMultiname(propName, namespace string) (uint32, bool) {
	return u.Pool.findMultiname(propName, namespace)
}

// AVM2Version reports the AVM2 bytecode version this unit declares, as a
// comparable semantic version built from MajorVersion.MinorVersion. AVM2
// tools in practice only ever emit major=46, minor=16; this is mostly useful
// for flagging a unit that claims some other pair.
func (u *Unit) AVM2Version() (*version.Version, error) {
	v := strconv.Itoa(int(u.MajorVersion)) + "." + strconv.Itoa(int(u.MinorVersion))
	return version.NewVersion(v)
}
