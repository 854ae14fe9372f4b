// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package abc

import (
	"reflect"
	"testing"
)

func minimalUnitBytes() []byte {
	w := newWriter()
	w.writeU16(16) // minor
	w.writeU16(46) // major

	// constant pool: every pool empty (treated as sentinel-only)
	for i := 0; i < 7; i++ {
		w.writeULEB128(0)
	}

	w.writeULEB128(0) // method_count
	w.writeULEB128(0) // metadata_count
	w.writeULEB128(0) // class_count
	w.writeULEB128(0) // script_count
	w.writeULEB128(0) // method_body_count
	return w.bytes()
}

func TestReadWriteMinimalUnit(t *testing.T) {
	u, err := Read(minimalUnitBytes(), Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if u.MinorVersion != 16 || u.MajorVersion != 46 {
		t.Fatalf("unexpected version %d.%d", u.MajorVersion, u.MinorVersion)
	}
	if len(u.Pool.Strings) != 1 {
		t.Fatalf("expected sentinel-only string pool, got %d entries", len(u.Pool.Strings))
	}

	out := u.Write()
	u2, err := Read(out, Options{})
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if u2.MinorVersion != u.MinorVersion || u2.MajorVersion != u.MajorVersion {
		t.Errorf("version mismatch after round trip")
	}
}

func TestUnitInternHelpers(t *testing.T) {
	u := NewUnit(Options{})
	strIdx := u.EnsureString("greet")
	nsIdx := u.EnsureNamespace("")
	mnIdx := u.EnsureMultiname(strIdx, nsIdx)

	got, ok := u.FindMultiname("greet", "")
	if !ok || got != mnIdx {
		t.Fatalf("FindMultiname = (%d, %v), want (%d, true)", got, ok, mnIdx)
	}
}

func TestUnitMethodsMetadataClassesScriptsBodiesRoundTrip(t *testing.T) {
	u := NewUnit(Options{PreserveMetadata: true})
	name := u.EnsureString("run")

	u.Methods = append(u.Methods, MethodInfo{Name: name, ReturnType: 0})
	u.Metadata = append(u.Metadata, Metadata{Name: name, Entries: []MetadataEntry{{Key: "k", Value: "v"}}})

	u.Instances = append(u.Instances, InstanceInfo{Name: name, Super: 0, IInit: 0})
	u.Classes = append(u.Classes, ClassInfo{CInit: 0})
	u.Scripts = append(u.Scripts, ScriptInfo{Init: 0})
	u.Bodies = append(u.Bodies, MethodBody{MethodIndex: 0, Code: []byte{0x02, 0x47}})

	out := u.Write()
	u2, err := Read(out, Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(u2.Methods) != 1 || u2.Methods[0].Name != name {
		t.Errorf("method round-trip failed: %+v", u2.Methods)
	}
	if len(u2.Instances) != 1 || len(u2.Classes) != 1 {
		t.Errorf("instance/class round-trip failed")
	}
	if len(u2.Scripts) != 1 {
		t.Errorf("script round-trip failed")
	}
	if len(u2.Bodies) != 1 || !reflect.DeepEqual(u2.Bodies[0].Code, []byte{0x02, 0x47}) {
		t.Errorf("method body round-trip failed: %+v", u2.Bodies)
	}
	if len(u2.Metadata) != 1 || len(u2.Metadata[0].Entries) != 1 ||
		u2.Metadata[0].Entries[0].Key != "k" || u2.Metadata[0].Entries[0].Value != "v" {
		t.Errorf("metadata round-trip failed: %+v", u2.Metadata)
	}
}

// Default Options discard unit-level metadata on write (spec.md §4.G,
// §9): Write must emit uleb128(0) in its place rather than the real table.
func TestUnitWriteDropsMetadataByDefault(t *testing.T) {
	u := NewUnit(Options{})
	name := u.EnsureString("run")
	u.Metadata = append(u.Metadata, Metadata{Name: name, Entries: []MetadataEntry{{Key: "k", Value: "v"}}})

	out := u.Write()
	u2, err := Read(out, Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(u2.Metadata) != 0 {
		t.Errorf("expected metadata to be discarded by default, got %+v", u2.Metadata)
	}
}

func TestAVM2Version(t *testing.T) {
	u := &Unit{MajorVersion: 46, MinorVersion: 16}
	v, err := u.AVM2Version()
	if err != nil {
		t.Fatalf("AVM2Version: %v", err)
	}
	if v.String() != "46.16.0" {
		t.Errorf("got %s, want 46.16.0", v.String())
	}
}
