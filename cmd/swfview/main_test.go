// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/saferwall/swfabc"
	"github.com/saferwall/swfabc/swf"
)

func TestBodyItemTitleAndDescription(t *testing.T) {
	item := bodyItem{
		unitName: "frame1",
		index:    0,
		body: abc.MethodBody{
			MethodIndex: 3,
			LocalCount:  2,
			Code:        []byte{0x02, 0x47},
			Exceptions:  []abc.ExceptionEntry{{From: 0, To: 1, Target: 1}},
		},
	}

	if got, want := item.Title(), "frame1: method 3"; got != want {
		t.Errorf("Title() = %q, want %q", got, want)
	}
	if got, want := item.Description(), "2 bytes, 2 locals, 1 exceptions"; got != want {
		t.Errorf("Description() = %q, want %q", got, want)
	}
	if item.FilterValue() != item.Title() {
		t.Errorf("FilterValue() = %q, want %q", item.FilterValue(), item.Title())
	}
}

func TestToListItemsPreservesOrder(t *testing.T) {
	items := []bodyItem{
		{unitName: "a", body: abc.MethodBody{MethodIndex: 0}},
		{unitName: "b", body: abc.MethodBody{MethodIndex: 1}},
	}
	out := toListItems(items)
	if len(out) != 2 {
		t.Fatalf("expected 2 list items, got %d", len(out))
	}
	if out[0].(bodyItem).unitName != "a" || out[1].(bodyItem).unitName != "b" {
		t.Errorf("toListItems reordered items: %+v", out)
	}
}

func TestCollectBodiesSortedByUnitName(t *testing.T) {
	file := &swf.File{
		ABCs: map[string]*abc.Unit{
			"zframe": {Bodies: []abc.MethodBody{{MethodIndex: 0}}},
			"aframe": {Bodies: []abc.MethodBody{{MethodIndex: 1}, {MethodIndex: 2}}},
		},
	}

	items := collectBodies(file)
	if len(items) != 3 {
		t.Fatalf("expected 3 bodies, got %d", len(items))
	}
	if items[0].unitName != "aframe" || items[1].unitName != "aframe" {
		t.Errorf("expected aframe bodies first, got %+v", items)
	}
	if items[2].unitName != "zframe" {
		t.Errorf("expected zframe body last, got %+v", items[2])
	}
}

func TestCollectBodiesEmptyFile(t *testing.T) {
	file := &swf.File{ABCs: map[string]*abc.Unit{}}
	if items := collectBodies(file); len(items) != 0 {
		t.Errorf("expected no bodies, got %d", len(items))
	}
}
