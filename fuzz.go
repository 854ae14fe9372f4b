// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package abc

// Fuzz is a go-fuzz entry point exercising Read, the method-body
// disassembler, and the Write round-trip against arbitrary input.
func Fuzz(data []byte) int {
	u, err := Read(data, Options{StrictLEB128: true})
	if err != nil {
		return 0
	}
	for _, b := range u.Bodies {
		if _, err := Disassemble(b.Code); err != nil {
			return 0
		}
	}
	_ = u.Write()
	return 1
}
