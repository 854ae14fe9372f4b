// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package swf

// Fuzz is a go-fuzz entry point exercising NewBytes against arbitrary SWF
// input, including the CWS decompression path.
func Fuzz(data []byte) int {
	f, err := NewBytes(data, nil)
	if err != nil {
		return 0
	}
	_ = f
	return 1
}
