// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package swf

import "fmt"

// UnsupportedSignature is returned when the first three bytes are neither
// FWS nor CWS.
type UnsupportedSignature struct {
	Signature [3]byte
}

func (e *UnsupportedSignature) Error() string {
	return fmt.Sprintf("swf: unsupported signature %q", e.Signature[:])
}

// TagTooLarge is returned when a tag's decoded length exceeds
// Options.MaxTagSize.
type TagTooLarge struct {
	Code byte
	Len  uint32
	Max  uint32
}

func (e *TagTooLarge) Error() string {
	return fmt.Sprintf("swf: tag 0x%02x length %d exceeds max %d", e.Code, e.Len, e.Max)
}
