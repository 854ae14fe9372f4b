// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package swf

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/saferwall/swfabc"
)

// reader is a minimal little-endian cursor over a byte buffer, sized for
// the handful of primitives the container format needs — a scaled-down
// sibling of the codec abc uses internally for the ABC wire format itself.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader { return &reader{buf: buf} }

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) need(n int) error {
	if n < 0 || r.remaining() < n {
		return &abc.Truncated{Offset: r.pos, Want: n, Have: r.remaining()}
	}
	return nil
}

func (r *reader) readU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) readU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) readU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// readCString reads a NUL-terminated string, consuming the terminator.
func (r *reader) readCString() (string, error) {
	start := r.pos
	for {
		b, err := r.readU8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			raw := r.buf[start : r.pos-1]
			if !utf8.Valid(raw) {
				return "", &abc.BadEncoding{Offset: start}
			}
			return string(raw), nil
		}
	}
}
