// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package abc

import (
	"strings"
	"testing"
)

func TestErrorMessagesMentionKeyFields(t *testing.T) {
	cases := []struct {
		err  error
		want []string
	}{
		{&Truncated{Offset: 5, Want: 4, Have: 1}, []string{"5", "4", "1"}},
		{&BadEncoding{Offset: 12}, []string{"12"}},
		{&BadMultiname{Kind: 0x0f}, []string{"0x0f"}},
		{&BadTrait{Kind: 0x42}, []string{"0x02"}}, // masked to low nibble
		{&UnknownOpcode{Byte: 0xfe, Address: 7}, []string{"0xfe", "7"}},
		{&BadArgKind{Tag: "weird"}, []string{"weird"}},
		{&IndexOutOfRange{Pool: "strings", Index: 9, Len: 3}, []string{"9", "strings", "3"}},
	}
	for _, c := range cases {
		msg := c.err.Error()
		for _, want := range c.want {
			if !strings.Contains(msg, want) {
				t.Errorf("%T.Error() = %q, want substring %q", c.err, msg, want)
			}
		}
	}
}
