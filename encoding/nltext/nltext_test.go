// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package nltext_test

import (
	"strings"
	"testing"

	"go.nlgen.org/nlgen"
	"go.nlgen.org/nlgen/encoding/nltext"
	"go.nlgen.org/nlgen/internal/testutil"
)

func tabs(s string) string {
	return strings.ReplaceAll(s, "    ", "\t")
}

func TestEncodeObject(t *testing.T) {
	obj := nlgen.Object{
		"ifname":   "eth0",
		"mtu":      uint32(1500),
		"up":       true,
		"address":  []byte{0x02, 0x00, 0xAB},
		"offset":   int16(-3),
		"ratio":    float32(0.5),
		"missing":  nil,
		"altnames": []any{"lan", "wan"},
		"stats": nlgen.Object{
			"rxPackets": uint64(10),
		},
		"ports": map[uint16]any{
			9: uint16(443),
			1: uint16(80),
		},
		"groups": []any{},
		"empty":  nlgen.Object{},
		"nested": []any{
			nlgen.Object{"id": uint32(1)},
			[]byte{0xFF},
		},
	}

	want := tabs(`address = [0x02, 0x00, 0xAB]
altnames = [
    "lan"
    "wan"
]
empty = {}
groups = []
ifname = "eth0"
mtu = 1500
nested = [
    {
        id = 1
    }
    [0xFF]
]
offset = -3
ports = {
    1 = 80
    9 = 443
}
ratio = 0.5
stats = {
    rxPackets = 10
}
up = .true
`)
	testutil.ExpectNoDiff(t, want, nltext.Encode(obj))
}

func TestEncodeQuoting(t *testing.T) {
	got := nltext.Encode(nlgen.Object{"s": "a\"b\\c\td\n\x01"})
	testutil.ExpectEq(t, `s = "a\"b\\c\td\n\x01"`+"\n", got)
}

type record struct {
	Name     string    `json:"name"`
	Count    int       `json:"count"`
	Optional string    `json:"optional,omitempty"`
	Flag     bool      `json:"flag,omitempty"`
	Docs     []string  `json:"docs,omitempty"`
	Child    *record   `json:"child,omitempty"`
	Items    []*record `json:"items"`
	Skipped  string    `json:"-"`
	internal string
}

func TestEncodeStruct(t *testing.T) {
	r := &record{
		Name:  "top",
		Docs:  []string{"first line"},
		Child: &record{Name: "child", Flag: true},
		Items: []*record{
			{Name: "a", Count: 1},
			{Name: "b", Count: 2},
		},
		Skipped:  "hidden",
		internal: "hidden",
	}

	want := tabs(`name = "top"
count = 0
docs = [
    "first line"
]
child {
    name = "child"
    count = 0
    flag = .true
}
items {
    name = "a"
    count = 1
}
items {
    name = "b"
    count = 2
}
`)
	testutil.ExpectNoDiff(t, want, nltext.Encode(r))
}

func TestEncodeUnsupported(t *testing.T) {
	var buf strings.Builder
	err := nltext.EncodeTo(42, &buf)
	testutil.AssertError(t, err)

	err = nltext.EncodeTo(nlgen.Object{"c": make(chan int)}, &buf)
	testutil.AssertError(t, err)
}
