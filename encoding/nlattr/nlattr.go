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

// Package nlattr implements the netlink attribute (TLV) wire format and the
// primitive codecs that compiled schemas are built from.
//
// An attribute is a 4-byte header (u16 length, u16 type) followed by its
// payload. The length counts the header but not the padding that aligns
// the next attribute to a 4-byte boundary. Headers use the host byte order.
package nlattr

import (
	"iter"
)

const (
	HeaderLen = 4
	Alignment = 4

	// MaxLen is the largest encodable attribute, header included.
	MaxLen = 0xFFFF

	TypeMask         = 0x3FFF
	FlagNested       = 0x8000
	FlagNetByteOrder = 0x4000
)

// Align rounds n up to the attribute alignment.
func Align(n int) int {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// Attr is a parsed attribute header with its payload.
type Attr struct {
	Type         uint16
	Nested       bool
	NetByteOrder bool
	Data         []byte
}

// ParseAttr parses the attribute at the start of buf. It returns the
// attribute and the length recorded in its header, which excludes padding.
func ParseAttr(buf []byte) (Attr, int, error) {
	if len(buf) < HeaderLen {
		return Attr{}, 0, errLength(ErrTruncated, HeaderLen, len(buf))
	}
	length := int(NativeEndian.Uint16(buf[0:2]))
	rawType := NativeEndian.Uint16(buf[2:4])
	if length < HeaderLen || length > len(buf) {
		return Attr{}, 0, errLength(ErrTruncated, length, len(buf))
	}
	return Attr{
		Type:         rawType & TypeMask,
		Nested:       rawType&FlagNested != 0,
		NetByteOrder: rawType&FlagNetByteOrder != 0,
		Data:         buf[HeaderLen:length],
	}, length, nil
}

// Walk calls fn for each attribute in buf, in order. Padding after the final
// attribute is optional.
func Walk(buf []byte, fn func(Attr) error) error {
	for attr, err := range Attrs(buf) {
		if err != nil {
			return err
		}
		if err := fn(attr); err != nil {
			return err
		}
	}
	return nil
}

// Attrs iterates over the attributes in buf. Iteration stops after the
// first error.
func Attrs(buf []byte) iter.Seq2[Attr, error] {
	return func(yield func(Attr, error) bool) {
		for len(buf) > 0 {
			attr, length, err := ParseAttr(buf)
			if err != nil {
				yield(Attr{}, err)
				return
			}
			if !yield(attr, nil) {
				return
			}
			length = Align(length)
			if length >= len(buf) {
				return
			}
			buf = buf[length:]
		}
	}
}

// A Writer accumulates a stream of attributes. Padding is written before
// each attribute except the first, so the stream never ends in padding.
//
// The zero value is an empty stream ready for use.
type Writer struct {
	buf []byte
}

// Put appends an attribute with the given type and payload.
func (w *Writer) Put(typ uint16, payload []byte) error {
	if typ > TypeMask {
		return errLength(ErrAttrTypeRange, TypeMask, int(typ))
	}
	length := HeaderLen + len(payload)
	if length > MaxLen {
		return errLength(ErrAttrTooLong, MaxLen, length)
	}
	w.pad()
	var hdr [HeaderLen]byte
	NativeEndian.PutUint16(hdr[0:2], uint16(length))
	NativeEndian.PutUint16(hdr[2:4], typ)
	w.buf = append(w.buf, hdr[:]...)
	w.buf = append(w.buf, payload...)
	return nil
}

func (w *Writer) pad() {
	for len(w.buf)%Alignment != 0 {
		w.buf = append(w.buf, 0)
	}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the encoded stream. It is never nil.
func (w *Writer) Bytes() []byte {
	if w.buf == nil {
		return []byte{}
	}
	return w.buf
}
