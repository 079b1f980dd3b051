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

package nlattr_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.nlgen.org/nlgen"
	"go.nlgen.org/nlgen/encoding/nlattr"
)

func attr(typ uint16, payload ...byte) []byte {
	buf := make([]byte, nlattr.HeaderLen, nlattr.HeaderLen+len(payload))
	nlattr.NativeEndian.PutUint16(buf[0:2], uint16(nlattr.HeaderLen+len(payload)))
	nlattr.NativeEndian.PutUint16(buf[2:4], typ)
	return append(buf, payload...)
}

func stream(attrs ...[]byte) []byte {
	var buf []byte
	for _, a := range attrs {
		for len(buf)%nlattr.Alignment != 0 {
			buf = append(buf, 0)
		}
		buf = append(buf, a...)
	}
	return buf
}

func TestParseNumber(t *testing.T) {
	testcases := []struct {
		Name  string
		Kind  nlattr.NumberKind
		Size  int
		Order binary.ByteOrder
	}{
		{"u8", nlattr.Unsigned, 1, nlattr.NativeEndian},
		{"u16", nlattr.Unsigned, 2, nlattr.NativeEndian},
		{"u32be", nlattr.Unsigned, 4, binary.BigEndian},
		{"s64le", nlattr.Signed, 8, binary.LittleEndian},
		{"s16", nlattr.Signed, 2, nlattr.NativeEndian},
		{"f32", nlattr.Float, 4, nlattr.NativeEndian},
		{"f64be", nlattr.Float, 8, binary.BigEndian},
	}
	for _, tc := range testcases {
		t.Run(tc.Name, func(t *testing.T) {
			num, ok := nlattr.ParseNumber(tc.Name)
			require.True(t, ok)
			assert.Equal(t, tc.Kind, num.Kind)
			assert.Equal(t, tc.Size, num.Size)
			assert.Equal(t, tc.Order, num.Order)
		})
	}

	for _, name := range []string{"u24", "f8", "f16", "i32", "u32ne", "U32", "string"} {
		_, ok := nlattr.ParseNumber(name)
		assert.False(t, ok, name)
	}
}

func TestNumberCodec(t *testing.T) {
	u16be, _ := nlattr.ParseNumber("u16be")
	data, err := u16be.Put(0x1234)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x34}, data)

	v, err := u16be.Get([]byte{0xAB, 0xCD})
	require.NoError(t, err)
	assert.Equal(t, uint16(0xABCD), v)

	s32le, _ := nlattr.ParseNumber("s32le")
	data, err = s32le.Put(int64(-2))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 0xFF, 0xFF, 0xFF}, data)
	v, err = s32le.Get(data)
	require.NoError(t, err)
	assert.Equal(t, int32(-2), v)

	f64be, _ := nlattr.ParseNumber("f64be")
	data, err = f64be.Put(1.5)
	require.NoError(t, err)
	v, err = f64be.Get(data)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	u64, _ := nlattr.ParseNumber("u64")
	data, err = u64.Put(uint64(math.MaxUint64))
	require.NoError(t, err)
	v, err = u64.Get(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), v)
}

func TestNumberRange(t *testing.T) {
	u8, _ := nlattr.ParseNumber("u8")
	_, err := u8.Put(256)
	assert.ErrorIs(t, err, nlattr.ErrOutOfRange)
	_, err = u8.Put(-1)
	assert.ErrorIs(t, err, nlattr.ErrOutOfRange)

	s8, _ := nlattr.ParseNumber("s8")
	_, err = s8.Put(-129)
	assert.ErrorIs(t, err, nlattr.ErrOutOfRange)
	_, err = s8.Put(uint8(200))
	assert.ErrorIs(t, err, nlattr.ErrOutOfRange)
	data, err := s8.Put(-128)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80}, data)

	_, err = u8.Put("1")
	assert.ErrorIs(t, err, nlattr.ErrTypeMismatch)
}

func TestNumberCheckBits(t *testing.T) {
	u8, _ := nlattr.ParseNumber("u8")
	assert.NoError(t, u8.CheckBits(0xFF))
	err := u8.CheckBits(0x100)
	assert.ErrorIs(t, err, nlattr.ErrOutOfRange)
	assert.EqualError(t, err, "nlattr: Value out of range: 0x100 does not fit in u8")

	s16, _ := nlattr.ParseNumber("s16be")
	assert.NoError(t, s16.CheckBits(0xFFFF))
	assert.ErrorIs(t, s16.CheckBits(0x10000), nlattr.ErrOutOfRange)

	u64, _ := nlattr.ParseNumber("u64")
	assert.NoError(t, u64.CheckBits(1<<63))
}

func TestNumberLength(t *testing.T) {
	u32, _ := nlattr.ParseNumber("u32")
	_, err := u32.Get([]byte{1, 2, 3})
	var lengthErr *nlattr.LengthError
	require.ErrorAs(t, err, &lengthErr)
	assert.Equal(t, 4, lengthErr.Want)
	assert.Equal(t, 3, lengthErr.Got)
	assert.ErrorIs(t, err, nlattr.ErrLengthIncorrect)
}

func TestString(t *testing.T) {
	s, err := nlattr.GetString([]byte("nlctrl\x00"), 0)
	require.NoError(t, err)
	assert.Equal(t, "nlctrl", s)

	_, err = nlattr.GetString([]byte("nlctrl"), 0)
	assert.ErrorIs(t, err, nlattr.ErrNotTerminated)
	_, err = nlattr.GetString(nil, 0)
	assert.ErrorIs(t, err, nlattr.ErrNotTerminated)

	_, err = nlattr.GetString([]byte("abcd\x00"), 4)
	assert.ErrorIs(t, err, nlattr.ErrMaxLength)
	s, err = nlattr.GetString([]byte("abc\x00"), 4)
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	data, err := nlattr.PutString("abc", 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc\x00"), data)
	_, err = nlattr.PutString("abcd", 4)
	assert.ErrorIs(t, err, nlattr.ErrMaxLength)
}

func TestBoolAndFlag(t *testing.T) {
	b, err := nlattr.GetBool([]byte{1})
	require.NoError(t, err)
	assert.True(t, b)
	_, err = nlattr.GetBool([]byte{2})
	assert.ErrorIs(t, err, nlattr.ErrInvalidBool)
	_, err = nlattr.GetBool([]byte{})
	assert.ErrorIs(t, err, nlattr.ErrLengthIncorrect)

	present, err := nlattr.GetFlag(nil)
	require.NoError(t, err)
	assert.True(t, present)
	_, err = nlattr.GetFlag([]byte{0})
	assert.ErrorIs(t, err, nlattr.ErrLengthIncorrect)
}

func TestWalk(t *testing.T) {
	buf := stream(
		attr(1, 'a', 'b', 'c', 0),
		attr(2|nlattr.FlagNested),
		attr(3, 7),
	)
	var got []nlattr.Attr
	err := nlattr.Walk(buf, func(a nlattr.Attr) error {
		got = append(got, a)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, uint16(1), got[0].Type)
	assert.Equal(t, []byte("abc\x00"), got[0].Data)
	assert.Equal(t, uint16(2), got[1].Type)
	assert.True(t, got[1].Nested)
	assert.Empty(t, got[1].Data)
	assert.Equal(t, []byte{7}, got[2].Data)
}

func TestWalkTruncated(t *testing.T) {
	buf := attr(1, 1, 2, 3, 4)
	err := nlattr.Walk(buf[:6], func(nlattr.Attr) error { return nil })
	assert.ErrorIs(t, err, nlattr.ErrTruncated)

	err = nlattr.Walk([]byte{8, 0}, func(nlattr.Attr) error { return nil })
	assert.ErrorIs(t, err, nlattr.ErrTruncated)
}

func TestWriter(t *testing.T) {
	var w nlattr.Writer
	assert.Equal(t, []byte{}, w.Bytes())

	require.NoError(t, w.Put(1, []byte{0xAA}))
	require.NoError(t, w.Put(2, []byte{0xBB, 0xCC}))
	assert.Equal(t, stream(attr(1, 0xAA), attr(2, 0xBB, 0xCC)), w.Bytes())
	assert.Equal(t, 14, w.Len())

	err := w.Put(nlattr.TypeMask+1, nil)
	assert.ErrorIs(t, err, nlattr.ErrAttrTypeRange)
	err = w.Put(3, make([]byte, nlattr.MaxLen))
	assert.ErrorIs(t, err, nlattr.ErrAttrTooLong)
}

func TestObject(t *testing.T) {
	u8, _ := nlattr.ParseNumber("u8")
	decoders := map[uint16]nlattr.FieldDecoder{
		1: func(data []byte, obj nlgen.Object) error {
			v, err := nlattr.GetString(data, 0)
			obj["name"] = v
			return err
		},
		2: func(data []byte, obj nlgen.Object) error {
			v, err := u8.Get(data)
			obj["level"] = v
			return err
		},
	}

	buf := stream(attr(1, 'x', 0), attr(9, 1, 2), attr(2, 5))
	obj, err := nlattr.GetObject(buf, decoders)
	require.NoError(t, err)
	assert.Equal(t, nlgen.Object{"name": "x", "level": uint8(5)}, obj)

	_, err = nlattr.GetObject(attr(2|nlattr.FlagNetByteOrder, 5), decoders)
	assert.ErrorIs(t, err, nlattr.ErrNetByteOrder)

	encoders := []nlattr.FieldEncoder{
		{Name: "name", Encode: func(w *nlattr.Writer, v any) error {
			data, err := nlattr.PutString(v, 0)
			if err != nil {
				return err
			}
			return w.Put(1, data)
		}},
		{Name: "level", Encode: func(w *nlattr.Writer, v any) error {
			data, err := u8.Put(v)
			if err != nil {
				return err
			}
			return w.Put(2, data)
		}},
	}
	var w nlattr.Writer
	require.NoError(t, nlattr.PutObject(&w, nlgen.Object{"level": 5, "name": "x"}, encoders))
	assert.Equal(t, stream(attr(1, 'x', 0), attr(2, 5)), w.Bytes())

	err = nlattr.PutObject(&w, nlgen.Object{"nmae": "x"}, encoders)
	assert.ErrorIs(t, err, nlattr.ErrUnknownKey)
}

func TestArray(t *testing.T) {
	u8, _ := nlattr.ParseNumber("u8")

	items, err := nlattr.GetArray(stream(attr(1, 10), attr(2, 20)), false, u8.Get)
	require.NoError(t, err)
	assert.Equal(t, []any{uint8(10), uint8(20)}, items)

	items, err = nlattr.GetArray(stream(attr(0, 10), attr(1, 20)), true, u8.Get)
	require.NoError(t, err)
	assert.Equal(t, []any{uint8(10), uint8(20)}, items)

	_, err = nlattr.GetArray(stream(attr(1, 10), attr(3, 20)), false, u8.Get)
	assert.ErrorIs(t, err, nlattr.ErrNonSequential)

	items, err = nlattr.GetArray(nil, false, u8.Get)
	require.NoError(t, err)
	assert.Empty(t, items)

	var w nlattr.Writer
	require.NoError(t, nlattr.PutArray(&w, []uint8{10, 20}, true, u8.Put))
	assert.Equal(t, stream(attr(0, 10), attr(1, 20)), w.Bytes())

	err = nlattr.PutArray(&w, "abc", false, u8.Put)
	assert.ErrorIs(t, err, nlattr.ErrTypeMismatch)
}

func TestMap(t *testing.T) {
	u8, _ := nlattr.ParseNumber("u8")

	entries, err := nlattr.GetMap(stream(attr(7, 1), attr(3, 2)), u8.Get)
	require.NoError(t, err)
	assert.Equal(t, map[uint16]any{7: uint8(1), 3: uint8(2)}, entries)

	var w nlattr.Writer
	require.NoError(t, nlattr.PutMap(&w, map[int]uint8{7: 1, 3: 2}, u8.Put))
	assert.Equal(t, stream(attr(3, 2), attr(7, 1)), w.Bytes())

	err = nlattr.PutMap(&w, map[int]uint8{-1: 1}, u8.Put)
	assert.ErrorIs(t, err, nlattr.ErrAttrTypeRange)
}

func TestEnum(t *testing.T) {
	names := map[int64]string{0: "unspec", 1: "newfamily"}
	values := map[string]int64{"unspec": 0, "newfamily": 1}

	assert.Equal(t, "newfamily", nlattr.GetEnum(names, uint8(1)))
	assert.Equal(t, uint8(42), nlattr.GetEnum(names, uint8(42)))

	v, err := nlattr.PutEnum(values, "newfamily")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	v, err = nlattr.PutEnum(values, uint8(42))
	require.NoError(t, err)
	assert.Equal(t, uint8(42), v)
	_, err = nlattr.PutEnum(values, "delfamily")
	assert.ErrorIs(t, err, nlattr.ErrUnknownName)
}
