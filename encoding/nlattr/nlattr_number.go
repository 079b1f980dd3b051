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

package nlattr

import (
	"encoding/binary"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"golang.org/x/sys/cpu"
)

// NativeEndian is the byte order of the host, used for integers whose type
// name has no "be" or "le" suffix and for attribute headers.
var NativeEndian binary.ByteOrder = nativeEndian()

func nativeEndian() binary.ByteOrder {
	if cpu.IsBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ByteOrderName returns "big" or "little" for the given order.
func ByteOrderName(order binary.ByteOrder) string {
	if order == binary.BigEndian {
		return "big"
	}
	return "little"
}

type NumberKind uint8

const (
	Unsigned NumberKind = iota
	Signed
	Float
)

// Number is the wire encoding of a fixed-width numeric primitive such as
// "u32", "s16be", or "f64".
type Number struct {
	Name  string
	Kind  NumberKind
	Size  int
	Order binary.ByteOrder
}

var numberPattern = regexp.MustCompile(`^([suf])(8|16|32|64)(be|le)?$`)

// ParseNumber parses a numeric primitive type name.
func ParseNumber(name string) (Number, bool) {
	match := numberPattern.FindStringSubmatch(name)
	if match == nil {
		return Number{}, false
	}
	width, _ := strconv.Atoi(match[2])
	num := Number{
		Name:  name,
		Size:  width / 8,
		Order: NativeEndian,
	}
	switch match[1] {
	case "s":
		num.Kind = Signed
	case "f":
		if width != 32 && width != 64 {
			return Number{}, false
		}
		num.Kind = Float
	}
	switch match[3] {
	case "be":
		num.Order = binary.BigEndian
	case "le":
		num.Order = binary.LittleEndian
	}
	return num, true
}

func (n Number) mask() uint64 {
	if n.Size == 8 {
		return math.MaxUint64
	}
	return 1<<(n.Size*8) - 1
}

// ReadBits returns the raw bits of a Size-byte buffer, zero-extended.
func (n Number) ReadBits(buf []byte) uint64 {
	switch n.Size {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(n.Order.Uint16(buf))
	case 4:
		return uint64(n.Order.Uint32(buf))
	}
	return n.Order.Uint64(buf)
}

// CheckBits reports an error if bits has any bit set above the wire width.
func (n Number) CheckBits(bits uint64) error {
	if bits&^n.mask() != 0 {
		return fmt.Errorf("%w: %#x does not fit in %s", ErrOutOfRange, bits, n.Name)
	}
	return nil
}

// WriteBits stores the low Size bytes of bits into buf.
func (n Number) WriteBits(buf []byte, bits uint64) {
	switch n.Size {
	case 1:
		buf[0] = uint8(bits)
	case 2:
		n.Order.PutUint16(buf, uint16(bits))
	case 4:
		n.Order.PutUint32(buf, uint32(bits))
	default:
		n.Order.PutUint64(buf, bits)
	}
}

// Read decodes a Size-byte buffer into the Go type matching the wire type.
func (n Number) Read(buf []byte) any {
	bits := n.ReadBits(buf)
	switch n.Kind {
	case Float:
		if n.Size == 4 {
			return math.Float32frombits(uint32(bits))
		}
		return math.Float64frombits(bits)
	case Signed:
		switch n.Size {
		case 1:
			return int8(bits)
		case 2:
			return int16(bits)
		case 4:
			return int32(bits)
		}
		return int64(bits)
	}
	switch n.Size {
	case 1:
		return uint8(bits)
	case 2:
		return uint16(bits)
	case 4:
		return uint32(bits)
	}
	return bits
}

// Write encodes v into a Size-byte buffer. Any Go integer type is accepted
// as long as the value fits the wire type.
func (n Number) Write(buf []byte, v any) error {
	bits, err := n.Bits(v)
	if err != nil {
		return err
	}
	n.WriteBits(buf, bits)
	return nil
}

// Get decodes an attribute payload, which must be exactly Size bytes.
func (n Number) Get(data []byte) (any, error) {
	if len(data) != n.Size {
		return nil, errLength(ErrLengthIncorrect, n.Size, len(data))
	}
	return n.Read(data), nil
}

// Put encodes v as an attribute payload.
func (n Number) Put(v any) ([]byte, error) {
	buf := make([]byte, n.Size)
	if err := n.Write(buf, v); err != nil {
		return nil, err
	}
	return buf, nil
}

// Bits converts v to the raw wire bits of the type.
func (n Number) Bits(v any) (uint64, error) {
	if n.Kind == Float {
		return n.floatBits(v)
	}
	switch v := v.(type) {
	case int:
		return n.fromInt(int64(v))
	case int8:
		return n.fromInt(int64(v))
	case int16:
		return n.fromInt(int64(v))
	case int32:
		return n.fromInt(int64(v))
	case int64:
		return n.fromInt(v)
	case uint:
		return n.fromUint(uint64(v))
	case uint8:
		return n.fromUint(uint64(v))
	case uint16:
		return n.fromUint(uint64(v))
	case uint32:
		return n.fromUint(uint64(v))
	case uint64:
		return n.fromUint(v)
	}
	return 0, errType(n.Name, v)
}

func (n Number) fromInt(x int64) (uint64, error) {
	if n.Kind == Signed {
		if n.Size < 8 {
			lo := int64(-1) << (n.Size*8 - 1)
			if x < lo || x > -lo-1 {
				return 0, n.errRange(x)
			}
		}
		return uint64(x) & n.mask(), nil
	}
	if x < 0 {
		return 0, n.errRange(x)
	}
	return n.fromUint(uint64(x))
}

func (n Number) fromUint(x uint64) (uint64, error) {
	hi := n.mask()
	if n.Kind == Signed {
		hi >>= 1
	}
	if x > hi {
		return 0, n.errRange(x)
	}
	return x, nil
}

func (n Number) floatBits(v any) (uint64, error) {
	var f float64
	switch v := v.(type) {
	case float32:
		if n.Size == 4 {
			return uint64(math.Float32bits(v)), nil
		}
		f = float64(v)
	case float64:
		f = v
	default:
		if x, ok := Int64(v); ok {
			f = float64(x)
		} else if x, ok := v.(uint64); ok {
			f = float64(x)
		} else {
			return 0, errType(n.Name, v)
		}
	}
	if n.Size == 4 {
		return uint64(math.Float32bits(float32(f))), nil
	}
	return math.Float64bits(f), nil
}

func (n Number) errRange(v any) error {
	return fmt.Errorf("%w: %v does not fit in %s", ErrOutOfRange, v, n.Name)
}

// Int64 converts any Go integer value to int64. It reports false for
// non-integers and for uint64 values above math.MaxInt64.
func Int64(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), uint64(v) <= math.MaxInt64
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), v <= math.MaxInt64
	}
	return 0, false
}

// Uint64 converts a non-negative Go integer value to uint64.
func Uint64(v any) (uint64, bool) {
	if x, ok := v.(uint64); ok {
		return x, true
	}
	if x, ok := v.(uint); ok {
		return uint64(x), true
	}
	x, ok := Int64(v)
	if !ok || x < 0 {
		return 0, false
	}
	return uint64(x), true
}
