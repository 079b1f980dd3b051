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

package compiler

import (
	"go.nlgen.org/nlgen"
	"go.nlgen.org/nlgen/encoding/nlattr"
	"go.nlgen.org/nlgen/schema"
)

// payloadCodec converts an attribute payload to and from its decoded value.
type payloadCodec struct {
	decode func(data []byte) (any, error)
	encode func(v any) ([]byte, error)

	// omit reports values that are encoded by leaving the attribute out.
	omit func(v any) bool
}

// lowerCodec gives meaning to a decoded integer.
type lowerCodec struct {
	decode func(raw any) (any, error)

	// encode returns a Go integer for Number.Write, or raw bits when
	// bitwise is set.
	encode  func(v any) (any, error)
	bitwise bool
}

func (l *lowerCodec) read(num nlattr.Number, buf []byte) (any, error) {
	raw := num.Read(buf)
	if l == nil {
		return raw, nil
	}
	return l.decode(raw)
}

func (l *lowerCodec) write(num nlattr.Number, buf []byte, v any) error {
	if l == nil {
		return num.Write(buf, v)
	}
	lowered, err := l.encode(v)
	if err != nil {
		return err
	}
	if l.bitwise {
		bits := lowered.(uint64)
		if err := num.CheckBits(bits); err != nil {
			return err
		}
		num.WriteBits(buf, bits)
		return nil
	}
	return num.Write(buf, lowered)
}

// resolveLower binds the lower type of an integer field. A nil lower type
// resolves to a nil codec, which passes integers through.
func (c *compiler) resolveLower(at site, num nlattr.Number, lower *schema.LowerType, reqs requirements) (*lowerCodec, error) {
	if lower == nil {
		return nil, nil
	}
	if num.Kind == nlattr.Float {
		return nil, errLowerBase(at, lower, num.Name)
	}
	def, ok := c.store.Get(lower.Name)
	if !ok {
		return nil, errUnknownType(at, lower.Name)
	}
	kind := def.EffectiveKind()
	if num.Size == 8 {
		c.warn(warnLower64(at, lower, num.Name))
	}

	if lower.AsFlags {
		if kind != schema.KindEnum {
			return nil, errLowerKind(at, lower, kind)
		}
		// Bit indices above 63 are reported against the enum itself.
		for _, value := range def.Values {
			if value.Value >= 0 && value.Value <= 63 && num.CheckBits(1<<uint64(value.Value)) != nil {
				return nil, errLowerWidth(at, lower, value.Name, 1<<uint64(value.Value), num.Name)
			}
		}
		reqs.needBitmask(lower.Name)
		enum := c.bundle.enums[lower.Name]
		return &lowerCodec{
			decode: func(raw any) (any, error) {
				bits, _ := num.Bits(raw)
				return enum.DecodeBitmask(bits)
			},
			encode: func(v any) (any, error) {
				obj, ok := v.(nlgen.Object)
				if !ok {
					return nil, &nlattr.TypeError{Want: lower.String(), Value: v}
				}
				return enum.EncodeBitmask(obj)
			},
			bitwise: true,
		}, nil
	}

	switch kind {
	case schema.KindEnum:
		enum := c.bundle.enums[lower.Name]
		return &lowerCodec{
			decode: func(raw any) (any, error) {
				return nlattr.GetEnum(enum.names, raw), nil
			},
			encode: func(v any) (any, error) {
				return nlattr.PutEnum(enum.byName, v)
			},
		}, nil
	case schema.KindFlags:
		for _, value := range def.Values {
			if num.CheckBits(uint64(value.Value)) != nil {
				return nil, errLowerWidth(at, lower, value.Name, uint64(value.Value), num.Name)
			}
		}
		flags := c.bundle.flags[lower.Name]
		return &lowerCodec{
			decode: func(raw any) (any, error) {
				bits, _ := num.Bits(raw)
				return flags.Decode(bits), nil
			},
			encode: func(v any) (any, error) {
				obj, ok := v.(nlgen.Object)
				if !ok {
					return nil, &nlattr.TypeError{Want: lower.Name, Value: v}
				}
				return flags.Encode(obj)
			},
			bitwise: true,
		}, nil
	}
	return nil, errLowerKind(at, lower, kind)
}

// resolvePayload binds the codec of an attribute payload. The lower type
// and maximum length of opts apply to array and map elements as well.
func (c *compiler) resolvePayload(at site, expr schema.TypeExpr, opts *schema.AttributeOptions, reqs requirements) (*payloadCodec, error) {
	switch expr.Kind {
	case schema.ExprArray:
		elem, err := c.resolvePayload(at, *expr.Elem, opts, reqs)
		if err != nil {
			return nil, err
		}
		zero := expr.Zero
		return &payloadCodec{
			decode: func(data []byte) (any, error) {
				return nlattr.GetArray(data, zero, elem.decode)
			},
			encode: func(v any) ([]byte, error) {
				var w nlattr.Writer
				if err := nlattr.PutArray(&w, v, zero, elem.encode); err != nil {
					return nil, err
				}
				return w.Bytes(), nil
			},
		}, nil

	case schema.ExprMap:
		elem, err := c.resolvePayload(at, *expr.Elem, opts, reqs)
		if err != nil {
			return nil, err
		}
		return &payloadCodec{
			decode: func(data []byte) (any, error) {
				return nlattr.GetMap(data, elem.decode)
			},
			encode: func(v any) ([]byte, error) {
				var w nlattr.Writer
				if err := nlattr.PutMap(&w, v, elem.encode); err != nil {
					return nil, err
				}
				return w.Bytes(), nil
			},
		}, nil

	case schema.ExprFlags:
		if opts.Type != nil {
			return nil, errLowerBase(at, opts.Type, expr.String())
		}
		if expr.Elem == nil || expr.Elem.Kind != schema.ExprName {
			return nil, errFlagsElem(at, expr)
		}
		name := expr.Elem.Name
		def, ok := c.store.Get(name)
		if !ok {
			return nil, errUnknownType(at, name)
		}
		if kind := def.EffectiveKind(); kind != schema.KindEnum {
			return nil, errKindMismatch(at, name, kind, "an enum type")
		}
		reqs.needFlagList(name)
		enum := c.bundle.enums[name]
		return &payloadCodec{
			decode: func(data []byte) (any, error) {
				return enum.DecodeFlagList(data)
			},
			encode: func(v any) ([]byte, error) {
				obj, ok := v.(nlgen.Object)
				if !ok {
					return nil, &nlattr.TypeError{Want: expr.String(), Value: v}
				}
				return enum.EncodeFlagList(obj)
			},
		}, nil
	}

	name := expr.Name
	if num, ok := nlattr.ParseNumber(name); ok {
		lower, err := c.resolveLower(at, num, opts.Type, reqs)
		if err != nil {
			return nil, err
		}
		return &payloadCodec{
			decode: func(data []byte) (any, error) {
				if len(data) != num.Size {
					return nil, &nlattr.LengthError{Err: nlattr.ErrLengthIncorrect, Want: num.Size, Got: len(data)}
				}
				return lower.read(num, data)
			},
			encode: func(v any) ([]byte, error) {
				buf := make([]byte, num.Size)
				if err := lower.write(num, buf, v); err != nil {
					return nil, err
				}
				return buf, nil
			},
		}, nil
	}

	if opts.Type != nil {
		return nil, errLowerBase(at, opts.Type, name)
	}
	switch name {
	case "string":
		maxLength := opts.MaxLength
		return &payloadCodec{
			decode: func(data []byte) (any, error) {
				return nlattr.GetString(data, maxLength)
			},
			encode: func(v any) ([]byte, error) {
				return nlattr.PutString(v, maxLength)
			},
		}, nil
	case "data":
		return &payloadCodec{
			decode: func(data []byte) (any, error) {
				return nlattr.GetData(data), nil
			},
			encode: nlattr.PutData,
		}, nil
	case "bool":
		return &payloadCodec{
			decode: func(data []byte) (any, error) {
				return nlattr.GetBool(data)
			},
			encode: nlattr.PutBool,
		}, nil
	case "flag":
		return &payloadCodec{
			decode: func(data []byte) (any, error) {
				return nlattr.GetFlag(data)
			},
			encode: nlattr.PutFlag,
			omit: func(v any) bool {
				return v == false
			},
		}, nil
	}

	def, ok := c.store.Get(name)
	if !ok {
		return nil, errUnknownType(at, name)
	}
	switch kind := def.EffectiveKind(); kind {
	case schema.KindStruct, schema.KindAttrs:
		codec := c.bundle.codecs[name]
		return &payloadCodec{
			decode: func(data []byte) (any, error) {
				return codec.decode(data)
			},
			encode: func(v any) ([]byte, error) {
				return codec.encode(v)
			},
		}, nil
	default:
		return nil, errKindMismatch(at, name, kind, "a struct or attrs type")
	}
}
