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
	"fmt"

	"go.nlgen.org/nlgen"
	"go.nlgen.org/nlgen/encoding/nlattr"
	"go.nlgen.org/nlgen/schema"
)

type attrInfo struct {
	name  string
	index uint16
	attr  *schema.AttributeDef
}

func (c *compiler) compileAttrs(name string, def *schema.TypeDef, reqs requirements) {
	codec := c.bundle.codecs[name]
	decoders := make(map[uint16]nlattr.FieldDecoder, len(def.Attrs))
	var encoders []nlattr.FieldEncoder

	index := 1
	if def.Zero {
		index = 0
	}
	for ii := range def.Attrs {
		attr := &def.Attrs[ii]
		at := site{typeName: name, field: attr.Name}
		if index > nlattr.TypeMask {
			c.err(errTooManyAttrs(at, index))
			break
		}
		c.checkAttrOptions(at, attr)
		payload, err := c.resolvePayload(at, attr.Type, &attr.Options, reqs)
		if err != nil {
			c.err(err)
			index++
			continue
		}
		info := &attrInfo{name: attr.Name, index: uint16(index), attr: attr}
		codec.attrs = append(codec.attrs, info)
		decoders[info.index] = attrDecoder(name, info, payload)
		encoders = append(encoders, attrEncoder(name, info, payload))
		index++
	}

	codec.decode = func(buf []byte) (any, error) {
		obj, err := nlattr.GetObject(buf, decoders)
		if err != nil {
			return nil, err
		}
		return obj, nil
	}
	codec.encode = func(v any) ([]byte, error) {
		obj, ok := v.(nlgen.Object)
		if !ok {
			return nil, &nlattr.TypeError{Want: name, Value: v}
		}
		var w nlattr.Writer
		if err := nlattr.PutObject(&w, obj, encoders); err != nil {
			return nil, err
		}
		return w.Bytes(), nil
	}
}

// checkAttrOptions warns about options that only apply to struct members,
// or to string payloads.
func (c *compiler) checkAttrOptions(at site, attr *schema.AttributeDef) {
	opts := &attr.Options
	if opts.Count > 0 {
		c.warn(warnOptionIgnored(at, "count", "an attribute"))
	}
	if opts.ABI != "" {
		c.warn(warnOptionIgnored(at, "abi", "an attribute"))
	}
	if opts.MaxLength > 0 {
		elem := &attr.Type
		for elem.Kind == schema.ExprArray || elem.Kind == schema.ExprMap {
			elem = elem.Elem
		}
		if elem.Kind != schema.ExprName || elem.Name != "string" {
			c.warn(warnOptionIgnored(at, "maxLength", fmt.Sprintf("type '%s'", attr.Type)))
		}
	}
}

func attrDecoder(typeName string, info *attrInfo, payload *payloadCodec) nlattr.FieldDecoder {
	field := info.name
	if info.attr.Options.Repeated {
		return func(data []byte, obj nlgen.Object) error {
			v, err := payload.decode(data)
			if err != nil {
				return &nlattr.FieldError{Type: typeName, Field: field, Err: err}
			}
			items, _ := obj[field].([]any)
			obj[field] = append(items, v)
			return nil
		}
	}
	return func(data []byte, obj nlgen.Object) error {
		v, err := payload.decode(data)
		if err != nil {
			return &nlattr.FieldError{Type: typeName, Field: field, Err: err}
		}
		obj[field] = v
		return nil
	}
}

func attrEncoder(typeName string, info *attrInfo, payload *payloadCodec) nlattr.FieldEncoder {
	field := info.name
	index := info.index
	put := func(w *nlattr.Writer, v any) error {
		if payload.omit != nil && payload.omit(v) {
			return nil
		}
		data, err := payload.encode(v)
		if err == nil {
			err = w.Put(index, data)
		}
		if err != nil {
			return &nlattr.FieldError{Type: typeName, Field: field, Err: err}
		}
		return nil
	}
	if !info.attr.Options.Repeated {
		return nlattr.FieldEncoder{Name: field, Encode: put}
	}
	return nlattr.FieldEncoder{
		Name: field,
		Encode: func(w *nlattr.Writer, v any) error {
			items, ok := nlattr.Items(v)
			if !ok {
				return &nlattr.FieldError{
					Type:  typeName,
					Field: field,
					Err:   &nlattr.TypeError{Want: "list of repeated values", Value: v},
				}
			}
			for _, item := range items {
				if err := put(w, item); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
