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
	"bytes"
	"fmt"
	"regexp"

	"go.nlgen.org/nlgen"
	"go.nlgen.org/nlgen/encoding/nlattr"
	"go.nlgen.org/nlgen/schema"
)

var abiPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+$`)

// memberSize is the byte size of a struct member. A member whose type is a
// struct declared later has a deferred size, resolved when the codec runs.
type memberSize struct {
	n        int
	deferred func() int
}

func (s memberSize) get() int {
	if s.deferred != nil {
		return s.deferred()
	}
	return s.n
}

func (s memberSize) static() bool {
	return s.deferred == nil
}

func (s memberSize) times(count int) memberSize {
	if s.deferred == nil {
		return memberSize{n: s.n * count}
	}
	elem := s.deferred
	return memberSize{deferred: func() int { return elem() * count }}
}

type structMember struct {
	name string
	attr *schema.AttributeDef

	// offset is only meaningful when the layout is static.
	offset int
	size   memberSize

	decode func(buf []byte) (any, error)
	encode func(buf []byte, v any) error
}

type structLayout struct {
	name       string
	members    []*structMember
	expandable bool

	// static layouts have all offsets and the total length computed at
	// compile time. Others walk a cursor over the member sizes.
	static bool
	length int
}

func (l *structLayout) size() int {
	if l.static {
		return l.length
	}
	n := 0
	for _, m := range l.members {
		n += m.size.get()
	}
	return n
}

func (l *structLayout) checkLength(got, want int) error {
	if l.expandable {
		if got < want {
			return &nlattr.LengthError{Err: nlattr.ErrLengthTooShort, Want: want, Got: got}
		}
		return nil
	}
	if got != want {
		return &nlattr.LengthError{Err: nlattr.ErrLengthIncorrect, Want: want, Got: got}
	}
	return nil
}

func (l *structLayout) decode(buf []byte) (any, error) {
	length := l.size()
	if err := l.checkLength(len(buf), length); err != nil {
		return nil, fmt.Errorf("%s: %w", l.name, err)
	}
	obj := nlgen.Object{}
	cursor := 0
	for _, m := range l.members {
		offset, size := cursor, 0
		if l.static {
			offset, size = m.offset, m.size.n
		} else {
			size = m.size.get()
		}
		v, err := m.decode(buf[offset : offset+size])
		if err != nil {
			return nil, &nlattr.FieldError{Type: l.name, Field: m.name, Err: err}
		}
		obj[m.name] = v
		cursor = offset + size
	}
	if l.expandable && len(buf) > length {
		obj[nlgen.UnparsedField] = bytes.Clone(buf[length:])
	}
	return obj, nil
}

func (l *structLayout) unparsed(obj nlgen.Object) ([]byte, error) {
	if !l.expandable || obj[nlgen.UnparsedField] == nil {
		return nil, nil
	}
	tail, ok := obj[nlgen.UnparsedField].([]byte)
	if !ok {
		return nil, &nlattr.FieldError{
			Type:  l.name,
			Field: nlgen.UnparsedField,
			Err:   &nlattr.TypeError{Want: "[]byte", Value: obj[nlgen.UnparsedField]},
		}
	}
	return tail, nil
}

func (l *structLayout) encode(v any) ([]byte, error) {
	obj, ok := v.(nlgen.Object)
	if !ok {
		return nil, &nlattr.TypeError{Want: l.name, Value: v}
	}
	tail, err := l.unparsed(obj)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, l.size()+len(tail))
	if err := l.encodeInto(obj, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (l *structLayout) encodeInto(obj nlgen.Object, buf []byte) error {
	tail, err := l.unparsed(obj)
	if err != nil {
		return err
	}
	length := l.size()
	if len(buf) != length+len(tail) {
		err := &nlattr.LengthError{Err: nlattr.ErrLengthIncorrect, Want: length + len(tail), Got: len(buf)}
		return fmt.Errorf("%s: %w", l.name, err)
	}
	if err := l.checkKeys(obj); err != nil {
		return err
	}
	cursor := 0
	for _, m := range l.members {
		offset, size := cursor, 0
		if l.static {
			offset, size = m.offset, m.size.n
		} else {
			size = m.size.get()
		}
		cursor = offset + size
		field := buf[offset : offset+size]
		v := obj[m.name]
		if v == nil {
			clear(field)
			continue
		}
		if err := m.encode(field, v); err != nil {
			return &nlattr.FieldError{Type: l.name, Field: m.name, Err: err}
		}
	}
	copy(buf[length:], tail)
	return nil
}

func (l *structLayout) checkKeys(obj nlgen.Object) error {
	for key, v := range obj {
		if v == nil || (l.expandable && key == nlgen.UnparsedField) {
			continue
		}
		known := false
		for _, m := range l.members {
			if m.name == key {
				known = true
				break
			}
		}
		if !known {
			return &nlattr.FieldError{Type: l.name, Field: key, Err: nlattr.ErrUnknownKey}
		}
	}
	return nil
}

func (c *compiler) compileStruct(name string, def *schema.TypeDef, reqs requirements) {
	codec := c.bundle.codecs[name]
	layout := &structLayout{name: name, static: true}

	attrs := def.Attrs
	firstABI := -1
	for ii := range attrs {
		abi := attrs[ii].Options.ABI
		if abi == "" {
			continue
		}
		if !abiPattern.MatchString(abi) {
			c.err(errInvalidABI(site{typeName: name, field: attrs[ii].Name}, abi))
		}
		if firstABI < 0 {
			firstABI = ii
		}
	}
	if firstABI >= 0 {
		layout.expandable = true
		if last := attrs[len(attrs)-1]; last.Options.ABI == "" {
			c.warn(warnABINotLast(site{typeName: name}, last.Name))
		}
		attrs = attrs[:firstABI+1]
	}

	offset := 0
	for ii := range attrs {
		attr := &attrs[ii]
		at := site{typeName: name, field: attr.Name}
		m, err := c.structMember(at, attr, reqs)
		if err != nil {
			c.err(err)
			continue
		}
		if layout.static && m.size.static() {
			m.offset = offset
			offset += m.size.n
		} else {
			layout.static = false
		}
		layout.members = append(layout.members, m)
	}
	if layout.static {
		layout.length = offset
	}

	codec.layout = layout
	codec.decode = layout.decode
	codec.encode = layout.encode
}

func (c *compiler) structMember(at site, attr *schema.AttributeDef, reqs requirements) (*structMember, error) {
	opts := &attr.Options
	expr := attr.Type
	if expr.Kind != schema.ExprName {
		return nil, errStructMemberType(at, expr)
	}
	m := &structMember{name: attr.Name, attr: attr}
	name := expr.Name
	if opts.Repeated {
		c.warn(warnOptionIgnored(at, "repeated", "a struct member"))
	}
	if opts.MaxLength > 0 {
		c.warn(warnOptionIgnored(at, "maxLength", "a struct member"))
	}

	switch name {
	case "data", "string":
		if opts.Count == 0 {
			return nil, errStructBytesCount(at, name)
		}
		if opts.Type != nil {
			c.warn(warnLowerIgnored(at, opts.Type, name))
		}
		count := opts.Count
		m.size = memberSize{n: count}
		m.decode = func(buf []byte) (any, error) {
			return bytes.Clone(buf), nil
		}
		m.encode = func(buf []byte, v any) error {
			data, err := nlattr.PutData(v)
			if err != nil {
				return err
			}
			if len(data) != count {
				return &nlattr.LengthError{Err: nlattr.ErrCountMismatch, Want: count, Got: len(data)}
			}
			copy(buf, data)
			return nil
		}
		return m, nil
	case "bool":
		if opts.Type != nil {
			return nil, errLowerBase(at, opts.Type, name)
		}
		m.size = memberSize{n: 1}
		m.decode = func(buf []byte) (any, error) {
			return nlattr.ReadBool(buf[0])
		}
		m.encode = func(buf []byte, v any) error {
			b, err := nlattr.WriteBool(v)
			buf[0] = b
			return err
		}
	case "flag":
		return nil, errStructMemberType(at, expr)
	default:
		if num, ok := nlattr.ParseNumber(name); ok {
			lower, err := c.resolveLower(at, num, opts.Type, reqs)
			if err != nil {
				return nil, err
			}
			m.size = memberSize{n: num.Size}
			m.decode = func(buf []byte) (any, error) {
				return lower.read(num, buf)
			}
			m.encode = func(buf []byte, v any) error {
				return lower.write(num, buf, v)
			}
			break
		}
		if err := c.nestedStruct(at, m, name, opts); err != nil {
			return nil, err
		}
	}

	if opts.Count > 0 {
		wrapCount(m, opts.Count)
	}
	return m, nil
}

func (c *compiler) nestedStruct(at site, m *structMember, name string, opts *schema.AttributeOptions) error {
	def, ok := c.store.Get(name)
	if !ok {
		return errUnknownType(at, name)
	}
	if kind := def.EffectiveKind(); kind != schema.KindStruct {
		return errKindMismatch(at, name, kind, "a struct type")
	}
	if opts.Type != nil {
		return errLowerBase(at, opts.Type, name)
	}
	for _, attr := range def.Attrs {
		if attr.Options.ABI != "" {
			return errNestedExpandable(at, name)
		}
	}
	codec := c.bundle.codecs[name]
	if codec.layout != nil && codec.layout.static {
		m.size = memberSize{n: codec.layout.length}
	} else {
		m.size = memberSize{deferred: func() int {
			return codec.layout.size()
		}}
	}
	m.decode = func(buf []byte) (any, error) {
		return codec.layout.decode(buf)
	}
	m.encode = func(buf []byte, v any) error {
		obj, ok := v.(nlgen.Object)
		if !ok {
			return &nlattr.TypeError{Want: name, Value: v}
		}
		return codec.layout.encodeInto(obj, buf)
	}
	return nil
}

// wrapCount turns a member into an inline array of count elements.
func wrapCount(m *structMember, count int) {
	elemSize := m.size
	decodeElem, encodeElem := m.decode, m.encode
	m.size = elemSize.times(count)
	m.decode = func(buf []byte) (any, error) {
		size := len(buf) / count
		items := make([]any, count)
		for ii := range items {
			item, err := decodeElem(buf[ii*size : (ii+1)*size])
			if err != nil {
				return nil, err
			}
			items[ii] = item
		}
		return items, nil
	}
	m.encode = func(buf []byte, v any) error {
		items, ok := nlattr.Items(v)
		if !ok {
			return &nlattr.TypeError{Want: "array", Value: v}
		}
		if len(items) != count {
			return &nlattr.LengthError{Err: nlattr.ErrCountMismatch, Want: count, Got: len(items)}
		}
		size := len(buf) / count
		for ii, item := range items {
			if err := encodeElem(buf[ii*size:(ii+1)*size], item); err != nil {
				return err
			}
		}
		return nil
	}
}
