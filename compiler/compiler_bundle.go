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
	"errors"
	"fmt"

	"go.nlgen.org/nlgen"
	"go.nlgen.org/nlgen/encoding/nlattr"
	"go.nlgen.org/nlgen/schema"
)

// ErrVariantNotCompiled is returned when a derived form of an enum is used
// although no type in the schema required it.
var ErrVariantNotCompiled = errors.New("compiler: enum variant was not compiled")

// Bundle holds the compiled codecs of a schema.
//
// Codecs are registered for every type before the first pass runs, so that
// types may refer to types declared after them.
type Bundle struct {
	names  []string
	kinds  map[string]schema.Kind
	codecs map[string]*Codec
	flags  map[string]*Flags
	enums  map[string]*Enum
}

func newBundle(store *schema.TypeStore) *Bundle {
	b := &Bundle{
		names:  store.Names(),
		kinds:  make(map[string]schema.Kind),
		codecs: make(map[string]*Codec),
		flags:  make(map[string]*Flags),
		enums:  make(map[string]*Enum),
	}
	for name, def := range store.All() {
		kind := def.EffectiveKind()
		b.kinds[name] = kind
		switch kind {
		case schema.KindAttrs, schema.KindStruct:
			b.codecs[name] = &Codec{name: name, kind: kind}
		case schema.KindFlags:
			b.flags[name] = &Flags{name: name}
		case schema.KindEnum:
			b.enums[name] = &Enum{name: name}
		}
	}
	return b
}

// Types returns the names of all types in declaration order.
func (b *Bundle) Types() []string {
	return append([]string(nil), b.names...)
}

func (b *Bundle) Kind(name string) (schema.Kind, bool) {
	kind, ok := b.kinds[name]
	return kind, ok
}

// Codec returns the codec of a struct or attrs type.
func (b *Bundle) Codec(name string) (*Codec, bool) {
	codec, ok := b.codecs[name]
	return codec, ok
}

func (b *Bundle) Flags(name string) (*Flags, bool) {
	flags, ok := b.flags[name]
	return flags, ok
}

func (b *Bundle) Enum(name string) (*Enum, bool) {
	enum, ok := b.enums[name]
	return enum, ok
}

// Codec converts between the wire form of a struct or attribute set and
// its decoded [nlgen.Object].
type Codec struct {
	name   string
	kind   schema.Kind
	decode func([]byte) (any, error)
	encode func(any) ([]byte, error)

	// Set for structs.
	layout *structLayout
	// Set for attrs.
	attrs []*attrInfo
}

func (c *Codec) Name() string {
	return c.name
}

func (c *Codec) Kind() schema.Kind {
	return c.kind
}

func (c *Codec) Decode(buf []byte) (nlgen.Object, error) {
	v, err := c.decode(buf)
	if err != nil {
		return nil, err
	}
	return v.(nlgen.Object), nil
}

func (c *Codec) Encode(obj nlgen.Object) ([]byte, error) {
	return c.encode(obj)
}

// EncodeInto encodes a struct into buf, which must have exactly the
// encoded length. Members absent from obj are zeroed.
func (c *Codec) EncodeInto(obj nlgen.Object, buf []byte) error {
	if c.layout == nil {
		return fmt.Errorf("compiler: EncodeInto: '%s' is not a struct type", c.name)
	}
	return c.layout.encodeInto(obj, buf)
}

// Length returns the encoded length of a struct. For an expandable struct
// it is the minimum length, and exact is false.
func (c *Codec) Length() (length int, exact bool) {
	if c.layout == nil {
		return 0, false
	}
	return c.layout.size(), !c.layout.expandable
}

type flagBit struct {
	name string
	mask uint64
}

// Flags converts between an integer bitmask and an [nlgen.Object] with one
// boolean per declared flag.
type Flags struct {
	name string
	bits []flagBit
}

func (f *Flags) Name() string {
	return f.name
}

// Decode sets each flag whose bits are all present. Bits matching no flag
// are kept in [nlgen.UnknownField].
func (f *Flags) Decode(bits uint64) nlgen.Object {
	obj := nlgen.Object{}
	residue := bits
	for _, bit := range f.bits {
		if bits&bit.mask == bit.mask {
			obj[bit.name] = true
			residue &^= bit.mask
		}
	}
	if residue != 0 {
		obj[nlgen.UnknownField] = residue
	}
	return obj
}

func (f *Flags) Encode(obj nlgen.Object) (uint64, error) {
	var bits uint64
	for key, value := range obj {
		if value == nil {
			continue
		}
		if key == nlgen.UnknownField {
			unknown, ok := nlattr.Uint64(value)
			if !ok {
				return 0, &nlattr.FieldError{Type: f.name, Field: key, Err: nlattr.ErrTypeMismatch}
			}
			bits |= unknown
			continue
		}
		mask, ok := f.mask(key)
		if !ok {
			return 0, fmt.Errorf("%s: %w %q", f.name, nlattr.ErrUnknownKey, key)
		}
		set, ok := value.(bool)
		if !ok {
			return 0, &nlattr.FieldError{Type: f.name, Field: key, Err: nlattr.ErrTypeMismatch}
		}
		if set {
			bits |= mask
		}
	}
	return bits, nil
}

func (f *Flags) mask(name string) (uint64, bool) {
	for _, bit := range f.bits {
		if bit.name == name {
			return bit.mask, true
		}
	}
	return 0, false
}

type enumValue struct {
	name  string
	field string
	value int64
}

// Enum maps between the integer values of an enum and their names, and
// provides the bitmask and TLV flag-list forms when they were compiled.
type Enum struct {
	name     string
	values   []enumValue
	names    map[int64]string
	byName   map[string]int64
	byField  map[string]int64
	bitmask  bool
	flagList bool

	flagFields map[uint16]nlattr.FieldDecoder
}

func (e *Enum) Name() string {
	return e.name
}

// ValueName returns the first declared name for value.
func (e *Enum) ValueName(value int64) (string, bool) {
	name, ok := e.names[value]
	return name, ok
}

func (e *Enum) Value(name string) (int64, bool) {
	value, ok := e.byName[name]
	return value, ok
}

func (e *Enum) HasBitmask() bool {
	return e.bitmask
}

func (e *Enum) HasFlagList() bool {
	return e.flagList
}

// primary reports whether v is the first declared name for its value.
// Decoding only sets the field of the primary name.
func (e *Enum) primary(v enumValue) bool {
	return e.names[v.value] == v.name
}

// DecodeBitmask sets the camelCase field of each value whose bit 1<<value
// is present. Other bits are dropped.
func (e *Enum) DecodeBitmask(bits uint64) (nlgen.Object, error) {
	if !e.bitmask {
		return nil, fmt.Errorf("%w: bitmask of '%s'", ErrVariantNotCompiled, e.name)
	}
	obj := nlgen.Object{}
	for _, v := range e.values {
		if e.primary(v) && bits&(1<<uint64(v.value)) != 0 {
			obj[v.field] = true
		}
	}
	return obj, nil
}

func (e *Enum) EncodeBitmask(obj nlgen.Object) (uint64, error) {
	if !e.bitmask {
		return 0, fmt.Errorf("%w: bitmask of '%s'", ErrVariantNotCompiled, e.name)
	}
	var bits uint64
	err := e.eachField(obj, func(value int64) error {
		bits |= 1 << uint64(value)
		return nil
	})
	return bits, err
}

// DecodeFlagList decodes an attribute set in which each present
// zero-length attribute sets the field of the value equal to its type.
func (e *Enum) DecodeFlagList(buf []byte) (nlgen.Object, error) {
	if !e.flagList {
		return nil, fmt.Errorf("%w: flag list of '%s'", ErrVariantNotCompiled, e.name)
	}
	return nlattr.GetObject(buf, e.flagFields)
}

// EncodeFlagList emits one zero-length attribute per true field, in
// declaration order.
func (e *Enum) EncodeFlagList(obj nlgen.Object) ([]byte, error) {
	if !e.flagList {
		return nil, fmt.Errorf("%w: flag list of '%s'", ErrVariantNotCompiled, e.name)
	}
	set := make(map[int64]bool)
	err := e.eachField(obj, func(value int64) error {
		set[value] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	var w nlattr.Writer
	for _, v := range e.values {
		if set[v.value] {
			delete(set, v.value)
			if err := w.Put(uint16(v.value), []byte{}); err != nil {
				return nil, err
			}
		}
	}
	return w.Bytes(), nil
}

// eachField calls fn with the value of each field of obj that is true.
func (e *Enum) eachField(obj nlgen.Object, fn func(int64) error) error {
	for key, v := range obj {
		if v == nil {
			continue
		}
		value, ok := e.byField[key]
		if !ok {
			return fmt.Errorf("%s: %w %q", e.name, nlattr.ErrUnknownKey, key)
		}
		set, ok := v.(bool)
		if !ok {
			return &nlattr.FieldError{Type: e.name, Field: key, Err: nlattr.ErrTypeMismatch}
		}
		if set {
			if err := fn(value); err != nil {
				return err
			}
		}
	}
	return nil
}
