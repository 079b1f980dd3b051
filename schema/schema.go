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

// Package schema defines the netlink type schema model and loads it from
// YAML or JSON documents.
//
// A schema is an ordered set of named type definitions. Each definition is
// an attribute set, a fixed-layout struct, an enum, or a flags type.
package schema

import (
	"fmt"
	"iter"

	"go.nlgen.org/nlgen/encoding/nlattr"
)

type Kind string

const (
	KindAttrs  Kind = "attrs"
	KindStruct Kind = "struct"
	KindEnum   Kind = "enum"
	KindFlags  Kind = "flags"
)

func (k Kind) valid() bool {
	switch k {
	case "", KindAttrs, KindStruct, KindEnum, KindFlags:
		return true
	}
	return false
}

type TypeDef struct {
	// Kind of the type. Empty means KindAttrs.
	Kind Kind
	Orig string
	Docs []string

	// Root marks a type that is a top-level message payload.
	Root bool

	// Zero numbers attributes from 0 rather than 1.
	Zero bool

	// Attrs are the fields of an attrs or struct type.
	Attrs []AttributeDef

	// Values are the members of an enum or flags type.
	Values []ValueDef
}

func (d *TypeDef) EffectiveKind() Kind {
	if d.Kind == "" {
		return KindAttrs
	}
	return d.Kind
}

type AttributeDef struct {
	Name    string
	Type    TypeExpr
	Options AttributeOptions
}

type AttributeOptions struct {
	Docs []string

	// Type is the lower type: an enum or flags type giving meaning to an
	// integer field.
	Type *LowerType

	// MaxLength bounds a string attribute, NUL terminator included.
	MaxLength int

	Orig     string
	Repeated bool

	// Count makes a struct member a fixed-length inline array. Zero means
	// unset.
	Count int

	// ABI is the "A.B.C" version at which an expandable struct ends.
	ABI string
}

type ValueDef struct {
	Value int64
	Name  string
	Docs  []string
	Orig  string
}

type ExprKind string

const (
	ExprName  ExprKind = ""
	ExprArray ExprKind = "array"
	ExprMap   ExprKind = "map"
	ExprFlags ExprKind = "flags"
)

// TypeExpr names a primitive or defined type, or wraps an element type in
// an array, map, or TLV flag list.
type TypeExpr struct {
	Kind ExprKind

	// Name is set when Kind is ExprName.
	Name string

	// Elem is set for all other kinds.
	Elem *TypeExpr

	// Zero numbers array elements from 0.
	Zero bool
}

func Ref(name string) TypeExpr {
	return TypeExpr{Name: name}
}

func ArrayOf(elem TypeExpr, zero bool) TypeExpr {
	return TypeExpr{Kind: ExprArray, Elem: &elem, Zero: zero}
}

func MapOf(elem TypeExpr) TypeExpr {
	return TypeExpr{Kind: ExprMap, Elem: &elem}
}

// FlagsOf is the TLV flag-list form of an enum.
func FlagsOf(enum string) TypeExpr {
	elem := Ref(enum)
	return TypeExpr{Kind: ExprFlags, Elem: &elem}
}

func (e TypeExpr) String() string {
	switch e.Kind {
	case ExprName:
		return e.Name
	case ExprArray:
		if e.Zero {
			return fmt.Sprintf("array(%s, zero)", e.Elem)
		}
		return fmt.Sprintf("array(%s)", e.Elem)
	case ExprMap:
		return fmt.Sprintf("map(%s)", e.Elem)
	case ExprFlags:
		return fmt.Sprintf("asflags(%s)", e.Elem)
	}
	return fmt.Sprintf("<invalid %q>", string(e.Kind))
}

// LowerType refers to an enum or flags type. With AsFlags it refers to the
// bitmask form of an enum.
type LowerType struct {
	Name    string
	AsFlags bool
}

func (l *LowerType) String() string {
	if l.AsFlags {
		return fmt.Sprintf("asflags(%s)", l.Name)
	}
	return l.Name
}

var builtinNames = map[string]bool{
	"bool":   true,
	"flag":   true,
	"data":   true,
	"string": true,
}

// IsBuiltin reports whether name is a primitive type.
func IsBuiltin(name string) bool {
	if builtinNames[name] {
		return true
	}
	_, ok := nlattr.ParseNumber(name)
	return ok
}

// TypeStore is an ordered collection of named type definitions.
type TypeStore struct {
	names []string
	defs  map[string]*TypeDef
}

func NewTypeStore() *TypeStore {
	return &TypeStore{defs: make(map[string]*TypeDef)}
}

// Add appends a definition. Names must be unique and must not shadow a
// primitive type.
func (s *TypeStore) Add(name string, def *TypeDef) error {
	if name == "" {
		return errEmptyTypeName()
	}
	if IsBuiltin(name) {
		return errBuiltinTypeName(name)
	}
	if _, dup := s.defs[name]; dup {
		return errDuplicateType(name)
	}
	s.names = append(s.names, name)
	s.defs[name] = def
	return nil
}

func (s *TypeStore) Get(name string) (*TypeDef, bool) {
	def, ok := s.defs[name]
	return def, ok
}

func (s *TypeStore) Len() int {
	return len(s.names)
}

// Names returns the type names in declaration order.
func (s *TypeStore) Names() []string {
	return append([]string(nil), s.names...)
}

func (s *TypeStore) All() iter.Seq2[string, *TypeDef] {
	return func(yield func(string, *TypeDef) bool) {
		for _, name := range s.names {
			if !yield(name, s.defs[name]) {
				return
			}
		}
	}
}
