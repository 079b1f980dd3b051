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
	"strings"

	"go.nlgen.org/nlgen/schema"
)

type Error struct {
	code     uint32
	message  string
	typeName string
	field    string
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s", err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

// TypeName is the type that the error was reported against.
func (err *Error) TypeName() string {
	return err.typeName
}

// Field is the attribute or struct member within TypeName, if any.
func (err *Error) Field() string {
	return err.field
}

// site is the location of a field within the schema.
type site struct {
	typeName string
	field    string
}

func (s site) String() string {
	if s.field == "" {
		return fmt.Sprintf("type '%s'", s.typeName)
	}
	return fmt.Sprintf("field '%s' of '%s'", s.field, s.typeName)
}

func newError(code uint32, at site, format string, args ...any) error {
	return &Error{
		code:     code,
		message:  fmt.Sprintf(format, args...),
		typeName: at.typeName,
		field:    at.field,
	}
}

func errUnknownType(at site, name string) error {
	return newError(2001, at, "Unknown type '%s' in %s", name, at)
}

func errKindMismatch(at site, name string, got schema.Kind, want string) error {
	return newError(2002, at,
		"Type '%s' referenced by %s is %s %s type, expected %s",
		name, at, article(string(got)), got, want,
	)
}

func errLowerKind(at site, lower *schema.LowerType, got schema.Kind) error {
	if lower.AsFlags {
		return newError(2003, at,
			"asflags() in %s must be passed an enum type, '%s' is %s %s type",
			at, lower.Name, article(string(got)), got,
		)
	}
	return newError(2003, at,
		"Lower type '%s' of %s is %s %s type, expected an enum or flags type",
		lower.Name, at, article(string(got)), got,
	)
}

func errFlagsElem(at site, expr schema.TypeExpr) error {
	return newError(2003, at,
		"Type '%s' of %s must name an enum type",
		expr, at,
	)
}

func errLowerBase(at site, lower *schema.LowerType, base string) error {
	return newError(2004, at,
		"Lower type '%s' cannot be applied to %s of type '%s'",
		lower, at, base,
	)
}

func errZeroFlag(at site, name string) error {
	return newError(2010, at, "Flag '%s' of %s has no value", name, at)
}

func errDuplicateValueName(at site, name string) error {
	return newError(2011, at, "Duplicate value name '%s' in %s", name, at)
}

func errBitmaskValue(at site, name string, value int64) error {
	return newError(2012, at,
		"Value '%s' (%d) of %s cannot be used as a bit index (expected 0 to 63)",
		name, value, at,
	)
}

func errFlagListValue(at site, name string, value int64) error {
	return newError(2013, at,
		"Value '%s' (%d) of %s cannot be used as an attribute type (expected 0 to 16383)",
		name, value, at,
	)
}

func errLowerWidth(at site, lower *schema.LowerType, name string, bits uint64, base string) error {
	return newError(2014, at,
		"Value '%s' (%#x) of '%s' does not fit in %s of type '%s'",
		name, bits, lower, at, base,
	)
}

func errStructBytesCount(at site, typeName string) error {
	return newError(2020, at,
		"Struct member %s of type '%s' requires a count",
		at, typeName,
	)
}

func errStructMemberType(at site, expr schema.TypeExpr) error {
	return newError(2021, at,
		"Type '%s' of %s is not valid in a struct",
		expr, at,
	)
}

func errInvalidABI(at site, abi string) error {
	return newError(2022, at,
		"Invalid abi version %q in %s (expected A.B.C)",
		abi, at,
	)
}

func errNestedExpandable(at site, name string) error {
	return newError(2022, at,
		"Expandable struct '%s' cannot be embedded in %s",
		name, at,
	)
}

func errKindContent(at site, kind schema.Kind, key string) error {
	return newError(2023, at,
		"Type '%s' of kind %s cannot have %s",
		at.typeName, kind, key,
	)
}

func errTooManyAttrs(at site, index int) error {
	return newError(2023, at,
		"Attribute index %d of %s exceeds the maximum attribute type",
		index, at,
	)
}

func errDuplicateField(at site) error {
	return newError(2024, at, "Duplicate field name '%s' in type '%s'", at.field, at.typeName)
}

func errReservedField(at site) error {
	return newError(2025, at, "Field name '%s' in type '%s' is reserved", at.field, at.typeName)
}

func errStructCycle(at site, cycle []string) error {
	return newError(2030, at,
		"Struct '%s' contains itself: %s",
		at.typeName, strings.Join(cycle, " -> "),
	)
}

func errAttrsCycle(at site, cycle []string) error {
	return newError(2031, at,
		"Attribute set '%s' is recursive: %s",
		at.typeName, strings.Join(cycle, " -> "),
	)
}

func errWarningAsError(w *Warning) error {
	return &Error{
		code:     2090,
		message:  fmt.Sprintf("Warning treated as error: %s", w),
		typeName: w.typeName,
		field:    w.field,
	}
}

func article(word string) string {
	if word != "" && strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}
