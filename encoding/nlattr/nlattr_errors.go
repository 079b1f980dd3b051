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
	"fmt"
)

type nlerror string

func (e nlerror) Error() string {
	return string(e)
}

const (
	// Payload or struct length does not match the length of its type
	ErrLengthIncorrect = nlerror("nlattr: Length incorrect")

	// Expandable struct is shorter than its known prefix
	ErrLengthTooShort = nlerror("nlattr: Length shorter than minimum")

	// Fixed-count array or byte field has the wrong number of elements
	ErrCountMismatch = nlerror("nlattr: Element count does not match schema")

	// String payload does not end with a NUL byte
	ErrNotTerminated = nlerror("nlattr: String is not NUL-terminated")

	// String (including its NUL terminator) is longer than the schema allows
	ErrMaxLength = nlerror("nlattr: Maximum length exceeded")

	// Bool byte is neither 0 nor 1
	ErrInvalidBool = nlerror("nlattr: Invalid bool value")

	// Array element attribute type is not the next expected index
	ErrNonSequential = nlerror("nlattr: Non-sequential array index")

	// Attribute header has NLA_F_NET_BYTEORDER set
	ErrNetByteOrder = nlerror("nlattr: Unexpected NLA_F_NET_BYTEORDER flag")

	// Object has a key that the type does not declare
	ErrUnknownKey = nlerror("nlattr: Unknown key")

	// Enum value name is not declared by the enum
	ErrUnknownName = nlerror("nlattr: Unknown enum value name")

	// Attribute with its header does not fit in 16 bits
	ErrAttrTooLong = nlerror("nlattr: Maximum attribute length exceeded")

	// Attribute type does not fit in 14 bits
	ErrAttrTypeRange = nlerror("nlattr: Attribute type out of range")

	// Attribute header or payload extends past the end of the buffer
	ErrTruncated = nlerror("nlattr: Truncated attribute")

	// Value has a Go type that cannot be encoded as the schema type
	ErrTypeMismatch = nlerror("nlattr: Value has wrong type")

	// Numeric value does not fit in the wire width
	ErrOutOfRange = nlerror("nlattr: Value out of range")
)

// LengthError reports a length check failure together with the expected
// and actual sizes.
type LengthError struct {
	Err  error
	Want int
	Got  int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%v (want %d, got %d)", e.Err, e.Want, e.Got)
}

func (e *LengthError) Unwrap() error {
	return e.Err
}

// FieldError locates a codec failure at a named field of a type.
type FieldError struct {
	Type  string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Type, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// TypeError reports a value whose Go type the codec cannot accept.
type TypeError struct {
	Want  string
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%v: expected %s, got %T", ErrTypeMismatch, e.Want, e.Value)
}

func (e *TypeError) Unwrap() error {
	return ErrTypeMismatch
}

func errLength(err error, want, got int) error {
	return &LengthError{Err: err, Want: want, Got: got}
}

func errType(want string, value any) error {
	return &TypeError{Want: want, Value: value}
}
