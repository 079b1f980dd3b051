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

package schema

import (
	"fmt"
)

type Error struct {
	code    uint32
	message string
	line    int
	err     error
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	if err.line > 0 {
		return fmt.Sprintf("E%d: line %d: %s", err.code, err.line, err.message)
	}
	return fmt.Sprintf("E%d: %s", err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

// Line is the 1-based source line of the error, or 0 if unknown.
func (err *Error) Line() int {
	return err.line
}

func (err *Error) Unwrap() error {
	return err.err
}

func errParse(format string, cause error) error {
	return &Error{
		code:    1000,
		message: fmt.Sprintf("Failed to parse %s: %v", format, cause),
		err:     cause,
	}
}

func errNotMapping(what string, line int) error {
	return &Error{
		code:    1001,
		message: fmt.Sprintf("Expected %s to be a mapping", what),
		line:    line,
	}
}

func errDuplicateType(name string) error {
	return &Error{
		code:    1002,
		message: fmt.Sprintf("Duplicate definition of type '%s'", name),
	}
}

func errBuiltinTypeName(name string) error {
	return &Error{
		code:    1003,
		message: fmt.Sprintf("Type name '%s' conflicts with builtin type", name),
	}
}

func errInvalidTypeExpr(path, detail string, line int) error {
	return &Error{
		code:    1004,
		message: fmt.Sprintf("Invalid type expression for %s: %s", path, detail),
		line:    line,
	}
}

func errInvalidKind(path, kind string, line int) error {
	return &Error{
		code: 1005,
		message: fmt.Sprintf(
			"Invalid kind %q for %s (expected attrs, struct, enum, or flags)",
			kind, path,
		),
		line: line,
	}
}

func errUnknownKey(path, key string, line int) error {
	return &Error{
		code:    1006,
		message: fmt.Sprintf("Unknown key '%s' in %s", key, path),
		line:    line,
	}
}

func errInvalidField(path, key string, line int, cause error) error {
	return &Error{
		code:    1007,
		message: fmt.Sprintf("Invalid value for '%s' in %s: %v", key, path, cause),
		line:    line,
		err:     cause,
	}
}

func errInvalidAttribute(path, detail string, line int) error {
	return &Error{
		code:    1008,
		message: fmt.Sprintf("Invalid attribute %s: %s", path, detail),
		line:    line,
	}
}

func errMissingKey(path, key string, line int) error {
	return &Error{
		code:    1009,
		message: fmt.Sprintf("Missing required key '%s' in %s", key, path),
		line:    line,
	}
}

func errEmptyTypeName() error {
	return &Error{
		code:    1010,
		message: "Type name must not be empty",
	}
}
