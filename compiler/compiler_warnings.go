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

type Warning struct {
	code     uint32
	message  string
	typeName string
	field    string
}

func (w *Warning) String() string {
	return fmt.Sprintf("W%d: %s", w.code, w.message)
}

func (w *Warning) Code() uint32 {
	return w.code
}

func (w *Warning) Message() string {
	return w.message
}

func (w *Warning) TypeName() string {
	return w.typeName
}

func (w *Warning) Field() string {
	return w.field
}

func newWarning(code uint32, at site, format string, args ...any) *Warning {
	return &Warning{
		code:     code,
		message:  fmt.Sprintf(format, args...),
		typeName: at.typeName,
		field:    at.field,
	}
}

func warnLower64(at site, lower *schema.LowerType, base string) *Warning {
	return newWarning(4000, at,
		"Lower type '%s' of %s is applied to 64-bit type '%s'",
		lower, at, base,
	)
}

func warnLowerIgnored(at site, lower *schema.LowerType, base string) *Warning {
	return newWarning(4001, at,
		"Lower type '%s' of %s is ignored for struct member of type '%s'",
		lower, at, base,
	)
}

func warnABINotLast(at site, last string) *Warning {
	return newWarning(4002, at,
		"Expandable struct '%s' should have abi on its last field '%s'",
		at.typeName, last,
	)
}

func warnOptionIgnored(at site, option, context string) *Warning {
	return newWarning(4004, at,
		"Option '%s' of %s has no effect on %s",
		option, at, context,
	)
}

func warnAttrsCycle(at site, cycle []string) *Warning {
	return newWarning(4003, at,
		"Attribute set '%s' is recursive: %s",
		at.typeName, strings.Join(cycle, " -> "),
	)
}
