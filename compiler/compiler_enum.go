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
	"strings"

	"go.nlgen.org/nlgen"
	"go.nlgen.org/nlgen/encoding/nlattr"
	"go.nlgen.org/nlgen/schema"
)

func (c *compiler) compileFlags(name string, def *schema.TypeDef) {
	flags := c.bundle.flags[name]
	for _, value := range def.Values {
		if value.Value == 0 {
			c.err(errZeroFlag(site{typeName: name}, value.Name))
			continue
		}
		flags.bits = append(flags.bits, flagBit{
			name: value.Name,
			mask: uint64(value.Value),
		})
	}
}

func (c *compiler) compileEnum(name string, def *schema.TypeDef, variants enumVariants) {
	enum := c.bundle.enums[name]
	enum.names = make(map[int64]string, len(def.Values))
	enum.byName = make(map[string]int64, len(def.Values))
	enum.byField = make(map[string]int64, len(def.Values))
	at := site{typeName: name}
	for _, value := range def.Values {
		if variants.Bitmask && (value.Value < 0 || value.Value > 63) {
			c.err(errBitmaskValue(at, value.Name, value.Value))
		}
		if variants.FlagList && (value.Value < 0 || value.Value > nlattr.TypeMask) {
			c.err(errFlagListValue(at, value.Name, value.Value))
		}
		field := camelCase(value.Name)
		enum.values = append(enum.values, enumValue{
			name:  value.Name,
			field: field,
			value: value.Value,
		})
		if _, dup := enum.names[value.Value]; !dup {
			enum.names[value.Value] = value.Name
		}
		enum.byName[value.Name] = value.Value
		enum.byField[field] = value.Value
	}
	enum.bitmask = variants.Bitmask
	enum.flagList = variants.FlagList
	if enum.flagList {
		enum.flagFields = make(map[uint16]nlattr.FieldDecoder, len(enum.values))
		for _, v := range enum.values {
			if !enum.primary(v) {
				continue
			}
			field := v.field
			enum.flagFields[uint16(v.value)] = func(data []byte, obj nlgen.Object) error {
				set, err := nlattr.GetFlag(data)
				if err != nil {
					return &nlattr.FieldError{Type: name, Field: field, Err: err}
				}
				obj[field] = set
				return nil
			}
		}
	}
}

// camelCase converts an enum value name such as "CMD_CAP_DO" to the field
// name "cmdCapDo". Leading underscores are kept.
func camelCase(name string) string {
	trimmed := strings.TrimLeft(name, "_")
	prefix := name[:len(name)-len(trimmed)]
	var buf strings.Builder
	buf.WriteString(prefix)
	for ii, word := range strings.Split(strings.ToLower(trimmed), "_") {
		if ii > 0 && word != "" {
			word = strings.ToUpper(word[:1]) + word[1:]
		}
		buf.WriteString(word)
	}
	return buf.String()
}
