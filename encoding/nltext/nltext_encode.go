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

// Package nltext renders decoded netlink objects and compiler manifests as
// human-readable text.
//
// The output is intended for debugging and golden tests. It is not a
// stable format and there is no decoder.
package nltext

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"go.nlgen.org/nlgen"
)

// Encode renders an [nlgen.Object], or a pointer to a struct with json
// field tags, such as a compiler manifest.
func Encode(value any) string {
	var buf strings.Builder
	EncodeTo(value, &buf)
	return buf.String()
}

func EncodeTo(value any, w io.Writer) error {
	e := encoder{w: w}
	switch value := value.(type) {
	case nlgen.Object:
		e.visitObject(value)
	default:
		rv := reflect.ValueOf(value)
		for rv.Kind() == reflect.Pointer && !rv.IsNil() {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct {
			return fmt.Errorf("nltext: cannot encode value of type %T", value)
		}
		e.visitStruct(rv)
	}
	return e.err
}

type encoder struct {
	w      io.Writer
	indent int
	err    error
}

func (e *encoder) line(s string) {
	if e.err != nil {
		return
	}
	if indent := strings.Repeat("\t", e.indent); indent != "" {
		if _, err := io.WriteString(e.w, indent); err != nil {
			e.err = err
			return
		}
	}
	if _, err := io.WriteString(e.w, s); err != nil {
		e.err = err
		return
	}
	if _, err := io.WriteString(e.w, "\n"); err != nil {
		e.err = err
		return
	}
}

func (e *encoder) linef(format string, a ...any) {
	e.line(fmt.Sprintf(format, a...))
}

func (e *encoder) visitObject(obj nlgen.Object) {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if e.err != nil {
			return
		}
		e.visitField(key, obj[key])
	}
}

func (e *encoder) visitStruct(rv reflect.Value) {
	rt := rv.Type()
	for ii := 0; ii < rt.NumField(); ii++ {
		field := rt.Field(ii)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty := jsonName(field)
		if name == "-" {
			continue
		}
		value := rv.Field(ii)
		if omitEmpty && value.IsZero() {
			continue
		}
		e.visitStructField(name, value)
	}
}

func (e *encoder) visitStructField(name string, value reflect.Value) {
	switch value.Kind() {
	case reflect.Pointer:
		if value.IsNil() {
			return
		}
		if value.Elem().Kind() == reflect.Struct {
			e.linef("%s {", name)
			e.indent += 1
			e.visitStruct(value.Elem())
			e.indent -= 1
			e.line("}")
			return
		}
	case reflect.Slice:
		elem := value.Type().Elem()
		if elem.Kind() == reflect.Pointer && elem.Elem().Kind() == reflect.Struct {
			for jj := 0; jj < value.Len(); jj++ {
				e.visitStructField(name, value.Index(jj))
			}
			return
		}
	}
	e.visitField(name, value.Interface())
}

func (e *encoder) visitField(name string, value any) {
	if value == nil {
		return
	}
	if scalar := fmtScalar(value); scalar != "" {
		e.linef("%s = %s", name, scalar)
		return
	}

	switch value := value.(type) {
	case []byte:
		e.linef("%s = %s", name, fmtBytes(value))
	case []string:
		if len(value) == 0 {
			e.linef("%s = []", name)
			return
		}
		e.linef("%s = [", name)
		e.indent += 1
		for _, item := range value {
			e.line(quote(item))
		}
		e.indent -= 1
		e.line("]")
	case nlgen.Object:
		if len(value) == 0 {
			e.linef("%s = {}", name)
			return
		}
		e.linef("%s = {", name)
		e.indent += 1
		e.visitObject(value)
		e.indent -= 1
		e.line("}")
	case []any:
		if len(value) == 0 {
			e.linef("%s = []", name)
			return
		}
		e.linef("%s = [", name)
		e.indent += 1
		for _, item := range value {
			e.visitItem(item)
		}
		e.indent -= 1
		e.line("]")
	case map[uint16]any:
		if len(value) == 0 {
			e.linef("%s = {}", name)
			return
		}
		keys := make([]uint16, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		e.linef("%s = {", name)
		e.indent += 1
		for _, key := range keys {
			e.visitField(strconv.FormatUint(uint64(key), 10), value[key])
		}
		e.indent -= 1
		e.line("}")
	default:
		e.err = fmt.Errorf("nltext: unhandled value %v (%T) in field %q", value, value, name)
	}
}

func (e *encoder) visitItem(value any) {
	if scalar := fmtScalar(value); scalar != "" {
		e.line(scalar)
		return
	}
	switch value := value.(type) {
	case []byte:
		e.line(fmtBytes(value))
	case nlgen.Object:
		if len(value) == 0 {
			e.line("{}")
			return
		}
		e.line("{")
		e.indent += 1
		e.visitObject(value)
		e.indent -= 1
		e.line("}")
	case []any:
		e.line("[")
		e.indent += 1
		for _, item := range value {
			e.visitItem(item)
		}
		e.indent -= 1
		e.line("]")
	default:
		e.err = fmt.Errorf("nltext: unhandled array item %v (%T)", value, value)
	}
}

func jsonName(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return field.Name, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, slices.Contains(strings.Split(opts, ","), "omitempty")
}

func fmtBytes(value []byte) string {
	var buf strings.Builder
	buf.WriteByte('[')
	for ii, b := range value {
		if ii != 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "0x%02X", b)
	}
	buf.WriteByte(']')
	return buf.String()
}

func fmtScalar(value any) string {
	switch value := value.(type) {
	case bool:
		if value {
			return ".true"
		}
		return ".false"
	case uint8:
		return strconv.FormatUint(uint64(value), 10)
	case uint16:
		return strconv.FormatUint(uint64(value), 10)
	case uint32:
		return strconv.FormatUint(uint64(value), 10)
	case uint64:
		return strconv.FormatUint(value, 10)
	case int8:
		return strconv.FormatInt(int64(value), 10)
	case int16:
		return strconv.FormatInt(int64(value), 10)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case int64:
		return strconv.FormatInt(value, 10)
	case int:
		return strconv.Itoa(value)
	case float32:
		return strconv.FormatFloat(float64(value), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	case string:
		return quote(value)
	}
	return ""
}

func quote(text string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, c := range text {
		if c == '\\' || c == '"' {
			buf.WriteByte('\\')
			buf.WriteRune(c)
			continue
		}
		if c == '\t' {
			buf.WriteString("\\t")
			continue
		}
		if c == '\n' {
			buf.WriteString("\\n")
			continue
		}
		if c < 0x20 || c == 0x7F {
			fmt.Fprintf(&buf, "\\x%02X", c)
			continue
		}
		buf.WriteRune(c)
	}
	buf.WriteByte('"')
	return buf.String()
}
