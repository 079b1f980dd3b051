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

// Package golang generates Go constants from a compiled schema manifest:
// enum and flags values, attribute types, and struct layouts.
//
// Decoding and encoding is done by the compiled [compiler.Bundle] at run
// time. The generated constants let hand-written netlink code refer to the
// same numbers without repeating them.
package golang

import (
	"fmt"
	"go/format"
	"go/token"
	"strings"
	"unicode"

	"go.nlgen.org/nlgen/compiler"
)

// Generate returns formatted Go source declaring the constants of every
// type in m.
func Generate(m *compiler.Manifest, goPackage string) ([]byte, error) {
	if !token.IsIdentifier(goPackage) {
		return nil, fmt.Errorf("codegen: invalid Go package name %q", goPackage)
	}
	c := codegen{
		manifest:  m,
		goPackage: goPackage,
	}
	c.emitManifest()
	out, err := format.Source(c.output)
	if err != nil {
		return nil, fmt.Errorf("codegen: generated invalid Go source: %w", err)
	}
	return out, nil
}

type codegen struct {
	manifest  *compiler.Manifest
	goPackage string
	output    []byte
}

func (c *codegen) line(s string) {
	c.output = append(c.output, s...)
	c.output = append(c.output, '\n')
}

func (c *codegen) linef(format string, a ...any) {
	c.line(fmt.Sprintf(format, a...))
}

func (c *codegen) docs(indent string, docs []string) {
	for _, doc := range docs {
		for _, line := range strings.Split(doc, "\n") {
			c.linef("%s// %s", indent, strings.TrimRight(line, " \t"))
		}
	}
}

func (c *codegen) emitManifest() {
	if c.manifest.Fingerprint != "" {
		c.linef("// Code generated by nlgen from schema %s. DO NOT EDIT.", c.manifest.Fingerprint)
	} else {
		c.line("// Code generated by nlgen. DO NOT EDIT.")
	}
	c.line("")
	c.linef("package %s", c.goPackage)
	for _, t := range c.manifest.Types {
		switch {
		case t.Struct != nil:
			c.emitStruct(t)
		case len(t.Attrs) > 0:
			c.emitAttrs(t)
		case len(t.Values) > 0:
			c.emitValues(t)
		}
	}
}

func (c *codegen) typeHeader(t *compiler.ManifestType, summary string) {
	c.line("")
	if len(t.Docs) > 0 {
		c.docs("", t.Docs)
	} else {
		c.linef("// %s", summary)
	}
	if t.Orig != "" {
		c.line("//")
		c.linef("// C: %s", t.Orig)
	}
}

func (c *codegen) constant(name, value, orig string) {
	if orig != "" {
		c.linef("\t%s = %s // %s", name, value, orig)
	} else {
		c.linef("\t%s = %s", name, value)
	}
}

func (c *codegen) emitValues(t *compiler.ManifestType) {
	if t.Kind == "flags" {
		c.typeHeader(t, fmt.Sprintf("%s flag bits.", goName(t.Name)))
	} else {
		c.typeHeader(t, fmt.Sprintf("%s values.", goName(t.Name)))
	}
	c.line("const (")
	for _, v := range t.Values {
		c.docs("\t", v.Docs)
		value := fmt.Sprintf("%d", v.Value)
		if t.Kind == "flags" {
			value = fmt.Sprintf("%#x", v.Value)
		}
		c.constant(goName(t.Name, v.Name), value, v.Orig)
	}
	c.line(")")
}

func (c *codegen) emitAttrs(t *compiler.ManifestType) {
	c.typeHeader(t, fmt.Sprintf("%s attribute types.", goName(t.Name)))
	c.line("const (")
	for _, attr := range t.Attrs {
		c.docs("\t", attr.Docs)
		c.constant(goName(t.Name, attr.Name), fmt.Sprintf("%d", attr.Index), attr.Orig)
	}
	c.line(")")
}

func (c *codegen) emitStruct(t *compiler.ManifestType) {
	c.typeHeader(t, fmt.Sprintf("%s layout.", goName(t.Name)))
	c.line("const (")
	if t.Struct.Expandable {
		c.line("\t// Minimum length. Newer kernels may append fields.")
	}
	c.constant(goName(t.Name, "Length"), fmt.Sprintf("%d", t.Struct.Length), "")
	for _, field := range t.Struct.Fields {
		c.docs("\t", field.Docs)
		c.constant(goName(t.Name, field.Name, "Offset"), fmt.Sprintf("%d", field.Offset), field.Orig)
	}
	c.line(")")
}

// goName joins parts with underscores into an exported Go identifier.
func goName(parts ...string) string {
	var buf strings.Builder
	for ii, part := range parts {
		if ii > 0 {
			buf.WriteByte('_')
		}
		for _, r := range part {
			if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
				buf.WriteRune(r)
			} else {
				buf.WriteByte('_')
			}
		}
	}
	name := []rune(buf.String())
	if len(name) == 0 || !unicode.IsLetter(name[0]) {
		return "X" + string(name)
	}
	name[0] = unicode.ToUpper(name[0])
	return string(name)
}
