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

package schema_test

import (
	"errors"
	"testing"

	"go.nlgen.org/nlgen/internal/testutil"
	"go.nlgen.org/nlgen/schema"
)

func TestLoadYAML(t *testing.T) {
	store, err := schema.Load("testdata/genl_ctrl.yaml")
	testutil.AssertNoError(t, err)

	testutil.ExpectSliceEq(t, []string{
		"Commands",
		"Family",
		"Operation",
		"MulticastGroup",
		"OperationFlags",
	}, store.Names())

	family, ok := store.Get("Family")
	testutil.ExpectTrue(t, ok)
	testutil.ExpectTrue(t, family.Root)
	testutil.ExpectEq(t, schema.KindAttrs, family.EffectiveKind())
	testutil.ExpectEq(t, 7, len(family.Attrs))
	testutil.ExpectEq(t, "familyName", family.Attrs[1].Name)
	testutil.ExpectEq(t, 16, family.Attrs[1].Options.MaxLength)
	testutil.ExpectEq(t, "array(Operation)", family.Attrs[5].Type.String())

	op, _ := store.Get("Operation")
	testutil.ExpectDeepEq(t, &schema.LowerType{Name: "OperationFlags"}, op.Attrs[1].Options.Type)

	flags, _ := store.Get("OperationFlags")
	testutil.ExpectEq(t, schema.KindFlags, flags.Kind)
	testutil.ExpectEq(t, int64(0x10), flags.Values[4].Value)
	testutil.ExpectEq(t, "unsAdminPerm", flags.Values[4].Name)
}

func TestLoadJSONC(t *testing.T) {
	fromYAML, err := schema.Load("testdata/genl_ctrl.yaml")
	testutil.AssertNoError(t, err)
	fromJSON, err := schema.Load("testdata/genl_ctrl.jsonc")
	testutil.AssertNoError(t, err)

	testutil.ExpectSliceEq(t, fromYAML.Names(), fromJSON.Names())
	for name, def := range fromYAML.All() {
		other, ok := fromJSON.Get(name)
		testutil.ExpectTrue(t, ok)
		testutil.ExpectDeepEq(t, def, other)
	}
}

func TestLoadUnknownExtension(t *testing.T) {
	_, err := schema.Load("testdata/genl_ctrl.txt")
	testutil.AssertError(t, err)
}

func TestTypeExpressions(t *testing.T) {
	store, err := schema.Load("testdata/rtnl.yaml")
	testutil.AssertNoError(t, err)

	link, _ := store.Get("Link")
	testutil.ExpectEq(t, schema.KindStruct, link.EffectiveKind())
	testutil.ExpectEq(t, "ifinfomsg", link.Orig)
	testutil.ExpectDeepEq(t, &schema.LowerType{Name: "LinkType"}, link.Attrs[2].Options.Type)
	testutil.ExpectSliceEq(t, []string{"ARPHRD_*"}, link.Attrs[2].Options.Docs)

	attrs, _ := store.Get("LinkAttrs")
	byName := make(map[string]schema.AttributeDef)
	for _, attr := range attrs.Attrs {
		byName[attr.Name] = attr
	}
	testutil.ExpectDeepEq(t, schema.FlagsOf("LinkPermission"), byName["perm"].Type)
	testutil.ExpectDeepEq(t, schema.MapOf(schema.Ref("u32")), byName["vfPorts"].Type)
	testutil.ExpectDeepEq(t, schema.ArrayOf(schema.Ref("u32"), true), byName["groups"].Type)
	testutil.ExpectTrue(t, byName["altIfname"].Options.Repeated)

	xdp, _ := store.Get("XdpAttrs")
	testutil.ExpectDeepEq(t, &schema.LowerType{Name: "XdpMode", AsFlags: true}, xdp.Attrs[2].Options.Type)

	stats, _ := store.Get("LinkStats64")
	testutil.ExpectEq(t, "5.19.0", stats.Attrs[4].Options.ABI)

	session, _ := store.Get("RouteSession")
	testutil.ExpectEq(t, 4, session.Attrs[3].Options.Count)
}

func TestTypeExprString(t *testing.T) {
	tests := []struct {
		expr schema.TypeExpr
		want string
	}{
		{schema.Ref("u32"), "u32"},
		{schema.ArrayOf(schema.Ref("Operation"), false), "array(Operation)"},
		{schema.ArrayOf(schema.Ref("u32"), true), "array(u32, zero)"},
		{schema.MapOf(schema.ArrayOf(schema.Ref("u8"), false)), "map(array(u8))"},
		{schema.FlagsOf("Perm"), "asflags(Perm)"},
	}
	for _, test := range tests {
		testutil.ExpectEq(t, test.want, test.expr.String())
	}
	testutil.ExpectEq(t, "asflags(XdpMode)", (&schema.LowerType{Name: "XdpMode", AsFlags: true}).String())
}

func TestTypeStore(t *testing.T) {
	store := schema.NewTypeStore()
	testutil.AssertNoError(t, store.Add("Foo", &schema.TypeDef{}))

	tests := []struct {
		name string
		code uint32
	}{
		{"Foo", 1002},
		{"u32", 1003},
		{"string", 1003},
		{"", 1010},
	}
	for _, test := range tests {
		err := store.Add(test.name, &schema.TypeDef{})
		var schemaErr *schema.Error
		if !errors.As(err, &schemaErr) {
			t.Errorf("Add(%q): expected *schema.Error, got %v", test.name, err)
			continue
		}
		testutil.ExpectEq(t, test.code, schemaErr.Code())
	}
	testutil.ExpectEq(t, 1, store.Len())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code uint32
		line int
	}{
		{
			name: "syntax",
			src:  "Foo: [\n",
			code: 1000,
		},
		{
			name: "document not mapping",
			src:  "- Foo\n- Bar\n",
			code: 1001,
			line: 1,
		},
		{
			name: "type not mapping",
			src:  "Foo: 3\n",
			code: 1001,
			line: 1,
		},
		{
			name: "builtin type name",
			src:  "u32:\n  kind: enum\n",
			code: 1003,
			line: 1,
		},
		{
			name: "empty type name",
			src:  "\"\": {}\n",
			code: 1010,
			line: 1,
		},
		{
			name: "invalid kind",
			src:  "Foo:\n  kind: union\n",
			code: 1005,
			line: 2,
		},
		{
			name: "unknown type key",
			src:  "Foo:\n  bogus: 1\n",
			code: 1006,
			line: 2,
		},
		{
			name: "invalid root",
			src:  "Foo:\n  root: maybe\n",
			code: 1007,
			line: 2,
		},
		{
			name: "attribute too short",
			src:  "Foo:\n  attrs:\n    - [a]\n",
			code: 1008,
			line: 3,
		},
		{
			name: "type expr not a string",
			src:  "Foo:\n  attrs:\n    - [a, 5]\n",
			code: 1004,
			line: 3,
		},
		{
			name: "zero on map",
			src:  "Foo:\n  attrs:\n    - [a, { kind: map, type: u8, zero: true }]\n",
			code: 1004,
			line: 3,
		},
		{
			name: "array without type",
			src:  "Foo:\n  attrs:\n    - [a, { kind: array }]\n",
			code: 1009,
			line: 3,
		},
		{
			name: "unknown option",
			src:  "Foo:\n  attrs:\n    - [a, u8, { bogus: 1 }]\n",
			code: 1006,
			line: 3,
		},
		{
			name: "zero count",
			src:  "Foo:\n  kind: struct\n  attrs:\n    - [a, u8, { count: 0 }]\n",
			code: 1007,
			line: 4,
		},
		{
			name: "value without name",
			src:  "Foo:\n  kind: enum\n  values:\n    - { value: 1 }\n",
			code: 1009,
			line: 4,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := schema.ParseYAML([]byte(test.src))
			var schemaErr *schema.Error
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected *schema.Error, got %v", err)
			}
			testutil.ExpectEq(t, test.code, schemaErr.Code())
			testutil.ExpectEq(t, test.line, schemaErr.Line())
		})
	}
}

func TestErrorString(t *testing.T) {
	_, err := schema.ParseYAML([]byte("Foo:\n  bogus: 1\n"))
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, "E1006: line 2: Unknown key 'bogus' in type 'Foo'", err.Error())
}

func TestParseEmpty(t *testing.T) {
	store, err := schema.ParseYAML(nil)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 0, store.Len())
}
