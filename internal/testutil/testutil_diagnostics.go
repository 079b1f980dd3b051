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

package testutil

import (
	"cmp"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"slices"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestdataFS returns the testdata directory of the package under test.
func TestdataFS() (fs.FS, error) {
	info, err := os.Stat("testdata")
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("testdata is not a directory")
	}
	return os.DirFS("testdata"), nil
}

// Diagnostic is an entry in a registry of error or warning codes, keyed
// by a short descriptive name.
type Diagnostic struct {
	Key     string
	Code    uint32
	Message string
	Pattern *regexp.Regexp
}

// LoadDiagnostics reads a registry file. Keys starting with '_' reserve a
// code without describing it.
func LoadDiagnostics(testdata fs.FS, path string) (map[string]*Diagnostic, error) {
	type raw struct {
		Code    uint32 `yaml:"code"`
		Message string `yaml:"message"`
		Pattern string `yaml:"message_pattern"`
	}

	yamlData, err := fs.ReadFile(testdata, path)
	if err != nil {
		return nil, err
	}

	var rawDiagnostics map[string]raw
	if err := yaml.Unmarshal(yamlData, &rawDiagnostics); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := make(map[string]*Diagnostic, len(rawDiagnostics))
	codes := make(map[uint32]struct{}, len(rawDiagnostics))
	for key, raw := range rawDiagnostics {
		if key == "" || key[0] == '_' {
			if raw.Code != 0 {
				if _, conflict := codes[raw.Code]; conflict {
					return nil, fmt.Errorf("%s: duplicate code %d", path, raw.Code)
				}
				codes[raw.Code] = struct{}{}
			}
			continue
		}

		if raw.Code == 0 {
			return nil, fmt.Errorf("%s: %q has no code", path, key)
		}
		if _, conflict := codes[raw.Code]; conflict {
			return nil, fmt.Errorf("%s: duplicate code %d", path, raw.Code)
		}
		codes[raw.Code] = struct{}{}

		var pattern *regexp.Regexp
		if raw.Pattern != "" {
			pattern, err = regexp.Compile("(?i)" + raw.Pattern)
			if err != nil {
				return nil, err
			}
		}
		out[key] = &Diagnostic{
			Key:     key,
			Code:    raw.Code,
			Message: raw.Message,
			Pattern: pattern,
		}
	}
	return out, nil
}

// ExpectedDiagnostic is a diagnostic that a test case expects to be
// reported against a type, and optionally one of its fields.
type ExpectedDiagnostic struct {
	Diagnostic
	Type  string
	Field string
}

// LoadExpected reads a list of expected diagnostics from a test case.
// The list is stored under listKey, and each entry names its registry key
// under itemKey.
//
//	errors:
//	  - error: unknown_type
//	    type: Family
//	    field: ops
func LoadExpected(
	t *testing.T,
	registry map[string]*Diagnostic,
	testdata fs.FS,
	path string,
	listKey string,
	itemKey string,
) []*ExpectedDiagnostic {
	t.Helper()

	yamlData, err := fs.ReadFile(testdata, path)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string][]map[string]string
	if err := yaml.Unmarshal(yamlData, &raw); err != nil {
		t.Fatalf("%s: %v", path, err)
	}

	var out []*ExpectedDiagnostic
	for _, entry := range raw[listKey] {
		key := entry[itemKey]
		diag, ok := registry[key]
		if !ok {
			t.Fatalf("%s: unknown diagnostic name %q", path, key)
		}
		out = append(out, &ExpectedDiagnostic{
			Diagnostic: *diag,
			Type:       entry["type"],
			Field:      entry["field"],
		})
	}
	slices.SortFunc(out, func(a, b *ExpectedDiagnostic) int {
		return compareSite(a.Type, a.Field, a.Code, b.Type, b.Field, b.Code)
	})
	return out
}

// Reported is implemented by compiler errors and warnings.
type Reported interface {
	Code() uint32
	Message() string
	TypeName() string
	Field() string
}

// ExpectDiagnostics checks reported diagnostics against expectations,
// ignoring the order in which they were reported.
func ExpectDiagnostics[R Reported](t *testing.T, kind string, want []*ExpectedDiagnostic, reported []R) {
	t.Helper()
	got := slices.Clone(reported)
	slices.SortFunc(got, func(a, b R) int {
		return compareSite(a.TypeName(), a.Field(), a.Code(), b.TypeName(), b.Field(), b.Code())
	})

	for ii := 0; ii < max(len(got), len(want)); ii++ {
		if ii >= len(got) {
			expect := want[ii]
			name := expect.Message
			if name == "" {
				name = expect.Key
			}
			t.Errorf("expected %s %q (code %d) in type %q", kind, name, expect.Code, expect.Type)
			continue
		}
		if ii >= len(want) {
			t.Errorf("unexpected %s %q (code %d)", kind, got[ii].Message(), got[ii].Code())
			continue
		}
		expect, diag := want[ii], got[ii]
		ExpectEq(t, expect.Code, diag.Code())
		if expect.Pattern != nil {
			ExpectMatch(t, expect.Pattern, diag.Message())
		} else if expect.Message != "" {
			ExpectEq(t, expect.Message, diag.Message())
		}
		ExpectEq(t, expect.Type, diag.TypeName())
		ExpectEq(t, expect.Field, diag.Field())
	}
}

func compareSite(aType, aField string, aCode uint32, bType, bField string, bCode uint32) int {
	if x := cmp.Compare(aType, bType); x != 0 {
		return x
	}
	if x := cmp.Compare(aField, bField); x != 0 {
		return x
	}
	return cmp.Compare(aCode, bCode)
}
