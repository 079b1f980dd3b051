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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.nlgen.org/nlgen/internal/testutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nlgen.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvVar, "")

	cfg, err := Load("")
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, *Default(), *cfg)
	testutil.ExpectEq(t, FormatText, cfg.Output.Format)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, `
compile:
  reject_attr_cycles: true
output:
  format: json
`)
	t.Setenv(EnvVar, path)

	cfg, err := Load("")
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, cfg.Compile.RejectAttrCycles)
	testutil.ExpectFalse(t, cfg.Compile.WarningsAsErrors)
	testutil.ExpectEq(t, FormatJSON, cfg.Output.Format)
	testutil.ExpectEq(t, "nlschema", cfg.Codegen.Package)
}

func TestLoadExplicitPath(t *testing.T) {
	t.Setenv(EnvVar, writeConfig(t, "output:\n  format: cbor\n"))
	path := writeConfig(t, "codegen:\n  package: rtnl\n")

	cfg, err := Load(path)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, FormatText, cfg.Output.Format)
	testutil.ExpectEq(t, "rtnl", cfg.Codegen.Package)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, ""))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, *Default(), *cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"unknown key":   "compile:\n  strict: true\n",
		"bad format":    "output:\n  format: xml\n",
		"empty package": "codegen:\n  package: \"\"\n",
		"not a mapping": "- a\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, content))
			testutil.AssertError(t, err)
		})
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	testutil.AssertError(t, err)
}
