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

package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"

	"go.nlgen.org/nlgen/encoding/nlattr"
	"go.nlgen.org/nlgen/internal/config"
	"go.nlgen.org/nlgen/internal/testutil"
)

const testSchema = `
Perm:
  kind: flags
  values:
    - { value: 1, name: read }
    - { value: 2, name: write }
Family:
  root: true
  attrs:
    - [id, u16]
    - [perm, u32, { type: Perm }]
`

type testSession struct {
	*session
	dir    string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	ts := &testSession{dir: t.TempDir()}
	ts.session = &session{
		stdout: &ts.stdout,
		stderr: &ts.stderr,
	}
	return ts
}

func (ts *testSession) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(ts.dir, name)
	testutil.AssertNoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompileText(t *testing.T) {
	ts := newTestSession(t)
	path := ts.writeFile(t, "schema.yaml", testSchema)

	cmd := &cmdCompile{session: ts.session}
	testutil.ExpectEq(t, 0, cmd.run(context.Background(), []string{path}))
	testutil.ExpectEq(t, "", ts.stderr.String())
	testutil.ExpectTrue(t, strings.Contains(ts.stdout.String(), "name = \"Family\""))
	testutil.ExpectTrue(t, strings.Contains(ts.stdout.String(), "fingerprint = "))
}

func TestCompileJSON(t *testing.T) {
	ts := newTestSession(t)
	path := ts.writeFile(t, "schema.yaml", testSchema)
	outPath := filepath.Join(ts.dir, "manifest.json")

	cmd := &cmdCompile{session: ts.session, format: config.FormatJSON, outPath: outPath}
	testutil.ExpectEq(t, 0, cmd.run(context.Background(), []string{path}))

	data, err := os.ReadFile(outPath)
	testutil.AssertNoError(t, err)
	var manifest struct {
		Fingerprint string `json:"fingerprint"`
		Types       []struct {
			Name string `json:"name"`
		} `json:"types"`
	}
	testutil.AssertNoError(t, json.Unmarshal(data, &manifest))
	testutil.ExpectEq(t, 64, len(manifest.Fingerprint))
	testutil.ExpectEq(t, 2, len(manifest.Types))
	testutil.ExpectEq(t, "Family", manifest.Types[1].Name)
}

func TestCompileConfigFormat(t *testing.T) {
	ts := newTestSession(t)
	path := ts.writeFile(t, "schema.yaml", testSchema)
	ts.configPath = ts.writeFile(t, "nlgen.yaml", "output:\n  format: json\n")

	cmd := &cmdCompile{session: ts.session}
	testutil.ExpectEq(t, 0, cmd.run(context.Background(), []string{path}))
	testutil.ExpectTrue(t, strings.HasPrefix(ts.stdout.String(), "{"))
}

func TestCompileErrors(t *testing.T) {
	ts := newTestSession(t)
	path := ts.writeFile(t, "schema.yaml", "Broken:\n  attrs:\n    - [x, Missing]\n")

	cmd := &cmdCompile{session: ts.session}
	testutil.ExpectEq(t, 1, cmd.run(context.Background(), []string{path}))
	testutil.ExpectEq(t, "", ts.stdout.String())
	testutil.ExpectTrue(t, strings.Contains(ts.stderr.String(), "[ERROR]"))
	testutil.ExpectTrue(t, strings.Contains(ts.stderr.String(), "E2001"))
	testutil.ExpectTrue(t, strings.Contains(ts.stderr.String(), "(in Broken.x)"))
}

const recursiveSchema = `
Tree:
  attrs:
    - [child, Tree]
`

func parseFlags(t *testing.T, cmd command, args ...string) {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cmd.flags(flags)
	testutil.AssertNoError(t, flags.Parse(args))
}

func TestCompileWarningsAsErrors(t *testing.T) {
	ts := newTestSession(t)
	path := ts.writeFile(t, "schema.yaml", recursiveSchema)

	cmd := &cmdCompile{session: ts.session}
	testutil.ExpectEq(t, 0, cmd.run(context.Background(), []string{path}))
	testutil.ExpectTrue(t, strings.Contains(ts.stderr.String(), "W4003"))

	ts.stderr.Reset()
	cmd = &cmdCompile{session: ts.session}
	parseFlags(t, cmd, "--werror")
	testutil.ExpectEq(t, 1, cmd.run(context.Background(), []string{path}))
	testutil.ExpectTrue(t, strings.Contains(ts.stderr.String(), "E2090"))
}

func TestCompileFlagsOverrideConfig(t *testing.T) {
	ts := newTestSession(t)
	path := ts.writeFile(t, "schema.yaml", recursiveSchema)
	ts.configPath = ts.writeFile(t, "nlgen.yaml", "compile:\n  reject_attr_cycles: true\n  warnings_as_errors: true\n")

	cmd := &cmdCompile{session: ts.session}
	parseFlags(t, cmd)
	testutil.ExpectEq(t, 1, cmd.run(context.Background(), []string{path}))
	testutil.ExpectTrue(t, strings.Contains(ts.stderr.String(), "E2031"))

	ts.stderr.Reset()
	cmd = &cmdCompile{session: ts.session}
	parseFlags(t, cmd, "--reject-attr-cycles=false")
	testutil.ExpectEq(t, 1, cmd.run(context.Background(), []string{path}))
	testutil.ExpectTrue(t, strings.Contains(ts.stderr.String(), "E2090"))
	testutil.ExpectFalse(t, strings.Contains(ts.stderr.String(), "E2031"))

	ts.stderr.Reset()
	ts.stdout.Reset()
	cmd = &cmdCompile{session: ts.session}
	parseFlags(t, cmd, "--reject-attr-cycles=false", "--werror=false")
	testutil.ExpectEq(t, 0, cmd.run(context.Background(), []string{path}))
	testutil.ExpectTrue(t, strings.Contains(ts.stderr.String(), "W4003"))
}

func TestCodegen(t *testing.T) {
	ts := newTestSession(t)
	path := ts.writeFile(t, "schema.yaml", testSchema)

	cmd := &cmdCodegen{session: ts.session, goPackage: "genl"}
	testutil.ExpectEq(t, 0, cmd.run(context.Background(), []string{path}))
	out := ts.stdout.String()
	testutil.ExpectTrue(t, strings.Contains(out, "package genl\n"))
	testutil.ExpectMatch(t, `Perm_write\s+= 0x2`, out)
	testutil.ExpectMatch(t, `Family_perm\s+= 2`, out)
}

func TestDecode(t *testing.T) {
	ts := newTestSession(t)
	path := ts.writeFile(t, "schema.yaml", testSchema)

	msg := make([]byte, 6)
	nlattr.NativeEndian.PutUint16(msg[0:], 6)
	nlattr.NativeEndian.PutUint16(msg[2:], 1)
	nlattr.NativeEndian.PutUint16(msg[4:], 16)

	cmd := &cmdDecode{session: ts.session}
	testutil.ExpectEq(t, 0, cmd.run(context.Background(), []string{path, "Family", hex.EncodeToString(msg)}))
	testutil.ExpectEq(t, "id = 16\n", ts.stdout.String())
}

func TestDecodeStdin(t *testing.T) {
	ts := newTestSession(t)
	path := ts.writeFile(t, "schema.yaml", testSchema)

	msg := make([]byte, 6)
	nlattr.NativeEndian.PutUint16(msg[0:], 6)
	nlattr.NativeEndian.PutUint16(msg[2:], 1)
	nlattr.NativeEndian.PutUint16(msg[4:], 16)

	cmd := &cmdDecode{
		session: ts.session,
		stdin:   strings.NewReader(hex.EncodeToString(msg[:3]) + "\n" + hex.EncodeToString(msg[3:]) + "\n"),
		format:  config.FormatJSON,
	}
	testutil.ExpectEq(t, 0, cmd.run(context.Background(), []string{path, "Family"}))
	testutil.ExpectEq(t, "{\n  \"id\": 16\n}\n", ts.stdout.String())
}

func TestDecodeErrors(t *testing.T) {
	ts := newTestSession(t)
	path := ts.writeFile(t, "schema.yaml", testSchema)
	cmd := &cmdDecode{session: ts.session}

	testutil.ExpectEq(t, 1, cmd.run(context.Background(), []string{path}))
	testutil.ExpectEq(t, 1, cmd.run(context.Background(), []string{path, "Family", "zz"}))
	testutil.ExpectTrue(t, strings.Contains(ts.stderr.String(), "invalid hex input"))
	testutil.ExpectEq(t, 1, cmd.run(context.Background(), []string{path, "Perm", "00"}))
	testutil.ExpectTrue(t, strings.Contains(ts.stderr.String(), `Type "Perm" is not an attribute set or struct`))
}
