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

package compiler_test

import (
	"fmt"
	"io/fs"
	"testing"

	"go.nlgen.org/nlgen/compiler"
	"go.nlgen.org/nlgen/encoding/nltext"
	"go.nlgen.org/nlgen/internal/testutil"
	"go.nlgen.org/nlgen/schema"
)

var (
	testdata        fs.FS
	compileErrors   map[string]*testutil.Diagnostic
	compileWarnings map[string]*testutil.Diagnostic
)

func init() {
	var err error
	testdata, err = testutil.TestdataFS()
	if err != nil {
		panic(err)
	}
	compileErrors, err = testutil.LoadDiagnostics(testdata, "diagnostics/compile_errors.yaml")
	if err != nil {
		panic(err)
	}
	compileWarnings, err = testutil.LoadDiagnostics(testdata, "diagnostics/compile_warnings.yaml")
	if err != nil {
		panic(err)
	}
}

func schemaTest(t *testing.T, testName string) {
	t.Parallel()

	expectOK := fmt.Sprintf("schema/%s/expect_ok.txt", testName)
	expectErr := fmt.Sprintf("schema/%s/expect_err.yaml", testName)

	if _, err := fs.Stat(testdata, expectErr); err == nil {
		testExpectErr(t, testName, expectErr)
	} else {
		testExpectOK(t, testName, expectOK)
	}
}

func testExpectOK(t *testing.T, testName string, expectOK string) {
	expectText, err := fs.ReadFile(testdata, expectOK)
	testutil.AssertNoError(t, err)

	var expectWarnings []*testutil.ExpectedDiagnostic
	expectWarnPath := fmt.Sprintf("schema/%s/expect_warn.yaml", testName)
	if _, err := fs.Stat(testdata, expectWarnPath); err == nil {
		expectWarnings = testutil.LoadExpected(
			t, compileWarnings, testdata, expectWarnPath, "warnings", "warning",
		)
	}

	result := compileTestInput(t, testName)
	if len(result.Errors) > 0 {
		for _, err := range result.Errors {
			testutil.ExpectNoError(t, err)
		}
		t.FailNow()
	}
	testutil.ExpectDiagnostics(t, "warning", expectWarnings, result.Warnings)

	manifest := *result.Manifest()
	testutil.ExpectEq(t, 64, len(manifest.Fingerprint))
	manifest.Fingerprint = ""
	testutil.ExpectNoDiff(t, string(expectText), nltext.Encode(&manifest))
}

func testExpectErr(t *testing.T, testName string, expectErrPath string) {
	expectErrors := testutil.LoadExpected(
		t, compileErrors, testdata, expectErrPath, "errors", "error",
	)
	if len(expectErrors) == 0 {
		t.Fatalf("len(expectErrors) == 0")
	}

	result := compileTestInput(t, testName)
	testutil.ExpectDiagnostics(t, "error", expectErrors, result.Errors)
	testutil.ExpectTrue(t, result.Bundle() == nil)
	testutil.ExpectTrue(t, result.Manifest() == nil)
}

func compileTestInput(t *testing.T, testName string) compiler.CompileResult {
	srcPath := fmt.Sprintf("schema/%s/%s.yaml", testName, testName)
	src, err := fs.ReadFile(testdata, srcPath)
	testutil.AssertNoError(t, err)

	store, err := schema.ParseYAML(src)
	testutil.AssertNoError(t, err)
	return compiler.Compile(store)
}

func TestSchema(t *testing.T) {
	t.Parallel()

	testDirs, err := fs.ReadDir(testdata, "schema")
	testutil.AssertNoError(t, err)

	for _, testDir := range testDirs {
		if testDir.IsDir() {
			testName := testDir.Name()
			t.Run(testName, func(t *testing.T) {
				schemaTest(t, testName)
			})
		}
	}
}
