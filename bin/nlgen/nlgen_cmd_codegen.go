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
	"context"

	"github.com/spf13/pflag"

	"go.nlgen.org/nlgen/codegen/golang"
)

type cmdCodegen struct {
	*session
	compileOptions

	outPath   string
	goPackage string
}

func (*cmdCodegen) help() *commandHelp {
	return &commandHelp{
		usage:   "codegen SCHEMA",
		summary: "Generate Go constants from a schema",
	}
}

func (cmd *cmdCodegen) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "", "Write generated source to a file instead of stdout")
	flags.StringVar(&cmd.goPackage, "package", "", "Go package name of the generated file")
	cmd.compileOptions.flags(flags)
}

func (cmd *cmdCodegen) run(ctx context.Context, argv []string) int {
	if len(argv) != 1 {
		return cmd.errorf("usage: nlgen codegen SCHEMA")
	}
	cfg, ok := cmd.config()
	if !ok {
		return 1
	}
	goPackage := cmd.goPackage
	if goPackage == "" {
		goPackage = cfg.Codegen.Package
	}

	result := cmd.compile(ctx, cfg, &cmd.compileOptions, argv[0])
	if result == nil {
		return 1
	}
	output, err := golang.Generate(result.Manifest(), goPackage)
	if err != nil {
		return cmd.errorf("%v", err)
	}
	return cmd.writeOutput(cmd.outPath, output)
}
