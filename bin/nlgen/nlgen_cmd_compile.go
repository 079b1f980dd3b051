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

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"

	"go.nlgen.org/nlgen/encoding/nltext"
	"go.nlgen.org/nlgen/internal/config"
)

type cmdCompile struct {
	*session
	compileOptions

	outPath string
	format  string
}

func (*cmdCompile) help() *commandHelp {
	return &commandHelp{
		usage:   "compile SCHEMA",
		summary: "Compile a schema and print its manifest",
	}
}

func (cmd *cmdCompile) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "", "Write the manifest to a file instead of stdout")
	flags.StringVarP(&cmd.format, "format", "f", "", "Manifest format: text, json or cbor")
	cmd.compileOptions.flags(flags)
}

func (cmd *cmdCompile) run(ctx context.Context, argv []string) int {
	if len(argv) != 1 {
		return cmd.errorf("usage: nlgen compile SCHEMA")
	}
	cfg, ok := cmd.config()
	if !ok {
		return 1
	}
	format := cmd.format
	if format == "" {
		format = cfg.Output.Format
	}

	result := cmd.compile(ctx, cfg, &cmd.compileOptions, argv[0])
	if result == nil {
		return 1
	}
	manifest := result.Manifest()

	var output []byte
	switch format {
	case config.FormatText:
		output = []byte(nltext.Encode(manifest))
	case config.FormatJSON:
		var err error
		output, err = json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			return cmd.errorf("%v", err)
		}
		output = append(output, '\n')
	case config.FormatCBOR:
		var err error
		output, err = manifest.EncodeCBOR()
		if err != nil {
			return cmd.errorf("%v", err)
		}
	default:
		return cmd.errorf("Unsupported output format %q", format)
	}
	return cmd.writeOutput(cmd.outPath, output)
}
