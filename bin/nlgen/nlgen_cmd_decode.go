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
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"

	"go.nlgen.org/nlgen/encoding/nltext"
	"go.nlgen.org/nlgen/internal/config"
)

type cmdDecode struct {
	*session
	compileOptions

	stdin  io.Reader
	format string
}

func (*cmdDecode) help() *commandHelp {
	return &commandHelp{
		usage:   "decode SCHEMA TYPE [HEX]",
		summary: "Decode a hex-encoded message as a schema type",
	}
}

func (cmd *cmdDecode) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.format, "format", "f", "", "Output format: text or json")
	cmd.compileOptions.flags(flags)
}

func (cmd *cmdDecode) run(ctx context.Context, argv []string) int {
	if len(argv) < 2 || len(argv) > 3 {
		return cmd.errorf("usage: nlgen decode SCHEMA TYPE [HEX]")
	}
	cfg, ok := cmd.config()
	if !ok {
		return 1
	}
	format := cmd.format
	if format == "" {
		format = cfg.Output.Format
	}

	var input string
	if len(argv) == 3 {
		input = argv[2]
	} else {
		stdin := cmd.stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		buf, err := io.ReadAll(stdin)
		if err != nil {
			return cmd.errorf("%v", err)
		}
		input = string(buf)
	}
	data, err := hex.DecodeString(strings.Join(strings.Fields(input), ""))
	if err != nil {
		return cmd.errorf("invalid hex input: %v", err)
	}

	result := cmd.compile(ctx, cfg, &cmd.compileOptions, argv[0])
	if result == nil {
		return 1
	}
	codec, ok := result.Bundle().Codec(argv[1])
	if !ok {
		return cmd.errorf("Type %q is not an attribute set or struct", argv[1])
	}
	value, err := codec.Decode(data)
	if err != nil {
		return cmd.errorf("%v", err)
	}

	var output []byte
	switch format {
	case config.FormatText:
		output = []byte(nltext.Encode(value))
	case config.FormatJSON:
		output, err = json.MarshalIndent(value, "", "  ")
		if err != nil {
			return cmd.errorf("%v", err)
		}
		output = append(output, '\n')
	default:
		return cmd.errorf("Unsupported output format %q", format)
	}
	return cmd.writeOutput("", output)
}
