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
	stdflag "flag"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
}

// session holds state shared by all subcommands.
type session struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
}

func main() {
	ctx := context.Background()
	s := &session{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	nlgenCmd := &cobra.Command{
		Use: "nlgen [options] COMMAND",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	nlgenCmd.RunE = func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, nlgenCmd.UsageString())
		os.Exit(1)
		return nil
	}
	globalFlags := nlgenCmd.PersistentFlags()
	globalFlags.StringVar(&s.configPath, "config", "", "Path to a config file (default $NLGEN_CONFIG)")
	globalFlags.BoolVarP(&s.verbose, "verbose", "v", false, "Enable debug logging")

	commands := []command{
		&cmdCompile{session: s},
		&cmdCodegen{session: s},
		&cmdDecode{session: s},
	}
	for _, cmd := range commands {
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			RunE: func(_ *cobra.Command, args []string) error {
				os.Exit(cmd.run(ctx, args))
				return nil
			},
		}
		nlgenCmd.AddCommand(cobraCmd)
		cmd.flags(cobraCmd.Flags())
	}

	nlgenCmd.Flags().AddGoFlagSet(stdflag.CommandLine)
	nlgenCmd.ParseFlags(nil)
	if _, err := nlgenCmd.ExecuteC(); err != nil {
		os.Exit(1)
	}
}
