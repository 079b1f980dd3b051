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
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"go.nlgen.org/nlgen/compiler"
	"go.nlgen.org/nlgen/internal/config"
	"go.nlgen.org/nlgen/schema"
)

var (
	errorLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Render("[ERROR]")
	warnLabel  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Render("[WARN ]")
)

// logger writes text to a terminal and JSON otherwise.
func (s *session) logger() *slog.Logger {
	level := slog.LevelInfo
	if s.verbose {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if f, ok := s.stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		handler = slog.NewTextHandler(s.stderr, options)
	} else {
		handler = slog.NewJSONHandler(s.stderr, options)
	}
	return slog.New(handler)
}

func (s *session) config() (*config.Config, bool) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return nil, false
	}
	return cfg, true
}

func (s *session) errorf(format string, args ...any) int {
	fmt.Fprintf(s.stderr, "%s %s\n", errorLabel, fmt.Sprintf(format, args...))
	return 1
}

// compileOptions are the compile flags shared by subcommands that read
// a schema.
type compileOptions struct {
	flagSet          *pflag.FlagSet
	rejectAttrCycles bool
	warningsAsErrors bool
}

func (opts *compileOptions) flags(flags *pflag.FlagSet) {
	opts.flagSet = flags
	flags.BoolVar(&opts.rejectAttrCycles, "reject-attr-cycles", false, "Reject recursive attribute sets")
	flags.BoolVar(&opts.warningsAsErrors, "werror", false, "Treat warnings as errors")
}

// compilerOptions merges the config file with the flags set on the
// command line. A flag that was not given leaves the config value.
func (opts *compileOptions) compilerOptions(cfg *config.Config) []compiler.CompileOption {
	reject := cfg.Compile.RejectAttrCycles
	werror := cfg.Compile.WarningsAsErrors
	if opts.changed("reject-attr-cycles") {
		reject = opts.rejectAttrCycles
	}
	if opts.changed("werror") {
		werror = opts.warningsAsErrors
	}
	return []compiler.CompileOption{
		compiler.WithRejectAttrCycles(reject),
		compiler.WithWarningsAsErrors(werror),
	}
}

func (opts *compileOptions) changed(name string) bool {
	return opts.flagSet != nil && opts.flagSet.Changed(name)
}

// compile loads and compiles the schema at path, printing diagnostics.
// The result is nil if the schema could not be compiled.
func (s *session) compile(ctx context.Context, cfg *config.Config, opts *compileOptions, path string) *compiler.CompileResult {
	log := s.logger().With("schema", path)
	store, err := schema.Load(path)
	if err != nil {
		s.errorf("%v", err)
		return nil
	}
	log.DebugContext(ctx, "schema loaded", "types", store.Len())

	result := compiler.Compile(store, append(opts.compilerOptions(cfg), compiler.WithLogger(log))...)
	printDiagnostics(s.stderr, &result)
	if len(result.Errors) > 0 {
		return nil
	}
	log.DebugContext(ctx, "schema compiled", "fingerprint", result.Manifest().Fingerprint)
	return &result
}

func printDiagnostics(w io.Writer, result *compiler.CompileResult) {
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "%s %s%s\n", warnLabel, warn, diagnosticSite(warn.TypeName(), warn.Field()))
	}
	for _, err := range result.Errors {
		fmt.Fprintf(w, "%s %s%s\n", errorLabel, err, diagnosticSite(err.TypeName(), err.Field()))
	}
}

func diagnosticSite(typeName, field string) string {
	switch {
	case typeName == "":
		return ""
	case field == "":
		return fmt.Sprintf(" (in %s)", typeName)
	}
	return fmt.Sprintf(" (in %s.%s)", typeName, field)
}

// writeOutput writes data to path, or to stdout if path is empty.
func (s *session) writeOutput(path string, data []byte) int {
	if path == "" {
		if _, err := s.stdout.Write(data); err != nil {
			return s.errorf("%v", err)
		}
		return 0
	}

	openFlags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	fp, err := os.OpenFile(path, openFlags, 0o666)
	if err != nil {
		return s.errorf("%v", err)
	}
	_, writeErr := fp.Write(data)
	closeErr := fp.Close()
	if writeErr != nil {
		return s.errorf("%v", writeErr)
	}
	if closeErr != nil {
		return s.errorf("%v", closeErr)
	}
	return 0
}
