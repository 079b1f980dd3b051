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

// Package compiler turns a netlink type schema into a [Bundle] of codecs.
//
// Compilation runs in two passes. The first compiles structs, flags types,
// and attribute sets, and records which derived forms of each enum those
// types use. The second compiles enums, emitting the bitmask and TLV flag
// list forms only where the first pass asked for them.
package compiler

import (
	"log/slog"

	"go.nlgen.org/nlgen"
	"go.nlgen.org/nlgen/schema"
)

type CompileOption interface {
	apply(*CompileOptions)
}

type compileOption func(*CompileOptions)

func (f compileOption) apply(opts *CompileOptions) { f(opts) }

type CompileOptions struct {
	rejectAttrCycles bool
	warningsAsErrors bool
	logger           *slog.Logger
}

// WithRejectAttrCycles makes recursive attribute sets a compile error.
// By default they only produce a warning, since a recursive attribute set
// can still describe finite messages.
func WithRejectAttrCycles(reject bool) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.rejectAttrCycles = reject
	})
}

func WithWarningsAsErrors(enable bool) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.warningsAsErrors = enable
	})
}

func WithLogger(logger *slog.Logger) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.logger = logger
	})
}

type CompileResult struct {
	bundle   *Bundle
	manifest *Manifest

	Errors   []*Error
	Warnings []*Warning
}

// Bundle returns the compiled codecs, or nil if compilation failed.
func (r *CompileResult) Bundle() *Bundle {
	return r.bundle
}

// Manifest describes the compiled codecs, or is nil if compilation failed.
func (r *CompileResult) Manifest() *Manifest {
	return r.manifest
}

func Compile(store *schema.TypeStore, opts ...CompileOption) CompileResult {
	return NewCompileOptions(opts...).Compile(store)
}

func NewCompileOptions(opts ...CompileOption) *CompileOptions {
	compileOptions := &CompileOptions{}
	for _, opt := range opts {
		opt.apply(compileOptions)
	}
	return compileOptions
}

func (opts *CompileOptions) Compile(store *schema.TypeStore) CompileResult {
	log := opts.logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	c := compiler{
		opts:   opts,
		log:    log,
		store:  store,
		bundle: newBundle(store),
	}
	c.compileSchema()
	if opts.warningsAsErrors {
		for _, w := range c.warnings {
			c.err(errWarningAsError(w))
		}
	}
	if len(c.errors) > 0 {
		c.log.Debug("compilation failed", "errors", len(c.errors), "warnings", len(c.warnings))
		return CompileResult{
			Errors:   c.errors,
			Warnings: c.warnings,
		}
	}
	return CompileResult{
		bundle:   c.bundle,
		manifest: c.buildManifest(),
		Warnings: c.warnings,
	}
}

type compiler struct {
	opts     *CompileOptions
	log      *slog.Logger
	store    *schema.TypeStore
	bundle   *Bundle
	errors   []*Error
	warnings []*Warning
}

func (c *compiler) err(err error) {
	c.errors = append(c.errors, err.(*Error))
}

func (c *compiler) warn(warning *Warning) {
	c.warnings = append(c.warnings, warning)
}

// Each phase runs only if the previous one reported no errors, so later
// phases can assume a well-formed schema.
func (c *compiler) compileSchema() {
	c.validateDecls()
	if len(c.errors) > 0 {
		return
	}
	c.checkCycles()
	if len(c.errors) > 0 {
		return
	}

	reqs := c.compileTypes()
	c.log.Debug("compiled structs, flags and attribute sets",
		"types", c.store.Len(),
		"enum_variants", len(reqs),
	)
	if len(c.errors) > 0 {
		return
	}
	c.compileEnums(reqs)
}

func (c *compiler) validateDecls() {
	for name, def := range c.store.All() {
		at := site{typeName: name}
		kind := def.EffectiveKind()
		switch kind {
		case schema.KindAttrs, schema.KindStruct:
			if len(def.Values) > 0 {
				c.err(errKindContent(at, kind, "values"))
			}
			seen := make(map[string]bool, len(def.Attrs))
			for _, attr := range def.Attrs {
				fieldAt := site{typeName: name, field: attr.Name}
				if seen[attr.Name] {
					c.err(errDuplicateField(fieldAt))
				}
				seen[attr.Name] = true
				if nlgen.IsReservedField(attr.Name) {
					c.err(errReservedField(fieldAt))
				}
			}
		case schema.KindEnum, schema.KindFlags:
			if len(def.Attrs) > 0 {
				c.err(errKindContent(at, kind, "attrs"))
			}
			seen := make(map[string]bool, len(def.Values))
			for _, value := range def.Values {
				if seen[value.Name] {
					c.err(errDuplicateValueName(at, value.Name))
				}
				seen[value.Name] = true
			}
		}
	}
}

// compileTypes is the first pass. Enums are skipped; the returned table
// records which of their derived forms are needed.
func (c *compiler) compileTypes() requirements {
	reqs := make(requirements)
	for name, def := range c.store.All() {
		switch def.EffectiveKind() {
		case schema.KindStruct:
			c.compileStruct(name, def, reqs)
		case schema.KindFlags:
			c.compileFlags(name, def)
		case schema.KindAttrs:
			c.compileAttrs(name, def, reqs)
		}
	}
	return reqs
}

func (c *compiler) compileEnums(reqs requirements) {
	for name, def := range c.store.All() {
		if def.EffectiveKind() != schema.KindEnum {
			continue
		}
		variants := reqs[name]
		c.log.Debug("compiling enum",
			"enum", name,
			"bitmask", variants.Bitmask,
			"flag_list", variants.FlagList,
		)
		c.compileEnum(name, def, variants)
	}
}
