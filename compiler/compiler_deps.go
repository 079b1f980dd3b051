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

package compiler

import (
	"slices"
	"strings"

	"go.nlgen.org/nlgen/schema"
)

// enumVariants records which derived forms of an enum the first pass used.
type enumVariants struct {
	// Bitmask is the struct-of-booleans form keyed by 1<<value, used by
	// asflags() lower types.
	Bitmask bool

	// FlagList is the attribute set of zero-length flags keyed by value,
	// used by {kind: flags} type expressions.
	FlagList bool
}

type requirements map[string]enumVariants

func (r requirements) needBitmask(enum string) {
	v := r[enum]
	v.Bitmask = true
	r[enum] = v
}

func (r requirements) needFlagList(enum string) {
	v := r[enum]
	v.FlagList = true
	r[enum] = v
}

// typeRefs returns the struct and attrs types that a type refers to,
// directly or as array and map elements, in declaration order.
func (c *compiler) typeRefs(def *schema.TypeDef) []string {
	var refs []string
	for _, attr := range def.Attrs {
		expr := &attr.Type
		for expr.Kind == schema.ExprArray || expr.Kind == schema.ExprMap {
			expr = expr.Elem
		}
		if expr.Kind != schema.ExprName {
			continue
		}
		target, ok := c.store.Get(expr.Name)
		if !ok {
			continue
		}
		switch target.EffectiveKind() {
		case schema.KindStruct, schema.KindAttrs:
			if !slices.Contains(refs, expr.Name) {
				refs = append(refs, expr.Name)
			}
		}
	}
	return refs
}

const (
	unvisited = iota
	visiting
	visited
)

// checkCycles rejects structs that contain themselves by value. Recursive
// attribute sets are reported as warnings unless the options reject them.
func (c *compiler) checkCycles() {
	state := make(map[string]int)
	reported := make(map[string]bool)
	var stack []string

	var visit func(name string, def *schema.TypeDef)
	visit = func(name string, def *schema.TypeDef) {
		state[name] = visiting
		stack = append(stack, name)
		for _, ref := range c.typeRefs(def) {
			switch state[ref] {
			case visiting:
				start := slices.Index(stack, ref)
				cycle := append(slices.Clone(stack[start:]), ref)
				c.reportCycle(cycle, reported)
			case unvisited:
				refDef, _ := c.store.Get(ref)
				visit(ref, refDef)
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = visited
	}

	for name, def := range c.store.All() {
		switch def.EffectiveKind() {
		case schema.KindStruct, schema.KindAttrs:
			if state[name] == unvisited {
				visit(name, def)
			}
		}
	}
}

func (c *compiler) reportCycle(cycle []string, reported map[string]bool) {
	members := slices.Clone(cycle[:len(cycle)-1])
	slices.Sort(members)
	key := strings.Join(members, "\x00")
	if reported[key] {
		return
	}
	reported[key] = true

	at := site{typeName: cycle[0]}
	allStructs := true
	for _, name := range members {
		def, _ := c.store.Get(name)
		if def.EffectiveKind() != schema.KindStruct {
			allStructs = false
		}
	}
	switch {
	case allStructs:
		c.err(errStructCycle(at, cycle))
	case c.opts.rejectAttrCycles:
		c.err(errAttrsCycle(at, cycle))
	default:
		c.warn(warnAttrsCycle(at, cycle))
	}
}
