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

package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses a schema document whose top level maps type names to
// type definitions. Declaration order is preserved.
func ParseYAML(src []byte) (*TypeStore, error) {
	return parseDocument("YAML", src)
}

func parseDocument(format string, src []byte) (*TypeStore, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, errParse(format, err)
	}
	store := NewTypeStore()
	if len(doc.Content) == 0 {
		return store, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errNotMapping("schema document", root.Line)
	}
	for ii := 0; ii+1 < len(root.Content); ii += 2 {
		key, value := root.Content[ii], root.Content[ii+1]
		def, err := decodeTypeDef(key.Value, value)
		if err != nil {
			return nil, err
		}
		if err := store.Add(key.Value, def); err != nil {
			err.(*Error).line = key.Line
			return nil, err
		}
	}
	return store, nil
}

// mappingPairs calls fn for each key of a mapping node.
func mappingPairs(node *yaml.Node, what string, fn func(key string, value *yaml.Node) error) error {
	if node.Kind != yaml.MappingNode {
		return errNotMapping(what, node.Line)
	}
	for ii := 0; ii+1 < len(node.Content); ii += 2 {
		if err := fn(node.Content[ii].Value, node.Content[ii+1]); err != nil {
			return err
		}
	}
	return nil
}

func decodeField(node *yaml.Node, path, key string, out any) error {
	if err := node.Decode(out); err != nil {
		return errInvalidField(path, key, node.Line, err)
	}
	return nil
}

func decodeTypeDef(name string, node *yaml.Node) (*TypeDef, error) {
	def := &TypeDef{}
	path := fmt.Sprintf("type '%s'", name)
	var attrs, values *yaml.Node
	err := mappingPairs(node, path, func(key string, value *yaml.Node) error {
		switch key {
		case "kind":
			var kind string
			if err := decodeField(value, path, key, &kind); err != nil {
				return err
			}
			def.Kind = Kind(kind)
			if !def.Kind.valid() {
				return errInvalidKind(path, kind, value.Line)
			}
		case "orig":
			return decodeField(value, path, key, &def.Orig)
		case "docs":
			return decodeField(value, path, key, &def.Docs)
		case "root":
			return decodeField(value, path, key, &def.Root)
		case "zero":
			return decodeField(value, path, key, &def.Zero)
		case "attrs":
			attrs = value
		case "values":
			values = value
		default:
			return errUnknownKey(path, key, value.Line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if attrs != nil {
		if attrs.Kind != yaml.SequenceNode {
			return nil, errInvalidField(path, "attrs", attrs.Line, fmt.Errorf("expected a sequence"))
		}
		for ii, item := range attrs.Content {
			attr, err := decodeAttribute(fmt.Sprintf("%s.attrs[%d]", name, ii), item)
			if err != nil {
				return nil, err
			}
			def.Attrs = append(def.Attrs, attr)
		}
	}
	if values != nil {
		if values.Kind != yaml.SequenceNode {
			return nil, errInvalidField(path, "values", values.Line, fmt.Errorf("expected a sequence"))
		}
		for ii, item := range values.Content {
			value, err := decodeValue(fmt.Sprintf("%s.values[%d]", name, ii), item)
			if err != nil {
				return nil, err
			}
			def.Values = append(def.Values, value)
		}
	}
	return def, nil
}

func decodeAttribute(path string, node *yaml.Node) (AttributeDef, error) {
	var attr AttributeDef
	if node.Kind != yaml.SequenceNode || len(node.Content) < 2 || len(node.Content) > 3 {
		return attr, errInvalidAttribute(path, "expected [name, type] or [name, type, options]", node.Line)
	}
	nameNode := node.Content[0]
	if nameNode.Kind != yaml.ScalarNode || nameNode.Value == "" {
		return attr, errInvalidAttribute(path, "name must be a non-empty string", nameNode.Line)
	}
	attr.Name = nameNode.Value
	path = fmt.Sprintf("%s (%s)", path, attr.Name)

	expr, err := decodeTypeExpr(path, node.Content[1])
	if err != nil {
		return attr, err
	}
	attr.Type = expr

	if len(node.Content) == 3 {
		opts, err := decodeOptions(path, node.Content[2])
		if err != nil {
			return attr, err
		}
		attr.Options = opts
	}
	return attr, nil
}

func decodeTypeExpr(path string, node *yaml.Node) (TypeExpr, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag != "!!str" || node.Value == "" {
			return TypeExpr{}, errInvalidTypeExpr(path, "type name must be a non-empty string", node.Line)
		}
		return Ref(node.Value), nil
	case yaml.MappingNode:
	default:
		return TypeExpr{}, errInvalidTypeExpr(path, "expected a type name or mapping", node.Line)
	}

	var expr TypeExpr
	var elem *yaml.Node
	hasZero := false
	err := mappingPairs(node, path, func(key string, value *yaml.Node) error {
		switch key {
		case "kind":
			var kind string
			if err := decodeField(value, path, key, &kind); err != nil {
				return err
			}
			expr.Kind = ExprKind(kind)
		case "type":
			elem = value
		case "zero":
			hasZero = true
			return decodeField(value, path, key, &expr.Zero)
		default:
			return errUnknownKey(path, key, value.Line)
		}
		return nil
	})
	if err != nil {
		return TypeExpr{}, err
	}
	switch expr.Kind {
	case ExprArray, ExprMap, ExprFlags:
	case ExprName:
		return TypeExpr{}, errMissingKey(path, "kind", node.Line)
	default:
		return TypeExpr{}, errInvalidTypeExpr(path, fmt.Sprintf("unknown kind %q", string(expr.Kind)), node.Line)
	}
	if elem == nil {
		return TypeExpr{}, errMissingKey(path, "type", node.Line)
	}
	if hasZero && expr.Kind != ExprArray {
		return TypeExpr{}, errInvalidTypeExpr(path, "'zero' is only valid for arrays", node.Line)
	}
	inner, err := decodeTypeExpr(path, elem)
	if err != nil {
		return TypeExpr{}, err
	}
	if expr.Kind == ExprFlags && inner.Kind != ExprName {
		return TypeExpr{}, errInvalidTypeExpr(path, "flags must name an enum type", elem.Line)
	}
	expr.Elem = &inner
	return expr, nil
}

func decodeLowerType(path string, node *yaml.Node) (*LowerType, error) {
	if node.Kind == yaml.ScalarNode {
		if node.Value == "" {
			return nil, errInvalidField(path, "type", node.Line, fmt.Errorf("empty type name"))
		}
		return &LowerType{Name: node.Value}, nil
	}
	lower := &LowerType{}
	var kind string
	err := mappingPairs(node, path+" lower type", func(key string, value *yaml.Node) error {
		switch key {
		case "kind":
			return decodeField(value, path, key, &kind)
		case "type":
			return decodeField(value, path, key, &lower.Name)
		}
		return errUnknownKey(path, key, value.Line)
	})
	if err != nil {
		return nil, err
	}
	if kind != string(ExprFlags) {
		return nil, errInvalidField(path, "type", node.Line, fmt.Errorf("lower type kind must be \"flags\", got %q", kind))
	}
	if lower.Name == "" {
		return nil, errMissingKey(path+" lower type", "type", node.Line)
	}
	lower.AsFlags = true
	return lower, nil
}

func decodeOptions(path string, node *yaml.Node) (AttributeOptions, error) {
	var opts AttributeOptions
	err := mappingPairs(node, path+" options", func(key string, value *yaml.Node) error {
		switch key {
		case "docs":
			return decodeField(value, path, key, &opts.Docs)
		case "type":
			lower, err := decodeLowerType(path, value)
			opts.Type = lower
			return err
		case "maxLength":
			if err := decodeField(value, path, key, &opts.MaxLength); err != nil {
				return err
			}
			if opts.MaxLength <= 0 {
				return errInvalidField(path, key, value.Line, fmt.Errorf("must be positive"))
			}
		case "orig":
			return decodeField(value, path, key, &opts.Orig)
		case "repeated":
			return decodeField(value, path, key, &opts.Repeated)
		case "count":
			if err := decodeField(value, path, key, &opts.Count); err != nil {
				return err
			}
			if opts.Count <= 0 {
				return errInvalidField(path, key, value.Line, fmt.Errorf("must be positive"))
			}
		case "abi":
			return decodeField(value, path, key, &opts.ABI)
		default:
			return errUnknownKey(path+" options", key, value.Line)
		}
		return nil
	})
	return opts, err
}

func decodeValue(path string, node *yaml.Node) (ValueDef, error) {
	var value ValueDef
	var hasValue, hasName bool
	err := mappingPairs(node, path, func(key string, field *yaml.Node) error {
		switch key {
		case "value":
			hasValue = true
			return decodeField(field, path, key, &value.Value)
		case "name":
			hasName = true
			return decodeField(field, path, key, &value.Name)
		case "docs":
			return decodeField(field, path, key, &value.Docs)
		case "orig":
			return decodeField(field, path, key, &value.Orig)
		}
		return errUnknownKey(path, key, field.Line)
	})
	if err != nil {
		return value, err
	}
	if !hasValue {
		return value, errMissingKey(path, "value", node.Line)
	}
	if !hasName || value.Name == "" {
		return value, errMissingKey(path, "name", node.Line)
	}
	return value, nil
}
