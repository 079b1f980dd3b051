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
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// ParseJSON parses a schema document in JSON. Comments and trailing commas
// are accepted.
//
// JSON objects keep their key order, so type declaration order is the order
// in which the types appear in the document.
func ParseJSON(src []byte) (*TypeStore, error) {
	return parseDocument("JSON", jsonc.ToJSON(src))
}

// Load reads a schema file, choosing the parser by file extension.
func Load(path string) (*TypeStore, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var store *TypeStore
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		store, err = ParseYAML(src)
	case ".json", ".jsonc":
		store, err = ParseJSON(src)
	default:
		return nil, fmt.Errorf("%s: unknown schema file extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}
