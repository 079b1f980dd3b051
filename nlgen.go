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

// Package nlgen holds the value model shared by the netlink attribute
// codecs that the compiler produces.
//
// Decoded structs, attribute sets, and flag sets are represented as an
// [Object]. Numeric members decode to the Go integer or float type of
// their wire width (uint16 for "u16", int64 for "s64", and so on), byte
// payloads decode to []byte, strings to string, and arrays to []any.
package nlgen

// Object is the decoded form of a struct, attribute set, or flag set.
//
// Absent attributes are simply missing from the map. Encoders treat a nil
// value the same as a missing key.
type Object = map[string]any

const (
	// UnknownField holds the bits of a flags value that matched no declared
	// flag. It is only present when those bits are non-zero.
	UnknownField = "__unknown"

	// UnparsedField holds the trailing bytes of an expandable struct that
	// follow the known prefix.
	UnparsedField = "__unparsed"
)

// IsReservedField reports whether name is a field name that codecs use for
// their own bookkeeping.
func IsReservedField(name string) bool {
	return name == UnknownField || name == UnparsedField
}
