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

package nlattr

import (
	"bytes"
)

// GetString decodes a NUL-terminated string payload. A positive maxLength
// bounds the payload size, terminator included.
func GetString(data []byte, maxLength int) (string, error) {
	if maxLength > 0 && len(data) > maxLength {
		return "", errLength(ErrMaxLength, maxLength, len(data))
	}
	if len(data) == 0 || data[len(data)-1] != 0 {
		return "", ErrNotTerminated
	}
	return string(data[:len(data)-1]), nil
}

// PutString encodes s with a NUL terminator. Both string and []byte values
// are accepted.
func PutString(v any, maxLength int) ([]byte, error) {
	var data []byte
	switch v := v.(type) {
	case string:
		data = make([]byte, 0, len(v)+1)
		data = append(data, v...)
	case []byte:
		data = make([]byte, 0, len(v)+1)
		data = append(data, v...)
	default:
		return nil, errType("string", v)
	}
	data = append(data, 0)
	if maxLength > 0 && len(data) > maxLength {
		return nil, errLength(ErrMaxLength, maxLength, len(data))
	}
	return data, nil
}

// GetData returns a copy of an opaque payload.
func GetData(data []byte) []byte {
	return bytes.Clone(data)
}

// PutData encodes an opaque payload from a []byte or string value.
func PutData(v any) ([]byte, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, errType("data", v)
}

// GetBool decodes a one-byte boolean. Only 0 and 1 are valid.
func GetBool(data []byte) (bool, error) {
	if len(data) != 1 {
		return false, errLength(ErrLengthIncorrect, 1, len(data))
	}
	return ReadBool(data[0])
}

func ReadBool(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, ErrInvalidBool
}

func PutBool(v any) ([]byte, error) {
	b, err := WriteBool(v)
	if err != nil {
		return nil, err
	}
	return []byte{b}, nil
}

func WriteBool(v any) (byte, error) {
	b, ok := v.(bool)
	if !ok {
		return 0, errType("bool", v)
	}
	if b {
		return 1, nil
	}
	return 0, nil
}

// GetFlag decodes a presence flag, whose payload must be empty.
func GetFlag(data []byte) (bool, error) {
	if len(data) != 0 {
		return false, errLength(ErrLengthIncorrect, 0, len(data))
	}
	return true, nil
}

// PutFlag checks that v is a bool and returns the empty flag payload.
// Callers omit the attribute when v is false.
func PutFlag(v any) ([]byte, error) {
	if _, ok := v.(bool); !ok {
		return nil, errType("flag", v)
	}
	return []byte{}, nil
}
