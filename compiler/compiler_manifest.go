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
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"go.nlgen.org/nlgen/schema"
)

// Manifest is a serializable description of a compiled bundle: attribute
// indices, struct layouts, and enum and flags values.
type Manifest struct {
	// Fingerprint is the hex BLAKE3-256 digest of the manifest's
	// deterministic CBOR encoding with an empty fingerprint.
	Fingerprint string          `json:"fingerprint,omitempty" cbor:"fingerprint,omitempty"`
	Types       []*ManifestType `json:"types" cbor:"types"`
}

type ManifestType struct {
	Name string   `json:"name" cbor:"name"`
	Kind string   `json:"kind" cbor:"kind"`
	Orig string   `json:"orig,omitempty" cbor:"orig,omitempty"`
	Root bool     `json:"root,omitempty" cbor:"root,omitempty"`
	Docs []string `json:"docs,omitempty" cbor:"docs,omitempty"`

	Attrs  []*ManifestAttr  `json:"attrs,omitempty" cbor:"attrs,omitempty"`
	Struct *ManifestStruct  `json:"struct,omitempty" cbor:"struct,omitempty"`
	Values []*ManifestValue `json:"values,omitempty" cbor:"values,omitempty"`

	// Derived enum forms that were compiled.
	Bitmask  bool `json:"bitmask,omitempty" cbor:"bitmask,omitempty"`
	FlagList bool `json:"flag_list,omitempty" cbor:"flag_list,omitempty"`
}

type ManifestAttr struct {
	Name      string   `json:"name" cbor:"name"`
	Index     uint16   `json:"index" cbor:"index"`
	Type      string   `json:"type" cbor:"type"`
	Lower     string   `json:"lower,omitempty" cbor:"lower,omitempty"`
	Repeated  bool     `json:"repeated,omitempty" cbor:"repeated,omitempty"`
	MaxLength int      `json:"max_length,omitempty" cbor:"max_length,omitempty"`
	Orig      string   `json:"orig,omitempty" cbor:"orig,omitempty"`
	Docs      []string `json:"docs,omitempty" cbor:"docs,omitempty"`
}

type ManifestStruct struct {
	// Length is the encoded length, or the minimum length of an
	// expandable struct.
	Length     int  `json:"length" cbor:"length"`
	Expandable bool `json:"expandable,omitempty" cbor:"expandable,omitempty"`

	// Deferred is set when some member sizes were only known after the
	// whole schema was compiled.
	Deferred bool             `json:"deferred,omitempty" cbor:"deferred,omitempty"`
	Fields   []*ManifestField `json:"fields" cbor:"fields"`
}

type ManifestField struct {
	Name   string   `json:"name" cbor:"name"`
	Offset int      `json:"offset" cbor:"offset"`
	Size   int      `json:"size" cbor:"size"`
	Type   string   `json:"type" cbor:"type"`
	Count  int      `json:"count,omitempty" cbor:"count,omitempty"`
	Lower  string   `json:"lower,omitempty" cbor:"lower,omitempty"`
	ABI    string   `json:"abi,omitempty" cbor:"abi,omitempty"`
	Orig   string   `json:"orig,omitempty" cbor:"orig,omitempty"`
	Docs   []string `json:"docs,omitempty" cbor:"docs,omitempty"`
}

type ManifestValue struct {
	Name  string   `json:"name" cbor:"name"`
	Value int64    `json:"value" cbor:"value"`
	Field string   `json:"field,omitempty" cbor:"field,omitempty"`
	Orig  string   `json:"orig,omitempty" cbor:"orig,omitempty"`
	Docs  []string `json:"docs,omitempty" cbor:"docs,omitempty"`
}

var (
	manifestEncMode cbor.EncMode
	manifestDecMode cbor.DecMode
)

func init() {
	var err error
	manifestEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("compiler: CBOR encoder initialization failed: " + err.Error())
	}
	manifestDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("compiler: CBOR decoder initialization failed: " + err.Error())
	}
}

// EncodeCBOR encodes the manifest with core deterministic encoding, so
// equal manifests always produce identical bytes.
func (m *Manifest) EncodeCBOR() ([]byte, error) {
	return manifestEncMode.Marshal(m)
}

func DecodeManifestCBOR(data []byte) (*Manifest, error) {
	var m Manifest
	if err := manifestDecMode.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ComputeFingerprint hashes the manifest contents, ignoring the current
// value of Fingerprint.
func (m *Manifest) ComputeFingerprint() (string, error) {
	unsigned := *m
	unsigned.Fingerprint = ""
	data, err := manifestEncMode.Marshal(&unsigned)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Type returns the manifest entry for a type name.
func (m *Manifest) Type(name string) *ManifestType {
	for _, t := range m.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func lowerString(lower *schema.LowerType) string {
	if lower == nil {
		return ""
	}
	return lower.String()
}

func (c *compiler) buildManifest() *Manifest {
	m := &Manifest{}
	for name, def := range c.store.All() {
		t := &ManifestType{
			Name: name,
			Kind: string(def.EffectiveKind()),
			Orig: def.Orig,
			Root: def.Root,
			Docs: def.Docs,
		}
		switch def.EffectiveKind() {
		case schema.KindAttrs:
			for _, info := range c.bundle.codecs[name].attrs {
				opts := &info.attr.Options
				t.Attrs = append(t.Attrs, &ManifestAttr{
					Name:      info.name,
					Index:     info.index,
					Type:      info.attr.Type.String(),
					Lower:     lowerString(opts.Type),
					Repeated:  opts.Repeated,
					MaxLength: opts.MaxLength,
					Orig:      opts.Orig,
					Docs:      opts.Docs,
				})
			}
		case schema.KindStruct:
			t.Struct = manifestStruct(c.bundle.codecs[name].layout)
		case schema.KindFlags:
			for _, value := range def.Values {
				t.Values = append(t.Values, &ManifestValue{
					Name:  value.Name,
					Value: value.Value,
					Orig:  value.Orig,
					Docs:  value.Docs,
				})
			}
		case schema.KindEnum:
			enum := c.bundle.enums[name]
			t.Bitmask = enum.bitmask
			t.FlagList = enum.flagList
			for ii, value := range def.Values {
				mv := &ManifestValue{
					Name:  value.Name,
					Value: value.Value,
					Orig:  value.Orig,
					Docs:  value.Docs,
				}
				if enum.bitmask || enum.flagList {
					mv.Field = enum.values[ii].field
				}
				t.Values = append(t.Values, mv)
			}
		}
		m.Types = append(m.Types, t)
	}
	// The manifest only holds strings, integers, and slices of them, which
	// always encode.
	m.Fingerprint, _ = m.ComputeFingerprint()
	return m
}

func manifestStruct(layout *structLayout) *ManifestStruct {
	ms := &ManifestStruct{
		Length:     layout.size(),
		Expandable: layout.expandable,
		Deferred:   !layout.static,
	}
	offset := 0
	for _, member := range layout.members {
		opts := &member.attr.Options
		size := member.size.get()
		ms.Fields = append(ms.Fields, &ManifestField{
			Name:   member.name,
			Offset: offset,
			Size:   size,
			Type:   member.attr.Type.String(),
			Count:  opts.Count,
			Lower:  lowerString(opts.Type),
			ABI:    opts.ABI,
			Orig:   opts.Orig,
			Docs:   opts.Docs,
		})
		offset += size
	}
	return ms
}
