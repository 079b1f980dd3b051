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

// Package config loads the nlgen command-line configuration file.
//
// The file is optional. It is read from an explicit path or from
// $NLGEN_CONFIG, never discovered, so a given command line always sees the
// same settings. Command-line flags override values from the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "NLGEN_CONFIG"

// Output formats for compiled manifests and decoded values.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

type Config struct {
	Compile CompileConfig `yaml:"compile"`
	Output  OutputConfig  `yaml:"output"`
	Codegen CodegenConfig `yaml:"codegen"`
}

type CompileConfig struct {
	// RejectAttrCycles makes recursive attribute sets an error.
	RejectAttrCycles bool `yaml:"reject_attr_cycles"`

	WarningsAsErrors bool `yaml:"warnings_as_errors"`
}

type OutputConfig struct {
	// Format is one of "text", "json" or "cbor".
	Format string `yaml:"format"`
}

type CodegenConfig struct {
	Package string `yaml:"package"`
}

func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format: FormatText,
		},
		Codegen: CodegenConfig{
			Package: "nlschema",
		},
	}
}

// Load reads the config file at path, or at $NLGEN_CONFIG if path is empty.
// With neither set it returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatText, FormatJSON, FormatCBOR:
	default:
		return fmt.Errorf("unsupported output format %q (choose text, json or cbor)", c.Output.Format)
	}
	if c.Codegen.Package == "" {
		return fmt.Errorf("codegen package name must not be empty")
	}
	return nil
}
