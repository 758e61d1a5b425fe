// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Load reads and decodes the settings file at path.
//
// It returns [ErrNotFound] if the file does not exist and a [ParseError] if
// the content is not valid TOML. A kconfig option with a value that is not a
// scalar is a [ValidationError]. Unknown keys are ignored. Unset fields that
// have a default are filled.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Decode(data)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}

		return nil, err
	}

	return cfg, nil
}

// Decode decodes the given settings document.
func Decode(data []byte) (*Config, error) {
	var cfg Config

	err := toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	if cfg.Kernel != nil {
		cfg.Kernel.Config, err = decodeKernelOptions(data)
		if err != nil {
			var validationErr *ValidationError
			if errors.As(err, &validationErr) {
				return nil, err
			}

			return nil, &ParseError{Err: err}
		}
	}

	cfg.setDefaults()

	return &cfg, nil
}

// Encode serializes the config as TOML document. Decoding the result yields
// an equal [Config].
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer

	sections := []any{
		struct {
			Name     string   `toml:"name"`
			Packages []string `toml:"packages,omitempty"`
		}{c.Name, c.Packages},
		struct {
			Kernel *KernelConfig `toml:"kernel,omitempty"`
		}{c.Kernel},
		struct {
			Xfstests *XfstestsConfig `toml:"xfstests,omitempty"`
		}{c.Xfstests},
		struct {
			Xfsprogs *XfsprogsConfig `toml:"xfsprogs,omitempty"`
		}{c.Xfsprogs},
		struct {
			Script *ScriptConfig `toml:"script,omitempty"`
		}{c.Script},
		struct {
			Qemu *QemuConfig `toml:"qemu,omitempty"`
		}{c.Qemu},
	}

	for idx, section := range sections {
		data, err := toml.Marshal(section)
		if err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}

		if len(data) > 0 && buf.Len() > 0 {
			buf.WriteByte('\n')
		}

		buf.Write(data)

		// The kernel options follow their parent table so the document
		// reads naturally.
		if idx == 1 && c.Kernel != nil && len(c.Kernel.Config) > 0 {
			options, err := c.Kernel.Config.encode()
			if err != nil {
				return nil, err
			}

			buf.WriteByte('\n')
			buf.Write(options)
		}
	}

	return buf.Bytes(), nil
}

// Save writes the encoded config to path, replacing any existing file.
func (c *Config) Save(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
