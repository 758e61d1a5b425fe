// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	globalDir         = "kd"
	globalFileName    = "config.toml"
	globalPlaceholder = "# kd global config\n"
)

// Global is the content of the per-user global settings file.
type Global struct {
	Nix   NixSettings  `toml:"nix"`
	Tools ToolSettings `toml:"tools"`
}

// NixSettings are defaults for nix invocations.
type NixSettings struct {
	// Args are additional arguments for every nix call, separated by
	// whitespace.
	Args string `toml:"args"`
}

// ArgList returns [NixSettings.Args] split into single arguments.
func (n NixSettings) ArgList() []string {
	return strings.Fields(n.Args)
}

// ToolSettings overrides the executables used. Empty fields use the default
// name looked up in PATH.
type ToolSettings struct {
	Nix       string `toml:"nix"`
	Nurl      string `toml:"nurl"`
	Make      string `toml:"make"`
	Alejandra string `toml:"alejandra"`
}

// GlobalPath returns the default path of the global settings file. It is
// located in $XDG_CONFIG_HOME or, if not set, in $HOME/.config. Returns an
// empty string if neither is set.
func GlobalPath(getenv func(string) string) string {
	if dir := getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, globalDir, globalFileName)
	}

	if home := getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", globalDir, globalFileName)
	}

	return ""
}

// LoadGlobal reads the global settings file at path.
//
// If the file does not exist, it is created with a placeholder comment and
// the defaults are returned. Failing to create it is not an error. An empty
// path returns the defaults.
func LoadGlobal(path string) (*Global, error) {
	global := &Global{}

	if path == "" {
		return global, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		err := createGlobal(path)
		if err != nil {
			slog.Warn("Failed to create global config",
				slog.String("path", path),
				slog.Any("error", err))
		}

		return global, nil
	} else if err != nil {
		return nil, fmt.Errorf("read global config: %w", err)
	}

	err = toml.Unmarshal(data, global)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return global, nil
}

func createGlobal(path string) error {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	err = os.WriteFile(path, []byte(globalPlaceholder), 0o644)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	slog.Debug("Created global config", slog.String("path", path))

	return nil
}
