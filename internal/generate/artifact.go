// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package generate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
)

// ArtifactFileName is the name of the generated module in the environment
// directory.
const ArtifactFileName = "uconfig.nix"

// WriteArtifact writes data to path, creating missing parent directories. An
// existing file is overwritten. Its previous content is returned, nil if the
// file did not exist.
func WriteArtifact(path string, data []byte) ([]byte, error) {
	previous, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read previous artifact: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}

	return previous, nil
}

// Diff returns a unified diff between the previous and the current content
// of the artifact at path. It is empty if both are equal.
func Diff(path string, previous, current []byte) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(previous)),
		B:        difflib.SplitLines(string(current)),
		FromFile: path + " (previous)",
		ToFile:   path,
		Context:  3,
	}

	text, _ := difflib.GetUnifiedDiffString(diff)

	return text
}
