// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package nix

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"golang.org/x/sys/unix"
)

// Default executable names looked up in PATH.
const (
	NixExecutable       = "nix"
	NurlExecutable      = "nurl"
	MakeExecutable      = "make"
	AlejandraExecutable = "alejandra"
)

// LookupExecutable resolves the given name like a shell would and makes sure
// the current user may execute the result.
func LookupExecutable(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", fmt.Errorf("%w: %s", ErrNotExecutable, name)
		}

		return "", fmt.Errorf("find %s: %w", name, err)
	}

	// LookPath only looks at the mode bits.
	err = unix.Access(path, unix.X_OK)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotExecutable, path, err)
	}

	return path, nil
}

// OrDefault returns name or fallback if name is empty.
func OrDefault(name, fallback string) string {
	if name == "" {
		return fallback
	}

	return name
}
