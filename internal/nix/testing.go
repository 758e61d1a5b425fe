// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package nix

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteScript writes an executable shell script with the given body into dir
// and returns its path. It is meant for faking external programs in tests.
func WriteScript(tb testing.TB, dir, name, body string) string {
	tb.Helper()

	path := filepath.Join(dir, name)

	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755) //nolint:gosec
	if err != nil {
		tb.Fatalf("failed to write script %s: %v", path, err)
	}

	return path
}
