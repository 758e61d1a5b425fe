// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package nix

import (
	"bytes"
	"context"
	"log/slog"
)

// Alejandra formats nix code with the "alejandra" program.
type Alejandra struct {
	// Path or name of the alejandra executable.
	Executable string
}

// Format returns the formatted version of the given nix code.
func (a *Alejandra) Format(ctx context.Context, code []byte) ([]byte, error) {
	cmd := Command{
		Executable: OrDefault(a.Executable, AlejandraExecutable),
		Args:       []string{"--quiet", "-"},
		Stdin:      bytes.NewReader(code),
	}

	slog.Debug("Format nix code", slog.String("command", cmd.String()))

	stdout, stderr, err := cmd.Output(ctx)
	if err != nil {
		return nil, &FormatError{Stderr: stderr, Err: err}
	}

	if len(bytes.TrimSpace(stdout)) == 0 {
		return nil, &FormatError{Stderr: stderr, Err: ErrEmptyOutput}
	}

	return stdout, nil
}
