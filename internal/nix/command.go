// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package nix

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/alberand/kd/internal/exitcode"
)

// Command is a single invocation of an external program.
type Command struct {
	// Path or name of the executable.
	Executable string
	// Arguments without the executable.
	Args []string
	// Working directory. Empty means the current one.
	Dir string
	// Additional environment variables in "KEY=value" form. They are added
	// to the environment of kd itself.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String returns the command line as it would be typed in a shell.
func (c *Command) String() string {
	parts := make([]string, 0, len(c.Env)+len(c.Args)+1)
	parts = append(parts, c.Env...)
	parts = append(parts, c.Executable)
	parts = append(parts, c.Args...)

	return strings.Join(parts, " ")
}

func (c *Command) cmd(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Executable, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	return cmd
}

// Run runs the command and waits for it to exit.
//
// If the program exits with a non-zero exit code, an [exitcode.Error] is
// returned.
func (c *Command) Run(ctx context.Context) error {
	err := c.cmd(ctx).Run()
	if err != nil {
		return fmt.Errorf("%s: %w", c.Executable, exitcode.FromExec(err))
	}

	return nil
}

// Output runs the command and returns its stdout. Stderr is captured and
// returned as well, so it can be shown in case of errors. [Command.Stdout] and
// [Command.Stderr] are ignored.
func (c *Command) Output(ctx context.Context) ([]byte, string, error) {
	var stdout, stderr bytes.Buffer

	cmd := c.cmd(ctx)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return nil, stderr.String(), fmt.Errorf("%s: %w", c.Executable, exitcode.FromExec(err))
	}

	return stdout.Bytes(), stderr.String(), nil
}
