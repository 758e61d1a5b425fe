// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package nix

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Nurl pins git sources using the "nurl" program. The result is a nix
// expression that fetches the source at exactly the given revision.
type Nurl struct {
	// Path or name of the nurl executable.
	Executable string
	// Progress receives a line for each fetch if set.
	Progress io.Writer
}

// Args returns the arguments for fetching repo at rev.
func (n *Nurl) Args(repo, rev string) []string {
	return []string{
		"--fetcher", "builtins.fetchGit",
		"--arg", "allRefs", "true",
		repo,
		rev,
	}
}

// Fetch returns the nix expression for repo at rev. It fails with a
// [FetchError] that carries nurl's stderr.
func (n *Nurl) Fetch(ctx context.Context, repo, rev string) (string, error) {
	if n.Progress != nil {
		fmt.Fprintf(n.Progress, "Fetching source for %s at %s\n", repo, rev)
	}

	cmd := Command{
		Executable: OrDefault(n.Executable, NurlExecutable),
		Args:       n.Args(repo, rev),
	}

	slog.Debug("Fetch source", slog.String("command", cmd.String()))

	stdout, stderr, err := cmd.Output(ctx)
	if err != nil {
		return "", &FetchError{Repo: repo, Rev: rev, Stderr: stderr, Err: err}
	}

	if !utf8.Valid(stdout) {
		return "", &FetchError{Repo: repo, Rev: rev, Err: ErrInvalidOutput}
	}

	expr := strings.TrimSpace(string(stdout))
	if expr == "" {
		return "", &FetchError{Repo: repo, Rev: rev, Stderr: stderr, Err: ErrEmptyOutput}
	}

	return expr, nil
}
