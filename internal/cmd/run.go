// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alberand/kd/internal/config"
	"github.com/alberand/kd/internal/exitcode"
	"github.com/alberand/kd/internal/nix"
)

func newState(flags *flags, cmd command, cfg IO) (*state, error) {
	globalPath := flags.configPath
	if globalPath == "" {
		globalPath = config.GlobalPath(os.Getenv)
	}

	global, err := config.LoadGlobal(globalPath)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	tools, err := lookupTools(global.Tools, cmd.generates)
	if err != nil {
		return nil, err
	}

	curdir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get current directory: %w", err)
	}

	s := &state{
		io:     cfg,
		debug:  flags.debug,
		curdir: curdir,
		global: global,
		tools:  tools,
	}

	if cmd.needsConfig {
		err := s.loadConfig()
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func run(ctx context.Context, flags *flags, cfg IO) error {
	cmd := commands[flags.command]

	cmdFlags, err := newCommandFlags(flags.command, cfg.Stderr)
	if err != nil {
		return err
	}

	err = cmdFlags.ParseArgs(flags.args)
	if err != nil {
		return err
	}

	s, err := newState(flags, cmd, cfg)
	if err != nil {
		return err
	}

	return cmd.run(ctx, s, cmdFlags)
}

func handleParseArgsError(err error, stderr io.Writer) int {
	// [ErrHelp] is returned when help is requested. So exit without error
	// in this case.
	if errors.Is(err, ErrHelp) {
		return 0
	}

	// ParseArgs already prints errors apart from failing version lookup.
	if errors.Is(err, ErrReadBuildInfo) {
		fmt.Fprintf(stderr, "Error [%s]: %v\n", name, err)
	}

	return exitcode.Failure
}

// childExitCode returns the exit code of an external command that ran in the
// foreground. Commands that run in the background, like the source fetcher,
// are reported as regular errors.
func childExitCode(err error) (int, bool) {
	if errors.Is(err, &nix.FetchError{}) || errors.Is(err, &nix.FormatError{}) {
		return 0, false
	}

	return exitcode.From(err)
}

func handleRunError(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, &ParseArgsError{}) {
		return handleParseArgsError(err, stderr)
	}

	// Do not print the error in case the external command failed. It
	// printed its own errors already.
	if exitCode, ok := childExitCode(err); ok {
		slog.Debug("Command failed", slog.Any("error", err))
		return exitCode
	}

	fmt.Fprintf(stderr, "Error [%s]: %v\n", name, err)

	return exitcode.Failure
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	flags := newFlags(cfg.Stderr)

	err := flags.ParseArgs(args)
	if err != nil {
		return handleParseArgsError(err, cfg.Stderr)
	}

	setupLogging(cfg.Stderr, flags.debug)

	err = run(ctx, flags, cfg)

	return handleRunError(err, cfg.Stderr)
}
