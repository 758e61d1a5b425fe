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
	"path/filepath"

	"github.com/alberand/kd/internal/config"
	"github.com/alberand/kd/internal/generate"
	"github.com/alberand/kd/internal/nix"
)

// envDirName is the directory in the current directory that holds the
// environments.
const envDirName = ".kd"

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// state is the context all commands run in. It is set up once on start.
type state struct {
	io     IO
	debug  bool
	curdir string
	global *config.Global
	tools  tools

	// Set by loadConfig.
	cfg     *config.Config
	envdir  string
	uconfig string
}

func envDir(curdir, name string) string {
	return filepath.Join(curdir, envDirName, name)
}

// loadConfig loads the environment settings from the current directory.
func (s *state) loadConfig() error {
	cfg, err := config.Load(filepath.Join(s.curdir, config.FileName))
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return ErrNotInitialized
		}

		return err //nolint:wrapcheck
	}

	// The name is part of the environment directory path.
	err = cfg.ValidateName()
	if err != nil {
		return err //nolint:wrapcheck
	}

	s.cfg = cfg
	s.envdir = envDir(s.curdir, cfg.Name)
	s.uconfig = filepath.Join(s.envdir, generate.ArtifactFileName)

	return nil
}

// nix returns a nix command builder. The global nix arguments are followed
// by the given ones in order.
func (s *state) nix(args ...[]string) *nix.Nix {
	nixArgs := s.global.Nix.ArgList()
	for _, a := range args {
		nixArgs = append(nixArgs, a...)
	}

	return &nix.Nix{
		Executable: s.tools.nix,
		Args:       nixArgs,
	}
}

// exec runs the command attached to the IO of kd.
func (s *state) exec(ctx context.Context, cmd *nix.Command) error {
	cmd.Stdin = s.io.Stdin
	cmd.Stdout = s.io.Stdout
	cmd.Stderr = s.io.Stderr

	slog.Debug("Run command",
		slog.String("command", cmd.String()),
		slog.String("dir", cmd.Dir))

	return cmd.Run(ctx) //nolint:wrapcheck
}

// generate validates the settings and writes the nix config of the
// environment.
func (s *state) generate(ctx context.Context) (*generate.Result, error) {
	err := s.cfg.Validate(s.curdir)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	generator := generate.Generator{
		Fetcher: &nix.Nurl{
			Executable: s.tools.nurl,
			Progress:   s.io.Stdout,
		},
		Curdir: s.curdir,
	}

	if s.tools.alejandra != "" {
		generator.Formatter = &nix.Alejandra{Executable: s.tools.alejandra}
	}

	result, err := generator.Generate(ctx, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("generate nix config: %w", err)
	}

	previous, err := generate.WriteArtifact(s.uconfig, result.Artifact)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if s.debug {
		diff := generate.Diff(s.uconfig, previous, result.Artifact)
		if diff != "" {
			slog.Debug("Nix config changed", slog.String("path", s.uconfig))
			fmt.Fprint(s.io.Stderr, diff)
		}
	}

	return result, nil
}
