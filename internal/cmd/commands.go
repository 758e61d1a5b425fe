// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alberand/kd/internal/config"
	"github.com/alberand/kd/internal/nix"
)

const (
	// modulesDirName is the directory in the environment directory kernel
	// modules of a prebuilt kernel are installed into.
	modulesDirName = "modules"

	// resultName is the link nix build creates for the build output.
	resultName = "result"

	backupSuffix = ".bup"
)

type command struct {
	// The command operates on an existing environment.
	needsConfig bool
	// The command generates the nix config and might fetch sources.
	generates bool

	run func(ctx context.Context, s *state, f *commandFlags) error
}

var commands = map[string]command{
	commandInit: {
		run: initEnvironment,
	},
	commandBuild: {
		needsConfig: true,
		generates:   true,
		run:         buildImage,
	},
	commandRun: {
		needsConfig: true,
		generates:   true,
		run:         runVM,
	},
	commandUpdate: {
		needsConfig: true,
		run:         updateEnvironment,
	},
	commandConfig: {
		needsConfig: true,
		generates:   true,
		run:         buildKernelConfig,
	},
}

func initEnvironment(ctx context.Context, s *state, f *commandFlags) error {
	envdir := envDir(s.curdir, f.name)

	err := os.MkdirAll(envdir, 0o755)
	if err != nil {
		return fmt.Errorf("create environment directory: %w", err)
	}

	fmt.Fprintf(s.io.Stdout, "Creating new environment '%s'\n", f.name)

	err = s.exec(ctx, s.nix().FlakeInit(envdir, nix.TemplateRef))
	if err != nil {
		return fmt.Errorf("create nix flake: %w", err)
	}

	path := filepath.Join(s.curdir, config.FileName)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			slog.Debug("Keep existing config", slog.String("path", path))
			return nil
		}

		return fmt.Errorf("create config: %w", err)
	}
	defer file.Close()

	err = config.WriteInitial(file, f.name)
	if err != nil {
		return err //nolint:wrapcheck
	}

	err = file.Close()
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(s.io.Stdout, "Update your %s configuration\n", config.FileName)

	return nil
}

func buildImage(ctx context.Context, s *state, f *commandFlags) error {
	result, err := s.generate(ctx)
	if err != nil {
		return err
	}

	installable := nix.PathRef(s.envdir, f.target.String())

	cmd := s.nix(f.NixArgs(), result.Args).Build(s.curdir, installable)
	cmd.Env = result.Env

	return s.exec(ctx, cmd)
}

func runVM(ctx context.Context, s *state, f *commandFlags) error {
	result, err := s.generate(ctx)
	if err != nil {
		return err
	}

	err = installModules(ctx, s)
	if err != nil {
		return err
	}

	installable := nix.PathRef(s.envdir, nix.AttrVM)

	return s.exec(ctx, s.nix(f.NixArgs(), result.Args).Run(s.curdir, installable, result.Env))
}

// installModules installs the modules of a prebuilt kernel tree into the
// environment. Nothing is done for kernels that are not a build tree.
func installModules(ctx context.Context, s *state) error {
	kernel := s.cfg.Kernel
	if kernel == nil || kernel.Prebuild == "" {
		return nil
	}

	tree := config.ResolvePath(s.curdir, kernel.Prebuild)

	_, err := os.Stat(filepath.Join(tree, "Makefile"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil
		}

		return fmt.Errorf("kernel tree: %w", err)
	}

	executable, err := nix.LookupExecutable(s.tools.make)
	if err != nil {
		return fmt.Errorf("make: %w", err)
	}

	dest := filepath.Join(s.envdir, modulesDirName)

	err = s.exec(ctx, nix.ModulesInstall(executable, tree, dest))
	if err != nil {
		return fmt.Errorf("install modules: %w", err)
	}

	return nil
}

func updateEnvironment(ctx context.Context, s *state, f *commandFlags) error {
	cmd := s.nix(f.NixArgs()).FlakeUpdate(s.envdir, nix.PathRef(s.envdir, ""))
	return s.exec(ctx, cmd)
}

func buildKernelConfig(ctx context.Context, s *state, f *commandFlags) error {
	result, err := s.generate(ctx)
	if err != nil {
		return err
	}

	cmd := s.nix(result.Args).Build(s.envdir, nix.PathRef(s.envdir, nix.AttrKconfig))
	cmd.Env = result.Env

	err = s.exec(ctx, cmd)
	if err != nil {
		return err
	}

	output := config.ResolvePath(s.curdir, f.configOutput)

	err = backupFile(output)
	if err != nil {
		return err
	}

	err = copyFile(filepath.Join(s.envdir, resultName), output)
	if err != nil {
		return err
	}

	slog.Debug("Wrote kernel config", slog.String("path", output))

	return nil
}

// backupFile copies the file at path to path with backup suffix, if it
// exists.
func backupFile(path string) error {
	_, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("backup: %w", err)
	}

	err = copyFile(path, path+backupSuffix)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	return nil
}

// copyFile copies the content of src to dst. dst is writable by the owner
// even if src is not, as is the case for files in the nix store.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	err = os.WriteFile(dst, data, 0o644)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	err = os.Chmod(dst, 0o644)
	if err != nil {
		return fmt.Errorf("chmod: %w", err)
	}

	return nil
}
