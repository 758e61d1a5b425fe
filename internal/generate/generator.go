// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package generate

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alberand/kd/internal/config"
)

// KernelEnvPrefix is the prefix of the environment variable that points the
// environment flake to a prebuilt kernel. The environment name is appended.
const KernelEnvPrefix = "NIXPKGS_QEMU_KERNEL_"

// ImpureArg is required for nix to read the prebuilt kernel variable.
const ImpureArg = "--impure"

// Fetcher pins the source of repo at rev. It returns a nix expression that is
// embedded into the generated module as is.
type Fetcher interface {
	Fetch(ctx context.Context, repo, rev string) (string, error)
}

// Formatter formats nix code.
type Formatter interface {
	Format(ctx context.Context, code []byte) ([]byte, error)
}

// Result is the outcome of [Generator.Generate].
type Result struct {
	// Artifact is the rendered nix module.
	Artifact []byte
	// Args are additional arguments for the nix invocation, in order.
	Args []string
	// Env are additional environment variables for the nix invocation in
	// "KEY=value" form, in order.
	Env []string
}

// Generator renders the nix module of an environment.
type Generator struct {
	// Fetcher is used for all sources. Required if the config references
	// any revision.
	Fetcher Fetcher
	// Formatter is applied to the rendered module if set.
	Formatter Formatter
	// Curdir is the directory relative paths in the config are resolved
	// against.
	Curdir string
}

// Generate renders the nix module for cfg. The config is expected to have
// passed [config.Config.Validate].
//
// Sources are fetched in a fixed order: xfstests, xfsprogs, kernel. Each
// distinct repo and revision pair is fetched only once. Any fetch error
// aborts the generation.
func (g *Generator) Generate(ctx context.Context, cfg *config.Config) (*Result, error) {
	run := generation{
		Generator: g,
		ctx:       ctx,
		fetched:   map[[2]string]string{},
		module:    module{Name: cfg.Name},
	}

	err := run.generate(cfg)
	if err != nil {
		return nil, err
	}

	artifact, err := run.module.render()
	if err != nil {
		return nil, err
	}

	if g.Formatter != nil {
		artifact, err = g.Formatter.Format(ctx, artifact)
		if err != nil {
			return nil, fmt.Errorf("format generated module: %w", err)
		}
	}

	return &Result{
		Artifact: artifact,
		Args:     run.args,
		Env:      run.env,
	}, nil
}

// generation holds the state of a single [Generator.Generate] call.
type generation struct {
	*Generator

	ctx     context.Context //nolint:containedctx
	fetched map[[2]string]string
	module  module
	args    []string
	env     []string
}

func (g *generation) fetch(repo, rev string) (string, error) {
	key := [2]string{repo, rev}

	if expr, exists := g.fetched[key]; exists {
		return expr, nil
	}

	if g.Fetcher == nil {
		return "", ErrNoFetcher
	}

	expr, err := g.Fetcher.Fetch(g.ctx, repo, rev)
	if err != nil {
		return "", err //nolint:wrapcheck
	}

	g.fetched[key] = expr

	return expr, nil
}

func (g *generation) generate(cfg *config.Config) error {
	if len(cfg.Packages) > 0 {
		g.module.option("environment.systemPackages", with("pkgs", cfg.Packages))
	}

	if cfg.Xfstests != nil {
		err := g.xfstests(cfg.Xfstests)
		if err != nil {
			return fmt.Errorf("xfstests: %w", err)
		}
	}

	if cfg.Xfsprogs != nil {
		err := g.xfsprogs(cfg.Xfsprogs)
		if err != nil {
			return fmt.Errorf("xfsprogs: %w", err)
		}
	}

	if cfg.Kernel != nil {
		err := g.kernel(cfg.Name, cfg.Kernel)
		if err != nil {
			return fmt.Errorf("kernel: %w", err)
		}
	}

	if cfg.Qemu != nil && len(cfg.Qemu.Options) > 0 {
		g.module.option("virtualisation.qemu.options", quotedList(cfg.Qemu.Options))
	}

	return nil
}

func (g *generation) xfstests(xfstests *config.XfstestsConfig) error {
	const prefix = "services.xfstests."

	if xfstests.Rev != "" {
		src, err := g.fetch(xfstests.SourceRepo(), xfstests.Rev)
		if err != nil {
			return err
		}

		g.module.option(prefix+"src", src)
	}

	for _, field := range []struct{ name, value string }{
		{"arguments", xfstests.Args},
		{"test-dev", xfstests.TestDev},
		{"scratch-dev", xfstests.ScratchDev},
		{"filesystem", xfstests.Filesystem},
	} {
		if field.value != "" {
			g.module.option(prefix+field.name, quoted(field.value))
		}
	}

	if xfstests.ExtraEnv != "" {
		g.module.option(prefix+"extraEnv", indented(xfstests.ExtraEnv))
	}

	if xfstests.Hooks != "" {
		g.module.option(prefix+"hooks", path(config.ResolvePath(g.Curdir, xfstests.Hooks)))
	}

	return g.kernelHeaders(prefix, xfstests.KernelHeaders)
}

func (g *generation) xfsprogs(xfsprogs *config.XfsprogsConfig) error {
	const prefix = "services.xfsprogs."

	if xfsprogs.Rev != "" {
		src, err := g.fetch(xfsprogs.SourceRepo(), xfsprogs.Rev)
		if err != nil {
			return err
		}

		g.module.option(prefix+"src", src)
	}

	return g.kernelHeaders(prefix, xfsprogs.KernelHeaders)
}

// kernelHeaders adds the headers build for a complete headers config.
// Incomplete ones are rejected by validation and skipped here.
func (g *generation) kernelHeaders(prefix string, headers *config.KernelHeaders) error {
	if headers == nil || headers.Repo == "" || headers.Rev == "" || headers.Version == "" {
		return nil
	}

	src, err := g.fetch(headers.Repo, headers.Rev)
	if err != nil {
		return fmt.Errorf("kernel headers: %w", err)
	}

	build := "pkgs.makeLinuxHeaders " + attrSet(
		assignment{"version", quoted(headers.Version)},
		assignment{"src", src},
	)

	g.module.option(prefix+"kernelHeaders", build)

	return nil
}

func (g *generation) kernel(name string, kernel *config.KernelConfig) error {
	switch {
	case kernel.Prebuild != "":
		err := g.prebuild(name, kernel.Prebuild)
		if err != nil {
			return err
		}
	case kernel.Rev != "" && kernel.Version != "":
		src, err := g.fetch(kernel.SourceRepo(), kernel.Rev)
		if err != nil {
			return err
		}

		g.module.kernelOption("version", quoted(kernel.Version))
		g.module.kernelOption("src", src)
	}

	if len(kernel.Flavors) > 0 {
		g.module.kernelOption("flavors", with("pkgs.kconfigs", kernel.Flavors))
	}

	for _, option := range kernel.Config {
		name, value, err := kconfigOption(option)
		if err != nil {
			return err
		}

		g.module.kconfigOption(name, value)
	}

	return nil
}

func (g *generation) prebuild(name, prebuild string) error {
	kernelPath := config.ResolvePath(g.Curdir, prebuild)

	_, err := os.Stat(kernelPath)
	if err != nil {
		return &config.ValidationError{
			Field:  "kernel.prebuild",
			Reason: "kernel doesn't exist at " + kernelPath,
			Err:    err,
		}
	}

	g.args = append(g.args, ImpureArg)
	g.env = append(g.env, KernelEnvPrefix+name+"="+kernelPath)

	return nil
}

// kconfigOption returns the name without "CONFIG_" prefix and the value as
// bare nix identifier.
func kconfigOption(option config.KernelOption) (string, string, error) {
	field := "kernel.config." + option.Name

	name, found := strings.CutPrefix(option.Name, config.KernelOptionPrefix)
	if !found || name == "" {
		return "", "", &config.ValidationError{
			Field:  field,
			Reason: "invalid option name",
			Err:    ErrKconfigPrefix,
		}
	}

	value := strings.ReplaceAll(fmt.Sprint(option.Value), `"`, "")
	if value == "" {
		return "", "", &config.ValidationError{
			Field:  field,
			Reason: "empty value",
		}
	}

	return name, value, nil
}
