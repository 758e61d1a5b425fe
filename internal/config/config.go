// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// FileName is the name of the project local settings file.
	FileName = ".kd.toml"

	// DefaultName is the environment name used if none is set.
	DefaultName = "default"

	// DefaultKernelRepo is used if a kernel revision is set without a
	// repository.
	DefaultKernelRepo = "git://git.kernel.org/pub/scm/linux/kernel/git/torvalds/linux.git"

	// DefaultXfstestsRepo is the upstream xfstests repository.
	DefaultXfstestsRepo = "git://git.kernel.org/pub/scm/fs/xfs/xfstests-dev.git"

	// DefaultXfsprogsRepo is the upstream xfsprogs repository.
	DefaultXfsprogsRepo = "git://git.kernel.org/pub/scm/fs/xfs/xfsprogs-dev.git"
)

// Config is the content of the project local settings file.
type Config struct {
	// Name of the environment. Used for the environment directory.
	Name string `toml:"name"`
	// Packages to install into the guest system.
	Packages []string        `toml:"packages,omitempty"`
	Kernel   *KernelConfig   `toml:"kernel,omitempty"`
	Xfstests *XfstestsConfig `toml:"xfstests,omitempty"`
	Xfsprogs *XfsprogsConfig `toml:"xfsprogs,omitempty"`
	Script   *ScriptConfig   `toml:"script,omitempty"`
	Qemu     *QemuConfig     `toml:"qemu,omitempty"`
}

// KernelConfig describes how to get the kernel under test.
//
// Either Prebuild points to an already built kernel tree, or Version and Rev
// (and optionally Repo) describe the source to build from. If Prebuild is
// set, the source fields are ignored.
type KernelConfig struct {
	Prebuild string   `toml:"prebuild,omitempty"`
	Version  string   `toml:"version,omitempty"`
	Rev      string   `toml:"rev,omitempty"`
	Repo     string   `toml:"repo,omitempty"`
	Flavors  []string `toml:"flavors,omitempty"`

	// Config holds the raw kconfig options from the [kernel.config] table
	// in document order. It is handled separately from the generic decoder
	// as the order matters.
	Config KernelOptions `toml:"-"`
}

// SourceRepo returns the repository to fetch the kernel source from.
func (k *KernelConfig) SourceRepo() string {
	if k.Repo != "" {
		return k.Repo
	}

	return DefaultKernelRepo
}

// hasSource returns true if any of the fields that are ignored with
// [KernelConfig.Prebuild] are set.
func (k *KernelConfig) hasSource() bool {
	return k.Version != "" || k.Rev != "" || k.Repo != "" || len(k.Config) > 0
}

// KernelHeaders describes a kernel source used for building headers only.
// All fields must be set.
type KernelHeaders struct {
	Version string `toml:"version,omitempty"`
	Rev     string `toml:"rev,omitempty"`
	Repo    string `toml:"repo,omitempty"`
}

// XfstestsConfig describes the xfstests test suite setup.
type XfstestsConfig struct {
	Repo          string         `toml:"repo,omitempty"`
	Rev           string         `toml:"rev,omitempty"`
	Args          string         `toml:"args,omitempty"`
	TestDev       string         `toml:"test_dev,omitempty"`
	ScratchDev    string         `toml:"scratch_dev,omitempty"`
	ExtraEnv      string         `toml:"extra_env,omitempty"`
	Filesystem    string         `toml:"filesystem,omitempty"`
	Hooks         string         `toml:"hooks,omitempty"`
	KernelHeaders *KernelHeaders `toml:"kernel_headers,omitempty"`
}

// SourceRepo returns the repository to fetch xfstests from.
func (x *XfstestsConfig) SourceRepo() string {
	if x.Repo != "" {
		return x.Repo
	}

	return DefaultXfstestsRepo
}

// XfsprogsConfig describes the xfsprogs source.
type XfsprogsConfig struct {
	Repo          string         `toml:"repo,omitempty"`
	Rev           string         `toml:"rev,omitempty"`
	KernelHeaders *KernelHeaders `toml:"kernel_headers,omitempty"`
}

// SourceRepo returns the repository to fetch xfsprogs from.
func (x *XfsprogsConfig) SourceRepo() string {
	if x.Repo != "" {
		return x.Repo
	}

	return DefaultXfsprogsRepo
}

type ScriptConfig struct {
	Script string `toml:"script"`
}

type QemuConfig struct {
	Options []string `toml:"options,omitempty"`
}

// CheckName returns [ErrInvalidName] if name can not be used as environment
// directory name.
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, '/') {
		return ErrInvalidName
	}

	return nil
}

// ValidateName checks that the environment name stays inside the environment
// directory.
func (c *Config) ValidateName() error {
	err := CheckName(c.Name)
	if err != nil {
		return &ValidationError{
			Field:  "name",
			Reason: fmt.Sprintf("invalid name %q", c.Name),
			Err:    err,
		}
	}

	return nil
}

// setDefaults fills unset fields that have a default. Empty lists are
// dropped, as they are not written back.
func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}

	c.Packages = nilIfEmpty(c.Packages)

	if c.Kernel != nil {
		c.Kernel.Flavors = nilIfEmpty(c.Kernel.Flavors)
	}

	if c.Qemu != nil {
		c.Qemu.Options = nilIfEmpty(c.Qemu.Options)
	}

	if c.Xfstests != nil && c.Xfstests.Repo == "" {
		c.Xfstests.Repo = DefaultXfstestsRepo
	}

	if c.Xfsprogs != nil && c.Xfsprogs.Repo == "" {
		c.Xfsprogs.Repo = DefaultXfsprogsRepo
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}

	return s
}

// ResolvePath returns path as absolute path. Relative paths are interpreted
// relative to dir.
func ResolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(dir, path)
}
