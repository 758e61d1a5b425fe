// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
)

// kernelVersionPattern matches versions starting with a kernel release like
// "6.13", "v6.13.2", "6.14-rc1" or "6.13.0-xfs".
var kernelVersionPattern = regexp.MustCompile(`^v?[0-9]+\.[0-9]+([.-][0-9A-Za-z._+-]*)?$`)

// Validate checks the cross-field constraints of the config. Paths are
// resolved relative to dir, which is supposed to be the directory the
// settings file was found in.
//
// The environment name is checked first. The first violation found is
// returned as [ValidationError]. Setting
// "kernel.prebuild" together with kernel source fields is not an error, but a
// warning is logged as the source fields are ignored in this case.
func (c *Config) Validate(dir string) error {
	err := c.ValidateName()
	if err != nil {
		return err
	}

	if kernel := c.Kernel; kernel != nil {
		if kernel.Repo != "" && (kernel.Rev == "" || kernel.Version == "") {
			return &ValidationError{
				Field:  "kernel.repo",
				Reason: "'rev' and 'version' need to be set when using 'repo'",
			}
		}

		if kernel.Rev != "" && kernel.Version == "" {
			return &ValidationError{
				Field:  "kernel.rev",
				Reason: "revision can not be used without 'version'",
			}
		}

		if kernel.Prebuild != "" && kernel.hasSource() {
			slog.Warn("You're using 'prebuild', none of the other [kernel] options applies",
				slog.String("prebuild", kernel.Prebuild))
		}

		if kernel.Prebuild != "" {
			err := checkExists(dir, kernel.Prebuild)
			if err != nil {
				return &ValidationError{
					Field:  "kernel.prebuild",
					Reason: "kernel doesn't exist: " + kernel.Prebuild,
					Err:    err,
				}
			}
		}
	}

	if xfstests := c.Xfstests; xfstests != nil {
		err := xfstests.KernelHeaders.validate("xfstests.kernel_headers")
		if err != nil {
			return err
		}
	}

	if xfsprogs := c.Xfsprogs; xfsprogs != nil {
		err := xfsprogs.KernelHeaders.validate("xfsprogs.kernel_headers")
		if err != nil {
			return err
		}
	}

	if xfstests := c.Xfstests; xfstests != nil && xfstests.Hooks != "" {
		err := checkExists(dir, xfstests.Hooks)
		if err != nil {
			return &ValidationError{
				Field:  "xfstests.hooks",
				Reason: fmt.Sprintf("failed to find %q (cwd is %q)", xfstests.Hooks, dir),
				Err:    err,
			}
		}
	}

	return c.validateVersions()
}

func (c *Config) validateVersions() error {
	type version struct{ field, value string }

	var versions []version

	if c.Kernel != nil && c.Kernel.Prebuild == "" {
		versions = append(versions, version{"kernel.version", c.Kernel.Version})
	}

	if c.Xfstests != nil && c.Xfstests.KernelHeaders != nil {
		versions = append(versions, version{
			"xfstests.kernel_headers.version",
			c.Xfstests.KernelHeaders.Version,
		})
	}

	if c.Xfsprogs != nil && c.Xfsprogs.KernelHeaders != nil {
		versions = append(versions, version{
			"xfsprogs.kernel_headers.version",
			c.Xfsprogs.KernelHeaders.Version,
		})
	}

	for _, v := range versions {
		if v.value == "" || kernelVersionPattern.MatchString(v.value) {
			continue
		}

		return &ValidationError{
			Field:  v.field,
			Reason: fmt.Sprintf("invalid version %q", v.value),
			Err:    ErrKernelVersionFormat,
		}
	}

	return nil
}

// validate checks that either none or all fields are set. A nil receiver is
// valid.
func (h *KernelHeaders) validate(field string) error {
	if h == nil {
		return nil
	}

	missing := func(name string) error {
		return &ValidationError{
			Field:  field + "." + name,
			Reason: fmt.Sprintf("missing '%s' parameter for kernel headers", name),
		}
	}

	switch {
	case h.Repo == "":
		return missing("repo")
	case h.Rev == "":
		return missing("rev")
	case h.Version == "":
		return missing("version")
	default:
		return nil
	}
}

func checkExists(dir, path string) error {
	_, err := os.Stat(ResolvePath(dir, path))
	if err != nil {
		return err //nolint:wrapcheck
	}

	return nil
}
