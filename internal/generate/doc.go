// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package generate renders the nix module of a kd environment from a
// validated [config.Config].
//
// The generated module sets the options of the environment flake: system
// packages, xfstests and xfsprogs sources, kernel source and kconfig, and
// QEMU options. Sources are pinned by a [Fetcher], usually "nurl". Besides
// the module, generation yields additional arguments and environment
// variables the following nix invocation needs, for example for booting a
// prebuilt kernel.
package generate
