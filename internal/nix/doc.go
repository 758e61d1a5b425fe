// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package nix wraps the external programs kd delegates to: "nix" for
// building and running environments, "nurl" for pinning sources, "make" for
// installing modules of prebuilt kernels and the optional "alejandra"
// formatter.
//
// All of them are treated as black boxes. Only their exit code and raw
// output are inspected. Every invocation blocks until the program exits.
package nix
