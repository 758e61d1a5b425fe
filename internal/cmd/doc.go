// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd provides the CLI command entry point of kd. It handles flag
// parsing, dispatches the subcommands and maps errors to exit codes.
package cmd
