// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package exitcode maps errors to process exit codes. External commands that
// fail with a non-zero exit code are represented by [Error], so their code
// can be passed on as kd's own exit code.
package exitcode
