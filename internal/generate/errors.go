// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package generate

import "errors"

var (
	// ErrNoFetcher is returned if a source needs to be fetched but no
	// [Fetcher] is set.
	ErrNoFetcher = errors.New("no fetcher")

	// ErrKconfigPrefix is returned for kconfig options without the
	// "CONFIG_" prefix.
	ErrKconfigPrefix = errors.New("missing kconfig prefix")
)
