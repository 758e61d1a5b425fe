// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/alberand/kd/internal/config"
	"github.com/alberand/kd/internal/nix"
)

// tools are the external programs kd runs.
type tools struct {
	nix       string
	nurl      string
	make      string
	alejandra string
}

// lookupTools resolves the programs to executable paths. nix is always
// required and nurl if sources might be fetched. alejandra is optional
// unless set explicitly. make is only resolved when it is actually used.
func lookupTools(settings config.ToolSettings, fetch bool) (tools, error) {
	var (
		resolved tools
		err      error
	)

	resolved.nix, err = nix.LookupExecutable(nix.OrDefault(settings.Nix, nix.NixExecutable))
	if err != nil {
		return tools{}, fmt.Errorf("nix: %w", err)
	}

	if fetch {
		resolved.nurl, err = nix.LookupExecutable(nix.OrDefault(settings.Nurl, nix.NurlExecutable))
		if err != nil {
			return tools{}, fmt.Errorf("nurl: %w", err)
		}

		resolved.alejandra, err = nix.LookupExecutable(nix.OrDefault(settings.Alejandra, nix.AlejandraExecutable))
		if err != nil {
			if settings.Alejandra != "" {
				return tools{}, fmt.Errorf("alejandra: %w", err)
			}

			slog.Debug("Formatter not available, nix config is not formatted",
				slog.Any("error", err))
		}
	}

	resolved.make = nix.OrDefault(settings.Make, nix.MakeExecutable)

	return resolved, nil
}
