// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package nix

// ModulesInstall creates a "make modules_install" command for the kernel tree
// at tree that installs the modules below dest.
func ModulesInstall(executable, tree, dest string) *Command {
	return &Command{
		Executable: OrDefault(executable, MakeExecutable),
		Args: []string{
			"-C", tree,
			"modules_install",
			"INSTALL_MOD_PATH=" + dest,
		},
	}
}
