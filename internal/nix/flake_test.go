// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package nix_test

import (
	"testing"

	"github.com/alberand/kd/internal/nix"
	"github.com/stretchr/testify/assert"
)

func TestPathRef(t *testing.T) {
	assert.Equal(t, "path:/env", nix.PathRef("/env", ""))
	assert.Equal(t, "path:/env#vm", nix.PathRef("/env", nix.AttrVM))
}

func TestNix_Commands(t *testing.T) {
	n := nix.Nix{Args: []string{"-L", "--impure"}}

	tests := []struct {
		name     string
		cmd      *nix.Command
		expected nix.Command
	}{
		{
			name: "flake init",
			cmd:  n.FlakeInit("/env", nix.TemplateRef),
			expected: nix.Command{
				Executable: "nix",
				Args:       []string{"flake", "init", "--template", nix.TemplateRef},
				Dir:        "/env",
			},
		},
		{
			name: "build",
			cmd:  n.Build("", "path:/env#qcow"),
			expected: nix.Command{
				Executable: "nix",
				Args:       []string{"build", "-L", "--impure", "path:/env#qcow"},
			},
		},
		{
			name: "run",
			cmd:  n.Run("", "path:/env#vm", []string{"A=b"}),
			expected: nix.Command{
				Executable: "nix",
				Args:       []string{"run", "-L", "--impure", "path:/env#vm"},
				Env:        []string{"A=b"},
			},
		},
		{
			name: "flake update",
			cmd:  n.FlakeUpdate("/env", "path:/env"),
			expected: nix.Command{
				Executable: "nix",
				Args:       []string{"flake", "update", "--flake", "path:/env", "-L", "--impure"},
				Dir:        "/env",
			},
		},
		{
			name: "modules install",
			cmd:  nix.ModulesInstall("", "/linux", "/env/modules"),
			expected: nix.Command{
				Executable: "make",
				Args: []string{
					"-C", "/linux",
					"modules_install",
					"INSTALL_MOD_PATH=/env/modules",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, *tt.cmd)
		})
	}
}

func TestNix_ArgsNotShared(t *testing.T) {
	args := make([]string, 1, 4)
	args[0] = "-L"
	n := nix.Nix{Args: args}

	build := n.Build("", "a")
	run := n.Run("", "b", nil)

	assert.Equal(t, []string{"build", "-L", "a"}, build.Args)
	assert.Equal(t, []string{"run", "-L", "b"}, run.Args)
}
