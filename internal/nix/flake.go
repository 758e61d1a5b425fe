// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package nix

// TemplateRef is the flake template new environments are created from.
const TemplateRef = "github:alberand/kd#default"

// Attributes of the environment flake.
const (
	AttrVM      = "vm"
	AttrKconfig = "kconfig"
)

// PathRef returns a flake reference for the local directory dir. If attr is
// not empty, it is appended as output attribute.
func PathRef(dir, attr string) string {
	ref := "path:" + dir
	if attr != "" {
		ref += "#" + attr
	}

	return ref
}

// Nix creates commands for the "nix" program. Args are added to the
// commands that evaluate the environment flake.
type Nix struct {
	// Path or name of the nix executable.
	Executable string
	// Args are added to build, run and update commands.
	Args []string
}

func (n *Nix) command(dir string, args ...string) *Command {
	return &Command{
		Executable: OrDefault(n.Executable, NixExecutable),
		Args:       args,
		Dir:        dir,
	}
}

// FlakeInit creates a new flake from template in dir.
func (n *Nix) FlakeInit(dir, template string) *Command {
	return n.command(dir, "flake", "init", "--template", template)
}

// Build builds the given installable.
func (n *Nix) Build(dir, installable string) *Command {
	args := append([]string{"build"}, n.Args...)
	args = append(args, installable)

	return n.command(dir, args...)
}

// Run runs the given installable with the additional environment.
func (n *Nix) Run(dir, installable string, env []string) *Command {
	args := append([]string{"run"}, n.Args...)
	args = append(args, installable)

	cmd := n.command(dir, args...)
	cmd.Env = env

	return cmd
}

// FlakeUpdate updates the lock file of the flake at flakeRef.
func (n *Nix) FlakeUpdate(dir, flakeRef string) *Command {
	args := []string{"flake", "update", "--flake", flakeRef}
	args = append(args, n.Args...)

	return n.command(dir, args...)
}
