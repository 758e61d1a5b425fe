// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/alberand/kd/internal/config"
	"github.com/spf13/pflag"
)

const (
	name = "kd"

	usageMessage = `Usage of 'kd':
    kd [flags...] command [command flags...] [-- nix args...]

Linux kernel development environments built with nix. The environment is
described by .kd.toml in the current directory.

Commands:
    init [name]      initialize a new environment (default name "default")
    build [target]   build a qcow (default) or iso image of the environment
    run              run the environment in a lightweight VM
    update           update the environment's flake inputs
    config           generate a minimal kernel config for the VM

Run 'kd command --help' for the flags of a command.
`
)

// Commands.
const (
	commandInit   = "init"
	commandBuild  = "build"
	commandRun    = "run"
	commandUpdate = "update"
	commandConfig = "config"
)

// flags are the global flags followed by the command and its arguments.
type flags struct {
	flagSet *pflag.FlagSet
	output  io.Writer

	configPath string
	debug      bool
	help       bool
	version    bool

	command string
	args    []string
}

func newFlags(output io.Writer) *flags {
	flags := &flags{output: output}
	flags.initFlagset()

	return flags
}

func (f *flags) initFlagset() {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	// Everything after the command belongs to the command.
	flagSet.SetInterspersed(false)

	flagSet.StringVarP(
		&f.configPath,
		"config",
		"c",
		f.configPath,
		"global config file (default $XDG_CONFIG_HOME/kd/config.toml)",
	)

	flagSet.BoolVarP(
		&f.debug,
		"debug",
		"d",
		f.debug,
		"enable debug output",
	)

	flagSet.BoolVarP(
		&f.help,
		"help",
		"h",
		f.help,
		"show help and exit",
	)

	flagSet.BoolVar(
		&f.version,
		"version",
		f.version,
		"show version and exit",
	)

	f.flagSet = flagSet
}

// ParseArgs parses the global flags up to the command name.
func (f *flags) ParseArgs(args []string) error {
	err := f.flagSet.Parse(args)
	if err != nil {
		return f.fail("flag parse", err)
	}

	if f.help {
		f.usage()
		return &ParseArgsError{msg: "help requested", err: ErrHelp}
	}

	// With version flag, just print the version and exit. Using [ErrHelp]
	// the main binary is supposed to return with a non error exit code.
	if f.version {
		err := f.printVersionInformation()
		return &ParseArgsError{msg: "version requested", err: err}
	}

	positionalArgs := f.flagSet.Args()
	if len(positionalArgs) < 1 {
		return f.fail("no command given", nil)
	}

	f.command = positionalArgs[0]
	f.args = positionalArgs[1:]

	if _, exists := commands[f.command]; !exists {
		return f.fail(f.command, ErrUnknownCommand)
	}

	return nil
}

// fail prints the error first and then usage.
func (f *flags) fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.output, err.Error())

	f.usage()

	return err
}

func (f *flags) printVersionInformation() error {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return ErrReadBuildInfo
	}

	fmt.Fprintf(f.output, "Version: %s\n", buildInfo.Main.Version)

	return ErrHelp
}

func (f *flags) usage() {
	fmt.Fprint(f.output, usageMessage)
	fmt.Fprintln(f.output, "\nFlags:")
	fmt.Fprint(f.output, f.flagSet.FlagUsages())
}

// commandFlags are the flags and arguments of a single command.
type commandFlags struct {
	flagSet *pflag.FlagSet
	output  io.Writer

	help bool

	// Environment name for init.
	name string
	// Image to build.
	target buildTarget
	// Additional nix arguments, separated by whitespace.
	nixArgs string
	// Output file for the kernel config.
	configOutput string
	// Arguments after "--", passed to nix as they are.
	extraArgs []string
}

func newCommandFlags(command string, output io.Writer) (*commandFlags, error) {
	f := &commandFlags{
		output: output,
		name:   config.DefaultName,
		target: targetQcow,
	}

	flagSet := pflag.NewFlagSet(name+" "+command, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	flagSet.BoolVarP(&f.help, "help", "h", f.help, "show help and exit")

	switch command {
	case commandInit:
	case commandBuild:
		flagSet.Var(&f.target, "target", "image type: iso, qcow")
		f.addNixArgsFlag(flagSet)
	case commandRun, commandUpdate:
		f.addNixArgsFlag(flagSet)
	case commandConfig:
		flagSet.StringVarP(&f.configOutput, "output", "o", ".config", "output file name")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}

	f.flagSet = flagSet

	return f, nil
}

func (f *commandFlags) addNixArgsFlag(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.nixArgs, "nix-args", f.nixArgs, "additional nix arguments")
}

// ParseArgs parses the command's flags and positional arguments. Arguments
// after "--" are collected as extra nix arguments for commands that run nix
// with user arguments.
func (f *commandFlags) ParseArgs(args []string) error {
	err := f.flagSet.Parse(args)
	if err != nil {
		return f.fail("flag parse", err)
	}

	if f.help {
		f.usage()
		return &ParseArgsError{msg: "help requested", err: ErrHelp}
	}

	positionalArgs := f.flagSet.Args()

	if dash := f.flagSet.ArgsLenAtDash(); dash >= 0 {
		if f.flagSet.Lookup("nix-args") == nil {
			return f.fail("extra nix arguments not supported", nil)
		}

		f.extraArgs = positionalArgs[dash:]
		positionalArgs = positionalArgs[:dash]
	}

	switch f.command() {
	case commandInit:
		if len(positionalArgs) > 0 {
			f.name = positionalArgs[0]
			positionalArgs = positionalArgs[1:]
		}

		err := config.CheckName(f.name)
		if err != nil {
			return f.fail(f.name, err)
		}
	case commandBuild:
		if len(positionalArgs) > 0 {
			err := f.target.Set(positionalArgs[0])
			if err != nil {
				return f.fail("target", err)
			}

			positionalArgs = positionalArgs[1:]
		}
	}

	if len(positionalArgs) > 0 {
		return f.fail(strings.Join(positionalArgs, " "), ErrUnexpectedArg)
	}

	return nil
}

// NixArgs returns the additional nix arguments given by flag and after "--".
func (f *commandFlags) NixArgs() []string {
	var args []string

	args = append(args, strings.Fields(f.nixArgs)...)

	return append(args, f.extraArgs...)
}

func (f *commandFlags) command() string {
	_, command, _ := strings.Cut(f.flagSet.Name(), " ")
	return command
}

func (f *commandFlags) fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.output, err.Error())

	f.usage()

	return err
}

func (f *commandFlags) usage() {
	fmt.Fprintf(f.output, "Usage of '%s':\n", f.flagSet.Name())
	fmt.Fprint(f.output, f.flagSet.FlagUsages())
}

// buildTarget is the image type the build command builds. It is the name of
// the environment flake's output.
type buildTarget string

const (
	targetISO  buildTarget = "iso"
	targetQcow buildTarget = "qcow"
)

func (t *buildTarget) String() string {
	return string(*t)
}

func (t *buildTarget) Set(s string) error {
	switch target := buildTarget(s); target {
	case targetISO, targetQcow:
		*t = target
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidTarget, s)
	}
}

func (*buildTarget) Type() string {
	return "target"
}

var _ pflag.Value = (*buildTarget)(nil)
