// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"testing"

	"github.com/alberand/kd/internal/config"
	"github.com/alberand/kd/internal/exitcode"
	"github.com/alberand/kd/internal/nix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlags_ParseArgs(t *testing.T) {
	tests := []struct {
		name            string
		args            []string
		expectedConfig  string
		expectedDebug   bool
		expectedCommand string
		expectedArgs    []string
		expectedErr     error
	}{
		{
			name:        "help",
			args:        []string{"--help"},
			expectedErr: ErrHelp,
		},
		{
			name:        "version",
			args:        []string{"--version"},
			expectedErr: ErrHelp,
		},
		{
			name:        "no command",
			args:        []string{"-d"},
			expectedErr: &ParseArgsError{},
		},
		{
			name:        "unknown command",
			args:        []string{"bogus"},
			expectedErr: ErrUnknownCommand,
		},
		{
			name:        "unknown flag",
			args:        []string{"--bogus", "build"},
			expectedErr: &ParseArgsError{},
		},
		{
			name:            "command only",
			args:            []string{"build"},
			expectedCommand: "build",
			expectedArgs:    []string{},
		},
		{
			name: "global flags and command args",
			args: []string{
				"-d",
				"-c", "/etc/kd.toml",
				"build", "--target", "iso", "-d",
			},
			expectedConfig:  "/etc/kd.toml",
			expectedDebug:   true,
			expectedCommand: "build",
			expectedArgs:    []string{"--target", "iso", "-d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer

			flags := newFlags(&output)

			err := flags.ParseArgs(tt.args)
			require.ErrorIs(t, err, tt.expectedErr)

			if tt.expectedErr != nil {
				return
			}

			assert.Equal(t, tt.expectedConfig, flags.configPath)
			assert.Equal(t, tt.expectedDebug, flags.debug)
			assert.Equal(t, tt.expectedCommand, flags.command)
			assert.Equal(t, tt.expectedArgs, flags.args)
		})
	}
}

func TestCommandFlags_ParseArgs(t *testing.T) {
	tests := []struct {
		name           string
		command        string
		args           []string
		expectedName   string
		expectedTarget buildTarget
		expectedOutput string
		expectedArgs   []string
		expectedErr    error
	}{
		{
			name:         "init default name",
			command:      commandInit,
			expectedName: config.DefaultName,
		},
		{
			name:         "init name",
			command:      commandInit,
			args:         []string{"xfs"},
			expectedName: "xfs",
		},
		{
			name:        "init path as name",
			command:     commandInit,
			args:        []string{"../xfs"},
			expectedErr: ErrInvalidName,
		},
		{
			name:        "init dot dot",
			command:     commandInit,
			args:        []string{".."},
			expectedErr: config.ErrInvalidName,
		},
		{
			name:        "init extra args",
			command:     commandInit,
			args:        []string{"xfs", "--", "-L"},
			expectedErr: &ParseArgsError{},
		},
		{
			name:           "build default target",
			command:        commandBuild,
			expectedTarget: targetQcow,
		},
		{
			name:           "build target flag",
			command:        commandBuild,
			args:           []string{"--target=iso"},
			expectedTarget: targetISO,
		},
		{
			name:           "build target positional",
			command:        commandBuild,
			args:           []string{"iso"},
			expectedTarget: targetISO,
		},
		{
			name:        "build invalid target",
			command:     commandBuild,
			args:        []string{"--target", "vmdk"},
			expectedErr: &ParseArgsError{},
		},
		{
			name:           "build nix args",
			command:        commandBuild,
			args:           []string{"--nix-args", "-L --show-trace", "--", "--offline"},
			expectedTarget: targetQcow,
			expectedArgs:   []string{"-L", "--show-trace", "--offline"},
		},
		{
			name:         "run extra args",
			command:      commandRun,
			args:         []string{"--", "--impure"},
			expectedArgs: []string{"--impure"},
		},
		{
			name:        "update unexpected arg",
			command:     commandUpdate,
			args:        []string{"now"},
			expectedErr: ErrUnexpectedArg,
		},
		{
			name:           "config default output",
			command:        commandConfig,
			expectedOutput: ".config",
		},
		{
			name:           "config output",
			command:        commandConfig,
			args:           []string{"-o", "kconfig"},
			expectedOutput: "kconfig",
		},
		{
			name:        "config nix args",
			command:     commandConfig,
			args:        []string{"--nix-args", "-L"},
			expectedErr: &ParseArgsError{},
		},
		{
			name:        "help",
			command:     commandRun,
			args:        []string{"-h"},
			expectedErr: ErrHelp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer

			flags, err := newCommandFlags(tt.command, &output)
			require.NoError(t, err)

			err = flags.ParseArgs(tt.args)
			require.ErrorIs(t, err, tt.expectedErr)

			if tt.expectedErr != nil {
				assert.NotEmpty(t, output.String(), "usage printed")
				return
			}

			if tt.expectedName != "" {
				assert.Equal(t, tt.expectedName, flags.name)
			}

			if tt.expectedTarget != "" {
				assert.Equal(t, tt.expectedTarget, flags.target)
			}

			if tt.expectedOutput != "" {
				assert.Equal(t, tt.expectedOutput, flags.configOutput)
			}

			assert.Equal(t, tt.expectedArgs, flags.NixArgs())
		})
	}
}

func TestNewCommandFlags_Unknown(t *testing.T) {
	_, err := newCommandFlags("bogus", &bytes.Buffer{})
	require.ErrorIs(t, err, ErrUnknownCommand)
}

func TestBuildTarget_Set(t *testing.T) {
	var target buildTarget

	require.NoError(t, target.Set("iso"))
	assert.Equal(t, "iso", target.String())

	require.ErrorIs(t, target.Set("vmdk"), ErrInvalidTarget)
	assert.Equal(t, targetISO, target, "unchanged on error")
}

func TestHandleRunError(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		expectedExitCode int
		expectedOutput   string
	}{
		{
			name: "no error",
		},
		{
			name: "help",
			err:  &ParseArgsError{msg: "help requested", err: ErrHelp},
		},
		{
			name:             "parse args error",
			err:              &ParseArgsError{},
			expectedExitCode: exitcode.Failure,
		},
		{
			name:             "child exit code",
			err:              exitcode.Error(42),
			expectedExitCode: 42,
		},
		{
			name: "fetch error",
			err: &nix.FetchError{
				Repo: "https://example.com/repo.git",
				Rev:  "abc",
				Err:  exitcode.Error(2),
			},
			expectedExitCode: exitcode.Failure,
			expectedOutput: "Error [kd]: fetch https://example.com/repo.git at abc: " +
				"non-zero exit code: 2\n",
		},
		{
			name:             "validation error",
			err:              &config.ValidationError{Field: "kernel.rev", Reason: "missing 'version'"},
			expectedExitCode: exitcode.Failure,
			expectedOutput:   "Error [kd]: kernel.rev: missing 'version'\n",
		},
		{
			name:             "any error",
			err:              assert.AnError,
			expectedExitCode: exitcode.Failure,
			expectedOutput: "Error [kd]: " +
				"assert.AnError general error for testing\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdErr bytes.Buffer
			actualExitCode := handleRunError(tt.err, &stdErr)

			assert.Equal(t, tt.expectedExitCode, actualExitCode,
				"exit code should be as expected")
			assert.Equal(t, tt.expectedOutput, stdErr.String(),
				"stderr output should be as expected")
		})
	}
}
