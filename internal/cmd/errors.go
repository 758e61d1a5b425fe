// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"

	"github.com/alberand/kd/internal/config"
	"github.com/spf13/pflag"
)

var (
	// ErrHelp is returned if help or version information was requested.
	ErrHelp = pflag.ErrHelp

	ErrReadBuildInfo  = errors.New("failed to read build info")
	ErrNoCommand      = errors.New("no command given")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnexpectedArg  = errors.New("unexpected argument")
	ErrInvalidTarget  = errors.New("invalid target")
	ErrInvalidName    = config.ErrInvalidName

	// ErrNotInitialized is returned if the current directory has no
	// environment settings file.
	ErrNotInitialized = errors.New("not in directory with .kd.toml config, call 'kd init' first")
)

// ParseArgsError wraps errors that occur during argument parsing.
type ParseArgsError struct {
	err error
	msg string
}

func (e *ParseArgsError) Error() string {
	if e.err == nil {
		return e.msg
	}

	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *ParseArgsError) Is(other error) bool {
	_, ok := other.(*ParseArgsError)
	return ok
}

func (e *ParseArgsError) Unwrap() error {
	return e.err
}
