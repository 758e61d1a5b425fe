// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

var (
	// ErrNotFound is returned if the settings file does not exist.
	ErrNotFound = errors.New("config file not found")

	// ErrKernelVersionFormat is returned if a kernel version does not look
	// like a kernel release.
	ErrKernelVersionFormat = errors.New("expecting kernel version in v6.13 format")

	// ErrKernelOptionValue is returned if a kconfig option has a value that
	// is not a scalar.
	ErrKernelOptionValue = errors.New("invalid kernel option value")

	// ErrInvalidName is returned if the environment name can not be used as
	// directory name.
	ErrInvalidName = errors.New("environment name must be a single path element")
)

// ParseError wraps errors that occur while decoding a settings file.
type ParseError struct {
	Path string
	Err  error
}

// Error implements the [error] interface.
func (e *ParseError) Error() string {
	msg := "invalid TOML"
	if e.Path != "" {
		msg += " in " + e.Path
	}

	var decodeErr *toml.DecodeError
	if errors.As(e.Err, &decodeErr) {
		row, column := decodeErr.Position()
		return fmt.Sprintf("%s (line %d, column %d): %v", msg, row, column, e.Err)
	}

	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Is implements the [errors.Is] interface.
func (*ParseError) Is(other error) bool {
	_, ok := other.(*ParseError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError indicates settings that are well-formed but inconsistent.
// Field is the dotted path of the offending setting, like "kernel.rev".
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// Error implements the [error] interface.
func (e *ValidationError) Error() string {
	msg := e.Field + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Is implements the [errors.Is] interface.
func (*ValidationError) Is(other error) bool {
	_, ok := other.(*ValidationError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
