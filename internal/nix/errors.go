// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package nix

import (
	"errors"
	"strings"
)

var (
	// ErrNotExecutable is returned if a tool exists but may not be executed
	// by the current user.
	ErrNotExecutable = errors.New("not an executable")

	// ErrEmptyOutput is returned if a tool succeeded but printed nothing.
	ErrEmptyOutput = errors.New("no output")

	// ErrInvalidOutput is returned if a tool printed something that is not
	// valid text.
	ErrInvalidOutput = errors.New("output is not valid UTF-8")
)

// FetchError wraps errors that occur while pinning a source.
type FetchError struct {
	Repo   string
	Rev    string
	Stderr string
	Err    error
}

// Error implements the [error] interface.
func (e *FetchError) Error() string {
	msg := "fetch " + e.Repo + " at " + e.Rev + ": " + e.Err.Error()

	stderr := strings.TrimSpace(e.Stderr)
	if stderr != "" {
		msg += ": " + stderr
	}

	return msg
}

// Is implements the [errors.Is] interface.
func (*FetchError) Is(other error) bool {
	_, ok := other.(*FetchError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// FormatError wraps errors of the nix formatter.
type FormatError struct {
	Stderr string
	Err    error
}

// Error implements the [error] interface.
func (e *FormatError) Error() string {
	msg := "format: " + e.Err.Error()

	stderr := strings.TrimSpace(e.Stderr)
	if stderr != "" {
		msg += ": " + stderr
	}

	return msg
}

// Is implements the [errors.Is] interface.
func (*FormatError) Is(other error) bool {
	_, ok := other.(*FormatError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *FormatError) Unwrap() error {
	return e.Err
}
