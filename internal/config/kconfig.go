// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"slices"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// KernelOptionPrefix is the prefix every kconfig option name starts with.
const KernelOptionPrefix = "CONFIG_"

// KernelOption is a single raw kconfig option like CONFIG_XFS_FS = "y".
//
// Value is the decoded TOML value: string, int64, float64, or bool.
type KernelOption struct {
	Name  string
	Value any
}

// KernelOptions is a list of kconfig options in document order.
type KernelOptions []KernelOption

var kernelOptionsPath = []string{"kernel", "config"}

// decodeKernelOptions decodes the [kernel.config] table of the given
// document. The decoder only provides a map, so the order is recovered
// separately from the document's expressions.
func decodeKernelOptions(data []byte) (KernelOptions, error) {
	var raw struct {
		Kernel *struct {
			Config map[string]any `toml:"config"`
		} `toml:"kernel"`
	}

	err := toml.Unmarshal(data, &raw)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if raw.Kernel == nil || len(raw.Kernel.Config) == 0 {
		return nil, nil
	}

	order, err := tableKeyOrder(data, kernelOptionsPath)
	if err != nil {
		return nil, err
	}

	values := raw.Kernel.Config

	err = checkKernelOptionValues(values)
	if err != nil {
		return nil, err
	}

	options := make(KernelOptions, 0, len(values))

	for _, name := range order {
		value, exists := values[name]
		if !exists {
			continue
		}

		options = append(options, KernelOption{Name: name, Value: value})
		delete(values, name)
	}

	// Keys defined by sub-table headers are not found by the walk. Keep them
	// in a stable order at least.
	rest := make([]string, 0, len(values))
	for name := range values {
		rest = append(rest, name)
	}

	sort.Strings(rest)

	for _, name := range rest {
		options = append(options, KernelOption{Name: name, Value: values[name]})
	}

	return options, nil
}

// checkKernelOptionValues makes sure all values are scalars that can be
// written as single kconfig value. Tables, arrays and date-times are rejected.
func checkKernelOptionValues(values map[string]any) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		switch values[name].(type) {
		case string, int64, float64, bool:
		default:
			return &ValidationError{
				Field:  "kernel.config." + name,
				Reason: fmt.Sprintf("value must be a string, integer, float or boolean, got %T", values[name]),
				Err:    ErrKernelOptionValue,
			}
		}
	}

	return nil
}

// encode writes the options as [kernel.config] table.
func (o KernelOptions) encode() ([]byte, error) {
	out := []byte("[kernel.config]\n")

	for _, option := range o {
		line, err := toml.Marshal(map[string]any{option.Name: option.Value})
		if err != nil {
			return nil, fmt.Errorf("kernel option %s: %w", option.Name, err)
		}

		out = append(out, line...)
	}

	return out, nil
}

// tableKeyOrder returns the keys that are direct children of the table at
// path in the order they appear in the document.
func tableKeyOrder(data []byte, path []string) ([]string, error) {
	var (
		parser  unstable.Parser
		current []string
		keys    []string
	)

	parser.Reset(data)

	for parser.NextExpression() {
		expr := parser.Expression()

		//nolint:exhaustive
		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			current = keyParts(expr.Key())
		case unstable.KeyValue:
			keys = collectKeys(keys, current, expr, path)
		}
	}

	err := parser.Error()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	return keys, nil
}

func collectKeys(keys, prefix []string, keyValue *unstable.Node, path []string) []string {
	full := append(slices.Clone(prefix), keyParts(keyValue.Key())...)

	if len(full) == len(path)+1 && slices.Equal(full[:len(path)], path) {
		keys = append(keys, full[len(path)])
	}

	value := keyValue.Value()
	if value.Kind == unstable.InlineTable {
		children := value.Children()
		for children.Next() {
			keys = collectKeys(keys, full, children.Node(), path)
		}
	}

	return keys
}

func keyParts(key unstable.Iterator) []string {
	var parts []string

	for key.Next() {
		parts = append(parts, string(key.Node().Data))
	}

	return parts
}
