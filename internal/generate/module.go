// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package generate

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
)

//go:embed templates/uconfig.nix.tmpl
var moduleTemplateText string

var moduleTemplate = template.Must(template.New("uconfig.nix").Parse(moduleTemplateText))

// assignment is a single nix attribute assignment. Value is a nix expression
// and is inserted as is.
type assignment struct {
	Key   string
	Value string
}

// module is the data the module template is rendered from. Each list is
// rendered in order into its own block.
type module struct {
	Name    string
	Options []assignment
	Kernel  []assignment
	Kconfig []assignment
}

func (m *module) option(key, value string) {
	m.Options = append(m.Options, assignment{key, value})
}

func (m *module) kernelOption(key, value string) {
	m.Kernel = append(m.Kernel, assignment{key, value})
}

func (m *module) kconfigOption(key, value string) {
	m.Kconfig = append(m.Kconfig, assignment{key, value})
}

func (m *module) render() ([]byte, error) {
	var buf bytes.Buffer

	err := moduleTemplate.Execute(&buf, m)
	if err != nil {
		return nil, fmt.Errorf("render module: %w", err)
	}

	return buf.Bytes(), nil
}
