// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	_ "embed"
	"fmt"
	"io"
	"text/template"
)

//go:embed templates/kd.toml.tmpl
var initialTemplateText string

var initialTemplate = template.Must(template.New(FileName).Parse(initialTemplateText))

// WriteInitial writes a commented starter settings file for the environment
// with the given name.
func WriteInitial(w io.Writer, name string) error {
	err := initialTemplate.Execute(w, struct{ Name string }{name})
	if err != nil {
		return fmt.Errorf("render %s: %w", FileName, err)
	}

	return nil
}
