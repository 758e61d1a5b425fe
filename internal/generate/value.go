// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package generate

import (
	"regexp"
	"strings"
)

var (
	stringEscaper = strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"${", "\\${",
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)

	// Antiquotations become an interpolation of the literal, since the
	// "''${" escape is ambiguous after a single quote.
	indentedEscaper = strings.NewReplacer(
		"''", "'''",
		"${", `${"\${"}`,
	)

	// Characters allowed in nix path literals.
	pathLiteralPattern = regexp.MustCompile(`^/[a-zA-Z0-9._+\-/]*[a-zA-Z0-9._+\-]$`)
)

// quoted returns s as nix string literal.
func quoted(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}

// indented returns s as nix indented string literal spanning multiple lines.
func indented(s string) string {
	return "''\n" + indentedEscaper.Replace(s) + "\n''"
}

// path returns the absolute path p as nix path. Paths that can not be written
// as literal are built from a string.
func path(p string) string {
	if pathLiteralPattern.MatchString(p) {
		return p
	}

	return "/. + " + quoted(p)
}

// list returns a nix list of the items as they are.
func list(items []string) string {
	if len(items) == 0 {
		return "[]"
	}

	return "[ " + strings.Join(items, " ") + " ]"
}

// quotedList returns a nix list of the items as strings.
func quotedList(items []string) string {
	quotedItems := make([]string, len(items))
	for idx, item := range items {
		quotedItems[idx] = quoted(item)
	}

	return list(quotedItems)
}

// with returns a list expression with scope in scope, like
// "with pkgs; [ vim ]".
func with(scope string, items []string) string {
	return "with " + scope + "; " + list(items)
}

// attrSet returns a single line attribute set of the given assignments.
func attrSet(assignments ...assignment) string {
	var builder strings.Builder

	builder.WriteString("{ ")

	for _, a := range assignments {
		builder.WriteString(a.Key + " = " + a.Value + "; ")
	}

	builder.WriteString("}")

	return builder.String()
}
