// Package tmpl provides template rendering for user-facing message templates.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// plural returns word unchanged when n is 1 and with an "s" suffix otherwise.
func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(n int, s string) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

var funcs = template.FuncMap{
	"plural": plural,
	"trunc":  truncate,
	"upper":  strings.ToUpper,
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - plural: {{ plural .Total "file" }} yields "file" or "files"
//   - trunc: {{ trunc 20 .Topic }} shortens to 20 runes
//   - upper: upper-cases a string
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

// MustRender is like Render but falls back to the raw template text when
// rendering fails. It suits display strings whose templates were validated
// at startup.
func MustRender(tmpl string, data any) string {
	out, err := Render(tmpl, data)
	if err != nil {
		return tmpl
	}
	return out
}
