// Package template provides placeholder substitution for dynamic action
// parameters. Placeholders are dot-separated paths between {{ and }} markers,
// resolved against the execution context, e.g. "Task {{task.title}} is due".
package template

import (
	"strings"

	"github.com/taskmill/taskmill/pkg/models"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Substitute replaces every resolvable {{path}} placeholder in input with the
// string form of the resolved value. Placeholders that do not resolve are left
// verbatim, so broken templates surface in the output instead of silently
// losing text. Substitution is idempotent for unresolved placeholders.
func Substitute(input string, data map[string]any) string {
	if !strings.Contains(input, openDelim) {
		return input
	}

	var out strings.Builder

	rest := input

	for {
		start := strings.Index(rest, openDelim)
		if start < 0 {
			out.WriteString(rest)

			break
		}

		end := strings.Index(rest[start+len(openDelim):], closeDelim)
		if end < 0 {
			out.WriteString(rest)

			break
		}

		end += start + len(openDelim)

		out.WriteString(rest[:start])

		placeholder := rest[start : end+len(closeDelim)]
		path := strings.TrimSpace(rest[start+len(openDelim) : end])

		if value, ok := models.ResolvePath(data, path); ok {
			out.WriteString(models.Stringify(value))
		} else {
			out.WriteString(placeholder)
		}

		rest = rest[end+len(closeDelim):]
	}

	return out.String()
}

// SubstituteMap returns a copy of params with every string value substituted.
// Non-string values pass through unchanged.
func SubstituteMap(params map[string]any, data map[string]any) map[string]any {
	if params == nil {
		return nil
	}

	out := make(map[string]any, len(params))

	for key, value := range params {
		if s, ok := value.(string); ok {
			out[key] = Substitute(s, data)
		} else {
			out[key] = value
		}
	}

	return out
}
