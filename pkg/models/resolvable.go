package models

import "strings"

// Resolvable exposes named fields by key so path traversal is written once
// for both domain records and plain maps.
type Resolvable interface {
	Resolve(key string) (any, bool)
}

// ResolveKey resolves one path segment against a value: resolvables answer
// for themselves, maps are looked up by key, anything else fails.
func ResolveKey(value any, key string) (any, bool) {
	switch v := value.(type) {
	case Resolvable:
		return v.Resolve(key)
	case map[string]any:
		out, ok := v[key]

		return out, ok
	case map[string]string:
		out, ok := v[key]

		return out, ok
	default:
		return nil, false
	}
}

// ResolvePath walks a dot-separated path (e.g. "task.title") left to right
// starting from the context map. Missing intermediate segments fail the whole
// resolution instead of raising.
func ResolvePath(data map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")
	if len(segments) == 0 {
		return nil, false
	}

	current, ok := data[segments[0]]
	if !ok {
		return nil, false
	}

	for _, segment := range segments[1:] {
		current, ok = ResolveKey(current, segment)
		if !ok {
			return nil, false
		}
	}

	return current, true
}
