package catalog

import "strings"

// ExtractPath walks a dotted path (e.g. "rating.average") through a
// loosely-typed value tree. Missing intermediate keys or non-map nodes
// return ok=false; the walker never panics on malformed input.
func ExtractPath(root any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	current := root
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}

	if current == nil {
		return nil, false
	}
	return current, true
}
