// Package properties parses Java-properties style lines into a nested map.
//
//	app.name=demo          -> {"app": {"name": "demo"}}
//	users[]=John           -> {"users": ["John", ...]}
//
// Values are kept as strings; type inference happens later.
package properties

import (
	"fmt"
	"strings"
)

// WarnFunc receives a 1-based line number relative to the parsed slice.
type WarnFunc func(line int, msg string)

const arraySuffix = "[]"

// Parse splits every line of src on its first '='. The key is a dotted
// path; a key ending in "[]" appends to an array at that path. Blank lines
// and lines starting with '#' or '!' are ignored, and a line ending in a
// backslash continues on the next line.
func Parse(src string, warn WarnFunc) map[string]any {
	if warn == nil {
		warn = func(int, string) {}
	}
	root := make(map[string]any)
	lines := strings.Split(src, "\n")
	for i := 0; i < len(lines); i++ {
		lineNo := i + 1
		line := strings.TrimSpace(strings.TrimSuffix(lines[i], "\r"))
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}
		for strings.HasSuffix(line, `\`) && i+1 < len(lines) {
			i++
			line = strings.TrimSuffix(line, `\`) + strings.TrimSpace(lines[i])
		}
		line = strings.TrimSuffix(line, `\`)

		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			warn(lineNo, fmt.Sprintf("skipped malformed line %q: missing '='", line))
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])

		appendMode := strings.HasSuffix(key, arraySuffix)
		if appendMode {
			key = strings.TrimSpace(strings.TrimSuffix(key, arraySuffix))
		}
		path, err := splitPath(key)
		if err != nil {
			warn(lineNo, fmt.Sprintf("skipped malformed line %q: %v", line, err))
			continue
		}
		set(root, path, val, appendMode)
	}
	return root
}

func splitPath(key string) ([]string, error) {
	if key == "" {
		return nil, fmt.Errorf("empty key")
	}
	parts := strings.Split(key, ".")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("empty segment in key %q", key)
		}
		parts[i] = p
	}
	return parts, nil
}

// set writes val at path. Intermediate non-map values are replaced by
// maps, so a later, deeper key wins over an earlier scalar.
func set(root map[string]any, path []string, val string, appendMode bool) {
	m := root
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[p] = next
		}
		m = next
	}
	last := path[len(path)-1]
	if !appendMode {
		m[last] = val
		return
	}
	arr, _ := m[last].([]any)
	m[last] = append(arr, val)
}
