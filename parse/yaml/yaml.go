// Package yaml decodes the YAML slices of a configuration document.
//
// Decoding is done by gopkg.in/yaml.v3. A line the decoder rejects is
// blanked, reported, and the slice decoded again, so one bad line does not
// cost the rest of the block.
package yaml

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// WarnFunc receives a 1-based line number relative to the parsed slice.
type WarnFunc func(line int, msg string)

var errRe = regexp.MustCompile(`(?s)^yaml: (?:line (\d+): )?(.*)$`)

// Parse decodes src and returns its top-level value: usually a
// map[string]any, but a sequence or scalar document is returned as is.
// An empty document yields nil.
func Parse(src string, warn WarnFunc) any {
	if warn == nil {
		warn = func(int, string) {}
	}
	lines := strings.Split(src, "\n")
	for {
		var root yaml.Node
		err := yaml.Unmarshal([]byte(strings.Join(lines, "\n")), &root)
		if err == nil {
			if root.Kind == 0 {
				return nil
			}
			repair(&root, warn)
			var doc any
			if err = root.Decode(&doc); err == nil {
				return normalize(doc)
			}
		}

		line, msg := splitError(err)
		if line < 1 || line > len(lines) || strings.TrimSpace(lines[line-1]) == "" {
			if line < 1 || line > len(lines) {
				line = 1
			}
			warn(line, fmt.Sprintf("block skipped: %s", msg))
			return nil
		}
		warn(line, fmt.Sprintf("skipped malformed line %q: %s", strings.TrimSpace(lines[line-1]), msg))
		lines[line-1] = ""
	}
}

// repair turns an unquoted {{path}} reference, which YAML reads as a flow
// mapping nested in a flow mapping, back into the string it was written as.
// Mapping entries whose key is still a collection are dropped.
func repair(n *yaml.Node, warn WarnFunc) {
	if s, ok := mustache(n); ok {
		*n = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Line: n.Line, Column: n.Column}
		return
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			repair(c, warn)
		}
	case yaml.MappingNode:
		kept := n.Content[:0]
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			repair(k, warn)
			if k.Kind == yaml.MappingNode || k.Kind == yaml.SequenceNode {
				warn(k.Line, "skipped entry with a non-scalar key")
				continue
			}
			repair(v, warn)
			kept = append(kept, k, v)
		}
		n.Content = kept
	}
}

// mustache matches the node shape of a plain {{path}} scalar.
func mustache(n *yaml.Node) (string, bool) {
	single := func(m *yaml.Node) bool {
		return m.Kind == yaml.MappingNode && m.Style&yaml.FlowStyle != 0 &&
			len(m.Content) == 2 && isNull(m.Content[1])
	}
	if !single(n) || !single(n.Content[0]) {
		return "", false
	}
	inner := n.Content[0].Content[0]
	if inner.Kind != yaml.ScalarNode || inner.Value == "" {
		return "", false
	}
	return "{{" + inner.Value + "}}", true
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" && n.Value == ""
}

func splitError(err error) (int, string) {
	m := errRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, err.Error()
	}
	line, _ := strconv.Atoi(m[1])
	return line, m[2]
}

func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normalize(x[i])
		}
		return out
	case int:
		return int64(x)
	default:
		return v
	}
}
