package parse

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/dzjyyds666/hyconf/parse/value"
)

// Process resolves variables in, and infers the type of, every string leaf
// of tree. Keys and array elements whose value infers to undefined are
// removed. Non-string leaves are returned unchanged.
//
// A missing variable aborts processing with a *value.VariableNotFoundError.
// Recoverable problems at a single leaf are passed to warn with the leaf's
// path.
func Process(tree any, vars map[string]any, warn func(string)) (any, error) {
	if warn == nil {
		warn = func(string) {}
	}
	p := &processor{vars: vars, warn: warn}
	return p.node(tree, "")
}

type processor struct {
	vars map[string]any
	warn func(string)
}

func (p *processor) node(v any, path string) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for _, k := range slices.Sorted(maps.Keys(x)) {
			pv, err := p.node(x[k], joinPath(path, k))
			if err != nil {
				return nil, err
			}
			if value.IsUndefined(pv) {
				continue
			}
			out[k] = pv
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(x))
		for i, e := range x {
			pv, err := p.node(e, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			if value.IsUndefined(pv) {
				continue
			}
			out = append(out, pv)
		}
		return out, nil
	case string:
		return value.Evaluate(x, p.vars, func(msg string) {
			p.warn(fmt.Sprintf("%s: %s", displayPath(path), msg))
		})
	default:
		return v, nil
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
