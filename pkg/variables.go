package pkg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/dzjyyds666/hyconf/parse/value"
)

var (
	// ErrBadVariableFile is returned for variable files with an unknown
	// extension or a top level that is not a mapping.
	ErrBadVariableFile = errors.New("bad variable file")
	ErrBadAssignment   = errors.New("bad assignment")
)

// LoadVariables reads a variable bag from a .json, .jsonc, .yaml, .yml or
// .toml file.
func LoadVariables(filePath string) (map[string]any, error) {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read variables: %w", err)
	}
	return DecodeVariables(filepath.Ext(filePath), b)
}

// DecodeVariables decodes a variable bag in the format named by ext.
func DecodeVariables(ext string, b []byte) (map[string]any, error) {
	var (
		raw any
		err error
	)
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json", "jsonc":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(b)))
		dec.UseNumber()
		err = dec.Decode(&raw)
		raw = fromJSON(raw)
	case "yaml", "yml":
		err = yaml.Unmarshal(b, &raw)
	case "toml":
		m := map[string]any{}
		err = toml.Unmarshal(b, &m)
		raw = m
	default:
		return nil, fmt.Errorf("%w: unknown extension %q", ErrBadVariableFile, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode variables: %w", err)
	}
	if raw == nil {
		return map[string]any{}, nil
	}
	m, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %T, not a mapping", ErrBadVariableFile, raw)
	}
	return m, nil
}

// fromJSON turns json.Number into int64 or float64.
func fromJSON(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = fromJSON(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = fromJSON(e)
		}
		return x
	default:
		return v
	}
}

func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []map[string]any:
		arr := make([]any, len(x))
		for i, e := range x {
			arr[i] = normalize(e)
		}
		return arr
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	case int:
		return int64(x)
	default:
		return v
	}
}

// SetVariable applies one `key.path=value` assignment to bag. The value is
// inferred the same way document leaves are.
func SetVariable(bag map[string]any, assignment string) error {
	key, raw, ok := strings.Cut(assignment, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("%w: %q is not key=value", ErrBadAssignment, assignment)
	}
	parts := strings.Split(key, ".")
	cur := bag
	for _, p := range parts[:len(parts)-1] {
		if p == "" {
			return fmt.Errorf("%w: empty segment in %q", ErrBadAssignment, key)
		}
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	last := parts[len(parts)-1]
	if last == "" {
		return fmt.Errorf("%w: empty segment in %q", ErrBadAssignment, key)
	}
	v := value.Infer(strings.TrimSpace(raw))
	if value.IsUndefined(v) {
		delete(cur, last)
		return nil
	}
	cur[last] = v
	return nil
}

// EnvVariables exposes environ (as returned by os.Environ) as a mapping.
func EnvVariables(environ []string) map[string]any {
	env := make(map[string]any, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}
