package value

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Syntax identifies which placeholder form a reference was written in.
type Syntax int

const (
	SyntaxBrace    Syntax = iota // ${path}
	SyntaxBare                   // $path
	SyntaxMustache               // {{path}}
)

func (s Syntax) String() string {
	switch s {
	case SyntaxBrace:
		return "brace"
	case SyntaxBare:
		return "bare"
	case SyntaxMustache:
		return "mustache"
	default:
		return "syntax(" + strconv.Itoa(int(s)) + ")"
	}
}

// TemplateReference is one placeholder found in a string. Start and End
// are byte offsets of the whole placeholder, End exclusive.
type TemplateReference struct {
	Path   string
	Syntax Syntax
	Start  int
	End    int
}

var refRe = regexp.MustCompile(
	`\$\{\s*([^{}\s]+)\s*\}` +
		`|\{\{\s*([^{}\s]+)\s*\}\}` +
		`|\$([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)`)

// References returns every placeholder in s in order of appearance.
func References(s string) []TemplateReference {
	matches := refRe.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]TemplateReference, 0, len(matches))
	for _, m := range matches {
		ref := TemplateReference{Start: m[0], End: m[1]}
		switch {
		case m[2] >= 0:
			ref.Path, ref.Syntax = s[m[2]:m[3]], SyntaxBrace
		case m[4] >= 0:
			ref.Path, ref.Syntax = s[m[4]:m[5]], SyntaxMustache
		default:
			ref.Path, ref.Syntax = s[m[6]:m[7]], SyntaxBare
		}
		refs = append(refs, ref)
	}
	return refs
}

// Resolve substitutes the template references in token from vars.
//
// A token that is exactly one reference (after trimming) yields the
// variable's value unchanged, keeping its type. An array literal containing
// references yields a []any whose elements are resolved one by one. Any
// other token with references yields an interpolated string. A token with
// no references is returned as is.
//
// Values taken from vars are not scanned for further references.
func Resolve(token string, vars map[string]any) (any, error) {
	s := strings.TrimSpace(token)
	refs := References(s)
	if len(refs) == 0 {
		return token, nil
	}

	if enclosed(s, '[', ']') {
		return resolveArray(s[1:len(s)-1], vars)
	}

	if len(refs) == 1 && refs[0].Start == 0 && refs[0].End == len(s) {
		return lookupRef(vars, refs[0].Path)
	}

	refs = References(token)
	literals := make([]string, 0, len(refs)+1)
	values := make([]any, 0, len(refs))
	last := 0
	for _, ref := range refs {
		v, err := lookupRef(vars, ref.Path)
		if err != nil {
			return nil, err
		}
		literals = append(literals, token[last:ref.Start])
		values = append(values, v)
		last = ref.End
	}
	literals = append(literals, token[last:])
	return interpolate(literals, values), nil
}

func resolveArray(inner string, vars map[string]any) ([]any, error) {
	parts := splitTopLevel(inner, ',')
	out := make([]any, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		v, err := evaluate(part, vars, true, nil)
		if err != nil {
			return nil, err
		}
		if IsUndefined(v) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func lookupRef(vars map[string]any, path string) (any, error) {
	v, ok := Lookup(vars, path)
	if !ok {
		return nil, &VariableNotFoundError{Path: path}
	}
	return v, nil
}

// Lookup walks vars along the dotted path. Maps with string keys are
// indexed by segment, slices and arrays by a numeric segment.
func Lookup(vars map[string]any, path string) (any, bool) {
	if vars == nil || path == "" {
		return nil, false
	}
	var cur any = vars
	for _, seg := range strings.Split(path, ".") {
		next, ok := index(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func index(cur any, seg string) (any, bool) {
	switch c := cur.(type) {
	case map[string]any:
		v, ok := c[seg]
		return v, ok
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(c) {
			return nil, false
		}
		return c[i], true
	}

	rv := reflect.ValueOf(cur)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}

// interpolate joins literals with the string form of values between them.
// len(literals) must be len(values)+1.
func interpolate(literals []string, values []any) string {
	var b strings.Builder
	for i, lit := range literals {
		b.WriteString(lit)
		if i < len(values) {
			b.WriteString(stringify(values[i]))
		}
	}
	return b.String()
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
