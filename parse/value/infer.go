// Package value turns the string leaves of a parsed configuration document
// into native Go values.
//
// Two steps are applied to every leaf: Resolve substitutes template
// references (${a.b}, $a.b and {{a.b}}) from a caller supplied variable bag,
// and Infer converts what is left into the most specific native type.
//
// Native values are string, int64, float64, bool, nil, []any and
// map[string]any. The Undefined sentinel marks a key that must be removed
// from the result rather than assigned.
package value

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var numberRe = regexp.MustCompile(`^[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?$`)

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is returned by Infer for the literal "undefined". Callers unset
// the corresponding key instead of storing it.
var Undefined any = undefined{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Infer converts token into its most specific native value. It never fails;
// a token that matches no rule is returned unchanged.
//
// Array elements are resolved before inference, but Infer has no variable
// bag, so an element referencing a variable is kept as a literal string.
func Infer(token string) any {
	v, _ := inferToken(token, nil, false, nil)
	return v
}

// InferWith is Infer with a variable bag for array elements. A reference to
// a missing variable inside an array literal is reported as a
// *VariableNotFoundError. warn, if non-nil, receives object literal
// segments that had to be skipped.
func InferWith(token string, vars map[string]any, warn func(string)) (any, error) {
	return inferToken(token, vars, true, warn)
}

func inferToken(token string, vars map[string]any, strict bool, warn func(string)) (any, error) {
	s := strings.TrimSpace(token)

	if numberRe.MatchString(s) {
		return parseNumber(s, token), nil
	}

	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	case "undefined":
		return Undefined, nil
	}

	if enclosed(s, '[', ']') {
		return inferArray(s[1:len(s)-1], vars, strict, warn)
	}
	if enclosed(s, '{', '}') {
		return inferObject(s[1:len(s)-1], warn), nil
	}
	if inner, ok := unquote(s); ok {
		return inner, nil
	}
	return token, nil
}

func parseNumber(s, orig string) any {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return orig
}

func inferArray(inner string, vars map[string]any, strict bool, warn func(string)) (any, error) {
	parts := splitTopLevel(inner, ',')
	out := make([]any, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		v, err := evaluate(part, vars, strict, warn)
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

// Evaluate resolves the references in token against vars and infers the
// type of the result. Text substituted from vars is not resolved again.
func Evaluate(token string, vars map[string]any, warn func(string)) (any, error) {
	return evaluate(token, vars, true, warn)
}

func evaluate(token string, vars map[string]any, strict bool, warn func(string)) (any, error) {
	r, err := Resolve(token, vars)
	if err != nil {
		if strict {
			return nil, err
		}
		return inferToken(token, vars, false, warn)
	}
	s, ok := r.(string)
	if !ok {
		return r, nil
	}
	if len(References(token)) > 0 {
		vars, strict = nil, false
	}
	return inferToken(s, vars, strict, warn)
}

// inferObject builds the light object literal. Values stay strings.
func inferObject(inner string, warn func(string)) map[string]any {
	out := make(map[string]any)
	for _, part := range splitTopLevel(inner, ',') {
		if part == "" {
			continue
		}
		idx := strings.IndexByte(part, ':')
		if idx < 0 {
			if warn != nil {
				warn(fmt.Sprintf("object literal entry %q has no ':', skipped", part))
			}
			continue
		}
		key := strings.TrimSpace(part[:idx])
		if k, ok := unquote(key); ok {
			key = k
		}
		if key == "" {
			if warn != nil {
				warn(fmt.Sprintf("object literal entry %q has an empty key, skipped", part))
			}
			continue
		}
		out[key] = strings.TrimSpace(part[idx+1:])
	}
	return out
}
