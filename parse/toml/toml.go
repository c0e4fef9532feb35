package toml

// toml 包把文档中的 TOML 片段解析为嵌套的 map[string]any。
//
// 语法本身交给 BurntSushi/toml 处理；本包负责：
// - 整段解码失败时逐行回退，跳过坏行并给出警告
// - 表头 / 数组表头的路径维护
// - 把解码结果规整为 map[string]any / []any
//
// 非目标：
// - 嵌套的数组表
// - 注释保留

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dzjyyds666/hyconf/parse/value"
)

// WarnFunc receives a 1-based line number relative to the parsed slice.
type WarnFunc func(line int, msg string)

// =========================
// Public API
// =========================

// Parse decodes src. When the slice as a whole is not valid TOML it is
// walked line by line and every line that cannot be decoded is reported
// through warn and skipped.
func Parse(src string, warn WarnFunc) map[string]any {
	if warn == nil {
		warn = func(int, string) {}
	}
	var out map[string]any
	if _, err := toml.Decode(src, &out); err == nil {
		return normalizeTable(out)
	}

	p := &parser{
		lines: strings.Split(src, "\n"),
		root:  make(map[string]any),
		warn:  warn,
	}
	p.cur = p.root
	p.run()
	return p.root
}

// =========================
// Line-by-line fallback
// =========================

type parser struct {
	lines  []string
	lineNo int
	root   map[string]any
	cur    map[string]any
	warn   WarnFunc
}

func (p *parser) run() {
	for p.lineNo < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.lineNo])
		p.lineNo++

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			p.parseTableHeader(line)
			continue
		}
		if findUnquotedEqual(line) < 0 {
			p.warnf("invalid syntax %q, skipped", line)
			continue
		}
		p.parseKeyValue(line)
	}
}

func (p *parser) parseTableHeader(line string) {
	start := p.lineNo
	s := strings.TrimSpace(stripComment(line))
	isArray := strings.HasPrefix(s, "[[")
	var name string
	switch {
	case isArray && strings.HasSuffix(s, "]]") && len(s) > 4:
		name = strings.TrimSpace(s[2 : len(s)-2])
	case !isArray && strings.HasSuffix(s, "]") && len(s) > 2:
		name = strings.TrimSpace(s[1 : len(s)-1])
	default:
		p.warnAt(start, fmt.Sprintf("invalid table header %q, section skipped", line))
		p.cur = make(map[string]any)
		return
	}
	parts, err := parseKeyParts(name)
	if err != nil || len(parts) == 0 {
		p.warnAt(start, fmt.Sprintf("invalid table name %q, section skipped", name))
		p.cur = make(map[string]any)
		return
	}

	if !isArray {
		t, ok := p.walk(p.root, parts)
		if !ok {
			p.cur = make(map[string]any)
			return
		}
		p.cur = t
		return
	}

	parent, ok := p.walk(p.root, parts[:len(parts)-1])
	if !ok {
		p.cur = make(map[string]any)
		return
	}
	last := parts[len(parts)-1]

	var arr []any
	switch existing := parent[last].(type) {
	case nil:
	case []any:
		arr = existing
	default:
		p.warnAt(start, fmt.Sprintf("key %q already defined and is not an array, section skipped", last))
		p.cur = make(map[string]any)
		return
	}
	tbl := make(map[string]any)
	parent[last] = append(arr, tbl)
	p.cur = tbl
}

// walk descends from t along parts, creating tables as needed. For an
// array of tables it descends into the last element.
func (p *parser) walk(t map[string]any, parts []string) (map[string]any, bool) {
	for _, part := range parts {
		switch n := t[part].(type) {
		case nil:
			next := make(map[string]any)
			t[part] = next
			t = next
		case map[string]any:
			t = n
		case []any:
			last, ok := lastTable(n)
			if !ok {
				p.warnf("key %q already defined and is not a table, section skipped", part)
				return nil, false
			}
			t = last
		default:
			p.warnf("key %q already defined and is not a table, section skipped", part)
			return nil, false
		}
	}
	return t, true
}

func lastTable(arr []any) (map[string]any, bool) {
	if len(arr) == 0 {
		return nil, false
	}
	t, ok := arr[len(arr)-1].(map[string]any)
	return t, ok
}

func (p *parser) parseKeyValue(line string) {
	start := p.lineNo
	full := p.consumeValue(line)

	var kv map[string]any
	if _, err := toml.Decode(full, &kv); err != nil {
		if p.setBare(line) {
			return
		}
		p.warnAt(start, fmt.Sprintf("skipped malformed line %q: %s", line, decodeMessage(err)))
		return
	}
	mergeInto(p.cur, normalizeTable(kv))
}

// setBare keeps an unquoted value such as "port = ${port}" or
// "name = {{user.name}}" as a raw string so it can be resolved later.
func (p *parser) setBare(line string) bool {
	idx := findUnquotedEqual(line)
	val := strings.TrimSpace(stripComment(line[idx+1:]))
	if val == "" || (strings.ContainsAny(val[:1], `"'[{=`) && !wholeMustache(val)) {
		return false
	}
	parts, err := parseKeyParts(strings.TrimSpace(line[:idx]))
	if err != nil {
		return false
	}
	t, ok := p.walk(p.cur, parts[:len(parts)-1])
	if !ok {
		return false
	}
	t[parts[len(parts)-1]] = val
	return true
}

func wholeMustache(val string) bool {
	refs := value.References(val)
	return len(refs) == 1 && refs[0].Syntax == value.SyntaxMustache &&
		refs[0].Start == 0 && refs[0].End == len(val)
}

// consumeValue appends continuation lines for multi-line strings, arrays
// and inline tables.
func (p *parser) consumeValue(line string) string {
	idx := findUnquotedEqual(line)
	val := strings.TrimSpace(line[idx+1:])

	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(val, q) && !strings.Contains(val[3:], q) {
			var b strings.Builder
			b.WriteString(line)
			for p.lineNo < len(p.lines) {
				next := p.lines[p.lineNo]
				p.lineNo++
				b.WriteString("\n")
				b.WriteString(next)
				if strings.Contains(next, q) {
					break
				}
			}
			return b.String()
		}
	}

	depth := bracketDepth(val)
	if depth <= 0 {
		return line
	}
	var b strings.Builder
	b.WriteString(line)
	for depth > 0 && p.lineNo < len(p.lines) {
		next := p.lines[p.lineNo]
		p.lineNo++
		b.WriteString("\n")
		b.WriteString(next)
		depth += bracketDepth(next)
	}
	return b.String()
}

func (p *parser) warnf(format string, args ...any) {
	p.warnAt(p.lineNo, fmt.Sprintf(format, args...))
}

func (p *parser) warnAt(line int, msg string) {
	p.warn(line, msg)
}

func decodeMessage(err error) string {
	var perr toml.ParseError
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return err.Error()
}

// =========================
// Utilities
// =========================

func parseKeyParts(s string) ([]string, error) {
	var parts []string
	var cur strings.Builder
	inQuote := byte(0)
	escape := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inQuote != 0 {
			if inQuote == '"' && ch == '\\' && !escape {
				escape = true
				continue
			}
			if escape {
				cur.WriteByte(ch)
				escape = false
				continue
			}
			if ch == inQuote {
				inQuote = 0
				continue
			}
			cur.WriteByte(ch)
			continue
		}
		if ch == '"' || ch == '\'' {
			if strings.TrimSpace(cur.String()) != "" {
				return nil, errors.New("invalid quoted key position")
			}
			inQuote = ch
			cur.Reset()
			continue
		}
		if ch == '.' {
			part := strings.TrimSpace(cur.String())
			if part == "" {
				return nil, errors.New("empty key segment")
			}
			parts = append(parts, part)
			cur.Reset()
			continue
		}
		if ch == '[' || ch == ']' || ch == '=' {
			return nil, fmt.Errorf("unexpected %q in key", ch)
		}
		cur.WriteByte(ch)
	}
	if inQuote != 0 {
		return nil, errors.New("unterminated quoted key")
	}
	last := strings.TrimSpace(cur.String())
	if last == "" {
		return nil, errors.New("empty key segment")
	}
	return append(parts, last), nil
}

// scanUnquoted calls fn for every byte of s outside string literals and
// before a trailing comment. fn returns false to stop.
func scanUnquoted(s string, fn func(i int, ch byte) bool) {
	inQuote := byte(0)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inQuote != 0 {
			if inQuote == '"' && ch == '\\' {
				i++
				continue
			}
			if ch == inQuote {
				inQuote = 0
			}
			continue
		}
		if ch == '"' || ch == '\'' {
			inQuote = ch
			continue
		}
		if ch == '#' {
			return
		}
		if !fn(i, ch) {
			return
		}
	}
}

func stripComment(s string) string {
	end := len(s)
	inQuote := byte(0)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inQuote != 0 {
			if inQuote == '"' && ch == '\\' {
				i++
				continue
			}
			if ch == inQuote {
				inQuote = 0
			}
			continue
		}
		if ch == '"' || ch == '\'' {
			inQuote = ch
			continue
		}
		if ch == '#' {
			end = i
			break
		}
	}
	return s[:end]
}

func findUnquotedEqual(s string) int {
	idx := -1
	scanUnquoted(s, func(i int, ch byte) bool {
		if ch == '=' {
			idx = i
			return false
		}
		return true
	})
	return idx
}

func bracketDepth(s string) int {
	depth := 0
	scanUnquoted(s, func(_ int, ch byte) bool {
		switch ch {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		}
		return true
	})
	return depth
}

// =========================
// Result shaping
// =========================

func normalizeTable(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return normalizeTable(x)
	case []map[string]any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normalizeTable(x[i])
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normalize(x[i])
		}
		return out
	default:
		return v
	}
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		sm, sok := v.(map[string]any)
		dm, dok := dst[k].(map[string]any)
		if sok && dok {
			mergeInto(dm, sm)
			continue
		}
		dst[k] = v
	}
}
