package value

import "strings"

// splitTopLevel splits s on sep, ignoring separators nested inside
// brackets, braces, or quoted strings. Each part is trimmed. A trailing
// empty part (from a trailing separator) is dropped.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	var cur strings.Builder
	depthB := 0
	depthC := 0
	inQuote := byte(0)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inQuote != 0 {
			if inQuote == '"' && ch == '\\' && i+1 < len(s) {
				cur.WriteByte(ch)
				i++
				cur.WriteByte(s[i])
				continue
			}
			if ch == inQuote {
				inQuote = 0
			}
			cur.WriteByte(ch)
			continue
		}
		switch ch {
		case '"', '\'':
			inQuote = ch
		case '[':
			depthB++
		case ']':
			if depthB > 0 {
				depthB--
			}
		case '{':
			depthC++
		case '}':
			if depthC > 0 {
				depthC--
			}
		}
		if depthB == 0 && depthC == 0 && ch == sep {
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteByte(ch)
	}
	if last := strings.TrimSpace(cur.String()); last != "" {
		parts = append(parts, last)
	}
	return parts
}

// enclosed reports whether s starts with open and ends with the matching
// close, with the opening bracket closed only at the very end.
func enclosed(s string, open, close byte) bool {
	if len(s) < 2 || s[0] != open || s[len(s)-1] != close {
		return false
	}
	depth := 0
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
		switch ch {
		case '"', '\'':
			inQuote = ch
		case open:
			depth++
		case close:
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return s, false
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s, false
	}
	return s[1 : len(s)-1], true
}
