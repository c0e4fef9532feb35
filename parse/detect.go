package parse

import (
	"regexp"
	"strings"
)

// Segment is one contiguous slice of a document written in a single
// format. Lines are 1-based and inclusive.
type Segment struct {
	Format    Format
	StartLine int
	EndLine   int
	Text      string
}

type lineKind int

const (
	lineBlank lineKind = iota
	lineComment
	lineIndented
	lineHeader
	lineAssign
	lineQuotedAssign
	lineMapping
	lineListItem
	lineUnknown
)

type lineClass struct {
	kind lineKind
	// assignment details
	spaced    bool
	arrayKey  bool
	tomlValue bool
	value     string
}

var (
	headerRe       = regexp.MustCompile(`^\[\[?\s*[A-Za-z0-9_\-."']+\s*\]\]?\s*(?:#.*)?$`)
	assignRe       = regexp.MustCompile(`^[A-Za-z0-9_\-]+(?:\.[A-Za-z0-9_\-]+)*(\[\])?(\s*)=(.*)$`)
	quotedAssignRe = regexp.MustCompile(`^(?:"[^"]*"|'[^']*')(?:\.[A-Za-z0-9_\-"']+)*\s*=`)
	mappingRe      = regexp.MustCompile(`^(?:"[^"]*"|'[^']*'|[^\s:=#\[{"'\-][^:=]*?|-[^\s:=][^:=]*?)\s*:(?:\s.*)?$`)
	tomlValueRe    = regexp.MustCompile(`^(?:["'\[{]|true\b|false\b|[+-]?(?:inf|nan)\b|[+-]?\d[\d_]*(?:\.[\d_]+)?(?:[eE][+-]?\d+)?\s*(?:#.*)?$|0[xob][0-9A-Fa-f_]+\s*(?:#.*)?$|\d{4}-\d{2}-\d{2})`)
)

func classify(raw string) lineClass {
	line := strings.TrimRight(raw, " \t\r")
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return lineClass{kind: lineBlank}
	case trimmed[0] == '#':
		return lineClass{kind: lineComment}
	case line[0] == ' ' || line[0] == '\t':
		return lineClass{kind: lineIndented}
	case headerRe.MatchString(line):
		return lineClass{kind: lineHeader}
	case line == "-" || strings.HasPrefix(line, "- "):
		return lineClass{kind: lineListItem}
	}

	if m := assignRe.FindStringSubmatch(line); m != nil {
		rest := m[3]
		return lineClass{
			kind:      lineAssign,
			value:     strings.TrimSpace(rest),
			arrayKey:  m[1] != "",
			spaced:    m[2] != "" || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "\t"),
			tomlValue: tomlValueRe.MatchString(strings.TrimSpace(rest)),
		}
	}
	if quotedAssignRe.MatchString(line) {
		return lineClass{kind: lineQuotedAssign}
	}
	if mappingRe.MatchString(line) {
		return lineClass{kind: lineMapping}
	}
	return lineClass{kind: lineUnknown}
}

// openString returns the delimiter of a multi-line string the assignment
// opens and leaves unclosed, or "".
func openString(c lineClass) string {
	if c.kind != lineAssign {
		return ""
	}
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(c.value, q) && !strings.Contains(c.value[3:], q) {
			return q
		}
	}
	return ""
}

// DetectFormat guesses the single format of text. Bracketed section
// headers followed by "key = value" lines mean TOML; "key: value" mappings
// or "- item" lists mean YAML; "key.sub=value" or "key[]=value" lines mean
// properties. Text with none of these is treated as YAML.
func DetectFormat(text string) Format {
	var inSection, sectionAssign, yamlish, props, rootTOML bool
	open := ""
	for _, raw := range strings.Split(text, "\n") {
		if open != "" {
			if strings.Contains(raw, open) {
				open = ""
			}
			continue
		}
		c := classify(raw)
		open = openString(c)
		switch c.kind {
		case lineHeader:
			inSection = true
		case lineQuotedAssign:
			if inSection {
				sectionAssign = true
			} else {
				rootTOML = true
			}
		case lineAssign:
			switch {
			case c.arrayKey:
				props = true
			case inSection && (c.spaced || c.tomlValue):
				sectionAssign = true
			case !c.spaced:
				props = true
			case c.tomlValue:
				rootTOML = true
			default:
				props = true
			}
		case lineMapping, lineListItem:
			yamlish = true
		}
	}
	switch {
	case sectionAssign:
		return FormatTOML
	case yamlish:
		return FormatYAML
	case props:
		return FormatProperties
	case rootTOML || inSection:
		return FormatTOML
	default:
		return FormatYAML
	}
}

// SplitSegments cuts text into runs of lines sharing one format.
//
// Section headers and quoted-key assignments are TOML. A "key = value"
// line with spaces around '=' is TOML inside a TOML run, and outside one
// only when its value is TOML-shaped; otherwise it is a property, as is
// every "key=value" and "key[]=value" line. "key: value" and "- item" lines
// are YAML. Blank, comment, indented and unrecognised lines belong to the
// run around them.
func SplitSegments(text string) []Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	formats := make([]Format, len(lines))

	cur := FormatAuto
	inSection := false
	open := ""
	for i, raw := range lines {
		if open != "" {
			formats[i] = cur
			if strings.Contains(raw, open) {
				open = ""
			}
			continue
		}
		c := classify(raw)
		f := cur
		switch c.kind {
		case lineBlank, lineComment, lineUnknown:
		case lineIndented:
			if f == FormatAuto {
				f = FormatYAML
			}
		case lineHeader, lineQuotedAssign:
			f = FormatTOML
		case lineAssign:
			switch {
			case c.arrayKey:
				f = FormatProperties
			case inSection && c.tomlValue:
				f = FormatTOML
			case !c.spaced:
				f = FormatProperties
			case cur == FormatTOML || c.tomlValue:
				f = FormatTOML
			default:
				f = FormatProperties
			}
		case lineMapping, lineListItem:
			f = FormatYAML
		}
		if f == FormatTOML {
			open = openString(c)
		}
		inSection = f == FormatTOML && (inSection || c.kind == lineHeader)
		formats[i] = f
		cur = f
	}

	// leading neutral lines join the first run
	first := FormatYAML
	for _, f := range formats {
		if f != FormatAuto {
			first = f
			break
		}
	}
	for i := range formats {
		if formats[i] != FormatAuto {
			break
		}
		formats[i] = first
	}

	var segs []Segment
	start := 0
	for i := 1; i <= len(lines); i++ {
		if i < len(lines) && formats[i] == formats[start] {
			continue
		}
		segs = append(segs, Segment{
			Format:    formats[start],
			StartLine: start + 1,
			EndLine:   i,
			Text:      strings.Join(lines[start:i], "\n"),
		})
		start = i
	}
	return segs
}
