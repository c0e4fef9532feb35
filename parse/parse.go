// Package parse interprets configuration documents that mix TOML sections,
// YAML mappings and Java-properties lines.
//
// # Usage
//
//	res, err := parse.Parse(content, parse.Options{
//		Variables: map[string]any{"env": "prod"},
//	})
//
// The document is cut into single-format segments, each segment is decoded
// into a nested map, the maps are deep-merged in document order (later keys
// win), and finally every string leaf has its ${var}, $var and {{var}}
// references resolved and its type inferred.
//
// A reference to a missing variable fails the whole call. Lines an adapter
// cannot read are skipped and reported in Result.Warnings.
package parse

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dzjyyds666/hyconf/parse/properties"
	"github.com/dzjyyds666/hyconf/parse/toml"
	"github.com/dzjyyds666/hyconf/parse/value"
	"github.com/dzjyyds666/hyconf/parse/yaml"
)

// Options configures Parse. The zero value auto-detects formats and uses an
// empty variable bag.
type Options struct {
	// Format forces a single format for the whole document. FormatAuto
	// detects the format of each segment.
	Format Format

	// Variables is the bag template references are resolved against. It
	// is only read.
	Variables map[string]any

	// Logger receives debug output about segmentation. Nil discards it.
	Logger *slog.Logger
}

// Result is the outcome of Parse.
type Result struct {
	// Data is the processed tree, normally a map[string]any.
	Data any

	// Format is the requested format, or under FormatAuto the detected
	// one; a document mixing formats reports FormatAuto.
	Format Format

	// Warnings lists input that was skipped, in document order.
	Warnings []string

	// Segments are the single-format slices the document was cut into.
	Segments []Segment
}

// Parse interprets content.
func Parse(content string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	res := &Result{Format: opts.Format}
	warn := func(msg string) {
		res.Warnings = append(res.Warnings, msg)
	}

	switch opts.Format {
	case FormatAuto:
		res.Segments = SplitSegments(content)
	case FormatTOML, FormatYAML, FormatProperties:
		res.Segments = []Segment{{
			Format:    opts.Format,
			StartLine: 1,
			EndLine:   strings.Count(content, "\n") + 1,
			Text:      content,
		}}
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadFormat, int(opts.Format))
	}

	var (
		fragments []map[string]any
		top       any
		topSet    bool
	)
	for _, seg := range res.Segments {
		log.Debug("segment", "format", seg.Format, "start", seg.StartLine, "end", seg.EndLine)
		data, err := decodeSegment(seg, warn)
		if err != nil {
			return nil, err
		}
		switch d := data.(type) {
		case nil:
		case map[string]any:
			fragments = append(fragments, d)
		default:
			if len(res.Segments) == 1 {
				top, topSet = d, true
				continue
			}
			warn(fmt.Sprintf("%s:%d: block is not a mapping, skipped", seg.Format, seg.StartLine))
		}
	}

	var tree any
	if topSet {
		tree = top
	} else {
		tree = Merge(fragments...)
	}
	log.Debug("merged", "fragments", len(fragments))

	data, err := Process(tree, opts.Variables, warn)
	if err != nil {
		return nil, err
	}
	if value.IsUndefined(data) {
		data = nil
	}
	res.Data = data

	if opts.Format == FormatAuto {
		res.Format = effectiveFormat(res.Segments)
	}
	return res, nil
}

func decodeSegment(seg Segment, warn func(string)) (any, error) {
	adapterWarn := func(line int, msg string) {
		warn(fmt.Sprintf("%s:%d: %s", seg.Format, seg.StartLine+line-1, msg))
	}
	switch seg.Format {
	case FormatTOML:
		return toml.Parse(seg.Text, adapterWarn), nil
	case FormatYAML:
		return yaml.Parse(seg.Text, adapterWarn), nil
	case FormatProperties:
		return properties.Parse(seg.Text, adapterWarn), nil
	case FormatAuto:
		return nil, fmt.Errorf("%w: segment at line %d has no format", ErrBadFormat, seg.StartLine)
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadFormat, int(seg.Format))
	}
}

func effectiveFormat(segs []Segment) Format {
	if len(segs) == 0 {
		return FormatAuto
	}
	f := segs[0].Format
	for _, s := range segs[1:] {
		if s.Format != f {
			return FormatAuto
		}
	}
	return f
}

// InferType converts a single token into its most specific native value.
func InferType(token string) any {
	return value.Infer(token)
}

// ResolveVariables substitutes the template references in token from vars.
func ResolveVariables(token string, vars map[string]any) (any, error) {
	return value.Resolve(token, vars)
}
