package parse

import (
	"errors"
	"fmt"
)

// Format is the syntax a document, or one segment of it, is written in.
type Format int

const (
	FormatAuto Format = iota
	FormatTOML
	FormatYAML
	FormatProperties
)

var ErrBadFormat = errors.New("bad format")

func ParseFormat(v string) (Format, error) {
	f, ok := map[string]Format{
		"":           FormatAuto,
		"auto":       FormatAuto,
		"toml":       FormatTOML,
		"yaml":       FormatYAML,
		"yml":        FormatYAML,
		"properties": FormatProperties,
		"props":      FormatProperties,
	}[v]
	if ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadFormat, v)
}

func (f Format) String() string {
	d, err := f.MarshalText()
	if err != nil {
		return err.Error()
	}
	return string(d)
}

func (f Format) MarshalText() ([]byte, error) {
	switch f {
	case FormatAuto:
		return []byte("auto"), nil
	case FormatTOML:
		return []byte("toml"), nil
	case FormatYAML:
		return []byte("yaml"), nil
	case FormatProperties:
		return []byte("properties"), nil
	default:
		return nil, fmt.Errorf("<err: %d is not a format>", f)
	}
}

func (f *Format) UnmarshalText(d []byte) error {
	pf, err := ParseFormat(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}

// AllFormats returns the concrete formats, without FormatAuto.
func AllFormats() []Format {
	return []Format{FormatTOML, FormatYAML, FormatProperties}
}
