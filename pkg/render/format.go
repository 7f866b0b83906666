package render

import (
	"strings"

	errs "github.com/matzehuels/umlsvg/pkg/errors"
)

// Format names an output format.
type Format string

const (
	FormatSVG      Format = "svg"
	FormatPNG      Format = "png"
	FormatPDF      Format = "pdf"
	FormatJSON     Format = "json"
	FormatDOT      Format = "dot"
	FormatNodelink Format = "nodelink"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT, FormatNodelink}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[Format]bool{
	FormatSVG:      true,
	FormatPNG:      true,
	FormatPDF:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatNodelink: true,
}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !ValidFormats[f] {
		return "", errs.New(errs.ErrCodeInvalidFormat, "unknown format %q (must be one of %s)", s, strings.Join(FormatNames(), ", "))
	}
	return f, nil
}

// FormatNames returns the names of Formats as strings.
func FormatNames() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return names
}

// Extension returns the file extension for f, including the leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatDOT:
		return ".dot"
	case FormatNodelink:
		return ".nodelink.svg"
	}
	return "." + string(f)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG, FormatNodelink:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/octet-stream"
}
