package render

import (
	"testing"

	errs "github.com/matzehuels/umlsvg/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"svg", FormatSVG, false},
		{" PNG ", FormatPNG, false},
		{"Nodelink", FormatNodelink, false},
		{"dot", FormatDOT, false},
		{"gif", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errs.Is(err, errs.ErrCodeInvalidFormat) {
			t.Errorf("ParseFormat(%q) code = %s, want INVALID_FORMAT", tt.in, errs.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatsAreValid(t *testing.T) {
	if len(Formats) != len(ValidFormats) {
		t.Fatalf("Formats has %d entries, ValidFormats %d", len(Formats), len(ValidFormats))
	}
	for _, f := range Formats {
		if !ValidFormats[f] {
			t.Errorf("%s missing from ValidFormats", f)
		}
		if f.ContentType() == "application/octet-stream" {
			t.Errorf("%s has no content type", f)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := map[Format]string{
		FormatSVG:      ".svg",
		FormatPDF:      ".pdf",
		FormatDOT:      ".dot",
		FormatNodelink: ".nodelink.svg",
	}
	for f, want := range tests {
		if got := f.Extension(); got != want {
			t.Errorf("%s.Extension() = %q, want %q", f, got, want)
		}
	}
}

func TestConvertWithoutTool(t *testing.T) {
	old := ConverterBinary
	ConverterBinary = "umlsvg-no-such-converter"
	defer func() { ConverterBinary = old }()

	_, err := ToPDF(t.Context(), []byte("<svg/>"))
	if !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("ToPDF() error = %v, want UNSUPPORTED", err)
	}
}
