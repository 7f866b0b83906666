package sink

import (
	"bytes"
	"context"
	"testing"

	errs "github.com/matzehuels/umlsvg/pkg/errors"
	"github.com/matzehuels/umlsvg/pkg/label"
	"github.com/matzehuels/umlsvg/pkg/render"
)

func TestFor(t *testing.T) {
	sc := testScene(t, label.ModeEdge)
	ctx := context.Background()

	tests := []struct {
		format render.Format
		prefix string
	}{
		{render.FormatSVG, "<?xml"},
		{render.FormatJSON, "{"},
		{render.FormatDOT, "digraph"},
		{render.FormatPNG, "\x89PNG"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			r, err := For(tt.format, Settings{PNGScale: 1})
			if err != nil {
				t.Fatalf("For: %v", err)
			}
			if r.Format() != tt.format {
				t.Errorf("Format() = %s, want %s", r.Format(), tt.format)
			}
			data, err := r.Render(ctx, sc)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !bytes.HasPrefix(data, []byte(tt.prefix)) {
				t.Errorf("output starts with %q, want %q", data[:min(len(data), 16)], tt.prefix)
			}
		})
	}
}

func TestForUnknown(t *testing.T) {
	_, err := For("bmp", Settings{})
	if !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}
