package sink

import (
	"context"

	errs "github.com/matzehuels/umlsvg/pkg/errors"
	"github.com/matzehuels/umlsvg/pkg/render"
	"github.com/matzehuels/umlsvg/pkg/scene"
)

// Settings carries the per-format knobs a [render.Renderer] needs.
type Settings struct {
	PNGScale     float64
	PNGConverter bool
	JSON         []JSONOption
}

type rendererFunc struct {
	format render.Format
	fn     func(ctx context.Context, s *scene.Scene) ([]byte, error)
}

func (r rendererFunc) Format() render.Format { return r.format }

func (r rendererFunc) Render(ctx context.Context, s *scene.Scene) ([]byte, error) {
	return r.fn(ctx, s)
}

// For returns the renderer of format f.
func For(f render.Format, set Settings) (render.Renderer, error) {
	var fn func(ctx context.Context, s *scene.Scene) ([]byte, error)

	switch f {
	case render.FormatSVG:
		fn = func(_ context.Context, s *scene.Scene) ([]byte, error) { return RenderSVG(s), nil }
	case render.FormatPNG:
		opts := []PNGOption{}
		if set.PNGScale > 0 {
			opts = append(opts, WithScale(set.PNGScale))
		}
		if set.PNGConverter {
			opts = append(opts, WithConverter())
		}
		fn = func(ctx context.Context, s *scene.Scene) ([]byte, error) { return RenderPNG(ctx, s, opts...) }
	case render.FormatPDF:
		fn = func(ctx context.Context, s *scene.Scene) ([]byte, error) { return RenderPDF(ctx, s) }
	case render.FormatJSON:
		fn = func(_ context.Context, s *scene.Scene) ([]byte, error) { return RenderJSON(s, set.JSON...) }
	case render.FormatDOT:
		fn = func(_ context.Context, s *scene.Scene) ([]byte, error) { return []byte(ToDOT(s)), nil }
	case render.FormatNodelink:
		fn = RenderNodelink
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unsupported format: %s", f)
	}
	return rendererFunc{format: f, fn: fn}, nil
}
