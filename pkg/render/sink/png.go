package sink

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/umlsvg/pkg/geom"
	"github.com/matzehuels/umlsvg/pkg/label"
	"github.com/matzehuels/umlsvg/pkg/render"
	"github.com/matzehuels/umlsvg/pkg/scene"
)

// Supersample is the oversampling factor of the native rasterizer.
const Supersample = 2

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
	convert bool
}

// WithPNGSVGOptions passes options through to the SVG renderer used by
// [WithConverter].
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithConverter renders the SVG and converts it with rsvg-convert instead
// of rasterizing natively.
func WithConverter() PNGOption {
	return func(r *pngRenderer) { r.convert = true }
}

// RenderPNG renders the scene as PNG.
func RenderPNG(ctx context.Context, s *scene.Scene, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = 1
	}
	if r.convert {
		return render.ToPNG(ctx, RenderSVG(s, r.svgOpts...), r.scale)
	}

	img, err := Rasterize(s, r.scale)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Rasterize draws s into an image of (Width*scale) x (Height*scale) pixels.
// The scene is drawn at Supersample times that size and downsampled.
func Rasterize(s *scene.Scene, scale float64) (*image.RGBA, error) {
	w := max(1, int(math.Ceil(s.Width*scale)))
	h := max(1, int(math.Ceil(s.Height*scale)))

	big := image.NewRGBA(image.Rect(0, 0, w*Supersample, h*Supersample))
	draw.Draw(big, big.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	c, err := newCanvas(big, scale*Supersample)
	if err != nil {
		return nil, err
	}
	c.drawScene(s)

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), big, big.Bounds(), draw.Over, nil)
	return out, nil
}

type fontVariant int

const (
	fontRegular fontVariant = iota
	fontBold
	fontItalic
)

var parseFonts = sync.OnceValues(func() ([]*opentype.Font, error) {
	var fonts []*opentype.Font
	for _, ttf := range [][]byte{goregular.TTF, gobold.TTF, goitalic.TTF} {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse embedded font: %w", err)
		}
		fonts = append(fonts, f)
	}
	return fonts, nil
})

type faceKey struct {
	variant fontVariant
	size    float64
}

// canvas draws scene geometry scaled by k onto img.
type canvas struct {
	img   *image.RGBA
	k     float64
	fonts []*opentype.Font
	faces map[faceKey]font.Face
}

func newCanvas(img *image.RGBA, k float64) (*canvas, error) {
	fonts, err := parseFonts()
	if err != nil {
		return nil, err
	}
	return &canvas{img: img, k: k, fonts: fonts, faces: map[faceKey]font.Face{}}, nil
}

func (c *canvas) face(v fontVariant, size float64) font.Face {
	key := faceKey{v, size * c.k}
	if f, ok := c.faces[key]; ok {
		return f
	}
	f, err := opentype.NewFace(c.fonts[v], &opentype.FaceOptions{
		Size:    key.size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		f = nil
	}
	c.faces[key] = f
	return f
}

func (c *canvas) drawScene(s *scene.Scene) {
	st := s.Style
	text := parseColor(st.TextColor, color.Black)

	for _, l := range s.Links {
		c.line(l.Line, st.StrokeWidth, parseColor(l.Color, color.Black))
	}
	for _, l := range s.Links {
		if l.Generalization {
			c.line(l.Arrow, st.ArrowStrokeWidth, parseColor(l.Color, color.Black))
			c.arrowhead(l.Arrow, st.ArrowStrokeWidth, color.Black)
		}
	}

	stroke := parseColor(st.BoxStroke, color.Black)
	for _, b := range s.Boxes {
		c.fillRect(b.Rect, parseColor(b.Fill, color.White))
		c.strokeRect(b.Rect, st.BoxStrokeWidth, stroke)
		for _, rule := range b.Rules {
			c.line(rule, st.RuleStrokeWidth, stroke)
		}
		for _, line := range b.Lines {
			v := fontRegular
			switch {
			case line.Bold:
				v = fontBold
			case line.Italic:
				v = fontItalic
			}
			// dy=".35em"
			c.text(line.Text, line.X, line.Y+0.35*st.FontSize, 0, line.Anchor, c.face(v, st.FontSize), text)
		}
	}

	for _, l := range s.Links {
		for _, lb := range l.Labels {
			if lb.Text == "" {
				continue
			}
			c.text(lb.Text, lb.X, lb.Y+lb.DyEm*st.LabelFontSize, lb.Rotation, lb.Anchor, c.face(fontRegular, st.LabelFontSize), text)
		}
	}
}

func (c *canvas) fillRect(r geom.Rect, col color.Color) {
	px := image.Rect(
		int(math.Round(r.X*c.k)), int(math.Round(r.Y*c.k)),
		int(math.Round(r.Right()*c.k)), int(math.Round(r.Bottom()*c.k)),
	)
	draw.Draw(c.img, px, image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) strokeRect(r geom.Rect, width float64, col color.Color) {
	tl := geom.Point{X: r.X, Y: r.Y}
	tr := geom.Point{X: r.Right(), Y: r.Y}
	br := geom.Point{X: r.Right(), Y: r.Bottom()}
	bl := geom.Point{X: r.X, Y: r.Bottom()}
	for _, s := range []scene.Segment{{From: tl, To: tr}, {From: tr, To: br}, {From: br, To: bl}, {From: bl, To: tl}} {
		c.line(s, width, col)
	}
}

// line draws a thick segment by stepping along it and painting across its
// normal.
func (c *canvas) line(s scene.Segment, width float64, col color.Color) {
	x1, y1 := s.From.X*c.k, s.From.Y*c.k
	x2, y2 := s.To.X*c.k, s.To.Y*c.k
	dx, dy := x2-x1, y2-y1
	half := width * c.k / 2

	dist := math.Hypot(dx, dy)
	if dist < 1 {
		for ty := -half; ty <= half; ty++ {
			for tx := -half; tx <= half; tx++ {
				c.img.Set(int(x1+tx), int(y1+ty), col)
			}
		}
		return
	}

	px, py := -dy/dist, dx/dist
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		cx, cy := x1+dx*t, y1+dy*t
		for o := -half; o <= half; o += 0.5 {
			c.img.Set(int(cx+px*o), int(cy+py*o), col)
		}
	}
}

// arrowhead fills the triangle of the SVG marker: ten stroke widths long,
// centred on the end of s.
func (c *canvas) arrowhead(s scene.Segment, width float64, col color.Color) {
	n := s.Length()
	if n == 0 {
		return
	}
	ux, uy := (s.To.X-s.From.X)/n, (s.To.Y-s.From.Y)/n
	u := 5 * width
	end := s.To
	tip := geom.Point{X: end.X + ux*u, Y: end.Y + uy*u}
	a := geom.Point{X: end.X - ux*u - uy*u, Y: end.Y - uy*u + ux*u}
	b := geom.Point{X: end.X - ux*u + uy*u, Y: end.Y - uy*u - ux*u}
	c.fillTriangle(tip, a, b, col)
}

func (c *canvas) fillTriangle(p0, p1, p2 geom.Point, col color.Color) {
	x0, y0 := p0.X*c.k, p0.Y*c.k
	x1, y1 := p1.X*c.k, p1.Y*c.k
	x2, y2 := p2.X*c.k, p2.Y*c.k

	minX, maxX := math.Floor(math.Min(x0, math.Min(x1, x2))), math.Ceil(math.Max(x0, math.Max(x1, x2)))
	minY, maxY := math.Floor(math.Min(y0, math.Min(y1, y2))), math.Ceil(math.Max(y0, math.Max(y1, y2)))
	area := (x1-x0)*(y2-y0) - (x2-x0)*(y1-y0)
	if area == 0 {
		return
	}

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := x+0.5, y+0.5
			w0 := ((x1-px)*(y2-py) - (x2-px)*(y1-py)) / area
			w1 := ((x2-px)*(y0-py) - (x0-px)*(y2-py)) / area
			w2 := 1 - w0 - w1
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				c.img.Set(int(x), int(y), col)
			}
		}
	}
}

// text draws s with its baseline at (x, y), aligned by anchor and rotated
// clockwise by deg degrees around the anchor point.
func (c *canvas) text(s string, x, y, deg float64, anchor label.Anchor, face font.Face, col color.Color) {
	if face == nil || s == "" {
		return
	}
	width := float64(font.MeasureString(face, s)) / 64
	var shift float64
	switch anchor {
	case label.AnchorMiddle:
		shift = width / 2
	case label.AnchorEnd:
		shift = width
	}

	if deg == 0 {
		d := &font.Drawer{
			Dst:  c.img,
			Src:  image.NewUniform(col),
			Face: face,
			Dot:  fixed.Point26_6{X: fixed.Int26_6((x*c.k - shift) * 64), Y: fixed.Int26_6(y * c.k * 64)},
		}
		d.DrawString(s)
		return
	}

	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	tmp := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(width))+2, ascent+descent+2))
	d := &font.Drawer{Dst: tmp, Src: image.NewUniform(col), Face: face, Dot: fixed.P(1, ascent+1)}
	d.DrawString(s)

	ax, ay := 1+shift, float64(ascent+1)
	sin, cos := math.Sincos(deg * math.Pi / 180)
	b := tmp.Bounds()
	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			src := tmp.RGBAAt(px, py)
			if src.A == 0 {
				continue
			}
			dx, dy := float64(px)+0.5-ax, float64(py)+0.5-ay
			tx := int(math.Floor(x*c.k + dx*cos - dy*sin))
			ty := int(math.Floor(y*c.k + dx*sin + dy*cos))
			draw.Draw(c.img, image.Rect(tx, ty, tx+1, ty+1), image.NewUniform(src), image.Point{}, draw.Over)
		}
	}
}

var namedColors = map[string]color.RGBA{
	"black":     {0, 0, 0, 255},
	"white":     {255, 255, 255, 255},
	"red":       {255, 0, 0, 255},
	"green":     {0, 128, 0, 255},
	"blue":      {0, 0, 255, 255},
	"gray":      {128, 128, 128, 255},
	"grey":      {128, 128, 128, 255},
	"lightgrey": {211, 211, 211, 255},
	"orange":    {255, 165, 0, 255},
	"yellow":    {255, 255, 0, 255},
	"purple":    {128, 0, 128, 255},
	"navy":      {0, 0, 128, 255},
	"steelblue": {70, 130, 180, 255},
}

// parseColor understands the named colours above and #rgb / #rrggbb.
func parseColor(s string, def color.Color) color.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if len(s) == 4 && s[0] == '#' {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	if len(s) == 7 && s[0] == '#' {
		if c, err := colorful.Hex(s); err == nil {
			r, g, b := c.RGB255()
			return color.RGBA{r, g, b, 255}
		}
	}
	return def
}
