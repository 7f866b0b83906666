package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/umlsvg/pkg/label"
	"github.com/matzehuels/umlsvg/pkg/scene"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// markerNamespace seeds the deterministic arrowhead marker ids.
var markerNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://umlsvg.dev/marker"))

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	header     bool
	markerID   string
	background string
}

// WithoutXMLHeader omits the XML declaration, for inlining into HTML.
func WithoutXMLHeader() SVGOption { return func(r *svgRenderer) { r.header = false } }

// WithMarkerID overrides the id of the generalization arrowhead marker.
func WithMarkerID(id string) SVGOption { return func(r *svgRenderer) { r.markerID = id } }

// WithBackground paints the canvas before anything else.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// RenderSVG draws s as a standalone SVG document. Links are drawn first so
// that boxes cover the center-to-center segments; labels are drawn last.
func RenderSVG(s *scene.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{header: true}
	for _, opt := range opts {
		opt(&r)
	}
	if r.markerID == "" {
		r.markerID = MarkerID(s)
	}
	st := s.Style

	var buf bytes.Buffer
	if r.header {
		buf.WriteString(xmlHeader)
	}
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(s.Width), num(s.Height), num(s.Width), num(s.Height))

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escape(r.background))
	}
	renderDefs(&buf, r.markerID)

	buf.WriteString(`  <g class="links">` + "\n")
	for _, l := range s.Links {
		fmt.Fprintf(&buf, `    <line class="link" data-index="%d" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>`+"\n",
			l.Index, num(l.Line.From.X), num(l.Line.From.Y), num(l.Line.To.X), num(l.Line.To.Y), escape(l.Color), num(st.StrokeWidth))
	}
	for _, l := range s.Links {
		if !l.Generalization {
			continue
		}
		fmt.Fprintf(&buf, `    <line class="generalization" data-index="%d" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" marker-end="url(#%s)"/>`+"\n",
			l.Index, num(l.Arrow.From.X), num(l.Arrow.From.Y), num(l.Arrow.To.X), num(l.Arrow.To.Y), escape(l.Color), num(st.ArrowStrokeWidth), r.markerID)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="boxes">` + "\n")
	for _, b := range s.Boxes {
		renderBox(&buf, b, st)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="labels">` + "\n")
	for _, l := range s.Links {
		for _, lb := range l.Labels {
			renderLabel(&buf, lb, st)
		}
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// MarkerID derives a stable marker id from the scene dimensions and link
// count, so two diagrams inlined into one page rarely collide.
func MarkerID(s *scene.Scene) string {
	seed := fmt.Sprintf("%gx%g/%d/%d", s.Width, s.Height, len(s.Boxes), len(s.Links))
	return "arrowhead-" + uuid.NewSHA1(markerNamespace, []byte(seed)).String()[:8]
}

func renderDefs(buf *bytes.Buffer, id string) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <marker id="%s" viewBox="-0 -5 10 10" refX="5" refY="0" orient="auto" markerWidth="10" markerHeight="10">`+"\n", id)
	buf.WriteString(`      <path d="M 0,-5 L 10 ,0 L 0,5" fill="black"/>` + "\n")
	buf.WriteString("    </marker>\n")
	buf.WriteString("  </defs>\n")
}

func renderBox(buf *bytes.Buffer, b scene.Box, st scene.Style) {
	fmt.Fprintf(buf, `    <g class="box" id="box-%s">`+"\n", escape(b.ID))
	fmt.Fprintf(buf, `      <rect x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
		num(b.Rect.X), num(b.Rect.Y), num(b.Rect.W), num(b.Rect.H), escape(b.Fill), escape(st.BoxStroke), num(st.BoxStrokeWidth))
	for _, rule := range b.Rules {
		fmt.Fprintf(buf, `      <line class="rule" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>`+"\n",
			num(rule.From.X), num(rule.From.Y), num(rule.To.X), num(rule.To.Y), escape(st.BoxStroke), num(st.RuleStrokeWidth))
	}
	for _, line := range b.Lines {
		class := "text"
		if line.Title {
			class = "title"
		}
		fmt.Fprintf(buf, `      <text class="%s" x="%s" y="%s" dy=".35em" text-anchor="%s" font-family="%s" font-size="%s" fill="%s"%s>%s</text>`+"\n",
			class, num(line.X), num(line.Y), line.Anchor, escape(st.FontFamily), num(st.FontSize), escape(st.TextColor), fontAttrs(line), escape(line.Text))
	}
	buf.WriteString("    </g>\n")
}

func fontAttrs(line scene.TextLine) string {
	var s string
	if line.Bold {
		s += ` font-weight="bold"`
	}
	if line.Italic {
		s += ` font-style="italic"`
	}
	return s
}

func renderLabel(buf *bytes.Buffer, lb label.Label, st scene.Style) {
	var transform string
	if lb.Rotation != 0 {
		transform = fmt.Sprintf(` transform="rotate(%s %s %s)"`, num(lb.Rotation), num(lb.X), num(lb.Y))
	}
	fmt.Fprintf(buf, `    <text class="label" data-slot="%s" data-edge="%s" x="%s" y="%s" dy="%s" text-anchor="%s" font-family="%s" font-size="%s" fill="%s"%s>%s</text>`+"\n",
		lb.Slot, lb.Edge, num(lb.X), num(lb.Y), lb.Dy(), lb.Anchor, escape(st.FontFamily), num(st.LabelFontSize), escape(st.TextColor), transform, escape(lb.Text))
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(f float64) string {
	r := math.Round(f*100) / 100
	if r == 0 {
		r = 0 // normalise -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

