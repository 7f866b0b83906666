package scene

import (
	"strings"

	"github.com/matzehuels/umlsvg/pkg/diagram"
	"github.com/matzehuels/umlsvg/pkg/geom"
	"github.com/matzehuels/umlsvg/pkg/label"
)

// Build lays out every box and every link of r whose ends resolve.
func Build(r *diagram.Resolved, st Style) *Scene {
	d := r.Diagram
	w, h := d.Canvas()
	s := &Scene{
		Width:       w,
		Height:      h,
		Style:       st,
		Boxes:       make([]Box, 0, len(d.Nodes)),
		Links:       make([]Link, 0, len(r.Links)),
		Diagnostics: r.Diagnostics,
		Skipped:     r.Skipped,
	}

	for _, b := range d.Nodes {
		s.Boxes = append(s.Boxes, layoutBox(b, st))
	}

	opts := label.Options{Mode: st.LabelMode, Offset: st.LabelOffset, Gap: st.LabelGap}
	for i, l := range d.Links {
		src, dst := r.Endpoints(l)
		if src == nil || dst == nil {
			continue
		}
		s.Links = append(s.Links, layoutLink(i, l, src.Rect(), dst.Rect(), st, opts))
	}
	return s
}

func layoutLink(index int, l diagram.Link, src, dst geom.Rect, st Style, opts label.Options) Link {
	out := Link{
		Index:          index,
		Source:         string(l.Source),
		Target:         string(l.Target),
		Color:          l.Color,
		Line:           Segment{From: src.Center(), To: dst.Center()},
		Generalization: l.IsGeneralization(),
		SourceEdge:     geom.Intersect(src, dst, 0).Edge,
		TargetEdge:     geom.Intersect(dst, src, 0).Edge,
		Labels:         label.ForLink(l, src, dst, opts),
	}
	if out.Color == "" {
		out.Color = st.DefaultLinkColor
	}
	if out.Generalization {
		tip := geom.Intersect(dst, src, st.ArrowOffset)
		out.Arrow = Segment{From: src.Center(), To: tip.Point}
	}
	return out
}

// layoutBox stacks the text lines vertically around the box middle. A title
// followed by further lines is separated from them by a rule with TextBuffer
// padding on each side. A divider takes one line slot and draws a rule
// through its middle.
func layoutBox(b diagram.Box, st Style) Box {
	out := Box{ID: string(b.ID), Rect: b.Rect(), Fill: b.Color}
	if out.Fill == "" {
		out.Fill = st.DefaultBoxFill
	}

	n := float64(len(b.TextLines))
	y := (b.Height-(st.LineHeight*n+st.TextBuffer))/2 + st.LineHeight/2

	for i, line := range b.TextLines {
		if line.Divider {
			out.Rules = append(out.Rules, hrule(b, b.Y+y))
			y += st.LineHeight
			continue
		}

		x, anchor := alignText(b, line.Align.Normalize(), st.TextBuffer)
		out.Lines = append(out.Lines, TextLine{
			Text:   line.Text,
			X:      x,
			Y:      b.Y + y,
			Anchor: anchor,
			Bold:   strings.EqualFold(line.Style, "bold"),
			Italic: strings.EqualFold(line.Style, "italic"),
			Title:  line.IsTitle(),
		})
		y += st.LineHeight

		if line.IsTitle() && i < len(b.TextLines)-1 {
			y += st.TextBuffer
			out.Rules = append(out.Rules, hrule(b, b.Y+y-st.TextBuffer/2))
			y += st.TextBuffer
		}
	}
	return out
}

func hrule(b diagram.Box, y float64) Segment {
	return Segment{From: geom.Point{X: b.X, Y: y}, To: geom.Point{X: b.X + b.Width, Y: y}}
}

func alignText(b diagram.Box, a diagram.Align, pad float64) (float64, label.Anchor) {
	switch a {
	case diagram.AlignLeft:
		return b.X + pad, label.AnchorStart
	case diagram.AlignRight:
		return b.X + b.Width - pad, label.AnchorEnd
	default:
		return b.X + b.Width/2, label.AnchorMiddle
	}
}
