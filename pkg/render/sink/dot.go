package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	errs "github.com/matzehuels/umlsvg/pkg/errors"
	"github.com/matzehuels/umlsvg/pkg/label"
	"github.com/matzehuels/umlsvg/pkg/scene"
)

// pointsPerInch converts scene pixels to Graphviz node sizes.
const pointsPerInch = 72.0

// ToDOT converts a scene to Graphviz DOT with every box pinned to its
// position. Graphviz has y pointing up, so y coordinates are flipped
// against the canvas height. Start labels become tail labels and end labels
// head labels; generalizations get a hollow arrowhead.
func ToDOT(s *scene.Scene) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=filled, fixedsize=true, color=%q, fontname=%q, fontsize=%s];\n",
		s.Style.BoxStroke, firstFamily(s.Style.FontFamily), num(s.Style.FontSize))
	fmt.Fprintf(&buf, "  edge [fontsize=%s, arrowhead=none];\n", num(s.Style.LabelFontSize))
	buf.WriteString("\n")

	for _, b := range s.Boxes {
		c := b.Rect.Center()
		attrs := []string{
			fmt.Sprintf("pos=\"%s,%s!\"", num(c.X), num(s.Height-c.Y)),
			"width=" + num(b.Rect.W/pointsPerInch),
			"height=" + num(b.Rect.H/pointsPerInch),
			fmt.Sprintf("fillcolor=%q", b.Fill),
			fmt.Sprintf("label=%q", boxLabel(b)),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", b.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range s.Links {
		attrs := []string{fmt.Sprintf("color=%q", l.Color)}
		if l.Generalization {
			attrs = append(attrs, "arrowhead=onormal")
		}
		if t := joinLabels(l.Labels, label.StartTop, label.StartBottom, label.Start); t != "" {
			attrs = append(attrs, fmt.Sprintf("taillabel=%q", t))
		}
		if t := joinLabels(l.Labels, label.EndTop, label.EndBottom, label.End); t != "" {
			attrs = append(attrs, fmt.Sprintf("headlabel=%q", t))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", l.Source, l.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func boxLabel(b scene.Box) string {
	texts := make([]string, 0, len(b.Lines))
	for _, l := range b.Lines {
		texts = append(texts, l.Text)
	}
	if len(texts) == 0 {
		return b.ID
	}
	return strings.Join(texts, "\n")
}

func joinLabels(labels []label.Label, slots ...label.SlotID) string {
	var parts []string
	for _, slot := range slots {
		for _, lb := range labels {
			if lb.Slot == slot && lb.Text != "" {
				parts = append(parts, lb.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

func firstFamily(families string) string {
	name, _, _ := strings.Cut(families, ",")
	return strings.TrimSpace(name)
}

// RenderNodelink lays out the DOT form of s with the embedded Graphviz and
// returns the resulting SVG.
func RenderNodelink(ctx context.Context, s *scene.Scene) ([]byte, error) {
	return RenderDOT(ctx, ToDOT(s))
}

// RenderDOT renders DOT source to SVG using Graphviz's neato layout, which
// honours pinned positions.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeRenderFailed, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeRenderFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeRenderFailed, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the pt-sized root element Graphviz writes with
// one sized in pixels.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
