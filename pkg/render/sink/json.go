package sink

import (
	"encoding/json"

	"github.com/matzehuels/umlsvg/pkg/scene"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent      bool
	hideEmpty   bool
	diagnostics bool
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONVisibleLabelsOnly drops label slots whose text is empty.
func WithJSONVisibleLabelsOnly() JSONOption { return func(r *jsonRenderer) { r.hideEmpty = true } }

// WithJSONDiagnostics includes the dangling references found while resolving.
func WithJSONDiagnostics() JSONOption { return func(r *jsonRenderer) { r.diagnostics = true } }

type jsonOutput struct {
	Width       float64          `json:"width"`
	Height      float64          `json:"height"`
	LabelMode   string           `json:"label_mode"`
	Boxes       []jsonBox        `json:"boxes"`
	Links       []jsonLink       `json:"links"`
	Skipped     int              `json:"skipped,omitempty"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
}

type jsonBox struct {
	ID     string        `json:"id"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Fill   string        `json:"fill"`
	Lines  []jsonText    `json:"lines,omitempty"`
	Rules  []jsonSegment `json:"rules,omitempty"`
}

type jsonText struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Anchor string  `json:"anchor"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
	Title  bool    `json:"title,omitempty"`
}

type jsonSegment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type jsonLink struct {
	Index          int          `json:"index"`
	Source         string       `json:"source"`
	Target         string       `json:"target"`
	Color          string       `json:"color"`
	Line           jsonSegment  `json:"line"`
	Generalization bool         `json:"generalization,omitempty"`
	Arrow          *jsonSegment `json:"arrow,omitempty"`
	SourceEdge     string       `json:"source_edge"`
	TargetEdge     string       `json:"target_edge"`
	Labels         []jsonLabel  `json:"labels"`
}

type jsonLabel struct {
	Slot     string  `json:"slot"`
	Text     string  `json:"text"`
	Edge     string  `json:"edge"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Anchor   string  `json:"anchor"`
	Dy       string  `json:"dy"`
	Rotation float64 `json:"rotation,omitempty"`
}

type jsonDiagnostic struct {
	ID    string `json:"id"`
	Links []int  `json:"links"`
}

// RenderJSON exports the computed geometry of s.
func RenderJSON(s *scene.Scene, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:     s.Width,
		Height:    s.Height,
		LabelMode: string(s.Style.LabelMode),
		Boxes:     make([]jsonBox, 0, len(s.Boxes)),
		Links:     make([]jsonLink, 0, len(s.Links)),
		Skipped:   s.Skipped,
	}
	for _, b := range s.Boxes {
		out.Boxes = append(out.Boxes, exportBox(b))
	}
	for _, l := range s.Links {
		out.Links = append(out.Links, exportLink(l, r.hideEmpty))
	}
	if r.diagnostics {
		for _, d := range s.Diagnostics {
			out.Diagnostics = append(out.Diagnostics, jsonDiagnostic{ID: string(d.ID), Links: d.Links})
		}
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

func exportBox(b scene.Box) jsonBox {
	out := jsonBox{ID: b.ID, X: b.Rect.X, Y: b.Rect.Y, Width: b.Rect.W, Height: b.Rect.H, Fill: b.Fill}
	for _, l := range b.Lines {
		out.Lines = append(out.Lines, jsonText{
			Text: l.Text, X: l.X, Y: l.Y, Anchor: string(l.Anchor),
			Bold: l.Bold, Italic: l.Italic, Title: l.Title,
		})
	}
	for _, r := range b.Rules {
		out.Rules = append(out.Rules, exportSegment(r))
	}
	return out
}

func exportLink(l scene.Link, hideEmpty bool) jsonLink {
	out := jsonLink{
		Index:          l.Index,
		Source:         l.Source,
		Target:         l.Target,
		Color:          l.Color,
		Line:           exportSegment(l.Line),
		Generalization: l.Generalization,
		SourceEdge:     l.SourceEdge.String(),
		TargetEdge:     l.TargetEdge.String(),
		Labels:         make([]jsonLabel, 0, len(l.Labels)),
	}
	if l.Generalization {
		arrow := exportSegment(l.Arrow)
		out.Arrow = &arrow
	}
	for _, lb := range l.Labels {
		if hideEmpty && lb.Text == "" {
			continue
		}
		out.Labels = append(out.Labels, jsonLabel{
			Slot: string(lb.Slot), Text: lb.Text, Edge: lb.Edge.String(),
			X: lb.X, Y: lb.Y, Anchor: string(lb.Anchor), Dy: lb.Dy(), Rotation: lb.Rotation,
		})
	}
	return out
}

func exportSegment(s scene.Segment) jsonSegment {
	return jsonSegment{X1: s.From.X, Y1: s.From.Y, X2: s.To.X, Y2: s.To.Y}
}
