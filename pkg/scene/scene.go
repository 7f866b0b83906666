// Package scene turns a resolved diagram into drawable geometry.
//
// A [Scene] holds only numbers and strings: box outlines, laid-out text
// lines, dividers, link segments, generalization arrows and planned labels.
// Output sinks in package render/sink turn a scene into SVG, PNG, JSON or
// Graphviz DOT without recomputing any geometry.
//
// Build is pure. Callers that move boxes (the nudge TUI) rebuild the scene
// from the mutated diagram after every move.
package scene

import (
	"github.com/matzehuels/umlsvg/pkg/diagram"
	"github.com/matzehuels/umlsvg/pkg/geom"
	"github.com/matzehuels/umlsvg/pkg/label"
)

// Style holds the drawing constants shared by the scene builder and sinks.
type Style struct {
	LabelMode   label.Mode
	LabelOffset float64 // border clearance of label anchors
	LabelGap    float64 // horizontal gap between crossing and label text
	ArrowOffset float64 // border clearance of generalization arrowheads

	FontFamily    string
	FontSize      float64 // box text
	LineHeight    float64 // box text line pitch
	TextBuffer    float64 // padding around box text and title rules
	LabelFontSize float64 // link labels

	StrokeWidth      float64 // link lines
	ArrowStrokeWidth float64
	RuleStrokeWidth  float64
	DefaultLinkColor string
	BoxStroke        string
	BoxStrokeWidth   float64
	DefaultBoxFill   string
	TextColor        string
}

// DefaultStyle returns the stock drawing constants.
func DefaultStyle() Style {
	return Style{
		LabelMode:        label.ModeEdge,
		LabelOffset:      10,
		LabelGap:         label.Gap,
		ArrowOffset:      10,
		FontFamily:       "Arial, sans-serif",
		FontSize:         10,
		LineHeight:       12,
		TextBuffer:       10,
		LabelFontSize:    12,
		StrokeWidth:      3,
		ArrowStrokeWidth: 2,
		RuleStrokeWidth:  1,
		DefaultLinkColor: "black",
		BoxStroke:        "steelblue",
		BoxStrokeWidth:   2,
		DefaultBoxFill:   "white",
		TextColor:        "black",
	}
}

// Segment is a straight line between two points.
type Segment struct {
	From, To geom.Point
}

// Length returns the euclidean length of the segment.
func (s Segment) Length() float64 { return geom.Distance(s.From, s.To) }

// TextLine is one line of box text in canvas coordinates. Y is the line's
// vertical center; sinks shift the baseline by 0.35em.
type TextLine struct {
	Text   string
	X, Y   float64
	Anchor label.Anchor
	Bold   bool
	Italic bool
	Title  bool
}

// Box is a laid-out class rectangle.
type Box struct {
	ID    string
	Rect  geom.Rect
	Fill  string
	Lines []TextLine
	Rules []Segment // title rules and dividers
}

// Link is a laid-out relationship.
type Link struct {
	Index          int // position in the document's link list
	Source, Target string
	Color          string
	Line           Segment // center to center
	Generalization bool
	Arrow          Segment // source center to the offset target border; zero unless Generalization
	SourceEdge     geom.Edge
	TargetEdge     geom.Edge
	Labels         []label.Label
}

// Scene is the complete drawable geometry of a diagram.
type Scene struct {
	Width, Height float64
	Style         Style
	Boxes         []Box
	Links         []Link
	Diagnostics   []diagram.Diagnostic
	Skipped       int
}

// LabelCount returns the number of label slots across all links.
func (s *Scene) LabelCount() int {
	n := 0
	for _, l := range s.Links {
		n += len(l.Labels)
	}
	return n
}
