package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/umlsvg/pkg/geom"
)

// LinkTypeGeneralization marks a link drawn with an inheritance arrowhead.
const LinkTypeGeneralization = "generalization"

// ID identifies a box. Documents may spell ids as strings or numbers;
// both decode to the same textual form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %s", data)
	}
	*id = ID(n.String())
	return nil
}

func (id *ID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", value.Line)
	}
	*id = ID(value.Value)
	return nil
}

// Flag is a boolean that also accepts 0/1, as written by diagram exporters
// that store hide flags as integers.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	v, err := parseFlag(strings.Trim(string(bytes.TrimSpace(data)), `"`))
	if err != nil {
		return err
	}
	*f = Flag(v)
	return nil
}

func (f *Flag) UnmarshalYAML(value *yaml.Node) error {
	v, err := parseFlag(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*f = Flag(v)
	return nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "null", "false", "no", "off":
		return false, nil
	case "true", "yes", "on":
		return true, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false, fmt.Errorf("invalid flag value %q", s)
	}
	return n != 0, nil
}

// Align is the horizontal alignment of a text line inside its box.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Normalize maps SVG-style aliases (start, middle, end) onto left, center and
// right. Unknown values center the text.
func (a Align) Normalize() Align {
	switch strings.ToLower(string(a)) {
	case "left", "start":
		return AlignLeft
	case "right", "end":
		return AlignRight
	default:
		return AlignCenter
	}
}

// LabelLine is one line of text inside a box. A line decoded from an empty
// object is a divider: it carries no text and draws a horizontal rule.
type LabelLine struct {
	Text    string `json:"text,omitempty" yaml:"text,omitempty"`
	Align   Align  `json:"align,omitempty" yaml:"align,omitempty"`
	Style   string `json:"style,omitempty" yaml:"style,omitempty"` // "bold" or "italic"
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`   // "title"
	Divider bool   `json:"-" yaml:"-"`
}

// IsTitle reports whether the line is a box title.
func (l LabelLine) IsTitle() bool { return l.Type == "title" }

type labelLineFields LabelLine

func (l *LabelLine) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = LabelLine{Divider: true}
		return nil
	}
	var f labelLineFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*l = LabelLine(f)
	return nil
}

func (l *LabelLine) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode && len(value.Content) == 0 {
		*l = LabelLine{Divider: true}
		return nil
	}
	var f labelLineFields
	if err := value.Decode(&f); err != nil {
		return err
	}
	*l = LabelLine(f)
	return nil
}

func (l LabelLine) MarshalJSON() ([]byte, error) {
	if l.Divider {
		return []byte("{}"), nil
	}
	return json.Marshal(labelLineFields(l))
}

// Box is a class rectangle. X and Y are the top-left corner.
type Box struct {
	ID        ID          `json:"id" yaml:"id"`
	X         float64     `json:"x" yaml:"x"`
	Y         float64     `json:"y" yaml:"y"`
	Width     float64     `json:"width" yaml:"width"`
	Height    float64     `json:"height" yaml:"height"`
	Color     string      `json:"color,omitempty" yaml:"color,omitempty"`
	TextLines []LabelLine `json:"textLines,omitempty" yaml:"textLines,omitempty"`

	// ObjectStyle is an Enterprise Architect object style string
	// ("BCol=16251645;AttPub=1;..."). See package eastyle.
	ObjectStyle string `json:"objectStyle,omitempty" yaml:"objectStyle,omitempty"`
}

// Rect returns the box outline for geometry calculations.
func (b Box) Rect() geom.Rect { return geom.Rect{X: b.X, Y: b.Y, W: b.Width, H: b.Height} }

// Center returns the midpoint of the box.
func (b Box) Center() geom.Point { return b.Rect().Center() }

// Link is a directed relationship between two boxes.
//
// Links carry either the two-label form (TextStart, TextEnd) or the
// four-label form (role on top, multiplicity on the bottom, at each end).
// XPos and YPos nudge a label away from its planned position.
type Link struct {
	Source ID     `json:"source" yaml:"source"`
	Target ID     `json:"target" yaml:"target"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty"`

	// Geometry is an Enterprise Architect link geometry string. Label
	// visibility and nudges found in it are applied by package eastyle.
	Geometry string `json:"geometry,omitempty" yaml:"geometry,omitempty"`

	TextStart       string `json:"textStart,omitempty" yaml:"textStart,omitempty"`
	TextStartHidden Flag   `json:"textStartHidden,omitempty" yaml:"textStartHidden,omitempty"`
	TextEnd         string `json:"textEnd,omitempty" yaml:"textEnd,omitempty"`
	TextEndHidden   Flag   `json:"textEndHidden,omitempty" yaml:"textEndHidden,omitempty"`

	TextStartTop       string  `json:"textStartTop,omitempty" yaml:"textStartTop,omitempty"`
	TextStartTopHidden Flag    `json:"textStartTopHidden,omitempty" yaml:"textStartTopHidden,omitempty"`
	TextStartTopXPos   float64 `json:"textStartTopXPos,omitempty" yaml:"textStartTopXPos,omitempty"`
	TextStartTopYPos   float64 `json:"textStartTopYPos,omitempty" yaml:"textStartTopYPos,omitempty"`

	TextStartBtm       string  `json:"textStartBtm,omitempty" yaml:"textStartBtm,omitempty"`
	TextStartBtmHidden Flag    `json:"textStartBtmHidden,omitempty" yaml:"textStartBtmHidden,omitempty"`
	TextStartBtmXPos   float64 `json:"textStartBtmXPos,omitempty" yaml:"textStartBtmXPos,omitempty"`
	TextStartBtmYPos   float64 `json:"textStartBtmYPos,omitempty" yaml:"textStartBtmYPos,omitempty"`

	TextEndTop       string  `json:"textEndTop,omitempty" yaml:"textEndTop,omitempty"`
	TextEndTopHidden Flag    `json:"textEndTopHidden,omitempty" yaml:"textEndTopHidden,omitempty"`
	TextEndTopXPos   float64 `json:"textEndTopXPos,omitempty" yaml:"textEndTopXPos,omitempty"`
	TextEndTopYPos   float64 `json:"textEndTopYPos,omitempty" yaml:"textEndTopYPos,omitempty"`

	TextEndBtm       string  `json:"textEndBtm,omitempty" yaml:"textEndBtm,omitempty"`
	TextEndBtmHidden Flag    `json:"textEndBtmHidden,omitempty" yaml:"textEndBtmHidden,omitempty"`
	TextEndBtmXPos   float64 `json:"textEndBtmXPos,omitempty" yaml:"textEndBtmXPos,omitempty"`
	TextEndBtmYPos   float64 `json:"textEndBtmYPos,omitempty" yaml:"textEndBtmYPos,omitempty"`
}

// IsGeneralization reports whether the link is drawn as inheritance.
func (l Link) IsGeneralization() bool {
	return strings.EqualFold(l.Type, LinkTypeGeneralization)
}

// Diagram is a complete document: boxes, links and the canvas size.
type Diagram struct {
	Nodes      []Box   `json:"nodes" yaml:"nodes"`
	Links      []Link  `json:"links" yaml:"links"`
	CX         float64 `json:"cx" yaml:"cx"`
	CY         float64 `json:"cy" yaml:"cy"`
	OutputPath string  `json:"outputPath,omitempty" yaml:"outputPath,omitempty"`
}

// Canvas returns the output size. A zero cx or cy falls back to the
// bounding box of all boxes.
func (d *Diagram) Canvas() (w, h float64) {
	w, h = d.CX, d.CY
	if w > 0 && h > 0 {
		return w, h
	}
	var maxX, maxY float64
	for _, b := range d.Nodes {
		maxX = max(maxX, b.X+b.Width)
		maxY = max(maxY, b.Y+b.Height)
	}
	if w <= 0 {
		w = maxX
	}
	if h <= 0 {
		h = maxY
	}
	return w, h
}
