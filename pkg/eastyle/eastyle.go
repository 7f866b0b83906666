// Package eastyle decodes the style strings Sparx Enterprise Architect stores
// with diagram objects and links, and applies them to a diagram.
//
// Object styles are flat "key=value;" lists, with the occasional
// "outer=inner=value" entry. Link geometry strings have an optional
// "$"-separated tail holding per-label settings:
//
//	SX=0;SY=0;EX=0;EY=0;EDGE=2;$LLB=CX=25:CY=14:HDN=0:;LRT=CX=12:CY=-3:HDN=1:;
//
// LLT, LLB, LRT and LRB are the start-top, start-bottom, end-top and
// end-bottom labels; CX and CY nudge a label and HDN hides it.
//
// Colours are decimal BGR integers, -1 meaning "use the default".
package eastyle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/umlsvg/pkg/diagram"
)

// Default colours used by Enterprise Architect when a style stores -1.
const (
	DefaultBoxColor  = 16251645
	DefaultLineColor = 9204585
)

// Label keys in the geometry tail.
const (
	LabelStartTop    = "LLT"
	LabelStartBottom = "LLB"
	LabelEndTop      = "LRT"
	LabelEndBottom   = "LRB"
)

// LabelStyle is the decoded settings of one link label.
type LabelStyle struct {
	Hidden bool
	CX, CY int
}

// LinkStyle is a decoded link geometry string.
type LinkStyle struct {
	Attrs    map[string]string
	Geometry []string // the comma-separated path points, if present
	Labels   map[string]map[string]int
}

// Label returns the settings stored for key, or the zero value.
func (s LinkStyle) Label(key string) LabelStyle {
	m := s.Labels[key]
	return LabelStyle{Hidden: m["HDN"] != 0, CX: m["CX"], CY: m["CY"]}
}

// ParseLinkStyle decodes a link geometry string.
func ParseLinkStyle(s string) (LinkStyle, error) {
	ls := LinkStyle{Attrs: map[string]string{}, Labels: map[string]map[string]int{}}

	head, tail, _ := strings.Cut(s, "$")
	if strings.Contains(tail, "$") {
		return ls, fmt.Errorf("link style %q: more than one '$'", s)
	}

	for _, item := range strings.Split(head, ";") {
		switch {
		case item == "":
		case strings.Contains(item, ","):
			for _, p := range strings.Split(item, ",") {
				if p != "" {
					ls.Geometry = append(ls.Geometry, p)
				}
			}
		default:
			key, value, ok := strings.Cut(item, "=")
			if !ok {
				return ls, fmt.Errorf("link style %q: item %q has no '='", s, item)
			}
			ls.Attrs[key] = value
		}
	}

	for _, item := range strings.Split(tail, ";") {
		if item == "" {
			continue
		}
		outer, values, ok := strings.Cut(item, "=")
		if !ok {
			return ls, fmt.Errorf("link style %q: item %q has no '='", s, item)
		}
		inner := map[string]int{}
		for _, kv := range strings.Split(values, ":") {
			if kv == "" {
				continue
			}
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return ls, fmt.Errorf("link style %q: label setting %q has no '='", s, kv)
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return ls, fmt.Errorf("link style %q: label setting %q: %w", s, kv, err)
			}
			inner[k] = n
		}
		ls.Labels[outer] = inner
	}
	return ls, nil
}

// ObjectStyle is a decoded object style string.
type ObjectStyle struct {
	Attrs  map[string]string
	Nested map[string]map[string]string
}

// ParseObjectStyle decodes an object style string.
func ParseObjectStyle(s string) (ObjectStyle, error) {
	st := ObjectStyle{Attrs: map[string]string{}, Nested: map[string]map[string]string{}}
	for _, item := range strings.Split(s, ";") {
		if item == "" {
			continue
		}
		parts := strings.Split(item, "=")
		switch len(parts) {
		case 2:
			st.Attrs[parts[0]] = parts[1]
		case 3:
			st.Nested[parts[0]] = map[string]string{parts[1]: parts[2]}
		default:
			return st, fmt.Errorf("object style %q: malformed item %q", s, item)
		}
	}
	return st, nil
}

// Int returns the integer value of key, or def when absent or unparsable.
func (s ObjectStyle) Int(key string, def int) int {
	v, ok := s.Attrs[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// BoxColor returns the fill colour stored under BCol.
func (s ObjectStyle) BoxColor() string {
	return ColorHex(s.Int("BCol", DefaultBoxColor), DefaultBoxColor)
}

// ColorHex converts a decimal BGR colour to "#rrggbb". Negative values
// select def.
func ColorHex(bgr, def int) string {
	if bgr < 0 {
		bgr = def
	}
	r := bgr & 0xff
	g := (bgr >> 8) & 0xff
	b := (bgr >> 16) & 0xff
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Warning describes a style string that could not be applied.
type Warning struct {
	Where string
	Err   error
}

// Apply copies colours, label visibility and label nudges from the style
// strings in d onto the corresponding fields. Explicit colours in the
// document take precedence. Unparsable strings are skipped and returned.
// Nudges are added to the document's own, so Apply must run once per load.
func Apply(d *diagram.Diagram) []Warning {
	var warns []Warning

	for i := range d.Nodes {
		b := &d.Nodes[i]
		if b.ObjectStyle == "" {
			continue
		}
		st, err := ParseObjectStyle(b.ObjectStyle)
		if err != nil {
			warns = append(warns, Warning{Where: fmt.Sprintf("nodes[%d]", i), Err: err})
			continue
		}
		if b.Color == "" {
			b.Color = st.BoxColor()
		}
	}

	for i := range d.Links {
		l := &d.Links[i]
		if l.Geometry == "" {
			continue
		}
		st, err := ParseLinkStyle(l.Geometry)
		if err != nil {
			warns = append(warns, Warning{Where: fmt.Sprintf("links[%d]", i), Err: err})
			continue
		}
		applyLabel(st, LabelStartTop, &l.TextStartTopHidden, &l.TextStartTopXPos, &l.TextStartTopYPos)
		applyLabel(st, LabelStartBottom, &l.TextStartBtmHidden, &l.TextStartBtmXPos, &l.TextStartBtmYPos)
		applyLabel(st, LabelEndTop, &l.TextEndTopHidden, &l.TextEndTopXPos, &l.TextEndTopYPos)
		applyLabel(st, LabelEndBottom, &l.TextEndBtmHidden, &l.TextEndBtmXPos, &l.TextEndBtmYPos)
	}
	return warns
}

func applyLabel(st LinkStyle, key string, hidden *diagram.Flag, x, y *float64) {
	if _, ok := st.Labels[key]; !ok {
		return
	}
	ls := st.Label(key)
	if ls.Hidden {
		*hidden = true
	}
	*x += float64(ls.CX)
	*y += float64(ls.CY)
}
