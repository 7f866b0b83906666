// Package label places the role and multiplicity annotations at the ends of
// relationship lines.
//
// Two policies are provided. [Plan] is driven by which border of the box the
// line crosses and supports four slots per link (role and multiplicity at
// each end). [PlanRotated] is the simpler two-slot policy that anchors the
// text on the crossing and rotates it when the line is steep.
package label

import (
	"fmt"

	"github.com/matzehuels/umlsvg/pkg/geom"
)

// Gap is the horizontal distance between a crossing and the text anchor.
const Gap = 5.0

// Slot selects which of the two labels at one end of a link is planned.
// The top slot usually carries the role name, the bottom slot the multiplicity.
type Slot int

const (
	SlotTop Slot = iota
	SlotBottom
)

func (s Slot) String() string {
	if s == SlotBottom {
		return "bottom"
	}
	return "top"
}

// Anchor mirrors the SVG text-anchor property.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Placement is the planned position of one label.
type Placement struct {
	X, Y     float64
	Anchor   Anchor
	DyEm     float64 // baseline shift in em: -1 above, 1 below, 0 none
	Rotation float64 // degrees, clockwise around (X, Y)
}

// Dy formats the baseline shift as an SVG length.
func (p Placement) Dy() string {
	if p.DyEm == 0 {
		return "0"
	}
	return fmt.Sprintf("%gem", p.DyEm)
}

// Plan positions a label next to a crossing on the given edge.
//
// Labels on a right edge start to the right of the crossing and labels on a
// left edge end to the left of it, so text always sits outside the box. On
// the top and bottom edges the two slots straddle the line: the top slot to
// the left, the bottom slot to the right. Vertically, top-edge labels sit
// above the crossing and bottom-edge labels below it; on the side edges the
// top slot goes above and the bottom slot below.
func Plan(edge geom.Edge, slot Slot, crossing geom.Point) Placement {
	return PlanWithGap(edge, slot, crossing, Gap)
}

// PlanWithGap is [Plan] with a custom horizontal gap.
func PlanWithGap(edge geom.Edge, slot Slot, crossing geom.Point, gap float64) Placement {
	p := Placement{X: crossing.X, Y: crossing.Y, Anchor: AnchorMiddle}

	switch edge {
	case geom.EdgeRight:
		p.X, p.Anchor = crossing.X+gap, AnchorStart
	case geom.EdgeLeft:
		p.X, p.Anchor = crossing.X-gap, AnchorEnd
	case geom.EdgeTop, geom.EdgeBottom:
		if slot == SlotTop {
			p.X, p.Anchor = crossing.X-gap, AnchorEnd
		} else {
			p.X, p.Anchor = crossing.X+gap, AnchorStart
		}
	default:
		return p
	}

	switch {
	case edge == geom.EdgeTop:
		p.DyEm = -1
	case edge == geom.EdgeBottom:
		p.DyEm = 1
	case slot == SlotTop:
		p.DyEm = -1
	default:
		p.DyEm = 1
	}
	return p
}

// PlanRotated anchors a label on the offset crossing of from toward to and
// turns it 90 degrees when the line between the boxes is steep.
func PlanRotated(from, to geom.Rect, offset float64) Placement {
	hit := geom.Intersect(from, to, offset)
	p := Placement{X: hit.X, Y: hit.Y, Anchor: AnchorMiddle}
	if !geom.IsNearHorizontal(from, to) {
		p.Rotation = 90
	}
	return p
}
