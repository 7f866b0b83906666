package label

import (
	"fmt"
	"strings"

	"github.com/matzehuels/umlsvg/pkg/diagram"
	"github.com/matzehuels/umlsvg/pkg/geom"
)

// Mode selects the placement policy used by [ForLink].
type Mode string

const (
	ModeEdge   Mode = "edge"
	ModeRotate Mode = "rotate"
)

// ParseMode accepts "edge" or "rotate" in any case. An empty string
// selects [ModeEdge].
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeEdge:
		return ModeEdge, nil
	case ModeRotate:
		return ModeRotate, nil
	}
	return "", fmt.Errorf("unknown label mode %q (must be 'edge' or 'rotate')", s)
}

// SlotID names a label position on a link.
type SlotID string

const (
	StartTop    SlotID = "start-top"
	StartBottom SlotID = "start-bottom"
	EndTop      SlotID = "end-top"
	EndBottom   SlotID = "end-bottom"
	Start       SlotID = "start"
	End         SlotID = "end"
)

// Label is a planned label with its resolved text. Text is empty when the
// label is hidden or absent; the slot is still reported.
type Label struct {
	Slot SlotID
	Text string
	Edge geom.Edge
	Placement
}

// Options configures [ForLink].
type Options struct {
	Mode   Mode
	Offset float64 // distance from the box border to the crossing used as anchor
	Gap    float64 // horizontal gap in edge mode; zero selects Gap
}

// ForLink plans every label slot of a link between source and target.
// Edge mode yields four labels in the order start-top, start-bottom,
// end-top, end-bottom; rotate mode yields start and end.
func ForLink(l diagram.Link, source, target geom.Rect, opts Options) []Label {
	if opts.Mode == ModeRotate {
		return []Label{
			{Slot: Start, Text: visible(l.TextStart, l.TextStartHidden), Placement: PlanRotated(source, target, opts.Offset)},
			{Slot: End, Text: visible(l.TextEnd, l.TextEndHidden), Placement: PlanRotated(target, source, opts.Offset)},
		}
	}

	gap := opts.Gap
	if gap <= 0 {
		gap = Gap
	}
	start := geom.Intersect(source, target, opts.Offset)
	end := geom.Intersect(target, source, opts.Offset)

	return []Label{
		edgeLabel(StartTop, start, SlotTop, gap,
			fallback(l.TextStartTop, l.TextStartTopHidden, l.TextStart, l.TextStartHidden),
			l.TextStartTopXPos, l.TextStartTopYPos),
		edgeLabel(StartBottom, start, SlotBottom, gap,
			visible(l.TextStartBtm, l.TextStartBtmHidden),
			l.TextStartBtmXPos, l.TextStartBtmYPos),
		edgeLabel(EndTop, end, SlotTop, gap,
			fallback(l.TextEndTop, l.TextEndTopHidden, l.TextEnd, l.TextEndHidden),
			l.TextEndTopXPos, l.TextEndTopYPos),
		edgeLabel(EndBottom, end, SlotBottom, gap,
			visible(l.TextEndBtm, l.TextEndBtmHidden),
			l.TextEndBtmXPos, l.TextEndBtmYPos),
	}
}

func edgeLabel(id SlotID, hit geom.Intersection, slot Slot, gap float64, text string, dx, dy float64) Label {
	p := PlanWithGap(hit.Edge, slot, hit.Point, gap)
	p.X += dx
	p.Y += dy
	return Label{Slot: id, Text: text, Edge: hit.Edge, Placement: p}
}

func visible(text string, hidden diagram.Flag) string {
	if hidden {
		return ""
	}
	return text
}

// fallback prefers the four-slot text and falls back to the two-slot form.
func fallback(text string, hidden diagram.Flag, alt string, altHidden diagram.Flag) string {
	if text != "" || hidden {
		return visible(text, hidden)
	}
	return visible(alt, altHidden)
}
