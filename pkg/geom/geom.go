package geom

import (
	"fmt"
	"math"
)

// DefaultOffset is the clearance, in pixels, between a box border and the
// start of a line or label when the caller has no preference.
const DefaultOffset = 5.0

// Point is a position in diagram coordinates (y grows downward).
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned box given by its top-left corner and size.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Right returns the x coordinate of the right border.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom border.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Contains reports whether p lies inside or on the border of r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Edge identifies one of the four borders of a box.
// The numeric values are stable and appear in JSON geometry exports.
type Edge int

const (
	EdgeNone   Edge = 0
	EdgeTop    Edge = 1
	EdgeRight  Edge = 2
	EdgeBottom Edge = 3
	EdgeLeft   Edge = 4
)

var edgeNames = map[Edge]string{
	EdgeNone:   "none",
	EdgeTop:    "top",
	EdgeRight:  "right",
	EdgeBottom: "bottom",
	EdgeLeft:   "left",
}

func (e Edge) String() string {
	if s, ok := edgeNames[e]; ok {
		return s
	}
	return fmt.Sprintf("edge(%d)", int(e))
}

// IsVertical reports whether the edge is the left or right border.
func (e Edge) IsVertical() bool { return e == EdgeLeft || e == EdgeRight }

// Intersection is where the center-to-center line leaves the source box.
type Intersection struct {
	Point
	Edge  Edge
	Found bool // false when no border crossing exists; Point is then the box center
}

type candidate struct {
	p    Point
	t    float64
	edge Edge
}

// Intersect returns the point where the ray from the center of source toward
// the center of target crosses the border of source, pushed outward by offset
// pixels along the center-to-crossing direction.
func Intersect(source, target Rect, offset float64) Intersection {
	c := source.Center()
	tc := target.Center()
	dx := tc.X - c.X
	dy := tc.Y - c.Y

	hit, ok := nearestCrossing(crossings(source, dx, dy))
	if !ok {
		return Intersection{Point: c, Edge: EdgeNone}
	}
	return Intersection{
		Point: Offset(c, hit.p, offset),
		Edge:  hit.edge,
		Found: true,
	}
}

// crossings solves the ray against all four border lines and keeps the
// crossings that fall on the finite segments.
// Division by a zero direction component yields ±Inf or NaN, which never
// passes the range checks below.
func crossings(r Rect, dx, dy float64) []candidate {
	c := r.Center()
	hw, hh := r.W/2, r.H/2

	tLeft := -hw / dx
	tRight := hw / dx
	tTop := -hh / dy
	tBottom := hh / dy

	yLeft := c.Y + tLeft*dy
	yRight := c.Y + tRight*dy
	xTop := c.X + tTop*dx
	xBottom := c.X + tBottom*dx

	inY := func(y float64) bool { return y >= c.Y-hh && y <= c.Y+hh }
	inX := func(x float64) bool { return x >= c.X-hw && x <= c.X+hw }

	// The fixed coordinate comes from the rect itself so a crossing lies
	// exactly on its border; c±hw can differ from it in the last bit.
	out := make([]candidate, 0, 4)
	if inY(yLeft) {
		out = append(out, candidate{Point{r.X, clamp(yLeft, r.Y, r.Bottom())}, tLeft, EdgeLeft})
	}
	if inY(yRight) {
		out = append(out, candidate{Point{r.Right(), clamp(yRight, r.Y, r.Bottom())}, tRight, EdgeRight})
	}
	if inX(xTop) {
		out = append(out, candidate{Point{clamp(xTop, r.X, r.Right()), r.Y}, tTop, EdgeTop})
	}
	if inX(xBottom) {
		out = append(out, candidate{Point{clamp(xBottom, r.X, r.Right()), r.Bottom()}, tBottom, EdgeBottom})
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Max(lo, math.Min(v, hi))
}

// nearestCrossing picks the smallest non-negative t, falling back to the
// smallest t of any sign.
func nearestCrossing(cands []candidate) (candidate, bool) {
	best, ok := candidate{t: math.Inf(1)}, false
	for _, cd := range cands {
		if cd.t >= 0 && cd.t < best.t {
			best, ok = cd, true
		}
	}
	if ok {
		return best, true
	}
	for _, cd := range cands {
		if cd.t < best.t {
			best, ok = cd, true
		}
	}
	return best, ok
}

// Offset moves p away from origin by dist along the origin→p direction.
// A zero-length direction leaves p unchanged.
func Offset(origin, p Point, dist float64) Point {
	dx := p.X - origin.X
	dy := p.Y - origin.Y
	l := math.Hypot(dx, dy)
	if l == 0 || dist == 0 {
		return p
	}
	return Point{X: p.X + dist*dx/l, Y: p.Y + dist*dy/l}
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// AngleDegrees returns the direction from the center of a to the center of b
// in degrees, in the half-open range (-180, 180].
func AngleDegrees(a, b Rect) float64 {
	ca, cb := a.Center(), b.Center()
	deg := math.Atan2(cb.Y-ca.Y, cb.X-ca.X) * 180 / math.Pi
	if deg <= -180 {
		deg += 360
	}
	return deg
}

// IsNearHorizontal reports whether the line between the centers of a and b
// lies within 45 degrees of the horizontal, in either direction. Both 45
// degree diagonals count as horizontal.
//
// Comparing the components directly keeps the diagonals exact; converting to
// degrees first can land a hair past 45.
func IsNearHorizontal(a, b Rect) bool {
	ca, cb := a.Center(), b.Center()
	return math.Abs(cb.Y-ca.Y) <= math.Abs(cb.X-ca.X)
}
