package geom

import (
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) <= eps }

func TestIntersectScenarios(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 100, H: 50}

	tests := []struct {
		name   string
		target Rect
		want   Point
		edge   Edge
	}{
		{"horizontal right", Rect{X: 200, Y: 0, W: 100, H: 50}, Point{100, 25}, EdgeRight},
		{"vertical below", Rect{X: 0, Y: 200, W: 100, H: 50}, Point{50, 50}, EdgeBottom},
		{"horizontal left", Rect{X: -300, Y: 0, W: 100, H: 50}, Point{0, 25}, EdgeLeft},
		{"vertical above", Rect{X: 0, Y: -300, W: 100, H: 50}, Point{50, 0}, EdgeTop},
		{"shallow diagonal", Rect{X: 300, Y: 75, W: 100, H: 50}, Point{100, 37.5}, EdgeRight},
		{"steep diagonal", Rect{X: 40, Y: 200, W: 100, H: 50}, Point{55, 50}, EdgeBottom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Intersect(a, tt.target, 0)
			if !got.Found {
				t.Fatalf("Intersect() Found = false")
			}
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
				t.Errorf("Intersect() = (%v, %v), want (%v, %v)", got.X, got.Y, tt.want.X, tt.want.Y)
			}
			if got.Edge != tt.edge {
				t.Errorf("Intersect() edge = %v, want %v", got.Edge, tt.edge)
			}
		})
	}
}

func TestIntersectCornerPrefersVerticalBorder(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 100, H: 100}
	b := Rect{X: 200, Y: 200, W: 100, H: 100}

	got := Intersect(a, b, 0)
	if got.Edge != EdgeRight {
		t.Errorf("edge = %v, want %v", got.Edge, EdgeRight)
	}
	if !near(got.X, 100) || !near(got.Y, 100) {
		t.Errorf("point = (%v, %v), want (100, 100)", got.X, got.Y)
	}
}

func TestIntersectPointLiesOnBorder(t *testing.T) {
	box := Rect{X: 10, Y: 20, W: 80, H: 40}
	targets := []Point{
		{200, 40}, {-100, 40}, {50, 300}, {50, -300},
		{300, 300}, {-90, -50}, {91, 61}, {9, 19},
		{500, 21}, {11, 900}, {-1000, 59}, {89.5, -3},
	}

	for _, p := range targets {
		got := Intersect(box, Rect{X: p.X, Y: p.Y}, 0)
		if !got.Found {
			t.Fatalf("target %v: no crossing", p)
		}
		onBorder := (near(got.X, box.X) || near(got.X, box.Right())) && got.Y >= box.Y-eps && got.Y <= box.Bottom()+eps ||
			(near(got.Y, box.Y) || near(got.Y, box.Bottom())) && got.X >= box.X-eps && got.X <= box.Right()+eps
		if !onBorder {
			t.Errorf("target %v: point (%v, %v) not on border", p, got.X, got.Y)
		}

		switch got.Edge {
		case EdgeRight:
			if !near(got.X, box.Right()) {
				t.Errorf("target %v: edge right but x = %v", p, got.X)
			}
		case EdgeLeft:
			if !near(got.X, box.X) {
				t.Errorf("target %v: edge left but x = %v", p, got.X)
			}
		case EdgeTop:
			if !near(got.Y, box.Y) {
				t.Errorf("target %v: edge top but y = %v", p, got.Y)
			}
		case EdgeBottom:
			if !near(got.Y, box.Bottom()) {
				t.Errorf("target %v: edge bottom but y = %v", p, got.Y)
			}
		default:
			t.Errorf("target %v: unexpected edge %v", p, got.Edge)
		}
	}
}

func TestIntersectExactBorder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	coord := func() float64 { return (rng.Float64() - 0.5) * 2000 }

	for i := 0; i < 20000; i++ {
		box := Rect{X: coord(), Y: coord(), W: 0.1 + rng.Float64()*300, H: 0.1 + rng.Float64()*300}
		var p Point
		for {
			p = Point{coord(), coord()}
			if !box.Contains(p) {
				break
			}
		}

		got := Intersect(box, Rect{X: p.X, Y: p.Y}, 0)
		if !got.Found {
			t.Fatalf("box %+v, target %v: no crossing", box, p)
		}

		var fixed, want, free, lo, hi float64
		switch got.Edge {
		case EdgeLeft:
			fixed, want, free, lo, hi = got.X, box.X, got.Y, box.Y, box.Bottom()
		case EdgeRight:
			fixed, want, free, lo, hi = got.X, box.Right(), got.Y, box.Y, box.Bottom()
		case EdgeTop:
			fixed, want, free, lo, hi = got.Y, box.Y, got.X, box.X, box.Right()
		case EdgeBottom:
			fixed, want, free, lo, hi = got.Y, box.Bottom(), got.X, box.X, box.Right()
		default:
			t.Fatalf("box %+v, target %v: edge %v", box, p, got.Edge)
		}
		if fixed != want {
			t.Fatalf("box %+v, target %v: %v border at %v, want exactly %v", box, p, got.Edge, fixed, want)
		}
		if free < lo || free > hi {
			t.Fatalf("box %+v, target %v: crossing %v outside segment [%v, %v]", box, p, free, lo, hi)
		}
	}
}

func TestIntersectOffsetMonotonic(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 120, H: 60}
	targets := []Rect{
		{X: 300, Y: 10, W: 50, H: 50},
		{X: -40, Y: 400, W: 50, H: 50},
		{X: 200, Y: 200, W: 10, H: 10},
		{X: 0, Y: -500, W: 120, H: 60},
	}

	for _, b := range targets {
		prev := -1.0
		for _, k := range []float64{0, 0.5, 1, 5, 10, 50} {
			d := Distance(a.Center(), Intersect(a, b, k).Point)
			if d <= prev {
				t.Errorf("target %v: distance at offset %v = %v, not greater than %v", b, k, d, prev)
			}
			prev = d
		}
	}
}

func TestIntersectOffsetAlongDirection(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 100, H: 50}
	b := Rect{X: 200, Y: 0, W: 100, H: 50}

	got := Intersect(a, b, DefaultOffset)
	if !near(got.X, 105) || !near(got.Y, 25) {
		t.Errorf("Intersect(offset=%v) = (%v, %v), want (105, 25)", DefaultOffset, got.X, got.Y)
	}
}

func TestIntersectSymmetry(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 100, H: 50}
	b := Rect{X: 260, Y: 40, W: 80, H: 80}

	ab := Intersect(a, b, 0)
	ba := Intersect(b, a, 0)

	if !a.Contains(ab.Point) {
		t.Errorf("Intersect(a, b) = %v, not on a", ab.Point)
	}
	if !b.Contains(ba.Point) {
		t.Errorf("Intersect(b, a) = %v, not on b", ba.Point)
	}
	if a.Contains(ba.Point) || b.Contains(ab.Point) {
		t.Error("crossings landed on the wrong box")
	}

	// Both crossings lie on the segment between the centers.
	ca, cb := a.Center(), b.Center()
	total := Distance(ca, cb)
	if !near(Distance(ca, ab.Point)+Distance(ab.Point, ba.Point)+Distance(ba.Point, cb), total) {
		t.Error("crossings are not collinear with the centers")
	}
	if ab.Edge != EdgeRight || ba.Edge != EdgeLeft {
		t.Errorf("edges = %v, %v, want right, left", ab.Edge, ba.Edge)
	}
}

func TestIntersectIdenticalCenters(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 100, H: 50}
	b := Rect{X: 25, Y: 5, W: 50, H: 40}

	got := Intersect(a, b, 10)
	if got.Found {
		t.Error("Found = true for identical centers")
	}
	if got.Edge != EdgeNone {
		t.Errorf("edge = %v, want none", got.Edge)
	}
	if math.IsNaN(got.X) || math.IsNaN(got.Y) {
		t.Fatalf("point is NaN: %v", got.Point)
	}
	if got.Point != a.Center() {
		t.Errorf("point = %v, want center %v", got.Point, a.Center())
	}
}

// Negative or zero sizes violate the caller contract. The result is
// unspecified but must not panic or produce NaN for distinct centers.
func TestIntersectMalformedBoxDoesNotPanic(t *testing.T) {
	boxes := []Rect{
		{X: 0, Y: 0, W: -100, H: 50},
		{X: 0, Y: 0, W: 0, H: 0},
		{X: 0, Y: 0, W: 100, H: -20},
	}
	for _, b := range boxes {
		got := Intersect(b, Rect{X: 300, Y: 120, W: 10, H: 10}, 5)
		if math.IsNaN(got.X) || math.IsNaN(got.Y) {
			t.Errorf("Intersect(%v) produced NaN", b)
		}
	}
}

func TestOffsetZeroLength(t *testing.T) {
	p := Point{3, 4}
	if got := Offset(p, p, 10); got != p {
		t.Errorf("Offset() = %v, want %v", got, p)
	}
}

func TestAngleDegrees(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	tests := []struct {
		name string
		b    Rect
		want float64
	}{
		{"east", Rect{X: 100, Y: 0, W: 10, H: 10}, 0},
		{"south", Rect{X: 0, Y: 100, W: 10, H: 10}, 90},
		{"north", Rect{X: 0, Y: -100, W: 10, H: 10}, -90},
		{"west", Rect{X: -100, Y: 0, W: 10, H: 10}, 180},
		{"south east", Rect{X: 100, Y: 100, W: 10, H: 10}, 45},
		{"north west", Rect{X: -100, Y: -100, W: 10, H: 10}, -135},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngleDegrees(a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("AngleDegrees() = %v, want %v", got, tt.want)
			}
			if got <= -180 || got > 180 {
				t.Errorf("AngleDegrees() = %v out of (-180, 180]", got)
			}
		})
	}
}

func TestIsNearHorizontal(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	tests := []struct {
		name string
		dx   float64
		dy   float64
		want bool
	}{
		{"0 degrees", 100, 0, true},
		{"45 degrees", 100, 100, true},
		{"-45 degrees", 100, -100, true},
		{"180 degrees", -100, 0, true},
		{"135 degrees", -100, 100, true},
		{"-135 degrees", -100, -100, true},
		{"90 degrees", 0, 100, false},
		{"-90 degrees", 0, -100, false},
		{"60 degrees", 50, 100, false},
		{"30 degrees", 100, 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Rect{X: tt.dx, Y: tt.dy, W: 10, H: 10}
			if got := IsNearHorizontal(a, b); got != tt.want {
				t.Errorf("IsNearHorizontal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEdgeString(t *testing.T) {
	tests := map[Edge]string{
		EdgeNone: "none", EdgeTop: "top", EdgeRight: "right",
		EdgeBottom: "bottom", EdgeLeft: "left", Edge(9): "edge(9)",
	}
	for e, want := range tests {
		if got := e.String(); got != want {
			t.Errorf("Edge(%d).String() = %q, want %q", int(e), got, want)
		}
	}
}
