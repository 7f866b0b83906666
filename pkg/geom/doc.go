// Package geom computes where relationship lines meet the borders of boxes.
//
// # Overview
//
// A link between two boxes is drawn along the line joining their centers.
// [Intersect] finds where that line leaves the source box, which of the four
// borders it crosses, and pushes the point outward by a clearance offset so
// lines and labels do not touch the border:
//
//	a := geom.Rect{X: 0, Y: 0, W: 100, H: 50}
//	b := geom.Rect{X: 200, Y: 0, W: 100, H: 50}
//	hit := geom.Intersect(a, b, 0)
//	// hit.Point == {100, 25}, hit.Edge == geom.EdgeRight
//
// # Edge Selection
//
// Each border line is solved for the ray parameter t. Crossings outside the
// finite border segment are discarded, which also discards the ±Inf and NaN
// values produced when the direction is purely horizontal or vertical. The
// nearest non-negative crossing wins, checked in the order Left, Right, Top,
// Bottom; a later candidate must be strictly nearer to replace an earlier one,
// so a ray through a corner reports the vertical border.
//
// When no crossing is found (identical centers) the result is the source
// center with [EdgeNone] and Found set to false.
//
// # Purity
//
// Every function here is pure. Callers that move boxes between frames simply
// call again with the new rectangles.
package geom
