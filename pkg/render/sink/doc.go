// Package sink writes a [scene.Scene] in the supported output formats.
//
// Every sink reads finished geometry; none of them computes crossings or
// label positions. The SVG sink is the reference output. The PNG sink can
// rasterize natively or convert the SVG through rsvg-convert, the PDF sink
// always converts the SVG. The DOT sink emits Graphviz source with pinned
// node positions and [RenderNodelink] lays that source out with the
// embedded Graphviz.
//
// [scene.Scene]: github.com/matzehuels/umlsvg/pkg/scene.Scene
package sink
