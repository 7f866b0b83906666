// Package render holds the output formats of umlsvg and the SVG format
// conversion shared by the sinks.
//
// # Formats
//
// [Formats] lists every output format in the order the CLI documents them.
// [ParseFormat] normalises user input and rejects unknown names with an
// INVALID_FORMAT error.
//
// # Renderers
//
// A [Renderer] writes a finished scene in one format. Package sink has one
// implementation per format behind sink.For.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG document using the external
// rsvg-convert tool (from librsvg). The PNG sink in [sink] also has a
// native rasterizer that needs no external tool.
//
//	svg := sink.RenderSVG(sc)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [sink]: github.com/matzehuels/umlsvg/pkg/render/sink
package render
