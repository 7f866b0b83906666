// Package pkg provides the libraries behind umlsvg, a renderer for UML class
// diagrams whose boxes are already placed.
//
// # Overview
//
// A diagram document lists boxes with fixed positions and the links between
// them. umlsvg does no layout of its own: it works out where each link leaves
// its boxes and where the role and multiplicity labels go, then draws the
// result.
//
// # Architecture
//
// The data flow:
//
//	JSON / YAML document
//	         ↓
//	    [diagram] package (decode, schema check, resolve link ends)
//	         ↓
//	    [eastyle] package (optional Enterprise Architect style strings)
//	         ↓
//	    [scene] package (box text layout, crossings, arrows, labels)
//	         ↓
//	    [render/sink] package (SVG, PNG, PDF, JSON, DOT)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/umlsvg/pkg/diagram"
//	    "github.com/matzehuels/umlsvg/pkg/render/sink"
//	    "github.com/matzehuels/umlsvg/pkg/scene"
//	)
//
//	d, _ := diagram.Load("class.json", diagram.DecodeOptions{})
//	sc := scene.Build(diagram.Resolve(d), scene.DefaultStyle())
//	svg := sink.RenderSVG(sc)
//
// # Main Packages
//
// ## Geometry
//
// [geom] - The intersection solver. [geom.Intersect] finds where the line
// between two box centers crosses the source box border, which edge it
// crosses and, with an offset, a point pulled back toward the source center.
//
// [label] - The label placement planner. [label.Plan] turns an edge and a
// crossing into a text anchor, baseline shift and rotation;
// [label.ForLink] plans every slot of one link.
//
// ## Documents
//
// [diagram] - Document types, JSON/YAML decoding, the embedded JSON schema,
// link resolution with dangling-id diagnostics and contract checks.
//
// [eastyle] - Enterprise Architect objectStyle and geometry strings: BGR
// colours, hidden labels and label nudges.
//
// ## Drawing
//
// [scene] - Pure geometry records for a whole diagram.
//
// [render/sink] - Output writers. Each sink reads a scene and never
// recomputes geometry.
//
// [render] - Output formats and SVG conversion through rsvg-convert.
//
// ## Infrastructure
//
// [pipeline] - load → layout → render, shared by every CLI command and the
// HTTP server. Also decides output paths.
//
// [config] - TOML config file, .env and UMLSVG_* environment overrides.
//
// [errors] - Coded errors with user messages and HTTP status mapping.
//
// [observability] - Hooks for load, layout, render and request events.
//
// [buildinfo] - Version information set at build time.
package pkg
