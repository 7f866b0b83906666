// Package pipeline runs the load → resolve → layout → render chain shared by
// the CLI, the HTTP service and the nudge TUI.
//
// # Stages
//
//  1. Load: decode a JSON or YAML diagram, validate it against the embedded
//     schema and optionally apply Enterprise Architect style strings
//  2. Layout: resolve link endpoints (dangling ids are logged and dropped)
//     and build the scene geometry
//  3. Render: write the scene in each requested format
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "classes.json",
//	    Formats: []render.Format{render.FormatSVG},
//	})
//	svg := result.Artifacts[render.FormatSVG]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/umlsvg/pkg/diagram"
	errs "github.com/matzehuels/umlsvg/pkg/errors"
	"github.com/matzehuels/umlsvg/pkg/render"
	"github.com/matzehuels/umlsvg/pkg/scene"
)

// DefaultPNGScale is the PNG resolution multiplier.
const DefaultPNGScale = 2.0

// Options contains all configuration for one pipeline run.
type Options struct {
	// Input is a file path or "-" for stdin. Ignored when Data is set.
	Input string
	// Data is an in-memory document; Syntax says how to decode it.
	Data   []byte
	Syntax diagram.Syntax

	SkipSchema bool
	EAStyles   bool // apply objectStyle / geometry strings

	Formats      []render.Format
	Style        scene.Style // zero value selects scene.DefaultStyle
	PNGScale     float64
	PNGConverter bool // rasterize PNG with rsvg-convert

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Diagram   *diagram.Diagram
	Resolved  *diagram.Resolved
	Scene     *scene.Scene
	Artifacts map[render.Format][]byte

	// Warnings are non-fatal problems found in style strings.
	Warnings []string

	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Boxes      int
	Links      int
	Labels     int
	Skipped    int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Data == nil && o.Input == "" {
		return errs.New(errs.ErrCodeInvalidInput, "input path or data is required")
	}
	if o.Data != nil && o.Syntax == "" {
		o.Syntax = diagram.SyntaxJSON
	}
	if err := o.SetRenderDefaults(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetRenderDefaults validates the render settings and fills in defaults.
// It does not require an input, so it suits callers that already hold a
// scene.
func (o *Options) SetRenderDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []render.Format{render.FormatSVG}
	}
	for _, f := range o.Formats {
		if !render.ValidFormats[f] {
			return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, dot, nodelink)", f)
		}
	}
	if o.Style == (scene.Style{}) {
		o.Style = scene.DefaultStyle()
	}
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	return nil
}

// source names the input for logs and hooks.
func (o *Options) source() string {
	if o.Data != nil {
		return "<data>"
	}
	if o.Input == "-" {
		return "<stdin>"
	}
	return o.Input
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
