package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/umlsvg/pkg/diagram"
	"github.com/matzehuels/umlsvg/pkg/eastyle"
	errs "github.com/matzehuels/umlsvg/pkg/errors"
	"github.com/matzehuels/umlsvg/pkg/observability"
	"github.com/matzehuels/umlsvg/pkg/render"
	"github.com/matzehuels/umlsvg/pkg/render/sink"
	"github.com/matzehuels/umlsvg/pkg/scene"
)

// Runner executes pipeline stages and logs their progress.
//
// The Runner holds no per-run state; one Runner may serve concurrent
// requests with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = discardLogger()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete load → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{}

	loadStart := time.Now()
	d, warnings, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	result.Warnings = warnings
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Boxes = len(d.Nodes)

	r.Logger.Info("loaded diagram",
		"boxes", len(d.Nodes),
		"links", len(d.Links),
		"duration", result.Stats.LoadTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	layoutStart := time.Now()
	resolved, sc := r.Layout(ctx, d, opts.Style)
	result.Resolved = resolved
	result.Scene = sc
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Links = len(sc.Links)
	result.Stats.Labels = sc.LabelCount()
	result.Stats.Skipped = sc.Skipped

	r.Logger.Info("computed geometry",
		"links", len(sc.Links),
		"labels", sc.LabelCount(),
		"skipped", sc.Skipped,
		"duration", result.Stats.LayoutTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, err := r.Render(ctx, sc, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load decodes the diagram named by opts and applies style strings when
// opts.EAStyles is set. Style string problems are logged and returned as
// warnings; they never fail the load.
func (r *Runner) Load(ctx context.Context, opts Options) (*diagram.Diagram, []string, error) {
	src := opts.source()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, src)
	start := time.Now()

	decode := diagram.DecodeOptions{SkipSchema: opts.SkipSchema}
	var (
		d   *diagram.Diagram
		err error
	)
	if opts.Data != nil {
		d, err = diagram.Decode(opts.Data, opts.Syntax, decode)
	} else {
		d, err = diagram.Load(opts.Input, decode)
	}
	if err != nil {
		hooks.OnLoadComplete(ctx, src, 0, 0, time.Since(start), err)
		return nil, nil, err
	}

	var warnings []string
	if opts.EAStyles {
		for _, w := range eastyle.Apply(d) {
			msg := fmt.Sprintf("%s: %v", w.Where, w.Err)
			r.Logger.Warn("ignored style string", "where", w.Where, "err", w.Err)
			warnings = append(warnings, msg)
		}
	}

	hooks.OnLoadComplete(ctx, src, len(d.Nodes), len(d.Links), time.Since(start), nil)
	return d, warnings, nil
}

// Layout resolves link endpoints and builds the scene. Each missing id is
// logged once; links that reference one are left out of the scene.
func (r *Runner) Layout(ctx context.Context, d *diagram.Diagram, st scene.Style) (*diagram.Resolved, *scene.Scene) {
	start := time.Now()
	resolved := diagram.Resolve(d)
	for _, diag := range resolved.Diagnostics {
		r.Logger.Warn("missing box id", "id", string(diag.ID), "links", diag.Links)
	}
	observability.Pipeline().OnResolve(ctx, len(resolved.Diagnostics), resolved.Skipped)

	sc := scene.Build(resolved, st)
	observability.Pipeline().OnLayout(ctx, len(sc.Links), sc.LabelCount(), time.Since(start))
	return resolved, sc
}

// Render writes sc in every format of opts.Formats.
func (r *Runner) Render(ctx context.Context, sc *scene.Scene, opts Options) (map[render.Format][]byte, error) {
	if err := opts.SetRenderDefaults(); err != nil {
		return nil, err
	}
	names := make([]string, len(opts.Formats))
	for i, f := range opts.Formats {
		names[i] = string(f)
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, names)
	start := time.Now()

	artifacts, err := renderAll(ctx, sc, opts)
	hooks.OnRenderComplete(ctx, names, time.Since(start), err)
	return artifacts, err
}

func renderAll(ctx context.Context, sc *scene.Scene, opts Options) (map[render.Format][]byte, error) {
	set := sink.Settings{
		PNGScale:     opts.PNGScale,
		PNGConverter: opts.PNGConverter,
		JSON:         []sink.JSONOption{sink.WithJSONIndent(), sink.WithJSONDiagnostics()},
	}
	artifacts := make(map[render.Format][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		r, err := sink.For(format, set)
		if err != nil {
			return nil, err
		}
		data, err := r.Render(ctx, sc)
		if err != nil {
			if errs.GetCode(err) != "" {
				return nil, err
			}
			return nil, errs.Wrap(errs.ErrCodeRenderFailed, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
