package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/umlsvg/pkg/config"
	errs "github.com/matzehuels/umlsvg/pkg/errors"
	"github.com/matzehuels/umlsvg/pkg/pipeline"
	"github.com/matzehuels/umlsvg/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	style        styleFlags
	output       string  // output file, or base path for several formats; "-" for stdout
	formats      string  // comma-separated formats
	pngScale     float64 // PNG pixels per canvas unit
	pngConverter bool    // rasterize PNG with rsvg-convert
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a diagram to SVG, PNG, PDF, JSON or DOT",
		Long: `Render a diagram document.

The input is a JSON or YAML file (chosen by extension) or "-" for JSON on
standard input. Output goes to --output, else to the document's outputPath,
else to standard output. With several formats the output path is a base
name and each format adds its own extension.`,
		Example: `  umlsvg render class.json -o class.svg
  umlsvg render class.yaml -f svg,png -o out/class
  cat class.json | umlsvg render - --labels rotate > class.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if err := opts.apply(cmd, &cfg); err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runRender(ctx, args[0], cfg, opts)
		},
	}

	def := config.Default()
	opts.style.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or base path (\"-\" for stdout)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): "+strings.Join(render.FormatNames(), ", ")+" (comma-separated, default svg)")
	cmd.Flags().Float64Var(&opts.pngScale, "png-scale", def.PNGScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.pngConverter, "png-converter", false, "rasterize PNG with rsvg-convert instead of the built-in rasterizer")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return render.FormatNames(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("labels", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"edge", "rotate"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (o *renderOpts) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("png-scale") {
		cfg.PNGScale = o.pngScale
	}
	if o.pngConverter {
		cfg.PNGConverter = true
	}
	return o.style.apply(flags, cfg)
}

func (c *CLI) runRender(ctx context.Context, input string, cfg config.Config, opts renderOpts) error {
	formats, err := parseFormats(opts.formats)
	if err != nil {
		return err
	}

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	runner := pipeline.NewRunner(logger)

	sp := newSpinner(ctx, c.stderr, "Rendering "+input+"...")
	sp.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Input:        input,
		SkipSchema:   opts.style.skipSchema,
		EAStyles:     cfg.EAStyles,
		Formats:      formats,
		Style:        cfg.Style(),
		PNGScale:     cfg.PNGScale,
		PNGConverter: cfg.PNGConverter,
	})
	if err != nil {
		sp.StopWithError(errs.UserMessage(err))
		return err
	}
	sp.Stop()

	for _, w := range result.Warnings {
		printWarning("%s", w)
	}
	for _, d := range result.Resolved.Diagnostics {
		printWarning("box %q does not exist; skipped %d link(s)", d.ID, len(d.Links))
	}

	paths, err := pipeline.OutputPaths(opts.output, result.Diagram.OutputPath, formats)
	if err != nil {
		return err
	}
	written, err := pipeline.WriteArtifacts(c.stdout, result.Artifacts, paths, formats)
	if err != nil {
		return err
	}

	s := result.Stats
	prog.done(fmt.Sprintf("Rendered %d boxes, %d links", s.Boxes, s.Links))
	if len(written) > 0 {
		printSuccess("Rendered %s", input)
		printStats(s.Boxes, s.Links, s.Labels, s.Skipped)
		for _, path := range written {
			printFile(path)
		}
		printNextStep("Inspect the geometry", "umlsvg inspect "+input+" --labels")
	}
	return nil
}
