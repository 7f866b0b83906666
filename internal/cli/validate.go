package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/umlsvg/pkg/diagram"
	errs "github.com/matzehuels/umlsvg/pkg/errors"
	"github.com/matzehuels/umlsvg/pkg/pipeline"
)

func (c *CLI) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check diagrams against the schema and the box/link contract",
		Long: `Check each diagram against the embedded JSON schema, then report
duplicate ids, non-positive box sizes, links to unknown boxes and links
whose boxes share a center. Rendering tolerates all of these; validate
makes them visible.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runValidate(ctx, args, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

func (c *CLI) runValidate(ctx context.Context, paths []string, strict bool) error {
	runner := pipeline.NewRunner(loggerFromContext(ctx))

	failed := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		d, warnings, err := runner.Load(ctx, pipeline.Options{Input: path, EAStyles: c.Config.EAStyles})
		if err != nil {
			printError("%s: %s", path, errs.UserMessage(err))
			failed++
			continue
		}

		problems := diagram.Check(d)
		bad := diagram.HasErrors(problems) || (strict && (len(problems) > 0 || len(warnings) > 0))
		if bad {
			printError("%s", path)
			failed++
		} else {
			printSuccess("%s", path)
		}
		for _, p := range problems {
			if p.Severity == diagram.SeverityError {
				printDetail("%s", p)
			} else {
				printWarning("%s", p)
			}
		}
		for _, w := range warnings {
			printWarning("style: %s", w)
		}
	}

	if failed > 0 {
		return errs.New(errs.ErrCodeInvalidDiagram, "%d of %d diagram(s) failed validation", failed, len(paths))
	}
	return nil
}

func (c *CLI) schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for diagram documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(c.stdout, string(diagram.Schema()))
			return err
		},
	}
}
