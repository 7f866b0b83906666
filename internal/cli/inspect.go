package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/umlsvg/pkg/config"
	"github.com/matzehuels/umlsvg/pkg/diagram"
	"github.com/matzehuels/umlsvg/pkg/geom"
	"github.com/matzehuels/umlsvg/pkg/pipeline"
	"github.com/matzehuels/umlsvg/pkg/scene"
)

func (c *CLI) inspectCommand() *cobra.Command {
	var (
		sf    styleFlags
		slots bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print the computed link geometry",
		Long: `Print where every link leaves its boxes and how its labels are placed.

The link table shows the border edge and crossing point at each end. With
--slots a second table lists every label slot with its anchor point, text
anchor, baseline shift and rotation. --labels selects the label mode as it
does for render.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if err := sf.apply(cmd.Flags(), &cfg); err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runInspect(ctx, args[0], cfg, sf, slots)
		},
	}

	sf.register(cmd.Flags())
	cmd.Flags().BoolVar(&slots, "slots", false, "also print every label slot")
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, cfg config.Config, sf styleFlags, showLabels bool) error {
	runner := pipeline.NewRunner(loggerFromContext(ctx))
	d, warnings, err := runner.Load(ctx, pipeline.Options{
		Input:      input,
		SkipSchema: sf.skipSchema,
		EAStyles:   cfg.EAStyles,
	})
	if err != nil {
		return err
	}
	for _, w := range warnings {
		printWarning("%s", w)
	}

	resolved, sc := runner.Layout(ctx, d, cfg.Style())
	writeInspection(c.stdout, resolved, sc, showLabels)
	return nil
}

func writeInspection(w io.Writer, r *diagram.Resolved, sc *scene.Scene, showLabels bool) {
	fmt.Fprintln(w, StyleTitle.Render("Links")+" "+
		StyleNumber.Render(strconv.Itoa(len(sc.Links)))+StyleDim.Render(" drawn, ")+
		StyleNumber.Render(strconv.Itoa(sc.Skipped))+StyleDim.Render(fmt.Sprintf(" skipped, %s labels", sc.Style.LabelMode)))
	fmt.Fprintln(w, renderTable(linkHeaders, linkRows(r, sc), nil))

	for _, d := range sc.Diagnostics {
		fmt.Fprintln(w, StyleWarning.Render(fmt.Sprintf("missing box %q in links %v", d.ID, d.Links)))
	}

	if showLabels {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleTitle.Render("Labels"))
		fmt.Fprintln(w, renderTable(labelHeaders, labelRows(sc), nil))
	}
}

var (
	linkHeaders  = []string{"#", "Link", "Type", "Source edge", "Source crossing", "Target edge", "Target crossing", "Labels"}
	labelHeaders = []string{"#", "Slot", "Edge", "Text", "X", "Y", "Anchor", "Dy", "Rotate"}
)

// linkRows returns one row per drawn link in scene order.
func linkRows(r *diagram.Resolved, sc *scene.Scene) [][]string {
	rows := make([][]string, 0, len(sc.Links))
	for _, l := range sc.Links {
		src, dst := r.Boxes[diagram.ID(l.Source)], r.Boxes[diagram.ID(l.Target)]
		if src == nil || dst == nil {
			continue
		}
		start := geom.Intersect(src.Rect(), dst.Rect(), 0)
		end := geom.Intersect(dst.Rect(), src.Rect(), 0)

		kind := "association"
		if l.Generalization {
			kind = "generalization"
		}
		visible := 0
		for _, lb := range l.Labels {
			if lb.Text != "" {
				visible++
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(l.Index),
			l.Source + " " + iconArrow + " " + l.Target,
			kind,
			l.SourceEdge.String(),
			crossing(start),
			l.TargetEdge.String(),
			crossing(end),
			fmt.Sprintf("%d/%d", visible, len(l.Labels)),
		})
	}
	return rows
}

func crossing(hit geom.Intersection) string {
	if !hit.Found {
		return "center"
	}
	return fmt.Sprintf("(%s, %s)", coord(hit.X), coord(hit.Y))
}

func coord(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) }

// labelRows returns one row per label slot.
func labelRows(sc *scene.Scene) [][]string {
	var rows [][]string
	for _, l := range sc.Links {
		for _, lb := range l.Labels {
			text := lb.Text
			if text == "" {
				text = "-"
			}
			rows = append(rows, []string{
				strconv.Itoa(l.Index),
				string(lb.Slot),
				lb.Edge.String(),
				text,
				coord(lb.X),
				coord(lb.Y),
				string(lb.Anchor),
				lb.Dy(),
				strconv.FormatFloat(lb.Rotation, 'f', -1, 64),
			})
		}
	}
	return rows
}

// renderTable draws rows in the CLI's table style. Rows for which
// highlight returns true are drawn in the accent color.
func renderTable(headers []string, rows [][]string, highlight func(row int) bool) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if highlight != nil && highlight(row) {
				return cell.Foreground(colorCyan).Bold(true)
			}
			if col == 0 {
				return cell.Foreground(colorDim)
			}
			return cell.Foreground(colorWhite)
		}).
		String()
}
