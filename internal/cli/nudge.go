package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/umlsvg/pkg/config"
	"github.com/matzehuels/umlsvg/pkg/diagram"
	errs "github.com/matzehuels/umlsvg/pkg/errors"
	"github.com/matzehuels/umlsvg/pkg/label"
	"github.com/matzehuels/umlsvg/pkg/pipeline"
	"github.com/matzehuels/umlsvg/pkg/render/sink"
	"github.com/matzehuels/umlsvg/pkg/scene"
)

var nudgeSteps = []float64{1, 5, 10, 25, 50}

func (c *CLI) nudgeCommand() *cobra.Command {
	var (
		sf      styleFlags
		output  string
		saveDoc string
	)

	cmd := &cobra.Command{
		Use:   "nudge [file]",
		Short: "Move boxes interactively and watch the link geometry follow",
		Long: `Open a terminal view of the diagram's links. Select a box, move it with
the arrow keys and the crossing edges and labels are recomputed after
every step.

Keys: tab/shift+tab select box, arrows or hjkl move, +/- step size,
m toggle label mode, w write SVG, s save document, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if err := sf.apply(cmd.Flags(), &cfg); err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runNudge(ctx, args[0], cfg, sf, output, saveDoc)
		},
	}

	sf.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "SVG written by 'w' (default: input name with .svg)")
	cmd.Flags().StringVar(&saveDoc, "save", "", "document written by 's' (default: overwrite the input)")
	return cmd
}

func (c *CLI) runNudge(ctx context.Context, input string, cfg config.Config, sf styleFlags, output, saveDoc string) error {
	if input == "-" {
		return errs.New(errs.ErrCodeInvalidInput, "nudge needs a file; standard input cannot be saved back")
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}
	if saveDoc == "" {
		saveDoc = input
	}

	runner := pipeline.NewRunner(loggerFromContext(ctx))
	d, _, err := runner.Load(ctx, pipeline.Options{Input: input, SkipSchema: sf.skipSchema, EAStyles: cfg.EAStyles})
	if err != nil {
		return err
	}
	if len(d.Nodes) == 0 {
		return errs.New(errs.ErrCodeInvalidDiagram, "%s has no boxes to move", input)
	}
	resolved, sc := runner.Layout(ctx, d, cfg.Style())

	m := newNudgeModel(resolved, sc, output, saveDoc)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}

	fm := final.(nudgeModel)
	if fm.dirty {
		printWarning("Quit with unsaved moves")
	}
	for _, path := range fm.written {
		printFile(path)
	}
	return nil
}

// nudgeModel is the bubbletea model for interactive box moves. Moves go
// through the resolved diagram's box pointers; the scene is rebuilt after
// each one.
type nudgeModel struct {
	resolved *diagram.Resolved
	scene    *scene.Scene
	style    scene.Style
	ids      []diagram.ID

	cursor  int
	step    int // index into nudgeSteps
	output  string
	saveDoc string

	dirty   bool // document moved since the last save
	status  string
	written []string
}

func newNudgeModel(r *diagram.Resolved, sc *scene.Scene, output, saveDoc string) nudgeModel {
	var ids []diagram.ID
	seen := make(map[diagram.ID]bool)
	for _, b := range r.Diagram.Nodes {
		if !seen[b.ID] {
			seen[b.ID] = true
			ids = append(ids, b.ID)
		}
	}
	return nudgeModel{
		resolved: r,
		scene:    sc,
		style:    sc.Style,
		ids:      ids,
		step:     2,
		output:   output,
		saveDoc:  saveDoc,
	}
}

func (m nudgeModel) Init() tea.Cmd {
	return nil
}

func (m nudgeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	d := nudgeSteps[m.step]
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		m.cursor = (m.cursor + 1) % len(m.ids)
	case "shift+tab":
		m.cursor = (m.cursor + len(m.ids) - 1) % len(m.ids)
	case "up", "k":
		m.move(0, -d)
	case "down", "j":
		m.move(0, d)
	case "left", "h":
		m.move(-d, 0)
	case "right", "l":
		m.move(d, 0)
	case "+", "=":
		m.step = min(m.step+1, len(nudgeSteps)-1)
	case "-":
		m.step = max(m.step-1, 0)
	case "m":
		if m.style.LabelMode == label.ModeRotate {
			m.style.LabelMode = label.ModeEdge
		} else {
			m.style.LabelMode = label.ModeRotate
		}
		m.rebuild()
	case "w":
		m.save(m.output, sink.RenderSVG(m.scene), "SVG")
	case "s":
		var buf bytes.Buffer
		if err := diagram.Encode(&buf, m.resolved.Diagram, diagram.SyntaxFor(m.saveDoc)); err != nil {
			m.status = errs.UserMessage(err)
			return m, nil
		}
		if m.save(m.saveDoc, buf.Bytes(), "document") {
			m.dirty = false
		}
	}
	return m, nil
}

func (m *nudgeModel) selected() *diagram.Box {
	return m.resolved.Boxes[m.ids[m.cursor]]
}

func (m *nudgeModel) move(dx, dy float64) {
	b := m.selected()
	b.X += dx
	b.Y += dy
	m.dirty = true
	m.rebuild()
}

func (m *nudgeModel) rebuild() {
	m.scene = scene.Build(m.resolved, m.style)
	m.status = ""
}

func (m *nudgeModel) save(path string, data []byte, what string) bool {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		m.status = fmt.Sprintf("%s %s", iconError, err)
		return false
	}
	m.status = fmt.Sprintf("%s wrote %s %s", iconSuccess, what, path)
	if !slices.Contains(m.written, path) {
		m.written = append(m.written, path)
	}
	return true
}

func (m nudgeModel) View() string {
	var b strings.Builder

	sel := m.selected()
	b.WriteString(StyleTitle.Render("Nudge"))
	b.WriteString(" ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%s labels · step %g", m.style.LabelMode, nudgeSteps[m.step])))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Foreground(colorGray).Render("Box "))
	b.WriteString(StyleHighlight.Render(string(sel.ID)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  at (%s, %s)  %d/%d", coord(sel.X), coord(sel.Y), m.cursor+1, len(m.ids))))
	b.WriteString("\n")

	id := string(sel.ID)
	b.WriteString(renderTable(linkHeaders, linkRows(m.resolved, m.scene), func(row int) bool {
		if row < 0 || row >= len(m.scene.Links) {
			return false
		}
		l := m.scene.Links[row]
		return l.Source == id || l.Target == id
	}))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render("tab: select  arrows/hjkl: move  +/-: step  m: label mode  w: write svg  s: save  q: quit"))
	b.WriteString("\n")
	return b.String()
}
