package cli

import (
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/umlsvg/pkg/buildinfo"
	"github.com/matzehuels/umlsvg/pkg/config"
	"github.com/matzehuels/umlsvg/pkg/observability"
	"github.com/matzehuels/umlsvg/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "umlsvg"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded by the root command before any subcommand runs.
	Config     config.Config
	configPath string

	stdout io.Writer // artifacts
	stderr io.Writer // status lines, spinner
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		stdout: os.Stdout,
		stderr: w,
	}
}

// SetLogLevel updates the logger's level. At debug level pipeline and
// server events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= LogDebug {
		h := &logHooks{logger: c.Logger}
		observability.SetPipelineHooks(h)
		observability.SetServerHooks(h)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "umlsvg renders UML class diagrams to SVG",
		Long: `umlsvg renders UML class diagrams from JSON or YAML documents.

Boxes are placed where the document says; umlsvg computes where each link
crosses its box borders and where the role and multiplicity labels go, then
writes SVG, PNG, PDF, a JSON geometry export or Graphviz DOT.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.schemaCommand())
	root.AddCommand(c.nudgeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Style Flags
// =============================================================================

// styleFlags are the geometry settings shared by render, inspect and nudge.
// Flags override the loaded config only when set on the command line.
type styleFlags struct {
	labels      string
	labelOffset float64
	arrowOffset float64
	labelGap    float64
	noEAStyles  bool
	skipSchema  bool
}

func (s *styleFlags) register(flags *pflag.FlagSet) {
	def := config.Default()
	flags.StringVar(&s.labels, "labels", def.Labels, "label placement: edge or rotate")
	flags.Float64Var(&s.labelOffset, "label-offset", def.LabelOffset, "distance of label anchors from the box border")
	flags.Float64Var(&s.arrowOffset, "arrow-offset", def.ArrowOffset, "distance of generalization arrowheads from the box border")
	flags.Float64Var(&s.labelGap, "label-gap", def.LabelGap, "horizontal gap between a crossing and its labels")
	flags.BoolVar(&s.noEAStyles, "no-ea-styles", false, "ignore objectStyle and geometry strings")
	flags.BoolVar(&s.skipSchema, "skip-schema", false, "do not validate against the diagram schema")
}

// apply copies the flags that were set onto cfg and validates the result.
func (s *styleFlags) apply(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("labels") {
		cfg.Labels = s.labels
	}
	if flags.Changed("label-offset") {
		cfg.LabelOffset = s.labelOffset
	}
	if flags.Changed("arrow-offset") {
		cfg.ArrowOffset = s.arrowOffset
	}
	if flags.Changed("label-gap") {
		cfg.LabelGap = s.labelGap
	}
	if s.noEAStyles {
		cfg.EAStyles = false
	}
	return cfg.Validate()
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string. Duplicates are
// dropped; an empty string selects SVG.
func parseFormats(s string) ([]render.Format, error) {
	if strings.TrimSpace(s) == "" {
		return []render.Format{render.FormatSVG}, nil
	}
	var out []render.Format
	for _, part := range strings.Split(s, ",") {
		f, err := render.ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}
