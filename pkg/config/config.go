// Package config loads umlsvg settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file (--config, or $XDG_CONFIG_HOME/umlsvg/config.toml)
//  3. variables from a .env file in the working directory
//  4. UMLSVG_* environment variables
//  5. command-line flags (applied by the CLI)
//
// Example config.toml:
//
//	labels = "rotate"
//	label_offset = 12
//	png_scale = 3
//
//	[serve]
//	addr = ":9090"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	errs "github.com/matzehuels/umlsvg/pkg/errors"
	"github.com/matzehuels/umlsvg/pkg/label"
	"github.com/matzehuels/umlsvg/pkg/scene"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "UMLSVG_"

// Config holds every user-tunable setting.
type Config struct {
	Labels           string  `toml:"labels"`
	LabelOffset      float64 `toml:"label_offset"`
	ArrowOffset      float64 `toml:"arrow_offset"`
	LabelGap         float64 `toml:"label_gap"`
	FontFamily       string  `toml:"font_family"`
	FontSize         float64 `toml:"font_size"`
	LabelFontSize    float64 `toml:"label_font_size"`
	StrokeWidth      float64 `toml:"stroke_width"`
	DefaultLinkColor string  `toml:"default_link_color"`
	BoxStroke        string  `toml:"box_stroke"`
	PNGScale         float64 `toml:"png_scale"`
	PNGConverter     bool    `toml:"png_converter"` // use rsvg-convert instead of the native rasterizer
	EAStyles         bool    `toml:"ea_styles"`     // apply Enterprise Architect style strings

	Serve Serve `toml:"serve"`
}

// Serve configures `umlsvg serve`.
type Serve struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Default returns the built-in settings.
func Default() Config {
	st := scene.DefaultStyle()
	return Config{
		Labels:           string(st.LabelMode),
		LabelOffset:      st.LabelOffset,
		ArrowOffset:      st.ArrowOffset,
		LabelGap:         st.LabelGap,
		FontFamily:       st.FontFamily,
		FontSize:         st.FontSize,
		LabelFontSize:    st.LabelFontSize,
		StrokeWidth:      st.StrokeWidth,
		DefaultLinkColor: st.DefaultLinkColor,
		BoxStroke:        st.BoxStroke,
		PNGScale:         2,
		EAStyles:         true,
		Serve: Serve{
			Addr:         ":8080",
			MaxBodyBytes: 4 << 20,
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "umlsvg", "config.toml")
}

// Load builds a Config from defaults, the TOML file at path, a .env file
// and the environment. An empty path selects [DefaultPath], which may be
// absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return cfg, err
			}
		}
	}

	if err := LoadDotEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errs.New(errs.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadDotEnv loads the given .env files (default ".env") into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "load %s", p)
		}
	}
	return nil
}

// ApplyEnv overrides settings from UMLSVG_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LABELS":             &c.Labels,
		"FONT_FAMILY":        &c.FontFamily,
		"DEFAULT_LINK_COLOR": &c.DefaultLinkColor,
		"BOX_STROKE":         &c.BoxStroke,
		"SERVE_ADDR":         &c.Serve.Addr,
	}
	floats := map[string]*float64{
		"LABEL_OFFSET":    &c.LabelOffset,
		"ARROW_OFFSET":    &c.ArrowOffset,
		"LABEL_GAP":       &c.LabelGap,
		"FONT_SIZE":       &c.FontSize,
		"LABEL_FONT_SIZE": &c.LabelFontSize,
		"STROKE_WIDTH":    &c.StrokeWidth,
		"PNG_SCALE":       &c.PNGScale,
	}
	bools := map[string]*bool{
		"PNG_CONVERTER": &c.PNGConverter,
		"EA_STYLES":     &c.EAStyles,
	}

	for _, k := range sortedKeys(strs) {
		if v, ok := lookup(EnvPrefix + k); ok {
			*strs[k] = v
		}
	}
	for _, k := range sortedKeys(floats) {
		v, ok := lookup(EnvPrefix + k)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, k)
		}
		*floats[k] = f
	}
	for _, k := range sortedKeys(bools) {
		v, ok := lookup(EnvPrefix + k)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, k)
		}
		*bools[k] = b
	}
	if v, ok := lookup(EnvPrefix + "SERVE_MAX_BODY_BYTES"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "%sSERVE_MAX_BODY_BYTES", EnvPrefix)
		}
		c.Serve.MaxBodyBytes = n
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if _, err := label.ParseMode(c.Labels); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidLabelMode, err, "labels")
	}
	positive := []struct {
		name string
		v    float64
	}{
		{"font_size", c.FontSize},
		{"label_font_size", c.LabelFontSize},
		{"stroke_width", c.StrokeWidth},
		{"png_scale", c.PNGScale},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return errs.New(errs.ErrCodeInvalidConfig, "%s must be positive, got %g", p.name, p.v)
		}
	}
	for _, p := range []struct {
		name string
		v    float64
	}{{"label_offset", c.LabelOffset}, {"arrow_offset", c.ArrowOffset}, {"label_gap", c.LabelGap}} {
		if p.v < 0 {
			return errs.New(errs.ErrCodeInvalidConfig, "%s must not be negative, got %g", p.name, p.v)
		}
	}
	if c.Serve.MaxBodyBytes <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "serve.max_body_bytes must be positive")
	}
	return nil
}

// Style converts the settings to scene drawing constants. Invalid label
// modes fall back to edge mode; call Validate first to reject them.
func (c Config) Style() scene.Style {
	st := scene.DefaultStyle()
	if m, err := label.ParseMode(c.Labels); err == nil {
		st.LabelMode = m
	}
	st.LabelOffset = c.LabelOffset
	st.ArrowOffset = c.ArrowOffset
	st.LabelGap = c.LabelGap
	st.FontFamily = c.FontFamily
	st.FontSize = c.FontSize
	st.LabelFontSize = c.LabelFontSize
	st.StrokeWidth = c.StrokeWidth
	st.DefaultLinkColor = c.DefaultLinkColor
	st.BoxStroke = c.BoxStroke
	return st
}
