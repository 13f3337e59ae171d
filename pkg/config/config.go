// Package config loads viewer settings from an optional JSON file, applies
// command-line overrides and fills defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/flatshade/pkg/export"
	"github.com/taigrr/flatshade/pkg/math3d"
	"github.com/taigrr/flatshade/pkg/render"
	"github.com/taigrr/flatshade/pkg/view"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all viewer settings. Colors are "R,G,B" or "#rrggbb".
type Config struct {
	// Frame
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	FPS      int     `json:"fps"`
	FitRatio float64 `json:"fit_ratio"`
	Subpixel bool    `json:"subpixel"`

	// Colors
	Background string `json:"background"`
	BaseColor  string `json:"base_color"`
	WireColor  string `json:"wire_color"`

	// Lighting; nil keeps the default so zero can be set explicitly
	LightDir     []float64 `json:"light_dir"`
	Ambient      *float64  `json:"ambient"`
	SpecPower    *float64  `json:"spec_power"`
	SpecStrength *float64  `json:"spec_strength"`
	RimStrength  *float64  `json:"rim_strength"`

	// View
	MinViewScale float64   `json:"min_view_scale"`
	MaxViewScale float64   `json:"max_view_scale"`
	FlattenScale []float64 `json:"flatten_scale"`
	Cull         bool      `json:"cull"`
	Wireframe    bool      `json:"wireframe"`

	// Snapshots
	SnapshotDir    string  `json:"snapshot_dir"`
	SnapshotFormat string  `json:"snapshot_format"`
	SnapshotScale  float64 `json:"snapshot_scale"`
}

// Flags holds CLI flag values that override config file settings. Zero
// values leave the file setting alone; booleans can only switch on.
type Flags struct {
	Width          int
	Height         int
	FPS            int
	Background     string
	BaseColor      string
	Cull           bool
	Wireframe      bool
	Subpixel       bool
	SnapshotDir    string
	SnapshotFormat string
}

// Load reads a JSON config file. Fields not set in the file keep their zero
// values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve applies flags over the file settings, then fills anything still
// unset with defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}
	if flags.Background != "" {
		c.Background = flags.Background
	}
	if flags.BaseColor != "" {
		c.BaseColor = flags.BaseColor
	}
	if flags.SnapshotDir != "" {
		c.SnapshotDir = flags.SnapshotDir
	}
	if flags.SnapshotFormat != "" {
		c.SnapshotFormat = flags.SnapshotFormat
	}
	c.Cull = c.Cull || flags.Cull
	c.Wireframe = c.Wireframe || flags.Wireframe
	c.Subpixel = c.Subpixel || flags.Subpixel

	ro := render.DefaultOptions()
	u := ro.Uniforms
	vc := view.DefaultConfig()

	if c.Width <= 0 {
		c.Width = ro.Width
	}
	if c.Height <= 0 {
		c.Height = ro.Height
	}
	if c.FPS <= 0 {
		c.FPS = vc.FPS
	}
	if c.FitRatio <= 0 {
		c.FitRatio = 0.48
	}
	if c.Background == "" {
		c.Background = formatColor(ro.Background)
	}
	if c.BaseColor == "" {
		c.BaseColor = formatColor(u.BaseColor)
	}
	if c.WireColor == "" {
		c.WireColor = formatColor(ro.WireColor)
	}
	if c.LightDir == nil {
		c.LightDir = []float64{u.LightDir.X, u.LightDir.Y, u.LightDir.Z}
	}
	if c.Ambient == nil {
		c.Ambient = ptr(u.Ambient)
	}
	if c.SpecPower == nil {
		c.SpecPower = ptr(u.SpecPower)
	}
	if c.SpecStrength == nil {
		c.SpecStrength = ptr(u.SpecStrength)
	}
	if c.RimStrength == nil {
		c.RimStrength = ptr(u.RimStrength)
	}
	if c.MinViewScale <= 0 {
		c.MinViewScale = ro.MinViewScale
	}
	if c.MaxViewScale <= 0 {
		c.MaxViewScale = ro.MaxViewScale
	}
	if c.FlattenScale == nil {
		c.FlattenScale = []float64{vc.FlattenScale.X, vc.FlattenScale.Y, vc.FlattenScale.Z}
	}
	if c.SnapshotDir == "" {
		c.SnapshotDir = "."
	}
	if c.SnapshotFormat == "" {
		c.SnapshotFormat = ".png"
	} else if !strings.HasPrefix(c.SnapshotFormat, ".") {
		c.SnapshotFormat = "." + c.SnapshotFormat
	}
	c.SnapshotFormat = strings.ToLower(c.SnapshotFormat)
	if c.SnapshotScale <= 0 {
		c.SnapshotScale = 1
	}
}

// Validate reports the first setting that cannot be used. Call after
// Resolve.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.MinViewScale > c.MaxViewScale {
		return fmt.Errorf("%w: min_view_scale %v > max_view_scale %v", ErrInvalid, c.MinViewScale, c.MaxViewScale)
	}
	for _, f := range []struct{ name, value string }{
		{"background", c.Background},
		{"base_color", c.BaseColor},
		{"wire_color", c.WireColor},
	} {
		if _, err := ParseColor(f.value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, f.name, err)
		}
	}
	if len(c.LightDir) != 3 {
		return fmt.Errorf("%w: light_dir needs 3 components, got %d", ErrInvalid, len(c.LightDir))
	}
	if vec(c.LightDir).Len() == 0 {
		return fmt.Errorf("%w: light_dir is zero", ErrInvalid)
	}
	if len(c.FlattenScale) != 3 {
		return fmt.Errorf("%w: flatten_scale needs 3 components, got %d", ErrInvalid, len(c.FlattenScale))
	}
	if c.Ambient == nil || c.SpecPower == nil || c.SpecStrength == nil || c.RimStrength == nil {
		return fmt.Errorf("%w: lighting not resolved", ErrInvalid)
	}
	if *c.Ambient < 0 || *c.Ambient > 1 {
		return fmt.Errorf("%w: ambient %v outside [0,1]", ErrInvalid, *c.Ambient)
	}
	if *c.SpecPower < 0 || *c.SpecStrength < 0 || *c.RimStrength < 0 {
		return fmt.Errorf("%w: negative lighting term", ErrInvalid)
	}
	if _, err := export.FormatOf("x" + c.SnapshotFormat); err != nil {
		return fmt.Errorf("%w: snapshot_format: %v", ErrInvalid, err)
	}
	return nil
}

// TargetPixels is the on-screen size the mesh's largest dimension is fit to.
func (c Config) TargetPixels() float64 {
	return float64(min(c.Width, c.Height)) * c.FitRatio
}

// RenderOptions converts the settings for render.NewRenderer.
func (c Config) RenderOptions() (render.Options, error) {
	if err := c.Validate(); err != nil {
		return render.Options{}, err
	}

	opts := render.DefaultOptions()
	opts.Width, opts.Height = c.Width, c.Height
	opts.Background, _ = ParseColor(c.Background)
	opts.WireColor, _ = ParseColor(c.WireColor)
	base, _ := ParseColor(c.BaseColor)
	opts.MinViewScale, opts.MaxViewScale = c.MinViewScale, c.MaxViewScale
	opts.Subpixel = c.Subpixel
	opts.Uniforms = render.Uniforms{
		BaseColor:    base,
		LightDir:     vec(c.LightDir).Normalize(),
		Ambient:      *c.Ambient,
		SpecPower:    *c.SpecPower,
		SpecStrength: *c.SpecStrength,
		RimStrength:  *c.RimStrength,
	}
	return opts, nil
}

// ViewConfig converts the settings for view.New.
func (c Config) ViewConfig() view.Config {
	vc := view.DefaultConfig()
	vc.FPS = c.FPS
	vc.MinScale, vc.MaxScale = c.MinViewScale, c.MaxViewScale
	vc.FlattenScale = vec(c.FlattenScale)
	return vc
}

// ParseColor parses "R,G,B" (decimal, 0-255) or "#rrggbb".
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		if len(hex) != 6 {
			return color.RGBA{}, fmt.Errorf("color %q: want #rrggbb", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
		}
		return render.RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return color.RGBA{}, fmt.Errorf("color %q: want R,G,B", s)
	}
	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
		}
		ch[i] = uint8(v)
	}
	return render.RGB(ch[0], ch[1], ch[2]), nil
}

func formatColor(c color.RGBA) string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

func vec(v []float64) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

func ptr(v float64) *float64 {
	return &v
}
