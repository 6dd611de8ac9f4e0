package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/chladni/internal/field"
	"github.com/san-kum/chladni/internal/particle"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth      = 1024
	DefaultHeight     = 768
	DefaultFPS        = 60
	DefaultFrames     = 600
	DefaultBreakpoint = 768
)

// ErrInvalid reports a configuration value outside its valid range.
var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`
	Pattern  int            `yaml:"pattern"`
	Seed     int64          `yaml:"seed"`
	FPS      int            `yaml:"fps"`
	Frames   int            `yaml:"frames"`
	Profiles ProfilesConfig `yaml:"profiles"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Style    StyleConfig    `yaml:"style"`
	Output   OutputConfig   `yaml:"output"`
}

type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type ProfileConfig struct {
	BaseDensity  int `yaml:"base_density"`
	MaxParticles int `yaml:"max_particles"`
}

type ProfilesConfig struct {
	Breakpoint int           `yaml:"breakpoint"`
	Compact    ProfileConfig `yaml:"compact"`
	Standard   ProfileConfig `yaml:"standard"`
}

type PhysicsConfig struct {
	Repulsion       float64 `yaml:"repulsion"`
	Jitter          float64 `yaml:"jitter"`
	SettleThreshold float64 `yaml:"settle_threshold"`
	SettledDamping  float64 `yaml:"settled_damping"`
	FreeDamping     float64 `yaml:"free_damping"`
	Bounce          float64 `yaml:"bounce"`
	FadeFrames      int     `yaml:"fade_frames"`
}

type StyleConfig struct {
	SettledAlpha     float64 `yaml:"settled_alpha"`
	FreeAlpha        float64 `yaml:"free_alpha"`
	SettledSize      float64 `yaml:"settled_size"`
	FreeSize         float64 `yaml:"free_size"`
	OverlayThreshold float64 `yaml:"overlay_threshold"`
	Contrast         float64 `yaml:"contrast"`
	Opacity          float64 `yaml:"opacity"`
	FadeIn           float64 `yaml:"fade_in_seconds"`
}

type OutputConfig struct {
	Dir       string `yaml:"dir"`
	Telemetry bool   `yaml:"telemetry"`
}

func DefaultConfig() *Config {
	p := particle.DefaultParams()
	st := particle.DefaultStyle()
	return &Config{
		Viewport: ViewportConfig{Width: DefaultWidth, Height: DefaultHeight},
		FPS:      DefaultFPS,
		Frames:   DefaultFrames,
		Profiles: ProfilesConfig{
			Breakpoint: DefaultBreakpoint,
			Compact:    ProfileConfig{BaseDensity: p.Compact.BaseDensity, MaxParticles: p.Compact.MaxParticles},
			Standard:   ProfileConfig{BaseDensity: p.Standard.BaseDensity, MaxParticles: p.Standard.MaxParticles},
		},
		Physics: PhysicsConfig{
			Repulsion:       p.Repulsion,
			Jitter:          p.Jitter,
			SettleThreshold: p.SettleThreshold,
			SettledDamping:  p.SettledDamping,
			FreeDamping:     p.FreeDamping,
			Bounce:          p.Bounce,
			FadeFrames:      p.FadeFrames,
		},
		Style: StyleConfig{
			SettledAlpha:     st.SettledAlpha,
			FreeAlpha:        st.FreeAlpha,
			SettledSize:      st.SettledSize,
			FreeSize:         st.FreeSize,
			OverlayThreshold: st.OverlayThreshold,
			Contrast:         1.2,
			Opacity:          0.6,
			FadeIn:           2,
		},
		Output: OutputConfig{Dir: ".chladni"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks ranges that would make the simulation meaningless.
func (c *Config) Validate() error {
	switch {
	case c.Viewport.Width <= 0 || c.Viewport.Height <= 0:
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalid, c.Viewport.Width, c.Viewport.Height)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.FPS)
	case c.Frames < 0:
		return fmt.Errorf("%w: frames %d", ErrInvalid, c.Frames)
	case c.Physics.FadeFrames < 0:
		return fmt.Errorf("%w: fade frames %d", ErrInvalid, c.Physics.FadeFrames)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return c.Style.validate()
}

func (s StyleConfig) validate() error {
	for _, f := range []struct {
		name     string
		v        float64
		min, max float64
	}{
		{"settled_alpha", s.SettledAlpha, 0, 1},
		{"free_alpha", s.FreeAlpha, 0, 1},
		{"settled_size", s.SettledSize, 0, math.MaxFloat64},
		{"free_size", s.FreeSize, 0, math.MaxFloat64},
		{"overlay_threshold", s.OverlayThreshold, 0, 1},
		{"contrast", s.Contrast, 0, math.MaxFloat64},
		{"opacity", s.Opacity, 0, 1},
		{"fade_in_seconds", s.FadeIn, 0, math.MaxFloat64},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < f.min || f.v > f.max {
			return fmt.Errorf("%w: style %s %v", ErrInvalid, f.name, f.v)
		}
	}
	return nil
}

func (c *Config) Dimensions() particle.Dimensions {
	return particle.Dimensions{Width: c.Viewport.Width, Height: c.Viewport.Height}
}

func (c *Config) PatternIndex() field.Pattern { return field.Pattern(c.Pattern) }

func (c *Config) Params() particle.Params {
	return particle.Params{
		Compact: particle.Profile{
			Name:         "compact",
			BaseDensity:  c.Profiles.Compact.BaseDensity,
			MaxParticles: c.Profiles.Compact.MaxParticles,
		},
		Standard: particle.Profile{
			Name:         "standard",
			BaseDensity:  c.Profiles.Standard.BaseDensity,
			MaxParticles: c.Profiles.Standard.MaxParticles,
		},
		Breakpoint:      c.Profiles.Breakpoint,
		Repulsion:       c.Physics.Repulsion,
		Jitter:          c.Physics.Jitter,
		SettleThreshold: c.Physics.SettleThreshold,
		SettledDamping:  c.Physics.SettledDamping,
		FreeDamping:     c.Physics.FreeDamping,
		Bounce:          c.Physics.Bounce,
		FadeFrames:      c.Physics.FadeFrames,
	}
}

func (c *Config) ParticleStyle() particle.Style {
	st := particle.DefaultStyle()
	st.SettledAlpha = c.Style.SettledAlpha
	st.FreeAlpha = c.Style.FreeAlpha
	st.SettledSize = c.Style.SettledSize
	st.FreeSize = c.Style.FreeSize
	st.OverlayThreshold = c.Style.OverlayThreshold
	return st
}
