// Package config loads drift settings from TOML over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/drift/layout"
	"github.com/lixenwraith/drift/parameter"
	"github.com/lixenwraith/drift/physics"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Duration decodes TOML strings such as "700ms"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Spring is one viewport class's spring constants
type Spring struct {
	Stiffness float64 `toml:"stiffness"`
	Damping   float64 `toml:"damping"`
}

type PhysicsConfig struct {
	Wide         Spring  `toml:"wide"`
	Narrow       Spring  `toml:"narrow"`
	Friction     float64 `toml:"friction"`
	RestEpsilon  float64 `toml:"rest_epsilon"`
	SnapDistance float64 `toml:"snap_distance"`
	SnapSpeed    float64 `toml:"snap_speed"`
}

type LayoutConfig struct {
	ColumnGap       float64 `toml:"column_gap"`
	StackGap        float64 `toml:"stack_gap"`
	OverlapMargin   float64 `toml:"overlap_margin"`
	NarrowWidth     float64 `toml:"narrow_width"`
	MonotoneTargets bool    `toml:"monotone_targets"`
}

type InputConfig struct {
	MinPointerElapsed Duration `toml:"min_pointer_elapsed"`
	FlingCueSpeed     float64  `toml:"fling_cue_speed"`
}

type LoopConfig struct {
	FrameInterval Duration `toml:"frame_interval"`
	MaxFrameDelta Duration `toml:"max_frame_delta"`
	SettleDelay   Duration `toml:"settle_delay"`
}

type ContentConfig struct {
	Dir  string `toml:"dir"`
	Word string `toml:"word"`
}

type AudioConfig struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"`
}

type HostConfig struct {
	CellWidth   float64 `toml:"cell_width"`
	CellHeight  float64 `toml:"cell_height"`
	TileColumns int     `toml:"tile_columns"`
}

// Config is the full settings tree
type Config struct {
	Physics PhysicsConfig `toml:"physics"`
	Layout  LayoutConfig  `toml:"layout"`
	Input   InputConfig   `toml:"input"`
	Loop    LoopConfig    `toml:"loop"`
	Content ContentConfig `toml:"content"`
	Audio   AudioConfig   `toml:"audio"`
	Host    HostConfig    `toml:"host"`
}

// Default returns settings built from package parameter
func Default() Config {
	return Config{
		Physics: PhysicsConfig{
			Wide:         Spring{Stiffness: parameter.SpringStiffnessWide, Damping: parameter.SpringDampingWide},
			Narrow:       Spring{Stiffness: parameter.SpringStiffnessNarrow, Damping: parameter.SpringDampingNarrow},
			Friction:     parameter.DriftFriction,
			RestEpsilon:  parameter.RestEpsilon,
			SnapDistance: parameter.SnapDistance,
			SnapSpeed:    parameter.SnapSpeed,
		},
		Layout: LayoutConfig{
			ColumnGap:     parameter.ColumnGap,
			StackGap:      parameter.StackGap,
			OverlapMargin: parameter.OverlapMargin,
			NarrowWidth:   parameter.NarrowWidth,
		},
		Input: InputConfig{
			MinPointerElapsed: Duration{parameter.MinPointerElapsed},
			FlingCueSpeed:     parameter.FlingSpeedCue,
		},
		Loop: LoopConfig{
			FrameInterval: Duration{parameter.FrameUpdateInterval},
			MaxFrameDelta: Duration{parameter.MaxFrameDelta},
			SettleDelay:   Duration{parameter.SettleDelay},
		},
		Content: ContentConfig{
			Dir:  "content",
			Word: parameter.RhythmWord,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  parameter.AudioVolume,
		},
		Host: HostConfig{
			CellWidth:   parameter.CellWidth,
			CellHeight:  parameter.CellHeight,
			TileColumns: parameter.TileColumns,
		},
	}
}

// Load overlays the TOML file at path on Default
// A missing file yields defaults; unknown keys are rejected
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings that would make the simulation unstable
func (c Config) Validate() error {
	unit := func(name string, v float64) error {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in (0,1], got %v", ErrInvalid, name, v)
		}
		return nil
	}
	positive := func(name string, v float64) error {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, name, v)
		}
		return nil
	}
	nonNegative := func(name string, v float64) error {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalid, name, v)
		}
		return nil
	}

	checks := []error{
		positive("physics.wide.stiffness", c.Physics.Wide.Stiffness),
		unit("physics.wide.damping", c.Physics.Wide.Damping),
		positive("physics.narrow.stiffness", c.Physics.Narrow.Stiffness),
		unit("physics.narrow.damping", c.Physics.Narrow.Damping),
		unit("physics.friction", c.Physics.Friction),
		nonNegative("physics.rest_epsilon", c.Physics.RestEpsilon),
		positive("physics.snap_distance", c.Physics.SnapDistance),
		positive("physics.snap_speed", c.Physics.SnapSpeed),
		nonNegative("layout.column_gap", c.Layout.ColumnGap),
		nonNegative("layout.stack_gap", c.Layout.StackGap),
		nonNegative("layout.overlap_margin", c.Layout.OverlapMargin),
		nonNegative("layout.narrow_width", c.Layout.NarrowWidth),
		positive("input.min_pointer_elapsed", float64(c.Input.MinPointerElapsed.Duration)),
		positive("loop.frame_interval", float64(c.Loop.FrameInterval.Duration)),
		positive("loop.max_frame_delta", float64(c.Loop.MaxFrameDelta.Duration)),
		nonNegative("loop.settle_delay", float64(c.Loop.SettleDelay.Duration)),
		nonNegative("audio.volume", c.Audio.Volume),
		positive("host.cell_width", c.Host.CellWidth),
		positive("host.cell_height", c.Host.CellHeight),
		positive("host.tile_columns", float64(c.Host.TileColumns)),
	}
	return errors.Join(checks...)
}

// WideProfile returns the integration constants for wide viewports
func (c Config) WideProfile() physics.Profile {
	return c.profile(c.Physics.Wide)
}

// NarrowProfile returns the integration constants for narrow viewports
func (c Config) NarrowProfile() physics.Profile {
	return c.profile(c.Physics.Narrow)
}

func (c Config) profile(s Spring) physics.Profile {
	return physics.Profile{
		Stiffness:    s.Stiffness,
		Damping:      s.Damping,
		Friction:     c.Physics.Friction,
		RestEpsilon:  c.Physics.RestEpsilon,
		SnapDistance: c.Physics.SnapDistance,
		SnapSpeed:    c.Physics.SnapSpeed,
	}
}

// LayoutParams returns column stacking settings
func (c Config) LayoutParams() layout.Params {
	return layout.Params{
		ColumnGap:       c.Layout.ColumnGap,
		StackGap:        c.Layout.StackGap,
		MonotoneTargets: c.Layout.MonotoneTargets,
	}
}
