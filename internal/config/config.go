package config

import (
	"fmt"
	"os"
	"time"

	"github.com/san-kum/seaglass/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMarginX      = 0.12
	DefaultMarginY      = 0.18
	DefaultWallWidth    = 20.0
	DefaultRadiusMin    = 35.0
	DefaultRadiusMax    = 60.0
	DefaultRestitution  = 0.95
	DefaultFrictionAir  = 0.02
	DefaultSpawnSpeed   = 1.5
	DefaultDensity      = 0.001
	DefaultCurrent      = 0.0001
	DefaultFloorSpeedSq = 0.25
	DefaultFloorBoost   = 1.05
	DefaultFloorJitter  = 0.05
	DefaultCeilingSpeed = 3.5
	DefaultCeilingDamp  = 0.98
	DefaultSmoothing    = 0.05
	DefaultSensitivity  = 1.0 / 45.0
	DefaultNeutralBeta  = 45.0
	DefaultGravityScale = 0.001
	DefaultPushRadius   = 250.0
	DefaultPushStrength = 0.12
	DefaultRippleTTL    = time.Second
	DefaultStepHz       = 60.0
	DefaultFrameHz      = 60.0

	// DefaultForceGain converts per-millisecond² force units into per-tick units.
	DefaultForceGain = (1000.0 / 60.0) * (1000.0 / 60.0)
)

const (
	GovernorFloor   = "floor"
	GovernorCeiling = "ceiling"
	GovernorNone    = "none"
)

type Config struct {
	Profile     string            `yaml:"profile"`
	Seed        int64             `yaml:"seed"`
	Boundary    BoundaryConfig    `yaml:"boundary"`
	Bodies      BodyConfig        `yaml:"bodies"`
	Field       FieldConfig       `yaml:"field"`
	Gravity     GravityConfig     `yaml:"gravity"`
	Interaction InteractionConfig `yaml:"interaction"`
	Timing      TimingConfig      `yaml:"timing"`
}

// BoundaryConfig margins are fractions of the viewport removed from each side.
type BoundaryConfig struct {
	MarginX   float64 `yaml:"margin_x"`
	MarginY   float64 `yaml:"margin_y"`
	WallWidth float64 `yaml:"wall_width"`
}

type BodyConfig struct {
	RadiusMin   float64 `yaml:"radius_min"`
	RadiusMax   float64 `yaml:"radius_max"`
	Restitution float64 `yaml:"restitution"`
	FrictionAir float64 `yaml:"friction_air"`
	SpawnSpeed  float64 `yaml:"spawn_speed"`
	Density     float64 `yaml:"density"`
}

type FieldConfig struct {
	Current      float64 `yaml:"current"`
	Governor     string  `yaml:"governor"`
	FloorSpeedSq float64 `yaml:"floor_speed_sq"`
	FloorBoost   float64 `yaml:"floor_boost"`
	FloorJitter  float64 `yaml:"floor_jitter"`
	CeilingSpeed float64 `yaml:"ceiling_speed"`
	CeilingDamp  float64 `yaml:"ceiling_damp"`
}

type GravityConfig struct {
	Smoothing   float64 `yaml:"smoothing"`
	Sensitivity float64 `yaml:"sensitivity"`
	NeutralBeta float64 `yaml:"neutral_beta"`
	Scale       float64 `yaml:"scale"`
}

type InteractionConfig struct {
	PushRadius   float64       `yaml:"push_radius"`
	PushStrength float64       `yaml:"push_strength"`
	RippleTTL    time.Duration `yaml:"ripple_ttl"`
}

type TimingConfig struct {
	StepHz    float64 `yaml:"step_hz"`
	FrameHz   float64 `yaml:"frame_hz"`
	ForceGain float64 `yaml:"force_gain"`
}

func DefaultConfig() *Config {
	return &Config{
		Profile: "drift",
		Seed:    1,
		Boundary: BoundaryConfig{
			MarginX:   DefaultMarginX,
			MarginY:   DefaultMarginY,
			WallWidth: DefaultWallWidth,
		},
		Bodies: BodyConfig{
			RadiusMin:   DefaultRadiusMin,
			RadiusMax:   DefaultRadiusMax,
			Restitution: DefaultRestitution,
			FrictionAir: DefaultFrictionAir,
			SpawnSpeed:  DefaultSpawnSpeed,
			Density:     DefaultDensity,
		},
		Field: FieldConfig{
			Current:      DefaultCurrent,
			Governor:     GovernorFloor,
			FloorSpeedSq: DefaultFloorSpeedSq,
			FloorBoost:   DefaultFloorBoost,
			FloorJitter:  DefaultFloorJitter,
			CeilingSpeed: DefaultCeilingSpeed,
			CeilingDamp:  DefaultCeilingDamp,
		},
		Gravity: GravityConfig{
			Smoothing:   DefaultSmoothing,
			Sensitivity: DefaultSensitivity,
			NeutralBeta: DefaultNeutralBeta,
			Scale:       DefaultGravityScale,
		},
		Interaction: InteractionConfig{
			PushRadius:   DefaultPushRadius,
			PushStrength: DefaultPushStrength,
			RippleTTL:    DefaultRippleTTL,
		},
		Timing: TimingConfig{
			StepHz:    DefaultStepHz,
			FrameHz:   DefaultFrameHz,
			ForceGain: DefaultForceGain,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a profile on top of the defaults, so partial files are valid.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) Validate() error {
	b := c.Bodies
	switch {
	case c.Boundary.MarginX < 0 || c.Boundary.MarginX >= 0.5:
		return bounds("boundary.margin_x", c.Boundary.MarginX)
	case c.Boundary.MarginY < 0 || c.Boundary.MarginY >= 0.5:
		return bounds("boundary.margin_y", c.Boundary.MarginY)
	case c.Boundary.WallWidth <= 0:
		return bounds("boundary.wall_width", c.Boundary.WallWidth)
	case b.RadiusMin <= 0:
		return bounds("bodies.radius_min", b.RadiusMin)
	case b.RadiusMax < b.RadiusMin:
		return bounds("bodies.radius_max", b.RadiusMax)
	case b.FrictionAir < 0 || b.FrictionAir >= 1:
		return bounds("bodies.friction_air", b.FrictionAir)
	case b.Density <= 0:
		return bounds("bodies.density", b.Density)
	case c.Gravity.Smoothing <= 0 || c.Gravity.Smoothing > 1:
		return bounds("gravity.smoothing", c.Gravity.Smoothing)
	case c.Interaction.PushRadius <= 0:
		return bounds("interaction.push_radius", c.Interaction.PushRadius)
	case c.Interaction.RippleTTL <= 0:
		return fmt.Errorf("interaction.ripple_ttl %s: %w", c.Interaction.RippleTTL, dynamo.ErrParameterBounds)
	case c.Timing.StepHz <= 0 || c.Timing.FrameHz <= 0:
		return fmt.Errorf("timing rates must be positive: %w", dynamo.ErrParameterBounds)
	case c.Timing.ForceGain <= 0:
		return bounds("timing.force_gain", c.Timing.ForceGain)
	}
	switch c.Field.Governor {
	case GovernorFloor, GovernorCeiling, GovernorNone:
	default:
		return fmt.Errorf("field.governor %q: %w", c.Field.Governor, dynamo.ErrParameterBounds)
	}
	return nil
}

func (t TimingConfig) StepInterval() time.Duration {
	return time.Duration(float64(time.Second) / t.StepHz)
}

func (t TimingConfig) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / t.FrameHz)
}

func bounds(field string, v float64) error {
	return fmt.Errorf("%s %g: %w", field, v, dynamo.ErrParameterBounds)
}
