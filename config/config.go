// Package config provides configuration loading and validation for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is returned when a configuration cannot drive a simulation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Generation GenerationConfig `yaml:"generation"`
	Movement   MovementConfig   `yaml:"movement"`
	Eye        EyeConfig        `yaml:"eye"`
	Brain      BrainConfig      `yaml:"brain"`
	Genetics   GeneticsConfig   `yaml:"genetics"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds population and arena parameters.
// The arena is always the unit torus [0,1)x[0,1).
type WorldConfig struct {
	Animals           int     `yaml:"animals"`
	Foods             int     `yaml:"foods"`
	ConsumptionRadius float64 `yaml:"consumption_radius"` // Toroidal distance below which food is eaten
}

// GenerationConfig holds generation boundary parameters.
type GenerationConfig struct {
	AgeLimit int `yaml:"age_limit"` // Ticks per generation
}

// MovementConfig holds physics parameters applied to brain outputs.
type MovementConfig struct {
	MaxSpeed      float64 `yaml:"max_speed"`      // Distance per tick, in arena units
	SpeedAccel    float64 `yaml:"speed_accel"`    // Scale applied to the speed output
	RotationAccel float64 `yaml:"rotation_accel"` // Scale applied to the rotation output (radians)
}

// EyeConfig holds sensor geometry.
type EyeConfig struct {
	FOVAngle float64 `yaml:"fov_angle"` // Field of view in radians, (0, 2π]
	FOVRange float64 `yaml:"fov_range"` // Maximum perception distance
	Sectors  int     `yaml:"sectors"`
}

// BrainConfig holds network topology.
type BrainConfig struct {
	Hidden int `yaml:"hidden"` // Hidden layer width (0 = 2 * eye.sectors)
}

// GeneticsConfig holds mutation parameters.
type GeneticsConfig struct {
	MutationRate     float64 `yaml:"mutation_rate"`     // Per-gene mutation probability
	MutationStrength float64 `yaml:"mutation_strength"` // Max absolute offset per mutation
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	HallOfFameSize int              `yaml:"hall_of_fame_size"`
	PerfWindow     int              `yaml:"perf_window"` // Ticks averaged by the perf collector
	Milestones     MilestonesConfig `yaml:"milestones"`
}

// MilestonesConfig holds milestone detection thresholds.
type MilestonesConfig struct {
	HistorySize          int     `yaml:"history_size"`
	BreakthroughMultiple float64 `yaml:"breakthrough_multiple"` // avg > rolling mean * this
	MinBreakthroughAvg   float64 `yaml:"min_breakthrough_avg"`
	StagnationWindow     int     `yaml:"stagnation_window"` // Generations without a new max
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Hidden       int // Effective hidden width
	GenomeLength int // Parameter count of one brain
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a copy that can be modified independently.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Validate recomputes derived values and rejects configurations that cannot
// drive a simulation. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	c.computeDerived()

	// NaN fails every ordered comparison below, so check finiteness first.
	for _, f := range c.floatFields() {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidConfig, f.name, f.value)
		}
	}

	switch {
	case c.World.Animals <= 0:
		return fmt.Errorf("%w: world.animals must be positive, got %d", ErrInvalidConfig, c.World.Animals)
	case c.World.Foods < 0:
		return fmt.Errorf("%w: world.foods must not be negative, got %d", ErrInvalidConfig, c.World.Foods)
	case c.World.ConsumptionRadius < 0:
		return fmt.Errorf("%w: world.consumption_radius must not be negative", ErrInvalidConfig)
	case c.Generation.AgeLimit <= 0:
		return fmt.Errorf("%w: generation.age_limit must be positive, got %d", ErrInvalidConfig, c.Generation.AgeLimit)
	case c.Movement.MaxSpeed <= 0:
		return fmt.Errorf("%w: movement.max_speed must be positive", ErrInvalidConfig)
	case c.Eye.Sectors <= 0:
		return fmt.Errorf("%w: eye.sectors must be positive, got %d", ErrInvalidConfig, c.Eye.Sectors)
	case c.Eye.FOVRange <= 0:
		return fmt.Errorf("%w: eye.fov_range must be positive", ErrInvalidConfig)
	case c.Eye.FOVAngle <= 0 || c.Eye.FOVAngle > 2*math.Pi:
		return fmt.Errorf("%w: eye.fov_angle must be in (0, 2π], got %v", ErrInvalidConfig, c.Eye.FOVAngle)
	case c.Derived.Hidden <= 0:
		return fmt.Errorf("%w: brain.hidden must be positive, got %d", ErrInvalidConfig, c.Brain.Hidden)
	case c.Derived.GenomeLength <= 0:
		return fmt.Errorf("%w: genome length is zero", ErrInvalidConfig)
	case c.Genetics.MutationRate < 0 || c.Genetics.MutationRate > 1:
		return fmt.Errorf("%w: genetics.mutation_rate must be in [0, 1], got %v", ErrInvalidConfig, c.Genetics.MutationRate)
	case c.Genetics.MutationStrength < 0:
		return fmt.Errorf("%w: genetics.mutation_strength must not be negative", ErrInvalidConfig)
	}
	return nil
}

type floatField struct {
	name  string
	value float64
}

// floatFields lists every float parameter by its YAML path.
func (c *Config) floatFields() []floatField {
	return []floatField{
		{"world.consumption_radius", c.World.ConsumptionRadius},
		{"movement.max_speed", c.Movement.MaxSpeed},
		{"movement.speed_accel", c.Movement.SpeedAccel},
		{"movement.rotation_accel", c.Movement.RotationAccel},
		{"eye.fov_angle", c.Eye.FOVAngle},
		{"eye.fov_range", c.Eye.FOVRange},
		{"genetics.mutation_rate", c.Genetics.MutationRate},
		{"genetics.mutation_strength", c.Genetics.MutationStrength},
		{"telemetry.milestones.breakthrough_multiple", c.Telemetry.Milestones.BreakthroughMultiple},
		{"telemetry.milestones.min_breakthrough_avg", c.Telemetry.Milestones.MinBreakthroughAvg},
	}
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	hidden := c.Brain.Hidden
	if hidden == 0 {
		hidden = 2 * c.Eye.Sectors
	}
	c.Derived.Hidden = hidden

	// W1 + b1 + W2 + b2, two outputs (speed, rotation)
	inputs := c.Eye.Sectors
	c.Derived.GenomeLength = hidden*inputs + hidden + 2*hidden + 2
	if inputs <= 0 || hidden <= 0 {
		c.Derived.GenomeLength = 0
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
