// Package config loads run configuration. A Config is resolved once,
// validated, and then threaded explicitly through the pipeline; nothing
// in the core reads ambient configuration state.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/memslab/lasermill/pkg/errors"
	"github.com/memslab/lasermill/pkg/nc"
	"github.com/memslab/lasermill/pkg/sequence"
	"github.com/memslab/lasermill/pkg/units"
)

// Hole diameter and derived spacing defaults, in micrometers.
// Spacings are measured between hole centers.
const (
	HoleDiameter             = 1.0
	DefaultTargetFinal       = HoleDiameter / 2
	DefaultMinInitial        = 2 * HoleDiameter
	DefaultPlotMarginFactor  = 0.2
	DefaultNominalSideLength = 1200.0
)

// Config is the full run configuration.
type Config struct {
	Unit       string           `toml:"unit"`
	Sequencing SequencingConfig `toml:"sequencing"`
	Alignment  AlignmentConfig  `toml:"alignment"`
	Machine    MachineConfig    `toml:"machine"`
	Pipeline   PipelineConfig   `toml:"pipeline"`
	Cache      CacheConfig      `toml:"cache"`
	Archive    ArchiveConfig    `toml:"archive"`
	Preview    PreviewConfig    `toml:"preview"`
}

// SequencingConfig holds the spacing defaults applied to polygons that
// carry no per-polygon override. All values are in the working unit.
type SequencingConfig struct {
	MinInitialSpacing float64 `toml:"min_initial_spacing"`

	// TargetInitialSpacing pins the first-pass spacing. Zero lets the
	// planner pick the optimal initial spacing per polygon.
	TargetInitialSpacing float64 `toml:"target_initial_spacing"`

	TargetFinalSpacing float64 `toml:"target_final_spacing"`
}

// AlignmentConfig describes the mounted sample's nominal geometry.
type AlignmentConfig struct {
	NominalSideLength float64 `toml:"nominal_side_length"`
}

// MachineConfig holds the stage and laser parameters for the generated
// program.
type MachineConfig struct {
	TransitionFeedrate       float64 `toml:"transition_feedrate"`
	ShapeFeedrate            float64 `toml:"shape_feedrate"`
	ReduceTransitionFeedrate bool    `toml:"reduce_transition_feedrate"`
	ReductionThresholdMM     float64 `toml:"reduction_threshold_mm"`
	ReductionFactor          float64 `toml:"reduction_factor"`
	PulseCount               int     `toml:"pulse_count"`
	FrequencyHz              int     `toml:"frequency_hz"`
}

// PipelineConfig controls orchestration: the assembly policy and the
// per-polygon worker count.
type PipelineConfig struct {
	Policy  string `toml:"policy"`
	Workers int    `toml:"workers"`
}

// CacheConfig selects the sequence cache backend. An empty Dir and
// RedisAddr disables caching.
type CacheConfig struct {
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
}

// ArchiveConfig points at the optional run-report archive.
type ArchiveConfig struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// PreviewConfig controls SVG rendering.
type PreviewConfig struct {
	MarginFactor float64 `toml:"margin_factor"`
}

// Default returns the production defaults: micrometer working unit,
// spacing defaults derived from the hole diameter, stage parameters
// matching the Aerotech setup.
func Default() Config {
	m := nc.DefaultAeroBasicOptions()
	return Config{
		Unit: "um",
		Sequencing: SequencingConfig{
			MinInitialSpacing:  DefaultMinInitial,
			TargetFinalSpacing: DefaultTargetFinal,
		},
		Alignment: AlignmentConfig{
			NominalSideLength: DefaultNominalSideLength,
		},
		Machine: MachineConfig{
			TransitionFeedrate:       m.TransitionFeedrate,
			ShapeFeedrate:            m.ShapeFeedrate,
			ReduceTransitionFeedrate: m.ReduceTransitionFeedrate,
			ReductionThresholdMM:     m.ReductionThresholdMM,
			ReductionFactor:          m.ReductionFactor,
			PulseCount:               m.PulseCount,
			FrequencyHz:              m.FrequencyHz,
		},
		Pipeline: PipelineConfig{
			Policy:  string(sequence.PolicySequential),
			Workers: 4,
		},
		Archive: ArchiveConfig{
			Database:   "lasermill",
			Collection: "runs",
		},
		Preview: PreviewConfig{
			MarginFactor: DefaultPlotMarginFactor,
		},
	}
}

// Load parses TOML over the defaults, so a partial file overrides only
// what it names.
func Load(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads and parses a TOML config file. A missing path returns
// the defaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Load(data)
}

// Validate checks cross-field consistency.
func (c Config) Validate() error {
	if _, err := units.Factor(c.Unit); err != nil {
		return err
	}
	s := c.Sequencing
	if s.MinInitialSpacing <= 0 || s.TargetFinalSpacing <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"spacings must be positive: min_initial=%g target_final=%g",
			s.MinInitialSpacing, s.TargetFinalSpacing)
	}
	if s.TargetFinalSpacing >= s.MinInitialSpacing {
		return errors.New(errors.ErrCodeInvalidConfig,
			"target_final_spacing %g must be below min_initial_spacing %g",
			s.TargetFinalSpacing, s.MinInitialSpacing)
	}
	if s.TargetInitialSpacing != 0 && s.TargetInitialSpacing < s.MinInitialSpacing {
		return errors.New(errors.ErrCodeInvalidConfig,
			"target_initial_spacing %g must be at least min_initial_spacing %g",
			s.TargetInitialSpacing, s.MinInitialSpacing)
	}
	if c.Alignment.NominalSideLength <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"nominal_side_length must be positive: got %g", c.Alignment.NominalSideLength)
	}
	if _, err := sequence.NewAssembler(sequence.Policy(c.Pipeline.Policy)); err != nil {
		return err
	}
	if c.Pipeline.Workers < 1 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"pipeline workers must be at least 1: got %d", c.Pipeline.Workers)
	}
	return nil
}

// Constraints maps the sequencing defaults into planner constraints.
func (c Config) Constraints() sequence.Constraints {
	return sequence.Constraints{
		MinInitial:    c.Sequencing.MinInitialSpacing,
		TargetInitial: c.Sequencing.TargetInitialSpacing,
		TargetFinal:   c.Sequencing.TargetFinalSpacing,
	}
}

// MachineOptions maps the machine section into AeroBasic options.
func (c Config) MachineOptions() nc.AeroBasicOptions {
	return nc.AeroBasicOptions{
		TransitionFeedrate:       c.Machine.TransitionFeedrate,
		ShapeFeedrate:            c.Machine.ShapeFeedrate,
		ReduceTransitionFeedrate: c.Machine.ReduceTransitionFeedrate,
		ReductionThresholdMM:     c.Machine.ReductionThresholdMM,
		ReductionFactor:          c.Machine.ReductionFactor,
		PulseCount:               c.Machine.PulseCount,
		FrequencyHz:              c.Machine.FrequencyHz,
	}
}
