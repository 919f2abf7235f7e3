// Package pipeline orchestrates the full layout-to-program run:
// align → plan/generate per polygon → assemble → write.
//
// The CLI and the sequencing API both drive this package, so options,
// defaults, and caching live here rather than in either entry point.
//
// # Architecture
//
// A run has four stages:
//
//  1. Align: map the designed layout onto the mounted sample using the
//     measured corner displacement.
//  2. Sequence: plan spacings and generate the multi-pass hole
//     sequence for each polygon. Polygons are independent and run on a
//     worker pool; each polygon's log lines flush as one block.
//  3. Assemble: merge per-polygon sequences into the layout-wide
//     machining order under the selected policy.
//  4. Write: render the assembled order as an NC program, converting
//     coordinates into the writer's unit.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, l, pipeline.Options{
//	    Policy: "sequential",
//	    Align:  &pipeline.AlignOptions{DX: 1182, DY: 208},
//	})
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/memslab/lasermill/pkg/alignment"
	"github.com/memslab/lasermill/pkg/config"
	"github.com/memslab/lasermill/pkg/errors"
	"github.com/memslab/lasermill/pkg/sequence"
)

// DefaultWorkers is the per-polygon sequencing parallelism.
const DefaultWorkers = 4

// AlignOptions carries the measured corner displacement of the mounted
// sample. Nil AlignOptions skips the alignment stage.
type AlignOptions struct {
	// DX, DY are the measured displacement from the reference corner
	// to the diagonally opposite corner, in the working unit.
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`

	// NominalSideLength overrides the configured design side length.
	NominalSideLength float64 `json:"nominal_side_length,omitempty"`
}

// Options configures one pipeline run. The zero value takes every
// default from the run configuration. Supports JSON for API requests.
type Options struct {
	// Spacing constraints applied to every polygon. Zero fields fall
	// back to the configured defaults.
	MinInitialSpacing    float64 `json:"min_initial_spacing,omitempty"`
	TargetInitialSpacing float64 `json:"target_initial_spacing,omitempty"`
	TargetFinalSpacing   float64 `json:"target_final_spacing,omitempty"`

	// PerPolygon overrides constraints polygon-by-polygon. When set,
	// its length must equal the layout's polygon count; zero fields of
	// an entry fall back to the run-wide values above.
	PerPolygon []sequence.Constraints `json:"per_polygon,omitempty"`

	// Policy selects the assembly order (sequential, interleaved).
	Policy string `json:"policy,omitempty"`

	// Align maps the layout onto the mounted sample before
	// sequencing.
	Align *AlignOptions `json:"align,omitempty"`

	// Workers bounds per-polygon sequencing parallelism.
	Workers int `json:"workers,omitempty"`

	// Refresh bypasses cached sequences and recomputes.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and the archive.
	RunID string

	// Aligned reports whether the alignment stage ran, and Alignment
	// holds its outcome when it did.
	Aligned   bool
	Alignment alignment.Result

	// Sequences are the per-polygon hole sequences in machining order.
	Sequences []sequence.PolygonHoleSequence

	// Assembled is the layout-wide machining order.
	Assembled sequence.LayoutHoleSequence

	// Program is the rendered NC program.
	Program []byte

	// LogLines is the finished machining record.
	LogLines []string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks sequence cache usage.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NumPolygons  int
	NumHoles     int
	SequenceTime time.Duration
	AssembleTime time.Duration
	WriteTime    time.Duration
}

// CacheInfo tracks cache hits for the sequencing stage.
type CacheInfo struct {
	SequenceHits   int
	SequenceMisses int
}

// ValidateAndSetDefaults checks fields and binds defaults from the run
// configuration. Idempotent.
func (o *Options) ValidateAndSetDefaults(cfg config.Config) error {
	if o.validated {
		return nil
	}

	if o.MinInitialSpacing == 0 {
		o.MinInitialSpacing = cfg.Sequencing.MinInitialSpacing
	}
	if o.TargetInitialSpacing == 0 {
		o.TargetInitialSpacing = cfg.Sequencing.TargetInitialSpacing
	}
	if o.TargetFinalSpacing == 0 {
		o.TargetFinalSpacing = cfg.Sequencing.TargetFinalSpacing
	}
	if o.MinInitialSpacing <= 0 || o.TargetFinalSpacing <= 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"spacings must be positive: min_initial=%g target_final=%g",
			o.MinInitialSpacing, o.TargetFinalSpacing)
	}

	if o.Policy == "" {
		o.Policy = cfg.Pipeline.Policy
	}
	if _, err := sequence.NewAssembler(sequence.Policy(o.Policy)); err != nil {
		return err
	}

	if o.Align != nil && o.Align.NominalSideLength == 0 {
		o.Align.NominalSideLength = cfg.Alignment.NominalSideLength
	}

	if o.Workers == 0 {
		o.Workers = cfg.Pipeline.Workers
	}
	if o.Workers < 1 {
		o.Workers = DefaultWorkers
	}

	if o.Logger == nil {
		o.Logger = log.Default()
	}

	o.validated = true
	return nil
}

// constraintsFor resolves the planner constraints for one polygon,
// layering any per-polygon override on the run-wide values.
func (o *Options) constraintsFor(i int) sequence.Constraints {
	c := sequence.Constraints{
		MinInitial:    o.MinInitialSpacing,
		TargetInitial: o.TargetInitialSpacing,
		TargetFinal:   o.TargetFinalSpacing,
	}
	if i < len(o.PerPolygon) {
		override := o.PerPolygon[i]
		if override.MinInitial != 0 {
			c.MinInitial = override.MinInitial
		}
		if override.TargetInitial != 0 {
			c.TargetInitial = override.TargetInitial
		}
		if override.TargetFinal != 0 {
			c.TargetFinal = override.TargetFinal
		}
	}
	return c
}
