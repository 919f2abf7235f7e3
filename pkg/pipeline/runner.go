package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/memslab/lasermill/pkg/alignment"
	"github.com/memslab/lasermill/pkg/archive"
	"github.com/memslab/lasermill/pkg/cache"
	"github.com/memslab/lasermill/pkg/config"
	"github.com/memslab/lasermill/pkg/errors"
	"github.com/memslab/lasermill/pkg/geometry"
	"github.com/memslab/lasermill/pkg/layout"
	"github.com/memslab/lasermill/pkg/nc"
	"github.com/memslab/lasermill/pkg/observability"
	"github.com/memslab/lasermill/pkg/runlog"
	"github.com/memslab/lasermill/pkg/sequence"
	"github.com/memslab/lasermill/pkg/units"
)

// Runner executes pipeline runs with sequence caching. It is stateless
// apart from its collaborators; one Runner serves concurrent runs.
type Runner struct {
	Config  config.Config
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Archive archive.Store // optional run-report sink
}

// NewRunner creates a runner. A nil cache disables caching, a nil
// keyer selects the default keyer.
func NewRunner(cfg config.Config, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Config: cfg, Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete align → sequence → assemble → write
// pipeline over a layout.
func (r *Runner) Execute(ctx context.Context, l layout.Layout, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(r.Config); err != nil {
		return nil, err
	}
	if opts.PerPolygon != nil && len(opts.PerPolygon) != l.NumPolygons() {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"have %d per-polygon constraints for %d polygons",
			len(opts.PerPolygon), l.NumPolygons())
	}

	started := time.Now()
	result := &Result{RunID: uuid.NewString()}
	record := runlog.New()
	record.Echo(opts.Logger)
	record.Appendf("run: %s", result.RunID)

	// Stage 1: Align
	if opts.Align != nil {
		aligned, err := r.alignLayout(l, *opts.Align, record)
		if err != nil {
			return nil, err
		}
		l = aligned.layout
		result.Aligned = true
		result.Alignment = aligned.outcome
		opts.Logger.Info("aligned layout",
			"angle_rad", aligned.outcome.Angle,
			"scale", aligned.outcome.Scale)
	}

	// Stage 2: Sequence per polygon
	seqStart := time.Now()
	seqs, cacheInfo, err := r.sequenceAll(ctx, l, opts, record)
	if err != nil {
		return nil, err
	}
	result.Sequences = seqs
	result.CacheInfo = cacheInfo
	result.Stats.SequenceTime = time.Since(seqStart)
	result.Stats.NumPolygons = l.NumPolygons()
	opts.Logger.Info("sequenced polygons",
		"polygons", l.NumPolygons(),
		"cache_hits", cacheInfo.SequenceHits,
		"duration", result.Stats.SequenceTime)

	// Stage 3: Assemble
	assembleStart := time.Now()
	observability.Pipeline().OnAssembleStart(ctx, opts.Policy, l.NumPolygons())
	assembler, err := sequence.NewAssembler(sequence.Policy(opts.Policy))
	if err != nil {
		observability.Pipeline().OnAssembleComplete(ctx, opts.Policy, 0, time.Since(assembleStart), err)
		return nil, err
	}
	result.Assembled = assembler.Assemble(seqs)
	result.Stats.AssembleTime = time.Since(assembleStart)
	observability.Pipeline().OnAssembleComplete(ctx, opts.Policy, result.Assembled.Len(), result.Stats.AssembleTime, nil)
	result.Stats.NumHoles = result.Assembled.Len()
	record.Appendf("assembled %d holes under %s policy",
		result.Assembled.Len(), opts.Policy)
	opts.Logger.Info("assembled sequence",
		"policy", opts.Policy,
		"holes", result.Assembled.Len(),
		"duration", result.Stats.AssembleTime)

	// Stage 4: Write
	writeStart := time.Now()
	observability.Pipeline().OnProgramStart(ctx, "aerobasic", result.Assembled.Len())
	program, err := r.renderProgram(l, result.Assembled, record)
	if err != nil {
		observability.Pipeline().OnProgramComplete(ctx, "aerobasic", 0, time.Since(writeStart), err)
		return nil, err
	}
	result.Program = program
	result.Stats.WriteTime = time.Since(writeStart)
	observability.Pipeline().OnProgramComplete(ctx, "aerobasic", len(program), result.Stats.WriteTime, nil)
	opts.Logger.Info("rendered program",
		"bytes", len(program),
		"duration", result.Stats.WriteTime)

	result.LogLines = record.Lines()
	r.archiveRun(ctx, result, started)
	return result, nil
}

type alignedLayout struct {
	layout  layout.Layout
	outcome alignment.Result
}

// alignLayout computes and applies the mount compensation transform.
func (r *Runner) alignLayout(l layout.Layout, opts AlignOptions, record runlog.Log) (alignedLayout, error) {
	outcome, err := alignment.Align(opts.NominalSideLength, opts.DX, opts.DY)
	if err != nil {
		return alignedLayout{}, err
	}
	for _, line := range outcome.Report() {
		record.Appendf("%s", line)
	}
	return alignedLayout{layout: l.Transform(outcome.Transform), outcome: outcome}, nil
}

// sequenceAll plans and generates every polygon's sequence on a worker
// pool. Polygons are independent; each worker buffers its log lines
// and flushes them as one block.
func (r *Runner) sequenceAll(ctx context.Context, l layout.Layout, opts Options, record *runlog.Run) ([]sequence.PolygonHoleSequence, CacheInfo, error) {
	n := l.NumPolygons()
	seqs := make([]sequence.PolygonHoleSequence, n)
	hits := make([]bool, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			rec := record.Recorder(fmt.Sprintf("polygon %d", i+1))
			defer rec.Flush()

			seq, hit, err := r.sequenceOne(ctx, l.Polygon(i), i, opts, rec)
			if err != nil {
				return errors.Wrap(errors.GetCode(err), err,
					"hole sequence could not be generated for polygon %d", i+1)
			}
			seqs[i] = seq
			hits[i] = hit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, CacheInfo{}, err
	}

	var info CacheInfo
	for _, hit := range hits {
		if hit {
			info.SequenceHits++
		} else {
			info.SequenceMisses++
		}
	}
	return seqs, info, nil
}

// sequenceOne plans and generates one polygon's sequence, consulting
// the cache first. The cache key covers the aligned vertices and the
// resolved constraints, so any change to either recomputes.
func (r *Runner) sequenceOne(ctx context.Context, pg geometry.Polygon, i int, opts Options, rec runlog.Log) (sequence.PolygonHoleSequence, bool, error) {
	start := time.Now()
	observability.Pipeline().OnSequenceStart(ctx, i, len(pg.Vertices()))
	c := opts.constraintsFor(i)
	key := r.Keyer.SequenceKey(pg.Vertices(), cache.SequenceKeyOpts{
		MinInitial:    c.MinInitial,
		TargetInitial: c.TargetInitial,
		TargetFinal:   c.TargetFinal,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if seq, err := unmarshalSequence(data); err == nil {
				// Identical shapes cache-hit across layout positions;
				// rebind the owner index.
				seq.Polygon = i
				for pi := range seq.Passes {
					for hi := range seq.Passes[pi].Holes {
						seq.Passes[pi].Holes[hi].Polygon = i
					}
				}
				rec.Appendf("sequence restored from cache (%d holes)", seq.NumHoles())
				observability.Cache().OnCacheHit(ctx, "sequence")
				observability.Pipeline().OnSequenceComplete(ctx, i, seq.NumHoles(), time.Since(start), nil)
				return seq, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "sequence")
	}

	plan, err := sequence.PlanSpacings(pg, c)
	if err != nil {
		observability.Pipeline().OnSequenceComplete(ctx, i, 0, time.Since(start), err)
		return sequence.PolygonHoleSequence{}, false, err
	}
	rec.Appendf("target final hole spacing: %g", c.TargetFinal)
	rec.Appendf("planned %d passes, spacings %v", plan.NumPasses(), plan.Spacings)

	seq := sequence.Generate(i, pg, plan)
	rec.Appendf("generated %d holes over %d passes", seq.NumHoles(), len(seq.Passes))

	if data, err := marshalSequence(seq); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLSequence)
		observability.Cache().OnCacheSet(ctx, "sequence", len(data))
	}
	observability.Pipeline().OnSequenceComplete(ctx, i, seq.NumHoles(), time.Since(start), nil)
	return seq, false, nil
}

// renderProgram converts the assembled order into the writer's unit
// and renders the AeroBasic program.
func (r *Runner) renderProgram(l layout.Layout, assembled sequence.LayoutHoleSequence, record runlog.Log) ([]byte, error) {
	writer := nc.NewAeroBasic(r.Config.MachineOptions(), record)
	factor, err := units.ConversionFactor(l.Unit(), writer.LengthUnit())
	if err != nil {
		return nil, err
	}
	for _, hole := range assembled.Holes {
		writer.AddHole(hole.Position.X*factor, hole.Position.Y*factor)
	}

	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render program")
	}
	return buf.Bytes(), nil
}

// archiveRun pushes the run report when an archive is configured.
// Archive failures are logged, never fatal: the program on disk is the
// run's primary artifact.
func (r *Runner) archiveRun(ctx context.Context, result *Result, started time.Time) {
	if r.Archive == nil {
		return
	}
	report := archive.RunReport{
		RunID:       result.RunID,
		StartedAt:   started,
		FinishedAt:  time.Now(),
		Policy:      string(result.Assembled.Policy),
		NumPolygons: result.Stats.NumPolygons,
		NumHoles:    result.Stats.NumHoles,
		LogLines:    result.LogLines,
	}
	if err := r.Archive.Put(ctx, report); err != nil {
		r.Logger.Warn("archive push failed", "run", result.RunID, "err", err)
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// marshalSequence encodes a sequence for the cache.
func marshalSequence(seq sequence.PolygonHoleSequence) ([]byte, error) {
	return json.Marshal(seq)
}

// unmarshalSequence decodes a cached sequence.
func unmarshalSequence(data []byte) (sequence.PolygonHoleSequence, error) {
	var seq sequence.PolygonHoleSequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return sequence.PolygonHoleSequence{}, err
	}
	return seq, nil
}
