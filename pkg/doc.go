// Package pkg provides the core libraries for Lasermill hole sequence generation.
//
// # Overview
//
// Lasermill turns polygon layouts of prestressed thin-film membranes into
// staggered multi-pass hole sequences and machine programs for the laser
// machining stage. The pkg directory is organized into four main areas:
//
//  1. Domain logic (geometry, spacing planning, sequencing, alignment)
//  2. Machine output (numerical-control program writers, SVG previews)
//  3. Infrastructure (caching, run archive, run logs, configuration)
//  4. Orchestration (the align → sequence → assemble → write pipeline)
//
// # Architecture
//
// The typical data flow through Lasermill:
//
//	Layout file (polygon vertices + unit)
//	         ↓
//	    [layout] package (parse, order, transform)
//	         ↓
//	    [alignment] package (mount compensation, optional)
//	         ↓
//	    [sequence] package (plan spacings, generate passes, assemble)
//	         ↓
//	    [nc] package (AeroBasic program)
//
// # Quick Start
//
// Plan and generate the hole sequence for one polygon:
//
//	import (
//	    "github.com/memslab/lasermill/pkg/geometry"
//	    "github.com/memslab/lasermill/pkg/sequence"
//	)
//
//	// 1. Build the polygon
//	pg, _ := geometry.NewPolygon([]geometry.Point{
//	    {X: 0, Y: 0}, {X: 1200, Y: 0}, {X: 1200, Y: 1200}, {X: 0, Y: 1200},
//	})
//
//	// 2. Plan the per-pass spacing schedule
//	plan, _ := sequence.PlanSpacings(pg, sequence.Constraints{
//	    MinInitial:  2.0,
//	    TargetFinal: 0.5,
//	})
//
//	// 3. Generate the staggered multi-pass sequence
//	seq := sequence.Generate(0, pg, plan)
//
//	// 4. Assemble a whole layout under a policy
//	assembler, _ := sequence.NewAssembler(sequence.PolicySequential)
//	assembled := assembler.Assemble([]sequence.PolygonHoleSequence{seq})
//
// # Main Packages
//
// ## Domain Logic
//
// [geometry] - Points, transforms, and simple polygons with inward offsetting.
// The offset engine shrinks contours edge-by-edge and recovers from
// degenerate self-intersections, which drives the per-pass contours.
//
// [sequence] - Spacing planning (halving schedules from an initial to a
// final spacing), staggered hole generation per pass, and layout-wide
// assembly under Sequential or Interleaved policies.
//
// [alignment] - Mount compensation: derives the rotation, scale, and
// translation of a square membrane from a measured corner displacement.
//
// [layout] - Layout files (vertices, machining order, length unit) and the
// in-memory layout with bounds and transforms.
//
// ## Machine Output
//
// [nc] - Numerical-control program writers. The AeroBasic writer emits the
// drilling program consumed by the stage controller, including per-hole
// subroutine calls and feedrate reduction on long transitions.
//
// [preview] - SVG previews of layouts and their hole sequences, with holes
// colored by pass.
//
// ## Infrastructure
//
// [cache] - Content-addressed sequence cache with file, Redis, and null
// backends. Keys cover the polygon vertices and the resolved constraints.
//
// [archive] - Run report archive with MongoDB and in-memory backends.
//
// [runlog] - Ordered per-run machining logs, preserved verbatim in the
// archive and next to the program on disk.
//
// [config] - TOML run configuration with validated defaults.
//
// [units] - Length unit names and conversion factors.
//
// [errors] - Coded domain errors shared across packages and mapped to HTTP
// statuses by the API.
//
// [observability] - Optional instrumentation hooks for pipeline and cache
// events.
//
// ## Orchestration
//
// [pipeline] - The complete align → sequence → assemble → write pipeline
// used by the CLI and the HTTP API. Ensures consistent behavior across all
// entry points.
//
// # Common Workflows
//
// Run the full pipeline over a layout file:
//
//	l, _ := layout.ReadLayoutFile("chip.json")
//	runner := pipeline.NewRunner(config.Default(), nil, nil, nil)
//	result, _ := runner.Execute(ctx, l, pipeline.Options{})
//	os.WriteFile("chip.pgm", result.Program, 0o644)
//
// Align to a measured mount before sequencing:
//
//	result, _ := runner.Execute(ctx, l, pipeline.Options{
//	    Align: &pipeline.AlignOptions{DX: 1182.2, DY: 208.5},
//	})
//
// Preview the sequences as SVG:
//
//	preview.RenderFile("chip.svg", l, result.Sequences, preview.DefaultOptions())
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...               # All tests
//	go test ./pkg/sequence/...      # Specific package
//	go test -run Example            # Examples only
//
// [geometry]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/geometry
// [sequence]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/sequence
// [alignment]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/alignment
// [layout]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/layout
// [nc]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/nc
// [preview]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/preview
// [cache]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/cache
// [archive]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/archive
// [runlog]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/runlog
// [config]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/config
// [units]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/units
// [errors]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/errors
// [observability]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/memslab/lasermill/pkg/pipeline
package pkg
