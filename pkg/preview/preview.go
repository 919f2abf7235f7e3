// Package preview renders layouts and their hole sequences as SVG for
// visual inspection before a run. Passes are colored in order so the
// staggered rings are visible at a glance.
package preview

import (
	"fmt"
	"io"
	"os"

	svg "github.com/ajstarks/svgo/float"

	"github.com/memslab/lasermill/pkg/geometry"
	"github.com/memslab/lasermill/pkg/layout"
	"github.com/memslab/lasermill/pkg/sequence"
)

// passPalette cycles through pass colors, initial pass first.
var passPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728",
	"#9467bd", "#8c564b", "#e377c2", "#17becf",
}

// Options controls the rendering.
type Options struct {
	// MarginFactor pads the bounding box on every side as a fraction
	// of its larger dimension.
	MarginFactor float64

	// HoleRadius is the drawn hole radius in layout coordinates.
	// Zero picks a radius from the smallest final spacing.
	HoleRadius float64

	// Width is the SVG pixel width; height follows the aspect ratio.
	Width float64
}

// DefaultOptions returns the standard preview settings.
func DefaultOptions() Options {
	return Options{MarginFactor: 0.2, Width: 1024}
}

// Render draws the layout's polygons and the per-polygon hole
// sequences. seqs may be nil to preview outlines only; otherwise it
// must carry one sequence per polygon.
func Render(w io.Writer, l layout.Layout, seqs []sequence.PolygonHoleSequence, opts Options) error {
	if seqs != nil && len(seqs) != l.NumPolygons() {
		return fmt.Errorf("have %d sequences for %d polygons", len(seqs), l.NumPolygons())
	}
	if opts.MarginFactor < 0 {
		opts.MarginFactor = 0
	}
	if opts.Width <= 0 {
		opts.Width = DefaultOptions().Width
	}

	min, max := l.Bounds()
	span := max.Sub(min)
	larger := span.X
	if span.Y > larger {
		larger = span.Y
	}
	margin := opts.MarginFactor * larger
	width := span.X + 2*margin
	height := span.Y + 2*margin

	radius := opts.HoleRadius
	if radius <= 0 {
		radius = holeRadiusFor(seqs, larger)
	}

	canvas := svg.New(w)
	canvas.Startview(opts.Width, opts.Width*height/width,
		min.X-margin, -(max.Y + margin), width, height)
	// Flip to y-up machining coordinates.
	canvas.Gtransform("scale(1,-1)")

	for i := 0; i < l.NumPolygons(); i++ {
		drawOutline(canvas, l.Polygon(i))
	}
	for _, seq := range seqs {
		for _, pass := range seq.Passes {
			style := fmt.Sprintf("fill:%s;stroke:none", passPalette[pass.Index%len(passPalette)])
			for _, hole := range pass.Holes {
				canvas.Circle(hole.Position.X, hole.Position.Y, radius, style)
			}
		}
	}

	canvas.Gend()
	canvas.End()
	return nil
}

// RenderFile renders to an SVG file.
func RenderFile(path string, l layout.Layout, seqs []sequence.PolygonHoleSequence, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Render(f, l, seqs, opts)
}

func drawOutline(canvas *svg.SVG, pg geometry.Polygon) {
	verts := pg.Vertices()
	xs := make([]float64, len(verts))
	ys := make([]float64, len(verts))
	for i, v := range verts {
		xs[i] = v.X
		ys[i] = v.Y
	}
	canvas.Polygon(xs, ys, "fill:none;stroke:#333;stroke-width:0.5%")
}

// holeRadiusFor derives a visible hole radius: half the smallest final
// spacing, falling back to a fraction of the layout size for
// outline-only previews.
func holeRadiusFor(seqs []sequence.PolygonHoleSequence, larger float64) float64 {
	radius := 0.0
	for _, seq := range seqs {
		if n := len(seq.Passes); n > 0 {
			final := seq.Passes[n-1].Spacing
			if radius == 0 || final/2 < radius {
				radius = final / 2
			}
		}
	}
	if radius == 0 {
		radius = larger / 200
	}
	return radius
}
