package sequence

import (
	"math"

	"github.com/memslab/lasermill/pkg/geometry"
)

// Generate emits the ordered hole sequence for a single polygon.
//
// For each pass i with spacing s(i), the pass contour is the polygon
// offset inward by the cumulative depth of all spacings up to i, and
// holes are placed along it at arc-length intervals of s(i). The
// starting arc-length offset alternates between even and odd passes by
// half a spacing, so holes of consecutive passes never align radially;
// collinear ablation points across passes are what seed fractures in
// prestressed membranes.
//
// Once the spacing reaches the final target, the remaining interior is
// densified: the contour keeps shrinking by the final spacing until the
// offset engine reports degeneracy or the residual area drops below
// finalSpacing². Offset degeneracy is recovered here and never
// surfaces to callers; it only truncates the pass list.
//
// Holes are produced in strictly increasing pass order and monotonic
// arc length within each contour, keeping the stage path continuous.
func Generate(polygonID int, pg geometry.Polygon, plan Plan) PolygonHoleSequence {
	seq := PolygonHoleSequence{Polygon: polygonID}
	if plan.NumPasses() == 0 {
		return seq
	}

	final := plan.Final()
	depth := 0.0
	contour := pg
	parity := 0

	for i, spacing := range plan.Spacings {
		if i > 0 {
			d := depth + spacing
			c, err := pg.Offset(d)
			if err != nil {
				// Degenerate offset: no further boundary passes are
				// possible, the residual interior is closed below.
				break
			}
			depth, contour = d, c
		}

		pass := Pass{Index: len(seq.Passes), Spacing: spacing, Contour: contour}
		pass.StaggerPhase, pass.Holes = ringHoles(polygonID, pass.Index, 0, contour, spacing, parity)
		seq.Passes = append(seq.Passes, pass)
		parity++
	}

	// Final dense pass: fill the interior, not just the last contour.
	// When the pass list was truncated early the dense holes form their
	// own closing pass at the final spacing.
	addedDense := false
	last := &seq.Passes[len(seq.Passes)-1]
	if last.Spacing != final {
		pass := Pass{Index: len(seq.Passes), Spacing: final, Contour: contour}
		seq.Passes = append(seq.Passes, pass)
		last = &seq.Passes[len(seq.Passes)-1]
		addedDense = true
	}
	for {
		d := depth + final
		c, err := pg.Offset(d)
		if err != nil || c.Area() < final*final {
			break
		}
		depth = d
		_, holes := ringHoles(polygonID, last.Index, len(last.Holes), c, final, parity)
		last.Holes = append(last.Holes, holes...)
		parity++
	}
	if addedDense && len(last.Holes) == 0 {
		seq.Passes = seq.Passes[:len(seq.Passes)-1]
	}

	return seq
}

// ringHoles places holes along one contour at arc-length intervals of
// spacing. Odd parities start half an interval into the contour, which
// implements the stagger rule. Returns the phase used and the holes in
// traversal order.
func ringHoles(polygonID, passIndex, indexBase int, contour geometry.Polygon, spacing float64, parity int) (float64, []Hole) {
	perim := contour.Perimeter()
	n := int(math.Ceil(perim/spacing - 1e-9))
	if n < 1 {
		n = 1
	}
	actual := perim / float64(n)

	phase := 0.0
	if parity%2 == 1 {
		phase = actual / 2
	}

	positions := make([]float64, n)
	for k := range positions {
		positions[k] = phase + float64(k)*actual
	}

	pts := pointsAtArcLengths(contour, positions)
	holes := make([]Hole, n)
	for k, pt := range pts {
		holes[k] = Hole{
			Position: pt,
			Polygon:  polygonID,
			Pass:     passIndex,
			Index:    indexBase + k,
		}
	}
	return phase, holes
}

// pointsAtArcLengths maps monotonically increasing arc-length positions
// (all within one revolution of the contour) to boundary points, in a
// single sweep over the edges.
func pointsAtArcLengths(contour geometry.Polygon, positions []float64) []geometry.Point {
	verts := contour.Vertices()
	n := len(verts)

	out := make([]geometry.Point, 0, len(positions))
	edge := 0
	walked := 0.0 // arc length at the start of the current edge
	edgeLen := verts[0].Distance(verts[1%n])

	for _, pos := range positions {
		for pos > walked+edgeLen {
			walked += edgeLen
			edge++
			edgeLen = verts[edge%n].Distance(verts[(edge+1)%n])
		}
		a := verts[edge%n]
		b := verts[(edge+1)%n]
		out = append(out, a.Towards(b, pos-walked))
	}
	return out
}
