package geometry

import (
	"math"

	"github.com/memslab/lasermill/pkg/errors"
)

// Offset returns the polygon whose boundary is moved inward by distance
// along each edge's inward normal, with mitered corners. The receiver
// must be counter-clockwise (guaranteed by NewPolygon).
//
// Fails with a DEGENERATE_OFFSET error when the requested distance would
// invert edge ordering or eliminate all interior area. Callers treat
// this as "no further passes possible", not as a fatal pipeline error.
func (pg Polygon) Offset(distance float64) (Polygon, error) {
	if distance < 0 {
		return Polygon{}, errors.New(errors.ErrCodeInvalidInput,
			"offset distance must be non-negative: got %g", distance)
	}
	if distance == 0 {
		return pg, nil
	}

	n := len(pg.pts)
	out := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		prev := pg.Vertex(i - 1)
		cur := pg.Vertex(i)
		next := pg.Vertex(i + 1)

		// Each vertex of the offset contour is the intersection of the
		// two adjacent edges shifted inward. For a counter-clockwise
		// boundary the interior lies to the left of each directed edge.
		a1, b1 := shiftInward(prev, cur, distance)
		a2, b2 := shiftInward(cur, next, distance)

		p, ok := lineIntersection(a1, b1, a2, b2)
		if !ok {
			// near-collinear edges: the shifted lines coincide
			p = a2
		}
		if len(out) == 0 || !p.Near(out[len(out)-1]) {
			out = append(out, p)
		}
	}
	if len(out) > 1 && out[0].Near(out[len(out)-1]) {
		out = out[:len(out)-1]
	}

	if len(out) < 3 {
		return Polygon{}, errors.New(errors.ErrCodeDegenerateOffset,
			"offset by %g leaves %d surviving vertices", distance, len(out))
	}

	area := signedArea(out)
	if area < Zeroish {
		return Polygon{}, errors.New(errors.ErrCodeDegenerateOffset,
			"offset by %g eliminates interior area (area=%g)", distance, area)
	}

	// Edge inversion: an edge whose direction flipped means the offset
	// passed through the medial axis locally.
	for i := range out {
		oldDir := pg.Vertex(i + 1).Sub(pg.Vertex(i))
		newDir := out[(i+1)%len(out)].Sub(out[i])
		if len(out) == n && oldDir.X*newDir.X+oldDir.Y*newDir.Y < 0 {
			return Polygon{}, errors.New(errors.ErrCodeDegenerateOffset,
				"offset by %g inverts edge %d", distance, i)
		}
	}

	if _, _, bad := findSelfIntersection(out); bad {
		return Polygon{}, errors.New(errors.ErrCodeDegenerateOffset,
			"offset by %g produces a self-intersecting contour", distance)
	}

	return Polygon{pts: out}, nil
}

// shiftInward translates segment ab by distance along its left normal.
func shiftInward(a, b Point, distance float64) (Point, Point) {
	d := b.Sub(a)
	n := d.Norm()
	if n < Zeroish {
		return a, b
	}
	// left normal of (dx, dy) is (-dy, dx)
	off := Point{-d.Y / n, d.X / n}.Mul(distance)
	return a.Add(off), b.Add(off)
}

// lineIntersection returns the intersection of the infinite lines
// through a1b1 and a2b2. ok is false for (near-)parallel lines.
func lineIntersection(a1, b1, a2, b2 Point) (Point, bool) {
	d1 := b1.Sub(a1)
	d2 := b2.Sub(a2)
	denom := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(denom) < Zeroish {
		return Point{}, false
	}
	t := ((a2.X-a1.X)*d2.Y - (a2.Y-a1.Y)*d2.X) / denom
	return a1.Add(d1.Mul(t)), true
}
