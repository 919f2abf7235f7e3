package geometry

import (
	"math"

	"github.com/memslab/lasermill/pkg/errors"
)

// Polygon is an ordered, closed sequence of at least three distinct
// vertices with strictly positive area and no self-intersection.
// Vertices are stored counter-clockwise regardless of input order.
// A Polygon is immutable once constructed; transformations return a
// new Polygon.
type Polygon struct {
	pts []Point
}

// NewPolygon validates and normalizes a vertex list into a Polygon.
// Consecutive vertices closer than Zeroish are merged. The input may be
// clockwise or counter-clockwise; the result is always counter-clockwise.
// Returns a MALFORMED_POLYGON error for fewer than three distinct
// vertices, non-positive area, or a self-intersecting boundary.
func NewPolygon(pts []Point) (Polygon, error) {
	merged := dedupe(pts)
	if len(merged) < 3 {
		return Polygon{}, errors.New(errors.ErrCodeMalformedPolygon,
			"polygon requires 3 or more distinct vertices: got %d", len(merged))
	}

	area := signedArea(merged)
	if math.Abs(area) < Zeroish {
		return Polygon{}, errors.New(errors.ErrCodeMalformedPolygon,
			"polygon has degenerate area %g", area)
	}
	if area < 0 {
		reverse(merged)
	}

	if i, j, ok := findSelfIntersection(merged); ok {
		return Polygon{}, errors.New(errors.ErrCodeMalformedPolygon,
			"polygon boundary self-intersects between edges %d and %d", i, j)
	}

	return Polygon{pts: merged}, nil
}

// MustPolygon is like NewPolygon but panics on invalid input. Intended
// for tests and hard-coded fixtures.
func MustPolygon(pts []Point) Polygon {
	pg, err := NewPolygon(pts)
	if err != nil {
		panic(err)
	}
	return pg
}

// NumVertices returns the vertex count.
func (pg Polygon) NumVertices() int { return len(pg.pts) }

// Vertex returns vertex i, wrapping modulo the vertex count.
func (pg Polygon) Vertex(i int) Point {
	n := len(pg.pts)
	return pg.pts[((i%n)+n)%n]
}

// Vertices returns a copy of the vertex list in counter-clockwise order.
func (pg Polygon) Vertices() []Point {
	out := make([]Point, len(pg.pts))
	copy(out, pg.pts)
	return out
}

// Perimeter returns the closed boundary length.
func (pg Polygon) Perimeter() float64 {
	var sum float64
	for i, p := range pg.pts {
		sum += p.Distance(pg.Vertex(i + 1))
	}
	return sum
}

// Area returns the enclosed area. Always positive for a valid Polygon.
func (pg Polygon) Area() float64 {
	return signedArea(pg.pts)
}

// Bounds returns the lower-left and upper-right corners of the
// axis-aligned bounding box.
func (pg Polygon) Bounds() (min, max Point) {
	min, max = pg.pts[0], pg.pts[0]
	for _, p := range pg.pts[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// MinDimension returns the smaller side of the bounding box. Used as the
// polygon's characteristic size when judging spacing feasibility.
func (pg Polygon) MinDimension() float64 {
	min, max := pg.Bounds()
	return math.Min(max.X-min.X, max.Y-min.Y)
}

// Centroid returns the area centroid of the polygon.
func (pg Polygon) Centroid() Point {
	var cx, cy, a float64
	for i, p := range pg.pts {
		q := pg.Vertex(i + 1)
		w := p.X*q.Y - q.X*p.Y
		cx += (p.X + q.X) * w
		cy += (p.Y + q.Y) * w
		a += w
	}
	a /= 2
	return Point{cx / (6 * a), cy / (6 * a)}
}

// Transform returns a new Polygon with every vertex mapped through t.
// The transform must be orientation- and simplicity-preserving (any
// similarity transform is); the result is not revalidated.
func (pg Polygon) Transform(t Transform) Polygon {
	out := make([]Point, len(pg.pts))
	for i, p := range pg.pts {
		out[i] = t.Apply(p)
	}
	if signedArea(out) < 0 {
		reverse(out)
	}
	return Polygon{pts: out}
}

// signedArea computes the shoelace area; positive for counter-clockwise
// vertex order.
func signedArea(pts []Point) float64 {
	var sum float64
	n := len(pts)
	for i, p := range pts {
		q := pts[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

func dedupe(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && p.Near(out[len(out)-1]) {
			continue
		}
		out = append(out, p)
	}
	// close the ring: first and last may also coincide
	if len(out) > 1 && out[0].Near(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

func reverse(pts []Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// findSelfIntersection scans all non-adjacent edge pairs for a crossing.
// Returns the offending edge indices when found.
func findSelfIntersection(pts []Point) (int, int, bool) {
	n := len(pts)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// skip edges sharing a vertex with edge i
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			c, d := pts[j], pts[(j+1)%n]
			if segmentsCross(a, b, c, d) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// segmentsCross reports whether segments ab and cd properly intersect,
// or touch anywhere other than a shared endpoint.
func segmentsCross(a, b, c, d Point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)

	if ((d1 > Zeroish && d2 < -Zeroish) || (d1 < -Zeroish && d2 > Zeroish)) &&
		((d3 > Zeroish && d4 < -Zeroish) || (d3 < -Zeroish && d4 > Zeroish)) {
		return true
	}

	// collinear touch counts as a crossing for simplicity purposes
	if math.Abs(d1) <= Zeroish && onSegment(c, d, a) {
		return true
	}
	if math.Abs(d2) <= Zeroish && onSegment(c, d, b) {
		return true
	}
	if math.Abs(d3) <= Zeroish && onSegment(a, b, c) {
		return true
	}
	if math.Abs(d4) <= Zeroish && onSegment(a, b, d) {
		return true
	}
	return false
}

// onSegment reports whether p lies within the bounding box of segment ab,
// assuming p is already known to be collinear with it.
func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X)-Zeroish <= p.X && p.X <= math.Max(a.X, b.X)+Zeroish &&
		math.Min(a.Y, b.Y)-Zeroish <= p.Y && p.Y <= math.Max(a.Y, b.Y)+Zeroish
}
