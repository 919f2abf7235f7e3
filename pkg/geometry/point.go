// Package geometry provides the planar primitives used by the machining
// pipeline: points, validated simple polygons, similarity transforms,
// and the inward polygon offset engine.
//
// The conventions for this package are x increases to the right, and
// y increases up the page. Polygon vertices are normalized to
// counter-clockwise order on construction, and all coordinates are
// expressed in the run's working length unit.
package geometry

import "math"

// Zeroish merges points and guards rounding error comparisons. Layout
// coordinates are typically micrometers, so anything below a femtometer
// apart is the same point.
const Zeroish = 1e-9

// Point holds a 2d coordinate value. X increases to the right. Y
// increases up the page.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p shifted by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul returns p scaled by f.
func (p Point) Mul(f float64) Point { return Point{p.X * f, p.Y * f} }

// Norm returns the Euclidean length of p treated as a vector.
func (p Point) Norm() float64 { return math.Hypot(p.X, p.Y) }

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Towards returns the point at the given distance from p on the ray
// through q. The distance may exceed |pq|.
func (p Point) Towards(q Point, distance float64) Point {
	v := q.Sub(p)
	n := v.Norm()
	if n < Zeroish {
		return p
	}
	return p.Add(v.Mul(distance / n))
}

// Near reports whether p and q coincide within Zeroish.
func (p Point) Near(q Point) bool {
	return math.Abs(p.X-q.X) < Zeroish && math.Abs(p.Y-q.Y) < Zeroish
}

// cross returns the z-component of (b-a) × (c-a). Positive when the
// triple a,b,c turns counter-clockwise.
func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
