// Package layout models the set of polygons to be machined and its
// file boundary. A layout carries its length unit (a scale factor with
// respect to meters) and its polygons in machining order; the core
// never converts units internally, only the read/write boundaries do.
package layout

import (
	"sort"

	"github.com/memslab/lasermill/pkg/errors"
	"github.com/memslab/lasermill/pkg/geometry"
)

// Layout is an ordered set of validated polygons sharing one length
// unit. Immutable; transformations return a new Layout.
type Layout struct {
	unit     float64
	polygons []geometry.Polygon
}

// New builds a layout from polygons already in machining order.
func New(unit float64, polygons []geometry.Polygon) (Layout, error) {
	if unit <= 0 {
		return Layout{}, errors.New(errors.ErrCodeUnitMismatch,
			"layout unit must be a positive scale factor: got %g", unit)
	}
	if len(polygons) == 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidLayout, "layout has no polygons")
	}
	return Layout{unit: unit, polygons: polygons}, nil
}

// FromVertices validates raw vertex lists into a layout. order is
// either nil (input order is the machining order) or a permutation of
// 1..N assigning each polygon its machining position. Every polygon is
// validated before any sequencing work begins, so a batch containing
// one bad polygon never produces partial sequences.
func FromVertices(unit float64, vertexLists [][]geometry.Point, order []int) (Layout, error) {
	polys := make([]geometry.Polygon, len(vertexLists))
	for i, vl := range vertexLists {
		pg, err := geometry.NewPolygon(vl)
		if err != nil {
			return Layout{}, errors.Wrap(errors.ErrCodeMalformedPolygon, err,
				"polygon %d is invalid", i+1)
		}
		polys[i] = pg
	}

	if order != nil {
		ranked, err := applyOrder(polys, order)
		if err != nil {
			return Layout{}, err
		}
		polys = ranked
	}

	return New(unit, polys)
}

// applyOrder reorders polygons by their machining-order index, which
// must be a permutation of 1..N.
func applyOrder(polygons []geometry.Polygon, order []int) ([]geometry.Polygon, error) {
	n := len(polygons)
	if len(order) != n {
		return nil, errors.New(errors.ErrCodeMalformedPolygon,
			"machining order has %d entries for %d polygons", len(order), n)
	}
	seen := make([]bool, n+1)
	for i, idx := range order {
		if idx < 1 || idx > n {
			return nil, errors.New(errors.ErrCodeMalformedPolygon,
				"polygon %d: machining order %d outside 1..%d", i+1, idx, n)
		}
		if seen[idx] {
			return nil, errors.New(errors.ErrCodeMalformedPolygon,
				"duplicate machining order index %d", idx)
		}
		seen[idx] = true
	}

	type ranked struct {
		rank int
		pg   geometry.Polygon
	}
	rs := make([]ranked, n)
	for i := range polygons {
		rs[i] = ranked{rank: order[i], pg: polygons[i]}
	}
	sort.Slice(rs, func(a, b int) bool { return rs[a].rank < rs[b].rank })

	out := make([]geometry.Polygon, n)
	for i, r := range rs {
		out[i] = r.pg
	}
	return out, nil
}

// Unit returns the layout's length unit as a factor relative to meters.
func (l Layout) Unit() float64 { return l.unit }

// NumPolygons returns the polygon count.
func (l Layout) NumPolygons() int { return len(l.polygons) }

// Polygon returns the polygon at machining position i.
func (l Layout) Polygon(i int) geometry.Polygon { return l.polygons[i] }

// Polygons returns a copy of the polygons in machining order.
func (l Layout) Polygons() []geometry.Polygon {
	out := make([]geometry.Polygon, len(l.polygons))
	copy(out, l.polygons)
	return out
}

// Transform returns a new layout with every polygon mapped through t.
func (l Layout) Transform(t geometry.Transform) Layout {
	out := make([]geometry.Polygon, len(l.polygons))
	for i, pg := range l.polygons {
		out[i] = pg.Transform(t)
	}
	return Layout{unit: l.unit, polygons: out}
}

// Bounds returns the bounding box over all polygons.
func (l Layout) Bounds() (min, max geometry.Point) {
	min, max = l.polygons[0].Bounds()
	for _, pg := range l.polygons[1:] {
		pmin, pmax := pg.Bounds()
		if pmin.X < min.X {
			min.X = pmin.X
		}
		if pmin.Y < min.Y {
			min.Y = pmin.Y
		}
		if pmax.X > max.X {
			max.X = pmax.X
		}
		if pmax.Y > max.Y {
			max.Y = pmax.Y
		}
	}
	return min, max
}
