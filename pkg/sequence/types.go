// Package sequence plans and generates the laser machining hole
// sequences for polygon layouts.
//
// For every polygon it produces a multi-pass, staggered drilling order:
// pass 0 walks the designed boundary at a coarse spacing, subsequent
// passes walk successively inset contours at spacings that shrink
// pass-over-pass, and the final pass densifies the remaining interior.
// Per-polygon sequences are then assembled into one layout-wide order
// under a Sequential or Interleaved policy.
//
// All operations are deterministic pure functions over immutable
// inputs; distinct polygons may be processed concurrently.
package sequence

import "github.com/memslab/lasermill/pkg/geometry"

// Hole is a single ablation point. Immutable.
type Hole struct {
	Position geometry.Point `json:"position"`
	Polygon  int            `json:"polygon"` // owning polygon index in the layout
	Pass     int            `json:"pass"`    // pass index within that polygon, 0 = outermost
	Index    int            `json:"index"`   // local index within the pass
}

// Pass is one offset level of a polygon's machining sequence. Holes are
// ordered by traversal direction around the contour so the stage path
// stays physically continuous.
type Pass struct {
	Index        int              `json:"index"`         // 0 = outermost, first machined
	Spacing      float64          `json:"spacing"`       // target hole spacing for this pass
	Contour      geometry.Polygon `json:"contour"`       // primary offset contour holes are placed on
	StaggerPhase float64          `json:"stagger_phase"` // starting arc-length offset, alternates between passes
	Holes        []Hole           `json:"holes"`
}

// PolygonHoleSequence is the ordered sequence of holes for one polygon,
// grouped by pass. Produced once per polygon per run, read-only after.
type PolygonHoleSequence struct {
	Polygon int    `json:"polygon"`
	Passes  []Pass `json:"passes"`
}

// NumHoles returns the total hole count across all passes.
func (s PolygonHoleSequence) NumHoles() int {
	var n int
	for _, p := range s.Passes {
		n += len(p.Holes)
	}
	return n
}

// Holes returns the flattened hole order: strictly increasing pass
// index, monotonic arc length within each pass.
func (s PolygonHoleSequence) Holes() []Hole {
	out := make([]Hole, 0, s.NumHoles())
	for _, p := range s.Passes {
		out = append(out, p.Holes...)
	}
	return out
}

// LayoutHoleSequence is the assembled machining order for a whole
// layout, the terminal artifact consumed by the numerical-control
// writer.
type LayoutHoleSequence struct {
	Policy Policy `json:"policy"`
	Holes  []Hole `json:"holes"`
}

// Len returns the number of holes in the assembled sequence.
func (s LayoutHoleSequence) Len() int { return len(s.Holes) }
