// Package alignment derives the compensation transform that maps a
// designed layout onto a physically mounted, imprecisely sized square
// membrane.
//
// The operator measures the displacement (dx, dy) from the membrane's
// bottom-left corner to its bottom-right corner with the stage. That
// single measurement fixes all three components of a similarity
// transform: the actual side length (scale), the mounting angle
// (rotation), and the stage origin (translation to the bottom-right
// corner, where the stage is zeroed). The layout must be designed
// centered at (0,0).
package alignment

import (
	"fmt"
	"math"

	"github.com/memslab/lasermill/pkg/errors"
	"github.com/memslab/lasermill/pkg/geometry"
)

// Result holds the derived compensation parameters and the composed
// transform. Produced once per run by Align; read-only thereafter.
type Result struct {
	// Angle is the membrane mounting angle θ in radians, derived from
	// the corner displacement. Always within [-π/4, π/4].
	Angle float64
	// ActualSide is the measured membrane side length.
	ActualSide float64
	// Scale is ActualSide divided by the nominal side length.
	Scale float64
	// Translation is the vector from the bottom-right corner to the
	// membrane center: x ≤ 0 and y ≥ 0 for every valid angle.
	Translation geometry.Point
	// Transform is scale, then rotation, then translation, in that
	// order. Scaling and rotation act about (0,0), so translation must
	// come last.
	Transform geometry.Transform
}

// Align derives the compensation transform for a square membrane of the
// given nominal side length from the measured bottom-left to
// bottom-right corner displacement. All three arguments share the
// working length unit.
//
// Fails with a CORNER_SELECTION error when the displacement implies a
// mounting angle outside ±45°: that means the wrong pair of corners was
// measured, and wrapping the angle would machine the wrong region.
func Align(nominalSide, dx, dy float64) (Result, error) {
	if nominalSide <= 0 {
		return Result{}, errors.New(errors.ErrCodeInvalidInput,
			"nominal side length must be positive: got %g", nominalSide)
	}

	angle := math.Atan2(dy, dx)
	if angle < -math.Pi/4 || angle > math.Pi/4 {
		return Result{}, errors.New(errors.ErrCodeCornerSelection,
			"membrane angle %.2f° outside ±45°; swap the measured corners and re-measure",
			angle*180/math.Pi)
	}

	side := math.Hypot(dx, dy)
	if side < 1e-12 {
		return Result{}, errors.New(errors.ErrCodeInvalidInput,
			"corner displacement is zero; measure dx and dy first")
	}
	scale := side / nominalSide

	// The bottom-right corner sits half a diagonal from the center, at
	// 45°−θ above the negative x axis once the membrane is tilted by θ.
	beta := math.Pi/4 - angle
	halfDiag := side * math.Sqrt2 / 2
	v := geometry.Point{
		X: -halfDiag * math.Cos(beta),
		Y: halfDiag * math.Sin(beta),
	}
	if v.X > 0 || v.Y < 0 {
		// Unreachable for angles in range; a violation means a sign
		// error upstream and must not be machined.
		return Result{}, errors.New(errors.ErrCodeInternal,
			"corner-to-center vector (%g, %g) has invalid signs for angle %.2f°",
			v.X, v.Y, angle*180/math.Pi)
	}

	return Result{
		Angle:       angle,
		ActualSide:  side,
		Scale:       scale,
		Translation: v,
		Transform: geometry.Scale(scale, scale).
			Then(geometry.Rotate(angle)).
			Then(geometry.Translate(v.X, v.Y)),
	}, nil
}

// Report returns the human-readable alignment record appended to the
// run log.
func (r Result) Report() []string {
	return []string{
		fmt.Sprintf("actual membrane side length: %.6g", r.ActualSide),
		fmt.Sprintf("scale correction: %.4f%%", (r.Scale-1)*100),
		fmt.Sprintf("rotation: %.4f deg", r.Angle*180/math.Pi),
		fmt.Sprintf("bottom-right corner to center: (%.6g, %.6g)", r.Translation.X, r.Translation.Y),
	}
}
