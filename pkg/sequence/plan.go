package sequence

import (
	"math"

	"github.com/memslab/lasermill/pkg/errors"
	"github.com/memslab/lasermill/pkg/geometry"
)

// Constraints bounds the hole spacing for one polygon. Zero-valued
// optional fields mean "unset"; the pipeline binds process-wide
// defaults before planning.
type Constraints struct {
	// MinInitial is the smallest acceptable first-pass spacing.
	MinInitial float64
	// TargetInitial pins the first-pass spacing. When zero, the planner
	// picks the optimal initial spacing: the largest value that still
	// fits the polygon, reaches TargetFinal through whole halving
	// steps, and is not below MinInitial.
	TargetInitial float64
	// TargetFinal is the spacing of the last pass.
	TargetFinal float64
}

// Plan is the per-pass spacing schedule for one polygon.
type Plan struct {
	// Spacings holds one spacing per pass, strictly decreasing from the
	// initial to the final target.
	Spacings []float64
}

// NumPasses returns the number of passes in the plan.
func (p Plan) NumPasses() int { return len(p.Spacings) }

// Initial returns the first-pass spacing.
func (p Plan) Initial() float64 { return p.Spacings[0] }

// Final returns the last-pass spacing.
func (p Plan) Final() float64 { return p.Spacings[len(p.Spacings)-1] }

// PlanSpacings computes the pass count and per-pass spacing sequence
// for a polygon. The polygon's characteristic size is half its minimal
// bounding dimension: the largest inward depth any offset pass can
// reach. Fails with an INFEASIBLE_SPACING error when the constraints
// cannot fit the polygon.
func PlanSpacings(pg geometry.Polygon, c Constraints) (Plan, error) {
	if c.TargetFinal <= 0 {
		return Plan{}, errors.New(errors.ErrCodeInfeasibleSpacing,
			"target final spacing must be positive: got %g", c.TargetFinal)
	}
	size := pg.MinDimension() / 2
	if c.MinInitial > size {
		return Plan{}, errors.New(errors.ErrCodeInfeasibleSpacing,
			"minimum initial spacing %g exceeds polygon characteristic size %g", c.MinInitial, size)
	}

	initial := c.TargetInitial
	if initial == 0 {
		// Largest final·2^k that fits the polygon: an integer number of
		// halving steps lands exactly on the final spacing.
		k := math.Floor(math.Log2(size / c.TargetFinal))
		if k < 0 {
			return Plan{}, errors.New(errors.ErrCodeInfeasibleSpacing,
				"final spacing %g does not fit polygon characteristic size %g", c.TargetFinal, size)
		}
		initial = c.TargetFinal * math.Exp2(k)
		if initial < c.MinInitial {
			return Plan{}, errors.New(errors.ErrCodeInfeasibleSpacing,
				"optimal initial spacing %g below required minimum %g", initial, c.MinInitial)
		}
	} else {
		if initial < c.TargetFinal {
			return Plan{}, errors.New(errors.ErrCodeInfeasibleSpacing,
				"initial spacing %g below final spacing %g", initial, c.TargetFinal)
		}
		if initial < c.MinInitial {
			return Plan{}, errors.New(errors.ErrCodeInfeasibleSpacing,
				"target initial spacing %g below required minimum %g", initial, c.MinInitial)
		}
		if initial > size {
			return Plan{}, errors.New(errors.ErrCodeInfeasibleSpacing,
				"target initial spacing %g exceeds polygon characteristic size %g", initial, size)
		}
	}

	// Halve until the final spacing is reached; a last uneven step is
	// clamped so the schedule always ends exactly on the target.
	const tol = 1e-9
	spacings := []float64{initial}
	for s := initial / 2; spacings[len(spacings)-1] > c.TargetFinal+tol; s /= 2 {
		if s < c.TargetFinal {
			s = c.TargetFinal
		}
		spacings = append(spacings, s)
	}
	spacings[len(spacings)-1] = c.TargetFinal

	return Plan{Spacings: spacings}, nil
}
