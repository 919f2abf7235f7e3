package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/memslab/lasermill/pkg/errors"
)

// Transform is a 2-D affine transform in homogeneous coordinates.
// The zero value is not usable; start from Identity or one of the
// constructors. Transforms are immutable and safe for concurrent use.
type Transform struct {
	m *mat.Dense // 3x3 row-major homogeneous matrix
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})}
}

// Translate returns a transform shifting by (dx, dy).
func Translate(dx, dy float64) Transform {
	return Transform{m: mat.NewDense(3, 3, []float64{
		1, 0, dx,
		0, 1, dy,
		0, 0, 1,
	})}
}

// Scale returns a transform scaling about the origin. Negative factors
// mirror, which breaks vertex orientation; Polygon.Transform renormalizes.
func Scale(sx, sy float64) Transform {
	return Transform{m: mat.NewDense(3, 3, []float64{
		sx, 0, 0,
		0, sy, 0,
		0, 0, 1,
	})}
}

// Rotate returns a transform rotating about the origin by angleRad.
// Positive angles rotate counter-clockwise.
func Rotate(angleRad float64) Transform {
	s, c := math.Sincos(angleRad)
	return Transform{m: mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})}
}

// Then returns the composition applying t first and u second.
func (t Transform) Then(u Transform) Transform {
	var out mat.Dense
	out.Mul(u.m, t.m)
	return Transform{m: &out}
}

// Apply maps a point through the transform.
func (t Transform) Apply(p Point) Point {
	v := mat.NewVecDense(3, []float64{p.X, p.Y, 1})
	var out mat.VecDense
	out.MulVec(t.m, v)
	return Point{out.AtVec(0), out.AtVec(1)}
}

// Inverse returns the inverse transform. Fails for singular transforms,
// e.g. a zero scale factor.
func (t Transform) Inverse() (Transform, error) {
	var inv mat.Dense
	if err := inv.Inverse(t.m); err != nil {
		return Transform{}, errors.Wrap(errors.ErrCodeInternal, err, "transform is not invertible")
	}
	return Transform{m: &inv}, nil
}
