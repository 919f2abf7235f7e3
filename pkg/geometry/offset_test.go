package geometry

import (
	"math"
	"testing"

	"github.com/memslab/lasermill/pkg/errors"
)

func TestOffsetSquare(t *testing.T) {
	pg := MustPolygon(square(10))

	inner, err := pg.Offset(2)
	if err != nil {
		t.Fatalf("Offset(2) error = %v", err)
	}
	if got := inner.Area(); math.Abs(got-36) > 1e-9 {
		t.Errorf("inner area = %g, want 36", got)
	}
	min, max := inner.Bounds()
	if min.Distance(Point{2, 2}) > 1e-9 || max.Distance(Point{8, 8}) > 1e-9 {
		t.Errorf("inner bounds = %v..%v, want (2,2)..(8,8)", min, max)
	}
}

func TestOffsetZeroIsIdentity(t *testing.T) {
	pg := MustPolygon(square(3))
	same, err := pg.Offset(0)
	if err != nil {
		t.Fatalf("Offset(0) error = %v", err)
	}
	if same.Perimeter() != pg.Perimeter() {
		t.Error("Offset(0) changed the polygon")
	}
}

func TestOffsetContainment(t *testing.T) {
	// Mildly concave L-shape: every offset contour must stay strictly
	// inside the previous one and remain simple.
	pg := MustPolygon([]Point{
		{0, 0}, {10, 0}, {10, 4}, {6, 4}, {6, 10}, {0, 10},
	})

	prev := pg
	for i := 0; i < 3; i++ {
		next, err := prev.Offset(0.5)
		if err != nil {
			t.Fatalf("pass %d: Offset error = %v", i, err)
		}
		if next.Area() >= prev.Area() {
			t.Fatalf("pass %d: area did not shrink (%g >= %g)", i, next.Area(), prev.Area())
		}
		pmin, pmax := prev.Bounds()
		nmin, nmax := next.Bounds()
		if nmin.X < pmin.X || nmin.Y < pmin.Y || nmax.X > pmax.X || nmax.Y > pmax.Y {
			t.Fatalf("pass %d: contour escaped previous bounds", i)
		}
		prev = next
	}
}

func TestOffsetDegenerate(t *testing.T) {
	tests := []struct {
		name     string
		pts      []Point
		distance float64
	}{
		{"SquarePastCenter", square(4), 2.5},
		{"SquareExactCollapse", square(4), 2.0},
		{"ThinTriangle", []Point{{0, 0}, {10, 0}, {5, 0.4}}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pg := MustPolygon(tt.pts)
			_, err := pg.Offset(tt.distance)
			if !errors.Is(err, errors.ErrCodeDegenerateOffset) {
				t.Errorf("Offset(%g) error = %v, want DEGENERATE_OFFSET", tt.distance, err)
			}
		})
	}
}

func TestOffsetNegativeRejected(t *testing.T) {
	pg := MustPolygon(square(4))
	if _, err := pg.Offset(-1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Offset(-1) error = %v, want INVALID_INPUT", err)
	}
}
