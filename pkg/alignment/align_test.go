package alignment

import (
	"math"
	"testing"

	"github.com/memslab/lasermill/pkg/errors"
	"github.com/memslab/lasermill/pkg/geometry"
)

func TestAlignMeasuredMembrane(t *testing.T) {
	// Stage measurement of a nominally 1200 um membrane mounted ~10°
	// off-axis and slightly oversized.
	res, err := Align(1200, 1182, 208)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}

	if math.Abs(res.ActualSide-math.Hypot(1182, 208)) > 1e-9 {
		t.Errorf("ActualSide = %g", res.ActualSide)
	}
	if res.ActualSide < 1200.1 || res.ActualSide > 1200.3 {
		t.Errorf("ActualSide = %g, want ≈ 1200.18", res.ActualSide)
	}

	angleDeg := res.Angle * 180 / math.Pi
	if angleDeg < 9.9 || angleDeg > 10.1 {
		t.Errorf("angle = %g°, want ≈ 10.0°", angleDeg)
	}

	if res.Scale < 1.0001 || res.Scale > 1.0002 {
		t.Errorf("Scale = %g, want ≈ 1.00015", res.Scale)
	}

	if res.Translation.X > 0 {
		t.Errorf("Translation.X = %g, want ≤ 0", res.Translation.X)
	}
	if res.Translation.Y < 0 {
		t.Errorf("Translation.Y = %g, want ≥ 0", res.Translation.Y)
	}
}

func TestAlignCornerSelection(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy float64
	}{
		{"Swapped135Degrees", -1, 1},
		{"StraightUp", 0, 1},
		{"Backwards", -1182, -208},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Align(1200, tt.dx, tt.dy)
			if !errors.Is(err, errors.ErrCodeCornerSelection) {
				t.Errorf("Align(%g, %g) error = %v, want CORNER_SELECTION", tt.dx, tt.dy, err)
			}
		})
	}
}

func TestAlignBoundaryAngles(t *testing.T) {
	// Exactly ±45° is still a valid corner choice.
	if _, err := Align(100, 1, 1); err != nil {
		t.Errorf("Align at +45° error = %v", err)
	}
	if _, err := Align(100, 1, -1); err != nil {
		t.Errorf("Align at -45° error = %v", err)
	}
}

func TestAlignInvalidInput(t *testing.T) {
	if _, err := Align(0, 1, 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("zero nominal side: error = %v, want INVALID_INPUT", err)
	}
	if _, err := Align(100, 0, 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("zero displacement: error = %v, want INVALID_INPUT", err)
	}
}

func TestAlignRoundTrip(t *testing.T) {
	res, err := Align(1200, 1182, 208)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	inv, err := res.Transform.Inverse()
	if err != nil {
		t.Fatalf("Inverse() error = %v", err)
	}

	pts := []geometry.Point{{X: 0, Y: 0}, {X: 100, Y: -250}, {X: -600, Y: 600}}
	for _, p := range pts {
		back := inv.Apply(res.Transform.Apply(p))
		if back.Distance(p) > 1e-6 {
			t.Errorf("round trip of %v drifted to %v", p, back)
		}
	}
}

func TestAlignPerfectMount(t *testing.T) {
	// dx = nominal, dy = 0: identity scale/rotation, pure re-origin.
	res, err := Align(1000, 1000, 0)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if math.Abs(res.Scale-1) > 1e-12 || math.Abs(res.Angle) > 1e-12 {
		t.Errorf("Scale = %g, Angle = %g; want 1, 0", res.Scale, res.Angle)
	}
	// Center maps to half a diagonal up-left of the bottom-right corner.
	got := res.Transform.Apply(geometry.Point{X: 0, Y: 0})
	want := geometry.Point{X: -500, Y: 500}
	if got.Distance(want) > 1e-9 {
		t.Errorf("center maps to %v, want %v", got, want)
	}
}
