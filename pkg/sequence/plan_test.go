package sequence

import (
	"math"
	"testing"

	"github.com/memslab/lasermill/pkg/errors"
	"github.com/memslab/lasermill/pkg/geometry"
)

func square(side float64) geometry.Polygon {
	return geometry.MustPolygon([]geometry.Point{
		{X: 1, Y: 1}, {X: 1, Y: 1 + side}, {X: 1 + side, Y: 1 + side}, {X: 1 + side, Y: 1},
	})
}

func TestPlanSpacings(t *testing.T) {
	tests := []struct {
		name        string
		side        float64
		c           Constraints
		wantFirst   float64 // 0 = skip exact check
		wantLast    float64
		minPasses   int
		wantErrCode errors.Code
	}{
		{
			name:      "OptimalInitialSquare5",
			side:      5,
			c:         Constraints{MinInitial: 2, TargetFinal: 0.5},
			wantFirst: 2, // largest 0.5·2^k ≤ 2.5
			wantLast:  0.5,
			minPasses: 2,
		},
		{
			name:      "PinnedInitial",
			side:      10,
			c:         Constraints{MinInitial: 1, TargetInitial: 4, TargetFinal: 1},
			wantFirst: 4,
			wantLast:  1,
			minPasses: 3,
		},
		{
			name:      "UnevenLastStepClamped",
			side:      10,
			c:         Constraints{TargetInitial: 2.4, TargetFinal: 0.5},
			wantFirst: 2.4,
			wantLast:  0.5,
			minPasses: 3,
		},
		{
			name:        "MinInitialTooLarge",
			side:        5,
			c:           Constraints{MinInitial: 3, TargetFinal: 0.5},
			wantErrCode: errors.ErrCodeInfeasibleSpacing,
		},
		{
			name:        "InitialBelowFinal",
			side:        5,
			c:           Constraints{TargetInitial: 0.2, TargetFinal: 0.5},
			wantErrCode: errors.ErrCodeInfeasibleSpacing,
		},
		{
			name:        "InitialExceedsSize",
			side:        5,
			c:           Constraints{TargetInitial: 4, TargetFinal: 0.5},
			wantErrCode: errors.ErrCodeInfeasibleSpacing,
		},
		{
			name:        "FinalNotPositive",
			side:        5,
			c:           Constraints{TargetFinal: 0},
			wantErrCode: errors.ErrCodeInfeasibleSpacing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanSpacings(square(tt.side), tt.c)
			if tt.wantErrCode != "" {
				if !errors.Is(err, tt.wantErrCode) {
					t.Fatalf("PlanSpacings() error = %v, want code %s", err, tt.wantErrCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("PlanSpacings() error = %v", err)
			}
			if plan.NumPasses() < tt.minPasses {
				t.Errorf("NumPasses() = %d, want >= %d", plan.NumPasses(), tt.minPasses)
			}
			if tt.wantFirst != 0 && math.Abs(plan.Initial()-tt.wantFirst) > 1e-9 {
				t.Errorf("Initial() = %g, want %g", plan.Initial(), tt.wantFirst)
			}
			if math.Abs(plan.Final()-tt.wantLast) > 1e-9 {
				t.Errorf("Final() = %g, want %g", plan.Final(), tt.wantLast)
			}
			for i := 1; i < len(plan.Spacings); i++ {
				if plan.Spacings[i] >= plan.Spacings[i-1] {
					t.Errorf("spacings not strictly decreasing at %d: %v", i, plan.Spacings)
				}
			}
			if plan.Initial() < tt.c.MinInitial {
				t.Errorf("Initial() = %g below MinInitial %g", plan.Initial(), tt.c.MinInitial)
			}
		})
	}
}

func TestPlanOptimalIsLargestFit(t *testing.T) {
	// Square of side 5: characteristic size 2.5; the halving chain from
	// 0.5 gives candidates 0.5, 1, 2, 4... and 2 is the largest ≤ 2.5.
	plan, err := PlanSpacings(square(5), Constraints{MinInitial: 2, TargetFinal: 0.5})
	if err != nil {
		t.Fatalf("PlanSpacings() error = %v", err)
	}
	if plan.Initial() < 2 || plan.Initial() > 2.5 {
		t.Errorf("Initial() = %g, want within [2, 2.5]", plan.Initial())
	}
	want := []float64{2, 1, 0.5}
	if len(plan.Spacings) != len(want) {
		t.Fatalf("Spacings = %v, want %v", plan.Spacings, want)
	}
	for i := range want {
		if math.Abs(plan.Spacings[i]-want[i]) > 1e-9 {
			t.Errorf("Spacings[%d] = %g, want %g", i, plan.Spacings[i], want[i])
		}
	}
}
