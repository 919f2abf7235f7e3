package sequence

import (
	"math"
	"testing"

	"github.com/memslab/lasermill/pkg/geometry"
)

// arcPosition returns the arc length of p along the contour, assuming p
// lies on the boundary within tolerance.
func arcPosition(t *testing.T, contour geometry.Polygon, p geometry.Point) float64 {
	t.Helper()
	verts := contour.Vertices()
	walked := 0.0
	for i := range verts {
		a := verts[i]
		b := verts[(i+1)%len(verts)]
		edge := a.Distance(b)
		// p on segment ab iff |ap| + |pb| == |ab|
		if math.Abs(a.Distance(p)+p.Distance(b)-edge) < 1e-9 {
			return walked + a.Distance(p)
		}
		walked += edge
	}
	t.Fatalf("point %v not on contour", p)
	return 0
}

func TestGenerateSquareScenario(t *testing.T) {
	// Square side 5 at (1,1), worked in micrometers: minimum initial
	// spacing 2, target final spacing 0.5 plans to [2, 1, 0.5].
	pg := square(5)
	plan, err := PlanSpacings(pg, Constraints{MinInitial: 2, TargetFinal: 0.5})
	if err != nil {
		t.Fatalf("PlanSpacings() error = %v", err)
	}

	seq := Generate(0, pg, plan)

	if len(seq.Passes) != 3 {
		t.Fatalf("got %d passes, want 3", len(seq.Passes))
	}

	// Boundary pass hole count ≈ perimeter / first spacing = 20 / 2.
	if got := len(seq.Passes[0].Holes); got != 10 {
		t.Errorf("pass 0 holes = %d, want 10", got)
	}

	// Pass contours shrink strictly.
	for i := 1; i < len(seq.Passes); i++ {
		if seq.Passes[i].Contour.Area() >= seq.Passes[i-1].Contour.Area() {
			t.Errorf("pass %d contour did not shrink", i)
		}
	}

	// The final pass densifies the interior: it must hold more holes
	// than its boundary ring alone (16 on the side-2 contour).
	if got := len(seq.Passes[2].Holes); got <= 16 {
		t.Errorf("final pass holes = %d, want > 16 (interior densified)", got)
	}

	// Global order: strictly increasing pass index, contiguous local
	// indices, correct owner.
	holes := seq.Holes()
	lastPass := -1
	for _, h := range holes {
		if h.Polygon != 0 {
			t.Fatalf("hole owned by polygon %d, want 0", h.Polygon)
		}
		if h.Pass < lastPass {
			t.Fatalf("pass order regressed: %d after %d", h.Pass, lastPass)
		}
		lastPass = h.Pass
	}
	for _, p := range seq.Passes {
		for i, h := range p.Holes {
			if h.Index != i {
				t.Fatalf("pass %d: hole %d has local index %d", p.Index, i, h.Index)
			}
		}
	}
}

func TestGenerateStagger(t *testing.T) {
	pg := square(8)
	plan := Plan{Spacings: []float64{2, 1}}
	seq := Generate(0, pg, plan)

	if seq.Passes[0].StaggerPhase != 0 {
		t.Errorf("even pass phase = %g, want 0", seq.Passes[0].StaggerPhase)
	}
	if seq.Passes[1].StaggerPhase == 0 {
		t.Error("odd pass phase = 0, want half-spacing stagger")
	}

	// The stagger must hold on the contour: the first hole of the odd
	// pass sits half an interval into its contour.
	p1 := seq.Passes[1]
	pos := arcPosition(t, p1.Contour, p1.Holes[0].Position)
	if math.Abs(pos-p1.StaggerPhase) > 1e-9 {
		t.Errorf("first odd-pass hole at arc %g, want %g", pos, p1.StaggerPhase)
	}
}

func TestGenerateMonotonicArcLength(t *testing.T) {
	pg := geometry.MustPolygon([]geometry.Point{
		{X: 0, Y: 0}, {X: 12, Y: 0}, {X: 15, Y: 6}, {X: 6, Y: 11}, {X: -2, Y: 5},
	})
	plan, err := PlanSpacings(pg, Constraints{TargetFinal: 0.8})
	if err != nil {
		t.Fatalf("PlanSpacings() error = %v", err)
	}
	seq := Generate(3, pg, plan)

	// Within the boundary pass every hole advances along the contour.
	pass := seq.Passes[0]
	prev := -1.0
	for _, h := range pass.Holes {
		pos := arcPosition(t, pass.Contour, h.Position)
		if pos <= prev {
			t.Fatalf("arc length regressed: %g after %g", pos, prev)
		}
		prev = pos
	}
}

func TestGenerateRecoversDegeneracy(t *testing.T) {
	// A plan whose second pass cannot fit: the offset degenerates and
	// the sequence truncates instead of failing.
	pg := square(2)
	plan := Plan{Spacings: []float64{1.2, 1.1}}
	seq := Generate(0, pg, plan)

	if len(seq.Passes) != 1 {
		t.Fatalf("got %d passes, want 1 (truncated)", len(seq.Passes))
	}
	if seq.NumHoles() == 0 {
		t.Error("truncated sequence still machines the boundary")
	}
}

func TestGenerateHoleSpacingBound(t *testing.T) {
	// No two consecutive holes of a pass may sit farther apart than the
	// pass spacing (plus float tolerance).
	pg := square(6)
	plan := Plan{Spacings: []float64{2, 1}}
	seq := Generate(0, pg, plan)

	for _, pass := range seq.Passes {
		// Only the primary contour ring is chained; the final pass also
		// holds interior rings whose first hole starts a new chain.
		n := int(math.Ceil(pass.Contour.Perimeter() / pass.Spacing))
		if n > len(pass.Holes) {
			n = len(pass.Holes)
		}
		for i := 1; i < n; i++ {
			d := pass.Holes[i-1].Position.Distance(pass.Holes[i].Position)
			if d > pass.Spacing+1e-9 {
				t.Errorf("pass %d: gap %g exceeds spacing %g", pass.Index, d, pass.Spacing)
			}
		}
	}
}
