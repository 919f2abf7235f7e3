package sequence_test

import (
	"fmt"

	"github.com/memslab/lasermill/pkg/geometry"
	"github.com/memslab/lasermill/pkg/sequence"
)

func ExamplePlanSpacings() {
	// A 5x5 membrane window, coordinates in micrometers.
	window := geometry.MustPolygon([]geometry.Point{
		{X: 1, Y: 1}, {X: 1, Y: 6}, {X: 6, Y: 6}, {X: 6, Y: 1},
	})

	plan, err := sequence.PlanSpacings(window, sequence.Constraints{
		MinInitial:  2,
		TargetFinal: 0.5,
	})
	if err != nil {
		fmt.Println("plan:", err)
		return
	}

	fmt.Println("passes:", plan.NumPasses())
	fmt.Println("spacings:", plan.Spacings)
	// Output:
	// passes: 3
	// spacings: [2 1 0.5]
}

func ExampleGenerate() {
	window := geometry.MustPolygon([]geometry.Point{
		{X: 1, Y: 1}, {X: 1, Y: 6}, {X: 6, Y: 6}, {X: 6, Y: 1},
	})
	plan, _ := sequence.PlanSpacings(window, sequence.Constraints{
		MinInitial:  2,
		TargetFinal: 0.5,
	})

	seq := sequence.Generate(0, window, plan)

	fmt.Println("boundary holes:", len(seq.Passes[0].Holes))
	fmt.Println("passes:", len(seq.Passes))
	// Output:
	// boundary holes: 10
	// passes: 3
}
