package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/memslab/lasermill/pkg/layout"
	"github.com/memslab/lasermill/pkg/sequence"
)

// planCommand creates the plan command for inspecting spacing schedules.
func (c *CLI) planCommand() *cobra.Command {
	var interactive bool
	constraints := sequence.Constraints{}

	cmd := &cobra.Command{
		Use:   "plan [layout.json]",
		Short: "Show the per-polygon pass and hole spacing plan",
		Long: `Show the per-polygon pass and hole spacing plan.

For every polygon in the layout, plan prints the number of passes and
the spacing schedule the sequencer would use, without generating a
program. Use --interactive to browse polygons and their passes in a
terminal UI.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(args[0], constraints, interactive)
		},
	}

	cmd.Flags().Float64Var(&constraints.MinInitial, "min-initial", 0, "minimum first-pass hole spacing")
	cmd.Flags().Float64Var(&constraints.TargetInitial, "target-initial", 0, "target first-pass hole spacing (0 = optimal per polygon)")
	cmd.Flags().Float64Var(&constraints.TargetFinal, "target-final", 0, "target final-pass hole spacing")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse plans in a terminal UI")

	return cmd
}

// runPlan plans every polygon and prints or browses the schedules.
func (c *CLI) runPlan(input string, constraints sequence.Constraints, interactive bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defaults := cfg.Constraints()
	if constraints.MinInitial == 0 {
		constraints.MinInitial = defaults.MinInitial
	}
	if constraints.TargetInitial == 0 {
		constraints.TargetInitial = defaults.TargetInitial
	}
	if constraints.TargetFinal == 0 {
		constraints.TargetFinal = defaults.TargetFinal
	}

	l, err := layout.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	entries := make([]planEntry, 0, l.NumPolygons())
	for i := 0; i < l.NumPolygons(); i++ {
		pg := l.Polygon(i)
		plan, err := sequence.PlanSpacings(pg, constraints)
		if err != nil {
			return fmt.Errorf("plan polygon %d: %w", i+1, err)
		}
		seq := sequence.Generate(i, pg, plan)
		entries = append(entries, planEntry{
			Polygon:  i + 1,
			Vertices: len(pg.Vertices()),
			Plan:     plan,
			Sequence: seq,
		})
	}

	if interactive {
		model := newPlanBrowserModel(entries)
		_, err := tea.NewProgram(model).Run()
		return err
	}

	for _, e := range entries {
		printInfo("Polygon %d (%d vertices)", e.Polygon, e.Vertices)
		printDetail("%d passes, %d holes", e.Plan.NumPasses(), e.Sequence.NumHoles())
		for pi, s := range e.Plan.Spacings {
			printDetail("pass %d: spacing %g, %d holes", pi+1, s, len(e.Sequence.Passes[pi].Holes))
		}
	}
	return nil
}
