package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/memslab/lasermill/pkg/alignment"
)

// alignCommand creates the align command for inspecting the mounting
// compensation derived from a corner measurement.
func (c *CLI) alignCommand() *cobra.Command {
	var dx, dy, nominal float64

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Derive the mounting compensation from a corner measurement",
		Long: `Derive the mounting compensation from a corner measurement.

Given the measured displacement from the bottom-left to the
bottom-right membrane corner, align reports the mounting angle, the
scale relative to the nominal side length, and the translation that
centers the machining coordinates on the membrane.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAlign(dx, dy, nominal)
		},
	}

	cmd.Flags().Float64Var(&dx, "dx", 0, "measured corner displacement, x component")
	cmd.Flags().Float64Var(&dy, "dy", 0, "measured corner displacement, y component")
	cmd.Flags().Float64Var(&nominal, "nominal-side", 0, "nominal membrane side length (default from config)")
	_ = cmd.MarkFlagRequired("dx")

	return cmd
}

// runAlign computes and prints the alignment result.
func (c *CLI) runAlign(dx, dy, nominal float64) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if nominal == 0 {
		nominal = cfg.Alignment.NominalSideLength
	}

	result, err := alignment.Align(nominal, dx, dy)
	if err != nil {
		return err
	}

	printSuccess("Alignment derived")
	printKeyValue("angle", fmt.Sprintf("%.4f° (%.6f rad)", result.Angle*180/math.Pi, result.Angle))
	printKeyValue("side", fmt.Sprintf("%.4f", result.ActualSide))
	printKeyValue("scale", fmt.Sprintf("%.6f", result.Scale))
	printKeyValue("translation", fmt.Sprintf("(%.4f, %.4f)", result.Translation.X, result.Translation.Y))
	printNewline()
	for _, line := range result.Report() {
		printDetail("%s", line)
	}
	return nil
}
