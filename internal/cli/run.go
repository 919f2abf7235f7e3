package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memslab/lasermill/pkg/layout"
	"github.com/memslab/lasermill/pkg/pipeline"
)

// runCommand creates the run command for the full sequencing pipeline.
func (c *CLI) runCommand() *cobra.Command {
	var (
		output  string
		logPath string
		noCache bool
		alignDX float64
		alignDY float64
		nominal float64
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "run [layout.json]",
		Short: "Generate a machining program from a membrane layout",
		Long: `Generate a machining program from a membrane layout.

The run command reads a layout file, plans hole spacings per polygon,
generates staggered multi-pass hole sequences, assembles them under the
chosen policy, and writes an AeroBasic program ready for the machining
stage. Pass --align-dx/--align-dy to fold the measured corner
displacement into the coordinates.

Per-polygon sequences are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("align-dx") || cmd.Flags().Changed("align-dy") {
				opts.Align = &pipeline.AlignOptions{DX: alignDX, DY: alignDY, NominalSideLength: nominal}
			}
			return c.runSequence(cmd.Context(), args[0], opts, output, logPath, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output program file (default: <input>.pgm)")
	cmd.Flags().StringVar(&logPath, "log", "", "write the run log to this file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute sequences even when cached")

	// Sequencing flags
	cmd.Flags().Float64Var(&opts.MinInitialSpacing, "min-initial", 0, "minimum first-pass hole spacing")
	cmd.Flags().Float64Var(&opts.TargetInitialSpacing, "target-initial", 0, "target first-pass hole spacing (0 = optimal per polygon)")
	cmd.Flags().Float64Var(&opts.TargetFinalSpacing, "target-final", 0, "target final-pass hole spacing")
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "assembly policy: sequential (default), interleaved")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "number of concurrent sequencing workers")

	// Alignment flags
	cmd.Flags().Float64Var(&alignDX, "align-dx", 0, "measured corner displacement, x component")
	cmd.Flags().Float64Var(&alignDY, "align-dy", 0, "measured corner displacement, y component")
	cmd.Flags().Float64Var(&nominal, "nominal-side", 0, "nominal membrane side length for alignment")

	return cmd
}

// runSequence executes the pipeline and writes the program and run log.
func (c *CLI) runSequence(ctx context.Context, input string, opts pipeline.Options, output, logPath string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	l, err := layout.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Sequencing %d polygons...", l.NumPolygons()))
	spinner.Start()

	result, err := runner.Execute(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Sequencing failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".pgm"
	}

	if err := os.WriteFile(outputPath, result.Program, 0o644); err != nil {
		return fmt.Errorf("write program %s: %w", outputPath, err)
	}

	if logPath != "" {
		data := strings.Join(result.LogLines, "\n") + "\n"
		if err := os.WriteFile(logPath, []byte(data), 0o644); err != nil {
			return fmt.Errorf("write run log %s: %w", logPath, err)
		}
	}

	printSuccess("Program complete")
	printFile(outputPath)
	if logPath != "" {
		printFile(logPath)
	}
	if result.Aligned {
		printDetail("Aligned: angle %.4f rad, scale %.6f", result.Alignment.Angle, result.Alignment.Scale)
	}
	printStats(result.Stats.NumPolygons, result.Stats.NumHoles, result.CacheInfo.SequenceMisses == 0)
	printNewline()
	printNextStep("Preview", "lasermill preview "+input)

	return nil
}
