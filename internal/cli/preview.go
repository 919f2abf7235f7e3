package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/memslab/lasermill/pkg/layout"
	"github.com/memslab/lasermill/pkg/pipeline"
	"github.com/memslab/lasermill/pkg/preview"
)

// previewCommand creates the preview command for rendering layouts as SVG.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		output      string
		outlineOnly bool
		animate     bool
		noCache     bool
		width       float64
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "preview [layout.json]",
		Short: "Render a layout and its hole sequences as SVG",
		Long: `Render a layout and its hole sequences as SVG.

By default preview generates the hole sequences (reusing the cache when
possible) and draws every hole colored by pass, so the staggered rings
are visible at a glance. Use --outline to skip the holes and draw the
polygon outlines only, or --animate to replay the machining order in
the terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args[0], opts, output, outlineOnly, animate, noCache, width)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output SVG file (default: <input>.svg)")
	cmd.Flags().BoolVar(&outlineOnly, "outline", false, "draw polygon outlines only, no holes")
	cmd.Flags().BoolVar(&animate, "animate", false, "replay the machining order in the terminal")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&width, "width", 0, "SVG pixel width")
	cmd.Flags().Float64Var(&opts.MinInitialSpacing, "min-initial", 0, "minimum first-pass hole spacing")
	cmd.Flags().Float64Var(&opts.TargetInitialSpacing, "target-initial", 0, "target first-pass hole spacing (0 = optimal per polygon)")
	cmd.Flags().Float64Var(&opts.TargetFinalSpacing, "target-final", 0, "target final-pass hole spacing")

	return cmd
}

// runPreview renders the layout, generating sequences unless outlineOnly.
func (c *CLI) runPreview(ctx context.Context, input string, opts pipeline.Options, output string, outlineOnly, animate, noCache bool, width float64) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	l, err := layout.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	renderOpts := preview.DefaultOptions()
	if cfg.Preview.MarginFactor > 0 {
		renderOpts.MarginFactor = cfg.Preview.MarginFactor
	}
	if width > 0 {
		renderOpts.Width = width
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".svg"
	}

	if outlineOnly {
		if err := preview.RenderFile(outputPath, l, nil, renderOpts); err != nil {
			return fmt.Errorf("render preview: %w", err)
		}
		printSuccess("Preview complete")
		printFile(outputPath)
		return nil
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

	if err := preview.RenderFile(outputPath, l, result.Sequences, renderOpts); err != nil {
		return fmt.Errorf("render preview: %w", err)
	}

	if animate {
		model := newSequenceAnimModel(result.Assembled, l.NumPolygons())
		if _, err := tea.NewProgram(model).Run(); err != nil {
			return err
		}
	}

	printSuccess("Preview complete")
	printFile(outputPath)
	printStats(result.Stats.NumPolygons, result.Stats.NumHoles, result.CacheInfo.SequenceMisses == 0)
	printNewline()
	printNextStep("Generate program", "lasermill run "+input)

	return nil
}
