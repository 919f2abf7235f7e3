package nc

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/memslab/lasermill/pkg/runlog"
)

// coordDigits is the printed coordinate precision. Stage resolution is
// 200 nm = 0.0002 mm, so four decimals plus two guard digits.
const coordDigits = 6

// AeroBasicOptions configures the stage and laser parameters baked
// into the generated program.
type AeroBasicOptions struct {
	// Stage parameters. Feedrates are in the controller's native
	// units; the transition feedrate drives moves between holes.
	TransitionFeedrate float64
	ShapeFeedrate      float64

	// Long transitions overshoot at full feedrate. When enabled,
	// moves of at least ReductionThresholdMM run at
	// TransitionFeedrate / ReductionFactor.
	ReduceTransitionFeedrate bool
	ReductionThresholdMM     float64
	ReductionFactor          float64

	// Laser parameters: pulses fired per hole and pulse frequency.
	PulseCount  int
	FrequencyHz int
}

// DefaultAeroBasicOptions returns the stage and laser parameters used
// in production runs.
func DefaultAeroBasicOptions() AeroBasicOptions {
	return AeroBasicOptions{
		TransitionFeedrate:       0.2,
		ShapeFeedrate:            0.2,
		ReduceTransitionFeedrate: false,
		ReductionThresholdMM:     0.3,
		ReductionFactor:          3,
		PulseCount:               3,
		FrequencyHz:              200000,
	}
}

// AeroBasic renders hole sequences as an AeroBasic program for the
// Aerotech stage controller. Hole coordinates are expected in
// millimeters.
type AeroBasic struct {
	opts  AeroBasicOptions
	log   runlog.Log
	body  strings.Builder
	prevX float64
	prevY float64
}

// NewAeroBasic creates an AeroBasic writer. The log receives the
// writer's parameters on WriteTo; pass runlog.Discard{} to skip.
func NewAeroBasic(opts AeroBasicOptions, log runlog.Log) *AeroBasic {
	return &AeroBasic{opts: opts, log: log}
}

// LengthUnit reports millimeters.
func (ab *AeroBasic) LengthUnit() float64 { return 1e-3 }

// AddHole buffers the transition move and MAKEHOLE call for one hole.
// The stage coordinate system is the machining plane rotated a quarter
// turn, hence the axis swap in the G1 move.
func (ab *AeroBasic) AddHole(x, y float64) {
	distance := math.Hypot(x-ab.prevX, y-ab.prevY)
	reduce := ab.opts.ReduceTransitionFeedrate && distance >= ab.opts.ReductionThresholdMM

	if reduce {
		fmt.Fprintf(&ab.body, "G63\nF %g\n", ab.opts.TransitionFeedrate/ab.opts.ReductionFactor)
	}
	fmt.Fprintf(&ab.body, "G1 X %.*f Y %.*f\n", coordDigits, -y, coordDigits, x)
	if reduce {
		fmt.Fprintf(&ab.body, "F %g\nG64\n", ab.opts.TransitionFeedrate)
	}
	ab.body.WriteString("CALL MAKEHOLE\n")

	ab.prevX, ab.prevY = x, y
}

// WriteTo renders the complete program: preamble, buffered hole
// commands, epilogue with the MAKEHOLE subroutine.
func (ab *AeroBasic) WriteTo(w io.Writer) (int64, error) {
	program := ab.preamble() + "\n\n" + ab.body.String() + "\n" + ab.epilogue()
	n, err := io.WriteString(w, program)
	if err != nil {
		return int64(n), fmt.Errorf("write program: %w", err)
	}
	ab.logParameters()
	return int64(n), nil
}

// WriteFile renders the program to a file.
func (ab *AeroBasic) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := ab.WriteTo(f); err != nil {
		return err
	}
	ab.log.Appendf("File path/name: %s", path)
	return nil
}

func (ab *AeroBasic) preamble() string {
	lines := []string{
		fmt.Sprintf("#define CoordinatedMotionTransitionFeedrate %g", ab.opts.TransitionFeedrate),
		fmt.Sprintf("#define ShapeFeedrate %g\n", ab.opts.ShapeFeedrate),
		"DVAR $FREQUENCY",
		"DVAR $TOTtime",
		"DVAR $ONtime",
		"DVAR $PulseNum",
		"DVAR $DWELLTIME\n",
		"ABSOLUTE\n",
		"POSOFFSET SET X 0 Y 0\n",
		"'Default settings",
		fmt.Sprintf("$PulseNum = %d", ab.opts.PulseCount),
		fmt.Sprintf("$FREQUENCY = %d\n", ab.opts.FrequencyHz),
		"'Basics",
		"$ONtime = 1/$FREQUENCY * 1000000",
		"$TOTtime = $ONtime * 2\n",
		"'Start of laser machining",
		"$AO[0].X =5",
	}
	return strings.Join(lines, "\n")
}

func (ab *AeroBasic) epilogue() string {
	lines := []string{
		"'End of laser machining",
		"$AO[0].X =0\n",
		"G1 X 0 Y 0\n",
		"END PROGRAM\n",
		"'Subroutine to make hole (must be defined after end of program)",
		"DFS MAKEHOLE",
		"    PSOCONTROL X RESET",
		"    PSOPULSE X TIME $TOTtime, $ONtime CYCLES $PulseNum",
		"    PSOOUTPUT X PULSE",
		"    $DWELLTIME = $TOTtime/100000*$PulseNum",
		"    DWELL 0.08",
		"    PSOCONTROL X FIRE",
		"    DWELL $DWELLTIME",
		"ENDDFS",
	}
	return strings.Join(lines, "\n")
}

func (ab *AeroBasic) logParameters() {
	ab.log.Appendf("Transition feedrate: %g", ab.opts.TransitionFeedrate)
	ab.log.Appendf("Shape feedrate: %g", ab.opts.ShapeFeedrate)
	ab.log.Appendf("Transition feedrate reduction enabled: %t", ab.opts.ReduceTransitionFeedrate)
	ab.log.Appendf("Transition feedrate reduction distance threshold (mm): %g", ab.opts.ReductionThresholdMM)
	ab.log.Appendf("Transition feedrate reduction factor: %g", ab.opts.ReductionFactor)
	ab.log.Appendf("Pulse number: %d", ab.opts.PulseCount)
	ab.log.Appendf("Frequency (Hz): %d", ab.opts.FrequencyHz)
}
