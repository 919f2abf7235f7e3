// Package nc writes machining hole sequences as numerical-control
// programs. Writers buffer hole motions in memory and emit the full
// program in one shot, so a failed run never leaves a half-written
// program on the stage controller's watch folder.
package nc

import "io"

// Writer accumulates hole positions and renders them as an NC program.
// Coordinates passed to AddHole are expressed in the writer's length
// unit; callers convert from the working unit at this boundary.
type Writer interface {
	// LengthUnit returns the writer's length unit as a scale factor
	// with respect to meters.
	LengthUnit() float64

	// AddHole appends the motion and firing commands for one hole.
	AddHole(x, y float64)

	// WriteTo renders the buffered program.
	WriteTo(w io.Writer) (int64, error)
}
