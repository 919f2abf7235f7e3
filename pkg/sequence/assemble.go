package sequence

import "github.com/memslab/lasermill/pkg/errors"

// Policy names a layout assembly strategy.
type Policy string

const (
	// PolicySequential concatenates polygons' sequences in input order:
	// one polygon finishes all its passes before the next starts.
	PolicySequential Policy = "sequential"

	// PolicyInterleaved emits round i as the union of pass i holes from
	// every polygon that still has a pass i, distributing stress
	// release evenly across the layout per round.
	PolicyInterleaved Policy = "interleaved"
)

// Assembler combines per-polygon sequences into one layout-wide order.
// Implementations are pure functions over their input; both preserve
// the intra-pass hole order established by Generate within each
// contributing (polygon, pass) group.
type Assembler interface {
	Policy() Policy
	Assemble(seqs []PolygonHoleSequence) LayoutHoleSequence
}

// NewAssembler resolves a policy name to its assembler.
func NewAssembler(policy Policy) (Assembler, error) {
	switch policy {
	case PolicySequential:
		return SequentialAssembler{}, nil
	case PolicyInterleaved:
		return InterleavedAssembler{}, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported,
			"unknown assembly policy %q (use %q or %q)", policy, PolicySequential, PolicyInterleaved)
	}
}

// SequentialAssembler concatenates polygon sequences in input order.
type SequentialAssembler struct{}

// Policy returns PolicySequential.
func (SequentialAssembler) Policy() Policy { return PolicySequential }

// Assemble concatenates each polygon's holes, pass order preserved.
func (SequentialAssembler) Assemble(seqs []PolygonHoleSequence) LayoutHoleSequence {
	var total int
	for _, s := range seqs {
		total += s.NumHoles()
	}
	out := LayoutHoleSequence{Policy: PolicySequential, Holes: make([]Hole, 0, total)}
	for _, s := range seqs {
		out.Holes = append(out.Holes, s.Holes()...)
	}
	return out
}

// InterleavedAssembler emits pass rounds across all polygons.
type InterleavedAssembler struct{}

// Policy returns PolicyInterleaved.
func (InterleavedAssembler) Policy() Policy { return PolicyInterleaved }

// Assemble emits, for each pass index, the holes of that pass from
// every polygon in input order. Polygons stop contributing once their
// own pass list is exhausted.
func (InterleavedAssembler) Assemble(seqs []PolygonHoleSequence) LayoutHoleSequence {
	var total, rounds int
	for _, s := range seqs {
		total += s.NumHoles()
		if len(s.Passes) > rounds {
			rounds = len(s.Passes)
		}
	}

	out := LayoutHoleSequence{Policy: PolicyInterleaved, Holes: make([]Hole, 0, total)}
	for pass := 0; pass < rounds; pass++ {
		for _, s := range seqs {
			if pass < len(s.Passes) {
				out.Holes = append(out.Holes, s.Passes[pass].Holes...)
			}
		}
	}
	return out
}
