// Package units maintains the registry of length units understood at
// the pipeline's read/write boundaries. The core works in a single
// working unit for the lifetime of a run; conversions to and from
// file-specific units happen exactly once, at the boundary.
package units

import (
	"sort"
	"strings"

	"github.com/memslab/lasermill/pkg/errors"
)

// Factors are scaling factors with respect to meters.
var factors = map[string]float64{
	"m":  1,
	"mm": 1e-3,
	"um": 1e-6,
	"nm": 1e-9,
}

// Micrometers is the default working unit of the pipeline.
const Micrometers = 1e-6

// Valid returns the recognized unit names, sorted, for error messages.
func Valid() []string {
	names := make([]string, 0, len(factors))
	for name := range factors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Factor resolves a unit name to its scaling factor with respect to
// meters. Fails with a UNIT_MISMATCH error for unrecognized names.
func Factor(unit string) (float64, error) {
	if err := errors.ValidateUnitName(unit); err != nil {
		return 0, err
	}
	f, ok := factors[unit]
	if !ok {
		return 0, errors.New(errors.ErrCodeUnitMismatch,
			"unit %q is unrecognized; use one of: %s", unit, strings.Join(Valid(), ", "))
	}
	return f, nil
}

// Convert converts a value between two named units.
func Convert(value float64, fromUnit, toUnit string) (float64, error) {
	from, err := Factor(fromUnit)
	if err != nil {
		return 0, err
	}
	to, err := Factor(toUnit)
	if err != nil {
		return 0, err
	}
	return value * from / to, nil
}

// ConversionFactor returns the multiplier taking coordinates expressed
// in the source unit (a factor relative to meters) into the sink unit.
// Both factors must be positive.
func ConversionFactor(sourceUnit, sinkUnit float64) (float64, error) {
	if sourceUnit <= 0 || sinkUnit <= 0 {
		return 0, errors.New(errors.ErrCodeUnitMismatch,
			"length units must be positive scale factors: source=%g sink=%g", sourceUnit, sinkUnit)
	}
	return sourceUnit / sinkUnit, nil
}
