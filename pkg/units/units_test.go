package units

import (
	"math"
	"testing"

	"github.com/memslab/lasermill/pkg/errors"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		from, to   string
		want       float64
		wantErr    bool
		wantErrIs  errors.Code
	}{
		{name: "MmToUm", value: 1.5, from: "mm", to: "um", want: 1500},
		{name: "UmToNm", value: 2, from: "um", to: "nm", want: 2000},
		{name: "SameUnit", value: 7, from: "um", to: "um", want: 7},
		{name: "MetersToMm", value: 0.001, from: "m", to: "mm", want: 1},
		{name: "UnknownFrom", value: 1, from: "ft", to: "mm", wantErr: true, wantErrIs: errors.ErrCodeUnitMismatch},
		{name: "UnknownTo", value: 1, from: "mm", to: "cubits", wantErr: true, wantErrIs: errors.ErrCodeUnitMismatch},
		{name: "Empty", value: 1, from: "", to: "mm", wantErr: true, wantErrIs: errors.ErrCodeUnitMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.value, tt.from, tt.to)
			if tt.wantErr {
				if !errors.Is(err, tt.wantErrIs) {
					t.Fatalf("Convert() error = %v, want code %s", err, tt.wantErrIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Convert() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestConversionFactor(t *testing.T) {
	// um source, mm sink: coordinates shrink by 1000.
	f, err := ConversionFactor(1e-6, 1e-3)
	if err != nil {
		t.Fatalf("ConversionFactor() error = %v", err)
	}
	if math.Abs(f-1e-3) > 1e-15 {
		t.Errorf("ConversionFactor() = %g, want 1e-3", f)
	}

	if _, err := ConversionFactor(0, 1e-3); !errors.Is(err, errors.ErrCodeUnitMismatch) {
		t.Errorf("zero source unit: error = %v, want UNIT_MISMATCH", err)
	}
}
