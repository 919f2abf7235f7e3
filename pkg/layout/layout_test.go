package layout

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/memslab/lasermill/pkg/errors"
	"github.com/memslab/lasermill/pkg/geometry"
	"github.com/memslab/lasermill/pkg/units"
)

func square(origin geometry.Point, side float64) []geometry.Point {
	return []geometry.Point{
		origin,
		{X: origin.X + side, Y: origin.Y},
		{X: origin.X + side, Y: origin.Y + side},
		{X: origin.X, Y: origin.Y + side},
	}
}

func TestFromVerticesOrder(t *testing.T) {
	a := square(geometry.Point{X: 0, Y: 0}, 10)
	b := square(geometry.Point{X: 100, Y: 0}, 10)
	c := square(geometry.Point{X: 200, Y: 0}, 10)

	// c machines first, a second, b last.
	l, err := FromVertices(units.Micrometers, [][]geometry.Point{a, b, c}, []int{2, 3, 1})
	if err != nil {
		t.Fatalf("FromVertices() error = %v", err)
	}
	if l.NumPolygons() != 3 {
		t.Fatalf("NumPolygons() = %d, want 3", l.NumPolygons())
	}

	wantX := []float64{200, 0, 100}
	for i, want := range wantX {
		if got := l.Polygon(i).Vertices()[0].X; got != want {
			t.Errorf("position %d first vertex X = %g, want %g", i, got, want)
		}
	}
}

func TestFromVerticesErrors(t *testing.T) {
	good := square(geometry.Point{X: 0, Y: 0}, 10)
	degenerate := []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}

	tests := []struct {
		name     string
		vertices [][]geometry.Point
		order    []int
		wantCode errors.Code
		wantMsg  string
	}{
		{
			name:     "InvalidPolygonInBatch",
			vertices: [][]geometry.Point{good, degenerate},
			wantCode: errors.ErrCodeMalformedPolygon,
			wantMsg:  "polygon 2 is invalid",
		},
		{
			name:     "DuplicateOrderIndex",
			vertices: [][]geometry.Point{good, good},
			order:    []int{1, 1},
			wantCode: errors.ErrCodeMalformedPolygon,
			wantMsg:  "duplicate machining order",
		},
		{
			name:     "OrderIndexOutOfRange",
			vertices: [][]geometry.Point{good, good},
			order:    []int{1, 3},
			wantCode: errors.ErrCodeMalformedPolygon,
			wantMsg:  "outside 1..2",
		},
		{
			name:     "OrderLengthMismatch",
			vertices: [][]geometry.Point{good, good},
			order:    []int{1},
			wantCode: errors.ErrCodeMalformedPolygon,
			wantMsg:  "1 entries for 2 polygons",
		},
		{
			name:     "EmptyLayout",
			vertices: nil,
			wantCode: errors.ErrCodeInvalidLayout,
			wantMsg:  "no polygons",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromVertices(units.Micrometers, tt.vertices, tt.order)
			if err == nil {
				t.Fatal("FromVertices() error = nil, want error")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("error code = %v, want %v", got, tt.wantCode)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLayoutBounds(t *testing.T) {
	l, err := FromVertices(units.Micrometers, [][]geometry.Point{
		square(geometry.Point{X: -5, Y: 0}, 10),
		square(geometry.Point{X: 100, Y: 50}, 20),
	}, nil)
	if err != nil {
		t.Fatalf("FromVertices() error = %v", err)
	}

	min, max := l.Bounds()
	if min.X != -5 || min.Y != 0 {
		t.Errorf("Bounds() min = %v, want (-5, 0)", min)
	}
	if max.X != 120 || max.Y != 70 {
		t.Errorf("Bounds() max = %v, want (120, 70)", max)
	}
}

func TestLayoutTransform(t *testing.T) {
	l, err := FromVertices(units.Micrometers, [][]geometry.Point{
		square(geometry.Point{X: 0, Y: 0}, 10),
	}, nil)
	if err != nil {
		t.Fatalf("FromVertices() error = %v", err)
	}

	shifted := l.Transform(geometry.Translate(3, -4))
	min, max := shifted.Bounds()
	if min.X != 3 || min.Y != -4 || max.X != 13 || max.Y != 6 {
		t.Errorf("Bounds() after translate = %v..%v, want (3,-4)..(13,6)", min, max)
	}
	if shifted.Unit() != l.Unit() {
		t.Errorf("Transform changed unit: %g != %g", shifted.Unit(), l.Unit())
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	src := File{
		Unit: "um",
		Polygons: []FilePolygon{
			{Order: 2, Vertices: square(geometry.Point{X: 0, Y: 0}, 10)},
			{Order: 1, Vertices: square(geometry.Point{X: 50, Y: 50}, 10)},
		},
	}
	l, err := FromFile(src)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}
	if l.Unit() != units.Micrometers {
		t.Fatalf("Unit() = %g, want %g", l.Unit(), units.Micrometers)
	}
	if got := l.Polygon(0).Vertices()[0].X; got != 50 {
		t.Fatalf("machining order not applied: first vertex X = %g, want 50", got)
	}

	var buf bytes.Buffer
	if err := WriteLayout(l, "um", &buf); err != nil {
		t.Fatalf("WriteLayout() error = %v", err)
	}
	back, err := ReadLayout(&buf)
	if err != nil {
		t.Fatalf("ReadLayout() error = %v", err)
	}

	if back.NumPolygons() != l.NumPolygons() {
		t.Fatalf("NumPolygons() = %d, want %d", back.NumPolygons(), l.NumPolygons())
	}
	for i := 0; i < l.NumPolygons(); i++ {
		want := l.Polygon(i).Vertices()
		got := back.Polygon(i).Vertices()
		if len(got) != len(want) {
			t.Fatalf("polygon %d: %d vertices, want %d", i, len(got), len(want))
		}
		for j := range want {
			if math.Abs(got[j].X-want[j].X) > 1e-9 || math.Abs(got[j].Y-want[j].Y) > 1e-9 {
				t.Errorf("polygon %d vertex %d = %v, want %v", i, j, got[j], want[j])
			}
		}
	}
}

func TestWriteLayoutConvertsUnits(t *testing.T) {
	l, err := FromVertices(units.Micrometers, [][]geometry.Point{
		square(geometry.Point{X: 0, Y: 0}, 1000),
	}, nil)
	if err != nil {
		t.Fatalf("FromVertices() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteLayout(l, "mm", &buf); err != nil {
		t.Fatalf("WriteLayout() error = %v", err)
	}
	back, err := ReadLayout(&buf)
	if err != nil {
		t.Fatalf("ReadLayout() error = %v", err)
	}
	if back.Unit() != 1e-3 {
		t.Errorf("Unit() = %g, want 1e-3", back.Unit())
	}
	_, max := back.Bounds()
	if math.Abs(max.X-1) > 1e-9 {
		t.Errorf("max X = %g mm, want 1", max.X)
	}
}

func TestReadLayoutBadUnit(t *testing.T) {
	_, err := ReadLayout(strings.NewReader(`{"unit":"furlong","polygons":[]}`))
	if err == nil {
		t.Fatal("ReadLayout() error = nil, want error")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeUnitMismatch {
		t.Errorf("error code = %v, want %v", got, errors.ErrCodeUnitMismatch)
	}
}
