package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/memslab/lasermill/pkg/errors"
	"github.com/memslab/lasermill/pkg/geometry"
	"github.com/memslab/lasermill/pkg/units"
)

// =============================================================================
// Layout Serialization API
// =============================================================================

// File is the canonical serialization format for layouts. The unit is
// named (mm/um/nm); polygons appear in file order with an optional
// machining-order index each.
type File struct {
	Unit     string        `json:"unit"`
	Polygons []FilePolygon `json:"polygons"`
}

// FilePolygon is one polygon entry of a layout file.
type FilePolygon struct {
	Order    int              `json:"order,omitempty"` // 1-based machining position; 0 = file order
	Vertices []geometry.Point `json:"vertices"`
}

// ReadLayoutFile reads a JSON layout file and returns the validated
// layout.
func ReadLayoutFile(path string) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeNotFound, err, "open layout %s", path)
	}
	defer f.Close()
	return ReadLayout(f)
}

// ReadLayout decodes a JSON layout from an io.Reader.
// Use ReadLayoutFile for files.
func ReadLayout(r io.Reader) (Layout, error) {
	var data File
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidLayout, err, "decode layout")
	}
	return FromFile(data)
}

// FromFile validates a decoded layout file into a Layout.
func FromFile(data File) (Layout, error) {
	unit, err := units.Factor(data.Unit)
	if err != nil {
		return Layout{}, err
	}

	vertexLists := make([][]geometry.Point, len(data.Polygons))
	var order []int
	anyOrder := false
	for i, fp := range data.Polygons {
		vertexLists[i] = fp.Vertices
		if fp.Order != 0 {
			anyOrder = true
		}
	}
	if anyOrder {
		order = make([]int, len(data.Polygons))
		for i, fp := range data.Polygons {
			order[i] = fp.Order
		}
	}

	return FromVertices(unit, vertexLists, order)
}

// WriteLayoutFile writes a layout to a JSON file.
// The file is created with 0644 permissions.
func WriteLayoutFile(l Layout, unitName string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(l, unitName, f)
}

// WriteLayout writes a layout as JSON to an io.Writer. Coordinates are
// converted from the layout's working unit into unitName at this
// boundary.
func WriteLayout(l Layout, unitName string, w io.Writer) error {
	sink, err := units.Factor(unitName)
	if err != nil {
		return err
	}
	factor, err := units.ConversionFactor(l.Unit(), sink)
	if err != nil {
		return err
	}

	out := File{Unit: unitName, Polygons: make([]FilePolygon, l.NumPolygons())}
	for i := 0; i < l.NumPolygons(); i++ {
		verts := l.Polygon(i).Vertices()
		fp := FilePolygon{Order: i + 1, Vertices: make([]geometry.Point, len(verts))}
		for j, v := range verts {
			fp.Vertices[j] = geometry.Point{X: v.X * factor, Y: v.Y * factor}
		}
		out.Polygons[i] = fp
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
