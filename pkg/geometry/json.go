package geometry

import "encoding/json"

// MarshalJSON encodes a polygon as its vertex list.
func (pg Polygon) MarshalJSON() ([]byte, error) {
	return json.Marshal(pg.Vertices())
}

// UnmarshalJSON decodes and re-validates a vertex list. A zero-length
// list decodes to the zero polygon so optional fields stay optional.
func (pg *Polygon) UnmarshalJSON(data []byte) error {
	var pts []Point
	if err := json.Unmarshal(data, &pts); err != nil {
		return err
	}
	if len(pts) == 0 {
		*pg = Polygon{}
		return nil
	}
	decoded, err := NewPolygon(pts)
	if err != nil {
		return err
	}
	*pg = decoded
	return nil
}
