package geo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Polygon is a boundary column stored as GeoJSON text. Storing the GeoJSON
// form keeps the same representation across Postgres and the SQLite test
// driver while the SRID stays fixed at 4326.
type Polygon struct {
	orb.Polygon
}

func (p Polygon) Value() (driver.Value, error) {
	if p.Polygon == nil {
		return nil, nil
	}
	b, err := geojson.NewGeometry(p.Polygon).MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Polygon) Scan(src interface{}) error {
	if src == nil {
		p.Polygon = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("geo: cannot scan %T into Polygon", src)
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return err
	}
	poly, ok := g.Geometry().(orb.Polygon)
	if !ok {
		return fmt.Errorf("geo: stored geometry is %s, expected Polygon", g.Type)
	}
	p.Polygon = poly
	return nil
}

func (p Polygon) MarshalJSON() ([]byte, error) {
	if p.Polygon == nil {
		return []byte("null"), nil
	}
	return geojson.NewGeometry(p.Polygon).MarshalJSON()
}

func (p *Polygon) UnmarshalJSON(data []byte) error {
	return p.Scan(data)
}

// Point is a derived centroid column, also stored as GeoJSON text.
type Point struct {
	orb.Point
	Valid bool
}

func NewPoint(pt orb.Point) Point {
	return Point{Point: pt, Valid: true}
}

func (p Point) Value() (driver.Value, error) {
	if !p.Valid {
		return nil, nil
	}
	b, err := geojson.NewGeometry(p.Point).MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Point) Scan(src interface{}) error {
	if src == nil {
		p.Valid = false
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("geo: cannot scan %T into Point", src)
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return err
	}
	pt, ok := g.Geometry().(orb.Point)
	if !ok {
		return fmt.Errorf("geo: stored geometry is %s, expected Point", g.Type)
	}
	p.Point = pt
	p.Valid = true
	return nil
}

func (p Point) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return geojson.NewGeometry(p.Point).MarshalJSON()
}

func (p *Point) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		p.Valid = false
		return nil
	}
	return p.Scan(data)
}

var _ json.Marshaler = Polygon{}
var _ json.Marshaler = Point{}
