// Package geo wraps boundary validation and the derivation of the geometry
// fields (area_sqm, centroid) stored alongside every Farm and Plot boundary.
// Derivation is pure: the same polygon always yields the same outputs, and
// callers persist the outputs in the same transaction as the boundary itself.
package geo

import (
	"encoding/json"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// SRID is the reference system for every stored geometry (WGS84 lon/lat).
const SRID = 4326

// ParsePolygon decodes a GeoJSON geometry and validates it as a closed-ring
// polygon. Anything other than a valid Polygon is an InvalidArgument.
func ParsePolygon(raw json.RawMessage) (orb.Polygon, error) {
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, apperror.Invalid("boundary", "boundary must be valid GeoJSON")
	}
	poly, ok := g.Geometry().(orb.Polygon)
	if !ok {
		return nil, apperror.Invalid("boundary", "boundary must be a Polygon")
	}
	if err := Validate(poly); err != nil {
		return nil, err
	}
	return poly, nil
}

// Validate checks the structural rules for a boundary polygon: at least one
// ring, outer ring closed (first == last), minimum 4 positions (3 distinct
// vertices plus the closing point), and coordinates inside lon/lat ranges.
func Validate(p orb.Polygon) error {
	if len(p) == 0 || len(p[0]) == 0 {
		return apperror.Invalid("boundary", "boundary polygon has no coordinates")
	}
	ring := p[0]
	if len(ring) < 4 {
		return apperror.Invalid("boundary", "boundary ring needs at least 4 coordinate pairs")
	}
	if !ring.Closed() {
		return apperror.Invalid("boundary", "boundary ring must be closed (first and last coordinates equal)")
	}
	for _, pt := range ring {
		if pt.Lon() < -180 || pt.Lon() > 180 || pt.Lat() < -90 || pt.Lat() > 90 {
			return apperror.Invalid("boundary", "boundary coordinates out of longitude/latitude range")
		}
	}
	return nil
}

// Derive computes the geographic (spherical) area in square meters and the
// polygon centroid. Planar Cartesian area would be wrong by orders of
// magnitude at farm scale, so the area uses the geodesic calculation.
func Derive(p orb.Polygon) (areaSqm float64, centroid orb.Point) {
	areaSqm = geo.Area(p)
	if areaSqm < 0 {
		areaSqm = -areaSqm
	}
	centroid, _ = planar.CentroidArea(p)
	return areaSqm, centroid
}

// Contains reports whether every vertex of inner lies within outer. Used for
// the plot-inside-farm containment rule.
func Contains(outer, inner orb.Polygon) bool {
	if len(inner) == 0 {
		return false
	}
	for _, pt := range inner[0] {
		if !planar.PolygonContains(outer, pt) {
			return false
		}
	}
	return true
}
