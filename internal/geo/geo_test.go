package geo

import (
	"encoding/json"
	"testing"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// degPerMeter at the equator for a spherical earth (2*pi*R / 360 meters per degree).
const degPerMeter = 1.0 / 111319.49079327358

func squarePolygon(side float64) orb.Polygon {
	d := side * degPerMeter
	return orb.Polygon{orb.Ring{
		{0, 0}, {d, 0}, {d, d}, {0, d}, {0, 0},
	}}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(squarePolygon(100)))

	openRing := orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}}
	assert.ErrorIs(t, Validate(openRing), apperror.ErrInvalid)

	tooFew := orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {0, 0}}}
	assert.ErrorIs(t, Validate(tooFew), apperror.ErrInvalid)

	outOfRange := orb.Polygon{orb.Ring{{0, 0}, {181, 0}, {181, 1}, {0, 1}, {0, 0}}}
	assert.ErrorIs(t, Validate(outOfRange), apperror.ErrInvalid)

	assert.ErrorIs(t, Validate(orb.Polygon{}), apperror.ErrInvalid)
}

func TestDeriveSquareArea(t *testing.T) {
	// A 100m x 100m square at the equator should come out near 10,000 sqm
	// when computed on the geographic surface.
	area, centroid := Derive(squarePolygon(100))
	assert.InDelta(t, 10000.0, area, 50.0)

	d := 100 * degPerMeter
	assert.InDelta(t, d/2, centroid.Lon(), 1e-9)
	assert.InDelta(t, d/2, centroid.Lat(), 1e-9)
}

func TestDeriveDeterministic(t *testing.T) {
	p := squarePolygon(250)
	a1, c1 := Derive(p)
	a2, c2 := Derive(p)
	assert.Equal(t, a1, a2)
	assert.Equal(t, c1, c2)
}

func TestContains(t *testing.T) {
	outer := squarePolygon(1000)
	inner := orb.Polygon{orb.Ring{
		{0.0001, 0.0001}, {0.0002, 0.0001}, {0.0002, 0.0002}, {0.0001, 0.0002}, {0.0001, 0.0001},
	}}
	assert.True(t, Contains(outer, inner))

	outside := orb.Polygon{orb.Ring{
		{1, 1}, {1.0001, 1}, {1.0001, 1.0001}, {1, 1.0001}, {1, 1},
	}}
	assert.False(t, Contains(outer, outside))
}

func TestParsePolygon(t *testing.T) {
	raw := json.RawMessage(`{"type":"Polygon","coordinates":[[[0,0],[0.001,0],[0.001,0.001],[0,0.001],[0,0]]]}`)
	poly, err := ParsePolygon(raw)
	require.NoError(t, err)
	assert.Len(t, poly[0], 5)

	_, err = ParsePolygon(json.RawMessage(`{"type":"Point","coordinates":[1,2]}`))
	assert.ErrorIs(t, err, apperror.ErrInvalid)

	_, err = ParsePolygon(json.RawMessage(`not json`))
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestPolygonColumnRoundTrip(t *testing.T) {
	col := Polygon{squarePolygon(100)}
	val, err := col.Value()
	require.NoError(t, err)

	var back Polygon
	require.NoError(t, back.Scan(val))
	assert.Equal(t, col.Polygon, back.Polygon)
}

func TestPointColumnNull(t *testing.T) {
	var p Point
	require.NoError(t, p.Scan(nil))
	assert.False(t, p.Valid)

	val, err := p.Value()
	require.NoError(t, err)
	assert.Nil(t, val)
}
