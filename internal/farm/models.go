package farm

import (
	"time"

	"github.com/farmstack/farm-backend/internal/geo"
)

// Farm is the second level of the ownership chain (User owns Farm owns Plot
// owns PlantedCrop). The boundary is authoritative; area_sqm and centroid are
// write-time caches of a pure derivation over it and are recomputed inside
// the same transaction as every boundary write.
type Farm struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	UUID string `gorm:"size:36;uniqueIndex;not null" json:"uuid"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// Ownership is immutable after creation.
	OwnerID uint `gorm:"not null;index" json:"-"`

	Boundary geo.Polygon `gorm:"type:text;not null" json:"boundary"`
	Centroid geo.Point   `gorm:"type:text" json:"centroid"`
	AreaSqm  float64     `json:"area_sqm"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Farm) TableName() string { return "farms" }

func (f *Farm) AreaHectares() float64 { return f.AreaSqm / 10000 }

func (f *Farm) AreaAcres() float64 { return f.AreaSqm / 4047 }

// View is the serialized form of a farm. Geometry payloads are heavy, so
// list endpoints include them only when include_geojson is set.
type View struct {
	UUID        string       `json:"uuid"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	AreaSqm     float64      `json:"area_sqm"`
	Boundary    *geo.Polygon `json:"boundary,omitempty"`
	Centroid    *geo.Point   `json:"centroid,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (f *Farm) View(includeGeoJSON bool) View {
	v := View{
		UUID:        f.UUID,
		Name:        f.Name,
		Description: f.Description,
		AreaSqm:     f.AreaSqm,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	if includeGeoJSON {
		v.Boundary = &f.Boundary
		v.Centroid = &f.Centroid
	}
	return v
}

func Views(farms []Farm, includeGeoJSON bool) []View {
	views := make([]View, len(farms))
	for i := range farms {
		views[i] = farms[i].View(includeGeoJSON)
	}
	return views
}
