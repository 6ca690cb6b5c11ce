package plot

import (
	"fmt"
	"time"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/farmstack/farm-backend/internal/geo"
)

// PlotType is the discriminator for the per-type data record. The set is
// closed: exactly these ten values exist.
type PlotType string

const (
	TypeField       PlotType = "field"
	TypeBarn        PlotType = "barn"
	TypePasture     PlotType = "pasture"
	TypeGreenHouse  PlotType = "green-house"
	TypeChickenPen  PlotType = "chicken-pen"
	TypeCowShed     PlotType = "cow-shed"
	TypeFishPond    PlotType = "fish-pond"
	TypeResidence   PlotType = "residence"
	TypeNaturalArea PlotType = "natural-area"
	TypeWaterSource PlotType = "water-source"
)

// AllTypes lists the ten plot types in their canonical order.
var AllTypes = []PlotType{
	TypeField, TypeBarn, TypePasture, TypeGreenHouse, TypeChickenPen,
	TypeCowShed, TypeFishPond, TypeResidence, TypeNaturalArea, TypeWaterSource,
}

// plantable tags the types a crop may be planted in. This is a fixed in-code
// table, not a database column.
var plantable = map[PlotType]bool{
	TypeField:       true,
	TypePasture:     true,
	TypeGreenHouse:  true,
	TypeNaturalArea: true,
}

func (t PlotType) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t PlotType) Plantable() bool { return plantable[t] }

// CheckPlantable is the planting eligibility gate. It runs synchronously
// before any planted-crop create, and before an update that changes the
// referenced plot. The message wording is part of the API contract.
func CheckPlantable(t PlotType) error {
	if !plantable[t] {
		return apperror.Ineligible(fmt.Sprintf("Cannot plant a crop in a %s plot type", t))
	}
	return nil
}

// Plot is the third level of the ownership chain. Ownership is transitive:
// the plot's owner is the owner of its farm. Geometry fields follow the same
// derivation invariant as Farm, computed from the plot's own boundary.
type Plot struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	UUID string `gorm:"size:36;uniqueIndex;not null" json:"uuid"`

	Name       string `gorm:"size:255;not null" json:"name"`
	PlotNumber string `gorm:"size:50" json:"plot_number"`
	Notes      string `gorm:"type:text" json:"notes"`

	FarmID uint `gorm:"not null;index" json:"-"`

	PlotType PlotType `gorm:"size:20;not null;default:'field'" json:"plot_type"`

	Boundary geo.Polygon `gorm:"type:text;not null" json:"boundary"`
	Centroid geo.Point   `gorm:"type:text" json:"centroid"`
	AreaSqm  float64     `json:"area_sqm"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Plot) TableName() string { return "plots" }

func (p *Plot) AreaHectares() float64 { return p.AreaSqm / 10000 }

// View is the serialized form of a plot; geometry and type data are attached
// on demand.
type View struct {
	UUID       string   `json:"uuid"`
	FarmUUID   string   `json:"farm_id,omitempty"`
	Name       string   `json:"name"`
	PlotNumber string   `json:"plot_number"`
	PlotType   PlotType `json:"plot_type"`
	Notes      string   `json:"notes"`
	AreaSqm    float64  `json:"area_sqm"`

	Boundary *geo.Polygon  `json:"boundary,omitempty"`
	Centroid *geo.Point    `json:"centroid,omitempty"`
	TypeData *TypeDataView `json:"plot_type_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Plot) View(includeGeoJSON bool) View {
	v := View{
		UUID:       p.UUID,
		Name:       p.Name,
		PlotNumber: p.PlotNumber,
		PlotType:   p.PlotType,
		Notes:      p.Notes,
		AreaSqm:    p.AreaSqm,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if includeGeoJSON {
		v.Boundary = &p.Boundary
		v.Centroid = &p.Centroid
	}
	return v
}

func Views(plots []Plot, includeGeoJSON bool) []View {
	views := make([]View, len(plots))
	for i := range plots {
		views[i] = plots[i].View(includeGeoJSON)
	}
	return views
}
