package plot

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TypeData is the discriminated per-type attribute payload attached
// one-to-one to a plot. Each of the ten variants is a concrete struct with a
// closed field set; unknown fields in an inbound payload are rejected, never
// silently dropped.
type TypeData interface {
	Type() PlotType
	common() Common
}

// Common carries the fields shared by every variant. Embedding it also seals
// the TypeData set: only variants in this package satisfy the interface.
type Common struct {
	Name  string  `json:"name"`
	Notes *string `json:"notes,omitempty"`
}

func (c Common) common() Common { return c }

type FieldData struct {
	Common
	CropType           *string `json:"crop_type,omitempty"`
	SoilType           *string `json:"soil_type,omitempty"`
	IrrigationSystem   *string `json:"irrigation_system,omitempty"`
	FertilizerSchedule *string `json:"fertilizer_schedule,omitempty"`
	HarvestSeason      *string `json:"harvest_season,omitempty"`
}

func (FieldData) Type() PlotType { return TypeField }

type BarnData struct {
	Common
	Capacity             *int    `json:"capacity,omitempty"`
	EquipmentStored      *string `json:"equipment_stored,omitempty"`
	VentilationSystem    *string `json:"ventilation_system,omitempty"`
	ElectricityAvailable *string `json:"electricity_available,omitempty"`
	WaterAccess          *string `json:"water_access,omitempty"`
}

func (BarnData) Type() PlotType { return TypeBarn }

type PastureData struct {
	Common
	GrassType         *string `json:"grass_type,omitempty"`
	LivestockCapacity *int    `json:"livestock_capacity,omitempty"`
	FencingType       *string `json:"fencing_type,omitempty"`
	WaterSource       *string `json:"water_source,omitempty"`
	GrazingSeason     *string `json:"grazing_season,omitempty"`
}

func (PastureData) Type() PlotType { return TypePasture }

type GreenHouseData struct {
	Common
	ClimateControl  *string `json:"climate_control,omitempty"`
	HeatingSystem   *string `json:"heating_system,omitempty"`
	CoolingSystem   *string `json:"cooling_system,omitempty"`
	HumidityControl *string `json:"humidity_control,omitempty"`
	GrowingMedium   *string `json:"growing_medium,omitempty"`
}

func (GreenHouseData) Type() PlotType { return TypeGreenHouse }

type ChickenPenData struct {
	Common
	ChickenCapacity *int    `json:"chicken_capacity,omitempty"`
	CoopType        *string `json:"coop_type,omitempty"`
	NestingBoxes    *int    `json:"nesting_boxes,omitempty"`
	RunAreaCovered  *string `json:"run_area_covered,omitempty"`
	FeedingSystem   *string `json:"feeding_system,omitempty"`
}

func (ChickenPenData) Type() PlotType { return TypeChickenPen }

type CowShedData struct {
	Common
	CowCapacity     *int    `json:"cow_capacity,omitempty"`
	MilkingSystem   *string `json:"milking_system,omitempty"`
	FeedingSystem   *string `json:"feeding_system,omitempty"`
	BeddingType     *string `json:"bedding_type,omitempty"`
	WasteManagement *string `json:"waste_management,omitempty"`
}

func (CowShedData) Type() PlotType { return TypeCowShed }

type FishPondData struct {
	Common
	PondDepth        *string `json:"pond_depth,omitempty"`
	FishSpecies      *string `json:"fish_species,omitempty"`
	WaterSource      *string `json:"water_source,omitempty"`
	FiltrationSystem *string `json:"filtration_system,omitempty"`
	AerationSystem   *string `json:"aeration_system,omitempty"`
}

func (FishPondData) Type() PlotType { return TypeFishPond }

type ResidenceData struct {
	Common
	BuildingType  *string `json:"building_type,omitempty"`
	Occupancy     *int    `json:"occupancy,omitempty"`
	Utilities     *string `json:"utilities,omitempty"`
	GardenArea    *string `json:"garden_area,omitempty"`
	ParkingSpaces *int    `json:"parking_spaces,omitempty"`
}

func (ResidenceData) Type() PlotType { return TypeResidence }

type NaturalAreaData struct {
	Common
	EcosystemType      *string `json:"ecosystem_type,omitempty"`
	ConservationStatus *string `json:"conservation_status,omitempty"`
	WildlifePresent    *string `json:"wildlife_present,omitempty"`
	ManagementPlan     *string `json:"management_plan,omitempty"`
	AccessRestrictions *string `json:"access_restrictions,omitempty"`
}

func (NaturalAreaData) Type() PlotType { return TypeNaturalArea }

type WaterSourceData struct {
	Common
	SourceType        *string `json:"source_type,omitempty"`
	WaterQuality      *string `json:"water_quality,omitempty"`
	FlowRate          *string `json:"flow_rate,omitempty"`
	Depth             *string `json:"depth,omitempty"`
	TreatmentRequired *string `json:"treatment_required,omitempty"`
}

func (WaterSourceData) Type() PlotType { return TypeWaterSource }

// newTypeData is the single dispatch point from discriminator to variant.
// The switch is exhaustive over the closed type set.
func newTypeData(t PlotType) (TypeData, error) {
	switch t {
	case TypeField:
		return &FieldData{}, nil
	case TypeBarn:
		return &BarnData{}, nil
	case TypePasture:
		return &PastureData{}, nil
	case TypeGreenHouse:
		return &GreenHouseData{}, nil
	case TypeChickenPen:
		return &ChickenPenData{}, nil
	case TypeCowShed:
		return &CowShedData{}, nil
	case TypeFishPond:
		return &FishPondData{}, nil
	case TypeResidence:
		return &ResidenceData{}, nil
	case TypeNaturalArea:
		return &NaturalAreaData{}, nil
	case TypeWaterSource:
		return &WaterSourceData{}, nil
	default:
		return nil, apperror.Invalid("plot_type", "unknown plot type: "+string(t))
	}
}

// ValidateTypeData decodes a payload against the closed schema for the given
// plot type. An unknown field is a SchemaError (InvalidArgument), and the
// shared name field is required.
func ValidateTypeData(t PlotType, payload json.RawMessage) (TypeData, error) {
	td, err := newTypeData(t)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(td); err != nil {
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			return nil, apperror.Invalid("plot_type_data", "plot type data must be a JSON object")
		}
		return nil, apperror.Invalid("plot_type_data", "invalid "+string(t)+" data: "+err.Error())
	}

	if strings.TrimSpace(td.common().Name) == "" {
		return nil, apperror.Invalid("plot_type_data", "name is required")
	}
	return td, nil
}

// TypeDataRecord is the side table holding the one-to-one discriminated
// payload. The validated variant is stored in canonical JSON form; loading
// always round-trips through the variant struct, never an untyped map.
type TypeDataRecord struct {
	ID       uint     `gorm:"primaryKey"`
	UUID     string   `gorm:"size:36;uniqueIndex;not null"`
	PlotID   uint     `gorm:"uniqueIndex;not null"`
	PlotType PlotType `gorm:"size:20;not null"`

	Attributes string `gorm:"type:text;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TypeDataRecord) TableName() string { return "plot_type_data" }

// TypeDataView is the serialized form of a type-data record.
type TypeDataView struct {
	UUID     string   `json:"uuid"`
	PlotType PlotType `json:"type"`
	Data     TypeData `json:"data"`
}

// persistTypeData validates and upserts the plot's type-data record. A plot
// has at most one record, always matching its current plot_type.
func persistTypeData(tx *gorm.DB, plotID uint, t PlotType, payload json.RawMessage) (*TypeDataRecord, error) {
	td, err := ValidateTypeData(t, payload)
	if err != nil {
		return nil, err
	}

	canonical, err := json.Marshal(td)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	var rec TypeDataRecord
	err = tx.Where("plot_id = ?", plotID).First(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = TypeDataRecord{
			UUID:       uuid.NewString(),
			PlotID:     plotID,
			PlotType:   t,
			Attributes: string(canonical),
		}
		if err := tx.Create(&rec).Error; err != nil {
			return nil, apperror.Internal(err)
		}
	case err != nil:
		return nil, apperror.Internal(err)
	default:
		rec.PlotType = t
		rec.Attributes = string(canonical)
		if err := tx.Save(&rec).Error; err != nil {
			return nil, apperror.Internal(err)
		}
	}
	return &rec, nil
}

// loadTypeData returns the plot's type-data view, or nil when no record
// exists. The stored attributes are decoded through the variant struct for
// the record's discriminator.
func loadTypeData(tx *gorm.DB, plotID uint) (*TypeDataView, error) {
	var rec TypeDataRecord
	err := tx.Where("plot_id = ?", plotID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	td, err := newTypeData(rec.PlotType)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := json.Unmarshal([]byte(rec.Attributes), td); err != nil {
		return nil, apperror.Internal(err)
	}
	return &TypeDataView{UUID: rec.UUID, PlotType: rec.PlotType, Data: td}, nil
}

// discardTypeData removes the plot's type-data record if present. Called when
// plot_type changes: the old shape is invalid for the new type.
func discardTypeData(tx *gorm.DB, plotID uint) error {
	if err := tx.Where("plot_id = ?", plotID).Delete(&TypeDataRecord{}).Error; err != nil {
		return apperror.Internal(err)
	}
	return nil
}
