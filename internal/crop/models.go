package crop

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// CropGroup classifies a catalog entry. Closed set.
type CropGroup string

const (
	GroupFruit      CropGroup = "fruit"
	GroupVegetable  CropGroup = "vegetable"
	GroupCereal     CropGroup = "cereal"
	GroupLegume     CropGroup = "legume"
	GroupRoot       CropGroup = "root"
	GroupTuber      CropGroup = "tuber"
	GroupLeafyGreen CropGroup = "leafy_green"
	GroupHerb       CropGroup = "herb"
	GroupFlower     CropGroup = "flower"
	GroupOther      CropGroup = "other"
)

var cropGroups = map[CropGroup]bool{
	GroupFruit: true, GroupVegetable: true, GroupCereal: true,
	GroupLegume: true, GroupRoot: true, GroupTuber: true,
	GroupLeafyGreen: true, GroupHerb: true, GroupFlower: true,
	GroupOther: true,
}

func (g CropGroup) Valid() bool { return cropGroups[g] }

type Lifecycle string

const (
	LifecycleAnnual    Lifecycle = "annual"
	LifecyclePerennial Lifecycle = "perennial"
	LifecycleBiennial  Lifecycle = "biennial"
)

func (l Lifecycle) Valid() bool {
	return l == LifecycleAnnual || l == LifecyclePerennial || l == LifecycleBiennial
}

type SeedlingType string

const (
	SeedlingDirectSeed SeedlingType = "direct_seed"
	SeedlingTransplant SeedlingType = "transplant"
	SeedlingBoth       SeedlingType = "both"
)

func (s SeedlingType) Valid() bool {
	return s == SeedlingDirectSeed || s == SeedlingTransplant || s == SeedlingBoth
}

// Crop is a shared reference-catalog entry. It carries no ownership and no
// geometry; writes are admin-gated. scientific_name is derived from genus and
// species and never stored independently.
type Crop struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	UUID string `gorm:"size:36;uniqueIndex;not null" json:"uuid"`

	CommonName string `gorm:"size:255;not null;index" json:"common_name"`
	Genus      string `gorm:"size:100" json:"genus"`
	Species    string `gorm:"size:100" json:"species"`

	CropGroup CropGroup `gorm:"size:50;index" json:"crop_group"`
	Lifecycle Lifecycle `gorm:"size:20" json:"lifecycle"`

	GerminationDays  *int `json:"germination_days"`
	DaysToTransplant *int `json:"days_to_transplant"`
	DaysToMaturity   *int `json:"days_to_maturity"`

	NitrogenNeeds    *float64 `json:"nitrogen_needs"`
	PhosphorusNeeds  *float64 `json:"phosphorus_needs"`
	PotassiumNeeds   *float64 `json:"potassium_needs"`
	WaterCoefficient *float64 `json:"water_coefficient"`

	YieldPerPlant *float64 `json:"yield_per_plant"`
	YieldPerArea  *float64 `json:"yield_per_area"`

	PlantingMethods  pq.StringArray `gorm:"type:text[]" json:"planting_methods"`
	PlantingSpacingM *float64       `json:"planting_spacing_m"`
	RowSpacingM      *float64       `json:"row_spacing_m"`
	SeedlingType     SeedlingType   `gorm:"size:20" json:"seedling_type"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Crop) TableName() string { return "crops" }

// ScientificName is the derived "Genus species" form, nil unless both parts
// are present.
func (c *Crop) ScientificName() *string {
	if c.Genus == "" || c.Species == "" {
		return nil
	}
	s := c.Genus + " " + c.Species
	return &s
}

func (c Crop) MarshalJSON() ([]byte, error) {
	type alias Crop
	return json.Marshal(struct {
		alias
		ScientificName *string `json:"scientific_name"`
	}{alias(c), c.ScientificName()})
}
