package planted

import "time"

// PlantedCrop records a crop planted in a plot. The plot must have a
// plantable type at the time of planting; the record keeps internal keys
// to the crop, plot and owning user.
type PlantedCrop struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	UUID string `gorm:"size:36;uniqueIndex;not null" json:"id"`

	CropID uint `gorm:"not null;index" json:"-"`
	PlotID uint `gorm:"not null;index" json:"-"`
	UserID uint `gorm:"not null;index" json:"-"`

	PlantingMethod  string   `gorm:"size:100" json:"planting_method"`
	PlantingSpacing *float64 `json:"planting_spacing"`

	GerminationDate *time.Time `json:"germination_date"`
	TransplantDate  *time.Time `json:"transplant_date"`
	HarvestDate     *time.Time `json:"harvest_date"`

	SeedlingAge    *int     `json:"seedling_age"`
	NumberOfCrops  *int     `json:"number_of_crops"`
	EstimatedYield *float64 `json:"estimated_yield"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PlantedCrop) TableName() string { return "planted_crops" }

// View is a planted crop with the referenced rows' external identifiers.
type View struct {
	PlantedCrop
	CropUUID string `json:"crop_id"`
	PlotUUID string `json:"plot_id"`
	UserUUID string `json:"user_id"`
}
