package animal

import (
	"time"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexMixed  Sex = "mixed"
)

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale || s == SexMixed
}

// Category classifies an animal type. Closed set; required and never
// nullable once set.
type Category string

const (
	CategoryCattle  Category = "cattle"
	CategorySheep   Category = "sheep"
	CategoryGoat    Category = "goat"
	CategoryPig     Category = "pig"
	CategoryChicken Category = "chicken"
	CategoryDuck    Category = "duck"
	CategoryTurkey  Category = "turkey"
	CategoryRabbit  Category = "rabbit"
	CategoryFish    Category = "fish"
	CategoryOther   Category = "other"
)

var categories = map[Category]bool{
	CategoryCattle: true, CategorySheep: true, CategoryGoat: true,
	CategoryPig: true, CategoryChicken: true, CategoryDuck: true,
	CategoryTurkey: true, CategoryRabbit: true, CategoryFish: true,
	CategoryOther: true,
}

func (c Category) Valid() bool { return categories[c] }

// AnimalType is the shared breed/species reference catalog, analogous to the
// crop catalog. Writes are admin-gated; deletion is refused while any animal
// references the entry.
type AnimalType struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	UUID string `gorm:"size:36;uniqueIndex;not null" json:"uuid"`

	Breed   string `gorm:"size:255;not null;index" json:"breed"`
	Species string `gorm:"size:255" json:"species"`
	Sex     Sex    `gorm:"size:10" json:"sex"`

	Category     Category `gorm:"size:20;not null;index" json:"category"`
	CategoryType string   `gorm:"size:100" json:"category_type"`

	// Reproductive profile. Ages and cycle lengths in days, estrus duration
	// in hours.
	PubertyAge        *int   `json:"puberty_age"`
	EstrusCycleType   string `gorm:"size:100" json:"estrus_cycle_type"`
	EstrusCycleLength *int   `json:"estrus_cycle_length"`
	EstrusDuration    *int   `json:"estrus_duration"`
	BestBreedingTime  string `gorm:"size:255" json:"best_breeding_time"`
	HeatSigns         string `gorm:"type:text" json:"heat_signs"`
	AgeAtFirstEgg     *int   `json:"age_at_first_egg"`

	DaysToBreed  *int `json:"days_to_breed"`
	DaysToMarket *int `json:"days_to_market"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AnimalType) TableName() string { return "animal_types" }

// Animal is an individual animal or a batch kept on a farm, optionally housed
// on one of its plots. It is the reference holder that blocks AnimalType
// deletion.
type Animal struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	UUID string `gorm:"size:36;uniqueIndex;not null" json:"uuid"`

	FarmID       uint  `gorm:"not null;index" json:"-"`
	PlotID       *uint `gorm:"index" json:"-"`
	AnimalTypeID uint  `gorm:"not null;index" json:"-"`
	UserID       uint  `gorm:"not null;index" json:"-"`

	Name       string `gorm:"size:255;not null" json:"name"`
	Identifier string `gorm:"size:100;index" json:"identifier"`
	Color      string `gorm:"size:100" json:"color"`
	Use        string `gorm:"size:255" json:"use"`

	IsBatch    bool `gorm:"not null;default:false" json:"is_batch"`
	BatchCount *int `json:"batch_count"`

	BirthDate     *time.Time `json:"birth_date"`
	BroughtInDate *time.Time `json:"brought_in_date"`
	WeaningDate   *time.Time `json:"weaning_date"`
	RemovalDate   *time.Time `json:"removal_date"`

	MotherUUID string `gorm:"size:36" json:"mother_id"`
	FatherUUID string `gorm:"size:36" json:"father_id"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Animal) TableName() string { return "animals" }

// Active reports whether the animal is still on the farm.
func (a *Animal) Active() bool { return a.RemovalDate == nil }

// View is the serialized form of an animal: foreign keys are exposed as the
// external identifiers of the referenced rows.
type View struct {
	Animal
	FarmUUID       string  `json:"farm_id"`
	PlotUUID       *string `json:"plot_id"`
	AnimalTypeUUID string  `json:"animal_type_id"`
}
