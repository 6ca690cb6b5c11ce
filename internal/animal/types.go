package animal

import (
	"errors"
	"strings"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

type TypeCreateInput struct {
	Breed   string `json:"breed"`
	Species string `json:"species"`
	Sex     Sex    `json:"sex"`

	Category     Category `json:"category"`
	CategoryType string   `json:"category_type"`

	PubertyAge        *int   `json:"puberty_age"`
	EstrusCycleType   string `json:"estrus_cycle_type"`
	EstrusCycleLength *int   `json:"estrus_cycle_length"`
	EstrusDuration    *int   `json:"estrus_duration"`
	BestBreedingTime  string `json:"best_breeding_time"`
	HeatSigns         string `json:"heat_signs"`
	AgeAtFirstEgg     *int   `json:"age_at_first_egg"`

	DaysToBreed  *int `json:"days_to_breed"`
	DaysToMarket *int `json:"days_to_market"`

	Notes string `json:"notes"`
}

func CreateType(tx *gorm.DB, in TypeCreateInput) (*AnimalType, error) {
	breed := strings.TrimSpace(in.Breed)
	if breed == "" {
		return nil, apperror.Invalid("breed", "breed is required")
	}
	if in.Category == "" {
		return nil, apperror.Invalid("category", "category is required")
	}
	if !in.Category.Valid() {
		return nil, apperror.Invalid("category", "invalid category: "+string(in.Category))
	}
	if in.Sex != "" && !in.Sex.Valid() {
		return nil, apperror.Invalid("sex", "invalid sex: "+string(in.Sex))
	}

	entry := AnimalType{
		UUID:              uuid.NewString(),
		Breed:             breed,
		Species:           in.Species,
		Sex:               in.Sex,
		Category:          in.Category,
		CategoryType:      in.CategoryType,
		PubertyAge:        in.PubertyAge,
		EstrusCycleType:   in.EstrusCycleType,
		EstrusCycleLength: in.EstrusCycleLength,
		EstrusDuration:    in.EstrusDuration,
		BestBreedingTime:  in.BestBreedingTime,
		HeatSigns:         in.HeatSigns,
		AgeAtFirstEgg:     in.AgeAtFirstEgg,
		DaysToBreed:       in.DaysToBreed,
		DaysToMarket:      in.DaysToMarket,
		Notes:             in.Notes,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return &entry, nil
}

func GetType(tx *gorm.DB, typeUUID string) (*AnimalType, error) {
	if _, err := uuid.Parse(typeUUID); err != nil {
		return nil, apperror.Invalid("animal_type_id", "malformed animal type identifier")
	}
	var entry AnimalType
	err := tx.Where("uuid = ?", typeUUID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("animal type")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &entry, nil
}

func ListTypes(tx *gorm.DB, category Category, skip, limit int) ([]AnimalType, error) {
	if category != "" && !category.Valid() {
		return nil, apperror.Invalid("category", "invalid category: "+string(category))
	}

	q := tx.Model(&AnimalType{})
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var types []AnimalType
	if err := q.Order("id").Offset(skip).Limit(limit).Find(&types).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return types, nil
}

func SearchTypes(tx *gorm.DB, term string, skip, limit int) ([]AnimalType, error) {
	folded := cases.Fold().String(strings.TrimSpace(term))
	if folded == "" {
		return nil, apperror.Invalid("q", "search term is required")
	}
	pattern := "%" + folded + "%"

	var types []AnimalType
	err := tx.Where(
		"LOWER(breed) LIKE ? OR LOWER(species) LIKE ? OR LOWER(category_type) LIKE ?",
		pattern, pattern, pattern,
	).Order("id").Offset(skip).Limit(limit).Find(&types).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return types, nil
}

type TypeUpdateInput struct {
	Breed   *string `json:"breed"`
	Species *string `json:"species"`
	Sex     *Sex    `json:"sex"`

	// category is required on the row; an update may change it but never
	// clear it.
	Category     *Category `json:"category"`
	CategoryType *string   `json:"category_type"`

	PubertyAge        *int    `json:"puberty_age"`
	EstrusCycleType   *string `json:"estrus_cycle_type"`
	EstrusCycleLength *int    `json:"estrus_cycle_length"`
	EstrusDuration    *int    `json:"estrus_duration"`
	BestBreedingTime  *string `json:"best_breeding_time"`
	HeatSigns         *string `json:"heat_signs"`
	AgeAtFirstEgg     *int    `json:"age_at_first_egg"`

	DaysToBreed  *int `json:"days_to_breed"`
	DaysToMarket *int `json:"days_to_market"`

	Notes *string `json:"notes"`
}

func UpdateType(tx *gorm.DB, typeUUID string, in TypeUpdateInput) (*AnimalType, error) {
	entry, err := GetType(tx, typeUUID)
	if err != nil {
		return nil, err
	}

	if in.Breed != nil {
		breed := strings.TrimSpace(*in.Breed)
		if breed == "" {
			return nil, apperror.Invalid("breed", "breed cannot be empty")
		}
		entry.Breed = breed
	}
	if in.Category != nil {
		if *in.Category == "" {
			return nil, apperror.Invalid("category", "category cannot be cleared")
		}
		if !in.Category.Valid() {
			return nil, apperror.Invalid("category", "invalid category: "+string(*in.Category))
		}
		entry.Category = *in.Category
	}
	if in.Sex != nil {
		if *in.Sex != "" && !in.Sex.Valid() {
			return nil, apperror.Invalid("sex", "invalid sex: "+string(*in.Sex))
		}
		entry.Sex = *in.Sex
	}
	if in.Species != nil {
		entry.Species = *in.Species
	}
	if in.CategoryType != nil {
		entry.CategoryType = *in.CategoryType
	}
	if in.PubertyAge != nil {
		entry.PubertyAge = in.PubertyAge
	}
	if in.EstrusCycleType != nil {
		entry.EstrusCycleType = *in.EstrusCycleType
	}
	if in.EstrusCycleLength != nil {
		entry.EstrusCycleLength = in.EstrusCycleLength
	}
	if in.EstrusDuration != nil {
		entry.EstrusDuration = in.EstrusDuration
	}
	if in.BestBreedingTime != nil {
		entry.BestBreedingTime = *in.BestBreedingTime
	}
	if in.HeatSigns != nil {
		entry.HeatSigns = *in.HeatSigns
	}
	if in.AgeAtFirstEgg != nil {
		entry.AgeAtFirstEgg = in.AgeAtFirstEgg
	}
	if in.DaysToBreed != nil {
		entry.DaysToBreed = in.DaysToBreed
	}
	if in.DaysToMarket != nil {
		entry.DaysToMarket = in.DaysToMarket
	}
	if in.Notes != nil {
		entry.Notes = *in.Notes
	}

	if err := tx.Save(entry).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return entry, nil
}

// DeleteType refuses to remove a catalog entry while any animal references it.
func DeleteType(tx *gorm.DB, typeUUID string) error {
	entry, err := GetType(tx, typeUUID)
	if err != nil {
		return err
	}

	var refs int64
	if err := tx.Model(&Animal{}).Where("animal_type_id = ?", entry.ID).Count(&refs).Error; err != nil {
		return apperror.Internal(err)
	}
	if refs > 0 {
		return apperror.Referenced("animal type")
	}

	if err := tx.Delete(&AnimalType{}, entry.ID).Error; err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func CountTypes(tx *gorm.DB, category Category) (int64, error) {
	if category != "" && !category.Valid() {
		return 0, apperror.Invalid("category", "invalid category: "+string(category))
	}

	q := tx.Model(&AnimalType{})
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

type TypeStatistics struct {
	TotalTypes int64            `json:"total_types"`
	ByCategory map[string]int64 `json:"by_category"`
}

func GetTypeStatistics(tx *gorm.DB) (*TypeStatistics, error) {
	stats := TypeStatistics{ByCategory: map[string]int64{}}

	err := tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&AnimalType{}).Count(&stats.TotalTypes).Error; err != nil {
			return apperror.Internal(err)
		}

		type bucket struct {
			Label string
			Count int64
		}
		var rows []bucket
		err := tx.Model(&AnimalType{}).
			Select("category AS label, COUNT(id) AS count").
			Group("category").Scan(&rows).Error
		if err != nil {
			return apperror.Internal(err)
		}
		for _, b := range rows {
			stats.ByCategory[b.Label] = b.Count
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
