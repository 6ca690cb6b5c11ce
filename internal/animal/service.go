package animal

import (
	"strings"
	"time"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/farmstack/farm-backend/internal/farm"
	"github.com/farmstack/farm-backend/internal/plot"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

type CreateInput struct {
	FarmUUID       string  `json:"farm_id"`
	PlotUUID       *string `json:"plot_id"`
	AnimalTypeUUID string  `json:"animal_type_id"`

	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	Color      string `json:"color"`
	Use        string `json:"use"`

	IsBatch    bool `json:"is_batch"`
	BatchCount *int `json:"batch_count"`

	BirthDate     *time.Time `json:"birth_date"`
	BroughtInDate *time.Time `json:"brought_in_date"`
	WeaningDate   *time.Time `json:"weaning_date"`
	RemovalDate   *time.Time `json:"removal_date"`

	MotherUUID string `json:"mother_id"`
	FatherUUID string `json:"father_id"`

	Notes string `json:"notes"`
}

// Create registers an animal under an owned farm. The optional plot must
// belong to that same farm.
func Create(tx *gorm.DB, ownerID uint, in CreateInput) (*Animal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Invalid("name", "name is required")
	}

	farmID, err := db.ResolveOwnedUUID(tx, &farm.Farm{}, "farm", in.FarmUUID, "owner_id", ownerID)
	if err != nil {
		return nil, err
	}

	var plotID *uint
	if in.PlotUUID != nil && *in.PlotUUID != "" {
		housed, err := plot.Get(tx, ownerID, *in.PlotUUID)
		if err != nil {
			return nil, err
		}
		if housed.FarmID != farmID {
			return nil, apperror.Invalid("plot_id", "plot does not belong to the given farm")
		}
		plotID = &housed.ID
	}

	typeEntry, err := GetType(tx, in.AnimalTypeUUID)
	if err != nil {
		return nil, err
	}

	entry := Animal{
		UUID:          uuid.NewString(),
		FarmID:        farmID,
		PlotID:        plotID,
		AnimalTypeID:  typeEntry.ID,
		UserID:        ownerID,
		Name:          name,
		Identifier:    in.Identifier,
		Color:         in.Color,
		Use:           in.Use,
		IsBatch:       in.IsBatch,
		BatchCount:    in.BatchCount,
		BirthDate:     in.BirthDate,
		BroughtInDate: in.BroughtInDate,
		WeaningDate:   in.WeaningDate,
		RemovalDate:   in.RemovalDate,
		MotherUUID:    in.MotherUUID,
		FatherUUID:    in.FatherUUID,
		Notes:         in.Notes,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return &entry, nil
}

func resolveOwned(tx *gorm.DB, ownerID uint, animalUUID string) (uint, error) {
	return db.ResolveOwnedUUID(tx, &Animal{}, "animal", animalUUID, "user_id", ownerID)
}

// viewQuery joins the referenced rows so their external identifiers come back
// in the same select.
func viewQuery(tx *gorm.DB, ownerID uint) *gorm.DB {
	return tx.Model(&Animal{}).
		Select("animals.*, farms.uuid AS farm_uuid, plots.uuid AS plot_uuid, animal_types.uuid AS animal_type_uuid").
		Joins("JOIN farms ON farms.id = animals.farm_id").
		Joins("LEFT JOIN plots ON plots.id = animals.plot_id").
		Joins("JOIN animal_types ON animal_types.id = animals.animal_type_id").
		Where("animals.user_id = ?", ownerID)
}

func Get(tx *gorm.DB, ownerID uint, animalUUID string) (*View, error) {
	if _, err := uuid.Parse(animalUUID); err != nil {
		return nil, apperror.Invalid("animal_id", "malformed animal identifier")
	}

	var view View
	res := viewQuery(tx, ownerID).Where("animals.uuid = ?", animalUUID).Limit(1).Scan(&view)
	if res.Error != nil {
		return nil, apperror.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("animal")
	}
	return &view, nil
}

// ListFilter narrows an animal listing. ActiveOnly drops removed animals.
type ListFilter struct {
	FarmUUID       string
	AnimalTypeUUID string
	ActiveOnly     bool
}

func List(tx *gorm.DB, ownerID uint, f ListFilter, skip, limit int) ([]View, error) {
	q := viewQuery(tx, ownerID)

	if f.FarmUUID != "" {
		farmID, err := db.ResolveOwnedUUID(tx, &farm.Farm{}, "farm", f.FarmUUID, "owner_id", ownerID)
		if err != nil {
			return nil, err
		}
		q = q.Where("animals.farm_id = ?", farmID)
	}
	if f.AnimalTypeUUID != "" {
		typeEntry, err := GetType(tx, f.AnimalTypeUUID)
		if err != nil {
			return nil, err
		}
		q = q.Where("animals.animal_type_id = ?", typeEntry.ID)
	}
	if f.ActiveOnly {
		q = q.Where("animals.removal_date IS NULL")
	}

	var views []View
	if err := q.Order("animals.id").Offset(skip).Limit(limit).Scan(&views).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return views, nil
}

func Search(tx *gorm.DB, ownerID uint, term string, skip, limit int) ([]View, error) {
	folded := cases.Fold().String(strings.TrimSpace(term))
	if folded == "" {
		return nil, apperror.Invalid("q", "search term is required")
	}
	pattern := "%" + folded + "%"

	var views []View
	err := viewQuery(tx, ownerID).
		Where("LOWER(animals.name) LIKE ? OR LOWER(animals.identifier) LIKE ?", pattern, pattern).
		Order("animals.id").Offset(skip).Limit(limit).
		Scan(&views).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return views, nil
}

type UpdateInput struct {
	PlotUUID       *string `json:"plot_id"`
	AnimalTypeUUID *string `json:"animal_type_id"`

	Name       *string `json:"name"`
	Identifier *string `json:"identifier"`
	Color      *string `json:"color"`
	Use        *string `json:"use"`

	IsBatch    *bool `json:"is_batch"`
	BatchCount *int  `json:"batch_count"`

	BirthDate     *time.Time `json:"birth_date"`
	BroughtInDate *time.Time `json:"brought_in_date"`
	WeaningDate   *time.Time `json:"weaning_date"`
	RemovalDate   *time.Time `json:"removal_date"`

	MotherUUID *string `json:"mother_id"`
	FatherUUID *string `json:"father_id"`

	Notes *string `json:"notes"`

	FarmUUID *string `json:"farm_id"`
}

// Update merges the supplied fields. The farm reference is immutable; the
// plot may change to another plot of the same farm, or clear with an empty
// string.
func Update(tx *gorm.DB, ownerID uint, animalUUID string, in UpdateInput) (*View, error) {
	if in.FarmUUID != nil {
		return nil, apperror.Invalid("farm_id", "an animal cannot move to another farm")
	}

	id, err := resolveOwned(tx, ownerID, animalUUID)
	if err != nil {
		return nil, err
	}
	var entry Animal
	if err := tx.First(&entry, id).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.Invalid("name", "name cannot be empty")
		}
		entry.Name = name
	}
	if in.PlotUUID != nil {
		if *in.PlotUUID == "" {
			entry.PlotID = nil
		} else {
			housed, err := plot.Get(tx, ownerID, *in.PlotUUID)
			if err != nil {
				return nil, err
			}
			if housed.FarmID != entry.FarmID {
				return nil, apperror.Invalid("plot_id", "plot does not belong to the animal's farm")
			}
			entry.PlotID = &housed.ID
		}
	}
	if in.AnimalTypeUUID != nil {
		typeEntry, err := GetType(tx, *in.AnimalTypeUUID)
		if err != nil {
			return nil, err
		}
		entry.AnimalTypeID = typeEntry.ID
	}
	if in.Identifier != nil {
		entry.Identifier = *in.Identifier
	}
	if in.Color != nil {
		entry.Color = *in.Color
	}
	if in.Use != nil {
		entry.Use = *in.Use
	}
	if in.IsBatch != nil {
		entry.IsBatch = *in.IsBatch
	}
	if in.BatchCount != nil {
		entry.BatchCount = in.BatchCount
	}
	if in.BirthDate != nil {
		entry.BirthDate = in.BirthDate
	}
	if in.BroughtInDate != nil {
		entry.BroughtInDate = in.BroughtInDate
	}
	if in.WeaningDate != nil {
		entry.WeaningDate = in.WeaningDate
	}
	if in.RemovalDate != nil {
		entry.RemovalDate = in.RemovalDate
	}
	if in.MotherUUID != nil {
		entry.MotherUUID = *in.MotherUUID
	}
	if in.FatherUUID != nil {
		entry.FatherUUID = *in.FatherUUID
	}
	if in.Notes != nil {
		entry.Notes = *in.Notes
	}

	if err := tx.Save(&entry).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return Get(tx, ownerID, animalUUID)
}

func Delete(tx *gorm.DB, ownerID uint, animalUUID string) error {
	id, err := resolveOwned(tx, ownerID, animalUUID)
	if err != nil {
		return err
	}
	if err := tx.Delete(&Animal{}, id).Error; err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func Count(tx *gorm.DB, ownerID uint, activeOnly bool) (int64, error) {
	q := tx.Model(&Animal{}).Where("user_id = ?", ownerID)
	if activeOnly {
		q = q.Where("removal_date IS NULL")
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

type Statistics struct {
	TotalAnimals int64            `json:"total_animals"`
	Active       int64            `json:"active"`
	Removed      int64            `json:"removed"`
	ByCategory   map[string]int64 `json:"by_category"`
}

// GetStatistics aggregates the principal's animals in one transaction.
// Batches count as one row each; batch sizes are not expanded.
func GetStatistics(tx *gorm.DB, ownerID uint) (*Statistics, error) {
	stats := Statistics{ByCategory: map[string]int64{}}

	err := tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Animal{}).Where("user_id = ?", ownerID).
			Count(&stats.TotalAnimals).Error; err != nil {
			return apperror.Internal(err)
		}
		if err := tx.Model(&Animal{}).
			Where("user_id = ? AND removal_date IS NULL", ownerID).
			Count(&stats.Active).Error; err != nil {
			return apperror.Internal(err)
		}
		stats.Removed = stats.TotalAnimals - stats.Active

		type bucket struct {
			Label string
			Count int64
		}
		var rows []bucket
		err := tx.Model(&Animal{}).
			Select("animal_types.category AS label, COUNT(animals.id) AS count").
			Joins("JOIN animal_types ON animal_types.id = animals.animal_type_id").
			Where("animals.user_id = ?", ownerID).
			Group("animal_types.category").Scan(&rows).Error
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
