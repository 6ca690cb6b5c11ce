package crop

import (
	"errors"
	"strings"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

type CreateInput struct {
	CommonName string `json:"common_name"`
	Genus      string `json:"genus"`
	Species    string `json:"species"`

	CropGroup    CropGroup    `json:"crop_group"`
	Lifecycle    Lifecycle    `json:"lifecycle"`
	SeedlingType SeedlingType `json:"seedling_type"`

	GerminationDays  *int `json:"germination_days"`
	DaysToTransplant *int `json:"days_to_transplant"`
	DaysToMaturity   *int `json:"days_to_maturity"`

	NitrogenNeeds    *float64 `json:"nitrogen_needs"`
	PhosphorusNeeds  *float64 `json:"phosphorus_needs"`
	PotassiumNeeds   *float64 `json:"potassium_needs"`
	WaterCoefficient *float64 `json:"water_coefficient"`

	YieldPerPlant *float64 `json:"yield_per_plant"`
	YieldPerArea  *float64 `json:"yield_per_area"`

	PlantingMethods  []string `json:"planting_methods"`
	PlantingSpacingM *float64 `json:"planting_spacing_m"`
	RowSpacingM      *float64 `json:"row_spacing_m"`

	Notes string `json:"notes"`

	// scientific_name is derived; supplying it is an error.
	ScientificName *string `json:"scientific_name"`
}

func validateEnums(group CropGroup, lifecycle Lifecycle, seedling SeedlingType) error {
	if group != "" && !group.Valid() {
		return apperror.Invalid("crop_group", "invalid crop_group: "+string(group))
	}
	if lifecycle != "" && !lifecycle.Valid() {
		return apperror.Invalid("lifecycle", "invalid lifecycle: "+string(lifecycle))
	}
	if seedling != "" && !seedling.Valid() {
		return apperror.Invalid("seedling_type", "invalid seedling_type: "+string(seedling))
	}
	return nil
}

func Create(tx *gorm.DB, in CreateInput) (*Crop, error) {
	commonName := strings.TrimSpace(in.CommonName)
	if commonName == "" {
		return nil, apperror.Invalid("common_name", "common_name is required")
	}
	if in.ScientificName != nil {
		return nil, apperror.Invalid("scientific_name", "scientific_name is derived from genus and species")
	}
	if err := validateEnums(in.CropGroup, in.Lifecycle, in.SeedlingType); err != nil {
		return nil, err
	}

	entry := Crop{
		UUID:             uuid.NewString(),
		CommonName:       commonName,
		Genus:            in.Genus,
		Species:          in.Species,
		CropGroup:        in.CropGroup,
		Lifecycle:        in.Lifecycle,
		SeedlingType:     in.SeedlingType,
		GerminationDays:  in.GerminationDays,
		DaysToTransplant: in.DaysToTransplant,
		DaysToMaturity:   in.DaysToMaturity,
		NitrogenNeeds:    in.NitrogenNeeds,
		PhosphorusNeeds:  in.PhosphorusNeeds,
		PotassiumNeeds:   in.PotassiumNeeds,
		WaterCoefficient: in.WaterCoefficient,
		YieldPerPlant:    in.YieldPerPlant,
		YieldPerArea:     in.YieldPerArea,
		PlantingMethods:  in.PlantingMethods,
		PlantingSpacingM: in.PlantingSpacingM,
		RowSpacingM:      in.RowSpacingM,
		Notes:            in.Notes,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return &entry, nil
}

func Get(tx *gorm.DB, cropUUID string) (*Crop, error) {
	if _, err := uuid.Parse(cropUUID); err != nil {
		return nil, apperror.Invalid("crop_id", "malformed crop identifier")
	}
	var entry Crop
	err := tx.Where("uuid = ?", cropUUID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("crop")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &entry, nil
}

type ListFilter struct {
	Group     CropGroup
	Lifecycle Lifecycle
}

func List(tx *gorm.DB, f ListFilter, skip, limit int) ([]Crop, error) {
	if err := validateEnums(f.Group, f.Lifecycle, ""); err != nil {
		return nil, err
	}

	q := tx.Model(&Crop{})
	if f.Group != "" {
		q = q.Where("crop_group = ?", f.Group)
	}
	if f.Lifecycle != "" {
		q = q.Where("lifecycle = ?", f.Lifecycle)
	}

	var crops []Crop
	if err := q.Order("id").Offset(skip).Limit(limit).Find(&crops).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return crops, nil
}

// Search matches the term case-insensitively against common name, genus and
// species. Case folding goes through x/text so non-ASCII names match too.
func Search(tx *gorm.DB, term string, skip, limit int) ([]Crop, error) {
	folded := cases.Fold().String(strings.TrimSpace(term))
	if folded == "" {
		return nil, apperror.Invalid("q", "search term is required")
	}
	pattern := "%" + folded + "%"

	var crops []Crop
	err := tx.Where(
		"LOWER(common_name) LIKE ? OR LOWER(genus) LIKE ? OR LOWER(species) LIKE ?",
		pattern, pattern, pattern,
	).Order("id").Offset(skip).Limit(limit).Find(&crops).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return crops, nil
}

type UpdateInput struct {
	CommonName *string `json:"common_name"`
	Genus      *string `json:"genus"`
	Species    *string `json:"species"`

	// Empty string clears an enum field.
	CropGroup    *CropGroup    `json:"crop_group"`
	Lifecycle    *Lifecycle    `json:"lifecycle"`
	SeedlingType *SeedlingType `json:"seedling_type"`

	GerminationDays  *int `json:"germination_days"`
	DaysToTransplant *int `json:"days_to_transplant"`
	DaysToMaturity   *int `json:"days_to_maturity"`

	NitrogenNeeds    *float64 `json:"nitrogen_needs"`
	PhosphorusNeeds  *float64 `json:"phosphorus_needs"`
	PotassiumNeeds   *float64 `json:"potassium_needs"`
	WaterCoefficient *float64 `json:"water_coefficient"`

	YieldPerPlant *float64 `json:"yield_per_plant"`
	YieldPerArea  *float64 `json:"yield_per_area"`

	PlantingMethods  *[]string `json:"planting_methods"`
	PlantingSpacingM *float64  `json:"planting_spacing_m"`
	RowSpacingM      *float64  `json:"row_spacing_m"`

	Notes *string `json:"notes"`

	ScientificName *string `json:"scientific_name"`
}

// Update merges only the supplied fields. scientific_name follows genus and
// species automatically because it is derived at read time.
func Update(tx *gorm.DB, cropUUID string, in UpdateInput) (*Crop, error) {
	if in.ScientificName != nil {
		return nil, apperror.Invalid("scientific_name", "scientific_name is derived from genus and species")
	}

	entry, err := Get(tx, cropUUID)
	if err != nil {
		return nil, err
	}

	if in.CommonName != nil {
		name := strings.TrimSpace(*in.CommonName)
		if name == "" {
			return nil, apperror.Invalid("common_name", "common_name cannot be empty")
		}
		entry.CommonName = name
	}
	if in.Genus != nil {
		entry.Genus = *in.Genus
	}
	if in.Species != nil {
		entry.Species = *in.Species
	}
	if in.CropGroup != nil {
		if *in.CropGroup != "" && !in.CropGroup.Valid() {
			return nil, apperror.Invalid("crop_group", "invalid crop_group: "+string(*in.CropGroup))
		}
		entry.CropGroup = *in.CropGroup
	}
	if in.Lifecycle != nil {
		if *in.Lifecycle != "" && !in.Lifecycle.Valid() {
			return nil, apperror.Invalid("lifecycle", "invalid lifecycle: "+string(*in.Lifecycle))
		}
		entry.Lifecycle = *in.Lifecycle
	}
	if in.SeedlingType != nil {
		if *in.SeedlingType != "" && !in.SeedlingType.Valid() {
			return nil, apperror.Invalid("seedling_type", "invalid seedling_type: "+string(*in.SeedlingType))
		}
		entry.SeedlingType = *in.SeedlingType
	}

	if in.GerminationDays != nil {
		entry.GerminationDays = in.GerminationDays
	}
	if in.DaysToTransplant != nil {
		entry.DaysToTransplant = in.DaysToTransplant
	}
	if in.DaysToMaturity != nil {
		entry.DaysToMaturity = in.DaysToMaturity
	}
	if in.NitrogenNeeds != nil {
		entry.NitrogenNeeds = in.NitrogenNeeds
	}
	if in.PhosphorusNeeds != nil {
		entry.PhosphorusNeeds = in.PhosphorusNeeds
	}
	if in.PotassiumNeeds != nil {
		entry.PotassiumNeeds = in.PotassiumNeeds
	}
	if in.WaterCoefficient != nil {
		entry.WaterCoefficient = in.WaterCoefficient
	}
	if in.YieldPerPlant != nil {
		entry.YieldPerPlant = in.YieldPerPlant
	}
	if in.YieldPerArea != nil {
		entry.YieldPerArea = in.YieldPerArea
	}
	if in.PlantingMethods != nil {
		entry.PlantingMethods = *in.PlantingMethods
	}
	if in.PlantingSpacingM != nil {
		entry.PlantingSpacingM = in.PlantingSpacingM
	}
	if in.RowSpacingM != nil {
		entry.RowSpacingM = in.RowSpacingM
	}
	if in.Notes != nil {
		entry.Notes = *in.Notes
	}

	if err := tx.Save(entry).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return entry, nil
}

// Delete refuses to remove a catalog entry while any planted crop still
// references it.
func Delete(tx *gorm.DB, cropUUID string) error {
	entry, err := Get(tx, cropUUID)
	if err != nil {
		return err
	}

	var refs int64
	if err := tx.Table("planted_crops").Where("crop_id = ?", entry.ID).Count(&refs).Error; err != nil {
		return apperror.Internal(err)
	}
	if refs > 0 {
		return apperror.Referenced("crop")
	}

	if err := tx.Delete(&Crop{}, entry.ID).Error; err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func Count(tx *gorm.DB, f ListFilter) (int64, error) {
	if err := validateEnums(f.Group, f.Lifecycle, ""); err != nil {
		return 0, err
	}

	q := tx.Model(&Crop{})
	if f.Group != "" {
		q = q.Where("crop_group = ?", f.Group)
	}
	if f.Lifecycle != "" {
		q = q.Where("lifecycle = ?", f.Lifecycle)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

type Statistics struct {
	TotalCrops        int64            `json:"total_crops"`
	ByCropGroup       map[string]int64 `json:"by_crop_group"`
	ByLifecycle       map[string]int64 `json:"by_lifecycle"`
	AvgDaysToMaturity float64          `json:"avg_days_to_maturity"`
}

// GetStatistics aggregates the catalog in one transaction.
func GetStatistics(tx *gorm.DB) (*Statistics, error) {
	stats := Statistics{
		ByCropGroup: map[string]int64{},
		ByLifecycle: map[string]int64{},
	}

	err := tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Crop{}).Count(&stats.TotalCrops).Error; err != nil {
			return apperror.Internal(err)
		}
		if stats.TotalCrops == 0 {
			return nil
		}

		type bucket struct {
			Label string
			Count int64
		}

		var groups []bucket
		err := tx.Model(&Crop{}).
			Select("crop_group AS label, COUNT(id) AS count").
			Group("crop_group").Scan(&groups).Error
		if err != nil {
			return apperror.Internal(err)
		}
		for _, b := range groups {
			if b.Label == "" {
				b.Label = "unknown"
			}
			stats.ByCropGroup[b.Label] = b.Count
		}

		var lifecycles []bucket
		err = tx.Model(&Crop{}).
			Select("lifecycle AS label, COUNT(id) AS count").
			Group("lifecycle").Scan(&lifecycles).Error
		if err != nil {
			return apperror.Internal(err)
		}
		for _, b := range lifecycles {
			if b.Label == "" {
				b.Label = "unknown"
			}
			stats.ByLifecycle[b.Label] = b.Count
		}

		err = tx.Model(&Crop{}).Where("days_to_maturity IS NOT NULL").
			Select("COALESCE(AVG(days_to_maturity), 0)").
			Scan(&stats.AvgDaysToMaturity).Error
		if err != nil {
			return apperror.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
