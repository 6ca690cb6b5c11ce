package planted

import (
	"time"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/farmstack/farm-backend/internal/crop"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/farmstack/farm-backend/internal/plot"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateInput struct {
	CropUUID string `json:"crop_id"`
	PlotUUID string `json:"plot_id"`

	PlantingMethod  string   `json:"planting_method"`
	PlantingSpacing *float64 `json:"planting_spacing"`

	GerminationDate *time.Time `json:"germination_date"`
	TransplantDate  *time.Time `json:"transplant_date"`
	HarvestDate     *time.Time `json:"harvest_date"`

	SeedlingAge    *int     `json:"seedling_age"`
	NumberOfCrops  *int     `json:"number_of_crops"`
	EstimatedYield *float64 `json:"estimated_yield"`

	Notes string `json:"notes"`
}

// Create plants a crop in an owned plot. The plot's type must admit
// planting; a barn or residence rejects the record before anything is
// written.
func Create(tx *gorm.DB, ownerID uint, in CreateInput) (*PlantedCrop, error) {
	target, err := plot.Get(tx, ownerID, in.PlotUUID)
	if err != nil {
		return nil, err
	}
	if err := plot.CheckPlantable(target.PlotType); err != nil {
		return nil, err
	}

	planted, err := crop.Get(tx, in.CropUUID)
	if err != nil {
		return nil, err
	}

	entry := PlantedCrop{
		UUID:            uuid.NewString(),
		CropID:          planted.ID,
		PlotID:          target.ID,
		UserID:          ownerID,
		PlantingMethod:  in.PlantingMethod,
		PlantingSpacing: in.PlantingSpacing,
		GerminationDate: in.GerminationDate,
		TransplantDate:  in.TransplantDate,
		HarvestDate:     in.HarvestDate,
		SeedlingAge:     in.SeedlingAge,
		NumberOfCrops:   in.NumberOfCrops,
		EstimatedYield:  in.EstimatedYield,
		Notes:           in.Notes,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return &entry, nil
}

func resolveOwned(tx *gorm.DB, ownerID uint, plantedUUID string) (uint, error) {
	return db.ResolveOwnedUUID(tx, &PlantedCrop{}, "planted crop", plantedUUID, "user_id", ownerID)
}

// viewQuery joins the referenced rows so their external identifiers come
// back in the same select.
func viewQuery(tx *gorm.DB, ownerID uint) *gorm.DB {
	return tx.Model(&PlantedCrop{}).
		Select("planted_crops.*, crops.uuid AS crop_uuid, plots.uuid AS plot_uuid, users.uuid AS user_uuid").
		Joins("JOIN crops ON crops.id = planted_crops.crop_id").
		Joins("JOIN plots ON plots.id = planted_crops.plot_id").
		Joins("JOIN users ON users.id = planted_crops.user_id").
		Where("planted_crops.user_id = ?", ownerID)
}

func Get(tx *gorm.DB, ownerID uint, plantedUUID string) (*View, error) {
	if _, err := uuid.Parse(plantedUUID); err != nil {
		return nil, apperror.Invalid("planted_crop_id", "malformed planted crop identifier")
	}

	var view View
	res := viewQuery(tx, ownerID).Where("planted_crops.uuid = ?", plantedUUID).Limit(1).Scan(&view)
	if res.Error != nil {
		return nil, apperror.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("planted crop")
	}
	return &view, nil
}

// ListFilter narrows a planted crop listing by plot or crop reference.
type ListFilter struct {
	PlotUUID string
	CropUUID string
}

func applyFilter(tx, q *gorm.DB, ownerID uint, f ListFilter) (*gorm.DB, error) {
	if f.PlotUUID != "" {
		plotID, err := plot.ResolveOwned(tx, ownerID, f.PlotUUID)
		if err != nil {
			return nil, err
		}
		q = q.Where("planted_crops.plot_id = ?", plotID)
	}
	if f.CropUUID != "" {
		planted, err := crop.Get(tx, f.CropUUID)
		if err != nil {
			return nil, err
		}
		q = q.Where("planted_crops.crop_id = ?", planted.ID)
	}
	return q, nil
}

func List(tx *gorm.DB, ownerID uint, f ListFilter, skip, limit int) ([]View, error) {
	q, err := applyFilter(tx, viewQuery(tx, ownerID), ownerID, f)
	if err != nil {
		return nil, err
	}

	var views []View
	if err := q.Order("planted_crops.id").Offset(skip).Limit(limit).Scan(&views).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return views, nil
}

// Detail is a planted crop expanded with its full crop and plot rows.
type Detail struct {
	View
	Crop *crop.Crop `json:"crop"`
	Plot *plot.View `json:"plot"`
}

// ListWithDetails loads the crop and plot rows alongside each planted
// record. Plot geometry stays out of the nested views.
func ListWithDetails(tx *gorm.DB, ownerID uint, f ListFilter, skip, limit int) ([]Detail, error) {
	views, err := List(tx, ownerID, f, skip, limit)
	if err != nil {
		return nil, err
	}

	details := make([]Detail, 0, len(views))
	for _, v := range views {
		var cropRow crop.Crop
		if err := tx.First(&cropRow, v.CropID).Error; err != nil {
			return nil, apperror.Internal(err)
		}
		var plotRow plot.Plot
		if err := tx.First(&plotRow, v.PlotID).Error; err != nil {
			return nil, apperror.Internal(err)
		}
		pv := plotRow.View(false)
		details = append(details, Detail{View: v, Crop: &cropRow, Plot: &pv})
	}
	return details, nil
}

type UpdateInput struct {
	CropUUID *string `json:"crop_id"`
	PlotUUID *string `json:"plot_id"`

	PlantingMethod  *string  `json:"planting_method"`
	PlantingSpacing *float64 `json:"planting_spacing"`

	GerminationDate *time.Time `json:"germination_date"`
	TransplantDate  *time.Time `json:"transplant_date"`
	HarvestDate     *time.Time `json:"harvest_date"`

	SeedlingAge    *int     `json:"seedling_age"`
	NumberOfCrops  *int     `json:"number_of_crops"`
	EstimatedYield *float64 `json:"estimated_yield"`

	Notes *string `json:"notes"`
}

// Update merges the supplied fields. Moving the record to another plot
// re-runs the plantability gate against the destination.
func Update(tx *gorm.DB, ownerID uint, plantedUUID string, in UpdateInput) (*View, error) {
	id, err := resolveOwned(tx, ownerID, plantedUUID)
	if err != nil {
		return nil, err
	}
	var entry PlantedCrop
	if err := tx.First(&entry, id).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	if in.PlotUUID != nil {
		target, err := plot.Get(tx, ownerID, *in.PlotUUID)
		if err != nil {
			return nil, err
		}
		if err := plot.CheckPlantable(target.PlotType); err != nil {
			return nil, err
		}
		entry.PlotID = target.ID
	}
	if in.CropUUID != nil {
		planted, err := crop.Get(tx, *in.CropUUID)
		if err != nil {
			return nil, err
		}
		entry.CropID = planted.ID
	}
	if in.PlantingMethod != nil {
		entry.PlantingMethod = *in.PlantingMethod
	}
	if in.PlantingSpacing != nil {
		entry.PlantingSpacing = in.PlantingSpacing
	}
	if in.GerminationDate != nil {
		entry.GerminationDate = in.GerminationDate
	}
	if in.TransplantDate != nil {
		entry.TransplantDate = in.TransplantDate
	}
	if in.HarvestDate != nil {
		entry.HarvestDate = in.HarvestDate
	}
	if in.SeedlingAge != nil {
		entry.SeedlingAge = in.SeedlingAge
	}
	if in.NumberOfCrops != nil {
		entry.NumberOfCrops = in.NumberOfCrops
	}
	if in.EstimatedYield != nil {
		entry.EstimatedYield = in.EstimatedYield
	}
	if in.Notes != nil {
		entry.Notes = *in.Notes
	}

	if err := tx.Save(&entry).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return Get(tx, ownerID, plantedUUID)
}

func Delete(tx *gorm.DB, ownerID uint, plantedUUID string) error {
	id, err := resolveOwned(tx, ownerID, plantedUUID)
	if err != nil {
		return err
	}
	if err := tx.Delete(&PlantedCrop{}, id).Error; err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func Count(tx *gorm.DB, ownerID uint, f ListFilter) (int64, error) {
	q, err := applyFilter(tx, tx.Model(&PlantedCrop{}).Where("planted_crops.user_id = ?", ownerID), ownerID, f)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

// PlotCount pairs a plot's external identifier with its planting count.
type PlotCount struct {
	PlotUUID string `json:"plot_id"`
	Count    int64  `json:"count"`
}

// CropCount pairs a crop's external identifier with its planting count.
type CropCount struct {
	CropUUID string `json:"crop_id"`
	Count    int64  `json:"count"`
}

type Statistics struct {
	TotalPlantedCrops   int64       `json:"total_planted_crops"`
	ByPlot              []PlotCount `json:"by_plot"`
	ByCrop              []CropCount `json:"by_crop"`
	TotalEstimatedYield float64     `json:"total_estimated_yield_kg"`
	TotalPlants         int64       `json:"total_plants"`
}

// GetStatistics aggregates the principal's plantings in one transaction.
func GetStatistics(tx *gorm.DB, ownerID uint) (*Statistics, error) {
	var stats Statistics

	err := tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&PlantedCrop{}).Where("user_id = ?", ownerID).
			Count(&stats.TotalPlantedCrops).Error; err != nil {
			return apperror.Internal(err)
		}

		var byPlot []PlotCount
		err := tx.Model(&PlantedCrop{}).
			Select("plots.uuid AS plot_uuid, COUNT(planted_crops.id) AS count").
			Joins("JOIN plots ON plots.id = planted_crops.plot_id").
			Where("planted_crops.user_id = ?", ownerID).
			Group("plots.uuid").Scan(&byPlot).Error
		if err != nil {
			return apperror.Internal(err)
		}
		stats.ByPlot = append(stats.ByPlot, byPlot...)

		var byCrop []CropCount
		err = tx.Model(&PlantedCrop{}).
			Select("crops.uuid AS crop_uuid, COUNT(planted_crops.id) AS count").
			Joins("JOIN crops ON crops.id = planted_crops.crop_id").
			Where("planted_crops.user_id = ?", ownerID).
			Group("crops.uuid").Scan(&byCrop).Error
		if err != nil {
			return apperror.Internal(err)
		}
		stats.ByCrop = append(stats.ByCrop, byCrop...)

		type totals struct {
			Yield  float64
			Plants int64
		}
		var agg totals
		err = tx.Model(&PlantedCrop{}).
			Select("COALESCE(SUM(estimated_yield), 0) AS yield, COALESCE(SUM(number_of_crops), 0) AS plants").
			Where("user_id = ?", ownerID).Scan(&agg).Error
		if err != nil {
			return apperror.Internal(err)
		}
		stats.TotalEstimatedYield = agg.Yield
		stats.TotalPlants = agg.Plants
		return nil
	})
	if err != nil {
		return nil, err
	}
	if stats.ByPlot == nil {
		stats.ByPlot = []PlotCount{}
	}
	if stats.ByCrop == nil {
		stats.ByCrop = []CropCount{}
	}
	return &stats, nil
}
