package farm

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/farmstack/farm-backend/internal/geo"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Boundary    json.RawMessage `json:"boundary"`

	// Derived fields are output-only; supplying them is an error.
	AreaSqm  *float64        `json:"area_sqm"`
	Centroid json.RawMessage `json:"centroid"`
}

func rawPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func rejectDerived(areaSqm *float64, centroid json.RawMessage) error {
	if areaSqm != nil {
		return apperror.Invalid("area_sqm", "area_sqm is derived from the boundary and cannot be supplied")
	}
	if rawPresent(centroid) {
		return apperror.Invalid("centroid", "centroid is derived from the boundary and cannot be supplied")
	}
	return nil
}

// Create validates the boundary, derives area and centroid, and stores all
// three in one write so no reader ever sees a boundary without its derived
// fields.
func Create(tx *gorm.DB, ownerID uint, in CreateInput) (*Farm, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Invalid("name", "name is required")
	}
	if err := rejectDerived(in.AreaSqm, in.Centroid); err != nil {
		return nil, err
	}
	if !rawPresent(in.Boundary) {
		return nil, apperror.Invalid("boundary", "boundary is required")
	}

	poly, err := geo.ParsePolygon(in.Boundary)
	if err != nil {
		return nil, err
	}
	areaSqm, centroid := geo.Derive(poly)

	farm := Farm{
		UUID:        uuid.NewString(),
		Name:        name,
		Description: in.Description,
		OwnerID:     ownerID,
		Boundary:    geo.Polygon{Polygon: poly},
		Centroid:    geo.NewPoint(centroid),
		AreaSqm:     areaSqm,
	}
	if err := tx.Create(&farm).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return &farm, nil
}

// Get returns the farm only when it belongs to the acting principal. A farm
// owned by someone else is indistinguishable from a missing one.
func Get(tx *gorm.DB, ownerID uint, farmUUID string) (*Farm, error) {
	id, err := db.ResolveOwnedUUID(tx, &Farm{}, "farm", farmUUID, "owner_id", ownerID)
	if err != nil {
		return nil, err
	}
	var farm Farm
	if err := tx.First(&farm, id).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return &farm, nil
}

func ListByOwner(tx *gorm.DB, ownerID uint, skip, limit int) ([]Farm, error) {
	var farms []Farm
	err := tx.Where("owner_id = ?", ownerID).
		Order("id").Offset(skip).Limit(limit).
		Find(&farms).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return farms, nil
}

type UpdateInput struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Boundary    json.RawMessage `json:"boundary"`

	OwnerID  *string         `json:"owner_id"`
	AreaSqm  *float64        `json:"area_sqm"`
	Centroid json.RawMessage `json:"centroid"`
}

// Update merges only the supplied fields. A new boundary re-derives area and
// centroid in the same write.
func Update(tx *gorm.DB, ownerID uint, farmUUID string, in UpdateInput) (*Farm, error) {
	if in.OwnerID != nil {
		return nil, apperror.Invalid("owner_id", "farm ownership is immutable")
	}
	if err := rejectDerived(in.AreaSqm, in.Centroid); err != nil {
		return nil, err
	}

	farm, err := Get(tx, ownerID, farmUUID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.Invalid("name", "name cannot be empty")
		}
		farm.Name = name
	}
	if in.Description != nil {
		farm.Description = *in.Description
	}
	if rawPresent(in.Boundary) {
		poly, err := geo.ParsePolygon(in.Boundary)
		if err != nil {
			return nil, err
		}
		areaSqm, centroid := geo.Derive(poly)
		farm.Boundary = geo.Polygon{Polygon: poly}
		farm.Centroid = geo.NewPoint(centroid)
		farm.AreaSqm = areaSqm
	}

	if err := tx.Save(farm).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return farm, nil
}

// Delete removes the farm and everything it transitively owns (plots, their
// type data, planted crops, animals) in one transaction. A failure anywhere
// in the cascade rolls the whole delete back.
func Delete(tx *gorm.DB, ownerID uint, farmUUID string) error {
	farmID, err := db.ResolveOwnedUUID(tx, &Farm{}, "farm", farmUUID, "owner_id", ownerID)
	if err != nil {
		return err
	}

	return tx.Transaction(func(tx *gorm.DB) error {
		steps := []string{
			"DELETE FROM planted_crops WHERE plot_id IN (SELECT id FROM plots WHERE farm_id = ?)",
			"DELETE FROM plot_type_data WHERE plot_id IN (SELECT id FROM plots WHERE farm_id = ?)",
			"DELETE FROM animals WHERE farm_id = ?",
			"DELETE FROM plots WHERE farm_id = ?",
		}
		for _, stmt := range steps {
			if err := tx.Exec(stmt, farmID).Error; err != nil {
				return apperror.Internal(err)
			}
		}
		if err := tx.Delete(&Farm{}, farmID).Error; err != nil {
			return apperror.Internal(err)
		}
		return nil
	})
}

func CountByOwner(tx *gorm.DB, ownerID uint) (int64, error) {
	var count int64
	if err := tx.Model(&Farm{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

func TotalAreaByOwner(tx *gorm.DB, ownerID uint) (float64, error) {
	var total float64
	err := tx.Model(&Farm{}).Where("owner_id = ?", ownerID).
		Select("COALESCE(SUM(area_sqm), 0)").Scan(&total).Error
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return total, nil
}

type Statistics struct {
	TotalFarms        int64   `json:"total_farms"`
	TotalAreaSqm      float64 `json:"total_area_sqm"`
	TotalAreaHectares float64 `json:"total_area_hectares"`
	AverageAreaSqm    float64 `json:"average_area_sqm"`
	SmallestFarmSqm   float64 `json:"smallest_farm_sqm"`
	LargestFarmSqm    float64 `json:"largest_farm_sqm"`
}

// GetStatistics aggregates the owner's farms inside one transaction so the
// count and the area aggregates describe the same snapshot (best effort
// under read-committed).
func GetStatistics(tx *gorm.DB, ownerID uint) (*Statistics, error) {
	var stats Statistics
	err := tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Farm{}).Where("owner_id = ?", ownerID).
			Count(&stats.TotalFarms).Error; err != nil {
			return apperror.Internal(err)
		}
		if stats.TotalFarms == 0 {
			return nil
		}

		var agg struct {
			TotalArea float64
			AvgArea   float64
			MinArea   float64
			MaxArea   float64
		}
		err := tx.Model(&Farm{}).Where("owner_id = ?", ownerID).
			Select("COALESCE(SUM(area_sqm),0) AS total_area, COALESCE(AVG(area_sqm),0) AS avg_area, COALESCE(MIN(area_sqm),0) AS min_area, COALESCE(MAX(area_sqm),0) AS max_area").
			Scan(&agg).Error
		if err != nil {
			return apperror.Internal(err)
		}

		stats.TotalAreaSqm = agg.TotalArea
		stats.TotalAreaHectares = agg.TotalArea / 10000
		stats.AverageAreaSqm = agg.AvgArea
		stats.SmallestFarmSqm = agg.MinArea
		stats.LargestFarmSqm = agg.MaxArea
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
