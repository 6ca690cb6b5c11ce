package plot

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/farmstack/farm-backend/internal/farm"
	"github.com/farmstack/farm-backend/internal/geo"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

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

// ResolveOwned translates a plot UUID into its internal key, restricted to
// plots whose farm belongs to the acting principal. A plot under another
// user's farm resolves exactly like a missing plot.
func ResolveOwned(tx *gorm.DB, ownerID uint, plotUUID string) (uint, error) {
	if _, err := uuid.Parse(plotUUID); err != nil {
		return 0, apperror.Invalid("plot_id", "malformed plot identifier")
	}

	var row struct{ ID uint }
	err := tx.Model(&Plot{}).Select("plots.id").
		Joins("JOIN farms ON farms.id = plots.farm_id").
		Where("plots.uuid = ? AND farms.owner_id = ?", plotUUID, ownerID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperror.NotFound("plot")
	}
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return row.ID, nil
}

type CreateInput struct {
	Name       string          `json:"name"`
	PlotNumber string          `json:"plot_number"`
	Notes      string          `json:"notes"`
	FarmUUID   string          `json:"farm_id"`
	PlotType   PlotType        `json:"plot_type"`
	Boundary   json.RawMessage `json:"boundary"`
	TypeData   json.RawMessage `json:"plot_type_data"`

	AreaSqm  *float64        `json:"area_sqm"`
	Centroid json.RawMessage `json:"centroid"`
}

// Create validates the boundary against the owning farm (the plot must lie
// inside the farm boundary), derives geometry fields, and persists the plot
// together with its optional type-data record in one transaction.
func Create(tx *gorm.DB, ownerID uint, in CreateInput) (*Plot, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Invalid("name", "name is required")
	}
	if err := rejectDerived(in.AreaSqm, in.Centroid); err != nil {
		return nil, err
	}
	if in.PlotType == "" {
		in.PlotType = TypeField
	}
	if !in.PlotType.Valid() {
		return nil, apperror.Invalid("plot_type", "unknown plot type: "+string(in.PlotType))
	}
	if !rawPresent(in.Boundary) {
		return nil, apperror.Invalid("boundary", "boundary is required")
	}

	parent, err := farm.Get(tx, ownerID, in.FarmUUID)
	if err != nil {
		return nil, err
	}

	poly, err := geo.ParsePolygon(in.Boundary)
	if err != nil {
		return nil, err
	}
	if !geo.Contains(parent.Boundary.Polygon, poly) {
		return nil, apperror.Invalid("boundary", "plot boundary must lie inside the farm boundary")
	}
	areaSqm, centroid := geo.Derive(poly)

	plot := Plot{
		UUID:       uuid.NewString(),
		Name:       name,
		PlotNumber: in.PlotNumber,
		Notes:      in.Notes,
		FarmID:     parent.ID,
		PlotType:   in.PlotType,
		Boundary:   geo.Polygon{Polygon: poly},
		Centroid:   geo.NewPoint(centroid),
		AreaSqm:    areaSqm,
	}

	err = tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&plot).Error; err != nil {
			return apperror.Internal(err)
		}
		if rawPresent(in.TypeData) {
			if _, err := persistTypeData(tx, plot.ID, plot.PlotType, in.TypeData); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &plot, nil
}

// Get returns the plot only when its farm belongs to the acting principal.
func Get(tx *gorm.DB, ownerID uint, plotUUID string) (*Plot, error) {
	id, err := ResolveOwned(tx, ownerID, plotUUID)
	if err != nil {
		return nil, err
	}
	var plot Plot
	if err := tx.First(&plot, id).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return &plot, nil
}

// GetTypeData loads the plot's type-data record, if any.
func GetTypeData(tx *gorm.DB, ownerID uint, plotUUID string) (*TypeDataView, error) {
	id, err := ResolveOwned(tx, ownerID, plotUUID)
	if err != nil {
		return nil, err
	}
	view, err := loadTypeData(tx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, apperror.NotFound("plot type data")
	}
	return view, nil
}

// ListFilter narrows a plot listing. Farm narrows to one owned farm; Type
// narrows to one plot type. Both are optional.
type ListFilter struct {
	FarmUUID string
	Type     PlotType
}

// List returns the principal's plots, optionally narrowed by farm or type.
func List(tx *gorm.DB, ownerID uint, f ListFilter, skip, limit int) ([]Plot, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, apperror.Invalid("plot_type", "unknown plot type: "+string(f.Type))
	}

	q := tx.Model(&Plot{}).
		Joins("JOIN farms ON farms.id = plots.farm_id").
		Where("farms.owner_id = ?", ownerID)

	if f.FarmUUID != "" {
		farmID, err := resolveFarm(tx, ownerID, f.FarmUUID)
		if err != nil {
			return nil, err
		}
		q = q.Where("plots.farm_id = ?", farmID)
	}
	if f.Type != "" {
		q = q.Where("plots.plot_type = ?", f.Type)
	}

	var plots []Plot
	if err := q.Order("plots.id").Offset(skip).Limit(limit).Find(&plots).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return plots, nil
}

func resolveFarm(tx *gorm.DB, ownerID uint, farmUUID string) (uint, error) {
	parent, err := farm.Get(tx, ownerID, farmUUID)
	if err != nil {
		return 0, err
	}
	return parent.ID, nil
}

type UpdateInput struct {
	Name       *string         `json:"name"`
	PlotNumber *string         `json:"plot_number"`
	Notes      *string         `json:"notes"`
	PlotType   *PlotType       `json:"plot_type"`
	Boundary   json.RawMessage `json:"boundary"`
	TypeData   json.RawMessage `json:"plot_type_data"`

	FarmUUID *string         `json:"farm_id"`
	AreaSqm  *float64        `json:"area_sqm"`
	Centroid json.RawMessage `json:"centroid"`
}

// Update merges the supplied fields. Changing plot_type is a structural
// transition: the old type-data record is discarded in the same transaction,
// and a new one is created only when a payload is supplied. A new boundary is
// re-checked against the farm and re-derives area/centroid.
func Update(tx *gorm.DB, ownerID uint, plotUUID string, in UpdateInput) (*Plot, error) {
	if in.FarmUUID != nil {
		return nil, apperror.Invalid("farm_id", "a plot cannot move to another farm")
	}
	if err := rejectDerived(in.AreaSqm, in.Centroid); err != nil {
		return nil, err
	}

	plot, err := Get(tx, ownerID, plotUUID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.Invalid("name", "name cannot be empty")
		}
		plot.Name = name
	}
	if in.PlotNumber != nil {
		plot.PlotNumber = *in.PlotNumber
	}
	if in.Notes != nil {
		plot.Notes = *in.Notes
	}

	typeChanged := false
	if in.PlotType != nil && *in.PlotType != plot.PlotType {
		if !in.PlotType.Valid() {
			return nil, apperror.Invalid("plot_type", "unknown plot type: "+string(*in.PlotType))
		}
		plot.PlotType = *in.PlotType
		typeChanged = true
	}

	if rawPresent(in.Boundary) {
		poly, err := geo.ParsePolygon(in.Boundary)
		if err != nil {
			return nil, err
		}
		var parent farm.Farm
		if err := tx.First(&parent, plot.FarmID).Error; err != nil {
			return nil, apperror.Internal(err)
		}
		if !geo.Contains(parent.Boundary.Polygon, poly) {
			return nil, apperror.Invalid("boundary", "plot boundary must lie inside the farm boundary")
		}
		areaSqm, centroid := geo.Derive(poly)
		plot.Boundary = geo.Polygon{Polygon: poly}
		plot.Centroid = geo.NewPoint(centroid)
		plot.AreaSqm = areaSqm
	}

	err = tx.Transaction(func(tx *gorm.DB) error {
		if typeChanged {
			if err := discardTypeData(tx, plot.ID); err != nil {
				return err
			}
		}
		if err := tx.Save(plot).Error; err != nil {
			return apperror.Internal(err)
		}
		if rawPresent(in.TypeData) {
			if _, err := persistTypeData(tx, plot.ID, plot.PlotType, in.TypeData); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plot, nil
}

// UpdateTypeData replaces only the plot's type-data payload, validated
// against the plot's current type. Core fields and geometry are untouched.
func UpdateTypeData(tx *gorm.DB, ownerID uint, plotUUID string, payload json.RawMessage) (*TypeDataView, error) {
	plot, err := Get(tx, ownerID, plotUUID)
	if err != nil {
		return nil, err
	}

	var rec *TypeDataRecord
	err = tx.Transaction(func(tx *gorm.DB) error {
		rec, err = persistTypeData(tx, plot.ID, plot.PlotType, payload)
		return err
	})
	if err != nil {
		return nil, err
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

// Delete removes the plot, its type-data record, and its planted crops in one
// transaction. Animals housed on the plot are detached, not deleted.
func Delete(tx *gorm.DB, ownerID uint, plotUUID string) error {
	plotID, err := ResolveOwned(tx, ownerID, plotUUID)
	if err != nil {
		return err
	}

	return tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM planted_crops WHERE plot_id = ?", plotID).Error; err != nil {
			return apperror.Internal(err)
		}
		if err := tx.Exec("UPDATE animals SET plot_id = NULL WHERE plot_id = ?", plotID).Error; err != nil {
			return apperror.Internal(err)
		}
		if err := discardTypeData(tx, plotID); err != nil {
			return err
		}
		if err := tx.Delete(&Plot{}, plotID).Error; err != nil {
			return apperror.Internal(err)
		}
		return nil
	})
}

func CountByFarm(tx *gorm.DB, ownerID uint, farmUUID string) (int64, error) {
	farmID, err := resolveFarm(tx, ownerID, farmUUID)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.Model(&Plot{}).Where("farm_id = ?", farmID).Count(&count).Error; err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

func TotalAreaByFarm(tx *gorm.DB, ownerID uint, farmUUID string) (float64, error) {
	farmID, err := resolveFarm(tx, ownerID, farmUUID)
	if err != nil {
		return 0, err
	}
	var total float64
	err = tx.Model(&Plot{}).Where("farm_id = ?", farmID).
		Select("COALESCE(SUM(area_sqm), 0)").Scan(&total).Error
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return total, nil
}

type TypeCount struct {
	PlotType PlotType `json:"plot_type"`
	Count    int64    `json:"count"`
}

type Statistics struct {
	TotalPlots     int64       `json:"total_plots"`
	TotalAreaSqm   float64     `json:"total_area_sqm"`
	PlantablePlots int64       `json:"plantable_plots"`
	ByType         []TypeCount `json:"by_type"`
}

// GetStatistics aggregates the principal's plots in one transaction.
func GetStatistics(tx *gorm.DB, ownerID uint) (*Statistics, error) {
	stats := Statistics{ByType: []TypeCount{}}
	err := tx.Transaction(func(tx *gorm.DB) error {
		base := func() *gorm.DB {
			return tx.Model(&Plot{}).
				Joins("JOIN farms ON farms.id = plots.farm_id").
				Where("farms.owner_id = ?", ownerID)
		}

		if err := base().Count(&stats.TotalPlots).Error; err != nil {
			return apperror.Internal(err)
		}
		if err := base().Select("COALESCE(SUM(plots.area_sqm), 0)").
			Scan(&stats.TotalAreaSqm).Error; err != nil {
			return apperror.Internal(err)
		}

		var rows []TypeCount
		err := base().
			Select("plots.plot_type AS plot_type, COUNT(plots.id) AS count").
			Group("plots.plot_type").Order("plots.plot_type").
			Scan(&rows).Error
		if err != nil {
			return apperror.Internal(err)
		}
		stats.ByType = append(stats.ByType, rows...)
		for _, row := range rows {
			if row.PlotType.Plantable() {
				stats.PlantablePlots += row.Count
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
