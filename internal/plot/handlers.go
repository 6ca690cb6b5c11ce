package plot

import (
	"encoding/json"
	"net/http"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/farmstack/farm-backend/internal/auth"
	"github.com/farmstack/farm-backend/internal/cache"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/farmstack/farm-backend/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// Plot mutations touch plot lists, plot aggregates, and (through cascades)
// planted-crop keys.
func invalidatePlots(r *http.Request, userUUID string) {
	cache.Invalidate(r.Context(), userUUID, "plots*", "planted*")
}

func CreatePlotHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, apperror.Invalid("body", "invalid request body"))
		return
	}

	created, err := Create(db.DB, user.ID, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	invalidatePlots(r, user.UUID)

	view := created.View(true)
	if td, err := loadTypeData(db.DB, created.ID); err == nil && td != nil {
		view.TypeData = td
	}
	httpx.Success(w, http.StatusCreated, view)
}

func GetPlotHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	found, err := Get(db.DB, user.ID, chi.URLParam(r, "plotUUID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}

	view := found.View(httpx.BoolQuery(r, "include_geojson", true))
	if httpx.BoolQuery(r, "include_type_data", true) {
		td, err := loadTypeData(db.DB, found.ID)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		view.TypeData = td
	}
	httpx.Success(w, http.StatusOK, view)
}

func ListPlotsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	skip, limit := httpx.Pagination(r)
	includeGeo := httpx.BoolQuery(r, "include_geojson", false)
	filter := ListFilter{
		FarmUUID: r.URL.Query().Get("farm_id"),
		Type:     PlotType(r.URL.Query().Get("plot_type")),
	}

	key := cache.UserKey(user.UUID, "plots", cache.QueryHash(map[string]interface{}{
		"farm": filter.FarmUUID, "type": filter.Type,
		"skip": skip, "limit": limit, "geo": includeGeo,
	}))
	if cached, ok := cache.Default.Get(r.Context(), key); ok {
		httpx.Success(w, http.StatusOK, json.RawMessage(cached))
		return
	}

	plots, err := List(db.DB, user.ID, filter, skip, limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	payload, err := json.Marshal(Views(plots, includeGeo))
	if err != nil {
		httpx.Error(w, apperror.Internal(err))
		return
	}
	cache.Default.Set(r.Context(), key, payload, cache.UserTTL)
	httpx.Success(w, http.StatusOK, json.RawMessage(payload))
}

func UpdatePlotHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, apperror.Invalid("body", "invalid request body"))
		return
	}

	updated, err := Update(db.DB, user.ID, chi.URLParam(r, "plotUUID"), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	invalidatePlots(r, user.UUID)

	view := updated.View(true)
	if td, err := loadTypeData(db.DB, updated.ID); err == nil && td != nil {
		view.TypeData = td
	}
	httpx.Success(w, http.StatusOK, view)
}

func GetTypeDataHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	view, err := GetTypeData(db.DB, user.ID, chi.URLParam(r, "plotUUID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, view)
}

func UpdateTypeDataHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpx.Error(w, apperror.Invalid("body", "invalid request body"))
		return
	}

	view, err := UpdateTypeData(db.DB, user.ID, chi.URLParam(r, "plotUUID"), payload)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	invalidatePlots(r, user.UUID)
	httpx.Success(w, http.StatusOK, view)
}

func DeletePlotHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := Delete(db.DB, user.ID, chi.URLParam(r, "plotUUID")); err != nil {
		httpx.Error(w, err)
		return
	}

	invalidatePlots(r, user.UUID)
	httpx.Success(w, http.StatusOK, map[string]string{"message": "Plot deleted successfully"})
}

func CountPlotsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	farmUUID := r.URL.Query().Get("farm_id")
	if farmUUID == "" {
		httpx.Error(w, apperror.Invalid("farm_id", "farm_id is required"))
		return
	}

	count, err := CountByFarm(db.DB, user.ID, farmUUID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]int64{"count": count})
}

func TotalAreaHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	farmUUID := r.URL.Query().Get("farm_id")
	if farmUUID == "" {
		httpx.Error(w, apperror.Invalid("farm_id", "farm_id is required"))
		return
	}

	total, err := TotalAreaByFarm(db.DB, user.ID, farmUUID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]float64{
		"total_area_sqm":      total,
		"total_area_hectares": total / 10000,
	})
}

func PlotStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	key := cache.UserKey(user.UUID, "plots", "stats")
	if cached, ok := cache.Default.Get(r.Context(), key); ok {
		httpx.Success(w, http.StatusOK, json.RawMessage(cached))
		return
	}

	stats, err := GetStatistics(db.DB, user.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		httpx.Error(w, apperror.Internal(err))
		return
	}
	cache.Default.Set(r.Context(), key, payload, cache.UserTTL)
	httpx.Success(w, http.StatusOK, json.RawMessage(payload))
}
