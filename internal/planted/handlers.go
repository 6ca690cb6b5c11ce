package planted

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

func invalidatePlanted(r *http.Request, userUUID string) {
	cache.Invalidate(r.Context(), userUUID, "planted*", "plots*")
}

func CreatePlantedCropHandler(w http.ResponseWriter, r *http.Request) {
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

	invalidatePlanted(r, user.UUID)

	view, err := Get(db.DB, user.ID, created.UUID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusCreated, view)
}

func GetPlantedCropHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	view, err := Get(db.DB, user.ID, chi.URLParam(r, "plantedUUID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, view)
}

func ListPlantedCropsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	skip, limit := httpx.Pagination(r)
	filter := ListFilter{
		PlotUUID: r.URL.Query().Get("plot_id"),
		CropUUID: r.URL.Query().Get("crop_id"),
	}

	key := cache.UserKey(user.UUID, "planted", cache.QueryHash(map[string]interface{}{
		"plot": filter.PlotUUID, "crop": filter.CropUUID, "skip": skip, "limit": limit,
	}))
	if cached, ok := cache.Default.Get(r.Context(), key); ok {
		httpx.Success(w, http.StatusOK, json.RawMessage(cached))
		return
	}

	views, err := List(db.DB, user.ID, filter, skip, limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	payload, err := json.Marshal(views)
	if err != nil {
		httpx.Error(w, apperror.Internal(err))
		return
	}
	cache.Default.Set(r.Context(), key, payload, cache.UserTTL)
	httpx.Success(w, http.StatusOK, json.RawMessage(payload))
}

func ListPlantedCropDetailsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	skip, limit := httpx.Pagination(r)
	filter := ListFilter{PlotUUID: r.URL.Query().Get("plot_id")}

	details, err := ListWithDetails(db.DB, user.ID, filter, skip, limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, details)
}

func UpdatePlantedCropHandler(w http.ResponseWriter, r *http.Request) {
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

	view, err := Update(db.DB, user.ID, chi.URLParam(r, "plantedUUID"), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	invalidatePlanted(r, user.UUID)
	httpx.Success(w, http.StatusOK, view)
}

func DeletePlantedCropHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := Delete(db.DB, user.ID, chi.URLParam(r, "plantedUUID")); err != nil {
		httpx.Error(w, err)
		return
	}

	invalidatePlanted(r, user.UUID)
	httpx.Success(w, http.StatusOK, map[string]string{"message": "Planted crop deleted successfully"})
}

func CountPlantedCropsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	filter := ListFilter{
		PlotUUID: r.URL.Query().Get("plot_id"),
		CropUUID: r.URL.Query().Get("crop_id"),
	}
	count, err := Count(db.DB, user.ID, filter)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]int64{"count": count})
}

func PlantedCropStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	key := cache.UserKey(user.UUID, "planted", "stats")
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
