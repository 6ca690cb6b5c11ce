package farm

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

// Mutations invalidate every farm-scoped key plus the aggregates that read
// through farms. Plot and planted keys are included because a farm delete
// cascades into them.
func invalidateFarms(r *http.Request, userUUID string) {
	cache.Invalidate(r.Context(), userUUID, "farms*", "plots*", "planted*", "animals*")
}

func CreateFarmHandler(w http.ResponseWriter, r *http.Request) {
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

	farm, err := Create(db.DB, user.ID, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	invalidateFarms(r, user.UUID)
	httpx.Success(w, http.StatusCreated, farm.View(true))
}

func GetFarmHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	farm, err := Get(db.DB, user.ID, chi.URLParam(r, "farmUUID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, farm.View(httpx.BoolQuery(r, "include_geojson", true)))
}

func ListFarmsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	skip, limit := httpx.Pagination(r)
	includeGeo := httpx.BoolQuery(r, "include_geojson", false)

	key := cache.UserKey(user.UUID, "farms", cache.QueryHash(map[string]interface{}{
		"skip": skip, "limit": limit, "geo": includeGeo,
	}))
	if cached, ok := cache.Default.Get(r.Context(), key); ok {
		httpx.Success(w, http.StatusOK, json.RawMessage(cached))
		return
	}

	farms, err := ListByOwner(db.DB, user.ID, skip, limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	payload, err := json.Marshal(Views(farms, includeGeo))
	if err != nil {
		httpx.Error(w, apperror.Internal(err))
		return
	}
	cache.Default.Set(r.Context(), key, payload, cache.UserTTL)
	httpx.Success(w, http.StatusOK, json.RawMessage(payload))
}

func UpdateFarmHandler(w http.ResponseWriter, r *http.Request) {
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

	farm, err := Update(db.DB, user.ID, chi.URLParam(r, "farmUUID"), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	invalidateFarms(r, user.UUID)
	httpx.Success(w, http.StatusOK, farm.View(true))
}

func DeleteFarmHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := Delete(db.DB, user.ID, chi.URLParam(r, "farmUUID")); err != nil {
		httpx.Error(w, err)
		return
	}

	invalidateFarms(r, user.UUID)
	httpx.Success(w, http.StatusOK, map[string]string{"message": "Farm deleted successfully"})
}

func FarmStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	key := cache.UserKey(user.UUID, "farms", "stats")
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

func TotalAreaHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	total, err := TotalAreaByOwner(db.DB, user.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]float64{
		"total_area_sqm":      total,
		"total_area_hectares": total / 10000,
	})
}

func CountFarmsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	count, err := CountByOwner(db.DB, user.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]int64{"count": count})
}
