package crop

import (
	"encoding/json"
	"net/http"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/farmstack/farm-backend/internal/cache"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/farmstack/farm-backend/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// The catalog is shared, so its cache lives in the system scope. Every write
// evicts the catalog lists, searches, and the aggregates built on them.
func invalidateCatalog(r *http.Request) {
	cache.Invalidate(r.Context(), cache.SystemScope, "crops*", "stats*", "dashboard")
}

func CreateCropHandler(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, apperror.Invalid("body", "invalid request body"))
		return
	}

	entry, err := Create(db.DB, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	invalidateCatalog(r)
	httpx.Success(w, http.StatusCreated, entry)
}

func GetCropHandler(w http.ResponseWriter, r *http.Request) {
	entry, err := Get(db.DB, chi.URLParam(r, "cropUUID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, entry)
}

func ListCropsHandler(w http.ResponseWriter, r *http.Request) {
	skip, limit := httpx.Pagination(r)
	filter := ListFilter{
		Group:     CropGroup(r.URL.Query().Get("crop_group")),
		Lifecycle: Lifecycle(r.URL.Query().Get("lifecycle")),
	}

	key := cache.UserKey(cache.SystemScope, "crops", "list", cache.QueryHash(map[string]interface{}{
		"skip": skip, "limit": limit, "crop_group": filter.Group, "lifecycle": filter.Lifecycle,
	}))
	if cached, ok := cache.Default.Get(r.Context(), key); ok {
		httpx.Success(w, http.StatusOK, json.RawMessage(cached))
		return
	}

	crops, err := List(db.DB, filter, skip, limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	payload, err := json.Marshal(crops)
	if err != nil {
		httpx.Error(w, apperror.Internal(err))
		return
	}
	cache.Default.Set(r.Context(), key, payload, cache.ListTTL)
	httpx.Success(w, http.StatusOK, json.RawMessage(payload))
}

func SearchCropsHandler(w http.ResponseWriter, r *http.Request) {
	skip, limit := httpx.Pagination(r)
	term := r.URL.Query().Get("q")

	key := cache.UserKey(cache.SystemScope, "crops", "search", cache.QueryHash(map[string]interface{}{
		"q": term, "skip": skip, "limit": limit,
	}))
	if cached, ok := cache.Default.Get(r.Context(), key); ok {
		httpx.Success(w, http.StatusOK, json.RawMessage(cached))
		return
	}

	crops, err := Search(db.DB, term, skip, limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	payload, err := json.Marshal(crops)
	if err != nil {
		httpx.Error(w, apperror.Internal(err))
		return
	}
	cache.Default.Set(r.Context(), key, payload, cache.SearchTTL)
	httpx.Success(w, http.StatusOK, json.RawMessage(payload))
}

func UpdateCropHandler(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, apperror.Invalid("body", "invalid request body"))
		return
	}

	entry, err := Update(db.DB, chi.URLParam(r, "cropUUID"), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	invalidateCatalog(r)
	httpx.Success(w, http.StatusOK, entry)
}

func DeleteCropHandler(w http.ResponseWriter, r *http.Request) {
	cropUUID := chi.URLParam(r, "cropUUID")
	if err := Delete(db.DB, cropUUID); err != nil {
		httpx.Error(w, err)
		return
	}

	invalidateCatalog(r)
	httpx.Success(w, http.StatusOK, map[string]interface{}{"deleted": true, "crop_id": cropUUID})
}

func CountCropsHandler(w http.ResponseWriter, r *http.Request) {
	count, err := Count(db.DB, ListFilter{
		Group:     CropGroup(r.URL.Query().Get("crop_group")),
		Lifecycle: Lifecycle(r.URL.Query().Get("lifecycle")),
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]int64{"count": count})
}

func CropStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	key := cache.UserKey(cache.SystemScope, "stats", "crops")
	if cached, ok := cache.Default.Get(r.Context(), key); ok {
		httpx.Success(w, http.StatusOK, json.RawMessage(cached))
		return
	}

	stats, err := GetStatistics(db.DB)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		httpx.Error(w, apperror.Internal(err))
		return
	}
	cache.Default.Set(r.Context(), key, payload, cache.ListTTL)
	httpx.Success(w, http.StatusOK, json.RawMessage(payload))
}

func ImportCropsHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Path         string `json:"path"`
		SkipExisting *bool  `json:"skip_existing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, apperror.Invalid("body", "invalid request body"))
		return
	}
	if in.Path == "" {
		in.Path = "assets/crops.yaml"
	}
	skipExisting := true
	if in.SkipExisting != nil {
		skipExisting = *in.SkipExisting
	}

	report, err := ImportDataset(db.DB, in.Path, skipExisting)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	invalidateCatalog(r)
	httpx.Success(w, http.StatusOK, report)
}
