package animal

import (
	"encoding/json"
	"net/http"

	"github.com/farmstack/farm-backend/internal/apperror"
	"github.com/farmstack/farm-backend/internal/cache"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/farmstack/farm-backend/internal/httpx"
	"github.com/go-chi/chi/v5"
)

func invalidateTypeCatalog(r *http.Request) {
	cache.Invalidate(r.Context(), cache.SystemScope, "animal_types*", "stats*", "dashboard")
}

func CreateTypeHandler(w http.ResponseWriter, r *http.Request) {
	var in TypeCreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, apperror.Invalid("body", "invalid request body"))
		return
	}

	entry, err := CreateType(db.DB, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	invalidateTypeCatalog(r)
	httpx.Success(w, http.StatusCreated, entry)
}

func GetTypeHandler(w http.ResponseWriter, r *http.Request) {
	entry, err := GetType(db.DB, chi.URLParam(r, "typeUUID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, entry)
}

func ListTypesHandler(w http.ResponseWriter, r *http.Request) {
	skip, limit := httpx.Pagination(r)
	category := Category(r.URL.Query().Get("category"))

	key := cache.UserKey(cache.SystemScope, "animal_types", "list", cache.QueryHash(map[string]interface{}{
		"skip": skip, "limit": limit, "category": category,
	}))
	if cached, ok := cache.Default.Get(r.Context(), key); ok {
		httpx.Success(w, http.StatusOK, json.RawMessage(cached))
		return
	}

	types, err := ListTypes(db.DB, category, skip, limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	payload, err := json.Marshal(types)
	if err != nil {
		httpx.Error(w, apperror.Internal(err))
		return
	}
	cache.Default.Set(r.Context(), key, payload, cache.ListTTL)
	httpx.Success(w, http.StatusOK, json.RawMessage(payload))
}

func SearchTypesHandler(w http.ResponseWriter, r *http.Request) {
	skip, limit := httpx.Pagination(r)
	term := r.URL.Query().Get("q")

	key := cache.UserKey(cache.SystemScope, "animal_types", "search", cache.QueryHash(map[string]interface{}{
		"q": term, "skip": skip, "limit": limit,
	}))
	if cached, ok := cache.Default.Get(r.Context(), key); ok {
		httpx.Success(w, http.StatusOK, json.RawMessage(cached))
		return
	}

	types, err := SearchTypes(db.DB, term, skip, limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	payload, err := json.Marshal(types)
	if err != nil {
		httpx.Error(w, apperror.Internal(err))
		return
	}
	cache.Default.Set(r.Context(), key, payload, cache.SearchTTL)
	httpx.Success(w, http.StatusOK, json.RawMessage(payload))
}

func UpdateTypeHandler(w http.ResponseWriter, r *http.Request) {
	var in TypeUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, apperror.Invalid("body", "invalid request body"))
		return
	}

	entry, err := UpdateType(db.DB, chi.URLParam(r, "typeUUID"), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	invalidateTypeCatalog(r)
	httpx.Success(w, http.StatusOK, entry)
}

func DeleteTypeHandler(w http.ResponseWriter, r *http.Request) {
	typeUUID := chi.URLParam(r, "typeUUID")
	if err := DeleteType(db.DB, typeUUID); err != nil {
		httpx.Error(w, err)
		return
	}

	invalidateTypeCatalog(r)
	httpx.Success(w, http.StatusOK, map[string]interface{}{"deleted": true, "animal_type_id": typeUUID})
}

func CountTypesHandler(w http.ResponseWriter, r *http.Request) {
	count, err := CountTypes(db.DB, Category(r.URL.Query().Get("category")))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]int64{"count": count})
}

func TypeStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	key := cache.UserKey(cache.SystemScope, "stats", "animal_types")
	if cached, ok := cache.Default.Get(r.Context(), key); ok {
		httpx.Success(w, http.StatusOK, json.RawMessage(cached))
		return
	}

	stats, err := GetTypeStatistics(db.DB)
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
