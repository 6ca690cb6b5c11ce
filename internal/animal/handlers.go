package animal

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

func invalidateAnimals(r *http.Request, userUUID string) {
	cache.Invalidate(r.Context(), userUUID, "animals*")
}

func CreateAnimalHandler(w http.ResponseWriter, r *http.Request) {
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

	invalidateAnimals(r, user.UUID)

	view, err := Get(db.DB, user.ID, created.UUID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusCreated, view)
}

func GetAnimalHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	view, err := Get(db.DB, user.ID, chi.URLParam(r, "animalUUID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, view)
}

func ListAnimalsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	skip, limit := httpx.Pagination(r)
	filter := ListFilter{
		FarmUUID:       r.URL.Query().Get("farm_id"),
		AnimalTypeUUID: r.URL.Query().Get("animal_type_id"),
		ActiveOnly:     httpx.BoolQuery(r, "active_only", false),
	}

	key := cache.UserKey(user.UUID, "animals", cache.QueryHash(map[string]interface{}{
		"farm": filter.FarmUUID, "type": filter.AnimalTypeUUID,
		"active": filter.ActiveOnly, "skip": skip, "limit": limit,
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

func SearchAnimalsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	skip, limit := httpx.Pagination(r)
	views, err := Search(db.DB, user.ID, r.URL.Query().Get("q"), skip, limit)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, views)
}

func UpdateAnimalHandler(w http.ResponseWriter, r *http.Request) {
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

	view, err := Update(db.DB, user.ID, chi.URLParam(r, "animalUUID"), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	invalidateAnimals(r, user.UUID)
	httpx.Success(w, http.StatusOK, view)
}

func DeleteAnimalHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := Delete(db.DB, user.ID, chi.URLParam(r, "animalUUID")); err != nil {
		httpx.Error(w, err)
		return
	}

	invalidateAnimals(r, user.UUID)
	httpx.Success(w, http.StatusOK, map[string]string{"message": "Animal deleted successfully"})
}

func CountAnimalsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	count, err := Count(db.DB, user.ID, httpx.BoolQuery(r, "active_only", false))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]int64{"count": count})
}

func AnimalStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	key := cache.UserKey(user.UUID, "animals", "stats")
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
