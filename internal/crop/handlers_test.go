package crop_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/farmstack/farm-backend/internal/auth"
	"github.com/farmstack/farm-backend/internal/cache"
	"github.com/farmstack/farm-backend/internal/crop"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *string         `json:"error"`
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

// Exercises the catalog cache discipline end to end: a cached filtered list
// must not survive a write that changes its result set.
func TestListCacheInvalidatedByCreate(t *testing.T) {
	conn := setupDB(t)
	cache.Default = cache.NewMemory()
	t.Setenv("JWT_SECRET", "test-secret")

	admin := auth.User{
		UUID:     uuid.NewString(),
		Username: "admin",
		Email:    "admin@example.com",
		Role:     auth.RoleAdmin,
	}
	require.NoError(t, conn.Create(&admin).Error)
	token, err := auth.CreateToken(&admin)
	require.NoError(t, err)

	router := crop.SetupRoutes()

	rec, _ := doRequest(t, router, http.MethodPost, "/", token,
		`{"common_name":"Tomato","crop_group":"vegetable"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := doRequest(t, router, http.MethodGet, "/?crop_group=vegetable", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []crop.Crop
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)

	// Second read comes from cache and must match.
	rec, env = doRequest(t, router, http.MethodGet, "/?crop_group=vegetable", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)

	rec, _ = doRequest(t, router, http.MethodPost, "/", token,
		`{"common_name":"Carrot","crop_group":"vegetable"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = doRequest(t, router, http.MethodGet, "/?crop_group=vegetable", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 2, "the stale filtered list must be evicted by the write")
}

func TestWriteEndpointsRequireAdmin(t *testing.T) {
	conn := setupDB(t)
	cache.Default = cache.NewMemory()
	t.Setenv("JWT_SECRET", "test-secret")

	user := auth.User{
		UUID:     uuid.NewString(),
		Username: "grower",
		Email:    "grower@example.com",
		Role:     auth.RoleUser,
	}
	require.NoError(t, conn.Create(&user).Error)
	token, err := auth.CreateToken(&user)
	require.NoError(t, err)

	router := crop.SetupRoutes()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"common_name":"Tomato"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Reads only need a valid token.
	rec, env := doRequest(t, router, http.MethodGet, "/", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
}

func TestErrorEnvelope(t *testing.T) {
	conn := setupDB(t)
	cache.Default = cache.NewMemory()
	t.Setenv("JWT_SECRET", "test-secret")

	user := auth.User{
		UUID:     uuid.NewString(),
		Username: "grower",
		Email:    "grower@example.com",
		Role:     auth.RoleUser,
	}
	require.NoError(t, conn.Create(&user).Error)
	token, err := auth.CreateToken(&user)
	require.NoError(t, err)

	router := crop.SetupRoutes()

	rec, env := doRequest(t, router, http.MethodGet, "/"+uuid.NewString(), token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "crop not found or access denied", *env.Error)
}
