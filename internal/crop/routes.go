package crop

import (
	"net/http"

	"github.com/farmstack/farm-backend/internal/auth"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.Middleware)

	r.Get("/", ListCropsHandler)
	r.Get("/search", SearchCropsHandler)
	r.Get("/count", CountCropsHandler)
	r.Get("/statistics", CropStatisticsHandler)
	r.Get("/{cropUUID}", GetCropHandler)

	// Catalog writes are admin-only.
	r.Group(func(r chi.Router) {
		r.Use(auth.AdminOnly)
		r.Post("/", CreateCropHandler)
		r.Post("/import", ImportCropsHandler)
		r.Patch("/{cropUUID}", UpdateCropHandler)
		r.Delete("/{cropUUID}", DeleteCropHandler)
	})

	return r
}
