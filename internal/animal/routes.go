package animal

import (
	"net/http"

	"github.com/farmstack/farm-backend/internal/auth"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.Middleware)

	r.Post("/", CreateAnimalHandler)
	r.Get("/", ListAnimalsHandler)
	r.Get("/search", SearchAnimalsHandler)
	r.Get("/count", CountAnimalsHandler)
	r.Get("/statistics", AnimalStatisticsHandler)
	r.Get("/{animalUUID}", GetAnimalHandler)
	r.Patch("/{animalUUID}", UpdateAnimalHandler)
	r.Delete("/{animalUUID}", DeleteAnimalHandler)

	return r
}

func SetupTypeRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.Middleware)

	r.Get("/", ListTypesHandler)
	r.Get("/search", SearchTypesHandler)
	r.Get("/count", CountTypesHandler)
	r.Get("/statistics", TypeStatisticsHandler)
	r.Get("/{typeUUID}", GetTypeHandler)

	// Catalog writes are admin-only.
	r.Group(func(r chi.Router) {
		r.Use(auth.AdminOnly)
		r.Post("/", CreateTypeHandler)
		r.Patch("/{typeUUID}", UpdateTypeHandler)
		r.Delete("/{typeUUID}", DeleteTypeHandler)
	})

	return r
}
