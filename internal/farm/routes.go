package farm

import (
	"net/http"

	"github.com/farmstack/farm-backend/internal/auth"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.Middleware)

	r.Post("/", CreateFarmHandler)
	r.Get("/", ListFarmsHandler)
	r.Get("/count", CountFarmsHandler)
	r.Get("/statistics", FarmStatisticsHandler)
	r.Get("/total-area", TotalAreaHandler)
	r.Get("/{farmUUID}", GetFarmHandler)
	r.Patch("/{farmUUID}", UpdateFarmHandler)
	r.Delete("/{farmUUID}", DeleteFarmHandler)

	return r
}
