package planted

import (
	"net/http"

	"github.com/farmstack/farm-backend/internal/auth"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.Middleware)

	r.Post("/", CreatePlantedCropHandler)
	r.Get("/", ListPlantedCropsHandler)
	r.Get("/details", ListPlantedCropDetailsHandler)
	r.Get("/count", CountPlantedCropsHandler)
	r.Get("/statistics", PlantedCropStatisticsHandler)
	r.Get("/{plantedUUID}", GetPlantedCropHandler)
	r.Patch("/{plantedUUID}", UpdatePlantedCropHandler)
	r.Delete("/{plantedUUID}", DeletePlantedCropHandler)

	return r
}
