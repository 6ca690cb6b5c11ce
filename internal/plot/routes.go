package plot

import (
	"net/http"

	"github.com/farmstack/farm-backend/internal/auth"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.Middleware)

	r.Post("/", CreatePlotHandler)
	r.Get("/", ListPlotsHandler)
	r.Get("/count", CountPlotsHandler)
	r.Get("/total-area", TotalAreaHandler)
	r.Get("/statistics", PlotStatisticsHandler)
	r.Get("/{plotUUID}", GetPlotHandler)
	r.Patch("/{plotUUID}", UpdatePlotHandler)
	r.Delete("/{plotUUID}", DeletePlotHandler)
	r.Get("/{plotUUID}/type-data", GetTypeDataHandler)
	r.Put("/{plotUUID}/type-data", UpdateTypeDataHandler)

	return r
}
