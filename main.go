package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/farmstack/farm-backend/internal/animal"
	"github.com/farmstack/farm-backend/internal/auth"
	"github.com/farmstack/farm-backend/internal/cache"
	"github.com/farmstack/farm-backend/internal/crop"
	"github.com/farmstack/farm-backend/internal/db"
	"github.com/farmstack/farm-backend/internal/farm"
	"github.com/farmstack/farm-backend/internal/middleware"
	"github.com/farmstack/farm-backend/internal/planted"
	"github.com/farmstack/farm-backend/internal/plot"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cache.Default = cache.NewRedis(addr)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	auth.Init()
	farm.Init()
	plot.Init()
	crop.Init()
	animal.Init()
	planted.Init()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes())
	r.Mount("/farms", farm.SetupRoutes())
	r.Mount("/plots", plot.SetupRoutes())
	r.Mount("/crops", crop.SetupRoutes())
	r.Mount("/animals", animal.SetupRoutes())
	r.Mount("/animal-types", animal.SetupTypeRoutes())
	r.Mount("/planted-crops", planted.SetupRoutes())

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
