package auth

import (
	"net/http"

	"github.com/farmstack/farm-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.With(middleware.RateLimit(1, 5)).Post("/login", LoginHandler)
	r.Post("/register", RegisterHandler)
	r.Post("/oauth", OAuthHandler)

	r.Group(func(r chi.Router) {
		r.Use(Middleware)
		r.Get("/me", MeHandler)
		r.Patch("/profile", UpdateProfileHandler)
	})

	return r
}
