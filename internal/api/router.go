package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)
	r.Handle("/metrics", metricsHandler)
	r.Get("/videos/{key}", app.StreamVideoHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(app.Authenticate)

		r.Post("/performances", app.UploadPerformanceHandler)
		r.Get("/performances", app.ListPerformancesHandler)
		r.Get("/performances/{id}", app.GetPerformanceHandler)
		r.Post("/chat", app.ChatHandler)
		r.Post("/checkout", app.CheckoutHandler)
	})

	return r
}
