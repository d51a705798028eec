package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/studykit/internal/api"
	apiMiddleware "github.com/phrazzld/studykit/internal/api/middleware"
)

// setupRouter creates the router with middleware and all routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	studyHandler := api.NewStudyHandler(app.study, app.logger)

	r.Get("/health", api.Health)
	r.Route("/api", studyHandler.Routes)

	return r
}
