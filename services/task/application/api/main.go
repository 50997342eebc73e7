package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/app"
	"github.com/BaselHussain/q4-hackathon-project-phase5/services/task/application/handlers"
	appsvcs "github.com/BaselHussain/q4-hackathon-project-phase5/services/task/application/services"
)

// TaskRoutes registers task endpoints on the provided chi router.
// Callers wrap the router with auth.RequireAuth; every handler assumes the
// user id is already in the request context.
func TaskRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", handlers.NewPostTaskHandler(svcs).Execute)
			r.Get("/", handlers.NewListTasksHandler(svcs).Execute)
			r.Get("/{id}", handlers.NewGetTaskHandler(svcs).Execute)
			r.Patch("/{id}", handlers.NewPatchTaskHandler(svcs).Execute)
			r.Post("/{id}/toggle", handlers.NewToggleTaskHandler(svcs).Execute)
			r.Delete("/{id}", handlers.NewDeleteTaskHandler(svcs).Execute)
		})
	})
}
