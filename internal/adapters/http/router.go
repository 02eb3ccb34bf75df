package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KabiruH/attendance-agent/internal/application"
)

// Handler is the local HTTP adapter the device UI talks to. The listener is
// bound to loopback by bootstrap; there is no auth layer of its own beyond
// that boundary.
type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers the agent's local API. Centralizing routes here keeps
// error envelopes and logging uniform across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/agent/v1", func(r chi.Router) {
		r.Get("/today", handler.today)
		r.Post("/today/refresh", handler.refresh)
		r.Get("/location", handler.lastKnownLocation)
		r.Get("/journal", handler.journal)

		r.Route("/actions", func(r chi.Router) {
			r.Post("/work/check-in", handler.workCheckIn)
			r.Post("/work/check-out", handler.workCheckOut)
			r.Post("/class/{classID}/check-in", handler.classCheckIn)
			r.Post("/class/{classID}/check-out", handler.classCheckOut)
			r.Post("/class/check-out", handler.classCheckOut)
		})
	})

	return r
}
