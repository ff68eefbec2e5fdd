package http

import "github.com/go-chi/chi/v5"

// MountRoutes attaches report endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/warehouse", h.Warehouse)
	r.Get("/site", h.Site)
	r.Get("/latest", h.Latest)
	r.Post("/refresh", h.Refresh)
}
