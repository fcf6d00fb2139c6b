// internal/app/features/shared/routes.go
package shared

import (
	"github.com/Praytic/places-sub000/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func MountRoutes(r chi.Router, h *Handler) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)

		r.Get("/api/shared", h.List)
		r.Put("/api/shared/{mapID}", h.Rename)
	})
}
