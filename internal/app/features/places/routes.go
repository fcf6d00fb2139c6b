// internal/app/features/places/routes.go
package places

import (
	"github.com/Praytic/places-sub000/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the place endpoints. Place creation and listing
// hang off the owning map's path; mutation of an existing place is
// addressed by the place id alone.
func MountRoutes(r chi.Router, h *Handler) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)

		r.Post("/api/maps/{mapID}/places", h.Create)
		r.Get("/api/maps/{mapID}/places", h.List)
		r.Put("/api/places/{placeID}", h.Update)
		r.Delete("/api/places/{placeID}", h.Delete)
	})
}
