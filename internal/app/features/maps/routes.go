// internal/app/features/maps/routes.go
package maps

import (
	"github.com/Praytic/places-sub000/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the owner-facing map API on the root router.
// Every route requires a signed-in user. The place routes live in the
// places feature; registering explicit paths here (instead of mounting a
// subrouter) lets the two features share the /api/maps prefix.
func MountRoutes(r chi.Router, h *Handler) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)

		r.Post("/api/maps", h.Create)
		r.Get("/api/maps", h.List)
		r.Get("/api/maps/{mapID}", h.Get)
		r.Put("/api/maps/{mapID}", h.Update)
		r.Delete("/api/maps/{mapID}", h.Delete)
		r.Post("/api/maps/{mapID}/share", h.Share)
		r.Post("/api/maps/{mapID}/unshare", h.Unshare)
	})
}
