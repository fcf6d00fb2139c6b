// internal/app/features/maps/handler.go
package maps

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/Praytic/places-sub000/internal/app/features/errors"
	"github.com/Praytic/places-sub000/internal/app/service/mapservice"
	"github.com/Praytic/places-sub000/internal/app/system/auth"
	"github.com/Praytic/places-sub000/internal/app/system/faults"
	"github.com/Praytic/places-sub000/internal/app/system/inputval"
	"github.com/Praytic/places-sub000/internal/app/system/normalize"
	"github.com/Praytic/places-sub000/internal/app/system/timeouts"
	"github.com/Praytic/places-sub000/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the owner-facing map API: lifecycle and collaborator
// management. Every handler resolves the acting identity from the session
// and threads it into the service explicitly.
type Handler struct {
	Svc    *mapservice.Service
	ErrLog *errors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(svc *mapservice.Service, errLog *errors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, ErrLog: errLog, Log: logger}
}

type createMapRequest struct {
	Name          string            `json:"name"`
	Collaborators map[string]string `json:"collaborators"`
}

type updateMapRequest struct {
	Name          *string            `json:"name"`
	Collaborators *map[string]string `json:"collaborators"`
}

type shareRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type unshareRequest struct {
	Email string `json:"email"`
}

// Create handles POST /api/maps.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	var req createMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.Render(w, r, "map create", badBody(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	m, err := h.Svc.Create(ctx, user.Email, req.Name, toRoles(req.Collaborators))
	if err != nil {
		h.ErrLog.Render(w, r, "map create", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// List handles GET /api/maps.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ms, err := h.Svc.ListOwned(ctx, user.Email)
	if err != nil {
		h.ErrLog.Render(w, r, "map list", err)
		return
	}
	if ms == nil {
		ms = []models.Map{}
	}
	writeJSON(w, http.StatusOK, ms)
}

// Get handles GET /api/maps/{mapID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	mapID, err := pathMapID(r)
	if err != nil {
		h.ErrLog.Render(w, r, "map get", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Svc.Get(ctx, user.Email, mapID)
	if err != nil {
		h.ErrLog.Render(w, r, "map get", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Update handles PUT /api/maps/{mapID}: rename, replace the collaborator
// set, or both in one transaction.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	mapID, err := pathMapID(r)
	if err != nil {
		h.ErrLog.Render(w, r, "map update", err)
		return
	}

	var req updateMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.Render(w, r, "map update", badBody(err))
		return
	}

	upd := mapservice.Update{Name: req.Name}
	if req.Collaborators != nil {
		upd.Collaborators = toRoles(*req.Collaborators)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Svc.Apply(ctx, user.Email, mapID, upd); err != nil {
		h.ErrLog.Render(w, r, "map update", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/maps/{mapID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	mapID, err := pathMapID(r)
	if err != nil {
		h.ErrLog.Render(w, r, "map delete", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	err = h.Svc.Delete(ctx, user.Email, mapID)
	var pc *faults.PartialCleanupError
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case stderrors.As(err, &pc):
		h.ErrLog.RenderPartialCleanup(w, r, "map delete", pc)
	default:
		h.ErrLog.Render(w, r, "map delete", err)
	}
}

// Share handles POST /api/maps/{mapID}/share: grant or re-role one
// collaborator.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	mapID, err := pathMapID(r)
	if err != nil {
		h.ErrLog.Render(w, r, "map share", err)
		return
	}

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.Render(w, r, "map share", badBody(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Svc.Share(ctx, user.Email, mapID, req.Email, models.Role(normalize.Role(req.Role))); err != nil {
		h.ErrLog.Render(w, r, "map share", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unshare handles POST /api/maps/{mapID}/unshare. Idempotent: revoking an
// identity with no grant succeeds.
func (h *Handler) Unshare(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	mapID, err := pathMapID(r)
	if err != nil {
		h.ErrLog.Render(w, r, "map unshare", err)
		return
	}

	var req unshareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.Render(w, r, "map unshare", badBody(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Svc.Unshare(ctx, user.Email, mapID, req.Email); err != nil {
		h.ErrLog.Render(w, r, "map unshare", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toRoles(in map[string]string) map[string]models.Role {
	roles := make(map[string]models.Role, len(in))
	for email, role := range in {
		roles[email] = models.Role(normalize.Role(role))
	}
	return roles
}

func pathMapID(r *http.Request) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, "mapID")
	if !inputval.IsValidObjectID(raw) {
		// A malformed id is indistinguishable from an unknown one.
		return primitive.NilObjectID, faults.ErrNotFound
	}
	return primitive.ObjectIDFromHex(raw)
}

func badBody(err error) error {
	return fmt.Errorf("%w: invalid request body: %v", faults.ErrInvalidArgument, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
