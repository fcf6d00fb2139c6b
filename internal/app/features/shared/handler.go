// internal/app/features/shared/handler.go
package shared

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Praytic/places-sub000/internal/app/features/errors"
	"github.com/Praytic/places-sub000/internal/app/service/mapservice"
	"github.com/Praytic/places-sub000/internal/app/system/auth"
	"github.com/Praytic/places-sub000/internal/app/system/faults"
	"github.com/Praytic/places-sub000/internal/app/system/inputval"
	"github.com/Praytic/places-sub000/internal/app/system/timeouts"
	"github.com/Praytic/places-sub000/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the collaborator-facing view of maps shared with the
// signed-in user. The grant's display name belongs to the collaborator,
// so renaming it here never touches the owner's map.
type Handler struct {
	Svc    *mapservice.Service
	ErrLog *errors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(svc *mapservice.Service, errLog *errors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, ErrLog: errLog, Log: logger}
}

type renameRequest struct {
	DisplayName string `json:"display_name"`
}

// List handles GET /api/shared.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	grants, err := h.Svc.ListSharedWith(ctx, user.Email)
	if err != nil {
		h.ErrLog.Render(w, r, "shared list", err)
		return
	}
	if grants == nil {
		grants = []models.MapGrant{}
	}
	writeJSON(w, http.StatusOK, grants)
}

// Rename handles PUT /api/shared/{mapID}.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	mapID, err := pathMapID(r)
	if err != nil {
		h.ErrLog.Render(w, r, "shared rename", err)
		return
	}

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.Render(w, r, "shared rename", fmt.Errorf("%w: invalid request body: %v", faults.ErrInvalidArgument, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Svc.UpdateGrantDisplayName(ctx, user.Email, mapID, req.DisplayName); err != nil {
		h.ErrLog.Render(w, r, "shared rename", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathMapID(r *http.Request) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, "mapID")
	if !inputval.IsValidObjectID(raw) {
		return primitive.NilObjectID, faults.ErrNotFound
	}
	return primitive.ObjectIDFromHex(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
