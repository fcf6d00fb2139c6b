// internal/app/features/places/handler.go
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Praytic/places-sub000/internal/app/features/errors"
	"github.com/Praytic/places-sub000/internal/app/service/placeservice"
	"github.com/Praytic/places-sub000/internal/app/system/auth"
	"github.com/Praytic/places-sub000/internal/app/system/faults"
	"github.com/Praytic/places-sub000/internal/app/system/inputval"
	"github.com/Praytic/places-sub000/internal/app/system/timeouts"
	"github.com/Praytic/places-sub000/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves place CRUD under a map. Permission enforcement lives in
// the place service; the handler only parses, delegates, and renders.
type Handler struct {
	Svc    *placeservice.Service
	ErrLog *errors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(svc *placeservice.Service, errLog *errors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, ErrLog: errLog, Log: logger}
}

type placeRequest struct {
	Name     string          `json:"name"`
	Emoji    string          `json:"emoji"`
	Group    string          `json:"group"`
	Geometry models.GeoPoint `json:"geometry"`
	PlaceRef string          `json:"place_ref"`
	Address  string          `json:"address"`
}

func (req placeRequest) input() placeservice.Input {
	return placeservice.Input{
		Name:     req.Name,
		Emoji:    req.Emoji,
		Group:    models.PlaceGroup(req.Group),
		Geometry: req.Geometry,
		PlaceRef: req.PlaceRef,
		Address:  req.Address,
	}
}

// Create handles POST /api/maps/{mapID}/places.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	mapID, err := pathID(r, "mapID")
	if err != nil {
		h.ErrLog.Render(w, r, "place create", err)
		return
	}

	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.Render(w, r, "place create", fmt.Errorf("%w: invalid request body: %v", faults.ErrInvalidArgument, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Svc.Create(ctx, user.Email, mapID, req.input())
	if err != nil {
		h.ErrLog.Render(w, r, "place create", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// List handles GET /api/maps/{mapID}/places.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	mapID, err := pathID(r, "mapID")
	if err != nil {
		h.ErrLog.Render(w, r, "place list", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ps, err := h.Svc.List(ctx, user.Email, mapID)
	if err != nil {
		h.ErrLog.Render(w, r, "place list", err)
		return
	}
	if ps == nil {
		ps = []models.Place{}
	}
	writeJSON(w, http.StatusOK, ps)
}

// Update handles PUT /api/places/{placeID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	placeID, err := pathID(r, "placeID")
	if err != nil {
		h.ErrLog.Render(w, r, "place update", err)
		return
	}

	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.Render(w, r, "place update", fmt.Errorf("%w: invalid request body: %v", faults.ErrInvalidArgument, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Svc.Update(ctx, user.Email, placeID, req.input())
	if err != nil {
		h.ErrLog.Render(w, r, "place update", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/places/{placeID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	placeID, err := pathID(r, "placeID")
	if err != nil {
		h.ErrLog.Render(w, r, "place delete", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Svc.Delete(ctx, user.Email, placeID); err != nil {
		h.ErrLog.Render(w, r, "place delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request, param string) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, param)
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
