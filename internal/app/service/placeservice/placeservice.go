// internal/app/service/placeservice/placeservice.go

// Package placeservice exposes place CRUD scoped to a map. Every operation
// first resolves the acting user's effective role through the map service
// and enforces it here, as defense-in-depth on top of any store-level
// access rules: mutations need owner or editor, reads need any role, and a
// caller with no role sees not-found.
package placeservice

import (
	"context"
	"fmt"

	"github.com/Praytic/places-sub000/internal/app/service/mapservice"
	placestore "github.com/Praytic/places-sub000/internal/app/store/places"
	"github.com/Praytic/places-sub000/internal/app/system/access"
	"github.com/Praytic/places-sub000/internal/app/system/faults"
	"github.com/Praytic/places-sub000/internal/app/system/htmlsanitize"
	"github.com/Praytic/places-sub000/internal/app/system/inputval"
	"github.com/Praytic/places-sub000/internal/app/system/normalize"
	"github.com/Praytic/places-sub000/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service handles place operations with permission checks.
type Service struct {
	places *placestore.Store
	maps   *mapservice.Service
	log    *zap.Logger
}

func New(db *mongo.Database, maps *mapservice.Service, logger *zap.Logger) *Service {
	return &Service{
		places: placestore.New(db),
		maps:   maps,
		log:    logger,
	}
}

// Input carries the client-supplied fields of a place.
type Input struct {
	Name     string
	Emoji    string
	Group    models.PlaceGroup
	Geometry models.GeoPoint
	PlaceRef string
	Address  string
}

// Create adds a place to the map. Requires owner or editor.
func (s *Service) Create(ctx context.Context, actingUser string, mapID primitive.ObjectID, in Input) (models.Place, error) {
	if err := s.requireEdit(ctx, actingUser, mapID); err != nil {
		return models.Place{}, err
	}
	p, err := buildPlace(mapID, in)
	if err != nil {
		return models.Place{}, err
	}
	return s.places.Create(ctx, p)
}

// Update rewrites the mutable fields of a place. Requires owner or editor
// on the place's map.
func (s *Service) Update(ctx context.Context, actingUser string, placeID primitive.ObjectID, in Input) (models.Place, error) {
	existing, err := s.places.GetByID(ctx, placeID)
	if err != nil {
		return models.Place{}, err
	}
	if err := s.requireEdit(ctx, actingUser, existing.MapID); err != nil {
		return models.Place{}, err
	}
	p, err := buildPlace(existing.MapID, in)
	if err != nil {
		return models.Place{}, err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	if err := s.places.Update(ctx, p); err != nil {
		return models.Place{}, err
	}
	return p, nil
}

// Delete removes a place. Requires owner or editor on the place's map.
func (s *Service) Delete(ctx context.Context, actingUser string, placeID primitive.ObjectID) error {
	existing, err := s.places.GetByID(ctx, placeID)
	if err != nil {
		return err
	}
	if err := s.requireEdit(ctx, actingUser, existing.MapID); err != nil {
		return err
	}
	_, err = s.places.Delete(ctx, placeID)
	return err
}

// List returns the places under a map. Any effective role may read;
// callers with none get not-found from Resolve.
func (s *Service) List(ctx context.Context, actingUser string, mapID primitive.ObjectID) ([]models.Place, error) {
	if _, _, err := s.maps.Resolve(ctx, actingUser, mapID); err != nil {
		return nil, err
	}
	return s.places.ListByMap(ctx, mapID)
}

// requireEdit resolves the caller's role and demands write capability.
// Resolve already converts "no role" into not-found, so a viewer is the
// only caller that reaches the permission error.
func (s *Service) requireEdit(ctx context.Context, actingUser string, mapID primitive.ObjectID) error {
	_, lvl, err := s.maps.Resolve(ctx, actingUser, mapID)
	if err != nil {
		return err
	}
	if !access.CanEdit(lvl) {
		return fmt.Errorf("%w: role %s cannot modify places", faults.ErrPermissionDenied, lvl)
	}
	return nil
}

func buildPlace(mapID primitive.ObjectID, in Input) (models.Place, error) {
	name := normalize.Name(htmlsanitize.PlainText(in.Name))
	if name == "" {
		return models.Place{}, fmt.Errorf("%w: place name is required", faults.ErrInvalidArgument)
	}
	if !in.Group.Valid() {
		return models.Place{}, fmt.Errorf("%w: place group %q", faults.ErrInvalidArgument, in.Group)
	}
	if !inputval.IsValidLatitude(in.Geometry.Lat) || !inputval.IsValidLongitude(in.Geometry.Lng) {
		return models.Place{}, fmt.Errorf("%w: coordinates (%g, %g) out of range",
			faults.ErrInvalidArgument, in.Geometry.Lat, in.Geometry.Lng)
	}
	if !inputval.IsValidEmoji(in.Emoji) {
		return models.Place{}, fmt.Errorf("%w: place emoji is not a usable marker", faults.ErrInvalidArgument)
	}
	return models.Place{
		MapID:    mapID,
		Name:     name,
		Emoji:    in.Emoji,
		Group:    in.Group,
		Geometry: in.Geometry,
		PlaceRef: in.PlaceRef,
		Address:  normalize.Name(htmlsanitize.PlainText(in.Address)),
	}, nil
}
