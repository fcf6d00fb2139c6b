package testutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Praytic/places-sub000/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// UniqueEmail returns an email address unlikely to collide across tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@test.com", prefix, uuid.New().String()[:8])
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateMap creates a test map owned by the given user with no collaborators.
func (f *Fixtures) CreateMap(ctx context.Context, name, owner string) models.Map {
	f.t.Helper()
	return f.CreateMapWithCollaborators(ctx, name, owner, nil)
}

// CreateMapWithCollaborators creates a test map and the matching access
// grants, one per collaborator, keeping the two collections consistent the
// way the map service would.
func (f *Fixtures) CreateMapWithCollaborators(ctx context.Context, name, owner string, roles map[string]models.Role) models.Map {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Map{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		Owner:         owner,
		Collaborators: models.CollaboratorList(roles),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("maps").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test map: %v", err)
	}

	for email, role := range roles {
		f.CreateGrant(ctx, m, email, role)
	}

	return m
}

// CreateGrant inserts an access grant for the collaborator on the map.
// The display name follows the same template the map service uses.
func (f *Fixtures) CreateGrant(ctx context.Context, m models.Map, collaborator string, role models.Role) models.MapGrant {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.MapGrant{
		Key:          models.GrantKey(m.ID, collaborator),
		MapID:        m.ID,
		Collaborator: collaborator,
		Role:         role,
		DisplayName:  fmt.Sprintf("%s (by %s)", m.Name, m.Owner),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("map_grants").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test grant: %v", err)
	}

	return g
}

// CreatePlace inserts a place on the given map.
func (f *Fixtures) CreatePlace(ctx context.Context, mapID primitive.ObjectID, name string, group models.PlaceGroup) models.Place {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Place{
		ID:        primitive.NewObjectID(),
		MapID:     mapID,
		Name:      name,
		Emoji:     "📍",
		Group:     group,
		Geometry:  models.GeoPoint{Lat: 37.7749, Lng: -122.4194},
		PlaceRef:  "ref-" + uuid.New().String()[:8],
		Address:   "123 Test St",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("places").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test place: %v", err)
	}

	return p
}
