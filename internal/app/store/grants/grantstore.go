// internal/app/store/grants/grantstore.go
package grantstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Praytic/places-sub000/internal/app/system/faults"
	"github.com/Praytic/places-sub000/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the denormalized access index over the map_grants collection.
// Documents are keyed by models.GrantKey, so existence checks are point
// lookups and uniqueness per (map, collaborator) holds by construction.
//
// Grants are written only by the map coordinator as a side effect of map
// mutations. Every mutating method enlists in the caller's transaction
// when ctx is a Mongo session context.
type Store struct {
	c *mongo.Collection
}

var ErrDuplicateGrant = errors.New("collaborator already holds a grant for this map")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("map_grants")}
}

// Grant creates the index entry for (mapID, collaborator) with the given
// role and initial display name.
func (s *Store) Grant(ctx context.Context, mapID primitive.ObjectID, collaborator string, role models.Role, displayName string) error {
	if !role.Valid() {
		return fmt.Errorf("%w: role %q", faults.ErrInvalidArgument, role)
	}
	now := time.Now().UTC()
	g := models.MapGrant{
		Key:          models.GrantKey(mapID, collaborator),
		MapID:        mapID,
		Collaborator: collaborator,
		Role:         role,
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateGrant
		}
		return err
	}
	return nil
}

// UpdateRole changes the role on an existing grant. The display name is
// left untouched: it belongs to the collaborator.
func (s *Store) UpdateRole(ctx context.Context, mapID primitive.ObjectID, collaborator string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: role %q", faults.ErrInvalidArgument, role)
	}
	res, err := s.c.UpdateByID(ctx, models.GrantKey(mapID, collaborator), bson.M{
		"$set": bson.M{"role": role, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: grant %s", faults.ErrNotFound, models.GrantKey(mapID, collaborator))
	}
	return nil
}

// UpdateDisplayName changes the collaborator-local name of a shared map.
func (s *Store) UpdateDisplayName(ctx context.Context, mapID primitive.ObjectID, collaborator, name string) error {
	res, err := s.c.UpdateByID(ctx, models.GrantKey(mapID, collaborator), bson.M{
		"$set": bson.M{"display_name": name, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: grant %s", faults.ErrNotFound, models.GrantKey(mapID, collaborator))
	}
	return nil
}

// Revoke removes the grant for (mapID, collaborator). Revoking a grant
// that does not exist is not an error.
func (s *Store) Revoke(ctx context.Context, mapID primitive.ObjectID, collaborator string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": models.GrantKey(mapID, collaborator)})
	return err
}

// Get returns the grant for (mapID, collaborator) via a single point
// lookup on the composite key.
func (s *Store) Get(ctx context.Context, mapID primitive.ObjectID, collaborator string) (models.MapGrant, error) {
	var g models.MapGrant
	err := s.c.FindOne(ctx, bson.M{"_id": models.GrantKey(mapID, collaborator)}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.MapGrant{}, fmt.Errorf("%w: grant %s", faults.ErrNotFound, models.GrantKey(mapID, collaborator))
	}
	if err != nil {
		return models.MapGrant{}, err
	}
	return g, nil
}

// ListForCollaborator returns every grant held by collaborator, newest
// first. This backs the "shared with me" list.
func (s *Store) ListForCollaborator(ctx context.Context, collaborator string) ([]models.MapGrant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"collaborator": collaborator}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var grants []models.MapGrant
	if err := cur.All(ctx, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

// CountByMap returns the number of grants under a map.
func (s *Store) CountByMap(ctx context.Context, mapID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"map_id": mapID})
}
