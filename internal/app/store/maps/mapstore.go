// internal/app/store/maps/mapstore.go
package mapstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Praytic/places-sub000/internal/app/system/faults"
	"github.com/Praytic/places-sub000/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists map documents. Collaborator reconciliation lives in the
// map coordinator; this store only reads and writes the documents, and
// enlists in the caller's transaction when ctx is a session context.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("maps")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Map, error) {
	var m models.Map
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Map{}, fmt.Errorf("%w: map %s", faults.ErrNotFound, id.Hex())
		}
		return models.Map{}, err
	}
	return m, nil
}

// Create inserts m with a fresh id and timestamps. The caller has already
// normalized the owner and collaborator identities. A name the owner
// already uses (case-insensitively) is reported as faults.ErrConflict.
func (s *Store) Create(ctx context.Context, m models.Map) (models.Map, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.NameCI = text.Fold(m.Name)
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Collaborators == nil {
		m.Collaborators = []models.Collaborator{}
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Map{}, fmt.Errorf("%w: map name %q already in use", faults.ErrConflict, m.Name)
		}
		return models.Map{}, err
	}
	return m, nil
}

// UpdateName renames the map.
func (s *Store) UpdateName(ctx context.Context, id primitive.ObjectID, name string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return fmt.Errorf("%w: map name %q already in use", faults.ErrConflict, name)
		}
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: map %s", faults.ErrNotFound, id.Hex())
	}
	return nil
}

// UpdateCollaborators replaces the collaborator list on the map document.
// Must run inside the same transaction that reconciles the grant index.
func (s *Store) UpdateCollaborators(ctx context.Context, id primitive.ObjectID, collaborators []models.Collaborator) error {
	if collaborators == nil {
		collaborators = []models.Collaborator{}
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"collaborators": collaborators,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: map %s", faults.ErrNotFound, id.Hex())
	}
	return nil
}

// Delete removes a map document. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByOwner returns the maps owned by the given identity, newest first.
func (s *Store) ListByOwner(ctx context.Context, owner string) ([]models.Map, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var maps []models.Map
	if err := cur.All(ctx, &maps); err != nil {
		return nil, err
	}
	return maps, nil
}

// Exists reports whether a map with the given id exists. Used by the
// orphan sweep to find places whose parent map is gone.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
