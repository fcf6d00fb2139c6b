// internal/app/store/places/placestore.go
package placestore

import (
	"context"
	"fmt"
	"time"

	"github.com/Praytic/places-sub000/internal/app/system/faults"
	"github.com/Praytic/places-sub000/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists place documents. Permission checks happen in the place
// service; this store is plain CRUD scoped to a map.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("places")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Place, error) {
	var p models.Place
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Place{}, fmt.Errorf("%w: place %s", faults.ErrNotFound, id.Hex())
		}
		return models.Place{}, err
	}
	return p, nil
}

// Create inserts p with a fresh id and both timestamps stamped.
func (s *Store) Create(ctx context.Context, p models.Place) (models.Place, error) {
	if !p.Group.Valid() {
		return models.Place{}, fmt.Errorf("%w: place group %q", faults.ErrInvalidArgument, p.Group)
	}
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Place{}, err
	}
	return p, nil
}

// Update writes the mutable fields of p back to its document and stamps
// the update timestamp. The map_id of a place never changes.
func (s *Store) Update(ctx context.Context, p models.Place) error {
	if !p.Group.Valid() {
		return fmt.Errorf("%w: place group %q", faults.ErrInvalidArgument, p.Group)
	}
	res, err := s.c.UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{
		"name":       p.Name,
		"emoji":      p.Emoji,
		"group":      p.Group,
		"geometry":   p.Geometry,
		"place_ref":  p.PlaceRef,
		"address":    p.Address,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: place %s", faults.ErrNotFound, p.ID.Hex())
	}
	return nil
}

// Delete removes a place. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByMap returns all places under a map, oldest first.
func (s *Store) ListByMap(ctx context.Context, mapID primitive.ObjectID) ([]models.Place, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"map_id": mapID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var places []models.Place
	if err := cur.All(ctx, &places); err != nil {
		return nil, err
	}
	return places, nil
}

// DeleteByMap removes all places under a map.
// Returns the number of documents deleted.
func (s *Store) DeleteByMap(ctx context.Context, mapID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"map_id": mapID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DistinctMapIDs returns the set of map ids that currently have places.
// The orphan sweep uses this to find places whose parent map is gone.
func (s *Store) DistinctMapIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	raw, err := s.c.Distinct(ctx, "map_id", bson.M{})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
