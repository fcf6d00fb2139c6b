// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

Note the map_grants collection needs no uniqueness index: its _id is the
composite (map, collaborator) key, so uniqueness per pair is structural.
The secondary indexes below only serve list queries.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureMaps(ctx, db); err != nil {
		problems = append(problems, "maps: "+err.Error())
	}
	if err := ensureMapGrants(ctx, db); err != nil {
		problems = append(problems, "map_grants: "+err.Error())
	}
	if err := ensurePlaces(ctx, db); err != nil {
		problems = append(problems, "places: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureMaps(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("maps"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_created"),
		},
		{
			// An owner cannot hold two maps with the same folded name.
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("owner_name_ci").SetUnique(true),
		},
	})
}

func ensureMapGrants(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("map_grants"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "collaborator", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("collaborator_created"),
		},
		{
			Keys:    bson.D{{Key: "map_id", Value: 1}},
			Options: options.Index().SetName("map_id"),
		},
	})
}

func ensurePlaces(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("places"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "map_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("map_created"),
		},
		{
			Keys:    bson.D{{Key: "map_id", Value: 1}, {Key: "group", Value: 1}},
			Options: options.Index().SetName("map_group"),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// ensureIndexSet brings the collection's indexes in line with the desired
// models: reuse matching indexes, drop and recreate on option mismatch,
// create missing ones.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	var errs []string
	for _, m := range desired {
		var wantUnique *bool
		if m.Options != nil {
			wantUnique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[sig]; ok {
			if sameBoolPtr(wantUnique, ex.Unique) {
				continue
			}
			// Options mismatch: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s: %v", coll.Name(), ex.Name, err))
				continue
			}
		}
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			errs = append(errs, fmt.Sprintf("%s: create %s: %v", coll.Name(), sig, err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("keys", sig))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
