package placestore_test

import (
	"errors"
	"testing"

	placestore "github.com/Praytic/places-sub000/internal/app/store/places"
	"github.com/Praytic/places-sub000/internal/app/system/faults"
	"github.com/Praytic/places-sub000/internal/domain/models"
	"github.com/Praytic/places-sub000/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := placestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mapID := primitive.NewObjectID()
	p, err := store.Create(ctx, models.Place{
		MapID:    mapID,
		Name:     "Blue Bottle",
		Emoji:    "☕",
		Group:    models.PlaceGroupFavorite,
		Geometry: models.GeoPoint{Lat: 37.77, Lng: -122.42},
		Address:  "66 Mint St",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.ID.IsZero() {
		t.Fatal("Create did not assign an id")
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Blue Bottle" || got.MapID != mapID {
		t.Errorf("GetByID returned %+v", got)
	}
	if got.Geometry.Lat != 37.77 {
		t.Errorf("Geometry.Lat: got %v", got.Geometry.Lat)
	}
}

func TestStore_Create_InvalidGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := placestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.Place{
		MapID: primitive.NewObjectID(),
		Name:  "Nowhere",
		Group: models.PlaceGroup("bucket_list"),
	})
	if !errors.Is(err, faults.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := placestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, models.Place{
		MapID: primitive.NewObjectID(),
		Name:  "Old Name",
		Group: models.PlaceGroupWantToGo,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	p.Name = "New Name"
	p.Group = models.PlaceGroupVisited
	if err := store.Update(ctx, p); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "New Name" || got.Group != models.PlaceGroupVisited {
		t.Errorf("Update not applied: %+v", got)
	}
}

func TestStore_Update_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := placestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Update(ctx, models.Place{
		ID:    primitive.NewObjectID(),
		MapID: primitive.NewObjectID(),
		Name:  "Ghost",
		Group: models.PlaceGroupFavorite,
	})
	if !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListByMap_OldestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := placestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mapID := primitive.NewObjectID()
	first := fixtures.CreatePlace(ctx, mapID, "First", models.PlaceGroupFavorite)
	second := fixtures.CreatePlace(ctx, mapID, "Second", models.PlaceGroupFavorite)
	fixtures.CreatePlace(ctx, primitive.NewObjectID(), "Elsewhere", models.PlaceGroupFavorite)

	places, err := store.ListByMap(ctx, mapID)
	if err != nil {
		t.Fatalf("ListByMap failed: %v", err)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(places))
	}
	if places[0].ID != first.ID || places[1].ID != second.ID {
		t.Error("places not sorted oldest first")
	}
}

func TestStore_DeleteByMap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := placestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mapID := primitive.NewObjectID()
	fixtures.CreatePlace(ctx, mapID, "A", models.PlaceGroupFavorite)
	fixtures.CreatePlace(ctx, mapID, "B", models.PlaceGroupVisited)
	other := fixtures.CreatePlace(ctx, primitive.NewObjectID(), "C", models.PlaceGroupFavorite)

	n, err := store.DeleteByMap(ctx, mapID)
	if err != nil {
		t.Fatalf("DeleteByMap failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deletions, got %d", n)
	}

	// Places on other maps are untouched.
	if _, err := store.GetByID(ctx, other.ID); err != nil {
		t.Errorf("unrelated place was deleted: %v", err)
	}
}

func TestStore_DistinctMapIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := placestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mapA := primitive.NewObjectID()
	mapB := primitive.NewObjectID()
	fixtures.CreatePlace(ctx, mapA, "A1", models.PlaceGroupFavorite)
	fixtures.CreatePlace(ctx, mapA, "A2", models.PlaceGroupFavorite)
	fixtures.CreatePlace(ctx, mapB, "B1", models.PlaceGroupVisited)

	ids, err := store.DistinctMapIDs(ctx)
	if err != nil {
		t.Fatalf("DistinctMapIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 distinct map ids, got %d", len(ids))
	}
}
