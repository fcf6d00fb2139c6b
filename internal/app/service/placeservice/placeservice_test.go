package placeservice_test

import (
	"errors"
	"testing"

	"github.com/Praytic/places-sub000/internal/app/service/mapservice"
	"github.com/Praytic/places-sub000/internal/app/service/placeservice"
	"github.com/Praytic/places-sub000/internal/app/system/faults"
	"github.com/Praytic/places-sub000/internal/domain/models"
	"github.com/Praytic/places-sub000/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	owner   = "owner@test.com"
	editor  = "editor@test.com"
	viewer  = "viewer@test.com"
	nobody  = "nobody@test.com"
	mapName = "Tokyo Trip"
)

func setup(t *testing.T) (*placeservice.Service, models.Map, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	mapSvc := mapservice.New(db.Client(), db, zap.NewNop(), 0)
	placeSvc := placeservice.New(db, mapSvc, zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := mapSvc.Create(ctx, owner, mapName, map[string]models.Role{
		editor: models.RoleEditor,
		viewer: models.RoleViewer,
	})
	if err != nil {
		t.Fatalf("map Create failed: %v", err)
	}
	return placeSvc, m, db
}

func input(name string) placeservice.Input {
	return placeservice.Input{
		Name:     name,
		Emoji:    "☕",
		Group:    models.PlaceGroupFavorite,
		Geometry: models.GeoPoint{Lat: 35.68, Lng: 139.69},
		Address:  "1-1 Chiyoda",
	}
}

func TestService_Create_Permissions(t *testing.T) {
	svc, m, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name    string
		user    string
		wantErr error
	}{
		{"owner may create", owner, nil},
		{"editor may create", editor, nil},
		{"viewer may not create", viewer, faults.ErrPermissionDenied},
		{"stranger sees not found", nobody, faults.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.user, m.ID, input("Cafe"))
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Create failed: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestService_Create_UnknownMap(t *testing.T) {
	svc, _, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := svc.Create(ctx, owner, primitive.NewObjectID(), input("Cafe"))
	if !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Create_SanitizesName(t *testing.T) {
	svc, m, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := svc.Create(ctx, owner, m.ID, input("  <script>x</script>Blue Bottle  "))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Name != "Blue Bottle" {
		t.Errorf("Name: got %q, want %q", p.Name, "Blue Bottle")
	}
}

func TestService_Create_InvalidInput(t *testing.T) {
	svc, m, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := svc.Create(ctx, owner, m.ID, input("   "))
	if !errors.Is(err, faults.ErrInvalidArgument) {
		t.Errorf("blank name: expected ErrInvalidArgument, got %v", err)
	}

	bad := input("Cafe")
	bad.Group = models.PlaceGroup("bucket_list")
	_, err = svc.Create(ctx, owner, m.ID, bad)
	if !errors.Is(err, faults.ErrInvalidArgument) {
		t.Errorf("bad group: expected ErrInvalidArgument, got %v", err)
	}

	bad = input("Cafe")
	bad.Geometry = models.GeoPoint{Lat: 999, Lng: -720}
	_, err = svc.Create(ctx, owner, m.ID, bad)
	if !errors.Is(err, faults.ErrInvalidArgument) {
		t.Errorf("out-of-range coordinates: expected ErrInvalidArgument, got %v", err)
	}

	bad = input("Cafe")
	bad.Emoji = "☕ with trailing text"
	_, err = svc.Create(ctx, owner, m.ID, bad)
	if !errors.Is(err, faults.ErrInvalidArgument) {
		t.Errorf("oversized emoji: expected ErrInvalidArgument, got %v", err)
	}
}

func TestService_Update(t *testing.T) {
	svc, m, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := svc.Create(ctx, owner, m.ID, input("Cafe"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	upd := input("Renamed Cafe")
	upd.Group = models.PlaceGroupVisited

	got, err := svc.Update(ctx, editor, p.ID, upd)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Name != "Renamed Cafe" || got.Group != models.PlaceGroupVisited {
		t.Errorf("Update result: %+v", got)
	}
	if got.MapID != m.ID {
		t.Errorf("MapID changed: %v", got.MapID)
	}

	// Viewer cannot update.
	_, err = svc.Update(ctx, viewer, p.ID, upd)
	if !errors.Is(err, faults.ErrPermissionDenied) {
		t.Errorf("viewer update: expected ErrPermissionDenied, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc, m, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := svc.Create(ctx, owner, m.ID, input("Doomed"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(ctx, viewer, p.ID); !errors.Is(err, faults.ErrPermissionDenied) {
		t.Errorf("viewer delete: expected ErrPermissionDenied, got %v", err)
	}
	if err := svc.Delete(ctx, nobody, p.ID); !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("stranger delete: expected ErrNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, editor, p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(ctx, editor, p.ID); !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestService_List(t *testing.T) {
	svc, m, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := svc.Create(ctx, owner, m.ID, input("One")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, owner, m.ID, input("Two")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Any effective role may read.
	for _, user := range []string{owner, editor, viewer} {
		places, err := svc.List(ctx, user, m.ID)
		if err != nil {
			t.Fatalf("List as %s failed: %v", user, err)
		}
		if len(places) != 2 {
			t.Errorf("List as %s: expected 2 places, got %d", user, len(places))
		}
	}

	// No role means not-found, indistinguishable from a missing map.
	if _, err := svc.List(ctx, nobody, m.ID); !errors.Is(err, faults.ErrNotFound) {
		t.Errorf("stranger list: expected ErrNotFound, got %v", err)
	}
}
