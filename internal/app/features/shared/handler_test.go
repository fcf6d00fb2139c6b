package shared_test

import (
	"net/http"
	"testing"

	"github.com/Praytic/places-sub000/internal/app/features/errors"
	sharedfeature "github.com/Praytic/places-sub000/internal/app/features/shared"
	"github.com/Praytic/places-sub000/internal/app/service/mapservice"
	"github.com/Praytic/places-sub000/internal/domain/models"
	"github.com/Praytic/places-sub000/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*sharedfeature.Handler, *mapservice.Service) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()
	svc := mapservice.New(db.Client(), db, log, 0)
	return sharedfeature.NewHandler(svc, errors.NewErrorLogger(log), log), svc
}

func TestHandler_List(t *testing.T) {
	h, svc := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	friend := testutil.UniqueEmail("friend")
	if _, err := svc.Create(ctx, "owner@test.com", "Trip", map[string]models.Role{
		friend: models.RoleViewer,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	req := testutil.NewAuthenticatedRequest("GET", "/api/shared", testutil.UserFor(friend))
	rec := testutil.NewRecorder()

	h.List(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	var grants []models.MapGrant
	rec.DecodeJSON(t, &grants)
	if len(grants) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(grants))
	}
	if grants[0].DisplayName != "Trip (by owner@test.com)" {
		t.Errorf("display name: got %q", grants[0].DisplayName)
	}
}

func TestHandler_List_Empty(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/api/shared", testutil.UserFor("lonely@test.com"))
	rec := testutil.NewRecorder()

	h.List(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	var grants []models.MapGrant
	rec.DecodeJSON(t, &grants)
	if grants == nil || len(grants) != 0 {
		t.Errorf("expected empty JSON array, got %v", grants)
	}
}

func TestHandler_Rename(t *testing.T) {
	h, svc := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	friend := testutil.UniqueEmail("friend")
	m, err := svc.Create(ctx, "owner@test.com", "Trip", map[string]models.Role{
		friend: models.RoleViewer,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	req := testutil.NewJSONRequest("PUT", "/api/shared/"+m.ID.Hex(), testutil.UserFor(friend), map[string]string{
		"display_name": "Our Trip",
	})
	req = testutil.WithChiURLParam(req, "mapID", m.ID.Hex())
	rec := testutil.NewRecorder()

	h.Rename(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusNoContent)

	grants, err := svc.ListSharedWith(ctx, friend)
	if err != nil {
		t.Fatalf("ListSharedWith failed: %v", err)
	}
	if len(grants) != 1 || grants[0].DisplayName != "Our Trip" {
		t.Errorf("grants after rename: %+v", grants)
	}
}

func TestHandler_Rename_NotACollaborator(t *testing.T) {
	h, svc := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := svc.Create(ctx, "owner@test.com", "Trip", nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	req := testutil.NewJSONRequest("PUT", "/api/shared/"+m.ID.Hex(), testutil.UserFor("stranger@test.com"), map[string]string{
		"display_name": "Sneaky",
	})
	req = testutil.WithChiURLParam(req, "mapID", m.ID.Hex())
	rec := testutil.NewRecorder()

	h.Rename(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandler_Rename_BlankName(t *testing.T) {
	h, svc := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	friend := testutil.UniqueEmail("friend")
	m, err := svc.Create(ctx, "owner@test.com", "Trip", map[string]models.Role{
		friend: models.RoleViewer,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	req := testutil.NewJSONRequest("PUT", "/api/shared/"+m.ID.Hex(), testutil.UserFor(friend), map[string]string{
		"display_name": "   ",
	})
	req = testutil.WithChiURLParam(req, "mapID", m.ID.Hex())
	rec := testutil.NewRecorder()

	h.Rename(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}
