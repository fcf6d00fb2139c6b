// internal/app/service/mapservice/mapservice.go

// Package mapservice owns the map aggregate's lifecycle: create, rename,
// collaborator reconciliation, share/unshare, and delete. It is the only
// writer of the collaborator list and of the grant index, and it keeps the
// two consistent by running every reconciliation inside one transaction:
// the diff is always computed against the transaction-consistent state of
// the map document, never against a value read earlier.
package mapservice

import (
	"context"
	"errors"
	"fmt"

	grantstore "github.com/Praytic/places-sub000/internal/app/store/grants"
	mapstore "github.com/Praytic/places-sub000/internal/app/store/maps"
	placestore "github.com/Praytic/places-sub000/internal/app/store/places"
	"github.com/Praytic/places-sub000/internal/app/system/access"
	"github.com/Praytic/places-sub000/internal/app/system/faults"
	"github.com/Praytic/places-sub000/internal/app/system/htmlsanitize"
	"github.com/Praytic/places-sub000/internal/app/system/inputval"
	"github.com/Praytic/places-sub000/internal/app/system/normalize"
	"github.com/Praytic/places-sub000/internal/app/system/txn"
	"github.com/Praytic/places-sub000/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service coordinates map documents and their derived grants.
type Service struct {
	client      *mongo.Client
	maps        *mapstore.Store
	grants      *grantstore.Store
	places      *placestore.Store
	log         *zap.Logger
	maxAttempts int
}

// New builds a Service. maxAttempts bounds transaction retries; pass 0 for
// the default.
func New(client *mongo.Client, db *mongo.Database, logger *zap.Logger, maxAttempts int) *Service {
	return &Service{
		client:      client,
		maps:        mapstore.New(db),
		grants:      grantstore.New(db),
		places:      placestore.New(db),
		log:         logger,
		maxAttempts: maxAttempts,
	}
}

// Update describes a partial map mutation. Nil fields are left unchanged.
type Update struct {
	Name          *string
	Collaborators map[string]models.Role
}

// displayName is the template for a freshly created grant. Collaborators
// can rename their copy afterwards; owner-side renames never touch it.
func displayName(mapName, owner string) string {
	return fmt.Sprintf("%s (by %s)", mapName, owner)
}

// Create allocates a new map owned by actingUser, shared with the given
// collaborators. The map document and all initial grants commit in one
// transaction: a partially shared map is never observable.
func (s *Service) Create(ctx context.Context, actingUser, name string, collaborators map[string]models.Role) (models.Map, error) {
	owner := normalize.Email(actingUser)
	if !inputval.IsValidEmail(owner) {
		return models.Map{}, fmt.Errorf("%w: owner identity %q", faults.ErrInvalidArgument, actingUser)
	}
	name, err := cleanMapName(name)
	if err != nil {
		return models.Map{}, err
	}
	roles, err := normalizeRoles(owner, collaborators)
	if err != nil {
		return models.Map{}, err
	}

	var created models.Map
	err = txn.Run(ctx, s.client, s.log, s.maxAttempts, func(ctx context.Context) error {
		m, err := s.maps.Create(ctx, models.Map{
			Name:          name,
			Owner:         owner,
			Collaborators: models.CollaboratorList(roles),
		})
		if err != nil {
			return err
		}
		for email, role := range roles {
			if err := s.grants.Grant(ctx, m.ID, email, role, displayName(name, owner)); err != nil {
				return err
			}
		}
		created = m
		return nil
	})
	if err != nil {
		return models.Map{}, err
	}

	s.log.Info("map created",
		zap.String("map_id", created.ID.Hex()),
		zap.String("owner", owner),
		zap.Int("collaborators", len(roles)))
	return created, nil
}

// Get returns the full map document. Only the owner reads the map record
// itself; collaborators see maps indirectly through their grants and the
// place listing. Callers with no role get not-found, so map existence is
// never leaked.
func (s *Service) Get(ctx context.Context, actingUser string, mapID primitive.ObjectID) (models.Map, error) {
	m, lvl, err := s.Resolve(ctx, actingUser, mapID)
	if err != nil {
		return models.Map{}, err
	}
	if lvl != access.Owner {
		return models.Map{}, fmt.Errorf("%w: map record is owner-only", faults.ErrPermissionDenied)
	}
	return m, nil
}

// Resolve loads a map and computes the acting user's effective role on it.
// A caller with no role receives faults.ErrNotFound whether or not the map
// exists.
func (s *Service) Resolve(ctx context.Context, actingUser string, mapID primitive.ObjectID) (models.Map, access.Level, error) {
	user := normalize.Email(actingUser)

	m, err := s.maps.GetByID(ctx, mapID)
	if err != nil {
		return models.Map{}, access.None, err
	}

	var grant *models.MapGrant
	if user != m.Owner {
		g, err := s.grants.Get(ctx, mapID, user)
		if err != nil && !errors.Is(err, faults.ErrNotFound) {
			return models.Map{}, access.None, err
		}
		if err == nil {
			grant = &g
		}
	}

	lvl := access.EffectiveRole(user, m, grant)
	if lvl == access.None {
		return models.Map{}, access.None, fmt.Errorf("%w: map %s", faults.ErrNotFound, mapID.Hex())
	}
	return m, lvl, nil
}

// Rename changes the map's canonical name. Display names of existing
// grants are collaborator-owned and are not rewritten.
func (s *Service) Rename(ctx context.Context, actingUser string, mapID primitive.ObjectID, name string) error {
	return s.Apply(ctx, actingUser, mapID, Update{Name: &name})
}

// SetCollaborators replaces the full collaborator set.
func (s *Service) SetCollaborators(ctx context.Context, actingUser string, mapID primitive.ObjectID, collaborators map[string]models.Role) error {
	if collaborators == nil {
		collaborators = map[string]models.Role{}
	}
	return s.Apply(ctx, actingUser, mapID, Update{Collaborators: collaborators})
}

// Share grants (or re-roles) a single collaborator.
func (s *Service) Share(ctx context.Context, actingUser string, mapID primitive.ObjectID, collaborator string, role models.Role) error {
	return s.applyCollaboratorEdit(ctx, actingUser, mapID, func(roles map[string]models.Role) error {
		email := normalize.Email(collaborator)
		if !inputval.IsValidEmail(email) {
			return fmt.Errorf("%w: collaborator identity %q", faults.ErrInvalidArgument, collaborator)
		}
		roles[email] = role
		return nil
	})
}

// Unshare revokes a single collaborator. Unsharing an identity that holds
// no grant succeeds (idempotent revoke).
func (s *Service) Unshare(ctx context.Context, actingUser string, mapID primitive.ObjectID, collaborator string) error {
	return s.applyCollaboratorEdit(ctx, actingUser, mapID, func(roles map[string]models.Role) error {
		delete(roles, normalize.Email(collaborator))
		return nil
	})
}

// applyCollaboratorEdit runs Apply with a collaborator set derived from the
// transaction-consistent current set, so single-collaborator edits compose
// with concurrent edits instead of clobbering them.
func (s *Service) applyCollaboratorEdit(ctx context.Context, actingUser string, mapID primitive.ObjectID, edit func(map[string]models.Role) error) error {
	return s.apply(ctx, actingUser, mapID, func(m models.Map) (Update, error) {
		roles := m.CollaboratorRoles()
		if err := edit(roles); err != nil {
			return Update{}, err
		}
		return Update{Collaborators: roles}, nil
	})
}

// Apply performs a partial map mutation: rename, collaborator replacement,
// or both, reconciling the grant index in the same transaction.
func (s *Service) Apply(ctx context.Context, actingUser string, mapID primitive.ObjectID, upd Update) error {
	return s.apply(ctx, actingUser, mapID, func(models.Map) (Update, error) {
		return upd, nil
	})
}

// apply is the transactional core of every map mutation except delete.
// build receives the map as read inside the transaction and returns the
// update to apply, which lets single-collaborator edits derive the desired
// set from transaction-consistent state. The whole body is re-executed on
// transaction retry, so no state survives between attempts.
func (s *Service) apply(ctx context.Context, actingUser string, mapID primitive.ObjectID, build func(models.Map) (Update, error)) error {
	user := normalize.Email(actingUser)

	return txn.Run(ctx, s.client, s.log, s.maxAttempts, func(ctx context.Context) error {
		m, err := s.maps.GetByID(ctx, mapID)
		if err != nil {
			return err
		}
		if err := requireOwner(user, m); err != nil {
			return err
		}

		upd, err := build(m)
		if err != nil {
			return err
		}

		name := m.Name
		if upd.Name != nil {
			name, err = cleanMapName(*upd.Name)
			if err != nil {
				return err
			}
			if err := s.maps.UpdateName(ctx, mapID, name); err != nil {
				return err
			}
		}

		if upd.Collaborators == nil {
			return nil
		}

		desired, err := normalizeRoles(m.Owner, upd.Collaborators)
		if err != nil {
			return err
		}
		current := m.CollaboratorRoles()
		d := DiffCollaborators(current, desired)

		if err := s.maps.UpdateCollaborators(ctx, mapID, models.CollaboratorList(desired)); err != nil {
			return err
		}
		for _, email := range d.Removed {
			if err := s.grants.Revoke(ctx, mapID, email); err != nil {
				return err
			}
		}
		for email, role := range d.Added {
			// Fresh grants take the (possibly just renamed) map name.
			if err := s.grants.Grant(ctx, mapID, email, role, displayName(name, m.Owner)); err != nil {
				return err
			}
		}
		for email, role := range d.Changed {
			if err := s.grants.UpdateRole(ctx, mapID, email, role); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the map: one transaction revokes every grant named by the
// current collaborator list and deletes the map document; the place cascade
// then runs best-effort outside the transaction, because a map can hold
// more places than a single transaction's write set allows. If the cascade
// is interrupted, the map and its grants are already gone; the orphaned
// places are unreachable until the sweep worker reclaims them, and the
// caller receives a *faults.PartialCleanupError.
func (s *Service) Delete(ctx context.Context, actingUser string, mapID primitive.ObjectID) error {
	user := normalize.Email(actingUser)

	err := txn.Run(ctx, s.client, s.log, s.maxAttempts, func(ctx context.Context) error {
		m, err := s.maps.GetByID(ctx, mapID)
		if err != nil {
			return err
		}
		if err := requireOwner(user, m); err != nil {
			return err
		}
		for _, c := range m.Collaborators {
			if err := s.grants.Revoke(ctx, mapID, c.Email); err != nil {
				return err
			}
		}
		_, err = s.maps.Delete(ctx, mapID)
		return err
	})
	if err != nil {
		return err
	}

	deleted, err := s.places.DeleteByMap(ctx, mapID)
	if err != nil {
		s.log.Warn("place cascade interrupted after map delete",
			zap.String("map_id", mapID.Hex()),
			zap.Int64("deleted", deleted),
			zap.Error(err))
		return &faults.PartialCleanupError{MapID: mapID.Hex(), Deleted: deleted, Err: err}
	}

	s.log.Info("map deleted",
		zap.String("map_id", mapID.Hex()),
		zap.String("owner", user),
		zap.Int64("places_removed", deleted))
	return nil
}

// UpdateGrantDisplayName renames the acting user's own view of a shared
// map. Only the grant's collaborator may call this; it never touches the
// map's canonical name.
func (s *Service) UpdateGrantDisplayName(ctx context.Context, actingUser string, mapID primitive.ObjectID, name string) error {
	user := normalize.Email(actingUser)
	name = normalize.Name(htmlsanitize.PlainText(name))
	if name == "" {
		return fmt.Errorf("%w: display name is required", faults.ErrInvalidArgument)
	}
	// The composite key scopes the update to this user's grant; no grant
	// means not-found, same as an unknown map.
	return s.grants.UpdateDisplayName(ctx, mapID, user, name)
}

// ListOwned returns the maps actingUser owns, newest first.
func (s *Service) ListOwned(ctx context.Context, actingUser string) ([]models.Map, error) {
	return s.maps.ListByOwner(ctx, normalize.Email(actingUser))
}

// ListSharedWith returns the grants actingUser holds, newest first: the
// "shared with me" list, with collaborator-local display names.
func (s *Service) ListSharedWith(ctx context.Context, actingUser string) ([]models.MapGrant, error) {
	return s.grants.ListForCollaborator(ctx, normalize.Email(actingUser))
}

func requireOwner(user string, m models.Map) error {
	if user == m.Owner {
		return nil
	}
	// Collaborators know the map exists; everyone else gets not-found.
	if _, ok := m.RoleOf(user); ok {
		return fmt.Errorf("%w: only the owner may modify the map", faults.ErrPermissionDenied)
	}
	return fmt.Errorf("%w: map %s", faults.ErrNotFound, m.ID.Hex())
}

func cleanMapName(name string) (string, error) {
	name = normalize.Name(htmlsanitize.PlainText(name))
	if name == "" {
		return "", fmt.Errorf("%w: map name is required", faults.ErrInvalidArgument)
	}
	return name, nil
}

// normalizeRoles validates and canonicalizes a requested collaborator set.
// The owner may never appear in it.
func normalizeRoles(owner string, collaborators map[string]models.Role) (map[string]models.Role, error) {
	roles := make(map[string]models.Role, len(collaborators))
	for email, role := range collaborators {
		email = normalize.Email(email)
		if !inputval.IsValidEmail(email) {
			return nil, fmt.Errorf("%w: collaborator identity %q", faults.ErrInvalidArgument, email)
		}
		if email == owner {
			return nil, fmt.Errorf("%w: owner %q cannot be a collaborator", faults.ErrInvalidArgument, owner)
		}
		if !role.Valid() {
			return nil, fmt.Errorf("%w: role %q for %q", faults.ErrInvalidArgument, role, email)
		}
		roles[email] = role
	}
	return roles, nil
}

// Diff describes the collaborator changes between the current and desired
// sets of one reconciliation.
type Diff struct {
	Added   map[string]models.Role
	Removed []string
	Changed map[string]models.Role
}

// DiffCollaborators computes the grant operations needed to move the index
// from current to desired: grants to create, grants to revoke, and grants
// whose role changes in place (display name untouched).
func DiffCollaborators(current, desired map[string]models.Role) Diff {
	d := Diff{
		Added:   map[string]models.Role{},
		Changed: map[string]models.Role{},
	}
	for email := range current {
		if _, ok := desired[email]; !ok {
			d.Removed = append(d.Removed, email)
		}
	}
	for email, role := range desired {
		old, ok := current[email]
		switch {
		case !ok:
			d.Added[email] = role
		case old != role:
			d.Changed[email] = role
		}
	}
	return d
}
