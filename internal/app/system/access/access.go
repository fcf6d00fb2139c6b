// internal/app/system/access/access.go

// Package access derives the effective role a caller holds on a map and the
// capabilities that role grants. These are pure functions over the map
// document and the caller's grant (if any), so the same predicates the
// store layer enforces can be unit-tested directly.
package access

import (
	"github.com/Praytic/places-sub000/internal/domain/models"
)

// Level is the effective role of a caller on a specific map.
type Level string

const (
	None   Level = "none"
	Viewer Level = "viewer"
	Editor Level = "editor"
	Owner  Level = "owner"
)

// EffectiveRole resolves the level user holds on m, given the user's grant
// for that map (nil when no grant exists).
//
// Ownership is structural (m.Owner), never grant-backed. A grant counts
// only when it actually belongs to this user and this map; a stale or
// mismatched grant yields None. Callers must treat None identically whether
// the map exists or not, so unauthorized identities cannot probe for map
// existence.
func EffectiveRole(user string, m models.Map, grant *models.MapGrant) Level {
	if user == "" {
		return None
	}
	if user == m.Owner {
		return Owner
	}
	if grant == nil || grant.MapID != m.ID || grant.Collaborator != user {
		return None
	}
	switch grant.Role {
	case models.RoleEditor:
		return Editor
	case models.RoleViewer:
		return Viewer
	}
	return None
}

// CanEdit reports whether l allows creating, updating, or deleting places
// under the map.
func CanEdit(l Level) bool {
	return l == Owner || l == Editor
}

// CanView reports whether l allows reading the map's places.
func CanView(l Level) bool {
	return l != None
}
